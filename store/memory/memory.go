// Package memory provides an in-process progress store.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/Debodeep94/SLOG-Eval/types"
)

// Store keeps completion records in memory.
//
// Records are appended, never replaced. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records map[string][]types.CompletionRecord
	fail    []error
	appends int
	lists   int
}

var _ types.ProgressStore = (*Store)(nil)

// New creates an empty memory store.
func New() *Store {
	return &Store{records: make(map[string][]types.CompletionRecord)}
}

// Append records a completion.
func (s *Store) Append(ctx context.Context, record types.CompletionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.appends++
	if err := s.popFailure(); err != nil {
		return fmt.Errorf("append: %w", err)
	}

	record.Payload = maps.Clone(record.Payload)
	s.records[record.UserID] = append(s.records[record.UserID], record)

	return nil
}

// ListCompleted returns copies of every record for userID.
func (s *Store) ListCompleted(ctx context.Context, userID string) ([]types.CompletionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists++
	if err := s.popFailure(); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	src := s.records[userID]
	out := make([]types.CompletionRecord, len(src))
	for i, r := range src {
		r.Payload = maps.Clone(r.Payload)
		out[i] = r
	}

	return out, nil
}

// FailNext makes the next len(errs) operations fail with errs in order.
//
// Used to simulate an unavailable or unauthorized backend in tests.
func (s *Store) FailNext(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fail = append(s.fail, errs...)
}

// Len returns the number of physical records stored for userID.
func (s *Store) Len(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records[userID])
}

// Calls returns how many Append and ListCompleted calls the store has served.
func (s *Store) Calls() (appends, lists int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.appends, s.lists
}

func (s *Store) popFailure() error {
	if len(s.fail) == 0 {
		return nil
	}
	err := s.fail[0]
	s.fail = s.fail[1:]

	return err
}
