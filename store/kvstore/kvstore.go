// Package kvstore persists completion records as documents in a NATS JetStream
// KeyValue bucket.
//
// Each logical record is one key, <user>.<phase>.<provenance>.<item>, with the
// flat record layout as a JSON value. Tokens are escaped to the KV key alphabet,
// so a user's records are exactly the keys matching "<user>.>". Re-appending a
// logical record replaces the document.
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/Debodeep94/SLOG-Eval/internal/kvutil"
	"github.com/Debodeep94/SLOG-Eval/internal/logging"
	"github.com/Debodeep94/SLOG-Eval/internal/natsutil"
	"github.com/Debodeep94/SLOG-Eval/types"
)

// DefaultBucket is the bucket used when none is configured.
const DefaultBucket = "slogeval-progress"

// Store is a JetStream KV progress store.
type Store struct {
	kv     jetstream.KeyValue
	logger types.Logger
}

var _ types.ProgressStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report skipped documents.
func WithLogger(l types.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open ensures the bucket exists and returns a store over it.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - js: JetStream context
//   - bucket: Bucket name (DefaultBucket when empty)
//   - opts: Optional configuration
//
// Returns:
//   - *Store: Ready store
//   - error: Classified error if the bucket cannot be created or opened
//
// Example:
//
//	nc, _ := nats.Connect(nats.DefaultURL)
//	js, _ := jetstream.New(nc)
//	store, err := kvstore.Open(ctx, js, "")
func Open(ctx context.Context, js jetstream.JetStream, bucket string, opts ...Option) (*Store, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}

	kv, err := kvutil.EnsureKVBucketWithRetry(ctx, js, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "SLOG-Eval completion records",
		History:     1,
		Storage:     jetstream.FileStorage,
	}, 3)
	if err != nil {
		return nil, natsutil.Classify("open bucket", err)
	}

	return New(kv, opts...), nil
}

// New wraps an existing bucket.
func New(kv jetstream.KeyValue, opts ...Option) *Store {
	s := &Store{kv: kv, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Key returns the KV key for a record.
func Key(r types.CompletionRecord) string {
	return kvutil.JoinKey(r.UserID, string(r.Phase), string(r.Provenance), r.ItemID)
}

// Append writes the record document.
func (s *Store) Append(ctx context.Context, record types.CompletionRecord) error {
	data, err := json.Marshal(record.Fields())
	if err != nil {
		return fmt.Errorf("append: encode record: %w", err)
	}

	if _, err := s.kv.Put(ctx, Key(record), data); err != nil {
		return natsutil.Classify("append", err)
	}

	return nil
}

// ListCompleted reads every document under the user's key prefix.
//
// The watcher delivers current values and then a nil marker; listing stops at
// the marker. Undecodable documents are skipped with a warning.
func (s *Store) ListCompleted(ctx context.Context, userID string) ([]types.CompletionRecord, error) {
	watcher, err := s.kv.Watch(ctx, kvutil.EncodeToken(userID)+".>", jetstream.IgnoreDeletes())
	if err != nil {
		return nil, natsutil.Classify("list", err)
	}
	defer watcher.Stop() //nolint:errcheck // best-effort cleanup

	var records []types.CompletionRecord
	for {
		select {
		case <-ctx.Done():
			return nil, natsutil.Classify("list", ctx.Err())
		case entry, ok := <-watcher.Updates():
			if !ok {
				return nil, fmt.Errorf("%w: list: watcher closed", types.ErrStoreUnavailable)
			}
			if entry == nil {
				return records, nil
			}

			rec, err := decode(entry.Value())
			if err == nil {
				err = checkKey(entry.Key(), userID, rec)
			}
			if err != nil {
				s.logger.Warn("skipping undecodable progress document", "key", entry.Key(), "error", err)
				continue
			}
			records = append(records, rec)
		}
	}
}

// checkKey rejects documents whose body does not describe the record their
// key names, e.g. a value copied under another user's prefix.
func checkKey(key, userID string, rec types.CompletionRecord) error {
	tokens, err := kvutil.SplitKey(key)
	if err != nil {
		return fmt.Errorf("%w: key: %w", types.ErrMalformedRecord, err)
	}

	want := []string{userID, string(rec.Phase), string(rec.Provenance), rec.ItemID}
	if !slices.Equal(tokens, want) || rec.UserID != userID {
		return fmt.Errorf("%w: key %q does not match document for %s/%s", types.ErrMalformedRecord, key, rec.UserID, rec.Key())
	}

	return nil
}

func decode(data []byte) (types.CompletionRecord, error) {
	var fields map[string]string
	if err := json.Unmarshal(data, &fields); err != nil {
		return types.CompletionRecord{}, fmt.Errorf("%w: %w", types.ErrMalformedRecord, err)
	}

	return types.RecordFromFields(fields)
}
