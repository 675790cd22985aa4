// Package filestore persists completion records as JSON documents on local disk.
//
// Layout: <dir>/<user>/<phase>_<provenance>_<item>.json, one document per logical
// record. Path tokens are escaped so any user or item id maps to a single safe
// file name. Writes go to a temp file first and are renamed into place, so a
// reader never sees a half-written document.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Debodeep94/SLOG-Eval/internal/kvutil"
	"github.com/Debodeep94/SLOG-Eval/internal/logging"
	"github.com/Debodeep94/SLOG-Eval/types"
)

const ext = ".json"

// Store is a directory-backed progress store.
type Store struct {
	dir    string
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

// New opens (creating if needed) a file store rooted at dir.
//
// Parameters:
//   - dir: Root directory
//   - opts: Optional configuration
//
// Returns:
//   - *Store: Ready store
//   - error: Wrapped ErrStoreUnavailable or ErrStoreAuth if dir cannot be created
func New(dir string, opts ...Option) (*Store, error) {
	s := &Store{dir: dir, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, classify("open", err)
	}

	return s, nil
}

// Append writes the record document, replacing an identical logical record.
func (s *Store) Append(ctx context.Context, record types.CompletionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	userDir := filepath.Join(s.dir, kvutil.EncodeToken(record.UserID))
	if err := os.MkdirAll(userDir, 0o750); err != nil {
		return classify("append", err)
	}

	data, err := json.MarshalIndent(record.Fields(), "", "  ")
	if err != nil {
		return fmt.Errorf("append: encode record: %w", err)
	}

	tmp, err := os.CreateTemp(userDir, ".tmp-*")
	if err != nil {
		return classify("append", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return classify("append", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return classify("append", err)
	}
	if err := tmp.Close(); err != nil {
		return classify("append", err)
	}

	if err := os.Rename(tmpName, filepath.Join(userDir, fileName(record))); err != nil {
		return classify("append", err)
	}

	return nil
}

// ListCompleted reads every document under the user's directory.
//
// Documents that cannot be read or decoded are skipped with a warning.
func (s *Store) ListCompleted(ctx context.Context, userID string) ([]types.CompletionRecord, error) {
	userDir := filepath.Join(s.dir, kvutil.EncodeToken(userID))

	entries, err := os.ReadDir(userDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("list", err)
	}

	records := make([]types.CompletionRecord, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}

		path := filepath.Join(userDir, e.Name())
		rec, err := readRecord(path)
		if err != nil {
			s.logger.Warn("skipping unreadable progress document", "path", path, "error", err)
			continue
		}
		if rec.UserID != userID {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

func readRecord(path string) (types.CompletionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.CompletionRecord{}, err
	}

	var fields map[string]string
	if err := json.Unmarshal(data, &fields); err != nil {
		return types.CompletionRecord{}, fmt.Errorf("%w: %w", types.ErrMalformedRecord, err)
	}

	return types.RecordFromFields(fields)
}

func fileName(r types.CompletionRecord) string {
	return string(r.Phase) + "_" + kvutil.EncodeToken(string(r.Provenance)) + "_" + kvutil.EncodeToken(r.ItemID) + ext
}

func classify(op string, err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %s: %w", types.ErrStoreAuth, op, err)
	}

	return fmt.Errorf("%w: %s: %w", types.ErrStoreUnavailable, op, err)
}
