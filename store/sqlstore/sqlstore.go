// Package sqlstore persists completion records as rows of a SQLite table.
//
// The table acts as an append-only sheet: every Append inserts a row, so a
// resubmission leaves both rows in place and readers dedupe. Payload columns
// vary with the label schema, so the payload is stored as one JSON text column.
package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	// Pure-Go SQLite driver, registered as "sqlite".
	_ "modernc.org/sqlite"

	"github.com/Debodeep94/SLOG-Eval/internal/logging"
	"github.com/Debodeep94/SLOG-Eval/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS completions (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id     TEXT NOT NULL,
	phase       TEXT NOT NULL,
	provenance  TEXT NOT NULL,
	item_id     TEXT NOT NULL,
	recorded_at TEXT NOT NULL DEFAULT '',
	payload     TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS completions_user ON completions (user_id);
`

// Store is a SQLite-backed progress store.
type Store struct {
	db     *sql.DB
	logger types.Logger
}

var _ types.ProgressStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report skipped rows.
func WithLogger(l types.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open opens or creates the database at path and ensures the schema.
//
// The connection runs in WAL mode with a busy timeout so the CLI and a
// long-running process can share one file.
//
// Parameters:
//   - ctx: Context for the initial ping and schema creation
//   - path: Database file (":memory:" for a private in-memory database)
//   - opts: Optional configuration
//
// Returns:
//   - *Store: Ready store; call Close when done
//   - error: Wrapped ErrStoreUnavailable if the database cannot be opened
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	if path == ":memory:" {
		dsn = path + "?_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, classify("open", err)
	}
	// One writer at a time; also keeps ":memory:" on a single connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, classify("ping", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, classify("init schema", err)
	}

	s := &Store{db: db, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append inserts one row for the record.
func (s *Store) Append(ctx context.Context, record types.CompletionRecord) error {
	payload := record.Payload
	if payload == nil {
		payload = map[string]string{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("append: encode payload: %w", err)
	}

	var recordedAt string
	if !record.RecordedAt.IsZero() {
		recordedAt = record.RecordedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO completions (user_id, phase, provenance, item_id, recorded_at, payload)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.UserID, string(record.Phase), string(record.Provenance), record.ItemID, recordedAt, string(data))
	if err != nil {
		return classify("append", err)
	}

	return nil
}

// ListCompleted returns every row for userID in insertion order.
//
// Rows that cannot be decoded are skipped with a warning.
func (s *Store) ListCompleted(ctx context.Context, userID string) ([]types.CompletionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, user_id, phase, provenance, item_id, recorded_at, payload
		 FROM completions WHERE user_id = ? ORDER BY seq`, userID)
	if err != nil {
		return nil, classify("list", err)
	}
	defer rows.Close()

	var records []types.CompletionRecord
	for rows.Next() {
		var seq int64
		var user, phase, prov, item, recorded, payload string
		if err := rows.Scan(&seq, &user, &phase, &prov, &item, &recorded, &payload); err != nil {
			return nil, classify("list", err)
		}

		fields := make(map[string]string)
		if payload != "" {
			if err := json.Unmarshal([]byte(payload), &fields); err != nil {
				s.logger.Warn("skipping progress row with bad payload", "seq", seq, "error", err)
				continue
			}
		}
		fields[types.FieldUserID] = user
		fields[types.FieldPhase] = phase
		fields[types.FieldProvenance] = prov
		fields[types.FieldItemID] = item
		if recorded != "" {
			fields[types.FieldRecordedAt] = recorded
		}

		rec, err := types.RecordFromFields(fields)
		if err != nil {
			s.logger.Warn("skipping malformed progress row", "seq", seq, "error", err)
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list", err)
	}

	return records, nil
}

func classify(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "readonly"),
		strings.Contains(msg, "permission denied"),
		strings.Contains(msg, "not authorized"):
		return fmt.Errorf("%w: %s: %w", types.ErrStoreAuth, op, err)
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.DeadlineExceeded),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "busy"),
		strings.Contains(msg, "unable to open"),
		strings.Contains(msg, "disk i/o"),
		strings.Contains(msg, "database is closed"):
		return fmt.Errorf("%w: %s: %w", types.ErrStoreUnavailable, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
