package types

import "context"

// ProgressStore is the durable, append-only log of completed work.
//
// Implementations:
//   - store/memory: in-process slice (tests, single-process demos)
//   - store/filestore: one JSON file per record on local disk
//   - store/sqlstore: tabular rows in SQLite
//   - store/kvstore: documents in a NATS JetStream KV bucket
//
// The coordinator never depends on which one is in use.
type ProgressStore interface {
	// Append durably records a completion.
	//
	// Implementations must tolerate being called twice with an identical record;
	// they may store it twice (the coordinator deduplicates) or overwrite it.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - record: Record to append
	//
	// Returns:
	//   - error: ErrStoreUnavailable (transient) or ErrStoreAuth (fatal), wrapped
	Append(ctx context.Context, record CompletionRecord) error

	// ListCompleted returns every record stored for userID, in any order.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - userID: User whose records are requested
	//
	// Returns:
	//   - []CompletionRecord: All records for the user, possibly with duplicates
	//   - error: ErrStoreUnavailable (transient) or ErrStoreAuth (fatal), wrapped
	ListCompleted(ctx context.Context, userID string) ([]CompletionRecord, error)
}
