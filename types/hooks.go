package types

import "context"

// Hooks defines callbacks for coordinator events.
//
// All hooks are optional and called asynchronously in background goroutines so
// they never delay an assignment. Hook errors are logged and otherwise ignored.
//
// Best practices for hook implementation:
//   - Complete quickly
//   - Respect context cancellation
//   - Make hooks idempotent (the same transition may be observed by two processes)
type Hooks struct {
	// OnPhaseChanged is called when a user's derived state moves forward.
	OnPhaseChanged func(ctx context.Context, userID string, from, to State) error

	// OnOverlapShortfall is called when a user's qualitative pool had to be reduced.
	OnOverlapShortfall func(ctx context.Context, userID string, requested, available int) error

	// OnError is called when a recoverable error occurs (e.g. the store stayed
	// unavailable after retries).
	OnError func(ctx context.Context, err error) error
}
