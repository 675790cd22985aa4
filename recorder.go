package slogeval

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Debodeep94/SLOG-Eval/internal/progress"
	"github.com/Debodeep94/SLOG-Eval/types"
)

// SubmitOutcome reports what Submit did with a valid submission.
type SubmitOutcome int

const (
	// OutcomeNone accompanies a non-nil error: nothing was stored.
	OutcomeNone SubmitOutcome = iota

	// OutcomeRecorded means a new completion was appended.
	OutcomeRecorded

	// OutcomeDuplicate means the item was already complete and revisits are
	// disabled; nothing was appended.
	OutcomeDuplicate

	// OutcomeOverwritten means a completed item was labeled again; the new record
	// supersedes the old one.
	OutcomeOverwritten
)

// String returns the string representation of the outcome.
func (o SubmitOutcome) String() string {
	switch o {
	case OutcomeRecorded:
		return "recorded"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeOverwritten:
		return "overwritten"
	default:
		return "none"
	}
}

// Recorder validates submissions and appends them to the progress store.
//
// It shares the Coordinator's pools, cache and store; obtain it with
// Coordinator.Recorder().
type Recorder struct {
	c *Coordinator
}

// Submit records labels for one item.
//
// Rules, in order:
//   - key must be in userID's pool for phase (ErrUnknownItem)
//   - payload must not use reserved keys and must fill every required dimension
//     with an allowed value (*ValidationError, nothing stored)
//   - a qualitative submission while quantitative work remains is ErrItemLocked
//   - an already completed item is OutcomeDuplicate unless AllowRevisit is set,
//     in which case it is appended again and reported as OutcomeOverwritten
//
// A successful append invalidates the user's read cache entry, so the next
// CurrentAssignment reflects it.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - userID: Annotator identity
//   - phase: Phase the item belongs to
//   - key: Item identity
//   - payload: Label values keyed by dimension name
//
// Returns:
//   - SubmitOutcome: What happened (OutcomeNone on error)
//   - error: See rules above, or a store error after retries
func (r *Recorder) Submit(ctx context.Context, userID string, phase Phase, key ItemKey,
	payload map[string]string,
) (SubmitOutcome, error) {
	c := r.c
	if err := c.checkRunning(userID); err != nil {
		return OutcomeNone, err
	}
	if !phase.Valid() {
		return OutcomeNone, fmt.Errorf("%w: unknown phase %q", ErrValidation, phase)
	}

	pools, err := c.poolsFor(userID)
	if err != nil {
		return OutcomeNone, err
	}
	if !pools.Pool(phase).Contains(key) {
		return OutcomeNone, fmt.Errorf("%w: %s not in %s pool of %q", ErrUnknownItem, key, phase, userID)
	}

	if err := ValidatePayload(c.schema, phase, key, payload); err != nil {
		c.metrics.RecordSubmission(phase, "invalid")
		return OutcomeNone, err
	}

	_, cur, recs, err := c.derive(ctx, userID)
	if err != nil {
		return OutcomeNone, err
	}
	if phase == PhaseQual && cur.State == StateQuantInProgress {
		return OutcomeNone, fmt.Errorf("%w: %s: %d of %d quantitative items remain",
			ErrItemLocked, key, cur.QuantTotal-cur.CompletedCount(PhaseQuant), cur.QuantTotal)
	}

	outcome := OutcomeRecorded
	if cur.Completed(phase, key) {
		if !c.cfg.AllowRevisit {
			c.metrics.RecordSubmission(phase, OutcomeDuplicate.String())
			c.logger.Debug("duplicate submission ignored", "user_id", userID, "phase", phase, "item", key.String())

			return OutcomeDuplicate, nil
		}
		outcome = OutcomeOverwritten
	}

	rec := CompletionRecord{
		UserID:     userID,
		Phase:      phase,
		ItemID:     key.ID,
		Provenance: key.Provenance,
		Payload:    maps.Clone(payload),
		RecordedAt: c.now().UTC(),
	}

	err = c.withRetry(ctx, "append", func(ctx context.Context) error {
		return c.store.Append(ctx, rec)
	})
	if err != nil {
		return OutcomeNone, err
	}

	c.records.Invalidate(userID)
	c.metrics.RecordSubmission(phase, outcome.String())
	c.logger.Info("submission recorded",
		"user_id", userID,
		"phase", phase,
		"item", key.String(),
		"outcome", outcome.String(),
	)

	// Fire phase hooks now rather than on the next read.
	after := progress.Derive(pools, append(slices.Clone(recs), rec))
	c.observe(userID, after.State)

	return outcome, nil
}

// ValidatePayload checks payload against the dimensions required for phase.
//
// Parameters:
//   - schema: Required dimensions
//   - phase: Phase being submitted
//   - key: Item identity, for the error
//   - payload: Label values
//
// Returns:
//   - error: *ValidationError listing missing, invalid and reserved keys; nil if valid
func ValidatePayload(schema LabelSchema, phase Phase, key ItemKey, payload map[string]string) error {
	verr := &types.ValidationError{Item: key, Phase: phase}

	for k := range payload {
		if types.IsReservedField(k) {
			verr.Reserved = append(verr.Reserved, k)
		}
	}

	for _, d := range schema.Dimensions(phase) {
		v, ok := payload[d.Name]
		v = strings.TrimSpace(v)
		switch {
		case !ok || v == "":
			verr.Missing = append(verr.Missing, d.Name)
		case !d.Accepts(v):
			verr.Invalid = append(verr.Invalid, d.Name)
		}
	}

	if len(verr.Missing) == 0 && len(verr.Invalid) == 0 && len(verr.Reserved) == 0 {
		return nil
	}
	slices.Sort(verr.Reserved)

	return verr
}
