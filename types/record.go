package types

import (
	"fmt"
	"maps"
	"time"
)

// Reserved field names of the flat persisted record layout.
const (
	FieldUserID     = "user_id"
	FieldPhase      = "phase"
	FieldItemID     = "item_id"
	FieldProvenance = "provenance"
	FieldRecordedAt = "recorded_at"
)

// ReservedFields are the record keys that payloads may not use.
var ReservedFields = []string{FieldUserID, FieldPhase, FieldItemID, FieldProvenance, FieldRecordedAt}

// IsReservedField reports whether name collides with the persisted layout.
func IsReservedField(name string) bool {
	for _, f := range ReservedFields {
		if f == name {
			return true
		}
	}

	return false
}

// CompletionRecord is one submitted annotation.
//
// Records are append-only. Several records may exist for the same
// (user, phase, provenance, item); they denote one logical unit of work and the
// most recent RecordedAt wins when payloads differ.
type CompletionRecord struct {
	UserID     string            `json:"user_id"`
	Phase      Phase             `json:"phase"`
	ItemID     string            `json:"item_id"`
	Provenance Provenance        `json:"provenance"`
	Payload    map[string]string `json:"payload,omitempty"`
	RecordedAt time.Time         `json:"recorded_at"`
}

// Key returns the item identity the record completes.
func (r CompletionRecord) Key() ItemKey {
	return ItemKey{Provenance: r.Provenance, ID: r.ItemID}
}

// Fields flattens the record into the backend-agnostic persisted layout.
//
// Returns:
//   - map[string]string: {user_id, phase, item_id, provenance, recorded_at, <payload>...}
func (r CompletionRecord) Fields() map[string]string {
	out := make(map[string]string, len(r.Payload)+len(ReservedFields))
	maps.Copy(out, r.Payload)
	out[FieldUserID] = r.UserID
	out[FieldPhase] = string(r.Phase)
	out[FieldItemID] = r.ItemID
	out[FieldProvenance] = string(r.Provenance)
	if !r.RecordedAt.IsZero() {
		out[FieldRecordedAt] = r.RecordedAt.UTC().Format(time.RFC3339Nano)
	}

	return out
}

// RecordFromFields rebuilds a record from its flat layout.
//
// Layouts written by older schema revisions are tolerated: any non-reserved key is
// payload, payload fields may be missing, and a missing or unparsable recorded_at
// leaves RecordedAt at the zero time. An unknown provenance is kept as-is so the
// caller can decide whether it matches any pool.
//
// Parameters:
//   - fields: Flat record map
//
// Returns:
//   - CompletionRecord: Decoded record
//   - error: ErrMalformedRecord when user_id, phase or item_id is missing or invalid
func RecordFromFields(fields map[string]string) (CompletionRecord, error) {
	userID := fields[FieldUserID]
	itemID := fields[FieldItemID]
	if userID == "" || itemID == "" {
		return CompletionRecord{}, fmt.Errorf("%w: missing %s or %s", ErrMalformedRecord, FieldUserID, FieldItemID)
	}

	phase, err := ParsePhase(fields[FieldPhase])
	if err != nil {
		return CompletionRecord{}, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}

	prov := Provenance(fields[FieldProvenance])
	if p, perr := ParseProvenance(fields[FieldProvenance]); perr == nil {
		prov = p
	}

	rec := CompletionRecord{
		UserID:     userID,
		Phase:      phase,
		ItemID:     itemID,
		Provenance: prov,
		Payload:    make(map[string]string, len(fields)),
	}

	if ts, ok := fields[FieldRecordedAt]; ok {
		if t, perr := time.Parse(time.RFC3339Nano, ts); perr == nil {
			rec.RecordedAt = t
		}
	}

	for k, v := range fields {
		if IsReservedField(k) {
			continue
		}
		rec.Payload[k] = v
	}

	return rec, nil
}
