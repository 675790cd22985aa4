// Package storetest holds the behavior every progress store must share.
package storetest

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Debodeep94/SLOG-Eval/types"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) types.ProgressStore

// Record builds a completion record with a fixed timestamp offset.
func Record(userID string, phase types.Phase, prov types.Provenance, itemID string, offset time.Duration) types.CompletionRecord {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	return types.CompletionRecord{
		UserID:     userID,
		Phase:      phase,
		ItemID:     itemID,
		Provenance: prov,
		Payload:    map[string]string{"Cardiomegaly": "1", "note": "a.b/c d"},
		RecordedAt: base.Add(offset),
	}
}

// RunContract runs the shared progress store behavior against newStore.
func RunContract(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("empty user", func(t *testing.T) {
		s := newStore(t)

		recs, err := s.ListCompleted(context.Background(), "nobody")
		require.NoError(t, err)
		require.Empty(t, recs)
	})

	t.Run("append then list", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		want := []types.CompletionRecord{
			Record("alice", types.PhaseQuant, types.ProvenanceSourceA, "1", 0),
			Record("alice", types.PhaseQuant, types.ProvenanceSourceB, "2", time.Second),
			Record("alice", types.PhaseQual, types.ProvenanceSourceA, "3", 2*time.Second),
		}
		for _, r := range want {
			require.NoError(t, s.Append(ctx, r))
		}

		got, err := s.ListCompleted(ctx, "alice")
		require.NoError(t, err)
		require.ElementsMatch(t, normalize(want), normalize(got))
	})

	t.Run("identical double append is harmless", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		r := Record("bob", types.PhaseQuant, types.ProvenanceSourceA, "7", 0)
		require.NoError(t, s.Append(ctx, r))
		require.NoError(t, s.Append(ctx, r))

		got, err := s.ListCompleted(ctx, "bob")
		require.NoError(t, err)
		require.NotEmpty(t, got)
		for _, g := range normalize(got) {
			require.Equal(t, normalize([]types.CompletionRecord{r})[0], g)
		}
	})

	t.Run("same id under both provenances", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Append(ctx, Record("carol", types.PhaseQual, types.ProvenanceSourceA, "9", 0)))
		require.NoError(t, s.Append(ctx, Record("carol", types.PhaseQual, types.ProvenanceSourceB, "9", 0)))

		got, err := s.ListCompleted(ctx, "carol")
		require.NoError(t, err)
		keys := make([]types.ItemKey, 0, len(got))
		for _, g := range got {
			keys = append(keys, g.Key())
		}
		require.ElementsMatch(t, []types.ItemKey{
			{Provenance: types.ProvenanceSourceA, ID: "9"},
			{Provenance: types.ProvenanceSourceB, ID: "9"},
		}, keys)
	})

	t.Run("users are isolated", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Append(ctx, Record("dave", types.PhaseQuant, types.ProvenanceSourceA, "1", 0)))
		require.NoError(t, s.Append(ctx, Record("dave.smith", types.PhaseQuant, types.ProvenanceSourceA, "2", 0)))
		require.NoError(t, s.Append(ctx, Record("eve", types.PhaseQuant, types.ProvenanceSourceA, "3", 0)))

		got, err := s.ListCompleted(ctx, "dave")
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "1", got[0].ItemID)
	})

	t.Run("overwrite keeps the latest payload visible", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		first := Record("frank", types.PhaseQuant, types.ProvenanceSourceA, "4", 0)
		second := Record("frank", types.PhaseQuant, types.ProvenanceSourceA, "4", time.Minute)
		second.Payload = map[string]string{"Cardiomegaly": "2"}
		require.NoError(t, s.Append(ctx, first))
		require.NoError(t, s.Append(ctx, second))

		got, err := s.ListCompleted(ctx, "frank")
		require.NoError(t, err)
		latest := slices.MaxFunc(got, func(a, b types.CompletionRecord) int { return a.RecordedAt.Compare(b.RecordedAt) })
		require.Equal(t, "2", latest.Payload["Cardiomegaly"])
	})
}

// normalize drops representation differences stores are allowed to have.
func normalize(recs []types.CompletionRecord) []types.CompletionRecord {
	out := make([]types.CompletionRecord, len(recs))
	for i, r := range recs {
		r.RecordedAt = r.RecordedAt.UTC()
		if len(r.Payload) == 0 {
			r.Payload = nil
		}
		out[i] = r
	}

	return out
}
