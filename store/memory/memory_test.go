package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Debodeep94/SLOG-Eval/store/storetest"
	"github.com/Debodeep94/SLOG-Eval/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStore_Contract(t *testing.T) {
	storetest.RunContract(t, func(t *testing.T) types.ProgressStore {
		return New()
	})
}

func TestStore_FailNext(t *testing.T) {
	s := New()
	ctx := context.Background()
	rec := storetest.Record("u", types.PhaseQuant, types.ProvenanceSourceA, "1", 0)

	s.FailNext(types.ErrStoreUnavailable, types.ErrStoreAuth)

	require.ErrorIs(t, s.Append(ctx, rec), types.ErrStoreUnavailable)
	_, err := s.ListCompleted(ctx, "u")
	require.ErrorIs(t, err, types.ErrStoreAuth)

	require.NoError(t, s.Append(ctx, rec))
	require.Equal(t, 1, s.Len("u"))

	appends, lists := s.Calls()
	require.Equal(t, 2, appends)
	require.Equal(t, 1, lists)
}

func TestStore_CopiesPayload(t *testing.T) {
	s := New()
	ctx := context.Background()
	rec := storetest.Record("u", types.PhaseQuant, types.ProvenanceSourceA, "1", 0)
	require.NoError(t, s.Append(ctx, rec))

	rec.Payload["Cardiomegaly"] = "changed"

	got, err := s.ListCompleted(ctx, "u")
	require.NoError(t, err)
	require.Equal(t, "1", got[0].Payload["Cardiomegaly"])

	got[0].Payload["Cardiomegaly"] = "changed again"
	again, err := s.ListCompleted(ctx, "u")
	require.NoError(t, err)
	require.Equal(t, "1", again[0].Payload["Cardiomegaly"])
}

func TestStore_CancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, s.Append(ctx, storetest.Record("u", types.PhaseQuant, types.ProvenanceSourceA, "1", 0)), context.Canceled)
}
