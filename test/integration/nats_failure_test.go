package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	slogeval "github.com/Debodeep94/SLOG-Eval"
	slogtest "github.com/Debodeep94/SLOG-Eval/testing"
)

func outageConfig(cfg *slogeval.Config) {
	cfg.OperationTimeout = 300 * time.Millisecond
	cfg.Retry.MaxAttempts = 2
}

// TestNATSFailure_ServerDown verifies a lost NATS server surfaces as
// ErrStoreUnavailable and never as a fabricated assignment.
func TestNATSFailure_ServerDown(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(t.Context(), 60*time.Second)
	defer cancel()

	store, srv := newKVStore(t, ctx)

	coord := startCoordinator(t, ctx, slogtest.PairedItems(3, 3, 3), store, outageConfig)
	defer func() { require.NoError(t, coord.Stop(context.Background())) }()

	asg := submitNext(t, ctx, coord, "radiologist-3")

	t.Log("Stopping NATS server...")
	srv.Shutdown()

	_, err := coord.CurrentAssignment(ctx, "radiologist-3")
	require.ErrorIs(t, err, slogeval.ErrStoreUnavailable)

	_, err = coord.Submit(ctx, "radiologist-3", slogeval.PhaseQuant, asg.Item.Key(),
		labels(coord.Schema(), slogeval.PhaseQuant))
	require.ErrorIs(t, err, slogeval.ErrStoreUnavailable)
}

// TestNATSFailure_RecoversAfterRestart verifies the same coordinator resumes
// at the right item once the server is back, with nothing lost or repeated.
func TestNATSFailure_RecoversAfterRestart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(t.Context(), 60*time.Second)
	defer cancel()

	store, srv := newKVStore(t, ctx)

	coord := startCoordinator(t, ctx, slogtest.PairedItems(3, 3, 3), store, outageConfig)
	defer func() { require.NoError(t, coord.Stop(context.Background())) }()

	first := submitNext(t, ctx, coord, "radiologist-4")
	before, err := coord.CurrentAssignment(ctx, "radiologist-4")
	require.NoError(t, err)

	srv.Shutdown()
	_, err = coord.CurrentAssignment(ctx, "radiologist-4")
	require.ErrorIs(t, err, slogeval.ErrStoreUnavailable)

	t.Log("Restarting NATS server...")
	srv.Restart()

	require.Eventually(t, func() bool {
		after, err := coord.CurrentAssignment(ctx, "radiologist-4")
		return err == nil && after.Item.Key() == before.Item.Key() && after.Completed == 1
	}, 15*time.Second, 100*time.Millisecond)

	outcome, err := coord.Submit(ctx, "radiologist-4", first.Phase, first.Item.Key(),
		labels(coord.Schema(), first.Phase))
	require.NoError(t, err)
	require.Equal(t, slogeval.OutcomeDuplicate, outcome)
}
