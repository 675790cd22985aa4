package kvutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	slogtest "github.com/Debodeep94/SLOG-Eval/testing"
)

func TestEnsureKVBucketWithRetry(t *testing.T) {
	js := slogtest.StartEmbeddedNATS(t).JetStream

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	t.Run("creates then reopens", func(t *testing.T) {
		cfg := jetstream.KeyValueConfig{Bucket: "progress-reopen", History: 1}

		kv1, err := EnsureKVBucketWithRetry(ctx, js, cfg, 3)
		require.NoError(t, err)
		_, err = kv1.PutString(ctx, "k", "v")
		require.NoError(t, err)

		kv2, err := EnsureKVBucketWithRetry(ctx, js, cfg, 3)
		require.NoError(t, err)
		entry, err := kv2.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "v", string(entry.Value()))
	})

	t.Run("concurrent creators all succeed", func(t *testing.T) {
		const workers = 8
		cfg := jetstream.KeyValueConfig{Bucket: "progress-race", History: 1}

		var wg sync.WaitGroup
		errs := make([]error, workers)
		for i := range workers {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				_, errs[idx] = EnsureKVBucketWithRetry(ctx, js, cfg, 5)
			}(i)
		}
		wg.Wait()

		for i, err := range errs {
			require.NoError(t, err, "worker %d", i)
		}
	})

	t.Run("cancelled context fails", func(t *testing.T) {
		cctx, ccancel := context.WithCancel(ctx)
		ccancel()

		_, err := EnsureKVBucketWithRetry(cctx, js, jetstream.KeyValueConfig{Bucket: "progress-cancel"}, 3)
		require.Error(t, err)
	})
}
