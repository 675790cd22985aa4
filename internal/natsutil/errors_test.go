package natsutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"github.com/Debodeep94/SLOG-Eval/types"
)

func TestIsConnectivityError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout", nats.ErrTimeout, true},
		{"wrapped no servers", fmt.Errorf("get: %w", nats.ErrNoServers), true},
		{"connection refused text", errors.New("dial tcp: connection refused"), true},
		{"store sentinel", types.ErrStoreUnavailable, true},
		{"other", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsConnectivityError(tt.err))
		})
	}
}

func TestClassify(t *testing.T) {
	require.NoError(t, Classify("get", nil))

	err := Classify("put", nats.ErrTimeout)
	require.ErrorIs(t, err, types.ErrStoreUnavailable)
	require.ErrorIs(t, err, nats.ErrTimeout)

	err = Classify("put", nats.ErrAuthorization)
	require.ErrorIs(t, err, types.ErrStoreAuth)
	require.NotErrorIs(t, err, types.ErrStoreUnavailable)

	err = Classify("put", errors.New("boom"))
	require.NotErrorIs(t, err, types.ErrStoreUnavailable)
	require.Contains(t, err.Error(), "put: boom")
}
