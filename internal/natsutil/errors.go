// Package natsutil classifies NATS client errors for the progress store.
package natsutil

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/Debodeep94/SLOG-Eval/types"
)

// IsConnectivityError checks if an error is caused by connectivity issues.
//
// This includes NATS timeouts, connection refused, disconnections, etc.
// Kept in internal/natsutil to avoid importing NATS dependencies in types/ package.
//
// Parameters:
//   - err: Error to check
//
// Returns:
//   - bool: true if error indicates connectivity issue
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, types.ErrStoreUnavailable) ||
		errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrDisconnected) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, nats.ErrConnectionReconnecting) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		errors.Is(err, jetstream.ErrJetStreamNotEnabled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "i/o timeout")
}

// IsAuthError checks if an error is an authentication or permission failure.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, nats.ErrAuthorization) ||
		errors.Is(err, nats.ErrAuthExpired) ||
		errors.Is(err, nats.ErrAuthRevoked) ||
		errors.Is(err, nats.ErrPermissionViolation) ||
		strings.Contains(strings.ToLower(err.Error()), "permissions violation")
}

// Classify wraps a NATS error with the matching store sentinel.
//
// Errors that are neither connectivity nor auth failures are returned wrapped
// with op only.
//
// Parameters:
//   - op: Operation name for context
//   - err: Error to classify
//
// Returns:
//   - error: nil when err is nil
func Classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case IsAuthError(err):
		return fmt.Errorf("%w: %s: %w", types.ErrStoreAuth, op, err)
	case IsConnectivityError(err):
		if errors.Is(err, types.ErrStoreUnavailable) {
			return fmt.Errorf("%s: %w", op, err)
		}

		return fmt.Errorf("%w: %s: %w", types.ErrStoreUnavailable, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
