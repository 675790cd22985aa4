// Package hooks provides the default no-op coordinator hooks.
package hooks

import (
	"context"

	"github.com/Debodeep94/SLOG-Eval/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, string, types.State, types.State) error = (*NopHooks)(nil).OnPhaseChanged
	_ func(context.Context, string, int, int) error                 = (*NopHooks)(nil).OnOverlapShortfall
	_ func(context.Context, error) error                            = (*NopHooks)(nil).OnError
)

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations
func NewNop() types.Hooks {
	h := &NopHooks{}

	return types.Hooks{
		OnPhaseChanged:     h.OnPhaseChanged,
		OnOverlapShortfall: h.OnOverlapShortfall,
		OnError:            h.OnError,
	}
}

// Fill returns h with every nil callback replaced by its no-op.
//
// Parameters:
//   - h: Caller-supplied hooks (may be nil)
//
// Returns:
//   - types.Hooks: Hooks whose callbacks are all non-nil
func Fill(h *types.Hooks) types.Hooks {
	out := NewNop()
	if h == nil {
		return out
	}
	if h.OnPhaseChanged != nil {
		out.OnPhaseChanged = h.OnPhaseChanged
	}
	if h.OnOverlapShortfall != nil {
		out.OnOverlapShortfall = h.OnOverlapShortfall
	}
	if h.OnError != nil {
		out.OnError = h.OnError
	}

	return out
}

// OnPhaseChanged is a no-op implementation.
func (h *NopHooks) OnPhaseChanged(_ context.Context, _ string, _, _ types.State) error {
	return nil
}

// OnOverlapShortfall is a no-op implementation.
func (h *NopHooks) OnOverlapShortfall(_ context.Context, _ string, _, _ int) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(_ context.Context, _ error) error {
	return nil
}
