package slogeval

import (
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Debodeep94/SLOG-Eval/internal/logging"
	"github.com/Debodeep94/SLOG-Eval/internal/metrics"
	"github.com/Debodeep94/SLOG-Eval/types"
)

// Re-export types from the types package.
//
// The aliases let store adapters and internal packages depend on `types`
// without importing the root package, while users write slogeval.Item,
// slogeval.Logger and so on.
type (
	Item             = types.Item
	ItemKey          = types.ItemKey
	Provenance       = types.Provenance
	Phase            = types.Phase
	State            = types.State
	Pool             = types.Pool
	Pools            = types.Pools
	CompletionRecord = types.CompletionRecord
	ProgressCursor   = types.ProgressCursor
	Assignment       = types.Assignment
	LabelSchema      = types.LabelSchema
	Dimension        = types.Dimension
	SeedFunc         = types.SeedFunc
)

// Re-export interfaces from the types package for convenience.
type (
	ItemSource       = types.ItemSource
	ProgressStore    = types.ProgressStore
	Partitioner      = types.Partitioner
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)

// Re-export constants from the types package.
const (
	ProvenanceSourceA = types.ProvenanceSourceA
	ProvenanceSourceB = types.ProvenanceSourceB

	PhaseQuant = types.PhaseQuant
	PhaseQual  = types.PhaseQual

	StateQuantInProgress = types.StateQuantInProgress
	StateQualInProgress  = types.StateQualInProgress
	StateAllDone         = types.StateAllDone

	AssignmentDone = types.AssignmentDone
)

// ParsePhase parses "quant" or "qual".
func ParsePhase(s string) (Phase, error) {
	return types.ParsePhase(s)
}

// ParseItemKey parses "provenance/id".
func ParseItemKey(s string) (ItemKey, error) {
	return types.ParseItemKey(s)
}

// NewSlogLogger adapts a *slog.Logger to Logger.
//
// Parameters:
//   - logger: slog logger (slog.Default() if nil)
//
// Returns:
//   - Logger: Adapter for WithLogger
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		return logging.NewSlogDefault()
	}

	return logging.NewSlog(logger)
}

// NewTextLogger logs key=value lines to w, including debug lines when verbose is set.
func NewTextLogger(w io.Writer, verbose bool) Logger {
	return logging.NewText(w, verbose)
}

// NewPrometheusMetrics creates a Prometheus-backed MetricsCollector.
//
// Metrics are registered on first use.
//
// Parameters:
//   - reg: Registerer (prometheus.DefaultRegisterer if nil)
//   - namespace: Metric namespace ("slogeval" if empty)
//
// Returns:
//   - MetricsCollector: Collector for WithMetrics
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) MetricsCollector {
	return metrics.NewPrometheus(reg, namespace)
}
