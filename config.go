package slogeval

import (
	"fmt"
	"slices"
	"time"

	"github.com/Debodeep94/SLOG-Eval/types"
)

// DefaultSymptoms are the 14 CheXpert findings scored in the quantitative phase.
var DefaultSymptoms = []string{
	"No Finding",
	"Enlarged Cardiomediastinum",
	"Cardiomegaly",
	"Lung Opacity",
	"Lung Lesion",
	"Edema",
	"Consolidation",
	"Pneumonia",
	"Atelectasis",
	"Pneumothorax",
	"Pleural Effusion",
	"Pleural Other",
	"Fracture",
	"Support Devices",
}

// DefaultScoreValues are the allowed quantitative scores.
var DefaultScoreValues = []string{"0", "1", "2"}

// DefaultQualFields are the feedback fields of the qualitative phase.
var DefaultQualFields = []string{"confidence", "difficult_symptoms", "extra_info_needed", "other_feedback"}

// RetryConfig controls retries of transient progress store failures.
type RetryConfig struct {
	// MaxAttempts is the total number of calls per store operation, including the first.
	MaxAttempts int `yaml:"maxAttempts"`

	// BaseDelay is the first backoff delay.
	BaseDelay time.Duration `yaml:"baseDelay"`

	// MaxDelay caps any single backoff delay.
	MaxDelay time.Duration `yaml:"maxDelay"`

	// Multiplier grows the delay between attempts.
	Multiplier float64 `yaml:"multiplier"`
}

// SchemaConfig describes the label dimensions an annotator must fill in.
type SchemaConfig struct {
	// Symptoms are the quantitative dimensions; each takes one of ScoreValues.
	Symptoms []string `yaml:"symptoms"`

	// ScoreValues are the allowed scores for every symptom.
	ScoreValues []string `yaml:"scoreValues"`

	// QualFields are the qualitative dimensions; each takes any non-blank value.
	QualFields []string `yaml:"qualFields"`
}

// Config is the configuration for the Coordinator.
//
// All duration fields accept standard Go duration strings like "2s", "500ms".
type Config struct {
	// QualTargetCount is the number of pivot item IDs per user for the qualitative
	// phase. Each pivot contributes one item per provenance. 0 disables the phase.
	QualTargetCount int `yaml:"qualTargetCount"`

	// AllowRevisit lets annotators reopen completed items (JumpTo) and overwrite
	// their labels. When false, resubmitting a completed item is a no-op.
	AllowRevisit bool `yaml:"allowRevisit"`

	// SeedSalt is mixed into every user's shuffle seed. Changing it reshuffles
	// all users and orphans existing progress, so set it once per study.
	SeedSalt string `yaml:"seedSalt"`

	// ReadCacheTTL is how long a user's completion list is served from memory.
	// 0 disables the cache. A submit always invalidates the submitting user's entry.
	ReadCacheTTL time.Duration `yaml:"readCacheTtl"`

	// OperationTimeout bounds each progress store call.
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// Retry controls retries of store calls that fail with ErrStoreUnavailable.
	Retry RetryConfig `yaml:"retry"`

	// Schema lists the required label dimensions.
	Schema SchemaConfig `yaml:"schema"`

	qualTargetSet bool
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		QualTargetCount:  5,
		AllowRevisit:     false,
		ReadCacheTTL:     2 * time.Second,
		OperationTimeout: 10 * time.Second,
		Retry: RetryConfig{
			MaxAttempts: 4,
			BaseDelay:   50 * time.Millisecond,
			MaxDelay:    2 * time.Second,
			Multiplier:  2.0,
		},
		Schema: SchemaConfig{
			Symptoms:    slices.Clone(DefaultSymptoms),
			ScoreValues: slices.Clone(DefaultScoreValues),
			QualFields:  slices.Clone(DefaultQualFields),
		},
		qualTargetSet: true,
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// A zero QualTargetCount is kept only when the config came from DefaultConfig or
// WithoutQualPhase; a zero-value Config gets the default target.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.QualTargetCount == 0 && !cfg.qualTargetSet {
		cfg.QualTargetCount = defaults.QualTargetCount
	}
	// ReadCacheTTL of 0 is valid (cache disabled), so no default is applied.
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = defaults.Retry.MaxAttempts
	}
	if cfg.Retry.BaseDelay == 0 {
		cfg.Retry.BaseDelay = defaults.Retry.BaseDelay
	}
	if cfg.Retry.MaxDelay == 0 {
		cfg.Retry.MaxDelay = defaults.Retry.MaxDelay
	}
	if cfg.Retry.Multiplier == 0 {
		cfg.Retry.Multiplier = defaults.Retry.Multiplier
	}
	if len(cfg.Schema.Symptoms) == 0 {
		cfg.Schema.Symptoms = defaults.Schema.Symptoms
	}
	if len(cfg.Schema.ScoreValues) == 0 {
		cfg.Schema.ScoreValues = defaults.Schema.ScoreValues
	}
	if len(cfg.Schema.QualFields) == 0 {
		cfg.Schema.QualFields = defaults.Schema.QualFields
	}
	cfg.qualTargetSet = true
}

// WithoutQualPhase returns cfg with the qualitative phase disabled.
//
// Needed because a zero QualTargetCount in a zero-value Config means "use the default".
func (cfg Config) WithoutQualPhase() Config {
	cfg.QualTargetCount = 0
	cfg.qualTargetSet = true

	return cfg
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Hard Validation Rules:
//   - QualTargetCount >= 0
//   - ReadCacheTTL >= 0, OperationTimeout > 0
//   - Retry.MaxAttempts >= 1, Retry.Multiplier >= 1, Retry.BaseDelay <= Retry.MaxDelay
//   - Symptom, score and qualitative field names are non-empty, unique and not reserved
//
// Returns:
//   - error: Validation error wrapping ErrInvalidConfig, nil if valid
func (cfg *Config) Validate() error {
	if cfg.QualTargetCount < 0 {
		return fmt.Errorf("%w: QualTargetCount must be >= 0, got %d", ErrInvalidConfig, cfg.QualTargetCount)
	}
	if cfg.ReadCacheTTL < 0 {
		return fmt.Errorf("%w: ReadCacheTTL must be >= 0, got %v", ErrInvalidConfig, cfg.ReadCacheTTL)
	}
	if cfg.OperationTimeout <= 0 {
		return fmt.Errorf("%w: OperationTimeout must be > 0, got %v", ErrInvalidConfig, cfg.OperationTimeout)
	}
	if cfg.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: Retry.MaxAttempts must be >= 1, got %d", ErrInvalidConfig, cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.Multiplier < 1 {
		return fmt.Errorf("%w: Retry.Multiplier must be >= 1, got %v", ErrInvalidConfig, cfg.Retry.Multiplier)
	}
	if cfg.Retry.BaseDelay > cfg.Retry.MaxDelay {
		return fmt.Errorf("%w: Retry.BaseDelay (%v) must be <= Retry.MaxDelay (%v)",
			ErrInvalidConfig, cfg.Retry.BaseDelay, cfg.Retry.MaxDelay)
	}

	if err := checkNames("Schema.Symptoms", cfg.Schema.Symptoms, true); err != nil {
		return err
	}
	if err := checkNames("Schema.ScoreValues", cfg.Schema.ScoreValues, false); err != nil {
		return err
	}
	if err := checkNames("Schema.QualFields", cfg.Schema.QualFields, true); err != nil {
		return err
	}

	return nil
}

func checkNames(field string, names []string, noReserved bool) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			return fmt.Errorf("%w: %s contains an empty name", ErrInvalidConfig, field)
		}
		if noReserved && types.IsReservedField(n) {
			return fmt.Errorf("%w: %s name %q is reserved", ErrInvalidConfig, field, n)
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: %s contains %q twice", ErrInvalidConfig, field, n)
		}
		seen[n] = struct{}{}
	}

	return nil
}

// ValidateWithWarnings checks configuration and logs warnings for non-recommended values.
//
// This is called after Validate() in NewCoordinator() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.ReadCacheTTL > 30*time.Second {
		logger.Warn(
			"ReadCacheTTL is long, other processes' submissions may be invisible for a while",
			"readCacheTtl", cfg.ReadCacheTTL,
			"recommended", "5s or lower",
		)
	}

	if cfg.QualTargetCount == 0 {
		logger.Warn("qualitative phase disabled", "qualTargetCount", 0)
	}

	if cfg.Retry.MaxDelay > cfg.OperationTimeout {
		logger.Warn(
			"Retry.MaxDelay exceeds OperationTimeout, retries may outlast the caller",
			"maxDelay", cfg.Retry.MaxDelay,
			"operationTimeout", cfg.OperationTimeout,
		)
	}
}

// LabelSchema builds the required dimensions from the schema configuration.
//
// Returns:
//   - types.LabelSchema: One dimension per symptom (scores restricted) and
//     per qualitative field (any non-blank value)
func (cfg *Config) LabelSchema() types.LabelSchema {
	schema := types.LabelSchema{
		Quant: make([]types.Dimension, 0, len(cfg.Schema.Symptoms)),
		Qual:  make([]types.Dimension, 0, len(cfg.Schema.QualFields)),
	}
	for _, s := range cfg.Schema.Symptoms {
		schema.Quant = append(schema.Quant, types.Dimension{Name: s, Allowed: slices.Clone(cfg.Schema.ScoreValues)})
	}
	for _, f := range cfg.Schema.QualFields {
		schema.Qual = append(schema.Qual, types.Dimension{Name: f})
	}

	return schema
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Retries back off in single milliseconds and the read cache is disabled so
// every call observes the store directly. Use DefaultConfig() for production.
//
// Returns:
//   - Config: Configuration with fast timings for tests
//
// Example:
//
//	cfg := slogeval.TestConfig()
//	cfg.QualTargetCount = 2
//	coord, err := slogeval.NewCoordinator(&cfg, src, store)
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.ReadCacheTTL = 0
	cfg.OperationTimeout = 2 * time.Second
	cfg.Retry.BaseDelay = 1 * time.Millisecond
	cfg.Retry.MaxDelay = 5 * time.Millisecond

	return cfg
}
