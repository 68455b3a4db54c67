package planning

import (
	"fmt"
	"time"
)

// Config is the configuration for the Engine.
//
// All duration fields accept standard Go duration strings like "800ms", "3s".
type Config struct {
	// ResolveRetryDelay is how long an unresolved selection message waits
	// before its next resolution attempt. Absorbs the race where a selection
	// arrives before the corresponding grid row has loaded.
	// Recommended: 800 milliseconds.
	ResolveRetryDelay time.Duration `yaml:"resolveRetryDelay"`

	// MaxResolveAttempts is how many times an unresolved message is retried
	// before being dropped. Retries apply to resolution only; creation and
	// assignment failures are terminal.
	// Recommended: 5.
	MaxResolveAttempts int `yaml:"maxResolveAttempts"`

	// AssignCooldown is the window after an assignment during which repeated
	// assignment attempts for the same row are suppressed. Guards against
	// duplicate assignments from rapid repeated events, e.g. a status poll
	// firing mid-assignment.
	// Recommended: 5 seconds.
	AssignCooldown time.Duration `yaml:"assignCooldown"`

	// PollInterval is the status poller cadence. The first tick runs
	// immediately on start.
	// Recommended: 3 seconds.
	PollInterval time.Duration `yaml:"pollInterval"`

	// OperationTimeout bounds each backend call (create, assign, fetch).
	// Recommended: 10 seconds.
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// MinCapacity is the capacity auto-filled on a row that is created on
	// demand with no capacity set. Zero-capacity sections are rejected by the
	// backend, so the engine fills the minimum rather than failing.
	// Recommended: 1.
	MinCapacity int `yaml:"minCapacity"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		ResolveRetryDelay:  800 * time.Millisecond,
		MaxResolveAttempts: 5,
		AssignCooldown:     5 * time.Second,
		PollInterval:       3 * time.Second,
		OperationTimeout:   10 * time.Second,
		MinCapacity:        1,
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.ResolveRetryDelay == 0 {
		cfg.ResolveRetryDelay = defaults.ResolveRetryDelay
	}
	if cfg.MaxResolveAttempts == 0 {
		cfg.MaxResolveAttempts = defaults.MaxResolveAttempts
	}
	if cfg.AssignCooldown == 0 {
		cfg.AssignCooldown = defaults.AssignCooldown
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = defaults.PollInterval
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}
	if cfg.MinCapacity == 0 {
		cfg.MinCapacity = defaults.MinCapacity
	}
}

// Validate checks configuration constraints and returns an error for invalid
// values.
//
// Rules:
//   - ResolveRetryDelay > 0
//   - MaxResolveAttempts >= 1
//   - AssignCooldown >= 0
//   - PollInterval > 0
//   - OperationTimeout > 0
//   - MinCapacity >= 1
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.ResolveRetryDelay <= 0 {
		return fmt.Errorf("ResolveRetryDelay must be > 0, got %v", cfg.ResolveRetryDelay)
	}
	if cfg.MaxResolveAttempts < 1 {
		return fmt.Errorf("MaxResolveAttempts must be >= 1, got %d", cfg.MaxResolveAttempts)
	}
	if cfg.AssignCooldown < 0 {
		return fmt.Errorf("AssignCooldown must be >= 0, got %v", cfg.AssignCooldown)
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("PollInterval must be > 0, got %v", cfg.PollInterval)
	}
	if cfg.OperationTimeout <= 0 {
		return fmt.Errorf("OperationTimeout must be > 0, got %v", cfg.OperationTimeout)
	}
	if cfg.MinCapacity < 1 {
		return fmt.Errorf("MinCapacity must be >= 1, got %d", cfg.MinCapacity)
	}

	return nil
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Timings are 50-100x faster than production defaults to enable rapid
// iteration without sacrificing coverage. Use DefaultConfig() for production.
//
// Returns:
//   - Config: Configuration with fast timings for tests
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.ResolveRetryDelay = 10 * time.Millisecond
	cfg.AssignCooldown = 100 * time.Millisecond
	cfg.PollInterval = 20 * time.Millisecond
	cfg.OperationTimeout = time.Second

	return cfg
}
