package planning

import (
	"github.com/ElCzar/secchub-planning/resolve"
	"github.com/ElCzar/secchub-planning/types"
)

// Option configures an Engine with optional dependencies.
type Option func(*engineOptions)

// engineOptions holds optional Engine configuration.
type engineOptions struct {
	resolver *resolve.Resolver
	clock    types.Clock
	hooks    *types.Hooks
	metrics  types.MetricsCollector
	logger   types.Logger
}

// WithResolver sets a custom identity resolver.
//
// The default resolver runs the standard chain: exact identity match, then
// positional match, then fuzzy match.
//
// Parameters:
//   - resolver: Resolver instance
//
// Returns:
//   - Option: Functional option for New
func WithResolver(resolver *resolve.Resolver) Option {
	return func(o *engineOptions) {
		o.resolver = resolver
	}
}

// WithClock sets the clock used for cooldown comparisons.
//
// Defaults to the system clock. Tests inject a manual clock to make cooldown
// behavior deterministic.
//
// Parameters:
//   - clock: Clock implementation
//
// Returns:
//   - Option: Functional option for New
func WithClock(clock types.Clock) Option {
	return func(o *engineOptions) {
		o.clock = clock
	}
}

// WithHooks sets lifecycle event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions (nil fields are no-ops)
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	hooks := &planning.Hooks{
//	    OnTeacherAssigned: func(ctx context.Context, row planning.SectionRow, t planning.TeacherRef) error {
//	        return notifyUI(row, t)
//	    },
//	}
//	eng, err := planning.New(&cfg, store, bus, svc, planning.WithHooks(hooks))
func WithHooks(hooks *types.Hooks) Option {
	return func(o *engineOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for New
func WithMetrics(metrics types.MetricsCollector) Option {
	return func(o *engineOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for New
func WithLogger(logger types.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}
