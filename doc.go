// Package planning provides a reconciliation engine that keeps an academic
// planning grid consistent with teacher selections made on a separate page.
//
// The planning grid (course sections, schedules, capacities) and the
// teacher-selection screen are independent surfaces that communicate only
// through a selection channel. The engine consumes selection messages,
// resolves them to grid rows, creates sections on demand, assigns teachers
// through the backend, and polls assignment confirmation status.
//
// # Quick Start
//
// Basic usage with default settings:
//
//	import (
//	    "github.com/ElCzar/secchub-planning"
//	    "github.com/ElCzar/secchub-planning/backend"
//	    "github.com/ElCzar/secchub-planning/grid"
//	    "github.com/ElCzar/secchub-planning/selection"
//	)
//
//	client, _ := backend.NewClient(backend.ClientConfig{BaseURL: apiURL, Token: token})
//	store := grid.New()
//	bus := selection.NewChannel()
//
//	cfg := planning.DefaultConfig()
//	eng, err := planning.New(&cfg, store, bus, client)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := eng.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Stop()
//
//	if err := eng.Hydrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Key Features
//
//   - Buffered replay: Selections published before the grid finishes loading
//     stay on the channel and are applied in publish order after Hydrate
//   - Layered resolution: Exact backend-ID match, positional fallback, and
//     fuzzy course/section matching survive reloads and reordering
//   - Create on demand: Selections targeting unpersisted rows create the
//     section first and adopt its backend identity
//   - Assignment guards: Per-teacher deduplication and a per-row cooldown
//     prevent duplicate assign calls
//   - Bounded retry: Unresolvable messages are retried a fixed number of
//     times and then dropped, never blocking the channel
//
// # Message Flow
//
// A selection message progresses through a defined state machine:
//
//	Received → Resolved → (Created) → Assigned → Cleared
//
// When resolution fails the message is re-enqueued with a delay:
//
//	Received → Retrying → ... → Dropped
//
// Creation and assignment failures are terminal for the triggering message;
// the backend calls are not idempotent and are never blindly retried.
//
// # Cross-Process Channel
//
// The default in-memory channel works within a single process. For
// selections that must survive page handoffs across processes, use the NATS
// KV backed channel:
//
//	js, _ := jetstream.New(natsConn)
//	bus, err := selection.NewKVChannel(ctx, js, selection.DefaultKVChannelConfig())
//
// # Observability
//
// Structured logging, Prometheus metrics, and lifecycle hooks are wired
// through options:
//
//	collector, err := planning.NewPrometheusMetrics(registry, "secchub")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	eng, err := planning.New(&cfg, store, bus, client,
//	    planning.WithLogger(planning.NewSlogLogger(slogLogger)),
//	    planning.WithMetrics(collector),
//	    planning.WithHooks(&planning.Hooks{
//	        OnTeacherAssigned: func(ctx context.Context, row planning.SectionRow, t planning.TeacherRef) error {
//	            notify(row, t)
//	            return nil
//	        },
//	    }),
//	)
package planning
