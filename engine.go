package planning

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ElCzar/secchub-planning/backend"
	"github.com/ElCzar/secchub-planning/grid"
	"github.com/ElCzar/secchub-planning/internal/hooks"
	"github.com/ElCzar/secchub-planning/internal/hours"
	"github.com/ElCzar/secchub-planning/internal/logging"
	"github.com/ElCzar/secchub-planning/internal/metrics"
	"github.com/ElCzar/secchub-planning/internal/poll"
	"github.com/ElCzar/secchub-planning/resolve"
	"github.com/ElCzar/secchub-planning/selection"
	"github.com/ElCzar/secchub-planning/types"
)

// Drop reasons reported through Hooks.OnMessageDropped.
const (
	DropReasonUnresolved   = "unresolved"
	DropReasonCreateFailed = "create_failed"
	DropReasonAssignFailed = "assign_failed"
)

// Engine reconciles teacher selections with the planning grid.
//
// Engine is the main entry point of the library. It handles:
//   - Consuming selection messages from the cross-page channel
//   - Resolving class keys to grid rows through the identity resolver
//   - Creating sections on demand for rows without backend identity
//   - Assigning teachers with deduplication and a cooldown guard
//   - Bounded retry of messages whose row has not loaded yet
//   - Periodic status polling with an immediate refresh after assignments
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - Grid mutations are serialized by the grid store; messages are
//     processed one at a time in publish order
//
// Lifecycle:
//   - Create with New()
//   - Call Start() to begin consuming selections and polling
//   - Call Hydrate() (or MarkLoaded() after a caller-side load) to end
//     buffering and replay pending selections
//   - Call Stop() for graceful shutdown
type Engine struct {
	cfg      Config
	store    *grid.Store
	bus      selection.Bus
	svc      backend.Service
	resolver *resolve.Resolver

	// Optional dependencies
	clock   types.Clock
	hooks   *types.Hooks
	metrics types.MetricsCollector
	logger  types.Logger

	// Internal components
	poller *poll.Poller

	// State management
	loaded atomic.Bool
	kickCh chan struct{}

	// Retry scheduling; keys with a pending timer are skipped on snapshot
	// processing until the timer republishes them.
	retryMu     sync.Mutex
	retryTimers map[string]*time.Timer

	// Lifecycle management
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	unsubscribe func()
}

// New creates a new Engine instance with the provided configuration.
//
// Returns a concrete *Engine following the "accept interfaces, return
// structs" principle. Consumers can define their own interfaces for testing.
//
// Parameters:
//   - cfg: Runtime configuration with parsed durations
//   - store: Grid store shared with the rendering layer
//   - bus: Selection channel (in-memory or NATS KV backed)
//   - svc: Backend section/assignment service
//   - opts: Optional configuration (resolver, clock, hooks, metrics, logger)
//
// Returns:
//   - *Engine: Initialized engine instance
//   - error: Validation error if configuration or dependencies are invalid
//
// Example:
//
//	cfg := planning.DefaultConfig()
//	store := grid.New()
//	bus := selection.NewChannel()
//	eng, err := planning.New(&cfg, store, bus, client)
func New(cfg *Config, store *grid.Store, bus selection.Bus, svc backend.Service, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if store == nil {
		return nil, ErrGridStoreRequired
	}
	if bus == nil {
		return nil, ErrSelectionBusRequired
	}
	if svc == nil {
		return nil, ErrBackendServiceRequired
	}

	SetDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	options := &engineOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Safe defaults for optional dependencies avoid nil checks everywhere.
	resolver := options.resolver
	if resolver == nil {
		resolver = resolve.NewDefault()
	}

	clock := options.clock
	if clock == nil {
		clock = types.SystemClock{}
	}

	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	hooksInstance := options.hooks
	if hooksInstance == nil {
		nopHooks := hooks.NewNop()
		hooksInstance = &nopHooks
	} else {
		// Work on a copy; the caller keeps ownership of the passed struct.
		hooksCopy := *hooksInstance
		fillNilHooks(&hooksCopy)
		hooksInstance = &hooksCopy
	}

	e := &Engine{
		cfg:         *cfg,
		store:       store,
		bus:         bus,
		svc:         svc,
		resolver:    resolver,
		clock:       clock,
		hooks:       hooksInstance,
		metrics:     metricsCollector,
		logger:      loggerInstance,
		retryTimers: make(map[string]*time.Timer),
		kickCh:      make(chan struct{}, 1),
	}
	e.poller = poll.New(store, svc, cfg.PollInterval, cfg.OperationTimeout, loggerInstance, metricsCollector)

	return e, nil
}

// fillNilHooks replaces nil hook fields with no-ops.
func fillNilHooks(h *types.Hooks) {
	nop := hooks.NewNop()
	if h.OnTeacherAssigned == nil {
		h.OnTeacherAssigned = nop.OnTeacherAssigned
	}
	if h.OnMessageDropped == nil {
		h.OnMessageDropped = nop.OnMessageDropped
	}
	if h.OnError == nil {
		h.OnError = nop.OnError
	}
}

// Start begins consuming selection messages and polling statuses.
//
// Messages published before the grid is marked loaded are buffered on the
// channel and replayed in publish order once Hydrate() or MarkLoaded()
// completes.
//
// Parameters:
//   - ctx: Parent context; cancelling it tears the engine down
//
// Returns:
//   - error: ErrAlreadyStarted if already running, or poller startup error
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ctx != nil {
		return ErrAlreadyStarted
	}

	e.ctx, e.cancel = context.WithCancel(ctx)

	if err := e.poller.Start(e.ctx); err != nil {
		e.cancel()
		e.ctx = nil
		e.cancel = nil

		return fmt.Errorf("failed to start status poller: %w", err)
	}

	snapCh, unsubscribe := e.bus.Subscribe()
	e.unsubscribe = unsubscribe

	e.wg.Add(1)
	go e.dispatchLoop(snapCh)

	e.logger.Info("reconciliation engine started",
		"pollInterval", e.cfg.PollInterval,
		"retryDelay", e.cfg.ResolveRetryDelay,
		"maxAttempts", e.cfg.MaxResolveAttempts,
	)

	return nil
}

// Stop gracefully shuts down the engine.
//
// Stops the poller, cancels pending retry timers, and waits for in-flight
// message processing to finish. Safe to call once; subsequent calls return
// ErrNotStarted.
//
// Returns:
//   - error: ErrNotStarted if the engine was never started
func (e *Engine) Stop() error {
	e.mu.Lock()
	if e.ctx == nil {
		e.mu.Unlock()
		return ErrNotStarted
	}
	cancel := e.cancel
	unsubscribe := e.unsubscribe
	e.ctx = nil
	e.cancel = nil
	e.unsubscribe = nil
	e.mu.Unlock()

	cancel()

	// Teardown stops retry rescheduling for pending messages.
	e.retryMu.Lock()
	for key, timer := range e.retryTimers {
		timer.Stop()
		delete(e.retryTimers, key)
	}
	e.retryMu.Unlock()

	if err := e.poller.Stop(); err != nil {
		e.logger.Warn("failed to stop status poller", "error", err)
	}

	unsubscribe()
	e.wg.Wait()

	e.logger.Info("reconciliation engine stopped")

	return nil
}

// Hydrate loads the section list from the backend into the grid, marks the
// grid loaded, and replays any selections buffered during loading.
//
// Prior local-only edits are not preserved; pending selections on the
// channel are re-applied by the replay.
//
// Parameters:
//   - ctx: Context for the backend fetch
//
// Returns:
//   - error: Fetch error; the grid is left unchanged on failure
func (e *Engine) Hydrate(ctx context.Context) error {
	fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.OperationTimeout)
	defer cancel()

	rows, err := e.svc.ListSections(fetchCtx)
	if err != nil {
		return fmt.Errorf("failed to load sections: %w", err)
	}

	e.store.LoadRows(rows)
	e.store.EnsureEditableRow()
	e.logger.Info("grid hydrated", "rows", len(rows))

	e.MarkLoaded()

	return nil
}

// MarkLoaded marks the grid as loaded and replays buffered selections in
// publish order. Used instead of Hydrate when the caller fills the grid
// itself.
func (e *Engine) MarkLoaded() {
	e.loaded.Store(true)

	// Kick the dispatch loop so the buffered snapshot is reprocessed. All
	// message handling stays on the dispatch goroutine; a send is dropped
	// when a kick is already pending.
	select {
	case e.kickCh <- struct{}{}:
	default:
	}
}

// GridLoaded reports whether initial loading has completed.
func (e *Engine) GridLoaded() bool {
	return e.loaded.Load()
}

// ForceRefresh schedules an immediate status poll tick.
func (e *Engine) ForceRefresh() {
	e.poller.ForceRefresh()
}

// Grid returns the engine's grid store (the read model for rendering).
func (e *Engine) Grid() *grid.Store {
	return e.store
}

// Selections returns the engine's selection bus, exposed to the
// teacher-selection screen for publishing choices.
func (e *Engine) Selections() selection.Bus {
	return e.bus
}

// dispatchLoop consumes snapshots from the selection bus.
//
// The loop keeps the latest snapshot so a kick (grid finished loading) can
// replay messages buffered while loading without a fresh bus notification.
func (e *Engine) dispatchLoop(snapCh <-chan selection.Snapshot) {
	defer e.wg.Done()

	var last selection.Snapshot
	for {
		select {
		case snap, ok := <-snapCh:
			if !ok {
				return
			}
			last = snap
			e.processSnapshot(snap)
		case <-e.kickCh:
			e.processSnapshot(last)
		}
	}
}

// processSnapshot applies pending messages in publish order.
//
// While the grid has not finished loading, messages stay buffered on the
// bus; the loop only counts them. Messages with a pending retry timer are
// skipped until the timer republishes them.
func (e *Engine) processSnapshot(snap selection.Snapshot) {
	pending := snap.Pending()

	if !e.loaded.Load() {
		e.metrics.RecordBuffered(len(pending))
		return
	}
	e.metrics.RecordBuffered(0)

	for _, msg := range pending {
		if e.retryScheduled(msg.ClassKey) {
			continue
		}
		e.handleMessage(msg)
	}
}

// handleMessage runs one selection message through the reconciliation state
// machine.
func (e *Engine) handleMessage(msg types.SelectionMessage) {
	ctx := e.runCtx()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	e.metrics.RecordMessageState(types.MessageReceived)

	// Step 1: resolve the class key to a row.
	index, strategy, ok := e.resolver.Resolve(msg.ClassKey, e.store.Rows())
	e.metrics.RecordResolution(strategy, ok)
	if !ok {
		e.handleUnresolved(ctx, msg)
		return
	}
	e.metrics.RecordMessageState(types.MessageResolved)

	row, found := e.store.Row(index)
	if !found {
		e.handleUnresolved(ctx, msg)
		return
	}

	// Step 2: create the section on demand.
	if row.BackendID == 0 {
		created, err := e.createSection(ctx, index)
		if err != nil {
			e.logger.Error("section creation failed, dropping selection",
				"messageId", msg.ID, "classKey", msg.ClassKey, "error", err)
			e.dropMessage(ctx, msg, DropReasonCreateFailed, err)

			return
		}
		row = created
		e.metrics.RecordMessageState(types.MessageCreated)
	}

	// Step 3: deduplication guard. The cooldown is evaluated once against
	// the row's state before this message; assignments made below must not
	// suppress each other.
	now := e.clock.Now()
	cooldownActive := !row.LastAssignedAt.IsZero() && now.Sub(row.LastAssignedAt) < e.cfg.AssignCooldown

	assigned := 0
	failed := 0
	for _, teacher := range msg.Teachers {
		if row.HasTeacher(teacher.ID) {
			e.metrics.RecordDeduplicated("duplicate")
			e.logger.Debug("teacher already assigned, skipping",
				"classKey", msg.ClassKey, "teacherId", teacher.ID)

			continue
		}
		if cooldownActive {
			e.metrics.RecordDeduplicated("cooldown")
			e.logger.Debug("assignment cooldown active, skipping",
				"classKey", msg.ClassKey, "teacherId", teacher.ID)

			continue
		}

		// Step 4: the assign call.
		if err := e.assignTeacher(ctx, index, &row, teacher, msg, now); err != nil {
			failed++
			continue
		}
		assigned++
	}

	if assigned > 0 {
		// Shrink the window where the grid shows a stale confirmation state.
		e.poller.ForceRefresh()
	}

	// Step 5/6: the message is cleared on success and on assignment failure
	// alike. An uncleared message would be resubmitted forever; assignment
	// failures are terminal because the backend call is not idempotent.
	if err := e.bus.Clear(msg.ClassKey); err != nil {
		e.logger.Warn("failed to clear selection", "classKey", msg.ClassKey, "error", err)
	}
	e.metrics.RecordMessageState(types.MessageCleared)

	if failed > 0 {
		e.runHook("OnMessageDropped", func() error {
			return e.hooks.OnMessageDropped(ctx, msg, DropReasonAssignFailed)
		})
	}
}

// handleUnresolved retries a message with budget left and drops it otherwise.
func (e *Engine) handleUnresolved(ctx context.Context, msg types.SelectionMessage) {
	if msg.RetryCount >= e.cfg.MaxResolveAttempts {
		e.logger.Warn("selection never resolved, dropping",
			"messageId", msg.ID, "classKey", msg.ClassKey, "attempts", msg.RetryCount)
		e.dropMessage(ctx, msg, DropReasonUnresolved, nil)

		return
	}

	e.metrics.RecordMessageState(types.MessageRetrying)
	e.metrics.RecordRetryScheduled(msg.RetryCount + 1)
	e.scheduleRetry(msg)
}

// scheduleRetry re-enqueues msg after the configured delay with an
// incremented retry count. The timer is cancelled on engine teardown.
func (e *Engine) scheduleRetry(msg types.SelectionMessage) {
	e.retryMu.Lock()
	defer e.retryMu.Unlock()

	if _, exists := e.retryTimers[msg.ClassKey]; exists {
		return
	}

	next := msg
	next.RetryCount++

	e.retryTimers[msg.ClassKey] = time.AfterFunc(e.cfg.ResolveRetryDelay, func() {
		e.retryMu.Lock()
		delete(e.retryTimers, msg.ClassKey)
		e.retryMu.Unlock()

		if ctx := e.runCtx(); ctx == nil || ctx.Err() != nil {
			return
		}
		if err := e.bus.Republish(next); err != nil {
			e.logger.Warn("failed to republish selection", "classKey", next.ClassKey, "error", err)
		}
	})
}

// retryScheduled reports whether a retry timer is pending for key.
func (e *Engine) retryScheduled(key string) bool {
	e.retryMu.Lock()
	defer e.retryMu.Unlock()

	_, ok := e.retryTimers[key]

	return ok
}

// dropMessage clears msg from the bus and reports the drop.
func (e *Engine) dropMessage(ctx context.Context, msg types.SelectionMessage, reason string, cause error) {
	if err := e.bus.Clear(msg.ClassKey); err != nil {
		e.logger.Warn("failed to clear dropped selection", "classKey", msg.ClassKey, "error", err)
	}
	e.metrics.RecordMessageState(types.MessageDropped)

	e.runHook("OnMessageDropped", func() error {
		return e.hooks.OnMessageDropped(ctx, msg, reason)
	})
	if cause != nil {
		e.runHook("OnError", func() error {
			return e.hooks.OnError(ctx, cause)
		})
	}
}

// createSection validates the row at index and invokes the backend create
// operation. On success the row adopts the returned backend identity and any
// defaults that were filled; a failed creation leaves the row exactly as the
// user last saw it.
func (e *Engine) createSection(ctx context.Context, index int) (types.SectionRow, error) {
	row, ok := e.store.Row(index)
	if !ok {
		e.metrics.RecordSectionCreated(false)
		return types.SectionRow{}, ErrRowNotFound
	}

	// Fields with no safe default must be present.
	if row.CourseName == "" || row.Section == "" {
		e.metrics.RecordSectionCreated(false)
		return types.SectionRow{}, fmt.Errorf("row %d is missing course name or section", index)
	}

	// Obviously-missing but safe defaults are filled on the outgoing payload
	// only; the grid row is not touched until the backend accepts.
	row.State = types.RowNew
	if row.Capacity < e.cfg.MinCapacity {
		row.Capacity = e.cfg.MinCapacity
	}

	opCtx, cancel := context.WithTimeout(ctx, e.cfg.OperationTimeout)
	defer cancel()

	created, err := e.svc.CreateSection(opCtx, row)
	e.metrics.RecordSectionCreated(err == nil)
	if err != nil {
		return types.SectionRow{}, fmt.Errorf("failed to create section: %w", err)
	}

	e.store.Update(index, func(r *types.SectionRow) {
		r.Capacity = row.Capacity
	})
	e.store.AdoptBackendID(index, created.BackendID)
	e.logger.Info("section created on demand",
		"course", row.CourseName, "section", row.Section, "backendId", created.BackendID)

	row, _ = e.store.Row(index)

	return row, nil
}

// assignTeacher performs one assign call and merges the result into the grid.
func (e *Engine) assignTeacher(ctx context.Context, index int, row *types.SectionRow, teacher types.TeacherRef, msg types.SelectionMessage, now time.Time) error {
	load := hours.Compute(row.Schedules)

	opCtx, cancel := context.WithTimeout(ctx, e.cfg.OperationTimeout)
	defer cancel()

	ref, err := e.svc.AssignTeacher(opCtx, row.BackendID, teacher.ID, load, msg.Observation)
	e.metrics.RecordAssignment(err == nil)
	if err != nil {
		// Terminal: the call may have had effect; retrying risks duplicates.
		wrapped := fmt.Errorf("failed to assign teacher %d to section %d: %w", teacher.ID, row.BackendID, err)
		e.logger.Error("teacher assignment failed",
			"messageId", msg.ID, "classKey", msg.ClassKey,
			"teacherId", teacher.ID, "backendId", row.BackendID, "error", err)
		e.runHook("OnError", func() error {
			return e.hooks.OnError(ctx, wrapped)
		})

		return wrapped
	}

	// The backend response may omit display fields; keep what the selection
	// page knew.
	if ref.Name == "" {
		ref.Name = teacher.Name
	}
	if ref.AvailableHours == 0 {
		ref.AvailableHours = teacher.AvailableHours
	}
	if ref.AssignedHours == 0 {
		ref.AssignedHours = load
	}

	e.store.AddTeacher(index, ref)
	e.store.MarkAssigned(index, now)
	*row, _ = e.store.Row(index)

	e.metrics.RecordMessageState(types.MessageAssigned)
	e.logger.Info("teacher assigned",
		"classKey", msg.ClassKey, "teacherId", ref.ID, "backendId", row.BackendID, "hours", load)

	rowCopy := row.Clone()
	e.runHook("OnTeacherAssigned", func() error {
		return e.hooks.OnTeacherAssigned(ctx, rowCopy, ref)
	})

	return nil
}

// SaveRow persists the row at index: creates it when New, updates it when
// Existing. Rows flagged as editing are skipped, matching auto-save-on-blur
// semantics.
//
// Parameters:
//   - ctx: Context for the backend call
//   - index: Row index
//
// Returns:
//   - error: ErrRowNotFound, or the backend error
func (e *Engine) SaveRow(ctx context.Context, index int) error {
	row, ok := e.store.Row(index)
	if !ok {
		return ErrRowNotFound
	}
	if row.Editing || row.State == types.RowDeleted {
		return nil
	}

	if row.BackendID == 0 {
		_, err := e.createSection(ctx, index)
		return err
	}

	opCtx, cancel := context.WithTimeout(ctx, e.cfg.OperationTimeout)
	defer cancel()

	if _, err := e.svc.UpdateSection(opCtx, row.BackendID, row); err != nil {
		return fmt.Errorf("failed to update section %d: %w", row.BackendID, err)
	}

	return nil
}

// DeleteRow marks the row at index deleted and cascades a backend delete for
// persisted rows.
//
// Parameters:
//   - ctx: Context for the backend call
//   - index: Row index
//
// Returns:
//   - error: ErrRowNotFound, or the backend error
func (e *Engine) DeleteRow(ctx context.Context, index int) error {
	row, ok := e.store.MarkDeleted(index)
	if !ok {
		return ErrRowNotFound
	}

	if row.BackendID != 0 {
		opCtx, cancel := context.WithTimeout(ctx, e.cfg.OperationTimeout)
		defer cancel()

		if err := e.svc.DeleteSection(opCtx, row.BackendID); err != nil {
			return fmt.Errorf("failed to delete section %d: %w", row.BackendID, err)
		}
	}

	e.store.EnsureEditableRow()

	return nil
}

// runCtx returns the engine's lifecycle context, nil when stopped.
func (e *Engine) runCtx() context.Context {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.ctx
}

// runHook invokes a hook asynchronously; hook errors are logged, never fatal.
func (e *Engine) runHook(name string, fn func() error) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := fn(); err != nil {
			e.logger.Warn("hook failed", "hook", name, "error", err)
		}
	}()
}
