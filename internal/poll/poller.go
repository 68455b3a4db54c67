package poll

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ElCzar/secchub-planning/backend"
	"github.com/ElCzar/secchub-planning/grid"
	"github.com/ElCzar/secchub-planning/types"
)

// Common errors for poller operations.
var (
	ErrNotStarted     = errors.New("poller not started")
	ErrAlreadyStarted = errors.New("poller already started")
)

// Poller periodically fetches authoritative per-teacher confirmation status
// and merges it into the grid.
//
// A tick collects the backend identities currently present in the grid,
// skips the network call entirely when there are none, and otherwise merges
// the fetched batch under the grid's merge rule (only differing status
// fields change). Fetch errors skip the merge for that tick and the schedule
// continues unchanged: no backoff growth, no cancellation.
type Poller struct {
	store    *grid.Store
	svc      backend.Service
	interval time.Duration
	timeout  time.Duration
	logger   types.Logger
	metrics  types.PollerMetrics

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	forceCh chan struct{}
	ticker  *time.Ticker
}

// New creates a status poller.
//
// Parameters:
//   - store: Grid to merge statuses into
//   - svc: Backend service to fetch from
//   - interval: Poll cadence (typically 3s)
//   - timeout: Per-fetch timeout
//   - logger: Logger for skipped ticks
//   - metrics: Poller metrics collector
//
// Returns:
//   - *Poller: New poller instance
func New(store *grid.Store, svc backend.Service, interval, timeout time.Duration, logger types.Logger, metrics types.PollerMetrics) *Poller {
	return &Poller{
		store:    store,
		svc:      svc,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		metrics:  metrics,
		forceCh:  make(chan struct{}, 1),
	}
}

// Start begins polling in the background.
//
// Runs the first tick immediately, then at regular intervals. Continues until
// Stop() is called or ctx is cancelled; the poller's lifetime is tied to ctx
// so tearing down the owning engine always stops the schedule.
//
// Parameters:
//   - ctx: Context bounding the poller's lifetime
//
// Returns:
//   - error: ErrAlreadyStarted if already running
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return ErrAlreadyStarted
	}

	// Fresh channels per run; a restarted poller must not observe the
	// previous run's closed stop channel.
	p.started = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.ticker = time.NewTicker(p.interval)

	go p.loop(ctx, p.stopCh, p.doneCh, p.ticker)

	return nil
}

// Stop stops the poller.
//
// Blocks until the polling goroutine exits.
//
// Returns:
//   - error: ErrNotStarted if not running
func (p *Poller) Stop() error {
	p.mu.Lock()

	if !p.started {
		p.mu.Unlock()
		return ErrNotStarted
	}

	p.ticker.Stop()
	close(p.stopCh)
	p.started = false
	doneCh := p.doneCh

	p.mu.Unlock()

	<-doneCh

	return nil
}

// ForceRefresh schedules an immediate tick.
//
// Used right after a local assignment to shorten the window where the grid
// shows a stale confirmation state. Non-blocking; coalesces with an already
// pending refresh.
func (p *Poller) ForceRefresh() {
	select {
	case p.forceCh <- struct{}{}:
	default:
	}
}

// loop is the background goroutine driving the poll schedule. The channels
// and ticker are passed in rather than read from the struct so a restart
// cannot hand this run another run's channels.
func (p *Poller) loop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}, ticker *time.Ticker) {
	defer close(doneCh)
	defer ticker.Stop()

	// First tick runs immediately.
	p.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-p.forceCh:
			p.tick(ctx)
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick runs one fetch-and-merge cycle.
func (p *Poller) tick(ctx context.Context) {
	ids := p.store.BackendIDs()
	if len(ids) == 0 {
		return
	}

	start := time.Now()
	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	statuses, err := p.svc.FetchAssignmentStatus(fetchCtx, ids)
	cancel()

	if err != nil {
		// Transient by definition; the next tick proceeds unaffected.
		p.logger.Warn("status fetch failed, skipping merge", "error", err, "sections", len(ids))
		p.metrics.RecordPollTick(false, time.Since(start).Seconds())

		return
	}

	changed := p.store.MergeStatuses(statuses)
	p.metrics.RecordPollTick(true, time.Since(start).Seconds())
	p.metrics.RecordStatusChanged(changed)

	if changed > 0 {
		p.logger.Debug("merged confirmation statuses", "changed", changed, "sections", len(ids))
	}
}

// IsStarted returns whether the poller is currently running.
func (p *Poller) IsStarted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.started
}
