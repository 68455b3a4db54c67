package selection

import (
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/ElCzar/secchub-planning/types"
)

// Channel is the in-memory Bus implementation.
//
// One message is held per class key; publishing to an occupied key overwrites
// the message but keeps the key's original publish-order position. All
// methods are safe for concurrent use.
type Channel struct {
	mu       sync.Mutex
	messages map[string]types.SelectionMessage
	order    []string

	// Fan-out to subscribers
	subscribers      *xsync.Map[uint64, *subscriber]
	nextSubscriberID atomic.Uint64

	metrics types.ChannelMetrics
}

var _ Bus = (*Channel)(nil)

// subscriber is a helper for managing snapshot subscriptions.
type subscriber struct {
	ch     chan Snapshot
	mu     sync.Mutex
	closed bool
}

// trySend delivers a snapshot without blocking; a slow subscriber skips this
// update and observes the next one.
func (s *subscriber) trySend(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	select {
	case s.ch <- snap:
	default:
		// Drain the stale snapshot and replace it with the current one so a
		// lagging subscriber still ends up with the latest state.
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- snap:
		default:
		}
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// NewChannel creates an empty in-memory selection channel.
//
// Parameters:
//   - opts: Optional configuration (metrics)
//
// Returns:
//   - *Channel: Initialized channel
func NewChannel(opts ...ChannelOption) *Channel {
	c := &Channel{
		messages:    make(map[string]types.SelectionMessage),
		subscribers: xsync.NewMap[uint64, *subscriber](),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ChannelOption configures a Channel.
type ChannelOption func(*Channel)

// WithChannelMetrics sets a metrics collector for the channel.
func WithChannelMetrics(metrics types.ChannelMetrics) ChannelOption {
	return func(c *Channel) {
		c.metrics = metrics
	}
}

// Publish appends or overwrites the message for classKey and notifies
// subscribers. See Bus.Publish.
func (c *Channel) Publish(classKey string, teachers []types.TeacherRef, opts PublishOptions) (types.SelectionMessage, error) {
	msg := newMessage(classKey, teachers, opts)

	c.mu.Lock()
	c.store(msg)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordPublished()
	}
	c.notify(snap)

	return msg, nil
}

// Republish puts an existing message back on the bus. See Bus.Republish.
func (c *Channel) Republish(msg types.SelectionMessage) error {
	c.mu.Lock()
	c.store(msg)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)

	return nil
}

// Clear removes the message for classKey and notifies subscribers.
// Idempotent. See Bus.Clear.
func (c *Channel) Clear(classKey string) error {
	c.mu.Lock()
	if _, ok := c.messages[classKey]; !ok {
		c.mu.Unlock()
		return nil
	}
	delete(c.messages, classKey)
	for i, key := range c.order {
		if key == classKey {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordCleared()
	}
	c.notify(snap)

	return nil
}

// Subscribe registers a subscriber. See Bus.Subscribe.
func (c *Channel) Subscribe() (<-chan Snapshot, func()) {
	id := c.nextSubscriberID.Add(1)

	sub := &subscriber{ch: make(chan Snapshot, 1)}
	c.subscribers.Store(id, sub)

	// Deliver the current state immediately so late subscribers never miss
	// messages published before they attached.
	c.mu.Lock()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	sub.trySend(snap)

	unsubscribe := func() {
		if s, ok := c.subscribers.LoadAndDelete(id); ok {
			s.close()
		}
	}

	return sub.ch, unsubscribe
}

// Snapshot returns the channel's current state.
func (c *Channel) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshotLocked()
}

// store inserts or overwrites msg. Caller holds c.mu.
func (c *Channel) store(msg types.SelectionMessage) {
	if _, exists := c.messages[msg.ClassKey]; !exists {
		c.order = append(c.order, msg.ClassKey)
	}
	c.messages[msg.ClassKey] = msg
}

// snapshotLocked builds a defensive copy of the current state. Caller holds c.mu.
func (c *Channel) snapshotLocked() Snapshot {
	messages := make(map[string]types.SelectionMessage, len(c.messages))
	for k, v := range c.messages {
		messages[k] = v
	}
	order := make([]string, len(c.order))
	copy(order, c.order)

	return Snapshot{Messages: messages, Order: order}
}

// notify fans the snapshot out to all subscribers.
func (c *Channel) notify(snap Snapshot) {
	c.subscribers.Range(func(_ uint64, sub *subscriber) bool {
		sub.trySend(snap)
		return true
	})
}
