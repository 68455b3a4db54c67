package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/zeebo/xxh3"

	"github.com/ElCzar/secchub-planning/types"
)

// KVChannelConfig configures the NATS-backed selection channel.
type KVChannelConfig struct {
	// Bucket is the JetStream KV bucket name holding pending selections.
	Bucket string `yaml:"bucket"`

	// TTL is how long an unconsumed selection survives (0 = no expiration).
	// A selection nobody clears usually means the planning page was never
	// reopened; expiring it avoids replaying stale intents days later.
	TTL time.Duration `yaml:"ttl"`

	// OperationTimeout bounds individual KV operations.
	OperationTimeout time.Duration `yaml:"operationTimeout"`
}

// DefaultKVChannelConfig returns a KVChannelConfig with sensible defaults.
func DefaultKVChannelConfig() KVChannelConfig {
	return KVChannelConfig{
		Bucket:           "secchub-selections",
		TTL:              24 * time.Hour,
		OperationTimeout: 10 * time.Second,
	}
}

// KVChannel is a Bus backed by a NATS JetStream KV bucket.
//
// It serves deployments where the teacher-selection page and the planning
// grid run in separate processes: selections survive process restarts and
// reach the grid through a KV watcher instead of an in-process callback.
//
// Class keys contain characters NATS KV keys cannot carry (spaces, pipes),
// so entries are stored under an xxh3 digest of the class key; the full
// class key travels inside the JSON-encoded message.
type KVChannel struct {
	cfg KVChannelConfig
	kv  jetstream.KeyValue

	mu       sync.Mutex
	messages map[string]types.SelectionMessage // class key -> message

	subscribers      *xsync.Map[uint64, *subscriber]
	nextSubscriberID atomic.Uint64

	metrics types.ChannelMetrics

	cancel context.CancelFunc
	doneCh chan struct{}
}

var _ Bus = (*KVChannel)(nil)

// KVChannelOption configures a KVChannel.
type KVChannelOption func(*KVChannel)

// WithKVChannelMetrics sets a metrics collector for the channel.
func WithKVChannelMetrics(metrics types.ChannelMetrics) KVChannelOption {
	return func(c *KVChannel) {
		c.metrics = metrics
	}
}

// NewKVChannel creates a KV-backed selection channel and starts watching the
// bucket.
//
// The bucket is created when missing. The returned channel must be closed
// with Close() to release the watcher.
//
// Parameters:
//   - ctx: Context bounding bucket creation and the watcher's lifetime
//   - js: JetStream context
//   - cfg: Channel configuration (zero fields take defaults)
//   - opts: Optional configuration (metrics)
//
// Returns:
//   - *KVChannel: Running channel
//   - error: Bucket creation or watch error
func NewKVChannel(ctx context.Context, js jetstream.JetStream, cfg KVChannelConfig, opts ...KVChannelOption) (*KVChannel, error) {
	defaults := DefaultKVChannelConfig()
	if cfg.Bucket == "" {
		cfg.Bucket = defaults.Bucket
	}
	if cfg.TTL == 0 {
		cfg.TTL = defaults.TTL
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}

	kv, err := ensureBucket(ctx, js, jetstream.KeyValueConfig{
		Bucket: cfg.Bucket,
		TTL:    cfg.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create selection bucket: %w", err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	c := &KVChannel{
		cfg:         cfg,
		kv:          kv,
		messages:    make(map[string]types.SelectionMessage),
		subscribers: xsync.NewMap[uint64, *subscriber](),
		cancel:      cancel,
		doneCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	watcher, err := kv.WatchAll(watchCtx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to watch selection bucket: %w", err)
	}

	go c.watchLoop(watcher)

	return c, nil
}

// ensureBucket creates or opens a KV bucket, tolerating the race where
// another process creates it concurrently.
func ensureBucket(ctx context.Context, js jetstream.JetStream, config jetstream.KeyValueConfig) (jetstream.KeyValue, error) {
	const maxRetries = 3

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		kv, err := js.CreateKeyValue(ctx, config)
		if err == nil {
			return kv, nil
		}

		if errors.Is(err, jetstream.ErrBucketExists) {
			kv, err := js.KeyValue(ctx, config.Bucket)
			if err == nil {
				return kv, nil
			}
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 100 * time.Millisecond):
		}
	}

	return nil, lastErr
}

// Close stops the watcher. Pending messages stay in the bucket.
func (c *KVChannel) Close() {
	c.cancel()
	<-c.doneCh
}

// Publish stores the message for classKey in the bucket. Subscribers are
// notified through the watcher, so local and remote publishers behave
// identically. See Bus.Publish.
func (c *KVChannel) Publish(classKey string, teachers []types.TeacherRef, opts PublishOptions) (types.SelectionMessage, error) {
	msg := newMessage(classKey, teachers, opts)
	if err := c.put(msg); err != nil {
		return types.SelectionMessage{}, err
	}

	if c.metrics != nil {
		c.metrics.RecordPublished()
	}

	return msg, nil
}

// Republish puts an existing message back into the bucket. See Bus.Republish.
func (c *KVChannel) Republish(msg types.SelectionMessage) error {
	return c.put(msg)
}

func (c *KVChannel) put(msg types.SelectionMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode selection message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.OperationTimeout)
	defer cancel()

	if _, err := c.kv.Put(ctx, entryKey(msg.ClassKey), data); err != nil {
		return fmt.Errorf("failed to publish selection for %q: %w", msg.ClassKey, err)
	}

	return nil
}

// Clear removes the message for classKey from the bucket. Idempotent.
// See Bus.Clear.
func (c *KVChannel) Clear(classKey string) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.OperationTimeout)
	defer cancel()

	if err := c.kv.Purge(ctx, entryKey(classKey)); err != nil {
		return fmt.Errorf("failed to clear selection for %q: %w", classKey, err)
	}

	if c.metrics != nil {
		c.metrics.RecordCleared()
	}

	return nil
}

// Subscribe registers a subscriber. See Bus.Subscribe.
func (c *KVChannel) Subscribe() (<-chan Snapshot, func()) {
	id := c.nextSubscriberID.Add(1)

	sub := &subscriber{ch: make(chan Snapshot, 1)}
	c.subscribers.Store(id, sub)

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

// Snapshot returns the channel's current view of the bucket.
func (c *KVChannel) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshotLocked()
}

// watchLoop mirrors the bucket into the local message map and fans updates
// out to subscribers.
func (c *KVChannel) watchLoop(watcher jetstream.KeyWatcher) {
	defer close(c.doneCh)
	defer func() { _ = watcher.Stop() }()

	for entry := range watcher.Updates() {
		if entry == nil {
			// Initial replay complete; push the hydrated snapshot.
			c.mu.Lock()
			snap := c.snapshotLocked()
			c.mu.Unlock()
			c.notify(snap)

			continue
		}

		c.mu.Lock()
		switch entry.Operation() {
		case jetstream.KeyValuePut:
			var msg types.SelectionMessage
			if err := json.Unmarshal(entry.Value(), &msg); err == nil && msg.ClassKey != "" {
				c.messages[msg.ClassKey] = msg
			}
		case jetstream.KeyValueDelete, jetstream.KeyValuePurge:
			for key := range c.messages {
				if entryKey(key) == entry.Key() {
					delete(c.messages, key)
					break
				}
			}
		}
		snap := c.snapshotLocked()
		c.mu.Unlock()

		c.notify(snap)
	}
}

// snapshotLocked builds the current snapshot, ordering keys by publish time.
// Caller holds c.mu.
func (c *KVChannel) snapshotLocked() Snapshot {
	messages := make(map[string]types.SelectionMessage, len(c.messages))
	order := make([]string, 0, len(c.messages))
	for k, v := range c.messages {
		messages[k] = v
		order = append(order, k)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := messages[order[i]], messages[order[j]]
		if a.PublishedAt.Equal(b.PublishedAt) {
			return order[i] < order[j]
		}

		return a.PublishedAt.Before(b.PublishedAt)
	})

	return Snapshot{Messages: messages, Order: order}
}

func (c *KVChannel) notify(snap Snapshot) {
	c.subscribers.Range(func(_ uint64, sub *subscriber) bool {
		sub.trySend(snap)
		return true
	})
}

// entryKey derives a KV-safe key from an arbitrary class key.
func entryKey(classKey string) string {
	return fmt.Sprintf("sel.%016x", xxh3.HashString(classKey))
}
