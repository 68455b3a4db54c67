package selection

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ElCzar/secchub-planning/types"
)

func TestChannel_PublishAssignsIdentity(t *testing.T) {
	c := NewChannel()

	msg, err := c.Publish("Redes|SIS-01|id-10",
		[]types.TeacherRef{{ID: 7, Name: "Ana Ruiz"}},
		PublishOptions{SourceRowIndex: 3, Observation: "prefers mornings"})
	require.NoError(t, err)

	require.NotEmpty(t, msg.ID)
	require.Equal(t, "Redes|SIS-01|id-10", msg.ClassKey)
	require.Equal(t, 3, msg.SourceRowIndex)
	require.Equal(t, "prefers mornings", msg.Observation)
	require.Zero(t, msg.RetryCount)
	require.WithinDuration(t, time.Now(), msg.PublishedAt, time.Second)

	other, err := c.Publish("Redes|SIS-02|id-11", nil, PublishOptions{})
	require.NoError(t, err)
	require.NotEqual(t, msg.ID, other.ID)
}

func TestChannel_OnePendingMessagePerKey(t *testing.T) {
	c := NewChannel()

	_, err := c.Publish("k1", []types.TeacherRef{{ID: 1}}, PublishOptions{})
	require.NoError(t, err)
	_, err = c.Publish("k2", []types.TeacherRef{{ID: 2}}, PublishOptions{})
	require.NoError(t, err)

	// Publishing to an occupied key overwrites the message but keeps the
	// key's original position in the replay order.
	_, err = c.Publish("k1", []types.TeacherRef{{ID: 3}}, PublishOptions{})
	require.NoError(t, err)

	pending := c.Snapshot().Pending()
	require.Len(t, pending, 2)
	require.Equal(t, "k1", pending[0].ClassKey)
	require.Equal(t, int64(3), pending[0].Teachers[0].ID)
	require.Equal(t, "k2", pending[1].ClassKey)
}

func TestChannel_ClearIsIdempotent(t *testing.T) {
	c := NewChannel()

	_, err := c.Publish("k1", nil, PublishOptions{})
	require.NoError(t, err)

	require.NoError(t, c.Clear("k1"))
	require.Empty(t, c.Snapshot().Pending())

	require.NoError(t, c.Clear("k1"))
	require.NoError(t, c.Clear("never-published"))
}

func TestChannel_RepublishPreservesIdentity(t *testing.T) {
	c := NewChannel()

	msg, err := c.Publish("k1", []types.TeacherRef{{ID: 1}}, PublishOptions{})
	require.NoError(t, err)

	retry := msg
	retry.RetryCount++
	require.NoError(t, c.Republish(retry))

	pending := c.Snapshot().Pending()
	require.Len(t, pending, 1)
	require.Equal(t, msg.ID, pending[0].ID)
	require.Equal(t, 1, pending[0].RetryCount)
	require.Equal(t, msg.PublishedAt, pending[0].PublishedAt)
}

func TestChannel_SubscribeReceivesCurrentState(t *testing.T) {
	c := NewChannel()

	_, err := c.Publish("k1", nil, PublishOptions{})
	require.NoError(t, err)

	ch, unsubscribe := c.Subscribe()
	defer unsubscribe()

	// Late subscribers see messages published before they attached.
	select {
	case snap := <-ch:
		require.Len(t, snap.Pending(), 1)
		require.Equal(t, "k1", snap.Pending()[0].ClassKey)
	case <-time.After(time.Second):
		t.Fatal("expected initial snapshot")
	}
}

func TestChannel_SubscriberCoalescesBursts(t *testing.T) {
	c := NewChannel()

	ch, unsubscribe := c.Subscribe()
	defer unsubscribe()

	// Burst of publishes without the subscriber draining. The slow
	// subscriber must still end up observing the final state.
	for i := 0; i < 20; i++ {
		_, err := c.Publish(fmt.Sprintf("k%d", i), nil, PublishOptions{})
		require.NoError(t, err)
	}

	var last Snapshot
	deadline := time.After(time.Second)
	for {
		select {
		case snap := <-ch:
			last = snap
			if len(snap.Pending()) == 20 {
				require.Equal(t, "k0", last.Order[0])
				require.Equal(t, "k19", last.Order[19])
				return
			}
		case <-deadline:
			t.Fatalf("never observed full state, got %d messages", len(last.Pending()))
		}
	}
}

func TestChannel_UnsubscribeStopsDelivery(t *testing.T) {
	c := NewChannel()

	ch, unsubscribe := c.Subscribe()

	// Subscribe buffers the current state immediately; drain it so the next
	// receive observes the close, not the snapshot.
	snap := <-ch
	require.Empty(t, snap.Pending())

	unsubscribe()

	// Channel is closed; publishing afterwards must not panic.
	_, open := <-ch
	require.False(t, open)

	_, err := c.Publish("k1", nil, PublishOptions{})
	require.NoError(t, err)

	// Double unsubscribe is safe.
	unsubscribe()
}

func TestChannel_ConcurrentPublishClear(t *testing.T) {
	c := NewChannel()

	ch, unsubscribe := c.Subscribe()
	defer unsubscribe()
	go func() {
		for range ch {
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n%4)
			for j := 0; j < 50; j++ {
				_, err := c.Publish(key, []types.TeacherRef{{ID: int64(j)}}, PublishOptions{})
				require.NoError(t, err)
				require.NoError(t, c.Clear(key))
			}
		}(i)
	}
	wg.Wait()

	require.Empty(t, c.Snapshot().Pending())
}

func TestSnapshot_PendingFollowsOrder(t *testing.T) {
	c := NewChannel()

	for _, key := range []string{"c", "a", "b"} {
		_, err := c.Publish(key, nil, PublishOptions{})
		require.NoError(t, err)
	}
	require.NoError(t, c.Clear("a"))

	pending := c.Snapshot().Pending()
	require.Len(t, pending, 2)
	require.Equal(t, "c", pending[0].ClassKey)
	require.Equal(t, "b", pending[1].ClassKey)
}
