package broadcast

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSubscriber struct {
	calls int
}

func (s *failingSubscriber) Deliver(Message) error {
	s.calls++
	return errors.New("connection reset")
}

func TestBroadcaster_RemoveUnknownIsNoop(t *testing.T) {
	t.Parallel()

	b := NewBroadcaster(nil)
	assert.NotPanics(t, func() {
		b.Remove("never-added")
		b.Remove("")
	})
	assert.Equal(t, 0, b.Count())
}

func TestBroadcaster_BroadcastWithoutSubscribers(t *testing.T) {
	t.Parallel()

	b := NewBroadcaster(nil)
	sent := b.Broadcast(NewMessage(EventUpdate, nil, time.Now()))
	assert.Equal(t, 0, sent)
	assert.Equal(t, Stats{}, b.Stats())
}

func TestBroadcaster_FailureRemovesOnlyFailingSubscriber(t *testing.T) {
	t.Parallel()

	b := NewBroadcaster(nil)
	healthy := NewChannelSubscriber(4)
	broken := &failingSubscriber{}
	b.Add("healthy", healthy)
	b.Add("broken", broken)

	sent := b.Broadcast(NewMessage(EventUpdate, map[string]int{"fixtures": 2}, time.Now()))
	require.Equal(t, 1, sent)
	assert.Equal(t, 1, b.Count())
	assert.Equal(t, 1, broken.calls)

	msg := <-healthy.Messages()
	assert.Equal(t, EventUpdate, msg.Type)

	b.Broadcast(NewMessage(EventUpdate, nil, time.Now()))
	assert.Equal(t, 1, broken.calls, "removed subscriber must not receive further messages")
	assert.EqualValues(t, 1, b.Stats().Dropped)
}

func TestBroadcaster_SlowSubscriberIsDropped(t *testing.T) {
	t.Parallel()

	b := NewBroadcaster(nil)
	slow := NewChannelSubscriber(1)
	b.Add("slow", slow)

	assert.Equal(t, 1, b.Broadcast(NewMessage(EventUpdate, nil, time.Now())))
	assert.Equal(t, 0, b.Broadcast(NewMessage(EventUpdate, nil, time.Now())))
	assert.Equal(t, 0, b.Count())

	_, ok := <-slow.Messages()
	assert.True(t, ok, "buffered message should still be readable")
	_, ok = <-slow.Messages()
	assert.False(t, ok, "channel should be closed after removal")
}

func TestChannelSubscriber_DeliverAfterClose(t *testing.T) {
	t.Parallel()

	sub := NewChannelSubscriber(2)
	sub.Close()
	sub.Close()

	err := sub.Deliver(NewMessage(EventPing, nil, time.Now()))
	assert.ErrorIs(t, err, ErrSubscriberClosed)
}

func TestBroadcaster_ConcurrentAddRemoveBroadcast(t *testing.T) {
	t.Parallel()

	b := NewBroadcaster(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		id := string(rune('a' + i))
		go func() {
			defer wg.Done()
			b.Add(id, NewChannelSubscriber(8))
		}()
		go func() {
			defer wg.Done()
			b.Broadcast(NewMessage(EventUpdate, nil, time.Now()))
		}()
		go func() {
			defer wg.Done()
			b.Remove(id)
		}()
	}
	wg.Wait()

	b.Close()
	assert.Equal(t, 0, b.Count())
}
