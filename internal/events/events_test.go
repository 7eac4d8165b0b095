package events

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversToAllSubscribers(t *testing.T) {
	bus := NewBus(2, 10)
	defer bus.Close()

	var wg sync.WaitGroup
	wg.Add(3)
	var created, cancelled atomic.Int32
	bus.SubscribeCreated(func(ReservationCreated) {
		created.Add(1)
		wg.Done()
	})
	bus.SubscribeCreated(func(ReservationCreated) {
		created.Add(1)
		wg.Done()
	})
	bus.SubscribeCancelled(func(ReservationCancelled) {
		cancelled.Add(1)
		wg.Done()
	})

	bus.PublishCreated(ReservationCreated{ReservationID: "res-1"})
	bus.PublishCancelled(ReservationCancelled{ReservationID: "res-1"})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handlers were not invoked in time")
	}
	assert.Equal(t, int32(2), created.Load())
	assert.Equal(t, int32(1), cancelled.Load())
}

func TestBus_PublishNeverBlocksWhenQueueFull(t *testing.T) {
	bus := NewBus(1, 1)

	release := make(chan struct{})
	bus.SubscribeCreated(func(ReservationCreated) { <-release })

	// Occupy the single worker and fill the single queue slot, then keep
	// publishing. Every extra event must be dropped, not block.
	for i := 0; i < 10; i++ {
		bus.PublishCreated(ReservationCreated{ReservationID: "res-1"})
	}

	done := make(chan struct{})
	go func() {
		bus.PublishCreated(ReservationCreated{ReservationID: "res-2"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full queue")
	}

	close(release)
	bus.Close()
}

func TestBus_CloseDrainsPendingWork(t *testing.T) {
	bus := NewBus(1, 10)

	var handled atomic.Int32
	bus.SubscribeCreated(func(ReservationCreated) {
		time.Sleep(10 * time.Millisecond)
		handled.Add(1)
	})
	for i := 0; i < 5; i++ {
		bus.PublishCreated(ReservationCreated{ReservationID: "res-1"})
	}

	bus.Close()
	assert.Equal(t, int32(5), handled.Load())
}

func TestBus_CloseIsIdempotent(t *testing.T) {
	bus := NewBus(1, 1)
	bus.Close()
	require.NotPanics(t, func() { bus.Close() })
}

func TestFormatHelpers(t *testing.T) {
	ts := time.Date(2026, 10, 12, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-12", FormatDate(ts))
	assert.Equal(t, "2026-10-12T18:30:00Z", FormatTime(ts))
}
