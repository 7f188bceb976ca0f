package client

import (
	"testing"
	"time"

	"github.com/genricoloni/mpdbar/internal/domain"
	"go.uber.org/zap"
)

func TestBroadcaster_FanOut(t *testing.T) {
	b := NewBroadcaster(zap.NewNop())
	first, cancelFirst := b.Subscribe()
	second, cancelSecond := b.Subscribe()
	defer cancelSecond()

	b.Publish(domain.EventConnected)
	for i, ch := range []<-chan domain.Event{first, second} {
		if e := <-ch; e != domain.EventConnected {
			t.Errorf("Subscriber %d: want %s, got %s", i, domain.EventConnected, e)
		}
	}

	cancelFirst()
	cancelFirst()
	if _, ok := <-first; ok {
		t.Error("Expected cancelled channel to be closed")
	}

	b.Publish(domain.EventQueueRefreshed)
	if e := <-second; e != domain.EventQueueRefreshed {
		t.Errorf("Remaining subscriber: want %s, got %s", domain.EventQueueRefreshed, e)
	}
}

func TestBroadcaster_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroadcaster(zap.NewNop())
	_, cancel := b.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			b.Publish(domain.EventPlayerRefreshed)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
}
