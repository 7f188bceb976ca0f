package client

import (
	"sync"
	"time"

	"github.com/genricoloni/mpdbar/internal/domain"
	"go.uber.org/zap"
)

const (
	subscriberBuffer  = 32
	dropWarningPeriod = 5 * time.Second
)

// Broadcaster fans change notifications out to registered subscribers.
// Publishing never blocks: a subscriber that falls behind loses events.
type Broadcaster struct {
	logger          *zap.Logger
	mu              sync.Mutex
	subs            map[int]chan domain.Event
	nextID          int
	lastDropWarning time.Time
}

// NewBroadcaster creates an empty broadcaster
func NewBroadcaster(logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		logger: logger,
		subs:   make(map[int]chan domain.Event),
	}
}

// Subscribe registers a subscriber. The returned function unregisters it and
// closes the channel; calling it more than once is harmless.
func (b *Broadcaster) Subscribe() (<-chan domain.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan domain.Event, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

// Publish delivers e to every subscriber without blocking
func (b *Broadcaster) Publish(e domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.logger.Debug("Publishing event", zap.Stringer("event", e), zap.Int("subscribers", len(b.subs)))
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.logDropWarningLocked(e)
		}
	}
}

// logDropWarningLocked logs a dropped event at most once per period
func (b *Broadcaster) logDropWarningLocked(e domain.Event) {
	now := time.Now()
	if now.Sub(b.lastDropWarning) < dropWarningPeriod {
		return
	}
	b.lastDropWarning = now
	b.logger.Warn("Subscriber channel full, dropping event",
		zap.Stringer("event", e))
}
