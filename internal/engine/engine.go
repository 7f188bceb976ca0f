package engine

import (
	"context"
	"sync"
	"time"

	"github.com/genricoloni/mpdbar/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultMinBackoff = 2 * time.Second
	defaultMaxBackoff = 60 * time.Second
	defaultDebounce   = 500 * time.Millisecond
)

// Engine keeps the client connected and announces track changes.
// It reconnects with exponential backoff after unexpected disconnects and
// shows a banner once track skipping settles.
type Engine struct {
	logger   *zap.Logger
	cfg      domain.Config
	client   domain.MusicClient
	notifier domain.Notifier
	artwork  domain.ArtworkResolver

	minBackoff time.Duration
	maxBackoff time.Duration
	debounce   time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEngine creates a new orchestration engine
func NewEngine(
	logger *zap.Logger,
	cfg domain.Config,
	client domain.MusicClient,
	notifier domain.Notifier,
	artwork domain.ArtworkResolver,
) *Engine {
	return &Engine{
		logger:     logger,
		cfg:        cfg,
		client:     client,
		notifier:   notifier,
		artwork:    artwork,
		minBackoff: defaultMinBackoff,
		maxBackoff: defaultMaxBackoff,
		debounce:   defaultDebounce,
	}
}

// Start launches the engine's event processing loop in a goroutine.
// The first connection attempt is made from the loop, so Start returns
// immediately (non-blocking).
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil {
		return nil
	}
	e.logger.Info("Engine starting...")

	// The lifecycle context ends when OnStart returns, so the loop gets its own
	loopCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	events, unsubscribe := e.client.Subscribe()
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer unsubscribe()
		e.runLoop(loopCtx, events)
	}()
	return nil
}

// runLoop reacts to client events. Reconnects and banners are both driven
// by timers so that bursts of events collapse into a single action.
func (e *Engine) runLoop(ctx context.Context, events <-chan domain.Event) {
	reconnect := time.NewTimer(0) // connect right away
	defer reconnect.Stop()

	banner := time.NewTimer(e.debounce)
	banner.Stop() // Start with stopped timer
	defer banner.Stop()

	delay := e.minBackoff
	pendingBanner := false

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine loop stopped")
			return

		case ev, ok := <-events:
			if !ok {
				e.logger.Info("Client events channel closed")
				return
			}
			switch ev {
			case domain.EventConnected:
				delay = e.minBackoff
				reconnect.Stop()

			case domain.EventDisconnected:
				cause := e.client.LastDisconnectError()
				if cause == nil {
					e.logger.Info("Client disconnected on request, not reconnecting")
					continue
				}
				e.logger.Warn("Client disconnected, scheduling reconnect",
					zap.Duration("delay", delay),
					zap.Error(cause))
				reconnect.Reset(delay)
				delay = nextBackoff(delay, e.maxBackoff)

			case domain.EventTrackChanged:
				e.logger.Debug("Track change received, debouncing...")
				pendingBanner = true
				banner.Reset(e.debounce)
			}

		case <-reconnect.C:
			// A failure publishes EventDisconnected, which schedules the next attempt
			if err := e.client.Connect(ctx); err != nil {
				e.logger.Debug("Connect attempt failed", zap.Error(err))
			}

		case <-banner.C:
			if pendingBanner {
				e.announce(ctx)
				pendingBanner = false
			}
		}
	}
}

func nextBackoff(current, ceiling time.Duration) time.Duration {
	next := current * 2
	if next > ceiling {
		return ceiling
	}
	return next
}

// announce shows a banner for the current track
func (e *Engine) announce(ctx context.Context) {
	if !e.cfg.NotificationsEnabled() {
		return
	}
	track := e.client.CurrentTrack()
	if track == nil {
		e.logger.Debug("No current track, skipping banner")
		return
	}

	b := domain.Banner{
		Title:    track.DisplayTitle(),
		Subtitle: track.Artist,
		Body:     track.Album,
	}
	if icon, err := e.artwork.IconPath(ctx, *track); err != nil {
		e.logger.Debug("No artwork for banner",
			zap.String("uri", track.URI),
			zap.Error(err))
	} else {
		b.IconPath = icon
	}

	if err := e.notifier.Notify(ctx, b); err != nil {
		e.logger.Error("Failed to show banner", zap.Error(err))
		return
	}

	e.logger.Info("Banner shown",
		zap.String("track", b.Title),
		zap.String("artist", b.Subtitle),
		zap.String("album", b.Body))
}

// Stop ends the loop and disconnects the client
func (e *Engine) Stop(ctx context.Context) error {
	e.logger.Info("Engine stopping...")

	e.mu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
		e.wg.Wait()
	}
	return e.client.Disconnect(ctx)
}
