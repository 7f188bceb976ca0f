package client

import (
	"fmt"
	"sync"

	"github.com/genricoloni/mpdbar/internal/domain"
	"go.uber.org/zap"
)

// Synchronizer holds the cached server state and reloads it on demand.
// Each reload queries everything it needs before committing, so readers
// only ever observe complete snapshots.
type Synchronizer struct {
	logger *zap.Logger
	events *Broadcaster

	mu        sync.RWMutex
	player    domain.PlayerStatus
	options   domain.Options
	queue     []domain.Track
	playlists []string

	// queueMu serializes queue listings, which are streamed replies
	queueMu sync.Mutex
}

// NewSynchronizer creates a synchronizer with an empty cache
func NewSynchronizer(logger *zap.Logger, events *Broadcaster) *Synchronizer {
	return &Synchronizer{
		logger: logger,
		events: events,
		player: domain.PlayerStatus{State: domain.StateUnknown},
	}
}

// Reload dispatches to the reload routine for c
func (s *Synchronizer) Reload(conn Conn, c domain.Category) error {
	switch c {
	case domain.CategoryPlayer:
		return s.ReloadPlayerStatus(conn)
	case domain.CategoryOptions:
		return s.ReloadOptions(conn)
	case domain.CategoryQueue:
		return s.ReloadQueue(conn)
	case domain.CategoryStoredPlaylist:
		return s.ReloadPlaylists(conn)
	default:
		return fmt.Errorf("unknown category %d", c)
	}
}

// ReloadPlayerStatus refreshes the playback state and the current track.
// A changed queue identifier fetches a fresh Track and re-crops the queue;
// with stop-after-current set, playback is stopped and the flag cleared.
func (s *Synchronizer) ReloadPlayerStatus(conn Conn) error {
	attrs, err := conn.Status()
	if err != nil {
		return fmt.Errorf("reload player: %w", err)
	}
	state := domain.ParsePlaybackState(attrs["state"])
	songID := atoiDefault(attrs["songid"], -1)

	s.mu.RLock()
	previous := s.player.Current
	stopAfter := s.player.StopAfterCurrent
	s.mu.RUnlock()

	current := previous

	changed := false
	switch {
	case state == domain.StateStopped || state == domain.StateUnknown || songID < 0:
		current = nil
	case current == nil || current.ID != songID:
		song, err := conn.SongByID(songID)
		if err != nil {
			return fmt.Errorf("reload current track: %w", err)
		}
		track := trackFromAttrs(song)
		current = &track
		changed = true
	}

	if changed && stopAfter {
		s.logger.Info("Stopping after finished track", zap.Int("next_id", songID))
		if err := conn.Stop(); err != nil {
			return fmt.Errorf("stop after current: %w", err)
		}
		state = domain.StateStopped
		current = nil
		stopAfter = false
	}

	s.mu.Lock()
	s.player = domain.PlayerStatus{State: state, Current: current, StopAfterCurrent: stopAfter}
	s.mu.Unlock()

	if changed {
		if current != nil {
			s.logger.Info("Track changed",
				zap.Int("id", current.ID),
				zap.String("title", current.DisplayTitle()),
				zap.String("artist", current.Artist))
		}
		s.events.Publish(domain.EventTrackChanged)
	}
	if changed || (previous != nil && current == nil) {
		if err := s.ReloadQueue(conn); err != nil {
			return err
		}
	}
	s.events.Publish(domain.EventPlayerRefreshed)
	return nil
}

// ReloadOptions refreshes the four mode flags
func (s *Synchronizer) ReloadOptions(conn Conn) error {
	attrs, err := conn.Status()
	if err != nil {
		return fmt.Errorf("reload options: %w", err)
	}
	opts := domain.Options{
		Consume: parseFlag(attrs["consume"]),
		Random:  parseFlag(attrs["random"]),
		Repeat:  parseFlag(attrs["repeat"]),
		Single:  parseFlag(attrs["single"]),
	}

	s.mu.Lock()
	s.options = opts
	s.mu.Unlock()

	s.events.Publish(domain.EventOptionsRefreshed)
	return nil
}

// ReloadQueue refreshes the queue and crops everything up to and including
// the current track, leaving only upcoming entries.
func (s *Synchronizer) ReloadQueue(conn Conn) error {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()

	list, err := conn.QueueInfo()
	if err != nil {
		return fmt.Errorf("reload queue: %w", err)
	}
	tracks := tracksFromAttrs(list)

	s.mu.RLock()
	hasCurrent := s.player.Current != nil
	s.mu.RUnlock()

	if hasCurrent {
		attrs, err := conn.Status()
		if err != nil {
			return fmt.Errorf("reload queue position: %w", err)
		}
		if pos := atoiDefault(attrs["song"], -1); pos >= 0 {
			tracks = tracks[min(pos+1, len(tracks)):]
		}
	}

	s.mu.Lock()
	s.queue = tracks
	s.mu.Unlock()

	s.events.Publish(domain.EventQueueRefreshed)
	return nil
}

// ReloadPlaylists replaces the stored playlist names. A failed listing
// leaves the cache untouched and publishes nothing.
func (s *Synchronizer) ReloadPlaylists(conn Conn) error {
	names, err := conn.ListPlaylists()
	if err != nil {
		return fmt.Errorf("reload playlists: %w", err)
	}

	s.mu.Lock()
	s.playlists = names
	s.mu.Unlock()

	s.events.Publish(domain.EventPlaylistsRefreshed)
	return nil
}

// Reset drops the cached state, keeping the stop-after-current preference
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player = domain.PlayerStatus{State: domain.StateUnknown, StopAfterCurrent: s.player.StopAfterCurrent}
	s.options = domain.Options{}
	s.queue = nil
	s.playlists = nil
}

// Player returns a snapshot of the player status
func (s *Synchronizer) Player() domain.PlayerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.player
}

// Options returns the cached mode flags
func (s *Synchronizer) Options() domain.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.options
}

// Queue returns a copy of the upcoming tracks
func (s *Synchronizer) Queue() []domain.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Track(nil), s.queue...)
}

// Playlists returns a copy of the stored playlist names
func (s *Synchronizer) Playlists() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.playlists...)
}

// SetStopAfterCurrent arms or disarms stopping once the current track ends
func (s *Synchronizer) SetStopAfterCurrent(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.StopAfterCurrent = on
}
