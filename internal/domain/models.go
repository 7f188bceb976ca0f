package domain

import (
	"fmt"
	"time"
)

// PlaybackState represents the current state of the server-side player
type PlaybackState string

const (
	// StateUnknown is reported before the first status reload or when the server sends garbage
	StateUnknown PlaybackState = "unknown"
	// StateStopped indicates playback is stopped
	StateStopped PlaybackState = "stopped"
	// StatePlaying indicates a track is currently playing
	StatePlaying PlaybackState = "playing"
	// StatePaused indicates playback is paused
	StatePaused PlaybackState = "paused"
)

// ParsePlaybackState maps the server's "state" field to a PlaybackState
func ParsePlaybackState(s string) PlaybackState {
	switch s {
	case "play":
		return StatePlaying
	case "pause":
		return StatePaused
	case "stop":
		return StateStopped
	default:
		return StateUnknown
	}
}

// Track is an immutable queue entry as reported by the server.
// A changed queue identifier produces a new Track; existing values are never updated.
type Track struct {
	// ID is the server-assigned queue identifier
	ID int
	// Position is the index in the server queue at the time the track was read
	Position int
	Title    string
	Artist   string
	Album    string
	// Number is the track number within its album (0 when unknown)
	Number   int
	Duration time.Duration
	// URI is the song path relative to the server's music directory
	URI string
}

// DurationString formats the duration as m:ss
func (t Track) DurationString() string {
	total := int(t.Duration.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// DisplayTitle returns the title, falling back to the URI for untagged files
func (t Track) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return t.URI
}

// PlayerStatus is the cached player view
type PlayerStatus struct {
	State PlaybackState
	// Current is nil when nothing is playing or paused
	Current *Track
	// StopAfterCurrent stops playback once the current track finishes
	StopAfterCurrent bool
}

// Options holds the four playback mode flags
type Options struct {
	Consume bool
	Random  bool
	Repeat  bool
	Single  bool
}

// Event is a change notification published by the client.
// Events carry no payload; observers re-read state through the client accessors.
type Event int

const (
	EventConnected Event = iota + 1
	EventDisconnected
	EventTrackChanged
	EventPlayerRefreshed
	EventOptionsRefreshed
	EventQueueRefreshed
	EventPlaylistsRefreshed
)

var eventNames = map[Event]string{
	EventConnected:          "connected",
	EventDisconnected:       "disconnected",
	EventTrackChanged:       "track-changed",
	EventPlayerRefreshed:    "player-refreshed",
	EventOptionsRefreshed:   "options-refreshed",
	EventQueueRefreshed:     "queue-refreshed",
	EventPlaylistsRefreshed: "playlists-refreshed",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(e))
}
