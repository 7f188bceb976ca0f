package client

import (
	"errors"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/genricoloni/mpdbar/internal/client/mocks"
	"github.com/genricoloni/mpdbar/internal/domain"
	"github.com/genricoloni/mpdbar/internal/wire"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func newTestSynchronizer(t *testing.T) (*Synchronizer, <-chan domain.Event) {
	t.Helper()
	events := NewBroadcaster(zap.NewNop())
	ch, cancel := events.Subscribe()
	t.Cleanup(cancel)
	return NewSynchronizer(zap.NewNop(), events), ch
}

// publishedEvents returns what was published so far without waiting
func publishedEvents(ch <-chan domain.Event) []domain.Event {
	var out []domain.Event
	for {
		select {
		case e := <-ch:
			out = append(out, e)
		default:
			return out
		}
	}
}

func songAttrs(id, pos int, title, album string) mpd.Attrs {
	return mpd.Attrs{
		"file":     title + ".flac",
		"Title":    title,
		"Artist":   "Someone",
		"Album":    album,
		"Track":    "2/10",
		"duration": "185.500",
		"Pos":      strconv.Itoa(pos),
		"Id":       strconv.Itoa(id),
	}
}

func TestTrackFromAttrs(t *testing.T) {
	track := trackFromAttrs(songAttrs(7, 3, "Gamma", "Third"))
	want := domain.Track{
		ID:       7,
		Position: 3,
		Title:    "Gamma",
		Artist:   "Someone",
		Album:    "Third",
		Number:   2,
		Duration: 185500 * time.Millisecond,
		URI:      "Gamma.flac",
	}
	if track != want {
		t.Errorf("trackFromAttrs mismatch:\nwant %+v\ngot  %+v", want, track)
	}

	legacy := trackFromAttrs(mpd.Attrs{"file": "x.mp3", "Time": "61"})
	if legacy.ID != -1 || legacy.Duration != 61*time.Second || legacy.DisplayTitle() != "x.mp3" {
		t.Errorf("Unexpected search result track: %+v", legacy)
	}
}

func TestReloadPlayerStatus(t *testing.T) {
	tests := []struct {
		name          string
		initial       *domain.Track
		stopAfter     bool
		setupMock     func(*mocks.MockConn)
		wantState     domain.PlaybackState
		wantCurrentID int // -1 means no current track
		wantStopAfter bool
		wantEvents    []domain.Event
	}{
		{
			name: "Track Change Fetches Song And Crops Queue",
			setupMock: func(m *mocks.MockConn) {
				gomock.InOrder(
					m.EXPECT().Status().Return(mpd.Attrs{"state": "play", "song": "1", "songid": "2"}, nil),
					m.EXPECT().SongByID(2).Return(songAttrs(2, 1, "Beta", "First"), nil),
					m.EXPECT().QueueInfo().Return([]mpd.Attrs{
						songAttrs(1, 0, "Alpha", "First"),
						songAttrs(2, 1, "Beta", "First"),
						songAttrs(3, 2, "Gamma", "First"),
					}, nil),
					m.EXPECT().Status().Return(mpd.Attrs{"state": "play", "song": "1", "songid": "2"}, nil),
				)
			},
			wantState:     domain.StatePlaying,
			wantCurrentID: 2,
			wantEvents:    []domain.Event{domain.EventTrackChanged, domain.EventQueueRefreshed, domain.EventPlayerRefreshed},
		},
		{
			name:    "Same Track Only Refreshes State",
			initial: &domain.Track{ID: 2, Title: "Beta"},
			setupMock: func(m *mocks.MockConn) {
				m.EXPECT().Status().Return(mpd.Attrs{"state": "pause", "song": "1", "songid": "2"}, nil)
			},
			wantState:     domain.StatePaused,
			wantCurrentID: 2,
			wantEvents:    []domain.Event{domain.EventPlayerRefreshed},
		},
		{
			name:    "Stopped Clears Current Track",
			initial: &domain.Track{ID: 2, Title: "Beta"},
			setupMock: func(m *mocks.MockConn) {
				m.EXPECT().Status().Return(mpd.Attrs{"state": "stop"}, nil)
				m.EXPECT().QueueInfo().Return([]mpd.Attrs{songAttrs(1, 0, "Alpha", "First")}, nil)
			},
			wantState:     domain.StateStopped,
			wantCurrentID: -1,
			wantEvents:    []domain.Event{domain.EventQueueRefreshed, domain.EventPlayerRefreshed},
		},
		{
			name: "Negative Song Id Clears Current Track",
			setupMock: func(m *mocks.MockConn) {
				m.EXPECT().Status().Return(mpd.Attrs{"state": "play"}, nil)
			},
			wantState:     domain.StatePlaying,
			wantCurrentID: -1,
			wantEvents:    []domain.Event{domain.EventPlayerRefreshed},
		},
		{
			name:      "Stop After Current",
			initial:   &domain.Track{ID: 1, Title: "Alpha"},
			stopAfter: true,
			setupMock: func(m *mocks.MockConn) {
				gomock.InOrder(
					m.EXPECT().Status().Return(mpd.Attrs{"state": "play", "song": "1", "songid": "2"}, nil),
					m.EXPECT().SongByID(2).Return(songAttrs(2, 1, "Beta", "First"), nil),
					m.EXPECT().Stop().Return(nil),
					m.EXPECT().QueueInfo().Return([]mpd.Attrs{songAttrs(2, 1, "Beta", "First")}, nil),
				)
			},
			wantState:     domain.StateStopped,
			wantCurrentID: -1,
			wantStopAfter: false,
			wantEvents:    []domain.Event{domain.EventTrackChanged, domain.EventQueueRefreshed, domain.EventPlayerRefreshed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			conn := mocks.NewMockConn(ctrl)
			tt.setupMock(conn)

			s, events := newTestSynchronizer(t)
			s.player = domain.PlayerStatus{State: domain.StatePlaying, Current: tt.initial, StopAfterCurrent: tt.stopAfter}

			if err := s.ReloadPlayerStatus(conn); err != nil {
				t.Fatalf("ReloadPlayerStatus failed: %v", err)
			}

			got := s.Player()
			if got.State != tt.wantState {
				t.Errorf("State mismatch: want %s, got %s", tt.wantState, got.State)
			}
			gotID := -1
			if got.Current != nil {
				gotID = got.Current.ID
			}
			if gotID != tt.wantCurrentID {
				t.Errorf("Current track mismatch: want %d, got %d", tt.wantCurrentID, gotID)
			}
			if got.StopAfterCurrent != tt.wantStopAfter {
				t.Errorf("StopAfterCurrent mismatch: want %v, got %v", tt.wantStopAfter, got.StopAfterCurrent)
			}
			if evs := publishedEvents(events); !reflect.DeepEqual(evs, tt.wantEvents) {
				t.Errorf("Events mismatch: want %v, got %v", tt.wantEvents, evs)
			}
		})
	}
}

func TestReloadPlayerStatus_ErrorCommitsNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	conn := mocks.NewMockConn(ctrl)
	conn.EXPECT().Status().Return(mpd.Attrs{"state": "play", "songid": "9"}, nil)
	conn.EXPECT().SongByID(9).Return(nil, &wire.ProtocolError{Op: "playlistid", Line: "garbage"})

	s, events := newTestSynchronizer(t)
	if err := s.ReloadPlayerStatus(conn); err == nil {
		t.Fatal("Expected error, got nil")
	}
	if s.Player().State != domain.StateUnknown {
		t.Errorf("State was committed: %s", s.Player().State)
	}
	if evs := publishedEvents(events); len(evs) != 0 {
		t.Errorf("Expected no events, got %v", evs)
	}
}

func TestReloadQueue_Crop(t *testing.T) {
	queue := []mpd.Attrs{
		songAttrs(1, 0, "Alpha", "First"),
		songAttrs(2, 1, "Beta", "First"),
		songAttrs(3, 2, "Gamma", "Second"),
	}

	tests := []struct {
		name    string
		current *domain.Track
		song    string
		wantIDs []int
	}{
		{name: "No Current Track Keeps Everything", wantIDs: []int{1, 2, 3}},
		{name: "Current First", current: &domain.Track{ID: 1}, song: "0", wantIDs: []int{2, 3}},
		{name: "Current Middle", current: &domain.Track{ID: 2}, song: "1", wantIDs: []int{3}},
		{name: "Current Last", current: &domain.Track{ID: 3}, song: "2", wantIDs: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			conn := mocks.NewMockConn(ctrl)
			conn.EXPECT().QueueInfo().Return(queue, nil)
			if tt.current != nil {
				conn.EXPECT().Status().Return(mpd.Attrs{"state": "play", "song": tt.song}, nil)
			}

			s, events := newTestSynchronizer(t)
			s.player.Current = tt.current

			if err := s.ReloadQueue(conn); err != nil {
				t.Fatalf("ReloadQueue failed: %v", err)
			}

			got := s.Queue()
			ids := make([]int, 0, len(got))
			for _, tr := range got {
				if tt.current != nil && tr.ID == tt.current.ID {
					t.Errorf("Current track %d still in queue", tr.ID)
				}
				ids = append(ids, tr.ID)
			}
			if !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Errorf("Queue mismatch: want %v, got %v", tt.wantIDs, ids)
			}
			if evs := publishedEvents(events); len(evs) != 1 || evs[0] != domain.EventQueueRefreshed {
				t.Errorf("Expected one queue-refreshed event, got %v", evs)
			}
		})
	}
}

func TestReloadOptions(t *testing.T) {
	ctrl := gomock.NewController(t)
	conn := mocks.NewMockConn(ctrl)
	conn.EXPECT().Status().Return(mpd.Attrs{"consume": "1", "random": "0", "repeat": "1", "single": "0"}, nil)

	s, events := newTestSynchronizer(t)
	if err := s.ReloadOptions(conn); err != nil {
		t.Fatalf("ReloadOptions failed: %v", err)
	}
	want := domain.Options{Consume: true, Repeat: true}
	if got := s.Options(); got != want {
		t.Errorf("Options mismatch: want %+v, got %+v", want, got)
	}
	if evs := publishedEvents(events); len(evs) != 1 || evs[0] != domain.EventOptionsRefreshed {
		t.Errorf("Expected one options-refreshed event, got %v", evs)
	}
}

func TestReloadPlaylists(t *testing.T) {
	t.Run("Replaces Cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		conn := mocks.NewMockConn(ctrl)
		conn.EXPECT().ListPlaylists().Return([]string{"chill", "road"}, nil)

		s, events := newTestSynchronizer(t)
		s.playlists = []string{"old"}
		if err := s.ReloadPlaylists(conn); err != nil {
			t.Fatalf("ReloadPlaylists failed: %v", err)
		}
		if got := s.Playlists(); !reflect.DeepEqual(got, []string{"chill", "road"}) {
			t.Errorf("Playlists mismatch: got %v", got)
		}
		if evs := publishedEvents(events); len(evs) != 1 || evs[0] != domain.EventPlaylistsRefreshed {
			t.Errorf("Expected one playlists-refreshed event, got %v", evs)
		}
	})

	t.Run("Failure Leaves Cache Untouched", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		conn := mocks.NewMockConn(ctrl)
		conn.EXPECT().ListPlaylists().Return(nil, errors.New("boom"))

		s, events := newTestSynchronizer(t)
		s.playlists = []string{"old"}
		if err := s.ReloadPlaylists(conn); err == nil {
			t.Fatal("Expected error, got nil")
		}
		if got := s.Playlists(); !reflect.DeepEqual(got, []string{"old"}) {
			t.Errorf("Cache changed: got %v", got)
		}
		if evs := publishedEvents(events); len(evs) != 0 {
			t.Errorf("Expected no events, got %v", evs)
		}
	})
}
