package client

import (
	"context"
	"fmt"

	"github.com/genricoloni/mpdbar/internal/domain"
	"go.uber.org/zap"
)

var (
	dirtyPlayer  = domain.NewCategorySet(domain.CategoryPlayer)
	dirtyOptions = domain.NewCategorySet(domain.CategoryOptions)
	dirtyQueue   = domain.NewCategorySet(domain.CategoryQueue)
	dirtyLoad    = domain.NewCategorySet(domain.CategoryQueue, domain.CategoryPlayer)
)

// PlayPause pauses when playing, resumes when paused, and otherwise starts
// the queue from the top if it is not empty
func (c *Client) PlayPause(ctx context.Context) error {
	return c.do(ctx, "playpause", dirtyPlayer, playPause)
}

// Next skips to the next queue entry
func (c *Client) Next(ctx context.Context) error {
	return c.do(ctx, "next", dirtyPlayer, Conn.Next)
}

// Previous goes back to the previous queue entry
func (c *Client) Previous(ctx context.Context) error {
	return c.do(ctx, "previous", dirtyPlayer, Conn.Previous)
}

// Stop stops playback
func (c *Client) Stop(ctx context.Context) error {
	return c.do(ctx, "stop", dirtyPlayer, Conn.Stop)
}

// ToggleConsume flips consume mode relative to the cached value
func (c *Client) ToggleConsume(ctx context.Context) error {
	return c.do(ctx, "consume", dirtyOptions, func(conn Conn) error {
		return conn.SetConsume(!c.state.Options().Consume)
	})
}

// ToggleRandom flips random mode relative to the cached value
func (c *Client) ToggleRandom(ctx context.Context) error {
	return c.do(ctx, "random", dirtyOptions, func(conn Conn) error {
		return conn.SetRandom(!c.state.Options().Random)
	})
}

// ToggleRepeat flips repeat mode relative to the cached value
func (c *Client) ToggleRepeat(ctx context.Context) error {
	return c.do(ctx, "repeat", dirtyOptions, func(conn Conn) error {
		return conn.SetRepeat(!c.state.Options().Repeat)
	})
}

// ToggleSingle flips single mode relative to the cached value
func (c *Client) ToggleSingle(ctx context.Context) error {
	return c.do(ctx, "single", dirtyOptions, func(conn Conn) error {
		return conn.SetSingle(!c.state.Options().Single)
	})
}

// LoadPlaylist appends a stored playlist to the queue and plays its first entry
func (c *Client) LoadPlaylist(ctx context.Context, name string) error {
	return c.do(ctx, "load", dirtyLoad, loadPlaylist(name))
}

// Search returns every library song with a tag containing text, in server
// order. Empty text matches nothing and does not contact the server.
func (c *Client) Search(ctx context.Context, text string) ([]domain.Track, error) {
	if text == "" {
		return nil, nil
	}
	var found []domain.Track
	err := c.do(ctx, "search", domain.CategorySet{}, func(conn Conn) error {
		list, err := conn.Search(text)
		if err != nil {
			return err
		}
		found = tracksFromAttrs(list)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Search completed", zap.String("text", text), zap.Int("results", len(found)))
	return found, nil
}

// Append adds tracks at the end of the queue
func (c *Client) Append(ctx context.Context, tracks []domain.Track) error {
	return c.do(ctx, "append", dirtyQueue, insertAt(tracks, func(Conn) (int, error) { return -1, nil }))
}

// InsertAtBeginning adds tracks at the top of the queue, keeping their order
func (c *Client) InsertAtBeginning(ctx context.Context, tracks []domain.Track) error {
	return c.do(ctx, "insert-beginning", dirtyQueue, insertAt(tracks, func(Conn) (int, error) { return 0, nil }))
}

// InsertAfterCurrentTrack adds tracks right after the current track, or at
// the top when nothing is playing
func (c *Client) InsertAfterCurrentTrack(ctx context.Context, tracks []domain.Track) error {
	return c.do(ctx, "insert-after-track", dirtyQueue, insertAt(tracks, afterCurrentTrack))
}

// InsertAfterCurrentAlbum adds tracks after the last queue entry that
// continues the current track's album
func (c *Client) InsertAfterCurrentAlbum(ctx context.Context, tracks []domain.Track) error {
	return c.do(ctx, "insert-after-album", dirtyQueue, insertAt(tracks, afterCurrentAlbum))
}

// Remove deletes queue entries by identifier
func (c *Client) Remove(ctx context.Context, tracks []domain.Track) error {
	next := 0
	return c.do(ctx, "remove", dirtyQueue, func(conn Conn) error {
		// A retry resumes after the entries already removed
		for ; next < len(tracks); next++ {
			if err := conn.DeleteID(tracks[next].ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// MoveAfterCurrent moves a queue entry so it plays next
func (c *Client) MoveAfterCurrent(ctx context.Context, track domain.Track) error {
	return c.do(ctx, "move-after-current", dirtyQueue, moveAfterCurrent(track))
}

func playPause(conn Conn) error {
	status, err := conn.Status()
	if err != nil {
		return err
	}
	switch domain.ParsePlaybackState(status["state"]) {
	case domain.StatePlaying:
		return conn.Pause(true)
	case domain.StatePaused:
		return conn.Play(-1)
	}
	first, err := conn.QueueRange(0, 1)
	if err != nil {
		return err
	}
	if len(first) == 0 {
		return nil
	}
	return conn.Play(0)
}

func loadPlaylist(name string) func(Conn) error {
	return func(conn Conn) error {
		before, err := conn.Status()
		if err != nil {
			return err
		}
		if err := conn.Load(name); err != nil {
			return err
		}
		after, err := conn.Status()
		if err != nil {
			return err
		}
		first := atoiDefault(before["playlistlength"], 0)
		if atoiDefault(after["playlistlength"], 0) <= first {
			return nil
		}
		return conn.Play(first)
	}
}

// insertAt adds tracks at consecutive positions starting from base(conn);
// a negative base appends. The base is resolved once so a retry continues
// after the entries already added.
func insertAt(tracks []domain.Track, base func(Conn) (int, error)) func(Conn) error {
	var (
		resolved bool
		pos      int
		next     int
	)
	return func(conn Conn) error {
		if !resolved {
			p, err := base(conn)
			if err != nil {
				return err
			}
			pos, resolved = p, true
		}
		for ; next < len(tracks); next++ {
			at := -1
			if pos >= 0 {
				at = pos + next
			}
			if _, err := conn.AddID(tracks[next].URI, at); err != nil {
				return fmt.Errorf("add %s: %w", tracks[next].URI, err)
			}
		}
		return nil
	}
}

// currentPosition returns the current track's queue position, or -1
func currentPosition(conn Conn) (int, error) {
	status, err := conn.Status()
	if err != nil {
		return -1, err
	}
	return atoiDefault(status["song"], -1), nil
}

func afterCurrentTrack(conn Conn) (int, error) {
	cur, err := currentPosition(conn)
	if err != nil {
		return 0, err
	}
	return cur + 1, nil
}

func afterCurrentAlbum(conn Conn) (int, error) {
	cur, err := currentPosition(conn)
	if err != nil || cur < 0 {
		return 0, err
	}
	list, err := conn.QueueInfo()
	if err != nil {
		return 0, err
	}
	queue := tracksFromAttrs(list)
	if cur >= len(queue) || queue[cur].Album == "" {
		return cur + 1, nil
	}
	album := queue[cur].Album
	last := cur
	for i := cur + 1; i < len(queue) && queue[i].Album == album; i++ {
		last = i
	}
	return last + 1, nil
}

func moveAfterCurrent(track domain.Track) func(Conn) error {
	return func(conn Conn) error {
		cur, err := currentPosition(conn)
		if err != nil {
			return err
		}
		if cur < 0 {
			return conn.MoveID(track.ID, 0)
		}
		song, err := conn.SongByID(track.ID)
		if err != nil {
			return err
		}
		from := atoiDefault(song["Pos"], -1)
		switch {
		case from == cur:
			return nil
		case from < cur:
			// Removing the entry shifts the current track up by one
			return conn.MoveID(track.ID, cur)
		default:
			return conn.MoveID(track.ID, cur+1)
		}
	}
}
