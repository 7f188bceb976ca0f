package wire

import (
	"fmt"
	"strconv"

	"github.com/fhs/gompd/v2/mpd"
)

// AllowedCommands lists the commands the session may run
func (s *Session) AllowedCommands() ([]string, error) {
	return s.Values("command", "commands")
}

// Status queries the player status
func (s *Session) Status() (mpd.Attrs, error) {
	return s.Attrs("status")
}

// SongByID fetches a queue entry by its queue identifier
func (s *Session) SongByID(id int) (mpd.Attrs, error) {
	return s.Attrs("playlistid", itoa(id))
}

// QueueInfo lists every queue entry with metadata, in queue order
func (s *Session) QueueInfo() ([]mpd.Attrs, error) {
	return s.AttrsList("file", "playlistinfo")
}

// QueueRange lists queue entries in [start, end)
func (s *Session) QueueRange(start, end int) ([]mpd.Attrs, error) {
	return s.AttrsList("file", "playlistinfo", fmt.Sprintf("%d:%d", start, end))
}

// ListPlaylists returns the names of the stored playlists
func (s *Session) ListPlaylists() ([]string, error) {
	return s.Values("playlist", "listplaylists")
}

// Load appends a stored playlist to the queue
func (s *Session) Load(name string) error {
	return s.Run("load", name)
}

// Play starts playback at a queue position; a negative position resumes
func (s *Session) Play(pos int) error {
	if pos < 0 {
		return s.Run("play")
	}
	return s.Run("play", itoa(pos))
}

// Pause pauses or resumes playback
func (s *Session) Pause(pause bool) error {
	return s.Run("pause", btoa(pause))
}

// Stop stops playback
func (s *Session) Stop() error {
	return s.Run("stop")
}

// Next plays the next queue entry
func (s *Session) Next() error {
	return s.Run("next")
}

// Previous plays the previous queue entry
func (s *Session) Previous() error {
	return s.Run("previous")
}

// SetConsume sets consume mode
func (s *Session) SetConsume(on bool) error {
	return s.Run("consume", btoa(on))
}

// SetRandom sets random mode
func (s *Session) SetRandom(on bool) error {
	return s.Run("random", btoa(on))
}

// SetRepeat sets repeat mode
func (s *Session) SetRepeat(on bool) error {
	return s.Run("repeat", btoa(on))
}

// SetSingle sets single mode
func (s *Session) SetSingle(on bool) error {
	return s.Run("single", btoa(on))
}

// AddID adds a song to the queue and returns its queue identifier.
// A negative position appends.
func (s *Session) AddID(uri string, pos int) (int, error) {
	args := []string{uri}
	if pos >= 0 {
		args = append(args, itoa(pos))
	}
	attrs, err := s.Attrs("addid", args...)
	if err != nil {
		return -1, err
	}
	id, err := strconv.Atoi(attrs["Id"])
	if err != nil {
		return -1, &ProtocolError{Op: "addid", Line: "Id: " + attrs["Id"]}
	}
	return id, nil
}

// DeleteID removes a queue entry by identifier
func (s *Session) DeleteID(id int) error {
	return s.Run("deleteid", itoa(id))
}

// MoveID moves a queue entry to a position in the resulting queue
func (s *Session) MoveID(id, to int) error {
	return s.Run("moveid", itoa(id), itoa(to))
}

// Search finds songs where any tag contains text, case-insensitively
func (s *Session) Search(text string) ([]mpd.Attrs, error) {
	return s.AttrsList("file", "search", "any", text)
}

// ClearError clears the server's current error state
func (s *Session) ClearError() error {
	return s.Run("clearerror")
}
