package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/genricoloni/mpdbar/internal/client"
	"github.com/genricoloni/mpdbar/internal/discovery"
	"github.com/genricoloni/mpdbar/internal/domain"
)

const browseTimeout = 2 * time.Second

var errQuit = errors.New("quit")

// shell runs one command line at a time against the client
type shell struct {
	client  *client.Client
	browser *discovery.Browser
	out     io.Writer

	// results of the last search, addressed by 1-based index
	results []domain.Track
	// servers of the last browse, addressed by 1-based index
	servers []discovery.Server
}

type handler func(s *shell, ctx context.Context, arg string) error

var commands = map[string]handler{
	"status":     (*shell).status,
	"play":       func(s *shell, ctx context.Context, _ string) error { return s.client.PlayPause(ctx) },
	"toggle":     func(s *shell, ctx context.Context, _ string) error { return s.client.PlayPause(ctx) },
	"next":       func(s *shell, ctx context.Context, _ string) error { return s.client.Next(ctx) },
	"prev":       func(s *shell, ctx context.Context, _ string) error { return s.client.Previous(ctx) },
	"stop":       func(s *shell, ctx context.Context, _ string) error { return s.client.Stop(ctx) },
	"stopafter":  (*shell).stopAfter,
	"consume":    func(s *shell, ctx context.Context, _ string) error { return s.client.ToggleConsume(ctx) },
	"random":     func(s *shell, ctx context.Context, _ string) error { return s.client.ToggleRandom(ctx) },
	"repeat":     func(s *shell, ctx context.Context, _ string) error { return s.client.ToggleRepeat(ctx) },
	"single":     func(s *shell, ctx context.Context, _ string) error { return s.client.ToggleSingle(ctx) },
	"queue":      (*shell).queue,
	"playlists":  (*shell).playlists,
	"load":       (*shell).load,
	"search":     (*shell).search,
	"add":        resultCommand((*client.Client).Append),
	"addfirst":   resultCommand((*client.Client).InsertAtBeginning),
	"addnext":    resultCommand((*client.Client).InsertAfterCurrentTrack),
	"addalbum":   resultCommand((*client.Client).InsertAfterCurrentAlbum),
	"rm":         (*shell).remove,
	"playnext":   (*shell).playNext,
	"servers":    (*shell).browse,
	"connect":    (*shell).connect,
	"disconnect": func(s *shell, ctx context.Context, _ string) error { return s.client.Disconnect(ctx) },
	"help":       (*shell).help,
	"quit":       func(*shell, context.Context, string) error { return errQuit },
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	return names
}

// exec runs a single line; errQuit ends the session
func (s *shell) exec(ctx context.Context, line string) error {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	if name == "" {
		return nil
	}
	h, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q, try help", name)
	}
	return h(s, ctx, strings.TrimSpace(arg))
}

func (s *shell) status(context.Context, string) error {
	if !s.client.Connected() {
		fmt.Fprintln(s.out, "disconnected")
		if err := s.client.LastDisconnectError(); err != nil {
			fmt.Fprintf(s.out, "last error: %v\n", err)
		}
		return nil
	}
	st := s.client.Status()
	opts := s.client.Options()
	fmt.Fprintf(s.out, "[%s] %s\n", st.State, formatTrack(st.Current))
	fmt.Fprintf(s.out, "consume:%s random:%s repeat:%s single:%s stopafter:%s\n",
		onOff(opts.Consume), onOff(opts.Random), onOff(opts.Repeat), onOff(opts.Single), onOff(st.StopAfterCurrent))
	return nil
}

func (s *shell) stopAfter(context.Context, string) error {
	on := !s.client.StopAfterCurrent()
	s.client.SetStopAfterCurrent(on)
	fmt.Fprintf(s.out, "stop after current: %s\n", onOff(on))
	return nil
}

func (s *shell) queue(context.Context, string) error {
	printTracks(s.out, s.client.Queue())
	return nil
}

func (s *shell) playlists(context.Context, string) error {
	for _, name := range s.client.Playlists() {
		fmt.Fprintln(s.out, name)
	}
	return nil
}

func (s *shell) load(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("usage: load <playlist>")
	}
	return s.client.LoadPlaylist(ctx, name)
}

func (s *shell) search(ctx context.Context, text string) error {
	found, err := s.client.Search(ctx, text)
	if err != nil {
		return err
	}
	s.results = found
	printTracks(s.out, found)
	return nil
}

// resultCommand adapts a queue insertion to take a search result index
func resultCommand(insert func(*client.Client, context.Context, []domain.Track) error) handler {
	return func(s *shell, ctx context.Context, arg string) error {
		tr, err := pick(s.results, arg)
		if err != nil {
			return err
		}
		return insert(s.client, ctx, []domain.Track{tr})
	}
}

func (s *shell) remove(ctx context.Context, arg string) error {
	tr, err := pick(s.client.Queue(), arg)
	if err != nil {
		return err
	}
	return s.client.Remove(ctx, []domain.Track{tr})
}

func (s *shell) playNext(ctx context.Context, arg string) error {
	tr, err := pick(s.client.Queue(), arg)
	if err != nil {
		return err
	}
	return s.client.MoveAfterCurrent(ctx, tr)
}

func (s *shell) browse(ctx context.Context, _ string) error {
	servers, err := s.browser.Browse(ctx, browseTimeout)
	if err != nil {
		return err
	}
	s.servers = servers
	if len(servers) == 0 {
		fmt.Fprintln(s.out, "no servers found")
	}
	for i, srv := range servers {
		fmt.Fprintf(s.out, "%3d  %s\n", i+1, srv)
	}
	return nil
}

// connect dials the configured server, or a server from the last browse
func (s *shell) connect(ctx context.Context, arg string) error {
	if arg != "" {
		srv, err := pick(s.servers, arg)
		if err != nil {
			return err
		}
		if s.client.Connected() {
			if err := s.client.Disconnect(ctx); err != nil {
				return err
			}
		}
		s.client.SetAddress(srv.Address())
	}
	return s.client.Connect(ctx)
}

func (s *shell) help(context.Context, string) error {
	fmt.Fprint(s.out, `status                      show player and options
play|toggle next prev stop  transport
stopafter                   toggle stop after current track
consume random repeat single toggle playback modes
queue  playlists            list upcoming tracks or stored playlists
load <name>                 append a playlist and play it
search <text>               search the library
add|addfirst|addnext|addalbum <n>  queue search result n
rm <n>  playnext <n>        remove or promote queue entry n
servers  connect [n]  disconnect
quit
`)
	return nil
}

func pick[T any](list []T, arg string) (T, error) {
	var zero T
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(list) {
		return zero, fmt.Errorf("index %q out of range 1..%d", arg, len(list))
	}
	return list[n-1], nil
}

func printTracks(w io.Writer, tracks []domain.Track) {
	if len(tracks) == 0 {
		fmt.Fprintln(w, "(empty)")
		return
	}
	for i, tr := range tracks {
		fmt.Fprintf(w, "%3d  %s\n", i+1, formatTrack(&tr))
	}
}

func formatTrack(t *domain.Track) string {
	if t == nil {
		return "-"
	}
	line := t.DisplayTitle()
	if t.Artist != "" {
		line += " - " + t.Artist
	}
	if t.Album != "" {
		line += " (" + t.Album + ")"
	}
	return line + " " + t.DurationString()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
