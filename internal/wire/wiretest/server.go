// Package wiretest provides an in-process fake music server speaking the
// line protocol, for tests that need a real socket.
package wiretest

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Song is a library entry of the fake server
type Song struct {
	File     string
	Title    string
	Artist   string
	Album    string
	Track    int
	Duration float64
}

type queued struct {
	id   int
	song Song
}

// Server is a fake server holding a queue, options, stored playlists and
// per-client idle state. All exported methods are safe for concurrent use.
type Server struct {
	ln net.Listener
	wg sync.WaitGroup

	mu        sync.Mutex
	library   []Song
	queue     []queued
	nextID    int
	state     string
	current   int
	consume   bool
	random    bool
	repeat    bool
	single    bool
	playlists map[string][]Song
	names     []string
	password  string
	denied    map[string]bool
	failures  map[string][]string
	log       []string
	clients   map[*client]struct{}
	silent    bool
}

type client struct {
	conn    net.Conn
	wmu     sync.Mutex
	w       *bufio.Writer
	authed  bool
	pending map[string]bool
	waiting map[string]bool // non-nil while an idle request is outstanding
}

// NewServer starts a fake server on a loopback port; it is closed on test cleanup
func NewServer(t testing.TB) *Server {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &Server{
		ln:        ln,
		nextID:    1,
		state:     "stop",
		current:   -1,
		playlists: make(map[string][]Song),
		denied:    make(map[string]bool),
		failures:  make(map[string][]string),
		clients:   make(map[*client]struct{}),
	}
	s.wg.Add(1)
	go s.accept()
	t.Cleanup(s.Close)
	return s
}

// Addr returns the host and port the server listens on
func (s *Server) Addr() (string, int) {
	tcp := s.ln.Addr().(*net.TCPAddr)
	return tcp.IP.String(), tcp.Port
}

// Close stops the listener and drops every client
func (s *Server) Close() {
	_ = s.ln.Close()
	s.DropClients()
	s.wg.Wait()
}

// DropClients closes every client connection, as a crashing server would
func (s *Server) DropClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		_ = c.conn.Close()
	}
}

// SetSilentClose makes the server drop idle clients by closing the socket
// on the next idle request instead of answering
func (s *Server) SetSilentClose(silent bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.silent = silent
}

// SetPassword requires clients to authenticate before they are allowed
// more than the "commands" command
func (s *Server) SetPassword(pw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.password = pw
}

// Deny hides a command from the allowed command list
func (s *Server) Deny(cmd string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denied[cmd] = true
}

// FailNext makes the next invocation of cmd answer with an ACK
func (s *Server) FailNext(cmd string, code int, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[cmd] = append(s.failures[cmd], fmt.Sprintf("ACK [%d@0] {%s} %s", code, cmd, msg))
}

// SetLibrary replaces the searchable library
func (s *Server) SetLibrary(songs ...Song) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.library = append([]Song(nil), songs...)
}

// SetQueue replaces the queue and stops playback
func (s *Server) SetQueue(songs ...Song) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = nil
	for _, song := range songs {
		s.queue = append(s.queue, queued{id: s.nextID, song: song})
		s.nextID++
	}
	s.state = "stop"
	s.current = -1
	s.notifyLocked("playlist", "player")
}

// SetPlaylist stores a playlist
func (s *Server) SetPlaylist(name string, songs ...Song) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[name]; !ok {
		s.names = append(s.names, name)
	}
	s.playlists[name] = append([]Song(nil), songs...)
	s.notifyLocked("stored_playlist")
}

// SetPlayer forces the player state ("play", "pause", "stop") and position,
// as another client would
func (s *Server) SetPlayer(state string, pos int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.current = pos
	if state == "stop" {
		s.current = -1
	}
	s.notifyLocked("player")
}

// SetOptions forces the mode flags, as another client would
func (s *Server) SetOptions(consume, random, repeat, single bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consume, s.random, s.repeat, s.single = consume, random, repeat, single
	s.notifyLocked("options")
}

// Touch raises change flags without changing state
func (s *Server) Touch(subsystems ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyLocked(subsystems...)
}

// QueueFiles returns the queue as song files
func (s *Server) QueueFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	files := make([]string, len(s.queue))
	for i, q := range s.queue {
		files[i] = q.song.File
	}
	return files
}

// QueueIDs returns the queue identifiers in order
func (s *Server) QueueIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, len(s.queue))
	for i, q := range s.queue {
		ids[i] = q.id
	}
	return ids
}

// PlayerState returns the state and current position
func (s *Server) PlayerState() (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.current
}

// Log returns every command line received, in order
func (s *Server) Log() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.log...)
}

// Count returns how many times cmd was received
func (s *Server) Count(cmd string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, line := range s.log {
		if name, _, _ := strings.Cut(line, " "); name == cmd {
			n++
		}
	}
	return n
}

// ResetLog clears the command log
func (s *Server) ResetLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = nil
}

func (s *Server) accept() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		c := &client{conn: conn, w: bufio.NewWriter(conn), pending: make(map[string]bool)}
		s.mu.Lock()
		c.authed = s.password == ""
		s.clients[c] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serve(c)
	}
}

func (s *Server) serve(c *client) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		_ = c.conn.Close()
	}()

	c.send("OK MPD 0.23.5")
	r := bufio.NewReader(c.conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if !s.handle(c, line) {
			return
		}
	}
}

// handle processes one line, returning false when the client must be dropped
func (s *Server) handle(c *client, line string) bool {
	cmd, args := parseLine(line)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, line)

	if c.waiting != nil {
		if cmd != "noidle" {
			// Anything but noidle while idle is a protocol violation
			return false
		}
		c.waiting = nil
		c.send("OK")
		return true
	}

	switch cmd {
	case "noidle":
		return true
	case "close":
		return false
	case "idle":
		if s.silent {
			return false
		}
		mask := make(map[string]bool)
		for _, a := range args {
			mask[a] = true
		}
		if len(mask) == 0 {
			for _, sub := range []string{"player", "options", "playlist", "stored_playlist", "mixer", "database"} {
				mask[sub] = true
			}
		}
		c.waiting = mask
		s.flushIdleLocked(c)
		return true
	}

	if fails := s.failures[cmd]; len(fails) > 0 {
		s.failures[cmd] = fails[1:]
		c.send(fails[0])
		return true
	}

	if !c.authed && cmd != "password" && cmd != "commands" {
		c.send(fmt.Sprintf("ACK [4@0] {%s} you don't have permission for \"%s\"", cmd, cmd))
		return true
	}

	out, err := s.execLocked(c, cmd, args)
	if err != "" {
		c.send(fmt.Sprintf("ACK %s", err))
		return true
	}
	for _, l := range out {
		c.send(l)
	}
	c.send("OK")
	return true
}

func (s *Server) execLocked(c *client, cmd string, args []string) ([]string, string) {
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}
	intArg := func(i int) (int, bool) {
		n, err := strconv.Atoi(arg(i))
		return n, err == nil
	}

	switch cmd {
	case "password":
		if arg(0) != s.password {
			return nil, "[3@0] {password} incorrect password"
		}
		c.authed = true
		return nil, ""

	case "commands":
		var out []string
		all := []string{"add", "addid", "clearerror", "close", "commands", "consume", "currentsong",
			"deleteid", "idle", "listplaylists", "load", "moveid", "next", "noidle", "password",
			"pause", "play", "playlistid", "playlistinfo", "previous", "random", "repeat",
			"search", "single", "status", "stop"}
		for _, name := range all {
			if !c.authed && name != "commands" && name != "password" && name != "close" {
				continue
			}
			if !s.denied[name] {
				out = append(out, "command: "+name)
			}
		}
		return out, ""

	case "status":
		out := []string{
			"volume: 100",
			"repeat: " + b2s(s.repeat),
			"random: " + b2s(s.random),
			"single: " + b2s(s.single),
			"consume: " + b2s(s.consume),
			"playlistlength: " + strconv.Itoa(len(s.queue)),
			"state: " + s.state,
		}
		if s.current >= 0 && s.current < len(s.queue) {
			out = append(out,
				"song: "+strconv.Itoa(s.current),
				"songid: "+strconv.Itoa(s.queue[s.current].id))
		}
		return out, ""

	case "currentsong":
		if s.current < 0 || s.current >= len(s.queue) {
			return nil, ""
		}
		return songLines(s.queue[s.current], s.current), ""

	case "playlistid":
		id, _ := intArg(0)
		for i, q := range s.queue {
			if q.id == id {
				return songLines(q, i), ""
			}
		}
		return nil, "[50@0] {playlistid} No such song"

	case "playlistinfo":
		start, end := 0, len(s.queue)
		if r := arg(0); r != "" {
			from, to, _ := strings.Cut(r, ":")
			start, _ = strconv.Atoi(from)
			if to != "" {
				end, _ = strconv.Atoi(to)
			}
			end = min(end, len(s.queue))
		}
		var out []string
		for i := start; i < end; i++ {
			out = append(out, songLines(s.queue[i], i)...)
		}
		return out, ""

	case "listplaylists":
		var out []string
		for _, name := range s.names {
			out = append(out, "playlist: "+name, "Last-Modified: 2024-01-01T00:00:00Z")
		}
		return out, ""

	case "load":
		songs, ok := s.playlists[arg(0)]
		if !ok {
			return nil, "[50@0] {load} No such playlist"
		}
		for _, song := range songs {
			s.queue = append(s.queue, queued{id: s.nextID, song: song})
			s.nextID++
		}
		s.notifyLocked("playlist")
		return nil, ""

	case "play":
		pos := s.current
		if p, ok := intArg(0); ok {
			pos = p
		} else if s.state == "pause" {
			s.state = "play"
			s.notifyLocked("player")
			return nil, ""
		}
		if pos < 0 {
			pos = 0
		}
		if pos >= len(s.queue) {
			return nil, "[2@0] {play} Bad song index"
		}
		s.state, s.current = "play", pos
		s.notifyLocked("player")
		return nil, ""

	case "pause":
		if s.state == "stop" {
			return nil, ""
		}
		if arg(0) == "1" {
			s.state = "pause"
		} else {
			s.state = "play"
		}
		s.notifyLocked("player")
		return nil, ""

	case "stop":
		s.state, s.current = "stop", -1
		s.notifyLocked("player")
		return nil, ""

	case "next", "previous":
		if s.state == "stop" {
			return nil, ""
		}
		next := s.current + 1
		if cmd == "previous" {
			next = s.current - 1
		}
		if next < 0 || next >= len(s.queue) {
			s.state, s.current = "stop", -1
		} else {
			s.current = next
		}
		s.notifyLocked("player")
		return nil, ""

	case "consume", "random", "repeat", "single":
		on := arg(0) == "1"
		switch cmd {
		case "consume":
			s.consume = on
		case "random":
			s.random = on
		case "repeat":
			s.repeat = on
		case "single":
			s.single = on
		}
		s.notifyLocked("options")
		return nil, ""

	case "addid":
		song, ok := s.lookupLocked(arg(0))
		if !ok {
			return nil, "[50@0] {addid} No such directory"
		}
		pos := len(s.queue)
		if p, ok := intArg(1); ok {
			if p > len(s.queue) {
				return nil, "[2@0] {addid} Bad song index"
			}
			pos = p
		}
		entry := queued{id: s.nextID, song: song}
		s.nextID++
		s.queue = append(s.queue[:pos], append([]queued{entry}, s.queue[pos:]...)...)
		if s.current >= pos {
			s.current++
		}
		s.notifyLocked("playlist")
		return []string{"Id: " + strconv.Itoa(entry.id)}, ""

	case "deleteid":
		id, _ := intArg(0)
		for i, q := range s.queue {
			if q.id != id {
				continue
			}
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			switch {
			case i == s.current:
				s.state, s.current = "stop", -1
				s.notifyLocked("player")
			case i < s.current:
				s.current--
			}
			s.notifyLocked("playlist")
			return nil, ""
		}
		return nil, "[50@0] {deleteid} No such song"

	case "moveid":
		id, _ := intArg(0)
		to, _ := intArg(1)
		from := -1
		for i, q := range s.queue {
			if q.id == id {
				from = i
			}
		}
		if from < 0 || to < 0 || to >= len(s.queue) {
			return nil, "[50@0] {moveid} No such song"
		}
		var curID int
		if s.current >= 0 {
			curID = s.queue[s.current].id
		}
		entry := s.queue[from]
		s.queue = append(s.queue[:from], s.queue[from+1:]...)
		s.queue = append(s.queue[:to], append([]queued{entry}, s.queue[to:]...)...)
		if s.current >= 0 {
			for i, q := range s.queue {
				if q.id == curID {
					s.current = i
				}
			}
		}
		s.notifyLocked("playlist")
		return nil, ""

	case "search":
		needle := strings.ToLower(arg(1))
		var out []string
		for _, song := range s.library {
			hay := strings.ToLower(strings.Join([]string{song.File, song.Title, song.Artist, song.Album}, "\n"))
			if strings.Contains(hay, needle) {
				out = append(out, songLines(queued{song: song}, -1)...)
			}
		}
		return out, ""

	case "clearerror":
		return nil, ""
	}
	return nil, fmt.Sprintf("[5@0] {} unknown command \"%s\"", cmd)
}

func (s *Server) lookupLocked(file string) (Song, bool) {
	for _, song := range s.library {
		if song.File == file {
			return song, true
		}
	}
	for _, songs := range s.playlists {
		for _, song := range songs {
			if song.File == file {
				return song, true
			}
		}
	}
	return Song{}, false
}

func (s *Server) notifyLocked(subsystems ...string) {
	for c := range s.clients {
		for _, sub := range subsystems {
			c.pending[sub] = true
		}
		s.flushIdleLocked(c)
	}
}

// flushIdleLocked answers an outstanding idle when a subscribed flag is pending
func (s *Server) flushIdleLocked(c *client) {
	if c.waiting == nil {
		return
	}
	var changed []string
	for _, sub := range []string{"stored_playlist", "playlist", "player", "mixer", "options", "database"} {
		if c.waiting[sub] && c.pending[sub] {
			changed = append(changed, "changed: "+sub)
			delete(c.pending, sub)
		}
	}
	if len(changed) == 0 {
		return
	}
	c.waiting = nil
	for _, l := range changed {
		c.send(l)
	}
	c.send("OK")
}

func (c *client) send(line string) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_, _ = c.w.WriteString(line + "\n")
	_ = c.w.Flush()
}

func songLines(q queued, pos int) []string {
	out := []string{"file: " + q.song.File}
	if q.song.Title != "" {
		out = append(out, "Title: "+q.song.Title)
	}
	if q.song.Artist != "" {
		out = append(out, "Artist: "+q.song.Artist)
	}
	if q.song.Album != "" {
		out = append(out, "Album: "+q.song.Album)
	}
	if q.song.Track > 0 {
		out = append(out, "Track: "+strconv.Itoa(q.song.Track))
	}
	if q.song.Duration > 0 {
		out = append(out, "duration: "+strconv.FormatFloat(q.song.Duration, 'f', 3, 64))
	}
	if pos >= 0 {
		out = append(out, "Pos: "+strconv.Itoa(pos), "Id: "+strconv.Itoa(q.id))
	}
	return out
}

// parseLine splits a command line, honouring double quotes and backslash escapes
func parseLine(line string) (string, []string) {
	var (
		fields  []string
		cur     strings.Builder
		inQuote bool
		escaped bool
		started bool
	)
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case escaped:
			cur.WriteByte(ch)
			escaped = false
		case ch == '\\' && inQuote:
			escaped = true
		case ch == '"':
			inQuote = !inQuote
			started = true
		case ch == ' ' && !inQuote:
			if started {
				fields = append(fields, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteByte(ch)
			started = true
		}
	}
	if started {
		fields = append(fields, cur.String())
	}
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

func b2s(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
