package wire

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/genricoloni/mpdbar/internal/wire/wiretest"
	"go.uber.org/zap"
)

func dialFake(t *testing.T, srv *wiretest.Server, password string) *Session {
	t.Helper()
	host, port := srv.Addr()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s, err := Dial(ctx, Address{Host: host, Port: port, Password: password}, zap.NewNop())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestParseAck(t *testing.T) {
	tests := []struct {
		name string
		line string
		want *ServerError
	}{
		{
			name: "Full ACK",
			line: "ACK [50@0] {play} No such song",
			want: &ServerError{Code: 50, Index: 0, Command: "play", Message: "No such song"},
		},
		{
			name: "Command list index",
			line: "ACK [2@3] {addid} Bad song index",
			want: &ServerError{Code: 2, Index: 3, Command: "addid", Message: "Bad song index"},
		},
		{
			name: "Empty command",
			line: `ACK [5@0] {} unknown command "foo"`,
			want: &ServerError{Code: 5, Message: `unknown command "foo"`},
		},
		{
			name: "Not an ACK",
			line: "OK",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseAck(tt.line)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("Expected nil, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Expected ServerError, got nil")
			}
			if *got != *tt.want {
				t.Errorf("parseAck(%q) = %+v, want %+v", tt.line, *got, *tt.want)
			}
		})
	}
}

func TestFormatCommand(t *testing.T) {
	tests := []struct {
		cmd  string
		args []string
		want string
	}{
		{"status", nil, "status"},
		{"play", []string{"3"}, `play "3"`},
		{"search", []string{"any", `say "hi"`}, `search "any" "say \"hi\""`},
		{"load", []string{`back\slash`}, `load "back\\slash"`},
	}
	for _, tt := range tests {
		if got := formatCommand(tt.cmd, tt.args); got != tt.want {
			t.Errorf("formatCommand(%q, %q) = %s, want %s", tt.cmd, tt.args, got, tt.want)
		}
	}
}

func TestAddress(t *testing.T) {
	tests := []struct {
		name        string
		addr        Address
		wantNetwork string
		wantTarget  string
	}{
		{"Defaults", Address{}, "tcp", "localhost:6600"},
		{"Explicit", Address{Host: "music.lan", Port: 6601}, "tcp", "music.lan:6601"},
		{"IPv6", Address{Host: "::1", Port: 6600}, "tcp", "[::1]:6600"},
		{"Unix socket", Address{Host: "/run/mpd/socket"}, "unix", "/run/mpd/socket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.addr.Network(); got != tt.wantNetwork {
				t.Errorf("Network() = %q, want %q", got, tt.wantNetwork)
			}
			if got := tt.addr.String(); got != tt.wantTarget {
				t.Errorf("String() = %q, want %q", got, tt.wantTarget)
			}
		})
	}
}

func TestParseHost(t *testing.T) {
	host, pw := ParseHost("secret@music.lan")
	if host != "music.lan" || pw != "secret" {
		t.Errorf("ParseHost = (%q, %q), want (music.lan, secret)", host, pw)
	}
	host, pw = ParseHost("@abstract")
	if host != "@abstract" || pw != "" {
		t.Errorf("ParseHost abstract socket = (%q, %q)", host, pw)
	}
}

func TestDial(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(*wiretest.Server)
		password      string
		expectError   bool
		expectPermErr bool
	}{
		{
			name: "Success",
		},
		{
			name:     "Success - Password",
			setup:    func(s *wiretest.Server) { s.SetPassword("hunter2") },
			password: "hunter2",
		},
		{
			name:        "Wrong Password",
			setup:       func(s *wiretest.Server) { s.SetPassword("hunter2") },
			password:    "nope",
			expectError: true,
		},
		{
			name:          "Missing Password Lacks Permissions",
			setup:         func(s *wiretest.Server) { s.SetPassword("hunter2") },
			expectError:   true,
			expectPermErr: true,
		},
		{
			name:          "Play Not Allowed",
			setup:         func(s *wiretest.Server) { s.Deny("play") },
			expectError:   true,
			expectPermErr: true,
		},
		{
			name:          "Currentsong Not Allowed",
			setup:         func(s *wiretest.Server) { s.Deny("currentsong") },
			expectError:   true,
			expectPermErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := wiretest.NewServer(t)
			if tt.setup != nil {
				tt.setup(srv)
			}
			host, port := srv.Addr()

			s, err := Dial(context.Background(), Address{Host: host, Port: port, Password: tt.password}, zap.NewNop())
			if !tt.expectError {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				defer s.Close()
				if s.Version() != "0.23.5" {
					t.Errorf("Version = %q, want 0.23.5", s.Version())
				}
				return
			}

			var ce *ConnectError
			if !errors.As(err, &ce) {
				t.Fatalf("Expected *ConnectError, got %v", err)
			}
			if tt.expectPermErr && !errors.Is(err, ErrPermission) {
				t.Errorf("Expected ErrPermission, got %v", err)
			}
		})
	}
}

func TestDial_Unreachable(t *testing.T) {
	srv := wiretest.NewServer(t)
	host, port := srv.Addr()
	srv.Close()

	_, err := Dial(context.Background(), Address{Host: host, Port: port}, zap.NewNop())
	var ce *ConnectError
	if !errors.As(err, &ce) {
		t.Fatalf("Expected *ConnectError, got %v", err)
	}
}

func TestCommands(t *testing.T) {
	srv := wiretest.NewServer(t)
	songA := wiretest.Song{File: "a.flac", Title: "Alpha", Artist: "Ann", Album: "First", Track: 1, Duration: 61}
	songB := wiretest.Song{File: "b.flac", Title: "Beta", Artist: "Bob", Album: "First", Track: 2}
	srv.SetLibrary(songA, songB)
	srv.SetQueue(songA, songB)
	srv.SetPlaylist("mix", songB)

	s := dialFake(t, srv, "")

	if err := s.Play(1); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	status, err := s.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status["state"] != "play" || status["song"] != "1" {
		t.Errorf("Unexpected status: %v", status)
	}

	queue, err := s.QueueInfo()
	if err != nil {
		t.Fatalf("QueueInfo failed: %v", err)
	}
	if len(queue) != 2 || queue[0]["Title"] != "Alpha" || queue[1]["file"] != "b.flac" {
		t.Errorf("Unexpected queue: %v", queue)
	}

	song, err := s.SongByID(2)
	if err != nil {
		t.Fatalf("SongByID failed: %v", err)
	}
	if song["Title"] != "Beta" {
		t.Errorf("SongByID title = %q, want Beta", song["Title"])
	}

	names, err := s.ListPlaylists()
	if err != nil {
		t.Fatalf("ListPlaylists failed: %v", err)
	}
	if len(names) != 1 || names[0] != "mix" {
		t.Errorf("ListPlaylists = %v, want [mix]", names)
	}

	id, err := s.AddID("a.flac", 0)
	if err != nil {
		t.Fatalf("AddID failed: %v", err)
	}
	if id != 3 {
		t.Errorf("AddID id = %d, want 3", id)
	}

	found, err := s.Search("bob")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(found) != 1 || found[0]["file"] != "b.flac" {
		t.Errorf("Search = %v, want b.flac only", found)
	}
}

func TestServerError(t *testing.T) {
	srv := wiretest.NewServer(t)
	s := dialFake(t, srv, "")

	err := s.Play(5)
	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("Expected *ServerError, got %v", err)
	}
	if se.Code != 2 || se.Command != "play" {
		t.Errorf("Unexpected ServerError: %+v", se)
	}

	// The session stays usable after an ACK
	if _, err := s.Status(); err != nil {
		t.Errorf("Status after ACK failed: %v", err)
	}
}

func TestIdle_ReportsChanges(t *testing.T) {
	srv := wiretest.NewServer(t)
	srv.SetQueue(wiretest.Song{File: "a.flac"})
	s := dialFake(t, srv, "")

	if err := s.Idle("options"); err != nil {
		t.Fatalf("Idle failed: %v", err)
	}
	result := make(chan []string, 1)
	go func() {
		changed, _ := s.ReadIdle()
		result <- changed
	}()

	srv.SetOptions(false, true, false, false)

	select {
	case changed := <-result:
		if len(changed) != 1 || changed[0] != "options" {
			t.Errorf("ReadIdle = %v, want [options]", changed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout: idle did not return")
	}
}

func TestIdle_NoIdleCancels(t *testing.T) {
	srv := wiretest.NewServer(t)
	s := dialFake(t, srv, "")

	if err := s.Idle("player"); err != nil {
		t.Fatalf("Idle failed: %v", err)
	}
	result := make(chan error, 1)
	go func() {
		changed, err := s.ReadIdle()
		if err == nil && len(changed) != 0 {
			err = errors.New("unexpected changes")
		}
		result <- err
	}()

	if err := s.NoIdle(); err != nil {
		t.Fatalf("NoIdle failed: %v", err)
	}
	// A second cancel is a no-op
	if err := s.NoIdle(); err != nil {
		t.Fatalf("Second NoIdle failed: %v", err)
	}

	select {
	case err := <-result:
		if err != nil {
			t.Errorf("ReadIdle failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout: noidle did not cancel idle")
	}

	if _, err := s.Status(); err != nil {
		t.Errorf("Status after noidle failed: %v", err)
	}
}

func TestIdle_ConnectionDrop(t *testing.T) {
	srv := wiretest.NewServer(t)
	s := dialFake(t, srv, "")

	if err := s.Idle("player"); err != nil {
		t.Fatalf("Idle failed: %v", err)
	}
	srv.DropClients()

	_, err := s.ReadIdle()
	if !IsConnectionError(err) {
		t.Fatalf("Expected ConnectionError, got %v", err)
	}
}

func TestClose_Idempotent(t *testing.T) {
	srv := wiretest.NewServer(t)
	s := dialFake(t, srv, "")

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Second Close failed: %v", err)
	}

	_, err := s.Status()
	if !IsConnectionError(err) || !errors.Is(err, ErrClosed) {
		t.Errorf("Expected closed ConnectionError, got %v", err)
	}
}
