package main

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/genricoloni/mpdbar/internal/client"
	"github.com/genricoloni/mpdbar/internal/discovery"
	"github.com/genricoloni/mpdbar/internal/domain"
	"github.com/genricoloni/mpdbar/internal/wire"
	"github.com/genricoloni/mpdbar/internal/wire/wiretest"
	"go.uber.org/zap"
)

var (
	songA1 = wiretest.Song{File: "x/a1.flac", Title: "Alpha One", Artist: "Ann", Album: "X", Track: 1, Duration: 200}
	songA2 = wiretest.Song{File: "x/a2.flac", Title: "Alpha Two", Artist: "Ann", Album: "X", Track: 2, Duration: 180}
	songB1 = wiretest.Song{File: "y/b1.flac", Title: "Beta One", Artist: "Bob", Album: "Y", Track: 1, Duration: 240}
)

type testConfig struct{}

func (testConfig) GetHost() string            { return "" }
func (testConfig) GetPort() int               { return 0 }
func (testConfig) GetPassword() string        { return "" }
func (testConfig) GetMusicDir() string        { return "" }
func (testConfig) GetCacheDir() string        { return "" }
func (testConfig) NotificationsEnabled() bool { return false }
func (testConfig) DiscoveryEnabled() bool     { return false }

func newTestShell(t *testing.T, srv *wiretest.Server) (*shell, *bytes.Buffer) {
	t.Helper()
	host, port := srv.Addr()
	c := client.NewClient(zap.NewNop(), testConfig{}, client.WithAddress(wire.Address{Host: host, Port: port}))
	t.Cleanup(func() { _ = c.Disconnect(context.Background()) })

	out := &bytes.Buffer{}
	return &shell{client: c, browser: discovery.NewBrowser(zap.NewNop()), out: out}, out
}

func mustExec(t *testing.T, s *shell, line string) {
	t.Helper()
	if err := s.exec(context.Background(), line); err != nil {
		t.Fatalf("%q failed: %v", line, err)
	}
}

func TestShell_SearchAndQueue(t *testing.T) {
	srv := wiretest.NewServer(t)
	srv.SetLibrary(songA1, songA2, songB1)
	srv.SetQueue(songA1)
	srv.SetPlayer("play", 0)

	s, out := newTestShell(t, srv)
	mustExec(t, s, "connect")

	mustExec(t, s, "search beta")
	if !strings.Contains(out.String(), "1  Beta One - Bob (Y) 4:00") {
		t.Errorf("Unexpected search output:\n%s", out.String())
	}

	mustExec(t, s, "add 1")
	mustExec(t, s, "search two")
	mustExec(t, s, "addnext 1")
	if got, want := srv.QueueFiles(), []string{songA1.File, songA2.File, songB1.File}; !reflect.DeepEqual(got, want) {
		t.Errorf("Queue mismatch: want %v, got %v", want, got)
	}

	// Upcoming entry 2 is b1
	mustExec(t, s, "playnext 2")
	if got, want := srv.QueueFiles(), []string{songA1.File, songB1.File, songA2.File}; !reflect.DeepEqual(got, want) {
		t.Errorf("Queue after playnext: want %v, got %v", want, got)
	}

	mustExec(t, s, "rm 1")
	if got, want := srv.QueueFiles(), []string{songA1.File, songA2.File}; !reflect.DeepEqual(got, want) {
		t.Errorf("Queue after rm: want %v, got %v", want, got)
	}

	out.Reset()
	mustExec(t, s, "queue")
	if strings.TrimSpace(out.String()) != "1  Alpha Two - Ann (X) 3:00" {
		t.Errorf("Unexpected queue output:\n%s", out.String())
	}
}

func TestShell_StatusAndModes(t *testing.T) {
	srv := wiretest.NewServer(t)
	srv.SetQueue(songA1, songA2)
	srv.SetPlayer("pause", 1)

	s, out := newTestShell(t, srv)
	mustExec(t, s, "status")
	if !strings.HasPrefix(out.String(), "disconnected") {
		t.Errorf("Expected disconnected status, got:\n%s", out.String())
	}

	mustExec(t, s, "connect")
	mustExec(t, s, "random")
	mustExec(t, s, "stopafter")

	out.Reset()
	mustExec(t, s, "status")
	want := "[paused] Alpha Two - Ann (X) 3:00\nconsume:off random:on repeat:off single:off stopafter:on\n"
	if out.String() != want {
		t.Errorf("Status mismatch:\nwant %q\ngot  %q", want, out.String())
	}
}

func TestShell_Errors(t *testing.T) {
	srv := wiretest.NewServer(t)
	s, _ := newTestShell(t, srv)

	tests := []struct {
		line    string
		wantErr error
	}{
		{line: "", wantErr: nil},
		{line: "frobnicate", wantErr: errAny},
		{line: "add 1", wantErr: errAny},
		{line: "rm x", wantErr: errAny},
		{line: "load", wantErr: errAny},
		{line: "next", wantErr: client.ErrNotConnected},
		{line: "quit", wantErr: errQuit},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			err := s.exec(context.Background(), tt.line)
			switch {
			case tt.wantErr == nil && err != nil:
				t.Errorf("Expected no error, got %v", err)
			case tt.wantErr == errAny && err == nil:
				t.Error("Expected error, got nil")
			case tt.wantErr != nil && tt.wantErr != errAny && !errors.Is(err, tt.wantErr):
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

var errAny = errors.New("any error")

func TestModes(t *testing.T) {
	if got := modes(domain.Options{}); !reflect.DeepEqual(got, []string{"none"}) {
		t.Errorf("Unexpected modes %v", got)
	}
	if got := modes(domain.Options{Random: true, Single: true}); !reflect.DeepEqual(got, []string{"random", "single"}) {
		t.Errorf("Unexpected modes %v", got)
	}
}
