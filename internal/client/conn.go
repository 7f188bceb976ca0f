package client

import (
	"context"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/genricoloni/mpdbar/internal/wire"
	"go.uber.org/zap"
)

// Conn is the request side of a session, as used by reloads and commands.
// This abstraction allows us to mock server interactions in tests.
//
//go:generate mockgen -destination=mocks/conn_mock.go -package=mocks github.com/genricoloni/mpdbar/internal/client Conn
type Conn interface {
	Status() (mpd.Attrs, error)
	SongByID(id int) (mpd.Attrs, error)
	QueueInfo() ([]mpd.Attrs, error)
	QueueRange(start, end int) ([]mpd.Attrs, error)
	ListPlaylists() ([]string, error)
	Load(name string) error
	Play(pos int) error
	Pause(pause bool) error
	Stop() error
	Next() error
	Previous() error
	SetConsume(on bool) error
	SetRandom(on bool) error
	SetRepeat(on bool) error
	SetSingle(on bool) error
	AddID(uri string, pos int) (int, error)
	DeleteID(id int) error
	MoveID(id, to int) error
	Search(text string) ([]mpd.Attrs, error)
	ClearError() error
}

// Session adds the idle sub-protocol and lifecycle to Conn
type Session interface {
	Conn

	// Idle subscribes to the given subsystems; the reply is read by ReadIdle
	Idle(subsystems ...string) error

	// ReadIdle blocks until changes are reported or the idle is cancelled
	ReadIdle() ([]string, error)

	// NoIdle cancels an outstanding idle; safe while ReadIdle blocks
	NoIdle() error

	// Close releases the connection; idempotent
	Close() error
}

// Dialer opens a Session
type Dialer func(ctx context.Context, addr wire.Address, logger *zap.Logger) (Session, error)

// DialWire opens a real wire session
func DialWire(ctx context.Context, addr wire.Address, logger *zap.Logger) (Session, error) {
	s, err := wire.Dial(ctx, addr, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}

var _ Session = (*wire.Session)(nil)
