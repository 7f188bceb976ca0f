package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/genricoloni/mpdbar/internal/domain"
	"github.com/genricoloni/mpdbar/internal/wire"
	"go.uber.org/zap"
)

var (
	// ErrNotConnected is returned by operations issued while disconnected
	ErrNotConnected = errors.New("not connected")
	// ErrDisconnected fails commands still pending when the connection goes away
	ErrDisconnected = errors.New("disconnected before the command ran")
	// ErrDeadConnection reports an empty idle reply nobody asked for
	ErrDeadConnection = errors.New("dead connection: empty idle reply")
)

// disconnectGrace bounds how long Disconnect waits for the loop to notice
// the cancel before the socket is closed under it
const disconnectGrace = 2 * time.Second

type connState int

const (
	stateDisconnected connState = iota
	stateConnecting
	stateConnected
)

// Option configures a Client
type Option func(*Client)

// WithDialer replaces the wire dialer
func WithDialer(d Dialer) Option {
	return func(c *Client) {
		c.dial = d
	}
}

// WithAddress pins the server address instead of reading it from config
func WithAddress(addr wire.Address) Option {
	return func(c *Client) {
		c.addr = &addr
	}
}

// Client is the public face of the music server connection. Operations are
// queued and executed by a single loop goroutine that otherwise keeps the
// connection in idle mode; cached state is read without touching the wire.
type Client struct {
	logger *zap.Logger
	cfg    domain.Config
	dial   Dialer
	events *Broadcaster
	state  *Synchronizer

	// lifecycle serializes Connect and Disconnect
	lifecycle sync.Mutex

	// mu guards everything below, including the queue, so that the decision
	// to enter idle and the decision to cancel it never race
	mu         sync.Mutex
	addr       *wire.Address
	status     connState
	conn       Session
	queue      commandQueue
	idling     bool
	cancelSent bool
	stopping   bool
	done       chan struct{}
	lastErr    error
}

// NewClient creates a disconnected client
func NewClient(logger *zap.Logger, cfg domain.Config, opts ...Option) *Client {
	events := NewBroadcaster(logger)
	c := &Client{
		logger: logger,
		cfg:    cfg,
		dial:   DialWire,
		events: events,
		state:  NewSynchronizer(logger, events),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers for change notifications
func (c *Client) Subscribe() (<-chan domain.Event, func()) {
	return c.events.Subscribe()
}

// SetAddress overrides the server address used by the next Connect
func (c *Client) SetAddress(addr wire.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addr = &addr
}

// Address returns the address the next Connect dials
func (c *Client) Address() wire.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addressLocked()
}

func (c *Client) addressLocked() wire.Address {
	if c.addr != nil {
		return *c.addr
	}
	return wire.Address{
		Host:     c.cfg.GetHost(),
		Port:     c.cfg.GetPort(),
		Password: c.cfg.GetPassword(),
	}
}

// Connect opens the session, loads the initial state and starts the event
// loop. It is a no-op when already connected.
func (c *Client) Connect(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	if c.status != stateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.status = stateConnecting
	addr := c.addressLocked()
	c.mu.Unlock()

	c.logger.Info("Connecting to music server", zap.String("addr", addr.String()))

	conn, err := c.dial(ctx, addr, c.logger)
	if err != nil {
		c.failConnect(err)
		return err
	}

	for _, cat := range []domain.Category{
		domain.CategoryPlayer,
		domain.CategoryOptions,
		domain.CategoryStoredPlaylist,
		domain.CategoryQueue,
	} {
		if err := c.state.Reload(conn, cat); err != nil {
			_ = conn.Close()
			err = &wire.ConnectError{Addr: addr.String(), Err: fmt.Errorf("initial %s reload: %w", cat, err)}
			c.failConnect(err)
			return err
		}
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.conn = conn
	c.status = stateConnected
	c.done = done
	c.lastErr = nil
	c.mu.Unlock()

	go c.run(conn, done)

	c.logger.Info("Connected to music server", zap.String("addr", addr.String()))
	c.events.Publish(domain.EventConnected)
	return nil
}

func (c *Client) failConnect(err error) {
	c.logger.Warn("Failed to connect to music server", zap.Error(err))
	c.state.Reset()

	c.mu.Lock()
	c.status = stateDisconnected
	c.lastErr = err
	c.mu.Unlock()

	c.events.Publish(domain.EventDisconnected)
}

// Disconnect stops the loop and releases the connection. It waits for an
// outstanding idle to be cancelled, closing the socket if the server does
// not answer within the grace period or ctx ends first. Calling it while
// disconnected is a no-op.
func (c *Client) Disconnect(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	if c.status != stateConnected || c.stopping {
		c.mu.Unlock()
		return nil
	}
	c.stopping = true
	conn, done := c.conn, c.done
	c.interruptLocked()
	c.mu.Unlock()

	c.logger.Info("Disconnecting from music server")

	timer := time.NewTimer(disconnectGrace)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		c.logger.Warn("Event loop did not stop in time, closing connection")
	case <-ctx.Done():
	}
	_ = conn.Close()
	<-done
	return ctx.Err()
}

// Connected reports whether the event loop is running
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status == stateConnected && !c.stopping
}

// LastDisconnectError returns why the last connection ended or failed;
// nil after an explicit Disconnect
func (c *Client) LastDisconnectError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Status returns the cached player status
func (c *Client) Status() domain.PlayerStatus {
	return c.state.Player()
}

// CurrentTrack returns the cached current track, or nil
func (c *Client) CurrentTrack() *domain.Track {
	return c.state.Player().Current
}

// Options returns the cached mode flags
func (c *Client) Options() domain.Options {
	return c.state.Options()
}

// Queue returns the cached upcoming tracks
func (c *Client) Queue() []domain.Track {
	return c.state.Queue()
}

// Playlists returns the cached stored playlist names
func (c *Client) Playlists() []string {
	return c.state.Playlists()
}

// SetStopAfterCurrent arms or disarms stopping when the current track ends
func (c *Client) SetStopAfterCurrent(on bool) {
	c.state.SetStopAfterCurrent(on)
	c.events.Publish(domain.EventPlayerRefreshed)
}

// StopAfterCurrent reports whether stop-after-current is armed
func (c *Client) StopAfterCurrent() bool {
	return c.state.Player().StopAfterCurrent
}

// enqueue appends cmd and cancels the idle wait so the loop drains it.
// It never blocks on the server.
func (c *Client) enqueue(cmd *command) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != stateConnected || c.stopping {
		return ErrNotConnected
	}
	c.queue.push(cmd)
	c.logger.Debug("Command enqueued",
		zap.String("cmd", cmd.name),
		zap.Stringer("id", cmd.id),
		zap.Int("pending", c.queue.len()))
	c.interruptLocked()
	return nil
}

// interruptLocked cancels an outstanding idle wait, at most once per wait
func (c *Client) interruptLocked() {
	if !c.idling || c.cancelSent {
		return
	}
	c.cancelSent = true
	if err := c.conn.NoIdle(); err != nil {
		// The loop's read fails on the same broken socket
		c.logger.Warn("Failed to cancel idle", zap.Error(err))
	}
}

// do enqueues a command and waits for it to complete
func (c *Client) do(ctx context.Context, name string, dirty domain.CategorySet, run func(Conn) error) error {
	cmd := newCommand(name, dirty, run)
	if err := c.enqueue(cmd); err != nil {
		return err
	}
	select {
	case err := <-cmd.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
