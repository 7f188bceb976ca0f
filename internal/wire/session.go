package wire

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fhs/gompd/v2/mpd"
	"go.uber.org/zap"
)

const (
	dialTimeout    = 10 * time.Second
	replyTimeout   = 30 * time.Second
	closeTimeout   = time.Second
	greetingPrefix = "OK MPD "
)

// Commands the client needs to be allowed to run: reading the current song
// and controlling playback
var requiredCommands = []string{"currentsong", "play"}

// Session owns exactly one connection to the server.
//
// A Session is not reentrant: at most one request may be in flight. The only
// call that may overlap another is NoIdle, which cancels a blocked ReadIdle.
type Session struct {
	logger  *zap.Logger
	conn    net.Conn
	text    *textproto.Conn
	addr    string
	version string

	wmu    sync.Mutex // serializes writes
	idling bool       // an idle request is outstanding and not yet cancelled; guarded by wmu

	closeMu sync.Mutex
	closed  bool
}

// Dial opens a session: connects, reads the greeting, authenticates and
// verifies permissions. Every failure is reported as *ConnectError.
func Dial(ctx context.Context, addr Address, logger *zap.Logger) (*Session, error) {
	target := addr.String()

	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, addr.Network(), target)
	if err != nil {
		return nil, &ConnectError{Addr: target, Err: err}
	}

	s := newSession(conn, target, logger)
	if err := s.handshake(ctx, addr.Password); err != nil {
		_ = conn.Close()
		return nil, &ConnectError{Addr: target, Err: err}
	}

	s.logger.Info("Session opened",
		zap.String("addr", target),
		zap.String("version", s.version))
	return s, nil
}

func newSession(conn net.Conn, addr string, logger *zap.Logger) *Session {
	return &Session{
		logger: logger,
		conn:   conn,
		text:   textproto.NewConn(conn),
		addr:   addr,
	}
}

func (s *Session) handshake(ctx context.Context, password string) error {
	deadline := time.Now().Add(dialTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.conn.SetDeadline(deadline); err != nil {
		return err
	}
	defer func() { _ = s.conn.SetDeadline(time.Time{}) }()

	line, err := s.text.ReadLine()
	if err != nil {
		return fmt.Errorf("read greeting: %w", err)
	}
	version, ok := strings.CutPrefix(line, greetingPrefix)
	if !ok {
		return &ProtocolError{Op: "greeting", Line: line}
	}
	s.version = version

	if password != "" {
		if err := s.Run("password", password); err != nil {
			return fmt.Errorf("authenticate: %w", err)
		}
	}

	allowed, err := s.AllowedCommands()
	if err != nil {
		return fmt.Errorf("probe permissions: %w", err)
	}
	have := make(map[string]bool, len(allowed))
	for _, c := range allowed {
		have[c] = true
	}
	for _, c := range requiredCommands {
		if !have[c] {
			return fmt.Errorf("%w: %q not allowed", ErrPermission, c)
		}
	}
	return nil
}

// Version returns the protocol version announced in the greeting
func (s *Session) Version() string {
	return s.version
}

// Addr returns the dial target of the session
func (s *Session) Addr() string {
	return s.addr
}

// Close releases the connection. It is idempotent and safe to call from any
// goroutine; a blocked read returns a ConnectionError.
func (s *Session) Close() error {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return nil
	}
	s.closed = true
	s.closeMu.Unlock()

	// Best-effort goodbye so the server does not log a dropped client
	_ = s.conn.SetWriteDeadline(time.Now().Add(closeTimeout))
	s.wmu.Lock()
	_ = s.text.PrintfLine("close")
	s.wmu.Unlock()

	if err := s.text.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("close %s: %w", s.addr, err)
	}
	s.logger.Debug("Session closed", zap.String("addr", s.addr))
	return nil
}

func (s *Session) isClosed() bool {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	return s.closed
}

// Run sends a command whose only reply is "OK"
func (s *Session) Run(cmd string, args ...string) error {
	if err := s.request(cmd, args); err != nil {
		return err
	}
	line, err := s.readLine(cmd)
	if err != nil {
		return err
	}
	switch {
	case line == "OK":
		return nil
	case strings.HasPrefix(line, "ACK "):
		return parseAck(line)
	default:
		return &ProtocolError{Op: cmd, Line: line}
	}
}

// Attrs sends a command and collects its "key: value" reply into one object
func (s *Session) Attrs(cmd string, args ...string) (mpd.Attrs, error) {
	list, err := s.collect(cmd, args, "")
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return mpd.Attrs{}, nil
	}
	return list[0], nil
}

// AttrsList sends a command whose reply is a stream of objects, each
// starting with startKey
func (s *Session) AttrsList(startKey, cmd string, args ...string) ([]mpd.Attrs, error) {
	return s.collect(cmd, args, startKey)
}

// Values sends a command and returns every value reported for key, in order
func (s *Session) Values(key, cmd string, args ...string) ([]string, error) {
	if err := s.request(cmd, args); err != nil {
		return nil, err
	}
	var values []string
	var malformed string
	for {
		line, err := s.readLine(cmd)
		if err != nil {
			return nil, err
		}
		if line == "OK" {
			break
		}
		if ack := parseAck(line); ack != nil {
			return nil, ack
		}
		k, v, ok := strings.Cut(line, ": ")
		if !ok {
			if malformed == "" {
				malformed = line
			}
			continue
		}
		if k == key {
			values = append(values, v)
		}
	}
	if malformed != "" {
		return nil, &ProtocolError{Op: cmd, Line: malformed}
	}
	return values, nil
}

// collect reads a multi-line reply. With an empty startKey everything goes
// into a single object. Malformed lines are skipped up to the terminating OK
// so the stream stays in sync, then reported as a ProtocolError.
func (s *Session) collect(cmd string, args []string, startKey string) ([]mpd.Attrs, error) {
	if err := s.request(cmd, args); err != nil {
		return nil, err
	}

	var (
		list      []mpd.Attrs
		current   mpd.Attrs
		malformed string
	)
	for {
		line, err := s.readLine(cmd)
		if err != nil {
			return nil, err
		}
		if line == "OK" {
			break
		}
		if ack := parseAck(line); ack != nil {
			return nil, ack
		}
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			if malformed == "" {
				malformed = line
			}
			continue
		}
		if current == nil || (startKey != "" && key == startKey) {
			current = mpd.Attrs{}
			list = append(list, current)
		}
		current[key] = value
	}
	if malformed != "" {
		return nil, &ProtocolError{Op: cmd, Line: malformed}
	}
	return list, nil
}

// Idle subscribes to change notifications for the given subsystems.
// The reply is read with ReadIdle.
func (s *Session) Idle(subsystems ...string) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	if err := s.write("idle", subsystems); err != nil {
		return err
	}
	s.idling = true
	return nil
}

// NoIdle cancels an outstanding idle request. It may be called from another
// goroutine while ReadIdle blocks; without an outstanding idle it is a no-op.
func (s *Session) NoIdle() error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	if !s.idling {
		return nil
	}
	if err := s.write("noidle", nil); err != nil {
		return err
	}
	s.idling = false
	return nil
}

// ReadIdle blocks until the server answers an idle request, returning the
// changed subsystems in the order reported. A cancelled idle with no
// pending changes yields an empty list.
func (s *Session) ReadIdle() ([]string, error) {
	if err := s.conn.SetReadDeadline(time.Time{}); err != nil {
		return nil, s.connErr("idle", err)
	}
	defer func() {
		s.wmu.Lock()
		s.idling = false
		s.wmu.Unlock()
	}()

	var changed []string
	for {
		line, err := s.text.ReadLine()
		if err != nil {
			return nil, s.connErr("idle", err)
		}
		if line == "OK" {
			return changed, nil
		}
		if ack := parseAck(line); ack != nil {
			return nil, ack
		}
		subsystem, ok := strings.CutPrefix(line, "changed: ")
		if !ok {
			return nil, &ProtocolError{Op: "idle", Line: line}
		}
		changed = append(changed, subsystem)
	}
}

func (s *Session) request(cmd string, args []string) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.write(cmd, args)
}

// write must be called with wmu held
func (s *Session) write(cmd string, args []string) error {
	if s.isClosed() {
		return &ConnectionError{Op: cmd, Err: ErrClosed}
	}
	if err := s.text.PrintfLine("%s", formatCommand(cmd, args)); err != nil {
		return s.connErr(cmd, err)
	}
	return nil
}

func (s *Session) readLine(op string) (string, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(replyTimeout)); err != nil {
		return "", s.connErr(op, err)
	}
	line, err := s.text.ReadLine()
	if err != nil {
		return "", s.connErr(op, err)
	}
	return line, nil
}

func (s *Session) connErr(op string, err error) error {
	if s.isClosed() {
		err = ErrClosed
	}
	return &ConnectionError{Op: op, Err: err}
}

// formatCommand quotes every argument so values with spaces or quotes survive
func formatCommand(cmd string, args []string) string {
	if len(args) == 0 {
		return cmd
	}
	var b strings.Builder
	b.WriteString(cmd)
	for _, arg := range args {
		b.WriteByte(' ')
		b.WriteString(quote(arg))
	}
	return b.String()
}

func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

func itoa(i int) string { return strconv.Itoa(i) }

func btoa(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
