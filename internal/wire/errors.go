package wire

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrPermission is wrapped by ConnectError when the server does not allow
	// both reading the current song and controlling playback
	ErrPermission = errors.New("insufficient permissions")

	// ErrClosed is wrapped by ConnectionError when the session was closed locally
	ErrClosed = errors.New("session closed")
)

// ConnectError reports a failure while opening a session: socket, greeting,
// authentication or permission probing
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// ConnectionError reports that the socket dropped or could not be used mid-session
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: connection lost: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ProtocolError reports a reply that does not follow the protocol framing
type ProtocolError struct {
	Op   string
	Line string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: malformed reply %q", e.Op, e.Line)
}

// ServerError is a command-specific error reported by the server as
// "ACK [code@index] {command} message". The connection stays usable after it.
type ServerError struct {
	Code    int
	Index   int
	Command string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d in {%s}: %s", e.Code, e.Command, e.Message)
}

// IsConnectionError reports whether err means the session is unusable
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// parseAck decodes an ACK line, returning nil when the line is not one
func parseAck(line string) *ServerError {
	rest, ok := strings.CutPrefix(line, "ACK ")
	if !ok {
		return nil
	}
	se := &ServerError{Message: rest}

	// [code@index]
	if !strings.HasPrefix(rest, "[") {
		return se
	}
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return se
	}
	codeIdx := rest[1:end]
	if code, idx, found := strings.Cut(codeIdx, "@"); found {
		se.Code, _ = strconv.Atoi(code)
		se.Index, _ = strconv.Atoi(idx)
	}
	rest = strings.TrimSpace(rest[end+1:])

	// {command}
	if strings.HasPrefix(rest, "{") {
		if close := strings.IndexByte(rest, '}'); close >= 0 {
			se.Command = rest[1:close]
			rest = strings.TrimSpace(rest[close+1:])
		}
	}
	se.Message = rest
	return se
}
