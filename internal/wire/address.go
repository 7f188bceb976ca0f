package wire

import (
	"net"
	"strconv"
	"strings"
)

const (
	// DefaultHost is used when no host is configured
	DefaultHost = "localhost"
	// DefaultPort is the server's standard port
	DefaultPort = 6600
)

// Address locates a server. Hosts starting with "/" or "@" are unix sockets.
type Address struct {
	Host     string
	Port     int
	Password string
}

// ParseHost splits MPD's "password@host" convention
func ParseHost(raw string) (host, password string) {
	raw = strings.TrimSpace(raw)
	// "@/run/mpd/socket" is an abstract socket, not a password separator
	if at := strings.LastIndexByte(raw, '@'); at > 0 {
		return raw[at+1:], raw[:at]
	}
	return raw, ""
}

// Network returns the dial network for the address
func (a Address) Network() string {
	if a.isSocket() {
		return "unix"
	}
	return "tcp"
}

// String returns the dial target
func (a Address) String() string {
	if a.isSocket() {
		return a.Host
	}
	host := a.Host
	if host == "" {
		host = DefaultHost
	}
	port := a.Port
	if port <= 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func (a Address) isSocket() bool {
	return strings.HasPrefix(a.Host, "/") || strings.HasPrefix(a.Host, "@")
}
