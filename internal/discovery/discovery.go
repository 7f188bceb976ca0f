// Package discovery finds servers announced over zeroconf on the local network.
package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/genricoloni/mpdbar/internal/wire"
	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"
)

const (
	service = "_mpd._tcp"
	domain  = "local."
)

// Server is an announced server instance
type Server struct {
	Name string
	Host string
	Port int
}

// Address returns the dial address for the server
func (s Server) Address() wire.Address {
	return wire.Address{Host: s.Host, Port: s.Port}
}

func (s Server) String() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.Address())
}

type browseFunc func(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error

// Browser collects zeroconf announcements
type Browser struct {
	logger *zap.Logger
	browse browseFunc
}

// NewBrowser creates a browser on the system's multicast interfaces
func NewBrowser(logger *zap.Logger) *Browser {
	return &Browser{logger: logger, browse: zeroconfBrowse}
}

func zeroconfBrowse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to initialize resolver: %w", err)
	}
	return resolver.Browse(ctx, service, domain, entries)
}

// Browse listens for timeout and returns the servers seen, in discovery
// order and de-duplicated by instance name
func (b *Browser) Browse(ctx context.Context, timeout time.Duration) ([]Server, error) {
	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	if err := b.browse(browseCtx, service, domain, entries); err != nil {
		return nil, err
	}

	var servers []Server
	seen := make(map[string]bool)
	for {
		select {
		case <-browseCtx.Done():
			if err := ctx.Err(); err != nil {
				return servers, err
			}
			b.logger.Debug("Discovery finished", zap.Int("servers", len(servers)))
			return servers, nil
		case entry, ok := <-entries:
			if !ok {
				return servers, nil
			}
			if entry == nil || seen[entry.Instance] {
				continue
			}
			host := entryHost(entry)
			if host == "" {
				continue
			}
			seen[entry.Instance] = true
			s := Server{Name: entry.Instance, Host: host, Port: entry.Port}
			b.logger.Info("Discovered server", zap.String("name", s.Name), zap.String("addr", s.Address().String()))
			servers = append(servers, s)
		}
	}
}

func entryHost(e *zeroconf.ServiceEntry) string {
	if len(e.AddrIPv4) > 0 {
		return e.AddrIPv4[0].String()
	}
	if len(e.AddrIPv6) > 0 {
		return e.AddrIPv6[0].String()
	}
	return strings.TrimSuffix(e.HostName, ".")
}
