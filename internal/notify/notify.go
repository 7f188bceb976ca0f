// Package notify shows desktop banners for track changes.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/genricoloni/mpdbar/internal/domain"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const (
	appName       = "mpdbar"
	defaultIcon   = "audio-x-generic"
	bannerTimeout = int32(5000) // ms

	notificationsName   = "org.freedesktop.Notifications"
	notificationsPath   = "/org/freedesktop/Notifications"
	notificationsNotify = notificationsName + ".Notify"
)

// ErrUnsupported is returned where desktop banners are not available
var ErrUnsupported = errors.New("desktop notifications are not supported on this platform")

// Bus is the slice of the notification service the notifier uses.
// This abstraction allows us to fake the session bus in tests.
type Bus interface {
	// Notify calls org.freedesktop.Notifications.Notify and returns the banner id
	Notify(ctx context.Context, replacesID uint32, icon, summary, body string) (uint32, error)

	// Close closes the bus connection
	Close() error
}

// DBusNotifier posts banners through the freedesktop notification service.
// Each banner replaces the previous one so skipping tracks does not pile
// them up.
type DBusNotifier struct {
	logger *zap.Logger
	dial   func() (Bus, error)

	mu     sync.Mutex
	bus    Bus
	lastID uint32
}

// NewDBusNotifier creates a notifier that connects on first use
func NewDBusNotifier(logger *zap.Logger, dial func() (Bus, error)) *DBusNotifier {
	return &DBusNotifier{logger: logger, dial: dial}
}

// Notify shows b, replacing the banner shown last
func (n *DBusNotifier) Notify(ctx context.Context, b domain.Banner) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.bus == nil {
		bus, err := n.dial()
		if err != nil {
			return fmt.Errorf("connect to session bus: %w", err)
		}
		n.bus = bus
	}

	icon := b.IconPath
	if icon == "" {
		icon = defaultIcon
	}
	summary := b.Title
	if b.Subtitle != "" {
		summary = fmt.Sprintf("%s · %s", b.Title, b.Subtitle)
	}

	id, err := n.bus.Notify(ctx, n.lastID, icon, summary, b.Body)
	if err != nil {
		// Drop the connection so the next banner reconnects
		_ = n.bus.Close()
		n.bus = nil
		return fmt.Errorf("notify: %w", err)
	}

	n.logger.Debug("Banner posted",
		zap.Uint32("id", id),
		zap.Uint32("replaces", n.lastID))
	n.lastID = id
	return nil
}

// Close releases the bus connection
func (n *DBusNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.bus == nil {
		return nil
	}
	err := n.bus.Close()
	n.bus = nil
	return err
}

// sessionBus is the real Bus on a private session bus connection
type sessionBus struct {
	conn *dbus.Conn
}

// DialSessionBus opens a private connection to the session bus
func DialSessionBus() (Bus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	return &sessionBus{conn: conn}, nil
}

func (s *sessionBus) Notify(ctx context.Context, replacesID uint32, icon, summary, body string) (uint32, error) {
	obj := s.conn.Object(notificationsName, dbus.ObjectPath(notificationsPath))
	hints := map[string]dbus.Variant{
		"category": dbus.MakeVariant("x-mpdbar.track"),
	}

	var id uint32
	err := obj.CallWithContext(ctx, notificationsNotify, 0,
		appName, replacesID, icon, summary, body, []string{}, hints, bannerTimeout).Store(&id)
	return id, err
}

func (s *sessionBus) Close() error {
	return s.conn.Close()
}
