package mpris

import (
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/prop"
)

// Bus defines the D-Bus operations needed to publish the player.
// This abstraction allows us to fake D-Bus interactions in tests.
type Bus interface {
	// RequestName claims a well-known name; false means another process owns it
	RequestName(name string) (bool, error)

	// Export publishes the methods of v on path under iface
	Export(v any, path dbus.ObjectPath, iface string) error

	// ExportProperties publishes org.freedesktop.DBus.Properties on path
	ExportProperties(path dbus.ObjectPath, spec map[string]map[string]*prop.Prop) (Properties, error)

	// Close closes the D-Bus connection
	Close() error
}

// Properties updates exported property values and emits PropertiesChanged
type Properties interface {
	SetMust(iface, property string, v any)
}

// StdBus is the real implementation using godbus
type StdBus struct {
	conn *dbus.Conn
}

// NewStdBus opens a private connection to the session bus
func NewStdBus() (Bus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	return &StdBus{conn: conn}, nil
}

// RequestName claims a well-known name without queueing
func (b *StdBus) RequestName(name string) (bool, error) {
	reply, err := b.conn.RequestName(name, dbus.NameFlagDoNotQueue)
	if err != nil {
		return false, err
	}
	return reply == dbus.RequestNameReplyPrimaryOwner, nil
}

// Export publishes the methods of v on path under iface
func (b *StdBus) Export(v any, path dbus.ObjectPath, iface string) error {
	return b.conn.Export(v, path, iface)
}

// ExportProperties publishes org.freedesktop.DBus.Properties on path
func (b *StdBus) ExportProperties(path dbus.ObjectPath, spec map[string]map[string]*prop.Prop) (Properties, error) {
	props, err := prop.Export(b.conn, path, spec)
	if err != nil {
		return nil, err
	}
	return props, nil
}

// Close closes the D-Bus connection
func (b *StdBus) Close() error {
	return b.conn.Close()
}
