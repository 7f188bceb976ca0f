package mpris

import (
	"context"
	"errors"

	"github.com/genricoloni/mpdbar/internal/domain"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

var errNotSupported = errors.New("not supported")

// rootObject implements org.mpris.MediaPlayer2. The bar has no window to
// raise and is not quit from the bus.
type rootObject struct{}

func (r *rootObject) Raise() *dbus.Error { return nil }

func (r *rootObject) Quit() *dbus.Error { return nil }

// playerObject implements org.mpris.MediaPlayer2.Player
type playerObject struct {
	bridge *Bridge
}

func (p *playerObject) Next() *dbus.Error {
	return p.call("Next", p.bridge.ctrl.Next)
}

func (p *playerObject) Previous() *dbus.Error {
	return p.call("Previous", p.bridge.ctrl.Previous)
}

func (p *playerObject) PlayPause() *dbus.Error {
	return p.call("PlayPause", p.bridge.ctrl.PlayPause)
}

func (p *playerObject) Stop() *dbus.Error {
	return p.call("Stop", p.bridge.ctrl.Stop)
}

// Play resumes or starts playback and does nothing while playing
func (p *playerObject) Play() *dbus.Error {
	if p.bridge.ctrl.Status().State == domain.StatePlaying {
		return nil
	}
	return p.call("Play", p.bridge.ctrl.PlayPause)
}

// Pause pauses and does nothing unless playing
func (p *playerObject) Pause() *dbus.Error {
	if p.bridge.ctrl.Status().State != domain.StatePlaying {
		return nil
	}
	return p.call("Pause", p.bridge.ctrl.PlayPause)
}

func (p *playerObject) Seek(offset int64) *dbus.Error {
	return dbus.MakeFailedError(errNotSupported)
}

func (p *playerObject) SetPosition(track dbus.ObjectPath, position int64) *dbus.Error {
	return dbus.MakeFailedError(errNotSupported)
}

func (p *playerObject) OpenUri(uri string) *dbus.Error {
	return dbus.MakeFailedError(errNotSupported)
}

func (p *playerObject) call(method string, fn func(context.Context) error) *dbus.Error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		p.bridge.logger.Warn("MPRIS call failed", zap.String("method", method), zap.Error(err))
		return dbus.MakeFailedError(err)
	}
	return nil
}
