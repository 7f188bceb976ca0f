// Package mpris publishes the server's player on the session bus so desktop
// media keys and applets can drive it.
package mpris

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/genricoloni/mpdbar/internal/domain"
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"go.uber.org/zap"
)

const (
	busName         = "org.mpris.MediaPlayer2.mpdbar"
	objectPath      = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	rootInterface   = "org.mpris.MediaPlayer2"
	playerInterface = "org.mpris.MediaPlayer2.Player"
	trackPathPrefix = "/org/mpdbar/track/"

	callTimeout = 5 * time.Second
)

// Controller is the part of the client the bridge drives and observes
//
//go:generate mockgen -destination=mocks/controller_mock.go -package=mocks github.com/genricoloni/mpdbar/internal/mpris Controller
type Controller interface {
	Subscribe() (<-chan domain.Event, func())
	Status() domain.PlayerStatus
	Options() domain.Options

	PlayPause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Bridge exports org.mpris.MediaPlayer2 for the client and keeps its
// properties in sync with client events
type Bridge struct {
	logger *zap.Logger
	ctrl   Controller
	dial   func() (Bus, error)

	mu          sync.Mutex
	running     bool
	cancel      context.CancelFunc
	unsubscribe func()
	bus         Bus
	props       Properties
	wg          sync.WaitGroup

	// last published values, owned by the event goroutine
	lastStatus   string
	lastTrack    *domain.Track
	lastLoop     string
	lastShuffle  bool
	publishedAny bool
}

// NewBridge creates a bridge that publishes on the session bus
func NewBridge(logger *zap.Logger, ctrl Controller) *Bridge {
	return newBridge(logger, ctrl, NewStdBus)
}

func newBridge(logger *zap.Logger, ctrl Controller, dial func() (Bus, error)) *Bridge {
	return &Bridge{logger: logger, ctrl: ctrl, dial: dial}
}

// Start publishes the player. A missing session bus or a taken name
// disables the bridge without failing the caller.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return nil
	}

	bus, err := b.dial()
	if err != nil {
		b.logger.Warn("MPRIS disabled: session bus unavailable", zap.Error(err))
		return nil
	}
	props, err := b.publish(bus)
	if err != nil {
		if cerr := bus.Close(); cerr != nil {
			b.logger.Warn("Failed to close D-Bus connection", zap.Error(cerr))
		}
		b.logger.Warn("MPRIS disabled", zap.Error(err))
		return nil
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	events, unsubscribe := b.ctrl.Subscribe()
	b.bus, b.props = bus, props
	b.cancel, b.unsubscribe = cancel, unsubscribe
	b.running = true

	b.refresh()

	b.wg.Add(1)
	go b.run(loopCtx, events)

	b.logger.Info("MPRIS bridge started", zap.String("name", busName))
	return nil
}

// Stop unpublishes the player
func (b *Bridge) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	b.cancel()
	b.unsubscribe()
	b.mu.Unlock()

	b.wg.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.bus.Close()
	b.bus, b.props = nil, nil
	b.logger.Info("MPRIS bridge stopped")
	return err
}

func (b *Bridge) publish(bus Bus) (Properties, error) {
	ok, err := bus.RequestName(busName)
	if err != nil {
		return nil, fmt.Errorf("request name: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("name %s already taken", busName)
	}

	root := &rootObject{}
	player := &playerObject{bridge: b}
	if err := bus.Export(root, objectPath, rootInterface); err != nil {
		return nil, fmt.Errorf("export %s: %w", rootInterface, err)
	}
	if err := bus.Export(player, objectPath, playerInterface); err != nil {
		return nil, fmt.Errorf("export %s: %w", playerInterface, err)
	}

	props, err := bus.ExportProperties(objectPath, propertySpec())
	if err != nil {
		return nil, fmt.Errorf("export properties: %w", err)
	}

	node := &introspect.Node{
		Name: string(objectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{Name: rootInterface, Methods: introspect.Methods(root)},
			{Name: playerInterface, Methods: introspect.Methods(player)},
		},
	}
	if err := bus.Export(introspect.NewIntrospectable(node), objectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		return nil, fmt.Errorf("export introspection: %w", err)
	}
	return props, nil
}

func propertySpec() map[string]map[string]*prop.Prop {
	ro := func(v any) *prop.Prop {
		return &prop.Prop{Value: v, Writable: false, Emit: prop.EmitTrue}
	}
	return map[string]map[string]*prop.Prop{
		rootInterface: {
			"CanQuit":             ro(false),
			"CanRaise":            ro(false),
			"HasTrackList":        ro(false),
			"Identity":            ro("mpdbar"),
			"SupportedUriSchemes": ro([]string{}),
			"SupportedMimeTypes":  ro([]string{}),
		},
		playerInterface: {
			"PlaybackStatus": ro("Stopped"),
			"LoopStatus":     ro("None"),
			"Shuffle":        ro(false),
			"Metadata":       ro(map[string]dbus.Variant{}),
			"Rate":           ro(1.0),
			"MinimumRate":    ro(1.0),
			"MaximumRate":    ro(1.0),
			"Volume":         ro(1.0),
			"Position":       {Value: int64(0), Writable: false, Emit: prop.EmitFalse},
			"CanGoNext":      ro(true),
			"CanGoPrevious":  ro(true),
			"CanPlay":        ro(true),
			"CanPause":       ro(true),
			"CanSeek":        ro(false),
			"CanControl":     ro(true),
		},
	}
}

func (b *Bridge) run(ctx context.Context, events <-chan domain.Event) {
	defer b.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			switch e {
			case domain.EventConnected, domain.EventDisconnected, domain.EventTrackChanged,
				domain.EventPlayerRefreshed, domain.EventOptionsRefreshed:
				b.refresh()
			}
		}
	}
}

// refresh publishes the properties whose values changed
func (b *Bridge) refresh() {
	status := b.ctrl.Status()
	opts := b.ctrl.Options()

	playback := playbackStatus(status)
	loop := loopStatus(opts)
	first := !b.publishedAny
	b.publishedAny = true

	if first || playback != b.lastStatus {
		b.props.SetMust(playerInterface, "PlaybackStatus", playback)
		b.lastStatus = playback
	}
	if first || !sameTrack(status.Current, b.lastTrack) {
		b.props.SetMust(playerInterface, "Metadata", metadata(status.Current))
		b.lastTrack = copyTrack(status.Current)
	}
	if first || loop != b.lastLoop {
		b.props.SetMust(playerInterface, "LoopStatus", loop)
		b.lastLoop = loop
	}
	if first || opts.Random != b.lastShuffle {
		b.props.SetMust(playerInterface, "Shuffle", opts.Random)
		b.lastShuffle = opts.Random
	}
}

func playbackStatus(s domain.PlayerStatus) string {
	switch s.State {
	case domain.StatePlaying:
		return "Playing"
	case domain.StatePaused:
		return "Paused"
	default:
		return "Stopped"
	}
}

func loopStatus(o domain.Options) string {
	switch {
	case o.Repeat && o.Single:
		return "Track"
	case o.Repeat:
		return "Playlist"
	default:
		return "None"
	}
}

func metadata(t *domain.Track) map[string]dbus.Variant {
	if t == nil {
		return map[string]dbus.Variant{}
	}
	m := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(dbus.ObjectPath(trackPathPrefix + strconv.Itoa(t.ID))),
		"xesam:title":   dbus.MakeVariant(t.DisplayTitle()),
		"xesam:url":     dbus.MakeVariant(t.URI),
	}
	if t.Artist != "" {
		m["xesam:artist"] = dbus.MakeVariant([]string{t.Artist})
	}
	if t.Album != "" {
		m["xesam:album"] = dbus.MakeVariant(t.Album)
	}
	if t.Number > 0 {
		m["xesam:trackNumber"] = dbus.MakeVariant(int32(t.Number))
	}
	if t.Duration > 0 {
		m["mpris:length"] = dbus.MakeVariant(t.Duration.Microseconds())
	}
	return m
}

func sameTrack(a, b *domain.Track) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyTrack(t *domain.Track) *domain.Track {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
