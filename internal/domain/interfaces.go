package domain

import "context"

// Config defines the interface for application configuration
type Config interface {
	// GetHost returns the server host; empty means the server's own default
	GetHost() string

	// GetPort returns the server port; zero means the server's own default
	GetPort() int

	// GetPassword returns the optional server password
	GetPassword() string

	// GetMusicDir returns the local music library root used for cover art lookup
	GetMusicDir() string

	// GetCacheDir returns the directory for generated artwork files
	GetCacheDir() string

	// NotificationsEnabled reports whether track change banners should be shown
	NotificationsEnabled() bool

	// DiscoveryEnabled reports whether zeroconf discovery may pick the server
	DiscoveryEnabled() bool
}

// Banner is a desktop notification about the current track
type Banner struct {
	Title    string
	Subtitle string
	Body     string
	// IconPath is an absolute path to an image file, empty for the default icon
	IconPath string
}

// Notifier defines the interface for showing desktop notification banners
type Notifier interface {
	// Notify shows the banner, replacing the previous banner from this process
	Notify(ctx context.Context, b Banner) error
}

// ArtworkResolver defines the interface for resolving cover art of a track
type ArtworkResolver interface {
	// Resolve returns the raw image bytes for the track's cover art
	Resolve(ctx context.Context, track Track) ([]byte, error)

	// IconPath materializes the cover art on disk and returns its absolute path
	IconPath(ctx context.Context, track Track) (string, error)
}

// MusicClient is the connection surface driven by collaborators such as the
// reconnect engine and the MPRIS bridge
type MusicClient interface {
	// Subscribe registers for change notifications; the function unregisters
	Subscribe() (<-chan Event, func())

	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error

	// LastDisconnectError is nil after an explicit disconnect
	LastDisconnectError() error

	Status() PlayerStatus
	Options() Options
	CurrentTrack() *Track
}
