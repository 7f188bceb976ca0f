// Package artwork finds cover art for queue entries.
package artwork

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dhowden/tag"
	"github.com/fhs/gompd/v2/mpd"
	"github.com/genricoloni/mpdbar/internal/domain"
	"github.com/genricoloni/mpdbar/internal/wire"
	"go.uber.org/zap"
)

const _maxImageSize = 10 * 1024 * 1024 // 10 MB

var (
	// ErrNoArtwork is returned when no source has a picture for the track
	ErrNoArtwork = errors.New("no artwork found")
	// ErrTooLarge is returned for pictures over the size cap
	ErrTooLarge = errors.New("artwork exceeds size limit")
)

var coverNames = []string{"cover.jpg", "cover.png"}

// Source reads pictures stored by the server
type Source interface {
	AlbumArt(uri string) ([]byte, error)
	ReadPicture(uri string) ([]byte, error)
	Close() error
}

// SourceDialer opens a short-lived connection for picture transfers
type SourceDialer func(ctx context.Context, addr wire.Address) (Source, error)

// DialServer opens a gompd connection separate from the client's session,
// so large transfers never hold up the command queue
func DialServer(ctx context.Context, addr wire.Address) (Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := mpd.DialAuthenticated(addr.Network(), addr.String(), addr.Password)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Option configures a Resolver
type Option func(*Resolver)

// WithSourceDialer replaces the server connection, used by tests
func WithSourceDialer(d SourceDialer) Option {
	return func(r *Resolver) { r.dial = d }
}

// WithAddress makes the resolver follow the client's current server
func WithAddress(addr func() wire.Address) Option {
	return func(r *Resolver) { r.addr = addr }
}

// Resolver looks up cover art next to the file, inside the file, and
// finally on the server. Results, misses included, are cached per URI.
type Resolver struct {
	logger   *zap.Logger
	musicDir string
	cacheDir string
	dial     SourceDialer
	addr     func() wire.Address

	mu    sync.Mutex
	cache map[string][]byte
}

// NewResolver creates a resolver for the configured library and server
func NewResolver(logger *zap.Logger, cfg domain.Config, opts ...Option) *Resolver {
	r := &Resolver{
		logger:   logger,
		musicDir: cfg.GetMusicDir(),
		cacheDir: cfg.GetCacheDir(),
		dial:     DialServer,
		addr: func() wire.Address {
			return wire.Address{Host: cfg.GetHost(), Port: cfg.GetPort(), Password: cfg.GetPassword()}
		},
		cache: make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the raw image bytes for the track's cover art
func (r *Resolver) Resolve(ctx context.Context, track domain.Track) ([]byte, error) {
	if track.URI == "" {
		return nil, ErrNoArtwork
	}

	r.mu.Lock()
	data, ok := r.cache[track.URI]
	r.mu.Unlock()
	if ok {
		if data == nil {
			return nil, ErrNoArtwork
		}
		return data, nil
	}

	data, err := r.lookup(ctx, track.URI)
	if err != nil && !errors.Is(err, ErrNoArtwork) {
		// Transient failures are retried on the next call
		return nil, err
	}

	r.mu.Lock()
	r.cache[track.URI] = data
	r.mu.Unlock()

	if data == nil {
		return nil, ErrNoArtwork
	}
	return data, nil
}

func (r *Resolver) lookup(ctx context.Context, uri string) ([]byte, error) {
	if path, ok := r.localPath(uri); ok {
		for _, name := range coverNames {
			data, err := readCapped(filepath.Join(filepath.Dir(path), name))
			if err == nil {
				r.logger.Debug("Cover file found", zap.String("uri", uri), zap.String("name", name))
				return data, nil
			}
		}
		if data, err := embeddedPicture(path); err == nil {
			r.logger.Debug("Embedded picture found", zap.String("uri", uri))
			return data, nil
		}
	}
	return r.fromServer(ctx, uri)
}

func (r *Resolver) localPath(uri string) (string, bool) {
	if r.musicDir == "" || strings.Contains(uri, "://") {
		return "", false
	}
	return filepath.Join(r.musicDir, filepath.FromSlash(uri)), true
}

func (r *Resolver) fromServer(ctx context.Context, uri string) ([]byte, error) {
	src, err := r.dial(ctx, r.addr())
	if err != nil {
		return nil, fmt.Errorf("connect for artwork: %w", err)
	}
	defer src.Close()

	for _, read := range []func(string) ([]byte, error){src.AlbumArt, src.ReadPicture} {
		data, err := read(uri)
		if err != nil || len(data) == 0 {
			continue
		}
		if len(data) > _maxImageSize {
			return nil, ErrTooLarge
		}
		r.logger.Debug("Server artwork fetched", zap.String("uri", uri), zap.Int("bytes", len(data)))
		return data, nil
	}
	return nil, ErrNoArtwork
}

// IconPath writes the cover art into the cache directory and returns the
// absolute path of the file
func (r *Resolver) IconPath(ctx context.Context, track domain.Track) (string, error) {
	data, err := r.Resolve(ctx, track)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256([]byte(track.URI))
	name := hex.EncodeToString(sum[:8]) + extension(data)
	path, err := filepath.Abs(filepath.Join(r.cacheDir, name))
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.MkdirAll(r.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artwork: %w", err)
	}
	return path, nil
}

func readCapped(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, _maxImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > _maxImageSize {
		return nil, ErrTooLarge
	}
	return data, nil
}

func embeddedPicture(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return nil, err
	}
	pic := meta.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return nil, ErrNoArtwork
	}
	if len(pic.Data) > _maxImageSize {
		return nil, ErrTooLarge
	}
	return pic.Data, nil
}

func extension(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if bytes.HasPrefix(data, []byte{0xff, 0xd8}) {
		return ".jpg"
	}
	return ".img"
}
