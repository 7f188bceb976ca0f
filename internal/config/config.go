package config

import (
	"os"
	"strconv"

	"github.com/genricoloni/mpdbar/internal/wire"
	"go.uber.org/zap"
)

// AppConfig holds application configuration
type AppConfig struct {
	logger        *zap.Logger
	path          string
	host          string
	port          int
	password      string
	musicDir      string
	cacheDir      string
	notifications bool
	discover      bool
}

// NewAppConfig creates a new application configuration instance from the
// preferences file and the environment. Environment variables win.
func NewAppConfig(logger *zap.Logger) *AppConfig {
	path := os.Getenv("MPDBAR_CONFIG")
	if path == "" {
		path = DefaultPath()
	}

	prefs, err := LoadPrefs(path)
	if err != nil {
		logger.Warn("Failed to load preferences, using defaults",
			zap.String("path", path),
			zap.Error(err))
	}
	applyEnv(logger, &prefs)

	cfg := &AppConfig{
		logger:        logger,
		path:          path,
		host:          prefs.Host,
		port:          prefs.Port,
		password:      prefs.Password,
		musicDir:      mustExpand(prefs.MusicDir),
		cacheDir:      mustExpand(prefs.CacheDir),
		notifications: prefs.Notifications,
		discover:      prefs.Discover,
	}

	logger.Info("Configuration loaded",
		zap.String("host", cfg.host),
		zap.Int("port", cfg.port),
		zap.Bool("password", cfg.password != ""),
		zap.String("musicDir", cfg.musicDir),
		zap.String("cacheDir", cfg.cacheDir),
		zap.Bool("notifications", cfg.notifications),
		zap.Bool("discover", cfg.discover))

	return cfg
}

// applyEnv overrides preferences from the environment. MPD_HOST accepts the
// server's own password@host form.
func applyEnv(logger *zap.Logger, p *Prefs) {
	if raw := os.Getenv("MPD_HOST"); raw != "" {
		host, password := wire.ParseHost(raw)
		p.Host = host
		if password != "" {
			p.Password = password
		}
	}
	if raw := os.Getenv("MPD_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port < 0 || port > 65535 {
			logger.Warn("Ignoring invalid MPD_PORT", zap.String("value", raw))
		} else {
			p.Port = port
		}
	}
	if dir := os.Getenv("MPDBAR_MUSIC_DIR"); dir != "" {
		p.MusicDir = dir
	}
	if dir := os.Getenv("MPDBAR_CACHE_DIR"); dir != "" {
		p.CacheDir = dir
	}
	if raw := os.Getenv("MPDBAR_NOTIFICATIONS"); raw != "" {
		p.Notifications = raw != "0"
	}
	if raw := os.Getenv("MPDBAR_DISCOVER"); raw != "" {
		p.Discover = raw == "1"
	}
}

func mustExpand(path string) string {
	if path == "" {
		return ""
	}
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// Path returns the preferences file this configuration was read from
func (c *AppConfig) Path() string {
	return c.path
}

// GetHost returns the server host; empty means localhost
func (c *AppConfig) GetHost() string {
	return c.host
}

// GetPort returns the server port; zero means the default port
func (c *AppConfig) GetPort() int {
	return c.port
}

// GetPassword returns the server password
func (c *AppConfig) GetPassword() string {
	return c.password
}

// GetMusicDir returns the local music library root
func (c *AppConfig) GetMusicDir() string {
	return c.musicDir
}

// GetCacheDir returns the directory for generated artwork
func (c *AppConfig) GetCacheDir() string {
	return c.cacheDir
}

// NotificationsEnabled reports whether track banners are shown
func (c *AppConfig) NotificationsEnabled() bool {
	return c.notifications
}

// DiscoveryEnabled reports whether zeroconf may choose the server
func (c *AppConfig) DiscoveryEnabled() bool {
	return c.discover
}
