package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultPrefsPath = "~/.config/mpdbar/prefs.toml"
	defaultMusicDir  = "~/Music"
	defaultCacheDir  = "~/.cache/mpdbar"
)

// Prefs is the on-disk preferences file
type Prefs struct {
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Password      string `toml:"password"`
	MusicDir      string `toml:"music_dir"`
	CacheDir      string `toml:"cache_dir"`
	Notifications bool   `toml:"notifications"`
	Discover      bool   `toml:"discover"`
}

// DefaultPrefs returns the preferences used when no file exists
func DefaultPrefs() Prefs {
	return Prefs{
		MusicDir:      defaultMusicDir,
		CacheDir:      defaultCacheDir,
		Notifications: true,
	}
}

// DefaultPath returns the default preferences file path
func DefaultPath() string {
	return defaultPrefsPath
}

// LoadPrefs reads preferences from path. A missing file yields the defaults;
// keys absent from the file keep their default values.
func LoadPrefs(path string) (Prefs, error) {
	prefs := DefaultPrefs()

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, fmt.Errorf("read prefs: %w", err)
	}

	if err := toml.Unmarshal(data, &prefs); err != nil {
		return DefaultPrefs(), fmt.Errorf("parse prefs: %w", err)
	}
	return prefs, nil
}

// Save writes preferences to path, creating directories as needed
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	// The file may hold the server password
	if err := os.WriteFile(resolved, data, 0o600); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(os.ExpandEnv(path))
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
