package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

// clearEnv isolates a test from the caller's environment
func clearEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"MPDBAR_CONFIG", "MPD_HOST", "MPD_PORT", "MPDBAR_MUSIC_DIR",
		"MPDBAR_CACHE_DIR", "MPDBAR_NOTIFICATIONS", "MPDBAR_DISCOVER"} {
		t.Setenv(key, "")
	}
	return home
}

func TestLoadPrefs_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	p, err := LoadPrefs("")
	if err != nil {
		t.Fatalf("LoadPrefs returned error: %v", err)
	}
	if p != DefaultPrefs() {
		t.Fatalf("Prefs = %+v, want defaults %+v", p, DefaultPrefs())
	}
}

func TestLoadPrefs_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte("host = \"music.lan\"\nport = 6601\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := LoadPrefs(path)
	if err != nil {
		t.Fatalf("LoadPrefs returned error: %v", err)
	}
	if p.Host != "music.lan" || p.Port != 6601 {
		t.Errorf("Server mismatch: got %s:%d", p.Host, p.Port)
	}
	if !p.Notifications || p.MusicDir != defaultMusicDir {
		t.Errorf("Defaults lost: %+v", p)
	}
}

func TestLoadPrefs_InvalidFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte("host = = nope"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := LoadPrefs(path)
	if err == nil {
		t.Fatal("Expected parse error, got nil")
	}
	if p != DefaultPrefs() {
		t.Errorf("Expected defaults on parse error, got %+v", p)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")
	want := Prefs{Host: "music.lan", Port: 6600, Password: "pw", MusicDir: "/srv/music", CacheDir: "/tmp/c", Discover: true}

	if err := Save(path, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("Permissions = %o, want 600", perm)
	}

	got, err := LoadPrefs(path)
	if err != nil {
		t.Fatalf("LoadPrefs failed: %v", err)
	}
	if got != want {
		t.Errorf("Round trip mismatch:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestNewAppConfig(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		env       map[string]string
		wantHost  string
		wantPort  int
		wantPass  string
		wantNotif bool
		wantDisc  bool
	}{
		{
			name:      "Defaults",
			wantNotif: true,
		},
		{
			name:      "File Values",
			file:      "host = \"music.lan\"\nport = 6601\nnotifications = false\n",
			wantHost:  "music.lan",
			wantPort:  6601,
			wantNotif: false,
		},
		{
			name:      "Environment Overrides File",
			file:      "host = \"music.lan\"\nport = 6601\n",
			env:       map[string]string{"MPD_HOST": "secret@other.lan", "MPD_PORT": "7000", "MPDBAR_DISCOVER": "1"},
			wantHost:  "other.lan",
			wantPort:  7000,
			wantPass:  "secret",
			wantNotif: true,
			wantDisc:  true,
		},
		{
			name:      "Invalid Port Ignored",
			env:       map[string]string{"MPD_PORT": "music", "MPDBAR_NOTIFICATIONS": "0"},
			wantNotif: false,
		},
		{
			name:      "Unix Socket Host",
			env:       map[string]string{"MPD_HOST": "/run/mpd/socket"},
			wantHost:  "/run/mpd/socket",
			wantNotif: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := clearEnv(t)
			if tt.file != "" {
				path := filepath.Join(home, "prefs.toml")
				if err := os.WriteFile(path, []byte(tt.file), 0o644); err != nil {
					t.Fatalf("WriteFile: %v", err)
				}
				t.Setenv("MPDBAR_CONFIG", path)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := NewAppConfig(zap.NewNop())

			if cfg.GetHost() != tt.wantHost {
				t.Errorf("Host mismatch: want %q, got %q", tt.wantHost, cfg.GetHost())
			}
			if cfg.GetPort() != tt.wantPort {
				t.Errorf("Port mismatch: want %d, got %d", tt.wantPort, cfg.GetPort())
			}
			if cfg.GetPassword() != tt.wantPass {
				t.Errorf("Password mismatch: want %q, got %q", tt.wantPass, cfg.GetPassword())
			}
			if cfg.NotificationsEnabled() != tt.wantNotif {
				t.Errorf("Notifications mismatch: want %v, got %v", tt.wantNotif, cfg.NotificationsEnabled())
			}
			if cfg.DiscoveryEnabled() != tt.wantDisc {
				t.Errorf("Discovery mismatch: want %v, got %v", tt.wantDisc, cfg.DiscoveryEnabled())
			}
			if want := filepath.Join(home, "Music"); cfg.GetMusicDir() != want {
				t.Errorf("MusicDir mismatch: want %s, got %s", want, cfg.GetMusicDir())
			}
			if want := filepath.Join(home, ".cache", "mpdbar"); cfg.GetCacheDir() != want {
				t.Errorf("CacheDir mismatch: want %s, got %s", want, cfg.GetCacheDir())
			}
		})
	}
}
