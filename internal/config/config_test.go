package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cdmeta/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("CDDB_SERVER", "")
	t.Setenv("CDDB_CACHE_DIR", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.Cache.Dir != filepath.Join(tempHome, ".cddb") {
		t.Fatalf("unexpected cache dir: %q", cfg.Cache.Dir)
	}
	if cfg.CDDB.Server != "freedb.freedb.org" {
		t.Fatalf("unexpected server: %q", cfg.CDDB.Server)
	}
	if cfg.CDDB.ProtoLevel != 1 {
		t.Fatalf("expected proto level 1, got %d", cfg.CDDB.ProtoLevel)
	}
	if !cfg.CDDB.Negotiate {
		t.Fatal("expected negotiation enabled by default")
	}
	if cfg.Timeout().Seconds() != 20 {
		t.Fatalf("unexpected timeout: %v", cfg.Timeout())
	}
	if cfg.Drive.Device != "/dev/cdrom" {
		t.Fatalf("unexpected device: %q", cfg.Drive.Device)
	}
	if !cfg.Cache.Enabled {
		t.Fatal("expected cache enabled by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CDDB_SERVER", "")
	t.Setenv("CDDB_CACHE_DIR", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "cdmeta.toml")

	cfg := config.Default()
	cfg.CDDB.Server = "gnudb.gnudb.org"
	cfg.CDDB.TimeoutSeconds = 5
	cfg.CDDB.Negotiate = false
	cfg.Cache.Dir = "~/metadata"
	cfg.Logging.Format = "json"
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected %s to be loaded, got %s (exists=%v)", path, resolved, exists)
	}
	if loaded.CDDB.Server != "gnudb.gnudb.org" {
		t.Fatalf("unexpected server %q", loaded.CDDB.Server)
	}
	if loaded.CDDB.Negotiate {
		t.Fatal("expected negotiate=false from file")
	}
	home, _ := os.UserHomeDir()
	if loaded.Cache.Dir != filepath.Join(home, "metadata") {
		t.Fatalf("cache dir not expanded: %q", loaded.Cache.Dir)
	}
	if loaded.Logging.Format != "json" {
		t.Fatalf("unexpected log format %q", loaded.Logging.Format)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cacheDir := t.TempDir()
	t.Setenv("CDDB_SERVER", "mirror.example.org:8880")
	t.Setenv("CDDB_CACHE_DIR", cacheDir)
	t.Setenv("CDDB_USER", "tester")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CDDB.Server != "mirror.example.org:8880" {
		t.Fatalf("server override ignored: %q", cfg.CDDB.Server)
	}
	if cfg.Cache.Dir != cacheDir {
		t.Fatalf("cache dir override ignored: %q", cfg.Cache.Dir)
	}
	if cfg.CDDB.User != "tester" {
		t.Fatalf("user override ignored: %q", cfg.CDDB.User)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"url server", func(c *config.Config) { c.CDDB.Server = "http://freedb.org" }, "host name"},
		{"path in server", func(c *config.Config) { c.CDDB.Server = "freedb.org/cgi" }, "not allowed"},
		{"long server", func(c *config.Config) { c.CDDB.Server = strings.Repeat("a", 300) }, "longer"},
		{"zero proto", func(c *config.Config) { c.CDDB.ProtoLevel = 0 }, "proto_level"},
		{"negative timeout", func(c *config.Config) { c.CDDB.TimeoutSeconds = -1 }, "timeout"},
		{"format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "cdmeta.toml")
	if err := os.WriteFile(path, []byte("[cddb]\nsevrer = \"typo\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CDDB_SERVER", "")
	t.Setenv("CDDB_CACHE_DIR", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.CDDB.Server != "freedb.freedb.org" {
		t.Fatalf("unexpected sample server %q", cfg.CDDB.Server)
	}
}
