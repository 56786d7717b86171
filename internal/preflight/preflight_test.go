package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cdmeta/internal/cddb"
	"cdmeta/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCacheDirectory_Missing(t *testing.T) {
	result := CheckCacheDirectory("cache", filepath.Join(t.TempDir(), "a", "b"))
	if !result.Passed {
		t.Fatalf("expected pass for creatable dir, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "created on first lookup") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDevice(t *testing.T) {
	if result := CheckDevice("drive", ""); result.Passed {
		t.Fatal("expected failure for unconfigured device")
	}
	if result := CheckDevice("drive", filepath.Join(t.TempDir(), "sr0")); result.Passed {
		t.Fatal("expected failure for missing device")
	}
	f := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(f, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDevice("drive", f); result.Passed {
		t.Fatal("expected failure for regular file")
	}
}

func TestCheckServer(t *testing.T) {
	cfg := config.Default()

	t.Run("reachable", func(t *testing.T) {
		transport := cddb.TransportFunc(func(context.Context, string) (*cddb.Response, error) {
			return &cddb.Response{StatusCode: 200, Body: []byte("210 OK\nmax proto: 6\n.\n")}, nil
		})
		result := CheckServer(context.Background(), &cfg, transport)
		if !result.Passed || !strings.Contains(result.Detail, "protocol level 6") {
			t.Fatalf("unexpected result: %+v", result)
		}
	})
	t.Run("stat unsupported still passes", func(t *testing.T) {
		transport := cddb.TransportFunc(func(context.Context, string) (*cddb.Response, error) {
			return &cddb.Response{StatusCode: 200, Body: []byte("500 Unrecognized command.\n")}, nil
		})
		if result := CheckServer(context.Background(), &cfg, transport); !result.Passed {
			t.Fatalf("unexpected result: %+v", result)
		}
	})
	t.Run("unreachable", func(t *testing.T) {
		transport := cddb.TransportFunc(func(context.Context, string) (*cddb.Response, error) {
			return nil, context.DeadlineExceeded
		})
		result := CheckServer(context.Background(), &cfg, transport)
		if result.Passed || !strings.Contains(result.Detail, "timed out") {
			t.Fatalf("unexpected result: %+v", result)
		}
	})
}

func TestRunAll(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()
	cfg.Drive.Device = filepath.Join(t.TempDir(), "missing")
	transport := cddb.TransportFunc(func(context.Context, string) (*cddb.Response, error) {
		return nil, errors.New("connection refused")
	})

	results := RunAll(context.Background(), &cfg, transport)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if AllPassed(results) {
		t.Fatal("expected failures for missing drive and unreachable server")
	}
	if !results[0].Passed {
		t.Fatalf("cache directory should pass: %+v", results[0])
	}

	cfg.Cache.Enabled = false
	if got := len(RunAll(context.Background(), &cfg, transport)); got != 2 {
		t.Fatalf("expected cache check to be skipped, got %d results", got)
	}
	if RunAll(context.Background(), nil, nil) != nil {
		t.Fatal("expected nil for nil config")
	}
}
