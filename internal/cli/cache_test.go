package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flowatlas/flowatlas/pkg/errors"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	c := New(&bytes.Buffer{}, LogInfo)

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	// Verify the expected structure: $HOME/.cache/flowatlas
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", "flowatlas")
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	c := New(&bytes.Buffer{}, LogInfo)

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != filepath.Join(xdg, "flowatlas") {
		t.Errorf("cacheDir() = %q, want under %q", dir, xdg)
	}
}

func TestCacheDirFromConfig(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	c.Config.Cache.Dir = "/tmp/atlas-cache"

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != "/tmp/atlas-cache" {
		t.Errorf("cacheDir() = %q, want configured dir", dir)
	}
}

func TestCacheClear(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ab/one.json", "cd/two.json", "cd/three.json"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	restore := stdout
	stdout = &out
	defer func() { stdout = restore }()

	c := New(&bytes.Buffer{}, LogInfo)
	c.Config.Cache.Dir = dir

	if err := c.cacheClearCommand().RunE(nil, nil); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out.String(), "Cleared 3 cached entries") {
		t.Errorf("output = %q, want count of 3", out.String())
	}
	if n := countEntries(dir); n != 0 {
		t.Errorf("countEntries() = %d after clear, want 0", n)
	}
}

func TestCacheRemoteBackend(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	c.Config.Cache.Backend = "redis"

	err := c.cachePathCommand().RunE(nil, nil)
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("cache path on redis: err = %v, want UNSUPPORTED", err)
	}
}
