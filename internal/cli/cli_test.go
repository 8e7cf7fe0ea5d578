package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/flowatlas/flowatlas/pkg/errors"
)

func TestRootCommand(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()

	for _, name := range []string{"sankey", "map", "timelapse", "options", "serve", "cache", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing --config flag")
	}
}

func TestRootCommandLoadsConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := "[cache]\nbackend = \"none\"\n\n[server]\naddr = \":9090\"\n"
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	restore := stdout
	stdout = &out
	defer func() { stdout = restore }()

	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"--config", path, "cache", "path"})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("cache path with backend none: err = %v, want UNSUPPORTED", err)
	}
	if c.Config.Server.Addr != ":9090" {
		t.Errorf("Config.Server.Addr = %q, want :9090", c.Config.Server.Addr)
	}
}

func TestRootCommandMissingConfig(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.toml"), "cache", "path"})
	root.SetErr(&bytes.Buffer{})

	if err := root.Execute(); err == nil {
		t.Error("expected error for a missing config file")
	}
}

func TestNewCacheDisabled(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)

	cc, err := c.newCache(t.Context(), true)
	if err != nil {
		t.Fatalf("newCache() error: %v", err)
	}
	if _, ok, _ := cc.Get(t.Context(), "key"); ok {
		t.Error("disabled cache should never hit")
	}
}
