// Package cli implements the flowatlas command-line interface.
//
// This package provides commands for turning refugee statistics into Sankey
// flow diagrams and choropleth maps, replaying the map as a timelapse,
// serving both over HTTP, and managing the local cache. The CLI is built
// using cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - sankey: flow diagram of origin -> asylum movements (html, json, dot, svg, png)
//   - map: choropleth map for one year (svg, json, png)
//   - timelapse: map frames for every year, or an interactive terminal player
//   - options: dropdown values for year, origin or asylum
//   - serve: HTTP API with a websocket timelapse stream
//   - cache: manage the local cache
//
// # Configuration
//
// Defaults come from ~/.config/flowatlas/config.toml (see [config.Load]) or
// the file named by --config. Flags override the file.
package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/flowatlas/flowatlas/pkg/buildinfo"
	"github.com/flowatlas/flowatlas/pkg/cache"
	"github.com/flowatlas/flowatlas/pkg/config"
	"github.com/flowatlas/flowatlas/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "flowatlas"

	// Schema presets used when neither the flag nor the config names one.
	defaultFlowSchema = "unhcr"
	defaultMapSchema  = "owid"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
	logOut     io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		logOut: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "flowatlas visualizes refugee flows and asylum statistics",
		Long:         `flowatlas turns refugee and asylum statistics (CSV) into Sankey flow diagrams of origin to asylum movements and choropleth world maps, with a timelapse player that replays the map year by year.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/flowatlas/config.toml)")

	// Register all subcommands
	root.AddCommand(c.sankeyCommand())
	root.AddCommand(c.mapCommand())
	root.AddCommand(c.timelapseCommand())
	root.AddCommand(c.optionsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, c.Config.Keyer(), c.Logger), nil
}

// newCache opens the configured backend. A file cache that cannot be created
// degrades to no caching; remote backends that fail are reported.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts := c.Config.CacheOptions()
	cc, err := cache.Open(ctx, opts)
	if err != nil {
		if opts.Backend == "" || opts.Backend == cache.BackendFile {
			c.Logger.Warn("cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return nil, err
	}
	return cc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory: the configured one, or the XDG
// default (~/.cache/flowatlas/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions returns the pipeline options from the config file with the
// CLI logger attached. Commands override fields from their flags.
func (c *CLI) baseOptions() pipeline.Options {
	opts := c.Config.PipelineOptions()
	opts.Logger = c.Logger
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
// If empty, defaults to def.
func parseFormats(s, def string) []string {
	if s == "" {
		return []string{def}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// stdout is the destination for command output that is not a file.
var stdout io.Writer = os.Stdout
