// Package config loads the flowatlas TOML configuration file.
//
// The file is optional. Every section has defaults matching the library
// defaults, and command-line flags override whatever the file sets.
//
//	[schema]
//	preset = "unhcr"
//
//	[flow]
//	min_value = 1000
//
//	[map]
//	scale = "log"
//	domain = [1000, 1000000]
//	palette = "plasma"
//	min_year = "2014"
//	max_year = "2024"
//	geo = "https://example.org/world.geojson"
//
//	[aliases]
//	"Dem. Rep. Congo" = "Democratic Republic of the Congo"
//
//	[timelapse]
//	interval = "1.5s"
//	mode = "loop"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	prefix = "atlas:"
//
//	[server]
//	addr = ":8080"
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/flowatlas/flowatlas/pkg/cache"
	"github.com/flowatlas/flowatlas/pkg/dataset"
	"github.com/flowatlas/flowatlas/pkg/errors"
	"github.com/flowatlas/flowatlas/pkg/pipeline"
)

// DefaultAddr is the listen address of `flowatlas serve`.
const DefaultAddr = "localhost:8080"

// Config is the decoded configuration file.
type Config struct {
	Schema    SchemaConfig      `toml:"schema"`
	Flow      FlowConfig        `toml:"flow"`
	Map       MapConfig         `toml:"map"`
	Aliases   map[string]string `toml:"aliases"`
	Timelapse TimelapseConfig   `toml:"timelapse"`
	Cache     CacheConfig       `toml:"cache"`
	Server    ServerConfig      `toml:"server"`
}

// SchemaConfig selects a preset and optionally overrides its columns.
type SchemaConfig struct {
	Preset string `toml:"preset"`
	Year   string `toml:"year"`
	Origin string `toml:"origin"`
	Asylum string `toml:"asylum"`
	Value  string `toml:"value"`
}

type FlowConfig struct {
	MinValue       *float64 `toml:"min_value"`
	DisablePruning bool     `toml:"disable_pruning"`
}

type MapConfig struct {
	Scale       string    `toml:"scale"`
	Domain      []float64 `toml:"domain"`
	Breakpoints []float64 `toml:"breakpoints"`
	Palette     string    `toml:"palette"`
	MinYear     string    `toml:"min_year"`
	MaxYear     string    `toml:"max_year"`
	Geo         string    `toml:"geo"`
}

type TimelapseConfig struct {
	Interval time.Duration `toml:"interval"`
	Mode     string        `toml:"mode"`
}

type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`

	// Prefix scopes every key, keeping deployments apart in a shared
	// Redis or Mongo backend.
	Prefix string `toml:"prefix"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Cache:  CacheConfig{Backend: cache.BackendFile},
		Server: ServerConfig{Addr: DefaultAddr},
	}
}

// DefaultPath returns ~/.config/flowatlas/config.toml, honouring
// XDG_CONFIG_HOME.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "flowatlas", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "flowatlas", "config.toml"), nil
}

// Load reads the file at path over the defaults. An empty path loads the
// default location, where a missing file is not an error. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := Decode(string(data), &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return cfg, nil
}

// Decode parses TOML text into cfg, keeping values the text does not set.
func Decode(text string, cfg *Config) error {
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return cfg.Validate()
}

// Validate checks values that can be checked without loading data.
func (c Config) Validate() error {
	if len(c.Map.Domain) != 0 && len(c.Map.Domain) != 2 {
		return errors.New(errors.ErrCodeInvalidConfig, "map.domain needs two values, got %d", len(c.Map.Domain))
	}
	if c.Schema.Preset != "" {
		if _, err := dataset.Preset(c.Schema.Preset); err != nil {
			return err
		}
	}
	opts := c.PipelineOptions()
	return opts.ValidateAndSetDefaults()
}

// SchemaFor resolves the dataset schema. fallback names the preset used when
// the file selects none; explicit columns override the preset's.
func (c Config) SchemaFor(fallback string) (dataset.Schema, error) {
	name := c.Schema.Preset
	if name == "" {
		name = fallback
	}
	s, err := dataset.Preset(name)
	if err != nil {
		return dataset.Schema{}, err
	}
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&s.Year, c.Schema.Year)
	override(&s.Origin, c.Schema.Origin)
	override(&s.Asylum, c.Schema.Asylum)
	override(&s.Value, c.Schema.Value)
	if strings.EqualFold(c.Schema.Asylum, "none") {
		s.Asylum = ""
	}
	return s, s.Validate()
}

// PipelineOptions maps the file onto pipeline options. Defaults are left to
// Options.ValidateAndSetDefaults.
func (c Config) PipelineOptions() pipeline.Options {
	opts := pipeline.Options{
		MinValue:       c.Flow.MinValue,
		DisablePruning: c.Flow.DisablePruning,
		Scale:          c.Map.Scale,
		Breakpoints:    c.Map.Breakpoints,
		Palette:        c.Map.Palette,
		MinYear:        c.Map.MinYear,
		MaxYear:        c.Map.MaxYear,
		Aliases:        c.Aliases,
		Interval:       c.Timelapse.Interval,
		Mode:           c.Timelapse.Mode,
	}
	if len(c.Map.Domain) == 2 {
		opts.DomainMin, opts.DomainMax = c.Map.Domain[0], c.Map.Domain[1]
	}
	return opts
}

// Keyer returns the cache keyer for the [cache] section: the default
// keyer, scoped when a prefix is set.
func (c Config) Keyer() cache.Keyer {
	if c.Cache.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Cache.Prefix)
}

// CacheOptions maps the [cache] section onto cache.Options.
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis: cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		},
		Mongo: cache.MongoConfig{
			URI:      c.Cache.MongoURI,
			Database: c.Cache.MongoDatabase,
		},
	}
}
