// Package config loads the optional mediatopo configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/mediatopo/config.toml
// unless --config names another path. Every key is optional; command-line
// flags override whatever the file sets.
//
//	device  = "/dev/media1"
//	output  = "topology.svg"
//	formats = ["svg", "dot"]
//	engine  = "dot"
//
//	[markers]
//	sensor = "imx708"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/mediatopo/pkg/cache"
	"github.com/matzehuels/mediatopo/pkg/errors"
	"github.com/matzehuels/mediatopo/pkg/mediactl"
	"github.com/matzehuels/mediatopo/pkg/pipeline"
	"github.com/matzehuels/mediatopo/pkg/render/nodelink"
)

const (
	appName  = "mediatopo"
	fileName = "config.toml"

	// DefaultServeAddr is the listen address of "mediatopo serve".
	DefaultServeAddr = ":8080"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

// Config is the decoded configuration file.
type Config struct {
	Device   string   `toml:"device" validate:"omitempty,startswith=/dev/"`
	Output   string   `toml:"output" validate:"omitempty,max=500"`
	Formats  []string `toml:"formats" validate:"omitempty,dive,oneof=dot svg png pdf"`
	Engine   string   `toml:"engine" validate:"omitempty,oneof=graphviz dot"`
	MediaCtl string   `toml:"media_ctl"`

	Markers   nodelink.Markers `toml:"markers"`
	Discovery Discovery        `toml:"discovery"`
	Cache     Cache            `toml:"cache"`
	Serve     Serve            `toml:"serve"`
}

// Discovery controls the /dev/mediaN probe.
type Discovery struct {
	Marker string `toml:"marker"`
	Prefix string `toml:"prefix" validate:"omitempty,startswith=/dev/"`
	Count  int    `toml:"count" validate:"min=0,max=64"`
}

// Cache selects the artifact cache backend.
type Cache struct {
	Backend        string `toml:"backend" validate:"oneof=file redis none"`
	Dir            string `toml:"dir"`
	RedisAddr      string `toml:"redis_addr" validate:"required_if=Backend redis,omitempty,hostname_port"`
	RedisPassword  string `toml:"redis_password"`
	RedisDB        int    `toml:"redis_db" validate:"min=0,max=15"`
	RedisNamespace string `toml:"redis_namespace"`
}

// Serve configures the HTTP server.
type Serve struct {
	Addr string `toml:"addr" validate:"hostname_port"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Cache: Cache{Backend: BackendFile},
		Serve: Serve{Addr: DefaultServeAddr},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/mediatopo/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads and validates the file at path. An empty path means
// [DefaultPath], and a missing default file yields [Default]. A missing
// explicit path is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			if explicit {
				return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
			}
			return Default(), nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// Validate checks the struct tags of c.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// Options converts the file settings into pipeline options. Callers
// overlay their flags on the result.
func (c *Config) Options() pipeline.Options {
	return pipeline.Options{
		Device:   c.Device,
		Output:   c.Output,
		Formats:  append([]string(nil), c.Formats...),
		Engine:   c.Engine,
		MediaCtl: c.MediaCtl,
		Marker:   c.Discovery.Marker,
		Markers:  c.Markers,
	}
}

// DiscoverOptions returns the probe settings for [mediactl.Discover] and
// [mediactl.Probe].
func (c *Config) DiscoverOptions() mediactl.DiscoverOptions {
	return mediactl.DiscoverOptions{
		Prefix: c.Discovery.Prefix,
		Count:  c.Discovery.Count,
		Marker: c.Discovery.Marker,
		Binary: c.MediaCtl,
	}.WithDefaults()
}

// OpenCache builds the configured cache backend. A file cache without a
// directory uses [cache.DefaultDir].
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:      c.Cache.RedisAddr,
			Password:  c.Cache.RedisPassword,
			DB:        c.Cache.RedisDB,
			Namespace: c.Cache.RedisNamespace,
		})
	default:
		dir := c.Cache.Dir
		if dir == "" {
			d, err := cache.DefaultDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !stderrors.As(err, &validationErrs) {
		return err
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := strings.TrimPrefix(e.Namespace(), "Config.")
		switch e.Tag() {
		case "required", "required_if":
			msgs = append(msgs, fmt.Sprintf("%s: field is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s: must be one of [%s], got %q", field, e.Param(), e.Value()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s: must be at least %s", field, e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s: must not exceed %s", field, e.Param()))
		case "startswith":
			msgs = append(msgs, fmt.Sprintf("%s: must start with %s", field, e.Param()))
		case "hostname_port":
			msgs = append(msgs, fmt.Sprintf("%s: must be host:port, got %q", field, e.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: validation failed (%s)", field, e.Tag()))
		}
	}
	return stderrors.New(strings.Join(msgs, "; "))
}
