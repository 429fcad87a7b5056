// Package config loads shasync settings from built-in defaults, an
// optional TOML file and SHASYNC_* environment variables, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/tqbf/shasync/pkg/fetch"
	"github.com/tqbf/shasync/pkg/verify"
)

const (
	EnvPrefix = "SHASYNC_"

	// RelPath is where the config file lives under the XDG config dirs.
	RelPath = "shasync/config.toml"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	ManifestURL string        `koanf:"manifest_url" validate:"required"`
	Token       string        `koanf:"token"`
	UserAgent   string        `koanf:"user_agent"`
	Timeout     time.Duration `koanf:"timeout" validate:"gte=0"`
	ProbePath   string        `koanf:"probe_path" validate:"required"`
	Excludes    []string      `koanf:"excludes"`
	Throttle    Throttle      `koanf:"throttle"`
}

// Throttle is disabled while RPS is zero.
type Throttle struct {
	RPS   int `koanf:"rps" validate:"gte=0"`
	Burst int `koanf:"burst" validate:"required_with=RPS,gte=0"`
}

func defaults() map[string]any {
	return map[string]any{
		"manifest_url":   fetch.DefaultURL,
		"user_agent":     "shasync",
		"timeout":        "5m",
		"probe_path":     verify.CatalogPath,
		"throttle.rps":   0,
		"throttle.burst": 0,
	}
}

// Load reads configuration. An explicit path must exist; with an empty
// path the XDG config directories are searched and a missing file is
// not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	path, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return path, nil
	}
	found, err := xdg.SearchConfigFile(RelPath)
	if err != nil {
		return "", nil
	}
	return found, nil
}

// envKey maps SHASYNC_THROTTLE__RPS to throttle.rps. A double
// underscore separates nesting levels since keys contain underscores.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// FetchOptions converts the settings into fetch client options.
func (c *Config) FetchOptions() []fetch.Option {
	var opts []fetch.Option
	if c.Token != "" {
		opts = append(opts, fetch.WithToken(c.Token))
	}
	if c.UserAgent != "" {
		opts = append(opts, fetch.WithUserAgent(c.UserAgent))
	}
	if c.Throttle.RPS > 0 {
		opts = append(opts, fetch.WithThrottle(
			c.Throttle.RPS, c.Throttle.Burst,
		))
	}
	return opts
}
