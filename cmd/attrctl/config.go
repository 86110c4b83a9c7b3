// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package main

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/yumeengine/attrcore/internal/attrdoc"
	"github.com/yumeengine/attrcore/internal/attribute"
	"github.com/yumeengine/attrcore/internal/logging"
	"github.com/yumeengine/attrcore/internal/xdg"
)

// Config is the attrctl configuration, read from the config file and
// overridden by command-line flags.
type Config struct {
	LogFormat   string           `koanf:"log_format"`
	LogLevel    string           `koanf:"log_level"`
	DatabaseURL string           `koanf:"database_url"`
	RedisAddr   string           `koanf:"redis_addr"`
	CacheTTL    time.Duration    `koanf:"cache_ttl"`
	Format      string           `koanf:"format"`
	Attributes  []attribute.Spec `koanf:"attributes"`
}

// Default values for global flags.
const (
	defaultLogFormat = "text"
	defaultLogLevel  = "warn"
	defaultFormat    = "yaml"
	defaultCacheTTL  = 5 * time.Minute
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	invalid := oops.Code("CONFIG_INVALID")
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return invalid.With("log_format", c.LogFormat).Errorf("log_format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return invalid.With("log_level", c.LogLevel).Wrap(err)
	}
	if _, err := attrdoc.ByName(c.Format); err != nil {
		return invalid.With("format", c.Format).Wrap(err)
	}
	if c.CacheTTL < 0 {
		return invalid.With("cache_ttl", c.CacheTTL.String()).Errorf("cache_ttl must not be negative")
	}
	if c.RedisAddr != "" && c.DatabaseURL == "" {
		return invalid.Hint("set database_url").Errorf("redis_addr requires database_url")
	}
	return nil
}

// Codec returns the configured output codec.
func (c *Config) Codec() attrdoc.Codec {
	codec, err := attrdoc.ByName(c.Format)
	if err != nil {
		return attrdoc.Default
	}
	return codec
}

// loadConfig reads path, or the XDG config file when path is empty, and
// layers flags on top. A missing default file is not an error.
func loadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		if p, err := xdg.ConfigFile(); err == nil {
			if _, statErr := os.Stat(p); statErr == nil {
				path = p
			}
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			code := "CONFIG_LOAD_FAILED"
			if errors.Is(err, fs.ErrNotExist) {
				code = "CONFIG_NOT_FOUND"
			}
			return nil, oops.Code(code).With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if f.Name == "config" || f.Name == "help" || f.Name == "version" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
		}
	}

	cfg := &Config{
		LogFormat: defaultLogFormat,
		LogLevel:  defaultLogLevel,
		Format:    defaultFormat,
		CacheTTL:  defaultCacheTTL,
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return cfg, nil
}
