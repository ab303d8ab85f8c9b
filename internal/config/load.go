// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes environment overrides: VITRINE_SESSION_SECRET sets
// session.secret. The first underscore after the prefix separates the
// section from the key.
const EnvPrefix = "VITRINE_"

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"addr":         "http.addr",
	"base-url":     "http.base_url",
	"database-url": "database.url",
	"metrics-addr": "metrics.addr",
	"log-format":   "log.format",
	"log-level":    "log.level",
	"uploads-dir":  "uploads.dir",
}

// BindFlags registers the overridable flags on fs. Flag defaults are
// empty; only flags set on the command line override other sources.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("addr", "", "HTTP listen address (http.addr)")
	fs.String("base-url", "", "public base URL used in emails (http.base_url)")
	fs.String("database-url", "", "PostgreSQL connection URL (database.url)")
	fs.String("metrics-addr", "", "metrics and health listen address (metrics.addr)")
	fs.String("log-format", "", "log format: json or text (log.format)")
	fs.String("log-level", "", "log level (log.level)")
	fs.String("uploads-dir", "", "directory for uploaded photos (uploads.dir)")
}

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// File is an optional YAML file.
	File string
	// Flags are the parsed command-line flags, if any.
	Flags *pflag.FlagSet
	// EnvFiles are dotenv files loaded into the process environment before
	// reading it. Missing files are skipped; existing variables win.
	EnvFiles []string
}

// Load builds and validates the configuration.
func Load(opts LoadOptions) (*Config, error) {
	for _, name := range opts.EnvFiles {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("file", name).Wrap(err)
		}
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "defaults").Wrap(err)
	}

	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("file", opts.File).Wrap(err)
		}
		if err := ValidateYAML(data); err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("file", opts.File).Wrap(err)
		}
		if err := k.Load(file.Provider(opts.File), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("file", opts.File).Wrap(err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "env").Wrap(err)
	}

	if opts.Flags != nil {
		p := posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(p, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "unmarshal").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns VITRINE_SESSION_COOKIE_SECURE into session.cookie_secure.
func envKey(name string) string {
	name = strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	section, key, found := strings.Cut(name, "_")
	if !found {
		return name
	}
	return section + "." + key
}
