// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package main

import (
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/yumeengine/attrcore/internal/attribute"
	"github.com/yumeengine/attrcore/internal/logging"
)

// app is the state shared by every subcommand once the config is loaded.
type app struct {
	configFile string
	cfg        *Config
	logger     *slog.Logger
	registry   *attribute.Registry
	deps       *Deps
}

// NewRootCmd creates the root command for the attrctl CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(deps *Deps) *cobra.Command {
	a := &app{deps: deps.withDefaults()}

	cmd := &cobra.Command{
		Use:   "attrctl",
		Short: "Inspect, convert and store entity attributes",
		Long: `attrctl works with typed attribute values: it parses and formats
variants, converts attribute documents between JSON, YAML and MessagePack,
runs Lua transforms and filter expressions, and manages attributes stored
in PostgreSQL.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/attrctl/config.yaml)")
	flags.String("log-format", defaultLogFormat, "log format (json or text)")
	flags.String("log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.String("database-url", "", "PostgreSQL connection URL")
	flags.String("redis-addr", "", "Redis address for the attribute cache (empty = disabled)")
	flags.Duration("cache-ttl", defaultCacheTTL, "attribute cache entry lifetime")
	flags.StringP("format", "f", defaultFormat, "output format (json, yaml, msgpack, optionally +br)")

	cmd.AddCommand(
		newParseCmd(a),
		newLiteralCmd(a),
		newConvertCmd(a),
		newValidateCmd(a),
		newSchemaCmd(a),
		newLuaCmd(a),
		newFilterCmd(a),
		newAttrCmd(a),
		newMigrateCmd(a),
		newTypesCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(logging.Options{
		Service: "attrctl",
		Version: version,
		Format:  cfg.LogFormat,
		Level:   level,
		Output:  cmd.ErrOrStderr(),
	})

	a.registry = attribute.BuiltinRegistry()
	if err := a.registry.RegisterSpecs(cfg.Attributes); err != nil {
		return oops.Code("CONFIG_INVALID").Hint("check the attributes section of the config file").Wrap(err)
	}
	a.logger.Debug("configuration loaded",
		"format", cfg.Format,
		"attributes", len(a.registry.Names()),
		"database", cfg.DatabaseURL != "",
	)
	return nil
}

func errDatabaseRequired() error {
	return oops.Code("CONFIG_INVALID").
		Hint("pass --database-url or set database_url in the config file").
		Errorf("database_url is required")
}
