// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the attribute database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.withMigrator(func(m Migrator) error {
					if err := m.Up(); err != nil {
						return err
					}
					return a.printVersion(cmd, m, "Migrations applied")
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration, dropping all attributes",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.withMigrator(func(m Migrator) error {
					if err := m.Down(); err != nil {
						return err
					}
					return a.printVersion(cmd, m, "Migrations rolled back")
				})
			},
		},
		&cobra.Command{
			Use:   "steps <n>",
			Short: "Apply n migrations, or roll back when n is negative",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := strconv.Atoi(strings.TrimSpace(args[0]))
				if err != nil {
					return oops.Code("INVALID_STEPS").With("steps", args[0]).Wrap(err)
				}
				return a.withMigrator(func(m Migrator) error {
					if err := m.Steps(n); err != nil {
						return err
					}
					return a.printVersion(cmd, m, "Migrated")
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied migration version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.withMigrator(func(m Migrator) error {
					return a.printVersion(cmd, m, "Schema")
				})
			},
		},
		&cobra.Command{
			Use:   "pending",
			Short: "List migrations not yet applied",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.withMigrator(func(m Migrator) error {
					pending, err := m.Pending()
					if err != nil {
						return err
					}
					if len(pending) == 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "No pending migrations")
						return nil
					}
					for _, v := range pending {
						fmt.Fprintln(cmd.OutOrStdout(), v)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Mark a version as applied without running it",
			Long: `Mark a version as applied without running it. This clears the dirty
flag left by a failed migration; fix the schema by hand first.`,
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := parseForceVersion(args[0])
				if err != nil {
					return err
				}
				return a.withMigrator(func(m Migrator) error {
					if err := m.Force(v); err != nil {
						return err
					}
					return a.printVersion(cmd, m, "Forced")
				})
			},
		},
	)
	return cmd
}

func parseForceVersion(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, oops.Code("INVALID_VERSION").With("version", s).Wrap(err)
	}
	if v < 0 {
		return 0, oops.Code("INVALID_VERSION").With("version", s).Errorf("version must be non-negative")
	}
	return v, nil
}

func (a *app) withMigrator(fn func(Migrator) error) error {
	if a.cfg.DatabaseURL == "" {
		return errDatabaseRequired()
	}
	m, err := a.deps.MigratorFactory(a.cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		_ = m.Close()
		return err
	}
	return m.Close()
}

func (a *app) printVersion(cmd *cobra.Command, m Migrator, prefix string) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	suffix := ""
	if dirty {
		suffix = " (dirty)"
		a.logger.Warn("database schema is dirty", "version", v)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: version %d%s\n", prefix, v, suffix)
	return nil
}
