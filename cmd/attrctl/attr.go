// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package main

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/yumeengine/attrcore/internal/attrdoc"
	"github.com/yumeengine/attrcore/internal/literal"
	"github.com/yumeengine/attrcore/internal/store"
	"github.com/yumeengine/attrcore/pkg/variant"
)

func newAttrCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attr",
		Short: "Read and write stored entity attributes",
	}
	cmd.AddCommand(
		newAttrGetCmd(a),
		newAttrSetCmd(a),
		newAttrListCmd(a),
		newAttrDeleteCmd(a),
		newAttrExportCmd(a),
		newAttrImportCmd(a),
	)
	return cmd
}

// withRepository opens the repository for the duration of fn.
func (a *app) withRepository(ctx context.Context, fn func(store.Repository) error) error {
	repo, cleanup, err := a.deps.RepositoryFactory(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(repo)
}

func parseEntity(s string) (ulid.ULID, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return ulid.ULID{}, oops.Code("INVALID_ENTITY").With("entity", s).
			Hint("entities are identified by ULID").Wrap(err)
	}
	return id, nil
}

func newAttrGetCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get <entity> <name>",
		Short: "Print one attribute",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := parseEntity(args[0])
			if err != nil {
				return err
			}
			return a.withRepository(cmd.Context(), func(repo store.Repository) error {
				v, err := repo.Get(cmd.Context(), entity, args[1])
				if err != nil {
					return err
				}
				return a.printValue(cmd, v, output)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputLiteral, "output mode (literal, text or node)")
	return cmd
}

func newAttrSetCmd(a *app) *cobra.Command {
	var typeName string
	cmd := &cobra.Command{
		Use:   "set <entity> <name> <value>",
		Short: "Store one attribute",
		Long: `Store one attribute. The value is read as the text form of --type
when given, else of the registered type of name, else as a typed literal.
Registered attributes must keep their type.`,
		Example: `  attrctl attr set 01HZY7M4Q3P8T2R6V9W0X1Y2Z3 transform.position "1 2 3"
  attrctl attr set 01HZY7M4Q3P8T2R6V9W0X1Y2Z3 loot 'VariantVector [String "gold", Int "3"]'`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := parseEntity(args[0])
			if err != nil {
				return err
			}
			name := args[1]
			v, err := a.parseAttribute(name, typeName, args[2])
			if err != nil {
				return err
			}
			return a.withRepository(cmd.Context(), func(repo store.Repository) error {
				if err := repo.Set(cmd.Context(), entity, name, v); err != nil {
					return err
				}
				a.logger.Info("attribute stored", "entity_id", entity.String(), "name", name, "type", v.TypeName())
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "value type (default: registered type, else literal syntax)")
	return cmd
}

func (a *app) parseAttribute(name, typeName, text string) (variant.Variant, error) {
	var v variant.Variant
	def, registered := a.registry.Lookup(name)
	switch {
	case typeName != "":
		t, err := lookupType(typeName)
		if err != nil {
			return v, err
		}
		v = variant.ParseType(t, text)
	case registered:
		v = variant.ParseType(def.Type, text)
	default:
		var err error
		if v, err = literal.Parse(text); err != nil {
			return v, err
		}
	}
	if registered {
		if err := a.registry.Validate(name, v); err != nil {
			return v, err
		}
	}
	return v, nil
}

func newAttrListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <entity> [pattern]",
		Short: "List attributes, optionally filtered by a glob such as transform.*",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := parseEntity(args[0])
			if err != nil {
				return err
			}
			pattern := ""
			if len(args) == 2 {
				pattern = args[1]
			}
			return a.withRepository(cmd.Context(), func(repo store.Repository) error {
				attrs, err := repo.List(cmd.Context(), entity, pattern)
				if err != nil {
					return err
				}
				for _, name := range slices.Sorted(maps.Keys(attrs)) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, literal.Format(attrs[name]))
				}
				return nil
			})
		},
	}
}

func newAttrDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entity> <name>",
		Short: "Delete one attribute",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := parseEntity(args[0])
			if err != nil {
				return err
			}
			return a.withRepository(cmd.Context(), func(repo store.Repository) error {
				return repo.Delete(cmd.Context(), entity, args[1])
			})
		},
	}
}

func newAttrExportCmd(a *app) *cobra.Command {
	var to, out, pattern string
	cmd := &cobra.Command{
		Use:   "export <entity>",
		Short: "Write an entity's attributes as a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := parseEntity(args[0])
			if err != nil {
				return err
			}
			return a.withRepository(cmd.Context(), func(repo store.Repository) error {
				attrs, err := repo.List(cmd.Context(), entity, pattern)
				if err != nil {
					return err
				}
				return a.writeDocument(cmd, out, to, attrdoc.NewDocument(entity, attrs))
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "output format (default: from the output extension, else --format)")
	cmd.Flags().StringVar(&out, "out", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&pattern, "pattern", "", "only attributes matching this glob")
	return cmd
}

func newAttrImportCmd(a *app) *cobra.Command {
	var from, entityFlag string
	cmd := &cobra.Command{
		Use:   "import <document>",
		Short: "Store every attribute of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.readDocument(cmd, args[0], from)
			if err != nil {
				return err
			}
			entity, err := doc.EntityID()
			if err != nil {
				return err
			}
			if entityFlag != "" {
				if entity, err = parseEntity(entityFlag); err != nil {
					return err
				}
			}
			if entity == (ulid.ULID{}) {
				return oops.Code("INVALID_ENTITY").Hint("pass --entity or set entity in the document").
					Errorf("document has no entity")
			}
			attrs, err := doc.Variants()
			if err != nil {
				return err
			}
			return a.withRepository(cmd.Context(), func(repo store.Repository) error {
				for _, name := range doc.Names() {
					if err := repo.Set(cmd.Context(), entity, name, attrs[name]); err != nil {
						return err
					}
				}
				a.logger.Info("attributes imported", "entity_id", entity.String(), "count", len(attrs))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "input format (default: from the file extension)")
	cmd.Flags().StringVar(&entityFlag, "entity", "", "target entity (default: the document's entity)")
	return cmd
}
