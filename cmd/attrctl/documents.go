// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package main

import (
	"fmt"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/yumeengine/attrcore/internal/attrdoc"
	"github.com/yumeengine/attrcore/internal/attribute"
	"github.com/yumeengine/attrcore/internal/luabridge"
	"github.com/yumeengine/attrcore/internal/query"
	"github.com/yumeengine/attrcore/pkg/variant"
)

func newConvertCmd(a *app) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "convert <input> [output]",
		Short: "Convert an attribute document between formats",
		Long: `Convert an attribute document between JSON, YAML and MessagePack,
optionally brotli-compressed. Formats default to the file extensions;
"-" reads standard input or writes standard output.`,
		Example: `  attrctl convert crate.yaml crate.msgpack.br
  attrctl convert --from json --to yaml - < crate.json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.readDocument(cmd, args[0], from)
			if err != nil {
				return err
			}
			out := ""
			if len(args) == 2 {
				out = args[1]
			}
			return a.writeDocument(cmd, out, to, doc)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "input format (default: from the input extension)")
	cmd.Flags().StringVar(&to, "to", "", "output format (default: from the output extension, else --format)")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	var from string
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate attribute documents",
		Long: `Validate attribute documents against the document schema and the
attribute registry. Known attributes must have their registered type;
with --strict, unknown attributes are errors too.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				n, err := a.validateDocument(cmd, path, from, strict)
				if err != nil {
					return oops.With("path", path).Wrap(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d attributes)\n", path, n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "input format (default: from the file extension)")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject attributes missing from the registry")
	return cmd
}

func (a *app) validateDocument(cmd *cobra.Command, path, from string, strict bool) (int, error) {
	doc, err := a.readDocument(cmd, path, from)
	if err != nil {
		return 0, err
	}
	if err := attrdoc.ValidateDocument(doc); err != nil {
		return 0, err
	}
	attrs, err := doc.Variants()
	if err != nil {
		return 0, err
	}
	if strict {
		return len(attrs), a.registry.ValidateAll(attrs)
	}
	for _, name := range doc.Names() {
		if _, ok := a.registry.Lookup(name); !ok {
			a.logger.Debug("attribute not registered", "path", path, "name", name)
			continue
		}
		if err := a.registry.Validate(name, attrs[name]); err != nil {
			return 0, err
		}
	}
	return len(attrs), nil
}

func newLuaCmd(a *app) *cobra.Command {
	var from, to, out, eval string
	var timeout time.Duration
	var withDefaults bool
	cmd := &cobra.Command{
		Use:   "lua [script] <document>",
		Short: "Run a Lua transform over a document's attributes",
		Long: `Run a sandboxed Lua script with the document's attributes bound to
the global table attrs. The script edits attrs in place or defines
transform(attrs) returning the new table. The result is written as a
document.`,
		Example: `  attrctl lua scale.lua crate.yaml
  attrctl lua -e 'attrs.hp = attrs.hp * 2' crate.yaml`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			script := eval
			switch {
			case eval == "" && len(args) == 2:
				data, err := readInput(cmd, args[0])
				if err != nil {
					return err
				}
				script = string(data)
				args = args[1:]
			case eval == "" || len(args) != 1:
				return oops.Code("INVALID_ARGS").Errorf("pass either a script file or --eval, and one document")
			}

			doc, err := a.readDocument(cmd, args[0], from)
			if err != nil {
				return err
			}
			attrs, err := doc.Variants()
			if err != nil {
				return err
			}
			if withDefaults {
				attrs = mergeDefaults(a.registry, attrs)
			}

			runner := luabridge.NewRunner(luabridge.NewStateFactory(a.logger), luabridge.WithTimeout(timeout))
			result, err := runner.Transform(cmd.Context(), script, toMap(attrs))
			if err != nil {
				return err
			}
			entity, err := doc.EntityID()
			if err != nil {
				return err
			}
			return a.writeDocument(cmd, out, to, attrdoc.NewDocument(entity, fromMap(result)))
		},
	}
	cmd.Flags().StringVarP(&eval, "eval", "e", "", "script source")
	cmd.Flags().StringVar(&from, "from", "", "input format (default: from the document extension)")
	cmd.Flags().StringVar(&to, "to", "", "output format (default: --format)")
	cmd.Flags().StringVar(&out, "out", "", "output file (default: stdout)")
	cmd.Flags().DurationVar(&timeout, "timeout", luabridge.DefaultTimeout, "script time limit (0 = none)")
	cmd.Flags().BoolVar(&withDefaults, "defaults", false, "add registered defaults for missing attributes")
	return cmd
}

func newFilterCmd(a *app) *cobra.Command {
	var from, expr string
	cmd := &cobra.Command{
		Use:   "filter --expr <expression> <document>...",
		Short: "Print the documents whose attributes match an expression",
		Example: `  attrctl filter --expr 'hp > 10 && name startsWith "crate"' *.yaml
  attrctl filter --expr 'length(velocity) < 0.5' world/*.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := query.Compile(expr)
			if err != nil {
				return err
			}
			entries := make(map[string]variant.Map, len(args))
			for _, path := range args {
				doc, err := a.readDocument(cmd, path, from)
				if err != nil {
					return err
				}
				attrs, err := doc.Variants()
				if err != nil {
					return oops.With("path", path).Wrap(err)
				}
				entries[path] = toMap(attrs)
			}
			matched, err := filter.Select(entries)
			if err != nil {
				return err
			}
			for _, path := range matched {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			a.logger.Debug("filter complete", "expr", filter.String(), "documents", len(entries), "matched", len(matched))
			return nil
		},
	}
	cmd.Flags().StringVar(&expr, "expr", "", "boolean filter expression")
	cmd.Flags().StringVar(&from, "from", "", "input format (default: from each file extension)")
	_ = cmd.MarkFlagRequired("expr")
	return cmd
}

// writeDocument encodes doc with the codec named to, the one implied by
// out, or the configured format.
func (a *app) writeDocument(cmd *cobra.Command, out, to string, doc attrdoc.Document) error {
	codec, err := codecFor(to, out, a.cfg.Codec())
	if err != nil {
		return err
	}
	data, err := attrdoc.Marshal(codec, doc)
	if err != nil {
		return err
	}
	return writeOutput(cmd, out, data)
}

// mergeDefaults returns attrs plus the registered default of every
// attribute it lacks.
func mergeDefaults(r *attribute.Registry, attrs map[string]variant.Variant) map[string]variant.Variant {
	out := r.Defaults()
	for name, v := range attrs {
		out[name] = v
	}
	return out
}
