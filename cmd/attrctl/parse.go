// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package main

import (
	"fmt"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/yumeengine/attrcore/internal/attrdoc"
	"github.com/yumeengine/attrcore/internal/literal"
	"github.com/yumeengine/attrcore/pkg/variant"
)

// Output modes for a single value.
const (
	outputLiteral = "literal"
	outputText    = "text"
	outputNode    = "node"
)

func newParseCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "parse <type> <text>",
		Short: "Parse text as a value of the named type",
		Long: `Parse text the way a typed attribute reads its text form and print
the result. Unparseable text yields the type's zero value.`,
		Example: `  attrctl parse Vector3 "1 2 3"
  attrctl parse Color "1 0 0" --output node`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := lookupType(args[0])
			if err != nil {
				return err
			}
			return a.printValue(cmd, variant.ParseType(t, args[1]), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputLiteral, "output mode (literal, text or node)")
	return cmd
}

func newLiteralCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "literal <text>",
		Short: "Parse a typed literal such as VariantMap { hp: Int \"3\" }",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := literal.Parse(args[0])
			if err != nil {
				return err
			}
			return a.printValue(cmd, v, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputNode, "output mode (literal, text or node)")
	return cmd
}

func newTypesCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the value types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, t := range variant.Types() {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s\n", int(t), t.Name())
			}
			return nil
		},
	}
}

func newSchemaCmd(_ *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the attribute document JSON Schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := attrdoc.GenerateSchema()
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, append(schema, '\n'))
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write to file instead of stdout")
	return cmd
}

// lookupType resolves a type name, rejecting names that are not types.
func lookupType(name string) (variant.Type, error) {
	t := variant.TypeFromName(name)
	if t == variant.TypeNone && !strings.EqualFold(strings.TrimSpace(name), variant.TypeNone.Name()) {
		return t, oops.Code("UNKNOWN_TYPE").With("type", name).
			Hint("run `attrctl types` for the list").
			Errorf("unknown type %q", name)
	}
	return t, nil
}

func (a *app) printValue(cmd *cobra.Command, v variant.Variant, output string) error {
	switch output {
	case outputLiteral:
		fmt.Fprintln(cmd.OutOrStdout(), literal.Format(v))
	case outputText:
		fmt.Fprintln(cmd.OutOrStdout(), v.String())
	case outputNode:
		data, err := a.cfg.Codec().Marshal(attrdoc.Encode(v))
		if err != nil {
			return err
		}
		return writeOutput(cmd, "", data)
	default:
		return oops.Code("INVALID_OUTPUT").With("output", output).
			Errorf("output must be %s, %s or %s", outputLiteral, outputText, outputNode)
	}
	return nil
}
