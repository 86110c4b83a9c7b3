// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package literal

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"

	"github.com/yumeengine/attrcore/internal/attrdoc"
	"github.com/yumeengine/attrcore/pkg/variant"
)

// MaxNestingDepth bounds how deeply collections may nest.
const MaxNestingDepth = 64

var parser *participle.Parser[Value]

func init() {
	var err error
	parser, err = NewParser()
	if err != nil {
		panic(fmt.Sprintf("failed to build literal parser: %v", err))
	}
}

var (
	bareKey = regexp.MustCompile(`^[a-zA-Z_][\w.]*$`)
	hashKey = regexp.MustCompile(`^#[0-9a-fA-F]+$`)
)

// Parse parses a typed literal into a variant.
func Parse(text string) (variant.Variant, error) {
	ast, err := ParseAST(text)
	if err != nil {
		return variant.Variant{}, err
	}
	n, err := toNode(ast, 0)
	if err != nil {
		return variant.Variant{}, err
	}
	v, err := attrdoc.Decode(n)
	if err != nil {
		return variant.Variant{}, oops.Code("LITERAL_INVALID").
			With("line", ast.Pos.Line).With("column", ast.Pos.Column).Wrap(err)
	}
	return v, nil
}

// ParseAST parses text without converting it to a variant.
func ParseAST(text string) (*Value, error) {
	ast, err := parser.ParseString("", text)
	if err != nil {
		b := oops.Code("LITERAL_SYNTAX")
		var perr participle.Error
		if errors.As(err, &perr) {
			pos := perr.Position()
			b = b.With("line", pos.Line).With("column", pos.Column)
		}
		return nil, b.Hint(`literals look like: Float "2.5"`).Wrapf(err, "parsing literal")
	}
	return ast, nil
}

// MustParse is Parse for literals known to be valid. It panics on error.
func MustParse(text string) variant.Variant {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

func shapeError(pos lexer.Position, typ, want string) error {
	return oops.Code("LITERAL_SHAPE").
		With("type", typ).
		With("line", pos.Line).
		With("column", pos.Column).
		Errorf("%s literal expects %s", typ, want)
}

func toNode(v *Value, depth int) (attrdoc.Node, error) {
	if depth > MaxNestingDepth {
		return attrdoc.Node{}, oops.Code("LITERAL_TOO_DEEP").
			With("line", v.Pos.Line).With("column", v.Pos.Column).
			Errorf("nesting depth exceeds maximum of %d", MaxNestingDepth)
	}

	t := variant.TypeFromName(v.Type)
	if t == variant.TypeNone && !strings.EqualFold(v.Type, "None") {
		return attrdoc.Node{}, oops.Code("LITERAL_UNKNOWN_TYPE").
			With("type", v.Type).
			With("line", v.Pos.Line).With("column", v.Pos.Column).
			Wrap(attrdoc.ErrUnknownType)
	}

	n := attrdoc.Node{Type: t.Name()}
	switch t {
	case variant.TypeVariantVector:
		if v.Text != nil || v.Map != nil {
			return n, shapeError(v.Pos, v.Type, "a [...] list of typed values")
		}
		if v.List == nil {
			return n, nil
		}
		n.Items = make([]attrdoc.Node, 0, len(v.List.Elements))
		for _, e := range v.List.Elements {
			if e.Value == nil {
				return n, shapeError(e.Pos, v.Type, "typed values, not bare strings")
			}
			child, err := toNode(e.Value, depth+1)
			if err != nil {
				return n, err
			}
			n.Items = append(n.Items, child)
		}
	case variant.TypeStringVector:
		if v.Text != nil || v.Map != nil {
			return n, shapeError(v.Pos, v.Type, `a [...] list of strings`)
		}
		if v.List == nil {
			return n, nil
		}
		n.Strings = make([]string, 0, len(v.List.Elements))
		for _, e := range v.List.Elements {
			if e.Str == nil {
				return n, shapeError(e.Pos, v.Type, "bare strings, not typed values")
			}
			n.Strings = append(n.Strings, *e.Str)
		}
	case variant.TypeVariantMap:
		if v.Text != nil || v.List != nil {
			return n, shapeError(v.Pos, v.Type, "a {...} set of key: value entries")
		}
		if v.Map == nil {
			return n, nil
		}
		n.Entries = make(map[string]attrdoc.Node, len(v.Map.Entries))
		for _, e := range v.Map.Entries {
			if _, err := attrdoc.ParseKey(e.Key); err != nil {
				return n, oops.With("line", e.Pos.Line).With("column", e.Pos.Column).Wrap(err)
			}
			if _, dup := n.Entries[e.Key]; dup {
				return n, oops.Code("LITERAL_DUPLICATE_KEY").
					With("key", e.Key).
					With("line", e.Pos.Line).With("column", e.Pos.Column).
					Errorf("duplicate map key %q", e.Key)
			}
			child, err := toNode(e.Value, depth+1)
			if err != nil {
				return n, err
			}
			n.Entries[e.Key] = child
		}
	default:
		if v.List != nil || v.Map != nil {
			return n, shapeError(v.Pos, v.Type, `a quoted text form such as "1 2 3"`)
		}
		if v.Text != nil {
			n.Value = *v.Text
		}
	}
	return n, nil
}

// Format renders v as a literal that Parse reads back. Pointer kinds render
// as their bare type name and parse back as null pointers.
func Format(v variant.Variant) string {
	var sb strings.Builder
	writeNode(&sb, attrdoc.Encode(v))
	return sb.String()
}

func writeNode(sb *strings.Builder, n attrdoc.Node) {
	sb.WriteString(n.Type)
	switch n.Type {
	case variant.TypeNone.Name(), variant.TypeVoidPtr.Name(), variant.TypePtr.Name():
	case variant.TypeVariantVector.Name():
		sb.WriteString(" [")
		for i, item := range n.Items {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeNode(sb, item)
		}
		sb.WriteByte(']')
	case variant.TypeStringVector.Name():
		sb.WriteString(" [")
		for i, s := range n.Strings {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Quote(s))
		}
		sb.WriteByte(']')
	case variant.TypeVariantMap.Name():
		sb.WriteString(" {")
		keys := make([]string, 0, len(n.Entries))
		for k := range n.Entries {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(formatKey(k))
			sb.WriteString(": ")
			writeNode(sb, n.Entries[k])
		}
		sb.WriteByte('}')
	default:
		sb.WriteByte(' ')
		sb.WriteString(strconv.Quote(n.Value))
	}
}

func formatKey(k string) string {
	if bareKey.MatchString(k) || hashKey.MatchString(k) {
		return k
	}
	return strconv.Quote(k)
}
