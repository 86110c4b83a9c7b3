// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

// Package query evaluates boolean filter expressions over attribute maps.
//
// Attributes are exposed to expressions by name with native values:
// numbers, strings, booleans, lists, and maps of components for vectors
// and other structured kinds. The extra variable "types" maps each
// attribute name to its variant type name.
//
//	hp > 10 && types.speed == "Float" && transform.position.y >= 0
package query

import (
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/samber/oops"

	"github.com/yumeengine/attrcore/internal/attrdoc"
	"github.com/yumeengine/attrcore/pkg/strhash"
	"github.com/yumeengine/attrcore/pkg/variant"
)

// TypesVar is the environment variable holding attribute type names.
const TypesVar = "types"

// Filter is a compiled boolean expression.
type Filter struct {
	source  string
	program *vm.Program
}

// Compile compiles expression. Undefined attributes evaluate to nil.
func Compile(expression string) (*Filter, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, oops.In("query").Code("QUERY_EMPTY").Errorf("expression must not be empty")
	}
	program, err := expr.Compile(expression,
		expr.Env(map[string]any{}),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
		expr.Function("length", length, new(func(any) float64)),
		expr.Function("hash", hash, new(func(string) int)),
	)
	if err != nil {
		return nil, oops.In("query").Code("QUERY_COMPILE").With("expression", expression).Wrap(err)
	}
	return &Filter{source: expression, program: program}, nil
}

// MustCompile is Compile for expressions known to be valid. It panics on error.
func MustCompile(expression string) *Filter {
	f, err := Compile(expression)
	if err != nil {
		panic(err)
	}
	return f
}

// String returns the source expression.
func (f *Filter) String() string { return f.source }

// Match evaluates the filter against attrs.
func (f *Filter) Match(attrs variant.Map) (bool, error) {
	out, err := expr.Run(f.program, Env(attrs))
	if err != nil {
		return false, oops.In("query").Code("QUERY_EVAL").With("expression", f.source).Wrap(err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// Select returns the sorted keys of the entries whose attributes match.
func (f *Filter) Select(entries map[string]variant.Map) ([]string, error) {
	var out []string
	for _, key := range slices.Sorted(maps.Keys(entries)) {
		ok, err := f.Match(entries[key])
		if err != nil {
			return nil, oops.With("entry", key).Wrap(err)
		}
		if ok {
			out = append(out, key)
		}
	}
	return out, nil
}

// Env builds the expression environment for attrs. Dotted names are also
// nested, so transform.position reads the "transform.position" attribute,
// unless a plain attribute already owns the first segment.
func Env(attrs variant.Map) map[string]any {
	env := make(map[string]any, len(attrs)+1)
	types := make(map[string]any, len(attrs))
	var dotted []string
	for k, v := range attrs {
		name := attrdoc.KeyName(k)
		env[name] = Native(v)
		types[name] = v.TypeName()
		if strings.Contains(name, ".") {
			dotted = append(dotted, name)
		}
	}
	slices.Sort(dotted)
	for _, name := range dotted {
		nest(env, strings.Split(name, "."), env[name])
	}
	if _, taken := env[TypesVar]; !taken {
		env[TypesVar] = types
	}
	return env
}

// namespace is an intermediate map created for dotted names.
type namespace map[string]any

// nest stores value under path, creating namespaces. Segments held by
// attribute values are left alone.
func nest(env map[string]any, path []string, value any) {
	m := env
	for _, seg := range path[:len(path)-1] {
		next, ok := m[seg]
		if !ok {
			child := namespace{}
			m[seg] = child
			m = child
			continue
		}
		child, ok := next.(namespace)
		if !ok {
			return
		}
		m = child
	}
	last := path[len(path)-1]
	if _, taken := m[last]; !taken {
		m[last] = value
	}
}

// Native converts v to plain Go values: int, float64, bool, string, []any
// and map[string]any. Null pointers become nil and live ones their address.
func Native(v variant.Variant) any {
	switch v.Type() {
	case variant.TypeNone:
		return nil
	case variant.TypeInt:
		return int(v.Int())
	case variant.TypeBool:
		return v.Bool()
	case variant.TypeFloat:
		return float64(v.Float())
	case variant.TypeDouble:
		return v.Double()
	case variant.TypeString:
		return v.StringValue()
	case variant.TypeBuffer:
		return string(v.Buffer())
	case variant.TypeVector2:
		p := v.Vector2()
		return components("x", p.X, "y", p.Y)
	case variant.TypeVector3:
		p := v.Vector3()
		return components("x", p.X, "y", p.Y, "z", p.Z)
	case variant.TypeVector4:
		p := v.Vector4()
		return components("x", p.X, "y", p.Y, "z", p.Z, "w", p.W)
	case variant.TypeQuaternion:
		q := v.Quaternion()
		return components("w", q.W, "x", q.X, "y", q.Y, "z", q.Z)
	case variant.TypeColor:
		c := v.Color()
		return components("r", c.R, "g", c.G, "b", c.B, "a", c.A)
	case variant.TypeIntRect:
		r := v.IntRect()
		return map[string]any{"left": int(r.Left), "top": int(r.Top), "right": int(r.Right), "bottom": int(r.Bottom)}
	case variant.TypeIntVector2:
		p := v.IntVector2()
		return map[string]any{"x": int(p.X), "y": int(p.Y)}
	case variant.TypeVoidPtr, variant.TypePtr:
		if p := v.VoidPtr(); p != nil {
			return uintptr(p)
		}
		return nil
	case variant.TypeResourceRef:
		ref := v.ResourceRef()
		return map[string]any{"type": ref.Type.String(), "name": ref.Name}
	case variant.TypeResourceRefList:
		list := v.ResourceRefList()
		return map[string]any{"type": list.Type.String(), "names": toAny(list.Names)}
	case variant.TypeVariantVector:
		vec := v.VariantVector()
		out := make([]any, len(vec))
		for i, e := range vec {
			out[i] = Native(e)
		}
		return out
	case variant.TypeVariantMap:
		m := v.VariantMap()
		out := make(map[string]any, len(m))
		for k, e := range m {
			out[attrdoc.KeyName(k)] = Native(e)
		}
		return out
	case variant.TypeStringVector:
		return toAny(v.StringVector())
	case variant.TypeMatrix3:
		m := v.Matrix3()
		return rows(m[:]...)
	case variant.TypeMatrix3x4:
		m := v.Matrix3x4()
		return rows4(m[:]...)
	case variant.TypeMatrix4:
		m := v.Matrix4()
		return rows4(m[:]...)
	default:
		return nil
	}
}

func components(kv ...any) map[string]any {
	out := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i].(string)] = float64(kv[i+1].(float32))
	}
	return out
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func rows(rs ...[3]float32) []any {
	out := make([]any, len(rs))
	for i, r := range rs {
		out[i] = []any{float64(r[0]), float64(r[1]), float64(r[2])}
	}
	return out
}

func rows4(rs ...[4]float32) []any {
	out := make([]any, len(rs))
	for i, r := range rs {
		out[i] = []any{float64(r[0]), float64(r[1]), float64(r[2]), float64(r[3])}
	}
	return out
}

// length returns the Euclidean length of a component map.
func length(params ...any) (any, error) {
	m, ok := params[0].(map[string]any)
	if !ok {
		return nil, oops.In("query").Code("QUERY_EVAL").Errorf("length expects a vector, got %T", params[0])
	}
	var sum float64
	for _, c := range m {
		f, ok := c.(float64)
		if !ok {
			if i, isInt := c.(int); isInt {
				f = float64(i)
			}
		}
		sum += f * f
	}
	return math.Sqrt(sum), nil
}

// hash returns the string hash of a name as stored by an Int attribute.
func hash(params ...any) (any, error) {
	s, ok := params[0].(string)
	if !ok {
		return nil, oops.In("query").Code("QUERY_EVAL").Errorf("hash expects a string, got %T", params[0])
	}
	return int(int32(strhash.Sum(s))), nil
}
