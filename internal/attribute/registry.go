// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

// Package attribute keeps the catalogue of known entity attributes: their
// expected variant type, default value and description.
package attribute

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/yumeengine/attrcore/pkg/geom"
	"github.com/yumeengine/attrcore/pkg/variant"
)

// Separator splits attribute names into segments for glob matching.
const Separator = '.'

var (
	// ErrInvalidName indicates the attribute name is empty.
	ErrInvalidName = oops.Code("ATTR_INVALID_NAME").Errorf("attribute name cannot be empty")
	// ErrDuplicate indicates an attribute with the same name already exists.
	ErrDuplicate = oops.Code("ATTR_DUPLICATE").Errorf("attribute already registered")
	// ErrNotFound indicates no attribute matched a name or prefix.
	ErrNotFound = oops.Code("ATTR_NOT_FOUND").Errorf("attribute not found")
	// ErrTypeMismatch indicates a value of the wrong variant type.
	ErrTypeMismatch = oops.Code("ATTR_TYPE_MISMATCH").Errorf("attribute type mismatch")
)

// AmbiguousError indicates multiple attributes match a prefix.
type AmbiguousError struct {
	Prefix  string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	sorted := slices.Clone(e.Matches)
	slices.Sort(sorted)
	return fmt.Sprintf("ambiguous attribute '%s' - matches: %s", e.Prefix, strings.Join(sorted, ", "))
}

// Definition describes one attribute.
type Definition struct {
	Name        string
	Type        variant.Type
	Default     variant.Variant
	Description string
}

// Registry manages attribute definitions.
// It is safe for concurrent use by multiple goroutines.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a definition. An empty Default is replaced by the zero
// value of Type; a non-empty Default must have type Type.
func (r *Registry) Register(def Definition) error {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return ErrInvalidName
	}
	if !def.Type.Valid() || def.Type == variant.TypeNone {
		return oops.Code("ATTR_INVALID_TYPE").With("attribute", def.Name).
			Errorf("attribute %q has no valid type", def.Name)
	}
	if def.Default.IsEmpty() {
		def.Default = Zero(def.Type)
	} else if def.Default.Type() != def.Type {
		return oops.With("attribute", def.Name).
			With("want", def.Type.Name()).
			With("got", def.Default.TypeName()).
			Wrap(ErrTypeMismatch)
	} else {
		def.Default = def.Default.Clone()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Name]; exists {
		return oops.With("attribute", def.Name).Wrap(ErrDuplicate)
	}
	if r.defs == nil {
		r.defs = make(map[string]Definition)
	}
	r.defs[def.Name] = def
	return nil
}

// MustRegister is Register for package initialization. It panics on error.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Lookup returns the definition for name. The returned Default is a copy.
func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[name]
	if ok {
		def.Default = def.Default.Clone()
	}
	return def, ok
}

// Resolve finds a definition by exact name or unique prefix.
// Returns *AmbiguousError if multiple attributes match and ErrNotFound if
// none do.
func (r *Registry) Resolve(nameOrPrefix string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if def, ok := r.defs[nameOrPrefix]; ok {
		def.Default = def.Default.Clone()
		return def, nil
	}

	var matches []string
	for name := range r.defs {
		if strings.HasPrefix(name, nameOrPrefix) {
			matches = append(matches, name)
		}
	}

	switch len(matches) {
	case 0:
		return Definition{}, oops.With("prefix", nameOrPrefix).Wrap(ErrNotFound)
	case 1:
		def := r.defs[matches[0]]
		def.Default = def.Default.Clone()
		return def, nil
	default:
		return Definition{}, &AmbiguousError{Prefix: nameOrPrefix, Matches: matches}
	}
}

// Match returns the sorted names matching a glob pattern. '*' stops at
// Separator and '**' crosses it.
func (r *Registry) Match(pattern string) ([]string, error) {
	g, err := glob.Compile(pattern, Separator)
	if err != nil {
		return nil, oops.Code("ATTR_INVALID_PATTERN").With("pattern", pattern).Wrap(err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for name := range r.defs {
		if g.Match(name) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out, nil
}

// Names returns every registered name in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.defs))
}

// Validate checks that v may be stored under name.
func (r *Registry) Validate(name string, v variant.Variant) error {
	def, ok := r.Lookup(name)
	if !ok {
		return oops.With("attribute", name).Wrap(ErrNotFound)
	}
	if v.Type() != def.Type {
		return oops.With("attribute", name).
			With("want", def.Type.Name()).
			With("got", v.TypeName()).
			Wrap(ErrTypeMismatch)
	}
	return nil
}

// ValidateAll validates every entry of attrs and reports the first failure
// in name order.
func (r *Registry) ValidateAll(attrs map[string]variant.Variant) error {
	for _, name := range slices.Sorted(maps.Keys(attrs)) {
		if err := r.Validate(name, attrs[name]); err != nil {
			return err
		}
	}
	return nil
}

// Default returns a copy of the default value of name, or an empty variant
// when name is unknown.
func (r *Registry) Default(name string) variant.Variant {
	def, ok := r.Lookup(name)
	if !ok {
		return variant.Variant{}
	}
	return def.Default
}

// Defaults returns a copy of every default value keyed by name.
func (r *Registry) Defaults() map[string]variant.Variant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]variant.Variant, len(r.defs))
	for name, def := range r.defs {
		out[name] = def.Default.Clone()
	}
	return out
}

// Zero returns the default-constructed variant of type t.
func Zero(t variant.Type) variant.Variant {
	switch t {
	case variant.TypeBuffer:
		return variant.FromBuffer(nil)
	case variant.TypeVoidPtr:
		return variant.FromVoidPtr(nil)
	case variant.TypeVariantVector:
		return variant.FromVariantVector(nil)
	case variant.TypeVariantMap:
		return variant.FromVariantMap(nil)
	case variant.TypeMatrix3:
		return variant.FromMatrix3(geom.Matrix3Identity)
	case variant.TypeMatrix3x4:
		return variant.FromMatrix3x4(geom.Matrix3x4Identity)
	case variant.TypeMatrix4:
		return variant.FromMatrix4(geom.Matrix4Identity)
	default:
		return variant.ParseType(t, "")
	}
}

// BuiltinRegistry returns a registry with the standard scene attributes.
func BuiltinRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(Definition{Name: "name", Type: variant.TypeString, Description: "Display name"})
	r.MustRegister(Definition{Name: "enabled", Type: variant.TypeBool, Default: variant.FromBool(true), Description: "Whether the entity updates"})
	r.MustRegister(Definition{Name: "transform.position", Type: variant.TypeVector3, Description: "Position in parent space"})
	r.MustRegister(Definition{Name: "transform.rotation", Type: variant.TypeQuaternion, Description: "Rotation in parent space"})
	r.MustRegister(Definition{Name: "transform.scale", Type: variant.TypeVector3, Default: variant.ParseType(variant.TypeVector3, "1 1 1"), Description: "Scale in parent space"})
	r.MustRegister(Definition{Name: "tags", Type: variant.TypeStringVector, Description: "Free-form labels"})
	return r
}

var shared = sync.OnceValue(BuiltinRegistry)

// SharedRegistry returns a shared builtin registry instance.
func SharedRegistry() *Registry {
	return shared()
}
