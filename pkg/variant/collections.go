// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package variant

import (
	"maps"
	"slices"
	"strings"

	"github.com/yumeengine/attrcore/pkg/strhash"
)

// Vector is an ordered sequence of variants.
type Vector []Variant

// Map associates hashed identifiers with variants.
type Map map[strhash.Hash]Variant

// StringVector is an ordered sequence of strings.
type StringVector []string

// Equal reports whether both vectors hold equal variants in order.
func (vec Vector) Equal(o Vector) bool {
	return slices.EqualFunc(vec, o, Variant.Equal)
}

// Clone deep-copies every element.
func (vec Vector) Clone() Vector {
	if vec == nil {
		return nil
	}
	out := make(Vector, len(vec))
	for i, v := range vec {
		out[i] = v.Clone()
	}
	return out
}

// Equal reports whether both maps hold the same keys with equal values.
func (m Map) Equal(o Map) bool {
	if len(m) != len(o) {
		return false
	}
	for k, v := range m {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Clone deep-copies every value.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}

// Get returns the value stored under the hash of name, or the empty Variant.
func (m Map) Get(name string) Variant {
	return m[strhash.Sum(name)]
}

// Set stores v under the hash of name.
func (m Map) Set(name string, v Variant) {
	m[strhash.Of(name)] = v
}

// Keys returns the keys sorted by hash value.
func (m Map) Keys() []strhash.Hash {
	return slices.Sorted(maps.Keys(m))
}

// Equal reports whether both vectors hold the same strings in order.
func (sv StringVector) Equal(o StringVector) bool {
	return slices.Equal(sv, o)
}

// String joins the elements with ";". The text form is lossy: a vector
// holding one empty string renders "" and parses back empty, and elements
// containing ";" split on parse. Documents and the binary stream keep
// every element.
func (sv StringVector) String() string {
	return strings.Join(sv, ";")
}

// ParseStringVector splits s on ";". The empty string yields an empty vector.
func ParseStringVector(s string) StringVector {
	if s == "" {
		return StringVector{}
	}
	return strings.Split(s, ";")
}
