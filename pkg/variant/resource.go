// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package variant

import (
	"slices"
	"strings"

	"github.com/yumeengine/attrcore/pkg/strhash"
)

// ResourceRef names an externally managed resource by type and name.
type ResourceRef struct {
	Type strhash.Hash
	Name string
}

// NewResourceRef returns a reference to the resource called name whose
// type is registered as typeName.
func NewResourceRef(typeName, name string) ResourceRef {
	return ResourceRef{Type: strhash.Of(typeName), Name: name}
}

// String renders "<type>;<name>".
func (r ResourceRef) String() string {
	return typeField(r.Type) + ";" + r.Name
}

// ParseResourceRef parses "<type>;<name>". A type written as "#" plus hex
// is a raw hash. Input without a separator yields the zero reference.
func ParseResourceRef(s string) ResourceRef {
	typ, name, ok := strings.Cut(s, ";")
	if !ok {
		return ResourceRef{}
	}
	return ResourceRef{Type: parseTypeField(typ), Name: name}
}

// ResourceRefList names several resources of one type.
type ResourceRefList struct {
	Type  strhash.Hash
	Names []string
}

// NewResourceRefList returns a list of resources whose type is registered
// as typeName.
func NewResourceRefList(typeName string, names ...string) ResourceRefList {
	return ResourceRefList{Type: strhash.Of(typeName), Names: slices.Clone(names)}
}

// Equal reports whether both lists have the same type and names in order.
func (l ResourceRefList) Equal(o ResourceRefList) bool {
	return l.Type == o.Type && slices.Equal(l.Names, o.Names)
}

// Clone returns a copy that shares no storage with l.
func (l ResourceRefList) Clone() ResourceRefList {
	return ResourceRefList{Type: l.Type, Names: slices.Clone(l.Names)}
}

// String renders "<type>;<name1>;<name2>...".
func (l ResourceRefList) String() string {
	if len(l.Names) == 0 {
		return typeField(l.Type)
	}
	return typeField(l.Type) + ";" + strings.Join(l.Names, ";")
}

// ParseResourceRefList parses "<type>;<name1>;<name2>...".
func ParseResourceRefList(s string) ResourceRefList {
	fields := strings.Split(s, ";")
	l := ResourceRefList{Type: parseTypeField(fields[0])}
	if len(fields) > 1 {
		l.Names = fields[1:]
	}
	return l
}

// typeField renders a resource type hash: empty for zero, the registered
// name, or "#" plus hex for an unknown hash.
func typeField(h strhash.Hash) string {
	if h == strhash.Zero {
		return ""
	}
	return h.Label()
}

// parseTypeField reverses typeField. Malformed "#" hex is taken as a name.
func parseTypeField(s string) strhash.Hash {
	s = strings.TrimSpace(s)
	if h, ok := strhash.ParseLabel(s); ok {
		return h
	}
	return strhash.Of(s)
}
