// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

// Package attrdoc stores attribute variants as documents that round-trip
// through JSON, YAML and MessagePack.
//
// A variant becomes a Node: its type name plus either its text form,
// a list of child nodes, a map of child nodes or a list of strings.
package attrdoc

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/samber/oops"

	"github.com/yumeengine/attrcore/pkg/strhash"
	"github.com/yumeengine/attrcore/pkg/variant"
)

// ErrUnknownType is returned for nodes whose type name is not registered.
var ErrUnknownType = oops.Code("DOC_UNKNOWN_TYPE").Errorf("unknown variant type")

// Node is the serializable form of a variant.
type Node struct {
	Type    string          `json:"type" yaml:"type" msgpack:"type"`
	Value   string          `json:"value,omitempty" yaml:"value,omitempty" msgpack:"value,omitempty"`
	Items   []Node          `json:"items,omitempty" yaml:"items,omitempty" msgpack:"items,omitempty"`
	Entries map[string]Node `json:"entries,omitempty" yaml:"entries,omitempty" msgpack:"entries,omitempty"`
	Strings []string        `json:"strings,omitempty" yaml:"strings,omitempty" msgpack:"strings,omitempty"`
}

// Encode converts v to a Node. Pointer kinds keep only their type and
// decode as null pointers.
func Encode(v variant.Variant) Node {
	n := Node{Type: v.TypeName()}
	switch v.Type() {
	case variant.TypeNone, variant.TypeVoidPtr, variant.TypePtr:
	case variant.TypeBuffer:
		n.Value = base64.StdEncoding.EncodeToString(v.Buffer())
	case variant.TypeVariantVector:
		vec := v.VariantVector()
		n.Items = make([]Node, len(vec))
		for i, e := range vec {
			n.Items[i] = Encode(e)
		}
	case variant.TypeVariantMap:
		m := v.VariantMap()
		n.Entries = make(map[string]Node, len(m))
		for k, e := range m {
			n.Entries[KeyName(k)] = Encode(e)
		}
	case variant.TypeStringVector:
		n.Strings = append([]string{}, v.StringVector()...)
	default:
		n.Value = v.String()
	}
	return n
}

// Decode converts n back to a variant.
func Decode(n Node) (variant.Variant, error) {
	return decode(n, "$")
}

func decode(n Node, path string) (variant.Variant, error) {
	t := variant.TypeFromName(n.Type)
	if t == variant.TypeNone && n.Type != "" && !strings.EqualFold(strings.TrimSpace(n.Type), "None") {
		return variant.Variant{}, oops.Code("DOC_UNKNOWN_TYPE").
			With("type", n.Type).
			With("path", path).
			Wrap(ErrUnknownType)
	}

	var v variant.Variant
	switch t {
	case variant.TypeNone:
	case variant.TypeBuffer:
		data, err := base64.StdEncoding.DecodeString(n.Value)
		if err != nil {
			return v, oops.Code("DOC_INVALID_VALUE").With("type", n.Type).With("path", path).Wrap(err)
		}
		v.SetBuffer(data)
	case variant.TypeVariantVector:
		vec := make(variant.Vector, len(n.Items))
		for i, item := range n.Items {
			e, err := decode(item, path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return v, err
			}
			vec[i] = e
		}
		v.SetVariantVector(vec)
	case variant.TypeVariantMap:
		m := make(variant.Map, len(n.Entries))
		for key, entry := range n.Entries {
			e, err := decode(entry, path+"."+key)
			if err != nil {
				return v, err
			}
			h, err := ParseKey(key)
			if err != nil {
				return v, oops.With("path", path).Wrap(err)
			}
			m[h] = e
		}
		v.SetVariantMap(m)
	case variant.TypeStringVector:
		v.SetStringVector(n.Strings)
	default:
		v.SetText(t, n.Value)
	}
	return v, nil
}

// KeyName renders a map key as its registered name, or "#" plus eight hex
// digits when the name is unknown.
func KeyName(h strhash.Hash) string { return h.Label() }

// ParseKey is the inverse of KeyName. Names are hashed and registered.
func ParseKey(key string) (strhash.Hash, error) {
	if key == "" {
		return 0, oops.Code("DOC_INVALID_KEY").Errorf("empty map key")
	}
	h, ok := strhash.ParseLabel(key)
	if !ok {
		return 0, oops.Code("DOC_INVALID_KEY").With("key", key).Errorf("malformed hex map key")
	}
	return h, nil
}
