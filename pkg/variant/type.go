// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package variant

import (
	"strconv"
	"strings"
)

// Type identifies the payload kind a Variant holds.
type Type uint8

// Payload kinds. The numbering is stable and used by the binary encoding.
const (
	TypeNone Type = iota
	TypeInt
	TypeBool
	TypeFloat
	TypeVector2
	TypeVector3
	TypeVector4
	TypeQuaternion
	TypeColor
	TypeString
	TypeBuffer
	TypeVoidPtr
	TypeResourceRef
	TypeResourceRefList
	TypeVariantVector
	TypeVariantMap
	TypeIntRect
	TypeIntVector2
	TypePtr
	TypeMatrix3
	TypeMatrix3x4
	TypeMatrix4
	TypeDouble
	TypeStringVector

	// MaxTypes is the number of payload kinds. It is not a valid tag.
	MaxTypes
)

var typeNames = [MaxTypes]string{
	TypeNone:            "None",
	TypeInt:             "Int",
	TypeBool:            "Bool",
	TypeFloat:           "Float",
	TypeVector2:         "Vector2",
	TypeVector3:         "Vector3",
	TypeVector4:         "Vector4",
	TypeQuaternion:      "Quaternion",
	TypeColor:           "Color",
	TypeString:          "String",
	TypeBuffer:          "Buffer",
	TypeVoidPtr:         "VoidPtr",
	TypeResourceRef:     "ResourceRef",
	TypeResourceRefList: "ResourceRefList",
	TypeVariantVector:   "VariantVector",
	TypeVariantMap:      "VariantMap",
	TypeIntRect:         "IntRect",
	TypeIntVector2:      "IntVector2",
	TypePtr:             "Ptr",
	TypeMatrix3:         "Matrix3",
	TypeMatrix3x4:       "Matrix3x4",
	TypeMatrix4:         "Matrix4",
	TypeDouble:          "Double",
	TypeStringVector:    "StringVector",
}

// Types returns every valid tag in numeric order, TypeNone included.
func Types() []Type {
	out := make([]Type, MaxTypes)
	for i := range out {
		out[i] = Type(i)
	}
	return out
}

// Valid reports whether t is a known tag.
func (t Type) Valid() bool { return t < MaxTypes }

// Name returns the registry name of t.
func (t Type) Name() string {
	if !t.Valid() {
		return "Type(" + strconv.Itoa(int(t)) + ")"
	}
	return typeNames[t]
}

func (t Type) String() string { return t.Name() }

// TypeFromName returns the tag registered under name, ignoring case.
// Unknown names yield TypeNone.
func TypeFromName(name string) Type {
	name = strings.TrimSpace(name)
	for i, n := range typeNames {
		if strings.EqualFold(n, name) {
			return Type(i)
		}
	}
	return TypeNone
}

// inline reports whether the payload lives entirely in the slots.
func (t Type) inline() bool {
	switch t {
	case TypeInt, TypeBool, TypeFloat, TypeDouble,
		TypeVector2, TypeVector3, TypeVector4,
		TypeQuaternion, TypeColor, TypeIntRect, TypeIntVector2:
		return true
	default:
		return false
	}
}

// boxed reports whether the payload is held through an owned heap pointer.
func (t Type) boxed() bool {
	switch t {
	case TypeMatrix3, TypeMatrix3x4, TypeMatrix4:
		return true
	default:
		return false
	}
}
