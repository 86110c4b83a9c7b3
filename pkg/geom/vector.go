// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

// Package geom provides the fixed-layout math value types carried by
// variants: vectors, quaternion, color, integer rect and matrices.
//
// All types are plain comparable values. Text forms use space-separated
// components in declaration order; parsing also accepts commas.
package geom

// Vector2 is a two-component float vector.
type Vector2 struct{ X, Y float32 }

// Vector3 is a three-component float vector.
type Vector3 struct{ X, Y, Z float32 }

// Vector4 is a four-component float vector.
type Vector4 struct{ X, Y, Z, W float32 }

// IntVector2 is a two-component integer vector.
type IntVector2 struct{ X, Y int32 }

// Well-known vector values.
var (
	Vector2Zero    = Vector2{}
	Vector3Zero    = Vector3{}
	Vector4Zero    = Vector4{}
	IntVector2Zero = IntVector2{}
)

func (v Vector2) String() string { return formatFloats(v.X, v.Y) }

func (v Vector3) String() string { return formatFloats(v.X, v.Y, v.Z) }

func (v Vector4) String() string { return formatFloats(v.X, v.Y, v.Z, v.W) }

func (v IntVector2) String() string { return formatInts(v.X, v.Y) }

// ParseVector2 parses "x y". Fewer than two components yields Vector2Zero.
func ParseVector2(s string) Vector2 {
	f, ok := parseFloats(s, 2)
	if !ok {
		return Vector2Zero
	}
	return Vector2{f[0], f[1]}
}

// ParseVector3 parses "x y z". Fewer than three components yields Vector3Zero.
func ParseVector3(s string) Vector3 {
	f, ok := parseFloats(s, 3)
	if !ok {
		return Vector3Zero
	}
	return Vector3{f[0], f[1], f[2]}
}

// ParseVector4 parses "x y z w". Fewer than four components yields Vector4Zero.
func ParseVector4(s string) Vector4 {
	f, ok := parseFloats(s, 4)
	if !ok {
		return Vector4Zero
	}
	return Vector4{f[0], f[1], f[2], f[3]}
}

// ParseIntVector2 parses "x y". Fewer than two components yields IntVector2Zero.
func ParseIntVector2(s string) IntVector2 {
	n, ok := parseInts(s, 2)
	if !ok {
		return IntVector2Zero
	}
	return IntVector2{n[0], n[1]}
}
