// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package variant

import (
	"unsafe"

	"github.com/yumeengine/attrcore/pkg/geom"
	"github.com/yumeengine/attrcore/pkg/refcount"
	"github.com/yumeengine/attrcore/pkg/strhash"
)

// Get extracts a T from v with the same rules as the named getter for T:
// Get[float32] behaves like Float, Get[geom.Matrix4] like Matrix4, and so
// on. Get[Variant] returns a deep copy. Unsupported T yields its zero value.
func Get[T any](v Variant) T {
	var out T
	switch p := any(&out).(type) {
	case *int:
		*p = int(v.Int())
	case *int32:
		*p = v.Int()
	case *int64:
		*p = int64(v.Int())
	case *uint:
		*p = uint(v.UInt())
	case *uint32:
		*p = v.UInt()
	case *strhash.Hash:
		*p = v.StringHash()
	case *bool:
		*p = v.Bool()
	case *float32:
		*p = v.Float()
	case *float64:
		*p = v.Double()
	case *geom.Vector2:
		*p = v.Vector2()
	case *geom.Vector3:
		*p = v.Vector3()
	case *geom.Vector4:
		*p = v.Vector4()
	case *geom.Quaternion:
		*p = v.Quaternion()
	case *geom.Color:
		*p = v.Color()
	case *geom.IntRect:
		*p = v.IntRect()
	case *geom.IntVector2:
		*p = v.IntVector2()
	case *string:
		*p = v.StringValue()
	case *[]byte:
		*p = v.Buffer()
	case *unsafe.Pointer:
		*p = v.VoidPtr()
	case *ResourceRef:
		*p = v.ResourceRef()
	case *ResourceRefList:
		*p = v.ResourceRefList()
	case *Vector:
		*p = v.VariantVector()
	case *Map:
		*p = v.VariantMap()
	case *StringVector:
		*p = v.StringVector()
	case *refcount.Object:
		*p = v.Ptr()
	case *refcount.WeakRef:
		*p = v.WeakRef()
	case *geom.Matrix3:
		*p = v.Matrix3()
	case *geom.Matrix3x4:
		*p = v.Matrix3x4()
	case *geom.Matrix4:
		*p = v.Matrix4()
	case *Variant:
		*p = v.Clone()
	}
	return out
}

// Lookup is Get with an explicit result: ok is true only when v's tag is
// the tag T maps to. The numeric conversions of Get do not apply.
func Lookup[T any](v Variant) (T, bool) {
	t := TypeOf[T]()
	if t == TypeNone || v.typ != t {
		var zero T
		return zero, false
	}
	return Get[T](v), true
}

// TypeOf returns the tag that values of T are stored under, or TypeNone
// when T is not a payload type.
func TypeOf[T any]() Type {
	var zero T
	switch any(&zero).(type) {
	case *int, *int32, *int64, *uint, *uint32, *strhash.Hash:
		return TypeInt
	case *bool:
		return TypeBool
	case *float32:
		return TypeFloat
	case *float64:
		return TypeDouble
	case *geom.Vector2:
		return TypeVector2
	case *geom.Vector3:
		return TypeVector3
	case *geom.Vector4:
		return TypeVector4
	case *geom.Quaternion:
		return TypeQuaternion
	case *geom.Color:
		return TypeColor
	case *geom.IntRect:
		return TypeIntRect
	case *geom.IntVector2:
		return TypeIntVector2
	case *string:
		return TypeString
	case *[]byte:
		return TypeBuffer
	case *unsafe.Pointer:
		return TypeVoidPtr
	case *ResourceRef:
		return TypeResourceRef
	case *ResourceRefList:
		return TypeResourceRefList
	case *Vector:
		return TypeVariantVector
	case *Map:
		return TypeVariantMap
	case *StringVector:
		return TypeStringVector
	case *refcount.Object, *refcount.WeakRef:
		return TypePtr
	case *geom.Matrix3:
		return TypeMatrix3
	case *geom.Matrix3x4:
		return TypeMatrix3x4
	case *geom.Matrix4:
		return TypeMatrix4
	default:
		return TypeNone
	}
}
