// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package variant

import (
	"bytes"
	"slices"
	"unsafe"

	"github.com/yumeengine/attrcore/pkg/geom"
	"github.com/yumeengine/attrcore/pkg/refcount"
	"github.com/yumeengine/attrcore/pkg/strhash"
)

// Int returns the int payload. Float and double payloads are truncated;
// other kinds yield 0.
func (v Variant) Int() int32 {
	switch v.typ {
	case TypeInt:
		return v.st.int(0)
	case TypeFloat:
		return int32(v.st.float(0))
	case TypeDouble:
		return int32(v.st.double())
	default:
		return 0
	}
}

// UInt returns the int payload reinterpreted as unsigned. Float and double
// payloads are truncated; other kinds yield 0.
func (v Variant) UInt() uint32 {
	switch v.typ {
	case TypeInt:
		return v.st.slots[0]
	case TypeFloat:
		return uint32(int64(v.st.float(0)))
	case TypeDouble:
		return uint32(int64(v.st.double()))
	default:
		return 0
	}
}

// StringHash returns UInt as a hashed identifier.
func (v Variant) StringHash() strhash.Hash { return strhash.Hash(v.UInt()) }

// Bool returns the bool payload or false.
func (v Variant) Bool() bool { return v.typ == TypeBool && v.st.slots[0] != 0 }

// Float returns the float payload. Int and double payloads are converted;
// other kinds yield 0.
func (v Variant) Float() float32 {
	switch v.typ {
	case TypeFloat:
		return v.st.float(0)
	case TypeDouble:
		return float32(v.st.double())
	case TypeInt:
		return float32(v.st.int(0))
	default:
		return 0
	}
}

// Double returns the double payload. Int and float payloads are converted;
// other kinds yield 0.
func (v Variant) Double() float64 {
	switch v.typ {
	case TypeDouble:
		return v.st.double()
	case TypeFloat:
		return float64(v.st.float(0))
	case TypeInt:
		return float64(v.st.int(0))
	default:
		return 0
	}
}

// Vector2 returns the Vector2 payload or the zero vector.
func (v Variant) Vector2() geom.Vector2 {
	if v.typ != TypeVector2 {
		return geom.Vector2Zero
	}
	return geom.Vector2{X: v.st.float(0), Y: v.st.float(1)}
}

// Vector3 returns the Vector3 payload or the zero vector.
func (v Variant) Vector3() geom.Vector3 {
	if v.typ != TypeVector3 {
		return geom.Vector3Zero
	}
	return geom.Vector3{X: v.st.float(0), Y: v.st.float(1), Z: v.st.float(2)}
}

// Vector4 returns the Vector4 payload or the zero vector.
func (v Variant) Vector4() geom.Vector4 {
	if v.typ != TypeVector4 {
		return geom.Vector4Zero
	}
	return geom.Vector4{X: v.st.float(0), Y: v.st.float(1), Z: v.st.float(2), W: v.st.float(3)}
}

// Quaternion returns the Quaternion payload or identity.
func (v Variant) Quaternion() geom.Quaternion {
	if v.typ != TypeQuaternion {
		return geom.QuaternionIdentity
	}
	return geom.Quaternion{W: v.st.float(0), X: v.st.float(1), Y: v.st.float(2), Z: v.st.float(3)}
}

// Color returns the Color payload or white.
func (v Variant) Color() geom.Color {
	if v.typ != TypeColor {
		return geom.ColorWhite
	}
	return geom.Color{R: v.st.float(0), G: v.st.float(1), B: v.st.float(2), A: v.st.float(3)}
}

// IntRect returns the IntRect payload or the zero rect.
func (v Variant) IntRect() geom.IntRect {
	if v.typ != TypeIntRect {
		return geom.IntRectZero
	}
	return geom.IntRect{Left: v.st.int(0), Top: v.st.int(1), Right: v.st.int(2), Bottom: v.st.int(3)}
}

// IntVector2 returns the IntVector2 payload or the zero vector.
func (v Variant) IntVector2() geom.IntVector2 {
	if v.typ != TypeIntVector2 {
		return geom.IntVector2Zero
	}
	return geom.IntVector2{X: v.st.int(0), Y: v.st.int(1)}
}

// StringValue returns the String payload or "". Use String for the text
// form of any kind.
func (v Variant) StringValue() string {
	if v.typ != TypeString {
		return ""
	}
	return v.st.obj.(string)
}

// Buffer returns the Buffer payload or nil. The slice may be shared with
// copies of v; mutate through BufferPtr.
func (v Variant) Buffer() []byte {
	if v.typ != TypeBuffer {
		return nil
	}
	return *v.st.obj.(*[]byte)
}

// VoidPtr returns the VoidPtr payload. A Ptr payload yields the address of
// its target, or nil once the target is gone.
func (v Variant) VoidPtr() unsafe.Pointer {
	switch v.typ {
	case TypeVoidPtr:
		return v.st.obj.(unsafe.Pointer)
	case TypePtr:
		obj := v.st.obj.(refcount.WeakRef).Get()
		if obj == nil {
			return nil
		}
		return refcount.Pointer(obj)
	default:
		return nil
	}
}

// ResourceRef returns the ResourceRef payload or the zero reference.
func (v Variant) ResourceRef() ResourceRef {
	if v.typ != TypeResourceRef {
		return ResourceRef{}
	}
	return v.st.obj.(ResourceRef)
}

// ResourceRefList returns the ResourceRefList payload or the zero list.
// The Names slice is live storage.
func (v Variant) ResourceRefList() ResourceRefList {
	if v.typ != TypeResourceRefList {
		return ResourceRefList{}
	}
	return *v.st.obj.(*ResourceRefList)
}

// VariantVector returns the VariantVector payload or nil. The slice may be
// shared with copies of v; mutate through VariantVectorPtr.
func (v Variant) VariantVector() Vector {
	if v.typ != TypeVariantVector {
		return nil
	}
	return *v.st.obj.(*Vector)
}

// StringVector returns the StringVector payload or nil. The slice may be
// shared with copies of v; mutate through StringVectorPtr.
func (v Variant) StringVector() StringVector {
	if v.typ != TypeStringVector {
		return nil
	}
	return *v.st.obj.(*StringVector)
}

// VariantMap returns the VariantMap payload or nil. The map may be shared
// with copies of v; mutate through VariantMapPtr.
func (v Variant) VariantMap() Map {
	if v.typ != TypeVariantMap {
		return nil
	}
	return *v.st.obj.(*Map)
}

// Ptr returns the live target of a Ptr payload, or nil. A VoidPtr payload
// yields nil because its target cannot be verified as reference counted.
func (v Variant) Ptr() refcount.Object {
	if v.typ != TypePtr {
		return nil
	}
	return v.st.obj.(refcount.WeakRef).Get()
}

// WeakRef returns the weak reference of a Ptr payload, or a null reference.
func (v Variant) WeakRef() refcount.WeakRef {
	if v.typ != TypePtr {
		return refcount.WeakRef{}
	}
	return v.st.obj.(refcount.WeakRef)
}

// Matrix3 returns the Matrix3 payload or identity.
func (v Variant) Matrix3() geom.Matrix3 {
	if v.typ != TypeMatrix3 {
		return geom.Matrix3Identity
	}
	return *v.st.obj.(*geom.Matrix3)
}

// Matrix3x4 returns the Matrix3x4 payload or identity.
func (v Variant) Matrix3x4() geom.Matrix3x4 {
	if v.typ != TypeMatrix3x4 {
		return geom.Matrix3x4Identity
	}
	return *v.st.obj.(*geom.Matrix3x4)
}

// Matrix4 returns the Matrix4 payload or identity.
func (v Variant) Matrix4() geom.Matrix4 {
	if v.typ != TypeMatrix4 {
		return geom.Matrix4Identity
	}
	return *v.st.obj.(*geom.Matrix4)
}

// BufferPtr returns the Buffer payload for in-place mutation, or nil on a
// kind mismatch. The first call after v was copied gives v its own box, so
// writes through the result never reach the copy.
func (v *Variant) BufferPtr() *[]byte {
	if v.typ != TypeBuffer {
		return nil
	}
	v.detach()
	return v.st.obj.(*[]byte)
}

// VariantVectorPtr returns the VariantVector payload for in-place
// mutation, or nil.
func (v *Variant) VariantVectorPtr() *Vector {
	if v.typ != TypeVariantVector {
		return nil
	}
	v.detach()
	return v.st.obj.(*Vector)
}

// StringVectorPtr returns the StringVector payload for in-place mutation,
// or nil.
func (v *Variant) StringVectorPtr() *StringVector {
	if v.typ != TypeStringVector {
		return nil
	}
	v.detach()
	return v.st.obj.(*StringVector)
}

// VariantMapPtr returns the VariantMap payload for in-place mutation, or nil.
func (v *Variant) VariantMapPtr() *Map {
	if v.typ != TypeVariantMap {
		return nil
	}
	v.detach()
	return v.st.obj.(*Map)
}

// detach replaces a container box that v does not own with a deep copy
// owned by v.
func (v *Variant) detach() {
	if v.st.owner == v {
		return
	}
	switch box := v.st.obj.(type) {
	case *[]byte:
		c := bytes.Clone(*box)
		if c == nil {
			c = []byte{}
		}
		v.st.obj = &c
	case *Vector:
		c := box.Clone()
		v.st.obj = &c
	case *StringVector:
		c := slices.Clone(*box)
		v.st.obj = &c
	case *Map:
		c := box.Clone()
		if c == nil {
			c = Map{}
		}
		v.st.obj = &c
	}
	v.st.owner = v
}
