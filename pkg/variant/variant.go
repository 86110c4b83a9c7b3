// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

// Package variant implements Variant, a tagged value container for
// heterogeneous attribute data: numbers, math types, strings, buffers,
// resource references, weak object pointers and nested collections.
//
// The zero Variant is empty (TypeNone). Every accessor is total: reading
// a payload of the wrong kind returns a documented default instead of
// failing.
//
// Setters never write through a previous payload. The pointer getters
// (BufferPtr, VariantVectorPtr, StringVectorPtr, VariantMapPtr) give the
// receiver its own container the first time they are called on it, so a
// plain struct copy taken before that call never observes writes made
// through either side. Once a Variant has handed out a pointer, copy it
// with Clone.
package variant

import (
	"bytes"
	"slices"
	"unsafe"

	"github.com/yumeengine/attrcore/pkg/geom"
	"github.com/yumeengine/attrcore/pkg/refcount"
	"github.com/yumeengine/attrcore/pkg/strhash"
)

// Variant holds one payload of the kind named by its Type.
type Variant struct {
	typ Type
	st  storage
}

// Empty is the Variant holding nothing.
var Empty Variant

// Type returns the payload kind.
func (v Variant) Type() Type { return v.typ }

// TypeName returns the registry name of the payload kind.
func (v Variant) TypeName() string { return v.typ.Name() }

// IsEmpty reports whether v holds nothing.
func (v Variant) IsEmpty() bool { return v.typ == TypeNone }

// Clear releases the payload and leaves v empty.
func (v *Variant) Clear() { v.setType(TypeNone) }

// setType moves v to tag t. The previous payload is released unless it is
// inline and t is the same tag. Non-inline payloads are always replaced by
// a freshly constructed default so that no write reaches storage still
// referenced by a copy.
func (v *Variant) setType(t Type) {
	if v.typ == t && t.inline() {
		return
	}
	v.st = storage{}
	v.typ = t

	switch t {
	case TypeString:
		v.st.obj = ""
	case TypeBuffer:
		v.st.obj = new([]byte)
	case TypeVoidPtr:
		v.st.obj = unsafe.Pointer(nil)
	case TypeResourceRef:
		v.st.obj = ResourceRef{}
	case TypeResourceRefList:
		v.st.obj = &ResourceRefList{}
	case TypeVariantVector:
		v.st.obj = &Vector{}
	case TypeVariantMap:
		v.st.obj = &Map{}
	case TypeStringVector:
		v.st.obj = &StringVector{}
	case TypePtr:
		v.st.obj = refcount.WeakRef{}
	case TypeMatrix3:
		m := geom.Matrix3Identity
		v.st.obj = &m
	case TypeMatrix3x4:
		m := geom.Matrix3x4Identity
		v.st.obj = &m
	case TypeMatrix4:
		m := geom.Matrix4Identity
		v.st.obj = &m
	}
}

// SetInt stores an int.
func (v *Variant) SetInt(n int32) {
	v.setType(TypeInt)
	v.st.setInt(0, n)
}

// SetUInt stores an unsigned int under the int tag.
func (v *Variant) SetUInt(n uint32) { v.SetInt(int32(n)) }

// SetStringHash stores a hashed identifier under the int tag.
func (v *Variant) SetStringHash(h strhash.Hash) { v.SetInt(int32(h)) }

// SetBool stores a bool.
func (v *Variant) SetBool(b bool) {
	v.setType(TypeBool)
	v.st.slots[0] = 0
	if b {
		v.st.slots[0] = 1
	}
}

// SetFloat stores a float.
func (v *Variant) SetFloat(f float32) {
	v.setType(TypeFloat)
	v.st.setFloat(0, f)
}

// SetDouble stores a double across two slots.
func (v *Variant) SetDouble(f float64) {
	v.setType(TypeDouble)
	v.st.setDouble(f)
}

// SetVector2 stores a Vector2.
func (v *Variant) SetVector2(x geom.Vector2) {
	v.setType(TypeVector2)
	v.st.setFloats(x.X, x.Y)
}

// SetVector3 stores a Vector3.
func (v *Variant) SetVector3(x geom.Vector3) {
	v.setType(TypeVector3)
	v.st.setFloats(x.X, x.Y, x.Z)
}

// SetVector4 stores a Vector4.
func (v *Variant) SetVector4(x geom.Vector4) {
	v.setType(TypeVector4)
	v.st.setFloats(x.X, x.Y, x.Z, x.W)
}

// SetQuaternion stores a Quaternion.
func (v *Variant) SetQuaternion(q geom.Quaternion) {
	v.setType(TypeQuaternion)
	v.st.setFloats(q.W, q.X, q.Y, q.Z)
}

// SetColor stores a Color.
func (v *Variant) SetColor(c geom.Color) {
	v.setType(TypeColor)
	v.st.setFloats(c.R, c.G, c.B, c.A)
}

// SetIntRect stores an IntRect.
func (v *Variant) SetIntRect(r geom.IntRect) {
	v.setType(TypeIntRect)
	v.st.setInt(0, r.Left)
	v.st.setInt(1, r.Top)
	v.st.setInt(2, r.Right)
	v.st.setInt(3, r.Bottom)
}

// SetIntVector2 stores an IntVector2.
func (v *Variant) SetIntVector2(x geom.IntVector2) {
	v.setType(TypeIntVector2)
	v.st.setInt(0, x.X)
	v.st.setInt(1, x.Y)
}

// SetString stores a string.
func (v *Variant) SetString(s string) {
	v.setType(TypeString)
	v.st.obj = s
}

// SetBuffer stores a copy of data.
func (v *Variant) SetBuffer(data []byte) {
	v.setType(TypeBuffer)
	buf := bytes.Clone(data)
	if buf == nil {
		buf = []byte{}
	}
	*v.st.obj.(*[]byte) = buf
}

// SetVoidPtr stores a raw address. The Variant does not own the target.
func (v *Variant) SetVoidPtr(p unsafe.Pointer) {
	v.setType(TypeVoidPtr)
	v.st.obj = p
}

// SetResourceRef stores a resource reference.
func (v *Variant) SetResourceRef(r ResourceRef) {
	v.setType(TypeResourceRef)
	v.st.obj = r
}

// SetResourceRefList stores a copy of a resource reference list.
func (v *Variant) SetResourceRefList(l ResourceRefList) {
	v.setType(TypeResourceRefList)
	*v.st.obj.(*ResourceRefList) = l.Clone()
}

// SetVariantVector stores a deep copy of vec.
func (v *Variant) SetVariantVector(vec Vector) {
	v.setType(TypeVariantVector)
	*v.st.obj.(*Vector) = vec.Clone()
}

// SetVariantMap stores a deep copy of m.
func (v *Variant) SetVariantMap(m Map) {
	v.setType(TypeVariantMap)
	c := m.Clone()
	if c == nil {
		c = Map{}
	}
	*v.st.obj.(*Map) = c
}

// SetStringVector stores a copy of sv.
func (v *Variant) SetStringVector(sv StringVector) {
	v.setType(TypeStringVector)
	*v.st.obj.(*StringVector) = slices.Clone(sv)
}

// SetPtr stores a weak reference to obj. A nil obj stores a null reference.
func (v *Variant) SetPtr(obj refcount.Object) {
	v.SetWeakRef(refcount.NewWeak(obj))
}

// SetWeakRef stores a weak reference.
func (v *Variant) SetWeakRef(w refcount.WeakRef) {
	v.setType(TypePtr)
	v.st.obj = w
}

// SetMatrix3 stores a Matrix3 in an owned box.
func (v *Variant) SetMatrix3(m geom.Matrix3) {
	v.setType(TypeMatrix3)
	*v.st.obj.(*geom.Matrix3) = m
}

// SetMatrix3x4 stores a Matrix3x4 in an owned box.
func (v *Variant) SetMatrix3x4(m geom.Matrix3x4) {
	v.setType(TypeMatrix3x4)
	*v.st.obj.(*geom.Matrix3x4) = m
}

// SetMatrix4 stores a Matrix4 in an owned box.
func (v *Variant) SetMatrix4(m geom.Matrix4) {
	v.setType(TypeMatrix4)
	*v.st.obj.(*geom.Matrix4) = m
}

// Assign replaces v with a deep copy of src. Assigning v to itself is safe.
func (v *Variant) Assign(src Variant) {
	c := src.Clone()
	v.setType(TypeNone)
	*v = c
}

// Clone returns a deep copy of v sharing no mutable storage with it.
func (v Variant) Clone() Variant {
	var out Variant
	switch v.typ {
	case TypeBuffer:
		out.SetBuffer(v.Buffer())
	case TypeResourceRefList:
		out.SetResourceRefList(v.ResourceRefList())
	case TypeVariantVector:
		out.SetVariantVector(v.VariantVector())
	case TypeVariantMap:
		out.SetVariantMap(v.VariantMap())
	case TypeStringVector:
		out.SetStringVector(v.StringVector())
	case TypeMatrix3:
		out.SetMatrix3(v.Matrix3())
	case TypeMatrix3x4:
		out.SetMatrix3x4(v.Matrix3x4())
	case TypeMatrix4:
		out.SetMatrix4(v.Matrix4())
	default:
		out = v
	}
	return out
}

// FromInt returns an int Variant.
func FromInt(n int32) (v Variant) {
	v.SetInt(n)
	return v
}

// FromUInt returns an int Variant holding the bits of n.
func FromUInt(n uint32) (v Variant) {
	v.SetUInt(n)
	return v
}

// FromStringHash returns an int Variant holding h.
func FromStringHash(h strhash.Hash) (v Variant) {
	v.SetStringHash(h)
	return v
}

// FromBool returns a bool Variant.
func FromBool(b bool) (v Variant) {
	v.SetBool(b)
	return v
}

// FromFloat returns a float Variant.
func FromFloat(f float32) (v Variant) {
	v.SetFloat(f)
	return v
}

// FromDouble returns a double Variant.
func FromDouble(f float64) (v Variant) {
	v.SetDouble(f)
	return v
}

// FromVector2 returns a Vector2 Variant.
func FromVector2(x geom.Vector2) (v Variant) {
	v.SetVector2(x)
	return v
}

// FromVector3 returns a Vector3 Variant.
func FromVector3(x geom.Vector3) (v Variant) {
	v.SetVector3(x)
	return v
}

// FromVector4 returns a Vector4 Variant.
func FromVector4(x geom.Vector4) (v Variant) {
	v.SetVector4(x)
	return v
}

// FromQuaternion returns a Quaternion Variant.
func FromQuaternion(q geom.Quaternion) (v Variant) {
	v.SetQuaternion(q)
	return v
}

// FromColor returns a Color Variant.
func FromColor(c geom.Color) (v Variant) {
	v.SetColor(c)
	return v
}

// FromIntRect returns an IntRect Variant.
func FromIntRect(r geom.IntRect) (v Variant) {
	v.SetIntRect(r)
	return v
}

// FromIntVector2 returns an IntVector2 Variant.
func FromIntVector2(x geom.IntVector2) (v Variant) {
	v.SetIntVector2(x)
	return v
}

// FromString returns a String Variant.
func FromString(s string) (v Variant) {
	v.SetString(s)
	return v
}

// FromBuffer returns a Buffer Variant holding a copy of data.
func FromBuffer(data []byte) (v Variant) {
	v.SetBuffer(data)
	return v
}

// FromVoidPtr returns a VoidPtr Variant.
func FromVoidPtr(p unsafe.Pointer) (v Variant) {
	v.SetVoidPtr(p)
	return v
}

// FromResourceRef returns a ResourceRef Variant.
func FromResourceRef(r ResourceRef) (v Variant) {
	v.SetResourceRef(r)
	return v
}

// FromResourceRefList returns a ResourceRefList Variant.
func FromResourceRefList(l ResourceRefList) (v Variant) {
	v.SetResourceRefList(l)
	return v
}

// FromVariantVector returns a VariantVector Variant holding a deep copy of vec.
func FromVariantVector(vec Vector) (v Variant) {
	v.SetVariantVector(vec)
	return v
}

// FromVariantMap returns a VariantMap Variant holding a deep copy of m.
func FromVariantMap(m Map) (v Variant) {
	v.SetVariantMap(m)
	return v
}

// FromStringVector returns a StringVector Variant.
func FromStringVector(sv StringVector) (v Variant) {
	v.SetStringVector(sv)
	return v
}

// FromPtr returns a Ptr Variant weakly referencing obj.
func FromPtr(obj refcount.Object) (v Variant) {
	v.SetPtr(obj)
	return v
}

// FromWeakRef returns a Ptr Variant holding w.
func FromWeakRef(w refcount.WeakRef) (v Variant) {
	v.SetWeakRef(w)
	return v
}

// FromMatrix3 returns a Matrix3 Variant.
func FromMatrix3(m geom.Matrix3) (v Variant) {
	v.SetMatrix3(m)
	return v
}

// FromMatrix3x4 returns a Matrix3x4 Variant.
func FromMatrix3x4(m geom.Matrix3x4) (v Variant) {
	v.SetMatrix3x4(m)
	return v
}

// FromMatrix4 returns a Matrix4 Variant.
func FromMatrix4(m geom.Matrix4) (v Variant) {
	v.SetMatrix4(m)
	return v
}

// Of converts a Go value to a Variant. Go integer types normalize to the
// int tag and reference-counted objects to the Ptr tag. A Variant is
// cloned. Unsupported values, nil included, yield the empty Variant.
func Of(x any) Variant {
	switch x := x.(type) {
	case nil:
		return Variant{}
	case Variant:
		return x.Clone()
	case *Variant:
		if x == nil {
			return Variant{}
		}
		return x.Clone()
	case int:
		return FromInt(int32(x))
	case int32:
		return FromInt(x)
	case int64:
		return FromInt(int32(x))
	case uint:
		return FromUInt(uint32(x))
	case uint32:
		return FromUInt(x)
	case uint64:
		return FromUInt(uint32(x))
	case strhash.Hash:
		return FromStringHash(x)
	case bool:
		return FromBool(x)
	case float32:
		return FromFloat(x)
	case float64:
		return FromDouble(x)
	case geom.Vector2:
		return FromVector2(x)
	case geom.Vector3:
		return FromVector3(x)
	case geom.Vector4:
		return FromVector4(x)
	case geom.Quaternion:
		return FromQuaternion(x)
	case geom.Color:
		return FromColor(x)
	case geom.IntRect:
		return FromIntRect(x)
	case geom.IntVector2:
		return FromIntVector2(x)
	case string:
		return FromString(x)
	case []byte:
		return FromBuffer(x)
	case unsafe.Pointer:
		return FromVoidPtr(x)
	case ResourceRef:
		return FromResourceRef(x)
	case ResourceRefList:
		return FromResourceRefList(x)
	case Vector:
		return FromVariantVector(x)
	case []Variant:
		return FromVariantVector(x)
	case Map:
		return FromVariantMap(x)
	case StringVector:
		return FromStringVector(x)
	case []string:
		return FromStringVector(x)
	case refcount.WeakRef:
		return FromWeakRef(x)
	case geom.Matrix3:
		return FromMatrix3(x)
	case geom.Matrix3x4:
		return FromMatrix3x4(x)
	case geom.Matrix4:
		return FromMatrix4(x)
	case refcount.Object:
		return FromPtr(x)
	default:
		return Variant{}
	}
}
