// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package variant

import (
	"unsafe"

	"github.com/yumeengine/attrcore/pkg/refcount"
)

// Equal reports whether v and o hold the same kind with equal payloads.
// Numeric kinds never compare across representations.
//
// Float components compare by value except that NaN equals NaN, so every
// Variant equals itself. VoidPtr and Ptr are the one exception to the kind
// rule: they compare equal when they point at the same address, in either
// order.
func (v Variant) Equal(o Variant) bool {
	if v.typ != o.typ {
		return v.pointerAddr() != nil && v.pointerAddr() == o.pointerAddr()
	}

	switch v.typ {
	case TypeNone:
		return true
	case TypeInt, TypeBool:
		return v.st.slots[0] == o.st.slots[0]
	case TypeFloat:
		return sameSlots(v.st, o.st, 1)
	case TypeDouble:
		a, b := v.st.double(), o.st.double()
		return a == b || (a != a && b != b)
	case TypeVector2:
		return sameSlots(v.st, o.st, 2)
	case TypeVector3:
		return sameSlots(v.st, o.st, 3)
	case TypeVector4, TypeQuaternion, TypeColor:
		return sameSlots(v.st, o.st, 4)
	case TypeIntRect, TypeIntVector2:
		return v.st.slots == o.st.slots
	case TypeString:
		return v.StringValue() == o.StringValue()
	case TypeBuffer:
		return string(v.Buffer()) == string(o.Buffer())
	case TypeVoidPtr, TypePtr:
		return v.pointerAddr() == o.pointerAddr()
	case TypeResourceRef:
		return v.ResourceRef() == o.ResourceRef()
	case TypeResourceRefList:
		return v.ResourceRefList().Equal(o.ResourceRefList())
	case TypeVariantVector:
		return v.VariantVector().Equal(o.VariantVector())
	case TypeVariantMap:
		return v.VariantMap().Equal(o.VariantMap())
	case TypeStringVector:
		return v.StringVector().Equal(o.StringVector())
	case TypeMatrix3:
		a, b := v.Matrix3(), o.Matrix3()
		return sameRows(a[:], b[:])
	case TypeMatrix3x4:
		a, b := v.Matrix3x4(), o.Matrix3x4()
		return sameRows(a[:], b[:])
	case TypeMatrix4:
		a, b := v.Matrix4(), o.Matrix4()
		return sameRows(a[:], b[:])
	default:
		return false
	}
}

// Matches reports whether v equals the Variant built from x by Of. A raw
// unsafe.Pointer or a reference-counted object matches both VoidPtr and
// Ptr payloads by address.
func (v Variant) Matches(x any) bool {
	switch x := x.(type) {
	case unsafe.Pointer:
		return (v.typ == TypeVoidPtr || v.typ == TypePtr) && v.pointerAddr() == x
	case refcount.WeakRef:
		return (v.typ == TypeVoidPtr || v.typ == TypePtr) && uintptr(v.pointerAddr()) == x.Addr()
	case refcount.Object:
		return (v.typ == TypeVoidPtr || v.typ == TypePtr) && v.pointerAddr() == refcount.Pointer(x)
	}
	o := Of(x)
	if o.typ == TypeNone && x != nil {
		return false
	}
	return v.Equal(o)
}

func sameFloat(a, b float32) bool { return a == b || (a != a && b != b) }

// sameSlots compares the first n float slots.
func sameSlots(a, b storage, n int) bool {
	for i := range n {
		if !sameFloat(a.float(i), b.float(i)) {
			return false
		}
	}
	return true
}

func sameRows[R [3]float32 | [4]float32](a, b []R) bool {
	for i := range a {
		for j := range len(a[i]) {
			if !sameFloat(a[i][j], b[i][j]) {
				return false
			}
		}
	}
	return true
}

// pointerAddr returns the address held by a VoidPtr or Ptr payload. Other
// kinds and expired references yield nil.
func (v Variant) pointerAddr() unsafe.Pointer {
	switch v.typ {
	case TypeVoidPtr, TypePtr:
		return v.VoidPtr()
	default:
		return nil
	}
}
