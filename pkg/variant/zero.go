// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package variant

import "github.com/yumeengine/attrcore/pkg/geom"

// IsZero reports whether the payload equals the default of its kind:
// zero numbers and vectors, identity quaternion and matrices, white,
// empty strings and containers, null or expired pointers. The empty
// Variant is zero.
func (v Variant) IsZero() bool {
	switch v.typ {
	case TypeNone:
		return true
	case TypeInt, TypeBool:
		return v.st.slots[0] == 0
	case TypeFloat:
		return v.st.float(0) == 0
	case TypeDouble:
		return v.st.double() == 0
	case TypeVector2:
		return v.Vector2() == geom.Vector2Zero
	case TypeVector3:
		return v.Vector3() == geom.Vector3Zero
	case TypeVector4:
		return v.Vector4() == geom.Vector4Zero
	case TypeQuaternion:
		return v.Quaternion() == geom.QuaternionIdentity
	case TypeColor:
		return v.Color() == geom.ColorWhite
	case TypeIntRect:
		return v.IntRect() == geom.IntRectZero
	case TypeIntVector2:
		return v.IntVector2() == geom.IntVector2Zero
	case TypeString:
		return v.StringValue() == ""
	case TypeBuffer:
		return len(v.Buffer()) == 0
	case TypeVoidPtr, TypePtr:
		return v.VoidPtr() == nil
	case TypeResourceRef:
		return v.ResourceRef().Name == ""
	case TypeResourceRefList:
		for _, name := range v.ResourceRefList().Names {
			if name != "" {
				return false
			}
		}
		return true
	case TypeVariantVector:
		return len(v.VariantVector()) == 0
	case TypeVariantMap:
		return len(v.VariantMap()) == 0
	case TypeStringVector:
		return len(v.StringVector()) == 0
	case TypeMatrix3:
		return v.Matrix3() == geom.Matrix3Identity
	case TypeMatrix3x4:
		return v.Matrix3x4() == geom.Matrix3x4Identity
	case TypeMatrix4:
		return v.Matrix4() == geom.Matrix4Identity
	default:
		return false
	}
}
