// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package variant

import (
	"strconv"
	"strings"
	"unicode"
	"unsafe"

	"github.com/yumeengine/attrcore/pkg/geom"
	"github.com/yumeengine/attrcore/pkg/refcount"
)

// String returns the text form of the payload. Pointer kinds render as
// "0" because addresses are not portable. Buffer, VariantVector and
// VariantMap have no text form and render empty, as does an empty Variant.
func (v Variant) String() string {
	switch v.typ {
	case TypeInt:
		return strconv.FormatInt(int64(v.st.int(0)), 10)
	case TypeBool:
		return strconv.FormatBool(v.Bool())
	case TypeFloat:
		return geom.FormatFloat(v.st.float(0))
	case TypeDouble:
		return strconv.FormatFloat(v.st.double(), 'g', -1, 64)
	case TypeVector2:
		return v.Vector2().String()
	case TypeVector3:
		return v.Vector3().String()
	case TypeVector4:
		return v.Vector4().String()
	case TypeQuaternion:
		return v.Quaternion().String()
	case TypeColor:
		return v.Color().String()
	case TypeIntRect:
		return v.IntRect().String()
	case TypeIntVector2:
		return v.IntVector2().String()
	case TypeString:
		return v.StringValue()
	case TypeVoidPtr, TypePtr:
		return "0"
	case TypeResourceRef:
		return v.ResourceRef().String()
	case TypeResourceRefList:
		return v.ResourceRefList().String()
	case TypeStringVector:
		return v.StringVector().String()
	case TypeMatrix3:
		return v.Matrix3().String()
	case TypeMatrix3x4:
		return v.Matrix3x4().String()
	case TypeMatrix4:
		return v.Matrix4().String()
	default:
		return ""
	}
}

// SetText replaces v with the payload of kind t parsed from s. Malformed
// components parse as zero. Pointer kinds become null pointers. Kinds
// without a text form, and TypeNone, leave v empty.
func (v *Variant) SetText(t Type, s string) {
	switch t {
	case TypeInt:
		v.SetInt(geom.ParseInt(s))
	case TypeBool:
		v.SetBool(parseBool(s))
	case TypeFloat:
		v.SetFloat(geom.ParseFloat(s))
	case TypeDouble:
		v.SetDouble(parseDouble(s))
	case TypeVector2:
		v.SetVector2(geom.ParseVector2(s))
	case TypeVector3:
		v.SetVector3(geom.ParseVector3(s))
	case TypeVector4:
		v.SetVector4(geom.ParseVector4(s))
	case TypeQuaternion:
		v.SetQuaternion(geom.ParseQuaternion(s))
	case TypeColor:
		v.SetColor(geom.ParseColor(s))
	case TypeIntRect:
		v.SetIntRect(geom.ParseIntRect(s))
	case TypeIntVector2:
		v.SetIntVector2(geom.ParseIntVector2(s))
	case TypeString:
		v.SetString(s)
	case TypeVoidPtr:
		v.SetVoidPtr(unsafe.Pointer(nil))
	case TypePtr:
		v.SetWeakRef(refcount.WeakRef{})
	case TypeResourceRef:
		v.SetResourceRef(ParseResourceRef(s))
	case TypeResourceRefList:
		v.SetResourceRefList(ParseResourceRefList(s))
	case TypeStringVector:
		v.SetStringVector(ParseStringVector(s))
	case TypeMatrix3:
		v.SetMatrix3(geom.ParseMatrix3(s))
	case TypeMatrix3x4:
		v.SetMatrix3x4(geom.ParseMatrix3x4(s))
	case TypeMatrix4:
		v.SetMatrix4(geom.ParseMatrix4(s))
	default:
		v.Clear()
	}
}

// SetTypedText is SetText with the kind given by registry name. An unknown
// name leaves v empty.
func (v *Variant) SetTypedText(typeName, s string) {
	v.SetText(TypeFromName(typeName), s)
}

// Parse returns the Variant of the named kind parsed from s.
func Parse(typeName, s string) Variant {
	var v Variant
	v.SetTypedText(typeName, s)
	return v
}

// ParseType returns the Variant of kind t parsed from s.
func ParseType(t Type, s string) Variant {
	var v Variant
	v.SetText(t, s)
	return v
}

// parseBool is true when the first non-blank character is t, y or 1,
// ignoring case.
func parseBool(s string) bool {
	for _, r := range s {
		switch unicode.ToLower(r) {
		case 't', 'y', '1':
			return true
		case ' ', '\t':
			continue
		default:
			return false
		}
	}
	return false
}

func parseDouble(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
