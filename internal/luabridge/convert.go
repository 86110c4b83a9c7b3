// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package luabridge

import (
	"math"
	"unsafe"

	lua "github.com/yuin/gopher-lua"

	"github.com/yumeengine/attrcore/internal/attrdoc"
	"github.com/yumeengine/attrcore/pkg/geom"
	"github.com/yumeengine/attrcore/pkg/refcount"
	"github.com/yumeengine/attrcore/pkg/strhash"
	"github.com/yumeengine/attrcore/pkg/variant"
)

// typeField names the metatable field that records a table's variant type.
const typeField = "__variant"

func metatable(L *lua.LState, t variant.Type) lua.LValue {
	mt := L.NewTypeMetatable("attrcore." + t.Name())
	L.SetField(mt, typeField, lua.LString(t.Name()))
	return mt
}

func typedTable(L *lua.LState, t variant.Type) *lua.LTable {
	tbl := L.NewTable()
	L.SetMetatable(tbl, metatable(L, t))
	return tbl
}

func floats(L *lua.LState, t variant.Type, keys []string, vals ...float32) *lua.LTable {
	tbl := typedTable(L, t)
	for i, k := range keys {
		tbl.RawSetString(k, lua.LNumber(vals[i]))
	}
	return tbl
}

func array(L *lua.LState, t variant.Type, vals []float32) *lua.LTable {
	tbl := typedTable(L, t)
	for _, f := range vals {
		tbl.Append(lua.LNumber(f))
	}
	return tbl
}

var (
	keysXY   = []string{"x", "y"}
	keysXYZ  = []string{"x", "y", "z"}
	keysXYZW = []string{"x", "y", "z", "w"}
	keysWXYZ = []string{"w", "x", "y", "z"}
	keysRGBA = []string{"r", "g", "b", "a"}
	keysLTRB = []string{"left", "top", "right", "bottom"}
)

// ToLua converts v to a Lua value. Numbers, booleans and strings map to
// their Lua counterparts; structured kinds become tables tagged with their
// type; pointers become userdata.
func ToLua(L *lua.LState, v variant.Variant) lua.LValue {
	switch v.Type() {
	case variant.TypeNone:
		return lua.LNil
	case variant.TypeInt:
		return lua.LNumber(v.Int())
	case variant.TypeBool:
		return lua.LBool(v.Bool())
	case variant.TypeFloat:
		return lua.LNumber(v.Float())
	case variant.TypeDouble:
		return lua.LNumber(v.Double())
	case variant.TypeString:
		return lua.LString(v.StringValue())
	case variant.TypeVector2:
		p := v.Vector2()
		return floats(L, v.Type(), keysXY, p.X, p.Y)
	case variant.TypeVector3:
		p := v.Vector3()
		return floats(L, v.Type(), keysXYZ, p.X, p.Y, p.Z)
	case variant.TypeVector4:
		p := v.Vector4()
		return floats(L, v.Type(), keysXYZW, p.X, p.Y, p.Z, p.W)
	case variant.TypeQuaternion:
		q := v.Quaternion()
		return floats(L, v.Type(), keysWXYZ, q.W, q.X, q.Y, q.Z)
	case variant.TypeColor:
		c := v.Color()
		return floats(L, v.Type(), keysRGBA, c.R, c.G, c.B, c.A)
	case variant.TypeIntRect:
		r := v.IntRect()
		return floats(L, v.Type(), keysLTRB, float32(r.Left), float32(r.Top), float32(r.Right), float32(r.Bottom))
	case variant.TypeIntVector2:
		p := v.IntVector2()
		return floats(L, v.Type(), keysXY, float32(p.X), float32(p.Y))
	case variant.TypeBuffer:
		tbl := typedTable(L, v.Type())
		tbl.RawSetString("data", lua.LString(v.Buffer()))
		return tbl
	case variant.TypeVoidPtr:
		ud := L.NewUserData()
		ud.Value = v.VoidPtr()
		return ud
	case variant.TypePtr:
		ud := L.NewUserData()
		ud.Value = v.WeakRef()
		return ud
	case variant.TypeResourceRef:
		ref := v.ResourceRef()
		tbl := typedTable(L, v.Type())
		tbl.RawSetString("type", lua.LString(ref.Type.Label()))
		tbl.RawSetString("name", lua.LString(ref.Name))
		return tbl
	case variant.TypeResourceRefList:
		list := v.ResourceRefList()
		tbl := typedTable(L, v.Type())
		tbl.RawSetString("type", lua.LString(list.Type.Label()))
		names := L.NewTable()
		for _, n := range list.Names {
			names.Append(lua.LString(n))
		}
		tbl.RawSetString("names", names)
		return tbl
	case variant.TypeVariantVector:
		tbl := typedTable(L, v.Type())
		for _, e := range v.VariantVector() {
			tbl.Append(ToLua(L, e))
		}
		return tbl
	case variant.TypeVariantMap:
		tbl := typedTable(L, v.Type())
		for k, e := range v.VariantMap() {
			tbl.RawSetString(attrdoc.KeyName(k), ToLua(L, e))
		}
		return tbl
	case variant.TypeStringVector:
		tbl := typedTable(L, v.Type())
		for _, s := range v.StringVector() {
			tbl.Append(lua.LString(s))
		}
		return tbl
	case variant.TypeMatrix3:
		m := v.Matrix3()
		return array(L, v.Type(), rows3(m[:]...))
	case variant.TypeMatrix3x4:
		m := v.Matrix3x4()
		return array(L, v.Type(), rows4(m[:]...))
	case variant.TypeMatrix4:
		m := v.Matrix4()
		return array(L, v.Type(), rows4(m[:]...))
	default:
		return lua.LNil
	}
}

func rows3(rows ...[3]float32) []float32 {
	out := make([]float32, 0, 3*len(rows))
	for _, r := range rows {
		out = append(out, r[:]...)
	}
	return out
}

func rows4(rows ...[4]float32) []float32 {
	out := make([]float32, 0, 4*len(rows))
	for _, r := range rows {
		out = append(out, r[:]...)
	}
	return out
}

// taggedType returns the variant type recorded on a table by ToLua.
func taggedType(tbl *lua.LTable) (variant.Type, bool) {
	mt, ok := tbl.Metatable.(*lua.LTable)
	if !ok {
		return variant.TypeNone, false
	}
	name, ok := mt.RawGetString(typeField).(lua.LString)
	if !ok {
		return variant.TypeNone, false
	}
	t := variant.TypeFromName(string(name))
	return t, t != variant.TypeNone
}

// FromLua converts a Lua value to a variant, inferring the type. Tagged
// tables keep their type. Integral numbers within int32 range become Int,
// other numbers Double. Untagged tables become VariantVector when they
// have array entries and VariantMap otherwise.
func FromLua(lv lua.LValue) variant.Variant {
	switch val := lv.(type) {
	case lua.LBool:
		return variant.FromBool(bool(val))
	case lua.LNumber:
		f := float64(val)
		if f == math.Trunc(f) && f >= math.MinInt32 && f <= math.MaxInt32 {
			return variant.FromInt(int32(f))
		}
		return variant.FromDouble(f)
	case lua.LString:
		return variant.FromString(string(val))
	case *lua.LUserData:
		return fromUserData(val)
	case *lua.LTable:
		if t, ok := taggedType(val); ok {
			return FromLuaAs(val, t)
		}
		if val.Len() > 0 {
			return FromLuaAs(val, variant.TypeVariantVector)
		}
		return FromLuaAs(val, variant.TypeVariantMap)
	default:
		return variant.Variant{}
	}
}

func fromUserData(ud *lua.LUserData) variant.Variant {
	switch p := ud.Value.(type) {
	case refcount.WeakRef:
		return variant.FromWeakRef(p)
	case refcount.Object:
		return variant.FromPtr(p)
	case unsafe.Pointer:
		return variant.FromVoidPtr(p)
	default:
		return variant.Variant{}
	}
}

func number(lv lua.LValue) float64 {
	switch val := lv.(type) {
	case lua.LNumber:
		return float64(val)
	case lua.LBool:
		if val {
			return 1
		}
		return 0
	case lua.LString:
		return variant.ParseType(variant.TypeDouble, string(val)).Double()
	default:
		return 0
	}
}

func field(tbl *lua.LTable, key string) float32 { return float32(number(tbl.RawGetString(key))) }

func intField(tbl *lua.LTable, key string) int32 { return int32(number(tbl.RawGetString(key))) }

func elements(tbl *lua.LTable, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(number(tbl.RawGetInt(i + 1)))
	}
	return out
}

func str(lv lua.LValue) string {
	if lv == lua.LNil {
		return ""
	}
	return lv.String()
}

// FromLuaAs converts lv to a variant of type t. Strings are parsed with the
// text form of t; tables are read by field names or array positions.
// Mismatched values yield the zero value of t.
func FromLuaAs(lv lua.LValue, t variant.Type) variant.Variant {
	if s, ok := lv.(lua.LString); ok && t != variant.TypeString {
		if t == variant.TypeBuffer {
			return variant.FromBuffer([]byte(s))
		}
		return variant.ParseType(t, string(s))
	}

	switch t {
	case variant.TypeNone:
		return variant.Variant{}
	case variant.TypeInt:
		return variant.FromInt(int32(number(lv)))
	case variant.TypeBool:
		return variant.FromBool(lua.LVAsBool(lv))
	case variant.TypeFloat:
		return variant.FromFloat(float32(number(lv)))
	case variant.TypeDouble:
		return variant.FromDouble(number(lv))
	case variant.TypeString:
		return variant.FromString(str(lv))
	case variant.TypeVoidPtr, variant.TypePtr:
		if ud, ok := lv.(*lua.LUserData); ok {
			return fromUserData(ud)
		}
		return variant.ParseType(t, "")
	}

	tbl, ok := lv.(*lua.LTable)
	if !ok {
		return variant.ParseType(t, "")
	}

	switch t {
	case variant.TypeVector2:
		return variant.FromVector2(geom.Vector2{X: field(tbl, "x"), Y: field(tbl, "y")})
	case variant.TypeVector3:
		return variant.FromVector3(geom.Vector3{X: field(tbl, "x"), Y: field(tbl, "y"), Z: field(tbl, "z")})
	case variant.TypeVector4:
		return variant.FromVector4(geom.Vector4{X: field(tbl, "x"), Y: field(tbl, "y"), Z: field(tbl, "z"), W: field(tbl, "w")})
	case variant.TypeQuaternion:
		return variant.FromQuaternion(geom.Quaternion{W: field(tbl, "w"), X: field(tbl, "x"), Y: field(tbl, "y"), Z: field(tbl, "z")})
	case variant.TypeColor:
		c := geom.Color{R: field(tbl, "r"), G: field(tbl, "g"), B: field(tbl, "b"), A: 1}
		if a := tbl.RawGetString("a"); a != lua.LNil {
			c.A = float32(number(a))
		}
		return variant.FromColor(c)
	case variant.TypeIntRect:
		return variant.FromIntRect(geom.IntRect{
			Left: intField(tbl, "left"), Top: intField(tbl, "top"),
			Right: intField(tbl, "right"), Bottom: intField(tbl, "bottom"),
		})
	case variant.TypeIntVector2:
		return variant.FromIntVector2(geom.IntVector2{X: intField(tbl, "x"), Y: intField(tbl, "y")})
	case variant.TypeBuffer:
		return variant.FromBuffer([]byte(str(tbl.RawGetString("data"))))
	case variant.TypeResourceRef:
		return variant.FromResourceRef(variant.ResourceRef{
			Type: typeHash(tbl.RawGetString("type")),
			Name: str(tbl.RawGetString("name")),
		})
	case variant.TypeResourceRefList:
		list := variant.ResourceRefList{Type: typeHash(tbl.RawGetString("type"))}
		if names, ok := tbl.RawGetString("names").(*lua.LTable); ok {
			for i := 1; i <= names.Len(); i++ {
				list.Names = append(list.Names, str(names.RawGetInt(i)))
			}
		}
		return variant.FromResourceRefList(list)
	case variant.TypeVariantVector:
		vec := make(variant.Vector, 0, tbl.Len())
		for i := 1; i <= tbl.Len(); i++ {
			vec = append(vec, FromLua(tbl.RawGetInt(i)))
		}
		return variant.FromVariantVector(vec)
	case variant.TypeVariantMap:
		m := variant.Map{}
		tbl.ForEach(func(k, e lua.LValue) {
			key, ok := k.(lua.LString)
			if !ok {
				return
			}
			if h, err := attrdoc.ParseKey(string(key)); err == nil {
				m[h] = FromLua(e)
			}
		})
		return variant.FromVariantMap(m)
	case variant.TypeStringVector:
		sv := make(variant.StringVector, 0, tbl.Len())
		for i := 1; i <= tbl.Len(); i++ {
			sv = append(sv, str(tbl.RawGetInt(i)))
		}
		return variant.FromStringVector(sv)
	case variant.TypeMatrix3:
		var m geom.Matrix3
		f := elements(tbl, 9)
		for i := range m {
			copy(m[i][:], f[i*3:])
		}
		return variant.FromMatrix3(m)
	case variant.TypeMatrix3x4:
		var m geom.Matrix3x4
		f := elements(tbl, 12)
		for i := range m {
			copy(m[i][:], f[i*4:])
		}
		return variant.FromMatrix3x4(m)
	case variant.TypeMatrix4:
		var m geom.Matrix4
		f := elements(tbl, 16)
		for i := range m {
			copy(m[i][:], f[i*4:])
		}
		return variant.FromMatrix4(m)
	default:
		return variant.Variant{}
	}
}

// typeHash reads a resource type written by ToLua: a registered name, or
// "#" plus hex for a hash whose name is unknown.
func typeHash(lv lua.LValue) strhash.Hash {
	s := str(lv)
	if h, ok := strhash.ParseLabel(s); ok {
		return h
	}
	return strhash.Of(s)
}
