// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package variant

import (
	"math"
	"runtime"
	"sync/atomic"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumeengine/attrcore/pkg/geom"
	"github.com/yumeengine/attrcore/pkg/refcount"
	"github.com/yumeengine/attrcore/pkg/strhash"
)

type sceneNode struct {
	refcount.RefCounted
	name string
}

// samples returns one non-default Variant of every kind, keyed by tag.
func samples(t *testing.T) map[Type]Variant {
	t.Helper()
	node := &sceneNode{name: "root"}
	node.AddRef()
	t.Cleanup(func() { node.ReleaseRef() })
	raw := new(int)

	m34 := geom.Matrix3x4Identity
	m34[0][3] = 7
	m4 := geom.Matrix4Identity
	m4[3][0] = 2

	return map[Type]Variant{
		TypeNone:            {},
		TypeInt:             FromInt(-42),
		TypeBool:            FromBool(true),
		TypeFloat:           FromFloat(2.5),
		TypeDouble:          FromDouble(1.0 / 3.0),
		TypeVector2:         FromVector2(geom.Vector2{X: 1, Y: 2}),
		TypeVector3:         FromVector3(geom.Vector3{X: 1, Y: 2, Z: 3}),
		TypeVector4:         FromVector4(geom.Vector4{X: 1, Y: 2, Z: 3, W: 4}),
		TypeQuaternion:      FromQuaternion(geom.Quaternion{W: 0.5, X: 0.5, Y: 0.5, Z: 0.5}),
		TypeColor:           FromColor(geom.Color{R: 0.25, G: 0.5, B: 0.75, A: 1}),
		TypeString:          FromString("Hello"),
		TypeBuffer:          FromBuffer([]byte{1, 2, 3}),
		TypeVoidPtr:         FromVoidPtr(unsafe.Pointer(raw)),
		TypeResourceRef:     FromResourceRef(NewResourceRef("Texture2D", "stone.png")),
		TypeResourceRefList: FromResourceRefList(NewResourceRefList("Material", "a.xml", "b.xml")),
		TypeVariantVector:   FromVariantVector(Vector{FromInt(1), FromString("two")}),
		TypeVariantMap:      FromVariantMap(Map{strhash.Of("speed"): FromFloat(3)}),
		TypeIntRect:         FromIntRect(geom.IntRect{Left: 1, Top: 2, Right: 3, Bottom: 4}),
		TypeIntVector2:      FromIntVector2(geom.IntVector2{X: -1, Y: 9}),
		TypePtr:             FromPtr(node),
		TypeMatrix3:         FromMatrix3(geom.Matrix3{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}),
		TypeMatrix3x4:       FromMatrix3x4(m34),
		TypeMatrix4:         FromMatrix4(m4),
		TypeStringVector:    FromStringVector(StringVector{"x", "y"}),
	}
}

func TestTypeNames(t *testing.T) {
	for _, typ := range Types() {
		assert.NotEmpty(t, typ.Name())
		assert.Equal(t, typ, TypeFromName(typ.Name()), typ.Name())
	}
	assert.Len(t, Types(), int(MaxTypes))
}

func TestTypeFromName(t *testing.T) {
	tests := []struct {
		name string
		want Type
	}{
		{"Int", TypeInt},
		{"vector3", TypeVector3},
		{"MATRIX4", TypeMatrix4},
		{" ResourceRef ", TypeResourceRef},
		{"NoSuchType", TypeNone},
		{"", TypeNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeFromName(tt.name))
		})
	}
}

func TestType_NameIsTotal(t *testing.T) {
	assert.Equal(t, "None", TypeNone.Name())
	assert.Equal(t, "StringVector", TypeStringVector.String())
	assert.Equal(t, "Type(200)", Type(200).Name())
	assert.False(t, MaxTypes.Valid())
}

func TestSamples_CoverEveryType(t *testing.T) {
	s := samples(t)
	for _, typ := range Types() {
		v, ok := s[typ]
		require.True(t, ok, typ.Name())
		assert.Equal(t, typ, v.Type())
		assert.Equal(t, typ.Name(), v.TypeName())
	}
}

func TestZeroVariantIsEmpty(t *testing.T) {
	var v Variant
	assert.True(t, v.IsEmpty())
	assert.True(t, v.IsZero())
	assert.Equal(t, TypeNone, v.Type())
	assert.Equal(t, "", v.String())
	assert.True(t, v.Equal(Empty))
}

func TestNumericConversions(t *testing.T) {
	assert.Equal(t, float32(5), FromInt(5).Float())
	assert.Equal(t, float64(5), FromInt(5).Double())
	assert.Equal(t, int32(2), FromFloat(2.9).Int())
	assert.Equal(t, int32(-2), FromDouble(-2.9).Int())
	assert.Equal(t, float32(0.5), FromDouble(0.5).Float())
	assert.Equal(t, uint32(7), FromFloat(7.5).UInt())
	assert.Equal(t, uint32(0xffffffff), FromInt(-1).UInt())
	assert.Equal(t, int32(0), FromString("5").Int())
	assert.Equal(t, float32(0), FromBool(true).Float())
}

func TestUnsignedAndHashNormalizeToInt(t *testing.T) {
	h := strhash.Of("position")

	assert.Equal(t, TypeInt, FromUInt(3).Type())
	assert.Equal(t, TypeInt, FromStringHash(h).Type())
	assert.Equal(t, h, FromStringHash(h).StringHash())
	assert.True(t, FromStringHash(h).Matches(h))
	assert.True(t, FromUInt(3).Matches(3))
	assert.True(t, FromInt(3).Matches(uint32(3)))
}

func TestLenientGetterDefaults(t *testing.T) {
	v := FromBool(true)

	assert.Equal(t, geom.Vector3Zero, v.Vector3())
	assert.Equal(t, int32(0), v.Int())
	assert.Equal(t, geom.QuaternionIdentity, v.Quaternion())
	assert.Equal(t, geom.ColorWhite, v.Color())
	assert.Equal(t, geom.Matrix3Identity, v.Matrix3())
	assert.Equal(t, geom.Matrix3x4Identity, v.Matrix3x4())
	assert.Equal(t, geom.Matrix4Identity, v.Matrix4())
	assert.Equal(t, "", v.StringValue())
	assert.Nil(t, v.Buffer())
	assert.Nil(t, v.VariantVector())
	assert.Nil(t, v.VariantMap())
	assert.Nil(t, v.StringVector())
	assert.Equal(t, ResourceRef{}, v.ResourceRef())
	assert.Equal(t, ResourceRefList{}, v.ResourceRefList())
	assert.Nil(t, v.VoidPtr())
	assert.Nil(t, v.Ptr())
	assert.Equal(t, geom.IntRectZero, v.IntRect())
	assert.Equal(t, geom.IntVector2Zero, v.IntVector2())
	assert.False(t, FromInt(1).Bool())
}

func TestPointerGetters(t *testing.T) {
	t.Run("mismatch yields nil", func(t *testing.T) {
		v := FromInt(1)
		assert.Nil(t, v.BufferPtr())
		assert.Nil(t, v.VariantVectorPtr())
		assert.Nil(t, v.StringVectorPtr())
		assert.Nil(t, v.VariantMapPtr())
	})

	t.Run("mutation is visible", func(t *testing.T) {
		buf := FromBuffer([]byte{1})
		*buf.BufferPtr() = append(*buf.BufferPtr(), 2)
		assert.Equal(t, []byte{1, 2}, buf.Buffer())

		vec := FromVariantVector(nil)
		*vec.VariantVectorPtr() = append(*vec.VariantVectorPtr(), FromInt(9))
		assert.True(t, vec.VariantVector().Equal(Vector{FromInt(9)}))

		sv := FromStringVector(nil)
		*sv.StringVectorPtr() = append(*sv.StringVectorPtr(), "a")
		assert.Equal(t, StringVector{"a"}, sv.StringVector())

		m := FromVariantMap(nil)
		(*m.VariantMapPtr()).Set("hp", FromInt(10))
		assert.Equal(t, int32(10), m.VariantMap().Get("hp").Int())
	})
}

func TestEqual_Reflexive(t *testing.T) {
	for typ, v := range samples(t) {
		assert.True(t, v.Equal(v), typ.Name())
		assert.True(t, v.Equal(v.Clone()), typ.Name())
	}
}

func TestEqual_NaN(t *testing.T) {
	nan32 := float32(math.NaN())
	m := geom.Matrix4Identity
	m[2][1] = nan32

	values := []Variant{
		FromFloat(nan32),
		FromDouble(math.NaN()),
		FromVector3(geom.Vector3{X: 1, Y: nan32}),
		FromQuaternion(geom.Quaternion{W: nan32}),
		FromColor(geom.Color{A: nan32}),
		FromMatrix4(m),
		FromVariantVector(Vector{FromFloat(nan32)}),
	}
	for _, v := range values {
		t.Run(v.TypeName(), func(t *testing.T) {
			assert.True(t, v.Equal(v))
			assert.True(t, v.Equal(v.Clone()))
		})
	}

	assert.False(t, FromFloat(nan32).Equal(FromFloat(0)))
	assert.True(t, FromFloat(0).Equal(FromFloat(float32(math.Copysign(0, -1)))))
}

func TestEqual_SymmetricAndKindStrict(t *testing.T) {
	s := samples(t)
	for ta, a := range s {
		for tb, b := range s {
			assert.Equal(t, a.Equal(b), b.Equal(a), "%s vs %s", ta, tb)
			if ta != tb {
				assert.False(t, a.Equal(b), "%s vs %s", ta, tb)
			}
		}
	}
}

func TestEqual_NoNumericCoercion(t *testing.T) {
	assert.False(t, FromInt(5).Equal(FromFloat(5)))
	assert.False(t, FromFloat(5).Equal(FromDouble(5)))
	assert.False(t, FromInt(5).Matches(float32(5)))
	assert.True(t, FromFloat(5).Matches(float32(5)))
	assert.True(t, FromDouble(5).Matches(5.0))
}

func TestEqual_VoidPtrMatchesPtrBySameAddress(t *testing.T) {
	node := &sceneNode{}
	node.AddRef()
	addr := refcount.Pointer(node)

	ptr := FromPtr(node)
	void := FromVoidPtr(addr)

	assert.True(t, ptr.Equal(void))
	assert.True(t, void.Equal(ptr))
	assert.True(t, void.Matches(node))
	assert.True(t, ptr.Matches(addr))
	assert.True(t, ptr.Matches(node))
	assert.False(t, FromVoidPtr(unsafe.Pointer(new(int))).Equal(ptr))
	assert.Equal(t, addr, ptr.VoidPtr())

	node.ReleaseRef()
	assert.Nil(t, ptr.Ptr())
	assert.Nil(t, ptr.VoidPtr())
	assert.False(t, ptr.Equal(void))
}

func TestPtr_DoesNotExtendLifetime(t *testing.T) {
	node := &sceneNode{name: "child"}
	node.AddRef()

	v := FromPtr(node)
	assert.Equal(t, int32(1), node.Refs())
	got, ok := v.Ptr().(*sceneNode)
	require.True(t, ok)
	assert.Equal(t, "child", got.name)

	c := v.Clone()
	node.ReleaseRef()
	assert.Nil(t, v.Ptr())
	assert.Nil(t, c.Ptr())
	assert.True(t, v.IsZero())
	assert.Equal(t, "0", v.String())
}

func TestResourceRefEquality(t *testing.T) {
	a := FromResourceRef(NewResourceRef("Texture2D", "foo"))

	assert.True(t, a.Equal(FromResourceRef(NewResourceRef("Texture2D", "foo"))))
	assert.False(t, a.Equal(FromResourceRef(NewResourceRef("Texture2D", "bar"))))
	assert.False(t, a.Equal(FromResourceRef(NewResourceRef("Model", "foo"))))
	assert.True(t, a.Matches(ResourceRef{Type: strhash.Of("Texture2D"), Name: "foo"}))

	l := FromResourceRefList(NewResourceRefList("Material", "a", "b"))
	assert.True(t, l.Equal(FromResourceRefList(NewResourceRefList("Material", "a", "b"))))
	assert.False(t, l.Equal(FromResourceRefList(NewResourceRefList("Material", "b", "a"))))
}

func TestVariantMapEquality(t *testing.T) {
	hp, speed := strhash.Of("hp"), strhash.Of("speed")
	v := FromVariantMap(Map{hp: FromInt(100), speed: FromFloat(2.5)})

	m := v.VariantMap()
	require.Len(t, m, 2)
	assert.Equal(t, int32(100), m[hp].Int())
	assert.Equal(t, float32(2.5), m[speed].Float())

	assert.True(t, v.Equal(FromVariantMap(Map{speed: FromFloat(2.5), hp: FromInt(100)})))
	assert.False(t, v.Equal(FromVariantMap(Map{hp: FromInt(100)})))
	assert.False(t, v.Equal(FromVariantMap(Map{hp: FromInt(100), speed: FromDouble(2.5)})))
	assert.False(t, v.Equal(FromVariantMap(Map{hp: FromInt(100), strhash.Of("mana"): FromFloat(2.5)})))
}

func TestNestedCollections(t *testing.T) {
	inner := FromVariantVector(Vector{FromInt(1), FromVariantVector(Vector{FromString("deep")})})
	outer := FromVariantVector(Vector{inner, FromBool(true)})

	got := outer.VariantVector()[0].VariantVector()[1].VariantVector()[0]
	assert.Equal(t, "deep", got.StringValue())
	assert.True(t, outer.Equal(outer.Clone()))
}

func TestCopyIndependence(t *testing.T) {
	t.Run("clone of string", func(t *testing.T) {
		a := FromString("a")
		b := a.Clone()
		b.SetString("b")
		assert.Equal(t, "a", a.StringValue())
	})

	t.Run("clone of buffer", func(t *testing.T) {
		a := FromBuffer([]byte{1, 2})
		b := a.Clone()
		(*b.BufferPtr())[0] = 9
		assert.Equal(t, []byte{1, 2}, a.Buffer())
	})

	t.Run("clone of nested vector", func(t *testing.T) {
		a := FromVariantVector(Vector{FromVariantVector(Vector{FromInt(1)})})
		b := a.Clone()
		inner := (*b.VariantVectorPtr())[0].VariantVectorPtr()
		(*inner)[0] = FromInt(2)
		assert.Equal(t, int32(1), a.VariantVector()[0].VariantVector()[0].Int())
	})

	t.Run("assign of map", func(t *testing.T) {
		a := FromVariantMap(Map{strhash.Of("k"): FromInt(1)})
		var b Variant
		b.Assign(a)
		(*b.VariantMapPtr()).Set("k", FromInt(2))
		(*b.VariantMapPtr()).Set("extra", FromInt(3))
		assert.Equal(t, int32(1), a.VariantMap().Get("k").Int())
		assert.Len(t, a.VariantMap(), 1)
	})

	t.Run("assign of string vector", func(t *testing.T) {
		a := FromStringVector(StringVector{"x"})
		var b Variant
		b.Assign(a)
		(*b.StringVectorPtr())[0] = "y"
		assert.Equal(t, StringVector{"x"}, a.StringVector())
	})

	t.Run("plain copy then set matrix", func(t *testing.T) {
		a := FromMatrix4(geom.Matrix4Identity)
		b := a
		m := geom.Matrix4Identity
		m[0][0] = 5
		b.SetMatrix4(m)
		assert.Equal(t, geom.Matrix4Identity, a.Matrix4())
		assert.Equal(t, m, b.Matrix4())
	})

	t.Run("plain copy then write through vector pointer", func(t *testing.T) {
		a := FromVariantVector(Vector{FromInt(1)})
		b := a
		(*b.VariantVectorPtr())[0] = FromInt(2)
		assert.Equal(t, int32(1), a.VariantVector()[0].Int())
		assert.Equal(t, int32(2), b.VariantVector()[0].Int())
	})

	t.Run("plain copy then original writes", func(t *testing.T) {
		a := FromVariantMap(Map{strhash.Of("k"): FromInt(1)})
		b := a
		a.VariantMapPtr().Set("k", FromInt(2))
		assert.Equal(t, int32(1), b.VariantMap().Get("k").Int())
		assert.Equal(t, int32(2), a.VariantMap().Get("k").Int())
	})

	t.Run("plain copy of buffer and string vector", func(t *testing.T) {
		buf := FromBuffer([]byte{1})
		bufCopy := buf
		(*bufCopy.BufferPtr())[0] = 9
		assert.Equal(t, []byte{1}, buf.Buffer())

		sv := FromStringVector(StringVector{"x"})
		svCopy := sv
		*svCopy.StringVectorPtr() = append(*svCopy.StringVectorPtr(), "y")
		assert.Equal(t, StringVector{"x"}, sv.StringVector())
		assert.Equal(t, StringVector{"x", "y"}, svCopy.StringVector())
	})

	t.Run("repeated pointer calls share one box", func(t *testing.T) {
		v := FromVariantVector(nil)
		p := v.VariantVectorPtr()
		assert.Same(t, p, v.VariantVectorPtr())
	})

	t.Run("input slices are copied", func(t *testing.T) {
		data := []byte{1}
		names := StringVector{"n"}
		bv := FromBuffer(data)
		sv := FromStringVector(names)
		data[0], names[0] = 2, "m"
		assert.Equal(t, []byte{1}, bv.Buffer())
		assert.Equal(t, StringVector{"n"}, sv.StringVector())
	})
}

func TestAssign_Self(t *testing.T) {
	v := FromVariantVector(Vector{FromString("a"), FromMatrix3(geom.Matrix3Identity)})
	want := v.Clone()

	v.Assign(v)
	assert.True(t, v.Equal(want))
}

func TestSetType_SameTagOverwritesPayload(t *testing.T) {
	var v Variant
	v.SetVector4(geom.Vector4{X: 1, Y: 2, Z: 3, W: 4})
	v.SetVector2(geom.Vector2{X: 5, Y: 6})
	assert.Equal(t, geom.Vector2{X: 5, Y: 6}, v.Vector2())
	assert.Equal(t, [4]uint32{v.st.slots[0], v.st.slots[1], 0, 0}, v.st.slots, "stale slots are cleared")

	v.SetMatrix3(geom.Matrix3{})
	box := v.st.obj
	v.SetMatrix3(geom.Matrix3Identity)
	assert.NotSame(t, box, v.st.obj)
	assert.Equal(t, geom.Matrix3Identity, v.Matrix3())
}

func TestCyclicReassignment(t *testing.T) {
	s := samples(t)
	types := Types()

	var v Variant
	for round := range 50 {
		for i := range types {
			next := types[(i*7+round)%len(types)]
			want := s[next]
			v.Assign(want)

			require.Equal(t, next, v.Type())
			require.True(t, v.Equal(want), "round %d, %s", round, next)
			if next.inline() || next == TypeNone {
				require.Nil(t, v.st.obj, "%s leaves no object payload", next)
			}
			if next.boxed() {
				require.NotSame(t, want.st.obj, v.st.obj, "%s box is owned", next)
			}
		}
		v.Clear()
		require.True(t, v.IsEmpty())
		require.Nil(t, v.st.obj)
	}

	for typ, orig := range samples(t) {
		if typ == TypePtr || typ == TypeVoidPtr {
			continue
		}
		assert.True(t, s[typ].Equal(orig), "sample %s untouched", typ)
	}
}

func TestMatrixBoxReleasedOnReassignment(t *testing.T) {
	var freed atomic.Int32

	v := FromMatrix4(geom.Matrix4Identity)
	assert.True(t, v.Equal(FromMatrix4(geom.Matrix4Identity)))

	box, ok := v.st.obj.(*geom.Matrix4)
	require.True(t, ok)
	runtime.AddCleanup(box, func(int) { freed.Add(1) }, 0)
	box = nil
	_ = box

	v.SetInt(0)
	assert.Equal(t, int32(0), v.Int())
	assert.Nil(t, v.st.obj)

	assert.Eventually(t, func() bool {
		runtime.GC()
		return freed.Load() == 1
	}, 5*time.Second, 10*time.Millisecond)

	v.Clear()
	v.Clear()
	runtime.GC()
	assert.Equal(t, int32(1), freed.Load())
}

func TestIsZero(t *testing.T) {
	for _, typ := range Types() {
		var v Variant
		v.SetText(typ, "")
		switch {
		case typ == TypeBuffer || typ == TypeVariantVector || typ == TypeVariantMap:
			assert.True(t, v.IsEmpty(), typ.Name())
		case typ.boxed():
			// too few components parse as the zero matrix, not identity
			assert.False(t, v.IsZero(), "parsed %s", typ)
			continue
		}
		assert.True(t, v.IsZero(), "default %s", typ)
	}

	for typ, v := range samples(t) {
		if typ == TypeNone {
			continue
		}
		assert.False(t, v.IsZero(), "sample %s", typ)
	}

	assert.True(t, FromBuffer(nil).IsZero())
	assert.True(t, FromColor(geom.ColorWhite).IsZero())
	assert.False(t, FromColor(geom.ColorBlack).IsZero())
	assert.True(t, FromMatrix4(geom.Matrix4Identity).IsZero())
}

func TestOf(t *testing.T) {
	node := &sceneNode{}
	tests := []struct {
		name string
		in   any
		want Type
	}{
		{"nil", nil, TypeNone},
		{"int", 3, TypeInt},
		{"int64", int64(3), TypeInt},
		{"uint", uint(3), TypeInt},
		{"hash", strhash.Hash(1), TypeInt},
		{"bool", true, TypeBool},
		{"float32", float32(1), TypeFloat},
		{"float64", 1.0, TypeDouble},
		{"string", "s", TypeString},
		{"bytes", []byte("b"), TypeBuffer},
		{"slice of variants", []Variant{FromInt(1)}, TypeVariantVector},
		{"slice of strings", []string{"a"}, TypeStringVector},
		{"matrix", geom.Matrix3x4Identity, TypeMatrix3x4},
		{"ref counted object", node, TypePtr},
		{"raw pointer", unsafe.Pointer(node), TypeVoidPtr},
		{"variant", FromColor(geom.ColorBlack), TypeColor},
		{"unsupported", struct{}{}, TypeNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Of(tt.in).Type())
		})
	}
	assert.False(t, Empty.Matches(struct{}{}))
	assert.True(t, Empty.Matches(nil))
}
