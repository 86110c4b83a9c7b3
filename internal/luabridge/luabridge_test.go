// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package luabridge

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/yumeengine/attrcore/pkg/errutil"
	"github.com/yumeengine/attrcore/pkg/geom"
	"github.com/yumeengine/attrcore/pkg/refcount"
	"github.com/yumeengine/attrcore/pkg/strhash"
	"github.com/yumeengine/attrcore/pkg/variant"
)

type sceneNode struct {
	refcount.RefCounted
	name string
}

func newState(t *testing.T) *lua.LState {
	t.Helper()
	L, err := NewStateFactory(nil).NewState(context.Background())
	require.NoError(t, err)
	t.Cleanup(L.Close)
	return L
}

func TestStateFactory_NewState_LoadsSafeLibraries(t *testing.T) {
	L := newState(t)
	for _, lib := range []string{"table", "string", "math", "variant"} {
		assert.NotEqual(t, lua.LTNil, L.GetGlobal(lib).Type(), lib)
	}
}

func TestStateFactory_NewState_BlocksUnsafeLibraries(t *testing.T) {
	L := newState(t)
	for _, lib := range []string{"os", "io", "debug", "package", "dofile", "loadfile", "loadstring", "load", "require"} {
		assert.Equal(t, lua.LTNil, L.GetGlobal(lib).Type(), lib)
	}
}

func TestStateFactory_LogFunction(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	L, err := NewStateFactory(logger).NewState(context.Background())
	require.NoError(t, err)
	defer L.Close()

	require.NoError(t, L.DoString(`variant.log("hello from lua", "hp", 10)`))
	assert.Contains(t, buf.String(), `"msg":"hello from lua"`)
	assert.Contains(t, buf.String(), `"hp":"10"`)
}

func TestStateFactory_HelperFunctions(t *testing.T) {
	L := newState(t)
	require.NoError(t, L.DoString(`
		v = variant.new("Vector3", "1 2 3")
		kind = variant.type(v)
		text = variant.text(v)
		n = variant.type(5)
	`))
	assert.Equal(t, "Vector3", L.GetGlobal("kind").String())
	assert.Equal(t, "1 2 3", L.GetGlobal("text").String())
	assert.Equal(t, "Int", L.GetGlobal("n").String())
	assert.Error(t, L.DoString(`variant.new("Banana", "1")`))
}

func TestToLua_FromLua_RoundTrip(t *testing.T) {
	node := &sceneNode{name: "root"}
	node.AddRef()
	defer node.ReleaseRef()

	values := []variant.Variant{
		variant.FromInt(-7),
		variant.FromBool(true),
		variant.FromString("hello"),
		variant.FromVector2(geom.Vector2{X: 1, Y: 2}),
		variant.FromVector3(geom.Vector3{X: 1, Y: 2, Z: 3}),
		variant.FromVector4(geom.Vector4{X: 1, Y: 2, Z: 3, W: 4}),
		variant.FromQuaternion(geom.Quaternion{W: 0.5, X: 0.5, Y: 0.5, Z: 0.5}),
		variant.FromColor(geom.Color{R: 0.25, G: 0.5, B: 0.75, A: 1}),
		variant.FromIntRect(geom.IntRect{Left: 1, Top: 2, Right: 3, Bottom: 4}),
		variant.FromIntVector2(geom.IntVector2{X: -1, Y: 9}),
		variant.FromBuffer([]byte{0, 1, 2, 255}),
		variant.FromResourceRef(variant.NewResourceRef("Model", "hero.mdl")),
		variant.FromResourceRef(variant.ResourceRef{Type: strhash.Sum("luabridge-unregistered"), Name: "x"}),
		variant.FromResourceRef(variant.ResourceRef{Type: 0xcafebabe, Name: "hex-hash"}),
		variant.FromResourceRef(variant.NewResourceRef("cafebabe", "hex-name")),
		variant.FromResourceRefList(variant.NewResourceRefList("Material", "a.xml", "b.xml")),
		variant.FromVariantVector(variant.Vector{variant.FromInt(1), variant.FromString("two")}),
		variant.FromVariantVector(variant.Vector{}),
		variant.FromVariantMap(variant.Map{strhash.Of("hp"): variant.FromInt(3)}),
		variant.FromStringVector(variant.StringVector{"a", "b"}),
		variant.FromMatrix3(geom.Matrix3{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}),
		variant.FromMatrix3x4(geom.Matrix3x4Identity),
		variant.FromMatrix4(geom.Matrix4Identity),
		variant.FromPtr(node),
		{},
	}

	L := newState(t)
	for _, v := range values {
		t.Run(v.TypeName(), func(t *testing.T) {
			got := FromLua(ToLua(L, v))
			assert.True(t, v.Equal(got), "got %s %q", got.TypeName(), got.String())
			assert.Equal(t, v.Type(), got.Type())
		})
	}
}

func TestFromLua_Inference(t *testing.T) {
	L := newState(t)
	require.NoError(t, L.DoString(`
		i = 3
		d = 2.5
		big = 1e12
		s = "x"
		b = false
		arr = {1, "two"}
		map = {speed = 1}
		empty = {}
	`))

	tests := []struct {
		global string
		want   variant.Variant
	}{
		{"i", variant.FromInt(3)},
		{"d", variant.FromDouble(2.5)},
		{"big", variant.FromDouble(1e12)},
		{"s", variant.FromString("x")},
		{"b", variant.FromBool(false)},
		{"missing", variant.Variant{}},
		{"arr", variant.FromVariantVector(variant.Vector{variant.FromInt(1), variant.FromString("two")})},
		{"map", variant.FromVariantMap(variant.Map{strhash.Of("speed"): variant.FromInt(1)})},
		{"empty", variant.FromVariantMap(variant.Map{})},
	}
	for _, tt := range tests {
		t.Run(tt.global, func(t *testing.T) {
			got := FromLua(L.GetGlobal(tt.global))
			assert.True(t, tt.want.Equal(got), "got %s %q", got.TypeName(), got.String())
		})
	}
}

func TestFromLuaAs(t *testing.T) {
	L := newState(t)
	require.NoError(t, L.DoString(`rgb = {r = 1, g = 0.5, b = 0}`))

	assert.Equal(t, geom.Vector3{X: 1, Y: 2, Z: 3}, FromLuaAs(lua.LString("1 2 3"), variant.TypeVector3).Vector3())
	assert.Equal(t, float32(2), FromLuaAs(lua.LNumber(2), variant.TypeFloat).Float())
	assert.Equal(t, geom.Color{R: 1, G: 0.5, B: 0, A: 1}, FromLuaAs(L.GetGlobal("rgb"), variant.TypeColor).Color())
	assert.Equal(t, []byte("raw"), FromLuaAs(lua.LString("raw"), variant.TypeBuffer).Buffer())

	mismatch := FromLuaAs(lua.LNumber(1), variant.TypeQuaternion)
	assert.Equal(t, variant.TypeQuaternion, mismatch.Type())
	assert.Equal(t, geom.QuaternionIdentity, mismatch.Quaternion())
}

func sampleAttrs() variant.Map {
	m := variant.Map{}
	m.Set("hp", variant.FromInt(10))
	m.Set("speed", variant.FromFloat(2.5))
	m.Set("pos", variant.FromVector3(geom.Vector3{X: 1, Y: 2, Z: 3}))
	m.Set("dead", variant.FromBool(false))
	m.Set("stats", variant.FromVariantMap(variant.Map{strhash.Of("str"): variant.FromFloat(8)}))
	return m
}

func TestRunner_Transform_InPlace(t *testing.T) {
	attrs := sampleAttrs()
	out, err := NewRunner(nil).Transform(context.Background(), `
		attrs.hp = attrs.hp + 5
		attrs.speed = attrs.speed * 2
		attrs.pos.x = 10
		attrs.stats.str = attrs.stats.str + 1
		attrs.label = "new"
		attrs.tint = variant.new("Color", "1 0 0")
		attrs.dead = nil
	`, attrs)
	require.NoError(t, err)

	assert.True(t, variant.FromInt(15).Equal(out.Get("hp")))
	assert.True(t, variant.FromFloat(5).Equal(out.Get("speed")))
	assert.Equal(t, geom.Vector3{X: 10, Y: 2, Z: 3}, out.Get("pos").Vector3())
	assert.True(t, variant.FromFloat(9).Equal(out.Get("stats").VariantMap().Get("str")))
	assert.True(t, variant.FromString("new").Equal(out.Get("label")))
	assert.Equal(t, geom.Color{R: 1, G: 0, B: 0, A: 1}, out.Get("tint").Color())
	assert.True(t, out.Get("dead").IsEmpty())

	assert.True(t, sampleAttrs().Equal(attrs), "input must not change")
}

func TestRunner_Transform_TextAssignmentKeepsType(t *testing.T) {
	out, err := NewRunner(nil).Transform(context.Background(), `attrs.pos = "4 5 6"`, sampleAttrs())
	require.NoError(t, err)
	assert.Equal(t, variant.TypeVector3, out.Get("pos").Type())
	assert.Equal(t, geom.Vector3{X: 4, Y: 5, Z: 6}, out.Get("pos").Vector3())
}

func TestRunner_Transform_Function(t *testing.T) {
	out, err := NewRunner(nil).Transform(context.Background(), `
		function transform(a)
			return { hp = a.hp * 3, tags = variant.new("StringVector", "x;y") }
		end
	`, sampleAttrs())
	require.NoError(t, err)

	assert.Len(t, out, 2)
	assert.Equal(t, int32(30), out.Get("hp").Int())
	assert.Equal(t, variant.StringVector{"x", "y"}, out.Get("tags").StringVector())
}

func TestRunner_Transform_Errors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		code   string
	}{
		{"syntax", `attrs.hp = `, "LUA_SYNTAX"},
		{"runtime", `error("boom")`, "LUA_RUNTIME"},
		{"sandboxed os", `os.exit(1)`, "LUA_RUNTIME"},
		{"non-table result", `attrs = 5`, "LUA_RESULT"},
		{"non-table return", `function transform(a) return "x" end`, "LUA_RESULT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(nil).Transform(context.Background(), tt.script, sampleAttrs())
			errutil.AssertErrorCode(t, err, tt.code)
		})
	}
}

func TestRunner_Transform_Timeout(t *testing.T) {
	r := NewRunner(nil, WithTimeout(50*time.Millisecond))
	_, err := r.Transform(context.Background(), `while true do end`, variant.Map{})
	errutil.AssertErrorCode(t, err, "LUA_TIMEOUT")
}

func TestRunner_Transform_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := NewRunner(nil, WithTimeout(0)).Transform(ctx, `while true do end`, variant.Map{})
	errutil.AssertErrorCode(t, err, "LUA_CANCELLED")
}

func TestRunner_CompileCachesBySource(t *testing.T) {
	r := NewRunner(nil)
	a, err := r.Compile(`return 1`)
	require.NoError(t, err)
	b, err := r.Compile(`return 1`)
	require.NoError(t, err)
	c, err := r.Compile(`return 2`)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestRunner_Eval(t *testing.T) {
	got, err := NewRunner(nil).Eval(context.Background(), `return attrs.hp * 2`, sampleAttrs())
	require.NoError(t, err)
	assert.True(t, variant.FromInt(20).Equal(got))

	got, err = NewRunner(nil).Eval(context.Background(), `local x = 1`, nil)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}
