// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package luabridge

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yumeengine/attrcore/internal/attrdoc"
	"github.com/yumeengine/attrcore/pkg/variant"
)

var tracer = otel.Tracer("attrcore/luabridge")

// DefaultTimeout bounds a single script run when the caller sets none.
const DefaultTimeout = 5 * time.Second

// Runner compiles and runs transform scripts. Compiled chunks are cached by
// content, so repeated runs of one script parse it once.
type Runner struct {
	factory *StateFactory
	timeout time.Duration
	protos  *xsync.MapOf[uint64, *lua.FunctionProto]
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout overrides DefaultTimeout. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) { r.timeout = d }
}

// NewRunner creates a runner backed by factory. A nil factory uses
// NewStateFactory(nil).
func NewRunner(factory *StateFactory, opts ...Option) *Runner {
	if factory == nil {
		factory = NewStateFactory(nil)
	}
	r := &Runner{
		factory: factory,
		timeout: DefaultTimeout,
		protos:  xsync.NewMapOf[uint64, *lua.FunctionProto](),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Compile parses script, or returns the cached chunk for identical source.
func (r *Runner) Compile(script string) (*lua.FunctionProto, error) {
	key := xxhash.Sum64String(script)
	if proto, ok := r.protos.Load(key); ok {
		return proto, nil
	}

	chunk, err := parse.Parse(strings.NewReader(script), "transform")
	if err != nil {
		return nil, oops.In("lua").Code("LUA_SYNTAX").With("operation", "compile").Wrap(err)
	}
	proto, err := lua.Compile(chunk, "transform")
	if err != nil {
		return nil, oops.In("lua").Code("LUA_SYNTAX").With("operation", "compile").Wrap(err)
	}
	r.protos.Store(key, proto)
	return proto, nil
}

func (r *Runner) state(ctx context.Context) (*lua.LState, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
	}
	L, err := r.factory.NewState(ctx)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return L, cancel, nil
}

func runError(ctx context.Context, L *lua.LState, op string, err error) error {
	b := oops.In("lua").With("operation", op)
	if ctxErr := L.Context().Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) && ctx.Err() == nil {
			return b.Code("LUA_TIMEOUT").Hint("script exceeded its time limit").Wrap(err)
		}
		return b.Code("LUA_CANCELLED").Wrap(err)
	}
	return b.Code("LUA_RUNTIME").Wrap(err)
}

// Transform runs script over attrs and returns the resulting map. attrs is
// not modified.
//
// The script sees the attributes as the global table "attrs" and may edit
// it in place. If it defines a global function transform(attrs), that
// function is called and its return value, when a table, replaces the map.
// Attributes that already exist keep their type: a script assigning "1 2 3"
// to a Vector3 attribute stores the parsed vector. New attributes take the
// type FromLua infers.
func (r *Runner) Transform(ctx context.Context, script string, attrs variant.Map) (out variant.Map, err error) {
	ctx, span := tracer.Start(ctx, "lua.transform",
		trace.WithAttributes(attribute.Int("attributes.in", len(attrs))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("attributes.out", len(out)))
		}
		span.End()
	}()

	proto, err := r.Compile(script)
	if err != nil {
		return nil, err
	}
	L, cancel, err := r.state(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer L.Close()

	input := ToLua(L, variant.FromVariantMap(attrs))
	L.SetGlobal("attrs", input)

	L.Push(L.NewFunctionFromProto(proto))
	if err := L.PCall(0, 0, nil); err != nil {
		return nil, runError(ctx, L, "transform", err)
	}

	result := L.GetGlobal("attrs")
	if fn, ok := L.GetGlobal("transform").(*lua.LFunction); ok {
		if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, result); err != nil {
			return nil, runError(ctx, L, "transform", err)
		}
		if ret := L.Get(-1); ret != lua.LNil {
			result = ret
		}
		L.Pop(1)
	}

	tbl, ok := result.(*lua.LTable)
	if !ok {
		return nil, oops.In("lua").Code("LUA_RESULT").
			With("operation", "transform").
			With("returned", result.Type().String()).
			Errorf("transform must produce a table of attributes")
	}

	out = fromLuaMap(tbl, attrs)
	r.factory.logger.DebugContext(ctx, "lua transform complete",
		"attributes_in", len(attrs),
		"attributes_out", len(out))
	return out, nil
}

// Eval runs script with attrs bound as in Transform and returns the first
// value the chunk returns.
func (r *Runner) Eval(ctx context.Context, script string, attrs variant.Map) (variant.Variant, error) {
	proto, err := r.Compile(script)
	if err != nil {
		return variant.Variant{}, err
	}
	L, cancel, err := r.state(ctx)
	if err != nil {
		return variant.Variant{}, err
	}
	defer cancel()
	defer L.Close()

	L.SetGlobal("attrs", ToLua(L, variant.FromVariantMap(attrs)))
	L.Push(L.NewFunctionFromProto(proto))
	if err := L.PCall(0, 1, nil); err != nil {
		return variant.Variant{}, runError(ctx, L, "eval", err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	return FromLua(ret), nil
}

func fromLuaMap(tbl *lua.LTable, hints variant.Map) variant.Map {
	out := variant.Map{}
	tbl.ForEach(func(k, e lua.LValue) {
		key, ok := k.(lua.LString)
		if !ok {
			return
		}
		h, err := attrdoc.ParseKey(string(key))
		if err != nil {
			return
		}
		out[h] = fromLuaHint(e, hints[h])
	})
	return out
}

// fromLuaHint converts lv, preferring the type of hint when lv does not
// carry its own.
func fromLuaHint(lv lua.LValue, hint variant.Variant) variant.Variant {
	if hint.IsEmpty() {
		return FromLua(lv)
	}
	tbl, isTable := lv.(*lua.LTable)
	if isTable {
		if t, tagged := taggedType(tbl); tagged && t != hint.Type() {
			return FromLua(lv)
		}
	}

	switch {
	case hint.Type() == variant.TypeVariantMap && isTable:
		return variant.FromVariantMap(fromLuaMap(tbl, hint.VariantMap()))
	case hint.Type() == variant.TypeVariantVector && isTable:
		prev := hint.VariantVector()
		vec := make(variant.Vector, 0, tbl.Len())
		for i := 1; i <= tbl.Len(); i++ {
			var h variant.Variant
			if i <= len(prev) {
				h = prev[i-1]
			}
			vec = append(vec, fromLuaHint(tbl.RawGetInt(i), h))
		}
		return variant.FromVariantVector(vec)
	default:
		return FromLuaAs(lv, hint.Type())
	}
}
