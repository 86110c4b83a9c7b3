// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

// Package luabridge runs sandboxed Lua scripts over attribute maps.
package luabridge

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/yumeengine/attrcore/pkg/variant"
)

// safeLibrary represents a Lua library that is safe to load in sandboxed state.
type safeLibrary struct {
	name string
	fn   lua.LGFunction
}

// defaultSafeLibraries returns the libraries loaded into every state.
// Blocked: os, io, debug, package, coroutine, channel.
func defaultSafeLibraries() []safeLibrary {
	return []safeLibrary{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
}

// Base library functions that reach the filesystem or compile arbitrary code.
var unsafeBaseFunctions = []string{"dofile", "loadfile", "loadstring", "load", "require", "module"}

// StateFactory creates sandboxed Lua states with only safe libraries and the
// variant helper module.
type StateFactory struct {
	libraries []safeLibrary
	logger    *slog.Logger
}

// NewStateFactory creates a state factory. A nil logger uses slog.Default.
func NewStateFactory(logger *slog.Logger) *StateFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateFactory{
		libraries: defaultSafeLibraries(),
		logger:    logger,
	}
}

// NewState creates a fresh Lua state bound to ctx. Cancelling ctx aborts
// running scripts.
func (f *StateFactory) NewState(ctx context.Context) (*lua.LState, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	for _, lib := range f.libraries {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, oops.In("lua").With("library", lib.name).Hint("failed to open library").Wrap(err)
		}
	}

	for _, fn := range unsafeBaseFunctions {
		L.SetGlobal(fn, lua.LNil)
	}

	f.registerModule(L)
	L.SetContext(ctx)
	return L, nil
}

// registerModule installs the global "variant" table:
//
//	variant.new(type, text)  builds a typed value from its text form
//	variant.type(value)      returns the type name a value converts to
//	variant.text(value)      returns the text form of a value
//	variant.log(msg, ...)    writes an info record with key/value pairs
func (f *StateFactory) registerModule(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "new", L.NewFunction(func(L *lua.LState) int {
		t := variant.TypeFromName(L.CheckString(1))
		if t == variant.TypeNone {
			L.ArgError(1, "unknown variant type")
			return 0
		}
		L.Push(ToLua(L, variant.ParseType(t, L.OptString(2, ""))))
		return 1
	}))
	L.SetField(mod, "type", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(FromLua(L.Get(1)).TypeName()))
		return 1
	}))
	L.SetField(mod, "text", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(FromLua(L.Get(1)).String()))
		return 1
	}))
	L.SetField(mod, "log", L.NewFunction(func(L *lua.LState) int {
		msg := L.CheckString(1)
		args := make([]any, 0, L.GetTop()-1)
		for i := 2; i <= L.GetTop(); i++ {
			args = append(args, L.Get(i).String())
		}
		f.logger.InfoContext(L.Context(), msg, args...)
		return 0
	}))
	L.SetGlobal("variant", mod)
}
