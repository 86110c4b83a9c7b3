// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

// Package refcount provides an embeddable reference count with a weak
// reference capability.
//
// Types opt in by embedding RefCounted:
//
//	type Scene struct {
//		refcount.RefCounted
//		Name string
//	}
//
//	s := &Scene{Name: "main"}
//	s.AddRef()
//	w := refcount.NewWeak(s)
//	s.ReleaseRef() // w.Get() now returns nil
package refcount

import (
	"reflect"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Object is implemented by pointers to types embedding RefCounted.
type Object interface {
	refCounted() *RefCounted
}

// control is shared between an object and its weak references. It
// outlives the object and records whether it is still alive.
type control struct {
	mu   sync.RWMutex
	obj  Object
	addr uintptr
}

func (c *control) load() Object {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.obj
}

func (c *control) expire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.obj = nil
	c.addr = 0
}

// RefCounted is an embeddable strong reference count. The zero value is
// ready to use with a count of zero.
type RefCounted struct {
	refs    atomic.Int32
	once    sync.Once
	ctrl    atomic.Pointer[control]
	expired atomic.Bool
}

func (r *RefCounted) refCounted() *RefCounted { return r }

// AddRef increments the strong count and returns the new value.
func (r *RefCounted) AddRef() int32 {
	return r.refs.Add(1)
}

// ReleaseRef decrements the strong count and returns the new value. When the
// count reaches zero the object expires.
func (r *RefCounted) ReleaseRef() int32 {
	n := r.refs.Add(-1)
	if n <= 0 {
		r.destroy()
	}
	return n
}

// Refs returns the current strong count.
func (r *RefCounted) Refs() int32 { return r.refs.Load() }

// Expired reports whether the object has been destroyed.
func (r *RefCounted) Expired() bool { return r.expired.Load() }

// Destroy expires the object regardless of its strong count.
func (r *RefCounted) Destroy() { r.destroy() }

func (r *RefCounted) destroy() {
	if !r.expired.CompareAndSwap(false, true) {
		return
	}
	if c := r.ctrl.Load(); c != nil {
		c.expire()
	}
}

// bind attaches the control block on first use. owner is the embedding object.
func (r *RefCounted) bind(owner Object) *control {
	r.once.Do(func() {
		c := &control{obj: owner, addr: addressOf(owner)}
		r.ctrl.Store(c)
		if r.expired.Load() {
			c.expire()
		}
	})
	return r.ctrl.Load()
}

// Address returns the identity address of obj, or 0 for nil.
func Address(obj any) uintptr {
	return addressOf(obj)
}

// Pointer returns obj as a raw pointer, or nil when obj is not a non-nil
// pointer.
func Pointer(obj any) unsafe.Pointer {
	if obj == nil {
		return nil
	}
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil
	}
	return rv.UnsafePointer()
}

func addressOf(obj any) uintptr {
	return uintptr(Pointer(obj))
}
