// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package refcount

// WeakRef is a non-owning handle to a RefCounted object. It never changes
// the strong count. The zero value is a null reference.
type WeakRef struct {
	ctrl *control
}

// NewWeak returns a weak reference to obj. A nil obj yields a null reference.
func NewWeak(obj Object) WeakRef {
	if obj == nil || addressOf(obj) == 0 {
		return WeakRef{}
	}
	return WeakRef{ctrl: obj.refCounted().bind(obj)}
}

// Get returns the target, or nil once it has been destroyed.
func (w WeakRef) Get() Object {
	if w.ctrl == nil {
		return nil
	}
	return w.ctrl.load()
}

// Expired reports whether the target is gone. A null reference is expired.
func (w WeakRef) Expired() bool {
	return w.Get() == nil
}

// Addr returns the target's address, or 0 when expired.
func (w WeakRef) Addr() uintptr {
	if w.ctrl == nil {
		return 0
	}
	w.ctrl.mu.RLock()
	defer w.ctrl.mu.RUnlock()
	return w.ctrl.addr
}

// Same reports whether w and o currently refer to the same live object.
// Two null or expired references are the same.
func (w WeakRef) Same(o WeakRef) bool {
	return w.Addr() == o.Addr()
}
