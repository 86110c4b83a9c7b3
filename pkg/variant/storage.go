// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package variant

import "math"

// storage is the payload area of a Variant. Small payloads are packed
// into the four 32-bit slots. Everything else is held in obj: strings,
// resource references, pointers, containers and the boxed matrices.
//
// owner is the Variant that last detached a mutable container box through
// a pointer getter. A Variant that is not the owner holds a box that may be
// shared with a copy.
type storage struct {
	slots [4]uint32
	obj   any
	owner *Variant
}

func (s *storage) setFloat(i int, f float32) { s.slots[i] = math.Float32bits(f) }

func (s *storage) float(i int) float32 { return math.Float32frombits(s.slots[i]) }

func (s *storage) setFloats(fs ...float32) {
	for i, f := range fs {
		s.setFloat(i, f)
	}
}

func (s *storage) setInt(i int, n int32) { s.slots[i] = uint32(n) }

func (s *storage) int(i int) int32 { return int32(s.slots[i]) }

func (s *storage) setDouble(f float64) {
	bits := math.Float64bits(f)
	s.slots[0] = uint32(bits)
	s.slots[1] = uint32(bits >> 32)
}

func (s *storage) double() float64 {
	return math.Float64frombits(uint64(s.slots[1])<<32 | uint64(s.slots[0]))
}
