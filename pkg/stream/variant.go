// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package stream

import (
	"github.com/samber/oops"

	"github.com/yumeengine/attrcore/pkg/geom"
	"github.com/yumeengine/attrcore/pkg/variant"
)

// MaxDepth bounds collection nesting accepted by ReadVariant.
const MaxDepth = 64

// WriteVariant appends v as a type byte followed by its payload. Pointer
// kinds carry no payload and decode as null pointers.
func (b *Buffer) WriteVariant(v variant.Variant) {
	b.WriteUint8(uint8(v.Type()))
	b.writePayload(v)
}

func (b *Buffer) writePayload(v variant.Variant) {
	switch v.Type() {
	case variant.TypeInt:
		b.WriteInt32(v.Int())
	case variant.TypeBool:
		b.WriteBool(v.Bool())
	case variant.TypeFloat:
		b.WriteFloat32(v.Float())
	case variant.TypeDouble:
		b.WriteFloat64(v.Double())
	case variant.TypeVector2:
		x := v.Vector2()
		b.writeFloats(x.X, x.Y)
	case variant.TypeVector3:
		x := v.Vector3()
		b.writeFloats(x.X, x.Y, x.Z)
	case variant.TypeVector4:
		x := v.Vector4()
		b.writeFloats(x.X, x.Y, x.Z, x.W)
	case variant.TypeQuaternion:
		q := v.Quaternion()
		b.writeFloats(q.W, q.X, q.Y, q.Z)
	case variant.TypeColor:
		c := v.Color()
		b.writeFloats(c.R, c.G, c.B, c.A)
	case variant.TypeIntRect:
		r := v.IntRect()
		b.writeInts(r.Left, r.Top, r.Right, r.Bottom)
	case variant.TypeIntVector2:
		x := v.IntVector2()
		b.writeInts(x.X, x.Y)
	case variant.TypeString:
		b.WriteString(v.StringValue())
	case variant.TypeBuffer:
		b.WriteBytes(v.Buffer())
	case variant.TypeResourceRef:
		ref := v.ResourceRef()
		b.WriteStringHash(ref.Type)
		b.WriteString(ref.Name)
	case variant.TypeResourceRefList:
		l := v.ResourceRefList()
		b.WriteStringHash(l.Type)
		b.writeStrings(l.Names)
	case variant.TypeVariantVector:
		vec := v.VariantVector()
		b.WriteVLE(uint64(len(vec)))
		for _, e := range vec {
			b.WriteVariant(e)
		}
	case variant.TypeVariantMap:
		m := v.VariantMap()
		b.WriteVLE(uint64(len(m)))
		for _, k := range m.Keys() {
			b.WriteStringHash(k)
			b.WriteVariant(m[k])
		}
	case variant.TypeStringVector:
		b.writeStrings(v.StringVector())
	case variant.TypeMatrix3:
		m := v.Matrix3()
		for _, row := range m {
			b.writeFloats(row[:]...)
		}
	case variant.TypeMatrix3x4:
		m := v.Matrix3x4()
		for _, row := range m {
			b.writeFloats(row[:]...)
		}
	case variant.TypeMatrix4:
		m := v.Matrix4()
		for _, row := range m {
			b.writeFloats(row[:]...)
		}
	}
}

func (b *Buffer) writeFloats(fs ...float32) {
	for _, f := range fs {
		b.WriteFloat32(f)
	}
}

func (b *Buffer) writeInts(ns ...int32) {
	for _, n := range ns {
		b.WriteInt32(n)
	}
}

func (b *Buffer) writeStrings(ss []string) {
	b.WriteVLE(uint64(len(ss)))
	for _, s := range ss {
		b.WriteString(s)
	}
}

// ReadVariant decodes one variant written by WriteVariant.
func (b *Buffer) ReadVariant() (variant.Variant, error) {
	return b.readVariant(0)
}

func (b *Buffer) readVariant(depth int) (variant.Variant, error) {
	var v variant.Variant
	if depth > MaxDepth {
		return v, oops.Code(CodeTooDeep).With("max_depth", MaxDepth).Errorf("variant nesting too deep")
	}
	tag, err := b.ReadUint8()
	if err != nil {
		return v, err
	}
	t := variant.Type(tag)
	if !t.Valid() {
		return v, oops.Code(CodeUnknownType).With("type", tag).With("pos", b.pos-1).
			Errorf("unknown variant type")
	}

	switch t {
	case variant.TypeNone:
	case variant.TypeInt:
		n, err := b.ReadInt32()
		if err != nil {
			return v, err
		}
		v.SetInt(n)
	case variant.TypeBool:
		x, err := b.ReadBool()
		if err != nil {
			return v, err
		}
		v.SetBool(x)
	case variant.TypeFloat:
		f, err := b.ReadFloat32()
		if err != nil {
			return v, err
		}
		v.SetFloat(f)
	case variant.TypeDouble:
		f, err := b.ReadFloat64()
		if err != nil {
			return v, err
		}
		v.SetDouble(f)
	case variant.TypeVector2:
		f, err := b.readFloats(2)
		if err != nil {
			return v, err
		}
		v.SetVector2(geom.Vector2{X: f[0], Y: f[1]})
	case variant.TypeVector3:
		f, err := b.readFloats(3)
		if err != nil {
			return v, err
		}
		v.SetVector3(geom.Vector3{X: f[0], Y: f[1], Z: f[2]})
	case variant.TypeVector4:
		f, err := b.readFloats(4)
		if err != nil {
			return v, err
		}
		v.SetVector4(geom.Vector4{X: f[0], Y: f[1], Z: f[2], W: f[3]})
	case variant.TypeQuaternion:
		f, err := b.readFloats(4)
		if err != nil {
			return v, err
		}
		v.SetQuaternion(geom.Quaternion{W: f[0], X: f[1], Y: f[2], Z: f[3]})
	case variant.TypeColor:
		f, err := b.readFloats(4)
		if err != nil {
			return v, err
		}
		v.SetColor(geom.Color{R: f[0], G: f[1], B: f[2], A: f[3]})
	case variant.TypeIntRect:
		n, err := b.readInts(4)
		if err != nil {
			return v, err
		}
		v.SetIntRect(geom.IntRect{Left: n[0], Top: n[1], Right: n[2], Bottom: n[3]})
	case variant.TypeIntVector2:
		n, err := b.readInts(2)
		if err != nil {
			return v, err
		}
		v.SetIntVector2(geom.IntVector2{X: n[0], Y: n[1]})
	case variant.TypeString:
		s, err := b.ReadString()
		if err != nil {
			return v, err
		}
		v.SetString(s)
	case variant.TypeBuffer:
		p, err := b.ReadBytes()
		if err != nil {
			return v, err
		}
		v.SetBuffer(p)
	case variant.TypeVoidPtr:
		v.SetVoidPtr(nil)
	case variant.TypePtr:
		v.SetPtr(nil)
	case variant.TypeResourceRef:
		h, err := b.ReadStringHash()
		if err != nil {
			return v, err
		}
		name, err := b.ReadString()
		if err != nil {
			return v, err
		}
		v.SetResourceRef(variant.ResourceRef{Type: h, Name: name})
	case variant.TypeResourceRefList:
		h, err := b.ReadStringHash()
		if err != nil {
			return v, err
		}
		names, err := b.readStrings()
		if err != nil {
			return v, err
		}
		v.SetResourceRefList(variant.ResourceRefList{Type: h, Names: names})
	case variant.TypeVariantVector:
		n, err := b.readCount("variant vector")
		if err != nil {
			return v, err
		}
		vec := make(variant.Vector, 0, n)
		for range n {
			e, err := b.readVariant(depth + 1)
			if err != nil {
				return v, err
			}
			vec = append(vec, e)
		}
		v.SetVariantVector(vec)
	case variant.TypeVariantMap:
		n, err := b.readCount("variant map")
		if err != nil {
			return v, err
		}
		m := make(variant.Map, n)
		for range n {
			k, err := b.ReadStringHash()
			if err != nil {
				return v, err
			}
			e, err := b.readVariant(depth + 1)
			if err != nil {
				return v, err
			}
			m[k] = e
		}
		v.SetVariantMap(m)
	case variant.TypeStringVector:
		ss, err := b.readStrings()
		if err != nil {
			return v, err
		}
		v.SetStringVector(ss)
	case variant.TypeMatrix3:
		f, err := b.readFloats(9)
		if err != nil {
			return v, err
		}
		var m geom.Matrix3
		for i := range m {
			copy(m[i][:], f[i*3:])
		}
		v.SetMatrix3(m)
	case variant.TypeMatrix3x4:
		f, err := b.readFloats(12)
		if err != nil {
			return v, err
		}
		var m geom.Matrix3x4
		for i := range m {
			copy(m[i][:], f[i*4:])
		}
		v.SetMatrix3x4(m)
	case variant.TypeMatrix4:
		f, err := b.readFloats(16)
		if err != nil {
			return v, err
		}
		var m geom.Matrix4
		for i := range m {
			copy(m[i][:], f[i*4:])
		}
		v.SetMatrix4(m)
	}
	return v, nil
}

func (b *Buffer) readFloats(n int) ([]float32, error) {
	out := make([]float32, n)
	for i := range out {
		f, err := b.ReadFloat32()
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func (b *Buffer) readInts(n int) ([]int32, error) {
	out := make([]int32, n)
	for i := range out {
		x, err := b.ReadInt32()
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

// readCount reads an element count. Every element takes at least one byte,
// so a count beyond the remaining bytes is rejected before allocating.
func (b *Buffer) readCount(what string) (int, error) {
	n, err := b.ReadVLE()
	if err != nil {
		return 0, err
	}
	if n > uint64(b.Remaining()) {
		return 0, oops.Code(CodeTruncated).
			With("count", n).
			With("remaining", b.Remaining()).
			With("reading", what).
			Errorf("element count exceeds stream")
	}
	return int(n), nil
}

func (b *Buffer) readStrings() ([]string, error) {
	n, err := b.readCount("strings")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for range n {
		s, err := b.ReadString()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
