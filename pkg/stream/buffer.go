// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

// Package stream provides a growable byte buffer with little-endian
// primitives and a tagged binary encoding of variants.
package stream

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/samber/oops"

	"github.com/yumeengine/attrcore/pkg/strhash"
	"github.com/yumeengine/attrcore/pkg/variant"
)

// Error codes returned by decoding operations.
const (
	CodeTruncated   = "STREAM_TRUNCATED"
	CodeUnknownType = "STREAM_UNKNOWN_TYPE"
	CodeTooDeep     = "STREAM_TOO_DEEP"
	CodeSeek        = "STREAM_SEEK"
)

// Buffer is a byte buffer with a read position. Writes always append.
// The zero value is an empty buffer ready for use.
type Buffer struct {
	data []byte
	pos  int
}

// NewBuffer returns a buffer holding a copy of data, positioned at the start.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: append([]byte(nil), data...)}
}

// FromVariant returns a buffer over a copy of v's Buffer payload. Other
// kinds yield an empty buffer.
func FromVariant(v variant.Variant) *Buffer {
	return NewBuffer(v.Buffer())
}

// Variant returns a Buffer variant holding a copy of the whole buffer.
func (b *Buffer) Variant() variant.Variant {
	return variant.FromBuffer(b.data)
}

// Bytes returns the whole buffer. The slice aliases the buffer's storage.
func (b *Buffer) Bytes() []byte { return b.data }

// Len returns the total size in bytes.
func (b *Buffer) Len() int { return len(b.data) }

// Pos returns the read position.
func (b *Buffer) Pos() int { return b.pos }

// Remaining returns the number of unread bytes.
func (b *Buffer) Remaining() int { return len(b.data) - b.pos }

// EOF reports whether every byte has been read.
func (b *Buffer) EOF() bool { return b.pos >= len(b.data) }

// Seek moves the read position.
func (b *Buffer) Seek(pos int) error {
	if pos < 0 || pos > len(b.data) {
		return oops.Code(CodeSeek).With("pos", pos).With("len", len(b.data)).
			Errorf("seek position out of range")
	}
	b.pos = pos
	return nil
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
	b.pos = 0
}

// Write appends p. It never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// Read reads up to len(p) bytes from the read position.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.EOF() {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += n
	return n, nil
}

// WriteUint8 appends one byte.
func (b *Buffer) WriteUint8(n uint8) { b.data = append(b.data, n) }

// WriteBool appends 1 or 0.
func (b *Buffer) WriteBool(v bool) {
	if v {
		b.WriteUint8(1)
		return
	}
	b.WriteUint8(0)
}

// WriteUint32 appends n little-endian.
func (b *Buffer) WriteUint32(n uint32) { b.data = binary.LittleEndian.AppendUint32(b.data, n) }

// WriteInt32 appends n little-endian.
func (b *Buffer) WriteInt32(n int32) { b.WriteUint32(uint32(n)) }

// WriteUint64 appends n little-endian.
func (b *Buffer) WriteUint64(n uint64) { b.data = binary.LittleEndian.AppendUint64(b.data, n) }

// WriteFloat32 appends the IEEE bits of f.
func (b *Buffer) WriteFloat32(f float32) { b.WriteUint32(math.Float32bits(f)) }

// WriteFloat64 appends the IEEE bits of f.
func (b *Buffer) WriteFloat64(f float64) { b.WriteUint64(math.Float64bits(f)) }

// WriteVLE appends n as an unsigned varint.
func (b *Buffer) WriteVLE(n uint64) { b.data = binary.AppendUvarint(b.data, n) }

// WriteString appends a length-prefixed string.
func (b *Buffer) WriteString(s string) {
	b.WriteVLE(uint64(len(s)))
	b.data = append(b.data, s...)
}

// WriteBytes appends a length-prefixed byte slice.
func (b *Buffer) WriteBytes(p []byte) {
	b.WriteVLE(uint64(len(p)))
	b.data = append(b.data, p...)
}

// WriteStringHash appends h as a uint32.
func (b *Buffer) WriteStringHash(h strhash.Hash) { b.WriteUint32(uint32(h)) }

func (b *Buffer) take(n int, what string) ([]byte, error) {
	if n < 0 || b.Remaining() < n {
		return nil, oops.Code(CodeTruncated).
			With("need", n).
			With("remaining", b.Remaining()).
			With("reading", what).
			Errorf("unexpected end of stream")
	}
	p := b.data[b.pos : b.pos+n]
	b.pos += n
	return p, nil
}

// ReadUint8 reads one byte.
func (b *Buffer) ReadUint8() (uint8, error) {
	p, err := b.take(1, "uint8")
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// ReadBool reads a byte and reports whether it is non-zero.
func (b *Buffer) ReadBool() (bool, error) {
	n, err := b.ReadUint8()
	return n != 0, err
}

// ReadUint32 reads a little-endian uint32.
func (b *Buffer) ReadUint32() (uint32, error) {
	p, err := b.take(4, "uint32")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

// ReadInt32 reads a little-endian int32.
func (b *Buffer) ReadInt32() (int32, error) {
	n, err := b.ReadUint32()
	return int32(n), err
}

// ReadUint64 reads a little-endian uint64.
func (b *Buffer) ReadUint64() (uint64, error) {
	p, err := b.take(8, "uint64")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(p), nil
}

// ReadFloat32 reads an IEEE float32.
func (b *Buffer) ReadFloat32() (float32, error) {
	n, err := b.ReadUint32()
	return math.Float32frombits(n), err
}

// ReadFloat64 reads an IEEE float64.
func (b *Buffer) ReadFloat64() (float64, error) {
	n, err := b.ReadUint64()
	return math.Float64frombits(n), err
}

// ReadVLE reads an unsigned varint.
func (b *Buffer) ReadVLE() (uint64, error) {
	n, size := binary.Uvarint(b.data[b.pos:])
	if size <= 0 {
		return 0, oops.Code(CodeTruncated).
			With("remaining", b.Remaining()).
			With("reading", "varint").
			Errorf("malformed or truncated varint")
	}
	b.pos += size
	return n, nil
}

// ReadString reads a length-prefixed string.
func (b *Buffer) ReadString() (string, error) {
	p, err := b.readPrefixed("string")
	return string(p), err
}

// ReadBytes reads a length-prefixed byte slice into a new slice.
func (b *Buffer) ReadBytes() ([]byte, error) {
	p, err := b.readPrefixed("bytes")
	if err != nil {
		return nil, err
	}
	return append([]byte{}, p...), nil
}

// ReadStringHash reads a uint32 hashed identifier.
func (b *Buffer) ReadStringHash() (strhash.Hash, error) {
	n, err := b.ReadUint32()
	return strhash.Hash(n), err
}

func (b *Buffer) readPrefixed(what string) ([]byte, error) {
	n, err := b.ReadVLE()
	if err != nil {
		return nil, err
	}
	if n > uint64(b.Remaining()) {
		return nil, oops.Code(CodeTruncated).
			With("need", n).
			With("remaining", b.Remaining()).
			With("reading", what).
			Errorf("length prefix exceeds stream")
	}
	return b.take(int(n), what)
}
