// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package geom

// Matrix3 is a row-major 3x3 matrix.
type Matrix3 [3][3]float32

// Matrix3x4 is a row-major 3x4 affine transform.
type Matrix3x4 [3][4]float32

// Matrix4 is a row-major 4x4 matrix.
type Matrix4 [4][4]float32

// Identity matrices.
var (
	Matrix3Identity = Matrix3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	Matrix3x4Identity = Matrix3x4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
	}
	Matrix4Identity = Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
)

func (m Matrix3) String() string {
	return formatFloats(m[0][0], m[0][1], m[0][2], m[1][0], m[1][1], m[1][2], m[2][0], m[2][1], m[2][2])
}

func (m Matrix3x4) String() string {
	return formatFloats(m[0][:]...) + " " + formatFloats(m[1][:]...) + " " + formatFloats(m[2][:]...)
}

func (m Matrix4) String() string {
	return formatFloats(m[0][:]...) + " " + formatFloats(m[1][:]...) + " " +
		formatFloats(m[2][:]...) + " " + formatFloats(m[3][:]...)
}

// ParseMatrix3 parses nine row-major components. Fewer yields the zero matrix.
func ParseMatrix3(s string) Matrix3 {
	var m Matrix3
	f, ok := parseFloats(s, 9)
	if !ok {
		return m
	}
	for i := range 3 {
		copy(m[i][:], f[i*3:i*3+3])
	}
	return m
}

// ParseMatrix3x4 parses twelve row-major components. Fewer yields the zero matrix.
func ParseMatrix3x4(s string) Matrix3x4 {
	var m Matrix3x4
	f, ok := parseFloats(s, 12)
	if !ok {
		return m
	}
	for i := range 3 {
		copy(m[i][:], f[i*4:i*4+4])
	}
	return m
}

// ParseMatrix4 parses sixteen row-major components. Fewer yields the zero matrix.
func ParseMatrix4(s string) Matrix4 {
	var m Matrix4
	f, ok := parseFloats(s, 16)
	if !ok {
		return m
	}
	for i := range 4 {
		copy(m[i][:], f[i*4:i*4+4])
	}
	return m
}
