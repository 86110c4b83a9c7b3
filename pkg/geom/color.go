// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package geom

// Color is an RGBA color with float channels.
type Color struct{ R, G, B, A float32 }

// Well-known colors. White is the default color.
var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
)

func (c Color) String() string { return formatFloats(c.R, c.G, c.B, c.A) }

// ParseColor parses "r g b" or "r g b a". Alpha defaults to 1.
// Fewer than three components yields ColorWhite.
func ParseColor(s string) Color {
	fields := Fields(s)
	if len(fields) < 3 {
		return ColorWhite
	}
	c := Color{
		R: ParseFloat(fields[0]),
		G: ParseFloat(fields[1]),
		B: ParseFloat(fields[2]),
		A: 1,
	}
	if len(fields) >= 4 {
		c.A = ParseFloat(fields[3])
	}
	return c
}

// IntRect is an integer rectangle.
type IntRect struct{ Left, Top, Right, Bottom int32 }

// IntRectZero is the empty rectangle.
var IntRectZero = IntRect{}

func (r IntRect) String() string { return formatInts(r.Left, r.Top, r.Right, r.Bottom) }

// Width returns Right - Left.
func (r IntRect) Width() int32 { return r.Right - r.Left }

// Height returns Bottom - Top.
func (r IntRect) Height() int32 { return r.Bottom - r.Top }

// ParseIntRect parses "left top right bottom". Fewer than four components
// yields IntRectZero.
func ParseIntRect(s string) IntRect {
	n, ok := parseInts(s, 4)
	if !ok {
		return IntRectZero
	}
	return IntRect{n[0], n[1], n[2], n[3]}
}
