// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package geom

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// FormatFloat renders f in the shortest form that parses back to the same float32.
func FormatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// ParseFloat parses a float32 leniently: surrounding space is ignored and
// malformed input yields 0.
func ParseFloat(s string) float32 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0
	}
	return float32(f)
}

// ParseInt parses an int32 leniently. Out-of-range values saturate and
// malformed input yields 0. A fractional part is truncated.
func ParseInt(s string) int32 {
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 10, 32)
	if err == nil {
		return int32(n)
	}
	if errors.Is(err, strconv.ErrRange) {
		return int32(n)
	}
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil {
		return 0
	}
	return int32(f)
}

// Fields splits s on whitespace and commas.
func Fields(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

func formatFloats(values ...float32) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(FormatFloat(v))
	}
	return b.String()
}

func formatInts(values ...int32) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatInt(int64(v), 10))
	}
	return b.String()
}

// parseFloats returns the first n components of s, or false when s has fewer.
func parseFloats(s string, n int) ([]float32, bool) {
	fields := Fields(s)
	if len(fields) < n {
		return nil, false
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = ParseFloat(fields[i])
	}
	return out, true
}

func parseInts(s string, n int) ([]int32, bool) {
	fields := Fields(s)
	if len(fields) < n {
		return nil, false
	}
	out := make([]int32, n)
	for i := range out {
		out[i] = ParseInt(fields[i])
	}
	return out, true
}
