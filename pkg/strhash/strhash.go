// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

// Package strhash provides the 32-bit hashed string identifier used as
// variant map keys and resource type identifiers.
//
// Hashing is one-way. Strings passed through Of are remembered in a
// process-wide reverse registry so identifiers can be printed by name.
package strhash

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/puzpuzpuz/xsync/v3"
)

// Hash is a hashed string identifier.
type Hash uint32

// Zero is the hash of no string.
const Zero Hash = 0

var names = xsync.NewMapOf[Hash, string]()

// Of hashes s and records the reverse mapping. The empty string hashes to Zero.
func Of(s string) Hash {
	if s == "" {
		return Zero
	}
	h := Hash(xxhash.Sum64String(s))
	names.LoadOrStore(h, s)
	return h
}

// Sum hashes s without recording it.
func Sum(s string) Hash {
	if s == "" {
		return Zero
	}
	return Hash(xxhash.Sum64String(s))
}

// Name returns the string registered for h.
func (h Hash) Name() (string, bool) {
	return names.Load(h)
}

// String returns the registered name, or eight lowercase hex digits.
func (h Hash) String() string {
	if name, ok := names.Load(h); ok {
		return name
	}
	return h.Hex()
}

// Hex returns h as eight lowercase hex digits.
func (h Hash) Hex() string {
	return fmt.Sprintf("%08x", uint32(h))
}

// Label returns the registered name, or "#" plus eight hex digits when
// the name is unknown. ParseLabel reverses it without losing the hash.
func (h Hash) Label() string {
	if name, ok := names.Load(h); ok {
		return name
	}
	return "#" + h.Hex()
}

// ParseLabel is the inverse of Label. A leading "#" marks a raw hex hash;
// anything else is hashed with Of. It reports false for malformed hex.
func ParseLabel(s string) (Hash, bool) {
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Zero, false
		}
		return Hash(n), true
	}
	return Of(s), true
}

// Value returns the raw hash.
func (h Hash) Value() uint32 { return uint32(h) }
