/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package astr implements immutable byte strings owned by an arena.
//
// Strings that end at the arena frontier are extended in place by Concat, so
// building a string piece by piece with no other allocation in between costs
// one copy per piece.
package astr

import (
	"bytes"
	"fmt"

	"github.com/bytedance/gopkg/lang/span"

	"github.com/cloudwego/arenakit/arena"
	"github.com/cloudwego/arenakit/hash/xfnv"
	"github.com/cloudwego/arenakit/unsafex"
)

var spanCache = span.NewSpanCache(1024 * 1024)

// String is an immutable span of bytes.
//
// The bytes belong to the arena that allocated them, or to a Go string for
// strings made by Lit. The zero value is the empty string.
type String struct {
	b []byte
}

// Lit returns s as a String without copying. The bytes are read-only and
// not owned by any arena.
func Lit(s string) String {
	return String{b: unsafex.StringToBinary(s)}
}

// Copy copies b into a.
func Copy(a *arena.Arena, b []byte) (String, error) {
	if len(b) == 0 {
		return String{}, nil
	}
	dst, err := a.Alloc(1, 1, len(b), arena.NoZero)
	if err != nil {
		return String{}, err
	}
	copy(dst, b)
	return String{b: dst}, nil
}

// Clone returns s if it's empty or already ends at the frontier of a,
// a copy of s allocated from a otherwise.
func Clone(a *arena.Arena, s String) (String, error) {
	if len(s.b) == 0 || a.AtFrontier(s.b) {
		return s, nil
	}
	return Copy(a, s.b)
}

// Concat returns head followed by tail.
//
// If head ends at the frontier of a, tail is copied right after it and head
// is extended; otherwise both are copied into a new string, which then ends
// at the frontier (forward arenas only).
func Concat(a *arena.Arena, head, tail String) (String, error) {
	if len(head.b) == 0 {
		return Clone(a, tail)
	}
	if len(tail.b) == 0 {
		return Clone(a, head)
	}
	if a.AtFrontier(head.b) {
		off, _ := a.Offset(head.b)
		dst, err := a.Alloc(1, 1, len(tail.b), arena.NoZero)
		if err != nil {
			return String{}, err
		}
		copy(dst, tail.b)
		return String{b: a.Bytes(off, len(head.b)+len(tail.b))}, nil
	}
	dst, err := a.Alloc(1, 1, len(head.b)+len(tail.b), arena.NoZero)
	if err != nil {
		return String{}, err
	}
	n := copy(dst, head.b)
	copy(dst[n:], tail.b)
	return String{b: dst}, nil
}

// Append returns head followed by b, see Concat.
func Append(a *arena.Arena, head String, b []byte) (String, error) {
	return Concat(a, head, String{b: b})
}

type counter int

func (c *counter) Write(p []byte) (int, error) {
	*c += counter(len(p))
	return len(p), nil
}

// Format formats according to a fmt format specifier into a.
//
// The text is measured first, then written into exactly that many bytes plus
// a terminator, which is given back right away so that the result ends at the
// frontier, ready for Concat.
func Format(a *arena.Arena, format string, args ...interface{}) (String, error) {
	var c counter
	fmt.Fprintf(&c, format, args...)
	n := int(c)
	b, err := a.Alloc(1, 1, n+1, arena.NoZero)
	if err != nil {
		return String{}, err
	}
	out := fmt.Appendf(b[:0], format, args...)
	if len(out) != n {
		a.Abort(&arena.Error{
			Kind: arena.InvariantViolation,
			Op:   "astr.Format",
			Msg:  fmt.Sprintf("formatted %d bytes, measured %d", len(out), n),
		})
	}
	b[n] = 0
	a.Release(b[n:])
	if n == 0 {
		return String{}, nil
	}
	return String{b: b[:n:n]}, nil
}

// Equal reports whether x and y hold the same bytes.
func Equal(x, y String) bool {
	return len(x.b) == len(y.b) && bytes.Equal(x.b, y.b)
}

// Hash returns the 64-bit FNV-1a hash of s.
func (s String) Hash() uint64 {
	return xfnv.Hash(s.b)
}

// Len returns the length of s in bytes.
func (s String) Len() int {
	return len(s.b)
}

// Bytes returns the bytes of s. They must not be modified.
func (s String) Bytes() []byte {
	return s.b
}

// String returns s as a Go string without copying. The result is only valid
// while the arena owning s is.
func (s String) String() string {
	return unsafex.BinaryToString(s.b)
}

// Detach returns a copy of s that doesn't belong to any arena, for values
// that must outlive a scratch or scope arena.
func (s String) Detach() String {
	if len(s.b) == 0 {
		return String{}
	}
	return String{b: spanCache.Copy(s.b)}
}

// TrimLeft drops leading bytes <= ' '.
func (s String) TrimLeft() String {
	i := 0
	for i < len(s.b) && s.b[i] <= ' ' {
		i++
	}
	return String{b: s.b[i:]}
}

// TrimRight drops trailing bytes <= ' '.
func (s String) TrimRight() String {
	n := len(s.b)
	for n > 0 && s.b[n-1] <= ' ' {
		n--
	}
	return String{b: s.b[:n:n]}
}

// Trim drops leading and trailing bytes <= ' '.
func (s String) Trim() String {
	return s.TrimLeft().TrimRight()
}
