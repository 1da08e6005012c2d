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

package astr

import (
	"bytes"
	"iter"
)

// Splitter yields the pieces of a String between separators, without copying.
//
// A string with n separators yields n+1 pieces, empty ones included; the
// empty string yields nothing. Reset starts over.
type Splitter struct {
	src  []byte
	sep  []byte
	set  *[256]bool // non-nil when splitting on any byte of a set
	pos  int
	done bool
}

// SplitChars splits s at every byte found in chars.
func (s String) SplitChars(chars string) *Splitter {
	set := new([256]bool)
	for i := 0; i < len(chars); i++ {
		set[chars[i]] = true
	}
	sp := &Splitter{src: s.b, set: set}
	sp.Reset()
	return sp
}

// SplitString splits s at every occurrence of sep. An empty sep yields s as
// a single piece.
func (s String) SplitString(sep string) *Splitter {
	sp := &Splitter{src: s.b, sep: []byte(sep)}
	sp.Reset()
	return sp
}

// Reset rewinds the splitter to the start of the string.
func (sp *Splitter) Reset() {
	sp.pos = 0
	sp.done = len(sp.src) == 0
}

// Next returns the next piece, or false when there is none left.
func (sp *Splitter) Next() (String, bool) {
	if sp.done {
		return String{}, false
	}
	rest := sp.src[sp.pos:]
	i, w := sp.index(rest)
	if i < 0 {
		sp.done = true
		return String{b: rest}, true
	}
	sp.pos += i + w
	return String{b: rest[:i:i]}, true
}

// index returns the position and width of the first separator in b.
func (sp *Splitter) index(b []byte) (int, int) {
	if sp.set != nil {
		for i, c := range b {
			if sp.set[c] {
				return i, 1
			}
		}
		return -1, 0
	}
	if len(sp.sep) == 0 {
		return -1, 0
	}
	return bytes.Index(b, sp.sep), len(sp.sep)
}

// All returns an iterator over the pieces left, from the current position.
func (sp *Splitter) All() iter.Seq[String] {
	return func(yield func(String) bool) {
		for {
			s, ok := sp.Next()
			if !ok || !yield(s) {
				return
			}
		}
	}
}
