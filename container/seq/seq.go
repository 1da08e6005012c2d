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

// Package seq implements a growable sequence whose storage comes from an arena.
package seq

import (
	"fmt"
	"unsafe"

	"github.com/cloudwego/arenakit/arena"
	"github.com/cloudwego/arenakit/unsafex"
)

// GrowStep is the capacity of the first block and the minimum growth.
const GrowStep = 16

// Seq is a dynamic array allocated from an arena.
//
// The zero value is an empty sequence with no storage. Seq is a value type,
// its elements belong to the arena that allocated them and become invalid
// with it. The arena is passed to every call that may allocate, and may
// differ between calls as long as the elements stay valid.
//
// type T must NOT contain Go pointers to heap memory and must have a non-zero size.
type Seq[T any] struct {
	data []T // data[:cap(data)] is the block
}

// Make returns an empty sequence with room for n elements.
func Make[T any](a *arena.Arena, n int) (Seq[T], error) {
	if n <= 0 {
		return Seq[T]{}, nil
	}
	data, err := arena.NewSlice[T](a, n, 0)
	if err != nil {
		return Seq[T]{}, err
	}
	return Seq[T]{data: data[:0]}, nil
}

// Push appends a zero element and returns a pointer to it.
//
// When the sequence is full it grows first: in place if its block is the
// most recent allocation of a, else into a block 1.5 times larger.
func (s *Seq[T]) Push(a *arena.Arena) (*T, error) {
	if len(s.data) == cap(s.data) {
		if err := s.grow(a); err != nil {
			return nil, err
		}
	}
	n := len(s.data)
	s.data = s.data[:n+1]
	return &s.data[n], nil
}

// Append pushes v.
func (s *Seq[T]) Append(a *arena.Arena, v T) error {
	p, err := s.Push(a)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (s *Seq[T]) grow(a *arena.Arena) error {
	var zero T
	size, align := int(unsafe.Sizeof(zero)), int(unsafe.Alignof(zero))
	c := cap(s.data)
	if c == 0 {
		data, err := arena.NewSlice[T](a, GrowStep, 0)
		if err != nil {
			return err
		}
		s.data = data[:0]
		return nil
	}
	extra := c >> 1
	if extra < GrowStep {
		extra = GrowStep
	}
	block := unsafex.BytesOf(s.data)
	if a.AtFrontier(block) {
		off, _ := a.Offset(block)
		if _, err := a.Alloc(size, 1, extra, 0); err != nil {
			return err
		}
		s.data = unsafex.SliceOf[T](a.Bytes(off, (c+extra)*size), c+extra)[:len(s.data)]
		return nil
	}
	b, err := a.Alloc(size, align, c+extra, 0)
	if err != nil {
		return err
	}
	data := unsafex.SliceOf[T](b, c+extra)
	// copy is a memmove, the old block may overlap a released one
	copy(data, s.data)
	s.data = data[:len(s.data)]
	return nil
}

// Slice returns a copy of n elements starting at start, allocated from a.
// The copy never aliases s. Bounds outside [0, Len()] abort.
func (s Seq[T]) Slice(a *arena.Arena, start, n int) (Seq[T], error) {
	if start < 0 || n < 0 || start > len(s.data) || n > len(s.data)-start {
		a.Abort(&arena.Error{
			Kind: arena.InvalidArgument,
			Op:   "seq.Slice",
			Msg:  fmt.Sprintf("[%d:%d] out of range for length %d", start, start+n, len(s.data)),
		})
	}
	if n == 0 {
		return Seq[T]{}, nil
	}
	data, err := arena.NewSlice[T](a, n, arena.NoZero)
	if err != nil {
		return Seq[T]{}, err
	}
	copy(data, s.data[start:start+n])
	return Seq[T]{data: data}, nil
}

// Len returns the number of elements.
func (s Seq[T]) Len() int {
	return len(s.data)
}

// Cap returns the number of elements the current block holds.
func (s Seq[T]) Cap() int {
	return cap(s.data)
}

// At returns the ith element. It panics if i is out of range.
func (s Seq[T]) At(i int) T {
	return s.data[i]
}

// Items returns the elements as a slice sharing the block.
// Appending to it with the builtin append is not supported.
func (s Seq[T]) Items() []T {
	return s.data[:len(s.data):len(s.data)]
}
