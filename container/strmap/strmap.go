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

// Package strmap implements a string-keyed hash map whose keys, items and
// hashtable live in memory handed out by an arena.Allocator.
package strmap

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"unsafe"

	"github.com/bytedance/gopkg/util/xxhash3"

	"github.com/cloudwego/arenakit/arena"
	"github.com/cloudwego/arenakit/unsafex"
)

// ErrNoMemory is returned when the allocator can't serve a request.
var ErrNoMemory = errors.New("strmap: allocator out of memory")

// StrMap maps strings to values of type V.
//
// Keys are copied into one data block, items are kept in insertion order and
// chained through a prime-sized hashtable, the same layout as a frozen map
// but growable. Every block comes from the allocator and is replaced by a
// larger one when full, the old one is handed back with Release.
//
// type V must NOT contain Go pointers to heap memory, the allocator memory is
// not scanned by the GC.
type StrMap[V any] struct {
	alloc  arena.Allocator
	hasher func(string) uint64

	data      []byte
	items     []mapItem[V]
	hashtable []int32 // slot -> index of the first item, -1 if empty
}

type mapItem[V any] struct {
	off  int
	sz   uint32
	hash uint32
	next int32 // index of the next item in the same slot, -1 for the last
	v    V
}

type config struct {
	hasher   func(string) uint64
	capacity int
}

// Option configures a StrMap.
type Option func(*config)

// WithHasher replaces the default xxhash3 hasher.
func WithHasher(h func(string) uint64) Option {
	return func(c *config) { c.hasher = h }
}

// WithCapacity reserves room for n items.
func WithCapacity(n int) Option {
	return func(c *config) { c.capacity = n }
}

// New creates a StrMap allocating from alloc.
func New[V any](alloc arena.Allocator, opts ...Option) *StrMap[V] {
	c := config{hasher: xxhash3.HashString}
	for _, opt := range opts {
		opt(&c)
	}
	m := &StrMap[V]{alloc: alloc, hasher: c.hasher}
	if c.capacity > 0 {
		// best effort, Put grows on demand anyway
		if items, ok := growBlock(alloc, m.items, c.capacity); ok {
			m.items = items
		}
	}
	return m
}

// growBlock returns a block of at least need elements holding a copy of old.
func growBlock[T any](alloc arena.Allocator, old []T, need int) ([]T, bool) {
	n := cap(old) * 2
	if n < need {
		n = need
	}
	if n < 8 {
		n = 8
	}
	var zero T
	b := alloc.Allocate(n * int(unsafe.Sizeof(zero)))
	if b == nil {
		return old, false
	}
	ret := unsafex.SliceOf[T](b, n)[:len(old)]
	copy(ret, old)
	if cap(old) > 0 {
		alloc.Release(unsafex.BytesOf(old))
	}
	return ret, true
}

// Len returns the number of items.
func (m *StrMap[V]) Len() int {
	return len(m.items)
}

// Put sets the value of k, copying k into the map on first insertion.
// It returns ErrNoMemory if the allocator can't hold the map any longer, the
// map is left unchanged in that case.
func (m *StrMap[V]) Put(k string, v V) error {
	h := m.hasher(k)
	if p := m.lookup(k, uint32(h)); p != nil {
		p.v = v
		return nil
	}
	n := len(m.items)
	if n == cap(m.items) {
		items, ok := growBlock(m.alloc, m.items, n+1)
		if !ok {
			return ErrNoMemory
		}
		m.items = items
	}
	if len(m.data)+len(k) > cap(m.data) {
		data, ok := growBlock(m.alloc, m.data, len(m.data)+len(k))
		if !ok {
			return ErrNoMemory
		}
		m.data = data
	}
	slots, ok := calcHashtableSlots(n + 1)
	if !ok {
		return fmt.Errorf("strmap: too many items: %d", n+1)
	}
	if int(slots) != len(m.hashtable) {
		if err := m.rehash(slots); err != nil {
			return err
		}
	}
	off := len(m.data)
	m.data = append(m.data, k...) // never reallocates, capacity checked above
	m.items = m.items[:n+1]
	m.items[n] = mapItem[V]{off: off, sz: uint32(len(k)), hash: uint32(h), v: v}
	m.link(int32(n))
	return nil
}

// rehash replaces the hashtable with one of the given size and links every
// item again.
func (m *StrMap[V]) rehash(slots int32) error {
	b := m.alloc.Allocate(int(slots) * 4)
	if b == nil {
		return ErrNoMemory
	}
	old := m.hashtable
	m.hashtable = unsafex.SliceOf[int32](b, int(slots))
	for i := range m.hashtable {
		m.hashtable[i] = -1
	}
	for i := range m.items {
		m.link(int32(i))
	}
	if len(old) > 0 {
		m.alloc.Release(unsafex.BytesOf(old))
	}
	return nil
}

func (m *StrMap[V]) link(i int32) {
	p := &m.items[i]
	slot := p.hash % uint32(len(m.hashtable))
	p.next = m.hashtable[slot]
	m.hashtable[slot] = i
}

func (m *StrMap[V]) lookup(k string, h uint32) *mapItem[V] {
	if len(m.hashtable) == 0 {
		return nil
	}
	for i := m.hashtable[h%uint32(len(m.hashtable))]; i >= 0; {
		p := &m.items[i]
		if p.hash == h && m.key(p) == k {
			return p
		}
		i = p.next
	}
	return nil
}

func (m *StrMap[V]) key(p *mapItem[V]) string {
	return unsafex.BinaryToString(m.data[p.off : p.off+int(p.sz)])
}

// Get returns the value of k and whether it exists.
func (m *StrMap[V]) Get(k string) (V, bool) {
	if p := m.lookup(k, uint32(m.hasher(k))); p != nil {
		return p.v, true
	}
	var v V
	return v, false
}

// Item returns the i-th key and value in insertion order.
// The key is only valid as long as the allocator memory is.
func (m *StrMap[V]) Item(i int) (string, V) {
	p := &m.items[i]
	return m.key(p), p.v
}

// Range calls f for each item in insertion order until f returns false.
func (m *StrMap[V]) Range(f func(k string, v V) bool) {
	for i := range m.items {
		p := &m.items[i]
		if !f(m.key(p), p.v) {
			return
		}
	}
}

// All returns an iterator over the items in insertion order.
func (m *StrMap[V]) All() iter.Seq2[string, V] {
	return m.Range
}

// String returns the items as a human readable string.
func (m *StrMap[V]) String() string {
	b := &strings.Builder{}
	b.WriteString("{\n")
	for i := range m.items {
		k, v := m.Item(i)
		fmt.Fprintf(b, "%q: %v,\n", k, v)
	}
	b.WriteString("}")
	return b.String()
}

func (m *StrMap[V]) debugString() string {
	b := &strings.Builder{}
	b.WriteString("{\n")
	for i := range m.items {
		p := &m.items[i]
		fmt.Fprintf(b, "{off:%d, sz:%d, hash:%d, next:%d, slot:%d, v:%v},\n",
			p.off, p.sz, p.hash, p.next, p.hash%uint32(len(m.hashtable)), p.v)
	}
	fmt.Fprintf(b, "}(slots=%d, datasize=%d)", len(m.hashtable), len(m.data))
	return b.String()
}
