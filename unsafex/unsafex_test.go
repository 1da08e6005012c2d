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

package unsafex

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryToString(t *testing.T) {
	b := []byte("hello")
	s := BinaryToString(b)
	assert.Equal(t, string(b), s)
	b[0] = 'x'
	assert.Equal(t, "xello", s)
	assert.Equal(t, "", BinaryToString(nil))
}

func TestStringToBinary(t *testing.T) {
	x := []byte("hello")
	// doesn't use string literal, or `b[0] = 'x'` will panic coz addr is readonly
	s := string(x)
	b := StringToBinary(s)
	assert.Equal(t, s, string(b))
	b[0] = 'x'
	assert.Equal(t, s, string(b))
}

func TestSliceOf(t *testing.T) {
	buf := make([]uint64, 4) // 8-byte aligned backing
	b := BytesOf(buf)
	require.Len(t, b, 32)

	u := SliceOf[uint32](b, 8)
	require.Len(t, u, 8)
	u[2] = 0xFFFFFFFF
	assert.Equal(t, unsafe.Pointer(&buf[0]), unsafe.Pointer(&u[0]))
	assert.NotZero(t, buf[1])

	assert.Nil(t, SliceOf[uint32](b, 0))
	assert.Panics(t, func() { SliceOf[uint64](b, 5) })
}

func TestBytesOf(t *testing.T) {
	assert.Nil(t, BytesOf[int32](nil))
	s := make([]int32, 1, 3)
	assert.Len(t, BytesOf(s), 12)
}

func BenchmarkBinaryToString(b *testing.B) {
	x := []byte("hello")
	for i := 0; i < b.N; i++ {
		_ = BinaryToString(x)
	}
}
