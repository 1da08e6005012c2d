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

package seq

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/arenakit/arena"
)

func base[T any](s Seq[T]) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(s.data)))
}

func TestPushOrder(t *testing.T) {
	a := arena.NewSize(1 << 16)
	defer a.Close()

	var s Seq[int32]
	for i := 0; i < 1000; i++ {
		require.NoError(t, s.Append(a, int32(i)))
	}
	require.Equal(t, 1000, s.Len())
	for i := 0; i < 1000; i++ {
		require.Equal(t, int32(i), s.At(i))
	}
	assert.Len(t, s.Items(), 1000)
}

func TestGrowInPlace(t *testing.T) {
	a := arena.NewSize(1024)
	defer a.Close()

	var s Seq[int64]
	regrowths := 0
	for i := 0; i < 20; i++ {
		c, old := s.Cap(), base(s)
		p, err := s.Push(a)
		require.NoError(t, err)
		*p = int64(i)
		if c != 0 && c != s.Cap() {
			regrowths++
			assert.Equal(t, old, base(s), "same block after growing")
		}
	}
	for i := 0; i < 20; i++ {
		assert.Equal(t, int64(i), s.At(i))
	}
	assert.Equal(t, 1, regrowths)
	assert.Equal(t, 20, s.Len())
	assert.Equal(t, 32, s.Cap())
	assert.Equal(t, 32*8, a.Frontier(), "grown in place, nothing wasted")
}

func TestGrowRelocate(t *testing.T) {
	a := arena.NewSize(4096)
	defer a.Close()

	var s Seq[int64]
	for i := 0; i < GrowStep; i++ {
		require.NoError(t, s.Append(a, int64(i)))
	}
	old := base(s)
	_, _ = a.Alloc(1, 1, 1, 0) // the block is no longer at the frontier
	require.NoError(t, s.Append(a, 16))
	assert.NotEqual(t, old, base(s))
	assert.Equal(t, 16+GrowStep, s.Cap())
	for i := 0; i <= GrowStep; i++ {
		assert.Equal(t, int64(i), s.At(i))
	}

	// 1.5x once past the minimum step
	for s.Len() < s.Cap() {
		require.NoError(t, s.Append(a, 0))
	}
	_, _ = a.Alloc(1, 1, 1, 0)
	require.NoError(t, s.Append(a, 0))
	assert.Equal(t, 48, s.Cap())
}

func TestMake(t *testing.T) {
	a := arena.NewSize(1024)
	defer a.Close()

	s, err := Make[int64](a, 64)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 64, s.Cap())

	z, err := Make[int64](a, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, z.Cap())

	assert.Panics(t, func() { _, _ = Make[int64](a, 1000) })
}

func TestSlice(t *testing.T) {
	a := arena.NewSize(1024)
	defer a.Close()

	var s Seq[uint16]
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Append(a, uint16(i)))
	}
	c, err := s.Slice(a, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, []uint16{2, 3, 4, 5, 6}, c.Items())
	c.Items()[0] = 100
	assert.Equal(t, uint16(2), s.At(2), "copy never aliases")

	e, err := s.Slice(a, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, e.Len())

	for _, b := range [][2]int{{-1, 1}, {0, 11}, {11, 0}, {5, -1}} {
		assert.Panics(t, func() { _, _ = s.Slice(a, b[0], b[1]) }, "%v", b)
	}
}

func TestSliceAbortHook(t *testing.T) {
	var got error
	a := arena.NewSize(1024, arena.WithAbort(func(err error) { got = err }))
	defer a.Close()

	var s Seq[int8]
	assert.Panics(t, func() { _, _ = s.Slice(a, 0, 1) })
	assert.True(t, errors.Is(got, arena.ErrInvalidArgument))
}

func TestSoftFail(t *testing.T) {
	a := arena.NewSize(256, arena.WithSoftFail())
	defer a.Close()

	var s Seq[int64]
	var err error
	for err == nil {
		err = s.Append(a, int64(s.Len()))
	}
	assert.True(t, errors.Is(err, arena.ErrCapacityExceeded))
	assert.Equal(t, 32, s.Len())
	for i := 0; i < s.Len(); i++ {
		assert.Equal(t, int64(i), s.At(i))
	}
}

func BenchmarkAppend(b *testing.B) {
	a := arena.NewSize(1 << 20)
	defer a.Close()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		a.Reset()
		var s Seq[int64]
		for j := 0; j < 1000; j++ {
			_ = s.Append(a, int64(j))
		}
	}
}
