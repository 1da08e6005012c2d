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

package strmap

import (
	"crypto/rand"
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudwego/arenakit/arena"
)

func randStrings(m, n int) []string {
	b := make([]byte, m*n)
	rand.Read(b)
	ret := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ret = append(ret, string(b[m*i:m*(i+1)]))
	}
	return ret
}

// newStdStrMap generates a map with uniq values
func newStdStrMap(ss []string) map[string]uint {
	v := uint(1)
	m := make(map[string]uint)
	for _, s := range ss {
		_, ok := m[s]
		if !ok {
			m[s] = v
			v++
		}
	}
	return m
}

func newFromStd(t testing.TB, a arena.Allocator, m map[string]uint) *StrMap[uint] {
	sm := New[uint](a)
	for k, v := range m {
		require.NoError(t, sm.Put(k, v))
	}
	return sm
}

func TestStrMap(t *testing.T) {
	a := arena.NewSize(16 << 20)
	defer a.Close()

	ss := randStrings(20, 20000)
	m := newStdStrMap(ss)
	sm := newFromStd(t, a, m)
	require.Equal(t, len(m), sm.Len())
	for i, s := range ss {
		v0 := m[s]
		v1, _ := sm.Get(s)
		require.Equal(t, v0, v1, i)
	}
	for i, s := range randStrings(20, 20000) {
		v0, ok0 := m[s]
		v1, ok1 := sm.Get(s)
		require.Equal(t, ok0, ok1, i)
		require.Equal(t, v0, v1, i)
	}
	m0 := make(map[string]uint)
	for i := 0; i < sm.Len(); i++ {
		s, v := sm.Item(i)
		m0[s] = v
	}
	require.Equal(t, m, m0)
}

func TestStrMapOverwrite(t *testing.T) {
	a := arena.NewSize(4096)
	defer a.Close()

	sm := New[int](a, WithCapacity(4))
	require.NoError(t, sm.Put("x", 1))
	require.NoError(t, sm.Put("y", 2))
	require.NoError(t, sm.Put("x", 3))
	require.Equal(t, 2, sm.Len())
	v, ok := sm.Get("x")
	require.True(t, ok)
	require.Equal(t, 3, v)
	_, ok = sm.Get("z")
	require.False(t, ok)

	// empty key is a key like any other
	require.NoError(t, sm.Put("", 7))
	v, ok = sm.Get("")
	require.True(t, ok)
	require.Equal(t, 7, v)
}

func TestStrMapOrder(t *testing.T) {
	a := arena.NewSize(1 << 16)
	defer a.Close()

	sm := New[int](a)
	for i := 0; i < 100; i++ {
		require.NoError(t, sm.Put(fmt.Sprintf("key-%d", i), i))
	}
	i := 0
	for k, v := range sm.All() {
		require.Equal(t, fmt.Sprintf("key-%d", i), k)
		require.Equal(t, i, v)
		i++
	}
	require.Equal(t, 100, i)

	n := 0
	sm.Range(func(k string, v int) bool {
		n++
		return n < 10
	})
	require.Equal(t, 10, n)
}

func TestStrMapHasher(t *testing.T) {
	a := arena.NewSize(1 << 14)
	defer a.Close()

	// every key in the same slot
	sm := New[int](a, WithHasher(func(string) uint64 { return 42 }))
	for i := 0; i < 50; i++ {
		require.NoError(t, sm.Put(fmt.Sprint(i), i))
	}
	for i := 0; i < 50; i++ {
		v, ok := sm.Get(fmt.Sprint(i))
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}

func TestStrMapNoMemory(t *testing.T) {
	a := arena.NewSize(512, arena.WithSoftFail())
	defer a.Close()

	sm := New[int64](a)
	var err error
	n := 0
	for ; n < 1000; n++ {
		if err = sm.Put(fmt.Sprintf("some-longer-key-%d", n), int64(n)); err != nil {
			break
		}
	}
	require.ErrorIs(t, err, ErrNoMemory)
	require.Equal(t, n, sm.Len())
	for i := 0; i < n; i++ {
		v, ok := sm.Get(fmt.Sprintf("some-longer-key-%d", i))
		require.True(t, ok)
		require.Equal(t, int64(i), v)
	}
}

func TestStrMapString(t *testing.T) {
	a := arena.NewSize(4096)
	defer a.Close()

	sm := newFromStd(t, a, newStdStrMap([]string{"a", "b", "c"}))
	t.Log(sm.String())
	t.Log(sm.debugString())
}

func BenchmarkGet(b *testing.B) {
	sizes := []int{20, 50, 100}
	nn := []int{100000, 200000}

	for _, n := range nn {
		for _, sz := range sizes {
			ss := randStrings(sz, n)
			m := newStdStrMap(ss)
			b.Run(fmt.Sprintf("std-keysize_%d_n_%d", sz, n), func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					_ = m[ss[i%len(ss)]]
				}
			})
			b.Run(fmt.Sprintf("new-keysize_%d_n_%d", sz, n), func(b *testing.B) {
				a := arena.New(nil)
				defer a.Close()
				sm := newFromStd(b, a, m)
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					sm.Get(ss[i%len(ss)])
				}
			})
		}
	}
}

func BenchmarkGC(b *testing.B) {
	sizes := []int{20, 100}
	nn := []int{100000, 400000}

	for _, n := range nn {
		for _, sz := range sizes {
			ss := randStrings(sz, n)
			m := newStdStrMap(ss)
			b.Run(fmt.Sprintf("std-keysize_%d_n_%d", sz, n), func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					runtime.GC()
				}
			})

			a := arena.New(nil)
			sm := newFromStd(b, a, m)
			m = nil
			runtime.GC()

			b.Run(fmt.Sprintf("new-keysize_%d_n_%d", sz, n), func(b *testing.B) {
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					runtime.GC()
				}
			})

			_ = m // fix lint ineffassign of m = nil
			runtime.KeepAlive(sm)
			a.Close()
		}
	}
}
