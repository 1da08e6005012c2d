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

package arena

import (
	"unsafe"

	"github.com/cloudwego/arenakit/unsafex"
)

// NewOf allocates a zeroed T in a.
//
// type T must NOT contain Go pointers to heap memory: the garbage collector
// doesn't scan arena memory. Pointers into the same arena are fine.
func NewOf[T any](a *Arena) (*T, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return new(T), nil
	}
	b, err := a.Alloc(size, int(unsafe.Alignof(zero)), 1, 0)
	if err != nil {
		return nil, err
	}
	return (*T)(unsafe.Pointer(unsafe.SliceData(b))), nil
}

// NewSlice allocates n elements of T in a, zeroed unless flags has NoZero.
// See NewOf for the restrictions on T.
func NewSlice[T any](a *Arena, n int, flags Flag) ([]T, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return make([]T, n), nil
	}
	b, err := a.Alloc(size, int(unsafe.Alignof(zero)), n, flags)
	if err != nil {
		return nil, err
	}
	return unsafex.SliceOf[T](b, n), nil
}
