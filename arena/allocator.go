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

// Allocator is the minimal allocation surface for containers that source
// their storage from an arena.
//
// Release only takes effect for the most recent allocation, see
// (*Arena).Release. Memory returned by Allocate stays reachable for as long
// as the allocator does.
type Allocator interface {
	// Allocate returns size bytes aligned to MaxAlign, not zeroed.
	// It returns nil if the allocation failed in soft-fail mode.
	Allocate(size int) []byte
	Release(b []byte)
}

var _ Allocator = (*Arena)(nil)

// Allocate implements Allocator.
func (a *Arena) Allocate(size int) []byte {
	b, err := a.Alloc(1, MaxAlign, size, NoZero)
	if err != nil {
		return nil
	}
	return b
}

// Realloc resizes old to size bytes.
//
// Shrinking returns old[:size]. Growing the most recent allocation extends it
// in place; anything else is moved to a new allocation and old is abandoned.
// Grown bytes are zeroed unless flags has NoZero.
func (a *Arena) Realloc(old []byte, size int, flags Flag) ([]byte, error) {
	if len(old) == 0 {
		return a.Alloc(1, MaxAlign, size, flags)
	}
	if size <= len(old) {
		return old[:size:size], nil
	}
	if a.AtFrontier(old) {
		off, _ := a.Offset(old)
		if _, err := a.Alloc(1, 1, size-len(old), flags); err != nil {
			return nil, err
		}
		return a.Bytes(off, size), nil
	}
	b, err := a.Alloc(1, MaxAlign, size, flags|NoZero)
	if err != nil {
		return nil, err
	}
	n := copy(b, old)
	if flags&NoZero == 0 {
		clear(b[n:])
	}
	return b, nil
}
