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

// Package xfnv implements 64-bit FNV-1a without allocating a hash.Hash64.
//
// The result is the same as hash/fnv.New64a on every platform.
package xfnv

const (
	Offset64 = uint64(14695981039346656037) // fnv hash offset64
	Prime64  = uint64(1099511628211)
)

// Hash returns the FNV-1a hash of b.
func Hash(b []byte) uint64 {
	return Add(Offset64, b)
}

// HashStr returns the FNV-1a hash of s.
func HashStr(s string) uint64 {
	h := Offset64
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= Prime64
	}
	return h
}

// Add continues hash h over b, so that Add(Hash(x), y) == Hash(x+y).
func Add(h uint64, b []byte) uint64 {
	for _, c := range b {
		h ^= uint64(c)
		h *= Prime64
	}
	return h
}
