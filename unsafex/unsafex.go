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

import "unsafe"

// BinaryToString converts []byte to string without copy.
// b must not be modified while the string is in use.
func BinaryToString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// StringToBinary converts string to []byte without copy.
// The result must not be written to.
func StringToBinary(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// SliceOf reinterprets the first n*sizeof(T) bytes of b as a []T.
//
// b must be aligned for T. It panics if b is too short.
func SliceOf[T any](b []byte, n int) []T {
	if n == 0 {
		return nil
	}
	var zero T
	if need := n * int(unsafe.Sizeof(zero)); len(b) < need {
		panic("unsafex: SliceOf: buffer too short")
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n)
}

// BytesOf returns the memory of s[:cap(s)] as bytes.
func BytesOf[T any](s []T) []byte {
	if cap(s) == 0 {
		return nil
	}
	var zero T
	n := cap(s) * int(unsafe.Sizeof(zero))
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), n)
}
