//go:build !unix

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

package vmem

import "github.com/bytedance/gopkg/lang/dirtmake"

func pageSize() int {
	return 4 << 10
}

// the whole range is backed up front, commit only moves the limit
func reserve(size int) ([]byte, error) {
	return dirtmake.Bytes(size, size), nil
}

func commit(b []byte) error {
	clear(b)
	return nil
}

func release(b []byte) error {
	return nil
}
