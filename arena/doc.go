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

// Package arena implements a region allocator over one contiguous block.
//
// # Overview
//
// An Arena hands out memory by moving a frontier through its block. Nothing
// is freed individually: the most recent allocation can be given back with
// Release, everything else lives until Reset, until the scratch or scope
// arena it came from is discarded, or until Close.
//
//	a := arena.NewSize(1 << 20)
//	defer a.Close()
//
//	b, _ := a.Alloc(8, 8, 4, 0)       // 4 zeroed 8-byte elements
//	p := arena.Must(arena.NewOf[T](a)) // typed allocation
//
// # Running out of memory
//
// By default a failed allocation is fatal. Checkpoint binds a resumption
// point: a hard failure inside it rewinds the arena and returns oom == true.
// SoftFail (per call) or WithSoftFail (per arena) turn failures into errors.
//
//	oom, err := a.Checkpoint(func() error {
//		return build(a)
//	})
//
// # Borrowing
//
// Scratch borrows the free space from the other end of the block, so the
// parent and the scratch arena never overlap. Scope snapshots the frontier
// and rewinds it on Close, locking the parent meanwhile.
//
// # Demand paging
//
// NewReserved reserves an address range and commits it step by step as
// allocations need it (see package unsafex/vmem).
package arena
