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

// Package vmem reserves a large address range and backs it with memory on
// demand, one fixed step at a time.
//
// On unix the range is mapped PROT_NONE and each Commit flips the next step
// to PROT_READ|PROT_WRITE. Elsewhere the range lives on the Go heap and
// Commit only moves the usable limit.
package vmem

import (
	"errors"
	"fmt"
)

const (
	// DefaultStep is the default commit increment (64KB).
	DefaultStep = 64 << 10

	// DefaultReserve is the default reservation size (64MB).
	DefaultReserve = 64 << 20
)

// ErrExhausted is returned by Commit once the whole reservation is committed.
var ErrExhausted = errors.New("vmem: reservation exhausted")

// Reservation is a reserved address range with a committed prefix.
//
// Only Bytes()[:Committed()] may be touched. Not goroutine-safe.
type Reservation struct {
	data      []byte
	committed int
	step      int
}

// Reserve reserves size bytes and commits the first step.
// Both size and step are rounded up to the page size, and step is capped at size.
func Reserve(size, step int) (*Reservation, error) {
	if size <= 0 {
		return nil, fmt.Errorf("vmem: reservation size must be > 0, got %d", size)
	}
	if step <= 0 {
		step = DefaultStep
	}
	page := pageSize()
	size = roundUp(size, page)
	step = roundUp(step, page)
	if step > size {
		step = size
	}
	data, err := reserve(size)
	if err != nil {
		return nil, fmt.Errorf("vmem: reserve %d bytes: %w", size, err)
	}
	r := &Reservation{data: data, step: step}
	if _, err := r.Commit(); err != nil {
		_ = release(data)
		return nil, err
	}
	return r, nil
}

// Commit backs one more step of the reservation and returns the new
// committed size. The last step may be shorter than Step().
func (r *Reservation) Commit() (int, error) {
	if r.data == nil {
		return 0, errors.New("vmem: reservation closed")
	}
	if r.committed >= len(r.data) {
		return r.committed, ErrExhausted
	}
	n := r.step
	if rest := len(r.data) - r.committed; n > rest {
		n = rest
	}
	if err := commit(r.data[r.committed : r.committed+n]); err != nil {
		return r.committed, fmt.Errorf("vmem: commit %d bytes at %d: %w", n, r.committed, err)
	}
	r.committed += n
	return r.committed, nil
}

// Bytes returns the whole reserved range.
func (r *Reservation) Bytes() []byte {
	return r.data
}

// Committed returns the number of usable bytes at the start of Bytes().
func (r *Reservation) Committed() int {
	return r.committed
}

// Size returns the reserved size.
func (r *Reservation) Size() int {
	return len(r.data)
}

// Step returns the commit increment.
func (r *Reservation) Step() int {
	return r.step
}

// Close releases the reservation. Bytes() must not be used afterwards.
func (r *Reservation) Close() error {
	if r.data == nil {
		return nil
	}
	data := r.data
	r.data = nil
	r.committed = 0
	return release(data)
}

// PageSize returns the granularity sizes and steps are rounded to.
func PageSize() int {
	return pageSize()
}

func roundUp(n, to int) int {
	return (n + to - 1) &^ (to - 1)
}
