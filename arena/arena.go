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
	"errors"
	"unsafe"

	"github.com/bytedance/gopkg/lang/dirtmake"
	"github.com/bytedance/gopkg/lang/mcache"

	"github.com/cloudwego/arenakit/unsafex/vmem"
)

// MaxAlign is the largest alignment any Go value needs.
// It's used by Allocate and Realloc, which know nothing about the stored type.
const MaxAlign = 16

// Flag changes how a single allocation behaves.
type Flag uint8

const (
	// SoftFail returns an error on failure instead of unwinding to a checkpoint.
	SoftFail Flag = 1 << iota
	// NoZero skips zero-filling the returned memory.
	NoZero
)

// Committer extends the usable prefix of a reserved range.
// *vmem.Reservation implements it.
type Committer interface {
	// Bytes returns the whole reserved range.
	Bytes() []byte
	// Committed returns the usable prefix length.
	Committed() int
	// Commit makes one more step usable and returns the new prefix length.
	// It returns vmem.ErrExhausted when nothing is left to commit.
	Commit() (int, error)
	Close() error
}

// region is the backing store shared by an arena and every scratch or scope
// arena derived from it.
//
//	0 <= lo <= hi <= committed <= len(buf)
//
// Forward arenas allocate [lo, ...) upward, backward arenas allocate
// (..., hi] downward. buf[committed:] must never be touched.
type region struct {
	buf       []byte
	base      uintptr
	lo        int
	hi        int
	committed int
	gen       uint32
	derived   []*Arena // open scratch and scope arenas, in opening order
	lastID    uint64
	commit    Committer
	free      func() error
	opts      *options
}

// Arena is a bump allocator over a single contiguous block.
//
// An Arena is not goroutine-safe and every value it returns is only valid
// until the arena is reset or closed, or until the scratch or scope arena it
// came from is discarded.
type Arena struct {
	r      *region
	back   bool
	origin int // frontier position at creation, Reset rewinds here
	parent *Arena
	locked *Arena // ancestor locked while this arena is open
	id     uint64 // opening order among derived arenas of the region
	cp     *checkpoint
	locks  int // open scopes and same-direction scratches depending on this arena
	open   int // scratch and scope arenas derived from this one and not discarded
	closed bool
}

// New returns an arena allocating from buf. The caller keeps ownership of buf
// and must keep it alive for as long as the arena is used.
//
// A nil or empty buf requests a demand-paged arena with a reservation of
// vmem.DefaultReserve bytes, see NewReserved. New panics if that reservation
// fails.
func New(buf []byte, opts ...Option) *Arena {
	if len(buf) == 0 {
		a, err := NewReserved(vmem.DefaultReserve, vmem.DefaultStep, opts...)
		if err != nil {
			panic(err)
		}
		return a
	}
	return newArena(buf, len(buf), nil, nil, opts)
}

// NewSize returns an arena over a newly allocated block of size bytes.
func NewSize(size int, opts ...Option) *Arena {
	if size <= 0 {
		(*Arena)(nil).invalid("NewSize", "size must be > 0, got %d", size)
	}
	// not zeroed here, Alloc zeroes on demand
	buf := dirtmake.Bytes(size, size)
	return newArena(buf, size, nil, nil, opts)
}

// NewPooled returns an arena over a pooled block of size bytes.
// The block goes back to the pool on Close.
func NewPooled(size int, opts ...Option) *Arena {
	if size <= 0 {
		(*Arena)(nil).invalid("NewPooled", "size must be > 0, got %d", size)
	}
	buf := mcache.Malloc(size)
	return newArena(buf[:size:size], size, nil, func() error {
		mcache.Free(buf)
		return nil
	}, opts)
}

// NewReserved returns an arena over a reservation of reserve bytes that is
// backed step bytes at a time, when the committed part runs out.
func NewReserved(reserve, step int, opts ...Option) (*Arena, error) {
	res, err := vmem.Reserve(reserve, step)
	if err != nil {
		return nil, &Error{Kind: CommitFailed, Op: "NewReserved", Size: reserve, Count: 1, Align: 1, Err: err}
	}
	return NewCommitted(res, opts...), nil
}

// NewCommitted returns an arena over c. c is closed by Close.
func NewCommitted(c Committer, opts ...Option) *Arena {
	return newArena(c.Bytes(), c.Committed(), c, c.Close, opts)
}

func newArena(buf []byte, committed int, c Committer, free func() error, opts []Option) *Arena {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	r := &region{
		buf:       buf,
		hi:        committed,
		committed: committed,
		commit:    c,
		free:      free,
		opts:      o,
	}
	if len(buf) > 0 {
		r.base = uintptr(unsafe.Pointer(&buf[0]))
	}
	return &Arena{r: r}
}

// use checks that a may allocate.
func (a *Arena) use(op string) {
	if a == nil || a.r == nil {
		a.violation(op, "nil or closed arena")
	}
	if a.closed {
		a.violation(op, "arena already discarded")
	}
	if a.locks > 0 {
		a.violation(op, "arena is borrowed by an open scope or scratch")
	}
}

// live checks that a may be inspected.
func (a *Arena) live(op string) *region {
	if a == nil || a.r == nil || a.closed {
		a.violation(op, "nil or closed arena")
	}
	return a.r
}

// attach registers c, a scratch or scope arena derived from c.parent.
func (r *region) attach(c *Arena) {
	r.lastID++
	c.id = r.lastID
	r.derived = append(r.derived, c)
	c.parent.open++
	if c.locked != nil {
		c.locked.locks++
	}
}

// detach makes c unusable and undoes what attach did. Frontiers are left
// to the caller.
func (r *region) detach(c *Arena) {
	c.closed = true
	c.parent.open--
	if c.locked != nil {
		c.locked.locks--
	}
	for i := len(r.derived) - 1; i >= 0; i-- {
		if r.derived[i] == c {
			r.derived = append(r.derived[:i], r.derived[i+1:]...)
			break
		}
	}
}

// Alloc allocates count elements of size bytes each, aligned to align, and
// returns them as one slice of size*count bytes.
//
// size must be > 0, align a power of two and count >= 0; anything else
// aborts. The memory is zeroed unless flags has NoZero.
//
// When the arena is full and backed by a Committer, one more step is
// committed and the request retried until it fits or the reservation is
// exhausted. A request that still doesn't fit returns an *Error if flags has
// SoftFail or the arena was created WithSoftFail; otherwise it unwinds to
// the nearest Checkpoint, or aborts when there is none.
func (a *Arena) Alloc(size, align, count int, flags Flag) ([]byte, error) {
	off, err := a.alloc("Alloc", size, align, count, flags)
	if err != nil {
		return nil, err
	}
	end := off + size*count
	return a.r.buf[off:end:end], nil
}

// AllocOffset is Alloc returning the region offset of the allocation as well.
func (a *Arena) AllocOffset(size, align, count int, flags Flag) (int, []byte, error) {
	off, err := a.alloc("AllocOffset", size, align, count, flags)
	if err != nil {
		return 0, nil, err
	}
	end := off + size*count
	return off, a.r.buf[off:end:end], nil
}

func (a *Arena) alloc(op string, size, align, count int, flags Flag) (int, error) {
	a.use(op)
	if size <= 0 || count < 0 || align <= 0 || align&(align-1) != 0 {
		a.invalid(op, "size=%d align=%d count=%d", size, align, count)
	}
	r := a.r
	for {
		off, ok := r.bump(a.back, size, align, count)
		if ok {
			if flags&NoZero == 0 {
				clear(r.buf[off : off+size*count])
			}
			return off, nil
		}
		grown, err := r.grow()
		if err != nil {
			return 0, a.fail(&Error{Kind: CommitFailed, Op: op, Size: size, Count: count, Align: align, Avail: r.hi - r.lo, Err: err}, flags)
		}
		if !grown {
			return 0, a.fail(&Error{Kind: CapacityExceeded, Op: op, Size: size, Count: count, Align: align, Avail: r.hi - r.lo}, flags)
		}
	}
}

// bump moves the frontier of one direction, or reports false leaving it as is.
func (r *region) bump(back bool, size, align, count int) (int, bool) {
	avail := r.hi - r.lo
	mask := uintptr(align - 1)
	if back {
		if count > avail/size {
			return 0, false
		}
		total := size * count
		pad := int((r.base + uintptr(r.hi-total)) & mask)
		if pad > avail-total {
			return 0, false
		}
		r.hi -= total + pad
		return r.hi, true
	}
	pad := int(-(r.base + uintptr(r.lo)) & mask)
	if pad > avail || count > (avail-pad)/size {
		return 0, false
	}
	off := r.lo + pad
	r.lo = off + size*count
	return off, true
}

// grow commits one more step when possible, that is while nothing lives at
// the backward end: backward data sits right below committed and can't move.
//
// hi == committed implies every open backward arena is empty and starts at
// committed, so they all move up with it.
func (r *region) grow() (bool, error) {
	if r.commit == nil || r.hi != r.committed {
		return false, nil
	}
	n, err := r.commit.Commit()
	if err != nil {
		if errors.Is(err, vmem.ErrExhausted) {
			return false, nil
		}
		return false, err
	}
	r.opts.logger.Debug("arena committed", "name", r.opts.name, "from", r.committed, "to", n)
	for _, c := range r.derived {
		if c.back {
			c.origin = n
		}
	}
	r.committed = n
	r.hi = n
	return true, nil
}

// Release gives back b if it is the most recent allocation of a, i.e. b ends
// exactly at the forward frontier or starts exactly at the backward one.
// Otherwise it does nothing and b stays in use until the arena is reset.
func (a *Arena) Release(b []byte) {
	a.use("Release")
	off, ok := a.Offset(b)
	if !ok || len(b) == 0 {
		return
	}
	r := a.r
	if a.back {
		if off == r.hi {
			r.hi += len(b)
		}
		return
	}
	if off+len(b) == r.lo {
		r.lo = off
	}
}

// Reset discards everything allocated from a.
func (a *Arena) Reset() {
	a.use("Reset")
	if a.back {
		a.r.hi = a.origin
	} else {
		a.r.lo = a.origin
	}
	a.r.gen++
}

// Close releases the backing block of a root arena: pooled blocks go back
// to the pool and reservations are unmapped. Caller-supplied blocks are left
// alone. a is unusable afterwards.
func (a *Arena) Close() error {
	if a == nil || a.r == nil {
		return nil
	}
	if a.parent != nil {
		a.violation("Close", "scratch and scope arenas are discarded by their guard")
	}
	if a.open > 0 {
		a.violation("Close", "scratch or scope arena still open")
	}
	r := a.r
	a.r = nil
	a.closed = true
	if r.free != nil {
		return r.free()
	}
	return nil
}

// Offset returns the region offset of b, and whether b lies in a's region.
// Empty-capacity slices are never in a region.
func (a *Arena) Offset(b []byte) (int, bool) {
	if a == nil || a.r == nil || cap(b) == 0 {
		return 0, false
	}
	p := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	r := a.r
	if p < r.base || p >= r.base+uintptr(len(r.buf)) {
		return 0, false
	}
	return int(p - r.base), true
}

// AtFrontier reports whether b ends exactly where the next forward
// allocation of a starts, so that it can be extended without a copy.
// Always false for backward arenas.
func (a *Arena) AtFrontier(b []byte) bool {
	if a.back || len(b) == 0 {
		return false
	}
	off, ok := a.Offset(b)
	return ok && off+len(b) == a.r.lo
}

// Bytes returns a view of n allocated bytes at region offset off.
// Asking for bytes that aren't allocated aborts.
func (a *Arena) Bytes(off, n int) []byte {
	a.use("Bytes")
	r := a.r
	if off < 0 || n < 0 || !(off+n <= r.lo || (off >= r.hi && off+n <= r.committed)) {
		a.invalid("Bytes", "[%d, %d) is not allocated", off, off+n)
	}
	return r.buf[off : off+n : off+n]
}

// Frontier returns the region offset where the next allocation of a starts
// (forward) or ends (backward).
func (a *Arena) Frontier() int {
	r := a.live("Frontier")
	if a.back {
		return r.hi
	}
	return r.lo
}

// Free returns the bytes left between the two frontiers, not counting what a
// Committer could still add.
func (a *Arena) Free() int {
	r := a.live("Free")
	return r.hi - r.lo
}

// Backward reports whether a allocates toward lower offsets.
func (a *Arena) Backward() bool {
	return a.back
}

// Generation changes whenever allocations of the region are discarded by
// Reset, a checkpoint unwind, or closing a scratch or scope arena.
func (a *Arena) Generation() uint32 {
	return a.live("Generation").gen
}
