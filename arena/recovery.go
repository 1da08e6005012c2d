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

// checkpoint holds the region state to restore on unwind.
type checkpoint struct {
	lo, hi    int
	committed int
	lastID    uint64 // derived arenas opened later are dropped on unwind
}

// unwind is the panic value carrying an allocation failure to its checkpoint.
// It never escapes this package: it's only raised when a checkpoint is active.
type unwind struct {
	cp  *checkpoint
	err *Error
}

// Checkpoint runs fn with a resumption point bound to a.
//
// If an allocation made by fn, on a or on any scratch or scope arena derived
// from it, fails without SoftFail, control returns here: both frontiers are
// restored to what they were when Checkpoint was called and Checkpoint
// returns oom == true with the allocation error. Otherwise it returns fn's
// result with oom == false.
//
// Scratch and scope arenas opened by fn and still open when it unwinds are
// discarded, their done funcs and Close become no-ops. An arena holds at most
// one active checkpoint; nesting on the same arena aborts.
func (a *Arena) Checkpoint(fn func() error) (oom bool, err error) {
	if a == nil || a.r == nil || a.closed {
		a.violation("Checkpoint", "nil or closed arena")
	}
	if a.cp != nil {
		a.violation("Checkpoint", "arena already has an active checkpoint")
	}
	r := a.r
	cp := &checkpoint{lo: r.lo, hi: r.hi, committed: r.committed, lastID: r.lastID}
	a.cp = cp
	defer func() {
		a.cp = nil
		v := recover()
		if v == nil {
			return
		}
		u, ok := v.(*unwind)
		if !ok || u.cp != cp {
			panic(v)
		}
		a.rollback(cp)
		r.opts.logger.Debug("arena checkpoint resumed", "name", r.opts.name, "error", u.err)
		oom, err = true, u.err
	}()
	return false, fn()
}

func (a *Arena) rollback(cp *checkpoint) {
	r := a.r
	for i := len(r.derived) - 1; i >= 0; i-- {
		if c := r.derived[i]; c.id > cp.lastID {
			r.detach(c)
		}
	}
	r.lo = cp.lo
	if cp.hi == cp.committed {
		// nothing lived at the backward end, keep whatever was committed since
		r.hi = r.committed
	} else {
		r.hi = cp.hi
	}
	r.gen++
}

// fail applies the failure policy to a recoverable allocation error.
func (a *Arena) fail(err *Error, flags Flag) error {
	if flags&SoftFail != 0 || a.r.opts.softFail {
		return err
	}
	for p := a; p != nil; p = p.parent {
		if p.cp != nil {
			panic(&unwind{cp: p.cp, err: err})
		}
	}
	a.Abort(err)
	return err
}

// Must returns v, or aborts with err. It turns a soft-fail result into a
// hard failure at call sites that can't handle running out of memory.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
