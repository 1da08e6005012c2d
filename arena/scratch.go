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

// Scratch borrows the free space of a from the opposite end.
//
// The returned arena allocates from the other frontier of the same region,
// so a and the scratch arena can be used in any interleaving without ever
// returning overlapping bytes: a request that would make the two frontiers
// cross fails like any allocation that doesn't fit.
//
// done discards everything allocated from the scratch arena and makes it
// unusable; call it with defer. Values allocated from the scratch arena must
// not be used after done. While the scratch arena is open, the nearest
// ancestor allocating in the same direction (if any) is locked.
func (a *Arena) Scratch() (scratch *Arena, done func()) {
	a.use("Scratch")
	r := a.r
	s := &Arena{r: r, back: !a.back, parent: a}
	if s.back {
		s.origin = r.hi
	} else {
		s.origin = r.lo
	}
	// a scratch of a scratch allocates at the same end as an ancestor
	for p := a.parent; p != nil; p = p.parent {
		if p.back == s.back {
			s.locked = p
			break
		}
	}
	r.attach(s)
	return s, func() {
		if s.closed {
			return
		}
		if s.open > 0 {
			s.violation("Scratch", "discarding a scratch arena with open children")
		}
		// origin may have moved up with commit growth
		if s.back {
			r.hi = s.origin
		} else {
			r.lo = s.origin
		}
		r.detach(s)
		r.gen++
		r.opts.logger.Debug("arena scratch discarded", "name", r.opts.name, "backward", s.back)
	}
}

// Scope is a guard over a snapshot of an arena's frontier.
//
//	s := a.Scope()
//	defer s.Close()
//	tmp := s.Arena()
//
// The scope arena allocates from the same frontier as the parent, which is
// locked until Close. Close rewinds the frontier to the snapshot, discarding
// everything allocated in the scope, and makes the scope arena unusable.
type Scope struct {
	child *Arena
}

// Scope opens a snapshot scope on a.
func (a *Arena) Scope() *Scope {
	a.use("Scope")
	child := &Arena{r: a.r, back: a.back, parent: a, locked: a, origin: a.Frontier()}
	a.r.attach(child)
	return &Scope{child: child}
}

// Arena returns the arena to allocate from inside the scope.
func (s *Scope) Arena() *Arena {
	return s.child
}

// Close discards the scope. It's safe to call more than once, and a no-op
// for a scope already dropped by a checkpoint unwind.
func (s *Scope) Close() {
	c := s.child
	if c.closed {
		return
	}
	if c.open > 0 {
		c.violation("Scope.Close", "discarding a scope with open children")
	}
	r := c.r
	if c.back {
		r.hi = c.origin
	} else {
		r.lo = c.origin
	}
	r.detach(c)
	r.gen++
	r.opts.logger.Debug("arena scope closed", "name", r.opts.name, "frontier", c.origin)
}
