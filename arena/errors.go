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
	"fmt"
	"strings"
)

// Kind classifies an arena failure.
type Kind uint8

const (
	// CapacityExceeded means the request does not fit in the current or
	// maximum reservable capacity.
	CapacityExceeded Kind = iota + 1
	// CommitFailed means the platform refused to back more of a reservation.
	CommitFailed
	// InvalidArgument is a malformed request, e.g. a zero size or bad bounds.
	InvalidArgument
	// InvariantViolation is a misused arena handle.
	InvariantViolation
)

var (
	ErrCapacityExceeded   = errors.New("arena: capacity exceeded")
	ErrCommitFailed       = errors.New("arena: commit failed")
	ErrInvalidArgument    = errors.New("arena: invalid argument")
	ErrInvariantViolation = errors.New("arena: invariant violation")
)

func (k Kind) String() string {
	switch k {
	case CapacityExceeded:
		return "capacity exceeded"
	case CommitFailed:
		return "commit failed"
	case InvalidArgument:
		return "invalid argument"
	case InvariantViolation:
		return "invariant violation"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func (k Kind) sentinel() error {
	switch k {
	case CapacityExceeded:
		return ErrCapacityExceeded
	case CommitFailed:
		return ErrCommitFailed
	case InvalidArgument:
		return ErrInvalidArgument
	case InvariantViolation:
		return ErrInvariantViolation
	}
	return nil
}

// Recoverable reports whether an error of this kind may be returned to or
// unwound into the caller. The other kinds always abort.
func (k Kind) Recoverable() bool {
	return k == CapacityExceeded || k == CommitFailed
}

// Error describes a failed arena operation.
//
// Use errors.Is with ErrCapacityExceeded, ErrCommitFailed, ErrInvalidArgument
// or ErrInvariantViolation to match on Kind.
type Error struct {
	Kind  Kind
	Op    string
	Size  int
	Count int
	Align int
	Avail int
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("arena: ")
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Kind.String())
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	if e.Kind == CapacityExceeded || e.Kind == CommitFailed {
		fmt.Fprintf(&sb, " (size=%d count=%d align=%d avail=%d)", e.Size, e.Count, e.Align, e.Avail)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Abort reports err to the abort hook of a and never returns.
//
// It's the fail-fast path for programmer errors detected by code built on top
// of the arena (bad slice bounds and the like). a may be nil.
func (a *Arena) Abort(err error) {
	if a != nil && a.r != nil && a.r.opts.abort != nil {
		a.r.opts.abort(err)
	}
	// the hook must not resume the caller
	panic(err)
}

func (a *Arena) invalid(op, format string, args ...interface{}) {
	a.Abort(&Error{Kind: InvalidArgument, Op: op, Msg: fmt.Sprintf(format, args...)})
}

func (a *Arena) violation(op, msg string) {
	a.Abort(&Error{Kind: InvariantViolation, Op: op, Msg: msg})
}
