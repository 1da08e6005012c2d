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
	"context"
	"log/slog"
)

// Stats is a snapshot of an arena. Positions are region offsets.
type Stats struct {
	Start     int  // frontier position when the arena was created
	Frontier  int  // current frontier
	End       int  // the opposite frontier, where a's space ends
	Used      int  // bytes allocated by a, padding included
	Free      int  // bytes between the two frontiers
	Committed int  // usable bytes of the region
	Reserved  int  // reserved bytes of the region
	Backward  bool // a allocates toward lower offsets
}

// Stats returns a snapshot of a.
func (a *Arena) Stats() Stats {
	r := a.live("Stats")
	s := Stats{
		Start:     a.origin,
		Free:      r.hi - r.lo,
		Committed: r.committed,
		Reserved:  len(r.buf),
		Backward:  a.back,
	}
	if a.back {
		s.Frontier, s.End = r.hi, r.lo
		s.Used = a.origin - r.hi
	} else {
		s.Frontier, s.End = r.lo, r.hi
		s.Used = r.lo - a.origin
	}
	return s
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("start", s.Start),
		slog.Int("frontier", s.Frontier),
		slog.Int("end", s.End),
		slog.Int("used", s.Used),
		slog.Int("free", s.Free),
		slog.Int("committed", s.Committed),
		slog.Int("reserved", s.Reserved),
		slog.Bool("backward", s.Backward),
	)
}

// Log writes a snapshot of a to the arena logger at info level.
func (a *Arena) Log(ctx context.Context, msg string) {
	o := a.live("Log").opts
	o.logger.InfoContext(ctx, msg, "name", o.name, "arena", a.Stats())
}
