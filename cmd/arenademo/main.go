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

// Command arenademo walks through the arena packages: a checkpoint around
// everything, a scope holding a Fibonacci sequence that grows across a
// scratch arena, and a string map living in the arena.
//
// Run with a small -size to see the out of memory path.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/cloudwego/arenakit/arena"
	"github.com/cloudwego/arenakit/astr"
	"github.com/cloudwego/arenakit/container/seq"
	"github.com/cloudwego/arenakit/container/strmap"
)

var (
	size    = flag.Int("size", 8<<10, "arena size in bytes")
	verbose = flag.Bool("v", false, "log arena internals at debug level")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx := context.Background()
	a := arena.NewSize(*size, arena.WithLogger(logger), arena.WithName("main"))
	a.Log(ctx, "arena")

	oom, err := a.Checkpoint(func() error {
		if err := fibs(ctx, a); err != nil {
			return err
		}
		return table(ctx, a)
	})
	if oom {
		logger.Error("!!! OOM exit !!!", "error", err)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("demo failed", "error", err)
		os.Exit(1)
	}
	a.Log(ctx, "arena")
	_ = a.Close()
}

// fibsList is an intrusive circular list node living in the arena. Its
// pointers only ever point into the same arena.
type fibsList struct {
	next *fibsList
	fibs seq.Seq[int64]
}

// fibs fills a sequence with Fibonacci numbers inside a scope, growing it
// from the scope arena or from a scratch arena on alternate pushes. The list
// holding it is allocated in the scope as well.
func fibs(ctx context.Context, a *arena.Arena) error {
	scope := a.Scope()
	defer scope.Close()
	local := scope.Arena()
	local.Log(ctx, "local")

	head, err := arena.NewOf[fibsList](local)
	if err != nil {
		return err
	}
	head.next = head
	node, err := arena.NewOf[fibsList](local)
	if err != nil {
		return err
	}
	node.next, head.next = head.next, node
	local.Log(ctx, "local")

	scratch, done := local.Scratch()
	defer done()
	scratch.Log(ctx, "scratch")

	s := &node.fibs
	if *s, err = seq.Make[int64](local, 64); err != nil {
		return err
	}
	if err := s.Append(local, 0); err != nil {
		return err
	}
	if err := s.Append(local, 1); err != nil {
		return err
	}
	for i := 2; i < 80; i++ {
		from := local
		if i%2 == 0 {
			from = scratch
		}
		if err := s.Append(from, s.At(i-2)+s.At(i-1)); err != nil {
			return err
		}
	}

	for p := head.next; p != head; p = p.next {
		for _, v := range p.fibs.Items() {
			fmt.Printf("%d ", v)
		}
		fmt.Printf("\nfibs %d:%d\n", p.fibs.Cap(), p.fibs.Len())
	}
	scratch.Log(ctx, "scratch")
	local.Log(ctx, "local")
	return nil
}

// table builds a map in a, formatting the keys in a scratch arena.
func table(ctx context.Context, a *arena.Arena) error {
	a.Log(ctx, "arena")
	m := strmap.New[int64](a)

	tmp, done := a.Scratch()
	defer done()
	key := func(i int) (astr.String, error) {
		tmp.Reset()
		return astr.Format(tmp, "key-%d", i)
	}

	for i := 0; i < 10; i++ {
		k, err := key(i)
		if err != nil {
			return err
		}
		if err := m.Put(k.String(), int64(10000+i)); err != nil {
			return err
		}
		fmt.Printf("%s: %d\n", k, 10000+i)
	}

	for i := 0; i < 100; i++ {
		k, err := key(i)
		if err != nil {
			return err
		}
		v, ok := m.Get(k.String())
		if !ok {
			v, _ = m.Get("key-0")
			fmt.Printf("key-0 found %d!\n", v)
			break
		}
		fmt.Printf("%s found %d!\n", k, v)
	}

	for k, v := range m.All() {
		fmt.Printf("%s, %d\n", k, v)
	}
	return nil
}
