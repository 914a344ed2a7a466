// Copyright 2020-2023 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package db implements the query engine: a database of memoized query
// tables, keyed by a stable per-kind numeric id, that tracks dependencies
// between queries and performs early cutoff both at the entry level (a
// dependency's changed-at revision is unchanged since last use) and at the
// value level (a recomputed value compares equal to its predecessor).
package db

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// TableID identifies a query kind. Each kind's id is stable so serialized
// caches can tag their tables by number.
type TableID uint8

// ComputeFunc recomputes the value for key. It must only observe other
// queries through qc.Get, so that its dependency set is recorded completely.
type ComputeFunc func(qc *QueryCtx, key any) any

type entry struct {
	value      any
	deps       []depRef
	verifiedAt uint64
	changedAt  uint64
}

type depRef struct {
	table     TableID
	key       any
	changedAt uint64
}

type table struct {
	mu      sync.Mutex
	entries map[any]*entry
	compute ComputeFunc // nil for input tables
	sf      singleflight.Group
}

// Engine is the database. It is safe for concurrent use: reads (Get) may run
// on many goroutines at once; writes (SetInput) are mutually exclusive with
// any in-progress Get, anywhere in the engine.
type Engine struct {
	mu       sync.RWMutex
	revision uint64
	inFlight int64 // atomic

	tablesMu sync.RWMutex
	tables   map[TableID]*table
}

// NewEngine creates an empty database with no registered tables.
func NewEngine() *Engine {
	return &Engine{tables: map[TableID]*table{}}
}

// RegisterInput declares table as an input query kind: it has no
// dependencies and its values are only ever set with SetInput.
func (e *Engine) RegisterInput(t TableID) {
	e.tablesMu.Lock()
	defer e.tablesMu.Unlock()
	e.tables[t] = &table{entries: map[any]*entry{}}
}

// RegisterDerived declares table as a derived query kind, computed by fn
// whenever the engine decides recomputation is necessary.
func (e *Engine) RegisterDerived(t TableID, fn ComputeFunc) {
	e.tablesMu.Lock()
	defer e.tablesMu.Unlock()
	e.tables[t] = &table{entries: map[any]*entry{}, compute: fn}
}

func (e *Engine) table(t TableID) *table {
	e.tablesMu.RLock()
	defer e.tablesMu.RUnlock()
	tbl, ok := e.tables[t]
	if !ok {
		panic(fmt.Sprintf("db: table %d was never registered", t))
	}
	return tbl
}

// SnapshotEntry is one input's value and revision stamp, as returned by
// Snapshot for persistence.
type SnapshotEntry struct {
	Value     any
	ChangedAt uint64
}

// Snapshot returns a copy of every entry currently stored in the named
// input table, keyed by its string key. It is intended for persistence
// (see the root package's persist.go), not for use inside a ComputeFunc: it
// does not participate in dependency tracking.
func (e *Engine) Snapshot(t TableID) map[string]SnapshotEntry {
	tbl := e.table(t)
	tbl.mu.Lock()
	defer tbl.mu.Unlock()
	out := make(map[string]SnapshotEntry, len(tbl.entries))
	for k, ent := range tbl.entries {
		key, ok := k.(string)
		if !ok {
			continue
		}
		out[key] = SnapshotEntry{Value: ent.value, ChangedAt: ent.changedAt}
	}
	return out
}

// Revision returns the current global revision counter.
func (e *Engine) Revision() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.revision
}

// SetInput sets the value of an input query. It fails with
// ErrInputMutationDuringQuery if any query is currently executing anywhere
// in the engine (on any goroutine). Every call bumps the global revision; if
// the new value is equal to the previous value, the entry's changedAt is
// left as-is so early cutoff can apply downstream.
func (e *Engine) SetInput(t TableID, key any, value any) error {
	if atomic.LoadInt64(&e.inFlight) > 0 {
		return ErrInputMutationDuringQuery
	}
	tbl := e.table(t)
	if tbl.compute != nil {
		panic(fmt.Sprintf("db: table %d is derived, not an input", t))
	}

	e.mu.Lock()
	e.revision++
	rev := e.revision
	e.mu.Unlock()

	tbl.mu.Lock()
	old, ok := tbl.entries[key]
	changedAt := rev
	if ok && reflect.DeepEqual(old.value, value) {
		changedAt = old.changedAt
	}
	tbl.entries[key] = &entry{value: value, verifiedAt: rev, changedAt: changedAt}
	tbl.mu.Unlock()
	return nil
}

// QueryCtx is handed to a ComputeFunc (and to external callers starting a
// top-level session via Engine.Query). Nested Get calls made through it are
// recorded as dependencies of whichever computation is currently using it,
// if any.
type QueryCtx struct {
	engine *Engine
	ctx    context.Context
	deps   *[]depRef // nil for a root session; non-nil inside a ComputeFunc
}

// Context returns the context.Context this session was started with.
func (qc *QueryCtx) Context() context.Context { return qc.ctx }

// Query starts a root session: a series of Get calls that do not themselves
// become a dependency of anything (used by external drivers such as the
// crawler and the CLI, never by a ComputeFunc).
func (e *Engine) Query(ctx context.Context) *QueryCtx {
	return &QueryCtx{engine: e, ctx: ctx}
}

// Get fetches the current value for (table, key), recomputing it if
// necessary. If qc is itself inside a ComputeFunc, this access is recorded
// as one of that computation's dependencies.
func (qc *QueryCtx) Get(t TableID, key any) any {
	e := qc.engine
	atomic.AddInt64(&e.inFlight, 1)
	defer atomic.AddInt64(&e.inFlight, -1)

	tbl := e.table(t)
	ent := e.resolve(qc.ctx, tbl, t, key)
	if qc.deps != nil {
		*qc.deps = append(*qc.deps, depRef{table: t, key: key, changedAt: ent.changedAt})
	}
	return ent.value
}

// resolve returns a fresh entry for key in tbl, recomputing (at most once
// per revision, even across concurrent callers, via single-flight) if the
// cached entry is missing or stale.
func (e *Engine) resolve(ctx context.Context, tbl *table, t TableID, key any) *entry {
	sfKey := fmt.Sprintf("%v", key)
	v, _, _ := tbl.sf.Do(sfKey, func() (any, error) {
		return e.computeOrReuse(ctx, tbl, t, key), nil
	})
	return v.(*entry)
}

func (e *Engine) computeOrReuse(ctx context.Context, tbl *table, t TableID, key any) *entry {
	rev := e.Revision()

	tbl.mu.Lock()
	ent, ok := tbl.entries[key]
	tbl.mu.Unlock()

	if ok && ent.verifiedAt == rev {
		return ent
	}
	if ok && e.depsUnchanged(ctx, ent.deps, rev) {
		tbl.mu.Lock()
		ent.verifiedAt = rev
		tbl.mu.Unlock()
		return ent
	}

	if tbl.compute == nil {
		if ok {
			// an input whose deps (always empty) are trivially unchanged;
			// should have returned above. Reaching here is a bug.
			panic("db: input table entry failed freshness check")
		}
		panic(fmt.Sprintf("db: input %v in table %d was never set", key, t))
	}

	var childDeps []depRef
	child := &QueryCtx{engine: e, ctx: ctx, deps: &childDeps}
	newValue := tbl.compute(child, key)

	changedAt := rev
	if ok && reflect.DeepEqual(ent.value, newValue) {
		changedAt = ent.changedAt
	}
	newEnt := &entry{value: newValue, deps: childDeps, verifiedAt: rev, changedAt: changedAt}

	tbl.mu.Lock()
	tbl.entries[key] = newEnt
	tbl.mu.Unlock()
	return newEnt
}

// depsUnchanged re-verifies each dependency (recursively, so transitively
// stale dependencies are caught) and reports whether every one's changedAt
// still matches the snapshot taken when the entry being checked was last
// computed.
func (e *Engine) depsUnchanged(ctx context.Context, deps []depRef, rev uint64) bool {
	for _, d := range deps {
		dtbl := e.table(d.table)
		depEnt := e.resolve(ctx, dtbl, d.table, d.key)
		if depEnt.changedAt != d.changedAt {
			return false
		}
	}
	return true
}
