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

package exc

import (
	"bytes"
	"encoding/gob"
	"io"
	"os"

	"github.com/exlang/exc/tables"
)

// cacheVersion is bumped whenever the on-disk cache format changes
// incompatibly. A mismatched or corrupt cache is discarded rather than
// partially loaded.
const cacheVersion = 1

// persistedEntry is one SourceFile input's text plus the revision it was
// last changed at.
type persistedEntry struct {
	Text      string
	ChangedAt uint64
}

// persistedDB is the on-disk shape of a persisted database. Only the
// SourceFile input table is persisted, tagged by its stable numeric id:
// every derived table is cheap to recompute from it, and its value types
// live in packages (parser.Result, types.TypeCheckResult, ...) whose
// internal shape is free to evolve independent of the cache format.
// Persisting only inputs keeps serialize-then-deserialize an exact
// round-trip without registering every pass's result type with
// encoding/gob.
type persistedDB struct {
	Version    int
	TableID    int // always tables.SourceFile's numeric id
	Revision   uint64
	SourceText map[string]persistedEntry
}

// SaveCache serializes every SourceFile input currently held by c to w. A
// subsequent LoadCache (even in a fresh process) restores them, letting the
// crawler and the rest of the pipeline pick up from warm inputs instead of
// re-reading every file from disk.
func (c *Compiler) SaveCache(w io.Writer) error {
	files := c.engine.Snapshot(tables.SourceFile)
	snap := persistedDB{
		Version:    cacheVersion,
		TableID:    int(tables.SourceFile),
		Revision:   c.engine.Revision(),
		SourceText: make(map[string]persistedEntry, len(files)),
	}
	for key, ent := range files {
		snap.SourceText[key] = persistedEntry{Text: ent.Value.(string), ChangedAt: ent.ChangedAt}
	}
	return gob.NewEncoder(w).Encode(snap)
}

// LoadCache deserializes a cache previously written by SaveCache into c,
// restoring every SourceFile input it contains. A corrupt or
// version-mismatched stream is treated as an empty cache: LoadCache leaves
// c untouched rather than propagating a decode error.
func (c *Compiler) LoadCache(r io.Reader) {
	var snap persistedDB
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return
	}
	if snap.Version != cacheVersion || snap.TableID != int(tables.SourceFile) {
		return
	}
	for file, ent := range snap.SourceText {
		_ = c.SetSourceFile(file, ent.Text)
	}
}

// LoadCacheFile is a convenience wrapper around LoadCache that reads from
// path, treating a missing or unreadable file the same as an empty cache.
func LoadCacheFile(c *Compiler, path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	c.LoadCache(f)
}

// SaveCacheFile is a convenience wrapper around SaveCache that writes to
// path, overwriting any existing file.
func SaveCacheFile(c *Compiler, path string) error {
	var buf bytes.Buffer
	if err := c.SaveCache(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
