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
	"context"
	"fmt"

	art "github.com/plar/go-adaptive-radix-tree"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/exlang/exc/ast"
	"github.com/exlang/exc/reporter"
	"github.com/exlang/exc/resolve"
	"github.com/exlang/exc/tables"
)

// FileReader reads a source file's text from wherever files live (disk, an
// in-memory fixture in tests, and so on).
type FileReader func(file string) (string, error)

// Crawl discovers every file transitively imported from entry and sets each
// one as a SourceFile input, so a subsequent CompileFile call over any of
// them has its imports already available.
//
// Batches of files are queried for imports concurrently, bounded by
// parallelism via a semaphore-gated errgroup, but every SetSourceFile call
// for newly discovered files happens only after a batch's goroutines have
// all finished. Input mutation and concurrent querying are never
// interleaved, upholding db.Engine's no-mutation-during-query contract.
//
// err is non-nil if entry itself cannot be read or set, or if ctx is done
// while a batch is being queried; a failure to read an imported file instead
// becomes an UnknownImportFile diagnostic in errs and
// that file is treated as empty text.
func (c *Compiler) Crawl(ctx context.Context, entry string, read FileReader, parallelism int64) (done []string, errs reporter.Errors, err error) {
	entryText, readErr := read(entry)
	if readErr != nil {
		return nil, nil, fmt.Errorf("exc: reading entry file %q: %w", entry, readErr)
	}
	if err := c.SetSourceFile(entry, entryText); err != nil {
		return nil, nil, err
	}

	f := &finder{
		compiler: c,
		read:     read,
		doneSet:  art.New(),
		sem:      semaphore.NewWeighted(parallelism),
	}

	remaining := []string{entry}
	for len(remaining) > 0 {
		remaining, err = f.step(ctx, remaining)
		if err != nil {
			return nil, nil, err
		}
	}

	var files []string
	f.doneSet.ForEach(func(n art.Node) bool {
		files = append(files, string(n.Key()))
		return true
	})
	return files, f.errors, nil
}

type finder struct {
	compiler *Compiler
	read     FileReader
	doneSet  art.Tree
	sem      *semaphore.Weighted
	errors   reporter.Errors
}

type importRef struct {
	file string
	loc  ast.Location
}

// step queries GetImports concurrently for every file in files not already
// marked done, waits for the whole batch, then sequentially reads and
// SetSourceFiles every newly discovered import, returning the set of files
// that step newly added (the next batch to query).
func (f *finder) step(ctx context.Context, files []string) ([]string, error) {
	toQuery := files[:0:0]
	for _, file := range files {
		if _, already := f.doneSet.Search(art.Key(file)); already {
			continue
		}
		f.doneSet.Insert(art.Key(file), struct{}{})
		toQuery = append(toQuery, file)
	}

	discovered := make([][]importRef, len(toQuery))
	g, gctx := errgroup.WithContext(ctx)
	for i, file := range toQuery {
		i, file := i, file
		if err := f.sem.Acquire(gctx, 1); err != nil {
			return nil, err
		}
		g.Go(func() error {
			defer f.sem.Release(1)
			qc := f.compiler.Engine().Query(gctx)
			imports := qc.Get(tables.GetImports, file).([]resolve.Import)
			refs := make([]importRef, len(imports))
			for j, imp := range imports {
				refs[j] = importRef{file: imp.File, loc: imp.Loc}
			}
			discovered[i] = refs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	newFiles := art.New()
	for _, refs := range discovered {
		for _, ref := range refs {
			if _, already := f.doneSet.Search(art.Key(ref.file)); already {
				continue
			}
			newFiles.Insert(art.Key(ref.file), ref.loc)
		}
	}

	var next []string
	newFiles.ForEach(func(n art.Node) bool {
		file := string(n.Key())
		loc := n.Value().(ast.Location)
		text, err := f.read(file)
		if err != nil {
			f.errors = append(f.errors, reporter.UnknownImportFile(loc, file))
			text = ""
		}
		if err := f.compiler.SetSourceFile(file, text); err != nil {
			// SetSourceFile only fails while a query is in flight, which
			// cannot be true here: the batch above has already completed.
			panic(fmt.Sprintf("exc: unexpected error setting source file %q: %v", file, err))
		}
		next = append(next, file)
		return true
	})
	return next, nil
}
