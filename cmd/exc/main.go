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

// Command exc compiles a single entry source file and its transitive
// imports, writing each file's emitted translation next to its source and
// printing any diagnostics to standard error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/exlang/exc"
	"github.com/exlang/exc/reporter"
)

const defaultCacheFile = ".exc-cache"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("exc", flag.ContinueOnError)
	cacheFile := fs.String("cache", defaultCacheFile, "path to the incremental cache file")
	parallelism := fs.Int64("parallelism", 4, "max concurrent GetImports calls during crawling")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	entry := "input.ex"
	if fs.NArg() > 0 {
		entry = fs.Arg(0)
	}

	c := exc.New()
	exc.LoadCacheFile(c, *cacheFile)

	ctx := context.Background()
	files, crawlErrs, err := c.Crawl(ctx, entry, readFile, *parallelism)
	if err != nil {
		fmt.Fprintf(os.Stderr, "exc: %v\n", err)
		return 1
	}

	h := reporter.NewHandler(nil)
	_ = h.HandleErrors(crawlErrs)

	var entryText string
	for _, file := range files {
		text, compileErrs := c.CompileFile(ctx, file)
		_ = h.HandleErrors(compileErrs)
		if file == entry {
			entryText = text
		}
		if err := writeOutput(file, text); err != nil {
			fmt.Fprintf(os.Stderr, "exc: %v\n", err)
			return 1
		}
	}

	printDiagnostics(os.Stderr, h.Errors())

	fmt.Print(entryText)

	if err := exc.SaveCacheFile(c, *cacheFile); err != nil {
		slog.Error("bug: failed to persist incremental cache", "error", err, "files", len(files))
	}

	return 0
}

// writeOutput writes file's emitted translation to its stem plus ".out",
// skipping the write when the existing contents already match so unchanged
// outputs keep their timestamps.
func writeOutput(file, text string) error {
	out := strings.TrimSuffix(file, ".ex") + ".out"
	if prev, err := os.ReadFile(out); err == nil && string(prev) == text {
		return nil
	}
	if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	return nil
}

// readFile is the FileReader the crawler uses to pull source text off disk.
func readFile(file string) (string, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// printDiagnostics groups diagnostics by file and prints a
// "file:line:col: message" line for each.
func printDiagnostics(w *os.File, errs reporter.Errors) {
	byFile := map[string]reporter.Errors{}
	var order []string
	for _, e := range errs {
		f := e.Loc().File
		if _, seen := byFile[f]; !seen {
			order = append(order, f)
		}
		byFile[f] = append(byFile[f], e)
	}
	for _, f := range order {
		fmt.Fprintf(w, "%s:\n", f)
		for _, e := range byFile[f] {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
	}
}
