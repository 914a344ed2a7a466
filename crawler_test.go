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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Crawl's result must equal the transitive import closure reachable from
// entry. Here entry imports both b and c, which both import d, so a naive
// crawler that doesn't dedupe by file could visit d twice or miss it; either
// way the final done set must be exactly the four files.
func TestCrawlerCompletenessOverDiamondImportGraph(t *testing.T) {
	files := map[string]string{
		"entry.ex": "import b\nimport c\ndef main = 1",
		"b.ex":     "import d\ndef bVal = 1",
		"c.ex":     "import d\ndef cVal = 1",
		"d.ex":     "def dVal = 1",
	}
	read := func(file string) (string, error) {
		text, ok := files[file]
		if !ok {
			return "", fmt.Errorf("no such file: %s", file)
		}
		return text, nil
	}

	c := New()
	done, errs, err := c.Crawl(context.Background(), "entry.ex", read, 4)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.ElementsMatch(t, []string{"entry.ex", "b.ex", "c.ex", "d.ex"}, done)
}

// A missing imported file becomes an UnknownImportFile diagnostic and is
// treated as empty text, rather than aborting the crawl.
func TestCrawlerReportsUnknownImportFile(t *testing.T) {
	files := map[string]string{
		"entry.ex": "import missing\ndef main = 1",
	}
	read := func(file string) (string, error) {
		text, ok := files[file]
		if !ok {
			return "", fmt.Errorf("no such file: %s", file)
		}
		return text, nil
	}

	c := New()
	done, errs, err := c.Crawl(context.Background(), "entry.ex", read, 4)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "UnknownImportFile", string(errs[0].Kind()))
	assert.ElementsMatch(t, []string{"entry.ex", "missing.ex"}, done)
}

// TestCrawlerFailsOnUnreadableEntry covers the crawler's one hard failure
// mode: the entry file itself cannot be read.
func TestCrawlerFailsOnUnreadableEntry(t *testing.T) {
	read := func(file string) (string, error) {
		return "", fmt.Errorf("permission denied: %s", file)
	}
	c := New()
	_, _, err := c.Crawl(context.Background(), "entry.ex", read, 4)
	assert.Error(t, err)
}

// TestCrawlerTerminatesUnderBoundedConcurrency exercises the crawler's
// semaphore-gated errgroup fan-out: parallelism 1 forces fully sequential
// batches, which must still converge to the same done set in bounded time.
func TestCrawlerTerminatesUnderBoundedConcurrency(t *testing.T) {
	files := map[string]string{
		"entry.ex": "import a\ndef main = 1",
		"a.ex":     "import b\ndef aVal = 1",
		"b.ex":     "import c\ndef bVal = 1",
		"c.ex":     "def cVal = 1",
	}
	read := func(file string) (string, error) {
		text, ok := files[file]
		if !ok {
			return "", fmt.Errorf("no such file: %s", file)
		}
		return text, nil
	}

	c := New()
	resultCh := make(chan []string, 1)
	errCh := make(chan error, 1)
	go func() {
		done, _, err := c.Crawl(context.Background(), "entry.ex", read, 1)
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- done
	}()

	select {
	case done := <-resultCh:
		assert.ElementsMatch(t, []string{"entry.ex", "a.ex", "b.ex", "c.ex"}, done)
	case err := <-errCh:
		t.Fatalf("Crawl failed: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("Crawl did not terminate under parallelism 1")
	}
}
