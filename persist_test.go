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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Deserializing a serialized cache must restore the SourceFile inputs that
// SaveCache persisted, so a fresh compiler produces identical output.
func TestCacheRoundTrip(t *testing.T) {
	c := New()
	ctx := context.Background()
	require.NoError(t, c.SetSourceFile("input.ex", "def x = 1\nprint x"))
	require.NoError(t, c.SetSourceFile("lib.ex", "def helper = 2"))

	wantText, wantErrs := c.CompileFile(ctx, "input.ex")
	require.Empty(t, wantErrs)

	var buf bytes.Buffer
	require.NoError(t, c.SaveCache(&buf))

	c2 := New()
	c2.LoadCache(&buf)

	gotText, gotErrs := c2.CompileFile(ctx, "input.ex")
	assert.Empty(t, gotErrs)
	assert.Equal(t, wantText, gotText)
}

// A corrupt or version-mismatched cache stream must not propagate an error,
// and must leave the compiler as if no cache had been loaded at all.
func TestCorruptCacheYieldsEmptyDatabase(t *testing.T) {
	c := New()
	c.LoadCache(bytes.NewReader([]byte("not a valid gob stream")))

	require.NoError(t, c.SetSourceFile("input.ex", "def x = 1\nprint x"))
	_, errs := c.CompileFile(context.Background(), "input.ex")
	assert.Empty(t, errs)
}
