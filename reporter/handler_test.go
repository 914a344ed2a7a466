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

package reporter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exlang/exc/ast"
)

func TestHandlerAccumulatesInOrder(t *testing.T) {
	h := NewHandler(nil)
	d1 := NameNotInScope(ast.Unknown("a.ex"), "x")
	d2 := NameNotInScope(ast.Unknown("b.ex"), "y")
	require.Error(t, h.HandleErrors(Errors{d1, d2}))

	got := h.Errors()
	require.Len(t, got, 2)
	assert.Equal(t, d1, got[0])
	assert.Equal(t, d2, got[1])
	assert.ErrorIs(t, h.Err(), ErrInvalidSource)
}

func TestHandlerEmptyHasNoError(t *testing.T) {
	h := NewHandler(nil)
	assert.NoError(t, h.HandleErrors(nil))
	assert.NoError(t, h.Err())
}

func TestHandlerReporterCanStopSession(t *testing.T) {
	stop := errors.New("enough")
	h := NewHandler(func(Diagnostic) error { return stop })

	err := h.HandleError(NameNotInScope(ast.Unknown("a.ex"), "x"))
	assert.ErrorIs(t, err, stop)

	// Once stopped, further diagnostics are refused.
	err = h.HandleError(NameNotInScope(ast.Unknown("a.ex"), "y"))
	assert.ErrorIs(t, err, ErrInvalidSource)
	assert.Len(t, h.Errors(), 1)
}
