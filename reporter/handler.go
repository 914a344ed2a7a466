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

// Reporter receives each diagnostic as it is handled. Returning a non-nil
// error stops the session that owns the Handler.
type Reporter func(Diagnostic) error

// Handler accumulates the diagnostics of one compile session and forwards
// each to an optional Reporter. It is not safe for concurrent use; a session
// hands diagnostics to its Handler sequentially after queries complete.
type Handler struct {
	reporter Reporter
	errs     Errors
	stopped  bool
}

// NewHandler creates a Handler. rep may be nil, in which case diagnostics
// are only accumulated.
func NewHandler(rep Reporter) *Handler {
	return &Handler{reporter: rep}
}

// HandleErrors hands a pass's diagnostic list to the Handler in order. It
// returns ErrInvalidSource once any diagnostic has been handled, or the
// Reporter's error if it chose to stop the session.
func (h *Handler) HandleErrors(errs Errors) error {
	for _, d := range errs {
		if err := h.HandleError(d); err != nil {
			return err
		}
	}
	return h.Err()
}

// HandleError hands a single diagnostic to the Handler.
func (h *Handler) HandleError(d Diagnostic) error {
	if h.stopped {
		return ErrInvalidSource
	}
	h.errs = append(h.errs, d)
	if h.reporter != nil {
		if err := h.reporter(d); err != nil {
			h.stopped = true
			return err
		}
	}
	return nil
}

// Errors returns every diagnostic handled so far, in handling order.
func (h *Handler) Errors() Errors {
	return h.errs
}

// Err returns ErrInvalidSource if any diagnostic has been handled.
func (h *Handler) Err() error {
	return h.errs.Err()
}
