// This file is part of ippcode22 - an IPPcode22 interpreter.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ioutil provides small io helpers shared by the interpreter core
// and its CLI front end.
package ioutil

import (
	"io"

	"github.com/pkg/errors"
)

// ErrWriter wraps an io.Writer and remembers the first write error. Every
// WRITE/DPRINT in a program funnels through one of these; the interpreter
// checks Err after each write.
type ErrWriter struct {
	w   io.Writer
	err error
}

// NewErrWriter wraps w.
func NewErrWriter(w io.Writer) *ErrWriter {
	return &ErrWriter{w: w}
}

// WriteString writes s if no previous write has failed. Once a write
// fails, subsequent calls are no-ops and Err keeps returning the first
// error.
func (e *ErrWriter) WriteString(s string) {
	if e.err != nil {
		return
	}
	_, err := io.WriteString(e.w, s)
	if err != nil {
		e.err = errors.Wrap(err, "write output")
	}
}

// Err returns the first write error encountered, if any.
func (e *ErrWriter) Err() error {
	return e.err
}
