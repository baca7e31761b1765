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

package ipp

import (
	"strings"

	"github.com/pkg/errors"
)

// frame is an owned name -> Value map. A local frame is the same map moved
// between two roles (temporary, top-of-local-stack): there is no aliasing,
// PUSHFRAME/POPFRAME move ownership rather than copying.
type frame map[string]Value

// frames holds the three addressable memory frames: global (always
// present), temporary (optional), and a stack of local frames (only the
// top is addressable).
type frames struct {
	global  frame
	temp    frame // nil when absent
	locals  []frame
}

func newFrames() *frames {
	return &frames{global: make(frame)}
}

// varRef splits "FRAME@NAME" into its two parts.
func varRef(name string) (string, string, error) {
	fr, n, ok := strings.Cut(name, "@")
	if !ok {
		return "", "", newFault(FaultFrame, errors.Errorf("malformed variable reference %q", name))
	}
	return fr, n, nil
}

// resolve returns the addressable frame map for the given FRAME prefix, or
// a frame fault if that frame does not currently exist.
func (f *frames) resolve(fr string) (frame, error) {
	switch fr {
	case "GF":
		return f.global, nil
	case "TF":
		if f.temp == nil {
			return nil, newFault(FaultFrame, errors.New("temporary frame does not exist"))
		}
		return f.temp, nil
	case "LF":
		if len(f.locals) == 0 {
			return nil, newFault(FaultFrame, errors.New("local frame stack is empty"))
		}
		return f.locals[len(f.locals)-1], nil
	default:
		return nil, newFault(FaultFrame, errors.Errorf("unknown frame %q", fr))
	}
}

// Declared reports whether the referenced variable has been declared.
func (f *frames) Declared(name string) (bool, error) {
	fr, n, err := varRef(name)
	if err != nil {
		return false, err
	}
	m, err := f.resolve(fr)
	if err != nil {
		return false, err
	}
	_, ok := m[n]
	return ok, nil
}

// Define declares a new Uninitialised variable. Redefining an existing
// variable is a semantic fault.
func (f *frames) Define(name string) error {
	fr, n, err := varRef(name)
	if err != nil {
		return err
	}
	m, err := f.resolve(fr)
	if err != nil {
		return err
	}
	if _, ok := m[n]; ok {
		return newFault(FaultSemantic, errors.Errorf("redefinition of variable %q", name))
	}
	m[n] = Uninit
	return nil
}

// Get reads the referenced variable. allowUninit controls whether reading
// an Uninitialised slot is an error (false, the default for most opcodes)
// or returns Uninit as-is (true, used only by TYPE).
func (f *frames) Get(name string, allowUninit bool) (Value, error) {
	fr, n, err := varRef(name)
	if err != nil {
		return Value{}, err
	}
	m, err := f.resolve(fr)
	if err != nil {
		return Value{}, err
	}
	v, ok := m[n]
	if !ok {
		return Value{}, newFault(FaultVariable, errors.Errorf("undeclared variable %q", name))
	}
	if v.Kind == KindUninit && !allowUninit {
		return Value{}, newFault(FaultMissingValue, errors.Errorf("read of uninitialised variable %q", name))
	}
	return v, nil
}

// Set replaces the referenced variable's value. The variable must already
// be declared.
func (f *frames) Set(name string, v Value) error {
	fr, n, err := varRef(name)
	if err != nil {
		return err
	}
	m, err := f.resolve(fr)
	if err != nil {
		return err
	}
	if _, ok := m[n]; !ok {
		return newFault(FaultVariable, errors.Errorf("undeclared variable %q", name))
	}
	m[n] = v
	return nil
}

// CreateFrame replaces TF with a fresh, empty frame, discarding any
// previous one.
func (f *frames) CreateFrame() {
	f.temp = make(frame)
}

// PushFrame moves TF onto the local-frame stack; TF becomes absent.
func (f *frames) PushFrame() error {
	if f.temp == nil {
		return newFault(FaultFrame, errors.New("no temporary frame to push"))
	}
	f.locals = append(f.locals, f.temp)
	f.temp = nil
	return nil
}

// PopFrame moves the top local frame back into TF.
func (f *frames) PopFrame() error {
	if len(f.locals) == 0 {
		return newFault(FaultFrame, errors.New("no local frame to pop"))
	}
	n := len(f.locals) - 1
	f.temp = f.locals[n]
	f.locals = f.locals[:n]
	return nil
}

// LocalDepth reports how many frames are on the local-frame stack, for
// diagnostics.
func (f *frames) LocalDepth() int { return len(f.locals) }
