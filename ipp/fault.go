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
	"fmt"

	"github.com/pkg/errors"
)

// FaultKind is the closed taxonomy of terminal errors an IPPcode22 program
// can raise. Every fault site in this package produces exactly one kind;
// any other error that reaches Instance.Run (an output write failure, a
// recovered panic) is reported as FaultInternal.
type FaultKind int

// Fault kinds and their process exit codes, per spec §6.
const (
	FaultNone FaultKind = iota
	FaultUsage            // 10: missing required CLI argument
	FaultInputFile        // 11: cannot open input file
	FaultXMLMalformed     // 31: XML not well-formed
	FaultXMLStructure     // 32: XML structurally invalid for IPPcode22
	FaultSemantic         // 52: undefined label, duplicate label, variable redefinition
	FaultType             // 53: incompatible operand types
	FaultVariable         // 54: access to undeclared variable
	FaultFrame            // 55: access to absent TF/LF
	FaultMissingValue     // 56: read of uninitialised value / empty stack
	FaultOperand          // 57: divide by zero, EXIT code out of range
	FaultString           // 58: bad index or bad code point
	FaultInternal         // 59: other internal error
)

// ExitCode returns the process exit status for this fault kind.
func (k FaultKind) ExitCode() int {
	switch k {
	case FaultUsage:
		return 10
	case FaultInputFile:
		return 11
	case FaultXMLMalformed:
		return 31
	case FaultXMLStructure:
		return 32
	case FaultSemantic:
		return 52
	case FaultType:
		return 53
	case FaultVariable:
		return 54
	case FaultFrame:
		return 55
	case FaultMissingValue:
		return 56
	case FaultOperand:
		return 57
	case FaultString:
		return 58
	default:
		return 59
	}
}

func (k FaultKind) String() string {
	switch k {
	case FaultUsage:
		return "usage fault"
	case FaultInputFile:
		return "input file fault"
	case FaultXMLMalformed:
		return "malformed XML"
	case FaultXMLStructure:
		return "XML structure fault"
	case FaultSemantic:
		return "semantic fault"
	case FaultType:
		return "type fault"
	case FaultVariable:
		return "variable fault"
	case FaultFrame:
		return "frame fault"
	case FaultMissingValue:
		return "missing value fault"
	case FaultOperand:
		return "operand fault"
	case FaultString:
		return "string fault"
	default:
		return "internal error"
	}
}

// Fault is the terminal error type surfaced by every component of this
// package. It always wraps a cause via github.com/pkg/errors so a --debug
// run can print the full chain with "%+v".
type Fault struct {
	Kind  FaultKind
	cause error
}

func newFault(kind FaultKind, cause error) *Fault {
	return &Fault{Kind: kind, cause: errors.WithStack(cause)}
}

// Faultf builds a Fault from a formatted message. It is exported so
// callers outside this package (xmlsrc, the CLI) can report faults too.
func Faultf(kind FaultKind, format string, args ...interface{}) *Fault {
	return newFault(kind, errors.Errorf(format, args...))
}

func (f *Fault) Error() string {
	return f.Kind.String() + ": " + f.cause.Error()
}

// Unwrap exposes the wrapped cause for errors.As/errors.Is.
func (f *Fault) Unwrap() error { return f.cause }

// Format proxies to the wrapped cause so "%+v" prints a stack trace, as
// produced by github.com/pkg/errors.
func (f *Fault) Format(s fmt.State, verb rune) {
	if formatter, ok := f.cause.(fmt.Formatter); ok {
		formatter.Format(s, verb)
		return
	}
	fmt.Fprint(s, f.Error())
}

// AsFault extracts the *Fault from err, if any, along with whether one was
// found. A non-Fault error (a programmer bug surfacing as a panic, or an
// unexpected stdlib error) should be wrapped as FaultInternal by the caller.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
