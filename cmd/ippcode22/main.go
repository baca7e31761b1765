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

// Command ippcode22 runs an IPPcode22 program described as an XML
// document against a program-input stream, writing program output to
// stdout and DPRINT output to stderr.
package main

import (
	"fmt"
	"os"

	"github.com/ippcode22/interpreter/ipp"
)

// exitCodeError carries a successful-but-nonzero EXIT return code through
// the cobra RunE path, so atExit has one funnel for every termination.
type exitCodeError struct{ code int }

func (e exitCodeError) Error() string { return fmt.Sprintf("program exited with code %d", e.code) }

func main() {
	os.Exit(atExit(newRootCmd().Execute()))
}

// atExit maps the outcome of a run to a process exit code, grounded on
// the teacher's atExit in cmd/retro/main.go: no error exits 0, an EXIT
// code exits with that code, faults print their cause to stderr and exit
// with their kind's code, and any other error is printed and exits 59.
func atExit(err error) int {
	if err == nil {
		return 0
	}
	var ec exitCodeError
	if errAs(err, &ec) {
		return ec.code
	}
	if f, ok := ipp.AsFault(err); ok {
		fmt.Fprintf(os.Stderr, "ippcode22: %s\n", f.Error())
		if debug || trace {
			fmt.Fprintf(os.Stderr, "%+v\n", f)
		}
		return f.Kind.ExitCode()
	}
	fmt.Fprintf(os.Stderr, "ippcode22: %s\n", err)
	return 59
}

// errAs reports whether err itself is an exitCodeError and, if so, stores
// it in target. It is a direct type check and does not unwrap err.
func errAs(err error, target *exitCodeError) bool {
	ec, ok := err.(exitCodeError)
	if !ok {
		return false
	}
	*target = ec
	return true
}
