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

// opcodes lists every recognised IPPcode22 instruction name. Anything not
// in this set is an XML-structure fault per §4.5.
var opcodes = [...]string{
	"MOVE", "CREATEFRAME", "PUSHFRAME", "POPFRAME", "DEFVAR",
	"CALL", "RETURN",
	"LABEL", "JUMP", "JUMPIFEQ", "JUMPIFNEQ", "EXIT",
	"PUSHS", "POPS",
	"ADD", "SUB", "MUL", "IDIV",
	"AND", "OR", "NOT",
	"LT", "GT", "EQ",
	"INT2CHAR", "STRI2INT",
	"READ", "WRITE", "DPRINT", "BREAK",
	"CONCAT", "STRLEN", "GETCHAR", "SETCHAR",
	"TYPE",
}

var opcodeSet map[string]bool

func init() {
	opcodeSet = make(map[string]bool, len(opcodes))
	for _, op := range opcodes {
		opcodeSet[op] = true
	}
}

func isKnownOpcode(name string) bool {
	return opcodeSet[name]
}
