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

package ipp_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ippcode22/interpreter/ipp"
	"github.com/ippcode22/interpreter/xmlsrc"
)

// runProgram parses src as XML, loads and runs it against stdin, and
// returns stdout and the exit code. The error from Run is discarded; a
// fault shows up only through its exit code.
func runProgram(t *testing.T, src, stdin string) (string, int) {
	t.Helper()
	root, err := xmlsrc.Parse(strings.NewReader(src))
	require.NoError(t, err)

	program, err := ipp.Load(root, nil)
	require.NoError(t, err)

	var stdout bytes.Buffer
	instance, err := ipp.New(
		ipp.WithProgram(program),
		ipp.WithInput(strings.NewReader(stdin)),
		ipp.WithOutput(&stdout),
	)
	require.NoError(t, err)

	code, _ := instance.Run()
	return stdout.String(), code
}

const header = `<?xml version="1.0" encoding="UTF-8"?><program language="IPPcode22">`

func TestScenario1_MoveAndWrite(t *testing.T) {
	src := header + `
<instruction order="1" opcode="DEFVAR"><arg1 type="var">GF@x</arg1></instruction>
<instruction order="2" opcode="MOVE"><arg1 type="var">GF@x</arg1><arg2 type="int">5</arg2></instruction>
<instruction order="3" opcode="WRITE"><arg1 type="var">GF@x</arg1></instruction>
</program>`
	out, code := runProgram(t, src, "")
	assert.Equal(t, "5", out)
	assert.Equal(t, 0, code)
}

func TestScenario2_WriteUninitialisedIsFault56(t *testing.T) {
	src := header + `
<instruction order="1" opcode="DEFVAR"><arg1 type="var">GF@x</arg1></instruction>
<instruction order="2" opcode="WRITE"><arg1 type="var">GF@x</arg1></instruction>
</program>`
	_, code := runProgram(t, src, "")
	assert.Equal(t, 56, code)
}

func TestScenario3_DuplicateDefvarIsFault52(t *testing.T) {
	src := header + `
<instruction order="1" opcode="DEFVAR"><arg1 type="var">GF@x</arg1></instruction>
<instruction order="2" opcode="DEFVAR"><arg1 type="var">GF@x</arg1></instruction>
</program>`
	_, code := runProgram(t, src, "")
	assert.Equal(t, 52, code)
}

func TestScenario4_IdivByZeroIsFault57(t *testing.T) {
	src := header + `
<instruction order="1" opcode="DEFVAR"><arg1 type="var">GF@a</arg1></instruction>
<instruction order="2" opcode="MOVE"><arg1 type="var">GF@a</arg1><arg2 type="int">7</arg2></instruction>
<instruction order="3" opcode="DEFVAR"><arg1 type="var">GF@b</arg1></instruction>
<instruction order="4" opcode="MOVE"><arg1 type="var">GF@b</arg1><arg2 type="int">0</arg2></instruction>
<instruction order="5" opcode="IDIV"><arg1 type="var">GF@a</arg1><arg2 type="var">GF@a</arg2><arg3 type="var">GF@b</arg3></instruction>
</program>`
	_, code := runProgram(t, src, "")
	assert.Equal(t, 57, code)
}

func TestScenario5_LabelJumpLoopIsBoundedByWatchdog(t *testing.T) {
	root, err := xmlsrc.Parse(strings.NewReader(header + `
<instruction order="1" opcode="LABEL"><arg1 type="label">L</arg1></instruction>
<instruction order="2" opcode="JUMP"><arg1 type="label">L</arg1></instruction>
</program>`))
	require.NoError(t, err)
	program, err := ipp.Load(root, nil)
	require.NoError(t, err)

	instance, err := ipp.New(
		ipp.WithProgram(program),
		ipp.WithMaxInstructions(1000),
	)
	require.NoError(t, err)

	code, err := instance.Run()
	require.Error(t, err)
	assert.Equal(t, 59, code)
}

func TestScenario6_DecodedStringLength(t *testing.T) {
	src := header + `
<instruction order="1" opcode="DEFVAR"><arg1 type="var">GF@s</arg1></instruction>
<instruction order="2" opcode="MOVE"><arg1 type="var">GF@s</arg1><arg2 type="string">ab\000cd</arg2></instruction>
<instruction order="3" opcode="STRLEN"><arg1 type="var">GF@s</arg1><arg2 type="var">GF@s</arg2></instruction>
<instruction order="4" opcode="WRITE"><arg1 type="var">GF@s</arg1></instruction>
</program>`
	out, code := runProgram(t, src, "")
	assert.Equal(t, "5", out)
	assert.Equal(t, 0, code)
}

func TestEqNilRule(t *testing.T) {
	src := header + `
<instruction order="1" opcode="DEFVAR"><arg1 type="var">GF@r</arg1></instruction>
<instruction order="2" opcode="EQ"><arg1 type="var">GF@r</arg1><arg2 type="nil">nil</arg2><arg3 type="nil">nil</arg3></instruction>
<instruction order="3" opcode="WRITE"><arg1 type="var">GF@r</arg1></instruction>
</program>`
	out, code := runProgram(t, src, "")
	assert.Equal(t, "true", out)
	assert.Equal(t, 0, code)
}

func TestLtNilIsTypeFault(t *testing.T) {
	src := header + `
<instruction order="1" opcode="DEFVAR"><arg1 type="var">GF@r</arg1></instruction>
<instruction order="2" opcode="LT"><arg1 type="var">GF@r</arg1><arg2 type="nil">nil</arg2><arg3 type="int">1</arg3></instruction>
</program>`
	_, code := runProgram(t, src, "")
	assert.Equal(t, 53, code)
}

func TestJumpIfUninitialisedOperandTakesPrecedenceOverUnknownLabel(t *testing.T) {
	src := header + `
<instruction order="1" opcode="DEFVAR"><arg1 type="var">GF@x</arg1></instruction>
<instruction order="2" opcode="JUMPIFEQ">
  <arg1 type="label">NOPE</arg1>
  <arg2 type="var">GF@x</arg2>
  <arg3 type="int">2</arg3>
</instruction>
</program>`
	_, code := runProgram(t, src, "")
	assert.Equal(t, 56, code)
}

func TestJumpIfWithUnknownLabelFaultsEvenWhenNotTaken(t *testing.T) {
	src := header + `
<instruction order="1" opcode="JUMPIFEQ">
  <arg1 type="label">NOPE</arg1>
  <arg2 type="int">1</arg2>
  <arg3 type="int">2</arg3>
</instruction>
</program>`
	_, code := runProgram(t, src, "")
	assert.Equal(t, 52, code)
}

func TestExitOutOfRangeIsOperandFault(t *testing.T) {
	src := header + `
<instruction order="1" opcode="EXIT"><arg1 type="int">50</arg1></instruction>
</program>`
	_, code := runProgram(t, src, "")
	assert.Equal(t, 57, code)
}

func TestExitSetsReturnCode(t *testing.T) {
	src := header + `
<instruction order="1" opcode="EXIT"><arg1 type="int">7</arg1></instruction>
</program>`
	_, code := runProgram(t, src, "")
	assert.Equal(t, 7, code)
}

func TestReadIntThenWrite(t *testing.T) {
	src := header + `
<instruction order="1" opcode="DEFVAR"><arg1 type="var">GF@x</arg1></instruction>
<instruction order="2" opcode="READ"><arg1 type="var">GF@x</arg1><arg2 type="type">int</arg2></instruction>
<instruction order="3" opcode="WRITE"><arg1 type="var">GF@x</arg1></instruction>
</program>`
	out, code := runProgram(t, src, "42\n")
	assert.Equal(t, "42", out)
	assert.Equal(t, 0, code)
}

func TestCallReturn(t *testing.T) {
	src := header + `
<instruction order="1" opcode="CALL"><arg1 type="label">sub</arg1></instruction>
<instruction order="2" opcode="EXIT"><arg1 type="int">0</arg1></instruction>
<instruction order="3" opcode="LABEL"><arg1 type="label">sub</arg1></instruction>
<instruction order="4" opcode="WRITE"><arg1 type="string">called</arg1></instruction>
<instruction order="5" opcode="RETURN"></instruction>
</program>`
	out, code := runProgram(t, src, "")
	assert.Equal(t, "called", out)
	assert.Equal(t, 0, code)
}

func TestFrameIsolationAcrossPushPop(t *testing.T) {
	src := header + `
<instruction order="1" opcode="CREATEFRAME"></instruction>
<instruction order="2" opcode="DEFVAR"><arg1 type="var">TF@x</arg1></instruction>
<instruction order="3" opcode="MOVE"><arg1 type="var">TF@x</arg1><arg2 type="int">1</arg2></instruction>
<instruction order="4" opcode="PUSHFRAME"></instruction>
<instruction order="5" opcode="CREATEFRAME"></instruction>
<instruction order="6" opcode="PUSHFRAME"></instruction>
<instruction order="7" opcode="POPFRAME"></instruction>
<instruction order="8" opcode="WRITE"><arg1 type="var">TF@x</arg1></instruction>
</program>`
	_, code := runProgram(t, src, "")
	assert.Equal(t, 54, code)
}
