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

package xmlsrc_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ippcode22/interpreter/ipp"
	"github.com/ippcode22/interpreter/xmlsrc"
)

func TestParseWellFormed(t *testing.T) {
	root, err := xmlsrc.Parse(strings.NewReader(`<?xml version="1.0"?>
<program language="IPPcode22">
  <instruction order="1" opcode="WRITE">
    <arg1 type="string">hi</arg1>
  </instruction>
</program>`))
	require.NoError(t, err)

	assert.Equal(t, "program", root.Tag())
	lang, ok := root.Attr("language")
	require.True(t, ok)
	assert.Equal(t, "IPPcode22", lang)

	children := root.Children()
	require.Len(t, children, 1)
	assert.Equal(t, "instruction", children[0].Tag())

	order, ok := children[0].Attr("order")
	require.True(t, ok)
	assert.Equal(t, "1", order)

	args := children[0].Children()
	require.Len(t, args, 1)
	assert.Equal(t, "arg1", args[0].Tag())
	assert.Equal(t, "hi", args[0].Text())
}

func TestParseSelfClosingArgHasEmptyText(t *testing.T) {
	root, err := xmlsrc.Parse(strings.NewReader(
		`<program language="IPPcode22"><instruction order="1" opcode="DEFVAR"><arg1 type="var"/></instruction></program>`))
	require.NoError(t, err)
	args := root.Children()[0].Children()
	require.Len(t, args, 1)
	assert.Equal(t, "", args[0].Text())
}

func TestParseMalformedXMLIsFault31(t *testing.T) {
	_, err := xmlsrc.Parse(strings.NewReader(`<program><unterminated</program>`))
	require.Error(t, err)
	f, ok := ipp.AsFault(err)
	require.True(t, ok)
	assert.Equal(t, ipp.FaultXMLMalformed, f.Kind)
	assert.Equal(t, 31, f.Kind.ExitCode())
}

func TestParseUnbalancedEndElementIsFault31(t *testing.T) {
	_, err := xmlsrc.Parse(strings.NewReader(`<program></other></program>`))
	require.Error(t, err)
	f, ok := ipp.AsFault(err)
	require.True(t, ok)
	assert.Equal(t, ipp.FaultXMLMalformed, f.Kind)
}
