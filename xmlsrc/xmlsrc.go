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

// Package xmlsrc is the standard XML reader that supplies ipp.Element
// trees to the interpreter core, per the specification's §1 scope line.
// It is deliberately thin: parse with encoding/xml, then expose the
// result through the minimal ipp.Element contract.
package xmlsrc

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/ippcode22/interpreter/ipp"
)

// node is an ipp.Element backed by an in-memory XML tree.
type node struct {
	xml.StartElement
	text     strings.Builder
	children []*node
}

func (n *node) Tag() string { return n.Name.Local }

func (n *node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *node) Children() []ipp.Element {
	els := make([]ipp.Element, len(n.children))
	for i, c := range n.children {
		els[i] = c
	}
	return els
}

func (n *node) Text() string { return n.text.String() }

// Parse reads a complete XML document from r and returns its root
// element. A document that is not well-formed is a malformed-XML fault
// (exit 31); this is the only place that fault kind is produced, since
// every other structural check happens downstream in ipp.Load against an
// already-parsed tree.
func Parse(r io.Reader) (ipp.Element, error) {
	dec := xml.NewDecoder(r)

	var root *node
	var stack []*node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ipp.Faultf(ipp.FaultXMLMalformed, "parse XML: %s", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{StartElement: t.Copy()}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			} else if root == nil {
				root = n
			} else {
				return nil, ipp.Faultf(ipp.FaultXMLMalformed, "multiple root elements")
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, ipp.Faultf(ipp.FaultXMLMalformed, "unbalanced end element %q", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	if root == nil {
		return nil, ipp.Faultf(ipp.FaultXMLMalformed, "empty document")
	}
	if len(stack) != 0 {
		return nil, errors.New("xmlsrc: unterminated element (should be unreachable)")
	}
	return root, nil
}
