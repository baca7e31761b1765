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
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Program is a loaded, validated, order-sorted instruction list together
// with its label index. It is immutable once returned by Load.
type Program struct {
	Instructions []Instruction
	Labels       map[string]int // label name -> index into Instructions
}

// Load validates root and builds a Program from it. root must be a
// "program" element with language="IPPcode22"; every child must be an
// "instruction" element. log may be nil.
func Load(root Element, log *zap.Logger) (*Program, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if root.Tag() != "program" {
		return nil, Faultf(FaultXMLStructure, "root element is %q, want \"program\"", root.Tag())
	}
	lang, ok := root.Attr("language")
	if !ok || !strings.EqualFold(lang, "IPPcode22") {
		return nil, Faultf(FaultXMLStructure, "root language attribute is %q, want \"IPPcode22\"", lang)
	}

	children := root.Children()
	instructions := make([]Instruction, 0, len(children))
	for _, child := range children {
		if child.Tag() != "instruction" {
			return nil, Faultf(FaultXMLStructure, "unexpected root child %q", child.Tag())
		}
		in, err := decodeInstruction(child)
		if err != nil {
			return nil, err
		}
		if !isKnownOpcode(in.Opcode) {
			return nil, Faultf(FaultXMLStructure, "unknown opcode %q", in.Opcode)
		}
		instructions = append(instructions, in)
	}

	sort.SliceStable(instructions, func(i, j int) bool {
		return instructions[i].Order < instructions[j].Order
	})

	if err := checkOrders(instructions); err != nil {
		return nil, err
	}

	labels, err := indexLabels(instructions)
	if err != nil {
		return nil, err
	}

	log.Debug("program loaded",
		zap.Int("instructions", len(instructions)),
		zap.Int("labels", len(labels)),
	)

	return &Program{Instructions: instructions, Labels: labels}, nil
}

// checkOrders enforces order >= 1 and pairwise-distinct orders, on an
// already order-sorted slice.
func checkOrders(instructions []Instruction) error {
	seen := make(map[int]bool, len(instructions))
	for _, in := range instructions {
		if in.Order < 1 {
			return Faultf(FaultXMLStructure, "instruction order %d is not a positive integer", in.Order)
		}
		if seen[in.Order] {
			return Faultf(FaultXMLStructure, "duplicate instruction order %d", in.Order)
		}
		seen[in.Order] = true
	}
	return nil
}

// indexLabels scans in sorted order, mapping each LABEL's arg1 text to its
// instruction index. A repeated label name is a semantic fault.
func indexLabels(instructions []Instruction) (map[string]int, error) {
	labels := make(map[string]int)
	for i, in := range instructions {
		if in.Opcode != "LABEL" {
			continue
		}
		name := in.Arg(1).Text
		if _, dup := labels[name]; dup {
			return nil, Faultf(FaultSemantic, "duplicate label %q", name)
		}
		labels[name] = i
	}
	return labels, nil
}
