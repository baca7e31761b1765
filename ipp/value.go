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
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind tags the payload carried by a Value.
type Kind uint8

// Value kinds. KindUninit is the zero value: a declared but never-assigned
// variable, distinct from KindNil.
const (
	KindUninit Kind = iota
	KindInt
	KindString
	KindBool
	KindNil
)

// String returns the IPPcode22 type name for defined kinds, and "" for
// KindUninit, matching TYPE's contract.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindNil:
		return "nil"
	default:
		return ""
	}
}

// Value is a tagged union carried by value throughout the interpreter:
// no aliasing, assignment always copies.
type Value struct {
	Kind Kind
	Int  int64
	Str  string
	Bool bool
}

// Uninit is the value every DEFVAR slot starts out as.
var Uninit = Value{Kind: KindUninit}

// Nil is the language's singleton nil value.
var Nil = Value{Kind: KindNil}

func IntValue(n int64) Value    { return Value{Kind: KindInt, Int: n} }
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }
func BoolValue(b bool) Value    { return Value{Kind: KindBool, Bool: b} }

var escapeRE = regexp.MustCompile(`\\[0-9]{3}`)

// decodeString expands \DDD escapes (exactly three decimal digits) into the
// code point they name. Any other character passes through unchanged.
func decodeString(s string) string {
	return escapeRE.ReplaceAllStringFunc(s, func(m string) string {
		n, err := strconv.Atoi(m[1:])
		if err != nil {
			return m
		}
		return string(rune(n))
	})
}

// ParseLiteral parses the raw text of a literal argument (argtype one of
// int, string, bool, nil) into a Value. It never returns KindUninit.
func ParseLiteral(argtype, text string) (Value, error) {
	switch argtype {
	case "int":
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return Value{}, newFault(FaultXMLStructure, errors.Wrapf(err, "malformed int literal %q", text))
		}
		return IntValue(n), nil
	case "string":
		return StringValue(decodeString(text)), nil
	case "bool":
		return BoolValue(strings.EqualFold(text, "true")), nil
	case "nil":
		if text != "nil" {
			return Value{}, Faultf(FaultXMLStructure, "malformed nil literal %q", text)
		}
		return Nil, nil
	default:
		return Value{}, Faultf(FaultXMLStructure, "not a literal argtype: %q", argtype)
	}
}

// Display renders v the way WRITE/DPRINT do. Reading an Uninitialised value
// is a missing-value fault, checked by the caller before Display is reached
// in practice, but Display itself refuses to silently stringify it.
func Display(v Value) (string, error) {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10), nil
	case KindString:
		return v.Str, nil
	case KindBool:
		if v.Bool {
			return "true", nil
		}
		return "false", nil
	case KindNil:
		return "", nil
	default:
		return "", newFault(FaultMissingValue, errors.New("display of uninitialised value"))
	}
}

// TypeName implements TYPE's contract: type name for defined values, empty
// string for Uninitialised.
func TypeName(v Value) string {
	return v.Kind.String()
}

// Equal implements EQ's semantics: well-defined whenever either side is Nil
// (true iff both are Nil), otherwise requires matching tags.
func Equal(a, b Value) (bool, error) {
	if a.Kind == KindUninit || b.Kind == KindUninit {
		return false, newFault(FaultMissingValue, errors.New("comparison of uninitialised value"))
	}
	if a.Kind == b.Kind {
		return rawEqual(a, b), nil
	}
	if a.Kind == KindNil || b.Kind == KindNil {
		return false, nil
	}
	return false, newFault(FaultType, errors.Errorf("cannot compare %s and %s", a.Kind, b.Kind))
}

func rawEqual(a, b Value) bool {
	switch a.Kind {
	case KindInt:
		return a.Int == b.Int
	case KindString:
		return a.Str == b.Str
	case KindBool:
		return a.Bool == b.Bool
	case KindNil:
		return true
	default:
		return false
	}
}

// Less implements LT. Nil participates in no ordering: either side Nil is a
// type fault, per §8's LT/GT/Nil rule.
func Less(a, b Value) (bool, error) {
	return order(a, b, func(a, b Value) bool {
		switch a.Kind {
		case KindInt:
			return a.Int < b.Int
		case KindString:
			return a.Str < b.Str
		case KindBool:
			return !a.Bool && b.Bool
		default:
			return false
		}
	})
}

// Greater implements GT.
func Greater(a, b Value) (bool, error) {
	return order(a, b, func(a, b Value) bool {
		switch a.Kind {
		case KindInt:
			return a.Int > b.Int
		case KindString:
			return a.Str > b.Str
		case KindBool:
			return a.Bool && !b.Bool
		default:
			return false
		}
	})
}

func order(a, b Value, cmp func(a, b Value) bool) (bool, error) {
	if a.Kind == KindUninit || b.Kind == KindUninit {
		return false, newFault(FaultMissingValue, errors.New("comparison of uninitialised value"))
	}
	if a.Kind == KindNil || b.Kind == KindNil {
		return false, newFault(FaultType, errors.New("nil has no ordering"))
	}
	if a.Kind != b.Kind {
		return false, newFault(FaultType, errors.Errorf("cannot order %s and %s", a.Kind, b.Kind))
	}
	return cmp(a, b), nil
}
