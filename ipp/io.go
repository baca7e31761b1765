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
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	ioutil "github.com/ippcode22/interpreter/internal/ioutil"
)

// lineReader reads program input one line at a time, stripping a single
// trailing newline, per §4.6.
type lineReader struct {
	r *bufio.Reader
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

// readLine returns the next line and true, or ("", false) at end of
// stream. An I/O error other than EOF is an input-file fault.
func (l *lineReader) readLine() (string, bool, error) {
	line, err := l.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", false, newFault(FaultInputFile, errors.Wrap(err, "read program input"))
	}
	if err == io.EOF && line == "" {
		return "", false, nil
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, true, nil
}

// readTyped implements READ's conversion rule: on no available line,
// result is Nil regardless of type-arg. Otherwise convert per type-arg;
// int/bool follow the asymmetric parse-failure rule from §4.5/§9 (int
// failure -> Nil, bool failure -> false, never Nil).
func (l *lineReader) readTyped(argtype string) (Value, error) {
	line, ok, err := l.readLine()
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Nil, nil
	}
	switch argtype {
	case "int":
		n, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
		if err != nil {
			return Nil, nil
		}
		return IntValue(n), nil
	case "bool":
		return BoolValue(strings.EqualFold(line, "true")), nil
	case "string":
		return StringValue(line), nil
	default:
		return Value{}, Faultf(FaultXMLStructure, "READ type-arg %q is not int, string, or bool", argtype)
	}
}

// sink is the pair of byte streams a running program writes to.
type sink struct {
	out *ioutil.ErrWriter
	err *ioutil.ErrWriter
}

func newSink(out, errOut io.Writer) *sink {
	return &sink{out: ioutil.NewErrWriter(out), err: ioutil.NewErrWriter(errOut)}
}

func (s *sink) write(v Value) error {
	text, err := Display(v)
	if err != nil {
		return err
	}
	s.out.WriteString(text)
	return s.out.Err()
}

func (s *sink) dprint(v Value) error {
	text, err := Display(v)
	if err != nil {
		return err
	}
	s.err.WriteString(text)
	return s.err.Err()
}
