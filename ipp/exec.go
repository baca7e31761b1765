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
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Option configures an Instance at construction time, following the same
// functional-options shape the teacher uses for its VM.
type Option func(*Instance) error

// WithProgram supplies the loaded program to run. Required.
func WithProgram(p *Program) Option {
	return func(in *Instance) error {
		if p == nil {
			return errors.New("nil program")
		}
		in.program = p
		return nil
	}
}

// WithInput sets the program-input stream. Defaults to an empty reader.
func WithInput(r io.Reader) Option {
	return func(in *Instance) error {
		in.input = newLineReader(r)
		return nil
	}
}

// WithOutput sets the program-output stream. Defaults to io.Discard.
func WithOutput(w io.Writer) Option {
	return func(in *Instance) error {
		in.stdout = w
		return nil
	}
}

// WithErrorOutput sets the program-error stream (DPRINT). Defaults to
// io.Discard.
func WithErrorOutput(w io.Writer) Option {
	return func(in *Instance) error {
		in.stderr = w
		return nil
	}
}

// WithLogger attaches a zap logger for load/trace/BREAK diagnostics. Nil
// is treated as a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(in *Instance) error {
		if log == nil {
			log = zap.NewNop()
		}
		in.log = log
		return nil
	}
}

// WithTrace enables per-instruction trace logging at debug level.
func WithTrace(trace bool) Option {
	return func(in *Instance) error {
		in.trace = trace
		return nil
	}
}

// WithMaxInstructions installs an execution watchdog: Run stops with
// FaultInternal after executing this many instructions. Zero (the
// default) means unbounded. This exists so a test harness can bound
// otherwise-infinite programs (§8 scenario 5) without the interpreter
// itself needing a cancellation mechanism.
func WithMaxInstructions(n uint64) Option {
	return func(in *Instance) error {
		in.maxInstructions = n
		return nil
	}
}

// Instance is one running (or runnable) IPPcode22 program.
type Instance struct {
	program *Program

	ip        int
	frames    *frames
	dataStack []Value
	callStack []int

	terminated bool
	ret        int

	input  *lineReader
	stdout io.Writer
	stderr io.Writer
	sink   *sink

	log   *zap.Logger
	trace bool

	maxInstructions uint64
	executed        uint64
}

// New builds an Instance ready to Run.
func New(opts ...Option) (*Instance, error) {
	in := &Instance{
		frames: newFrames(),
		stdout: io.Discard,
		stderr: io.Discard,
		log:    zap.NewNop(),
		input:  newLineReader(nopReader{}),
	}
	for _, opt := range opts {
		if err := opt(in); err != nil {
			return nil, errors.Wrap(err, "build instance")
		}
	}
	if in.program == nil {
		return nil, errors.New("ipp.New: no program supplied (use WithProgram)")
	}
	in.sink = newSink(in.stdout, in.stderr)
	return in, nil
}

type nopReader struct{}

func (nopReader) Read([]byte) (int, error) { return 0, io.EOF }

// Run executes the program to completion and returns the process exit
// code. A panic inside a handler (a programmer bug, not a defined fault)
// is recovered and surfaces as FaultInternal, mirroring the teacher's
// recover()-wrapped Run.
func (in *Instance) Run() (code int, err error) {
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(error)
			if !ok {
				rerr = errors.Errorf("%v", r)
			}
			f := newFault(FaultInternal, errors.Wrap(rerr, "panic during execution"))
			code, err = f.Kind.ExitCode(), f
		}
	}()

	instructions := in.program.Instructions
	for !in.terminated {
		if in.ip >= len(instructions) {
			return 0, nil
		}
		instr := instructions[in.ip]
		in.ip++
		in.executed++

		if in.maxInstructions > 0 && in.executed > in.maxInstructions {
			f := newFault(FaultInternal, errors.Errorf("exceeded instruction watchdog (%d)", in.maxInstructions))
			return f.Kind.ExitCode(), f
		}
		if in.trace {
			in.log.Debug("exec",
				zap.Int("order", instr.Order),
				zap.String("opcode", instr.Opcode),
				zap.Int("ip", in.ip-1),
			)
		}

		if err := in.dispatch(instr); err != nil {
			f, ok := AsFault(err)
			if !ok {
				f = newFault(FaultInternal, err)
			}
			return f.Kind.ExitCode(), f
		}
	}
	return in.ret, nil
}

// dispatch executes a single instruction.
func (in *Instance) dispatch(instr Instruction) error {
	switch instr.Opcode {
	case "MOVE":
		return in.opMove(instr)
	case "CREATEFRAME":
		in.frames.CreateFrame()
		return nil
	case "PUSHFRAME":
		return in.frames.PushFrame()
	case "POPFRAME":
		return in.frames.PopFrame()
	case "DEFVAR":
		return in.frames.Define(instr.Arg(1).Text)
	case "CALL":
		return in.opCall(instr)
	case "RETURN":
		return in.opReturn()
	case "LABEL":
		return nil
	case "JUMP":
		return in.opJump(instr)
	case "JUMPIFEQ":
		return in.opJumpIf(instr, true)
	case "JUMPIFNEQ":
		return in.opJumpIf(instr, false)
	case "EXIT":
		return in.opExit(instr)
	case "PUSHS":
		return in.opPushs(instr)
	case "POPS":
		return in.opPops(instr)
	case "ADD", "SUB", "MUL", "IDIV":
		return in.opArith(instr)
	case "AND", "OR":
		return in.opBoolBinary(instr)
	case "NOT":
		return in.opNot(instr)
	case "LT", "GT", "EQ":
		return in.opCompare(instr)
	case "INT2CHAR":
		return in.opInt2Char(instr)
	case "STRI2INT":
		return in.opStri2Int(instr)
	case "READ":
		return in.opRead(instr)
	case "WRITE":
		return in.opWrite(instr)
	case "DPRINT":
		return in.opDPrint(instr)
	case "BREAK":
		in.opBreak()
		return nil
	case "CONCAT":
		return in.opConcat(instr)
	case "STRLEN":
		return in.opStrlen(instr)
	case "GETCHAR":
		return in.opGetChar(instr)
	case "SETCHAR":
		return in.opSetChar(instr)
	case "TYPE":
		return in.opType(instr)
	default:
		return Faultf(FaultXMLStructure, "unknown opcode %q", instr.Opcode)
	}
}

// resolve evaluates an Argument to a Value: a literal parses directly, a
// var reads through the frame manager.
func (in *Instance) resolve(arg Argument, allowUninit bool) (Value, error) {
	switch arg.Type {
	case "var":
		return in.frames.Get(arg.Text, allowUninit)
	case "int", "string", "bool", "nil":
		return ParseLiteral(arg.Type, arg.Text)
	default:
		return Value{}, Faultf(FaultXMLStructure, "argument type %q is not a symbol", arg.Type)
	}
}

func (in *Instance) opMove(instr Instruction) error {
	v, err := in.resolve(instr.Arg(2), false)
	if err != nil {
		return err
	}
	return in.frames.Set(instr.Arg(1).Text, v)
}

func (in *Instance) labelTarget(name string) (int, error) {
	idx, ok := in.program.Labels[name]
	if !ok {
		return 0, Faultf(FaultSemantic, "undefined label %q", name)
	}
	return idx, nil
}

func (in *Instance) opCall(instr Instruction) error {
	target, err := in.labelTarget(instr.Arg(1).Text)
	if err != nil {
		return err
	}
	in.callStack = append(in.callStack, in.ip)
	in.ip = target
	return nil
}

func (in *Instance) opReturn() error {
	if len(in.callStack) == 0 {
		return newFault(FaultMissingValue, errors.New("RETURN with empty call stack"))
	}
	n := len(in.callStack) - 1
	in.ip = in.callStack[n]
	in.callStack = in.callStack[:n]
	return nil
}

func (in *Instance) opJump(instr Instruction) error {
	target, err := in.labelTarget(instr.Arg(1).Text)
	if err != nil {
		return err
	}
	in.ip = target
	return nil
}

// opJumpIf implements JUMPIFEQ/JUMPIFNEQ. Operands are evaluated first so
// an Uninitialised operand faults with 56 in preference to any other
// fault (§8's uninitialised-propagation property). The label is still
// checked unconditionally afterward, so an unknown label faults with 52
// even when the branch would not be taken.
func (in *Instance) opJumpIf(instr Instruction, wantEqual bool) error {
	a, err := in.resolve(instr.Arg(2), false)
	if err != nil {
		return err
	}
	b, err := in.resolve(instr.Arg(3), false)
	if err != nil {
		return err
	}
	target, err := in.labelTarget(instr.Arg(1).Text)
	if err != nil {
		return err
	}
	eq, err := Equal(a, b)
	if err != nil {
		return err
	}
	if eq == wantEqual {
		in.ip = target
	}
	return nil
}

func (in *Instance) opExit(instr Instruction) error {
	v, err := in.resolve(instr.Arg(1), false)
	if err != nil {
		return err
	}
	if v.Kind != KindInt {
		return newFault(FaultType, errors.Errorf("EXIT operand is %s, want int", v.Kind))
	}
	if v.Int < 0 || v.Int > 49 {
		return newFault(FaultOperand, errors.Errorf("EXIT code %d out of range [0,49]", v.Int))
	}
	in.ret = int(v.Int)
	in.terminated = true
	return nil
}

func (in *Instance) opPushs(instr Instruction) error {
	v, err := in.resolve(instr.Arg(1), false)
	if err != nil {
		return err
	}
	in.dataStack = append(in.dataStack, v)
	return nil
}

func (in *Instance) opPops(instr Instruction) error {
	if len(in.dataStack) == 0 {
		return newFault(FaultMissingValue, errors.New("POPS with empty data stack"))
	}
	n := len(in.dataStack) - 1
	v := in.dataStack[n]
	in.dataStack = in.dataStack[:n]
	return in.frames.Set(instr.Arg(1).Text, v)
}

func (in *Instance) twoInts(instr Instruction) (int64, int64, error) {
	a, err := in.resolve(instr.Arg(2), false)
	if err != nil {
		return 0, 0, err
	}
	b, err := in.resolve(instr.Arg(3), false)
	if err != nil {
		return 0, 0, err
	}
	if a.Kind != KindInt || b.Kind != KindInt {
		return 0, 0, newFault(FaultType, errors.Errorf("arithmetic on %s and %s, want int", a.Kind, b.Kind))
	}
	return a.Int, b.Int, nil
}

func (in *Instance) opArith(instr Instruction) error {
	a, b, err := in.twoInts(instr)
	if err != nil {
		return err
	}
	var result int64
	switch instr.Opcode {
	case "ADD":
		result = a + b
	case "SUB":
		result = a - b
	case "MUL":
		result = a * b
	case "IDIV":
		if b == 0 {
			return newFault(FaultOperand, errors.New("IDIV by zero"))
		}
		result = floorDiv(a, b)
	}
	return in.frames.Set(instr.Arg(1).Text, IntValue(result))
}

// floorDiv divides truncating toward negative infinity, unlike Go's /
// which truncates toward zero.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func (in *Instance) twoBools(instr Instruction) (bool, bool, error) {
	a, err := in.resolve(instr.Arg(2), false)
	if err != nil {
		return false, false, err
	}
	b, err := in.resolve(instr.Arg(3), false)
	if err != nil {
		return false, false, err
	}
	if a.Kind != KindBool || b.Kind != KindBool {
		return false, false, newFault(FaultType, errors.Errorf("boolean op on %s and %s, want bool", a.Kind, b.Kind))
	}
	return a.Bool, b.Bool, nil
}

func (in *Instance) opBoolBinary(instr Instruction) error {
	a, b, err := in.twoBools(instr)
	if err != nil {
		return err
	}
	var result bool
	if instr.Opcode == "AND" {
		result = a && b
	} else {
		result = a || b
	}
	return in.frames.Set(instr.Arg(1).Text, BoolValue(result))
}

func (in *Instance) opNot(instr Instruction) error {
	v, err := in.resolve(instr.Arg(2), false)
	if err != nil {
		return err
	}
	if v.Kind != KindBool {
		return newFault(FaultType, errors.Errorf("NOT on %s, want bool", v.Kind))
	}
	return in.frames.Set(instr.Arg(1).Text, BoolValue(!v.Bool))
}

func (in *Instance) opCompare(instr Instruction) error {
	a, err := in.resolve(instr.Arg(2), false)
	if err != nil {
		return err
	}
	b, err := in.resolve(instr.Arg(3), false)
	if err != nil {
		return err
	}
	var result bool
	switch instr.Opcode {
	case "LT":
		result, err = Less(a, b)
	case "GT":
		result, err = Greater(a, b)
	case "EQ":
		result, err = Equal(a, b)
	}
	if err != nil {
		return err
	}
	return in.frames.Set(instr.Arg(1).Text, BoolValue(result))
}

func (in *Instance) opInt2Char(instr Instruction) error {
	v, err := in.resolve(instr.Arg(2), false)
	if err != nil {
		return err
	}
	if v.Kind != KindInt {
		return newFault(FaultType, errors.Errorf("INT2CHAR on %s, want int", v.Kind))
	}
	if !validCodePoint(v.Int) {
		return newFault(FaultString, errors.Errorf("INT2CHAR: %d is not a valid code point", v.Int))
	}
	return in.frames.Set(instr.Arg(1).Text, StringValue(string(rune(v.Int))))
}

func validCodePoint(n int64) bool {
	return n >= 0 && n <= 0x10FFFF
}

func (in *Instance) opStri2Int(instr Instruction) error {
	s, err := in.resolve(instr.Arg(2), false)
	if err != nil {
		return err
	}
	p, err := in.resolve(instr.Arg(3), false)
	if err != nil {
		return err
	}
	if s.Kind != KindString || p.Kind != KindInt {
		return newFault(FaultType, errors.Errorf("STRI2INT on %s and %s, want string and int", s.Kind, p.Kind))
	}
	runes := []rune(s.Str)
	if p.Int < 0 || p.Int >= int64(len(runes)) {
		return newFault(FaultString, errors.Errorf("STRI2INT: index %d out of range", p.Int))
	}
	return in.frames.Set(instr.Arg(1).Text, IntValue(int64(runes[p.Int])))
}

func (in *Instance) opRead(instr Instruction) error {
	typeArg := instr.Arg(2)
	if typeArg.Type != "type" {
		return Faultf(FaultXMLStructure, "READ second argument must be of type \"type\"")
	}
	v, err := in.input.readTyped(typeArg.Text)
	if err != nil {
		return err
	}
	return in.frames.Set(instr.Arg(1).Text, v)
}

func (in *Instance) opWrite(instr Instruction) error {
	v, err := in.resolve(instr.Arg(1), false)
	if err != nil {
		return err
	}
	return in.sink.write(v)
}

func (in *Instance) opDPrint(instr Instruction) error {
	v, err := in.resolve(instr.Arg(1), false)
	if err != nil {
		return err
	}
	return in.sink.dprint(v)
}

// opBreak emits an interpreter-state snapshot at debug level. It has no
// effect on program semantics; with no logger configured it is a no-op,
// per §4.5 ("optional; may emit a diagnostic or be a no-op").
func (in *Instance) opBreak() {
	in.log.Debug("BREAK",
		zap.Int("ip", in.ip),
		zap.Int("data_stack_depth", len(in.dataStack)),
		zap.Int("call_stack_depth", len(in.callStack)),
		zap.Int("local_frame_depth", in.frames.LocalDepth()),
		zap.Uint64("instructions_executed", in.executed),
	)
}

func (in *Instance) opConcat(instr Instruction) error {
	a, err := in.resolve(instr.Arg(2), false)
	if err != nil {
		return err
	}
	b, err := in.resolve(instr.Arg(3), false)
	if err != nil {
		return err
	}
	if a.Kind != KindString || b.Kind != KindString {
		return newFault(FaultType, errors.Errorf("CONCAT on %s and %s, want string", a.Kind, b.Kind))
	}
	return in.frames.Set(instr.Arg(1).Text, StringValue(a.Str+b.Str))
}

func (in *Instance) opStrlen(instr Instruction) error {
	v, err := in.resolve(instr.Arg(2), false)
	if err != nil {
		return err
	}
	if v.Kind != KindString {
		return newFault(FaultType, errors.Errorf("STRLEN on %s, want string", v.Kind))
	}
	return in.frames.Set(instr.Arg(1).Text, IntValue(int64(len([]rune(v.Str)))))
}

func (in *Instance) opGetChar(instr Instruction) error {
	s, err := in.resolve(instr.Arg(2), false)
	if err != nil {
		return err
	}
	p, err := in.resolve(instr.Arg(3), false)
	if err != nil {
		return err
	}
	if s.Kind != KindString || p.Kind != KindInt {
		return newFault(FaultType, errors.Errorf("GETCHAR on %s and %s, want string and int", s.Kind, p.Kind))
	}
	runes := []rune(s.Str)
	if p.Int < 0 || p.Int >= int64(len(runes)) {
		return newFault(FaultString, errors.Errorf("GETCHAR: index %d out of range", p.Int))
	}
	return in.frames.Set(instr.Arg(1).Text, StringValue(string(runes[p.Int])))
}

// opSetChar mutates the string held by dst in place (by replacing it with
// a new Value; there is no in-place string mutation since Values are
// copied). dst must already hold a string; a non-string dst is a type
// fault, while an empty src or an out-of-range pos is a string fault, per
// the explicit classification in §4.5 and the open-question decision in
// DESIGN.md.
func (in *Instance) opSetChar(instr Instruction) error {
	dst, err := in.frames.Get(instr.Arg(1).Text, false)
	if err != nil {
		return err
	}
	if dst.Kind != KindString {
		return newFault(FaultType, errors.Errorf("SETCHAR on %s, want string", dst.Kind))
	}
	p, err := in.resolve(instr.Arg(2), false)
	if err != nil {
		return err
	}
	src, err := in.resolve(instr.Arg(3), false)
	if err != nil {
		return err
	}
	if p.Kind != KindInt || src.Kind != KindString {
		return newFault(FaultType, errors.Errorf("SETCHAR position/source are %s and %s, want int and string", p.Kind, src.Kind))
	}
	if len(src.Str) == 0 {
		return newFault(FaultString, errors.New("SETCHAR: source string is empty"))
	}
	dstRunes := []rune(dst.Str)
	if p.Int < 0 || p.Int >= int64(len(dstRunes)) {
		return newFault(FaultString, errors.Errorf("SETCHAR: index %d out of range", p.Int))
	}
	srcRunes := []rune(src.Str)
	dstRunes[p.Int] = srcRunes[0]
	return in.frames.Set(instr.Arg(1).Text, StringValue(string(dstRunes)))
}

func (in *Instance) opType(instr Instruction) error {
	v, err := in.resolve(instr.Arg(2), true)
	if err != nil {
		return err
	}
	return in.frames.Set(instr.Arg(1).Text, StringValue(TypeName(v)))
}
