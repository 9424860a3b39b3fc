package vm

import (
	"fmt"

	"github.com/cricklet/govm/pkg/classfile"
)

// Frame is one activation record: the executing method's decoded code, a
// program counter (an index into Code, not a byte offset), a locals vector,
// and an operand stack. All mutation goes through error-returning
// accessors rather than the panic-on-misuse style of a raw byte-code
// reader, since a malformed class file is an ordinary runtime failure here,
// not a programmer error.
type Frame struct {
	Class  *Class
	Method *classfile.Method
	Code   []classfile.Opcode

	PC     int
	Locals []Value
	Stack  []Value
}

// NewFrame builds a frame for method, with locals pre-sized to MaxLocals and
// the given arguments copied into the first slots (category-2 arguments
// occupy two consecutive slots, per the JVM local-variable layout).
func NewFrame(cls *Class, method *classfile.Method, args []Value) *Frame {
	code := method.Code
	locals := make([]Value, code.MaxLocals)
	slot := 0
	for _, a := range args {
		locals[slot] = a
		slot += a.Category()
	}
	return &Frame{
		Class:  cls,
		Method: method,
		Code:   code.Code,
		Locals: locals,
		Stack:  make([]Value, 0, code.MaxStack),
	}
}

func (f *Frame) location() (string, string, int) {
	className := ""
	if f.Class != nil {
		className = f.Class.Name
	}
	methodName := ""
	if f.Method != nil && f.Class != nil {
		methodName = f.Method.Name(f.Class.Def.ConstantPool)
	}
	return className, methodName, f.PC
}

func (f *Frame) fail(kind ExecutionErrorKind, err error) error {
	class, method, pc := f.location()
	return WithLocation(newExecutionError(kind, err), class, method, pc)
}

// Current returns the opcode at the current PC.
func (f *Frame) Current() (classfile.Opcode, error) {
	if f.PC < 0 || f.PC >= len(f.Code) {
		class, method, pc := f.location()
		return classfile.Opcode{}, newInternalError(MalformedCode, fmt.Errorf("%s.%s: pc %d out of range (len %d)", class, method, pc, len(f.Code)))
	}
	return f.Code[f.PC], nil
}

// Push appends a value to the operand stack.
func (f *Frame) Push(v Value) {
	f.Stack = append(f.Stack, v)
}

// Pop removes and returns the top of the operand stack.
func (f *Frame) Pop() (Value, error) {
	if len(f.Stack) == 0 {
		return Value{}, f.fail(StackUnderflow, fmt.Errorf("pop on empty stack"))
	}
	v := f.Stack[len(f.Stack)-1]
	f.Stack = f.Stack[:len(f.Stack)-1]
	return v, nil
}

// PopN removes and returns the top n values, in original (bottom-to-top)
// order.
func (f *Frame) PopN(n int) ([]Value, error) {
	if len(f.Stack) < n {
		return nil, f.fail(StackUnderflow, fmt.Errorf("need %d values, have %d", n, len(f.Stack)))
	}
	out := make([]Value, n)
	copy(out, f.Stack[len(f.Stack)-n:])
	f.Stack = f.Stack[:len(f.Stack)-n]
	return out, nil
}

// Peek returns the top of the operand stack without removing it.
func (f *Frame) Peek() (Value, error) {
	if len(f.Stack) == 0 {
		return Value{}, f.fail(StackUnderflow, fmt.Errorf("peek on empty stack"))
	}
	return f.Stack[len(f.Stack)-1], nil
}

// GetLocal reads local slot i.
func (f *Frame) GetLocal(i int) (Value, error) {
	if i < 0 || i >= len(f.Locals) {
		return Value{}, f.fail(UnimplementedOpcode, fmt.Errorf("local slot %d out of range (max %d)", i, len(f.Locals)))
	}
	return f.Locals[i], nil
}

// SetLocal writes local slot i.
func (f *Frame) SetLocal(i int, v Value) error {
	if i < 0 || i >= len(f.Locals) {
		return f.fail(UnimplementedOpcode, fmt.Errorf("local slot %d out of range (max %d)", i, len(f.Locals)))
	}
	f.Locals[i] = v
	return nil
}

// Jump sets PC to the given opcode index (already resolved by the decoder).
func (f *Frame) Jump(target int) {
	f.PC = target
}
