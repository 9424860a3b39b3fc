package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/cricklet/govm/pkg/classfile"
)

// maxFrameDepth bounds recursive method invocation, turning runaway program
// recursion into a reported error instead of a host stack overflow.
const maxFrameDepth = 1024

// Interpreter owns the class manager, the native dispatch table, and the
// call-depth counter for one end-to-end run of a program.
type Interpreter struct {
	CM         *ClassManager
	Stdout     io.Writer
	frameDepth int
}

// NewInterpreter wires an interpreter to cm, and cm back to the interpreter
// so class registration can run <clinit>.
func NewInterpreter(cm *ClassManager) *Interpreter {
	interp := &Interpreter{CM: cm, Stdout: os.Stdout}
	cm.SetInterpreter(interp)
	return interp
}

// Execute loads mainClassName, runs java/lang/System.initPhase1()V to bring
// up System.out/err and the platform properties, then invokes
// main([Ljava/lang/String;)V with args packed into a String[], returning
// any uncaught error.
func (interp *Interpreter) Execute(mainClassName string, args []string) error {
	cls, err := interp.CM.GetClassByName(mainClassName)
	if err != nil {
		return err
	}
	if err := interp.initPhase1(); err != nil {
		return err
	}
	method, ok := cls.Def.FindMethod("main([Ljava/lang/String;)V")
	if !ok {
		return newResolutionError(NoSuchMethod, mainClassName+".main([Ljava/lang/String;)V", nil)
	}
	argv := &StringArray{Elements: append([]string{}, args...)}
	_, err = interp.invokeMethod(cls, method, []Value{VRef(argv)})
	return err
}

// initPhase1 runs java/lang/System's bootstrap initializer. A classpath
// that doesn't carry java/lang/System at all (a unit test exercising the
// interpreter against hand-built classes, say) skips it rather than
// failing outright; a real run against the jmod-backed bootstrap always
// has it.
func (interp *Interpreter) initPhase1() error {
	sysCls, err := interp.CM.GetClassByName("java/lang/System")
	if err != nil {
		if resErr, ok := err.(*ResolutionError); ok && resErr.Kind == ClassNotFound {
			return nil
		}
		return err
	}
	method, ok := sysCls.Def.FindMethod("initPhase1()V")
	if !ok {
		return nil
	}
	_, err = interp.invokeMethod(sysCls, method, nil)
	return err
}

// InvokeClinit runs a class's <clinit>()V, called once by the class manager
// immediately after registering the class.
func (interp *Interpreter) InvokeClinit(cls *Class) error {
	method, ok := cls.Def.FindMethod("<clinit>()V")
	if !ok {
		return nil
	}
	_, err := interp.invokeMethod(cls, method, nil)
	return err
}

// invokeMethod runs method (declared by cls) with args already popped from
// the caller in the correct order. Native and abstract methods are handled
// before any frame is built.
func (interp *Interpreter) invokeMethod(cls *Class, method *classfile.Method, args []Value) (Value, error) {
	if method.Is(classfile.AccAbstract) {
		return Value{}, newResolutionError(AbstractMethodError, cls.Name+"."+method.SignatureKey(cls.Def.ConstantPool), nil)
	}
	if method.Is(classfile.AccNative) {
		return interp.invokeNative(cls, method, args)
	}
	if method.Code == nil {
		return Value{}, newInternalError(MalformedCode, fmt.Errorf("%s.%s has no Code attribute", cls.Name, method.Name(cls.Def.ConstantPool)))
	}

	interp.frameDepth++
	defer func() { interp.frameDepth-- }()
	if interp.frameDepth > maxFrameDepth {
		return Value{}, newExecutionError(StackUnderflow, fmt.Errorf("frame depth exceeded %d", maxFrameDepth))
	}

	frame := NewFrame(cls, method, args)
	return interp.run(frame)
}

// run drives frame's opcode loop until a return, an uncaught thrown
// exception, or a fatal error.
func (interp *Interpreter) run(frame *Frame) (Value, error) {
	for {
		pc := frame.PC
		op, err := frame.Current()
		if err != nil {
			return Value{}, err
		}
		frame.PC++

		ret, done, err := interp.executeInstruction(frame, op)
		if err != nil {
			if thrown, ok := err.(*Throwable); ok {
				if handlerPC, found := findExceptionHandler(interp.CM, frame, pc, thrown); found {
					frame.Stack = frame.Stack[:0]
					frame.Push(VRef(thrown.Object))
					frame.Jump(handlerPC)
					continue
				}
			}
			return Value{}, err
		}
		if done {
			return ret, nil
		}
	}
}
