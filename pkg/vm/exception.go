package vm

import "fmt"

// Throwable wraps a Java exception/error instance as it propagates through
// the interpreter. It satisfies the Go error interface so it can be
// returned and inspected alongside ExecutionError/ResolutionError/
// InternalError.
type Throwable struct {
	ClassID ClassID
	Object  *Object
}

func (t *Throwable) Error() string {
	return fmt.Sprintf("uncaught exception: class id %d", t.ClassID)
}

// NewThrowable allocates a zero-initialized instance of className (via cm)
// to represent a VM-raised exception, without running its constructor.
func NewThrowable(cm *ClassManager, className string) (*Throwable, error) {
	cls, err := cm.GetClassByName(className)
	if err != nil {
		return nil, err
	}
	return &Throwable{
		ClassID: cls.ID,
		Object:  &Object{ClassID: cls.ID, Data: make([]Value, cls.NumObjectSlots)},
	}, nil
}

// findExceptionHandler searches frame's own exception table for a handler
// whose [StartPC, EndPC) range covers pc and whose catch type matches (or is
// the catch-all, CatchType == 0) the thrown object's runtime class.
func findExceptionHandler(cm *ClassManager, frame *Frame, pc int, thrown *Throwable) (int, bool) {
	handlers := frame.Method.Code.ExceptionTable
	for i := range handlers {
		h := &handlers[i]
		if pc < h.StartPC || pc >= h.EndPC {
			continue
		}
		if h.CatchType == 0 {
			return h.HandlerPC, true
		}
		catchName := frame.Class.Def.ClassRefName(h.CatchType)
		if isAssignableTo(cm, thrown.ClassID, catchName) {
			return h.HandlerPC, true
		}
	}
	return 0, false
}

// isAssignableTo reports whether the runtime class identified by id is, or
// inherits from or implements, the class/interface named targetName.
func isAssignableTo(cm *ClassManager, id ClassID, targetName string) bool {
	cls := cm.GetClassByID(id)
	if cls == nil {
		return false
	}
	byID := func(i ClassID) *Class { return cm.GetClassByID(i) }
	return cls.IsSubclassOf(targetName, byID) || cls.ImplementsInterface(targetName, byID)
}
