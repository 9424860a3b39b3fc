package vm

import (
	"fmt"

	"github.com/cricklet/govm/pkg/classfile"
)

// executeLdc pushes the value a LDC/LDC_W/LDC2_W constant-pool index
// resolves to: primitives push directly; a String constant builds a
// java/lang/String instance; a Class constant pushes a ClassRef to the loaded class.
func (interp *Interpreter) executeLdc(frame *Frame, index uint16) (Value, bool, error) {
	pool := frame.Class.Def.ConstantPool
	if int(index) >= len(pool) || pool[index] == nil {
		return Value{}, false, newInternalError(MalformedCode, fmt.Errorf("ldc: invalid constant pool index %d", index))
	}

	switch entry := pool[index].(type) {
	case classfile.IntegerEntry:
		frame.Push(VI32(entry.Value))
	case classfile.FloatEntry:
		frame.Push(VF32(entry.Value))
	case classfile.LongEntry:
		frame.Push(VI64(entry.Value))
	case classfile.DoubleEntry:
		frame.Push(VF64(entry.Value))
	case classfile.StringRefEntry:
		text, err := classfile.GetUtf8(pool, entry.Utf8Index)
		if err != nil {
			return Value{}, false, newInternalError(MalformedCode, err)
		}
		str, err := interp.newJavaString(text)
		if err != nil {
			return Value{}, false, err
		}
		frame.Push(VRef(str))
	case classfile.ClassRefEntry:
		name, err := classfile.GetUtf8(pool, entry.NameIndex)
		if err != nil {
			return Value{}, false, newInternalError(MalformedCode, err)
		}
		cls, err := interp.CM.GetClassByName(name)
		if err != nil {
			return Value{}, false, err
		}
		frame.Push(VRef(&ClassRef{Class: cls}))
	default:
		return Value{}, false, newInternalError(MalformedCode, fmt.Errorf("ldc: unsupported constant pool entry at index %d", index))
	}
	return Value{}, false, nil
}

// newJavaString builds a java/lang/String instance whose value field holds
// a byte array initialized from text's UTF-8 bytes, via <init>([B)V.
func (interp *Interpreter) newJavaString(text string) (*Object, error) {
	cls, err := interp.CM.GetClassByName("java/lang/String")
	if err != nil {
		return nil, err
	}
	obj := &Object{ClassID: cls.ID, Data: make([]Value, cls.NumObjectSlots)}
	ctor, ok := cls.Def.FindMethod("<init>([B)V")
	if !ok {
		return obj, nil
	}
	raw := []byte(text)
	bytes := make([]int8, len(raw))
	for i, b := range raw {
		bytes[i] = int8(b)
	}
	_, err = interp.invokeMethod(cls, ctor, []Value{VRef(obj), VRef(&ByteArray{Elements: bytes})})
	return obj, err
}

func (interp *Interpreter) executeArrayLoad(frame *Frame) error {
	vs, err := frame.PopN(2)
	if err != nil {
		return err
	}
	arrayVal, indexVal := vs[0], vs[1]
	if arrayVal.IsNull() {
		return interp.throwNullPointer(frame)
	}
	v, err := ArrayLoad(arrayVal.Ref(), int(indexVal.I32()))
	if err != nil {
		return err
	}
	frame.Push(v)
	return nil
}

func (interp *Interpreter) executeArrayStore(frame *Frame) error {
	vs, err := frame.PopN(3)
	if err != nil {
		return err
	}
	arrayVal, indexVal, value := vs[0], vs[1], vs[2]
	if arrayVal.IsNull() {
		return interp.throwNullPointer(frame)
	}
	return ArrayStore(arrayVal.Ref(), int(indexVal.I32()), value)
}

func (interp *Interpreter) executeGetStatic(frame *Frame, op classfile.Opcode) error {
	fref, err := classfile.ResolveFieldref(frame.Class.Def.ConstantPool, op.CPIndex)
	if err != nil {
		return newInternalError(MalformedCode, err)
	}
	cls, err := interp.CM.GetClassByName(fref.ClassName)
	if err != nil {
		return err
	}
	slot, err := cls.StaticFieldSlot(fref.ClassName, fref.FieldName)
	if err != nil {
		return err
	}
	frame.Push(interp.CM.GetStatic(cls.ID, slot))
	return nil
}

func (interp *Interpreter) executePutStatic(frame *Frame, op classfile.Opcode) error {
	fref, err := classfile.ResolveFieldref(frame.Class.Def.ConstantPool, op.CPIndex)
	if err != nil {
		return newInternalError(MalformedCode, err)
	}
	cls, err := interp.CM.GetClassByName(fref.ClassName)
	if err != nil {
		return err
	}
	slot, err := cls.StaticFieldSlot(fref.ClassName, fref.FieldName)
	if err != nil {
		return err
	}
	v, err := frame.Pop()
	if err != nil {
		return err
	}
	interp.CM.SetStatic(cls.ID, slot, v)
	return nil
}

func (interp *Interpreter) executeGetField(frame *Frame, op classfile.Opcode) error {
	fref, err := classfile.ResolveFieldref(frame.Class.Def.ConstantPool, op.CPIndex)
	if err != nil {
		return newInternalError(MalformedCode, err)
	}
	receiver, err := frame.Pop()
	if err != nil {
		return err
	}
	if receiver.IsNull() {
		return interp.throwNullPointer(frame)
	}
	obj, ok := receiver.Ref().(*Object)
	if !ok {
		return newInternalError(Unreachable, fmt.Errorf("getfield: receiver is not an object"))
	}
	runtimeClass := interp.CM.GetClassByID(obj.ClassID)
	v, err := obj.Get(runtimeClass, fref.ClassName, fref.FieldName)
	if err != nil {
		return err
	}
	frame.Push(v)
	return nil
}

func (interp *Interpreter) executePutField(frame *Frame, op classfile.Opcode) error {
	fref, err := classfile.ResolveFieldref(frame.Class.Def.ConstantPool, op.CPIndex)
	if err != nil {
		return newInternalError(MalformedCode, err)
	}
	vs, err := frame.PopN(2)
	if err != nil {
		return err
	}
	receiver, value := vs[0], vs[1]
	if receiver.IsNull() {
		return interp.throwNullPointer(frame)
	}
	obj, ok := receiver.Ref().(*Object)
	if !ok {
		return newInternalError(Unreachable, fmt.Errorf("putfield: receiver is not an object"))
	}
	runtimeClass := interp.CM.GetClassByID(obj.ClassID)
	return obj.Set(runtimeClass, fref.ClassName, fref.FieldName, value)
}

type invokeKind int

const (
	invokeStatic invokeKind = iota
	invokeSpecial
	invokeVirtual
	invokeInterface
)

// executeInvoke pops the method's arguments (and receiver, for every kind
// but static), resolves the target via the given dispatch kind, and either
// runs the native dispatcher or recurses into the interpreter.
func (interp *Interpreter) executeInvoke(frame *Frame, op classfile.Opcode, kind invokeKind) (Value, bool, error) {
	var className, methodName, descriptor string
	if kind == invokeInterface {
		mref, err := classfile.ResolveInterfaceMethodref(frame.Class.Def.ConstantPool, op.CPIndex)
		if err != nil {
			return Value{}, false, newInternalError(MalformedCode, err)
		}
		className, methodName, descriptor = mref.ClassName, mref.MethodName, mref.Descriptor
	} else {
		mref, err := classfile.ResolveMethodref(frame.Class.Def.ConstantPool, op.CPIndex)
		if err != nil {
			return Value{}, false, newInternalError(MalformedCode, err)
		}
		className, methodName, descriptor = mref.ClassName, mref.MethodName, mref.Descriptor
	}
	signatureKey := methodName + descriptor

	argCount, err := ArgCount(descriptor)
	if err != nil {
		return Value{}, false, newInternalError(MalformedCode, err)
	}

	args, err := frame.PopN(argCount)
	if err != nil {
		return Value{}, false, err
	}

	var receiver Value
	if kind != invokeStatic {
		receiver, err = frame.Pop()
		if err != nil {
			return Value{}, false, err
		}
		if receiver.IsNull() {
			return Value{}, false, interp.throwNullPointer(frame)
		}
		args = append([]Value{receiver}, args...)
	}

	var resolved *ResolvedMethod
	switch kind {
	case invokeStatic:
		resolved, err = ResolveStatic(interp.CM, className, signatureKey)
	case invokeSpecial:
		resolved, err = ResolveSpecial(interp.CM, className, signatureKey)
	case invokeVirtual:
		resolved, err = interp.resolveVirtualReceiver(receiver, signatureKey)
	case invokeInterface:
		resolved, err = interp.resolveVirtualReceiverInterface(receiver, signatureKey)
	}
	if err != nil {
		return Value{}, false, err
	}

	return Value{}, false, interp.dispatchCall(frame, resolved, args)
}

func (interp *Interpreter) resolveVirtualReceiver(receiver Value, signatureKey string) (*ResolvedMethod, error) {
	if classRef, ok := receiver.Ref().(*ClassRef); ok {
		_ = classRef
		cls, err := interp.CM.GetClassByName("java/lang/Class")
		if err != nil {
			return nil, err
		}
		return ResolveVirtual(interp.CM, cls.ID, signatureKey)
	}
	obj, ok := receiver.Ref().(*Object)
	if !ok {
		return nil, newInternalError(Unreachable, fmt.Errorf("invokevirtual: receiver is not an object"))
	}
	return ResolveVirtual(interp.CM, obj.ClassID, signatureKey)
}

func (interp *Interpreter) resolveVirtualReceiverInterface(receiver Value, signatureKey string) (*ResolvedMethod, error) {
	obj, ok := receiver.Ref().(*Object)
	if !ok {
		return nil, newInternalError(Unreachable, fmt.Errorf("invokeinterface: receiver is not an object"))
	}
	return ResolveInterface(interp.CM, obj.ClassID, signatureKey)
}

// dispatchCall runs resolved with args and, unless its descriptor's return
// type is void, pushes the result onto the calling frame's operand stack.
func (interp *Interpreter) dispatchCall(frame *Frame, resolved *ResolvedMethod, args []Value) error {
	v, err := interp.invokeMethod(resolved.Class, resolved.Method, args)
	if err != nil {
		return err
	}
	descriptor := resolved.Method.Descriptor(resolved.Class.Def.ConstantPool)
	if descriptor[len(descriptor)-1] == 'V' {
		return nil
	}
	frame.Push(v)
	return nil
}

func (interp *Interpreter) executeNew(frame *Frame, op classfile.Opcode) error {
	name := frame.Class.Def.ClassRefName(op.CPIndex)
	cls, err := interp.CM.GetClassByName(name)
	if err != nil {
		return err
	}
	obj := &Object{ClassID: cls.ID, Data: make([]Value, cls.NumObjectSlots)}
	frame.Push(VRef(obj))
	return nil
}

func (interp *Interpreter) executeNewArray(frame *Frame, op classfile.Opcode) error {
	v, err := frame.Pop()
	if err != nil {
		return err
	}
	length := int(v.I32())
	if length < 0 {
		return newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("negative array size %d", length))
	}
	ref, err := NewArrayOfTag(op.ArrayType, length)
	if err != nil {
		return err
	}
	frame.Push(VRef(ref))
	return nil
}

func (interp *Interpreter) executeANewArray(frame *Frame, op classfile.Opcode) error {
	v, err := frame.Pop()
	if err != nil {
		return err
	}
	length := int(v.I32())
	if length < 0 {
		return newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("negative array size %d", length))
	}
	name := frame.Class.Def.ClassRefName(op.CPIndex)
	cls, err := interp.CM.GetClassByName(name)
	if err != nil {
		return err
	}
	frame.Push(VRef(&ObjectArray{ElementClassID: cls.ID, Elements: make([]ObjectRef, length)}))
	return nil
}

// executeMultiANewArray executes the common 2-dimension case; higher
// dimensions are a documented residual limitation.
func (interp *Interpreter) executeMultiANewArray(frame *Frame, op classfile.Opcode) error {
	if op.Dims != 2 {
		return newExecutionError(UnimplementedOpcode, fmt.Errorf("multianewarray with %d dimensions", op.Dims))
	}
	dims, err := frame.PopN(2)
	if err != nil {
		return err
	}
	outer, inner := int(dims[0].I32()), int(dims[1].I32())
	if outer < 0 || inner < 0 {
		return newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("negative array size"))
	}
	name := frame.Class.Def.ClassRefName(op.CPIndex)
	cls, err := interp.CM.GetClassByName(name)
	if err != nil {
		return err
	}
	elements := make([]ObjectRef, outer)
	for i := range elements {
		elements[i] = &ObjectArray{ElementClassID: cls.ID, Elements: make([]ObjectRef, inner)}
	}
	frame.Push(VRef(&ObjectArray{ElementClassID: cls.ID, Elements: elements}))
	return nil
}

func (interp *Interpreter) executeCheckCast(frame *Frame, op classfile.Opcode) error {
	v, err := frame.Peek()
	if err != nil {
		return err
	}
	if v.IsNull() {
		return nil
	}
	name := frame.Class.Def.ClassRefName(op.CPIndex)
	if !interp.refMatchesClass(v, name) {
		t, tErr := NewThrowable(interp.CM, "java/lang/ClassCastException")
		if tErr != nil {
			return newExecutionError(UnimplementedOpcode, fmt.Errorf("ClassCastException: %s", name))
		}
		return t
	}
	return nil
}

func (interp *Interpreter) executeInstanceOf(frame *Frame, op classfile.Opcode) error {
	v, err := frame.Pop()
	if err != nil {
		return err
	}
	if v.IsNull() {
		frame.Push(VI32(0))
		return nil
	}
	name := frame.Class.Def.ClassRefName(op.CPIndex)
	if interp.refMatchesClass(v, name) {
		frame.Push(VI32(1))
	} else {
		frame.Push(VI32(0))
	}
	return nil
}

func (interp *Interpreter) refMatchesClass(v Value, name string) bool {
	switch r := v.Ref().(type) {
	case *Object:
		return isAssignableTo(interp.CM, r.ClassID, name)
	default:
		return false
	}
}
