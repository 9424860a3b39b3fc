package vm

import (
	"fmt"
	"math"

	"github.com/cricklet/govm/pkg/classfile"
)

// executeInstruction runs one decoded opcode against frame, returning
// (returnValue, hasReturn, error). hasReturn is true only for the various
// xRETURN forms, at which point the interpreter loop hands returnValue back
// to the caller.
func (interp *Interpreter) executeInstruction(frame *Frame, op classfile.Opcode) (Value, bool, error) {
	switch op.Kind {
	case classfile.Nop:
		// no-op

	case classfile.AconstNull:
		frame.Push(VNull())
	case classfile.Iconst:
		frame.Push(VI32(int32(op.IntVal)))
	case classfile.Lconst:
		frame.Push(VI64(op.IntVal))
	case classfile.Fconst:
		frame.Push(VF32(math.Float32frombits(uint32(op.IntVal))))
	case classfile.Dconst:
		frame.Push(VF64(math.Float64frombits(uint64(op.IntVal))))

	case classfile.Ldc, classfile.Ldc2W:
		return interp.executeLdc(frame, op.CPIndex)

	case classfile.ILoad, classfile.FLoad, classfile.ALoad:
		v, err := frame.GetLocal(op.Var)
		if err != nil {
			return Value{}, false, err
		}
		frame.Push(v)
	case classfile.LLoad, classfile.DLoad:
		v, err := frame.GetLocal(op.Var)
		if err != nil {
			return Value{}, false, err
		}
		frame.Push(v)

	case classfile.IStore, classfile.FStore, classfile.AStore, classfile.LStore, classfile.DStore:
		v, err := frame.Pop()
		if err != nil {
			return Value{}, false, err
		}
		if err := frame.SetLocal(op.Var, v); err != nil {
			return Value{}, false, err
		}

	case classfile.IALoad, classfile.LALoad, classfile.FALoad, classfile.DALoad,
		classfile.AALoad, classfile.BALoad, classfile.CALoad, classfile.SALoad:
		return Value{}, false, interp.executeArrayLoad(frame)

	case classfile.IAStore, classfile.LAStore, classfile.FAStore, classfile.DAStore,
		classfile.AAStore, classfile.BAStore, classfile.CAStore, classfile.SAStore:
		return Value{}, false, interp.executeArrayStore(frame)

	case classfile.Pop:
		_, err := frame.Pop()
		if err != nil {
			return Value{}, false, err
		}
	case classfile.Pop2:
		v, err := frame.Pop()
		if err != nil {
			return Value{}, false, err
		}
		if v.Category() == 1 {
			if _, err := frame.Pop(); err != nil {
				return Value{}, false, err
			}
		}

	case classfile.Dup:
		v, err := frame.Peek()
		if err != nil {
			return Value{}, false, err
		}
		frame.Push(v)
	case classfile.DupX1:
		vs, err := frame.PopN(2)
		if err != nil {
			return Value{}, false, err
		}
		frame.Push(vs[1])
		frame.Push(vs[0])
		frame.Push(vs[1])
	case classfile.DupX2:
		if err := dupX2(frame); err != nil {
			return Value{}, false, err
		}
	case classfile.Dup2:
		if err := dup2(frame); err != nil {
			return Value{}, false, err
		}
	case classfile.Dup2X1:
		if err := dup2X1(frame); err != nil {
			return Value{}, false, err
		}
	case classfile.Dup2X2:
		if err := dup2X2(frame); err != nil {
			return Value{}, false, err
		}
	case classfile.Swap:
		vs, err := frame.PopN(2)
		if err != nil {
			return Value{}, false, err
		}
		frame.Push(vs[1])
		frame.Push(vs[0])

	case classfile.IAdd:
		return Value{}, false, binI32(frame, func(a, b int32) int32 { return a + b })
	case classfile.ISub:
		return Value{}, false, binI32(frame, func(a, b int32) int32 { return a - b })
	case classfile.IMul:
		return Value{}, false, binI32(frame, func(a, b int32) int32 { return a * b })
	case classfile.IDiv:
		return Value{}, false, divI32(frame, false)
	case classfile.IRem:
		return Value{}, false, divI32(frame, true)
	case classfile.INeg:
		return Value{}, false, unI32(frame, func(a int32) int32 { return -a })
	case classfile.IShl:
		return Value{}, false, shiftI32(frame, 31, func(a int32, n uint) int32 { return a << n })
	case classfile.IShr:
		return Value{}, false, shiftI32(frame, 31, func(a int32, n uint) int32 { return a >> n })
	case classfile.IUshr:
		return Value{}, false, shiftI32(frame, 31, func(a int32, n uint) int32 { return int32(uint32(a) >> n) })
	case classfile.IAnd:
		return Value{}, false, binI32(frame, func(a, b int32) int32 { return a & b })
	case classfile.IOr:
		return Value{}, false, binI32(frame, func(a, b int32) int32 { return a | b })
	case classfile.IXor:
		return Value{}, false, binI32(frame, func(a, b int32) int32 { return a ^ b })
	case classfile.IInc:
		v, err := frame.GetLocal(op.Var)
		if err != nil {
			return Value{}, false, err
		}
		return Value{}, false, frame.SetLocal(op.Var, VI32(v.I32()+op.IincAmount))

	case classfile.LAdd:
		return Value{}, false, binI64(frame, func(a, b int64) int64 { return a + b })
	case classfile.LSub:
		return Value{}, false, binI64(frame, func(a, b int64) int64 { return a - b })
	case classfile.LMul:
		return Value{}, false, binI64(frame, func(a, b int64) int64 { return a * b })
	case classfile.LDiv:
		return Value{}, false, divI64(frame, false)
	case classfile.LRem:
		return Value{}, false, divI64(frame, true)
	case classfile.LNeg:
		return Value{}, false, unI64(frame, func(a int64) int64 { return -a })
	case classfile.LShl:
		return Value{}, false, shiftI64(frame, 63, func(a int64, n uint) int64 { return a << n })
	case classfile.LShr:
		return Value{}, false, shiftI64(frame, 63, func(a int64, n uint) int64 { return a >> n })
	case classfile.LUshr:
		return Value{}, false, shiftI64(frame, 63, func(a int64, n uint) int64 { return int64(uint64(a) >> n) })
	case classfile.LAnd:
		return Value{}, false, binI64(frame, func(a, b int64) int64 { return a & b })
	case classfile.LOr:
		return Value{}, false, binI64(frame, func(a, b int64) int64 { return a | b })
	case classfile.LXor:
		return Value{}, false, binI64(frame, func(a, b int64) int64 { return a ^ b })

	case classfile.FAdd:
		return Value{}, false, binF32(frame, func(a, b float32) float32 { return a + b })
	case classfile.FSub:
		return Value{}, false, binF32(frame, func(a, b float32) float32 { return a - b })
	case classfile.FMul:
		return Value{}, false, binF32(frame, func(a, b float32) float32 { return a * b })
	case classfile.FDiv:
		return Value{}, false, binF32(frame, func(a, b float32) float32 { return a / b })
	case classfile.FRem:
		return Value{}, false, binF32(frame, func(a, b float32) float32 { return float32(math.Mod(float64(a), float64(b))) })
	case classfile.FNeg:
		return Value{}, false, unF32(frame, func(a float32) float32 { return -a })

	case classfile.DAdd:
		return Value{}, false, binF64(frame, func(a, b float64) float64 { return a + b })
	case classfile.DSub:
		return Value{}, false, binF64(frame, func(a, b float64) float64 { return a - b })
	case classfile.DMul:
		return Value{}, false, binF64(frame, func(a, b float64) float64 { return a * b })
	case classfile.DDiv:
		return Value{}, false, binF64(frame, func(a, b float64) float64 { return a / b })
	case classfile.DRem:
		return Value{}, false, binF64(frame, func(a, b float64) float64 { return math.Mod(a, b) })
	case classfile.DNeg:
		return Value{}, false, unF64(frame, func(a float64) float64 { return -a })

	case classfile.I2L:
		return Value{}, false, convert(frame, func(v Value) Value { return VI64(int64(v.I32())) })
	case classfile.I2F:
		return Value{}, false, convert(frame, func(v Value) Value { return VF32(float32(v.I32())) })
	case classfile.I2D:
		return Value{}, false, convert(frame, func(v Value) Value { return VF64(float64(v.I32())) })
	case classfile.L2I:
		return Value{}, false, convert(frame, func(v Value) Value { return VI32(int32(v.I64())) })
	case classfile.L2F:
		return Value{}, false, convert(frame, func(v Value) Value { return VF32(float32(v.I64())) })
	case classfile.L2D:
		return Value{}, false, convert(frame, func(v Value) Value { return VF64(float64(v.I64())) })
	case classfile.F2I:
		return Value{}, false, convert(frame, func(v Value) Value { return VI32(float32ToInt32(v.F32())) })
	case classfile.F2L:
		return Value{}, false, convert(frame, func(v Value) Value { return VI64(float32ToInt64(v.F32())) })
	case classfile.F2D:
		return Value{}, false, convert(frame, func(v Value) Value { return VF64(float64(v.F32())) })
	case classfile.D2I:
		return Value{}, false, convert(frame, func(v Value) Value { return VI32(float64ToInt32(v.F64())) })
	case classfile.D2L:
		return Value{}, false, convert(frame, func(v Value) Value { return VI64(float64ToInt64(v.F64())) })
	case classfile.D2F:
		return Value{}, false, convert(frame, func(v Value) Value { return VF32(float32(v.F64())) })
	case classfile.I2B:
		return Value{}, false, convert(frame, func(v Value) Value { return VI32(int32(int8(v.I32()))) })
	case classfile.I2C:
		return Value{}, false, convert(frame, func(v Value) Value { return VChar(uint16(uint32(v.I32()))) })
	case classfile.I2S:
		return Value{}, false, convert(frame, func(v Value) Value { return VI32(int32(int16(v.I32()))) })

	case classfile.LCmp:
		return Value{}, false, cmpI64(frame)
	case classfile.FCmpL:
		return Value{}, false, cmpF32(frame, -1)
	case classfile.FCmpG:
		return Value{}, false, cmpF32(frame, 1)
	case classfile.DCmpL:
		return Value{}, false, cmpF64(frame, -1)
	case classfile.DCmpG:
		return Value{}, false, cmpF64(frame, 1)

	case classfile.IfEq:
		return Value{}, false, branchUnary(frame, op, func(v Value) bool { return v.I32() == 0 })
	case classfile.IfNe:
		return Value{}, false, branchUnary(frame, op, func(v Value) bool { return v.I32() != 0 })
	case classfile.IfLt:
		return Value{}, false, branchUnary(frame, op, func(v Value) bool { return v.I32() < 0 })
	case classfile.IfGe:
		return Value{}, false, branchUnary(frame, op, func(v Value) bool { return v.I32() >= 0 })
	case classfile.IfGt:
		return Value{}, false, branchUnary(frame, op, func(v Value) bool { return v.I32() > 0 })
	case classfile.IfLe:
		return Value{}, false, branchUnary(frame, op, func(v Value) bool { return v.I32() <= 0 })
	case classfile.IfNull:
		return Value{}, false, branchUnary(frame, op, func(v Value) bool { return v.IsNull() })
	case classfile.IfNonNull:
		return Value{}, false, branchUnary(frame, op, func(v Value) bool { return !v.IsNull() })

	case classfile.IfICmpEq:
		return Value{}, false, branchBinary(frame, op, func(a, b Value) bool { return a.I32() == b.I32() })
	case classfile.IfICmpNe:
		return Value{}, false, branchBinary(frame, op, func(a, b Value) bool { return a.I32() != b.I32() })
	case classfile.IfICmpLt:
		return Value{}, false, branchBinary(frame, op, func(a, b Value) bool { return a.I32() < b.I32() })
	case classfile.IfICmpGe:
		return Value{}, false, branchBinary(frame, op, func(a, b Value) bool { return a.I32() >= b.I32() })
	case classfile.IfICmpGt:
		return Value{}, false, branchBinary(frame, op, func(a, b Value) bool { return a.I32() > b.I32() })
	case classfile.IfICmpLe:
		return Value{}, false, branchBinary(frame, op, func(a, b Value) bool { return a.I32() <= b.I32() })
	case classfile.IfACmpEq:
		return Value{}, false, branchBinary(frame, op, func(a, b Value) bool { return refEqual(a, b) })
	case classfile.IfACmpNe:
		return Value{}, false, branchBinary(frame, op, func(a, b Value) bool { return !refEqual(a, b) })

	case classfile.Goto:
		frame.Jump(op.Target)
	case classfile.Jsr:
		frame.Push(VI32(int32(frame.PC)))
		frame.Jump(op.Target)
	case classfile.Ret:
		v, err := frame.GetLocal(op.Var)
		if err != nil {
			return Value{}, false, err
		}
		frame.Jump(int(v.I32()))

	case classfile.TableSwitch, classfile.LookupSwitch:
		return Value{}, false, executeSwitch(frame, op)

	case classfile.IReturn, classfile.LReturn, classfile.FReturn, classfile.DReturn, classfile.AReturn:
		v, err := frame.Pop()
		if err != nil {
			return Value{}, false, err
		}
		return v, true, nil
	case classfile.Return:
		return VVoid(), true, nil

	case classfile.GetStatic:
		return Value{}, false, interp.executeGetStatic(frame, op)
	case classfile.PutStatic:
		return Value{}, false, interp.executePutStatic(frame, op)
	case classfile.GetField:
		return Value{}, false, interp.executeGetField(frame, op)
	case classfile.PutField:
		return Value{}, false, interp.executePutField(frame, op)

	case classfile.InvokeVirtual:
		return interp.executeInvoke(frame, op, invokeVirtual)
	case classfile.InvokeSpecial:
		return interp.executeInvoke(frame, op, invokeSpecial)
	case classfile.InvokeStatic:
		return interp.executeInvoke(frame, op, invokeStatic)
	case classfile.InvokeInterface:
		return interp.executeInvoke(frame, op, invokeInterface)
	case classfile.InvokeDynamic:
		return Value{}, false, newExecutionError(UnimplementedOpcode, fmt.Errorf("invokedynamic"))

	case classfile.New:
		return Value{}, false, interp.executeNew(frame, op)
	case classfile.NewArray:
		return Value{}, false, interp.executeNewArray(frame, op)
	case classfile.ANewArray:
		return Value{}, false, interp.executeANewArray(frame, op)
	case classfile.MultiANewArray:
		return Value{}, false, interp.executeMultiANewArray(frame, op)
	case classfile.ArrayLength:
		v, err := frame.Pop()
		if err != nil {
			return Value{}, false, err
		}
		if v.IsNull() {
			return Value{}, false, interp.throwNullPointer(frame)
		}
		n, err := ArrayLength(v.Ref())
		if err != nil {
			return Value{}, false, err
		}
		frame.Push(VI32(int32(n)))

	case classfile.AThrow:
		v, err := frame.Pop()
		if err != nil {
			return Value{}, false, err
		}
		if v.IsNull() {
			return Value{}, false, interp.throwNullPointer(frame)
		}
		obj, ok := v.Ref().(*Object)
		if !ok {
			return Value{}, false, newInternalError(Unreachable, fmt.Errorf("athrow: not an object"))
		}
		return Value{}, false, &Throwable{ClassID: obj.ClassID, Object: obj}

	case classfile.CheckCast:
		return Value{}, false, interp.executeCheckCast(frame, op)
	case classfile.InstanceOf:
		return Value{}, false, interp.executeInstanceOf(frame, op)

	case classfile.MonitorEnter, classfile.MonitorExit:
		if _, err := frame.Pop(); err != nil {
			return Value{}, false, err
		}

	default:
		return Value{}, false, newExecutionError(UnimplementedOpcode, fmt.Errorf("opcode kind %v", op.Kind))
	}

	return Value{}, false, nil
}

func (interp *Interpreter) throwNullPointer(frame *Frame) error {
	t, err := NewThrowable(interp.CM, "java/lang/NullPointerException")
	if err != nil {
		return newExecutionError(NullPointer, fmt.Errorf("null pointer (NullPointerException unavailable: %v)", err))
	}
	return t
}

func refEqual(a, b Value) bool {
	if a.IsNull() && b.IsNull() {
		return true
	}
	if a.IsNull() != b.IsNull() {
		return false
	}
	return a.Ref() == b.Ref()
}
