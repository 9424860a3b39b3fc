package vm

import (
	"fmt"
	"math"

	"github.com/cricklet/govm/pkg/classfile"
)

func binI32(frame *Frame, f func(a, b int32) int32) error {
	vs, err := frame.PopN(2)
	if err != nil {
		return err
	}
	frame.Push(VI32(f(vs[0].I32(), vs[1].I32())))
	return nil
}

func unI32(frame *Frame, f func(a int32) int32) error {
	v, err := frame.Pop()
	if err != nil {
		return err
	}
	frame.Push(VI32(f(v.I32())))
	return nil
}

func divI32(frame *Frame, rem bool) error {
	vs, err := frame.PopN(2)
	if err != nil {
		return err
	}
	if vs[1].I32() == 0 {
		return newExecutionError(ArithmeticException, fmt.Errorf("/ by zero"))
	}
	if rem {
		frame.Push(VI32(vs[0].I32() % vs[1].I32()))
	} else {
		frame.Push(VI32(vs[0].I32() / vs[1].I32()))
	}
	return nil
}

func shiftI32(frame *Frame, mask uint32, f func(a int32, n uint) int32) error {
	vs, err := frame.PopN(2)
	if err != nil {
		return err
	}
	n := uint(uint32(vs[1].I32()) & mask)
	frame.Push(VI32(f(vs[0].I32(), n)))
	return nil
}

func binI64(frame *Frame, f func(a, b int64) int64) error {
	vs, err := frame.PopN(2)
	if err != nil {
		return err
	}
	frame.Push(VI64(f(vs[0].I64(), vs[1].I64())))
	return nil
}

func unI64(frame *Frame, f func(a int64) int64) error {
	v, err := frame.Pop()
	if err != nil {
		return err
	}
	frame.Push(VI64(f(v.I64())))
	return nil
}

func divI64(frame *Frame, rem bool) error {
	vs, err := frame.PopN(2)
	if err != nil {
		return err
	}
	if vs[1].I64() == 0 {
		return newExecutionError(ArithmeticException, fmt.Errorf("/ by zero"))
	}
	if rem {
		frame.Push(VI64(vs[0].I64() % vs[1].I64()))
	} else {
		frame.Push(VI64(vs[0].I64() / vs[1].I64()))
	}
	return nil
}

func shiftI64(frame *Frame, mask uint64, f func(a int64, n uint) int64) error {
	vs, err := frame.PopN(2)
	if err != nil {
		return err
	}
	n := uint(uint64(vs[1].I32()) & mask)
	frame.Push(VI64(f(vs[0].I64(), n)))
	return nil
}

func binF32(frame *Frame, f func(a, b float32) float32) error {
	vs, err := frame.PopN(2)
	if err != nil {
		return err
	}
	frame.Push(VF32(f(vs[0].F32(), vs[1].F32())))
	return nil
}

func unF32(frame *Frame, f func(a float32) float32) error {
	v, err := frame.Pop()
	if err != nil {
		return err
	}
	frame.Push(VF32(f(v.F32())))
	return nil
}

func binF64(frame *Frame, f func(a, b float64) float64) error {
	vs, err := frame.PopN(2)
	if err != nil {
		return err
	}
	frame.Push(VF64(f(vs[0].F64(), vs[1].F64())))
	return nil
}

func unF64(frame *Frame, f func(a float64) float64) error {
	v, err := frame.Pop()
	if err != nil {
		return err
	}
	frame.Push(VF64(f(v.F64())))
	return nil
}

func convert(frame *Frame, f func(v Value) Value) error {
	v, err := frame.Pop()
	if err != nil {
		return err
	}
	frame.Push(f(v))
	return nil
}

func float32ToInt32(f float32) int32 {
	if math.IsNaN(float64(f)) {
		return 0
	}
	if f >= float32(math.MaxInt32) {
		return math.MaxInt32
	}
	if f <= float32(math.MinInt32) {
		return math.MinInt32
	}
	return int32(f)
}

func float32ToInt64(f float32) int64 {
	if math.IsNaN(float64(f)) {
		return 0
	}
	if f >= float32(math.MaxInt64) {
		return math.MaxInt64
	}
	if f <= float32(math.MinInt64) {
		return math.MinInt64
	}
	return int64(f)
}

func float64ToInt32(f float64) int32 {
	if math.IsNaN(f) {
		return 0
	}
	if f >= math.MaxInt32 {
		return math.MaxInt32
	}
	if f <= math.MinInt32 {
		return math.MinInt32
	}
	return int32(f)
}

func float64ToInt64(f float64) int64 {
	if math.IsNaN(f) {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	if f <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(f)
}

func cmpI64(frame *Frame) error {
	vs, err := frame.PopN(2)
	if err != nil {
		return err
	}
	a, b := vs[0].I64(), vs[1].I64()
	switch {
	case a > b:
		frame.Push(VI32(1))
	case a < b:
		frame.Push(VI32(-1))
	default:
		frame.Push(VI32(0))
	}
	return nil
}

// cmpF32/cmpF64 implement FCMPL/FCMPG and DCMPL/DCMPG: nanResult is pushed
// when either operand is NaN (-1 for the *L forms, 1 for the *G forms).
func cmpF32(frame *Frame, nanResult int32) error {
	vs, err := frame.PopN(2)
	if err != nil {
		return err
	}
	a, b := vs[0].F32(), vs[1].F32()
	if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
		frame.Push(VI32(nanResult))
		return nil
	}
	switch {
	case a > b:
		frame.Push(VI32(1))
	case a < b:
		frame.Push(VI32(-1))
	default:
		frame.Push(VI32(0))
	}
	return nil
}

func cmpF64(frame *Frame, nanResult int32) error {
	vs, err := frame.PopN(2)
	if err != nil {
		return err
	}
	a, b := vs[0].F64(), vs[1].F64()
	if math.IsNaN(a) || math.IsNaN(b) {
		frame.Push(VI32(nanResult))
		return nil
	}
	switch {
	case a > b:
		frame.Push(VI32(1))
	case a < b:
		frame.Push(VI32(-1))
	default:
		frame.Push(VI32(0))
	}
	return nil
}

func branchUnary(frame *Frame, op classfile.Opcode, cond func(Value) bool) error {
	v, err := frame.Pop()
	if err != nil {
		return err
	}
	if cond(v) {
		frame.Jump(op.Target)
	}
	return nil
}

func branchBinary(frame *Frame, op classfile.Opcode, cond func(a, b Value) bool) error {
	vs, err := frame.PopN(2)
	if err != nil {
		return err
	}
	if cond(vs[0], vs[1]) {
		frame.Jump(op.Target)
	}
	return nil
}

func executeSwitch(frame *Frame, op classfile.Opcode) error {
	v, err := frame.Pop()
	if err != nil {
		return err
	}
	key := v.I32()
	if op.Switch.Targets != nil {
		if key >= op.Switch.Low && key <= op.Switch.High {
			frame.Jump(op.Switch.Targets[key-op.Switch.Low])
			return nil
		}
		frame.Jump(op.Target)
		return nil
	}
	for _, e := range op.Switch.Entries {
		if e.Key == key {
			frame.Jump(e.Target)
			return nil
		}
	}
	frame.Jump(op.Target)
	return nil
}

// dupX2/dup2/dup2X1/dup2X2 follow the JVM specification's category-aware
// form rules: a category-2 value (long/double) occupies the "X2" slot of a
// form 2 dup on its own, without needing a second logical value.
func dupX2(frame *Frame) error {
	top, err := frame.Pop()
	if err != nil {
		return err
	}
	second, err := frame.Pop()
	if err != nil {
		return err
	}
	if second.Category() == 2 {
		frame.Push(top)
		frame.Push(second)
		frame.Push(top)
		return nil
	}
	third, err := frame.Pop()
	if err != nil {
		return err
	}
	frame.Push(top)
	frame.Push(third)
	frame.Push(second)
	frame.Push(top)
	return nil
}

func dup2(frame *Frame) error {
	top, err := frame.Pop()
	if err != nil {
		return err
	}
	if top.Category() == 2 {
		frame.Push(top)
		frame.Push(top)
		return nil
	}
	second, err := frame.Pop()
	if err != nil {
		return err
	}
	frame.Push(second)
	frame.Push(top)
	frame.Push(second)
	frame.Push(top)
	return nil
}

func dup2X1(frame *Frame) error {
	top, err := frame.Pop()
	if err != nil {
		return err
	}
	if top.Category() == 2 {
		second, err := frame.Pop()
		if err != nil {
			return err
		}
		frame.Push(top)
		frame.Push(second)
		frame.Push(top)
		return nil
	}
	second, err := frame.Pop()
	if err != nil {
		return err
	}
	third, err := frame.Pop()
	if err != nil {
		return err
	}
	frame.Push(second)
	frame.Push(top)
	frame.Push(third)
	frame.Push(second)
	frame.Push(top)
	return nil
}

func dup2X2(frame *Frame) error {
	top, err := frame.Pop()
	if err != nil {
		return err
	}
	second, err := frame.Pop()
	if err != nil {
		return err
	}
	if top.Category() == 2 && second.Category() == 2 {
		frame.Push(top)
		frame.Push(second)
		frame.Push(top)
		return nil
	}
	if top.Category() == 1 && second.Category() == 1 {
		third, err := frame.Pop()
		if err != nil {
			return err
		}
		if third.Category() == 2 {
			frame.Push(second)
			frame.Push(top)
			frame.Push(third)
			frame.Push(second)
			frame.Push(top)
			return nil
		}
		fourth, err := frame.Pop()
		if err != nil {
			return err
		}
		frame.Push(second)
		frame.Push(top)
		frame.Push(fourth)
		frame.Push(third)
		frame.Push(second)
		frame.Push(top)
		return nil
	}
	// top is category 2, second is category 1: form dup2_x2(b)
	third, err := frame.Pop()
	if err != nil {
		return err
	}
	frame.Push(top)
	frame.Push(third)
	frame.Push(second)
	frame.Push(top)
	return nil
}
