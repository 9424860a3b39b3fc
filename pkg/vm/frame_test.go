package vm

import (
	"testing"

	"github.com/cricklet/govm/pkg/classfile"
)

func testFrame(maxLocals, maxStack uint16) *Frame {
	method := &classfile.Method{
		Code: &classfile.CodeAttribute{MaxLocals: maxLocals, MaxStack: maxStack, Code: make([]classfile.Opcode, 1)},
	}
	return NewFrame(nil, method, nil)
}

func TestFramePushPop(t *testing.T) {
	t.Run("LIFO order", func(t *testing.T) {
		frame := testFrame(10, 10)

		frame.Push(VI32(10))
		frame.Push(VI32(20))
		frame.Push(VI32(30))

		v, err := frame.Pop()
		if err != nil || v.I32() != 30 {
			t.Errorf("first Pop: got %v, %v, want 30", v.I32(), err)
		}

		v, err = frame.Pop()
		if err != nil || v.I32() != 20 {
			t.Errorf("second Pop: got %v, %v, want 20", v.I32(), err)
		}

		v, err = frame.Pop()
		if err != nil || v.I32() != 10 {
			t.Errorf("third Pop: got %v, %v, want 10", v.I32(), err)
		}
	})

	t.Run("push after pop reuses space", func(t *testing.T) {
		frame := testFrame(10, 10)

		frame.Push(VI32(1))
		frame.Push(VI32(2))
		if _, err := frame.Pop(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		frame.Push(VI32(3))
		v, _ := frame.Pop()
		if v.I32() != 3 {
			t.Errorf("got %d, want 3", v.I32())
		}

		v, _ = frame.Pop()
		if v.I32() != 1 {
			t.Errorf("got %d, want 1", v.I32())
		}
	})

	t.Run("pop on empty stack errors", func(t *testing.T) {
		frame := testFrame(10, 10)
		if _, err := frame.Pop(); err == nil {
			t.Error("expected error popping empty stack, got nil")
		}
	})

	t.Run("negative values", func(t *testing.T) {
		frame := testFrame(10, 10)

		frame.Push(VI32(-100))
		v, _ := frame.Pop()
		if v.I32() != -100 {
			t.Errorf("got %d, want -100", v.I32())
		}
	})
}

func TestFrameLocalVars(t *testing.T) {
	t.Run("basic set and get", func(t *testing.T) {
		frame := testFrame(4, 10)

		frame.SetLocal(0, VI32(10))
		frame.SetLocal(1, VI32(20))
		frame.SetLocal(2, VI32(30))
		frame.SetLocal(3, VI32(40))

		for i, want := range []int32{10, 20, 30, 40} {
			v, err := frame.GetLocal(i)
			if err != nil || v.I32() != want {
				t.Errorf("GetLocal(%d): got %v, %v, want %d", i, v.I32(), err, want)
			}
		}
	})

	t.Run("overwrite local variable", func(t *testing.T) {
		frame := testFrame(4, 10)

		frame.SetLocal(0, VI32(10))
		frame.SetLocal(0, VI32(99))

		v, _ := frame.GetLocal(0)
		if v.I32() != 99 {
			t.Errorf("GetLocal(0) after overwrite: got %d, want 99", v.I32())
		}
	})

	t.Run("out of range local errors", func(t *testing.T) {
		frame := testFrame(4, 10)
		if _, err := frame.GetLocal(4); err == nil {
			t.Error("expected error for out-of-range local, got nil")
		}
		if err := frame.SetLocal(-1, VI32(0)); err == nil {
			t.Error("expected error for negative local index, got nil")
		}
	})

	t.Run("local vars independent from stack", func(t *testing.T) {
		frame := testFrame(4, 10)

		frame.SetLocal(0, VI32(10))
		frame.Push(VI32(99))

		v, _ := frame.GetLocal(0)
		if v.I32() != 10 {
			t.Errorf("GetLocal(0) after push: got %d, want 10", v.I32())
		}

		popped, _ := frame.Pop()
		if popped.I32() != 99 {
			t.Errorf("Pop after SetLocal: got %d, want 99", popped.I32())
		}
	})
}

func TestFrameCategory2Locals(t *testing.T) {
	method := &classfile.Method{
		Code: &classfile.CodeAttribute{MaxLocals: 4, MaxStack: 4, Code: make([]classfile.Opcode, 1)},
	}
	frame := NewFrame(nil, method, []Value{VI64(7), VI32(3)})

	v0, _ := frame.GetLocal(0)
	if v0.I64() != 7 {
		t.Errorf("local 0: got %d, want 7", v0.I64())
	}
	v2, _ := frame.GetLocal(2)
	if v2.I32() != 3 {
		t.Errorf("local 2 (after category-2 arg occupies slots 0-1): got %d, want 3", v2.I32())
	}
}
