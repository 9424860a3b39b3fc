package vm

import (
	"testing"

	"github.com/cricklet/govm/pkg/classfile"
)

// runBytecode decodes raw bytecode (no constant-pool references) into a
// Frame and drives it through the interpreter's instruction loop, returning
// the int result of an IRETURN. Locals beyond the given values default to
// Value{} (KindVoid), matching an untouched local slot.
func runBytecode(t *testing.T, code []byte, locals ...int32) int32 {
	t.Helper()

	v, err := runBytecodeValue(t, code, locals...)
	if err != nil {
		t.Fatalf("execution error: %v", err)
	}
	return v.I32()
}

func runBytecodeValue(t *testing.T, code []byte, locals ...int32) (Value, error) {
	t.Helper()

	ops, err := classfile.DecodeCode(code)
	if err != nil {
		t.Fatalf("DecodeCode: %v", err)
	}

	maxLocals := uint16(len(locals))
	if maxLocals < 4 {
		maxLocals = 4
	}
	method := &classfile.Method{
		Code: &classfile.CodeAttribute{MaxLocals: maxLocals, MaxStack: 16, Code: ops},
	}
	cls := &Class{Name: "Test"}
	frame := NewFrame(cls, method, nil)
	for i, l := range locals {
		frame.Locals[i] = VI32(l)
	}

	interp := &Interpreter{}
	return interp.run(frame)
}

func TestIconstAndReturn(t *testing.T) {
	tests := []struct {
		name   string
		opcode byte
		want   int32
	}{
		{"iconst_m1", 0x02, -1},
		{"iconst_0", 0x03, 0},
		{"iconst_1", 0x04, 1},
		{"iconst_2", 0x05, 2},
		{"iconst_3", 0x06, 3},
		{"iconst_4", 0x07, 4},
		{"iconst_5", 0x08, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runBytecode(t, []byte{tt.opcode, 0xAC}) // <op>, ireturn
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBipushSipush(t *testing.T) {
	t.Run("bipush positive", func(t *testing.T) {
		got := runBytecode(t, []byte{0x10, 42, 0xAC}) // bipush 42, ireturn
		if got != 42 {
			t.Errorf("got %d, want 42", got)
		}
	})
	t.Run("bipush negative", func(t *testing.T) {
		got := runBytecode(t, []byte{0x10, 0xFB, 0xAC}) // bipush -5, ireturn
		if got != -5 {
			t.Errorf("got %d, want -5", got)
		}
	})
	t.Run("sipush", func(t *testing.T) {
		got := runBytecode(t, []byte{0x11, 0x03, 0xE8, 0xAC}) // sipush 1000, ireturn
		if got != 1000 {
			t.Errorf("got %d, want 1000", got)
		}
	})
}

func TestLoadLocalsAndAdd(t *testing.T) {
	// iload_0, iload_1, iadd, ireturn
	got := runBytecode(t, []byte{0x1A, 0x1B, 0x60, 0xAC}, 7, 8)
	if got != 15 {
		t.Errorf("got %d, want 15", got)
	}
}

func TestIStoreThenILoad(t *testing.T) {
	// bipush 9, istore_2, iload_2, ireturn
	got := runBytecode(t, []byte{0x10, 9, 0x3D, 0x1C, 0xAC})
	if got != 9 {
		t.Errorf("got %d, want 9", got)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		want int32
	}{
		{"isub", []byte{0x10, 10, 0x10, 3, 0x64, 0xAC}, 7},
		{"imul", []byte{0x10, 6, 0x10, 7, 0x68, 0xAC}, 42},
		{"idiv", []byte{0x10, 20, 0x10, 3, 0x6C, 0xAC}, 6},
		{"irem", []byte{0x10, 20, 0x10, 3, 0x70, 0xAC}, 2},
		{"ineg", []byte{0x10, 5, 0x74, 0xAC}, -5},
		{"iand", []byte{0x10, 0x0F, 0x10, 0x03, 0x7E, 0xAC}, 3},
		{"ior", []byte{0x10, 0x0C, 0x10, 0x03, 0x80, 0xAC}, 15},
		{"ixor", []byte{0x10, 0x0F, 0x10, 0x03, 0x82, 0xAC}, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runBytecode(t, tt.code)
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIntegerDivideByZero(t *testing.T) {
	// bipush 1, iconst_0, idiv, ireturn
	_, err := runBytecodeValue(t, []byte{0x10, 1, 0x03, 0x6C, 0xAC})
	if err == nil {
		t.Fatal("expected ArithmeticException, got nil")
	}
	ee, ok := err.(*ExecutionError)
	if !ok {
		t.Fatalf("expected *ExecutionError, got %T: %v", err, err)
	}
	if ee.Kind != ArithmeticException {
		t.Errorf("ExecutionError.Kind: got %v, want ArithmeticException", ee.Kind)
	}
}

func TestShifts(t *testing.T) {
	t.Run("ishl masks to low 5 bits", func(t *testing.T) {
		// bipush 1, bipush 33 (=1 mod 32), ishl, ireturn -> 1<<1 == 2
		got := runBytecode(t, []byte{0x10, 1, 0x10, 33, 0x78, 0xAC})
		if got != 2 {
			t.Errorf("got %d, want 2", got)
		}
	})
	t.Run("iushr on negative", func(t *testing.T) {
		// iconst_m1, bipush 28, iushr, ireturn -> top 4 bits of all-ones
		got := runBytecode(t, []byte{0x02, 0x10, 28, 0x7C, 0xAC})
		if got != 0xF {
			t.Errorf("got %d, want 15", got)
		}
	})
}

func TestIinc(t *testing.T) {
	// bipush 10, istore_0, iinc 0 5, iload_0, ireturn
	got := runBytecode(t, []byte{0x10, 10, 0x3B, 0x84, 0x00, 0x05, 0x1A, 0xAC})
	if got != 15 {
		t.Errorf("got %d, want 15", got)
	}
}

func TestStackOps(t *testing.T) {
	t.Run("dup duplicates and adds", func(t *testing.T) {
		// bipush 4, dup, iadd, ireturn -> 8
		got := runBytecode(t, []byte{0x10, 4, 0x59, 0x60, 0xAC})
		if got != 8 {
			t.Errorf("got %d, want 8", got)
		}
	})
	t.Run("swap reorders before isub", func(t *testing.T) {
		// bipush 3, bipush 10, swap, isub, ireturn -> 10-3 = 7
		got := runBytecode(t, []byte{0x10, 3, 0x10, 10, 0x5F, 0x64, 0xAC})
		if got != 7 {
			t.Errorf("got %d, want 7", got)
		}
	})
	t.Run("pop discards the top value", func(t *testing.T) {
		// bipush 9, bipush 1, pop, ireturn -> 9
		got := runBytecode(t, []byte{0x10, 9, 0x10, 1, 0x57, 0xAC})
		if got != 9 {
			t.Errorf("got %d, want 9", got)
		}
	})
}

func TestConditionalBranches(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		want int32
	}{
		// Each case: iconst, ifeq +6 (to the bipush 9 at offset 7), else fall
		// through to bipush 2; each path ends in its own ireturn.
		{
			"ifeq false branch not taken",
			[]byte{
				0x04,             // 0: iconst_1
				0x99, 0x00, 0x06, // 1: ifeq -> 7 (not taken, 1 != 0)
				0x10, 2, // 4: bipush 2
				0xAC, // 6: ireturn
				0x10, 9, // 7: bipush 9 (unreached)
				0xAC,
			},
			2,
		},
		{
			"ifeq true branch taken",
			[]byte{
				0x03,             // 0: iconst_0
				0x99, 0x00, 0x06, // 1: ifeq -> 7
				0x10, 2, // 4: bipush 2 (unreached)
				0xAC,    // 6: ireturn (unreached)
				0x10, 9, // 7: bipush 9
				0xAC, // 9: ireturn
			},
			9,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runBytecode(t, tt.code)
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIfICmpGeLoopSum(t *testing.T) {
	// Sums 0..4 via a back-edge loop, mirroring a typical compiled `for` loop:
	//   i=0 (local 0), sum=0 (local 1)
	//   loop: if i >= 5 goto end
	//         sum += i; i++; goto loop
	//   end: return sum
	got := runBytecode(t, assembleLoopSum())
	if got != 10 { // 0+1+2+3+4
		t.Errorf("got %d, want 10", got)
	}
}

// assembleLoopSum builds the same loop as the inline comment above but
// computes its goto/if_icmpge offsets from actual instruction lengths,
// so the test doesn't depend on manually counted byte offsets.
func assembleLoopSum() []byte {
	type instr struct {
		bytes []byte
	}
	ins := []instr{
		{[]byte{0x03}},       // 0: iconst_0
		{[]byte{0x3B}},       // istore_0 (i=0)
		{[]byte{0x03}},       // iconst_0
		{[]byte{0x3C}},       // istore_1 (sum=0)
		{[]byte{0x1A}},       // loop: iload_0
		{[]byte{0x10, 5}},    // bipush 5
		{[]byte{0xA2, 0, 0}}, // if_icmpge end (patched below)
		{[]byte{0x1B}},       // iload_1
		{[]byte{0x1A}},       // iload_0
		{[]byte{0x60}},       // iadd
		{[]byte{0x3C}},       // istore_1
		{[]byte{0x84, 0, 1}}, // iinc 0 1
		{[]byte{0xA7, 0, 0}}, // goto loop (patched below)
		{[]byte{0x1B}},       // end: iload_1
		{[]byte{0xAC}},       // ireturn
	}

	offsets := make([]int, len(ins))
	pos := 0
	for i, in := range ins {
		offsets[i] = pos
		pos += len(in.bytes)
	}
	loopStart := offsets[4]
	ifICmpGeAt := offsets[6]
	endAt := offsets[13]
	gotoAt := offsets[12]

	patch16 := func(b []byte, delta int) {
		b[1] = byte(uint16(delta) >> 8)
		b[2] = byte(uint16(delta))
	}
	patch16(ins[6].bytes, endAt-ifICmpGeAt)
	patch16(ins[12].bytes, loopStart-gotoAt)

	var out []byte
	for _, in := range ins {
		out = append(out, in.bytes...)
	}
	return out
}

func TestLongCompare(t *testing.T) {
	// lconst_1, lconst_0, lcmp, ireturn -> 1 (a > b)
	got := runBytecode(t, []byte{0x0A, 0x09, 0x94, 0xAC})
	if got != 1 {
		t.Errorf("lcmp: got %d, want 1", got)
	}
}

func TestConversions(t *testing.T) {
	t.Run("i2l then l2i round-trips", func(t *testing.T) {
		// bipush 42, i2l, l2i, ireturn
		got := runBytecode(t, []byte{0x10, 42, 0x85, 0x88, 0xAC})
		if got != 42 {
			t.Errorf("got %d, want 42", got)
		}
	})
	t.Run("i2b truncates and sign-extends", func(t *testing.T) {
		// sipush 300 (0x012C), i2b, ireturn -> 300 as int8 = 44
		got := runBytecode(t, []byte{0x11, 0x01, 0x2C, 0x91, 0xAC})
		if got != 44 {
			t.Errorf("got %d, want 44", got)
		}
	})
}
