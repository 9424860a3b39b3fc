package vm

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindVoid ValueKind = iota
	KindNull
	KindI32
	KindI64
	KindF32
	KindF64
	KindBool
	KindChar
	KindRef
	KindUtf8
)

// Value is the tagged primitive/reference value carried on the operand
// stack, in locals, and in object/static storage. Only the field matching
// Kind is meaningful.
type Value struct {
	Kind ValueKind
	i32  int32
	i64  int64
	f32  float32
	f64  float64
	b    bool
	ch   uint16
	ref  ObjectRef
	s    string
}

func VVoid() Value             { return Value{Kind: KindVoid} }
func VNull() Value             { return Value{Kind: KindNull} }
func VI32(v int32) Value       { return Value{Kind: KindI32, i32: v} }
func VI64(v int64) Value       { return Value{Kind: KindI64, i64: v} }
func VF32(v float32) Value     { return Value{Kind: KindF32, f32: v} }
func VF64(v float64) Value     { return Value{Kind: KindF64, f64: v} }
func VBool(v bool) Value       { return Value{Kind: KindBool, b: v} }
func VChar(v uint16) Value     { return Value{Kind: KindChar, ch: v} }
func VRef(ref ObjectRef) Value { return Value{Kind: KindRef, ref: ref} }
func VUtf8(s string) Value     { return Value{Kind: KindUtf8, s: s} }

func (v Value) I32() int32       { return v.i32 }
func (v Value) I64() int64       { return v.i64 }
func (v Value) F32() float32     { return v.f32 }
func (v Value) F64() float64     { return v.f64 }
func (v Value) Bool() bool       { return v.b }
func (v Value) Char() uint16     { return v.ch }
func (v Value) Ref() ObjectRef   { return v.ref }
func (v Value) Utf8() string     { return v.s }
func (v Value) IsNull() bool     { return v.Kind == KindNull || (v.Kind == KindRef && v.ref == nil) }

// Category returns the JVM computational-type category: 2 for I64/F64
// (conceptually two stack slots), 1 for everything else (Void included,
// though Void never actually occupies a stack slot).
func (v Value) Category() int {
	if v.Kind == KindI64 || v.Kind == KindF64 {
		return 2
	}
	return 1
}

// DefaultForDescriptor returns the zero value for a field/static slot of the
// given JVM type descriptor, per the class manager's layout-time defaults.
func DefaultForDescriptor(descriptor string) Value {
	if len(descriptor) == 0 {
		return VNull()
	}
	switch descriptor[0] {
	case 'Z':
		return VBool(false)
	case 'B', 'S', 'I':
		return VI32(0)
	case 'C':
		return VChar(0)
	case 'J':
		return VI64(0)
	case 'F':
		return VF32(0)
	case 'D':
		return VF64(0)
	default: // 'L...;' or '[...'
		return VNull()
	}
}
