package vm

import "fmt"

// ObjectRef is the tagged reference-value variant: a plain object instance,
// a class object (the reflective wrapper used by LDC ClassRef and
// getClass()), or one of the array kinds. Arrays own their element storage.
type ObjectRef interface {
	isObjectRef()
}

// Object is a mutable instance of a loaded class: a class id plus a flat
// vector of instance-field slots, laid out by the owning Class's
// objectFieldMapping. Shared by reference; aliases observe each other's
// mutations.
type Object struct {
	ClassID ClassID
	Data    []Value
}

func (*Object) isObjectRef() {}

// Get reads the slot for (declaredType, fieldName) as seen by runtimeClass.
// declaredType disambiguates shadowed fields across the inheritance chain.
func (o *Object) Get(runtimeClass *Class, declaredType, fieldName string) (Value, error) {
	slot, err := runtimeClass.ObjectFieldSlot(declaredType, fieldName)
	if err != nil {
		return Value{}, err
	}
	return o.Data[slot], nil
}

// Set writes the slot for (declaredType, fieldName) as seen by runtimeClass.
func (o *Object) Set(runtimeClass *Class, declaredType, fieldName string, value Value) error {
	slot, err := runtimeClass.ObjectFieldSlot(declaredType, fieldName)
	if err != nil {
		return err
	}
	o.Data[slot] = value
	return nil
}

// ClassRef wraps a runtime Class as the reflective "Class" object pushed by
// LDC of a CONSTANT_Class entry and returned by Object.getClass().
type ClassRef struct {
	Class *Class
}

func (*ClassRef) isObjectRef() {}

// Primitive array kinds. Byte arrays are signed 8-bit; boolean arrays store
// 0/1 in the same backing slice as byte arrays conceptually but are kept
// distinct here so ArrayLoad/ArrayStore can apply the right value kind.
type (
	BoolArray   struct{ Elements []bool }
	ByteArray   struct{ Elements []int8 }
	CharArray   struct{ Elements []uint16 }
	ShortArray  struct{ Elements []int16 }
	IntArray    struct{ Elements []int32 }
	LongArray   struct{ Elements []int64 }
	FloatArray  struct{ Elements []float32 }
	DoubleArray struct{ Elements []float64 }
)

func (*BoolArray) isObjectRef()   {}
func (*ByteArray) isObjectRef()   {}
func (*CharArray) isObjectRef()   {}
func (*ShortArray) isObjectRef()  {}
func (*IntArray) isObjectRef()    {}
func (*LongArray) isObjectRef()   {}
func (*FloatArray) isObjectRef()  {}
func (*DoubleArray) isObjectRef() {}

// StringArray is the backing store for a Go-native []string, used directly
// by the reference-loader-facing native properties table as well as
// ordinary `String[]` arrays such as `main`'s argument vector.
type StringArray struct{ Elements []string }

func (*StringArray) isObjectRef() {}

// ObjectArray is a reference-typed array; ElementClassID records the
// declared component type for ArrayStoreException-style checks (not
// currently enforced beyond bounds/null checks — see SPEC_FULL Non-goals).
type ObjectArray struct {
	ElementClassID ClassID
	Elements       []ObjectRef
}

func (*ObjectArray) isObjectRef() {}

// ArrayLength returns the element count of any array ObjectRef, or an error
// if ref is not an array variant.
func ArrayLength(ref ObjectRef) (int, error) {
	switch a := ref.(type) {
	case *BoolArray:
		return len(a.Elements), nil
	case *ByteArray:
		return len(a.Elements), nil
	case *CharArray:
		return len(a.Elements), nil
	case *ShortArray:
		return len(a.Elements), nil
	case *IntArray:
		return len(a.Elements), nil
	case *LongArray:
		return len(a.Elements), nil
	case *FloatArray:
		return len(a.Elements), nil
	case *DoubleArray:
		return len(a.Elements), nil
	case *StringArray:
		return len(a.Elements), nil
	case *ObjectArray:
		return len(a.Elements), nil
	default:
		return 0, fmt.Errorf("not an array: %T", ref)
	}
}

// ArrayLoad reads element index of ref as a Value, converting to the array's
// native element representation.
func ArrayLoad(ref ObjectRef, index int) (Value, error) {
	switch a := ref.(type) {
	case *BoolArray:
		if index < 0 || index >= len(a.Elements) {
			return Value{}, newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("index %d, length %d", index, len(a.Elements)))
		}
		return VBool(a.Elements[index]), nil
	case *ByteArray:
		if index < 0 || index >= len(a.Elements) {
			return Value{}, newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("index %d, length %d", index, len(a.Elements)))
		}
		return VI32(int32(a.Elements[index])), nil
	case *CharArray:
		if index < 0 || index >= len(a.Elements) {
			return Value{}, newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("index %d, length %d", index, len(a.Elements)))
		}
		return VChar(a.Elements[index]), nil
	case *ShortArray:
		if index < 0 || index >= len(a.Elements) {
			return Value{}, newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("index %d, length %d", index, len(a.Elements)))
		}
		return VI32(int32(a.Elements[index])), nil
	case *IntArray:
		if index < 0 || index >= len(a.Elements) {
			return Value{}, newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("index %d, length %d", index, len(a.Elements)))
		}
		return VI32(a.Elements[index]), nil
	case *LongArray:
		if index < 0 || index >= len(a.Elements) {
			return Value{}, newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("index %d, length %d", index, len(a.Elements)))
		}
		return VI64(a.Elements[index]), nil
	case *FloatArray:
		if index < 0 || index >= len(a.Elements) {
			return Value{}, newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("index %d, length %d", index, len(a.Elements)))
		}
		return VF32(a.Elements[index]), nil
	case *DoubleArray:
		if index < 0 || index >= len(a.Elements) {
			return Value{}, newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("index %d, length %d", index, len(a.Elements)))
		}
		return VF64(a.Elements[index]), nil
	case *StringArray:
		if index < 0 || index >= len(a.Elements) {
			return Value{}, newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("index %d, length %d", index, len(a.Elements)))
		}
		return VUtf8(a.Elements[index]), nil
	case *ObjectArray:
		if index < 0 || index >= len(a.Elements) {
			return Value{}, newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("index %d, length %d", index, len(a.Elements)))
		}
		el := a.Elements[index]
		if el == nil {
			return VNull(), nil
		}
		return VRef(el), nil
	default:
		return Value{}, newInternalError(Unreachable, fmt.Errorf("ArrayLoad: not an array: %T", ref))
	}
}

// ArrayStore writes value into element index of ref, converting from the
// Value's tagged form to the array's native representation.
func ArrayStore(ref ObjectRef, index int, value Value) error {
	switch a := ref.(type) {
	case *BoolArray:
		if index < 0 || index >= len(a.Elements) {
			return newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("index %d, length %d", index, len(a.Elements)))
		}
		a.Elements[index] = value.I32() > 0 || value.Bool()
		return nil
	case *ByteArray:
		if index < 0 || index >= len(a.Elements) {
			return newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("index %d, length %d", index, len(a.Elements)))
		}
		a.Elements[index] = int8(value.I32())
		return nil
	case *CharArray:
		if index < 0 || index >= len(a.Elements) {
			return newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("index %d, length %d", index, len(a.Elements)))
		}
		a.Elements[index] = uint16(uint32(value.I32()))
		return nil
	case *ShortArray:
		if index < 0 || index >= len(a.Elements) {
			return newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("index %d, length %d", index, len(a.Elements)))
		}
		a.Elements[index] = int16(value.I32())
		return nil
	case *IntArray:
		if index < 0 || index >= len(a.Elements) {
			return newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("index %d, length %d", index, len(a.Elements)))
		}
		a.Elements[index] = value.I32()
		return nil
	case *LongArray:
		if index < 0 || index >= len(a.Elements) {
			return newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("index %d, length %d", index, len(a.Elements)))
		}
		a.Elements[index] = value.I64()
		return nil
	case *FloatArray:
		if index < 0 || index >= len(a.Elements) {
			return newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("index %d, length %d", index, len(a.Elements)))
		}
		a.Elements[index] = value.F32()
		return nil
	case *DoubleArray:
		if index < 0 || index >= len(a.Elements) {
			return newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("index %d, length %d", index, len(a.Elements)))
		}
		a.Elements[index] = value.F64()
		return nil
	case *StringArray:
		if index < 0 || index >= len(a.Elements) {
			return newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("index %d, length %d", index, len(a.Elements)))
		}
		a.Elements[index] = value.Utf8()
		return nil
	case *ObjectArray:
		if index < 0 || index >= len(a.Elements) {
			return newExecutionError(ArrayIndexOutOfBounds, fmt.Errorf("index %d, length %d", index, len(a.Elements)))
		}
		if value.IsNull() {
			a.Elements[index] = nil
		} else {
			a.Elements[index] = value.Ref()
		}
		return nil
	default:
		return newInternalError(Unreachable, fmt.Errorf("ArrayStore: not an array: %T", ref))
	}
}

// NewArrayOfTag constructs a zero-filled primitive array for a NEWARRAY type
// tag (4=boolean,5=char,6=float,7=double,8=byte,9=short,10=int,11=long).
func NewArrayOfTag(tag uint8, length int) (ObjectRef, error) {
	switch tag {
	case 4:
		return &BoolArray{Elements: make([]bool, length)}, nil
	case 5:
		return &CharArray{Elements: make([]uint16, length)}, nil
	case 6:
		return &FloatArray{Elements: make([]float32, length)}, nil
	case 7:
		return &DoubleArray{Elements: make([]float64, length)}, nil
	case 8:
		return &ByteArray{Elements: make([]int8, length)}, nil
	case 9:
		return &ShortArray{Elements: make([]int16, length)}, nil
	case 10:
		return &IntArray{Elements: make([]int32, length)}, nil
	case 11:
		return &LongArray{Elements: make([]int64, length)}, nil
	default:
		return nil, newExecutionError(UnimplementedOpcode, fmt.Errorf("newarray type tag %d", tag))
	}
}
