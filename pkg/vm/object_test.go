package vm

import "testing"

func TestPrimitiveArrays(t *testing.T) {
	t.Run("int array load/store", func(t *testing.T) {
		arr := &IntArray{Elements: make([]int32, 3)}
		for i, v := range []int32{10, 20, 30} {
			if err := ArrayStore(arr, i, VI32(v)); err != nil {
				t.Fatalf("store %d: %v", i, err)
			}
		}
		for i, want := range []int32{10, 20, 30} {
			got, err := ArrayLoad(arr, i)
			if err != nil || got.I32() != want {
				t.Errorf("load %d: got %v, %v, want %d", i, got.I32(), err, want)
			}
		}
	})

	t.Run("out of bounds errors", func(t *testing.T) {
		arr := &IntArray{Elements: make([]int32, 2)}
		if _, err := ArrayLoad(arr, 2); err == nil {
			t.Error("expected ArrayIndexOutOfBounds, got nil")
		}
		if err := ArrayStore(arr, -1, VI32(0)); err == nil {
			t.Error("expected ArrayIndexOutOfBounds, got nil")
		}
	})

	t.Run("boolean array stores 0/1", func(t *testing.T) {
		arr := &BoolArray{Elements: make([]bool, 2)}
		ArrayStore(arr, 0, VI32(1))
		ArrayStore(arr, 1, VI32(0))
		v0, _ := ArrayLoad(arr, 0)
		v1, _ := ArrayLoad(arr, 1)
		if !v0.Bool() || v1.Bool() {
			t.Errorf("got %v, %v, want true, false", v0.Bool(), v1.Bool())
		}
	})

	t.Run("length", func(t *testing.T) {
		arr := &DoubleArray{Elements: make([]float64, 5)}
		n, err := ArrayLength(arr)
		if err != nil || n != 5 {
			t.Errorf("got %d, %v, want 5", n, err)
		}
	})
}

func TestObjectArray(t *testing.T) {
	t.Run("reference elements", func(t *testing.T) {
		arr := &ObjectArray{Elements: make([]ObjectRef, 2)}
		inner := &Object{ClassID: 1, Data: make([]Value, 1)}

		if err := ArrayStore(arr, 0, VRef(inner)); err != nil {
			t.Fatalf("store: %v", err)
		}
		if err := ArrayStore(arr, 1, VNull()); err != nil {
			t.Fatalf("store null: %v", err)
		}

		got, _ := ArrayLoad(arr, 0)
		if got.Ref() != ObjectRef(inner) {
			t.Error("element 0: expected matching reference")
		}
		null, _ := ArrayLoad(arr, 1)
		if !null.IsNull() {
			t.Errorf("element 1: expected null")
		}
	})
}

func TestNewArrayOfTag(t *testing.T) {
	cases := map[uint8]interface{}{
		4:  &BoolArray{},
		5:  &CharArray{},
		6:  &FloatArray{},
		7:  &DoubleArray{},
		8:  &ByteArray{},
		9:  &ShortArray{},
		10: &IntArray{},
		11: &LongArray{},
	}
	for tag, want := range cases {
		ref, err := NewArrayOfTag(tag, 3)
		if err != nil {
			t.Fatalf("tag %d: %v", tag, err)
		}
		n, err := ArrayLength(ref)
		if err != nil || n != 3 {
			t.Errorf("tag %d: length got %d, %v, want 3", tag, n, err)
		}
		if got := typeNameOf(ref); got != typeNameOf(want) {
			t.Errorf("tag %d: got %s, want %s", tag, got, typeNameOf(want))
		}
	}

	if _, err := NewArrayOfTag(99, 1); err == nil {
		t.Error("expected error for unknown type tag, got nil")
	}
}

func typeNameOf(v interface{}) string {
	switch v.(type) {
	case *BoolArray:
		return "BoolArray"
	case *CharArray:
		return "CharArray"
	case *FloatArray:
		return "FloatArray"
	case *DoubleArray:
		return "DoubleArray"
	case *ByteArray:
		return "ByteArray"
	case *ShortArray:
		return "ShortArray"
	case *IntArray:
		return "IntArray"
	case *LongArray:
		return "LongArray"
	default:
		return "unknown"
	}
}

func TestObjectFields(t *testing.T) {
	cls := &Class{
		ID:   1,
		Name: "Point",
		ObjectFieldMapping: map[string]map[string]FieldSlot{
			"Point": {
				"x": {Descriptor: "I", Index: 0},
				"y": {Descriptor: "I", Index: 1},
			},
		},
		NumObjectSlots: 2,
	}
	obj := &Object{ClassID: cls.ID, Data: make([]Value, cls.NumObjectSlots)}

	if err := obj.Set(cls, "Point", "x", VI32(10)); err != nil {
		t.Fatalf("set x: %v", err)
	}
	if err := obj.Set(cls, "Point", "y", VI32(20)); err != nil {
		t.Fatalf("set y: %v", err)
	}

	x, err := obj.Get(cls, "Point", "x")
	if err != nil || x.I32() != 10 {
		t.Errorf("get x: got %v, %v, want 10", x.I32(), err)
	}
	y, err := obj.Get(cls, "Point", "y")
	if err != nil || y.I32() != 20 {
		t.Errorf("get y: got %v, %v, want 20", y.I32(), err)
	}

	if _, err := obj.Get(cls, "Point", "z"); err == nil {
		t.Error("expected error for unknown field, got nil")
	}
	if _, err := obj.Get(cls, "Other", "x"); err == nil {
		t.Error("expected error for unknown declaring type, got nil")
	}
}
