package classfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// parseConstantPool reads constant_pool_count-1 entries from the reader.
// The returned slice is 1-indexed: index 0 is nil. A Long or Double entry
// reserves its successor slot (left nil), per the class file format.
func parseConstantPool(r io.Reader, count uint16) ([]CpEntry, error) {
	pool := make([]CpEntry, count)

	for i := uint16(1); i < count; i++ {
		var tag uint8
		if err := binary.Read(r, binary.BigEndian, &tag); err != nil {
			return nil, newParseError(TruncatedInput, "", fmt.Errorf("reading cp tag at index %d: %w", i, err))
		}

		switch tag {
		case TagUtf8:
			var length uint16
			if err := binary.Read(r, binary.BigEndian, &length); err != nil {
				return nil, newParseError(TruncatedInput, "", fmt.Errorf("reading Utf8 length at index %d: %w", i, err))
			}
			raw := make([]byte, length)
			if _, err := io.ReadFull(r, raw); err != nil {
				return nil, newParseError(TruncatedInput, "", fmt.Errorf("reading Utf8 bytes at index %d: %w", i, err))
			}
			pool[i] = Utf8Entry{Value: string(raw)}

		case TagInteger:
			var val int32
			if err := binary.Read(r, binary.BigEndian, &val); err != nil {
				return nil, newParseError(TruncatedInput, "", fmt.Errorf("reading Integer at index %d: %w", i, err))
			}
			pool[i] = IntegerEntry{Value: val}

		case TagFloat:
			var bits uint32
			if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
				return nil, newParseError(TruncatedInput, "", fmt.Errorf("reading Float at index %d: %w", i, err))
			}
			pool[i] = FloatEntry{Value: math.Float32frombits(bits)}

		case TagLong:
			var val int64
			if err := binary.Read(r, binary.BigEndian, &val); err != nil {
				return nil, newParseError(TruncatedInput, "", fmt.Errorf("reading Long at index %d: %w", i, err))
			}
			pool[i] = LongEntry{Value: val}
			i++ // long occupies two CP slots; the next index stays nil

		case TagDouble:
			var bits uint64
			if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
				return nil, newParseError(TruncatedInput, "", fmt.Errorf("reading Double at index %d: %w", i, err))
			}
			pool[i] = DoubleEntry{Value: math.Float64frombits(bits)}
			i++ // double occupies two CP slots

		case TagClass:
			var nameIndex uint16
			if err := binary.Read(r, binary.BigEndian, &nameIndex); err != nil {
				return nil, newParseError(TruncatedInput, "", fmt.Errorf("reading Class at index %d: %w", i, err))
			}
			pool[i] = ClassRefEntry{NameIndex: nameIndex}

		case TagString:
			var utf8Index uint16
			if err := binary.Read(r, binary.BigEndian, &utf8Index); err != nil {
				return nil, newParseError(TruncatedInput, "", fmt.Errorf("reading String at index %d: %w", i, err))
			}
			pool[i] = StringRefEntry{Utf8Index: utf8Index}

		case TagFieldref:
			var classIndex, natIndex uint16
			if err := binary.Read(r, binary.BigEndian, &classIndex); err != nil {
				return nil, newParseError(TruncatedInput, "", err)
			}
			if err := binary.Read(r, binary.BigEndian, &natIndex); err != nil {
				return nil, newParseError(TruncatedInput, "", err)
			}
			pool[i] = FieldrefEntry{ClassIndex: classIndex, NameAndTypeIndex: natIndex}

		case TagMethodref:
			var classIndex, natIndex uint16
			if err := binary.Read(r, binary.BigEndian, &classIndex); err != nil {
				return nil, newParseError(TruncatedInput, "", err)
			}
			if err := binary.Read(r, binary.BigEndian, &natIndex); err != nil {
				return nil, newParseError(TruncatedInput, "", err)
			}
			pool[i] = MethodrefEntry{ClassIndex: classIndex, NameAndTypeIndex: natIndex}

		case TagInterfaceMethodref:
			var classIndex, natIndex uint16
			if err := binary.Read(r, binary.BigEndian, &classIndex); err != nil {
				return nil, newParseError(TruncatedInput, "", err)
			}
			if err := binary.Read(r, binary.BigEndian, &natIndex); err != nil {
				return nil, newParseError(TruncatedInput, "", err)
			}
			pool[i] = InterfaceMethodrefEntry{ClassIndex: classIndex, NameAndTypeIndex: natIndex}

		case TagNameAndType:
			var nameIndex, descIndex uint16
			if err := binary.Read(r, binary.BigEndian, &nameIndex); err != nil {
				return nil, newParseError(TruncatedInput, "", err)
			}
			if err := binary.Read(r, binary.BigEndian, &descIndex); err != nil {
				return nil, newParseError(TruncatedInput, "", err)
			}
			pool[i] = NameAndTypeEntry{NameIndex: nameIndex, DescriptorIndex: descIndex}

		case TagMethodHandle:
			var kind uint8
			var refIndex uint16
			if err := binary.Read(r, binary.BigEndian, &kind); err != nil {
				return nil, newParseError(TruncatedInput, "", err)
			}
			if err := binary.Read(r, binary.BigEndian, &refIndex); err != nil {
				return nil, newParseError(TruncatedInput, "", err)
			}
			pool[i] = MethodHandleEntry{ReferenceKind: kind, ReferenceIndex: refIndex}

		case TagMethodType:
			var descIndex uint16
			if err := binary.Read(r, binary.BigEndian, &descIndex); err != nil {
				return nil, newParseError(TruncatedInput, "", err)
			}
			pool[i] = MethodTypeEntry{DescriptorIndex: descIndex}

		case TagDynamic, TagInvokeDynamic:
			var bootstrapIndex, natIndex uint16
			if err := binary.Read(r, binary.BigEndian, &bootstrapIndex); err != nil {
				return nil, newParseError(TruncatedInput, "", err)
			}
			if err := binary.Read(r, binary.BigEndian, &natIndex); err != nil {
				return nil, newParseError(TruncatedInput, "", err)
			}
			pool[i] = InvokeDynamicEntry{BootstrapMethodAttrIndex: bootstrapIndex, NameAndTypeIndex: natIndex}

		case TagModule, TagPackage:
			var nameIndex uint16
			if err := binary.Read(r, binary.BigEndian, &nameIndex); err != nil {
				return nil, newParseError(TruncatedInput, "", err)
			}
			// module/package entries are not resolved to anything this
			// interpreter needs; keep their name index as a ClassRef-shaped
			// placeholder so index bookkeeping (and error messages) stay sane.
			pool[i] = ClassRefEntry{NameIndex: nameIndex}

		default:
			return nil, newParseError(UnsupportedCpTag, "", fmt.Errorf("tag %d at index %d", tag, i))
		}
	}

	return pool, nil
}

// GetUtf8 returns the Utf8 string at the given constant pool index.
func GetUtf8(pool []CpEntry, index uint16) (string, error) {
	if int(index) >= len(pool) || pool[index] == nil {
		return "", fmt.Errorf("invalid constant pool index %d", index)
	}
	entry, ok := pool[index].(Utf8Entry)
	if !ok {
		return "", fmt.Errorf("constant pool index %d is not Utf8 (tag=%d)", index, pool[index].Tag())
	}
	return entry.Value, nil
}

// GetClassName returns the class name referenced by a CONSTANT_Class entry.
func GetClassName(pool []CpEntry, classIndex uint16) (string, error) {
	if int(classIndex) >= len(pool) || pool[classIndex] == nil {
		return "", fmt.Errorf("invalid constant pool index %d", classIndex)
	}
	ref, ok := pool[classIndex].(ClassRefEntry)
	if !ok {
		return "", fmt.Errorf("constant pool index %d is not Class", classIndex)
	}
	return GetUtf8(pool, ref.NameIndex)
}

func nameAndType(pool []CpEntry, index uint16) (name, descriptor string, err error) {
	if int(index) >= len(pool) || pool[index] == nil {
		return "", "", fmt.Errorf("invalid NameAndType index %d", index)
	}
	nat, ok := pool[index].(NameAndTypeEntry)
	if !ok {
		return "", "", fmt.Errorf("constant pool index %d is not NameAndType", index)
	}
	name, err = GetUtf8(pool, nat.NameIndex)
	if err != nil {
		return "", "", err
	}
	descriptor, err = GetUtf8(pool, nat.DescriptorIndex)
	if err != nil {
		return "", "", err
	}
	return name, descriptor, nil
}

// MethodRefInfo holds a resolved method (or interface method) reference.
type MethodRefInfo struct {
	ClassName  string
	MethodName string
	Descriptor string
}

// ResolveMethodref resolves a CONSTANT_Methodref entry.
func ResolveMethodref(pool []CpEntry, index uint16) (*MethodRefInfo, error) {
	if int(index) >= len(pool) || pool[index] == nil {
		return nil, fmt.Errorf("invalid constant pool index %d", index)
	}
	mref, ok := pool[index].(MethodrefEntry)
	if !ok {
		return nil, fmt.Errorf("constant pool index %d is not Methodref", index)
	}
	className, err := GetClassName(pool, mref.ClassIndex)
	if err != nil {
		return nil, fmt.Errorf("resolving Methodref class: %w", err)
	}
	methodName, descriptor, err := nameAndType(pool, mref.NameAndTypeIndex)
	if err != nil {
		return nil, fmt.Errorf("resolving Methodref name_and_type: %w", err)
	}
	return &MethodRefInfo{ClassName: className, MethodName: methodName, Descriptor: descriptor}, nil
}

// ResolveInterfaceMethodref resolves a CONSTANT_InterfaceMethodref entry.
func ResolveInterfaceMethodref(pool []CpEntry, index uint16) (*MethodRefInfo, error) {
	if int(index) >= len(pool) || pool[index] == nil {
		return nil, fmt.Errorf("invalid constant pool index %d", index)
	}
	mref, ok := pool[index].(InterfaceMethodrefEntry)
	if !ok {
		return nil, fmt.Errorf("constant pool index %d is not InterfaceMethodref", index)
	}
	className, err := GetClassName(pool, mref.ClassIndex)
	if err != nil {
		return nil, fmt.Errorf("resolving InterfaceMethodref class: %w", err)
	}
	methodName, descriptor, err := nameAndType(pool, mref.NameAndTypeIndex)
	if err != nil {
		return nil, fmt.Errorf("resolving InterfaceMethodref name_and_type: %w", err)
	}
	return &MethodRefInfo{ClassName: className, MethodName: methodName, Descriptor: descriptor}, nil
}

// FieldRefInfo holds a resolved field reference, including its declaring
// class name (used to disambiguate shadowed fields; see pkg/vm's Object).
type FieldRefInfo struct {
	ClassName  string
	FieldName  string
	Descriptor string
}

// ResolveFieldref resolves a CONSTANT_Fieldref entry.
func ResolveFieldref(pool []CpEntry, index uint16) (*FieldRefInfo, error) {
	if int(index) >= len(pool) || pool[index] == nil {
		return nil, fmt.Errorf("invalid constant pool index %d", index)
	}
	fref, ok := pool[index].(FieldrefEntry)
	if !ok {
		return nil, fmt.Errorf("constant pool index %d is not Fieldref", index)
	}
	className, err := GetClassName(pool, fref.ClassIndex)
	if err != nil {
		return nil, fmt.Errorf("resolving Fieldref class: %w", err)
	}
	fieldName, descriptor, err := nameAndType(pool, fref.NameAndTypeIndex)
	if err != nil {
		return nil, fmt.Errorf("resolving Fieldref name_and_type: %w", err)
	}
	return &FieldRefInfo{ClassName: className, FieldName: fieldName, Descriptor: descriptor}, nil
}

// ResolveString resolves a CONSTANT_String entry to its literal text.
func ResolveString(pool []CpEntry, index uint16) (string, error) {
	if int(index) >= len(pool) || pool[index] == nil {
		return "", fmt.Errorf("invalid constant pool index %d", index)
	}
	sref, ok := pool[index].(StringRefEntry)
	if !ok {
		return "", fmt.Errorf("constant pool index %d is not String", index)
	}
	return GetUtf8(pool, sref.Utf8Index)
}
