package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const classMagic = 0xCAFEBABE

// ParseFile opens and parses a .class file from the given path.
func ParseFile(path string) (*ClassDef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a single .class file from r and returns its immutable,
// fully-decoded form, including pre-resolved opcodes for every method body.
func Parse(r io.Reader) (*ClassDef, error) {
	cd := &ClassDef{}

	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, newParseError(TruncatedInput, "", fmt.Errorf("reading magic number: %w", err))
	}
	if magic != classMagic {
		return nil, newParseError(InvalidMagic, "", fmt.Errorf("0x%X", magic))
	}

	if err := binary.Read(r, binary.BigEndian, &cd.MinorVersion); err != nil {
		return nil, newParseError(TruncatedInput, "", fmt.Errorf("reading minor version: %w", err))
	}
	if err := binary.Read(r, binary.BigEndian, &cd.MajorVersion); err != nil {
		return nil, newParseError(TruncatedInput, "", fmt.Errorf("reading major version: %w", err))
	}

	var cpCount uint16
	if err := binary.Read(r, binary.BigEndian, &cpCount); err != nil {
		return nil, newParseError(TruncatedInput, "", fmt.Errorf("reading constant pool count: %w", err))
	}
	pool, err := parseConstantPool(r, cpCount)
	if err != nil {
		return nil, err
	}
	cd.ConstantPool = pool

	if err := binary.Read(r, binary.BigEndian, &cd.AccessFlags); err != nil {
		return nil, newParseError(TruncatedInput, "", fmt.Errorf("reading access flags: %w", err))
	}
	if err := binary.Read(r, binary.BigEndian, &cd.ThisClass); err != nil {
		return nil, newParseError(TruncatedInput, "", fmt.Errorf("reading this_class: %w", err))
	}
	if err := binary.Read(r, binary.BigEndian, &cd.SuperClass); err != nil {
		return nil, newParseError(TruncatedInput, "", fmt.Errorf("reading super_class: %w", err))
	}

	className := cd.Name()

	var interfacesCount uint16
	if err := binary.Read(r, binary.BigEndian, &interfacesCount); err != nil {
		return nil, newParseError(TruncatedInput, className, fmt.Errorf("reading interfaces count: %w", err))
	}
	cd.Interfaces = make([]uint16, interfacesCount)
	for i := uint16(0); i < interfacesCount; i++ {
		if err := binary.Read(r, binary.BigEndian, &cd.Interfaces[i]); err != nil {
			return nil, newParseError(TruncatedInput, className, fmt.Errorf("reading interface %d: %w", i, err))
		}
	}

	var fieldsCount uint16
	if err := binary.Read(r, binary.BigEndian, &fieldsCount); err != nil {
		return nil, newParseError(TruncatedInput, className, fmt.Errorf("reading fields count: %w", err))
	}
	cd.Fields, err = parseFields(r, cd.ConstantPool, fieldsCount, className)
	if err != nil {
		return nil, err
	}

	var methodsCount uint16
	if err := binary.Read(r, binary.BigEndian, &methodsCount); err != nil {
		return nil, newParseError(TruncatedInput, className, fmt.Errorf("reading methods count: %w", err))
	}
	cd.Methods, err = parseMethods(r, cd.ConstantPool, methodsCount, className)
	if err != nil {
		return nil, err
	}

	cd.Attributes, err = parseAttributeMap(r, cd.ConstantPool, className)
	if err != nil {
		return nil, err
	}

	return cd, nil
}

func parseFields(r io.Reader, pool []CpEntry, count uint16, className string) (map[string]*Field, error) {
	fields := make(map[string]*Field, count)
	for i := uint16(0); i < count; i++ {
		var accessFlags, nameIndex, descIndex uint16
		if err := binary.Read(r, binary.BigEndian, &accessFlags); err != nil {
			return nil, newParseError(TruncatedInput, className, fmt.Errorf("reading field %d access flags: %w", i, err))
		}
		if err := binary.Read(r, binary.BigEndian, &nameIndex); err != nil {
			return nil, newParseError(TruncatedInput, className, fmt.Errorf("reading field %d name index: %w", i, err))
		}
		if err := binary.Read(r, binary.BigEndian, &descIndex); err != nil {
			return nil, newParseError(TruncatedInput, className, fmt.Errorf("reading field %d descriptor index: %w", i, err))
		}

		attrs, err := parseAttributeMap(r, pool, className)
		if err != nil {
			return nil, err
		}

		f := &Field{AccessFlags: accessFlags, NameIndex: nameIndex, DescriptorIndex: descIndex, Attributes: attrs}
		fields[f.Name(pool)] = f
	}
	return fields, nil
}

func parseMethods(r io.Reader, pool []CpEntry, count uint16, className string) (map[string]*Method, error) {
	methods := make(map[string]*Method, count)
	for i := uint16(0); i < count; i++ {
		var accessFlags, nameIndex, descIndex uint16
		if err := binary.Read(r, binary.BigEndian, &accessFlags); err != nil {
			return nil, newParseError(TruncatedInput, className, fmt.Errorf("reading method %d access flags: %w", i, err))
		}
		if err := binary.Read(r, binary.BigEndian, &nameIndex); err != nil {
			return nil, newParseError(TruncatedInput, className, fmt.Errorf("reading method %d name index: %w", i, err))
		}
		if err := binary.Read(r, binary.BigEndian, &descIndex); err != nil {
			return nil, newParseError(TruncatedInput, className, fmt.Errorf("reading method %d descriptor index: %w", i, err))
		}

		attrs, err := parseAttributeMap(r, pool, className)
		if err != nil {
			return nil, err
		}

		m := &Method{AccessFlags: accessFlags, NameIndex: nameIndex, DescriptorIndex: descIndex, Attributes: attrs}

		if codeAttr, ok := attrs["Code"]; ok {
			code, err := parseCodeAttribute(codeAttr.Data, pool, className, m.Name(pool))
			if err != nil {
				return nil, err
			}
			m.Code = code
		}

		methods[m.SignatureKey(pool)] = m
	}
	return methods, nil
}

func parseAttributeMap(r io.Reader, pool []CpEntry, className string) (map[string]*AttributeInfo, error) {
	var count uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, newParseError(TruncatedInput, className, fmt.Errorf("reading attributes count: %w", err))
	}
	attrs := make(map[string]*AttributeInfo, count)
	for i := uint16(0); i < count; i++ {
		var nameIndex uint16
		if err := binary.Read(r, binary.BigEndian, &nameIndex); err != nil {
			return nil, newParseError(TruncatedInput, className, fmt.Errorf("reading attribute %d name index: %w", i, err))
		}
		var length uint32
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			return nil, newParseError(TruncatedInput, className, fmt.Errorf("reading attribute %d length: %w", i, err))
		}
		data := make([]byte, length)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, newParseError(TruncatedInput, className, fmt.Errorf("reading attribute %d data: %w", i, err))
		}

		name := utf8At(pool, nameIndex)
		attrs[name] = &AttributeInfo{Name: name, Data: data}
	}
	return attrs, nil
}

func parseCodeAttribute(data []byte, pool []CpEntry, className, methodName string) (*CodeAttribute, error) {
	if len(data) < 8 {
		return nil, newParseError(TruncatedInput, className, fmt.Errorf("Code attribute for %s too short: %d bytes", methodName, len(data)))
	}

	maxStack := binary.BigEndian.Uint16(data[0:2])
	maxLocals := binary.BigEndian.Uint16(data[2:4])
	codeLength := binary.BigEndian.Uint32(data[4:8])

	if len(data) < 8+int(codeLength) {
		return nil, newParseError(TruncatedInput, className, fmt.Errorf("Code attribute for %s too short for code_length %d", methodName, codeLength))
	}

	rawCode := make([]byte, codeLength)
	copy(rawCode, data[8:8+codeLength])

	decoded, offsetToIndex, err := DecodeCodeAndOffsets(rawCode)
	if err != nil {
		return nil, newParseError(TruncatedInput, className, fmt.Errorf("decoding code for %s: %w", methodName, err))
	}

	offset := 8 + int(codeLength)
	var rawHandlers []ExceptionHandler
	if offset+2 > len(data) {
		return nil, newParseError(TruncatedInput, className, fmt.Errorf("Code attribute for %s missing exception table length", methodName))
	}
	exTableLen := binary.BigEndian.Uint16(data[offset : offset+2])
	offset += 2
	rawHandlers = make([]ExceptionHandler, exTableLen)
	for i := uint16(0); i < exTableLen; i++ {
		if offset+8 > len(data) {
			return nil, newParseError(TruncatedInput, className, fmt.Errorf("exception table for %s truncated at entry %d", methodName, i))
		}
		rawHandlers[i] = ExceptionHandler{
			StartPC:   int(binary.BigEndian.Uint16(data[offset : offset+2])),
			EndPC:     int(binary.BigEndian.Uint16(data[offset+2 : offset+4])),
			HandlerPC: int(binary.BigEndian.Uint16(data[offset+4 : offset+6])),
			CatchType: binary.BigEndian.Uint16(data[offset+6 : offset+8]),
		}
		offset += 8
	}

	handlers, err := RewriteExceptionTableWithOffsets(rawHandlers, offsetToIndex, len(rawCode))
	if err != nil {
		return nil, newParseError(TruncatedInput, className, fmt.Errorf("rewriting exception table for %s: %w", methodName, err))
	}

	var attrReader io.Reader
	if offset <= len(data) {
		attrReader = bytes.NewReader(data[offset:])
	} else {
		attrReader = bytes.NewReader(nil)
	}
	attrs, err := parseAttributeMap(attrReader, pool, className)
	if err != nil {
		return nil, err
	}

	return &CodeAttribute{
		MaxStack:       maxStack,
		MaxLocals:      maxLocals,
		RawCode:        rawCode,
		Code:           decoded,
		ExceptionTable: handlers,
		Attributes:     attrs,
	}, nil
}
