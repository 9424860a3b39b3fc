package classfile

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// cpBuilder assembles a constant pool buffer (post constant_pool_count) one
// entry at a time, tracking the next 1-based index so tests can read off
// indices as they add entries.
type cpBuilder struct {
	buf  bytes.Buffer
	next uint16
}

func newCpBuilder() *cpBuilder { return &cpBuilder{next: 1} }

func (b *cpBuilder) utf8(s string) uint16 {
	b.buf.WriteByte(TagUtf8)
	binary.Write(&b.buf, binary.BigEndian, uint16(len(s)))
	b.buf.WriteString(s)
	return b.take()
}

func (b *cpBuilder) class(nameIndex uint16) uint16 {
	b.buf.WriteByte(TagClass)
	binary.Write(&b.buf, binary.BigEndian, nameIndex)
	return b.take()
}

func (b *cpBuilder) nameAndType(nameIndex, descIndex uint16) uint16 {
	b.buf.WriteByte(TagNameAndType)
	binary.Write(&b.buf, binary.BigEndian, nameIndex)
	binary.Write(&b.buf, binary.BigEndian, descIndex)
	return b.take()
}

func (b *cpBuilder) methodref(classIndex, natIndex uint16) uint16 {
	b.buf.WriteByte(TagMethodref)
	binary.Write(&b.buf, binary.BigEndian, classIndex)
	binary.Write(&b.buf, binary.BigEndian, natIndex)
	return b.take()
}

func (b *cpBuilder) integer(v int32) uint16 {
	b.buf.WriteByte(TagInteger)
	binary.Write(&b.buf, binary.BigEndian, v)
	return b.take()
}

func (b *cpBuilder) long(v int64) uint16 {
	b.buf.WriteByte(TagLong)
	binary.Write(&b.buf, binary.BigEndian, v)
	idx := b.take()
	b.next++ // long reserves the following slot
	return idx
}

func (b *cpBuilder) take() uint16 {
	idx := b.next
	b.next++
	return idx
}

// count returns constant_pool_count (one past the highest occupied index).
func (b *cpBuilder) count() uint16 { return b.next }

// codeAttr builds the raw bytes of a Code attribute body (everything after
// the attribute's name_index/length header).
func codeAttr(maxStack, maxLocals uint16, code []byte, handlers []rawHandler) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, maxStack)
	binary.Write(&buf, binary.BigEndian, maxLocals)
	binary.Write(&buf, binary.BigEndian, uint32(len(code)))
	buf.Write(code)
	binary.Write(&buf, binary.BigEndian, uint16(len(handlers)))
	for _, h := range handlers {
		binary.Write(&buf, binary.BigEndian, h.start)
		binary.Write(&buf, binary.BigEndian, h.end)
		binary.Write(&buf, binary.BigEndian, h.handler)
		binary.Write(&buf, binary.BigEndian, h.catchType)
	}
	binary.Write(&buf, binary.BigEndian, uint16(0)) // no further attributes
	return buf.Bytes()
}

type rawHandler struct {
	start, end, handler, catchType uint16
}

type methodSpec struct {
	accessFlags         uint16
	nameIndex, descIndex uint16
	codeAttrNameIndex   uint16
	maxStack, maxLocals uint16
	code                []byte
	handlers            []rawHandler
}

func writeMethod(buf *bytes.Buffer, m methodSpec) {
	binary.Write(buf, binary.BigEndian, m.accessFlags)
	binary.Write(buf, binary.BigEndian, m.nameIndex)
	binary.Write(buf, binary.BigEndian, m.descIndex)
	binary.Write(buf, binary.BigEndian, uint16(1)) // one attribute: Code
	binary.Write(buf, binary.BigEndian, m.codeAttrNameIndex)
	data := codeAttr(m.maxStack, m.maxLocals, m.code, m.handlers)
	binary.Write(buf, binary.BigEndian, uint32(len(data)))
	buf.Write(data)
}

// buildClassFile assembles a minimal but complete class file around the
// given constant pool and methods, with this_class/super_class supplied by
// the caller as cp indices. It declares no interfaces and no fields.
func buildClassFile(cp *cpBuilder, thisClass, superClass uint16, methods []methodSpec) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(classMagic))
	binary.Write(&buf, binary.BigEndian, uint16(0))  // minor
	binary.Write(&buf, binary.BigEndian, uint16(61)) // major (Java 17)
	binary.Write(&buf, binary.BigEndian, cp.count())
	buf.Write(cp.buf.Bytes())
	binary.Write(&buf, binary.BigEndian, uint16(0x0021)) // ACC_PUBLIC | ACC_SUPER
	binary.Write(&buf, binary.BigEndian, thisClass)
	binary.Write(&buf, binary.BigEndian, superClass)
	binary.Write(&buf, binary.BigEndian, uint16(0)) // interfaces_count
	binary.Write(&buf, binary.BigEndian, uint16(0)) // fields_count
	binary.Write(&buf, binary.BigEndian, uint16(len(methods)))
	for _, m := range methods {
		writeMethod(&buf, m)
	}
	binary.Write(&buf, binary.BigEndian, uint16(0)) // class attributes_count
	return buf.Bytes()
}

func TestParseMinimalClassFile(t *testing.T) {
	cp := newCpBuilder()
	nameIdx := cp.utf8("HelloTest")
	thisClass := cp.class(nameIdx)
	objNameIdx := cp.utf8("java/lang/Object")
	superClass := cp.class(objNameIdx)
	mainName := cp.utf8("main")
	mainDesc := cp.utf8("([Ljava/lang/String;)V")
	codeName := cp.utf8("Code")
	addName := cp.utf8("add")
	addDesc := cp.utf8("(II)I")

	raw := buildClassFile(cp, thisClass, superClass, []methodSpec{
		{
			accessFlags: AccPublic | AccStatic, nameIndex: mainName, descIndex: mainDesc,
			codeAttrNameIndex: codeName, maxStack: 1, maxLocals: 1,
			code: []byte{opReturn},
		},
		{
			accessFlags: AccPublic | AccStatic, nameIndex: addName, descIndex: addDesc,
			codeAttrNameIndex: codeName, maxStack: 2, maxLocals: 2,
			code: []byte{opILoad0, opILoad1, opIadd, opIreturn},
		},
	})

	cd, err := Parse(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cd.MajorVersion != 61 {
		t.Errorf("major version: got %d, want 61", cd.MajorVersion)
	}
	if got := cd.Name(); got != "HelloTest" {
		t.Errorf("this_class: got %q, want %q", got, "HelloTest")
	}
	if got := cd.SuperName(); got != "java/lang/Object" {
		t.Errorf("super_class: got %q, want %q", got, "java/lang/Object")
	}

	main, ok := cd.FindMethod("main([Ljava/lang/String;)V")
	if !ok {
		t.Fatal("main method not found")
	}
	if main.Code == nil {
		t.Fatal("main has no Code attribute")
	}
	if len(main.Code.Code) != 1 || main.Code.Code[0].Kind != Return {
		t.Errorf("main code: got %+v, want single Return", main.Code.Code)
	}

	add, ok := cd.FindMethod("add(II)I")
	if !ok {
		t.Fatal("add method not found")
	}
	if add.Code == nil {
		t.Fatal("add has no Code attribute")
	}
	wantKinds := []Kind{ILoad, ILoad, IAdd, IReturn}
	if len(add.Code.Code) != len(wantKinds) {
		t.Fatalf("add code length: got %d, want %d", len(add.Code.Code), len(wantKinds))
	}
	for i, k := range wantKinds {
		if add.Code.Code[i].Kind != k {
			t.Errorf("add code[%d].Kind: got %v, want %v", i, add.Code.Code[i].Kind, k)
		}
	}
	if add.Code.Code[0].Var != 0 || add.Code.Code[1].Var != 1 {
		t.Errorf("add iload slots: got %d,%d, want 0,1", add.Code.Code[0].Var, add.Code.Code[1].Var)
	}
}

func TestParseBranchTargetsRewrittenToOpcodeIndex(t *testing.T) {
	// iconst_1 ; ifeq +7 (to return) ; iconst_0 ; goto +3 (to return) ;
	// return
	// byte offsets: 0:iconst_1 1:ifeq(3 bytes,to 8) 4:iconst_0 5:goto(3
	// bytes,to 8) 8:return
	code := []byte{
		opIconst1,
		opIfeq, 0x00, 0x07, // target byte 1+7=8
		opIconst0,
		opGoto, 0x00, 0x03, // target byte 5+3=8
		opReturn,
	}
	ops, err := DecodeCode(code)
	if err != nil {
		t.Fatalf("DecodeCode: %v", err)
	}
	if len(ops) != 5 {
		t.Fatalf("got %d ops, want 5", len(ops))
	}
	returnIdx := 4
	if ops[1].Kind != IfEq || ops[1].Target != returnIdx {
		t.Errorf("ifeq target: got %+v, want index %d", ops[1], returnIdx)
	}
	if ops[3].Kind != Goto || ops[3].Target != returnIdx {
		t.Errorf("goto target: got %+v, want index %d", ops[3], returnIdx)
	}
}

func TestParseExceptionTableRewrittenToOpcodeIndex(t *testing.T) {
	cp := newCpBuilder()
	nameIdx := cp.utf8("ThrowTest")
	thisClass := cp.class(nameIdx)
	objNameIdx := cp.utf8("java/lang/Object")
	superClass := cp.class(objNameIdx)
	methodName := cp.utf8("run")
	methodDesc := cp.utf8("()V")
	codeName := cp.utf8("Code")

	// new <classref placeholder>; athrow; (handler target) return
	// we reuse thisClass as a harmless CatchType/ClassRef target for `new`.
	code := []byte{
		opNew, 0x00, byte(thisClass), // new (2-byte index, using low byte only since index<256 here)
		opAthrow,
		opReturn,
	}
	handlers := []rawHandler{{start: 0, end: 4, handler: 4, catchType: 0}}

	raw := buildClassFile(cp, thisClass, superClass, []methodSpec{
		{
			accessFlags: AccPublic | AccStatic, nameIndex: methodName, descIndex: methodDesc,
			codeAttrNameIndex: codeName, maxStack: 2, maxLocals: 1,
			code: code, handlers: handlers,
		},
	})

	cd, err := Parse(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	run, ok := cd.FindMethod("run()V")
	if !ok {
		t.Fatal("run method not found")
	}
	if len(run.Code.ExceptionTable) != 1 {
		t.Fatalf("got %d exception handlers, want 1", len(run.Code.ExceptionTable))
	}
	h := run.Code.ExceptionTable[0]
	if h.StartPC != 0 {
		t.Errorf("handler StartPC: got %d, want 0 (New opcode index)", h.StartPC)
	}
	if h.HandlerPC != 2 {
		t.Errorf("handler HandlerPC: got %d, want 2 (Return opcode index)", h.HandlerPC)
	}
	if h.EndPC != 2 {
		t.Errorf("handler EndPC: got %d, want 2 (one past AThrow)", h.EndPC)
	}
}

func TestParseInvalidMagic(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte{0xDE, 0xAD, 0xBE, 0xEF}))
	if err == nil {
		t.Fatal("expected error for invalid magic number, got nil")
	}
	var pe *ParseError
	if !asParseError(err, &pe) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if pe.Kind != InvalidMagic {
		t.Errorf("ParseError.Kind: got %v, want InvalidMagic", pe.Kind)
	}
}

func TestParseTruncatedInput(t *testing.T) {
	raw := []byte{0xCA, 0xFE, 0xBA, 0xBE, 0x00} // magic, then nothing else
	_, err := Parse(bytes.NewReader(raw))
	if err == nil {
		t.Fatal("expected error for truncated input, got nil")
	}
	var pe *ParseError
	if !asParseError(err, &pe) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if pe.Kind != TruncatedInput {
		t.Errorf("ParseError.Kind: got %v, want TruncatedInput", pe.Kind)
	}
}

func TestParseUnsupportedCpTag(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(classMagic))
	binary.Write(&buf, binary.BigEndian, uint16(0))
	binary.Write(&buf, binary.BigEndian, uint16(61))
	binary.Write(&buf, binary.BigEndian, uint16(2)) // cp_count = 2, one entry
	buf.WriteByte(0xFF)                              // bogus tag

	_, err := Parse(bytes.NewReader(buf.Bytes()))
	if err == nil {
		t.Fatal("expected error for unsupported tag, got nil")
	}
	var pe *ParseError
	if !asParseError(err, &pe) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if pe.Kind != UnsupportedCpTag {
		t.Errorf("ParseError.Kind: got %v, want UnsupportedCpTag", pe.Kind)
	}
}

func asParseError(err error, target **ParseError) bool {
	pe, ok := err.(*ParseError)
	if !ok {
		return false
	}
	*target = pe
	return true
}
