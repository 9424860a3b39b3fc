package classfile

// Kind identifies the semantic form of a decoded instruction. Where the raw
// bytecode has several historical encodings of the same operation (the
// ICONST_0..5/BIPUSH/SIPUSH family, the ILOAD/ILOAD_0.._3 family, and so on)
// they are normalized to a single Kind here, with the literal value or local
// index carried as an operand on Opcode. This is what pass 1 of the decoder
// produces.
type Kind int

const (
	Nop Kind = iota
	AconstNull
	Iconst // IntVal holds the constant (covers ICONST_*, BIPUSH, SIPUSH)
	Lconst
	Fconst
	Dconst
	Ldc    // CPIndex: Integer/Float/Long/Double/String/Class entry
	Ldc2W  // CPIndex: Long/Double entry
	ILoad  // Var: local slot
	LLoad
	FLoad
	DLoad
	ALoad
	IStore
	LStore
	FStore
	DStore
	AStore
	IALoad
	LALoad
	FALoad
	DALoad
	AALoad
	BALoad
	CALoad
	SALoad
	IAStore
	LAStore
	FAStore
	DAStore
	AAStore
	BAStore
	CAStore
	SAStore
	Pop
	Pop2
	Dup
	DupX1
	DupX2
	Dup2
	Dup2X1
	Dup2X2
	Swap
	IAdd
	LAdd
	FAdd
	DAdd
	ISub
	LSub
	FSub
	DSub
	IMul
	LMul
	FMul
	DMul
	IDiv
	LDiv
	FDiv
	DDiv
	IRem
	LRem
	FRem
	DRem
	INeg
	LNeg
	FNeg
	DNeg
	IShl
	LShl
	IShr
	LShr
	IUshr
	LUshr
	IAnd
	LAnd
	IOr
	LOr
	IXor
	LXor
	IInc // Var, IincAmount
	I2L
	I2F
	I2D
	L2I
	L2F
	L2D
	F2I
	F2L
	F2D
	D2I
	D2L
	D2F
	I2B
	I2C
	I2S
	LCmp
	FCmpL
	FCmpG
	DCmpL
	DCmpG
	IfEq // Target: opcode index
	IfNe
	IfLt
	IfGe
	IfGt
	IfLe
	IfICmpEq
	IfICmpNe
	IfICmpLt
	IfICmpGe
	IfICmpGt
	IfICmpLe
	IfACmpEq
	IfACmpNe
	Goto
	Jsr
	Ret // Var
	TableSwitch
	LookupSwitch
	IReturn
	LReturn
	FReturn
	DReturn
	AReturn
	Return
	GetStatic // CPIndex: Fieldref
	PutStatic
	GetField
	PutField
	InvokeVirtual   // CPIndex: Methodref
	InvokeSpecial
	InvokeStatic
	InvokeInterface // CPIndex: InterfaceMethodref, ArgCount
	InvokeDynamic   // CPIndex: InvokeDynamic entry
	New             // CPIndex: ClassRef
	NewArray        // ArrayType
	ANewArray       // CPIndex: ClassRef
	ArrayLength
	AThrow
	CheckCast // CPIndex: ClassRef
	InstanceOf
	MonitorEnter
	MonitorExit
	MultiANewArray // CPIndex: ClassRef, Dims
	IfNull
	IfNonNull
)

// SwitchEntry is one (key, opcode-index-target) pair of a lookupswitch.
type SwitchEntry struct {
	Key    int32
	Target int
}

// SwitchTable carries the decoded body of a tableswitch or lookupswitch.
// For TableSwitch, Low/High bound the contiguous key range and Targets[i]
// is the jump target for key Low+i. For LookupSwitch, Entries holds the
// explicit (key, target) pairs in ascending key order.
type SwitchTable struct {
	Low     int32
	High    int32
	Targets []int // opcode indices, len == High-Low+1, for TableSwitch
	Entries []SwitchEntry
}

// Opcode is one decoded, pre-resolved instruction. Only the fields relevant
// to Kind are populated; the rest are zero.
type Opcode struct {
	Kind       Kind
	ByteOffset int // original byte offset, retained for exception-table/trace use

	IntVal     int64   // Iconst/Lconst operand, or float/double bits for Fconst/Dconst
	Var        int     // local variable slot (ILoad/IStore/... /Ret/IInc)
	IincAmount int32   // IInc signed amount
	CPIndex    uint16  // constant pool index operand
	ArgCount   uint8   // InvokeInterface declared arg count
	ArrayType  uint8   // NewArray primitive type tag
	Dims       uint8   // MultiANewArray dimension count
	Target     int     // resolved opcode-sequence index for branches/default case
	Switch     *SwitchTable
}
