package classfile

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DecodeCode runs the two-pass opcode decoder over a method's raw code
// bytes: pass 1 walks the byte stream emitting typed Opcodes with their
// operands pre-decoded (branch operands still as raw byte offsets), and
// pass 2 rewrites every branch operand from a byte offset to the index of
// the target Opcode within the returned slice.
func DecodeCode(raw []byte) ([]Opcode, error) {
	ops, offsetToIndex, err := decodePass1(raw)
	if err != nil {
		return nil, err
	}
	if err := rewriteBranchesPass2(ops, offsetToIndex, len(raw)); err != nil {
		return nil, err
	}
	return ops, nil
}

// DecodeCodeAndOffsets is DecodeCode plus the byte-offset -> opcode-index map
// it built along the way, so a caller that also needs to rewrite an
// exception table doesn't have to decode the method body twice.
func DecodeCodeAndOffsets(raw []byte) ([]Opcode, map[int]int, error) {
	ops, offsetToIndex, err := decodePass1(raw)
	if err != nil {
		return nil, nil, err
	}
	if err := rewriteBranchesPass2(ops, offsetToIndex, len(raw)); err != nil {
		return nil, nil, err
	}
	return ops, offsetToIndex, nil
}

// RewriteExceptionTableWithOffsets maps a method's exception table entries
// from raw byte offsets to opcode indices, given the byte-offset map
// DecodeCodeAndOffsets produced for the same method's code.
func RewriteExceptionTableWithOffsets(handlers []ExceptionHandler, offsetToIndex map[int]int, codeLen int) ([]ExceptionHandler, error) {
	out := make([]ExceptionHandler, len(handlers))
	for i, h := range handlers {
		start, ok := resolveOffset(offsetToIndex, h.StartPC, codeLen)
		if !ok {
			return nil, fmt.Errorf("exception handler %d: bad start_pc %d", i, h.StartPC)
		}
		end, ok := resolveOffset(offsetToIndex, h.EndPC, codeLen)
		if !ok {
			return nil, fmt.Errorf("exception handler %d: bad end_pc %d", i, h.EndPC)
		}
		handler, ok := resolveOffset(offsetToIndex, h.HandlerPC, codeLen)
		if !ok {
			return nil, fmt.Errorf("exception handler %d: bad handler_pc %d", i, h.HandlerPC)
		}
		out[i] = ExceptionHandler{StartPC: start, EndPC: end, HandlerPC: handler, CatchType: h.CatchType}
	}
	return out, nil
}

func resolveOffset(offsetToIndex map[int]int, byteOffset int, codeLen int) (int, bool) {
	if byteOffset == codeLen {
		// one-past-the-end is a valid end_pc value
		return len(offsetToIndex), true
	}
	idx, ok := offsetToIndex[byteOffset]
	return idx, ok
}

// decodePass1 performs the linear decode described in DecodeCode, returning
// the opcode slice (with raw byte-offset branch targets still in Target)
// and the byte-offset -> opcode-index map used to rewrite them.
func decodePass1(raw []byte) ([]Opcode, map[int]int, error) {
	var ops []Opcode
	offsetToIndex := make(map[int]int)
	pc := 0

	for pc < len(raw) {
		offsetToIndex[pc] = len(ops)
		start := pc
		b := raw[pc]
		pc++

		op := Opcode{ByteOffset: start}

		readU8 := func() (uint8, error) {
			if pc >= len(raw) {
				return 0, fmt.Errorf("truncated operand at offset %d", start)
			}
			v := raw[pc]
			pc++
			return v, nil
		}
		readI8 := func() (int8, error) {
			v, err := readU8()
			return int8(v), err
		}
		readU16 := func() (uint16, error) {
			if pc+2 > len(raw) {
				return 0, fmt.Errorf("truncated operand at offset %d", start)
			}
			v := binary.BigEndian.Uint16(raw[pc : pc+2])
			pc += 2
			return v, nil
		}
		readI16 := func() (int16, error) {
			v, err := readU16()
			return int16(v), err
		}
		switch b {
		case opNop:
			op.Kind = Nop
		case opAconstNull:
			op.Kind = AconstNull
		case opIconstM1, opIconst0, opIconst1, opIconst2, opIconst3, opIconst4, opIconst5:
			op.Kind = Iconst
			op.IntVal = int64(int(b) - int(opIconst0))
		case opLconst0, opLconst1:
			op.Kind = Lconst
			op.IntVal = int64(int(b) - int(opLconst0))
		case opFconst0, opFconst1, opFconst2:
			op.Kind = Fconst
			op.IntVal = int64(math.Float32bits(float32(int(b) - int(opFconst0))))
		case opDconst0, opDconst1:
			op.Kind = Dconst
			op.IntVal = int64(math.Float64bits(float64(int(b) - int(opDconst0))))
		case opBipush:
			v, err := readI8()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = Iconst
			op.IntVal = int64(v)
		case opSipush:
			v, err := readI16()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = Iconst
			op.IntVal = int64(v)
		case opLdc:
			v, err := readU8()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = Ldc
			op.CPIndex = uint16(v)
		case opLdcW:
			v, err := readU16()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = Ldc
			op.CPIndex = v
		case opLdc2W:
			v, err := readU16()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = Ldc2W
			op.CPIndex = v

		case opILoad, opLLoad, opFLoad, opDLoad, opALoad:
			v, err := readU8()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = loadKindFor(b)
			op.Var = int(v)
		case opIStore, opLStore, opFStore, opDStore, opAStore:
			v, err := readU8()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = storeKindFor(b)
			op.Var = int(v)

		case opILoad0, opILoad1, opILoad2, opILoad3:
			op.Kind = ILoad
			op.Var = int(b - opILoad0)
		case opLLoad0, opLLoad1, opLLoad2, opLLoad3:
			op.Kind = LLoad
			op.Var = int(b - opLLoad0)
		case opFLoad0, opFLoad1, opFLoad2, opFLoad3:
			op.Kind = FLoad
			op.Var = int(b - opFLoad0)
		case opDLoad0, opDLoad1, opDLoad2, opDLoad3:
			op.Kind = DLoad
			op.Var = int(b - opDLoad0)
		case opALoad0, opALoad1, opALoad2, opALoad3:
			op.Kind = ALoad
			op.Var = int(b - opALoad0)
		case opIStore0, opIStore1, opIStore2, opIStore3:
			op.Kind = IStore
			op.Var = int(b - opIStore0)
		case opLStore0, opLStore1, opLStore2, opLStore3:
			op.Kind = LStore
			op.Var = int(b - opLStore0)
		case opFStore0, opFStore1, opFStore2, opFStore3:
			op.Kind = FStore
			op.Var = int(b - opFStore0)
		case opDStore0, opDStore1, opDStore2, opDStore3:
			op.Kind = DStore
			op.Var = int(b - opDStore0)
		case opAStore0, opAStore1, opAStore2, opAStore3:
			op.Kind = AStore
			op.Var = int(b - opAStore0)

		case opIaload:
			op.Kind = IALoad
		case opLaload:
			op.Kind = LALoad
		case opFaload:
			op.Kind = FALoad
		case opDaload:
			op.Kind = DALoad
		case opAaload:
			op.Kind = AALoad
		case opBaload:
			op.Kind = BALoad
		case opCaload:
			op.Kind = CALoad
		case opSaload:
			op.Kind = SALoad
		case opIastore:
			op.Kind = IAStore
		case opLastore:
			op.Kind = LAStore
		case opFastore:
			op.Kind = FAStore
		case opDastore:
			op.Kind = DAStore
		case opAastore:
			op.Kind = AAStore
		case opBastore:
			op.Kind = BAStore
		case opCastore:
			op.Kind = CAStore
		case opSastore:
			op.Kind = SAStore

		case opPop:
			op.Kind = Pop
		case opPop2:
			op.Kind = Pop2
		case opDup:
			op.Kind = Dup
		case opDupX1:
			op.Kind = DupX1
		case opDupX2:
			op.Kind = DupX2
		case opDup2:
			op.Kind = Dup2
		case opDup2X1:
			op.Kind = Dup2X1
		case opDup2X2:
			op.Kind = Dup2X2
		case opSwap:
			op.Kind = Swap

		case opIadd:
			op.Kind = IAdd
		case opLadd:
			op.Kind = LAdd
		case opFadd:
			op.Kind = FAdd
		case opDadd:
			op.Kind = DAdd
		case opIsub:
			op.Kind = ISub
		case opLsub:
			op.Kind = LSub
		case opFsub:
			op.Kind = FSub
		case opDsub:
			op.Kind = DSub
		case opImul:
			op.Kind = IMul
		case opLmul:
			op.Kind = LMul
		case opFmul:
			op.Kind = FMul
		case opDmul:
			op.Kind = DMul
		case opIdiv:
			op.Kind = IDiv
		case opLdiv:
			op.Kind = LDiv
		case opFdiv:
			op.Kind = FDiv
		case opDdiv:
			op.Kind = DDiv
		case opIrem:
			op.Kind = IRem
		case opLrem:
			op.Kind = LRem
		case opFrem:
			op.Kind = FRem
		case opDrem:
			op.Kind = DRem
		case opIneg:
			op.Kind = INeg
		case opLneg:
			op.Kind = LNeg
		case opFneg:
			op.Kind = FNeg
		case opDneg:
			op.Kind = DNeg
		case opIshl:
			op.Kind = IShl
		case opLshl:
			op.Kind = LShl
		case opIshr:
			op.Kind = IShr
		case opLshr:
			op.Kind = LShr
		case opIushr:
			op.Kind = IUshr
		case opLushr:
			op.Kind = LUshr
		case opIand:
			op.Kind = IAnd
		case opLand:
			op.Kind = LAnd
		case opIor:
			op.Kind = IOr
		case opLor:
			op.Kind = LOr
		case opIxor:
			op.Kind = IXor
		case opLxor:
			op.Kind = LXor

		case opIinc:
			idx, err := readU8()
			if err != nil {
				return nil, nil, err
			}
			amt, err := readI8()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = IInc
			op.Var = int(idx)
			op.IincAmount = int32(amt)

		case opI2l:
			op.Kind = I2L
		case opI2f:
			op.Kind = I2F
		case opI2d:
			op.Kind = I2D
		case opL2i:
			op.Kind = L2I
		case opL2f:
			op.Kind = L2F
		case opL2d:
			op.Kind = L2D
		case opF2i:
			op.Kind = F2I
		case opF2l:
			op.Kind = F2L
		case opF2d:
			op.Kind = F2D
		case opD2i:
			op.Kind = D2I
		case opD2l:
			op.Kind = D2L
		case opD2f:
			op.Kind = D2F
		case opI2b:
			op.Kind = I2B
		case opI2c:
			op.Kind = I2C
		case opI2s:
			op.Kind = I2S

		case opLcmp:
			op.Kind = LCmp
		case opFcmpl:
			op.Kind = FCmpL
		case opFcmpg:
			op.Kind = FCmpG
		case opDcmpl:
			op.Kind = DCmpL
		case opDcmpg:
			op.Kind = DCmpG

		case opIfeq, opIfne, opIflt, opIfge, opIfgt, opIfle,
			opIfIcmpeq, opIfIcmpne, opIfIcmplt, opIfIcmpge, opIfIcmpgt, opIfIcmple,
			opIfAcmpeq, opIfAcmpne, opGoto, opIfnull, opIfnonnull:
			offset, err := readI16()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = branchKindFor(b)
			op.Target = start + int(offset) // byte offset for now; rewritten in pass 2

		case opJsr:
			offset, err := readI16()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = Jsr
			op.Target = start + int(offset)

		case opRet:
			v, err := readU8()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = Ret
			op.Var = int(v)

		case opTableswitch:
			pc = align4(pc)
			def, err := readI32At(raw, &pc)
			if err != nil {
				return nil, nil, err
			}
			low, err := readI32At(raw, &pc)
			if err != nil {
				return nil, nil, err
			}
			high, err := readI32At(raw, &pc)
			if err != nil {
				return nil, nil, err
			}
			n := int(high-low) + 1
			if n < 0 {
				return nil, nil, fmt.Errorf("tableswitch at offset %d: invalid range [%d,%d]", start, low, high)
			}
			targets := make([]int, n)
			for i := 0; i < n; i++ {
				off, err := readI32At(raw, &pc)
				if err != nil {
					return nil, nil, err
				}
				targets[i] = start + int(off)
			}
			op.Kind = TableSwitch
			op.Target = start + int(def)
			op.Switch = &SwitchTable{Low: low, High: high, Targets: targets}

		case opLookupswitch:
			pc = align4(pc)
			def, err := readI32At(raw, &pc)
			if err != nil {
				return nil, nil, err
			}
			n, err := readI32At(raw, &pc)
			if err != nil {
				return nil, nil, err
			}
			entries := make([]SwitchEntry, n)
			for i := int32(0); i < n; i++ {
				key, err := readI32At(raw, &pc)
				if err != nil {
					return nil, nil, err
				}
				off, err := readI32At(raw, &pc)
				if err != nil {
					return nil, nil, err
				}
				entries[i] = SwitchEntry{Key: key, Target: start + int(off)}
			}
			op.Kind = LookupSwitch
			op.Target = start + int(def)
			op.Switch = &SwitchTable{Entries: entries}

		case opIreturn:
			op.Kind = IReturn
		case opLreturn:
			op.Kind = LReturn
		case opFreturn:
			op.Kind = FReturn
		case opDreturn:
			op.Kind = DReturn
		case opAreturn:
			op.Kind = AReturn
		case opReturn:
			op.Kind = Return

		case opGetstatic:
			v, err := readU16()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = GetStatic
			op.CPIndex = v
		case opPutstatic:
			v, err := readU16()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = PutStatic
			op.CPIndex = v
		case opGetfield:
			v, err := readU16()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = GetField
			op.CPIndex = v
		case opPutfield:
			v, err := readU16()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = PutField
			op.CPIndex = v

		case opInvokevirtual:
			v, err := readU16()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = InvokeVirtual
			op.CPIndex = v
		case opInvokespecial:
			v, err := readU16()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = InvokeSpecial
			op.CPIndex = v
		case opInvokestatic:
			v, err := readU16()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = InvokeStatic
			op.CPIndex = v
		case opInvokeinterface:
			v, err := readU16()
			if err != nil {
				return nil, nil, err
			}
			count, err := readU8()
			if err != nil {
				return nil, nil, err
			}
			if _, err := readU8(); err != nil { // reserved zero byte
				return nil, nil, err
			}
			op.Kind = InvokeInterface
			op.CPIndex = v
			op.ArgCount = count
		case opInvokedynamic:
			v, err := readU16()
			if err != nil {
				return nil, nil, err
			}
			if _, err := readU16(); err != nil { // reserved zero bytes
				return nil, nil, err
			}
			op.Kind = InvokeDynamic
			op.CPIndex = v

		case opNew:
			v, err := readU16()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = New
			op.CPIndex = v
		case opNewarray:
			v, err := readU8()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = NewArray
			op.ArrayType = v
		case opAnewarray:
			v, err := readU16()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = ANewArray
			op.CPIndex = v
		case opArraylength:
			op.Kind = ArrayLength
		case opAthrow:
			op.Kind = AThrow
		case opCheckcast:
			v, err := readU16()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = CheckCast
			op.CPIndex = v
		case opInstanceof:
			v, err := readU16()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = InstanceOf
			op.CPIndex = v
		case opMonitorenter:
			op.Kind = MonitorEnter
		case opMonitorexit:
			op.Kind = MonitorExit

		case opWide:
			sub, err := readU8()
			if err != nil {
				return nil, nil, err
			}
			if sub == opIinc {
				idx, err := readU16()
				if err != nil {
					return nil, nil, err
				}
				amt, err := readI16()
				if err != nil {
					return nil, nil, err
				}
				op.Kind = IInc
				op.Var = int(idx)
				op.IincAmount = int32(amt)
			} else {
				idx, err := readU16()
				if err != nil {
					return nil, nil, err
				}
				op.Kind = loadOrStoreOrRetKindFor(sub)
				op.Var = int(idx)
			}

		case opMultianewarray:
			v, err := readU16()
			if err != nil {
				return nil, nil, err
			}
			dims, err := readU8()
			if err != nil {
				return nil, nil, err
			}
			op.Kind = MultiANewArray
			op.CPIndex = v
			op.Dims = dims

		default:
			return nil, nil, fmt.Errorf("unimplemented opcode 0x%02X at offset %d", b, start)
		}

		ops = append(ops, op)
	}

	return ops, offsetToIndex, nil
}

func readI32At(raw []byte, pc *int) (int32, error) {
	if *pc+4 > len(raw) {
		return 0, fmt.Errorf("truncated switch table at offset %d", *pc)
	}
	v := int32(binary.BigEndian.Uint32(raw[*pc : *pc+4]))
	*pc += 4
	return v, nil
}

// align4 advances pc to the next multiple of 4 relative to the start of the
// method's code, per the tableswitch/lookupswitch padding rule.
func align4(pc int) int {
	for pc%4 != 0 {
		pc++
	}
	return pc
}

// rewriteBranchesPass2 resolves every branch Target (and switch targets)
// from a raw byte offset to the index of the Opcode at that offset.
func rewriteBranchesPass2(ops []Opcode, offsetToIndex map[int]int, codeLen int) error {
	resolve := func(byteOffset int) (int, error) {
		if idx, ok := resolveOffset(offsetToIndex, byteOffset, codeLen); ok {
			return idx, nil
		}
		return 0, fmt.Errorf("branch target %d does not land on an instruction boundary", byteOffset)
	}
	for i := range ops {
		switch ops[i].Kind {
		case IfEq, IfNe, IfLt, IfGe, IfGt, IfLe,
			IfICmpEq, IfICmpNe, IfICmpLt, IfICmpGe, IfICmpGt, IfICmpLe,
			IfACmpEq, IfACmpNe, Goto, Jsr, IfNull, IfNonNull:
			idx, err := resolve(ops[i].Target)
			if err != nil {
				return err
			}
			ops[i].Target = idx
		case TableSwitch, LookupSwitch:
			idx, err := resolve(ops[i].Target)
			if err != nil {
				return err
			}
			ops[i].Target = idx
			if ops[i].Switch.Targets != nil {
				for j, off := range ops[i].Switch.Targets {
					idx, err := resolve(off)
					if err != nil {
						return err
					}
					ops[i].Switch.Targets[j] = idx
				}
			}
			for j, e := range ops[i].Switch.Entries {
				idx, err := resolve(e.Target)
				if err != nil {
					return err
				}
				ops[i].Switch.Entries[j].Target = idx
			}
		}
	}
	return nil
}

func loadKindFor(b uint8) Kind {
	switch b {
	case opILoad:
		return ILoad
	case opLLoad:
		return LLoad
	case opFLoad:
		return FLoad
	case opDLoad:
		return DLoad
	default:
		return ALoad
	}
}

func storeKindFor(b uint8) Kind {
	switch b {
	case opIStore:
		return IStore
	case opLStore:
		return LStore
	case opFStore:
		return FStore
	case opDStore:
		return DStore
	default:
		return AStore
	}
}

func loadOrStoreOrRetKindFor(sub uint8) Kind {
	switch sub {
	case opILoad:
		return ILoad
	case opLLoad:
		return LLoad
	case opFLoad:
		return FLoad
	case opDLoad:
		return DLoad
	case opALoad:
		return ALoad
	case opIStore:
		return IStore
	case opLStore:
		return LStore
	case opFStore:
		return FStore
	case opDStore:
		return DStore
	case opAStore:
		return AStore
	case opRet:
		return Ret
	default:
		return Nop
	}
}

func branchKindFor(b uint8) Kind {
	switch b {
	case opIfeq:
		return IfEq
	case opIfne:
		return IfNe
	case opIflt:
		return IfLt
	case opIfge:
		return IfGe
	case opIfgt:
		return IfGt
	case opIfle:
		return IfLe
	case opIfIcmpeq:
		return IfICmpEq
	case opIfIcmpne:
		return IfICmpNe
	case opIfIcmplt:
		return IfICmpLt
	case opIfIcmpge:
		return IfICmpGe
	case opIfIcmpgt:
		return IfICmpGt
	case opIfIcmple:
		return IfICmpLe
	case opIfAcmpeq:
		return IfACmpEq
	case opIfAcmpne:
		return IfACmpNe
	case opIfnull:
		return IfNull
	case opIfnonnull:
		return IfNonNull
	default:
		return Goto
	}
}

// Raw opcode byte values, per the class file format.
const (
	opNop          uint8 = 0x00
	opAconstNull   uint8 = 0x01
	opIconstM1     uint8 = 0x02
	opIconst0      uint8 = 0x03
	opIconst1      uint8 = 0x04
	opIconst2      uint8 = 0x05
	opIconst3      uint8 = 0x06
	opIconst4      uint8 = 0x07
	opIconst5      uint8 = 0x08
	opLconst0      uint8 = 0x09
	opLconst1      uint8 = 0x0a
	opFconst0      uint8 = 0x0b
	opFconst1      uint8 = 0x0c
	opFconst2      uint8 = 0x0d
	opDconst0      uint8 = 0x0e
	opDconst1      uint8 = 0x0f
	opBipush       uint8 = 0x10
	opSipush       uint8 = 0x11
	opLdc          uint8 = 0x12
	opLdcW         uint8 = 0x13
	opLdc2W        uint8 = 0x14
	opILoad        uint8 = 0x15
	opLLoad        uint8 = 0x16
	opFLoad        uint8 = 0x17
	opDLoad        uint8 = 0x18
	opALoad        uint8 = 0x19
	opILoad0       uint8 = 0x1a
	opILoad1       uint8 = 0x1b
	opILoad2       uint8 = 0x1c
	opILoad3       uint8 = 0x1d
	opLLoad0       uint8 = 0x1e
	opLLoad1       uint8 = 0x1f
	opLLoad2       uint8 = 0x20
	opLLoad3       uint8 = 0x21
	opFLoad0       uint8 = 0x22
	opFLoad1       uint8 = 0x23
	opFLoad2       uint8 = 0x24
	opFLoad3       uint8 = 0x25
	opDLoad0       uint8 = 0x26
	opDLoad1       uint8 = 0x27
	opDLoad2       uint8 = 0x28
	opDLoad3       uint8 = 0x29
	opALoad0       uint8 = 0x2a
	opALoad1       uint8 = 0x2b
	opALoad2       uint8 = 0x2c
	opALoad3       uint8 = 0x2d
	opIaload       uint8 = 0x2e
	opLaload       uint8 = 0x2f
	opFaload       uint8 = 0x30
	opDaload       uint8 = 0x31
	opAaload       uint8 = 0x32
	opBaload       uint8 = 0x33
	opCaload       uint8 = 0x34
	opSaload       uint8 = 0x35
	opIStore       uint8 = 0x36
	opLStore       uint8 = 0x37
	opFStore       uint8 = 0x38
	opDStore       uint8 = 0x39
	opAStore       uint8 = 0x3a
	opIStore0      uint8 = 0x3b
	opIStore1      uint8 = 0x3c
	opIStore2      uint8 = 0x3d
	opIStore3      uint8 = 0x3e
	opLStore0      uint8 = 0x3f
	opLStore1      uint8 = 0x40
	opLStore2      uint8 = 0x41
	opLStore3      uint8 = 0x42
	opFStore0      uint8 = 0x43
	opFStore1      uint8 = 0x44
	opFStore2      uint8 = 0x45
	opFStore3      uint8 = 0x46
	opDStore0      uint8 = 0x47
	opDStore1      uint8 = 0x48
	opDStore2      uint8 = 0x49
	opDStore3      uint8 = 0x4a
	opAStore0      uint8 = 0x4b
	opAStore1      uint8 = 0x4c
	opAStore2      uint8 = 0x4d
	opAStore3      uint8 = 0x4e
	opIastore      uint8 = 0x4f
	opLastore      uint8 = 0x50
	opFastore      uint8 = 0x51
	opDastore      uint8 = 0x52
	opAastore      uint8 = 0x53
	opBastore      uint8 = 0x54
	opCastore      uint8 = 0x55
	opSastore      uint8 = 0x56
	opPop          uint8 = 0x57
	opPop2         uint8 = 0x58
	opDup          uint8 = 0x59
	opDupX1        uint8 = 0x5a
	opDupX2        uint8 = 0x5b
	opDup2         uint8 = 0x5c
	opDup2X1       uint8 = 0x5d
	opDup2X2       uint8 = 0x5e
	opSwap         uint8 = 0x5f
	opIadd         uint8 = 0x60
	opLadd         uint8 = 0x61
	opFadd         uint8 = 0x62
	opDadd         uint8 = 0x63
	opIsub         uint8 = 0x64
	opLsub         uint8 = 0x65
	opFsub         uint8 = 0x66
	opDsub         uint8 = 0x67
	opImul         uint8 = 0x68
	opLmul         uint8 = 0x69
	opFmul         uint8 = 0x6a
	opDmul         uint8 = 0x6b
	opIdiv         uint8 = 0x6c
	opLdiv         uint8 = 0x6d
	opFdiv         uint8 = 0x6e
	opDdiv         uint8 = 0x6f
	opIrem         uint8 = 0x70
	opLrem         uint8 = 0x71
	opFrem         uint8 = 0x72
	opDrem         uint8 = 0x73
	opIneg         uint8 = 0x74
	opLneg         uint8 = 0x75
	opFneg         uint8 = 0x76
	opDneg         uint8 = 0x77
	opIshl         uint8 = 0x78
	opLshl         uint8 = 0x79
	opIshr         uint8 = 0x7a
	opLshr         uint8 = 0x7b
	opIushr        uint8 = 0x7c
	opLushr        uint8 = 0x7d
	opIand         uint8 = 0x7e
	opLand         uint8 = 0x7f
	opIor          uint8 = 0x80
	opLor          uint8 = 0x81
	opIxor         uint8 = 0x82
	opLxor         uint8 = 0x83
	opIinc         uint8 = 0x84
	opI2l          uint8 = 0x85
	opI2f          uint8 = 0x86
	opI2d          uint8 = 0x87
	opL2i          uint8 = 0x88
	opL2f          uint8 = 0x89
	opL2d          uint8 = 0x8a
	opF2i          uint8 = 0x8b
	opF2l          uint8 = 0x8c
	opF2d          uint8 = 0x8d
	opD2i          uint8 = 0x8e
	opD2l          uint8 = 0x8f
	opD2f          uint8 = 0x90
	opI2b          uint8 = 0x91
	opI2c          uint8 = 0x92
	opI2s          uint8 = 0x93
	opLcmp         uint8 = 0x94
	opFcmpl        uint8 = 0x95
	opFcmpg        uint8 = 0x96
	opDcmpl        uint8 = 0x97
	opDcmpg        uint8 = 0x98
	opIfeq         uint8 = 0x99
	opIfne         uint8 = 0x9a
	opIflt         uint8 = 0x9b
	opIfge         uint8 = 0x9c
	opIfgt         uint8 = 0x9d
	opIfle         uint8 = 0x9e
	opIfIcmpeq     uint8 = 0x9f
	opIfIcmpne     uint8 = 0xa0
	opIfIcmplt     uint8 = 0xa1
	opIfIcmpge     uint8 = 0xa2
	opIfIcmpgt     uint8 = 0xa3
	opIfIcmple     uint8 = 0xa4
	opIfAcmpeq     uint8 = 0xa5
	opIfAcmpne     uint8 = 0xa6
	opGoto         uint8 = 0xa7
	opJsr          uint8 = 0xa8
	opRet          uint8 = 0xa9
	opTableswitch  uint8 = 0xaa
	opLookupswitch uint8 = 0xab
	opIreturn      uint8 = 0xac
	opLreturn      uint8 = 0xad
	opFreturn      uint8 = 0xae
	opDreturn      uint8 = 0xaf
	opAreturn      uint8 = 0xb0
	opReturn       uint8 = 0xb1
	opGetstatic    uint8 = 0xb2
	opPutstatic    uint8 = 0xb3
	opGetfield     uint8 = 0xb4
	opPutfield     uint8 = 0xb5
	opInvokevirtual   uint8 = 0xb6
	opInvokespecial   uint8 = 0xb7
	opInvokestatic    uint8 = 0xb8
	opInvokeinterface uint8 = 0xb9
	opInvokedynamic   uint8 = 0xba
	opNew             uint8 = 0xbb
	opNewarray        uint8 = 0xbc
	opAnewarray       uint8 = 0xbd
	opArraylength     uint8 = 0xbe
	opAthrow          uint8 = 0xbf
	opCheckcast       uint8 = 0xc0
	opInstanceof      uint8 = 0xc1
	opMonitorenter    uint8 = 0xc2
	opMonitorexit     uint8 = 0xc3
	opWide            uint8 = 0xc4
	opMultianewarray  uint8 = 0xc5
	opIfnull          uint8 = 0xc6
	opIfnonnull       uint8 = 0xc7
)
