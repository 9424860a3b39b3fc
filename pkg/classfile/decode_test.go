package classfile

import "testing"

// TestDecodeTableswitchAtUnalignedOffset exercises the one case a switch's
// own byte offset (not the start of the method) would give the wrong
// padding: the opcode itself sits at an offset that is NOT already ≡ 3
// (mod 4), so naive "align relative to the opcode" padding consumes zero
// bytes and mis-reads the table header.
func TestDecodeTableswitchAtUnalignedOffset(t *testing.T) {
	// offset 0: nop
	// offset 1: tableswitch     -- opcode byte sits at offset 1, not 3 (mod 4)
	// offset 2-3: padding (2 bytes) so the default/low/high/table start at
	//             offset 4, a multiple of 4 from the start of the code
	// offset 4-7: default, encoded relative to the tableswitch's own byte
	//             offset (1): 23 -> byte offset 24
	// offset 8-11: low = 0
	// offset 12-15: high = 1
	// offset 16-19: targets[0] (key 0), relative offset 24 -> byte offset 25
	// offset 20-23: targets[1] (key 1), relative offset 25 -> byte offset 26
	// offset 24: nop (default target)
	// offset 25: nop (key 0 target)
	// offset 26: nop (key 1 target)
	// offset 27: return
	code := []byte{
		opNop,
		opTableswitch,
		0x00, 0x00, // padding
		0x00, 0x00, 0x00, 23, // default (relative) -> byte offset 24
		0x00, 0x00, 0x00, 0, // low
		0x00, 0x00, 0x00, 1, // high
		0x00, 0x00, 0x00, 24, // targets[0] (relative) -> byte offset 25
		0x00, 0x00, 0x00, 25, // targets[1] (relative) -> byte offset 26
		opNop,
		opNop,
		opNop,
		opReturn,
	}

	ops, err := DecodeCode(code)
	if err != nil {
		t.Fatalf("DecodeCode: %v", err)
	}
	if len(ops) != 6 {
		t.Fatalf("got %d ops, want 6: %+v", len(ops), ops)
	}

	sw := ops[1]
	if sw.Kind != TableSwitch {
		t.Fatalf("ops[1].Kind = %v, want TableSwitch", sw.Kind)
	}
	if sw.Switch == nil {
		t.Fatalf("ops[1].Switch is nil")
	}
	if sw.Switch.Low != 0 || sw.Switch.High != 1 {
		t.Errorf("low/high = %d/%d, want 0/1", sw.Switch.Low, sw.Switch.High)
	}

	defaultIdx := 2 // opcode index of the nop at byte offset 24
	key0Idx := 3    // opcode index of the nop at byte offset 25
	key1Idx := 4    // opcode index of the nop at byte offset 26

	if sw.Target != defaultIdx {
		t.Errorf("default target = %d, want %d", sw.Target, defaultIdx)
	}
	if len(sw.Switch.Targets) != 2 {
		t.Fatalf("got %d targets, want 2", len(sw.Switch.Targets))
	}
	if sw.Switch.Targets[0] != key0Idx {
		t.Errorf("targets[0] = %d, want %d", sw.Switch.Targets[0], key0Idx)
	}
	if sw.Switch.Targets[1] != key1Idx {
		t.Errorf("targets[1] = %d, want %d", sw.Switch.Targets[1], key1Idx)
	}
}
