package isa

// rrr builds an R-type rd,rs,rt arithmetic/logic instruction entry.
func rrr(mnemonic string, funct uint8) Entry {
	return Entry{
		Mnemonic:  mnemonic,
		Signature: Signature{KindGPR, KindGPR, KindGPR},
		Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
			rd, rs, rt := ops[0].Reg, ops[1].Reg, ops[2].Reg
			return []uint32{rType(0, rs, rt, rd, 0, funct)}, nil, nil
		},
	}
}

// rrShift builds an R-type rd,rt,shamt shift instruction entry.
func rrShift(mnemonic string, funct uint8) Entry {
	return Entry{
		Mnemonic:  mnemonic,
		Signature: Signature{KindGPR, KindGPR, KindShamt5},
		Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
			rd, rt, shamt := ops[0].Reg, ops[1].Reg, uint8(ops[2].Imm)
			return []uint32{rType(0, 0, rt, rd, shamt, funct)}, nil, nil
		},
	}
}

// rrvShift builds an R-type rd,rt,rs variable-shift instruction entry.
func rrvShift(mnemonic string, funct uint8) Entry {
	return Entry{
		Mnemonic:  mnemonic,
		Signature: Signature{KindGPR, KindGPR, KindGPR},
		Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
			rd, rt, rs := ops[0].Reg, ops[1].Reg, ops[2].Reg
			return []uint32{rType(0, rs, rt, rd, 0, funct)}, nil, nil
		},
	}
}

// rtRsImm builds an I-type rt,rs,imm arithmetic instruction entry.
func rtRsImm(mnemonic string, opcode uint8, kind OperandKind) Entry {
	return Entry{
		Mnemonic:  mnemonic,
		Signature: Signature{KindGPR, KindGPR, kind},
		Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
			rt, rs, imm := ops[0].Reg, ops[1].Reg, uint16(ops[2].Imm)
			return []uint32{iType(opcode, rs, rt, imm)}, nil, nil
		},
	}
}

func loadStore(mnemonic string, opcode uint8) Entry {
	return Entry{
		Mnemonic:  mnemonic,
		Signature: Signature{KindGPR, KindOffsetBase},
		Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
			rt := ops[0].Reg
			base, disp := ops[1].Reg, uint16(ops[1].Imm)
			return []uint32{iType(opcode, base, rt, disp)}, nil, nil
		},
	}
}

func branchTwoReg(mnemonic string, opcode uint8) Entry {
	return Entry{
		Mnemonic:  mnemonic,
		Signature: Signature{KindGPR, KindGPR, KindBranchOff16},
		Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
			rs, rt := ops[0].Reg, ops[1].Reg
			return encodeBranch(pc, opcode, rs, rt, ops[2].Address)
		},
	}
}

func branchOneReg(mnemonic string, opcode, rtField uint8) Entry {
	return Entry{
		Mnemonic:  mnemonic,
		Signature: Signature{KindGPR, KindBranchOff16},
		Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
			rs := ops[0].Reg
			return encodeBranch(pc, opcode, rs, rtField, ops[1].Address)
		},
	}
}

func encodeBranch(pc uint32, opcode, rs, rt uint8, target AddressLabel) ([]uint32, []FixupRequest, error) {
	if target.IsLabel {
		word := iType(opcode, rs, rt, 0)
		return []uint32{word}, []FixupRequest{{WordIndex: 0, Kind: FixupBranch16, Label: target.Name, SourceStart: target.SourceStart}}, nil
	}

	offsetWords := (int64(target.Constant) - int64(pc+4)) >> 2
	if offsetWords < -(1<<15) || offsetWords > (1<<15)-1 {
		return nil, nil, ErrJumpOutOfRange{To: target.Constant, From: pc}
	}
	return []uint32{iType(opcode, rs, rt, uint16(offsetWords))}, nil, nil
}

func jumpEntry(mnemonic string, opcode uint8) Entry {
	return Entry{
		Mnemonic:  mnemonic,
		Signature: Signature{KindTarget26},
		Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
			target := ops[0].Address
			if target.IsLabel {
				return []uint32{jType(opcode, 0)}, []FixupRequest{{WordIndex: 0, Kind: FixupTarget26, Label: target.Name, SourceStart: target.SourceStart}}, nil
			}
			if target.Constant&0x3 != 0 {
				return nil, nil, ErrJumpOutOfRange{To: target.Constant, From: pc}
			}
			return []uint32{jType(opcode, target.Constant>>2)}, nil, nil
		},
	}
}

// loadImmediate implements li/la: load a 32-bit value or label address into
// a register, as a one- or two-word lui/ori sequence.
func loadImmediate(mnemonic string) Entry {
	return Entry{
		Mnemonic:  mnemonic,
		Signature: Signature{KindGPR, KindLabel},
		Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
			rt := ops[0].Reg
			addr := ops[1].Address

			if addr.IsLabel {
				words := []uint32{
					iType(opcodeLUI, 0, rt, 0),
					iType(opcodeORI, rt, rt, 0),
				}
				fixups := []FixupRequest{
					{WordIndex: 0, Kind: FixupHi16, Label: addr.Name, SourceStart: addr.SourceStart},
					{WordIndex: 1, Kind: FixupLo16, Label: addr.Name, SourceStart: addr.SourceStart},
				}
				return words, fixups, nil
			}

			value := addr.Constant
			hi16 := uint16(value >> 16)
			lo16 := uint16(value & 0xFFFF)
			if hi16 == 0 {
				return []uint32{iType(opcodeORI, 0, rt, lo16)}, nil, nil
			}
			return []uint32{
				iType(opcodeLUI, 0, rt, hi16),
				iType(opcodeORI, rt, rt, lo16),
			}, nil, nil
		},
	}
}

// slt-based conditional branch pseudo-instructions (bge/ble/bgt/blt): they
// borrow $at as scratch, matching the convention every MIPS assembler uses
// for these pseudo-ops.
func sltBranch(mnemonic string, sltSwapped bool, onZeroOpcode uint8) Entry {
	return Entry{
		Mnemonic:  mnemonic,
		Signature: Signature{KindGPR, KindGPR, KindBranchOff16},
		Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
			rs, rt := ops[0].Reg, ops[1].Reg
			atReg := uint8(1) // $at

			var sltWord uint32
			if sltSwapped {
				sltWord = rType(0, rt, rs, atReg, 0, opSLT)
			} else {
				sltWord = rType(0, rs, rt, atReg, 0, opSLT)
			}

			branchWords, fixups, err := encodeBranch(pc+4, onZeroOpcode, atReg, 0, ops[2].Address)
			if err != nil {
				return nil, nil, err
			}

			adjusted := make([]FixupRequest, len(fixups))
			for i, f := range fixups {
				f.WordIndex = 1
				adjusted[i] = f
			}

			return append([]uint32{sltWord}, branchWords...), adjusted, nil
		},
	}
}

// Table returns the full mnemonic -> Entry map. It is built fresh on each
// call instead of cached in a package-level var, so callers may safely
// mutate the returned map (e.g. to install test-only mnemonics) without
// disturbing other callers.
func Table() map[string]Entry {
	entries := []Entry{
		rrr("add", opADD),
		rrr("addu", opADDU),
		rrr("and", opAND),
		rrr("or", opOR),
		rrr("xor", opXOR),
		rrr("nor", opNOR),
		rrr("slt", opSLT),
		rrr("sltu", opSLTU),
		rrr("sub", opSUB),
		rrr("subu", opSUBU),
		rrr("movn", opMOVN),
		rrr("movz", opMOVZ),

		rrShift("sll", opSLL),
		rrShift("srl", opSRL),
		rrShift("sra", opSRA),
		rrvShift("sllv", opSLLV),
		rrvShift("srlv", opSRLV),
		rrvShift("srav", opSRAV),

		rtRsImm("addi", opcodeADDI, KindImmS16),
		rtRsImm("addiu", opcodeADDIU, KindImmS16),
		rtRsImm("andi", opcodeANDI, KindImmU16),
		rtRsImm("ori", opcodeORI, KindImmU16),
		rtRsImm("xori", opcodeXORI, KindImmU16),
		rtRsImm("slti", opcodeSLTI, KindImmS16),
		rtRsImm("sltiu", opcodeSLTIU, KindImmS16),

		{
			Mnemonic:  "lui",
			Signature: Signature{KindGPR, KindImmU16},
			Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
				return []uint32{iType(opcodeLUI, 0, ops[0].Reg, uint16(ops[1].Imm))}, nil, nil
			},
		},

		{
			Mnemonic:  "jr",
			Signature: Signature{KindGPR},
			Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
				return []uint32{rType(0, ops[0].Reg, 0, 0, 0, opJR)}, nil, nil
			},
		},
		{
			Mnemonic:  "jalr",
			Signature: Signature{KindGPR, KindGPR},
			Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
				return []uint32{rType(0, ops[1].Reg, 0, ops[0].Reg, 0, opJALR)}, nil, nil
			},
		},
		{
			Mnemonic:  "mfhi",
			Signature: Signature{KindGPR},
			Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
				return []uint32{rType(0, 0, 0, ops[0].Reg, 0, opMFHI)}, nil, nil
			},
		},
		{
			Mnemonic:  "mflo",
			Signature: Signature{KindGPR},
			Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
				return []uint32{rType(0, 0, 0, ops[0].Reg, 0, opMFLO)}, nil, nil
			},
		},
		{
			Mnemonic:  "mthi",
			Signature: Signature{KindGPR},
			Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
				return []uint32{rType(0, ops[0].Reg, 0, 0, 0, opMTHI)}, nil, nil
			},
		},
		{
			Mnemonic:  "mtlo",
			Signature: Signature{KindGPR},
			Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
				return []uint32{rType(0, ops[0].Reg, 0, 0, 0, opMTLO)}, nil, nil
			},
		},
		{
			Mnemonic:  "mult",
			Signature: Signature{KindGPR, KindGPR},
			Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
				return []uint32{rType(0, ops[0].Reg, ops[1].Reg, 0, 0, opMULT)}, nil, nil
			},
		},
		{
			Mnemonic:  "multu",
			Signature: Signature{KindGPR, KindGPR},
			Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
				return []uint32{rType(0, ops[0].Reg, ops[1].Reg, 0, 0, opMULTU)}, nil, nil
			},
		},
		{
			Mnemonic:  "div",
			Signature: Signature{KindGPR, KindGPR},
			Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
				return []uint32{rType(0, ops[0].Reg, ops[1].Reg, 0, 0, opDIV)}, nil, nil
			},
		},
		{
			Mnemonic:  "divu",
			Signature: Signature{KindGPR, KindGPR},
			Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
				return []uint32{rType(0, ops[0].Reg, ops[1].Reg, 0, 0, opDIVU)}, nil, nil
			},
		},

		loadStore("lb", opcodeLB),
		loadStore("lbu", opcodeLBU),
		loadStore("lh", opcodeLH),
		loadStore("lhu", opcodeLHU),
		loadStore("lw", opcodeLW),
		loadStore("sb", opcodeSB),
		loadStore("sh", opcodeSH),
		loadStore("sw", opcodeSW),

		branchTwoReg("beq", opcodeBEQ),
		branchTwoReg("bne", opcodeBNE),
		branchOneReg("blez", opcodeBLEZ, 0),
		branchOneReg("bgtz", opcodeBGTZ, 0),
		branchOneReg("bltz", opcodeREGIMM, regimmBLTZ),
		branchOneReg("bgez", opcodeREGIMM, regimmBGEZ),

		jumpEntry("j", opcodeJ),
		jumpEntry("jal", opcodeJAL),

		{
			Mnemonic:  "syscall",
			Signature: Signature{},
			Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
				return []uint32{rType(0, 0, 0, 0, 0, opSYSCALL)}, nil, nil
			},
		},
		{
			Mnemonic:  "nop",
			Signature: Signature{},
			Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
				return []uint32{0}, nil, nil
			},
		},

		// --- pseudo-instructions: the encoder may emit more than one word ---
		loadImmediate("li"),
		loadImmediate("la"),
		{
			Mnemonic:  "move",
			Signature: Signature{KindGPR, KindGPR},
			Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
				return []uint32{rType(0, ops[1].Reg, 0, ops[0].Reg, 0, opADDU)}, nil, nil
			},
		},
		{
			Mnemonic:  "b",
			Signature: Signature{KindBranchOff16},
			Encode: func(pc uint32, ops []Operand) ([]uint32, []FixupRequest, error) {
				return encodeBranch(pc, opcodeBEQ, 0, 0, ops[0].Address)
			},
		},
		sltBranch("bge", false, opcodeBEQ),
		sltBranch("ble", true, opcodeBEQ),
		sltBranch("bgt", true, opcodeBNE),
		sltBranch("blt", false, opcodeBNE),
	}

	table := make(map[string]Entry, len(entries))
	for _, e := range entries {
		table[e.Mnemonic] = e
	}
	return table
}
