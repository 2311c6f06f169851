package isa

// Decoded is one disassembled instruction: the mnemonic plus its operands in
// the same order Encode would have consumed them. Label/branch/jump operands
// come back as resolved constants (IsLabel is always false): decode never
// reconstructs symbol names, only addresses.
type Decoded struct {
	Mnemonic string
	Signature
	Operands []Operand
}

func fields(word uint32) (opcode, rs, rt, rd, shamt, funct uint8, imm16 uint16, target26 uint32) {
	opcode = uint8((word >> 26) & 0x3F)
	rs = uint8((word >> 21) & 0x1F)
	rt = uint8((word >> 16) & 0x1F)
	rd = uint8((word >> 11) & 0x1F)
	shamt = uint8((word >> 6) & 0x1F)
	funct = uint8(word & 0x3F)
	imm16 = uint16(word & 0xFFFF)
	target26 = word & 0x3FFFFFF
	return
}

var rTypeMnemonics = map[uint8]string{
	opADD: "add", opADDU: "addu", opAND: "and", opOR: "or", opXOR: "xor",
	opNOR: "nor", opSLT: "slt", opSLTU: "sltu", opSUB: "sub", opSUBU: "subu",
	opMOVN: "movn", opMOVZ: "movz",
	opSLL: "sll", opSRL: "srl", opSRA: "sra",
	opSLLV: "sllv", opSRLV: "srlv", opSRAV: "srav",
	opJR: "jr", opJALR: "jalr",
	opMFHI: "mfhi", opMFLO: "mflo", opMTHI: "mthi", opMTLO: "mtlo",
	opMULT: "mult", opMULTU: "multu", opDIV: "div", opDIVU: "divu",
	opSYSCALL: "syscall",
}

var iTypeMnemonics = map[uint8]string{
	opcodeADDI: "addi", opcodeADDIU: "addiu", opcodeANDI: "andi",
	opcodeORI: "ori", opcodeXORI: "xori", opcodeLUI: "lui",
	opcodeSLTI: "slti", opcodeSLTIU: "sltiu",
	opcodeLB: "lb", opcodeLBU: "lbu", opcodeLH: "lh", opcodeLHU: "lhu", opcodeLW: "lw",
	opcodeSB: "sb", opcodeSH: "sh", opcodeSW: "sw",
	opcodeBEQ: "beq", opcodeBNE: "bne", opcodeBLEZ: "blez", opcodeBGTZ: "bgtz",
}

// Decode disassembles one 32-bit word at address pc into a mnemonic and its
// resolved operands. It only recognizes real, single-word instructions:
// pseudo-instructions (li, la, move, b, bge/ble/bgt/blt) never round-trip
// through Decode since they expand to a different word sequence than any
// single real instruction shares.
func Decode(pc uint32, word uint32) (Decoded, bool) {
	opcode, rs, rt, rd, shamt, funct, imm16, target26 := fields(word)

	if opcode == 0 {
		if word == 0 {
			return Decoded{Mnemonic: "nop"}, true
		}
		if name, ok := rTypeMnemonics[funct]; ok {
			return decodeRType(name, rs, rt, rd, shamt), true
		}
		return Decoded{}, false
	}

	if opcode == opcodeREGIMM {
		switch rt {
		case regimmBLTZ:
			return decodeBranchOneReg("bltz", pc, rs, imm16), true
		case regimmBGEZ:
			return decodeBranchOneReg("bgez", pc, rs, imm16), true
		}
		return Decoded{}, false
	}

	if opcode == opcodeJ || opcode == opcodeJAL {
		name := "j"
		if opcode == opcodeJAL {
			name = "jal"
		}
		target := (target26 << 2) | (pc+4)&0xF0000000
		return Decoded{
			Mnemonic:  name,
			Signature: Signature{KindTarget26},
			Operands:  []Operand{{Kind: KindTarget26, Address: AddressLabel{Constant: target}}},
		}, true
	}

	switch opcode {
	case opcodeBLEZ, opcodeBGTZ:
		name := iTypeMnemonics[opcode]
		return decodeBranchOneReg(name, pc, rs, imm16), true
	case opcodeBEQ, opcodeBNE:
		name := iTypeMnemonics[opcode]
		target := uint32(int64(pc+4) + int64(int16(imm16))*4)
		return Decoded{
			Mnemonic:  name,
			Signature: Signature{KindGPR, KindGPR, KindBranchOff16},
			Operands: []Operand{
				{Kind: KindGPR, Reg: rs},
				{Kind: KindGPR, Reg: rt},
				{Kind: KindBranchOff16, Address: AddressLabel{Constant: target}},
			},
		}, true
	case opcodeLB, opcodeLBU, opcodeLH, opcodeLHU, opcodeLW, opcodeSB, opcodeSH, opcodeSW:
		name := iTypeMnemonics[opcode]
		return Decoded{
			Mnemonic:  name,
			Signature: Signature{KindGPR, KindOffsetBase},
			Operands: []Operand{
				{Kind: KindGPR, Reg: rt},
				{Kind: KindOffsetBase, Reg: rs, Imm: int64(int16(imm16))},
			},
		}, true
	case opcodeLUI:
		return Decoded{
			Mnemonic:  "lui",
			Signature: Signature{KindGPR, KindImmU16},
			Operands: []Operand{
				{Kind: KindGPR, Reg: rt},
				{Kind: KindImmU16, Imm: int64(imm16)},
			},
		}, true
	case opcodeANDI, opcodeORI, opcodeXORI:
		name := iTypeMnemonics[opcode]
		return Decoded{
			Mnemonic:  name,
			Signature: Signature{KindGPR, KindGPR, KindImmU16},
			Operands: []Operand{
				{Kind: KindGPR, Reg: rt},
				{Kind: KindGPR, Reg: rs},
				{Kind: KindImmU16, Imm: int64(imm16)},
			},
		}, true
	case opcodeADDI, opcodeADDIU, opcodeSLTI, opcodeSLTIU:
		name := iTypeMnemonics[opcode]
		return Decoded{
			Mnemonic:  name,
			Signature: Signature{KindGPR, KindGPR, KindImmS16},
			Operands: []Operand{
				{Kind: KindGPR, Reg: rt},
				{Kind: KindGPR, Reg: rs},
				{Kind: KindImmS16, Imm: int64(int16(imm16))},
			},
		}, true
	}

	return Decoded{}, false
}

func decodeBranchOneReg(name string, pc uint32, rs uint8, imm16 uint16) Decoded {
	target := uint32(int64(pc+4) + int64(int16(imm16))*4)
	return Decoded{
		Mnemonic:  name,
		Signature: Signature{KindGPR, KindBranchOff16},
		Operands: []Operand{
			{Kind: KindGPR, Reg: rs},
			{Kind: KindBranchOff16, Address: AddressLabel{Constant: target}},
		},
	}
}

func decodeRType(name string, rs, rt, rd, shamt uint8) Decoded {
	switch name {
	case "sll", "srl", "sra":
		return Decoded{
			Mnemonic:  name,
			Signature: Signature{KindGPR, KindGPR, KindShamt5},
			Operands: []Operand{
				{Kind: KindGPR, Reg: rd},
				{Kind: KindGPR, Reg: rt},
				{Kind: KindShamt5, Imm: int64(shamt)},
			},
		}
	case "sllv", "srlv", "srav":
		return Decoded{
			Mnemonic:  name,
			Signature: Signature{KindGPR, KindGPR, KindGPR},
			Operands: []Operand{
				{Kind: KindGPR, Reg: rd},
				{Kind: KindGPR, Reg: rt},
				{Kind: KindGPR, Reg: rs},
			},
		}
	case "jr":
		return Decoded{
			Mnemonic:  name,
			Signature: Signature{KindGPR},
			Operands:  []Operand{{Kind: KindGPR, Reg: rs}},
		}
	case "jalr":
		return Decoded{
			Mnemonic:  name,
			Signature: Signature{KindGPR, KindGPR},
			Operands:  []Operand{{Kind: KindGPR, Reg: rd}, {Kind: KindGPR, Reg: rs}},
		}
	case "mfhi", "mflo":
		return Decoded{
			Mnemonic:  name,
			Signature: Signature{KindGPR},
			Operands:  []Operand{{Kind: KindGPR, Reg: rd}},
		}
	case "mthi", "mtlo":
		return Decoded{
			Mnemonic:  name,
			Signature: Signature{KindGPR},
			Operands:  []Operand{{Kind: KindGPR, Reg: rs}},
		}
	case "mult", "multu", "div", "divu":
		return Decoded{
			Mnemonic:  name,
			Signature: Signature{KindGPR, KindGPR},
			Operands:  []Operand{{Kind: KindGPR, Reg: rs}, {Kind: KindGPR, Reg: rt}},
		}
	case "syscall":
		return Decoded{Mnemonic: name}
	default:
		return Decoded{
			Mnemonic:  name,
			Signature: Signature{KindGPR, KindGPR, KindGPR},
			Operands: []Operand{
				{Kind: KindGPR, Reg: rd},
				{Kind: KindGPR, Reg: rs},
				{Kind: KindGPR, Reg: rt},
			},
		}
	}
}
