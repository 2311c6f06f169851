package isa

// Opcode and funct constants, carried over from the teacher's
// internal/mips32/instructions.go constant block (R-type funct codes and
// I-type opcodes), extended with the I/J-type opcodes the teacher only
// stubbed (its ITypeInstruction/JTypeInstruction Execute were no-ops).
const (
	opADD  = 0x20
	opADDU = 0x28
	opAND  = 0x24
	opDIV  = 0x1A
	opDIVU = 0x1B
	opJALR = 0x09
	opJR   = 0x08
	opMFHI = 0x10
	opMFLO = 0x12
	opMOVN = 0x0B
	opMOVZ = 0x0A
	opMTHI = 0x11
	opMTLO = 0x13
	opMULT = 0x18
	opMULTU = 0x19
	opNOR  = 0x27
	opOR   = 0x25
	opSLL  = 0x00
	opSLLV = 0x04
	opSLT  = 0x2A
	opSLTU = 0x2B
	opSRA  = 0x03
	opSRAV = 0x07
	opSRL  = 0x02
	opSRLV = 0x06
	opSUB  = 0x22
	opSUBU = 0x23
	opXOR  = 0x26
	opSYSCALL = 0x0C

	opcodeADDI  = 0x8
	opcodeADDIU = 0x9
	opcodeANDI  = 0xC
	opcodeORI   = 0xD
	opcodeXORI  = 0xE
	opcodeLUI   = 0xF
	opcodeSLTI  = 0xA
	opcodeSLTIU = 0xB

	opcodeJ   = 0x2
	opcodeJAL = 0x3

	opcodeBEQ  = 0x4
	opcodeBNE  = 0x5
	opcodeBLEZ = 0x6
	opcodeBGTZ = 0x7
	opcodeREGIMM = 0x1 // BLTZ/BGEZ share this opcode, rt selects

	regimmBLTZ = 0x00
	regimmBGEZ = 0x01

	opcodeLB  = 0x20
	opcodeLH  = 0x21
	opcodeLW  = 0x23
	opcodeLBU = 0x24
	opcodeLHU = 0x25
	opcodeSB  = 0x28
	opcodeSH  = 0x29
	opcodeSW  = 0x2B
)
