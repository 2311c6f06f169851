package isa

import "mipsunit/internal/utils"

// SignExtend widens a bitCount-wide two's complement value held in the low
// bits of x up to the full width of T, preserving its sign. Reuses the
// teacher's generic bit trick directly rather than re-deriving it.
func SignExtend[T uint32 | uint16](x T, bitCount int) T {
	return utils.SignExtend(x, bitCount)
}

func rType(opcode, rs, rt, rd, shamt, funct uint8) uint32 {
	return uint32(opcode&0x3F)<<26 |
		uint32(rs&0x1F)<<21 |
		uint32(rt&0x1F)<<16 |
		uint32(rd&0x1F)<<11 |
		uint32(shamt&0x1F)<<6 |
		uint32(funct&0x3F)
}

func iType(opcode, rs, rt uint8, immediate uint16) uint32 {
	return uint32(opcode&0x3F)<<26 |
		uint32(rs&0x1F)<<21 |
		uint32(rt&0x1F)<<16 |
		uint32(immediate)
}

func jType(opcode uint8, target uint32) uint32 {
	return uint32(opcode&0x3F)<<26 | (target & 0x3FFFFFF)
}
