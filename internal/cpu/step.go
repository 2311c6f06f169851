package cpu

import (
	"mipsunit/internal/isa"
	"mipsunit/internal/regnames"
	"mipsunit/internal/utils"
)

// Step fetches, decodes, and executes one instruction, advancing PC. No
// delay slot is modeled: branches and jumps take effect for the very next
// fetch. The encoded words hold PC-relative branch offsets and 26-bit jump
// fields; isa.Decode turns both into absolute target addresses, which Step
// assigns to PC directly.
func (s *State) Step() (StepResult, error) {
	prior := s.Regs
	pc := s.Regs.PC()

	word, err := s.Mem.GetWord(pc)
	if err != nil {
		return StepResult{}, err
	}

	decoded, ok := isa.Decode(pc, word)
	if !ok {
		return StepResult{}, ErrInvalidInstruction{PC: pc, Word: word}
	}

	nextPC := pc + 4
	result := StepResult{}

	ops := decoded.Operands
	reg := func(i int) regnames.RegisterName { return regnames.FromIndex(ops[i].Reg) }
	imm := func(i int) int64 { return ops[i].Imm }
	addr := func(i int) uint32 { return ops[i].Address.Constant }

	switch decoded.Mnemonic {
	case "nop":
		// no effect

	case "add":
		a, b := int32(s.Regs.Get(reg(1))), int32(s.Regs.Get(reg(2)))
		sum := a + b
		if utils.CheckAdditionOverflow(a, b, sum) {
			return StepResult{}, ErrArithmeticOverflow{PC: pc}
		}
		s.Regs.Set(reg(0), uint32(sum))
	case "addu":
		s.Regs.Set(reg(0), s.Regs.Get(reg(1))+s.Regs.Get(reg(2)))
	case "sub":
		a, b := int32(s.Regs.Get(reg(1))), int32(s.Regs.Get(reg(2)))
		diff := a - b
		if utils.CheckSubtractionOverflow(a, b, diff) {
			return StepResult{}, ErrArithmeticOverflow{PC: pc}
		}
		s.Regs.Set(reg(0), uint32(diff))
	case "subu":
		s.Regs.Set(reg(0), s.Regs.Get(reg(1))-s.Regs.Get(reg(2)))
	case "and":
		s.Regs.Set(reg(0), s.Regs.Get(reg(1))&s.Regs.Get(reg(2)))
	case "or":
		s.Regs.Set(reg(0), s.Regs.Get(reg(1))|s.Regs.Get(reg(2)))
	case "xor":
		s.Regs.Set(reg(0), s.Regs.Get(reg(1))^s.Regs.Get(reg(2)))
	case "nor":
		s.Regs.Set(reg(0), ^(s.Regs.Get(reg(1)) | s.Regs.Get(reg(2))))
	case "slt":
		if int32(s.Regs.Get(reg(1))) < int32(s.Regs.Get(reg(2))) {
			s.Regs.Set(reg(0), 1)
		} else {
			s.Regs.Set(reg(0), 0)
		}
	case "sltu":
		if s.Regs.Get(reg(1)) < s.Regs.Get(reg(2)) {
			s.Regs.Set(reg(0), 1)
		} else {
			s.Regs.Set(reg(0), 0)
		}
	case "movn":
		if s.Regs.Get(reg(2)) != 0 {
			s.Regs.Set(reg(0), s.Regs.Get(reg(1)))
		}
	case "movz":
		if s.Regs.Get(reg(2)) == 0 {
			s.Regs.Set(reg(0), s.Regs.Get(reg(1)))
		}

	case "sll":
		s.Regs.Set(reg(0), s.Regs.Get(reg(1))<<uint(imm(2)))
	case "srl":
		s.Regs.Set(reg(0), s.Regs.Get(reg(1))>>uint(imm(2)))
	case "sra":
		s.Regs.Set(reg(0), uint32(int32(s.Regs.Get(reg(1)))>>uint(imm(2))))
	case "sllv":
		s.Regs.Set(reg(0), s.Regs.Get(reg(1))<<(s.Regs.Get(reg(2))&0x1F))
	case "srlv":
		s.Regs.Set(reg(0), s.Regs.Get(reg(1))>>(s.Regs.Get(reg(2))&0x1F))
	case "srav":
		s.Regs.Set(reg(0), uint32(int32(s.Regs.Get(reg(1)))>>(s.Regs.Get(reg(2))&0x1F)))

	case "jr":
		nextPC = s.Regs.Get(reg(0))
	case "jalr":
		target := s.Regs.Get(reg(1))
		s.Regs.Set(reg(0), pc+4)
		nextPC = target
	case "mfhi":
		s.Regs.Set(reg(0), s.Regs.HI())
	case "mflo":
		s.Regs.Set(reg(0), s.Regs.LO())
	case "mthi":
		s.Regs.SetHI(s.Regs.Get(reg(0)))
	case "mtlo":
		s.Regs.SetLO(s.Regs.Get(reg(0)))
	case "mult":
		product := int64(int32(s.Regs.Get(reg(0)))) * int64(int32(s.Regs.Get(reg(1))))
		s.Regs.SetLO(uint32(product))
		s.Regs.SetHI(uint32(product >> 32))
	case "multu":
		product := uint64(s.Regs.Get(reg(0))) * uint64(s.Regs.Get(reg(1)))
		s.Regs.SetLO(uint32(product))
		s.Regs.SetHI(uint32(product >> 32))
	case "div":
		divisor := int32(s.Regs.Get(reg(1)))
		if divisor == 0 {
			return StepResult{}, ErrDivideByZero{PC: pc}
		}
		dividend := int32(s.Regs.Get(reg(0)))
		s.Regs.SetLO(uint32(dividend / divisor))
		s.Regs.SetHI(uint32(dividend % divisor))
	case "divu":
		divisor := s.Regs.Get(reg(1))
		if divisor == 0 {
			return StepResult{}, ErrDivideByZero{PC: pc}
		}
		dividend := s.Regs.Get(reg(0))
		s.Regs.SetLO(dividend / divisor)
		s.Regs.SetHI(dividend % divisor)

	case "addi":
		a, b := int32(s.Regs.Get(reg(1))), int32(imm(2))
		if utils.CheckAdditionOverflow(a, b, a+b) {
			return StepResult{}, ErrArithmeticOverflow{PC: pc}
		}
		s.Regs.Set(reg(0), uint32(a+b))
	case "addiu":
		s.Regs.Set(reg(0), s.Regs.Get(reg(1))+uint32(int32(imm(2))))
	case "andi":
		s.Regs.Set(reg(0), s.Regs.Get(reg(1))&uint32(imm(2)))
	case "ori":
		s.Regs.Set(reg(0), s.Regs.Get(reg(1))|uint32(imm(2)))
	case "xori":
		s.Regs.Set(reg(0), s.Regs.Get(reg(1))^uint32(imm(2)))
	case "slti":
		if int32(s.Regs.Get(reg(1))) < int32(imm(2)) {
			s.Regs.Set(reg(0), 1)
		} else {
			s.Regs.Set(reg(0), 0)
		}
	case "sltiu":
		if s.Regs.Get(reg(1)) < uint32(int32(imm(2))) {
			s.Regs.Set(reg(0), 1)
		} else {
			s.Regs.Set(reg(0), 0)
		}
	case "lui":
		s.Regs.Set(reg(0), uint32(imm(1))<<16)

	case "lb":
		b, err := s.Mem.GetByte(s.Regs.Get(regnames.FromIndex(ops[1].Reg)) + uint32(ops[1].Imm))
		if err != nil {
			return StepResult{}, err
		}
		s.Regs.Set(reg(0), uint32(int32(int8(b))))
	case "lbu":
		b, err := s.Mem.GetByte(s.Regs.Get(regnames.FromIndex(ops[1].Reg)) + uint32(ops[1].Imm))
		if err != nil {
			return StepResult{}, err
		}
		s.Regs.Set(reg(0), uint32(b))
	case "lh":
		v, err := loadHalf(s, ops[1])
		if err != nil {
			return StepResult{}, err
		}
		s.Regs.Set(reg(0), uint32(int32(int16(v))))
	case "lhu":
		v, err := loadHalf(s, ops[1])
		if err != nil {
			return StepResult{}, err
		}
		s.Regs.Set(reg(0), uint32(v))
	case "lw":
		v, err := s.Mem.GetWord(s.Regs.Get(regnames.FromIndex(ops[1].Reg)) + uint32(ops[1].Imm))
		if err != nil {
			return StepResult{}, err
		}
		s.Regs.Set(reg(0), v)
	case "sb":
		if err := s.Mem.SetByte(s.Regs.Get(regnames.FromIndex(ops[1].Reg))+uint32(ops[1].Imm), byte(s.Regs.Get(reg(0)))); err != nil {
			return StepResult{}, err
		}
	case "sh":
		if err := storeHalf(s, ops[1], uint16(s.Regs.Get(reg(0)))); err != nil {
			return StepResult{}, err
		}
	case "sw":
		if err := s.Mem.SetWord(s.Regs.Get(regnames.FromIndex(ops[1].Reg))+uint32(ops[1].Imm), s.Regs.Get(reg(0))); err != nil {
			return StepResult{}, err
		}

	case "beq":
		if s.Regs.Get(reg(0)) == s.Regs.Get(reg(1)) {
			nextPC = addr(2)
		}
	case "bne":
		if s.Regs.Get(reg(0)) != s.Regs.Get(reg(1)) {
			nextPC = addr(2)
		}
	case "blez":
		if int32(s.Regs.Get(reg(0))) <= 0 {
			nextPC = addr(1)
		}
	case "bgtz":
		if int32(s.Regs.Get(reg(0))) > 0 {
			nextPC = addr(1)
		}
	case "bltz":
		if int32(s.Regs.Get(reg(0))) < 0 {
			nextPC = addr(1)
		}
	case "bgez":
		if int32(s.Regs.Get(reg(0))) >= 0 {
			nextPC = addr(1)
		}

	case "j":
		nextPC = addr(0)
	case "jal":
		s.Regs.Set(regnames.RA, pc+4)
		nextPC = addr(0)

	case "syscall":
		result.Syscall = true
		result.SyscallNumber = s.Regs.Get(regnames.V0)

	default:
		return StepResult{}, ErrInvalidInstruction{PC: pc, Word: word}
	}

	s.Regs.SetPC(nextPC)
	result.PriorRegisters = prior
	result.MemoryUndo = s.Mem.Drain()
	return result, nil
}

func loadHalf(s *State, op isa.Operand) (uint16, error) {
	addr := s.Regs.Get(regnames.FromIndex(op.Reg)) + uint32(op.Imm)
	hi, err := s.Mem.GetByte(addr)
	if err != nil {
		return 0, err
	}
	lo, err := s.Mem.GetByte(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func storeHalf(s *State, op isa.Operand, value uint16) error {
	addr := s.Regs.Get(regnames.FromIndex(op.Reg)) + uint32(op.Imm)
	if err := s.Mem.SetByte(addr, byte(value>>8)); err != nil {
		return err
	}
	return s.Mem.SetByte(addr+1, byte(value))
}
