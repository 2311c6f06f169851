// Command mipsdump disassembles a raw or ELF MIPS32 big-endian binary,
// reusing internal/isa.Decode as the single source of truth for instruction
// shape instead of a second hand-rolled bit-level disassembler.
//
// Grounded on the teacher's cmd/mips_disassemble/main.go: the ELF-vs-raw
// detection, the forced big-endian assumption for raw files, and the
// addr/word/mnemonic print format all carry over.
package main

import (
	"debug/elf"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"mipsunit/internal/isa"
	"mipsunit/internal/regnames"
)

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Println("Usage: mipsdump <mips32_binary_file>")
		return
	}

	fileName := flag.Arg(0)
	file, err := os.Open(fileName)
	if err != nil {
		log.Fatalf("failed to open file: %v", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("failed to close file: %v", err)
		}
	}()

	if elfFile, err := elf.Open(fileName); err == nil {
		defer func() {
			if err := elfFile.Close(); err != nil {
				log.Printf("failed to close ELF file: %v", err)
			}
		}()
		dumpELF(elfFile)
		return
	}

	fmt.Println("not an ELF file, treating as raw big-endian binary")
	dumpRaw(file)
}

func dumpELF(elfFile *elf.File) {
	fmt.Printf("ELF file: %s, entry 0x%08X\n\n", elfFile.Machine, elfFile.Entry)

	section := elfFile.Section(".text")
	if section == nil {
		fmt.Println("no .text section found")
		return
	}

	data, err := section.Data()
	if err != nil {
		log.Fatalf("failed to read .text: %v", err)
	}

	dumpWords(data, uint32(section.Addr))
}

func dumpRaw(file *os.File) {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		log.Fatalf("failed to seek file: %v", err)
	}

	var offset uint32
	for {
		var word uint32
		if err := binary.Read(file, binary.BigEndian, &word); err != nil {
			break
		}
		printWord(offset, word)
		offset += 4
	}
}

func dumpWords(data []byte, base uint32) {
	for i := 0; i+4 <= len(data); i += 4 {
		word := binary.BigEndian.Uint32(data[i : i+4])
		printWord(base+uint32(i), word)
	}
}

func printWord(addr, word uint32) {
	decoded, ok := isa.Decode(addr, word)
	if !ok {
		fmt.Printf("0x%08X: 0x%08X\t???\n", addr, word)
		return
	}
	fmt.Printf("0x%08X: 0x%08X\t%s\n", addr, word, render(decoded))
}

func render(d isa.Decoded) string {
	out := d.Mnemonic
	for i, op := range d.Operands {
		if i > 0 {
			out += ","
		}
		out += " " + renderOperand(op)
	}
	return out
}

func renderOperand(op isa.Operand) string {
	switch op.Kind {
	case isa.KindGPR:
		return "$" + regnames.FromIndex(op.Reg).String()
	case isa.KindShamt5:
		return fmt.Sprintf("%d", op.Imm)
	case isa.KindImmS16, isa.KindImmU16:
		return fmt.Sprintf("%d", op.Imm)
	case isa.KindOffsetBase:
		return fmt.Sprintf("%d($%s)", op.Imm, regnames.FromIndex(op.Reg).String())
	case isa.KindTarget26, isa.KindBranchOff16, isa.KindLabel:
		return fmt.Sprintf("0x%08X", op.Address.Constant)
	default:
		return "?"
	}
}
