package unit

import (
	"mipsunit/internal/cpu"
	"mipsunit/internal/isa"
	"mipsunit/internal/memory"
	"mipsunit/internal/regnames"
)

// HasLabel reports whether the assembled program defines name.
func (d *Device) HasLabel(name string) bool {
	_, ok := d.Labels[name]
	return ok
}

// LabelFor returns a label name bound to address, if any — the inverse of
// the label table, useful for annotating a disassembly dump. When several
// labels share the address, which one is returned is not defined.
func (d *Device) LabelFor(address uint32) (string, bool) {
	for name, addr := range d.Labels {
		if addr == address {
			return name, true
		}
	}
	return "", false
}

// ArrivedAtLabel reports whether PC currently sits exactly at name.
func (d *Device) ArrivedAtLabel(name string) bool {
	addr, ok := d.Labels[name]
	if !ok {
		return false
	}
	return d.Get(regnames.PC) == addr
}

// InstructionAt decodes the word at address, or reports false if the word
// is unmapped or not recognized by the instruction table.
func (d *Device) InstructionAt(address uint32) (isa.Decoded, bool) {
	var decoded isa.Decoded
	var ok bool
	_ = d.Executor.WithMemory(func(m *memory.WatchedMemory) error {
		word, err := m.GetWord(address)
		if err != nil {
			return nil
		}
		decoded, ok = isa.Decode(address, word)
		return nil
	})
	return decoded, ok
}

// AddressesFor scans every mounted code region for instructions matching
// predicate, in ascending address order.
func (d *Device) AddressesFor(matching func(isa.Decoded) bool) []uint32 {
	var result []uint32
	for _, r := range d.codeRanges {
		for addr := r[0]; addr < r[1]; addr += 4 {
			decoded, ok := d.InstructionAt(addr)
			if ok && matching(decoded) {
				result = append(result, addr)
			}
		}
	}
	return result
}

// ConditionsForMatching is AddressesFor wrapped as AtAddress Conditions, for
// feeding directly into RunUntil/CallWithConditions.
func (d *Device) ConditionsForMatching(matching func(isa.Decoded) bool) []Condition {
	addrs := d.AddressesFor(matching)
	conditions := make([]Condition, len(addrs))
	for i, a := range addrs {
		conditions[i] = AtAddress(a)
	}
	return conditions
}

// JumpTo forces PC to pc without otherwise altering state.
func (d *Device) JumpTo(pc uint32) {
	d.Set(regnames.PC, pc)
}

// JumpToLabel is JumpTo resolved through the label table.
func (d *Device) JumpToLabel(name string) error {
	addr, ok := d.Labels[name]
	if !ok {
		return ErrMissingLabel{Name: name}
	}
	d.JumpTo(addr)
	return nil
}

// Snapshot copies out the entire CPU register file, for later Restore.
func (d *Device) Snapshot() regnames.Registers {
	return d.Registers()
}

// Restore overwrites the live register file with a previously captured
// Snapshot. Memory is not part of a snapshot — only registers, matching the
// titan original's restore(state) acting on the Executor's with_state
// section rather than a full memory clone.
func (d *Device) Restore(regs regnames.Registers) {
	_ = d.Executor.WithState(func(s *cpu.State) error {
		s.Regs = regs
		return nil
	})
}
