package cpu

import (
	"mipsunit/internal/memory"
	"mipsunit/internal/regnames"
)

// State is one CPU's full mutable state: its register file and the memory
// it executes against. Callers outside internal/exec should never hold a
// *State directly across goroutine boundaries — exec.Executor is the only
// thing that owns one for the lifetime of a run.
type State struct {
	Regs regnames.Registers
	Mem  *memory.WatchedMemory
}

// NewState starts a CPU with a zeroed register file over mem.
func NewState(mem *memory.WatchedMemory) *State {
	return &State{Mem: mem}
}

// StepResult is everything a single Step produced beyond the mutated state
// itself: enough for a history tracker to build an undo entry, and enough
// for a caller to notice and dispatch a syscall.
type StepResult struct {
	PriorRegisters regnames.Registers
	MemoryUndo     []memory.ByteUndo
	Syscall        bool
	SyscallNumber  uint32
}
