package exec_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mipsunit/internal/cpu"
	"mipsunit/internal/exec"
	"mipsunit/internal/isa"
	"mipsunit/internal/memory"
	"mipsunit/internal/regnames"
)

func encode(t *testing.T, mnemonic string, pc uint32, ops ...isa.Operand) uint32 {
	t.Helper()
	entry := isa.Table()[mnemonic]
	words, _, err := entry.Encode(pc, ops)
	require.NoError(t, err)
	require.Len(t, words, 1)
	return words[0]
}

func newExecutor(t *testing.T, words ...uint32) *exec.Executor {
	t.Helper()
	bytes := make([]byte, len(words)*4+64)
	for i, w := range words {
		bytes[i*4] = byte(w >> 24)
		bytes[i*4+1] = byte(w >> 16)
		bytes[i*4+2] = byte(w >> 8)
		bytes[i*4+3] = byte(w)
	}
	mem := memory.New()
	require.NoError(t, mem.Mount(memory.Region{Start: 0, Data: bytes}))
	state := cpu.NewState(memory.NewWatched(mem))
	return exec.New(state, 0)
}

func noopSyscallHandler(*cpu.State, uint32) (bool, error) { return false, nil }

func TestRunLimitedStepBudget(t *testing.T) {
	addi := encode(t, "addi", 0,
		isa.Operand{Kind: isa.KindGPR, Reg: 8},
		isa.Operand{Kind: isa.KindGPR, Reg: 8},
		isa.Operand{Kind: isa.KindImmS16, Imm: 1},
	)
	e := newExecutor(t, addi, addi, addi, addi)

	result, err := e.RunLimited(context.Background(), 2, true, noopSyscallHandler)
	require.NoError(t, err)
	require.Equal(t, exec.StopSteps, result.Reason)
	require.Equal(t, 2, result.StepsExecuted)
}

func TestRunStopsAtBreakpoint(t *testing.T) {
	nop := encode(t, "nop", 0)
	e := newExecutor(t, nop, nop, nop, nop)
	e.SetBreakpoints([]uint32{8})

	result, err := e.Run(context.Background(), noopSyscallHandler)
	require.NoError(t, err)
	require.Equal(t, exec.StopBreakpoint, result.Reason)
	require.Equal(t, 2, result.StepsExecuted)
}

func TestBackstepRestoresRegistersAndMemory(t *testing.T) {
	sw := encode(t, "sw", 0,
		isa.Operand{Kind: isa.KindGPR, Reg: 8},
		isa.Operand{Kind: isa.KindOffsetBase, Reg: 9, Imm: 8},
	)
	e := newExecutor(t, sw)
	require.NoError(t, e.WithState(func(s *cpu.State) error {
		s.Regs.Set(regnames.T0, 0xABCDEF01)
		return nil
	}))

	_, err := e.RunLimited(context.Background(), 1, true, noopSyscallHandler)
	require.NoError(t, err)

	var written uint32
	require.NoError(t, e.WithMemory(func(m *memory.WatchedMemory) error {
		var err error
		written, err = m.GetWord(8)
		return err
	}))
	require.Equal(t, uint32(0xABCDEF01), written)

	require.NoError(t, e.Backstep())

	var restored uint32
	require.NoError(t, e.WithMemory(func(m *memory.WatchedMemory) error {
		var err error
		restored, err = m.GetWord(8)
		return err
	}))
	require.Equal(t, uint32(0), restored)

	frame := e.Snapshot()
	require.Equal(t, uint32(0), frame.Registers.PC())
}

func TestBackstepWithNoHistoryErrors(t *testing.T) {
	e := newExecutor(t, encode(t, "nop", 0))
	err := e.Backstep()
	require.Error(t, err)
	require.IsType(t, exec.ErrNoHistory{}, err)
}

func TestSyscallHaltStopsRun(t *testing.T) {
	syscall := encode(t, "syscall", 0)
	e := newExecutor(t, syscall)

	halting := func(*cpu.State, uint32) (bool, error) { return true, nil }
	result, err := e.Run(context.Background(), halting)
	require.NoError(t, err)
	require.Equal(t, exec.StopComplete, result.Reason)
}

func TestTimeoutStopsRun(t *testing.T) {
	branchToSelf := encode(t, "beq", 0,
		isa.Operand{Kind: isa.KindGPR, Reg: 0},
		isa.Operand{Kind: isa.KindGPR, Reg: 0},
		isa.Operand{Kind: isa.KindBranchOff16, Address: isa.AddressLabel{Constant: 0}},
	)
	e := newExecutor(t, branchToSelf)

	ctx, cancel := exec.WithTimeout(context.Background(), e, 20*time.Millisecond)
	defer cancel()

	result, err := e.Run(ctx, noopSyscallHandler)
	require.NoError(t, err)
	require.Equal(t, exec.StopTimeout, result.Reason)
}

func TestPauseStopsRun(t *testing.T) {
	nop := encode(t, "nop", 0)
	e := newExecutor(t, nop, nop, nop)
	e.Pause()

	result, err := e.Run(context.Background(), noopSyscallHandler)
	require.NoError(t, err)
	require.Equal(t, exec.StopPaused, result.Reason)
	require.Equal(t, 0, result.StepsExecuted)
}
