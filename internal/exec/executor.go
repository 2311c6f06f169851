package exec

import (
	"context"
	"sync"
	"sync/atomic"

	"mipsunit/internal/cpu"
	"mipsunit/internal/memory"
	"mipsunit/internal/regnames"
)

// SyscallHandler is invoked synchronously, inline with the run loop, when
// the stepped instruction was a syscall. It reports whether the program
// should halt (an exit-style syscall) alongside any dispatch error (an
// unrecognized syscall number).
type SyscallHandler func(state *cpu.State, number uint32) (halt bool, err error)

// StopReason is why a Run/RunLimited call returned control to its caller.
type StopReason int

const (
	StopSteps StopReason = iota
	StopBreakpoint
	StopPaused
	StopTimeout
	StopComplete
	StopError
)

func (r StopReason) String() string {
	switch r {
	case StopSteps:
		return "steps"
	case StopBreakpoint:
		return "breakpoint"
	case StopPaused:
		return "paused"
	case StopTimeout:
		return "timeout"
	case StopComplete:
		return "complete"
	case StopError:
		return "error"
	default:
		return "unknown"
	}
}

// RunResult summarizes how a run ended.
type RunResult struct {
	Reason        StopReason
	StepsExecuted int
}

// DebugFrame is a point-in-time copy of the executor's visible state, safe
// to hold onto after the exclusive section that produced it has ended.
type DebugFrame struct {
	Registers regnames.Registers
	StepCount uint64
	Paused    bool
}

// Executor is the sole owner of a cpu.State for the run's lifetime. Every
// access goes through its exclusive section (mu) or one of the atomics
// (paused, breakpoints) so a debugger goroutine can inspect or interrupt a
// run without racing the stepping goroutine.
type Executor struct {
	mu      sync.Mutex
	state   *cpu.State
	tracker *HistoryTracker
	step    uint64

	paused      atomic.Bool
	breakpoints atomic.Pointer[map[uint32]struct{}]

	lastErrorAcked atomic.Bool
}

// New creates an Executor over state, with a history tracker sized to
// historyCapacity (DefaultHistoryCapacity if <= 0).
func New(state *cpu.State, historyCapacity int) *Executor {
	e := &Executor{
		state:   state,
		tracker: NewHistoryTracker(historyCapacity),
	}
	empty := map[uint32]struct{}{}
	e.breakpoints.Store(&empty)
	return e
}

// WithState runs fn with exclusive access to the CPU state.
func (e *Executor) WithState(fn func(*cpu.State) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.state)
}

// WithMemory runs fn with exclusive access to the CPU's memory.
func (e *Executor) WithMemory(fn func(*memory.WatchedMemory) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.state.Mem)
}

// WithTracker runs fn with exclusive access to the undo history.
func (e *Executor) WithTracker(fn func(*HistoryTracker) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.tracker)
}

// Snapshot copies the executor's current visible state.
func (e *Executor) Snapshot() DebugFrame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return DebugFrame{
		Registers: e.state.Regs,
		StepCount: e.step,
		Paused:    e.paused.Load(),
	}
}

// SetBreakpoints atomically replaces the active breakpoint set.
func (e *Executor) SetBreakpoints(addrs []uint32) {
	m := make(map[uint32]struct{}, len(addrs))
	for _, a := range addrs {
		m[a] = struct{}{}
	}
	e.breakpoints.Store(&m)
}

func (e *Executor) isBreakpoint(pc uint32) bool {
	m := e.breakpoints.Load()
	if m == nil {
		return false
	}
	_, ok := (*m)[pc]
	return ok
}

// Pause requests the next running step loop stop as soon as it next checks,
// callable from any goroutine without holding the state lock.
func (e *Executor) Pause() { e.paused.Store(true) }

// Resume clears a pending pause so the next Run/RunLimited call proceeds.
func (e *Executor) Resume() { e.paused.Store(false) }

// InvalidHandled reports whether the last StopError was acknowledged by the
// caller via AcknowledgeError. The flag is informational: RunLimited clears
// it when it starts and does not consult it, so a run after an error
// proceeds whether or not the error was acknowledged.
func (e *Executor) InvalidHandled() bool { return e.lastErrorAcked.Load() }

// AcknowledgeError marks the last error as handled.
func (e *Executor) AcknowledgeError() { e.lastErrorAcked.Store(true) }

// Run executes until a breakpoint, pause, context cancellation, syscall
// halt, or error — no step budget.
func (e *Executor) Run(ctx context.Context, handler SyscallHandler) (RunResult, error) {
	return e.RunLimited(ctx, -1, true, handler)
}

// RunLimited executes at most n instructions (n < 0 means unbounded). When
// countSyscalls is false, a syscall-dispatching step doesn't consume the
// budget — the Go equivalent of the titan original's
// run_limited::<COUNT_SYSCALLS> const generic parameter.
func (e *Executor) RunLimited(ctx context.Context, n int, countSyscalls bool, handler SyscallHandler) (RunResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lastErrorAcked.Store(false)
	executed := 0

	for n < 0 || executed < n {
		if e.paused.Load() {
			return RunResult{Reason: StopPaused, StepsExecuted: executed}, nil
		}
		select {
		case <-ctx.Done():
			return RunResult{Reason: StopTimeout, StepsExecuted: executed}, nil
		default:
		}
		// executed > 0 guards against re-triggering the breakpoint a caller
		// just resumed from.
		if e.isBreakpoint(e.state.Regs.PC()) && executed > 0 {
			return RunResult{Reason: StopBreakpoint, StepsExecuted: executed}, nil
		}

		result, err := e.state.Step()
		if err != nil {
			return RunResult{Reason: StopError, StepsExecuted: executed}, err
		}
		e.step++
		e.tracker.Push(UndoEntry{PriorRegisters: result.PriorRegisters, MemoryUndo: result.MemoryUndo})

		if result.Syscall {
			halt, err := handler(e.state, result.SyscallNumber)
			if err != nil {
				return RunResult{Reason: StopError, StepsExecuted: executed}, err
			}
			if halt {
				return RunResult{Reason: StopComplete, StepsExecuted: executed + 1}, nil
			}
			if !countSyscalls {
				continue
			}
		}

		executed++
	}
	return RunResult{Reason: StopSteps, StepsExecuted: executed}, nil
}

// Backstep reverses the most recently executed instruction: registers
// revert to their prior snapshot and every byte the instruction wrote is
// restored directly against backing memory (bypassing WatchedMemory so the
// restore itself isn't recorded as new undo history).
func (e *Executor) Backstep() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.tracker.Pop()
	if !ok {
		return ErrNoHistory{}
	}

	backing := e.state.Mem.Backing()
	for i := len(entry.MemoryUndo) - 1; i >= 0; i-- {
		u := entry.MemoryUndo[i]
		if err := backing.SetByte(u.Address, u.Prior); err != nil {
			return ErrBadRestore{Address: u.Address}
		}
	}

	e.state.Regs = entry.PriorRegisters
	if e.step > 0 {
		e.step--
	}
	return nil
}
