package unit

import (
	"fmt"

	"mipsunit/internal/cpu"
	"mipsunit/internal/memory"
	"mipsunit/internal/regnames"
)

// SyscallFunc handles one syscall number: it reads its arguments from
// $a0-$a3, may write a result to $v0/$v1, and reports whether the program
// should halt. Supplements the host specification's syscall model (which
// only specified the V0-selected dispatch shape) with the titan original's
// concrete handle_syscall table.
type SyscallFunc func(d *Device, state *cpu.State) (halt bool, err error)

// ErrUnknownSyscall reports a syscall number with neither a specific nor a
// catch-all handler registered.
type ErrUnknownSyscall struct{ Number uint32 }

func (e ErrUnknownSyscall) Error() string { return fmt.Sprintf("unknown syscall number %d", e.Number) }

// HandleSyscall installs (or overrides) the handler for one syscall number.
func (d *Device) HandleSyscall(number uint32, fn SyscallFunc) {
	d.syscalls[number] = fn
}

// HandleAnySyscall installs a catch-all handler consulted when no specific
// number has a registered handler.
func (d *Device) HandleAnySyscall(fn func(state *cpu.State, number uint32) (bool, error)) {
	d.anySyscall = fn
}

// dispatch is handed to exec.Executor as its SyscallHandler.
func (d *Device) dispatch(state *cpu.State, number uint32) (bool, error) {
	if fn, ok := d.syscalls[number]; ok {
		return fn(d, state)
	}
	if d.anySyscall != nil {
		return d.anySyscall(state, number)
	}
	return false, ErrUnknownSyscall{Number: number}
}

// Conventional SPIM/MARS syscall numbers the default table recognizes.
const (
	SyscallPrintInt    = 1
	SyscallPrintString = 4
	SyscallReadInt     = 5
	SyscallSbrk        = 9
	SyscallExit        = 10
	SyscallPrintChar   = 11
	SyscallReadChar    = 12
	SyscallExit2       = 17
)

func defaultSyscalls() map[uint32]SyscallFunc {
	return map[uint32]SyscallFunc{
		SyscallPrintInt: func(d *Device, s *cpu.State) (bool, error) {
			fmt.Fprintf(d.Console, "%d", int32(s.Regs.Get(regnames.A0)))
			return false, nil
		},
		SyscallPrintString: func(d *Device, s *cpu.State) (bool, error) {
			str, err := d.readCString(s.Regs.Get(regnames.A0))
			if err != nil {
				return false, err
			}
			d.Console.WriteString(str)
			return false, nil
		},
		SyscallReadInt: func(d *Device, s *cpu.State) (bool, error) {
			s.Regs.Set(regnames.V0, uint32(d.popInput()))
			return false, nil
		},
		SyscallSbrk: func(d *Device, s *cpu.State) (bool, error) {
			n := s.Regs.Get(regnames.A0)
			if d.heapPtr+n > d.heapTop {
				return false, fmt.Errorf("sbrk(%d) exceeds heap region", n)
			}
			addr := d.heapPtr
			d.heapPtr += n
			s.Regs.Set(regnames.V0, addr)
			return false, nil
		},
		SyscallExit: func(d *Device, s *cpu.State) (bool, error) {
			return true, nil
		},
		SyscallPrintChar: func(d *Device, s *cpu.State) (bool, error) {
			d.Console.WriteByte(byte(s.Regs.Get(regnames.A0)))
			return false, nil
		},
		SyscallReadChar: func(d *Device, s *cpu.State) (bool, error) {
			s.Regs.Set(regnames.V0, uint32(d.popInput()))
			return false, nil
		},
		SyscallExit2: func(d *Device, s *cpu.State) (bool, error) {
			return true, nil
		},
	}
}

func (d *Device) popInput() int32 {
	if len(d.Input) == 0 {
		return 0
	}
	v := d.Input[0]
	d.Input = d.Input[1:]
	return v
}

func (d *Device) readCString(addr uint32) (string, error) {
	var buf []byte
	err := d.Executor.WithMemory(func(m *memory.WatchedMemory) error {
		for {
			b, err := m.GetByte(addr)
			if err != nil {
				return err
			}
			if b == 0 {
				return nil
			}
			buf = append(buf, b)
			addr++
		}
	})
	return string(buf), err
}
