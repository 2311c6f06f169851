// Package unit loads one already-assembled program into a runnable Device:
// the memory layout (program segments plus display, keyboard and heap
// MMIO), the syscall table, and the composed stop conditions a caller drives
// a run with. It is the run-time API the cmd/mipsunit binary and the
// integration tests talk to; building the binary.Binary it loads is left to
// internal/asm or internal/binary.
//
// Grounded on the titan original's UnitDevice (device.rs): MakeUnitDeviceError
// carries over as ErrMountConflict, and the display/keyboard mounts carry
// over as the Config.WithDisplay/WithKeyboard flags. There is no
// mount_data/mount_constant/mount builder surface; arbitrary extra regions
// cannot be mounted through Device.
package unit

import (
	"bytes"
	"fmt"

	"mipsunit/internal/binary"
	"mipsunit/internal/cpu"
	"mipsunit/internal/exec"
	"mipsunit/internal/memory"
	"mipsunit/internal/regnames"
)

// Device is one assembled program mounted into memory with a live CPU and
// executor, ready to run.
type Device struct {
	Executor *exec.Executor
	Labels   map[string]uint32
	Entry    uint32

	// Console accumulates everything print_* syscalls write, so tests (and
	// a CLI frontend) can read program output without a real terminal.
	Console *bytes.Buffer
	// Input feeds the read_int/read_char syscalls, front of queue
	// first. A starved read returns the zero value rather than blocking.
	Input []int32

	syscalls     map[uint32]SyscallFunc
	anySyscall   func(state *cpu.State, number uint32) (bool, error)
	displayBase  uint32
	keyboardBase uint32
	heapBase     uint32
	heapPtr      uint32
	heapTop      uint32
	codeRanges   [][2]uint32
}

// ErrMountConflict reports a program whose assembled segments or directives
// collide with the reserved MMIO/heap layout — the Go analogue of the
// titan original's MakeUnitDeviceError.
type ErrMountConflict struct{ Err error }

func (e ErrMountConflict) Error() string { return fmt.Sprintf("could not mount program: %v", e.Err) }
func (e ErrMountConflict) Unwrap() error { return e.Err }

// Config adjusts Device construction away from its defaults.
type Config struct {
	HistoryCapacity int
	WithDisplay     bool
	WithKeyboard    bool
}

// New assembles nothing itself — it mounts an already-built binary.Binary
// (the asm package's output) into a fresh Device.
func New(bin *binary.Binary, cfg Config) (*Device, error) {
	mem := memory.New()
	for _, r := range bin.Regions() {
		if err := mem.Mount(r); err != nil {
			return nil, ErrMountConflict{Err: err}
		}
	}

	heap := binary.HeapRegion()
	if err := mem.Mount(heap); err != nil {
		return nil, ErrMountConflict{Err: err}
	}

	d := &Device{
		Labels:   bin.Labels,
		Entry:    bin.EntryPoint,
		Console:  &bytes.Buffer{},
		syscalls: defaultSyscalls(),
		heapBase: heap.Start,
		heapPtr:  heap.Start,
		heapTop:  heap.Start + uint32(len(heap.Data)),
	}
	for _, mode := range []binary.Mode{binary.ModeText, binary.ModeKText} {
		seg := bin.Segments[mode]
		if len(seg.Bytes) > 0 {
			d.codeRanges = append(d.codeRanges, [2]uint32{seg.Base, seg.End()})
		}
	}

	if cfg.WithDisplay {
		if err := mem.Mount(binary.DisplayRegion()); err != nil {
			return nil, ErrMountConflict{Err: err}
		}
		d.displayBase = binary.DisplayBase
	}
	if cfg.WithKeyboard {
		if err := mem.Mount(binary.KeyboardRegion()); err != nil {
			return nil, ErrMountConflict{Err: err}
		}
		d.keyboardBase = binary.KeyboardBase
	}

	state := cpu.NewState(memory.NewWatched(mem))
	state.Regs.SetPC(bin.EntryPoint)
	state.Regs.Set(regnames.SP, heap.Start+uint32(len(heap.Data)))

	d.Executor = exec.New(state, cfg.HistoryCapacity)
	return d, nil
}

// Get reads a register's current value.
func (d *Device) Get(name regnames.RegisterName) uint32 {
	var v uint32
	_ = d.Executor.WithState(func(s *cpu.State) error {
		v = s.Regs.Get(name)
		return nil
	})
	return v
}

// Set writes a register's value.
func (d *Device) Set(name regnames.RegisterName, value uint32) {
	_ = d.Executor.WithState(func(s *cpu.State) error {
		s.Regs.Set(name, value)
		return nil
	})
}

// Registers copies out the whole register file at once.
func (d *Device) Registers() regnames.Registers {
	var regs regnames.Registers
	_ = d.Executor.WithState(func(s *cpu.State) error {
		regs = s.Regs
		return nil
	})
	return regs
}

// GetData reads count bytes starting at addr.
func (d *Device) GetData(addr uint32, count int) ([]byte, error) {
	out := make([]byte, count)
	err := d.Executor.WithMemory(func(m *memory.WatchedMemory) error {
		for i := 0; i < count; i++ {
			b, err := m.GetByte(addr + uint32(i))
			if err != nil {
				return err
			}
			out[i] = b
		}
		return nil
	})
	return out, err
}

// SetData writes data starting at addr — used by cmd/mipsunit to forward
// live keystrokes into the keyboard MMIO window between steps.
func (d *Device) SetData(addr uint32, data []byte) error {
	return d.Executor.WithMemory(func(m *memory.WatchedMemory) error {
		for i, b := range data {
			if err := m.SetByte(addr+uint32(i), b); err != nil {
				return err
			}
		}
		return nil
	})
}

// KeyboardBase reports the keyboard MMIO window's base address, or false if
// it wasn't mounted on this Device.
func (d *Device) KeyboardBase() (uint32, bool) {
	return d.keyboardBase, d.keyboardBase != 0
}

// DisplayData returns the full contents of the mounted display region, or
// an error if one wasn't mounted. Supplements the host specification's data
// model with the titan original's get_display_data.
func (d *Device) DisplayData() ([]byte, error) {
	if d.displayBase == 0 {
		return nil, fmt.Errorf("no display region mounted")
	}
	return d.GetData(d.displayBase, binary.DisplaySize)
}

// DisplayRect reads a width x height block of 32-bit pixels out of the
// mounted display region, starting at (x, y) within a framebuffer whose
// rows are lineByteLength bytes wide. Lets a caller sample a partial
// framebuffer instead of the whole region.
func (d *Device) DisplayRect(lineByteLength, x, y, width, height uint32) ([]uint32, error) {
	if d.displayBase == 0 {
		return nil, fmt.Errorf("no display region mounted")
	}

	result := make([]uint32, 0, width*height)
	err := d.Executor.WithMemory(func(m *memory.WatchedMemory) error {
		for v := y; v < y+height; v++ {
			for h := x; h < x+width; h++ {
				point := d.displayBase + lineByteLength*v + h*4
				word, err := m.GetWord(point)
				if err != nil {
					return err
				}
				result = append(result, word)
			}
		}
		return nil
	})
	return result, err
}
