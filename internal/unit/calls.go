package unit

import (
	"context"
	"time"

	"mipsunit/internal/cpu"
	"mipsunit/internal/regnames"
)

// returnSentinel is an address no assembled program legitimately reaches,
// used by Call/CallSlice/CallWithConditions as the "function returned"
// breakpoint — grounded on the titan original's call_with_conditions,
// whose 0xEABADDEA literal serves the same purpose.
const returnSentinel = 0xEABADDEA

// LoadParams writes params into A0..A3 (and beyond, register-file
// permitting), the calling convention Call/CallSlice rely on.
func (d *Device) LoadParams(params []uint32) {
	_ = d.Executor.WithState(func(s *cpu.State) error {
		for i, v := range params {
			idx := int(regnames.A0) + i
			if idx >= int(regnames.PC) {
				return nil
			}
			s.Regs.Set(regnames.RegisterName(idx), v)
		}
		return nil
	})
}

// CallWithConditions jumps PC to label, loads params into A0.., sets RA to
// a sentinel return address, and runs until that sentinel is hit or any of
// the supplied conditions fires first. RA is restored to its prior value
// once the call returns.
func (d *Device) CallWithConditions(ctx context.Context, label string, params []uint32, conditions ...Condition) error {
	if err := d.JumpToLabel(label); err != nil {
		return err
	}

	lastRA := d.Get(regnames.RA)
	d.Set(regnames.RA, returnSentinel)
	d.LoadParams(params)

	all := append([]Condition{AtAddress(returnSentinel)}, conditions...)
	_, err := d.RunUntil(ctx, all...)

	d.Set(regnames.RA, lastRA)
	return err
}

// CallSlice is CallWithConditions with an optional timeout as its only
// extra condition.
func (d *Device) CallSlice(ctx context.Context, label string, params []uint32, timeout time.Duration) error {
	if timeout > 0 {
		return d.CallWithConditions(ctx, label, params, WithTimeout(timeout))
	}
	return d.CallWithConditions(ctx, label, params)
}

// Call is CallSlice taking params as variadic arguments instead of a slice,
// for the common small-arity case.
func (d *Device) Call(ctx context.Context, label string, timeout time.Duration, params ...uint32) error {
	return d.CallSlice(ctx, label, params, timeout)
}
