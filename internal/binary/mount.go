package binary

import "mipsunit/internal/memory"

// MMIO layout constants, matching the conventional MIPS teaching-emulator
// memory map (console display and keyboard), supplemented from the titan
// original's mount_display/mount_keyboard (device.rs) which the distilled
// specification's data model omitted.
const (
	DisplayBase = 0x10008000
	DisplaySize = 0x8000

	KeyboardBase = 0xFFFF0000
	KeyboardSize = 0x100

	HeapEnd  = 0x7FFFFFFC
	HeapSize = 0x100000
)

// Regions converts the assembled segments into mountable memory regions, in
// SegmentOrder, skipping any segment that never received a byte.
func (bin *Binary) Regions() []memory.Region {
	regions := make([]memory.Region, 0, len(SegmentOrder))
	for _, m := range SegmentOrder {
		seg := bin.Segments[m]
		if len(seg.Bytes) == 0 {
			continue
		}
		regions = append(regions, memory.Region{Start: seg.Base, Data: append([]byte(nil), seg.Bytes...)})
	}
	return regions
}

// DisplayRegion is the blank, writable region backing the console display
// device.
func DisplayRegion() memory.Region {
	return memory.Region{Start: DisplayBase, Data: make([]byte, DisplaySize)}
}

// KeyboardRegion is the blank, writable region backing the keyboard device's
// status/data MMIO.
func KeyboardRegion() memory.Region {
	return memory.Region{Start: KeyboardBase, Data: make([]byte, KeyboardSize)}
}

// HeapRegion is the blank region the stack pointer is seeded to the top of.
func HeapRegion() memory.Region {
	return memory.Region{Start: HeapEnd - HeapSize + 1, Data: make([]byte, HeapSize)}
}
