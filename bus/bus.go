// Package bus maps memory-mapped register accesses onto the peripheral
// devices. The address map is declared as a table of regions and validated
// once at construction; dispatch is by lookup.
package bus

import (
	"fmt"
	"log"
	"sort"

	"github.com/sarchlab/centsim/cpu"
	"github.com/sarchlab/centsim/sim"
)

// A Device responds to 8-bit register reads and writes inside its address
// region.
type Device interface {
	sim.Named

	Read8(addr uint16) uint8
	Write8(addr uint16, v uint8)
}

// A Region is an inclusive address range claimed by one device.
type Region struct {
	Start, End uint16
	Dev        Device
}

// HookPosRegRead is triggered after a register read is dispatched.
var HookPosRegRead = &sim.HookPos{Name: "RegRead"}

// HookPosRegWrite is triggered after a register write is dispatched.
var HookPosRegWrite = &sim.HookPos{Name: "RegWrite"}

// Access describes one register access for hooks. Unknown is set when no
// region claimed the address.
type Access struct {
	PC      uint16
	Addr    uint16
	Value   uint8
	Device  string
	Unknown bool
}

// Bus dispatches register accesses issued by the instruction core to the
// device that claims the address.
type Bus struct {
	sim.HookableBase

	Log *log.Logger

	pc      cpu.ProgramCounter
	regions []Region
}

// New builds a bus from the given regions. It returns an error if a region
// is empty or if two regions overlap.
func New(pc cpu.ProgramCounter, regions ...Region) (*Bus, error) {
	b := new(Bus)
	b.pc = pc
	b.regions = make([]Region, len(regions))
	copy(b.regions, regions)

	sort.Slice(b.regions, func(i, j int) bool {
		return b.regions[i].Start < b.regions[j].Start
	})

	for i, r := range b.regions {
		if r.End < r.Start {
			return nil, fmt.Errorf(
				"region %s is empty: [%04X, %04X]",
				r.Dev.Name(), r.Start, r.End)
		}

		if i > 0 && r.Start <= b.regions[i-1].End {
			return nil, fmt.Errorf(
				"region %s [%04X, %04X] overlaps %s [%04X, %04X]",
				r.Dev.Name(), r.Start, r.End,
				b.regions[i-1].Dev.Name(),
				b.regions[i-1].Start, b.regions[i-1].End)
		}
	}

	return b, nil
}

func (b *Bus) find(addr uint16) Device {
	n := sort.Search(len(b.regions), func(i int) bool {
		return b.regions[i].End >= addr
	})

	if n == len(b.regions) || b.regions[n].Start > addr {
		return nil
	}

	return b.regions[n].Dev
}

// Read8 dispatches a register read. Reads from addresses no device claims
// return 0xFF.
func (b *Bus) Read8(addr uint16) uint8 {
	access := Access{PC: b.pc.PC(), Addr: addr}

	dev := b.find(addr)
	if dev == nil {
		if b.Log != nil {
			b.Log.Printf("%04X: unknown I/O read %04X", access.PC, addr)
		}
		access.Value = 0xFF
		access.Unknown = true
	} else {
		access.Value = dev.Read8(addr)
		access.Device = dev.Name()
	}

	b.InvokeHook(sim.HookCtx{
		Domain: b,
		Pos:    HookPosRegRead,
		Item:   access,
	})

	return access.Value
}

// Write8 dispatches a register write. Writes to addresses no device claims
// are dropped.
func (b *Bus) Write8(addr uint16, v uint8) {
	access := Access{PC: b.pc.PC(), Addr: addr, Value: v}

	dev := b.find(addr)
	if dev == nil {
		if b.Log != nil {
			b.Log.Printf(
				"%04X: unknown I/O write %04X with %02X", access.PC, addr, v)
		}
		access.Unknown = true
	} else {
		dev.Write8(addr, v)
		access.Device = dev.Name()
	}

	b.InvokeHook(sim.HookCtx{
		Domain: b,
		Pos:    HookPosRegWrite,
		Item:   access,
	})
}
