// Package hawk emulates the CDC 9427H Hawk moving-head disk drive and its
// controller. The controller is a memory-mapped register block driven by the
// instruction core; bulk data moves through the external DMA engine one byte
// at a time.
package hawk

import (
	"io"
	"log"

	"github.com/sarchlab/centsim/cpu"
	"github.com/sarchlab/centsim/dma"
	"github.com/sarchlab/centsim/sim"
)

// Register addresses of the controller. The block sits at the historical
// 0xF140 location.
const (
	AddrBase  = 0xF140
	AddrLimit = 0xF14F

	AddrUnitSelect = 0xF140
	AddrCylHigh    = 0xF141
	AddrCHSLow     = 0xF142
	AddrStatusHigh = 0xF144 // write clears data_error
	AddrStatusLow  = 0xF145 // write clears data_error
	AddrCommand    = 0xF148 // read returns the busy bit
)

// Command codes.
const (
	CmdRead    = 0
	CmdWrite   = 1
	CmdSeek    = 2
	CmdRestore = 3
)

// A Store is the flat byte-addressable disk image backing one unit.
type Store interface {
	io.ReadWriteSeeker
}

// A Unit is one drive spindle attached to the controller. A unit without a
// store is tolerated and reports not ready.
type Unit struct {
	store Store

	cylHigh uint8
	chsLow  uint8

	busy      bool
	onTrack   bool
	seekError bool
	dataError bool
	ready     bool
}

// Status assembles the status word of the unit.
func (u *Unit) Status() Status {
	return Status{
		Ready:     u.ready,
		OnTrack:   u.onTrack,
		Busy:      u.busy,
		DataError: u.dataError,
		SeekError: u.seekError,
	}
}

// Comp is the Hawk controller. It implements bus.Device for register access
// and dma.Device for the byte transfer primitives.
type Comp struct {
	sim.HookableBase

	// Log receives diagnostics: unknown registers, unknown commands, I/O
	// failures. Trace, when set, additionally receives one line per
	// interesting access.
	Log   *log.Logger
	Trace *log.Logger

	name string
	pc   cpu.ProgramCounter
	dma  dma.Requester

	units []*Unit

	// detached stands in for the selected unit when the select register
	// holds an out-of-range value, so commands still have a status word to
	// mutate without touching a real unit.
	detached *Unit

	sel      uint8
	lastRead uint8
}

// Name returns the name of the controller.
func (c *Comp) Name() string {
	return c.name
}

// Unit returns the unit with the given number, or nil if out of range.
func (c *Comp) Unit(n int) *Unit {
	if n < 0 || n >= len(c.units) {
		return nil
	}
	return c.units[n]
}

// SelectedUnit returns the raw value of the unit-select register.
func (c *Comp) SelectedUnit() uint8 {
	return c.sel
}

func (c *Comp) selected() *Unit {
	if int(c.sel) < len(c.units) {
		return c.units[c.sel]
	}
	return c.detached
}

// Write8 handles a register write.
func (c *Comp) Write8(addr uint16, v uint8) {
	switch addr {
	case AddrUnitSelect:
		c.sel = v
		u := c.selected()
		u.ready = u.store != nil
		c.tracef("selected hawk unit %d", v)
	case AddrCylHigh:
		c.selected().cylHigh = v
	case AddrCHSLow:
		c.selected().chsLow = v
	case AddrStatusHigh, AddrStatusLow:
		// Done early in boot, apparently to clear a stale error.
		c.selected().dataError = false
	case AddrCommand:
		c.command(v)
	default:
		c.Log.Printf("%04X: unknown hawk I/O write %04X with %02X",
			c.pc.PC(), addr, v)
	}
}

// Read8 handles a register read. Unknown registers read as 0xFF.
func (c *Comp) Read8(addr uint16) uint8 {
	switch addr {
	case AddrStatusHigh:
		s := uint8(c.selected().Status().Pack() >> 8)
		c.tracef("%04X: hawk status read high | %02x__", c.pc.PC(), s)
		return s
	case AddrStatusLow:
		s := uint8(c.selected().Status().Pack())
		c.tracef("%04X: hawk status read low  | __%02x", c.pc.PC(), s)
		return s
	case AddrCommand:
		if c.selected().busy {
			return 1
		}
		return 0
	default:
		c.Log.Printf("%04X: unknown hawk I/O read %04X", c.pc.PC(), addr)
		return 0xFF
	}
}

// command dispatches a command-register write. Executing any command clears
// both sticky error flags before the command-specific effect.
func (c *Comp) command(cmd uint8) {
	u := c.selected()

	c.tracef("%04X hawk unit %02X command %02X", c.pc.PC(), c.sel, cmd)

	u.dataError = false
	u.seekError = false

	switch cmd {
	case CmdRead:
		u.busy = true
		c.dma.SetTransfer(dma.DirRead)
	case CmdWrite:
		u.busy = true
		c.dma.SetTransfer(dma.DirWrite)
	case CmdSeek:
		u.busy = false
		c.position(u)
	case CmdRestore:
		// Recalibrate slams the heads against the stop, then seeks back to
		// the addressed track. Modeled as the seek alone.
		u.busy = false
		c.position(u)
	default:
		c.Log.Printf("%04X: unknown hawk command %02X", c.pc.PC(), cmd)
		u.busy = false
	}
}

func (c *Comp) position(u *Unit) {
	chs := DecodeCHS(u.cylHigh, u.chsLow)

	u.onTrack = false

	if u.store == nil {
		u.seekError = true
		return
	}

	if _, err := u.store.Seek(chs.Offset(), io.SeekStart); err != nil {
		c.Log.Printf("hawk position failed (%d,%d,%d) = %x",
			chs.Cylinder, chs.Head, chs.Sector, chs.Offset())
		u.seekError = true
		return
	}

	u.onTrack = true
}

// ReadNext returns the next byte at the current position. On failure it sets
// data_error and replays the last successfully read byte rather than
// synthesizing data.
func (c *Comp) ReadNext() uint8 {
	u := c.selected()

	if u.store == nil {
		u.dataError = true
		return c.lastRead
	}

	var b [1]byte
	if _, err := io.ReadFull(u.store, b[:]); err != nil {
		c.Log.Printf("hawk I/O error: %v", err)
		u.dataError = true
		return c.lastRead
	}

	c.lastRead = b[0]
	return b[0]
}

// WriteNext writes one byte at the current position. On failure it sets
// data_error and the byte is dropped. There is no retry.
func (c *Comp) WriteNext(v uint8) {
	u := c.selected()

	if u.store == nil {
		u.dataError = true
		return
	}

	if _, err := u.store.Write([]byte{v}); err != nil {
		c.Log.Printf("hawk I/O error: %v", err)
		u.dataError = true
	}
}

// TransferDone is invoked by the external DMA engine when the programmed
// transfer completes. A transfer is only valid if the preceding seek
// actually landed.
func (c *Comp) TransferDone() {
	u := c.selected()

	c.dma.SetTransfer(dma.DirNone)
	u.busy = false
	u.dataError = !u.onTrack
}

func (c *Comp) tracef(format string, args ...interface{}) {
	if c.Trace != nil {
		c.Trace.Printf(format, args...)
	}
}

// nopRequester lets the controller run without a DMA engine attached; read
// and write commands then stay busy until something calls TransferDone.
type nopRequester struct{}

func (nopRequester) SetTransfer(dma.Direction) {}
