// Package mux emulates the multi-port serial line card. Each card carries
// four UART channels plus a block of card-wide control registers; a shared
// cause register arbitrates interrupts across all channels.
package mux

import (
	"fmt"
	"io"
	"log"

	"github.com/sarchlab/centsim/cpu"
	"github.com/sarchlab/centsim/sim"
)

// The card register block sits at the historical 0xF200 location. All cards
// chain onto the one interrupt-cause register.
const (
	AddrBase  = 0xF200
	AddrCause = 0xF20F
)

// Interrupt cause encoding: unit<<1 | direction, TX in the low bit. Idle is
// the sentinel for "no pending source" and reads back as 0xFF.
const (
	causeRX = 0
	causeTX = 1

	causeIdle = -1
)

// Comp is the serial card controller. It implements bus.Device for register
// access and sim.Ticker for the polling tick.
type Comp struct {
	sim.HookableBase

	// Log receives diagnostics. Trace, when set, additionally receives one
	// line per register access and interrupt transition.
	Log   *log.Logger
	Trace *log.Logger

	name string
	time sim.TimeTeller
	irq  cpu.IRQController
	pc   cpu.ProgramCounter

	// term receives terminal-emulation output for ports without a sink.
	term io.Writer

	// shutdown is called for an orderly emulation stop on console EOF;
	// fatal reports an unrecoverable stream error and must not return.
	shutdown func()
	fatal    func(format string, args ...interface{})

	ports []Port

	irqLevel   uint8
	irqEnabled bool
	irqCause   int
	pollCount  uint32
}

// Name returns the name of the card.
func (c *Comp) Name() string {
	return c.name
}

// NumPorts returns the number of serial lines on the card chain.
func (c *Comp) NumPorts() int {
	return len(c.ports)
}

// Port returns the state of one line, or nil if out of range.
func (c *Comp) Port(unit int) *Port {
	if unit < 0 || unit >= len(c.ports) {
		return nil
	}
	return &c.ports[unit]
}

// AddrRange returns the inclusive register range the card chain occupies.
func (c *Comp) AddrRange() (uint16, uint16) {
	cards := (len(c.ports) + 3) / 4
	return AddrBase, AddrBase + uint16(cards*16) - 1
}

// Attach connects byte streams to a port. Either stream may be nil.
func (c *Comp) Attach(unit int, mode Mode, in InputStream, out OutputStream) {
	p := &c.ports[unit]
	p.In = in
	p.Out = out
	p.Mode = mode
}

// decode splits an address into the addressed unit and register nibble.
// Register nibbles 0-7 address a port, with bit 0 selecting data over
// status; nibbles 8-F are card-wide controls.
func (c *Comp) decode(addr uint16) (unit, reg int) {
	offset := addr - AddrBase
	card := int(offset>>4) & 0xF

	reg = int(offset & 0xF)
	if reg > 7 {
		return card * 4, reg
	}

	return card*4 + (reg>>1)&0x3, reg
}

// Write8 handles a register write.
func (c *Comp) Write8(addr uint16, v uint8) {
	unit, reg := c.decode(addr)

	if unit >= len(c.ports) {
		c.tracef("%04X MUX%d: Write to disabled unit reg %x",
			c.pc.PC(), unit, addr)
		return
	}

	if reg <= 7 {
		if reg&1 == 0 {
			// Line configuration is accepted but not applied: the speed
			// divider encoding is still unknown.
			c.tracef("%04X MUX%d: Status Write %x", c.pc.PC(), unit, v)
			return
		}

		c.tracef("%04X MUX%d: Data Write %x%s",
			c.pc.PC(), unit, v, charSuffix(v))
		c.send(unit, v)
		return
	}

	switch reg {
	case 0x8:
		// RTS lines: bits 1-2 pick the unit, bit 0 is the line value.
		c.tracef("%04X MUX%d RTS = %d", c.pc.PC(), v>>1, v&1)
	case 0xA:
		c.tracef("%04X MUX%d: IRQ level = %d", c.pc.PC(), unit, v)
		c.irqLevel = v
	case 0xB:
		c.tracef("%04X MUX custom baud rate %02x", c.pc.PC(), v)
	case 0xC:
		c.forceTxDone(v)
	case 0xD:
		c.enableIRQ(false)
	case 0xE:
		c.enableIRQ(true)
	case 0xF:
		c.tracef("%04X MUX reset", c.pc.PC())
		c.irq.DeassertIRQ(c.irqLevel)
		c.Reset()
	default:
		c.Log.Printf("%04X: write to unknown MUX register %x=%02X",
			c.pc.PC(), addr, v)
	}
}

// Read8 handles a register read.
func (c *Comp) Read8(addr uint16) uint8 {
	if addr == AddrCause {
		return c.readCause()
	}

	unit, reg := c.decode(addr)

	if unit >= len(c.ports) {
		c.Log.Printf("%04X: MUX%d: Read from disabled unit reg %x",
			c.pc.PC(), unit, addr)
		return 0
	}

	if reg > 7 {
		c.Log.Printf("%04X: MUX%d: unknown register %x read",
			c.pc.PC(), unit, addr)
		return 0
	}

	if reg&1 == 0 {
		// CTS is forced on: nothing models the modem side of the line.
		data := c.ports[unit].Status | StatusCTS
		c.tracef("%04X MUX%d: Status Read = %02x", c.pc.PC(), unit, data)
		return data
	}

	data := c.nextChar(unit)
	c.ports[unit].Status &^= StatusRxReady
	c.tracef("%04X MUX%d: Data Read = %x%s",
		c.pc.PC(), unit, data, charSuffix(data))
	return data
}

// nextChar fetches the next input byte for a port. The port must not touch
// its input stream before RX_READY is set: simple interrupt handlers (WIPL)
// blindly read every data register to clear an unexpected IRQ, and an
// unconnected port never becomes ready.
func (c *Comp) nextChar(unit int) byte {
	p := &c.ports[unit]

	if p.Status&StatusRxReady == 0 || p.In == nil {
		return p.LastC
	}

	b, err := p.In.ReadByte()

	if p.Mode == ModeConsole {
		switch {
		case err == io.EOF:
			c.shutdown()
			return p.LastC
		case err == ErrWouldBlock:
			// Someone read the port when nothing was there.
			return p.LastC
		case err != nil:
			c.fatal("MUX%d: read failed: %v", unit, err)
			return p.LastC
		}

		if b == 0x7F {
			// Some terminals (like Cygwin) send DEL on Backspace.
			b = 0x08
		}
	} else if err != nil {
		c.Log.Printf("MUX%d: nothing has been read", unit)
		b = 0
	}

	p.LastC = b
	return b
}

// send transmits one byte. Writing to a port whose transmitter is still
// busy proceeds anyway; real firmware is expected to poll TX_READY first.
func (c *Comp) send(unit int, v uint8) {
	p := &c.ports[unit]

	if p.Status&StatusTxReady == 0 {
		c.Log.Printf("%04X: write to busy MUX%d port", c.pc.PC(), unit)
	}

	p.Status &^= StatusTxReady
	p.TxDoneAt = c.time.CurrentTime() + p.frameTime()

	if p.Out != nil {
		if p.Mode == ModeConsole {
			v &= 0x7F
		}
		if err := p.Out.WriteByte(v); err != nil {
			c.Log.Printf("MUX%d: write failed: %v", unit, err)
		}
		return
	}

	c.emitTerminal(v)
}

// emitTerminal renders a transmitted byte on the hosting terminal.
func (c *Comp) emitTerminal(v uint8) {
	v &= 0x7F

	switch {
	case v == 0x06:
		// Cursor one position right.
		fmt.Fprint(c.term, "\x1b[1C")
	case v != 0x08 && v != 0x0A && v != 0x0D && (v < 0x20 || v == 0x7F):
		fmt.Fprintf(c.term, "[%02X]", v)
	default:
		fmt.Fprintf(c.term, "%c", v)
	}
}

// readCause reads the shared interrupt-cause register. The read is enough
// to acknowledge a TX condition, but an RX condition is only cleared by
// actually reading the data.
func (c *Comp) readCause() uint8 {
	cause := c.irqCause

	c.tracef("%04X MUX: InterruptCause Read: %02x", c.pc.PC(), uint8(cause))

	if cause >= 0 && cause&1 == causeTX {
		unit := cause >> 1
		if unit < len(c.ports) {
			c.ports[unit].TxDone = false
			c.tracef("MUX%d: TX IRQ acknowledged", unit)
		}
	}

	return uint8(cause)
}

// forceTxDone handles the software-forced transmit-complete register. The
// OPSYS kernel writes a 1-based unit number here and then waits for the
// interrupt-driven write path to complete.
func (c *Comp) forceTxDone(v uint8) {
	unit := int(v) - 1
	if unit < 0 || unit >= len(c.ports) {
		c.Log.Printf("%04X: forced TX done for bad unit %d", c.pc.PC(), v)
		return
	}

	c.ports[unit].TxDone = true
}

func (c *Comp) enableIRQ(enable bool) {
	c.tracef("%04X MUX irq enable = %v", c.pc.PC(), enable)
	c.irqEnabled = enable
}

// Reset returns every port to its power-on state and clears the interrupt
// machinery. Stream attachments survive.
func (c *Comp) Reset() {
	for i := range c.ports {
		c.ports[i].powerOn()
	}

	c.irqLevel = 0
	c.irqEnabled = false
	c.irqCause = causeIdle
	c.pollCount = 0
}

func (c *Comp) tracef(format string, args ...interface{}) {
	if c.Trace != nil {
		c.Trace.Printf(format, args...)
	}
}

// charSuffix annotates a trace value with its printable form.
func charSuffix(v byte) string {
	if (v&0x7F) >= 0x20 && v != 0x7F && v != 0xFF {
		return fmt.Sprintf(" ('%c')", v&0x7F)
	}
	return ""
}
