package mux

import "github.com/sarchlab/centsim/sim"

// Status register bits of a port. The real hardware uses mark parity, so
// bit 0 of a status write would be the char-pending flag; this emulation
// never sets the error bits.
const (
	StatusRxReady   = 1 << 0
	StatusTxReady   = 1 << 1
	StatusParityErr = 1 << 2
	StatusFrameErr  = 1 << 3
	StatusOverrun   = 1 << 4
	StatusCTS       = 1 << 5
)

// Mode selects how a port treats its byte streams.
type Mode int

const (
	// ModeConsole applies terminal preprocessing: DEL maps to backspace on
	// input, end of input shuts the emulation down, and transmitted bytes
	// are masked to 7 bits.
	ModeConsole Mode = iota

	// ModeRaw passes bytes through untouched.
	ModeRaw
)

// DefaultBaud is the power-on line rate of every port.
const DefaultBaud = 9600

// A Port is one serial line of the card.
type Port struct {
	In   InputStream
	Out  OutputStream
	Mode Mode

	Status uint8
	LastC  byte
	Baud   int

	// TxDone records a transmit-complete interrupt condition. It is kept
	// apart from the status register: no firmware read of it has ever been
	// found, so where it lives on real hardware is unknown.
	TxDone bool

	// RxReadyAt and TxDoneAt are armed deadlines; zero means unarmed.
	RxReadyAt sim.VTimeInNs
	TxDoneAt  sim.VTimeInNs
}

// powerOn resets the port to its power-on state. Stream attachments and the
// mode survive a card reset.
func (p *Port) powerOn() {
	p.Status = StatusTxReady
	p.LastC = 0xFF
	p.Baud = DefaultBaud
	p.TxDone = false
	p.RxReadyAt = 0
	p.TxDoneAt = 0
}

// frameTime is the emulated time one 10-bit character frame occupies on the
// line at the port's baud rate.
func (p *Port) frameTime() sim.VTimeInNs {
	return sim.VTimeInNs(10 * int64(sim.Second) / int64(p.Baud))
}
