// Package cpu declares the contracts that the peripheral devices expect from
// the external instruction-execution core. The core itself is not part of
// this module.
package cpu

// An IRQController accepts interrupt assert and deassert requests from
// devices. A level identifies the priority line the device interrupts on.
type IRQController interface {
	AssertIRQ(level uint8)
	DeassertIRQ(level uint8)
}

// A ProgramCounter reports the address of the instruction the core is
// currently executing. Devices use it to annotate trace output, the same way
// the original firmware listings reference I/O accesses by PC.
type ProgramCounter interface {
	PC() uint16
}

// NoCorePC is a ProgramCounter for running devices without an attached core,
// such as in the standalone exerciser. It always reports zero.
type NoCorePC struct{}

// PC returns zero.
func (NoCorePC) PC() uint16 { return 0 }

// NoIRQ is an IRQController for running devices without an attached core.
// Assert and deassert requests are dropped.
type NoIRQ struct{}

// AssertIRQ does nothing.
func (NoIRQ) AssertIRQ(uint8) {}

// DeassertIRQ does nothing.
func (NoIRQ) DeassertIRQ(uint8) {}
