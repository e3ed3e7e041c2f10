// Package dma declares the contract between the Hawk controller and the
// external DMA engine, and provides an event-driven pump that is good enough
// to exercise the controller without the real memory subsystem.
package dma

// Direction of a bulk transfer.
type Direction int

// Transfer directions. The encoding matches the historical controller
// interface: 0 idle, 1 device-to-memory, 2 memory-to-device.
const (
	DirNone Direction = iota
	DirRead
	DirWrite
)

func (d Direction) String() string {
	switch d {
	case DirNone:
		return "none"
	case DirRead:
		return "read"
	case DirWrite:
		return "write"
	}
	return "unknown"
}

// A Device is a peripheral the DMA engine can pump bytes to or from. The
// engine moves one byte at a time and signals the device when the programmed
// transfer completes.
type Device interface {
	// ReadNext returns the next byte from the device in a read-direction
	// transfer.
	ReadNext() uint8

	// WriteNext hands the device the next byte of a write-direction transfer.
	WriteNext(v uint8)

	// TransferDone signals that the programmed transfer has completed.
	TransferDone()
}

// A Requester lets a device ask the external DMA engine to start a transfer
// in the given direction, or to stop signaling with DirNone.
type Requester interface {
	SetTransfer(dir Direction)
}
