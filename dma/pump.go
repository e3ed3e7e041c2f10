package dma

import (
	"log"

	"github.com/sarchlab/centsim/sim"
)

type transferDoneEvent struct {
	*sim.EventBase
	dir Direction
}

func newTransferDoneEvent(
	t sim.VTimeInNs,
	handler sim.Handler,
	dir Direction,
) *transferDoneEvent {
	return &transferDoneEvent{sim.NewEventBase(t, handler), dir}
}

// A Pump is a minimal DMA engine. The emulated firmware would program the
// memory window through the DMA controller registers; the embedder programs
// it directly with SetWindow. When the device requests a transfer, the pump
// moves the whole window one byte at a time and schedules the completion
// signal one byte-time per byte later.
type Pump struct {
	name   string
	engine sim.Engine
	dev    Device

	// ByteTime is the emulated time the pump spends per transferred byte.
	ByteTime sim.VTimeInNs

	window []byte
	dir    Direction
}

// NewPump creates a DMA pump that moves bytes between the given device and
// its memory window.
func NewPump(name string, engine sim.Engine, dev Device) *Pump {
	p := new(Pump)
	p.name = name
	p.engine = engine
	p.dev = dev
	p.ByteTime = sim.Microsecond

	return p
}

// Name returns the name of the pump.
func (p *Pump) Name() string {
	return p.name
}

// AttachDevice sets the device the pump serves. It exists so the pump and a
// device that requests transfers from it can reference each other.
func (p *Pump) AttachDevice(dev Device) {
	p.dev = dev
}

// SetWindow programs the memory region the next transfer moves.
func (p *Pump) SetWindow(mem []byte) {
	p.window = mem
}

// Window returns the memory region programmed for the current transfer.
func (p *Pump) Window() []byte {
	return p.window
}

// SetTransfer starts a transfer in the given direction, or records that the
// device released the channel when the direction is DirNone.
func (p *Pump) SetTransfer(dir Direction) {
	p.dir = dir
	if dir == DirNone {
		return
	}

	now := p.engine.CurrentTime()
	done := now + p.ByteTime*sim.VTimeInNs(len(p.window))
	p.engine.Schedule(newTransferDoneEvent(done, p, dir))
}

// Handle moves the bytes of a completed transfer and signals the device.
func (p *Pump) Handle(e sim.Event) error {
	evt, ok := e.(*transferDoneEvent)
	if !ok {
		log.Panicf("pump %s cannot handle event %T", p.name, e)
	}

	switch evt.dir {
	case DirRead:
		for i := range p.window {
			p.window[i] = p.dev.ReadNext()
		}
	case DirWrite:
		for i := range p.window {
			p.dev.WriteNext(p.window[i])
		}
	}

	p.dev.TransferDone()

	return nil
}
