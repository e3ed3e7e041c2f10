package hawk

import (
	"log"
	"os"

	"github.com/sarchlab/centsim/cpu"
	"github.com/sarchlab/centsim/dma"
)

// Builder can build Hawk controllers.
type Builder struct {
	log      *log.Logger
	trace    *log.Logger
	pc       cpu.ProgramCounter
	dmaReq   dma.Requester
	numUnits int
	stores   map[int]Store
}

// MakeBuilder creates a builder with default parameters: 8 units, no
// attached images, diagnostics to stderr.
func MakeBuilder() Builder {
	return Builder{
		log:      log.New(os.Stderr, "", 0),
		numUnits: 8,
		stores:   map[int]Store{},
	}
}

// WithLog sets the diagnostics logger.
func (b Builder) WithLog(l *log.Logger) Builder {
	b.log = l
	return b
}

// WithTraceLog enables per-access trace output.
func (b Builder) WithTraceLog(l *log.Logger) Builder {
	b.trace = l
	return b
}

// WithProgramCounter sets where trace lines get the current PC from.
func (b Builder) WithProgramCounter(pc cpu.ProgramCounter) Builder {
	b.pc = pc
	return b
}

// WithDMARequester sets the external DMA engine the controller requests
// transfers from.
func (b Builder) WithDMARequester(r dma.Requester) Builder {
	b.dmaReq = r
	return b
}

// WithNumUnits sets the number of drive units.
func (b Builder) WithNumUnits(n int) Builder {
	b.numUnits = n
	return b
}

// WithStore attaches a disk image to the given unit. Units without a store
// report not ready when selected.
func (b Builder) WithStore(unit int, s Store) Builder {
	stores := map[int]Store{}
	for k, v := range b.stores {
		stores[k] = v
	}
	stores[unit] = s
	b.stores = stores
	return b
}

// Build creates the controller.
func (b Builder) Build(name string) *Comp {
	c := new(Comp)
	c.name = name
	c.Log = b.log
	c.Trace = b.trace
	c.pc = b.pc
	c.dma = b.dmaReq
	c.detached = &Unit{}

	if c.pc == nil {
		c.pc = cpu.NoCorePC{}
	}

	if c.dma == nil {
		c.dma = nopRequester{}
	}

	c.units = make([]*Unit, b.numUnits)
	for i := range c.units {
		c.units[i] = &Unit{store: b.stores[i]}
	}

	return c
}
