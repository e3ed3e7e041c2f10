package mux

import (
	"io"
	"log"
	"os"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/centsim/cpu"
	"github.com/sarchlab/centsim/sim"
)

// Builder can build MUX cards.
type Builder struct {
	log      *log.Logger
	trace    *log.Logger
	time     sim.TimeTeller
	irq      cpu.IRQController
	pc       cpu.ProgramCounter
	term     io.Writer
	shutdown func()
	fatal    func(format string, args ...interface{})
	numPorts int
}

// MakeBuilder creates a builder with default parameters: one 4-port card,
// terminal emulation to stdout, diagnostics to stderr.
func MakeBuilder() Builder {
	return Builder{
		log:      log.New(os.Stderr, "", 0),
		term:     os.Stdout,
		numPorts: 4,
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

// WithTimeTeller sets the clock the deadline model reads.
func (b Builder) WithTimeTeller(t sim.TimeTeller) Builder {
	b.time = t
	return b
}

// WithIRQController sets the interrupt line of the external core.
func (b Builder) WithIRQController(irq cpu.IRQController) Builder {
	b.irq = irq
	return b
}

// WithProgramCounter sets where trace lines get the current PC from.
func (b Builder) WithProgramCounter(pc cpu.ProgramCounter) Builder {
	b.pc = pc
	return b
}

// WithTerminal sets the writer that receives terminal-emulation output for
// ports without a sink.
func (b Builder) WithTerminal(w io.Writer) Builder {
	b.term = w
	return b
}

// WithShutdown sets the orderly-shutdown callback invoked on console EOF.
func (b Builder) WithShutdown(fn func()) Builder {
	b.shutdown = fn
	return b
}

// WithFatalHandler overrides the handler for unrecoverable stream errors.
// The default logs and terminates the process through atexit so recorders
// still flush.
func (b Builder) WithFatalHandler(
	fn func(format string, args ...interface{}),
) Builder {
	b.fatal = fn
	return b
}

// WithNumPorts sets the number of serial lines. Every full group of four
// lines forms one card.
func (b Builder) WithNumPorts(n int) Builder {
	b.numPorts = n
	return b
}

// Build creates the card chain.
func (b Builder) Build(name string) *Comp {
	c := new(Comp)
	c.name = name
	c.Log = b.log
	c.Trace = b.trace
	c.time = b.time
	c.irq = b.irq
	c.pc = b.pc
	c.term = b.term
	c.shutdown = b.shutdown
	c.fatal = b.fatal

	if c.pc == nil {
		c.pc = cpu.NoCorePC{}
	}

	if c.shutdown == nil {
		c.shutdown = func() {
			c.Log.Printf("MUX: console closed, no shutdown handler")
		}
	}

	if c.fatal == nil {
		c.fatal = func(format string, args ...interface{}) {
			c.Log.Printf(format, args...)
			atexit.Exit(1)
		}
	}

	c.ports = make([]Port, b.numPorts)
	c.Reset()

	return c
}
