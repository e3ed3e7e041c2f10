package simulation

import (
	"io"
	"log"
	"os"

	"github.com/rs/xid"
	"github.com/sarchlab/centsim/bus"
	"github.com/sarchlab/centsim/cpu"
	"github.com/sarchlab/centsim/datarecording"
	"github.com/sarchlab/centsim/dma"
	"github.com/sarchlab/centsim/hawk"
	"github.com/sarchlab/centsim/monitoring"
	"github.com/sarchlab/centsim/mux"
	"github.com/sarchlab/centsim/sim"
	"github.com/sarchlab/centsim/tracing"
)

// DefaultTickPeriod is the cadence of the serial polling loop. It stands in
// for the instruction loop of the original machine, which polled the card
// once per instruction.
const DefaultTickPeriod = 10 * sim.Microsecond

// Builder can be used to build a simulation.
type Builder struct {
	log   *log.Logger
	trace *log.Logger

	monitorOn   bool
	monitorPort int
	openBrowser bool

	outputFileName string

	irq         cpu.IRQController
	terminal    io.Writer
	consoleIn   mux.InputStream
	numPorts    int
	stores      map[int]hawk.Store
	tickPeriod  sim.VTimeInNs
	runDuration sim.VTimeInNs
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		log:        log.New(os.Stderr, "", 0),
		monitorOn:  true,
		terminal:   os.Stdout,
		numPorts:   4,
		tickPeriod: DefaultTickPeriod,
	}
}

// WithLog sets the diagnostics logger shared by the devices and the bus.
func (b Builder) WithLog(l *log.Logger) Builder {
	b.log = l
	return b
}

// WithTraceLog enables per-access trace output on the devices.
func (b Builder) WithTraceLog(l *log.Logger) Builder {
	b.trace = l
	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowser makes the monitor open its page when the server starts.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

// WithOutputFileName sets the custom output file name for the data
// recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithIRQController sets the interrupt controller of an attached core.
func (b Builder) WithIRQController(irq cpu.IRQController) Builder {
	b.irq = irq
	return b
}

// WithTerminal sets the writer that receives serial terminal output.
func (b Builder) WithTerminal(w io.Writer) Builder {
	b.terminal = w
	return b
}

// WithConsole attaches an input stream to serial port 0 in console mode.
func (b Builder) WithConsole(in mux.InputStream) Builder {
	b.consoleIn = in
	return b
}

// WithNumPorts sets the number of serial lines.
func (b Builder) WithNumPorts(n int) Builder {
	b.numPorts = n
	return b
}

// WithDiskImage attaches a backing store to a disk unit.
func (b Builder) WithDiskImage(unit int, s hawk.Store) Builder {
	stores := make(map[int]hawk.Store, len(b.stores)+1)
	for u, old := range b.stores {
		stores[u] = old
	}
	stores[unit] = s

	b.stores = stores

	return b
}

// WithTickPeriod sets the cadence of the serial polling loop.
func (b Builder) WithTickPeriod(period sim.VTimeInNs) Builder {
	b.tickPeriod = period
	return b
}

// WithRunDuration limits how much emulated time Run covers. Zero means
// the emulation runs until stopped.
func (b Builder) WithRunDuration(d sim.VTimeInNs) Builder {
	b.runDuration = d
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.monitorOn && b.openBrowser {
		panic("browser cannot be opened when monitoring is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		devNameIndex: make(map[string]int),
	}

	s.id = xid.New().String()

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "centsim_" + s.id
	}
	s.dataRecorder = datarecording.New(outputPath)

	s.engine = sim.NewSerialEngine()

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		if b.openBrowser {
			s.monitor.WithBrowser()
		}
		s.monitor.RegisterEngine(s.engine)
	}

	b.buildDevices(s)
	b.buildBus(s)

	s.poller = sim.NewPoller(s.serial, s.engine, b.tickPeriod)
	s.poller.EndTime = b.runDuration

	if s.monitor != nil {
		s.monitor.StartServer()
	}

	return s
}

func (b Builder) buildDevices(s *Simulation) {
	irq := b.irq
	if irq == nil {
		irq = cpu.NoIRQ{}
	}

	s.pump = dma.NewPump("DMA", s.engine, nil)

	diskBuilder := hawk.MakeBuilder().
		WithLog(b.log).
		WithTraceLog(b.trace).
		WithDMARequester(s.pump)
	for unit, store := range b.stores {
		diskBuilder = diskBuilder.WithStore(unit, store)
	}
	s.disk = diskBuilder.Build("HAWK")

	s.pump.AttachDevice(s.disk)

	s.serial = mux.MakeBuilder().
		WithLog(b.log).
		WithTraceLog(b.trace).
		WithTimeTeller(s.engine).
		WithIRQController(irq).
		WithTerminal(b.terminal).
		WithShutdown(s.engine.Stop).
		WithNumPorts(b.numPorts).
		Build("MUX")

	if b.consoleIn != nil {
		s.serial.Attach(0, mux.ModeConsole, b.consoleIn, nil)
	}

	s.registerDevice(s.disk)
	s.registerDevice(s.serial)
	s.registerDevice(s.pump)
}

func (b Builder) buildBus(s *Simulation) {
	muxStart, muxEnd := s.serial.AddrRange()

	ioBus, err := bus.New(
		cpu.NoCorePC{},
		bus.Region{Start: hawk.AddrBase, End: hawk.AddrLimit, Dev: s.disk},
		bus.Region{Start: muxStart, End: muxEnd, Dev: s.serial},
	)
	if err != nil {
		panic(err)
	}

	ioBus.Log = b.log
	s.ioBus = ioBus

	tracing.CollectTrace(ioBus, s.engine, tracing.NewDBTracer(s.dataRecorder))
}
