// Package simulation wires the emulation together: the event engine, the
// I/O bus with the disk controller and the serial card on it, the DMA pump,
// and the recording and monitoring services.
package simulation

import (
	"github.com/sarchlab/centsim/bus"
	"github.com/sarchlab/centsim/datarecording"
	"github.com/sarchlab/centsim/dma"
	"github.com/sarchlab/centsim/hawk"
	"github.com/sarchlab/centsim/monitoring"
	"github.com/sarchlab/centsim/mux"
	"github.com/sarchlab/centsim/sim"
)

// A Simulation holds one assembled emulation.
type Simulation struct {
	id string

	engine       *sim.SerialEngine
	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor

	ioBus  *bus.Bus
	disk   *hawk.Comp
	serial *mux.Comp
	pump   *dma.Pump
	poller *sim.Poller

	devices      []sim.Named
	devNameIndex map[string]int
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Engine returns the engine driving the emulation.
func (s *Simulation) Engine() *sim.SerialEngine {
	return s.engine
}

// DataRecorder returns the data recorder used in the simulation.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// Monitor returns the monitor, or nil when monitoring is off.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// Bus returns the I/O bus.
func (s *Simulation) Bus() *bus.Bus {
	return s.ioBus
}

// Disk returns the disk controller.
func (s *Simulation) Disk() *hawk.Comp {
	return s.disk
}

// Serial returns the serial card chain.
func (s *Simulation) Serial() *mux.Comp {
	return s.serial
}

// Pump returns the DMA pump serving the disk controller.
func (s *Simulation) Pump() *dma.Pump {
	return s.pump
}

// DeviceByName returns a registered device by name, or nil.
func (s *Simulation) DeviceByName(name string) sim.Named {
	i, ok := s.devNameIndex[name]
	if !ok {
		return nil
	}

	return s.devices[i]
}

// Devices returns all registered devices.
func (s *Simulation) Devices() []sim.Named {
	return s.devices
}

func (s *Simulation) registerDevice(d sim.Named) {
	if _, ok := s.devNameIndex[d.Name()]; ok {
		panic("device " + d.Name() + " already registered")
	}

	s.devices = append(s.devices, d)
	s.devNameIndex[d.Name()] = len(s.devices) - 1

	if s.monitor != nil {
		s.monitor.RegisterDevice(d)
	}
}

// Run starts the polling loop and processes events until the emulation
// finishes, either by reaching the configured duration or through an
// orderly shutdown.
func (s *Simulation) Run() error {
	s.poller.Start()
	return s.engine.Run()
}

// Stop requests an orderly stop of a running emulation.
func (s *Simulation) Stop() {
	s.engine.Stop()
}

// Terminate flushes the recorder. It must be called after the emulation
// finishes.
func (s *Simulation) Terminate() {
	s.dataRecorder.Flush()
}
