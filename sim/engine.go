// Package sim provides the event kernel that drives the peripheral
// emulation: a nanosecond virtual clock, a time-ordered event queue, and
// hooks for observing what the devices do.
package sim

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// A SimulationEndHandler is a handler that is called after the emulation
// ends.
type SimulationEndHandler interface {
	Handle(now VTimeInNs)
}

// An Engine is a unit that keeps the discrete event emulation running.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run will process all the events until the emulation finishes
	Run() error

	// Pause will pause the emulation until Continue is called.
	Pause()

	// Continue will continue the paused emulation
	Continue()

	// RegisterSimulationEndHandler registers a handler that performs some
	// actions after the emulation is finished.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished invokes all the registered SimulationEndHandler
	Finished()
}
