package sim

// TickEvent is a generic event that almost all devices can use to update
// their status.
type TickEvent struct {
	EventBase
}

// MakeTickEvent creates a new TickEvent
func MakeTickEvent(handler Handler, t VTimeInNs) TickEvent {
	evt := TickEvent{}
	evt.ID = GetIDGenerator().Generate()
	evt.handler = handler
	evt.time = t
	evt.secondary = true

	return evt
}

// A Ticker is an object that updates state on every polling tick.
type Ticker interface {
	Tick() bool
}

// A Poller drives a Ticker at a fixed cadence. The polling tick is how
// deferred device behavior (serial deadlines, input polling, interrupt
// arbitration) is advanced between register accesses.
//
// Tick events are secondary so that same-time primary events, such as DMA
// completion, are handled before the poll that observes their effect.
type Poller struct {
	ticker Ticker
	engine Engine

	// Period is the emulated time between two polling ticks.
	Period VTimeInNs

	// EndTime, when non-zero, is the time after which no more ticks are
	// scheduled. Without it the poller keeps the engine running forever.
	EndTime VTimeInNs
}

// NewPoller creates a poller that ticks the given ticker every period.
func NewPoller(ticker Ticker, engine Engine, period VTimeInNs) *Poller {
	if period <= 0 {
		panic("poller period must be positive")
	}

	p := new(Poller)
	p.ticker = ticker
	p.engine = engine
	p.Period = period

	return p
}

// Start schedules the first polling tick.
func (p *Poller) Start() {
	p.scheduleNext(p.engine.CurrentTime())
}

// Handle processes one polling tick and schedules the next one.
func (p *Poller) Handle(e Event) error {
	p.ticker.Tick()
	p.scheduleNext(e.Time())
	return nil
}

func (p *Poller) scheduleNext(now VTimeInNs) {
	next := now + p.Period
	if p.EndTime != 0 && next > p.EndTime {
		return
	}

	p.engine.Schedule(MakeTickEvent(p, next))
}
