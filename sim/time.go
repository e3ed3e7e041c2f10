package sim

import "fmt"

// VTimeInNs defines a point in emulated time, in nanoseconds. The emulated
// clock is monotonic and advances only when the engine processes events.
type VTimeInNs int64

// Common durations in emulated time.
const (
	Microsecond VTimeInNs = 1000
	Millisecond VTimeInNs = 1000 * Microsecond
	Second      VTimeInNs = 1000 * Millisecond
)

func (t VTimeInNs) String() string {
	return fmt.Sprintf("%dns", int64(t))
}

// TimeTeller can be used to get the current emulated time.
type TimeTeller interface {
	CurrentTime() VTimeInNs
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	Schedule(e Event)
}
