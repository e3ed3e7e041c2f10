package tracing

import "log"

// A LogTracer writes one line per access to a logger, in the same
// PC-prefixed shape the devices use for their own trace output.
type LogTracer struct {
	out *log.Logger
}

// NewLogTracer creates a LogTracer that writes to the given logger.
func NewLogTracer(out *log.Logger) *LogTracer {
	return &LogTracer{out: out}
}

// RecordAccess writes the access to the log.
func (t *LogTracer) RecordAccess(rec AccessRecord) {
	dir := "R"
	if rec.Write {
		dir = "W"
	}

	dev := rec.Device
	if rec.Unknown {
		dev = "?"
	}

	t.out.Printf("%d %04X: %s %04X = %02X %s",
		rec.Time, rec.PC, dir, rec.Addr, rec.Value, dev)
}
