// Package tracing collects register access traces from the I/O bus. Tracers
// attach to the bus as hooks, so the devices stay unaware of who is
// watching them.
package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/centsim/bus"
	"github.com/sarchlab/centsim/sim"
)

// An AccessRecord describes one completed register access.
type AccessRecord struct {
	Time    sim.VTimeInNs
	PC      uint16
	Addr    uint16
	Value   uint8
	Device  string
	Write   bool
	Unknown bool
}

// A Tracer can collect register access traces.
type Tracer interface {
	RecordAccess(rec AccessRecord)
}

// CollectTrace lets the tracer collect accesses from a bus.
func CollectTrace(b *bus.Bus, tt sim.TimeTeller, tracer Tracer) {
	for _, hook := range b.Hooks {
		hook, ok := hook.(*traceHook)
		if ok && hook.tracer == tracer {
			panic(fmt.Sprintf(
				"bus already has tracer %s", reflect.TypeOf(tracer)))
		}
	}

	b.AcceptHook(&traceHook{tt: tt, tracer: tracer})
}

// A traceHook turns bus hook invocations into access records.
type traceHook struct {
	tt     sim.TimeTeller
	tracer Tracer
}

func (h *traceHook) Func(ctx sim.HookCtx) {
	var write bool

	switch ctx.Pos {
	case bus.HookPosRegRead:
		write = false
	case bus.HookPosRegWrite:
		write = true
	default:
		return
	}

	access := ctx.Item.(bus.Access)

	h.tracer.RecordAccess(AccessRecord{
		Time:    h.tt.CurrentTime(),
		PC:      access.PC,
		Addr:    access.Addr,
		Value:   access.Value,
		Device:  access.Device,
		Write:   write,
		Unknown: access.Unknown,
	})
}
