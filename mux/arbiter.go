package mux

// arbitrate scans the pending interrupt sources and latches the winner into
// the cause register. Sources are enumerated RX0, TX0, RX1, TX1, ... and the
// lowest number wins; whether real hardware agrees is unverified, but the
// order is easy to reverse if needed.
func (c *Comp) arbitrate() {
	for unit := range c.ports {
		if c.ports[unit].Status&StatusRxReady != 0 &&
			c.assertCause(unit, causeRX) {
			return
		}
		if c.ports[unit].TxDone && c.assertCause(unit, causeTX) {
			return
		}
	}

	if c.irqCause >= 0 {
		c.tracef("MUX: Last mux interrupt acknowledged")
	}

	c.irqCause = causeIdle
}

// assertCause latches a pending source and asserts the interrupt line. It
// reports false while interrupts are disabled so the scan falls through to
// the idle sentinel.
func (c *Comp) assertCause(unit, dir int) bool {
	if !c.irqEnabled {
		return false
	}

	cause := unit<<1 | dir

	if c.irqCause != cause {
		name := "RX"
		if dir == causeTX {
			name = "TX"
		}
		c.tracef("MUX%d: %s IRQ raised", unit, name)
	}

	c.irqCause = cause
	c.irq.AssertIRQ(c.irqLevel)

	return true
}
