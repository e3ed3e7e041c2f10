package mux

// Tick advances the card by one polling tick: fire due deadlines, poll the
// input streams at a throttled cadence, then redo interrupt arbitration
// from scratch.
func (c *Comp) Tick() bool {
	for unit := range c.ports {
		c.processDeadlines(unit)
	}

	// Cheap speedhack: only look at the input streams every 16th tick.
	if c.pollCount&0xF == 0 {
		c.pollInputs()
	}
	c.pollCount++

	c.irq.DeassertIRQ(c.irqLevel)
	c.arbitrate()

	return true
}

// processDeadlines fires the due deadlines of one port. A deadline fires at
// most once: it is cleared before its effect is applied.
func (c *Comp) processDeadlines(unit int) {
	now := c.time.CurrentTime()
	p := &c.ports[unit]

	if p.RxReadyAt != 0 && p.RxReadyAt <= now {
		p.RxReadyAt = 0
		p.Status |= StatusRxReady
		c.pollCount = 0

		c.tracef("MUX%d: RX_READY", unit)
	}

	if p.TxDoneAt != 0 && p.TxDoneAt <= now {
		p.TxDoneAt = 0
		p.Status |= StatusTxReady

		// A TX interrupt is raised when the UART switches from busy back
		// to ready. It is latched here so it survives until acknowledged
		// through the cause register.
		if c.irqEnabled {
			p.TxDone = true
		}

		c.tracef("MUX%d: TX_READY; TX_DONE = %v", unit, p.TxDone)
	}
}

// pollInputs arms the receive deadline of every port that has a byte
// waiting. Ports that are already ready, or already counting down, are left
// alone so the deadline fires exactly once per received character.
func (c *Comp) pollInputs() {
	now := c.time.CurrentTime()

	for unit := range c.ports {
		p := &c.ports[unit]

		if p.In == nil || !p.In.Pending() {
			continue
		}

		if p.Status&StatusRxReady != 0 || p.RxReadyAt != 0 {
			continue
		}

		// The character needs a symbol time to arrive; making it ready
		// immediately would fire interrupts faster than the line allows.
		p.RxReadyAt = now + p.frameTime()
	}
}
