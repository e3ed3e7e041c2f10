package mux

import (
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("Interrupt Arbitration", func() {
	var (
		mockCtrl *gomock.Controller
		irq      *MockIRQController
		clock    *fakeClock
		c        *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		irq = NewMockIRQController(mockCtrl)
		clock = &fakeClock{}

		c = MakeBuilder().
			WithLog(log.New(GinkgoWriter, "", 0)).
			WithTimeTeller(clock).
			WithIRQController(irq).
			Build("MUX")

		c.Write8(AddrBase+0xA, 2) // IRQ level
		c.Write8(AddrBase+0xE, 0) // enable
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	tick := func() {
		irq.EXPECT().DeassertIRQ(uint8(2))
		c.Tick()
	}

	It("should latch TX0 over RX2", func() {
		c.Port(2).Status |= StatusRxReady
		c.Port(0).TxDone = true

		irq.EXPECT().DeassertIRQ(uint8(2))
		irq.EXPECT().AssertIRQ(uint8(2))
		c.Tick()

		// TX0 encodes to priority value 1, RX2 to 4; the lower wins.
		Expect(c.irqCause).To(Equal(0<<1 | causeTX))
	})

	It("should latch RX0 over everything", func() {
		c.Port(0).Status |= StatusRxReady
		c.Port(0).TxDone = true
		c.Port(3).TxDone = true

		irq.EXPECT().DeassertIRQ(uint8(2))
		irq.EXPECT().AssertIRQ(uint8(2))
		c.Tick()

		Expect(c.irqCause).To(Equal(0<<1 | causeRX))
	})

	It("should fall to the idle sentinel with nothing pending", func() {
		tick()

		Expect(c.irqCause).To(Equal(causeIdle))
		Expect(c.Read8(AddrCause)).To(Equal(uint8(0xFF)))
	})

	It("should not arbitrate while interrupts are disabled", func() {
		c.Write8(AddrBase+0xD, 0)
		c.Port(0).Status |= StatusRxReady

		tick()

		Expect(c.irqCause).To(Equal(causeIdle))
	})

	Describe("cause register acknowledgment", func() {
		It("should clear a pending TX condition on read", func() {
			c.Port(1).TxDone = true

			irq.EXPECT().DeassertIRQ(uint8(2))
			irq.EXPECT().AssertIRQ(uint8(2))
			c.Tick()
			Expect(c.irqCause).To(Equal(1<<1 | causeTX))

			Expect(c.Read8(AddrCause)).To(Equal(uint8(1<<1 | causeTX)))
			Expect(c.Port(1).TxDone).To(BeFalse())
		})

		It("should leave an RX condition untouched on read", func() {
			in := NewFIFOStream()
			c.Attach(1, ModeRaw, in, nil)
			c.Port(1).Status |= StatusRxReady
			c.Port(1).TxDone = true

			irq.EXPECT().DeassertIRQ(uint8(2))
			irq.EXPECT().AssertIRQ(uint8(2))
			c.Tick()
			Expect(c.irqCause).To(Equal(1<<1 | causeRX))

			Expect(c.Read8(AddrCause)).To(Equal(uint8(1<<1 | causeRX)))

			// An RX cause read acknowledges nothing: both the RX condition
			// and the unrelated TX latch stay pending.
			Expect(c.Port(1).Status & StatusRxReady).NotTo(BeZero())
			Expect(c.Port(1).TxDone).To(BeTrue())
		})

		It("should not disturb port state when idle", func() {
			tick()

			Expect(c.Read8(AddrCause)).To(Equal(uint8(0xFF)))
			for i := 0; i < c.NumPorts(); i++ {
				Expect(c.Port(i).TxDone).To(BeFalse())
			}
		})
	})

	It("should re-assert the line every tick while pending", func() {
		c.Port(0).TxDone = true

		irq.EXPECT().DeassertIRQ(uint8(2)).Times(2)
		irq.EXPECT().AssertIRQ(uint8(2)).Times(2)
		c.Tick()
		c.Tick()

		Expect(c.irqCause).To(Equal(0<<1 | causeTX))
	})
})
