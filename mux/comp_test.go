package mux

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/sarchlab/centsim/sim"
)

// fakeClock is a hand-cranked TimeTeller.
type fakeClock struct {
	now sim.VTimeInNs
}

func (f *fakeClock) CurrentTime() sim.VTimeInNs { return f.now }

var _ = Describe("MUX Card", func() {
	var (
		mockCtrl *gomock.Controller
		irq      *MockIRQController
		clock    *fakeClock
		term     *bytes.Buffer
		c        *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		irq = NewMockIRQController(mockCtrl)
		clock = &fakeClock{}
		term = &bytes.Buffer{}

		c = MakeBuilder().
			WithLog(log.New(GinkgoWriter, "", 0)).
			WithTimeTeller(clock).
			WithIRQController(irq).
			WithTerminal(term).
			Build("MUX")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	// tick runs one polling tick, expecting the unconditional line
	// deassertion that precedes re-arbitration.
	tick := func() {
		irq.EXPECT().DeassertIRQ(gomock.Any())
		c.Tick()
	}

	Describe("address decode", func() {
		It("should map port registers", func() {
			unit, reg := c.decode(AddrBase + 0x0)
			Expect(unit).To(Equal(0))
			Expect(reg).To(Equal(0))

			unit, reg = c.decode(AddrBase + 0x5)
			Expect(unit).To(Equal(2))
			Expect(reg).To(Equal(5))

			unit, reg = c.decode(AddrBase + 0x7)
			Expect(unit).To(Equal(3))
			Expect(reg).To(Equal(7))
		})

		It("should map control registers to the card's first unit", func() {
			unit, reg := c.decode(AddrBase + 0xA)
			Expect(unit).To(Equal(0))
			Expect(reg).To(Equal(0xA))
		})

		It("should ignore accesses to disabled units", func() {
			big := MakeBuilder().
				WithLog(log.New(GinkgoWriter, "", 0)).
				WithTimeTeller(clock).
				WithIRQController(irq).
				WithNumPorts(2).
				Build("MUX2")

			// Port 2 of card 0 does not exist on a 2-port chain; the write
			// must not touch anything, including port state out of range.
			big.Write8(AddrBase+0x5, 0x41)
			Expect(big.Port(0).Status & StatusTxReady).NotTo(BeZero())
			Expect(big.Port(1).Status & StatusTxReady).NotTo(BeZero())
		})
	})

	Describe("power-on and reset", func() {
		It("should come up with transmit ready only", func() {
			for i := 0; i < c.NumPorts(); i++ {
				p := c.Port(i)
				Expect(p.Status).To(Equal(uint8(StatusTxReady)))
				Expect(p.LastC).To(Equal(byte(0xFF)))
				Expect(p.Baud).To(Equal(9600))
				Expect(p.TxDone).To(BeFalse())
				Expect(p.RxReadyAt).To(BeZero())
				Expect(p.TxDoneAt).To(BeZero())
			}
		})

		It("should return to power-on state on a card reset", func() {
			in := NewFIFOStream()
			c.Attach(0, ModeConsole, in, nil)

			c.Write8(AddrBase+0xA, 3) // IRQ level
			c.Write8(AddrBase+0xE, 0) // enable IRQ
			c.Write8(AddrBase+0x1, 0x41)
			c.Port(1).TxDone = true

			irq.EXPECT().DeassertIRQ(uint8(3))
			c.Write8(AddrBase+0xF, 0)

			p := c.Port(0)
			Expect(p.Status).To(Equal(uint8(StatusTxReady)))
			Expect(p.LastC).To(Equal(byte(0xFF)))
			Expect(p.Baud).To(Equal(9600))
			Expect(p.TxDoneAt).To(BeZero())
			Expect(c.Port(1).TxDone).To(BeFalse())
			Expect(c.irqEnabled).To(BeFalse())
			Expect(c.irqCause).To(Equal(causeIdle))
			Expect(c.irqLevel).To(Equal(uint8(0)))

			// Attachments survive the reset.
			Expect(p.In).To(Equal(InputStream(in)))
		})
	})

	Describe("transmit", func() {
		It("should clear TX_READY and arm the done deadline", func() {
			clock.now = 5 * sim.Millisecond

			c.Write8(AddrBase+0x1, 0x41)

			p := c.Port(0)
			Expect(p.Status & StatusTxReady).To(BeZero())
			Expect(p.TxDoneAt).To(Equal(
				5*sim.Millisecond + sim.VTimeInNs(1041666)))
			Expect(term.String()).To(Equal("A"))
		})

		It("should proceed on a busy port", func() {
			c.Write8(AddrBase+0x1, 0x41)
			c.Write8(AddrBase+0x1, 0x42)

			Expect(term.String()).To(Equal("AB"))
		})

		It("should emulate the terminal for unprintable bytes", func() {
			c.Write8(AddrBase+0x1, 0x06)
			c.Write8(AddrBase+0x1, 0x01)
			c.Write8(AddrBase+0x1, 0x0A)

			Expect(term.String()).To(Equal("\x1b[1C[01]\n"))
		})

		It("should write to an attached sink instead", func() {
			out := NewFIFOStream()
			c.Attach(0, ModeRaw, nil, out)

			c.Write8(AddrBase+0x1, 0xC1)

			b, err := out.ReadByte()
			Expect(err).NotTo(HaveOccurred())
			Expect(b).To(Equal(byte(0xC1)))
			Expect(term.Len()).To(BeZero())
		})

		It("should mask console-mode output to 7 bits", func() {
			out := NewFIFOStream()
			c.Attach(0, ModeConsole, nil, out)

			c.Write8(AddrBase+0x1, 0xC1)

			b, _ := out.ReadByte()
			Expect(b).To(Equal(byte(0x41)))
		})

		It("should restore TX_READY when the deadline fires", func() {
			c.Write8(AddrBase+0x1, 0x41)
			due := c.Port(0).TxDoneAt

			clock.now = due - 1
			tick()
			Expect(c.Port(0).Status & StatusTxReady).To(BeZero())

			clock.now = due
			tick()
			Expect(c.Port(0).Status & StatusTxReady).NotTo(BeZero())
			Expect(c.Port(0).TxDoneAt).To(BeZero())
			Expect(c.Port(0).TxDone).To(BeFalse(), "IRQs are disabled")
		})

		It("should latch tx_done when the deadline fires with IRQs on", func() {
			c.Write8(AddrBase+0xE, 0)
			c.Write8(AddrBase+0x1, 0x41)

			clock.now = c.Port(0).TxDoneAt
			irq.EXPECT().DeassertIRQ(gomock.Any())
			irq.EXPECT().AssertIRQ(gomock.Any())
			c.Tick()

			Expect(c.Port(0).TxDone).To(BeTrue())
		})
	})

	Describe("receive", func() {
		var in *FIFOStream

		BeforeEach(func() {
			in = NewFIFOStream()
			c.Attach(0, ModeConsole, in, nil)
		})

		receiveByte := func(b byte) {
			Expect(in.WriteByte(b)).To(Succeed())
			tick() // poll arms the deadline
			Expect(c.Port(0).RxReadyAt).NotTo(BeZero())

			clock.now = c.Port(0).RxReadyAt
			tick()
			Expect(c.Port(0).Status & StatusRxReady).NotTo(BeZero())
		}

		It("should take a frame time before the byte is ready", func() {
			Expect(in.WriteByte(0x58)).To(Succeed())

			tick()
			armed := c.Port(0).RxReadyAt
			Expect(armed).To(Equal(sim.VTimeInNs(1041666)))

			clock.now = armed - 1
			tick()
			Expect(c.Port(0).Status & StatusRxReady).To(BeZero())

			clock.now = armed
			tick()
			Expect(c.Port(0).Status & StatusRxReady).NotTo(BeZero())
			Expect(c.Port(0).RxReadyAt).To(BeZero())
		})

		It("should deliver the byte on a data read", func() {
			receiveByte(0x58)

			irq.EXPECT().DeassertIRQ(gomock.Any()).AnyTimes()
			Expect(c.Read8(AddrBase + 0x1)).To(Equal(uint8(0x58)))
			Expect(c.Port(0).Status & StatusRxReady).To(BeZero())
			Expect(c.Port(0).LastC).To(Equal(byte(0x58)))
		})

		It("should replay lastc on a speculative read", func() {
			receiveByte(0x58)
			Expect(c.Read8(AddrBase + 0x1)).To(Equal(uint8(0x58)))

			Expect(in.WriteByte(0x59)).To(Succeed())
			// RX_READY is clear, so the input must not be consumed.
			Expect(c.Read8(AddrBase + 0x1)).To(Equal(uint8(0x58)))
			Expect(in.Pending()).To(BeTrue())
		})

		It("should map DEL to backspace in console mode", func() {
			receiveByte(0x7F)
			Expect(c.Read8(AddrBase + 0x1)).To(Equal(uint8(0x08)))
		})

		It("should not preprocess in raw mode", func() {
			c.Attach(0, ModeRaw, in, nil)
			receiveByte(0x7F)
			Expect(c.Read8(AddrBase + 0x1)).To(Equal(uint8(0x7F)))
		})

		It("should shut down on console end of input", func() {
			done := false
			c.shutdown = func() { done = true }

			receiveByte(0x58)
			Expect(c.Read8(AddrBase + 0x1)).To(Equal(uint8(0x58)))

			// Close with nothing buffered, then force another ready read.
			Expect(in.Close()).To(Succeed())
			tick()
			clock.now = c.Port(0).RxReadyAt
			tick()

			Expect(c.Read8(AddrBase + 0x1)).To(Equal(uint8(0x58)))
			Expect(done).To(BeTrue())
		})
	})

	Describe("status register", func() {
		It("should force CTS on", func() {
			Expect(c.Read8(AddrBase + 0x0)).To(Equal(
				uint8(StatusTxReady | StatusCTS)))
		})

		It("should accept a status write without effect", func() {
			c.Write8(AddrBase+0x0, 0xC5)
			Expect(c.Port(0).Baud).To(Equal(9600))
		})
	})

	Describe("card controls", func() {
		It("should set the interrupt level", func() {
			c.Write8(AddrBase+0xA, 7)
			Expect(c.irqLevel).To(Equal(uint8(7)))
		})

		It("should force tx_done for a 1-based unit", func() {
			c.Write8(AddrBase+0xC, 3)
			Expect(c.Port(2).TxDone).To(BeTrue())
		})

		It("should ignore a forced tx_done for unit 0", func() {
			c.Write8(AddrBase+0xC, 0)
			for i := 0; i < c.NumPorts(); i++ {
				Expect(c.Port(i).TxDone).To(BeFalse())
			}
		})

		It("should enable and disable interrupts", func() {
			c.Write8(AddrBase+0xE, 0)
			Expect(c.irqEnabled).To(BeTrue())

			c.Write8(AddrBase+0xD, 0)
			Expect(c.irqEnabled).To(BeFalse())
		})
	})
})
