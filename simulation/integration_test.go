package simulation

import (
	"errors"
	"io"
	"log"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/centsim/hawk"
	"github.com/sarchlab/centsim/sim"
)

// memStore is an in-memory disk image.
type memStore struct {
	data []byte
	pos  int64
}

func (s *memStore) Read(p []byte) (int, error) {
	if s.pos >= int64(len(s.data)) {
		return 0, io.EOF
	}

	n := copy(p, s.data[s.pos:])
	s.pos += int64(n)

	return n, nil
}

func (s *memStore) Write(p []byte) (int, error) {
	need := s.pos + int64(len(p))
	if need > int64(len(s.data)) {
		s.data = append(s.data, make([]byte, need-int64(len(s.data)))...)
	}

	n := copy(s.data[s.pos:], p)
	s.pos += int64(n)

	return n, nil
}

func (s *memStore) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		s.pos = offset
	case io.SeekCurrent:
		s.pos += offset
	case io.SeekEnd:
		s.pos = int64(len(s.data)) + offset
	}

	if s.pos < 0 {
		return 0, errors.New("negative position")
	}

	return s.pos, nil
}

var _ = Describe("Disk Transfer", func() {
	var (
		s     *Simulation
		image *memStore
	)

	BeforeEach(func() {
		image = &memStore{data: make([]byte, 16*hawk.SectorBytes)}
		for i := range image.data {
			image.data[i] = byte(i)
		}

		s = MakeBuilder().
			WithoutMonitoring().
			WithLog(log.New(GinkgoWriter, "", 0)).
			WithTerminal(io.Discard).
			WithDiskImage(0, image).
			WithRunDuration(5 * sim.Millisecond).
			Build()
	})

	AfterEach(func() {
		s.Terminate()
		os.Remove("centsim_" + s.ID() + ".sqlite3")
	})

	seekTo := func(cylHigh, chsLow uint8) {
		s.Bus().Write8(hawk.AddrUnitSelect, 0)
		s.Bus().Write8(hawk.AddrCylHigh, cylHigh)
		s.Bus().Write8(hawk.AddrCHSLow, chsLow)
		s.Bus().Write8(hawk.AddrCommand, hawk.CmdSeek)
	}

	It("should read a sector through the DMA pump", func() {
		seekTo(0, 0x01)

		// ready | on_track after a clean seek
		Expect(s.Bus().Read8(hawk.AddrStatusLow)).To(Equal(uint8(0x30)))

		window := make([]byte, hawk.SectorBytes)
		s.Pump().SetWindow(window)
		s.Bus().Write8(hawk.AddrCommand, hawk.CmdRead)

		Expect(s.Bus().Read8(hawk.AddrCommand)).To(Equal(uint8(1)))

		Expect(s.Run()).To(Succeed())

		Expect(window).To(Equal(image.data[400:800]))
		Expect(s.Bus().Read8(hawk.AddrCommand)).To(Equal(uint8(0)))
		Expect(s.Bus().Read8(hawk.AddrStatusLow)).To(Equal(uint8(0x30)))
	})

	It("should write a sector through the DMA pump", func() {
		seekTo(0, 0x00)

		window := make([]byte, hawk.SectorBytes)
		for i := range window {
			window[i] = 0xA5
		}
		s.Pump().SetWindow(window)
		s.Bus().Write8(hawk.AddrCommand, hawk.CmdWrite)

		Expect(s.Run()).To(Succeed())

		for _, b := range image.data[:400] {
			Expect(b).To(Equal(byte(0xA5)))
		}
		Expect(image.data[400]).To(Equal(byte(144)))
		Expect(s.Bus().Read8(hawk.AddrCommand)).To(Equal(uint8(0)))
	})

	It("should flag a transfer that was not preceded by a seek", func() {
		s.Bus().Write8(hawk.AddrUnitSelect, 0)

		window := make([]byte, hawk.SectorBytes)
		s.Pump().SetWindow(window)
		s.Bus().Write8(hawk.AddrCommand, hawk.CmdRead)

		Expect(s.Run()).To(Succeed())

		// data_error: the heads never landed on a track
		status := s.Bus().Read8(hawk.AddrStatusHigh)
		Expect(status & 0x3C).NotTo(BeZero())
	})
})
