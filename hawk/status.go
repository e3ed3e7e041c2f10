package hawk

// Status is the named-field form of the controller status word. Pack is the
// single place that knows the wire layout.
type Status struct {
	Ready     bool
	OnTrack   bool
	Busy      bool
	DataError bool
	SeekError bool
}

func bit(b bool, n uint) uint16 {
	if b {
		return 1 << n
	}
	return 0
}

// Pack serializes the status into the 16-bit wire layout. The layout is a
// reverse-engineered contract: where data_error actually lives is unknown in
// the surviving documentation, so it is replicated across bits 10-13 and 15.
// The boot ROM requires bit 9 to read as zero and loops until either
// on_track (bit 5) or seek_error (bit 14) goes high.
func (s Status) Pack() uint16 {
	return bit(s.Ready, 4) |
		bit(s.OnTrack, 5) |
		bit(s.Busy, 8) |
		bit(s.DataError, 10) |
		bit(s.DataError, 11) |
		bit(s.DataError, 12) |
		bit(s.DataError, 13) |
		bit(s.SeekError, 14) |
		bit(s.DataError, 15)
}
