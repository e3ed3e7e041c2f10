package hawk

// Drive geometry of the CDC 9427H Hawk cartridge: 406 cylinders, 2 heads,
// 16 sectors of 400 bytes per track.
const (
	NumCylinders    = 406
	NumHeads        = 2
	SectorsPerTrack = 16
	SectorBytes     = 400
)

// CHS is a decoded cylinder/head/sector disk address.
type CHS struct {
	Cylinder uint16
	Head     uint8
	Sector   uint8
}

// DecodeCHS unpacks the two raw address registers. The low register carries
// the sector in its low 4 bits and the head in bit 4; the cylinder is the
// high register shifted left 3 with the low register's top 3 bits appended.
func DecodeCHS(high, low uint8) CHS {
	return CHS{
		Cylinder: uint16(high)<<3 | uint16(low)>>5,
		Head:     (low >> 4) & 1,
		Sector:   low & 0x0F,
	}
}

// Offset translates the address to a byte offset in the flat disk image.
func (a CHS) Offset() int64 {
	track := int64(a.Cylinder)*NumHeads + int64(a.Head)
	return (track*SectorsPerTrack + int64(a.Sector)) * SectorBytes
}

// InRange reports whether the address is within the drive geometry. The
// controller itself never rejects an address; a flat image simply grows on a
// write past the end, matching the original behavior.
func (a CHS) InRange() bool {
	return a.Cylinder < NumCylinders
}
