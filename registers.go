package main

// Locally serviced register addresses.
const (
	addrDMA      = uint16(0xFF46)
	addrVBK      = uint16(0xFF4F)
	addrBootLock = uint16(0xFF50)
	addrHDMA1    = uint16(0xFF51)
	addrHDMA2    = uint16(0xFF52)
	addrHDMA3    = uint16(0xFF53)
	addrHDMA4    = uint16(0xFF54)
	addrHDMA5    = uint16(0xFF55)
	addrSVBK     = uint16(0xFF70)

	setupBase = uint16(0xFEA0)
	hramBase  = uint16(0xFF80)
	hramSize  = 0x7F
)

// Registers is the register file owned by the bus core: high RAM, the
// bank-select registers and the last DMA trigger value. It is mutated
// only on the core's own tick.
type Registers struct {
	HRAM     [hramSize]uint8
	VRAMBank uint8
	WRAMBank uint8
	DMA      uint8
	Locked   bool // boot lock written non-zero
}

func (r *Registers) Reset() {
	*r = Registers{}
}
