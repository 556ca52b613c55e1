package main

// IOBlock is the miscellaneous I/O collaborator: joypad, serial, timer,
// interrupt and audio registers as one latched byte array. The bus only
// routes to it; none of the registers' behavior lives in this core, so
// values are stored and read back verbatim apart from a few fixed
// always-set bit masks.
type IOBlock struct {
	*Store
	regs [0x100]uint8
}

// I/O block offsets (the target sees addr & 0xFF).
const (
	ioJoypad    = 0x00
	ioSerialCtl = 0x02
	ioIntFlag   = 0x0F
	ioIntEnable = 0xFF
)

func NewIOBlock(latency int) *IOBlock {
	b := &IOBlock{}
	for i := range b.regs {
		b.regs[i] = 0xFF
	}
	b.Store = NewStore(b.readReg, b.writeReg, latency)
	return b
}

func (b *IOBlock) readReg(addr uint32) uint8 {
	v := b.regs[addr&0xFF]
	switch addr & 0xFF {
	case ioJoypad:
		return v | 0xC0
	case ioSerialCtl:
		return v | 0x7E
	case ioIntFlag:
		return v | 0xE0
	}
	return v
}

func (b *IOBlock) writeReg(addr uint32, data uint8) {
	b.regs[addr&0xFF] = data
}
