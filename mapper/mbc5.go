package mapper

// BankedMBC5 implements the MBC5 register file: a full 9-bit ROM bank
// split across two registers and a 4-bit RAM bank. Unlike the earlier
// families a written bank value of 0 really selects physical bank 0.
type BankedMBC5 struct {
	cfg        Config
	romBank    uint16 // 9-bit
	ramBank    uint8
	ramEnabled bool
}

func (m *BankedMBC5) WriteControl(addr uint16, data uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = data&0x0F == 0x0A
	case addr < 0x3000:
		m.romBank = m.romBank&0x0100 | uint16(data)
	case addr < 0x4000:
		m.romBank = m.romBank&0x00FF | uint16(data&0x01)<<8
	case addr < 0x6000:
		// bit 3 drives the rumble motor on rumble carts, it is not a
		// bank bit there
		if m.cfg.Features.GetFlag("has_rumble") {
			data &= 0x07
		}
		m.ramBank = data & 0x0F
	}
}

func (m *BankedMBC5) ROMIndex(addr uint16) uint32 {
	if addr < 0x4000 {
		return uint32(addr)
	}
	bank := m.romBank & m.cfg.ROMMask
	return uint32(bank)<<14 | uint32(addr&0x3FFF)
}

func (m *BankedMBC5) RAMIndex(addr uint16) (uint32, RAMTarget) {
	if !m.ramEnabled {
		return 0, RAMNone
	}
	bank := m.ramBank & m.cfg.RAMMask
	return uint32(bank)<<13 | uint32(addr&0x1FFF), RAMCart
}

func (m *BankedMBC5) RAMEnabled() bool {
	return m.ramEnabled
}

func (m *BankedMBC5) Reset() {
	m.romBank = 1
	m.ramBank = 0
	m.ramEnabled = false
}
