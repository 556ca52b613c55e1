package mapper

// BankedMBC1 implements the MBC1 register file: a 5-bit primary bank, a
// 2-bit secondary bank and a mode flag. In simple mode the secondary bank
// only extends the upper window; in advanced mode it also remaps the
// lower window and selects the RAM bank.
type BankedMBC1 struct {
	cfg        Config
	bank1      uint8 // 5-bit, never 0
	bank2      uint8 // 2-bit
	mode       bool
	ramEnabled bool
}

func (m *BankedMBC1) WriteControl(addr uint16, data uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = data&0x0F == 0x0A
	case addr < 0x4000:
		data &= 0x1F
		if data == 0 {
			data = 1
		}
		m.bank1 = data
	case addr < 0x6000:
		m.bank2 = data & 0x03
	default:
		m.mode = data&0x01 == 0x01
	}
}

func (m *BankedMBC1) ROMIndex(addr uint16) uint32 {
	if addr < 0x4000 {
		// advanced mode maps the secondary bank into the lower window
		bank := uint16(0)
		if m.mode {
			bank = uint16(m.bank2) << 5 & m.cfg.ROMMask
		}
		return uint32(bank)<<14 | uint32(addr&0x3FFF)
	}
	bank := (uint16(m.bank2)<<5 | uint16(m.bank1)) & m.cfg.ROMMask
	return uint32(bank)<<14 | uint32(addr&0x3FFF)
}

func (m *BankedMBC1) RAMIndex(addr uint16) (uint32, RAMTarget) {
	if !m.ramEnabled {
		return 0, RAMNone
	}
	bank := uint8(0)
	if m.mode {
		bank = m.bank2 & m.cfg.RAMMask
	}
	return uint32(bank)<<13 | uint32(addr&0x1FFF), RAMCart
}

func (m *BankedMBC1) RAMEnabled() bool {
	return m.ramEnabled
}

func (m *BankedMBC1) Reset() {
	m.bank1 = 1
	m.bank2 = 0
	m.mode = false
	m.ramEnabled = false
}
