package mapper

// BankedMBC2 implements the MBC2 register file. The controller decodes a
// single register range below $4000 and uses address bit 8, not the
// address range, to tell RAM-enable writes from ROM-bank writes. Its RAM
// is a built-in 512-nibble array, addressed modulo 0x200.
type BankedMBC2 struct {
	cfg        Config
	romBank    uint8 // 4-bit, never 0
	ramEnabled bool
}

func (m *BankedMBC2) WriteControl(addr uint16, data uint8) {
	if addr >= 0x4000 {
		return
	}
	if addr&0x0100 != 0 {
		data &= 0x0F
		if data == 0 {
			data = 1
		}
		m.romBank = data
	} else {
		m.ramEnabled = data&0x0F == 0x0A
	}
}

func (m *BankedMBC2) ROMIndex(addr uint16) uint32 {
	if addr < 0x4000 {
		return uint32(addr)
	}
	bank := uint16(m.romBank) & m.cfg.ROMMask
	return uint32(bank)<<14 | uint32(addr&0x3FFF)
}

func (m *BankedMBC2) RAMIndex(addr uint16) (uint32, RAMTarget) {
	if !m.ramEnabled {
		return 0, RAMNone
	}
	return uint32(addr & 0x01FF), RAMCart
}

func (m *BankedMBC2) RAMEnabled() bool {
	return m.ramEnabled
}

func (m *BankedMBC2) Reset() {
	m.romBank = 1
	m.ramEnabled = false
}
