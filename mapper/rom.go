package mapper

// PlainROM is the no-controller cartridge: 32KB of ROM visible flat, with
// optional unbanked RAM. It also stands in for every unsupported family,
// where bank-select writes are accepted but produce no switching.
type PlainROM struct {
	cfg Config
}

func (m *PlainROM) WriteControl(addr uint16, data uint8) {
}

func (m *PlainROM) ROMIndex(addr uint16) uint32 {
	return uint32(addr & 0x7FFF)
}

func (m *PlainROM) RAMIndex(addr uint16) (uint32, RAMTarget) {
	if !m.cfg.Features.GetFlag("has_ram") {
		return 0, RAMNone
	}
	return uint32(addr & 0x1FFF), RAMCart
}

func (m *PlainROM) RAMEnabled() bool {
	return m.cfg.Features.GetFlag("has_ram")
}

func (m *PlainROM) Reset() {
}
