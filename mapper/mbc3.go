package mapper

// RTC register indices inside the 8-entry shadow file.
const (
	RTCSeconds = iota
	RTCMinutes
	RTCHours
	RTCDaysLow
	RTCControl // day bit 8, halt (bit 6), day carry (bit 7)
)

const rtcHalt = 0x40

// BankedMBC3 implements the MBC3 register file: a 7-bit ROM bank, a RAM
// bank selector that doubles as an RTC register index when its top bit is
// set, and the clock latch. The live clock advances through AdvanceClock;
// a rising edge on the latch register copies it into the shadow file that
// the RAM window actually exposes.
type BankedMBC3 struct {
	cfg        Config
	romBank    uint8 // 7-bit, never 0
	ramBank    uint8
	ramEnabled bool
	latchSeed  uint8
	clock      [8]uint8 // live counters
	shadow     [8]uint8 // latched copy read through the RAM window
}

func (m *BankedMBC3) WriteControl(addr uint16, data uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = data&0x0F == 0x0A
	case addr < 0x4000:
		data &= 0x7F
		if data == 0 {
			data = 1
		}
		m.romBank = data
	case addr < 0x6000:
		m.ramBank = data
	default:
		// latch on the rising edge of bit 0
		if m.latchSeed&0x01 == 0 && data&0x01 == 0x01 {
			m.shadow = m.clock
		}
		m.latchSeed = data
	}
}

func (m *BankedMBC3) ROMIndex(addr uint16) uint32 {
	if addr < 0x4000 {
		return uint32(addr)
	}
	bank := uint16(m.romBank) & m.cfg.ROMMask
	return uint32(bank)<<14 | uint32(addr&0x3FFF)
}

func (m *BankedMBC3) RAMIndex(addr uint16) (uint32, RAMTarget) {
	if !m.ramEnabled {
		return 0, RAMNone
	}
	if m.ramBank&0x08 != 0 {
		return uint32(m.ramBank & 0x07), RAMClock
	}
	bank := m.ramBank & m.cfg.RAMMask
	return uint32(bank)<<13 | uint32(addr&0x1FFF), RAMCart
}

func (m *BankedMBC3) RAMEnabled() bool {
	return m.ramEnabled
}

// ClockRead returns the latched register, not the live counter.
func (m *BankedMBC3) ClockRead(index uint32) uint8 {
	return m.shadow[index&0x07]
}

// ClockWrite sets both the live counter and the shadow so a readback
// before the next latch stays coherent.
func (m *BankedMBC3) ClockWrite(index uint32, data uint8) {
	m.clock[index&0x07] = data
	m.shadow[index&0x07] = data
}

// AdvanceClock moves the live counters forward by whole seconds. The
// shadow file is untouched until the next latch edge. A set halt bit
// freezes the counters.
func (m *BankedMBC3) AdvanceClock(seconds uint32) {
	if m.clock[RTCControl]&rtcHalt != 0 {
		return
	}
	for ; seconds > 0; seconds-- {
		m.clock[RTCSeconds]++
		if m.clock[RTCSeconds] < 60 {
			continue
		}
		m.clock[RTCSeconds] = 0
		m.clock[RTCMinutes]++
		if m.clock[RTCMinutes] < 60 {
			continue
		}
		m.clock[RTCMinutes] = 0
		m.clock[RTCHours]++
		if m.clock[RTCHours] < 24 {
			continue
		}
		m.clock[RTCHours] = 0
		if m.clock[RTCDaysLow] == 0xFF {
			m.clock[RTCDaysLow] = 0
			if m.clock[RTCControl]&0x01 != 0 {
				// day counter overflowed past 511: set the carry
				m.clock[RTCControl] = m.clock[RTCControl]&^0x01 | 0x80
			} else {
				m.clock[RTCControl] |= 0x01
			}
		} else {
			m.clock[RTCDaysLow]++
		}
	}
}

func (m *BankedMBC3) Reset() {
	m.romBank = 1
	m.ramBank = 0
	m.ramEnabled = false
	m.latchSeed = 0
	m.clock = [8]uint8{}
	m.shadow = [8]uint8{}
}
