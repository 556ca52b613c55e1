package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gbc-bus/regs"
)

func testConfig(kind Kind, romMask uint16, ramMask uint8, featureByte uint8) Config {
	features := regs.CreateRegister(FeatureFields)
	features.SetReg(featureByte)
	return Config{Kind: kind, ROMMask: romMask, RAMMask: ramMask, Features: features}
}

func TestMBC1ZeroBankForcing(t *testing.T) {
	m := New(testConfig(MBC1, 0x1F, 0x03, 0x01))

	m.WriteControl(0x2100, 0x00)
	assert.Equal(t, uint32(1)<<14, m.ROMIndex(0x4000))

	m.WriteControl(0x2100, 0x07)
	assert.Equal(t, uint32(7)<<14|0x123, m.ROMIndex(0x4123))
}

func TestMBC1AdvancedModeLowerWindow(t *testing.T) {
	// large ROM: full 7-bit mask, secondary bank shifts in above bit 4
	m := New(testConfig(MBC1, 0x7F, 0x00, 0x00))

	m.WriteControl(0x4000, 0x02) // bank2 = 2
	assert.Equal(t, uint32(0), m.ROMIndex(0x0000), "simple mode keeps bank 0 in the lower window")

	m.WriteControl(0x6000, 0x01) // advanced banking mode
	assert.Equal(t, uint32(0x40)<<14, m.ROMIndex(0x0000), "advanced mode remaps the lower window")

	// upper window carries both banks in either mode
	m.WriteControl(0x2000, 0x03)
	assert.Equal(t, uint32(0x43)<<14, m.ROMIndex(0x4000))
}

func TestMBC1RAMBankSelect(t *testing.T) {
	m := New(testConfig(MBC1, 0x1F, 0x03, 0x01))

	_, target := m.RAMIndex(0xA000)
	assert.Equal(t, RAMNone, target, "RAM starts disabled")

	m.WriteControl(0x0000, 0x0A)
	off, target := m.RAMIndex(0xA010)
	assert.Equal(t, RAMCart, target)
	assert.Equal(t, uint32(0x10), off, "simple mode pins RAM bank 0")

	m.WriteControl(0x4000, 0x02)
	m.WriteControl(0x6000, 0x01)
	off, _ = m.RAMIndex(0xA010)
	assert.Equal(t, uint32(2)<<13|0x10, off)

	m.WriteControl(0x0000, 0x00)
	_, target = m.RAMIndex(0xA010)
	assert.Equal(t, RAMNone, target, "any non-0xA nibble disables RAM")
}

func TestMBC2AddressBit8(t *testing.T) {
	m := New(testConfig(MBC2, 0x0F, 0x00, 0x00))

	// bit 8 clear: RAM enable latch, not a bank write
	m.WriteControl(0x0000, 0x0A)
	assert.True(t, m.RAMEnabled())
	assert.Equal(t, uint32(1)<<14, m.ROMIndex(0x4000))

	// bit 8 set: ROM bank, even in the low range
	m.WriteControl(0x0100, 0x03)
	assert.Equal(t, uint32(3)<<14, m.ROMIndex(0x4000))
	assert.True(t, m.RAMEnabled())

	m.WriteControl(0x0100, 0x00)
	assert.Equal(t, uint32(1)<<14, m.ROMIndex(0x4000), "bank 0 is forced to 1")

	off, target := m.RAMIndex(0xA345)
	assert.Equal(t, RAMCart, target)
	assert.Equal(t, uint32(0x145), off, "built-in RAM wraps at 512 entries")
}

func TestMBC3TimerRedirect(t *testing.T) {
	m := New(testConfig(MBC3, 0x7F, 0x03, 0x07)).(*BankedMBC3)

	m.WriteControl(0x0000, 0x0A)
	m.WriteControl(0x4000, 0x02)
	off, target := m.RAMIndex(0xA000)
	assert.Equal(t, RAMCart, target)
	assert.Equal(t, uint32(2)<<13, off)

	// top bit of the bank selector redirects the window to the clock
	m.WriteControl(0x4000, 0x09)
	off, target = m.RAMIndex(0xA000)
	assert.Equal(t, RAMClock, target)
	assert.Equal(t, uint32(1), off)
}

func TestMBC3LatchEdge(t *testing.T) {
	m := New(testConfig(MBC3, 0x7F, 0x03, 0x07)).(*BankedMBC3)

	m.AdvanceClock(61)
	assert.Equal(t, uint8(0), m.ClockRead(RTCSeconds), "shadow is stale before any latch")

	m.WriteControl(0x6000, 0x00)
	m.WriteControl(0x6000, 0x01)
	assert.Equal(t, uint8(1), m.ClockRead(RTCSeconds))
	assert.Equal(t, uint8(1), m.ClockRead(RTCMinutes))

	// holding the bit high is not an edge
	m.AdvanceClock(1)
	m.WriteControl(0x6000, 0x01)
	assert.Equal(t, uint8(1), m.ClockRead(RTCSeconds))

	m.WriteControl(0x6000, 0x00)
	m.WriteControl(0x6000, 0x01)
	assert.Equal(t, uint8(2), m.ClockRead(RTCSeconds))
}

func TestMBC3ClockHalt(t *testing.T) {
	m := New(testConfig(MBC3, 0x7F, 0x03, 0x07)).(*BankedMBC3)

	m.ClockWrite(RTCControl, rtcHalt)
	m.AdvanceClock(10)
	m.WriteControl(0x6000, 0x00)
	m.WriteControl(0x6000, 0x01)
	assert.Equal(t, uint8(0), m.ClockRead(RTCSeconds))
}

func TestMBC5TrueZeroBank(t *testing.T) {
	m := New(testConfig(MBC5, 0x1FF, 0x0F, 0x01))

	m.WriteControl(0x2000, 0x00)
	assert.Equal(t, uint32(0), m.ROMIndex(0x4000), "MBC5 allows physical bank 0")

	m.WriteControl(0x2000, 0x34)
	m.WriteControl(0x3000, 0x01)
	assert.Equal(t, uint32(0x134)<<14|0x7FF, m.ROMIndex(0x47FF))

	m.WriteControl(0x0000, 0x0A)
	m.WriteControl(0x4000, 0x05)
	off, target := m.RAMIndex(0xA000)
	assert.Equal(t, RAMCart, target)
	assert.Equal(t, uint32(5)<<13, off)
}

func TestMBC5RumbleMasksBankBit3(t *testing.T) {
	m := New(testConfig(MBC5, 0x1FF, 0x07, FeaturesFromHeader(0x1D)))

	m.WriteControl(0x0000, 0x0A)
	m.WriteControl(0x4000, 0x0D) // motor bit set, bank 5
	off, _ := m.RAMIndex(0xA000)
	assert.Equal(t, uint32(5)<<13, off)
}

func TestROMMaskApplied(t *testing.T) {
	// 4 banks: mask 0x03
	m := New(testConfig(MBC1, 0x03, 0x00, 0x00))
	m.WriteControl(0x2000, 0x12)
	assert.Equal(t, uint32(2)<<14, m.ROMIndex(0x4000))
}

func TestUnknownFamilyPassThrough(t *testing.T) {
	m := New(testConfig(HuC3, 0x1FF, 0x0F, 0x01))

	m.WriteControl(0x2000, 0x42)
	assert.Equal(t, uint32(0x4000), m.ROMIndex(0x4000), "bank writes switch nothing")
	assert.Equal(t, uint32(0x123), m.ROMIndex(0x0123))
}

func TestControllerTwoPhase(t *testing.T) {
	c := NewController()

	c.WriteSetup(SetupKind, uint8(MBC5))
	c.WriteSetup(SetupROMMaskLo, 0xFF)
	c.WriteSetup(SetupROMMaskHi, 0x01)
	c.WriteSetup(SetupRAMMask, 0x0F)
	c.Lock()

	assert.True(t, c.Locked())
	assert.Equal(t, MBC5, c.Kind())

	// window is read-only after lock, reads return the stored bytes
	c.WriteSetup(SetupKind, uint8(MBC1))
	assert.Equal(t, uint8(MBC5), c.ReadSetup(SetupKind))

	c.Write(0x2000, 0x00)
	assert.Equal(t, uint32(0), c.ROMIndex(0x4000))

	c.Reset()
	assert.False(t, c.Locked())
	assert.Equal(t, uint8(0), c.ReadSetup(SetupKind))
}

func TestKindFromHeader(t *testing.T) {
	assert.Equal(t, ROM, KindFromHeader(0x00))
	assert.Equal(t, MBC1, KindFromHeader(0x03))
	assert.Equal(t, MBC2, KindFromHeader(0x06))
	assert.Equal(t, MMM01, KindFromHeader(0x0B))
	assert.Equal(t, MBC3, KindFromHeader(0x10))
	assert.Equal(t, MBC5, KindFromHeader(0x1E))
	assert.Equal(t, MBC7, KindFromHeader(0x22))
	assert.Equal(t, Camera, KindFromHeader(0xFC))
	assert.Equal(t, HuC1, KindFromHeader(0xFF))
}

func TestFeaturesFromHeader(t *testing.T) {
	f := regs.CreateRegister(FeatureFields)

	f.SetReg(FeaturesFromHeader(0x10)) // MBC3+TIMER+RAM+BATT
	assert.True(t, f.GetFlag("has_ram"))
	assert.True(t, f.GetFlag("has_battery"))
	assert.True(t, f.GetFlag("has_timer"))

	f.SetReg(FeaturesFromHeader(0x1C)) // MBC5+RUMBLE
	assert.True(t, f.GetFlag("has_rumble"))
	assert.False(t, f.GetFlag("has_ram"))
}
