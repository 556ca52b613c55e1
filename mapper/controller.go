package mapper

import "gbc-bus/regs"

// Setup window byte layout ($FEA0-$FEA7).
const (
	SetupKind = iota
	SetupROMSize
	SetupRAMSize
	SetupROMMaskLo
	SetupROMMaskHi
	SetupRAMMask
	SetupFeatures
	SetupPlatform

	SetupSize = 8
)

// Controller owns the mapper configuration registers and the active
// family implementation. It has two phases: while unlocked, writes into
// the setup window reconfigure it; writing the lock ends the phase
// permanently (until reset) and freezes the window read-only.
type Controller struct {
	window [SetupSize]uint8
	locked bool
	active Mapper
}

func NewController() *Controller {
	c := &Controller{}
	c.active = New(c.config())
	return c
}

func (c *Controller) config() Config {
	features := regs.CreateRegister(FeatureFields)
	features.SetReg(c.window[SetupFeatures])
	return Config{
		Kind:     Kind(c.window[SetupKind]),
		ROMMask:  uint16(c.window[SetupROMMaskHi]&0x01)<<8 | uint16(c.window[SetupROMMaskLo]),
		RAMMask:  c.window[SetupRAMMask] & 0x0F,
		Features: features,
	}
}

// WriteSetup handles a configuration-phase write. After lock the window
// is read-only and the write is ignored.
func (c *Controller) WriteSetup(index int, data uint8) {
	if c.locked {
		return
	}
	c.window[index&0x07] = data
	c.active = New(c.config())
}

// ReadSetup returns the last stored byte; reads stay legal after lock.
func (c *Controller) ReadSetup(index int) uint8 {
	return c.window[index&0x07]
}

// Lock ends the configuration phase.
func (c *Controller) Lock() {
	c.locked = true
}

func (c *Controller) Locked() bool {
	return c.locked
}

func (c *Controller) Kind() Kind {
	return Kind(c.window[SetupKind])
}

// Write decodes a runtime CPU write into the $0000-$7FFF window.
func (c *Controller) Write(addr uint16, data uint8) {
	c.active.WriteControl(addr, data)
}

func (c *Controller) ROMIndex(addr uint16) uint32 {
	return c.active.ROMIndex(addr)
}

func (c *Controller) RAMIndex(addr uint16) (uint32, RAMTarget) {
	return c.active.RAMIndex(addr)
}

func (c *Controller) RAMEnabled() bool {
	return c.active.RAMEnabled()
}

// ClockRead services a timer access through the RAM window. Families
// without a clock answer the sentinel.
func (c *Controller) ClockRead(index uint32) uint8 {
	if m, ok := c.active.(*BankedMBC3); ok {
		return m.ClockRead(index)
	}
	return 0xFF
}

// ClockWrite services a timer write through the RAM window.
func (c *Controller) ClockWrite(index uint32, data uint8) {
	if m, ok := c.active.(*BankedMBC3); ok {
		m.ClockWrite(index, data)
	}
}

// AdvanceClock feeds elapsed wall time to the RTC, if the family has one.
func (c *Controller) AdvanceClock(seconds uint32) {
	if m, ok := c.active.(*BankedMBC3); ok {
		m.AdvanceClock(seconds)
	}
}

// Reset reopens the configuration phase and clears the window and all
// bank-select state.
func (c *Controller) Reset() {
	c.window = [SetupSize]uint8{}
	c.locked = false
	c.active = New(c.config())
}
