package mapper

import (
	"fmt"

	"gbc-bus/regs"
)

// Kind identifies the bank-controller family soldered onto a cartridge.
type Kind uint8

const (
	ROM Kind = iota
	MBC1
	MBC2
	MBC3
	MBC5
	MBC6
	MBC7
	MMM01
	Camera
	TAMA5
	HuC3
	HuC1
)

var nameMap = map[Kind]string{
	ROM:    "ROM",
	MBC1:   "MBC1",
	MBC2:   "MBC2",
	MBC3:   "MBC3",
	MBC5:   "MBC5",
	MBC6:   "MBC6",
	MBC7:   "MBC7",
	MMM01:  "MMM01",
	Camera: "POCKET CAMERA",
	TAMA5:  "BANDAI TAMA5",
	HuC3:   "HUDSON HUC3",
	HuC1:   "HUDSON HUC1",
}

func (k Kind) String() string {
	if name, ok := nameMap[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown mapper %02x", uint8(k))
}

// KindFromHeader translates the cartridge-type byte at $0147 into a family.
func KindFromHeader(t uint8) Kind {
	switch {
	case t == 0x00 || t == 0x08 || t == 0x09:
		return ROM
	case t >= 0x01 && t <= 0x03:
		return MBC1
	case t == 0x05 || t == 0x06:
		return MBC2
	case t >= 0x0B && t <= 0x0D:
		return MMM01
	case t >= 0x0F && t <= 0x13:
		return MBC3
	case t >= 0x19 && t <= 0x1E:
		return MBC5
	case t == 0x20:
		return MBC6
	case t == 0x22:
		return MBC7
	case t == 0xFC:
		return Camera
	case t == 0xFD:
		return TAMA5
	case t == 0xFE:
		return HuC3
	case t == 0xFF:
		return HuC1
	}
	return ROM
}

// FeatureFields is the bit layout of the feature byte in the setup window.
var FeatureFields = map[string]regs.Field{
	"has_ram":     {Index: 0, Size: 1},
	"has_battery": {Index: 1, Size: 1},
	"has_timer":   {Index: 2, Size: 1},
	"has_rumble":  {Index: 3, Size: 1},
	"has_sensor":  {Index: 4, Size: 1},
}

// FeaturesFromHeader derives the feature byte from the cartridge-type byte.
func FeaturesFromHeader(t uint8) uint8 {
	f := regs.CreateRegister(FeatureFields)
	switch t {
	case 0x02, 0x08, 0x0C, 0x12, 0x1A:
		f.SetField("has_ram", 1)
	case 0x03, 0x09, 0x0D, 0x10, 0x13, 0x1B:
		f.SetField("has_ram", 1)
		f.SetField("has_battery", 1)
	case 0x06, 0xFF:
		f.SetField("has_battery", 1)
	case 0x0F:
		f.SetField("has_battery", 1)
	case 0x1C:
		f.SetField("has_rumble", 1)
	case 0x1D:
		f.SetField("has_ram", 1)
		f.SetField("has_rumble", 1)
	case 0x1E:
		f.SetField("has_ram", 1)
		f.SetField("has_battery", 1)
		f.SetField("has_rumble", 1)
	case 0x22:
		f.SetField("has_sensor", 1)
		f.SetField("has_battery", 1)
	}
	if t == 0x0F || t == 0x10 {
		f.SetField("has_timer", 1)
	}
	return f.Reg
}

// RAMTarget says where a $A000-$BFFF access lands for the current
// bank-select state.
type RAMTarget uint8

const (
	// RAMNone: access is not serviced; reads degrade to the 0xFF sentinel.
	RAMNone RAMTarget = iota
	// RAMCart: access hits cartridge RAM at the returned offset.
	RAMCart
	// RAMClock: access hits the RTC shadow file; the returned offset is
	// the register index (MBC3 only).
	RAMClock
)

// Config is the decoded contents of the setup window, fixed once the
// lock register is written.
type Config struct {
	Kind     Kind
	ROMMask  uint16 // 9-bit bank mask
	RAMMask  uint8  // 4-bit bank mask
	Features regs.Register
}

// Mapper computes effective ROM/RAM offsets for one controller family.
// Offsets are recomputed from the bank registers on every call, never
// cached, so a register write takes effect on the very next access.
type Mapper interface {
	// WriteControl decodes a CPU write into $0000-$7FFF.
	WriteControl(addr uint16, data uint8)
	// ROMIndex maps a $0000-$7FFF read to a flat image offset.
	ROMIndex(addr uint16) uint32
	// RAMIndex maps a $A000-$BFFF access to a RAM offset or RTC index.
	RAMIndex(addr uint16) (uint32, RAMTarget)
	RAMEnabled() bool
	Reset()
}

// New builds the mapper for a family. Unsupported families fall back to
// pass-through ROM behavior: bank-select writes are accepted but switch
// nothing.
func New(cfg Config) Mapper {
	switch cfg.Kind {
	case MBC1:
		return &BankedMBC1{cfg: cfg, bank1: 1}
	case MBC2:
		return &BankedMBC2{cfg: cfg, romBank: 1}
	case MBC3:
		return &BankedMBC3{cfg: cfg, romBank: 1}
	case MBC5:
		return &BankedMBC5{cfg: cfg, romBank: 1}
	default:
		return &PlainROM{cfg: cfg}
	}
}
