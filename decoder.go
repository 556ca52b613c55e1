package main

// TargetTag names the backing store a bus access resolves to.
type TargetTag uint8

const (
	TagCartridge TargetTag = iota
	TagVideo
	TagSystemRAM
	TagIO
	TagInternal

	// targets capable of holding an outstanding transaction; internal
	// registers are always serviced in the same cycle
	targetCount = 4
)

// Video target address space: two VRAM banks, then OAM.
const (
	vramBankSize = 0x2000
	oamBase      = uint32(2 * vramBankSize)
	oamSize      = 160
)

// System RAM target address space: eight 4KB banks, bank 0 fixed.
const wramBankSize = 0x1000

// Cartridge target address space: the ROM image flat from 0, RAM offsets
// tagged with a high bit so one target serves both.
const cartRAMSpace = uint32(1) << 24

// Access is one classified bus access: the target tag plus the
// translated sub-address, computed once and carried together so no use
// site re-derives it.
type Access struct {
	Tag  TargetTag
	Addr uint32
}

// Decoder partitions the 64KB address space into mutually exclusive
// regions and folds banked regions down to physical cells. Cartridge
// addresses are left untranslated; the mapper owns that arithmetic.
type Decoder struct {
	regs *Registers
}

func (d *Decoder) Decode(addr uint16, isWrite bool) Access {
	switch {
	case addr < 0x8000:
		return Access{Tag: TagCartridge, Addr: uint32(addr)}
	case addr >= 0xA000 && addr < 0xC000:
		return Access{Tag: TagCartridge, Addr: uint32(addr)}
	case addr >= 0xFEA0 && addr <= 0xFEA7:
		return Access{Tag: TagInternal, Addr: uint32(addr)}
	case addr < 0xA000:
		bank := uint32(d.regs.VRAMBank & 0x01)
		return Access{Tag: TagVideo, Addr: bank*vramBankSize + uint32(addr&0x1FFF)}
	case addr >= 0xFE00 && addr <= 0xFE9F:
		return Access{Tag: TagVideo, Addr: oamBase + uint32(addr-0xFE00)}
	case addr < 0xE000:
		return Access{Tag: TagSystemRAM, Addr: d.foldWRAM(addr)}
	case addr <= 0xFDFF:
		// echo region: canonicalize to the $C000 counterpart
		return Access{Tag: TagSystemRAM, Addr: d.foldWRAM(addr - 0x2000)}
	case addr <= 0xFEFF:
		// unusable tail: serviced locally, reads 0xFF
		return Access{Tag: TagInternal, Addr: uint32(addr)}
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return Access{Tag: TagInternal, Addr: uint32(addr)}
	case isLocalRegister(addr):
		return Access{Tag: TagInternal, Addr: uint32(addr)}
	default:
		return Access{Tag: TagIO, Addr: uint32(addr & 0xFF)}
	}
}

// foldWRAM maps $C000-$DFFF to the physical bank cell. The upper window
// goes through the bank register, where selector 0 folds to bank 1.
func (d *Decoder) foldWRAM(addr uint16) uint32 {
	if addr < 0xD000 {
		return uint32(addr & 0x0FFF)
	}
	bank := uint32(d.regs.WRAMBank & 0x07)
	if bank == 0 {
		bank = 1
	}
	return bank*wramBankSize + uint32(addr&0x0FFF)
}

// isLocalRegister reports registers the arbiter services itself with
// zero added latency.
func isLocalRegister(addr uint16) bool {
	switch addr {
	case addrDMA, addrVBK, addrBootLock, addrSVBK:
		return true
	}
	return addr >= addrHDMA1 && addr <= addrHDMA5
}
