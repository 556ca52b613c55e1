package main

import "gbc-bus/mapper"

// OAM DMA copies 160 bytes into OAM, one per cycle, with a parallel
// cycle budget. If the budget runs out before the byte count does, the
// system is not keeping pace and the arbiter stalls all further CPU
// progress until the copy catches up.
const dmaLength = 160

type DMAUnit struct {
	active    bool
	remaining int
	budget    int
	source    uint16
	fetch     func(addr uint16) uint8
}

// triggerDMA decodes a $FF46 write: the upper bits of the value select
// the logical source, the whole value forms the base address.
func (b *Bus) triggerDMA(value uint8) {
	base := uint16(value) << 8
	if base >= 0xE000 {
		// echo alias folds onto system RAM
		base -= 0x2000
	}

	d := &b.dma
	d.active = true
	d.remaining = dmaLength
	d.budget = dmaLength
	d.source = base

	switch {
	case base < 0x8000:
		d.fetch = func(a uint16) uint8 {
			return b.ports[TagCartridge].Peek(b.mapper.ROMIndex(a))
		}
	case base < 0xA000:
		d.fetch = func(a uint16) uint8 {
			bank := uint32(b.regs.VRAMBank & 0x01)
			return b.ports[TagVideo].Peek(bank*vramBankSize + uint32(a&0x1FFF))
		}
	case base < 0xC000:
		d.fetch = func(a uint16) uint8 {
			off, target := b.mapper.RAMIndex(a)
			if target != mapper.RAMCart {
				return 0xFF
			}
			return b.ports[TagCartridge].Peek(cartRAMSpace | off)
		}
	default:
		d.fetch = func(a uint16) uint8 {
			return b.ports[TagSystemRAM].Peek(b.decoder.foldWRAM(a))
		}
	}
}

// stepDMA moves one byte per tick while the destination accepts it. The
// budget counts down every tick regardless, so a stalled destination
// eventually trips the watchdog.
func (b *Bus) stepDMA() {
	d := &b.dma
	if !d.active {
		return
	}
	if d.budget > 0 {
		d.budget--
	}
	if b.targets[TagVideo].Busy() {
		return
	}
	i := dmaLength - d.remaining
	b.ports[TagVideo].Poke(oamBase+uint32(i), d.fetch(d.source+uint16(i)))
	d.remaining--
	if d.remaining == 0 {
		d.active = false
	}
}

func (b *Bus) dmaWatchdogTripped() bool {
	return b.dma.active && b.dma.budget == 0 && b.dma.remaining > 0
}
