package main

import (
	"gbc-bus/mapper"
	"gbc-bus/regs"
)

// HDMA streams 16-byte blocks into VRAM. General-purpose mode runs one
// block per tick until done; HBlank-gated mode waits for the video
// collaborator's HBlank notification between blocks. Either way the CPU
// sees Retry on a tick a block moves: it pauses without side effects,
// unlike the destructive OAM DMA overlay.
type HDMAUnit struct {
	active bool
	hblank bool
	paused bool
	blocks int
	src    uint16
	dst    uint16
}

const hdmaBlockSize = 16

var hdmaControlFields = map[string]regs.Field{
	"length": {Index: 0, Size: 7},
	"mode":   {Index: 7, Size: 1},
}

func (b *Bus) writeHDMA(addr uint16, v uint8) {
	h := &b.hdma
	switch addr {
	case addrHDMA1:
		h.src = h.src&0x00FF | uint16(v)<<8
	case addrHDMA2:
		h.src = h.src&0xFF00 | uint16(v&0xF0)
	case addrHDMA3:
		h.dst = h.dst&0x00FF | uint16(v&0x1F)<<8
	case addrHDMA4:
		h.dst = h.dst&0xFF00 | uint16(v&0xF0)
	case addrHDMA5:
		ctl := regs.CreateRegister(hdmaControlFields)
		ctl.SetReg(v)
		if h.active && h.hblank && !ctl.GetFlag("mode") {
			// a mode-0 write pauses an in-flight HBlank transfer
			h.paused = true
			h.active = false
			return
		}
		h.blocks = int(ctl.GetField("length")) + 1
		h.hblank = ctl.GetFlag("mode")
		h.active = true
		h.paused = false
	}
}

// readHDMA5 reports remaining blocks minus one, bit 7 set while paused,
// 0xFF once complete.
func (b *Bus) readHDMA5() uint8 {
	h := &b.hdma
	if !h.active && !h.paused {
		return 0xFF
	}
	v := uint8(h.blocks-1) & 0x7F
	if h.paused {
		v |= 0x80
	}
	return v
}

// stepHDMA moves at most one block and reports whether the CPU must see
// Retry this tick.
func (b *Bus) stepHDMA() bool {
	h := &b.hdma
	if !h.active {
		return false
	}
	if h.hblank {
		if !b.hblankPending {
			return false
		}
		b.hblankPending = false
	}
	b.copyHDMABlock()
	h.blocks--
	if h.blocks == 0 {
		h.active = false
	}
	return true
}

func (b *Bus) copyHDMABlock() {
	h := &b.hdma
	bank := uint32(b.regs.VRAMBank & 0x01)
	for i := 0; i < hdmaBlockSize; i++ {
		b.ports[TagVideo].Poke(bank*vramBankSize+uint32(h.dst&0x1FFF), b.hdmaFetch(h.src))
		h.src++
		h.dst++
	}
}

func (b *Bus) hdmaFetch(a uint16) uint8 {
	switch {
	case a < 0x8000:
		return b.ports[TagCartridge].Peek(b.mapper.ROMIndex(a))
	case a >= 0xA000 && a < 0xC000:
		off, target := b.mapper.RAMIndex(a)
		if target != mapper.RAMCart {
			return 0xFF
		}
		return b.ports[TagCartridge].Peek(cartRAMSpace | off)
	case a >= 0xC000 && a < 0xE000:
		return b.ports[TagSystemRAM].Peek(b.decoder.foldWRAM(a))
	case a >= 0xE000 && a < 0xFE00:
		return b.ports[TagSystemRAM].Peek(b.decoder.foldWRAM(a - 0x2000))
	}
	// VRAM is not a legal source
	return 0xFF
}
