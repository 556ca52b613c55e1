package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOAMDMAFromROM(t *testing.T) {
	rom := testROM(2)
	for i := 0; i < dmaLength; i++ {
		rom[0x2000+i] = uint8(i) + 1
	}
	b := NewSystemBus(rom, nil)

	busWrite(t, b, addrDMA, 0x20)
	assert.Equal(t, dmaLength, b.DMARemaining())

	for i := 0; i < dmaLength; i++ {
		b.Tick(nil)
	}
	assert.Equal(t, 0, b.DMARemaining())

	for i := 0; i < dmaLength; i++ {
		assert.Equal(t, uint8(i)+1, b.Peek(0xFE00+uint16(i)), "byte %d", i)
	}
	assert.Equal(t, uint8(0x20), busRead(t, b, addrDMA))
}

func TestOAMDMAOverlay(t *testing.T) {
	b := NewSystemBus(testROM(2), nil)
	busWrite(t, b, 0xC000, 0x42)
	busWrite(t, b, 0xFF80, 0x99)

	busWrite(t, b, addrDMA, 0xC0)

	// below $FF00 the copy engine owns the bus: reads see the open-bus
	// sentinel, writes land nowhere
	res := b.Tick(&Request{Addr: 0xC000})
	assert.Equal(t, StatusDone, res.Status)
	assert.Equal(t, uint8(0xFF), res.Data)
	res = b.Tick(&Request{Addr: 0xC000, Write: true, Data: 0x13})
	assert.Equal(t, StatusDone, res.Status)

	// $FF00 and above stays serviced
	res = b.Tick(&Request{Addr: 0xFF80})
	assert.Equal(t, StatusDone, res.Status)
	assert.Equal(t, uint8(0x99), res.Data)

	for b.DMARemaining() > 0 {
		b.Tick(nil)
	}
	assert.Equal(t, uint8(0x42), busRead(t, b, 0xC000))
	assert.Equal(t, uint8(0x42), b.Peek(0xFE00))
}

func TestOAMDMAFromEchoRegion(t *testing.T) {
	b := NewSystemBus(testROM(2), nil)
	for i := 0; i < 8; i++ {
		busWrite(t, b, 0xC000+uint16(i), 0xE0+uint8(i))
	}

	// selector $E0 folds onto system RAM at $C000
	busWrite(t, b, addrDMA, 0xE0)
	for b.DMARemaining() > 0 {
		b.Tick(nil)
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, 0xE0+uint8(i), b.Peek(0xFE00+uint16(i)))
	}
}

func TestOAMDMAWatchdog(t *testing.T) {
	video := NewRAMStore(int(oamBase)+oamSize, 1)
	b := NewBus(
		NewCartridgeStore(testROM(2), nil, 1),
		video,
		NewRAMStore(8*wramBankSize, 1),
		NewIOBlock(1),
	)

	busWrite(t, b, addrDMA, 0x20)
	video.SetStalled(true)

	// the budget drains with no byte moving
	for i := 0; i < dmaLength; i++ {
		b.Tick(nil)
	}
	assert.True(t, b.Stalled())
	assert.Equal(t, dmaLength, b.DMARemaining())
	assert.Equal(t, StatusBusy, b.Tick(&Request{Addr: 0xFF80}).Status)

	// once the destination drains again the copy completes and the
	// stall clears
	video.SetStalled(false)
	for i := 0; i < dmaLength; i++ {
		b.Tick(nil)
	}
	assert.Equal(t, 0, b.DMARemaining())
	assert.False(t, b.Stalled())
	assert.Equal(t, b.Peek(0x2000), b.Peek(0xFE00))
}
