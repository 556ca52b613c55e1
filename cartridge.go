package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"gbc-bus/mapper"
)

// Header is the cartridge header block at $0100-$014F.
type Header struct {
	Entry        [4]byte
	Logo         [48]byte
	Title        [16]byte
	NewLicensee  [2]byte
	SGBFlag      uint8
	MapperType   uint8 // $0147
	ROMSizeClass uint8 // $0148
	RAMSizeClass uint8 // $0149
	Destination  uint8
	OldLicensee  uint8
	MaskROMVer   uint8
	Checksum     uint8
	GlobalSum    [2]byte
}

// Cartridge holds a loaded ROM image, its RAM, and the header fields the
// boot firmware consults to program the mapper.
type Cartridge struct {
	rom    []uint8
	ram    []uint8
	header Header
}

var ramSizes = map[uint8]int{
	0x00: 0,
	0x01: 0,
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

func NewCartridge(filename string) (*Cartridge, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening cartridge: %w", err)
	}
	defer file.Close()

	rom, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading cartridge: %w", err)
	}
	return LoadCartridge(rom)
}

func LoadCartridge(rom []uint8) (*Cartridge, error) {
	if len(rom) < 0x0150 {
		return nil, fmt.Errorf("cartridge image too small: %d bytes", len(rom))
	}

	cart := &Cartridge{rom: rom}
	if err := binary.Read(bytes.NewReader(rom[0x0100:0x0150]), binary.LittleEndian, &cart.header); err != nil {
		return nil, fmt.Errorf("decoding header: %w", err)
	}

	// MBC2 RAM is built in, the size class says zero
	if mapper.KindFromHeader(cart.header.MapperType) == mapper.MBC2 {
		cart.ram = make([]uint8, 512)
	} else {
		cart.ram = make([]uint8, ramSizes[cart.header.RAMSizeClass])
	}
	return cart, nil
}

func (c *Cartridge) Title() string {
	title := c.header.Title[:]
	// the tail of the title field doubles as the compatibility byte
	if i := bytes.IndexByte(title, 0); i >= 0 {
		title = title[:i]
	}
	return string(title)
}

// HeaderByte serves the read-only $0147-$0149 fields.
func (c *Cartridge) HeaderByte(addr uint16) uint8 {
	return c.rom[addr]
}

// ROMBanks is the 16KB bank count encoded by the size class.
func (c *Cartridge) ROMBanks() uint16 {
	return 2 << c.header.ROMSizeClass
}

func (c *Cartridge) RAMBanks() uint8 {
	banks := len(c.ram) / 0x2000
	if banks == 0 {
		return 0
	}
	return uint8(banks)
}

// Program is the boot-firmware step: it derives the mapper configuration
// from the header and writes it through the bus into the setup window,
// then writes the lock to end the configuration phase. Writes go through
// ordinary bus requests, the same path the firmware uses.
func (c *Cartridge) Program(b *Bus) {
	kind := mapper.KindFromHeader(c.header.MapperType)
	romMask := c.ROMBanks() - 1
	ramMask := uint8(0)
	if banks := c.RAMBanks(); banks > 0 {
		ramMask = banks - 1
	}

	writeThrough(b, setupBase+mapper.SetupKind, uint8(kind))
	writeThrough(b, setupBase+mapper.SetupROMSize, c.header.ROMSizeClass)
	writeThrough(b, setupBase+mapper.SetupRAMSize, c.header.RAMSizeClass)
	writeThrough(b, setupBase+mapper.SetupROMMaskLo, uint8(romMask))
	writeThrough(b, setupBase+mapper.SetupROMMaskHi, uint8(romMask>>8))
	writeThrough(b, setupBase+mapper.SetupRAMMask, ramMask)
	writeThrough(b, setupBase+mapper.SetupFeatures, mapper.FeaturesFromHeader(c.header.MapperType))
	// compatibility byte at $0143: CGB-aware or CGB-only
	writeThrough(b, setupBase+mapper.SetupPlatform, c.HeaderByte(0x0143))
	writeThrough(b, addrBootLock, 0x01)
}

// writeThrough presents one write request until the bus completes it.
func writeThrough(b *Bus, addr uint16, data uint8) {
	req := &Request{Addr: addr, Write: true, Data: data}
	for i := 0; i < 1024; i++ {
		if b.Tick(req).Status == StatusDone {
			return
		}
	}
}
