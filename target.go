package main

// Target is the request/response contract every backing store exposes:
// issue at most one transaction, poll for its response, and a busy flag
// for backpressure. The arbiter depends on nothing else.
type Target interface {
	Tick()
	Busy() bool
	Issue(addr uint32, isWrite bool, data uint8) bool
	PollResponse() (uint8, bool)
}

// DirectPort is the dedicated copy path the DMA engines use; it bypasses
// the transaction machinery the way the hardware's DMA port bypasses the
// CPU port.
type DirectPort interface {
	Peek(addr uint32) uint8
	Poke(addr uint32, data uint8)
}

// Store is a fixed-latency byte store behind the Target contract. The
// backing read/write functions let one store serve split address spaces
// (cartridge ROM+RAM, VRAM+OAM) without widening the contract.
type Store struct {
	read  func(addr uint32) uint8
	write func(addr uint32, data uint8)

	latency   int
	countdown int
	pending   bool
	isWrite   bool
	addr      uint32
	data      uint8
	resp      uint8
	hasResp   bool
	stalled   bool
}

// NewRAMStore builds a store over a fresh byte slice.
func NewRAMStore(size int, latency int) *Store {
	buf := make([]uint8, size)
	return NewStore(
		func(addr uint32) uint8 { return buf[addr%uint32(size)] },
		func(addr uint32, data uint8) { buf[addr%uint32(size)] = data },
		latency,
	)
}

// NewCartridgeStore serves a ROM image and cartridge RAM as one target;
// RAM offsets carry the cartRAMSpace bit. ROM writes never reach the
// store, the mapper intercepts them, so the write path only knows RAM.
func NewCartridgeStore(rom, ram []uint8, latency int) *Store {
	return NewStore(
		func(addr uint32) uint8 {
			if addr&cartRAMSpace != 0 {
				if len(ram) == 0 {
					return 0xFF
				}
				return ram[(addr&^cartRAMSpace)%uint32(len(ram))]
			}
			if len(rom) == 0 {
				return 0xFF
			}
			return rom[addr%uint32(len(rom))]
		},
		func(addr uint32, data uint8) {
			if addr&cartRAMSpace != 0 && len(ram) > 0 {
				ram[(addr&^cartRAMSpace)%uint32(len(ram))] = data
			}
		},
		latency,
	)
}

func NewStore(read func(uint32) uint8, write func(uint32, uint8), latency int) *Store {
	return &Store{read: read, write: write, latency: latency}
}

func (s *Store) Tick() {
	if !s.pending {
		return
	}
	s.countdown--
	if s.countdown <= 0 {
		s.complete()
	}
}

func (s *Store) complete() {
	if s.isWrite {
		s.write(s.addr, s.data)
		s.resp = s.data
	} else {
		s.resp = s.read(s.addr)
	}
	s.pending = false
	s.hasResp = true
}

func (s *Store) Busy() bool {
	return s.pending || s.stalled
}

func (s *Store) Issue(addr uint32, isWrite bool, data uint8) bool {
	if s.pending || s.stalled {
		return false
	}
	s.addr = addr
	s.isWrite = isWrite
	s.data = data
	s.hasResp = false
	if s.latency <= 0 {
		s.complete()
		return true
	}
	s.pending = true
	s.countdown = s.latency
	return true
}

func (s *Store) PollResponse() (uint8, bool) {
	if !s.hasResp {
		return 0, false
	}
	s.hasResp = false
	return s.resp, true
}

func (s *Store) Peek(addr uint32) uint8 {
	return s.read(addr)
}

func (s *Store) Poke(addr uint32, data uint8) {
	s.write(addr, data)
}

// SetStalled drives the store's external backpressure input, e.g. the
// video store while the pixel pipeline holds OAM.
func (s *Store) SetStalled(stalled bool) {
	s.stalled = stalled
}

// Flush drops any in-flight transaction; used on bus reset so a stale
// response cannot surface against a later request.
func (s *Store) Flush() {
	s.pending = false
	s.hasResp = false
}
