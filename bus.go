package main

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"

	"gbc-bus/mapper"
)

// Request is one CPU-side bus access, created fresh each cycle the
// initiator asserts a valid access.
type Request struct {
	Addr  uint16
	Write bool
	Data  uint8
}

// Status is the three-valued handshake returned from Tick.
type Status uint8

const (
	// StatusNone: no request was presented this tick.
	StatusNone Status = iota
	// StatusBusy: stalled; the caller must re-present the same request
	// unchanged on the next tick.
	StatusBusy
	// StatusRetry: this cycle produced no result and no side effects;
	// the caller pauses but need not resend identical input.
	StatusRetry
	// StatusDone: completed; Data carries the value for reads.
	StatusDone
)

type Result struct {
	Status Status
	Data   uint8
}

// BackingStore is what a target adapter plugs in as: the transaction
// contract plus the direct port the copy engines use.
type BackingStore interface {
	Target
	DirectPort
}

// Bus routes every CPU-side access to the correct backing store,
// enforces single-flight per target, and overlays the DMA/HDMA copy
// engines on top of ordinary traffic.
type Bus struct {
	regs    Registers
	decoder Decoder
	mapper  *mapper.Controller

	targets [targetCount]Target
	ports   [targetCount]DirectPort

	inflight    [targetCount]bool
	resolved    [targetCount]bool
	resolvedVal [targetCount]uint8

	dma           DMAUnit
	hdma          HDMAUnit
	hblankPending bool

	stalledReq *Request
	debug      bool
	logger     *log.Logger
}

// NewBus wires the four target adapters to the arbiter.
func NewBus(cart, video, wram, io BackingStore) *Bus {
	b := &Bus{mapper: mapper.NewController()}
	b.decoder.regs = &b.regs
	b.targets = [targetCount]Target{cart, video, wram, io}
	b.ports = [targetCount]DirectPort{cart, video, wram, io}
	return b
}

// NewSystemBus builds a bus over default fixed-latency stores for the
// given cartridge image.
func NewSystemBus(rom, ram []uint8) *Bus {
	return NewBus(
		NewCartridgeStore(rom, ram, 1),
		NewRAMStore(int(oamBase)+oamSize, 1),
		NewRAMStore(8*wramBankSize, 1),
		NewIOBlock(1),
	)
}

func (b *Bus) SetLogger(logger *log.Logger) {
	b.logger = logger
}

// SetDebug makes single-flight and stall-stability violations panic
// instead of logging and stalling.
func (b *Bus) SetDebug(debug bool) {
	b.debug = debug
}

// Tick advances the whole memory subsystem by one cycle and services at
// most one CPU request. A nil req is an idle cycle.
func (b *Bus) Tick(req *Request) Result {
	for tag := range b.resolved {
		b.resolved[tag] = false
	}
	for _, t := range b.targets {
		t.Tick()
	}
	b.stepDMA()
	transferring := b.stepHDMA()

	// collect arrived responses, clearing the single-flight slots
	for tag := range b.targets {
		if !b.inflight[tag] {
			continue
		}
		if v, ok := b.targets[tag].PollResponse(); ok {
			b.inflight[tag] = false
			b.resolved[tag] = true
			b.resolvedVal[tag] = v
		}
	}

	res := b.dispatch(req, transferring)
	b.trackStall(req, res)
	return res
}

func (b *Bus) dispatch(req *Request, hdmaBusy bool) Result {
	if b.dmaWatchdogTripped() {
		// the system is not keeping pace with DMA: hold everything
		if req == nil {
			return Result{Status: StatusNone}
		}
		return Result{Status: StatusBusy}
	}
	if hdmaBusy {
		if req == nil {
			return Result{Status: StatusNone}
		}
		return Result{Status: StatusRetry}
	}
	if req == nil {
		return Result{Status: StatusNone}
	}

	if b.dma.active && req.Addr < 0xFF00 {
		// the copy engine owns the bus: reads see the open-bus
		// sentinel, writes are dropped
		if req.Write {
			return Result{Status: StatusDone}
		}
		return Result{Status: StatusDone, Data: 0xFF}
	}

	acc := b.decoder.Decode(req.Addr, req.Write)
	switch acc.Tag {
	case TagInternal:
		return b.serviceLocal(req)
	case TagCartridge:
		return b.serviceCartridge(req)
	default:
		return b.serviceTarget(acc.Tag, acc.Addr, req)
	}
}

// serviceTarget runs the single-flight protocol for one target: deliver
// an arrived response, otherwise wait on the outstanding transaction,
// otherwise issue a new one.
func (b *Bus) serviceTarget(tag TargetTag, addr uint32, req *Request) Result {
	if b.resolved[tag] {
		return Result{Status: StatusDone, Data: b.resolvedVal[tag]}
	}
	if b.inflight[tag] {
		return Result{Status: StatusBusy}
	}
	t := b.targets[tag]
	if t.Busy() {
		return Result{Status: StatusBusy}
	}
	if !t.Issue(addr, req.Write, req.Data) {
		return Result{Status: StatusBusy}
	}
	if v, ok := t.PollResponse(); ok {
		// zero-latency adapters complete within the cycle
		return Result{Status: StatusDone, Data: v}
	}
	b.inflight[tag] = true
	return Result{Status: StatusBusy}
}

func (b *Bus) serviceCartridge(req *Request) Result {
	if req.Addr < 0x8000 {
		if req.Write {
			// bank-select and enable registers, zero added latency
			b.mapper.Write(req.Addr, req.Data)
			return Result{Status: StatusDone}
		}
		return b.serviceTarget(TagCartridge, b.mapper.ROMIndex(req.Addr), req)
	}
	off, target := b.mapper.RAMIndex(req.Addr)
	switch target {
	case mapper.RAMNone:
		if req.Write {
			return Result{Status: StatusDone}
		}
		return Result{Status: StatusDone, Data: 0xFF}
	case mapper.RAMClock:
		if req.Write {
			b.mapper.ClockWrite(off, req.Data)
			return Result{Status: StatusDone}
		}
		return Result{Status: StatusDone, Data: b.mapper.ClockRead(off)}
	default:
		return b.serviceTarget(TagCartridge, cartRAMSpace|off, req)
	}
}

func (b *Bus) serviceLocal(req *Request) Result {
	if req.Write {
		b.localWrite(req.Addr, req.Data)
		return Result{Status: StatusDone}
	}
	return Result{Status: StatusDone, Data: b.localRead(req.Addr)}
}

func (b *Bus) localWrite(addr uint16, v uint8) {
	switch {
	case addr >= setupBase && addr < setupBase+mapper.SetupSize:
		b.mapper.WriteSetup(int(addr-setupBase), v)
	case addr >= hramBase && addr <= 0xFFFE:
		b.regs.HRAM[addr-hramBase] = v
	case addr == addrDMA:
		b.regs.DMA = v
		b.triggerDMA(v)
	case addr == addrVBK:
		b.regs.VRAMBank = v & 0x01
	case addr == addrSVBK:
		b.regs.WRAMBank = v & 0x07
	case addr == addrBootLock:
		// write-once-effective
		if v != 0 && !b.regs.Locked {
			b.regs.Locked = true
			b.mapper.Lock()
		}
	case addr >= addrHDMA1 && addr <= addrHDMA5:
		b.writeHDMA(addr, v)
	}
	// $FEA8-$FEFF and anything unmatched: dropped
}

func (b *Bus) localRead(addr uint16) uint8 {
	switch {
	case addr >= setupBase && addr < setupBase+mapper.SetupSize:
		// last stored byte; reads stay legal after lock
		return b.mapper.ReadSetup(int(addr - setupBase))
	case addr >= hramBase && addr <= 0xFFFE:
		return b.regs.HRAM[addr-hramBase]
	case addr == addrDMA:
		return b.regs.DMA
	case addr == addrVBK:
		return b.regs.VRAMBank | 0xFE
	case addr == addrSVBK:
		return b.regs.WRAMBank | 0xF8
	case addr == addrBootLock:
		if b.regs.Locked {
			return 0xFF
		}
		return 0xFE
	case addr == addrHDMA5:
		return b.readHDMA5()
	}
	return 0xFF
}

// trackStall enforces the stable-input-while-stalled contract: a caller
// that saw Busy must re-present the identical request.
func (b *Bus) trackStall(req *Request, res Result) {
	if res.Status != StatusBusy || req == nil {
		b.stalledReq = nil
		return
	}
	if b.stalledReq == nil {
		r := *req
		b.stalledReq = &r
		return
	}
	if *b.stalledReq != *req {
		if b.debug {
			panic(fmt.Sprintf("bus: request changed while stalled: %04X -> %04X",
				b.stalledReq.Addr, req.Addr))
		}
		if b.logger != nil {
			b.logger.Warn("request changed while stalled",
				log.Hex("was", b.stalledReq.Addr),
				log.Hex("now", req.Addr))
		}
	}
}

// Stalled is the externally visible stall signal: any target
// backpressure, any unresolved outstanding transaction, or the DMA
// watchdog.
func (b *Bus) Stalled() bool {
	if b.dmaWatchdogTripped() {
		return true
	}
	for tag, t := range b.targets {
		if t.Busy() || b.inflight[tag] {
			return true
		}
	}
	return false
}

// HBlank is the video collaborator's horizontal-blank notification; it
// releases one HBlank-gated HDMA block on the next tick.
func (b *Bus) HBlank() {
	b.hblankPending = true
}

// AdvanceClock feeds elapsed wall time to the cartridge RTC.
func (b *Bus) AdvanceClock(seconds uint32) {
	b.mapper.AdvanceClock(seconds)
}

// Reset is sampled at the start of a tick: it clears all outstanding
// transactions, both copy engines and any stall in one synchronous step,
// and reopens the mapper configuration phase.
func (b *Bus) Reset() {
	for tag := range b.inflight {
		b.inflight[tag] = false
		b.resolved[tag] = false
	}
	b.dma = DMAUnit{}
	b.hdma = HDMAUnit{}
	b.hblankPending = false
	b.stalledReq = nil
	b.regs.Reset()
	b.mapper.Reset()
	for _, t := range b.targets {
		if f, ok := t.(interface{ Flush() }); ok {
			f.Flush()
		}
	}
	if b.logger != nil {
		b.logger.Debug("bus reset")
	}
}

// Peek reads a bus address without side effects, through the same
// decode and direct ports; monitors and tests use it.
func (b *Bus) Peek(addr uint16) uint8 {
	acc := b.decoder.Decode(addr, false)
	switch acc.Tag {
	case TagInternal:
		return b.localRead(addr)
	case TagCartridge:
		if addr < 0x8000 {
			return b.ports[TagCartridge].Peek(b.mapper.ROMIndex(addr))
		}
		off, target := b.mapper.RAMIndex(addr)
		switch target {
		case mapper.RAMNone:
			return 0xFF
		case mapper.RAMClock:
			return b.mapper.ClockRead(off)
		default:
			return b.ports[TagCartridge].Peek(cartRAMSpace | off)
		}
	default:
		return b.ports[acc.Tag].Peek(acc.Addr)
	}
}

// Mapper exposes the bank controller for monitors and the firmware
// programming step.
func (b *Bus) Mapper() *mapper.Controller {
	return b.mapper
}

// DMARemaining reports bytes left in an active OAM DMA, 0 when idle.
func (b *Bus) DMARemaining() int {
	if !b.dma.active {
		return 0
	}
	return b.dma.remaining
}

// HDMABlocks reports 16-byte blocks left in an active HDMA, 0 when idle.
func (b *Bus) HDMABlocks() int {
	if !b.hdma.active {
		return 0
	}
	return b.hdma.blocks
}
