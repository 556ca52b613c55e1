package main

import (
	"flag"
	"fmt"
	"image/color"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/examples/resources/fonts"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

const (
	screenWidth  = 1280
	screenHeight = 900
)

// Game is the bus monitor: it runs the memory subsystem and shows the
// decoded state of its regions, the mapper and the copy engines.
type Game struct {
	bus           *Bus
	cart          *Cartridge
	defaultFont   font.Face
	logger        *log.Logger
	running       bool
	ticksPerFrame int
	ticks         uint64
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.running = !g.running
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.bus.Reset()
		g.cart.Program(g.bus)
		g.logger.Info("reset")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		// demo OAM DMA out of the cartridge
		g.bus.Tick(&Request{Addr: addrDMA, Write: true, Data: 0x20})
		g.ticks++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.bus.HBlank()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		g.bus.AdvanceClock(1)
	}

	if g.running {
		for i := 0; i < g.ticksPerFrame; i++ {
			g.bus.Tick(nil)
			g.ticks++
		}
	} else if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.bus.Tick(nil)
		g.ticks++
	}
	return nil
}

func numToHex(n int, d int) string {
	format := "%0" + strconv.Itoa(d) + "x"
	return fmt.Sprintf(format, n)
}

func (g *Game) getDefaultFont() font.Face {
	if g.defaultFont != nil {
		return g.defaultFont
	}
	tt, err := opentype.Parse(fonts.MPlus1pRegular_ttf)
	if err != nil {
		g.logger.Fatal(err.Error())
	}
	const dpi = 72 * 2
	mplusNormalFont, err := opentype.NewFace(tt, &opentype.FaceOptions{
		Size:    8,
		DPI:     dpi,
		Hinting: font.HintingNone,
	})
	if err != nil {
		g.logger.Fatal(err.Error())
	}
	g.defaultFont = mplusNormalFont
	return g.defaultFont
}

var (
	WHITE = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	GREEN = color.RGBA{G: 0xFF, A: 0xFF}
	RED   = color.RGBA{R: 0xFF, A: 0xFF}
)

func (g *Game) DrawString(screen *ebiten.Image, x int, y int, str string, clr color.RGBA) {
	text.Draw(screen, str, g.getDefaultFont(), x, y, clr)
}

// DrawRegion hex-dumps a bus region through the side-effect-free peek
// path.
func (g *Game) DrawRegion(screen *ebiten.Image, x int, y int, addr uint16, nRows int, nColumns int) {
	for row := 0; row < nRows; row++ {
		sOffset := fmt.Sprintf("%s:", numToHex(int(addr), 4))
		for col := 0; col < nColumns; col++ {
			sOffset = fmt.Sprintf("%s %s", sOffset, numToHex(int(g.bus.Peek(addr)), 2))
			addr++
		}
		ebitenutil.DebugPrintAt(screen, sOffset, x, y)
		y += 16
	}
}

func (g *Game) DrawBusState(screen *ebiten.Image, x, y int) {
	lineSize := 24
	mc := g.bus.Mapper()
	g.DrawString(screen, x, y, fmt.Sprintf("MAPPER: %s", mc.Kind()), WHITE)

	lockColor := RED
	if mc.Locked() {
		lockColor = GREEN
	}
	g.DrawString(screen, x, y+lineSize, "CONFIG LOCKED", lockColor)

	dmaColor := RED
	if g.bus.DMARemaining() > 0 {
		dmaColor = GREEN
	}
	g.DrawString(screen, x, y+(lineSize*2),
		fmt.Sprintf("DMA: %d bytes left", g.bus.DMARemaining()), dmaColor)

	hdmaColor := RED
	if g.bus.HDMABlocks() > 0 {
		hdmaColor = GREEN
	}
	g.DrawString(screen, x, y+(lineSize*3),
		fmt.Sprintf("HDMA: %d blocks left", g.bus.HDMABlocks()), hdmaColor)

	stallColor := RED
	if g.bus.Stalled() {
		stallColor = GREEN
	}
	g.DrawString(screen, x, y+(lineSize*4), "STALL", stallColor)

	g.DrawString(screen, x, y+(lineSize*5), fmt.Sprintf("Ticks: %d", g.ticks), WHITE)
	g.DrawString(screen, x, y+(lineSize*6),
		"SPACE run  S step  D dma  H hblank  T rtc  R reset", WHITE)
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.DrawString(screen, 10, 20, "ROM $0000", WHITE)
	g.DrawRegion(screen, 10, 30, 0x0000, 8, 16)
	g.DrawString(screen, 10, 180, "WRAM $C000", WHITE)
	g.DrawRegion(screen, 10, 190, 0xC000, 8, 16)
	g.DrawString(screen, 10, 340, "WRAM $D000 (banked)", WHITE)
	g.DrawRegion(screen, 10, 350, 0xD000, 8, 16)
	g.DrawString(screen, 10, 500, "VRAM $8000", WHITE)
	g.DrawRegion(screen, 10, 510, 0x8000, 8, 16)
	g.DrawString(screen, 10, 660, "OAM $FE00", WHITE)
	g.DrawRegion(screen, 10, 670, 0xFE00, 10, 16)
	g.DrawString(screen, 620, 20, "HRAM $FF80", WHITE)
	g.DrawRegion(screen, 620, 30, 0xFF80, 8, 16)

	g.DrawBusState(screen, 620, 220)
}

func (g *Game) Layout(outsideWidth int, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	debug := flag.Bool("debug", false, "panic on bus invariant violations and log at debug level")
	ticksPerFrame := flag.Int("ticks", 1024, "bus cycles to run per displayed frame")
	flag.Parse()

	cfg := log.DefaultConfig()
	if *debug {
		cfg.Level = log.DebugLevel
	}
	logger := log.NewWithConfig(cfg)

	if flag.NArg() != 1 {
		logger.Fatal("usage: gbc-bus [flags] <cartridge image>")
	}

	cart, err := NewCartridge(flag.Arg(0))
	if err != nil {
		logger.Fatal("loading cartridge failed", log.Err(err))
	}

	bus := NewSystemBus(cart.rom, cart.ram)
	bus.SetLogger(logger)
	bus.SetDebug(*debug)
	cart.Program(bus)

	logger.Info("cartridge loaded",
		log.String("title", cart.Title()),
		log.String("mapper", bus.Mapper().Kind().String()),
		log.String("rom_banks", strconv.Itoa(int(cart.ROMBanks()))),
		log.String("ram_banks", strconv.Itoa(int(cart.RAMBanks()))))

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("gbc-bus monitor")
	if err := ebiten.RunGame(&Game{
		bus:           bus,
		cart:          cart,
		logger:        logger,
		ticksPerFrame: *ticksPerFrame,
	}); err != nil {
		logger.Fatal("monitor exited", log.Err(err))
	}
}
