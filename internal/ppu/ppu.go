package ppu

// InterruptRequester requests an IF bit (0:VBlank, 1:STAT, 2:Timer, 3:Serial, 4:Joypad).
type InterruptRequester func(bit int)

// LineRegs captures the window-layer state latched for one scanline at the
// moment pixel transfer (mode 3) begins, so the renderer and tests can see
// exactly what was visible for that line.
type LineRegs struct {
	WinLine   byte
	WinVisible bool
}

// PPU models VRAM/OAM, the LCDC/STAT register block, and the mode 2/3/0/1
// state machine that drives one 160x144 frame every 70224 dots. STAT raises
// an interrupt on the rising edge of the OR of its four selectable
// conditions (LYC coincidence, mode 0, mode 1, mode 2), not once per
// condition independently.
type PPU struct {
	vram [0x2000]byte // 0x8000-0x9FFF
	oam  [0xA0]byte   // 0xFE00-0xFE9F

	lcdc byte
	stat byte // bits0-1 mode, bit2 coincidence, bits3-6 enables
	scy  byte
	scx  byte
	ly   byte
	lyc  byte
	bgp  byte
	obp0 byte
	obp1 byte
	wy   byte
	wx   byte

	dot int

	statLevel  bool
	windowLine byte
	lineRegs   [154]LineRegs

	frame      [144][160]byte
	frameReady bool

	req InterruptRequester
}

func New(req InterruptRequester) *PPU { return &PPU{req: req} }

// Read gives the internal fetcher/sprite compositor raw VRAM access,
// unaffected by the CPU-visibility blocking CPURead enforces.
func (p *PPU) Read(addr uint16) byte {
	if addr >= 0x8000 && addr <= 0x9FFF {
		return p.vram[addr-0x8000]
	}
	return 0xFF
}

func (p *PPU) CPURead(addr uint16) byte {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if p.stat&0x03 == 3 {
			return 0xFF
		}
		return p.vram[addr-0x8000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		m := p.stat & 0x03
		if m == 2 || m == 3 {
			return 0xFF
		}
		return p.oam[addr-0xFE00]
	case addr == 0xFF40:
		return p.lcdc
	case addr == 0xFF41:
		return 0x80 | (p.stat & 0x7F)
	case addr == 0xFF42:
		return p.scy
	case addr == 0xFF43:
		return p.scx
	case addr == 0xFF44:
		return p.ly
	case addr == 0xFF45:
		return p.lyc
	case addr == 0xFF47:
		return p.bgp
	case addr == 0xFF48:
		return p.obp0
	case addr == 0xFF49:
		return p.obp1
	case addr == 0xFF4A:
		return p.wy
	case addr == 0xFF4B:
		return p.wx
	default:
		return 0xFF
	}
}

// OAMWriteDMA is the destination for the atomic OAM DMA transfer the bus
// performs in a single call; it bypasses the mode-2/3 CPU lockout since DMA
// is driven by dedicated hardware, not the CPU bus.
func (p *PPU) OAMWriteDMA(data []byte) {
	n := copy(p.oam[:], data)
	for i := n; i < len(p.oam); i++ {
		p.oam[i] = 0xFF
	}
}

func (p *PPU) CPUWrite(addr uint16, value byte) {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if p.stat&0x03 == 3 {
			return
		}
		p.vram[addr-0x8000] = value
	case addr >= 0xFE00 && addr <= 0xFE9F:
		m := p.stat & 0x03
		if m == 2 || m == 3 {
			return
		}
		p.oam[addr-0xFE00] = value
	case addr == 0xFF40:
		prev := p.lcdc
		p.lcdc = value
		if prev&0x80 != 0 && value&0x80 == 0 {
			p.ly = 0
			p.dot = 0
			p.windowLine = 0
			p.setMode(0)
			p.statLevel = false
		} else if prev&0x80 == 0 && value&0x80 != 0 {
			p.ly = 0
			p.dot = 0
			p.windowLine = 0
			p.setMode(2)
			p.updateLYC()
			p.updateStatLine()
		}
	case addr == 0xFF41:
		p.stat = (p.stat & 0x07) | (value & 0x78)
		p.updateStatLine()
	case addr == 0xFF42:
		p.scy = value
	case addr == 0xFF43:
		p.scx = value
	case addr == 0xFF44:
		// LY is read-only; writes are silently ignored.
	case addr == 0xFF45:
		p.lyc = value
		p.updateLYC()
		p.updateStatLine()
	case addr == 0xFF47:
		p.bgp = value
	case addr == 0xFF48:
		p.obp0 = value
	case addr == 0xFF49:
		p.obp1 = value
	case addr == 0xFF4A:
		p.wy = value
	case addr == 0xFF4B:
		p.wx = value
	}
}

// Tick advances the PPU by the given number of dots (= 4 per machine cycle)
// and reports whether a complete frame became available during the advance.
func (p *PPU) Tick(dots int) (frameReady bool) {
	for i := 0; i < dots; i++ {
		if p.lcdc&0x80 == 0 {
			continue
		}
		p.dot++

		var mode byte
		if p.ly >= 144 {
			mode = 1
		} else {
			switch {
			case p.dot < 80:
				mode = 2
			case p.dot < 80+172:
				mode = 3
			default:
				mode = 0
			}
		}
		prevMode := p.stat & 0x03
		p.setMode(mode)
		if prevMode != 3 && mode == 3 {
			p.captureLineRegs()
		}
		if prevMode == 3 && mode == 0 && p.ly < 144 {
			p.renderLine(p.ly)
		}

		if p.dot >= 456 {
			p.dot = 0
			p.ly++
			if p.ly == 144 {
				if p.req != nil {
					p.req(0)
				}
				p.frameReady = true
				frameReady = true
			} else if p.ly > 153 {
				p.ly = 0
				p.windowLine = 0
			}
			p.updateLYC()
			if p.ly >= 144 {
				p.setMode(1)
			} else {
				p.setMode(2)
			}
		}
		p.updateStatLine()
	}
	return frameReady
}

func (p *PPU) setMode(mode byte) {
	p.stat = (p.stat &^ 0x03) | (mode & 0x03)
}

func (p *PPU) updateLYC() {
	if p.ly == p.lyc {
		p.stat |= 1 << 2
	} else {
		p.stat &^= 1 << 2
	}
}

// updateStatLine recomputes the combined STAT condition level and requests
// an interrupt only on a false->true transition, per the redesigned
// rising-edge-of-OR semantics.
func (p *PPU) updateStatLine() {
	level := p.statConditionLevel()
	if level && !p.statLevel && p.req != nil {
		p.req(1)
	}
	p.statLevel = level
}

func (p *PPU) statConditionLevel() bool {
	mode := p.stat & 0x03
	if p.stat&(1<<6) != 0 && p.stat&(1<<2) != 0 {
		return true
	}
	if p.stat&(1<<3) != 0 && mode == 0 {
		return true
	}
	if p.stat&(1<<5) != 0 && mode == 2 {
		return true
	}
	if p.stat&(1<<4) != 0 && mode == 1 {
		return true
	}
	return false
}

// captureLineRegs records the window-visibility snapshot used to render and
// test the current scanline, and advances the internal window line counter
// on lines where the window is actually drawn.
func (p *PPU) captureLineRegs() {
	visible := p.lcdc&0x20 != 0 && p.ly >= p.wy && p.wx <= 166
	if visible {
		p.lineRegs[p.ly] = LineRegs{WinLine: p.windowLine, WinVisible: true}
		p.windowLine++
	} else {
		p.lineRegs[p.ly] = LineRegs{}
	}
}

// LineRegs returns the window snapshot captured for scanline y.
func (p *PPU) LineRegs(y int) LineRegs {
	if y < 0 || y >= len(p.lineRegs) {
		return LineRegs{}
	}
	return p.lineRegs[y]
}

func shade(palette, ci byte) byte { return (palette >> (ci * 2)) & 0x03 }

// renderLine composes background, window, and sprite layers for one
// scanline into the frame buffer, applying BGP/OBP0/OBP1 at the end as real
// hardware does (DMG has no separate per-layer color space).
func (p *PPU) renderLine(ly byte) {
	var bg [160]byte
	if p.lcdc&0x01 != 0 {
		mapBase := uint16(0x9800)
		if p.lcdc&0x08 != 0 {
			mapBase = 0x9C00
		}
		tileData8000 := p.lcdc&0x10 != 0
		bg = RenderBGScanlineUsingFetcher(p, mapBase, tileData8000, p.scx, p.scy, ly)
	}

	lr := p.LineRegs(int(ly))
	if lr.WinVisible {
		winMapBase := uint16(0x9800)
		if p.lcdc&0x40 != 0 {
			winMapBase = 0x9C00
		}
		tileData8000 := p.lcdc&0x10 != 0
		wxStart := int(p.wx) - 7
		win := RenderWindowScanlineUsingFetcher(p, winMapBase, tileData8000, wxStart, lr.WinLine)
		for x := wxStart; x < 160; x++ {
			if x < 0 {
				continue
			}
			bg[x] = win[x]
		}
	}

	var out [160]byte
	for x := 0; x < 160; x++ {
		out[x] = shade(p.bgp, bg[x])
	}

	if p.lcdc&0x02 != 0 {
		tall := p.lcdc&0x04 != 0
		sprites := spritesOnLine(&p.oam, ly, tall)
		colors, pal, present := composeSpriteLineDetailed(p, sprites, ly, bg, tall)
		for x := 0; x < 160; x++ {
			if !present[x] {
				continue
			}
			palette := p.obp0
			if pal[x] == 1 {
				palette = p.obp1
			}
			out[x] = shade(palette, colors[x])
		}
	}

	p.frame[ly] = out
}

// Frame returns the most recently completed 160x144 buffer of 2-bit shades.
func (p *PPU) Frame() [144][160]byte { return p.frame }

// ConsumeFrameReady reports and clears the pending-frame flag set when LY
// reaches 144, so a host loop can poll once per call to Tick's caller chain.
func (p *PPU) ConsumeFrameReady() bool {
	v := p.frameReady
	p.frameReady = false
	return v
}

func (p *PPU) BGP() byte  { return p.bgp }
func (p *PPU) OBP0() byte { return p.obp0 }
func (p *PPU) OBP1() byte { return p.obp1 }
func (p *PPU) LCDC() byte { return p.lcdc }
func (p *PPU) SCY() byte  { return p.scy }
func (p *PPU) SCX() byte  { return p.scx }
func (p *PPU) WY() byte   { return p.wy }
func (p *PPU) WX() byte   { return p.wx }
