// Package bus wires the full CPU-visible 16-bit address space together:
// cartridge ROM/RAM, VRAM/OAM via the pixel generator, work RAM and its echo
// mirror, high RAM, and the timer/input/interrupt register block.
package bus

import (
	"io"

	"github.com/jrhale/lr35902emu/internal/apu"
	"github.com/jrhale/lr35902emu/internal/cart"
	"github.com/jrhale/lr35902emu/internal/input"
	"github.com/jrhale/lr35902emu/internal/ppu"
	"github.com/jrhale/lr35902emu/internal/timer"
)

// Interrupt source bits in IE/IF.
const (
	IntVBlank = 1 << 0
	IntSTAT   = 1 << 1
	IntTimer  = 1 << 2
	IntSerial = 1 << 3
	IntJoypad = 1 << 4
)

// Bus implements the full memory map described in SPEC_FULL.md's data
// model: cartridge, VRAM/OAM (via PPU), WRAM+echo, HRAM, and IO registers.
type Bus struct {
	cart cart.Cartridge
	ppu  *ppu.PPU
	tmr  *timer.Timer
	in   *input.Input
	apu  *apu.APU

	wram [0x2000]byte // 0xC000-0xDFFF, echoed at 0xE000-0xFDFF
	hram [0x7F]byte   // 0xFF80-0xFFFE

	ie    byte // 0xFFFF
	ifReg byte // 0xFF0F, lower 5 bits

	sb byte      // 0xFF01
	sc byte      // 0xFF02
	sw io.Writer // optional serial output sink

	dma byte // 0xFF46, last bank written

	bootROM     []byte
	bootEnabled bool
}

// New constructs a Bus around a ROM-only cartridge, for quick tests and
// tools that don't care about bank controllers.
func New(rom []byte) *Bus {
	return NewWithCartridge(cart.NewROMOnly(rom))
}

// NewWithCartridge wires a Bus around a caller-supplied cartridge
// (typically built via cart.New from a parsed header).
func NewWithCartridge(c cart.Cartridge) *Bus {
	b := &Bus{cart: c, tmr: timer.New(), in: input.New(), apu: apu.New()}
	b.ppu = ppu.New(func(bit int) { b.ifReg |= 1 << bit })
	return b
}

func (b *Bus) PPU() *ppu.PPU        { return b.ppu }
func (b *Bus) Cart() cart.Cartridge { return b.cart }

// SetSerialWriter sets a sink that receives bytes written via the serial
// port. Without one, serial writes still clear the transfer bit and raise
// the interrupt, but the byte goes nowhere (no link-cable peer exists).
func (b *Bus) SetSerialWriter(w io.Writer) { b.sw = w }

// SetBootROM loads a 256-byte DMG boot ROM overlaying 0x0000-0x00FF until a
// write to 0xFF50 disables it.
func (b *Bus) SetBootROM(data []byte) {
	b.bootROM = nil
	b.bootEnabled = false
	if len(data) >= 0x100 {
		b.bootROM = make([]byte, 0x100)
		copy(b.bootROM, data[:0x100])
		b.bootEnabled = true
	}
}

// SetJoypadState sets which buttons are currently pressed (bitmask using
// the input package's Right/Left/.../Start constants).
func (b *Bus) SetJoypadState(mask byte) {
	if b.in.Tick(mask) {
		b.ifReg |= IntJoypad
	}
}

func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		if b.bootEnabled && addr < 0x0100 && len(b.bootROM) >= 0x100 {
			return b.bootROM[addr]
		}
		return b.cart.Read(addr)
	case addr <= 0x9FFF:
		return b.ppu.CPURead(addr)
	case addr <= 0xBFFF:
		return b.cart.Read(addr)
	case addr <= 0xDFFF:
		return b.wram[addr-0xC000]
	case addr <= 0xFDFF:
		return b.wram[addr-0x2000-0xC000]
	case addr <= 0xFE9F:
		return b.ppu.CPURead(addr)
	case addr <= 0xFEFF:
		return 0xFF
	case addr == 0xFF00:
		return b.in.Read()
	case addr == 0xFF01:
		return b.sb
	case addr == 0xFF02:
		return 0x7E | (b.sc & 0x81)
	case addr == 0xFF04:
		return b.tmr.DIV()
	case addr == 0xFF05:
		return b.tmr.TIMA()
	case addr == 0xFF06:
		return b.tmr.TMA()
	case addr == 0xFF07:
		return b.tmr.TAC()
	case addr == 0xFF0F:
		return 0xE0 | (b.ifReg & 0x1F)
	case addr >= 0xFF10 && addr <= 0xFF3F:
		return b.apu.Read(addr)
	case addr == 0xFF40, addr == 0xFF41, addr == 0xFF42, addr == 0xFF43,
		addr == 0xFF44, addr == 0xFF45,
		addr == 0xFF47, addr == 0xFF48, addr == 0xFF49,
		addr == 0xFF4A, addr == 0xFF4B:
		return b.ppu.CPURead(addr)
	case addr == 0xFF46:
		return b.dma
	case addr == 0xFF50:
		return 0xFF
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return b.hram[addr-0xFF80]
	case addr == 0xFFFF:
		return b.ie
	default:
		return 0xFF
	}
}

func (b *Bus) Write(addr uint16, value byte) {
	switch {
	case addr < 0x8000:
		b.cart.Write(addr, value)
	case addr <= 0x9FFF:
		b.ppu.CPUWrite(addr, value)
	case addr <= 0xBFFF:
		b.cart.Write(addr, value)
	case addr <= 0xDFFF:
		b.wram[addr-0xC000] = value
	case addr <= 0xFDFF:
		b.wram[addr-0x2000-0xC000] = value
	case addr <= 0xFE9F:
		b.ppu.CPUWrite(addr, value)
	case addr <= 0xFEFF:
		// unusable region, writes ignored
	case addr == 0xFF00:
		b.in.WriteSelect(value)
	case addr == 0xFF01:
		b.sb = value
	case addr == 0xFF02:
		b.sc = value & 0x81
		if b.sc&0x80 != 0 {
			if b.sw != nil {
				_, _ = b.sw.Write([]byte{b.sb})
			}
			b.ifReg |= IntSerial
			b.sc &^= 0x80
		}
	case addr == 0xFF04:
		b.tmr.WriteDIV()
	case addr == 0xFF05:
		b.tmr.WriteTIMA(value)
	case addr == 0xFF06:
		b.tmr.WriteTMA(value)
	case addr == 0xFF07:
		b.tmr.WriteTAC(value)
	case addr == 0xFF0F:
		b.ifReg = value & 0x1F
	case addr >= 0xFF10 && addr <= 0xFF3F:
		b.apu.Write(addr, value)
	case addr == 0xFF40, addr == 0xFF41, addr == 0xFF42, addr == 0xFF43,
		addr == 0xFF44, addr == 0xFF45,
		addr == 0xFF47, addr == 0xFF48, addr == 0xFF49,
		addr == 0xFF4A, addr == 0xFF4B:
		b.ppu.CPUWrite(addr, value)
	case addr == 0xFF46:
		b.dma = value
		b.doOAMDMA(value)
	case addr == 0xFF50:
		if value != 0x00 {
			b.bootEnabled = false
		}
	case addr >= 0xFF80 && addr <= 0xFFFE:
		b.hram[addr-0xFF80] = value
	case addr == 0xFFFF:
		b.ie = value
	}
}

// doOAMDMA performs the 160-byte OAM transfer atomically within this call,
// a deliberate simplification of real hardware's byte-per-cycle transfer:
// no instruction boundary can observe a partially-completed DMA.
func (b *Bus) doOAMDMA(bank byte) {
	src := uint16(bank) << 8
	var buf [0xA0]byte
	for i := range buf {
		buf[i] = b.Read(src + uint16(i))
	}
	b.ppu.OAMWriteDMA(buf[:])
}

// Tick advances the timer and PPU by the given number of dots (4 per
// machine cycle) and reports whether a frame completed during the advance.
// Joypad edges are detected in SetJoypadState, not here.
func (b *Bus) Tick(dots int) (frameReady bool) {
	for i := 0; i < dots; i++ {
		if b.tmr.Tick() {
			b.ifReg |= IntTimer
		}
		if b.ppu.Tick(1) {
			frameReady = true
		}
	}
	return frameReady
}

// Pending returns the IE&IF mask of currently requested, enabled interrupts.
func (b *Bus) Pending() byte { return b.ie & b.ifReg & 0x1F }

// Clear drops a single interrupt request bit after it has been serviced.
func (b *Bus) Clear(bit byte) { b.ifReg &^= bit }

// IE returns the raw interrupt-enable register.
func (b *Bus) IE() byte { return b.ie }

// IF returns the raw interrupt-flag register (lower 5 bits meaningful).
func (b *Bus) IF() byte { return b.ifReg }
