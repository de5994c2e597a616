// Package cpu implements the Sharp LR35902 fetch/decode/execute loop: the
// full unprefixed and CB-prefixed opcode tables, interrupt dispatch with
// fixed priority, and the HALT/STOP/EI timing quirks real software depends
// on.
package cpu

import (
	"fmt"

	"github.com/jrhale/lr35902emu/internal/bus"
	"github.com/jrhale/lr35902emu/internal/register"
)

const (
	flagZ = register.FlagZ
	flagN = register.FlagN
	flagH = register.FlagH
	flagC = register.FlagC
)

// IllegalOpcodeError is raised for one of the eleven unused opcode slots on
// real hardware (0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC,
// 0xFD). Hitting one is a ROM/programming bug, not a recoverable condition.
type IllegalOpcodeError struct {
	Opcode byte
	PC     uint16
}

func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("illegal opcode 0x%02X at PC=0x%04X", e.Opcode, e.PC)
}

// CPU is the register file plus execution state: interrupt master enable,
// the halted/stopped flags, and the armed-but-not-yet-live EI delay.
type CPU struct {
	register.File

	IME     bool
	halted  bool
	stopped bool

	// eiDelay counts down from 2 to 0 after EI executes; IME goes live
	// when it reaches 0, at the start of the Step *after* the instruction
	// following EI — not the instruction immediately after EI itself.
	eiDelay int

	bus *bus.Bus
}

func New(b *bus.Bus) *CPU {
	return &CPU{File: register.File{SP: 0xFFFE, PC: 0x0000}, bus: b}
}

func (c *CPU) SetPC(pc uint16) { c.PC = pc }
func (c *CPU) Bus() *bus.Bus   { return c.bus }

// ResetPostBoot sets registers to the state real DMG hardware leaves them
// in once the boot ROM hands off, for running without a boot ROM image.
func (c *CPU) ResetPostBoot() {
	c.File.ResetPostBoot()
	c.IME = false
	c.halted = false
	c.stopped = false
	c.eiDelay = 0
}

func (c *CPU) setZNHC(z, n, h, cy bool) { c.SetFlags(z, n, h, cy) }

func (c *CPU) add8(a, b byte) (res byte, z, n, h, cy bool) {
	r := uint16(a) + uint16(b)
	res = byte(r)
	z, n = res == 0, false
	h = ((a & 0x0F) + (b & 0x0F)) > 0x0F
	cy = r > 0xFF
	return
}

func (c *CPU) adc8(a, b byte, carryIn bool) (res byte, z, n, h, cy bool) {
	ci := byte(0)
	if carryIn {
		ci = 1
	}
	r := uint16(a) + uint16(b) + uint16(ci)
	res = byte(r)
	z, n = res == 0, false
	h = ((a & 0x0F) + (b & 0x0F) + ci) > 0x0F
	cy = r > 0xFF
	return
}

func (c *CPU) sub8(a, b byte) (res byte, z, n, h, cy bool) {
	r := int16(a) - int16(b)
	res = byte(r)
	z, n = res == 0, true
	h = (a & 0x0F) < (b & 0x0F)
	cy = int16(a) < int16(b)
	return
}

func (c *CPU) sbc8(a, b byte, carryIn bool) (res byte, z, n, h, cy bool) {
	ci := byte(0)
	if carryIn {
		ci = 1
	}
	r := int16(a) - int16(b) - int16(ci)
	res = byte(r)
	z, n = res == 0, true
	h = (a & 0x0F) < ((b & 0x0F) + ci)
	cy = int16(a) < int16(b)+int16(ci)
	return
}

func (c *CPU) and8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a & b
	return res, res == 0, false, true, false
}

func (c *CPU) xor8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a ^ b
	return res, res == 0, false, false, false
}

func (c *CPU) or8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a | b
	return res, res == 0, false, false, false
}

func (c *CPU) cp8(a, b byte) (z, n, h, cy bool) {
	_, z, n, h, cy = c.sub8(a, b)
	return
}

func (c *CPU) read8(addr uint16) byte     { return c.bus.Read(addr) }
func (c *CPU) write8(addr uint16, v byte) { c.bus.Write(addr, v) }

func (c *CPU) fetch8() byte {
	b := c.read8(c.PC)
	c.PC++
	return b
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return lo | (hi << 8)
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := uint16(c.read8(addr))
	hi := uint16(c.read8(addr + 1))
	return lo | (hi << 8)
}

func (c *CPU) write16(addr uint16, v uint16) {
	c.write8(addr, byte(v&0x00FF))
	c.write8(addr+1, byte(v>>8))
}

func (c *CPU) push16(v uint16) {
	c.SP -= 2
	c.write16(c.SP, v)
}

func (c *CPU) pop16() uint16 {
	v := c.read16(c.SP)
	c.SP += 2
	return v
}

var illegalOpcodes = map[byte]bool{
	0xD3: true, 0xDB: true, 0xDD: true, 0xE3: true, 0xE4: true,
	0xEB: true, 0xEC: true, 0xED: true, 0xF4: true, 0xFC: true, 0xFD: true,
}

// Step runs the halted/interrupt/fetch-decode-execute cycle once and
// returns the machine cycles (1-6) it consumed; the bus (and everything
// hung off it) is advanced by 4 dots per machine cycle before returning.
func (c *CPU) Step() (mcycles int) {
	defer func() {
		if c.bus != nil && mcycles > 0 {
			c.bus.Tick(mcycles * 4)
		}
	}()

	if c.eiDelay > 0 {
		c.eiDelay--
		if c.eiDelay == 0 {
			c.IME = true
		}
	}

	if c.halted {
		if c.pendingInterrupt() {
			c.halted = false
			if c.IME {
				return c.serviceInterrupt()
			}
			// Woken without IME: execution resumes at the next
			// instruction and the interrupt stays pending. The HALT bug
			// (a repeated opcode byte) is not emulated.
		} else {
			return 1
		}
	}

	if c.IME && c.pendingInterrupt() {
		return c.serviceInterrupt()
	}

	op := c.fetch8()
	return c.execute(op)
}

func (c *CPU) pendingInterrupt() bool { return c.bus.Pending() != 0 }

// serviceInterrupt dispatches the highest-priority pending, enabled
// interrupt: push PC, jump to its fixed vector, clear IME and the IF bit.
func (c *CPU) serviceInterrupt() int {
	pending := c.bus.Pending()
	var bit uint
	for bit = 0; bit < 5; bit++ {
		if pending&(1<<bit) != 0 {
			break
		}
	}
	c.bus.Clear(1 << bit)
	c.IME = false
	c.push16(c.PC)
	c.PC = 0x40 + uint16(bit)*8
	return 5
}

func regGet(c *CPU, idx byte) byte {
	switch idx {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.read8(c.HL())
	default:
		return c.A
	}
}

func regSet(c *CPU, idx byte, v byte) {
	switch idx {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.write8(c.HL(), v)
	default:
		c.A = v
	}
}

func (c *CPU) execute(op byte) int {
	if illegalOpcodes[op] {
		panic(&IllegalOpcodeError{Opcode: op, PC: c.PC - 1})
	}

	switch op {
	case 0x00: // NOP
		return 1

	case 0x06:
		c.B = c.fetch8()
		return 2
	case 0x0E:
		c.C = c.fetch8()
		return 2
	case 0x16:
		c.D = c.fetch8()
		return 2
	case 0x1E:
		c.E = c.fetch8()
		return 2
	case 0x26:
		c.H = c.fetch8()
		return 2
	case 0x2E:
		c.L = c.fetch8()
		return 2
	case 0x3E:
		c.A = c.fetch8()
		return 2

	case 0x76: // HALT
		c.halted = true
		return 1

	case 0x40, 0x41, 0x42, 0x43, 0x44, 0x45, 0x47,
		0x48, 0x49, 0x4A, 0x4B, 0x4C, 0x4D, 0x4F,
		0x50, 0x51, 0x52, 0x53, 0x54, 0x55, 0x57,
		0x58, 0x59, 0x5A, 0x5B, 0x5C, 0x5D, 0x5F,
		0x60, 0x61, 0x62, 0x63, 0x64, 0x65, 0x67,
		0x68, 0x69, 0x6A, 0x6B, 0x6C, 0x6D, 0x6F,
		0x70, 0x71, 0x72, 0x73, 0x74, 0x75, 0x77,
		0x78, 0x79, 0x7A, 0x7B, 0x7C, 0x7D, 0x7F:
		d := (op >> 3) & 7
		s := op & 7
		regSet(c, d, regGet(c, s))
		if d == 6 || s == 6 {
			return 2
		}
		return 1

	case 0x01:
		c.SetBC(c.fetch16())
		return 3
	case 0x11:
		c.SetDE(c.fetch16())
		return 3
	case 0x21:
		c.SetHL(c.fetch16())
		return 3
	case 0x31:
		c.SP = c.fetch16()
		return 3
	case 0x08:
		addr := c.fetch16()
		c.write16(addr, c.SP)
		return 5

	case 0x36:
		v := c.fetch8()
		c.write8(c.HL(), v)
		return 3

	case 0x02:
		c.write8(c.BC(), c.A)
		return 2
	case 0x12:
		c.write8(c.DE(), c.A)
		return 2
	case 0x0A:
		c.A = c.read8(c.BC())
		return 2
	case 0x1A:
		c.A = c.read8(c.DE())
		return 2

	case 0x22:
		hl := c.HL()
		c.write8(hl, c.A)
		c.SetHL(hl + 1)
		return 2
	case 0x2A:
		hl := c.HL()
		c.A = c.read8(hl)
		c.SetHL(hl + 1)
		return 2
	case 0x32:
		hl := c.HL()
		c.write8(hl, c.A)
		c.SetHL(hl - 1)
		return 2
	case 0x3A:
		hl := c.HL()
		c.A = c.read8(hl)
		c.SetHL(hl - 1)
		return 2

	case 0xE0:
		n := uint16(c.fetch8())
		c.write8(0xFF00+n, c.A)
		return 3
	case 0xF0:
		n := uint16(c.fetch8())
		c.A = c.read8(0xFF00 + n)
		return 3
	case 0xE2:
		c.write8(0xFF00+uint16(c.C), c.A)
		return 2
	case 0xF2:
		c.A = c.read8(0xFF00 + uint16(c.C))
		return 2

	case 0x07: // RLCA
		cv := (c.A >> 7) & 1
		c.A = (c.A << 1) | cv
		c.setZNHC(false, false, false, cv == 1)
		return 1
	case 0x0F: // RRCA
		cv := c.A & 1
		c.A = (c.A >> 1) | (cv << 7)
		c.setZNHC(false, false, false, cv == 1)
		return 1
	case 0x17: // RLA
		cv := (c.A >> 7) & 1
		in := boolBit(c.Flag(flagC))
		c.A = (c.A << 1) | in
		c.setZNHC(false, false, false, cv == 1)
		return 1
	case 0x1F: // RRA
		cv := c.A & 1
		in := boolBit(c.Flag(flagC))
		c.A = (c.A >> 1) | (in << 7)
		c.setZNHC(false, false, false, cv == 1)
		return 1
	case 0x27: // DAA
		a := c.A
		cf := c.Flag(flagC)
		if !c.Flag(flagN) {
			if cf || a > 0x99 {
				a += 0x60
				cf = true
			}
			if c.Flag(flagH) || (a&0x0F) > 9 {
				a += 0x06
			}
		} else {
			if cf {
				a -= 0x60
			}
			if c.Flag(flagH) {
				a -= 0x06
			}
		}
		c.A = a
		c.setZNHC(c.A == 0, c.Flag(flagN), false, cf)
		return 1
	case 0x2F: // CPL
		c.A = ^c.A
		c.F = (c.F & (flagZ | flagC)) | flagN | flagH
		return 1
	case 0x37: // SCF
		c.F = (c.F & flagZ) | flagC
		return 1
	case 0x3F: // CCF
		wasC := c.Flag(flagC)
		c.F = c.F & flagZ
		if !wasC {
			c.F |= flagC
		}
		return 1

	case 0x04:
		c.B = c.inc(c.B)
		return 1
	case 0x0C:
		c.C = c.inc(c.C)
		return 1
	case 0x14:
		c.D = c.inc(c.D)
		return 1
	case 0x1C:
		c.E = c.inc(c.E)
		return 1
	case 0x24:
		c.H = c.inc(c.H)
		return 1
	case 0x2C:
		c.L = c.inc(c.L)
		return 1
	case 0x3C:
		c.A = c.inc(c.A)
		return 1
	case 0x34:
		addr := c.HL()
		c.write8(addr, c.inc(c.read8(addr)))
		return 3

	case 0x05:
		c.B = c.dec(c.B)
		return 1
	case 0x0D:
		c.C = c.dec(c.C)
		return 1
	case 0x15:
		c.D = c.dec(c.D)
		return 1
	case 0x1D:
		c.E = c.dec(c.E)
		return 1
	case 0x25:
		c.H = c.dec(c.H)
		return 1
	case 0x2D:
		c.L = c.dec(c.L)
		return 1
	case 0x3D:
		c.A = c.dec(c.A)
		return 1
	case 0x35:
		addr := c.HL()
		c.write8(addr, c.dec(c.read8(addr)))
		return 3

	case 0x80, 0x81, 0x82, 0x83, 0x84, 0x85, 0x87:
		r, z, n, h, cy := c.add8(c.A, regGet(c, op&7))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 1
	case 0x88, 0x89, 0x8A, 0x8B, 0x8C, 0x8D, 0x8F:
		r, z, n, h, cy := c.adc8(c.A, regGet(c, op&7), c.Flag(flagC))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 1
	case 0x90, 0x91, 0x92, 0x93, 0x94, 0x95, 0x97:
		r, z, n, h, cy := c.sub8(c.A, regGet(c, op&7))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 1
	case 0x98, 0x99, 0x9A, 0x9B, 0x9C, 0x9D, 0x9F:
		r, z, n, h, cy := c.sbc8(c.A, regGet(c, op&7), c.Flag(flagC))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 1
	case 0xA0, 0xA1, 0xA2, 0xA3, 0xA4, 0xA5, 0xA7:
		r, z, n, h, cy := c.and8(c.A, regGet(c, op&7))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 1
	case 0xA8, 0xA9, 0xAA, 0xAB, 0xAC, 0xAD, 0xAF:
		r, z, n, h, cy := c.xor8(c.A, regGet(c, op&7))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 1
	case 0xB0, 0xB1, 0xB2, 0xB3, 0xB4, 0xB5, 0xB7:
		r, z, n, h, cy := c.or8(c.A, regGet(c, op&7))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 1
	case 0xB8, 0xB9, 0xBA, 0xBB, 0xBC, 0xBD, 0xBF:
		z, n, h, cy := c.cp8(c.A, regGet(c, op&7))
		c.setZNHC(z, n, h, cy)
		return 1

	case 0x86:
		r, z, n, h, cy := c.add8(c.A, c.read8(c.HL()))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 2
	case 0x8E:
		r, z, n, h, cy := c.adc8(c.A, c.read8(c.HL()), c.Flag(flagC))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 2
	case 0x96:
		r, z, n, h, cy := c.sub8(c.A, c.read8(c.HL()))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 2
	case 0x9E:
		r, z, n, h, cy := c.sbc8(c.A, c.read8(c.HL()), c.Flag(flagC))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 2
	case 0xA6:
		r, z, n, h, cy := c.and8(c.A, c.read8(c.HL()))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 2
	case 0xAE:
		r, z, n, h, cy := c.xor8(c.A, c.read8(c.HL()))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 2
	case 0xB6:
		r, z, n, h, cy := c.or8(c.A, c.read8(c.HL()))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 2
	case 0xBE:
		z, n, h, cy := c.cp8(c.A, c.read8(c.HL()))
		c.setZNHC(z, n, h, cy)
		return 2

	case 0xC6:
		r, z, n, h, cy := c.add8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 2
	case 0xCE:
		r, z, n, h, cy := c.adc8(c.A, c.fetch8(), c.Flag(flagC))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 2
	case 0xD6:
		r, z, n, h, cy := c.sub8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 2
	case 0xDE:
		r, z, n, h, cy := c.sbc8(c.A, c.fetch8(), c.Flag(flagC))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 2
	case 0xE6:
		r, z, n, h, cy := c.and8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 2
	case 0xEE:
		r, z, n, h, cy := c.xor8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 2
	case 0xF6:
		r, z, n, h, cy := c.or8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 2
	case 0xFE:
		z, n, h, cy := c.cp8(c.A, c.fetch8())
		c.setZNHC(z, n, h, cy)
		return 2

	case 0xEA:
		addr := c.fetch16()
		c.write8(addr, c.A)
		return 4
	case 0xFA:
		addr := c.fetch16()
		c.A = c.read8(addr)
		return 4

	case 0xC3:
		c.PC = c.fetch16()
		return 4
	case 0xE9:
		c.PC = c.HL()
		return 1
	case 0x18:
		off := int8(c.fetch8())
		c.PC = uint16(int32(c.PC) + int32(off))
		return 3

	case 0x20:
		off := int8(c.fetch8())
		if !c.Flag(flagZ) {
			c.PC = uint16(int32(c.PC) + int32(off))
			return 3
		}
		return 2
	case 0x28:
		off := int8(c.fetch8())
		if c.Flag(flagZ) {
			c.PC = uint16(int32(c.PC) + int32(off))
			return 3
		}
		return 2
	case 0x30:
		off := int8(c.fetch8())
		if !c.Flag(flagC) {
			c.PC = uint16(int32(c.PC) + int32(off))
			return 3
		}
		return 2
	case 0x38:
		off := int8(c.fetch8())
		if c.Flag(flagC) {
			c.PC = uint16(int32(c.PC) + int32(off))
			return 3
		}
		return 2

	case 0xCD:
		addr := c.fetch16()
		c.push16(c.PC)
		c.PC = addr
		return 6
	case 0xC9:
		c.PC = c.pop16()
		return 4
	case 0xD9:
		c.PC = c.pop16()
		c.IME = true
		return 4

	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF:
		c.push16(c.PC)
		c.PC = uint16(op - 0xC7)
		return 4

	case 0xC4:
		addr := c.fetch16()
		if !c.Flag(flagZ) {
			c.push16(c.PC)
			c.PC = addr
			return 6
		}
		return 3
	case 0xCC:
		addr := c.fetch16()
		if c.Flag(flagZ) {
			c.push16(c.PC)
			c.PC = addr
			return 6
		}
		return 3
	case 0xD4:
		addr := c.fetch16()
		if !c.Flag(flagC) {
			c.push16(c.PC)
			c.PC = addr
			return 6
		}
		return 3
	case 0xDC:
		addr := c.fetch16()
		if c.Flag(flagC) {
			c.push16(c.PC)
			c.PC = addr
			return 6
		}
		return 3

	case 0xC0:
		if !c.Flag(flagZ) {
			c.PC = c.pop16()
			return 5
		}
		return 2
	case 0xC8:
		if c.Flag(flagZ) {
			c.PC = c.pop16()
			return 5
		}
		return 2
	case 0xD0:
		if !c.Flag(flagC) {
			c.PC = c.pop16()
			return 5
		}
		return 2
	case 0xD8:
		if c.Flag(flagC) {
			c.PC = c.pop16()
			return 5
		}
		return 2

	case 0xC2:
		addr := c.fetch16()
		if !c.Flag(flagZ) {
			c.PC = addr
			return 4
		}
		return 3
	case 0xCA:
		addr := c.fetch16()
		if c.Flag(flagZ) {
			c.PC = addr
			return 4
		}
		return 3
	case 0xD2:
		addr := c.fetch16()
		if !c.Flag(flagC) {
			c.PC = addr
			return 4
		}
		return 3
	case 0xDA:
		addr := c.fetch16()
		if c.Flag(flagC) {
			c.PC = addr
			return 4
		}
		return 3

	case 0x03:
		c.SetBC(c.BC() + 1)
		return 2
	case 0x13:
		c.SetDE(c.DE() + 1)
		return 2
	case 0x23:
		c.SetHL(c.HL() + 1)
		return 2
	case 0x33:
		c.SP++
		return 2
	case 0x0B:
		c.SetBC(c.BC() - 1)
		return 2
	case 0x1B:
		c.SetDE(c.DE() - 1)
		return 2
	case 0x2B:
		c.SetHL(c.HL() - 1)
		return 2
	case 0x3B:
		c.SP--
		return 2

	case 0x09:
		c.addHL(c.BC())
		return 2
	case 0x19:
		c.addHL(c.DE())
		return 2
	case 0x29:
		c.addHL(c.HL())
		return 2
	case 0x39:
		c.addHL(c.SP)
		return 2

	case 0xF8:
		off := int8(c.fetch8())
		low := byte(c.SP & 0xFF)
		_, _, _, h, cy := c.add8(low, byte(off))
		c.SetHL(uint16(int32(int16(c.SP)) + int32(off)))
		c.setZNHC(false, false, h, cy)
		return 3
	case 0xF9:
		c.SP = c.HL()
		return 2
	case 0xE8:
		off := int8(c.fetch8())
		low := byte(c.SP & 0xFF)
		_, _, _, h, cy := c.add8(low, byte(off))
		c.SP = uint16(int32(int16(c.SP)) + int32(off))
		c.setZNHC(false, false, h, cy)
		return 4

	case 0xF3:
		c.IME = false
		c.eiDelay = 0
		return 1
	case 0xFB:
		c.eiDelay = 2
		return 1

	case 0x10: // STOP
		c.fetch8() // STOP is followed by a mandatory (ignored) padding byte
		c.stopped = true
		return 1

	case 0xCB:
		return c.executeCB(c.fetch8())

	case 0xF5:
		c.push16(c.AF())
		return 4
	case 0xC5:
		c.push16(c.BC())
		return 4
	case 0xD5:
		c.push16(c.DE())
		return 4
	case 0xE5:
		c.push16(c.HL())
		return 4
	case 0xF1:
		c.SetAF(c.pop16())
		return 3
	case 0xC1:
		c.SetBC(c.pop16())
		return 3
	case 0xD1:
		c.SetDE(c.pop16())
		return 3
	case 0xE1:
		c.SetHL(c.pop16())
		return 3

	default:
		panic(&IllegalOpcodeError{Opcode: op, PC: c.PC - 1})
	}
}

func boolBit(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func (c *CPU) inc(v byte) byte {
	old := v
	v++
	c.setZNHC(v == 0, false, (old&0x0F) == 0x0F, c.Flag(flagC))
	return v
}

func (c *CPU) dec(v byte) byte {
	old := v
	v--
	c.setZNHC(v == 0, true, (old&0x0F) == 0x00, c.Flag(flagC))
	return v
}

func (c *CPU) addHL(operand uint16) {
	hl := c.HL()
	r := uint32(hl) + uint32(operand)
	h := ((hl & 0x0FFF) + (operand & 0x0FFF)) > 0x0FFF
	c.SetHL(uint16(r))
	c.setZNHC(c.Flag(flagZ), false, h, r > 0xFFFF)
}

func (c *CPU) executeCB(cb byte) int {
	reg := cb & 7
	opg := (cb >> 6) & 3
	y := (cb >> 3) & 7

	cycles := 2
	if reg == 6 {
		cycles = 4
	}

	switch opg {
	case 0:
		v := regGet(c, reg)
		var cflag byte
		switch y {
		case 0: // RLC
			cflag = (v >> 7) & 1
			v = (v << 1) | cflag
			c.setZNHC(v == 0, false, false, cflag == 1)
		case 1: // RRC
			cflag = v & 1
			v = (v >> 1) | (cflag << 7)
			c.setZNHC(v == 0, false, false, cflag == 1)
		case 2: // RL
			cflag = (v >> 7) & 1
			v = (v << 1) | boolBit(c.Flag(flagC))
			c.setZNHC(v == 0, false, false, cflag == 1)
		case 3: // RR
			cflag = v & 1
			v = (v >> 1) | (boolBit(c.Flag(flagC)) << 7)
			c.setZNHC(v == 0, false, false, cflag == 1)
		case 4: // SLA
			cflag = (v >> 7) & 1
			v <<= 1
			c.setZNHC(v == 0, false, false, cflag == 1)
		case 5: // SRA
			cflag = v & 1
			v = (v >> 1) | (v & 0x80)
			c.setZNHC(v == 0, false, false, cflag == 1)
		case 6: // SWAP
			v = (v << 4) | (v >> 4)
			c.setZNHC(v == 0, false, false, false)
		case 7: // SRL
			cflag = v & 1
			v >>= 1
			c.setZNHC(v == 0, false, false, cflag == 1)
		}
		regSet(c, reg, v)
	case 1: // BIT y,r
		v := regGet(c, reg)
		bit := (v >> y) & 1
		c.F = (c.F & flagC) | flagH
		if bit == 0 {
			c.F |= flagZ
		}
		if reg == 6 {
			cycles = 3
		}
	case 2: // RES y,r
		regSet(c, reg, regGet(c, reg)&^(1<<y))
	case 3: // SET y,r
		regSet(c, reg, regGet(c, reg)|(1<<y))
	}
	return cycles
}
