package cart

import (
	"encoding/binary"
	"time"
)

// MBC3 is the Type-3 bank controller from spec §4.3: a 7-bit ROM-bank
// register, a secondary register selecting either one of eight RAM banks
// (0x00-0x07) or one of five RTC pseudo-registers (0x08-0x0C), and a
// write-0x00-then-0x01 latch sequence that freezes a counters snapshot into
// the RTC pseudo-registers.
type MBC3 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	romBank    byte // 7 bits, 0 remaps to 1
	bankSel    byte // 0x00-0x07 RAM bank, 0x08-0x0C RTC register

	latchState byte // last byte written to 0x6000-0x7FFF, awaiting the 0x00,0x01 sequence

	clock   Clock
	rtcBase time.Time // epoch the RTC counts elapsed seconds from
	rtc     rtcRegs
}

// rtcRegs holds the five latched RTC pseudo-registers (0x08-0x0C).
type rtcRegs struct {
	seconds, minutes, hours, dayLow, dayHigh byte
}

func NewMBC3(rom []byte, ramSize int, clock Clock, saved []byte) *MBC3 {
	m := &MBC3{rom: rom, romBank: 1, clock: clock}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	if !m.restore(saved) {
		m.rtcBase = clock.Now()
	}
	return m
}

func (m *MBC3) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		bank := int(m.romBank & 0x7F)
		if bank == 0 {
			bank = 1
		}
		off := bank*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		if m.bankSel <= 0x07 {
			if len(m.ram) == 0 {
				return 0xFF
			}
			off := int(m.bankSel)*0x2000 + int(addr-0xA000)
			if off < len(m.ram) {
				return m.ram[off]
			}
			return 0xFF
		}
		return m.readRTCRegister(m.bankSel)
	default:
		return 0xFF
	}
}

func (m *MBC3) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		v := value & 0x7F
		if v == 0 {
			v = 1
		}
		m.romBank = v
	case addr < 0x6000:
		m.bankSel = value & 0x0F
	case addr < 0x8000:
		if value == 0x00 {
			m.latchState = 0x00
		} else if value == 0x01 && m.latchState == 0x00 {
			m.latchRTC()
			m.latchState = 0xFF
		} else {
			m.latchState = value
		}
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		if m.bankSel <= 0x07 {
			if len(m.ram) == 0 {
				return
			}
			off := int(m.bankSel)*0x2000 + int(addr-0xA000)
			if off < len(m.ram) {
				m.ram[off] = value
			}
			return
		}
		m.writeRTCRegister(m.bankSel, value)
	}
}

// counters returns the live (unlatched) elapsed time since rtcBase,
// decomposed into the DMG RTC's seconds/minutes/hours/day-counter fields;
// carry reports that the 9-bit day counter has overflowed.
func (m *MBC3) counters() (seconds, minutes, hours byte, days uint16, carry bool) {
	elapsed := m.clock.Now().Sub(m.rtcBase)
	if elapsed < 0 {
		elapsed = 0
	}
	total := int64(elapsed / time.Second)
	seconds = byte(total % 60)
	minutes = byte((total / 60) % 60)
	hours = byte((total / 3600) % 24)
	days = uint16((total / 86400) % 0x200)
	carry = total/86400 >= 0x200
	return
}

func (m *MBC3) latchRTC() {
	s, mi, h, d, carry := m.counters()
	m.rtc.seconds = s
	m.rtc.minutes = mi
	m.rtc.hours = h
	m.rtc.dayLow = byte(d)
	m.rtc.dayHigh = byte((d >> 8) & 0x01)
	if carry {
		m.rtc.dayHigh |= 0x80
	}
}

func (m *MBC3) readRTCRegister(reg byte) byte {
	switch reg {
	case 0x08:
		return m.rtc.seconds
	case 0x09:
		return m.rtc.minutes
	case 0x0A:
		return m.rtc.hours
	case 0x0B:
		return m.rtc.dayLow
	case 0x0C:
		return m.rtc.dayHigh
	default:
		return 0xFF
	}
}

func (m *MBC3) writeRTCRegister(reg, value byte) {
	switch reg {
	case 0x08:
		m.rtc.seconds = value
	case 0x09:
		m.rtc.minutes = value
	case 0x0A:
		m.rtc.hours = value
	case 0x0B:
		m.rtc.dayLow = value
	case 0x0C:
		m.rtc.dayHigh = value
	}
}

func (m *MBC3) Persist() ([]byte, bool) {
	buf := make([]byte, 0, len(m.ram)+13)
	buf = append(buf, m.ram...)
	var epoch [8]byte
	binary.BigEndian.PutUint64(epoch[:], uint64(m.rtcBase.Unix()))
	buf = append(buf, epoch[:]...)
	buf = append(buf, m.rtc.seconds, m.rtc.minutes, m.rtc.hours, m.rtc.dayLow, m.rtc.dayHigh)
	return buf, true
}

// restore decodes bytes previously returned by Persist. It returns false
// when there is nothing to restore, so the caller knows to seed a fresh
// rtcBase from the live clock instead.
func (m *MBC3) restore(saved []byte) bool {
	if len(saved) < 13 {
		return false
	}
	ramLen := len(saved) - 13
	if ramLen > 0 && len(m.ram) > 0 {
		copy(m.ram, saved[:ramLen])
	}
	rest := saved[ramLen:]
	epoch := int64(binary.BigEndian.Uint64(rest[:8]))
	m.rtcBase = time.Unix(epoch, 0)
	m.rtc = rtcRegs{seconds: rest[8], minutes: rest[9], hours: rest[10], dayLow: rest[11], dayHigh: rest[12]}
	return true
}
