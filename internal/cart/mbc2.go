package cart

// MBC2 is the Type-2 bank controller from spec §4.3: a built-in 512x4-bit
// RAM mirrored across the whole 0xA000-0xBFFF window, and a single 4-bit ROM
// bank register. Bit 8 of the write address in 0x0000-0x3FFF
// distinguishes RAM-enable writes from bank-select writes (grounded on
// original_source's mbc2.rs, which the distilled spec does not cover in
// this much detail).
type MBC2 struct {
	rom []byte
	ram [0x200]byte // 512 nibbles; only the low 4 bits of each byte matter

	ramEnabled bool
	romBank    byte // 4 bits, 0 remaps to 1
}

func NewMBC2(rom []byte, saved []byte) *MBC2 {
	m := &MBC2{rom: rom, romBank: 1}
	if len(saved) > 0 {
		copy(m.ram[:], saved)
	}
	return m
}

func (m *MBC2) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		bank := int(m.romBank & 0x0F)
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
		return m.ram[addr&0x1FF] | 0xF0
	default:
		return 0xFF
	}
}

func (m *MBC2) Write(addr uint16, value byte) {
	switch {
	case addr < 0x4000:
		if addr&0x0100 != 0 {
			bank := value & 0x0F
			if bank == 0 {
				bank = 1
			}
			m.romBank = bank
		} else {
			m.ramEnabled = value&0x0F == 0x0A
		}
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.ramEnabled {
			m.ram[addr&0x1FF] = value | 0xF0
		}
	}
}

func (m *MBC2) Persist() ([]byte, bool) {
	out := make([]byte, len(m.ram))
	copy(out, m.ram[:])
	return out, true
}
