package cart

// ROMOnly is the Plain bank controller from spec §4.3: ROM readable across
// 0x0000-0x7FFF with no banking, plus an optional fixed external RAM window.
// Writes to ROM are always ignored.
type ROMOnly struct {
	rom []byte
	ram []byte
}

func NewROMOnly(rom []byte) *ROMOnly { return &ROMOnly{rom: rom} }

func NewROMOnlyWithRAM(rom []byte, ramSize int, saved []byte) *ROMOnly {
	c := &ROMOnly{rom: rom}
	if ramSize > 0 {
		c.ram = make([]byte, ramSize)
		if len(saved) > 0 {
			copy(c.ram, saved)
		}
	}
	return c
}

func (c *ROMOnly) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		if int(addr) < len(c.rom) {
			return c.rom[addr]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if len(c.ram) == 0 {
			return 0xFF
		}
		off := int(addr - 0xA000)
		if off < len(c.ram) {
			return c.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (c *ROMOnly) Write(addr uint16, value byte) {
	if addr >= 0xA000 && addr <= 0xBFFF && len(c.ram) > 0 {
		off := int(addr - 0xA000)
		if off < len(c.ram) {
			c.ram[off] = value
		}
	}
	// ROM writes are always ignored.
}

func (c *ROMOnly) Persist() ([]byte, bool) {
	if len(c.ram) == 0 {
		return nil, false
	}
	out := make([]byte, len(c.ram))
	copy(out, c.ram)
	return out, true
}
