// Package cart implements cartridge header parsing and the bank controller
// variants (plain ROM, MBC1, MBC2, MBC3+RTC, MBC5, and a fatal "missing"
// stand-in for unsupported cartridge types).
package cart

import (
	"fmt"
	"time"
)

// Cartridge is the three-operation contract every bank controller
// implements: Read/Write route the CPU-visible ROM and external-RAM
// windows, and Persist returns battery-backed save bytes (or false when the
// cartridge has nothing worth saving).
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
	Persist() (data []byte, ok bool)
}

// Clock supplies the wall-clock time used to seed and advance a Type-3
// cartridge's real-time clock. Tests inject a fixed clock; production code
// uses realClock.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// UnsupportedCartridgeError is the Unsupported-cartridge-type error kind
// from spec §7: any access to a Missing controller fails loudly.
type UnsupportedCartridgeError struct {
	Code byte
}

func (e *UnsupportedCartridgeError) Error() string {
	return fmt.Sprintf("unsupported cartridge type 0x%02X", e.Code)
}

// Missing is the bank controller used for cartridge types this emulator
// does not implement. Any access panics with a diagnostic naming the code,
// per spec §7 (a programming/compatibility bug, not a recoverable error).
type Missing struct {
	Code byte
}

func (m *Missing) Read(addr uint16) byte {
	panic(&UnsupportedCartridgeError{Code: m.Code})
}

func (m *Missing) Write(addr uint16, value byte) {
	panic(&UnsupportedCartridgeError{Code: m.Code})
}

func (m *Missing) Persist() ([]byte, bool) { return nil, false }

// New picks a bank controller implementation from the ROM header's
// cartridge-type code. saved is previously persisted battery/RTC bytes (nil
// for a fresh cartridge); when non-nil it is restored into the controller.
func New(rom []byte, h *Header, saved []byte) Cartridge {
	switch h.CartType {
	case 0x00:
		return NewROMOnly(rom)
	case 0x08, 0x09:
		return NewROMOnlyWithRAM(rom, h.RAMSizeBytes, saved)
	case 0x01, 0x02, 0x03:
		return NewMBC1(rom, h.RAMSizeBytes, saved)
	case 0x05, 0x06:
		return NewMBC2(rom, saved)
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return NewMBC3(rom, h.RAMSizeBytes, realClock{}, saved)
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return NewMBC5(rom, h.RAMSizeBytes, saved)
	default:
		return &Missing{Code: h.CartType}
	}
}
