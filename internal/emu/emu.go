// Package emu wires the register file, processor, memory bus, pixel
// generator, bank controller, and input matrix into a single host-facing
// Machine: the three-call-per-frame contract (run a frame, fetch the
// framebuffer, persist battery RAM) described in the external interfaces.
package emu

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrhale/lr35902emu/internal/bus"
	"github.com/jrhale/lr35902emu/internal/cart"
	"github.com/jrhale/lr35902emu/internal/cpu"
	"github.com/jrhale/lr35902emu/internal/input"
)

// Buttons is the host-visible state of the eight semantic DMG inputs for a
// single frame.
type Buttons struct {
	A, B, Start, Select   bool
	Up, Down, Left, Right bool
}

func (b Buttons) mask() byte {
	var m byte
	if b.Right {
		m |= input.Right
	}
	if b.Left {
		m |= input.Left
	}
	if b.Up {
		m |= input.Up
	}
	if b.Down {
		m |= input.Down
	}
	if b.A {
		m |= input.A
	}
	if b.B {
		m |= input.B
	}
	if b.Select {
		m |= input.SelectBtn
	}
	if b.Start {
		m |= input.Start
	}
	return m
}

// Machine is the host-facing emulator instance: everything needed to load a
// ROM, run it frame by frame, and persist battery RAM at shutdown.
type Machine struct {
	cfg Config

	bus *bus.Bus
	cpu *cpu.CPU

	buttons Buttons
	fb      []byte // RGBA 160x144*4, refreshed each RunFrame/StepFrame
	romPath string

	bootROM  []byte // staged by SetBootROM ahead of LoadCartridge
	headerOK bool

	romBytes []byte      // retained so LoadBattery can rebuild the cartridge with saved data
	header   *cart.Header
	bootUsed []byte // the boot ROM bytes actually applied on the last LoadCartridge
}

// New constructs a Machine with no cartridge loaded; LoadCartridge or
// LoadROMFromFile must be called before stepping frames.
func New(cfg Config) *Machine {
	return &Machine{cfg: cfg, fb: make([]byte, 160*144*4)}
}

// SetBootROM stages a DMG boot ROM image to overlay 0x0000-0x00FF on the
// next LoadCartridge/LoadROMFromFile call. Without one, the machine starts
// from the documented post-boot register state instead of running the boot
// sequence.
func (m *Machine) SetBootROM(data []byte) { m.bootROM = data }

// LoadCartridge parses the ROM header, selects a bank controller, wires a
// fresh Bus and CPU around it, and resets the processor. A header-checksum
// mismatch is recorded (via HeaderOK) but never rejected here; a too-small
// image returns an error (Rom-too-small), and an unsupported cartridge type
// is deferred to first access, where the Missing controller panics.
func (m *Machine) LoadCartridge(rom []byte, boot []byte) error {
	return m.loadCartridge(rom, boot, nil)
}

func (m *Machine) loadCartridge(rom, boot, saved []byte) error {
	h, err := cart.ParseHeader(rom)
	if err != nil {
		return fmt.Errorf("load cartridge: %w", err)
	}
	m.headerOK = h.ChecksumOK
	m.romBytes = rom
	m.header = h

	c := cart.New(rom, h, saved)
	b := bus.NewWithCartridge(c)

	active := boot
	if len(active) < 0x100 {
		active = m.bootROM
	}
	hasBoot := len(active) >= 0x100
	if hasBoot {
		b.SetBootROM(active)
	}
	m.bootUsed = active

	m.bus = b
	m.cpu = cpu.New(b)
	if !hasBoot {
		m.cpu.ResetPostBoot()
	}
	return nil
}

// LoadROMFromFile reads a ROM image from disk, loads it (inheriting any
// boot ROM already staged via SetBootROM), and remembers the path so
// SaveBattery's caller can derive a ".sav" sibling file.
func (m *Machine) LoadROMFromFile(path string) error {
	rom, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read rom: %w", err)
	}
	if err := m.LoadCartridge(rom, nil); err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	m.romPath = abs
	return nil
}

// ROMPath returns the last path given to LoadROMFromFile, or "".
func (m *Machine) ROMPath() string { return m.romPath }

// SetSerialWriter attaches a sink for bytes written to the serial port
// (used by link-cable test ROMs to report pass/fail over SB/SC).
func (m *Machine) SetSerialWriter(w interface{ Write([]byte) (int, error) }) {
	if m.bus != nil {
		m.bus.SetSerialWriter(w)
	}
}

// SetButtons records the pressed/released state of all eight inputs for
// the next frame's joypad polling.
func (m *Machine) SetButtons(b Buttons) { m.buttons = b }

// RunFrame advances the core until the pixel generator signals a completed
// frame, applying the given button state for the duration, and renders the
// result into the RGBA framebuffer returned by LastFrame.
func (m *Machine) RunFrame(keys Buttons) {
	m.SetButtons(keys)
	m.StepFrame()
}

// StepFrame runs one frame and renders it into the RGBA framebuffer.
func (m *Machine) StepFrame() {
	m.stepOneFrame()
	m.render()
}

// StepFrameNoRender runs one frame without touching the framebuffer, for
// headless compliance-test loops that only care about serial output.
func (m *Machine) StepFrameNoRender() { m.stepOneFrame() }

func (m *Machine) stepOneFrame() {
	if m.bus == nil || m.cpu == nil {
		return
	}
	m.bus.SetJoypadState(m.buttons.mask())
	for {
		m.cpu.Step()
		if m.bus.PPU().ConsumeFrameReady() {
			return
		}
	}
}

var shadeRGB = [4][3]byte{
	{0xE0, 0xF8, 0xD0},
	{0x88, 0xC0, 0x70},
	{0x34, 0x68, 0x56},
	{0x08, 0x18, 0x20},
}

func (m *Machine) render() {
	if m.bus == nil {
		return
	}
	frame := m.bus.PPU().Frame()
	for y := 0; y < 144; y++ {
		for x := 0; x < 160; x++ {
			i := (y*160 + x) * 4
			rgb := shadeRGB[frame[y][x]&0x03]
			m.fb[i+0] = rgb[0]
			m.fb[i+1] = rgb[1]
			m.fb[i+2] = rgb[2]
			m.fb[i+3] = 0xFF
		}
	}
}

// Framebuffer returns the RGBA 160x144 framebuffer from the most recent
// StepFrame/RunFrame call. Kept alongside LastFrame for the ebiten host,
// which reads it directly every draw call rather than copying.
func (m *Machine) Framebuffer() []byte { return m.fb }

// LastFrame is the spec's last_frame(): a defensive copy of the 160x144
// RGBA array rendered by the most recent frame step.
func (m *Machine) LastFrame() []byte {
	out := make([]byte, len(m.fb))
	copy(out, m.fb)
	return out
}

// Persist is the spec's persist(): battery-backed RAM (and, for Type-3
// cartridges, the RTC state) as raw bytes, or ok=false when the loaded
// cartridge has nothing to save.
func (m *Machine) Persist() (data []byte, ok bool) {
	if m.bus == nil {
		return nil, false
	}
	return m.bus.Cart().Persist()
}

// SaveBattery is an alias for Persist matching the host CLI's naming.
func (m *Machine) SaveBattery() ([]byte, bool) { return m.Persist() }

// LoadBattery restores previously persisted battery/RTC bytes by rebuilding
// the cartridge (per spec §6: "the constructor accepts optional previously
// persisted bytes and restores them") from the retained ROM image. Returns
// false if no ROM has been loaded yet.
func (m *Machine) LoadBattery(data []byte) bool {
	if m.romBytes == nil {
		return false
	}
	if err := m.loadCartridge(m.romBytes, m.bootUsed, data); err != nil {
		return false
	}
	return true
}

// HeaderOK reports whether the loaded ROM's header checksum validated
// (Header-checksum-mismatch is reported, never fatal).
func (m *Machine) HeaderOK() bool { return m.headerOK }

// Bus exposes the underlying memory bus for tooling (trace dumps, the CPU
// runner, tests) that needs direct register access.
func (m *Machine) Bus() *bus.Bus { return m.bus }

// CPU exposes the underlying processor for the same reasons as Bus.
func (m *Machine) CPU() *cpu.CPU { return m.cpu }
