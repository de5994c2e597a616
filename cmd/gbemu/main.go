package main

import (
	"flag"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jrhale/lr35902emu/internal/cart"
	"github.com/jrhale/lr35902emu/internal/emu"
	"github.com/jrhale/lr35902emu/internal/script"
	"github.com/jrhale/lr35902emu/internal/ui"
)

type CLIFlags struct {
	ROMPath string
	BootROM string
	Scale   int
	Title   string
	Trace   bool
	SaveRAM bool // persist battery RAM next to ROM (.sav)

	// headless
	Headless bool
	Frames   int
	PNGOut   string
	Expect   string // expected framebuffer CRC32 hex (e.g., "1a2b3c4d")

	Script string // optional Lua macro driving joypad state per frame
}

// parseFlags implements the external CLI contract: exactly one positional
// argument, the ROM path. The remaining flags are enhancements beyond what
// the spec requires (window scale, headless PNG/CRC32 assertions, etc.);
// -rom is kept as a back-compat alias for the positional form.
func parseFlags() (CLIFlags, error) {
	var f CLIFlags
	flag.StringVar(&f.ROMPath, "rom", "", "path to ROM (.gb); alternative to the positional argument")
	flag.StringVar(&f.BootROM, "bootrom", "", "optional DMG boot ROM")
	flag.IntVar(&f.Scale, "scale", 3, "window scale")
	flag.StringVar(&f.Title, "title", "gbemu", "window title")
	flag.BoolVar(&f.Trace, "trace", false, "CPU trace log (accepted; no trace output is produced)")
	flag.BoolVar(&f.SaveRAM, "save", true, "persist battery RAM to ROM.sav on exit and load on start")

	// headless options
	flag.BoolVar(&f.Headless, "headless", false, "run without a window")
	flag.IntVar(&f.Frames, "frames", 300, "frames to run in headless mode")
	flag.StringVar(&f.PNGOut, "outpng", "", "write last framebuffer to PNG at path")
	flag.StringVar(&f.Expect, "expect", "", "assert framebuffer CRC32 (hex)")
	flag.StringVar(&f.Script, "script", "", "Lua macro driving joypad state per frame instead of the keyboard")
	flag.Parse()

	switch flag.NArg() {
	case 0:
		// fine: -rom may have supplied the path instead
	case 1:
		if f.ROMPath != "" && f.ROMPath != flag.Arg(0) {
			return f, fmt.Errorf("usage: gbemu <rom-path> (conflicts with -rom %s)", f.ROMPath)
		}
		f.ROMPath = flag.Arg(0)
	default:
		return f, fmt.Errorf("usage: gbemu <rom-path>")
	}
	if f.ROMPath == "" {
		return f, fmt.Errorf("usage: gbemu <rom-path>")
	}
	return f, nil
}

func runHeadless(m *emu.Machine, frames int, pngPath, expectCRC string, scr *script.Player) error {
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	for i := 0; i < frames; i++ {
		if scr != nil {
			m.RunFrame(scr.Next())
		} else {
			m.StepFrame()
		}
	}
	dur := time.Since(start)

	fb := m.Framebuffer() // RGBA 160x144*4
	crc := crc32.ChecksumIEEE(fb)
	fps := float64(frames) / dur.Seconds()

	log.Printf("headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x",
		frames, dur.Truncate(time.Millisecond), fps, crc)

	if pngPath != "" {
		if err := saveFramePNG(fb, 160, 144, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Printf("wrote %s", pngPath)
	}

	if expectCRC != "" {
		// normalize expected hex (allow with/without 0x, upper/lowercase)
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func saveFramePNG(pix []byte, w, h int, path string) error {
	img := &image.RGBA{
		Pix:    make([]byte, len(pix)),
		Stride: 4 * w,
		Rect:   image.Rect(0, 0, w, h),
	}
	copy(img.Pix, pix)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func readFile(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

// exitCode maps the error handling design's kinds to the CLI's three exit
// codes: 0 clean, 1 I/O or parse failure, 2 usage error.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if _, ok := err.(usageError); ok {
		return 2
	}
	return 1
}

type usageError struct{ err error }

func (u usageError) Error() string { return u.err.Error() }

func run() error {
	f, err := parseFlags()
	if err != nil {
		return usageError{err}
	}

	rom, err := readFile(f.ROMPath)
	if err != nil {
		return fmt.Errorf("read rom: %w", err)
	}
	boot, err := readFile(f.BootROM)
	if err != nil {
		return fmt.Errorf("read bootrom: %w", err)
	}

	if h, err := cart.ParseHeader(rom); err == nil {
		log.Printf("ROM: %q type=%s banks=%d ram=%dB checksumOK=%t",
			h.Title, h.CartTypeStr, h.ROMBanks, h.RAMSizeBytes, h.ChecksumOK)
	} else {
		return fmt.Errorf("parse rom header: %w", err)
	}

	m := emu.New(emu.Config{Trace: f.Trace})
	if len(boot) >= 0x100 {
		m.SetBootROM(boot)
	}
	abs, err := filepath.Abs(f.ROMPath)
	if err != nil {
		abs = f.ROMPath
	}
	if err := m.LoadROMFromFile(abs); err != nil {
		return fmt.Errorf("load cartridge: %w", err)
	}

	var savPath string
	if f.SaveRAM {
		savPath = strings.TrimSuffix(m.ROMPath(), ".gb") + ".sav"
		if data, err := os.ReadFile(savPath); err == nil {
			if m.LoadBattery(data) {
				log.Printf("loaded save RAM: %s (%d bytes)", savPath, len(data))
			}
		}
	}

	var scr *script.Player
	if f.Script != "" {
		src, err := readFile(f.Script)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		scr, err = script.Load(src)
		if err != nil {
			return fmt.Errorf("load script: %w", err)
		}
		defer scr.Close()
	}

	if f.Headless {
		if err := runHeadless(m, f.Frames, f.PNGOut, f.Expect, scr); err != nil {
			return err
		}
		return persistBattery(m, savPath)
	}

	uiCfg := ui.Config{Title: f.Title, Scale: f.Scale}
	app := ui.NewApp(uiCfg, m)
	if scr != nil {
		app.SetScript(scr)
	}
	if err := app.Run(); err != nil {
		return err
	}
	return persistBattery(m, savPath)
}

func persistBattery(m *emu.Machine, savPath string) error {
	if savPath == "" {
		return nil
	}
	data, ok := m.SaveBattery()
	if !ok {
		return nil
	}
	if err := os.WriteFile(savPath, data, 0o644); err != nil {
		return fmt.Errorf("write save RAM: %w", err)
	}
	log.Printf("wrote %s", savPath)
	return nil
}

func main() {
	err := run()
	if err != nil {
		log.Print(err)
	}
	os.Exit(exitCode(err))
}
