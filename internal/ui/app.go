// Package ui implements the ebiten-backed presentation host: window
// creation, key polling against the eight semantic DMG inputs, frame
// presentation with integer upscaling, and a screenshot-to-clipboard
// shortcut.
package ui

import (
	"bytes"
	"image"
	"image/png"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"
	"golang.org/x/image/draw"

	"github.com/jrhale/lr35902emu/internal/emu"
)

// inputSource supplies one frame's worth of button state. Implemented by
// *script.Player for scripted playback; without one, Update calls
// pollButtons directly for keyboard input.
type inputSource interface {
	Next() emu.Buttons
}

// App is an ebiten.Game driving an emu.Machine: poll input, run one frame,
// present the result.
type App struct {
	cfg    Config
	m      *emu.Machine
	tex    *ebiten.Image
	script inputSource

	clipboardReady bool
}

// SetScript replaces keyboard polling with a scripted input source (see
// internal/script) for deterministic, recorded playback.
func (a *App) SetScript(p inputSource) { a.script = p }

// NewApp constructs a presentation host around an already-loaded Machine.
// Battery RAM load/save is the caller's responsibility (see cmd/gbemu),
// since it happens once at startup and once at shutdown regardless of
// whether a window was ever shown.
func NewApp(cfg Config, m *emu.Machine) *App {
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(160*cfg.Scale, 144*cfg.Scale)
	return &App{cfg: cfg, m: m, tex: ebiten.NewImage(160, 144)}
}

// keyMap is the spec's recommended key mapping (§6): the eight semantic
// inputs are fixed, the host keys are not.
var keyMap = []struct {
	key ebiten.Key
	set func(*emu.Buttons)
}{
	{ebiten.KeyZ, func(b *emu.Buttons) { b.A = true }},
	{ebiten.KeyX, func(b *emu.Buttons) { b.B = true }},
	{ebiten.KeyEnter, func(b *emu.Buttons) { b.Start = true }},
	{ebiten.KeyShiftRight, func(b *emu.Buttons) { b.Select = true }},
	{ebiten.KeyUp, func(b *emu.Buttons) { b.Up = true }},
	{ebiten.KeyDown, func(b *emu.Buttons) { b.Down = true }},
	{ebiten.KeyLeft, func(b *emu.Buttons) { b.Left = true }},
	{ebiten.KeyRight, func(b *emu.Buttons) { b.Right = true }},
}

func pollButtons() emu.Buttons {
	var b emu.Buttons
	for _, k := range keyMap {
		if ebiten.IsKeyPressed(k.key) {
			k.set(&b)
		}
	}
	return b
}

func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		a.screenshotToClipboard()
	}
	if a.script != nil {
		a.m.RunFrame(a.script.Next())
	} else {
		a.m.RunFrame(pollButtons())
	}
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	a.tex.WritePixels(a.m.Framebuffer())
	bounds := screen.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(bounds.Dx())/160, float64(bounds.Dy())/144)
	screen.DrawImage(a.tex, op)
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return 160 * a.cfg.Scale, 144 * a.cfg.Scale
}

// screenshotToClipboard encodes the current frame as PNG, upscaled with
// x/image/draw's bilinear scaler, and pushes it to the system clipboard.
func (a *App) screenshotToClipboard() {
	if !a.clipboardReady {
		a.clipboardReady = clipboard.Init() == nil
	}
	if !a.clipboardReady {
		return
	}
	src := &image.RGBA{
		Pix:    a.m.Framebuffer(),
		Stride: 160 * 4,
		Rect:   image.Rect(0, 0, 160, 144),
	}
	scale := a.cfg.Scale
	if scale < 1 {
		scale = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, 160*scale, 144*scale))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return
	}
	clipboard.Write(clipboard.FmtImage, buf.Bytes())
}

// Run starts the ebiten event loop and blocks until the window closes.
func (a *App) Run() error {
	return ebiten.RunGame(a)
}
