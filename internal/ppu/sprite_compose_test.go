package ppu

import "testing"

func TestComposeSpriteLinePriorityAndTransparency(t *testing.T) {
	mem := mockVRAM{}
	// Sprite tile with a single opaque leftmost pixel at bit7: lo=0x01<<7 -> 0x80, hi=0
	base := uint16(0x8000)
	mem[base+0] = 0x80
	mem[base+1] = 0x00
	sprites := []Sprite{{X: 10, Y: 5, Tile: 0, Attr: 0, OAMIndex: 0}}
	var bgci [160]byte
	out := ComposeSpriteLine(mem, sprites, 5, bgci, false)
	if out[10] == 0 {
		t.Fatalf("expected sprite pixel at x=10")
	}
	// With priority behind BG and bgci non-zero, pixel must be skipped
	sprites[0].Attr = 1 << 7
	bgci[10] = 1
	out = ComposeSpriteLine(mem, sprites, 5, bgci, false)
	if out[10] != 0 {
		t.Fatalf("expected sprite pixel to be hidden behind BG")
	}
}

func TestComposeSpriteLineFallsThroughTransparentFrontSprite(t *testing.T) {
	mem := mockVRAM{}
	// Tile 0: fully transparent (lo=hi=0), used by the front (higher
	// priority) sprite. Tile 1: opaque leftmost pixel, used by the sprite
	// behind it.
	frontBase := uint16(0x8000)
	mem[frontBase+0] = 0x00
	mem[frontBase+1] = 0x00
	backBase := uint16(0x8000) + 1*16
	mem[backBase+0] = 0x80
	mem[backBase+1] = 0x00

	front := Sprite{X: 10, Y: 5, Tile: 0, Attr: 0, OAMIndex: 0} // higher priority (lower OAM index)
	back := Sprite{X: 10, Y: 5, Tile: 1, Attr: 0, OAMIndex: 1}
	var bgci [160]byte
	out := ComposeSpriteLine(mem, []Sprite{front, back}, 5, bgci, false)
	if out[10] == 0 {
		t.Fatalf("expected the opaque pixel of the lower-priority sprite to show through a transparent cutout in the front sprite")
	}
}

func TestComposeSpriteLineTieBreaker(t *testing.T) {
	mem := mockVRAM{}
	// Two sprites overlap at x=20; both opaque full row (lo=0xFF, hi=0)
	base := uint16(0x8000)
	mem[base+0] = 0xFF
	mem[base+1] = 0x00
	s0 := Sprite{X: 19, Y: 0, Tile: 0, Attr: 0, OAMIndex: 5}
	s1 := Sprite{X: 20, Y: 0, Tile: 0, Attr: 0, OAMIndex: 3}
	var bgci [160]byte
	out := ComposeSpriteLine(mem, []Sprite{s0, s1}, 0, bgci, false)
	// At x=20, s0 contributes col=1 (exists) and s1 contributes col=0; smaller X wins -> s0 (X=19) should win
	if out[20] == 0 {
		t.Fatalf("expected a sprite at x=20")
	}
}
