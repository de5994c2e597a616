package ppu

import "sort"

// Sprite is a decoded OAM entry. X and Y are already screen-space adjusted
// (X = OAM byte - 8, Y = OAM byte - 16), matching how a sprite's top-left
// pixel maps onto the 160x144 frame.
type Sprite struct {
	X, Y     int
	Tile     byte
	Attr     byte
	OAMIndex int
}

const (
	attrPalette1  = 1 << 4
	attrFlipX     = 1 << 5
	attrFlipY     = 1 << 6
	attrBehindBG  = 1 << 7
)

// spritesOnLine scans OAM in table order and returns up to ten sprites that
// cover the given scanline, per the hardware per-line sprite limit.
func spritesOnLine(oam *[0xA0]byte, ly byte, tall bool) []Sprite {
	height := 8
	if tall {
		height = 16
	}
	var found []Sprite
	for i := 0; i < 40 && len(found) < 10; i++ {
		base := i * 4
		rawY := oam[base+0]
		rawX := oam[base+1]
		tile := oam[base+2]
		attr := oam[base+3]
		y := int(rawY) - 16
		row := int(ly) - y
		if row < 0 || row >= height {
			continue
		}
		found = append(found, Sprite{X: int(rawX) - 8, Y: y, Tile: tile, Attr: attr, OAMIndex: i})
	}
	return found
}

// ComposeSpriteLine resolves sprite priority and BG-transparency for one
// scanline, returning the winning raw (pre-palette) color index per pixel;
// 0 means no visible sprite pixel at that x. tall selects 8x16 sprites.
func ComposeSpriteLine(mem VRAMReader, sprites []Sprite, ly byte, bgColorIndex [160]byte, tall bool) [160]byte {
	colors, _, _ := composeSpriteLineDetailed(mem, sprites, ly, bgColorIndex, tall)
	return colors
}

// composeSpriteLineDetailed is ComposeSpriteLine plus the palette selector
// (OBP0/OBP1) of the winning sprite at each pixel, needed to translate the
// raw color index during full-frame rendering.
func composeSpriteLineDetailed(mem VRAMReader, sprites []Sprite, ly byte, bgColorIndex [160]byte, tall bool) (colors [160]byte, palette [160]byte, present [160]bool) {
	height := 8
	if tall {
		height = 16
	}

	ranked := make([]*Sprite, len(sprites))
	for i := range sprites {
		ranked[i] = &sprites[i]
	}
	sort.SliceStable(ranked, func(i, j int) bool { return higherPriority(ranked[i], ranked[j]) })

	for x := 0; x < 160; x++ {
		for _, s := range ranked {
			col := x - s.X
			if col < 0 || col >= 8 {
				continue
			}
			row := int(ly) - s.Y
			if row < 0 || row >= height {
				continue
			}
			ci := spriteColorIndex(mem, s, row, col, height, tall)
			if ci == 0 {
				// Transparent at this pixel for this sprite: fall through
				// to the next-highest-priority candidate, not the background.
				continue
			}
			if s.Attr&attrBehindBG != 0 && bgColorIndex[x] != 0 {
				break
			}
			colors[x] = ci
			present[x] = true
			if s.Attr&attrPalette1 != 0 {
				palette[x] = 1
			}
			break
		}
	}
	return
}

// spriteColorIndex decodes the raw (pre-palette) color index of sprite s at
// the given scanline row and sprite-local column, honoring the X/Y flip
// attribute bits and 8x16 tile stacking.
func spriteColorIndex(mem VRAMReader, s *Sprite, row, col, height int, tall bool) byte {
	if s.Attr&attrFlipY != 0 {
		row = height - 1 - row
	}
	tile := s.Tile
	localRow := row
	if tall {
		tile &^= 1
		if row >= 8 {
			tile++
			localRow = row - 8
		}
	}
	if s.Attr&attrFlipX == 0 {
		col = 7 - col
	}
	base := uint16(0x8000) + uint16(tile)*16 + uint16(localRow)*2
	lo := mem.Read(base)
	hi := mem.Read(base + 1)
	return ((hi>>uint(col))&1)<<1 | ((lo >> uint(col)) & 1)
}

// higherPriority reports whether candidate outranks current for the same
// pixel: smaller X wins, ties broken by OAM table order.
func higherPriority(candidate, current *Sprite) bool {
	if candidate.X != current.X {
		return candidate.X < current.X
	}
	return candidate.OAMIndex < current.OAMIndex
}
