package renderer

import (
	"sort"
	"strconv"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// paletteHex is the pastel palette slimes are tinted from, plus the stage
// and accent colours.
var paletteHex = map[string]string{
	"apricot":        "#FBCEB1",
	"babyPink":       "#F4C2C2",
	"celeste":        "#B2FFFF",
	"champagne":      "#F7E7CE",
	"cornflowerBlue": "#A0C4FF",
	"creamyMint":     "#D4F0E0",
	"freshAir":       "#A6D6D6",
	"honeydew":       "#F0FFF0",
	"icyBlue":        "#C1E9F2",
	"lavenderBlue":   "#C6B4FC",
	"lavenderMist":   "#E6E0F8",
	"lightCoral":     "#F4A7B9",
	"lightCyan":      "#E0FFFF",
	"lightPink":      "#FFB6C1",
	"lightPlum":      "#E1C4E1",
	"lightYellow":    "#FFF6C8",
	"lilac":          "#DCD0FF",
	"magicMint":      "#A0E7E5",
	"mauve":          "#E0BBE4",
	"mistyRose":      "#FDE2E4",
	"orchid":         "#E2B2E2",
	"palePink":       "#FADADD",
	"palePurple":     "#F2EBF5",
	"pastelPink":     "#FFDFD3",
	"peach":          "#FFDAB9",
	"periwinkle":     "#B4C6FC",
	"powderBlue":     "#B0E0E6",
	"roseQuartz":     "#F7CAC9",
	"seafoamGreen":   "#9FE2BF",
	"serenity":       "#B3CEE5",
	"skyBlue":        "#C3DDF2",
	"soap":           "#CEC8EF",
	"softGreen":      "#C1E1C1",
	"thistle":        "#D8BFD8",
	"wisteria":       "#C9A0DC",
	"stageColor":     "#B4C011",
	"carrot":         "#FFA500",
	"black":          "#000000",
}

// nonTint are palette entries never used as a slime tint.
var nonTint = map[string]bool{"stageColor": true, "carrot": true, "black": true}

// Palette resolves named colours and assigns slime tints.
type Palette struct {
	colors map[string]rl.Color
	tints  []rl.Color // sorted by name so tints are stable across runs
}

// NewPalette parses the built-in colour table.
func NewPalette() *Palette {
	p := &Palette{colors: make(map[string]rl.Color, len(paletteHex))}
	names := make([]string, 0, len(paletteHex))
	for name, hex := range paletteHex {
		c, ok := ParseHex(hex)
		if !ok {
			continue
		}
		p.colors[name] = c
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !nonTint[name] {
			p.tints = append(p.tints, p.colors[name])
		}
	}
	return p
}

// Color returns a named colour.
func (p *Palette) Color(name string) (rl.Color, bool) {
	c, ok := p.colors[name]
	return c, ok
}

// MustColor returns a named colour or magenta when the name is unknown.
func (p *Palette) MustColor(name string) rl.Color {
	if c, ok := p.colors[name]; ok {
		return c
	}
	return rl.Magenta
}

// Tint returns the body colour of slime id.
func (p *Palette) Tint(id uint32) rl.Color {
	return p.tints[int(id)%len(p.tints)]
}

// ParseHex parses "#RRGGBB" into an opaque colour.
func ParseHex(s string) (rl.Color, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return rl.Color{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return rl.Color{}, false
	}
	return rl.Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}
