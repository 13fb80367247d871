// Package draw renders the play area on a terminal using half-block cells.
package draw

import (
	"fmt"
	"strings"
)

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Text styles for overlays written through a ChunkWriter.
const (
	StyleReset  = "\033[0m"
	StyleBold   = "\033[1m"
	StyleDim    = "\033[2m"
	StyleRed    = "\033[91m"
	StyleGreen  = "\033[92m"
	StyleYellow = "\033[93m"
	StyleCyan   = "\033[96m"
)

// Color is a canvas pen color. The zero value is an unset pixel.
type Color uint8

const (
	ColorNone Color = iota
	ColorWhite
	ColorGray
	ColorDarkGray
	ColorRed
	ColorYellow
	ColorGreen
	ColorOrange
	ColorBlue
	ColorPurple
	ColorGold
	ColorCoral
	ColorTeal
	ColorSky
	ColorSage
	ColorCream
	numColors
)

var palette = [numColors]string{
	ColorWhite:    "#F5F5F5",
	ColorGray:     "#9E9E9E",
	ColorDarkGray: "#4A4A4A",
	ColorRed:      "#E53935",
	ColorYellow:   "#FFC107",
	ColorGreen:    "#43A047",
	ColorOrange:   "#FB8C00",
	ColorBlue:     "#1E3A8A",
	ColorPurple:   "#6D28D9",
	ColorGold:     "#FFD700",
	ColorCoral:    "#FF6B6B",
	ColorTeal:     "#4ECDC4",
	ColorSky:      "#45B7D1",
	ColorSage:     "#96CEB4",
	ColorCream:    "#FFEAA7",
}

// Precomputed truecolor escape sequences.
var fgSeq, bgSeq [numColors]string

func init() {
	for c := ColorWhite; c < numColors; c++ {
		var r, g, b int
		fmt.Sscanf(palette[c], "#%02x%02x%02x", &r, &g, &b)
		fgSeq[c] = fmt.Sprintf("\033[38;2;%d;%d;%dm", r, g, b)
		bgSeq[c] = fmt.Sprintf("\033[48;2;%d;%d;%dm", r, g, b)
	}
}

// ParseHex maps a "#RRGGBB" palette entry to its Color. Unknown values map to
// ColorWhite.
func ParseHex(hex string) Color {
	for c := ColorWhite; c < numColors; c++ {
		if strings.EqualFold(palette[c], hex) {
			return c
		}
	}
	return ColorWhite
}

// Hex returns the "#RRGGBB" form of c.
func (c Color) Hex() string {
	if c >= numColors {
		return ""
	}
	return palette[c]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
