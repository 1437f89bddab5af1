package render

import (
	"fmt"
	"image/color"
	"math"
)

// Leg colours share one saturation and lightness and differ only in hue.
const (
	paletteSaturation = 0.7
	paletteLightness  = 0.5
)

// legColors returns n evenly spaced hues, one per leg, starting at red.
func legColors(n int) []color.RGBA {
	if n <= 0 {
		return nil
	}

	chroma := (1 - math.Abs(2*paletteLightness-1)) * paletteSaturation
	base := paletteLightness - chroma/2

	colors := make([]color.RGBA, n)
	for i := range colors {
		sector := 6 * float64(i) / float64(n)
		mid := chroma * (1 - math.Abs(math.Mod(sector, 2)-1))

		var r, g, b float64
		switch int(sector) {
		case 0:
			r, g = chroma, mid
		case 1:
			r, g = mid, chroma
		case 2:
			g, b = chroma, mid
		case 3:
			g, b = mid, chroma
		case 4:
			r, b = mid, chroma
		default:
			r, b = chroma, mid
		}
		colors[i] = color.RGBA{R: channel(r + base), G: channel(g + base), B: channel(b + base), A: 255}
	}
	return colors
}

func channel(v float64) uint8 { return uint8(math.Round(v * 255)) }

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
