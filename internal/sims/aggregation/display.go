package aggregation

import "image/color"

const paletteSize = 16

var aggregationPalette = buildPalette()

// Palette exposes the color palette used for rendering the cluster: index 0 is
// the background, later indices follow stick order from deep blue to white.
func (w *World) Palette() []color.RGBA {
	return aggregationPalette
}

func buildPalette() []color.RGBA {
	palette := make([]color.RGBA, paletteSize)
	palette[0] = color.RGBA{R: 8, G: 8, B: 14, A: 255}
	first := color.NRGBA{R: 30, G: 60, B: 200, A: 255}
	mid := color.NRGBA{R: 80, G: 200, B: 230, A: 255}
	last := color.NRGBA{R: 245, G: 245, B: 255, A: 255}
	steps := paletteSize - 2
	for i := 1; i < paletteSize; i++ {
		t := float64(i-1) / float64(steps)
		var c color.NRGBA
		if t < 0.5 {
			c = lerp(first, mid, t*2)
		} else {
			c = lerp(mid, last, (t-0.5)*2)
		}
		palette[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
	}
	return palette
}

func lerp(a, b color.NRGBA, t float64) color.NRGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x)*(1-t) + float64(y)*t + 0.5)
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
