package imgproc

import (
	"image/color"
	"math"
)

type HSV struct {
	H uint32  // 0 <= H < 360
	S float64 // 0 <= S <= 1
	V float64 // 0 <= V <= 1
}

type Direction int

const (
	CW Direction = iota
	CCW
)

// Hue the face box starts with (cyan) and how far it turns on every blink
const (
	faceHue         = 180
	hueStepPerBlink = 30
)

// Rotates the hue `H` by a number of `degrees` in the given `direction`, wrapping at 360
func (col *HSV) RotateHue(degrees uint32, direction Direction) {
	degrees %= 360
	switch direction {
	case CW:
		col.H = (col.H + degrees) % 360
	case CCW:
		col.H = (col.H + 360 - degrees) % 360
	}
}

// Converts an HSV color to RGBA, where `A` is implicitly set to 255 (solid)
func (col HSV) RGBA() color.RGBA {
	h := float64(col.H % 360)
	c := col.V * col.S
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := col.V - c

	var rp, gp, bp float64 // R' G' B'
	switch {
	case h < 60:
		rp, gp, bp = c, x, 0
	case h < 120:
		rp, gp, bp = x, c, 0
	case h < 180:
		rp, gp, bp = 0, c, x
	case h < 240:
		rp, gp, bp = 0, x, c
	case h < 300:
		rp, gp, bp = x, 0, c
	default:
		rp, gp, bp = c, 0, x
	}

	r := uint8(math.Round((rp + m) * 255))
	g := uint8(math.Round((gp + m) * 255))
	b := uint8(math.Round((bp + m) * 255))

	return color.RGBA{r, g, b, 255}
}

// FaceColor returns the face box color after `blinks` blinks
func FaceColor(blinks int) color.RGBA {
	col := HSV{H: faceHue, S: 1, V: 1}
	col.RotateHue(uint32(blinks%12)*hueStepPerBlink, CW)
	return col.RGBA()
}
