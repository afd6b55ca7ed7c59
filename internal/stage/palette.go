package stage

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/iburimskiy/cog-choir/internal/catalog"
)

// hsvToRgb converts HSV to RGB (hue: 0-360, saturation: 0-1, value: 0-1)
func hsvToRgb(h, s, v float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return uint8((r + m) * 255), uint8((g + m) * 255), uint8((b + m) * 255)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// formatDuration formats a duration as MM:SS
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// Brass hues per statue class.
var classHue = map[string]float64{
	catalog.ClassShortFront: 32,
	catalog.ClassShortSide:  44,
	catalog.ClassTallFront:  20,
	catalog.ClassTallSide:   52,
}

// bodyColor returns the fill for a template, brighter while singing.
func bodyColor(t catalog.Template, singing bool) color.RGBA {
	if !t.CanSing() {
		return color.RGBA{R: 90, G: 90, B: 95, A: 255}
	}
	v := 0.6
	if singing {
		v = 0.95
	}
	r, g, b := hsvToRgb(classHue[t.Class], 0.65, v)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
