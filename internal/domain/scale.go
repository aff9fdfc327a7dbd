package domain

import (
	"fmt"
	"math"
)

// Map defaults used by the dashboard page.
const (
	MapCenterLat  = 40.7128
	MapCenterLon  = -74.0060
	MapZoom       = 9
	MarkerSizeMax = 15
)

// ColorStop pins a colour to a position in [0, 1].
type ColorStop struct {
	At  float64
	RGB [3]uint8
}

// ColorScale maps a normalized value to a colour by linear interpolation
// between stops. Stops must be sorted by At.
type ColorScale []ColorStop

// VolumeColors runs lightgreen -> green -> yellow -> orange -> red.
var VolumeColors = ColorScale{
	{At: 0, RGB: [3]uint8{0x90, 0xee, 0x90}},
	{At: 0.25, RGB: [3]uint8{0x00, 0x80, 0x00}},
	{At: 0.5, RGB: [3]uint8{0xff, 0xff, 0x00}},
	{At: 0.75, RGB: [3]uint8{0xff, 0xa5, 0x00}},
	{At: 1, RGB: [3]uint8{0xff, 0x00, 0x00}},
}

// Normalize maps v into [0, 1] relative to r. A degenerate range maps everything to 0.
func Normalize(v float64, r VolumeRange) float64 {
	span := r.Max - r.Min
	if span <= 0 || math.IsNaN(v) {
		return 0
	}
	return clamp01((v - r.Min) / span)
}

// Hex returns the "#rrggbb" colour at t, clamped to [0, 1].
func (s ColorScale) Hex(t float64) string {
	if len(s) == 0 {
		return "#000000"
	}
	t = clamp01(t)
	if t <= s[0].At {
		return hexRGB(s[0].RGB)
	}
	for i := 1; i < len(s); i++ {
		lo, hi := s[i-1], s[i]
		if t > hi.At {
			continue
		}
		f := 0.0
		if hi.At > lo.At {
			f = (t - lo.At) / (hi.At - lo.At)
		}
		var rgb [3]uint8
		for c := range rgb {
			rgb[c] = uint8(math.Round(float64(lo.RGB[c]) + f*(float64(hi.RGB[c])-float64(lo.RGB[c]))))
		}
		return hexRGB(rgb)
	}
	return hexRGB(s[len(s)-1].RGB)
}

// MarkerSize scales a marker diameter linearly with v/maxVolume up to
// sizeMax pixels. Markers never shrink below one pixel.
func MarkerSize(v, maxVolume, sizeMax float64) float64 {
	if maxVolume <= 0 || v <= 0 {
		return 1
	}
	return math.Max(1, sizeMax*math.Min(v/maxVolume, 1))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func hexRGB(rgb [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}
