package export

import "math"

type rgb struct {
	r, g, b uint8
}

// background is the frame fill behind the bars.
var background = rgb{16, 16, 26}

// stripTrack and accent are the unplayed and played parts of the
// progress strip.
var (
	stripTrack = rgb{40, 40, 56}
	accent     = rgb{255, 60, 120}
)

const (
	barHueStart = 0.55
	barHueEnd   = 0.95
	barSat      = 0.65
)

// barColor assigns each bar a hue along the ramp, matching the terminal
// renderer so exports look like the live view.
func barColor(i, n int) rgb {
	t := 0.0
	if n > 1 {
		t = float64(i) / float64(n-1)
	}
	return hsv(barHueStart+(barHueEnd-barHueStart)*t, barSat, 1)
}

// capColor lightens the bar color toward white.
func capColor(c rgb) rgb {
	return mix(c, rgb{255, 255, 255}, 0.5)
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

func hsv(h, s, v float64) rgb {
	h = math.Mod(h, 1)
	if h < 0 {
		h++
	}
	s = clamp01(s)
	v = clamp01(v)

	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return rgb{uint8(r * 255), uint8(g * 255), uint8(b * 255)}
}

func mix(a, b rgb, t float64) rgb {
	t = clamp01(t)
	return rgb{
		r: uint8(float64(a.r) + (float64(b.r)-float64(a.r))*t),
		g: uint8(float64(a.g) + (float64(b.g)-float64(a.g))*t),
		b: uint8(float64(a.b) + (float64(b.b)-float64(a.b))*t),
	}
}
