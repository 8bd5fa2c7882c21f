package ui

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
)

// The bar grid writes its own escape codes so every column can carry its
// own color without allocating a style object per cell. lipgloss still
// styles the surrounding chrome.

type colorLevel uint8

const (
	colorOff colorLevel = iota
	colorANSI
	color256
	colorTrue
)

var (
	levelOnce sync.Once
	level     colorLevel
	seqCache  sync.Map
)

func terminalColorLevel() colorLevel {
	levelOnce.Do(func() {
		if _, disabled := os.LookupEnv("NO_COLOR"); disabled {
			level = colorOff
			return
		}
		term := strings.ToLower(os.Getenv("TERM"))
		colorTerm := strings.ToLower(os.Getenv("COLORTERM"))
		switch {
		case strings.Contains(colorTerm, "truecolor"), strings.Contains(colorTerm, "24bit"):
			level = colorTrue
		case strings.Contains(term, "256color"):
			level = color256
		case term == "", term == "dumb":
			level = colorOff
		default:
			level = colorANSI
		}
	})
	return level
}

type rgb struct {
	r, g, b uint8
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

// hsv converts hue/saturation/value in [0,1] to RGB. Hue wraps.
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

// mix blends a toward b by t.
func mix(a, b rgb, t float64) rgb {
	t = clamp01(t)
	return rgb{
		r: uint8(float64(a.r) + (float64(b.r)-float64(a.r))*t),
		g: uint8(float64(a.g) + (float64(b.g)-float64(a.g))*t),
		b: uint8(float64(a.b) + (float64(b.b)-float64(a.b))*t),
	}
}

// colorWriter tracks the active escape sequence so runs of cells in one
// color emit a single code.
type colorWriter struct {
	level   colorLevel
	current uint32
}

func newColorWriter(level colorLevel) colorWriter {
	return colorWriter{level: level, current: ^uint32(0)}
}

func (w *colorWriter) set(sb *strings.Builder, c rgb) {
	if w.level == colorOff {
		return
	}
	key := uint32(c.r)<<16 | uint32(c.g)<<8 | uint32(c.b)
	if key == w.current {
		return
	}
	sb.WriteString(escapeFor(w.level, c))
	w.current = key
}

func (w *colorWriter) reset(sb *strings.Builder) {
	if w.level == colorOff || w.current == ^uint32(0) {
		return
	}
	sb.WriteString("\x1b[0m")
	w.current = ^uint32(0)
}

var ansiPalette = []rgb{
	{0, 0, 0},
	{205, 49, 49},
	{13, 188, 121},
	{229, 229, 16},
	{36, 114, 200},
	{188, 63, 188},
	{17, 168, 205},
	{229, 229, 229},
}

func escapeFor(level colorLevel, c rgb) string {
	key := uint32(level)<<24 | uint32(c.r)<<16 | uint32(c.g)<<8 | uint32(c.b)
	if seq, ok := seqCache.Load(key); ok {
		return seq.(string)
	}

	var seq string
	switch level {
	case colorTrue:
		seq = fmt.Sprintf("\x1b[38;2;%d;%d;%dm", c.r, c.g, c.b)
	case color256:
		idx := 16 + 36*(int(c.r)*5/255) + 6*(int(c.g)*5/255) + int(c.b)*5/255
		seq = fmt.Sprintf("\x1b[38;5;%dm", idx)
	case colorANSI:
		best, bestDist := 0, math.MaxFloat64
		for i, p := range ansiPalette {
			dr := float64(c.r) - float64(p.r)
			dg := float64(c.g) - float64(p.g)
			db := float64(c.b) - float64(p.b)
			if d := dr*dr + dg*dg + db*db; d < bestDist {
				bestDist, best = d, i
			}
		}
		seq = fmt.Sprintf("\x1b[%dm", 30+best)
	}

	seqCache.Store(key, seq)
	return seq
}
