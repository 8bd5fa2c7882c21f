package ui

import "strings"

var barRunes = []rune(" ▁▂▃▄▅▆▇█")

// capRunes mark the cap position within its cell, bottom to top.
var capRunes = []rune("▁─▔")

// BarField renders engine heights as colored block columns with optional
// falling caps above them.
type BarField struct {
	level    colorLevel
	startHue float64
	endHue   float64
}

// NewBarField picks the color depth from the terminal environment.
func NewBarField() *BarField {
	return &BarField{
		level:    terminalColorLevel(),
		startHue: 0.55,
		endHue:   0.95,
	}
}

func (f *BarField) barColor(i, n int) rgb {
	t := 0.0
	if n > 1 {
		t = float64(i) / float64(n-1)
	}
	return hsv(f.startHue+(f.endHue-f.startHue)*t, 0.65, 1)
}

// Render draws heights (and caps, when non-nil) into a width-by-height
// cell grid, bottom-anchored. Heights outside [0,1] clamp. Bars that do
// not fit the width are dropped from the right.
func (f *BarField) Render(heights, caps []float64, width, height int) string {
	n := len(heights)
	if n == 0 || width < 1 || height < 1 {
		return ""
	}

	colWidth := (width - 2) / n
	if colWidth < 1 {
		colWidth = 1
	}
	gap := 1
	if colWidth <= 1 {
		gap = 0
	}
	blockWidth := colWidth - gap
	if blockWidth < 1 {
		blockWidth = 1
	}

	drawn := n
	if perBar := blockWidth + gap; drawn*perBar-gap > width {
		drawn = (width + gap) / perBar
		if drawn < 1 {
			drawn = 1
		}
	}

	writer := newColorWriter(f.level)
	white := rgb{255, 255, 255}
	rows := make([]string, height)
	var sb strings.Builder

	for r := range height {
		sb.Reset()
		rowFromBottom := height - 1 - r
		for i := range drawn {
			if i > 0 && gap > 0 {
				sb.WriteByte(' ')
			}

			level := clamp01(heights[i]) * float64(height)
			ch := ' '
			isCap := false
			switch {
			case level > float64(rowFromBottom)+1:
				ch = barRunes[len(barRunes)-1]
			case level > float64(rowFromBottom):
				frac := level - float64(rowFromBottom)
				ch = barRunes[int(frac*float64(len(barRunes)-1))]
			}

			if caps != nil && i < len(caps) {
				capLevel := clamp01(caps[i]) * float64(height)
				capCell := int(capLevel)
				if capCell >= height {
					capCell = height - 1
				}
				if capCell == rowFromBottom && capLevel > level {
					idx := int((capLevel - float64(capCell)) * float64(len(capRunes)))
					if idx >= len(capRunes) {
						idx = len(capRunes) - 1
					}
					ch = capRunes[idx]
					isCap = true
				}
			}

			if ch != ' ' {
				c := f.barColor(i, drawn)
				if isCap {
					c = mix(c, white, 0.5)
				}
				writer.set(&sb, c)
			}
			for range blockWidth {
				sb.WriteRune(ch)
			}
		}
		writer.reset(&sb)
		rows[r] = sb.String()
	}
	return strings.Join(rows, "\n")
}
