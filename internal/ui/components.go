package ui

import (
	"fmt"
	"strings"
)

// renderProgressBar draws track progress as a fixed-width line. The ratio
// comes clamped from the engine but is clamped again for direct callers.
func renderProgressBar(ratio float64, width int) string {
	if width < 10 {
		width = 10
	}
	filled := int(clamp01(ratio) * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("━", filled) + strings.Repeat("─", width-filled)
}

func renderVolumePercent(vol float64) string {
	return fmt.Sprintf("vol %d%%", int(vol*100+0.5))
}

func spaces(n int) string {
	if n < 0 {
		n = 0
	}
	return strings.Repeat(" ", n)
}
