package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kamatealif/musializer/internal/engine"
)

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText(hasQueue bool) string {
	s := "space pause  ←/→ seek  ↑/↓ volume  b bars  m bands"
	if hasQueue {
		s += "  n/p track"
	}
	return s + "  q quit"
}

// nextBarPreset cycles through the allowed bar counts.
func nextBarPreset(cur int) int {
	for i, n := range engine.BarPresets {
		if n == cur {
			return engine.BarPresets[(i+1)%len(engine.BarPresets)]
		}
	}
	return engine.BarPresets[0]
}
