package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kamatealif/musializer/internal/player"
)

type renderTickMsg time.Time

type trackLoadedMsg struct {
	index int
	buf   *player.Buffer
	err   error
}

type playbackEndedMsg struct {
	player *player.Player
}

// renderTick drives the engine at the configured frame rate.
func renderTick(fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return renderTickMsg(t)
	})
}

// loadTrack decodes a track off the Update loop. The queue index rides
// along so a slow decode for a track the user already skipped is ignored.
func loadTrack(path string, index int) tea.Cmd {
	return func() tea.Msg {
		buf, err := player.Load(path)
		return trackLoadedMsg{index: index, buf: buf, err: err}
	}
}

// watchDone waits for the device to drain the current track.
func watchDone(p *player.Player) tea.Cmd {
	return func() tea.Msg {
		<-p.Done()
		return playbackEndedMsg{player: p}
	}
}
