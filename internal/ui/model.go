package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kamatealif/musializer/internal/engine"
	"github.com/kamatealif/musializer/internal/player"
	"github.com/kamatealif/musializer/internal/queue"
	"github.com/kamatealif/musializer/internal/util"
)

// Visualizer is the slice of the engine the model drives. *engine.Engine
// satisfies it.
type Visualizer interface {
	Load(samples []float64, sampleRate int, t engine.Transport)
	Tick() engine.TickResult
	Pause()
	Resume()
	Finish()
	SetBars(n int) error
	SetBanding(b engine.Banding) error
	Bars() int
	Banding() engine.Banding
	Err() error
}

// Model is the Bubble Tea model for the musializer TUI.
type Model struct {
	viz    Visualizer
	tracks *queue.Queue
	field  *BarField
	fps    int

	player  *player.Player
	meta    player.Metadata
	frame   engine.TickResult
	volume  float64
	paused  bool
	loading bool
	loadErr error

	spin     spinner.Model
	width    int
	height   int
	quitting bool
}

// New builds the model around an engine and a track queue. fps is the
// render rate the engine is ticked at.
func New(viz Visualizer, tracks *queue.Queue, fps int) Model {
	if fps < 1 {
		fps = 60
	}
	return Model{
		viz:     viz,
		tracks:  tracks,
		field:   NewBarField(),
		fps:     fps,
		spin:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		volume:  1,
		loading: tracks.Current() != nil,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{renderTick(m.fps), m.spin.Tick, tea.SetWindowTitle("musializer")}
	if cur := m.tracks.Current(); cur != nil {
		cmds = append(cmds, loadTrack(cur.Path, m.tracks.Index()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case trackLoadedMsg:
		if msg.index != m.tracks.Index() {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.loadErr = msg.err
			return m, nil
		}
		m.loadErr = nil
		if m.player != nil {
			m.player.Close()
		}
		p, err := player.New(msg.buf)
		if err != nil {
			m.loadErr = err
			return m, nil
		}
		m.player = p
		m.meta = msg.buf.Meta
		m.volume = p.Volume()
		m.paused = false
		m.viz.Load(msg.buf.Samples, msg.buf.SampleRate, p)
		return m, tea.Batch(watchDone(p), tea.SetWindowTitle(windowTitle(m.meta.Title, false)))

	case playbackEndedMsg:
		if msg.player != m.player {
			return m, nil
		}
		m.viz.Finish()
		if !m.tracks.Advance() {
			return m.quit()
		}
		return m.startLoad()

	case renderTickMsg:
		if m.quitting {
			return m, nil
		}
		if m.player != nil {
			m.volume = m.player.Volume()
			m.paused = m.player.Paused()
		}
		m.frame = m.viz.Tick()
		return m, renderTick(m.fps)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if isQuit(msg) {
		return m.quit()
	}
	switch msg.String() {
	case " ":
		if m.player == nil {
			return m, nil
		}
		m.player.TogglePause()
		m.paused = m.player.Paused()
		if m.paused {
			m.viz.Pause()
		} else {
			m.viz.Resume()
		}
		return m, tea.SetWindowTitle(windowTitle(m.meta.Title, m.paused))

	case "left", "h":
		if m.player != nil {
			m.player.SeekBy(-5 * time.Second)
		}
	case "right", "l":
		if m.player != nil {
			m.player.SeekBy(5 * time.Second)
		}
	case "up", "k":
		if m.player != nil {
			m.player.AdjustVolume(0.05)
			m.volume = m.player.Volume()
		}
	case "down", "j":
		if m.player != nil {
			m.player.AdjustVolume(-0.05)
			m.volume = m.player.Volume()
		}
	case "b":
		m.viz.SetBars(nextBarPreset(m.viz.Bars()))
	case "m":
		if m.viz.Banding() == engine.BandingLog {
			m.viz.SetBanding(engine.BandingLinear)
		} else {
			m.viz.SetBanding(engine.BandingLog)
		}
	case "n":
		if m.tracks.Advance() {
			return m.startLoad()
		}
	case "p":
		if m.tracks.Previous() {
			return m.startLoad()
		}
		// Already on the first track: restart it.
		if m.player != nil {
			m.player.SeekTo(0)
		}
	}
	return m, nil
}

// startLoad kicks off a decode for the queue's current track.
func (m Model) startLoad() (tea.Model, tea.Cmd) {
	cur := m.tracks.Current()
	if cur == nil {
		return m, nil
	}
	m.loading = true
	m.loadErr = nil
	return m, loadTrack(cur.Path, m.tracks.Index())
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.player != nil {
		m.player.Close()
	}
	return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := m.width
	if w < 30 {
		w = 50
	}

	header := headerStyle.Render("musializer")
	if m.tracks.Len() > 1 {
		header += "  " + helpStyle.Render(fmt.Sprintf("%d/%d", m.tracks.Index()+1, m.tracks.Len()))
	}

	title := titleStyle.Render(m.displayTitle())
	subtitle := ""
	switch {
	case m.meta.Artist != "" && m.meta.Album != "":
		subtitle = artistStyle.Render(fmt.Sprintf("%s - %s", m.meta.Artist, m.meta.Album))
	case m.meta.Artist != "":
		subtitle = artistStyle.Render(m.meta.Artist)
	case m.meta.Album != "":
		subtitle = artistStyle.Render(m.meta.Album)
	}

	body := m.renderBody(w)

	elapsedStr := timeStyle.Render(util.FormatDuration(m.frame.Elapsed))
	durationStr := timeStyle.Render(util.FormatDuration(m.frame.Duration))
	barWidth := w - len(util.FormatDuration(m.frame.Elapsed)) - len(util.FormatDuration(m.frame.Duration)) - 8
	progressLine := fmt.Sprintf("%s %s %s", elapsedStr, renderProgressBar(m.frame.Progress, barWidth), durationStr)

	statusLine := m.renderStatus(w)
	help := helpStyle.Render(helpText(m.tracks.Len() > 1))

	lines := "\n"
	lines += "  " + header + "\n"
	lines += "\n"
	lines += "  " + title + "\n"
	if subtitle != "" {
		lines += "  " + subtitle + "\n"
	}
	lines += "\n"
	lines += body + "\n"
	lines += "\n"
	lines += "  " + progressLine + "\n"
	lines += "\n"
	lines += "  " + statusLine + "\n"
	lines += "\n"
	lines += "  " + help + "\n"
	return lines
}

// renderBody draws the bar field, or whatever stands in for it while there
// is nothing to visualize.
func (m Model) renderBody(w int) string {
	fieldHeight := m.height - 13
	if m.height == 0 {
		fieldHeight = 10
	}
	if fieldHeight < 4 {
		fieldHeight = 4
	}
	if fieldHeight > 20 {
		fieldHeight = 20
	}

	var inner string
	switch {
	case m.loadErr != nil:
		inner = errorStyle.Render("error: " + m.loadErr.Error())
	case m.loading || m.frame.State == engine.StateLoading:
		inner = m.spin.View() + helpStyle.Render(" analyzing audio...")
	case m.frame.State == engine.StateEmpty:
		if err := m.viz.Err(); err != nil {
			inner = errorStyle.Render("error: " + err.Error())
		} else {
			inner = helpStyle.Render("no track loaded")
		}
	default:
		field := m.field.Render(m.frame.Heights, m.frame.Caps, w-4, fieldHeight)
		rows := strings.Split(field, "\n")
		for i, row := range rows {
			rows[i] = "  " + row
		}
		return strings.Join(rows, "\n")
	}
	return "  " + inner
}

func (m Model) renderStatus(w int) string {
	icon, text := stateLabel(m.frame.State, m.paused)
	left := fmt.Sprintf("%s %s · %d bars · %s", icon, text, m.viz.Bars(), m.viz.Banding())
	vol := renderVolumePercent(m.volume)
	gap := w - len([]rune(left)) - len(vol) - 4
	if gap < 2 {
		gap = 2
	}
	return statusStyle.Render(left) + spaces(gap) + statusStyle.Render(vol)
}

func (m Model) displayTitle() string {
	if m.meta.Title != "" {
		return m.meta.Title
	}
	if cur := m.tracks.Current(); cur != nil {
		return cur.Title
	}
	return "musializer"
}

func stateLabel(s engine.State, paused bool) (string, string) {
	switch s {
	case engine.StatePlaying:
		if paused {
			return "❚❚", "paused"
		}
		return "▶", "playing"
	case engine.StatePaused:
		return "❚❚", "paused"
	case engine.StateEnded:
		return "◼", "ended"
	case engine.StateLoading:
		return "…", "loading"
	}
	return "·", "idle"
}

func windowTitle(title string, paused bool) string {
	if title == "" {
		return "musializer"
	}
	if paused {
		return "⏸ " + title + " — musializer"
	}
	return "▶ " + title + " — musializer"
}
