package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/kamatealif/musializer/internal/analysis"
)

// ErrAnalysis marks a track that could not be analyzed. The engine surfaces
// it through Err after returning to the empty state.
var ErrAnalysis = errors.New("analysis failed")

// State is the engine's lifecycle position.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StatePlaying
	StatePaused
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Transport is the playback clock the engine reads once per tick. The
// position must be continuous across pause/resume cycles; a byte-position
// clock over the output stream satisfies that by construction.
type Transport interface {
	Position() time.Duration
	Playing() bool
}

// TickResult is what one render tick hands to the renderer. Heights and Caps
// are nil in the empty and loading states and reused across ticks otherwise.
type TickResult struct {
	State    State
	Heights  []float64
	Caps     []float64
	Progress float64 // 0-1 through the track
	Elapsed  time.Duration
	Duration time.Duration
}

// analysisResult is the one-shot handoff from a background analysis.
type analysisResult struct {
	gen uint64
	an  *analysis.Analysis
	err error
}

// Engine orchestrates the per-tick pipeline: transport position to spectral
// frame to band targets to smoothed bar heights. All mutable state is owned
// by the tick caller's goroutine; the only concurrent piece is the analysis
// goroutine, which publishes exactly one result into an atomic slot.
type Engine struct {
	cfg      Config
	analyzer *analysis.Analyzer

	state     State
	transport Transport
	an        *analysis.Analysis
	err       error

	layout  *Layout
	hist    *History
	agg     *Aggregator
	motion  *Motion
	caps    *capField
	capsOut []float64
	scratch []float64

	gen  atomic.Uint64
	slot atomic.Pointer[analysisResult]

	analyze func(samples []float64, sampleRate int) (*analysis.Analysis, error)
}

// New builds an engine from a validated configuration. There are no ambient
// singletons: everything the engine touches lives on the struct.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	az, err := analysis.New(cfg.Analysis)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	e := &Engine{
		cfg:      cfg,
		analyzer: az,
		hist:     NewHistory(cfg.HistoryLen),
		motion:   NewMotion(cfg, cfg.Bars),
		caps:     newCapField(cfg.FPS, cfg.CapFrequency, cfg.CapDamping),
		capsOut:  make([]float64, cfg.Bars),
	}
	e.caps.resize(cfg.Bars)
	e.analyze = az.Analyze
	return e, nil
}

// Load submits a decoded track. Any current state moves to loading, bar
// state and energy history are zeroed so the previous track's motion never
// bleeds into the next, and analysis starts on a background goroutine. A
// newer Load supersedes an unfinished one; the stale result is discarded
// when it arrives.
func (e *Engine) Load(samples []float64, sampleRate int, t Transport) {
	gen := e.gen.Add(1)
	e.state = StateLoading
	e.err = nil
	e.an = nil
	e.transport = t
	e.layout = nil
	e.agg = nil
	e.hist.Reset()
	e.motion.Reset()
	e.caps.reset()

	analyze := e.analyze
	go func() {
		an, err := analyze(samples, sampleRate)
		e.deliver(gen, an, err)
	}()
}

// deliver publishes one analysis result. The compare-and-swap loop keeps the
// newest generation in the slot even when an older analysis finishes after a
// newer one.
func (e *Engine) deliver(gen uint64, an *analysis.Analysis, err error) {
	res := &analysisResult{gen: gen, an: an, err: err}
	for {
		cur := e.slot.Load()
		if cur != nil && cur.gen > gen {
			return
		}
		if e.slot.CompareAndSwap(cur, res) {
			return
		}
	}
}

// poll consumes a finished analysis, if any. Results from superseded
// submissions are dropped silently.
func (e *Engine) poll() {
	res := e.slot.Swap(nil)
	if res == nil {
		return
	}
	if res.gen != e.gen.Load() {
		return
	}
	if res.err != nil {
		e.err = fmt.Errorf("%w: %v", ErrAnalysis, res.err)
		e.state = StateEmpty
		return
	}
	e.install(res.an)
}

func (e *Engine) install(an *analysis.Analysis) {
	lay, err := NewLayout(e.cfg.Banding, e.cfg.Bars, e.cfg.MinFreq, e.cfg.MaxFreq, an.BinFreqs())
	if err != nil {
		e.err = fmt.Errorf("%w: %v", ErrAnalysis, err)
		e.state = StateEmpty
		return
	}
	e.an = an
	e.layout = lay
	e.agg = NewAggregator(e.cfg, lay, e.hist)
	e.state = StatePlaying
}

// Tick advances the engine one render step and never blocks. In the active
// states it reads the transport position, samples the matching spectral
// frame, aggregates it into band targets and steps the bar physics; in the
// empty and loading states it returns a no-data result.
func (e *Engine) Tick() TickResult {
	e.poll()

	switch e.state {
	case StateEmpty, StateLoading:
		return TickResult{State: e.state}
	}

	pos := e.transport.Position()
	t := pos.Seconds()
	dur := e.an.Duration()
	if e.state == StatePlaying && t >= dur.Seconds() {
		e.state = StateEnded
	}

	frame := e.an.FrameAt(t)
	e.scratch = frame.Units(e.scratch)
	targets := e.agg.Apply(e.scratch)
	heights := e.motion.Step(targets)

	var caps []float64
	if e.cfg.Caps {
		for i, h := range heights {
			e.capsOut[i] = e.caps.step(i, h)
		}
		caps = e.capsOut
	}

	progress := 0.0
	if s := dur.Seconds(); s > 0 {
		progress = t / s
		if progress < 0 {
			progress = 0
		}
		if progress > 1 {
			progress = 1
		}
	}

	return TickResult{
		State:    e.state,
		Heights:  heights,
		Caps:     caps,
		Progress: progress,
		Elapsed:  pos,
		Duration: dur,
	}
}

// Pause moves playing to paused. Elapsed-time continuity across the
// transition is the transport's contract, not the engine's.
func (e *Engine) Pause() {
	if e.state == StatePlaying {
		e.state = StatePaused
	}
}

// Resume moves paused back to playing.
func (e *Engine) Resume() {
	if e.state == StatePaused {
		e.state = StatePlaying
	}
}

// Finish records an end-of-track notification from the transport.
func (e *Engine) Finish() {
	if e.state == StatePlaying || e.state == StatePaused {
		e.state = StateEnded
	}
}

// Reset returns the engine to empty, orphaning any in-flight analysis.
func (e *Engine) Reset() {
	e.gen.Add(1)
	e.state = StateEmpty
	e.err = nil
	e.an = nil
	e.transport = nil
	e.layout = nil
	e.agg = nil
	e.hist.Reset()
	e.motion.Reset()
	e.caps.reset()
}

// SetBars switches the active bar-count preset. Bar state is zeroed; the
// energy history carries over since the overall loudness scale is unchanged.
func (e *Engine) SetBars(n int) error {
	if !validBarCount(n) {
		return fmt.Errorf("%w: bar count %d is not one of %v", ErrConfig, n, BarPresets)
	}
	if n > e.cfg.Analysis.Bins {
		return fmt.Errorf("%w: bar count %d exceeds analyzer capacity %d", ErrConfig, n, e.cfg.Analysis.Bins)
	}
	e.cfg.Bars = n
	return e.rebuild()
}

// SetBanding switches between linear and logarithmic band spacing.
func (e *Engine) SetBanding(b Banding) error {
	if b != BandingLog && b != BandingLinear {
		return fmt.Errorf("%w: unknown banding mode %d", ErrConfig, int(b))
	}
	e.cfg.Banding = b
	return e.rebuild()
}

func (e *Engine) rebuild() error {
	n := e.cfg.Bars
	e.motion.Resize(n)
	e.caps.resize(n)
	e.capsOut = make([]float64, n)
	if e.an == nil {
		return nil
	}
	lay, err := NewLayout(e.cfg.Banding, n, e.cfg.MinFreq, e.cfg.MaxFreq, e.an.BinFreqs())
	if err != nil {
		return err
	}
	e.layout = lay
	e.agg = NewAggregator(e.cfg, lay, e.hist)
	return nil
}

// State reports the engine's current lifecycle state.
func (e *Engine) State() State { return e.state }

// Err returns the last load failure, or nil.
func (e *Engine) Err() error { return e.err }

// Bars reports the active bar count.
func (e *Engine) Bars() int { return e.cfg.Bars }

// Banding reports the active band spacing mode.
func (e *Engine) Banding() Banding { return e.cfg.Banding }
