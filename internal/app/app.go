// Package app is the per-tick orchestrator of the pinch cursor. Each tick
// polls the newest sample, maps and smooths it, debounces the pinch, drives
// the cursor state machine and draws the result.
package app

import (
	"errors"
	"fmt"
	"image"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/pinchcursor/internal/config"
	"github.com/ayusman/pinchcursor/internal/cursor"
	"github.com/ayusman/pinchcursor/internal/gesture"
	"github.com/ayusman/pinchcursor/internal/mailbox"
	"github.com/ayusman/pinchcursor/internal/pointer"
)

// ErrNoJudge is returned by New without a Judge.
var ErrNoJudge = errors.New("app: judge is required")

// Judge decides whether a completed charge selected the right answer.
type Judge interface {
	IsCorrect(pos pointer.Target) bool
}

// JudgeFunc adapts a function to Judge.
type JudgeFunc func(pos pointer.Target) bool

func (f JudgeFunc) IsCorrect(pos pointer.Target) bool { return f(pos) }

// RegionJudge accepts a selection inside any of its rectangles.
type RegionJudge []image.Rectangle

func (r RegionJudge) IsCorrect(pos pointer.Target) bool {
	p := image.Pt(int(math.Round(pos.X)), int(math.Round(pos.Y)))
	for _, rect := range r {
		if p.In(rect) {
			return true
		}
	}
	return false
}

// State is what the tick loop last produced. It is published for readers
// outside the tick loop.
type State struct {
	SessionID string          `json:"session_id"`
	Cursor    cursor.Snapshot `json:"cursor"`
	Position  pointer.Target  `json:"position"`
	Target    pointer.Target  `json:"target"`
	Pinch     bool            `json:"pinch"`
	Intent    gesture.Intent  `json:"intent"`
	Mailbox   mailbox.Stats   `json:"mailbox"`
	Ticks     uint64          `json:"ticks"`
	At        time.Time       `json:"at"`
}

// App owns the core components. Tick must be called from one goroutine;
// State may be called from any.
type App struct {
	cfg       config.Config
	sessionID string

	samples   *mailbox.Latest[pointer.Sample]
	judge     Judge
	mapper    *pointer.Mapper
	smoother  *pointer.Smoother
	debouncer *gesture.Debouncer
	machine   *cursor.Machine
	renderer  *cursor.Renderer
	events    *Dispatcher

	target pointer.Target
	pinch  bool
	ticks  uint64

	mu    sync.RWMutex
	state State
}

// Option customizes an App.
type Option func(*App)

// WithSession sets the session ID attached to every selection. Without it
// New generates one.
func WithSession(id string) Option {
	return func(a *App) { a.sessionID = id }
}

// WithDispatcher sends every selection shown on screen to d.
func WithDispatcher(d *Dispatcher) Option {
	return func(a *App) { a.events = d }
}

// New builds the core from cfg. Invalid parameters fail here, never at
// tick time.
func New(cfg config.Config, samples *mailbox.Latest[pointer.Sample], judge Judge, opts ...Option) (*App, error) {
	if judge == nil {
		return nil, ErrNoJudge
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mapper, err := pointer.NewMapper(cfg.Mapper())
	if err != nil {
		return nil, fmt.Errorf("mapper: %w", err)
	}
	smoother, err := pointer.NewSmoother(cfg.Smoother())
	if err != nil {
		return nil, fmt.Errorf("smoother: %w", err)
	}
	debouncer, err := gesture.NewDebouncer(cfg.Debouncer())
	if err != nil {
		return nil, fmt.Errorf("debouncer: %w", err)
	}
	machine, err := cursor.NewMachine(cfg.Cursor())
	if err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}
	renderer, err := cursor.NewRenderer(cfg.Render())
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}

	a := &App{
		cfg:       cfg,
		samples:   samples,
		judge:     judge,
		mapper:    mapper,
		smoother:  smoother,
		debouncer: debouncer,
		machine:   machine,
		renderer:  renderer,
		target:    mapper.Center(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.sessionID == "" {
		a.sessionID = uuid.NewString()
	}
	return a, nil
}

// SessionID returns the session the selections are recorded under.
func (a *App) SessionID() string {
	return a.sessionID
}

// Tick runs one display frame at now and draws it on canvas, which may be
// nil to run headless.
func (a *App) Tick(now time.Time, canvas cursor.Canvas) cursor.Snapshot {
	a.ticks++

	// An empty mailbox keeps the last target and reads as no pinch; the
	// debouncer's hang time absorbs the gap between camera frames.
	a.pinch = false
	if s, ok := a.samples.Poll(); ok {
		a.target = a.mapper.Map(s)
		a.pinch = s.Pinch
	}

	pos := a.smoother.Update(a.target)

	switch a.debouncer.Update(a.pinch, now, a.machine.ErrorFadeActive(now)) {
	case gesture.EventActivate:
		a.machine.OnActivationEdge(now)
	case gesture.EventDeactivate:
		a.machine.OnDeactivation(now)
	}

	a.machine.Tick(now)

	if a.machine.IsFinishedCharging() {
		a.resolve(pos, now)
	}

	snap := a.machine.Snapshot(now)
	if canvas != nil {
		a.renderer.Draw(canvas, snap, image.Pt(int(math.Round(pos.X)), int(math.Round(pos.Y))))
	}

	a.publish(State{
		SessionID: a.sessionID,
		Cursor:    snap,
		Position:  pos,
		Target:    a.target,
		Pinch:     a.pinch,
		Intent:    a.debouncer.Intent(),
		Mailbox:   a.samples.Stats(),
		Ticks:     a.ticks,
		At:        now,
	})
	return snap
}

func (a *App) resolve(pos pointer.Target, now time.Time) {
	chargeTime := a.machine.ChargeTime()
	correct := a.judge.IsCorrect(pos)
	var shown bool
	if correct {
		shown = a.machine.OnCorrectSelection(now)
	} else {
		shown = a.machine.OnWrongSelection(now)
	}

	// Refused verdicts are neither shown nor recorded.
	if !shown || a.events == nil {
		return
	}
	a.events.Publish(Selection{
		ID:         uuid.NewString(),
		SessionID:  a.sessionID,
		Correct:    correct,
		Position:   pos,
		ChargeTime: chargeTime,
		At:         now,
	})
}

func (a *App) publish(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// State returns the result of the last tick.
func (a *App) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Renderer returns the cursor renderer, for cache statistics.
func (a *App) Renderer() *cursor.Renderer {
	return a.renderer
}

func logSelection(s Selection) {
	outcome := "wrong"
	if s.Correct {
		outcome = "correct"
	}
	log.Printf("Selection %s at (%.0f, %.0f) after %v", outcome, s.Position.X, s.Position.Y, s.ChargeTime.Round(time.Millisecond))
}
