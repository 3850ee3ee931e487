// Package gesture turns per-frame hand landmarks into pinch samples and
// debounces the noisy pinch signal into a hysteretic activation intent.
package gesture

import (
	"errors"
	"fmt"
	"time"
)

// Debounce defaults.
const (
	// DefaultActivationFrames is the number of consecutive pinch frames
	// needed to confirm a gesture.
	DefaultActivationFrames = 3
	// DefaultHangTime is how long a missing pinch is tolerated before the
	// intent is dropped.
	DefaultHangTime = 80 * time.Millisecond
)

// ErrInvalidConfig is returned by NewDebouncer for unusable parameters.
var ErrInvalidConfig = errors.New("gesture: invalid config")

// Event is what a debouncer reports for one tick.
type Event int

const (
	// EventNone means the intent did not change this tick.
	EventNone Event = iota
	// EventActivate marks the tick on which a sustained pinch is confirmed.
	EventActivate
	// EventDeactivate marks the tick on which a confirmed pinch is released.
	EventDeactivate
)

func (e Event) String() string {
	switch e {
	case EventActivate:
		return "activate"
	case EventDeactivate:
		return "deactivate"
	default:
		return "none"
	}
}

// DebouncerConfig configures a Debouncer.
type DebouncerConfig struct {
	ActivationFrames int
	HangTime         time.Duration
}

// Intent is a snapshot of the debouncer state.
type Intent struct {
	Hits    int       `json:"hits"`
	LastHit time.Time `json:"last_hit"`
	Active  bool      `json:"active"`
}

// Debouncer confirms a pinch after ActivationFrames consecutive positive
// frames and releases it only after no pinch was seen for HangTime, so a
// single dropped detector frame does not reset progress.
type Debouncer struct {
	cfg     DebouncerConfig
	hits    int
	lastHit time.Time
	active  bool
}

// NewDebouncer validates cfg and returns a Debouncer.
func NewDebouncer(cfg DebouncerConfig) (*Debouncer, error) {
	if cfg.ActivationFrames < 1 {
		return nil, fmt.Errorf("%w: activation frames %d", ErrInvalidConfig, cfg.ActivationFrames)
	}
	if cfg.HangTime < 0 {
		return nil, fmt.Errorf("%w: hang time %v", ErrInvalidConfig, cfg.HangTime)
	}
	return &Debouncer{cfg: cfg}, nil
}

// Update feeds one frame. suppressed is true while an error fade is shown;
// suppressed frames count as no pinch, so nothing can charge until the fade
// is over and the user pinches again.
//
// EventActivate is returned once per sustained pinch, on the frame the hit
// count reaches ActivationFrames. EventDeactivate is returned once, on the
// frame the hang time runs out after an activation.
func (d *Debouncer) Update(pinch bool, now time.Time, suppressed bool) Event {
	if pinch && !suppressed {
		d.hits++
		d.lastHit = now
		if !d.active && d.hits >= d.cfg.ActivationFrames {
			d.active = true
			return EventActivate
		}
		return EventNone
	}

	// Within the hang time a missing pinch is treated as detector flicker.
	if now.Sub(d.lastHit) <= d.cfg.HangTime {
		return EventNone
	}

	wasActive := d.active
	d.hits = 0
	d.active = false
	if wasActive {
		return EventDeactivate
	}
	return EventNone
}

// Intent returns the current debouncer state.
func (d *Debouncer) Intent() Intent {
	return Intent{Hits: d.hits, LastHit: d.lastHit, Active: d.active}
}

// Reset drops any partial or confirmed pinch without emitting an event.
func (d *Debouncer) Reset() {
	d.hits = 0
	d.lastHit = time.Time{}
	d.active = false
}
