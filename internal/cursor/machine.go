// Package cursor implements the cursor state machine that turns a debounced
// pinch intent into timed visual states, and the render adapter that draws
// those states.
//
// The Machine holds only state and absolute deadlines; every operation takes
// the current time and no operation performs I/O. Drawing lives in Renderer.
package cursor

import (
	"errors"
	"fmt"
	"time"
)

// FullCircle is the ring angle of a completed or idle ring.
const FullCircle = 360.0

// ErrInvalidConfig is returned by NewMachine and NewRenderer for unusable
// parameters.
var ErrInvalidConfig = errors.New("cursor: invalid config")

// State is the visual state of the cursor.
type State int

const (
	Idle State = iota
	Charging
	Held
	Cooldown
	ErrorFade
	SuccessFade
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Charging:
		return "charging"
	case Held:
		return "held"
	case Cooldown:
		return "cooldown"
	case ErrorFade:
		return "error"
	case SuccessFade:
		return "success"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a name produced by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	for st := Idle; st <= SuccessFade; st++ {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("cursor: unknown state %q", b)
}

// FadePolicy decides what a verdict does while another fade is running.
type FadePolicy int

const (
	// LatestWins cancels the fades of the previous verdict and starts the
	// fades of the new one.
	LatestWins FadePolicy = iota
	// IgnoreWhileFading drops a verdict that arrives while any fade is
	// running. Charging still halts.
	IgnoreWhileFading
)

func (p FadePolicy) String() string {
	switch p {
	case LatestWins:
		return "latest-wins"
	case IgnoreWhileFading:
		return "ignore-while-fading"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParseFadePolicy parses the names returned by FadePolicy.String.
func ParseFadePolicy(s string) (FadePolicy, error) {
	switch s {
	case "latest-wins", "":
		return LatestWins, nil
	case "ignore-while-fading":
		return IgnoreWhileFading, nil
	default:
		return 0, fmt.Errorf("%w: unknown fade policy %q", ErrInvalidConfig, s)
	}
}

// Config holds the timing of the state machine.
type Config struct {
	// ChargeSpeed is the number of degrees the ring advances per tick.
	ChargeSpeed      float64
	HoldDuration     time.Duration
	CooldownDuration time.Duration

	RingError     FadeConfig
	ScreenError   FadeConfig
	ScreenSuccess FadeConfig

	Policy FadePolicy
}

// DefaultConfig returns the timing used by the minigame.
func DefaultConfig() Config {
	return Config{
		ChargeSpeed:      3,
		HoldDuration:     400 * time.Millisecond,
		CooldownDuration: time.Second,
		RingError:        FadeConfig{Duration: 2 * time.Second, PeakAlpha: 180},
		ScreenError:      FadeConfig{Duration: 2 * time.Second, PeakAlpha: 20},
		ScreenSuccess:    FadeConfig{Duration: 2 * time.Second, PeakAlpha: 20},
		Policy:           LatestWins,
	}
}

// Validate reports the first unusable parameter.
func (c Config) Validate() error {
	if c.ChargeSpeed <= 0 || c.ChargeSpeed > FullCircle {
		return fmt.Errorf("%w: charge speed %v outside (0, 360]", ErrInvalidConfig, c.ChargeSpeed)
	}
	if c.HoldDuration < 0 {
		return fmt.Errorf("%w: hold duration %v", ErrInvalidConfig, c.HoldDuration)
	}
	if c.CooldownDuration < 0 {
		return fmt.Errorf("%w: cooldown duration %v", ErrInvalidConfig, c.CooldownDuration)
	}
	fades := []struct {
		name string
		cfg  FadeConfig
	}{
		{"ring error", c.RingError},
		{"screen error", c.ScreenError},
		{"screen success", c.ScreenSuccess},
	}
	for _, f := range fades {
		if f.cfg.Duration <= 0 {
			return fmt.Errorf("%w: %s fade duration %v", ErrInvalidConfig, f.name, f.cfg.Duration)
		}
	}
	if c.Policy != LatestWins && c.Policy != IgnoreWhileFading {
		return fmt.Errorf("%w: fade policy %d", ErrInvalidConfig, int(c.Policy))
	}
	return nil
}

// Timers are the absolute deadlines of the machine. A zero time means the
// timer is not running.
type Timers struct {
	HoldUntil          time.Time `json:"hold_until"`
	CooldownUntil      time.Time `json:"cooldown_until"`
	ErrorUntil         time.Time `json:"error_until"`
	ScreenErrorUntil   time.Time `json:"screen_error_until"`
	ScreenSuccessUntil time.Time `json:"screen_success_until"`
}

// Snapshot is a read-only view of the machine at one instant. It is all
// the renderer needs.
type Snapshot struct {
	State              State   `json:"state"`
	Angle              float64 `json:"angle"`
	Charging           bool    `json:"charging"`
	HoldActive         bool    `json:"hold_active"`
	CooldownActive     bool    `json:"cooldown_active"`
	RingErrorAlpha     float64 `json:"ring_error_alpha"`
	ScreenErrorAlpha   float64 `json:"screen_error_alpha"`
	ScreenSuccessAlpha float64 `json:"screen_success_alpha"`
}

// Machine is the cursor state machine.
//
// Ring-level and screen-level fades are independent timers so a wrong
// verdict can run both at once while a correct verdict runs only the
// screen-level one.
type Machine struct {
	cfg Config

	angle    float64
	charging bool
	finished bool

	chargeStart   time.Time
	chargeTime    time.Duration
	holdUntil     time.Time
	cooldownUntil time.Time

	ringError     fade
	screenError   fade
	screenSuccess fade
}

// NewMachine validates cfg and returns an idle machine.
func NewMachine(cfg Config) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Machine{
		cfg:           cfg,
		angle:         FullCircle,
		ringError:     fade{cfg: cfg.RingError},
		screenError:   fade{cfg: cfg.ScreenError},
		screenSuccess: fade{cfg: cfg.ScreenSuccess},
	}, nil
}

// Config returns the configuration the machine was built with.
func (m *Machine) Config() Config {
	return m.cfg
}

// OnActivationEdge starts a fresh charge. The edge is ignored, not queued,
// while an error fade is shown, while cooldown is running, or while a
// charge is already in progress. It reports whether a charge started.
func (m *Machine) OnActivationEdge(now time.Time) bool {
	if m.ErrorFadeActive(now) || m.CooldownActive(now) || m.charging {
		return false
	}
	m.angle = 0
	m.charging = true
	m.finished = false
	m.chargeStart = now
	m.holdUntil = time.Time{}
	return true
}

// OnDeactivation cancels a charge released before completion. The ring
// returns to idle without a hold. Outside Charging it does nothing.
func (m *Machine) OnDeactivation(now time.Time) {
	if !m.charging {
		return
	}
	m.charging = false
	m.angle = FullCircle
	m.holdUntil = time.Time{}
}

// Tick advances the ring and expires timers. While the ring-level error
// fade runs the ring is frozen and only the fades decay.
func (m *Machine) Tick(now time.Time) {
	m.ringError.expire(now)
	m.screenError.expire(now)
	m.screenSuccess.expire(now)

	if m.ringError.active(now) {
		return
	}

	if !m.cooldownUntil.IsZero() && now.After(m.cooldownUntil) {
		m.cooldownUntil = time.Time{}
	}
	if !m.holdUntil.IsZero() && !now.Before(m.holdUntil) {
		m.holdUntil = time.Time{}
	}

	if !m.charging {
		return
	}

	m.angle += m.cfg.ChargeSpeed
	if m.angle < FullCircle {
		return
	}

	m.angle = FullCircle
	m.charging = false
	m.finished = true
	m.chargeTime = now.Sub(m.chargeStart)
	m.holdUntil = now.Add(m.cfg.HoldDuration)
	m.cooldownUntil = now.Add(m.cfg.CooldownDuration)
}

// IsFinishedCharging reports whether a charge completed and is waiting for
// its verdict. It stays true until OnCorrectSelection or OnWrongSelection.
func (m *Machine) IsFinishedCharging() bool {
	return m.finished
}

// ChargeTime is how long the last completed charge took.
func (m *Machine) ChargeTime() time.Duration {
	return m.chargeTime
}

// OnCorrectSelection delivers a correct verdict: charging halts and the
// screen-level success fade starts. It reports whether the fade started.
func (m *Machine) OnCorrectSelection(now time.Time) bool {
	if !m.resolve(now) {
		return false
	}
	if m.cfg.Policy == LatestWins {
		m.ringError.stop()
		m.screenError.stop()
	}
	m.screenSuccess.start(now)
	return true
}

// OnWrongSelection delivers a wrong verdict: charging halts and the
// ring-level and screen-level error fades start together. It reports
// whether the fades started.
func (m *Machine) OnWrongSelection(now time.Time) bool {
	if !m.resolve(now) {
		return false
	}
	if m.cfg.Policy == LatestWins {
		m.screenSuccess.stop()
	}
	m.ringError.start(now)
	m.screenError.start(now)
	return true
}

// resolve halts charging and reports whether the verdict may start fades.
func (m *Machine) resolve(now time.Time) bool {
	m.charging = false
	m.finished = false
	m.angle = FullCircle

	if m.cfg.Policy == IgnoreWhileFading && m.anyFadeActive(now) {
		return false
	}
	return true
}

func (m *Machine) anyFadeActive(now time.Time) bool {
	return m.ringError.active(now) || m.screenError.active(now) || m.screenSuccess.active(now)
}

// ErrorFadeActive reports whether either error fade is running. New pinches
// are not accepted meanwhile.
func (m *Machine) ErrorFadeActive(now time.Time) bool {
	return m.ringError.active(now) || m.screenError.active(now)
}

// CooldownActive reports whether re-activation is suppressed after a
// completed charge.
func (m *Machine) CooldownActive(now time.Time) bool {
	return !m.cooldownUntil.IsZero() && !now.After(m.cooldownUntil)
}

// Angle returns the ring angle in degrees, within [0, 360].
func (m *Machine) Angle() float64 {
	return m.angle
}

// Timers returns the current deadlines.
func (m *Machine) Timers() Timers {
	return Timers{
		HoldUntil:          m.holdUntil,
		CooldownUntil:      m.cooldownUntil,
		ErrorUntil:         m.ringError.until,
		ScreenErrorUntil:   m.screenError.until,
		ScreenSuccessUntil: m.screenSuccess.until,
	}
}

// State returns the visual state at now. The error fade takes precedence
// over the ring. A charge started under a fading success tint reports
// Charging, and Held takes precedence over Cooldown.
func (m *Machine) State(now time.Time) State {
	switch {
	case m.ErrorFadeActive(now):
		return ErrorFade
	case m.charging:
		return Charging
	case m.screenSuccess.active(now):
		return SuccessFade
	case m.holdActive(now):
		return Held
	case m.CooldownActive(now):
		return Cooldown
	default:
		return Idle
	}
}

func (m *Machine) holdActive(now time.Time) bool {
	return !m.holdUntil.IsZero() && now.Before(m.holdUntil)
}

// Snapshot returns the view of the machine used for drawing.
func (m *Machine) Snapshot(now time.Time) Snapshot {
	return Snapshot{
		State:              m.State(now),
		Angle:              m.angle,
		Charging:           m.charging,
		HoldActive:         m.holdActive(now),
		CooldownActive:     m.CooldownActive(now),
		RingErrorAlpha:     m.ringError.alpha(now),
		ScreenErrorAlpha:   m.screenError.alpha(now),
		ScreenSuccessAlpha: m.screenSuccess.alpha(now),
	}
}
