package pointer

import (
	"fmt"
	"math"
)

// Adaptive smoothing constants.
const (
	// MinVelocity and MaxVelocity bound the per-tick displacement used to
	// pick the primary-stage alpha.
	MinVelocity = 1.0
	MaxVelocity = 80.0

	// MaxAlpha is the primary-stage alpha at or above MaxVelocity.
	MaxAlpha = 0.25
	// AlphaRange is how far the primary alpha drops at minimum velocity.
	AlphaRange = 0.20

	// MicroThreshold is the velocity above which the secondary stage
	// switches to its faster alpha.
	MicroThreshold = 25.0
	MicroAlphaSlow = 0.05
	MicroAlphaFast = 0.10

	// DefaultDeadZone is the per-axis displacement treated as no movement.
	DefaultDeadZone = 12.0
)

// SmootherConfig configures a Smoother.
type SmootherConfig struct {
	DeadZone float64
}

// Smoother is a two-stage exponential filter with a per-axis dead zone.
// The first stage adapts its alpha to hand speed; the second removes the
// remaining high-frequency noise.
type Smoother struct {
	deadZone    float64
	initialized bool

	lastX, lastY     float64
	smoothX, smoothY float64
}

// NewSmoother creates a Smoother. The dead zone must be finite and not negative.
func NewSmoother(cfg SmootherConfig) (*Smoother, error) {
	if cfg.DeadZone < 0 || math.IsNaN(cfg.DeadZone) || math.IsInf(cfg.DeadZone, 0) {
		return nil, fmt.Errorf("%w: dead zone %v", ErrInvalidConfig, cfg.DeadZone)
	}
	return &Smoother{deadZone: cfg.DeadZone}, nil
}

// Update feeds the target for this tick and returns the smoothed position.
// The first call seeds both stages with the target and returns it unchanged.
// Calling Update again with a reused (stale) target is expected.
func (s *Smoother) Update(t Target) Target {
	if !s.initialized {
		s.lastX, s.lastY = t.X, t.Y
		s.smoothX, s.smoothY = t.X, t.Y
		s.initialized = true
		return t
	}

	tx, ty := t.X, t.Y
	if math.Abs(tx-s.lastX) < s.deadZone {
		tx = s.lastX
	}
	if math.Abs(ty-s.lastY) < s.deadZone {
		ty = s.lastY
	}

	vel := math.Abs(tx-s.lastX) + math.Abs(ty-s.lastY)
	vel = clamp(vel, MinVelocity, MaxVelocity)

	// 0.05 near rest, 0.25 at speed.
	alpha := MaxAlpha - AlphaRange*(1-vel/MaxVelocity)
	s.lastX += (tx - s.lastX) * alpha
	s.lastY += (ty - s.lastY) * alpha

	micro := MicroAlphaSlow
	if vel > MicroThreshold {
		micro = MicroAlphaFast
	}
	s.smoothX += (s.lastX - s.smoothX) * micro
	s.smoothY += (s.lastY - s.smoothY) * micro

	return Target{X: s.smoothX, Y: s.smoothY}
}

// Last returns the primary-stage position. ok is false before the first Update.
func (s *Smoother) Last() (t Target, ok bool) {
	return Target{X: s.lastX, Y: s.lastY}, s.initialized
}

// Position returns the current smoothed position. ok is false before the
// first Update.
func (s *Smoother) Position() (t Target, ok bool) {
	return Target{X: s.smoothX, Y: s.smoothY}, s.initialized
}

// Reset forgets all state; the next Update seeds the filter again.
func (s *Smoother) Reset() {
	*s = Smoother{deadZone: s.deadZone}
}
