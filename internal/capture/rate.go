package capture

import "time"

// DefaultIdleAfter is how long the view must be empty and still before the
// camera drops to the idle rate.
const DefaultIdleAfter = 2 * time.Second

// RateConfig holds the two acquisition rates.
type RateConfig struct {
	ActiveFPS int
	IdleFPS   int
	IdleAfter time.Duration
}

// DefaultRateConfig returns 30 fps active, 5 fps idle.
func DefaultRateConfig() RateConfig {
	return RateConfig{
		ActiveFPS: DefaultActiveFPS,
		IdleFPS:   DefaultIdleFPS,
		IdleAfter: DefaultIdleAfter,
	}
}

// RateController switches between the active and idle frame rates. Any
// activity (a hand or motion) restores the active rate at once; the idle
// rate is only entered after IdleAfter without activity.
type RateController struct {
	cfg          RateConfig
	lastActivity time.Time
	idle         bool
}

// NewRateController starts in the active rate. Zero fields take defaults.
func NewRateController(cfg RateConfig) *RateController {
	def := DefaultRateConfig()
	if cfg.ActiveFPS <= 0 {
		cfg.ActiveFPS = def.ActiveFPS
	}
	if cfg.IdleFPS <= 0 {
		cfg.IdleFPS = def.IdleFPS
	}
	if cfg.IdleAfter <= 0 {
		cfg.IdleAfter = def.IdleAfter
	}
	return &RateController{cfg: cfg}
}

// Observe records whether the frame at now showed activity. It returns the
// rate to use and whether it differs from the previous one.
func (r *RateController) Observe(active bool, now time.Time) (fps int, changed bool) {
	if r.lastActivity.IsZero() || active {
		r.lastActivity = now
	}

	switch {
	case active && r.idle:
		r.idle = false
		return r.cfg.ActiveFPS, true
	case !active && !r.idle && now.Sub(r.lastActivity) >= r.cfg.IdleAfter:
		r.idle = true
		return r.cfg.IdleFPS, true
	}
	return r.FPS(), false
}

// FPS returns the current rate.
func (r *RateController) FPS() int {
	if r.idle {
		return r.cfg.IdleFPS
	}
	return r.cfg.ActiveFPS
}

// Idle reports whether the idle rate is in use.
func (r *RateController) Idle() bool {
	return r.idle
}
