package cursor

import "time"

// FadeConfig describes a linearly decaying overlay.
type FadeConfig struct {
	Duration  time.Duration
	PeakAlpha uint8
}

// fade is one independent fade timer. It is running while now is before
// its deadline; a zero deadline means it never started or was cleared.
type fade struct {
	cfg   FadeConfig
	until time.Time
}

func (f *fade) start(now time.Time) {
	f.until = now.Add(f.cfg.Duration)
}

func (f *fade) stop() {
	f.until = time.Time{}
}

// expire clears the deadline once it has passed.
func (f *fade) expire(now time.Time) {
	if !f.until.IsZero() && !now.Before(f.until) {
		f.until = time.Time{}
	}
}

func (f *fade) active(now time.Time) bool {
	return !f.until.IsZero() && now.Before(f.until)
}

func (f *fade) remaining(now time.Time) time.Duration {
	if !f.active(now) {
		return 0
	}
	return f.until.Sub(now)
}

// alpha is (remaining / duration) * peak, reaching 0 exactly at expiry.
func (f *fade) alpha(now time.Time) float64 {
	rem := f.remaining(now)
	if rem <= 0 || f.cfg.Duration <= 0 {
		return 0
	}
	return float64(rem) / float64(f.cfg.Duration) * float64(f.cfg.PeakAlpha)
}
