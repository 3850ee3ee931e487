package cursor

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"
)

const tick = time.Second / 120

func newTestMachine(t *testing.T, mutate func(*Config)) *Machine {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	m, err := NewMachine(cfg)
	if err != nil {
		t.Fatalf("NewMachine() error = %v", err)
	}
	return m
}

// charge runs ticks until the charge completes and returns the time of the
// completing tick.
func charge(t *testing.T, m *Machine, start time.Time) time.Time {
	t.Helper()
	if !m.OnActivationEdge(start) {
		t.Fatal("OnActivationEdge() did not start a charge")
	}
	now := start
	for i := 0; i < 1000; i++ {
		now = now.Add(tick)
		m.Tick(now)
		if m.IsFinishedCharging() {
			return now
		}
	}
	t.Fatal("charge never completed")
	return now
}

func TestMachine_StartsIdle(t *testing.T) {
	m := newTestMachine(t, nil)
	now := time.Unix(1000, 0)

	if got := m.State(now); got != Idle {
		t.Errorf("State() = %v, want idle", got)
	}
	if m.Angle() != FullCircle {
		t.Errorf("Angle() = %v, want 360", m.Angle())
	}
	if m.IsFinishedCharging() {
		t.Error("new machine should not be finished")
	}
}

func TestMachine_FullChargeCorrectPath(t *testing.T) {
	m := newTestMachine(t, func(c *Config) { c.ChargeSpeed = 5 })
	now := time.Unix(1000, 0)

	m.OnActivationEdge(now)
	if m.Angle() != 0 {
		t.Fatalf("Angle() after activation = %v, want 0", m.Angle())
	}

	for i := 1; i <= 72; i++ {
		now = now.Add(tick)
		m.Tick(now)
		if i < 72 && m.IsFinishedCharging() {
			t.Fatalf("charge finished early on tick %d", i)
		}
	}

	if m.Angle() != FullCircle {
		t.Fatalf("Angle() after 72 ticks = %v, want 360", m.Angle())
	}
	if !m.IsFinishedCharging() {
		t.Fatal("IsFinishedCharging() = false after 72 ticks")
	}
	if got := m.State(now); got != Held {
		t.Fatalf("State() at completion = %v, want held", got)
	}
	timers := m.Timers()
	if !timers.HoldUntil.Equal(now.Add(400 * time.Millisecond)) {
		t.Errorf("HoldUntil = %v, want now+400ms", timers.HoldUntil)
	}
	if !timers.CooldownUntil.Equal(now.Add(time.Second)) {
		t.Errorf("CooldownUntil = %v, want now+1s", timers.CooldownUntil)
	}

	if !m.OnCorrectSelection(now) {
		t.Fatal("OnCorrectSelection() did not start the success fade")
	}
	if got := m.State(now); got != SuccessFade {
		t.Errorf("State() after correct = %v, want success", got)
	}
	if got := m.Timers().ScreenSuccessUntil; !got.Equal(now.Add(2 * time.Second)) {
		t.Errorf("ScreenSuccessUntil = %v, want now+2s", got)
	}
	if m.IsFinishedCharging() {
		t.Error("IsFinishedCharging() should clear once the verdict is delivered")
	}
	if m.ErrorFadeActive(now) {
		t.Error("a correct verdict must not start the error fades")
	}
}

func TestMachine_WrongPath(t *testing.T) {
	m := newTestMachine(t, nil)
	done := charge(t, m, time.Unix(1000, 0))

	if !m.OnWrongSelection(done) {
		t.Fatal("OnWrongSelection() did not start the error fades")
	}

	if got := m.State(done); got != ErrorFade {
		t.Errorf("State() = %v, want error", got)
	}
	timers := m.Timers()
	if !timers.ErrorUntil.Equal(done.Add(2*time.Second)) || !timers.ScreenErrorUntil.Equal(done.Add(2*time.Second)) {
		t.Errorf("error deadlines = %v / %v, want both now+2s", timers.ErrorUntil, timers.ScreenErrorUntil)
	}
	if m.Angle() != FullCircle {
		t.Errorf("Angle() = %v, want 360", m.Angle())
	}
}

func TestMachine_FadeLinearity(t *testing.T) {
	m := newTestMachine(t, nil)
	start := time.Unix(1000, 0)
	done := charge(t, m, start)
	m.OnWrongSelection(done)

	tests := []struct {
		name       string
		at         time.Duration
		wantRing   float64
		wantScreen float64
	}{
		{name: "at start", at: 0, wantRing: 180, wantScreen: 20},
		{name: "half way", at: time.Second, wantRing: 90, wantScreen: 10},
		{name: "three quarters", at: 1500 * time.Millisecond, wantRing: 45, wantScreen: 5},
		{name: "at expiry", at: 2 * time.Second, wantRing: 0, wantScreen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := m.Snapshot(done.Add(tt.at))
			if math.Abs(s.RingErrorAlpha-tt.wantRing) > 1e-9 {
				t.Errorf("RingErrorAlpha = %v, want %v", s.RingErrorAlpha, tt.wantRing)
			}
			if math.Abs(s.ScreenErrorAlpha-tt.wantScreen) > 1e-9 {
				t.Errorf("ScreenErrorAlpha = %v, want %v", s.ScreenErrorAlpha, tt.wantScreen)
			}
		})
	}

	end := done.Add(2 * time.Second)
	m.Tick(end)
	if got := m.State(end); got == ErrorFade {
		t.Error("error fade should auto-expire at its deadline")
	}
	if timers := m.Timers(); !timers.ErrorUntil.IsZero() || !timers.ScreenErrorUntil.IsZero() {
		t.Errorf("expired deadlines should be cleared, got %+v", timers)
	}
}

func TestMachine_GuardAgainstRetrigger(t *testing.T) {
	t.Run("cooldown ignores activation", func(t *testing.T) {
		m := newTestMachine(t, nil)
		done := charge(t, m, time.Unix(1000, 0))
		m.OnCorrectSelection(done)

		// After the success fade but inside cooldown.
		now := done.Add(500 * time.Millisecond)
		m.Tick(now)
		before := m.State(now)

		if m.OnActivationEdge(now) {
			t.Fatal("activation during cooldown started a charge")
		}
		if got := m.State(now); got != before {
			t.Errorf("State() changed from %v to %v", before, got)
		}
		if m.Angle() != FullCircle {
			t.Errorf("Angle() = %v, want 360", m.Angle())
		}
		if !m.CooldownActive(now) {
			t.Error("cooldown should still be active")
		}
	})

	t.Run("activation after cooldown starts a charge", func(t *testing.T) {
		m := newTestMachine(t, nil)
		done := charge(t, m, time.Unix(1000, 0))
		m.OnCorrectSelection(done)

		now := done.Add(time.Second + tick)
		m.Tick(now)
		if m.CooldownActive(now) {
			t.Fatal("cooldown should have cleared")
		}
		if !m.OnActivationEdge(now) {
			t.Error("activation after cooldown should start a charge")
		}
	})

	t.Run("error fade ignores activation", func(t *testing.T) {
		m := newTestMachine(t, func(c *Config) { c.CooldownDuration = 0 })
		done := charge(t, m, time.Unix(1000, 0))
		m.OnWrongSelection(done)

		now := done.Add(time.Second)
		m.Tick(now)
		if m.OnActivationEdge(now) {
			t.Error("activation during error fade started a charge")
		}
	})

	t.Run("activation while charging is ignored", func(t *testing.T) {
		m := newTestMachine(t, nil)
		now := time.Unix(1000, 0)
		m.OnActivationEdge(now)
		m.Tick(now.Add(tick))
		angle := m.Angle()

		if m.OnActivationEdge(now.Add(tick)) {
			t.Error("second activation restarted the charge")
		}
		if m.Angle() != angle {
			t.Errorf("Angle() = %v, want %v", m.Angle(), angle)
		}
	})
}

func TestMachine_EarlyRelease(t *testing.T) {
	m := newTestMachine(t, nil)
	now := time.Unix(1000, 0)
	m.OnActivationEdge(now)
	for i := 0; i < 10; i++ {
		now = now.Add(tick)
		m.Tick(now)
	}

	m.OnDeactivation(now)

	if got := m.State(now); got != Idle {
		t.Errorf("State() after early release = %v, want idle", got)
	}
	if m.Angle() != FullCircle {
		t.Errorf("Angle() = %v, want 360", m.Angle())
	}
	if !m.Timers().HoldUntil.IsZero() {
		t.Error("early release must not open a hold window")
	}
	if m.CooldownActive(now) {
		t.Error("early release must not start cooldown")
	}
	if !m.OnActivationEdge(now.Add(tick)) {
		t.Error("a new charge should be allowed right after an early release")
	}
}

func TestMachine_DeactivationOutsideCharging(t *testing.T) {
	m := newTestMachine(t, nil)
	done := charge(t, m, time.Unix(1000, 0))

	m.OnDeactivation(done)

	if got := m.State(done); got != Held {
		t.Errorf("State() = %v, want held to survive a release", got)
	}
	if !m.IsFinishedCharging() {
		t.Error("release must not discard a pending verdict")
	}
}

func TestMachine_HeldThenCooldownThenIdle(t *testing.T) {
	m := newTestMachine(t, nil)
	done := charge(t, m, time.Unix(1000, 0))
	m.OnCorrectSelection(done)

	steps := []struct {
		at   time.Duration
		want State
	}{
		{at: 2*time.Second + tick, want: Idle},
	}
	for _, s := range steps {
		now := done.Add(s.at)
		m.Tick(now)
		if got := m.State(now); got != s.want {
			t.Errorf("State() at +%v = %v, want %v", s.at, got, s.want)
		}
	}

	// Without a verdict fade the windows are visible on their own.
	m2 := newTestMachine(t, nil)
	done2 := charge(t, m2, time.Unix(2000, 0))
	if got := m2.State(done2.Add(200 * time.Millisecond)); got != Held {
		t.Errorf("State() at +200ms = %v, want held", got)
	}
	m2.Tick(done2.Add(500 * time.Millisecond))
	if got := m2.State(done2.Add(500 * time.Millisecond)); got != Cooldown {
		t.Errorf("State() at +500ms = %v, want cooldown", got)
	}
	m2.Tick(done2.Add(1100 * time.Millisecond))
	if got := m2.State(done2.Add(1100 * time.Millisecond)); got != Idle {
		t.Errorf("State() at +1.1s = %v, want idle", got)
	}
}

func TestMachine_VerdictHaltsCharge(t *testing.T) {
	m := newTestMachine(t, func(c *Config) { c.CooldownDuration = 0 })
	now := time.Unix(1000, 0)
	m.OnActivationEdge(now)
	m.Tick(now.Add(tick))

	// A verdict can arrive mid-charge.
	m.OnWrongSelection(now.Add(tick))
	if m.charging {
		t.Fatal("verdict did not halt charging")
	}

	for i := 2; i < 20; i++ {
		m.Tick(now.Add(time.Duration(i) * tick))
	}
	if m.Angle() != FullCircle {
		t.Errorf("Angle() = %v during error fade, want 360", m.Angle())
	}
	if m.IsFinishedCharging() {
		t.Error("an interrupted charge must not report completion")
	}
}

func TestMachine_FadePolicy(t *testing.T) {
	t.Run("latest wins replaces the error fade", func(t *testing.T) {
		m := newTestMachine(t, func(c *Config) { c.CooldownDuration = 0 })
		now := time.Unix(1000, 0)
		m.OnWrongSelection(now)

		later := now.Add(500 * time.Millisecond)
		if !m.OnCorrectSelection(later) {
			t.Fatal("correct verdict was dropped")
		}
		if m.ErrorFadeActive(later) {
			t.Error("error fades should be cancelled by the newer verdict")
		}
		if got := m.State(later); got != SuccessFade {
			t.Errorf("State() = %v, want success", got)
		}
	})

	t.Run("ignore while fading keeps the error fade", func(t *testing.T) {
		m := newTestMachine(t, func(c *Config) { c.Policy = IgnoreWhileFading })
		now := time.Unix(1000, 0)
		m.OnWrongSelection(now)

		later := now.Add(500 * time.Millisecond)
		if m.OnCorrectSelection(later) {
			t.Fatal("correct verdict should be ignored while fading")
		}
		if got := m.State(later); got != ErrorFade {
			t.Errorf("State() = %v, want error", got)
		}
		if !m.Timers().ScreenSuccessUntil.IsZero() {
			t.Error("success fade must not start")
		}
	})

	t.Run("ignore while fading still halts charging", func(t *testing.T) {
		m := newTestMachine(t, func(c *Config) { c.Policy = IgnoreWhileFading })
		done := charge(t, m, time.Unix(1000, 0))
		m.OnCorrectSelection(done)

		// Success fades do not block charging.
		after := done.Add(time.Second + tick)
		m.Tick(after)
		if !m.OnActivationEdge(after) {
			t.Fatal("charge should start during a success fade")
		}
		m.OnWrongSelection(after)
		if m.Angle() != FullCircle || m.State(after) == Charging {
			t.Errorf("charging should halt, state %v angle %v", m.State(after), m.Angle())
		}
		if m.ErrorFadeActive(after) {
			t.Error("error fade should not start while success is fading")
		}
	})
}

func TestMachine_ChargingDuringSuccessFade(t *testing.T) {
	m := newTestMachine(t, nil)
	done := charge(t, m, time.Unix(1000, 0))
	if !m.OnCorrectSelection(done) {
		t.Fatal("OnCorrectSelection() did not start the success fade")
	}

	// Past the 1s cooldown, inside the 2s success fade.
	next := done.Add(1500 * time.Millisecond)
	m.Tick(next)
	if !m.OnActivationEdge(next) {
		t.Fatal("OnActivationEdge() refused a charge after cooldown")
	}
	next = next.Add(tick)
	m.Tick(next)

	snap := m.Snapshot(next)
	if snap.State != Charging {
		t.Errorf("State = %v, want charging", snap.State)
	}
	if snap.ScreenSuccessAlpha <= 0 {
		t.Errorf("ScreenSuccessAlpha = %v, want the tint still fading", snap.ScreenSuccessAlpha)
	}
}

func TestMachine_AngleMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 50; run++ {
		m := newTestMachine(t, func(c *Config) {
			c.ChargeSpeed = 1 + rng.Float64()*9
			c.CooldownDuration = time.Duration(rng.Intn(200)) * time.Millisecond
		})
		now := time.Unix(1000, 0)
		prev := m.Angle()
		wasCharging := false

		for i := 0; i < 2000; i++ {
			now = now.Add(time.Duration(1+rng.Intn(20)) * time.Millisecond)

			switch rng.Intn(10) {
			case 0:
				m.OnActivationEdge(now)
			case 1:
				m.OnDeactivation(now)
			}
			charging := m.charging
			if charging && !wasCharging {
				prev = m.Angle()
			}

			m.Tick(now)
			if m.IsFinishedCharging() {
				if rng.Intn(2) == 0 {
					m.OnCorrectSelection(now)
				} else {
					m.OnWrongSelection(now)
				}
			}

			a := m.Angle()
			if a < 0 || a > FullCircle {
				t.Fatalf("run %d tick %d: angle %v outside [0, 360]", run, i, a)
			}
			if charging && a < prev {
				t.Fatalf("run %d tick %d: angle decreased from %v to %v while charging", run, i, prev, a)
			}
			prev = a
			wasCharging = m.charging
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero charge speed", mutate: func(c *Config) { c.ChargeSpeed = 0 }},
		{name: "charge speed above a full turn", mutate: func(c *Config) { c.ChargeSpeed = 400 }},
		{name: "negative hold", mutate: func(c *Config) { c.HoldDuration = -time.Second }},
		{name: "negative cooldown", mutate: func(c *Config) { c.CooldownDuration = -time.Second }},
		{name: "zero error fade", mutate: func(c *Config) { c.RingError.Duration = 0 }},
		{name: "zero success fade", mutate: func(c *Config) { c.ScreenSuccess.Duration = 0 }},
		{name: "unknown policy", mutate: func(c *Config) { c.Policy = FadePolicy(9) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if _, err := NewMachine(cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("NewMachine() error = %v, want ErrInvalidConfig", err)
			}
		})
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestParseFadePolicy(t *testing.T) {
	for _, p := range []FadePolicy{LatestWins, IgnoreWhileFading} {
		got, err := ParseFadePolicy(p.String())
		if err != nil || got != p {
			t.Errorf("ParseFadePolicy(%q) = %v, %v", p.String(), got, err)
		}
	}
	if _, err := ParseFadePolicy("first-wins"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("ParseFadePolicy(unknown) error = %v, want ErrInvalidConfig", err)
	}
}

func TestState_Text(t *testing.T) {
	for st := Idle; st <= SuccessFade; st++ {
		b, err := st.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d) error = %v", st, err)
		}
		var got State
		if err := got.UnmarshalText(b); err != nil || got != st {
			t.Errorf("UnmarshalText(%q) = %v, %v; want %v", b, got, err, st)
		}
	}

	var s State
	if err := s.UnmarshalText([]byte("spinning")); err == nil {
		t.Error("UnmarshalText should reject unknown names")
	}
}
