// Package config holds the tunables of the pinch cursor and projects them
// into the per-component configs.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/pinchcursor/internal/capture"
	"github.com/ayusman/pinchcursor/internal/cursor"
	"github.com/ayusman/pinchcursor/internal/detector"
	"github.com/ayusman/pinchcursor/internal/gesture"
	"github.com/ayusman/pinchcursor/internal/pointer"
	"github.com/ayusman/pinchcursor/internal/tracker"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is passed by value; nothing in the program mutates a Config after
// startup.
type Config struct {
	// Display
	DisplayWidth  int
	DisplayHeight int
	// TargetFPS is the refresh the display loop aims for; TickRate is the
	// rate Tick is actually called at and the unit of ChargeSpeed.
	TargetFPS int
	TickRate  int

	// Camera
	CameraID        int
	CaptureWidth    int
	CaptureHeight   int
	ActiveFPS       int
	IdleFPS         int
	IdleAfter       time.Duration
	MotionThreshold float64

	// Detector
	MaxHands               int
	MinDetectionConfidence float64
	MinTrackingConfidence  float64
	ModelComplexity        int

	// Pointer and gesture
	MarginX          float64
	MarginY          float64
	PinchThreshold   float64
	DeadZone         float64
	ActivationFrames int
	HangTime         time.Duration

	// Cursor timing
	ChargeSpeed        float64
	HoldDuration       time.Duration
	CooldownDuration   time.Duration
	ErrorFade          time.Duration
	SuccessFade        time.Duration
	RingErrorAlpha     uint8
	ScreenErrorAlpha   uint8
	ScreenSuccessAlpha uint8
	FadePolicy         cursor.FadePolicy

	// Cursor look
	Style         cursor.Style
	OuterRadius   int
	ArcRadius     int
	ArcHoleRadius int
	AngleBucket   float64

	// Collaborators
	ListenAddr     string
	StreamInterval time.Duration
	DBPath         string
	PluginDir      string
	PluginTimeout  time.Duration
	EventQueue     int
	Debug          bool
	Tray           bool
}

// Default returns the tuned defaults.
func Default() Config {
	ct := cursor.DefaultConfig()
	rc := cursor.DefaultRenderConfig()
	dc := detector.DefaultConfig()
	return Config{
		DisplayWidth:  1920,
		DisplayHeight: 1080,
		TargetFPS:     144,
		TickRate:      120,

		CameraID:        0,
		CaptureWidth:    capture.DefaultWidth,
		CaptureHeight:   capture.DefaultHeight,
		ActiveFPS:       capture.DefaultActiveFPS,
		IdleFPS:         capture.DefaultIdleFPS,
		IdleAfter:       capture.DefaultIdleAfter,
		MotionThreshold: capture.DefaultMotionPercent,

		MaxHands:               dc.MaxHands,
		MinDetectionConfidence: dc.MinConfidence,
		MinTrackingConfidence:  dc.MinTrackingConf,
		ModelComplexity:        dc.ModelComplexity,

		MarginX:          0.20,
		MarginY:          0.20,
		PinchThreshold:   gesture.DefaultPinchThreshold,
		DeadZone:         pointer.DefaultDeadZone,
		ActivationFrames: gesture.DefaultActivationFrames,
		HangTime:         gesture.DefaultHangTime,

		ChargeSpeed:        ct.ChargeSpeed,
		HoldDuration:       ct.HoldDuration,
		CooldownDuration:   ct.CooldownDuration,
		ErrorFade:          ct.RingError.Duration,
		SuccessFade:        ct.ScreenSuccess.Duration,
		RingErrorAlpha:     ct.RingError.PeakAlpha,
		ScreenErrorAlpha:   ct.ScreenError.PeakAlpha,
		ScreenSuccessAlpha: ct.ScreenSuccess.PeakAlpha,
		FadePolicy:         ct.Policy,

		Style:         rc.Style,
		OuterRadius:   rc.OuterRadius,
		ArcRadius:     rc.ArcRadius,
		ArcHoleRadius: rc.ArcHoleRadius,
		AngleBucket:   rc.AngleBucket,

		ListenAddr:     "127.0.0.1:8080",
		StreamInterval: time.Second / 15,
		DBPath:         "",
		PluginDir:      "",
		PluginTimeout:  5 * time.Second,
		EventQueue:     64,
	}
}

// TickInterval is the period of the display loop.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// Mapper projects the coordinate mapping config.
func (c Config) Mapper() pointer.MapperConfig {
	return pointer.MapperConfig{
		MarginX:       c.MarginX,
		MarginY:       c.MarginY,
		DisplayWidth:  float64(c.DisplayWidth),
		DisplayHeight: float64(c.DisplayHeight),
	}
}

// Smoother projects the smoothing filter config.
func (c Config) Smoother() pointer.SmootherConfig {
	return pointer.SmootherConfig{DeadZone: c.DeadZone}
}

// Debouncer projects the pinch debouncer config.
func (c Config) Debouncer() gesture.DebouncerConfig {
	return gesture.DebouncerConfig{
		ActivationFrames: c.ActivationFrames,
		HangTime:         c.HangTime,
	}
}

// Cursor projects the state machine config.
func (c Config) Cursor() cursor.Config {
	return cursor.Config{
		ChargeSpeed:      c.ChargeSpeed,
		HoldDuration:     c.HoldDuration,
		CooldownDuration: c.CooldownDuration,
		RingError:        cursor.FadeConfig{Duration: c.ErrorFade, PeakAlpha: c.RingErrorAlpha},
		ScreenError:      cursor.FadeConfig{Duration: c.ErrorFade, PeakAlpha: c.ScreenErrorAlpha},
		ScreenSuccess:    cursor.FadeConfig{Duration: c.SuccessFade, PeakAlpha: c.ScreenSuccessAlpha},
		Policy:           c.FadePolicy,
	}
}

// Render projects the cursor geometry.
func (c Config) Render() cursor.RenderConfig {
	rc := cursor.DefaultRenderConfig()
	rc.Style = c.Style
	rc.OuterRadius = c.OuterRadius
	rc.ArcRadius = c.ArcRadius
	rc.ArcHoleRadius = c.ArcHoleRadius
	rc.AngleBucket = c.AngleBucket
	return rc
}

// Camera projects the capture device config.
func (c Config) Camera() capture.Config {
	return capture.Config{
		DeviceID: c.CameraID,
		Width:    c.CaptureWidth,
		Height:   c.CaptureHeight,
		FPS:      c.ActiveFPS,
	}
}

// Rate projects the idle/active frame rate config.
func (c Config) Rate() capture.RateConfig {
	return capture.RateConfig{
		ActiveFPS: c.ActiveFPS,
		IdleFPS:   c.IdleFPS,
		IdleAfter: c.IdleAfter,
	}
}

// Tracker projects the acquisition config. Debug turns on the preview.
func (c Config) Tracker() tracker.Config {
	return tracker.Config{
		PinchThreshold:  c.PinchThreshold,
		MotionThreshold: c.MotionThreshold,
		Rate:            c.Rate(),
		Preview:         c.Debug,
	}
}

// Detector projects the landmark detector config.
func (c Config) Detector() detector.Config {
	return detector.Config{
		MaxHands:        c.MaxHands,
		MinConfidence:   c.MinDetectionConfidence,
		MinTrackingConf: c.MinTrackingConfidence,
		ModelComplexity: c.ModelComplexity,
	}
}

// Validate reports the first unusable value. The component constructors
// check their own parameters again; Validate lets the program fail before
// opening any device.
func (c Config) Validate() error {
	switch {
	case c.DisplayWidth <= 0 || c.DisplayHeight <= 0:
		return fmt.Errorf("%w: display size %dx%d", ErrInvalid, c.DisplayWidth, c.DisplayHeight)
	case c.TargetFPS <= 0 || c.TickRate <= 0:
		return fmt.Errorf("%w: display rates %d/%d", ErrInvalid, c.TargetFPS, c.TickRate)
	case c.CaptureWidth <= 0 || c.CaptureHeight <= 0:
		return fmt.Errorf("%w: capture size %dx%d", ErrInvalid, c.CaptureWidth, c.CaptureHeight)
	case c.ActiveFPS <= 0 || c.IdleFPS <= 0 || c.IdleFPS > c.ActiveFPS:
		return fmt.Errorf("%w: camera rates active=%d idle=%d", ErrInvalid, c.ActiveFPS, c.IdleFPS)
	case c.MaxHands < 1:
		return fmt.Errorf("%w: max hands %d", ErrInvalid, c.MaxHands)
	case c.MinDetectionConfidence < 0 || c.MinDetectionConfidence > 1:
		return fmt.Errorf("%w: detection confidence %v", ErrInvalid, c.MinDetectionConfidence)
	case c.MinTrackingConfidence < 0 || c.MinTrackingConfidence > 1:
		return fmt.Errorf("%w: tracking confidence %v", ErrInvalid, c.MinTrackingConfidence)
	case c.PinchThreshold <= 0:
		return fmt.Errorf("%w: pinch threshold %v", ErrInvalid, c.PinchThreshold)
	case c.StreamInterval <= 0:
		return fmt.Errorf("%w: stream interval %v", ErrInvalid, c.StreamInterval)
	case c.PluginTimeout <= 0:
		return fmt.Errorf("%w: plugin timeout %v", ErrInvalid, c.PluginTimeout)
	case c.EventQueue < 1:
		return fmt.Errorf("%w: event queue %d", ErrInvalid, c.EventQueue)
	}

	if _, err := pointer.NewMapper(c.Mapper()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := pointer.NewSmoother(c.Smoother()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := gesture.NewDebouncer(c.Debouncer()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.Cursor().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.Render().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
