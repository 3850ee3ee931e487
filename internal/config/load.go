package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ayusman/pinchcursor/internal/cursor"
)

const maxFileSize = 1 << 20

// File is the on-disk form of Config. Every field is optional; a nil field
// keeps the default. Durations are Go duration strings such as "400ms".
type File struct {
	DisplayWidth  *int `json:"display_width,omitempty"`
	DisplayHeight *int `json:"display_height,omitempty"`
	TargetFPS     *int `json:"target_fps,omitempty"`
	TickRate      *int `json:"tick_rate,omitempty"`

	CameraID        *int     `json:"camera_id,omitempty"`
	CaptureWidth    *int     `json:"capture_width,omitempty"`
	CaptureHeight   *int     `json:"capture_height,omitempty"`
	ActiveFPS       *int     `json:"active_fps,omitempty"`
	IdleFPS         *int     `json:"idle_fps,omitempty"`
	IdleAfter       *string  `json:"idle_after,omitempty"`
	MotionThreshold *float64 `json:"motion_threshold,omitempty"`

	MaxHands               *int     `json:"max_hands,omitempty"`
	MinDetectionConfidence *float64 `json:"min_detection_confidence,omitempty"`
	MinTrackingConfidence  *float64 `json:"min_tracking_confidence,omitempty"`
	ModelComplexity        *int     `json:"model_complexity,omitempty"`

	MarginX          *float64 `json:"margin_x,omitempty"`
	MarginY          *float64 `json:"margin_y,omitempty"`
	PinchThreshold   *float64 `json:"pinch_threshold,omitempty"`
	DeadZone         *float64 `json:"dead_zone,omitempty"`
	ActivationFrames *int     `json:"activation_frames,omitempty"`
	HangTime         *string  `json:"hang_time,omitempty"`

	ChargeSpeed        *float64 `json:"charge_speed,omitempty"`
	HoldDuration       *string  `json:"hold_duration,omitempty"`
	CooldownDuration   *string  `json:"cooldown_duration,omitempty"`
	ErrorFade          *string  `json:"error_fade,omitempty"`
	SuccessFade        *string  `json:"success_fade,omitempty"`
	RingErrorAlpha     *uint8   `json:"ring_error_alpha,omitempty"`
	ScreenErrorAlpha   *uint8   `json:"screen_error_alpha,omitempty"`
	ScreenSuccessAlpha *uint8   `json:"screen_success_alpha,omitempty"`
	FadePolicy         *string  `json:"fade_policy,omitempty"`

	Style         *string  `json:"style,omitempty"`
	OuterRadius   *int     `json:"outer_radius,omitempty"`
	ArcRadius     *int     `json:"arc_radius,omitempty"`
	ArcHoleRadius *int     `json:"arc_hole_radius,omitempty"`
	AngleBucket   *float64 `json:"angle_bucket,omitempty"`

	ListenAddr     *string `json:"listen_addr,omitempty"`
	StreamInterval *string `json:"stream_interval,omitempty"`
	DBPath         *string `json:"db_path,omitempty"`
	PluginDir      *string `json:"plugin_dir,omitempty"`
	PluginTimeout  *string `json:"plugin_timeout,omitempty"`
	EventQueue     *int    `json:"event_queue,omitempty"`
	Debug          *bool   `json:"debug,omitempty"`
	Tray           *bool   `json:"tray,omitempty"`
}

// Load reads a JSON file over the defaults and validates the result.
func Load(path string) (Config, error) {
	clean := filepath.Clean(path)
	if ext := filepath.Ext(clean); ext != ".json" {
		return Config{}, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(clean)
	if err != nil {
		return Config{}, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return Config{}, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return Config{}, fmt.Errorf("parse config JSON: %w", err)
	}

	cfg, err := f.Apply(Default())
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Apply overrides base with every field set in f.
func (f File) Apply(base Config) (Config, error) {
	c := base

	setInt(&c.DisplayWidth, f.DisplayWidth)
	setInt(&c.DisplayHeight, f.DisplayHeight)
	setInt(&c.TargetFPS, f.TargetFPS)
	setInt(&c.TickRate, f.TickRate)

	setInt(&c.CameraID, f.CameraID)
	setInt(&c.CaptureWidth, f.CaptureWidth)
	setInt(&c.CaptureHeight, f.CaptureHeight)
	setInt(&c.ActiveFPS, f.ActiveFPS)
	setInt(&c.IdleFPS, f.IdleFPS)
	setFloat(&c.MotionThreshold, f.MotionThreshold)

	setInt(&c.MaxHands, f.MaxHands)
	setFloat(&c.MinDetectionConfidence, f.MinDetectionConfidence)
	setFloat(&c.MinTrackingConfidence, f.MinTrackingConfidence)
	setInt(&c.ModelComplexity, f.ModelComplexity)

	setFloat(&c.MarginX, f.MarginX)
	setFloat(&c.MarginY, f.MarginY)
	setFloat(&c.PinchThreshold, f.PinchThreshold)
	setFloat(&c.DeadZone, f.DeadZone)
	setInt(&c.ActivationFrames, f.ActivationFrames)

	setFloat(&c.ChargeSpeed, f.ChargeSpeed)
	setUint8(&c.RingErrorAlpha, f.RingErrorAlpha)
	setUint8(&c.ScreenErrorAlpha, f.ScreenErrorAlpha)
	setUint8(&c.ScreenSuccessAlpha, f.ScreenSuccessAlpha)

	setInt(&c.OuterRadius, f.OuterRadius)
	setInt(&c.ArcRadius, f.ArcRadius)
	setInt(&c.ArcHoleRadius, f.ArcHoleRadius)
	setFloat(&c.AngleBucket, f.AngleBucket)

	if f.ListenAddr != nil {
		c.ListenAddr = *f.ListenAddr
	}
	if f.DBPath != nil {
		c.DBPath = *f.DBPath
	}
	if f.PluginDir != nil {
		c.PluginDir = *f.PluginDir
	}
	setInt(&c.EventQueue, f.EventQueue)
	if f.Debug != nil {
		c.Debug = *f.Debug
	}
	if f.Tray != nil {
		c.Tray = *f.Tray
	}

	durations := []struct {
		name string
		dst  *time.Duration
		src  *string
	}{
		{"idle_after", &c.IdleAfter, f.IdleAfter},
		{"hang_time", &c.HangTime, f.HangTime},
		{"hold_duration", &c.HoldDuration, f.HoldDuration},
		{"cooldown_duration", &c.CooldownDuration, f.CooldownDuration},
		{"error_fade", &c.ErrorFade, f.ErrorFade},
		{"success_fade", &c.SuccessFade, f.SuccessFade},
		{"stream_interval", &c.StreamInterval, f.StreamInterval},
		{"plugin_timeout", &c.PluginTimeout, f.PluginTimeout},
	}
	for _, d := range durations {
		if d.src == nil {
			continue
		}
		v, err := time.ParseDuration(*d.src)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s %q: %w", ErrInvalid, d.name, *d.src, err)
		}
		*d.dst = v
	}

	if f.FadePolicy != nil {
		p, err := cursor.ParseFadePolicy(*f.FadePolicy)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		c.FadePolicy = p
	}
	if f.Style != nil {
		s, err := cursor.ParseStyle(*f.Style)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		c.Style = s
	}

	return c, nil
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setUint8(dst *uint8, src *uint8) {
	if src != nil {
		*dst = *src
	}
}
