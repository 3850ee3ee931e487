// Package pointer turns raw capture-space pointer samples into a stable
// display-space cursor position.
package pointer

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned when a mapper or smoother is built with
// parameters that would make its output undefined.
var ErrInvalidConfig = errors.New("pointer: invalid config")

// Sample is one reading from the hand tracker, in capture-space pixels.
type Sample struct {
	X             float64
	Y             float64
	Pinch         bool
	CaptureWidth  float64
	CaptureHeight float64
	Timestamp     time.Time
}

// Target is a position in display-space units.
type Target struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MapperConfig holds the display size and the fraction of the capture
// frame that is cropped away at each edge.
type MapperConfig struct {
	MarginX       float64
	MarginY       float64
	DisplayWidth  float64
	DisplayHeight float64
}

// Mapper remaps capture coordinates onto the display through a centred
// virtual tracking rectangle, so a hand near the camera edge still reaches
// the display edge.
type Mapper struct {
	cfg MapperConfig
}

// NewMapper validates cfg and returns a Mapper.
func NewMapper(cfg MapperConfig) (*Mapper, error) {
	if cfg.MarginX < 0 || cfg.MarginX >= 0.5 {
		return nil, fmt.Errorf("%w: margin x %v outside [0, 0.5)", ErrInvalidConfig, cfg.MarginX)
	}
	if cfg.MarginY < 0 || cfg.MarginY >= 0.5 {
		return nil, fmt.Errorf("%w: margin y %v outside [0, 0.5)", ErrInvalidConfig, cfg.MarginY)
	}
	if cfg.DisplayWidth <= 0 || cfg.DisplayHeight <= 0 {
		return nil, fmt.Errorf("%w: display size %vx%v", ErrInvalidConfig, cfg.DisplayWidth, cfg.DisplayHeight)
	}
	return &Mapper{cfg: cfg}, nil
}

// Center returns the middle of the display.
func (m *Mapper) Center() Target {
	return Target{X: m.cfg.DisplayWidth / 2, Y: m.cfg.DisplayHeight / 2}
}

// Map converts a sample into a display target.
//
// The capture frame is cropped to
// [marginX*W, (1-marginX)*W] x [marginY*H, (1-marginY)*H], the sample is
// clamped into that rectangle, renormalized to [0,1] and scaled to the
// display. Out-of-frame input is clamped, never rejected. A sample without
// a usable capture size maps to the display centre.
func (m *Mapper) Map(s Sample) Target {
	left := s.CaptureWidth * m.cfg.MarginX
	right := s.CaptureWidth * (1 - m.cfg.MarginX)
	top := s.CaptureHeight * m.cfg.MarginY
	bottom := s.CaptureHeight * (1 - m.cfg.MarginY)

	if right <= left || bottom <= top {
		return m.Center()
	}

	x := clamp(s.X, left, right)
	y := clamp(s.Y, top, bottom)

	return Target{
		X: (x - left) / (right - left) * m.cfg.DisplayWidth,
		Y: (y - top) / (bottom - top) * m.cfg.DisplayHeight,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
