package gesture

import (
	"math"
	"time"

	"github.com/ayusman/pinchcursor/internal/detector"
	"github.com/ayusman/pinchcursor/internal/pointer"
)

const (
	// DefaultPinchThreshold is the thumb-index tip distance, in normalized
	// image coordinates, below which the hand is pinching.
	DefaultPinchThreshold = 0.06

	// PointerLandmark is the landmark that drives the cursor. The index
	// MCP knuckle stays still while the fingertips close into a pinch.
	PointerLandmark = detector.IndexMCP
)

// PinchDistance returns the 2D distance between the thumb tip and the
// index fingertip.
func PinchDistance(hand *detector.HandLandmarks) float64 {
	thumb := hand.Points[detector.ThumbTip]
	index := hand.Points[detector.IndexTip]
	return math.Hypot(thumb.X-index.X, thumb.Y-index.Y)
}

// IsPinch reports whether the hand is pinching.
func IsPinch(hand *detector.HandLandmarks, threshold float64) bool {
	if hand == nil {
		return false
	}
	return PinchDistance(hand) < threshold
}

// SampleFromHand converts normalized landmarks into a capture-space sample
// for a frame of the given size.
func SampleFromHand(hand *detector.HandLandmarks, width, height int, threshold float64, now time.Time) pointer.Sample {
	p := hand.Points[PointerLandmark]
	return pointer.Sample{
		X:             p.X * float64(width),
		Y:             p.Y * float64(height),
		Pinch:         IsPinch(hand, threshold),
		CaptureWidth:  float64(width),
		CaptureHeight: float64(height),
		Timestamp:     now,
	}
}
