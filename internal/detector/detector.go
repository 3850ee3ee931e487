package detector

import "gocv.io/x/gocv"

// Detector finds hand landmarks in a video frame.
type Detector interface {
	// Detect analyzes a frame and returns the hands found in it.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect.
	MaxHands int

	// MinConfidence is the minimum detection confidence (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence (0.0-1.0).
	MinTrackingConf float64

	// ModelComplexity selects the MediaPipe hand model (0 lite, 1 full).
	ModelComplexity int
}

// DefaultConfig tracks a single hand with the lite model, which keeps the
// detector fast enough to feed a display-rate cursor.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.7,
		MinTrackingConf: 0.5,
		ModelComplexity: 0,
	}
}
