// Package tracker runs hand acquisition on its own goroutine and publishes
// the newest pointer sample into a latest-value mailbox.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/pinchcursor/internal/capture"
	"github.com/ayusman/pinchcursor/internal/detector"
	"github.com/ayusman/pinchcursor/internal/gesture"
	"github.com/ayusman/pinchcursor/internal/mailbox"
	"github.com/ayusman/pinchcursor/internal/pointer"
)

// ErrRunning is returned by Run when the tracker is already running.
var ErrRunning = errors.New("tracker already running")

// Config holds the acquisition settings.
type Config struct {
	PinchThreshold  float64
	MotionThreshold float64
	Rate            capture.RateConfig
	// Preview enables the annotated JPEG of every processed frame.
	Preview bool
}

// DefaultConfig returns the settings used with a real camera.
func DefaultConfig() Config {
	return Config{
		PinchThreshold:  gesture.DefaultPinchThreshold,
		MotionThreshold: capture.DefaultMotionPercent,
		Rate:            capture.DefaultRateConfig(),
	}
}

// Stats counts processed frames.
type Stats struct {
	Frames     uint64 `json:"frames"`
	Hands      uint64 `json:"hands"`
	Errors     uint64 `json:"errors"`
	Idle       bool   `json:"idle"`
	CurrentFPS int    `json:"fps"`
}

// Tracker reads the camera, finds the primary hand and offers a
// pointer.Sample for every frame that contains one. Frames without a hand
// publish nothing.
type Tracker struct {
	cfg      Config
	camera   capture.Camera
	detector detector.Detector
	samples  *mailbox.Latest[pointer.Sample]
	preview  *Preview

	motion *capture.MotionDetector
	rate   *capture.RateController

	enabled atomic.Bool
	running atomic.Bool

	// mu guards the per-frame pipeline between Step callers.
	mu sync.Mutex

	frames atomic.Uint64
	hands  atomic.Uint64
	errs   atomic.Uint64
	fps    atomic.Int64
	idle   atomic.Bool
}

// New wires a tracker. The camera is opened by Run.
func New(cfg Config, cam capture.Camera, det detector.Detector, samples *mailbox.Latest[pointer.Sample]) *Tracker {
	if cfg.PinchThreshold <= 0 {
		cfg.PinchThreshold = gesture.DefaultPinchThreshold
	}
	t := &Tracker{
		cfg:      cfg,
		camera:   cam,
		detector: det,
		samples:  samples,
		preview:  NewPreview(),
		motion:   capture.NewMotionDetector(cfg.MotionThreshold),
		rate:     capture.NewRateController(cfg.Rate),
	}
	t.enabled.Store(true)
	t.fps.Store(int64(t.rate.FPS()))
	return t
}

// SetEnabled pauses or resumes acquisition. A disabled tracker keeps the
// camera open but publishes nothing.
func (t *Tracker) SetEnabled(enabled bool) {
	if t.enabled.Swap(enabled) != enabled {
		log.Printf("Tracking enabled: %v", enabled)
	}
}

// IsEnabled reports whether acquisition is active.
func (t *Tracker) IsEnabled() bool {
	return t.enabled.Load()
}

// Preview returns the holder of the newest annotated frame.
func (t *Tracker) Preview() *Preview {
	return t.preview
}

// Stats returns the frame counters.
func (t *Tracker) Stats() Stats {
	return Stats{
		Frames:     t.frames.Load(),
		Hands:      t.hands.Load(),
		Errors:     t.errs.Load(),
		Idle:       t.idle.Load(),
		CurrentFPS: int(t.fps.Load()),
	}
}

// Run opens the camera and processes frames until ctx is done.
func (t *Tracker) Run(ctx context.Context) error {
	if !t.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer t.running.Store(false)

	if err := t.camera.Open(); err != nil {
		return fmt.Errorf("tracker: %w", err)
	}
	defer func() {
		if err := t.camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
		t.motion.Close()
	}()

	fps := t.rate.FPS()
	t.camera.SetFPS(fps)
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	log.Printf("Tracker started at %d fps", fps)
	defer log.Println("Tracker stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if !t.IsEnabled() {
				continue
			}
			if err := t.Step(now); err != nil {
				t.errs.Add(1)
				continue
			}
			if next := int(t.fps.Load()); next != fps {
				fps = next
				ticker.Reset(time.Second / time.Duration(fps))
			}
		}
	}
}

// Step processes one frame captured at now.
func (t *Tracker) Step(now time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	frame, err := t.camera.ReadFrame()
	if err != nil {
		return err
	}
	defer frame.Close()
	t.frames.Add(1)

	// Mirror so moving the hand right moves the cursor right.
	gocv.Flip(*frame, frame, 1)

	hands, err := t.detector.Detect(frame)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}
	hand, found := detector.Primary(hands)

	moved, _ := t.motion.Detect(frame)
	t.observeActivity(found || moved, now)

	var sample pointer.Sample
	if found {
		t.hands.Add(1)
		sample = gesture.SampleFromHand(hand, frame.Cols(), frame.Rows(), t.cfg.PinchThreshold, now)
		t.samples.Offer(sample)
	}

	if t.cfg.Preview {
		if found {
			Annotate(frame, hand, sample.Pinch)
		}
		if err := t.preview.Encode(frame); err != nil {
			return fmt.Errorf("preview: %w", err)
		}
	}
	return nil
}

func (t *Tracker) observeActivity(active bool, now time.Time) {
	fps, changed := t.rate.Observe(active, now)
	if !changed {
		return
	}
	t.camera.SetFPS(fps)
	t.fps.Store(int64(fps))
	t.idle.Store(t.rate.Idle())
	if t.rate.Idle() {
		log.Printf("Switched to idle mode (%d fps)", fps)
	} else {
		log.Printf("Switched to active mode (%d fps)", fps)
	}
}
