package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	// BlurKernel is the Gaussian kernel applied before differencing.
	BlurKernel = 21
	// PixelDelta is the grey-level change that counts a pixel as moved.
	PixelDelta = 25
	// DefaultMotionPercent is the share of moved pixels that counts as motion.
	DefaultMotionPercent = 1.0
)

// MotionDetector compares each frame with the previous one. The tracker
// uses it to notice a hand entering the view while the camera runs at the
// idle rate.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64
	prev      gocv.Mat
	primed    bool
}

// NewMotionDetector returns a detector that reports motion when more than
// threshold percent of the pixels changed.
func NewMotionDetector(threshold float64) *MotionDetector {
	if threshold <= 0 {
		threshold = DefaultMotionPercent
	}
	return &MotionDetector{threshold: threshold, prev: gocv.NewMat()}
}

// Detect reports whether frame moved relative to the last frame passed in,
// and the percentage of changed pixels. The first frame only primes the
// detector.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	if frame == nil || frame.Empty() {
		return false, 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cur := smoothGray(frame)
	defer cur.Close()

	if !m.primed || m.prev.Rows() != cur.Rows() || m.prev.Cols() != cur.Cols() {
		cur.CopyTo(&m.prev)
		m.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(cur, m.prev, &diff)
	gocv.Threshold(diff, &diff, PixelDelta, 255, gocv.ThresholdBinary)

	changed := 100 * float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols())
	cur.CopyTo(&m.prev)

	return changed > m.threshold, changed
}

func smoothGray(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}
	gocv.GaussianBlur(gray, &gray, image.Pt(BlurKernel, BlurKernel), 0, 0, gocv.BorderDefault)
	return gray
}

// Reset drops the previous frame so the next one primes the detector again.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

// Close releases the stored frame. The detector stays usable.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

func (m *MotionDetector) release() {
	if !m.prev.Empty() {
		m.prev.Close()
		m.prev = gocv.NewMat()
	}
	m.primed = false
}

// Threshold returns the motion percentage threshold.
func (m *MotionDetector) Threshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threshold
}

// SetThreshold changes the threshold. Non-positive values are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}
