package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNoMoreFrames is returned by a non-looping MockCamera after its last frame.
var ErrNoMoreFrames = errors.New("no more frames")

// MockCamera plays back a fixed frame sequence. With no frames it produces
// black frames of the configured size, which is enough to drive the tracker
// with a MockDetector.
type MockCamera struct {
	mu      sync.Mutex
	frames  []*gocv.Mat
	width   int
	height  int
	index   int
	loop    bool
	open    bool
	fps     int
	reads   int
	fpsLogs []int
}

// NewMockCamera plays frames in order, restarting when loop is set.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop,
		width:  DefaultWidth,
		height: DefaultHeight,
		fps:    DefaultActiveFPS,
	}
}

// NewBlankCamera returns a camera that produces black width x height frames
// forever.
func NewBlankCamera(width, height int) *MockCamera {
	return &MockCamera{width: width, height: height, loop: true, fps: DefaultActiveFPS}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil, ErrCameraNotOpen
	}
	c.reads++

	if len(c.frames) == 0 {
		mat := gocv.NewMatWithSize(c.height, c.width, gocv.MatTypeCV8UC3)
		return &mat, nil
	}

	if c.index >= len(c.frames) {
		if !c.loop {
			return nil, ErrNoMoreFrames
		}
		c.index = 0
	}

	// Clone so the caller may close or draw on the frame.
	frame := c.frames[c.index].Clone()
	c.index++
	return &frame, nil
}

// SetFPS records the requested rate; the mock does not pace itself.
func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
	c.fpsLogs = append(c.fpsLogs, fps)
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Reads returns how many frames were requested.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// FPSChanges returns every rate passed to SetFPS, in order.
func (c *MockCamera) FPSChanges() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.fpsLogs...)
}

// SetFrames replaces the sequence and restarts playback.
func (c *MockCamera) SetFrames(frames []*gocv.Mat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.index = 0
}
