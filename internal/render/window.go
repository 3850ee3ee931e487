package render

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/pinchcursor/internal/cursor"
)

const (
	keyEsc = 27
	keyQ   = 'q'
)

// Window is a fullscreen OpenCV window with a reusable back buffer.
type Window struct {
	win    *gocv.Window
	frame  gocv.Mat
	canvas *Canvas
}

// NewWindow opens a window showing width x height frames.
func NewWindow(title string, width, height int, fullscreen bool) *Window {
	win := gocv.NewWindow(title)
	win.ResizeWindow(width, height)
	if fullscreen {
		win.SetWindowProperty(gocv.WindowPropertyFullscreen, gocv.WindowFullscreen)
	}

	w := &Window{
		win:   win,
		frame: gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3),
	}
	w.canvas = NewCanvas(&w.frame)
	return w
}

// Begin clears the back buffer and returns a canvas over it.
func (w *Window) Begin() cursor.Canvas {
	w.frame.SetTo(gocv.NewScalar(0, 0, 0, 0))
	return w.canvas
}

// Present shows the back buffer. It reports false once the user pressed
// q or Esc.
func (w *Window) Present() bool {
	w.win.IMShow(w.frame)
	switch w.win.WaitKey(1) {
	case keyEsc, keyQ:
		return false
	}
	return true
}

// Close releases the window and its buffer.
func (w *Window) Close() error {
	w.frame.Close()
	return w.win.Close()
}
