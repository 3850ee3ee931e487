package render

import (
	"github.com/ayusman/pinchcursor/internal/cursor"
)

// Headless is a display that draws nothing. The tick loop still runs, and
// the cursor is observable through the state stream.
type Headless struct {
	frames uint64
}

// Begin returns no canvas; Tick skips drawing.
func (h *Headless) Begin() cursor.Canvas {
	return nil
}

// Present counts the frame. A headless display is never closed by the user.
func (h *Headless) Present() bool {
	h.frames++
	return true
}

// Frames returns how many frames were presented.
func (h *Headless) Frames() uint64 {
	return h.frames
}
