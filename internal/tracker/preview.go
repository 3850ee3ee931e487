package tracker

import (
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/pinchcursor/internal/detector"
	"github.com/ayusman/pinchcursor/internal/gesture"
)

var (
	landmarkColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	pointerColor  = color.RGBA{R: 255, G: 0, B: 255, A: 0}
	pinchColor    = color.RGBA{R: 255, G: 255, B: 0, A: 0}
	openColor     = color.RGBA{R: 0, G: 0, B: 255, A: 0}
)

// Preview holds the newest JPEG-encoded frame. Readers never consume it;
// every reader sees the latest frame and its sequence number.
type Preview struct {
	mu   sync.RWMutex
	jpeg []byte
	seq  uint64
}

// NewPreview returns an empty preview.
func NewPreview() *Preview {
	return &Preview{}
}

// Encode stores frame as JPEG.
func (p *Preview) Encode(frame *gocv.Mat) error {
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return err
	}
	defer buf.Close()

	p.Store(append([]byte(nil), buf.GetBytes()...))
	return nil
}

// Store replaces the current frame.
func (p *Preview) Store(jpeg []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jpeg = jpeg
	p.seq++
}

// Latest returns the newest frame and its sequence number. seq is 0 before
// the first frame.
func (p *Preview) Latest() (jpeg []byte, seq uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.jpeg, p.seq
}

// Annotate draws the landmarks, the pointer landmark and the pinch segment
// onto a mirrored frame. The segment is yellow while pinching.
func Annotate(frame *gocv.Mat, hand *detector.HandLandmarks, pinch bool) {
	w, h := float64(frame.Cols()), float64(frame.Rows())
	px := func(p detector.Point3D) image.Point {
		return image.Pt(int(p.X*w), int(p.Y*h))
	}

	for _, p := range hand.Points {
		gocv.Circle(frame, px(p), 3, landmarkColor, -1)
	}

	gocv.Circle(frame, px(hand.Points[gesture.PointerLandmark]), 8, pointerColor, 2)

	segment := openColor
	if pinch {
		segment = pinchColor
	}
	gocv.Line(frame, px(hand.Points[detector.ThumbTip]), px(hand.Points[detector.IndexTip]), segment, 2)
}
