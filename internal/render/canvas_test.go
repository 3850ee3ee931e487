package render

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/pinchcursor/internal/cursor"
)

func newBlackCanvas(t *testing.T, w, h int) (*Canvas, *gocv.Mat) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}
	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(0, 0, 0, 0))
	t.Cleanup(func() { mat.Close() })
	return NewCanvas(&mat), &mat
}

// bgr returns the pixel at (x, y) as B, G, R.
func bgr(mat *gocv.Mat, x, y int) [3]uint8 {
	return [3]uint8{mat.GetUCharAt(y, x*3), mat.GetUCharAt(y, x*3+1), mat.GetUCharAt(y, x*3+2)}
}

func TestCanvas_Size(t *testing.T) {
	c, _ := newBlackCanvas(t, 320, 240)
	if got := c.Size(); got != image.Pt(320, 240) {
		t.Errorf("Size() = %v, want 320x240", got)
	}
}

func TestCanvas_FillFullScreen(t *testing.T) {
	c, mat := newBlackCanvas(t, 64, 48)

	c.FillFullScreen(color.NRGBA{G: 255, A: 51})

	got := bgr(mat, 10, 10)
	if got[0] != 0 || got[2] != 0 || got[1] < 49 || got[1] > 52 {
		t.Errorf("pixel = %v, want about 20%% green", got)
	}
}

func TestCanvas_DrawRingOpaque(t *testing.T) {
	c, mat := newBlackCanvas(t, 200, 200)

	c.DrawRing(image.Pt(100, 100), 50, color.NRGBA{R: 255, A: 255}, 4)

	if got := bgr(mat, 150, 100); got != [3]uint8{0, 0, 255} {
		t.Errorf("pixel on the ring = %v, want red", got)
	}
	if got := bgr(mat, 100, 100); got != [3]uint8{0, 0, 0} {
		t.Errorf("centre pixel = %v, want untouched", got)
	}
}

func TestCanvas_DrawRingTranslucent(t *testing.T) {
	c, mat := newBlackCanvas(t, 200, 200)

	c.DrawRing(image.Pt(100, 100), 50, color.NRGBA{R: 255, A: 128}, 4)

	got := bgr(mat, 150, 100)
	if got[2] < 120 || got[2] > 135 {
		t.Errorf("red channel on the ring = %d, want about half", got[2])
	}
}

func TestCanvas_RingClippedAtEdge(t *testing.T) {
	c, mat := newBlackCanvas(t, 100, 100)

	// Mostly off-canvas; must not panic.
	c.DrawRing(image.Pt(-20, -20), 50, color.NRGBA{B: 255, A: 100}, 6)
	c.DrawRing(image.Pt(500, 500), 10, color.NRGBA{B: 255, A: 100}, 6)

	if got := bgr(mat, 99, 99); got != [3]uint8{0, 0, 0} {
		t.Errorf("far corner = %v, want untouched", got)
	}
}

func TestCanvas_BlitSprite(t *testing.T) {
	c, mat := newBlackCanvas(t, 300, 300)
	r, err := cursor.NewRenderer(cursor.DefaultRenderConfig())
	if err != nil {
		t.Fatal(err)
	}

	r.Draw(c, cursor.Snapshot{State: cursor.Charging, Angle: 180, Charging: true}, image.Pt(150, 150))

	// The arc starts at 12 o'clock, between the hole and the outer radius.
	top := bgr(mat, 150, 150-58)
	if top[2] < 100 {
		t.Errorf("arc pixel at 12 o'clock = %v, want the charge colour", top)
	}
	// A half charge leaves 9 o'clock empty of the arc.
	left := bgr(mat, 150-58, 150)
	if left[0] == 255 && left[1] == 255 && left[2] == 153 {
		t.Errorf("arc pixel at 9 o'clock = %v, want no arc", left)
	}
}
