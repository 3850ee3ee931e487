// Package render draws the cursor onto OpenCV Mats and shows them in a
// window.
package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/pinchcursor/internal/cursor"
)

// Canvas is a cursor.Canvas over a BGR Mat. Translucent primitives are
// drawn on a copy of the affected region and blended back with AddWeighted.
type Canvas struct {
	mat *gocv.Mat
}

var _ cursor.Canvas = (*Canvas)(nil)

// NewCanvas draws onto mat. The caller keeps ownership of mat.
func NewCanvas(mat *gocv.Mat) *Canvas {
	return &Canvas{mat: mat}
}

func (c *Canvas) Size() image.Point {
	return image.Pt(c.mat.Cols(), c.mat.Rows())
}

func (c *Canvas) DrawRing(center image.Point, radius int, col color.NRGBA, thickness int) {
	reach := radius + thickness
	bounds := image.Rect(center.X-reach, center.Y-reach, center.X+reach+1, center.Y+reach+1)
	c.blend(bounds, col.A, func(dst *gocv.Mat, origin image.Point) {
		gocv.Circle(dst, center.Sub(origin), radius, opaque(col), thickness)
	})
}

func (c *Canvas) DrawFilledPolygon(points []image.Point, col color.NRGBA) {
	if len(points) < 3 {
		return
	}
	bounds := image.Rectangle{Min: points[0], Max: points[0].Add(image.Pt(1, 1))}
	for _, p := range points[1:] {
		bounds = bounds.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	bounds.Max = bounds.Max.Add(image.Pt(1, 1))

	c.blend(bounds, col.A, func(dst *gocv.Mat, origin image.Point) {
		shifted := make([]image.Point, len(points))
		for i, p := range points {
			shifted[i] = p.Sub(origin)
		}
		pv := gocv.NewPointsVectorFromPoints([][]image.Point{shifted})
		defer pv.Close()
		gocv.FillPoly(dst, pv, opaque(col))
	})
}

// BlitOverlay replays the sprite's shapes centred on center.
func (c *Canvas) BlitOverlay(s *cursor.Sprite, center image.Point) {
	for _, sh := range s.Shapes {
		switch sh.Kind {
		case cursor.ShapeRing:
			c.DrawRing(center, sh.Radius, sh.Color, sh.Thickness)
		case cursor.ShapePolygon:
			pts := make([]image.Point, len(sh.Points))
			for i, p := range sh.Points {
				pts[i] = p.Add(center)
			}
			c.DrawFilledPolygon(pts, sh.Color)
		}
	}
}

func (c *Canvas) FillFullScreen(col color.NRGBA) {
	if col.A == 0 {
		return
	}
	layer := gocv.NewMatWithSizeFromScalar(scalar(col), c.mat.Rows(), c.mat.Cols(), c.mat.Type())
	defer layer.Close()

	a := float64(col.A) / 255
	gocv.AddWeighted(layer, a, *c.mat, 1-a, 0, c.mat)
}

// blend runs draw on the part of the canvas inside bounds. Opaque colors
// draw straight onto the canvas.
func (c *Canvas) blend(bounds image.Rectangle, alpha uint8, draw func(dst *gocv.Mat, origin image.Point)) {
	if alpha == 0 {
		return
	}
	if alpha == 255 {
		draw(c.mat, image.Point{})
		return
	}

	r := bounds.Intersect(image.Rect(0, 0, c.mat.Cols(), c.mat.Rows()))
	if r.Empty() {
		return
	}

	roi := c.mat.Region(r)
	defer roi.Close()
	layer := roi.Clone()
	defer layer.Close()

	draw(&layer, r.Min)

	a := float64(alpha) / 255
	gocv.AddWeighted(layer, a, roi, 1-a, 0, &roi)
}

func opaque(c color.NRGBA) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

func scalar(c color.NRGBA) gocv.Scalar {
	return gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0)
}
