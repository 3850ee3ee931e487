package cursor

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// Canvas is the drawing surface the renderer issues calls to. Colors are
// non-premultiplied; A is the opacity of the primitive. The renderer never
// reads pixels back.
type Canvas interface {
	Size() image.Point
	DrawRing(center image.Point, radius int, c color.NRGBA, thickness int)
	DrawFilledPolygon(points []image.Point, c color.NRGBA)
	BlitOverlay(s *Sprite, center image.Point)
	FillFullScreen(c color.NRGBA)
}

// ShapeKind selects how a Shape is drawn.
type ShapeKind int

const (
	ShapeRing ShapeKind = iota
	ShapePolygon
)

// Shape is one primitive of a Sprite. Coordinates are relative to the
// sprite centre.
type Shape struct {
	Kind      ShapeKind
	Radius    int
	Thickness int
	Points    []image.Point
	Color     color.NRGBA
}

// Sprite is a cached drawable: a display list blitted centred on a point.
type Sprite struct {
	Size   image.Point
	Shapes []Shape
}

// Style selects the look of the idle ring.
type Style int

const (
	StyleClassic Style = iota
	StyleHalo
	StyleNeon
)

func (s Style) String() string {
	switch s {
	case StyleClassic:
		return "classic"
	case StyleHalo:
		return "halo"
	case StyleNeon:
		return "neon"
	default:
		return fmt.Sprintf("style(%d)", int(s))
	}
}

// ParseStyle parses the names returned by Style.String.
func ParseStyle(s string) (Style, error) {
	switch s {
	case "classic", "":
		return StyleClassic, nil
	case "halo":
		return StyleHalo, nil
	case "neon":
		return StyleNeon, nil
	default:
		return 0, fmt.Errorf("%w: unknown cursor style %q", ErrInvalidConfig, s)
	}
}

// Palette used by the renderer.
var (
	IdleColor        = color.NRGBA{R: 255, G: 255, B: 51, A: 200}
	GlowColor        = color.NRGBA{R: 255, G: 255, B: 150, A: 70}
	HaloColor        = color.NRGBA{R: 255, G: 255, B: 140}
	NeonColor        = color.NRGBA{R: 255, G: 255, B: 120}
	ChargeColor      = color.NRGBA{R: 153, G: 255, B: 255, A: 255}
	ErrorColor       = color.NRGBA{R: 255, A: 255}
	ScreenErrorColor = color.NRGBA{R: 255}
	ScreenOKColor    = color.NRGBA{G: 255}
)

// RenderConfig holds the cursor geometry.
type RenderConfig struct {
	Style Style

	OuterRadius   int
	RingThickness int
	GlowOffset    int

	// ArcRadius and ArcHoleRadius bound the charging sector.
	ArcRadius     int
	ArcHoleRadius int
	// ArcOverlap extends the sector past the angle so the leading edge
	// meets the ring without a gap.
	ArcOverlap float64

	ErrorRingOffset    int
	ErrorRingThickness int

	// AngleBucket is the angle step, in degrees, at which the cached
	// charging sprite is rebuilt.
	AngleBucket float64
}

// DefaultRenderConfig returns the geometry of the classic cursor.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Style:              StyleClassic,
		OuterRadius:        50,
		RingThickness:      10,
		GlowOffset:         10,
		ArcRadius:          65,
		ArcHoleRadius:      51,
		ArcOverlap:         5,
		ErrorRingOffset:    5,
		ErrorRingThickness: 15,
		AngleBucket:        5,
	}
}

// Validate reports the first unusable parameter.
func (c RenderConfig) Validate() error {
	if c.OuterRadius <= 0 || c.ArcRadius <= 0 {
		return fmt.Errorf("%w: radii must be positive", ErrInvalidConfig)
	}
	if c.ArcHoleRadius < 0 || c.ArcHoleRadius >= c.ArcRadius {
		return fmt.Errorf("%w: arc hole radius %d must be below arc radius %d", ErrInvalidConfig, c.ArcHoleRadius, c.ArcRadius)
	}
	if c.AngleBucket <= 0 || c.AngleBucket > FullCircle {
		return fmt.Errorf("%w: angle bucket %v", ErrInvalidConfig, c.AngleBucket)
	}
	if c.Style < StyleClassic || c.Style > StyleNeon {
		return fmt.Errorf("%w: style %d", ErrInvalidConfig, int(c.Style))
	}
	return nil
}

// Renderer draws a Snapshot. It caches the idle sprite once and the
// charging sprite per angle bucket; it never mutates the machine.
type Renderer struct {
	cfg  RenderConfig
	idle *Sprite

	arc       *Sprite
	arcBucket int
	rebuilds  int
}

// NewRenderer validates cfg and builds the idle sprite.
func NewRenderer(cfg RenderConfig) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Renderer{cfg: cfg, arcBucket: -1}
	r.idle = r.buildIdle()
	return r, nil
}

// Rebuilds returns how many times the charging sprite was regenerated.
func (r *Renderer) Rebuilds() int {
	return r.rebuilds
}

// Draw issues the draw calls for one frame with the cursor at pos.
func (r *Renderer) Draw(c Canvas, s Snapshot, pos image.Point) {
	if a := alpha8(s.ScreenErrorAlpha); a > 0 {
		col := ScreenErrorColor
		col.A = a
		c.FillFullScreen(col)
	}
	if a := alpha8(s.ScreenSuccessAlpha); a > 0 {
		col := ScreenOKColor
		col.A = a
		c.FillFullScreen(col)
	}

	c.BlitOverlay(r.idle, pos)

	if a := alpha8(s.RingErrorAlpha); a > 0 {
		col := ErrorColor
		col.A = a
		c.DrawRing(pos, r.cfg.OuterRadius+r.cfg.ErrorRingOffset, col, r.cfg.ErrorRingThickness)
		return
	}
	if s.State == ErrorFade {
		return
	}

	if !s.Charging {
		if s.HoldActive && s.Angle >= FullCircle {
			c.BlitOverlay(r.arcFor(FullCircle), pos)
		}
		return
	}

	c.BlitOverlay(r.arcFor(s.Angle), pos)
}

// arcFor returns the cached sector for angle's bucket, rebuilding it when
// the bucket changed.
func (r *Renderer) arcFor(angle float64) *Sprite {
	bucket := int(angle / r.cfg.AngleBucket)
	if r.arc != nil && bucket == r.arcBucket {
		return r.arc
	}
	r.arc = r.buildArc(float64(bucket) * r.cfg.AngleBucket)
	r.arcBucket = bucket
	r.rebuilds++
	return r.arc
}

// buildArc returns an annular sector starting at 12 o'clock and sweeping
// clockwise by angle plus the overlap.
func (r *Renderer) buildArc(angle float64) *Sprite {
	sweep := math.Min(angle+r.cfg.ArcOverlap, FullCircle)
	outer := float64(r.cfg.ArcRadius)
	inner := float64(r.cfg.ArcHoleRadius)

	steps := int(math.Ceil(sweep))
	if steps < 1 {
		steps = 1
	}
	points := make([]image.Point, 0, 2*(steps+1))
	for i := 0; i <= steps; i++ {
		points = append(points, polar(outer, -90+sweep*float64(i)/float64(steps)))
	}
	for i := steps; i >= 0; i-- {
		points = append(points, polar(inner, -90+sweep*float64(i)/float64(steps)))
	}

	return &Sprite{
		Size: image.Pt(2*r.cfg.ArcRadius, 2*r.cfg.ArcRadius),
		Shapes: []Shape{{
			Kind:   ShapePolygon,
			Points: points,
			Color:  ChargeColor,
		}},
	}
}

func (r *Renderer) buildIdle() *Sprite {
	type layer struct {
		offset, thickness int
		alpha             uint8
	}

	var (
		layers []layer
		base   color.NRGBA
	)
	switch r.cfg.Style {
	case StyleHalo:
		base = HaloColor
		layers = []layer{{6, 12, 45}, {10, 10, 32}, {14, 8, 22}, {18, 6, 14}}
	case StyleNeon:
		base = NeonColor
		layers = []layer{{6, 18, 30}, {10, 14, 22}, {14, 10, 16}}
	default:
		base = GlowColor
		layers = []layer{{r.cfg.GlowOffset, 20, GlowColor.A}}
	}

	maxOffset := 0
	shapes := make([]Shape, 0, len(layers)+1)
	for _, l := range layers {
		col := base
		col.A = l.alpha
		shapes = append(shapes, Shape{
			Kind:      ShapeRing,
			Radius:    r.cfg.OuterRadius + l.offset,
			Thickness: l.thickness,
			Color:     col,
		})
		if l.offset > maxOffset {
			maxOffset = l.offset
		}
	}
	shapes = append(shapes, Shape{
		Kind:      ShapeRing,
		Radius:    r.cfg.OuterRadius,
		Thickness: r.cfg.RingThickness,
		Color:     IdleColor,
	})

	size := 2 * (r.cfg.OuterRadius + maxOffset)
	return &Sprite{Size: image.Pt(size, size), Shapes: shapes}
}

func polar(radius, degrees float64) image.Point {
	rad := degrees * math.Pi / 180
	return image.Pt(
		int(math.Round(math.Cos(rad)*radius)),
		int(math.Round(math.Sin(rad)*radius)),
	)
}

// alpha8 truncates a fade alpha to a channel value.
func alpha8(a float64) uint8 {
	if a <= 0 {
		return 0
	}
	if a >= 255 {
		return 255
	}
	return uint8(a)
}
