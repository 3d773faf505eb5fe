// Package raster executes render draw commands on an RGBA image.
package raster

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/inamate/vectorscene/internal/geom"
	"github.com/inamate/vectorscene/internal/render"
)

// ellipseSegments is the polygon resolution used for ellipses.
const ellipseSegments = 64

// Canvas is a pixel target for draw commands.
type Canvas struct {
	img   *image.RGBA
	ras   *vector.Rasterizer
	font  *opentype.Font
	faces map[int]font.Face
}

// NewCanvas creates a width×height canvas filled with bg.
func NewCanvas(width, height int, bg geom.Color) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg.RGBA()), image.Point{}, draw.Src)
	return &Canvas{
		img:   img,
		ras:   vector.NewRasterizer(width, height),
		font:  f,
		faces: make(map[int]font.Face),
	}, nil
}

// Image returns the backing image.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Draw executes cmds in order.
func (c *Canvas) Draw(cmds []render.DrawCommand) {
	for _, cmd := range cmds {
		switch cmd.Op {
		case render.OpLine, render.OpPolyline:
			c.strokePath(cmd.Points, false, cmd.Stroke, cmd.StrokeWidth)
		case render.OpPolygon:
			c.fillPath(cmd.Points, cmd.Fill)
			c.strokePath(cmd.Points, true, cmd.Stroke, cmd.StrokeWidth)
		case render.OpEllipse:
			pts := ellipsePoints(cmd.Center, cmd.RX, cmd.RY, cmd.Angle)
			c.fillPath(pts, cmd.Fill)
			c.strokePath(pts, true, cmd.Stroke, cmd.StrokeWidth)
		case render.OpText:
			c.text(cmd)
		}
	}
}

// EncodePNG writes the canvas as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.img)
}

// Render draws cmds on a new canvas and encodes it as PNG.
func Render(w io.Writer, cmds []render.DrawCommand, width, height int, bg geom.Color) error {
	c, err := NewCanvas(width, height, bg)
	if err != nil {
		return err
	}
	c.Draw(cmds)
	return c.EncodePNG(w)
}

func paint(s string) (image.Image, bool) {
	col := geom.ParseColor(s, geom.Transparent)
	if col.A == 0 {
		return nil, false
	}
	return image.NewUniform(col.RGBA()), true
}

func (c *Canvas) fillPath(pts []geom.Vec2, fill string) {
	src, ok := paint(fill)
	if !ok || len(pts) < 3 {
		return
	}
	b := c.img.Bounds()
	c.ras.Reset(b.Dx(), b.Dy())
	c.ras.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		c.ras.LineTo(float32(p.X), float32(p.Y))
	}
	c.ras.ClosePath()
	c.ras.Draw(c.img, b, src, image.Point{})
}

// strokePath rasterizes each segment as a quad of the given width.
func (c *Canvas) strokePath(pts []geom.Vec2, closed bool, stroke string, width float64) {
	src, ok := paint(stroke)
	if !ok || len(pts) < 2 {
		return
	}
	half := max(width, 1) / 2
	b := c.img.Bounds()
	c.ras.Reset(b.Dx(), b.Dy())

	n := len(pts) - 1
	if closed {
		n = len(pts)
	}
	for i := range n {
		a, e := pts[i], pts[(i+1)%len(pts)]
		d := e.Sub(a)
		l := d.Length()
		if l == 0 {
			continue
		}
		off := geom.V2(-d.Y/l*half, d.X/l*half)
		c.ras.MoveTo(float32(a.X+off.X), float32(a.Y+off.Y))
		c.ras.LineTo(float32(e.X+off.X), float32(e.Y+off.Y))
		c.ras.LineTo(float32(e.X-off.X), float32(e.Y-off.Y))
		c.ras.LineTo(float32(a.X-off.X), float32(a.Y-off.Y))
		c.ras.ClosePath()
	}
	c.ras.Draw(c.img, b, src, image.Point{})
}

func ellipsePoints(center geom.Vec2, rx, ry, angleDeg float64) []geom.Vec2 {
	sin, cos := math.Sincos(angleDeg * math.Pi / 180)
	pts := make([]geom.Vec2, ellipseSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / ellipseSegments
		x, y := rx*math.Cos(a), ry*math.Sin(a)
		pts[i] = geom.V2(center.X+x*cos-y*sin, center.Y+x*sin+y*cos)
	}
	return pts
}

func (c *Canvas) face(size float64) (font.Face, error) {
	key := max(int(math.Round(size)), 1)
	if f, ok := c.faces[key]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(c.font, &opentype.FaceOptions{
		Size:    float64(key),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	c.faces[key] = f
	return f, nil
}

// text draws cmd.Text with its top-left corner at cmd.Points[0].
func (c *Canvas) text(cmd render.DrawCommand) {
	src, ok := paint(cmd.Fill)
	if !ok || len(cmd.Points) == 0 || cmd.Text == "" {
		return
	}
	face, err := c.face(cmd.FontSize)
	if err != nil {
		return
	}
	p := cmd.Points[0]
	d := font.Drawer{
		Dst:  c.img,
		Src:  src,
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(int(p.X)), Y: fixed.I(int(p.Y)) + face.Metrics().Ascent},
	}
	d.DrawString(cmd.Text)
}
