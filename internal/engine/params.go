package engine

import (
	"fmt"

	"github.com/inamate/vectorscene/internal/element"
	"github.com/inamate/vectorscene/internal/geom"
)

// StyleParams uses color strings as accepted by geom.ParseColor.
type StyleParams struct {
	Stroke string  `json:"stroke,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Fill   string  `json:"fill,omitempty"`
}

func (p *StyleParams) Style() element.Style {
	s := element.DefaultStyle()
	if p == nil {
		return s
	}
	s.Stroke = geom.ParseColor(p.Stroke, s.Stroke)
	if p.Width > 0 {
		s.Width = p.Width
	}
	if p.Fill != "" {
		s.Fill = geom.ParseColor(p.Fill, geom.Transparent)
		s.Filled = s.Fill.A != 0
	}
	return s
}

// ElementParams describes a new element. Which fields are read depends on
// Kind: line and rectangle use Start and End, circle uses Center and
// Radius, label uses Start as its position, and cylinder uses Start, End
// and Radius.
type ElementParams struct {
	Kind     element.Kind `json:"kind"`
	Start    geom.Vec3    `json:"start"`
	End      geom.Vec3    `json:"end"`
	Center   geom.Vec3    `json:"center"`
	Radius   float64      `json:"radius"`
	Text     string       `json:"text,omitempty"`
	FontSize float64      `json:"fontSize,omitempty"`
	Style    *StyleParams `json:"style,omitempty"`
}

// Build creates the element.
func (p ElementParams) Build() (element.Element, error) {
	s := p.Style.Style()
	switch p.Kind {
	case element.KindLine:
		return element.NewLine(p.Start, p.End, s)
	case element.KindCircle:
		return element.NewCircle(p.Center, p.Radius, s)
	case element.KindRectangle:
		return element.NewRectangle(p.Start, p.End, s)
	case element.KindLabel:
		size := p.FontSize
		if size <= 0 {
			size = element.DefaultFontSize
		}
		return element.NewLabel(p.Start, p.Text, size, s)
	case element.KindCylinder:
		return element.NewCylinder(p.Start, p.End, p.Radius, s)
	}
	return nil, fmt.Errorf("unknown element kind %q", p.Kind)
}
