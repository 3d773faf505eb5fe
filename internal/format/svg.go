// Package format reads and writes scenes as SVG documents and imports flat
// longitude/latitude point files.
package format

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/inamate/vectorscene/internal/geom"
)

const svgNamespace = "http://www.w3.org/2000/svg"

type svgDoc struct {
	XMLName xml.Name `xml:"svg"`
	Xmlns   string   `xml:"xmlns,attr,omitempty"`
	Width   string   `xml:"width,attr,omitempty"`
	Height  string   `xml:"height,attr,omitempty"`
	ViewBox string   `xml:"viewBox,attr,omitempty"`
	svgContent
}

// svgContent holds the children of an svg or g node, grouped by tag.
type svgContent struct {
	Lines     []svgLine     `xml:"line"`
	Circles   []svgCircle   `xml:"circle"`
	Polylines []svgPolyline `xml:"polyline"`
	Rects     []svgRect     `xml:"rect"`
	Texts     []svgText     `xml:"text"`
	Groups    []svgGroup    `xml:"g"`
}

type svgGroup struct {
	ID           string `xml:"id,attr,omitempty"`
	LayerID      string `xml:"data-layer-id,attr,omitempty"`
	LayerName    string `xml:"data-layer-name,attr,omitempty"`
	LayerVisible string `xml:"data-layer-visible,attr,omitempty"`
	LayerLocked  string `xml:"data-layer-locked,attr,omitempty"`
	LayerColor   string `xml:"data-layer-color,attr,omitempty"`
	Style        string `xml:"style,attr,omitempty"`

	// cylinder groups
	Kind        string `xml:"data-kind,attr,omitempty"`
	Start       string `xml:"data-start,attr,omitempty"`
	End         string `xml:"data-end,attr,omitempty"`
	Radius      string `xml:"data-radius,attr,omitempty"`
	FixedRadius string `xml:"data-fixed-radius,attr,omitempty"`
	Detail      string `xml:"data-detail,attr,omitempty"`
	Caps        string `xml:"data-caps,attr,omitempty"`
	Stroke      string `xml:"stroke,attr,omitempty"`
	StrokeWidth string `xml:"stroke-width,attr,omitempty"`
	Fill        string `xml:"fill,attr,omitempty"`

	svgContent
}

type svgLine struct {
	X1          string `xml:"x1,attr"`
	Y1          string `xml:"y1,attr"`
	X2          string `xml:"x2,attr"`
	Y2          string `xml:"y2,attr"`
	Z1          string `xml:"data-z1,attr,omitempty"`
	Z2          string `xml:"data-z2,attr,omitempty"`
	Stroke      string `xml:"stroke,attr,omitempty"`
	StrokeWidth string `xml:"stroke-width,attr,omitempty"`
}

type svgCircle struct {
	CX          string `xml:"cx,attr"`
	CY          string `xml:"cy,attr"`
	Z           string `xml:"data-z,attr,omitempty"`
	R           string `xml:"r,attr"`
	Normal      string `xml:"data-normal,attr,omitempty"`
	Stroke      string `xml:"stroke,attr,omitempty"`
	StrokeWidth string `xml:"stroke-width,attr,omitempty"`
	Fill        string `xml:"fill,attr,omitempty"`
}

type svgRect struct {
	X           string `xml:"x,attr"`
	Y           string `xml:"y,attr"`
	Width       string `xml:"width,attr"`
	Height      string `xml:"height,attr"`
	Z1          string `xml:"data-z1,attr,omitempty"`
	Z2          string `xml:"data-z2,attr,omitempty"`
	Stroke      string `xml:"stroke,attr,omitempty"`
	StrokeWidth string `xml:"stroke-width,attr,omitempty"`
	Fill        string `xml:"fill,attr,omitempty"`
}

type svgText struct {
	X          string `xml:"x,attr"`
	Y          string `xml:"y,attr"`
	Z          string `xml:"data-z,attr,omitempty"`
	Fill       string `xml:"fill,attr,omitempty"`
	FontFamily string `xml:"font-family,attr,omitempty"`
	FontSize   string `xml:"font-size,attr,omitempty"`
	Text       string `xml:",chardata"`
}

type svgPolyline struct {
	Points      string `xml:"points,attr"`
	Stroke      string `xml:"stroke,attr,omitempty"`
	StrokeWidth string `xml:"stroke-width,attr,omitempty"`
}

func f2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func fg(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func vec3String(v geom.Vec3) string { return fmt.Sprintf("%s %s %s", fg(v.X), fg(v.Y), fg(v.Z)) }

// attrs parses attribute values and keeps the first failure.
type attrs struct {
	err error
}

func (a *attrs) float(s string, def float64) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if a.err == nil {
			a.err = err
		}
		return def
	}
	return v
}

func (a *attrs) boolean(s string, def bool) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		if a.err == nil {
			a.err = err
		}
		return def
	}
	return v
}

func (a *attrs) vec3(s string) geom.Vec3 {
	f := strings.FieldsFunc(s, isSeparator)
	if len(f) != 3 {
		if a.err == nil {
			a.err = fmt.Errorf("want 3 coordinates, got %q", s)
		}
		return geom.Vec3{}
	}
	return geom.V3(a.float(f[0], 0), a.float(f[1], 0), a.float(f[2], 0))
}

func isSeparator(r rune) bool {
	return r == ' ' || r == ',' || r == '\t' || r == '\n' || r == '\r'
}
