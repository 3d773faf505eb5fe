package element

import (
	"math"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/inamate/vectorscene/internal/geom"
)

// DefaultFontSize is used when a label is created with a non-positive size.
const DefaultFontSize = 12

// Label is a text anchored at a world point.
type Label struct {
	base
	position geom.Vec3
	text     string
	fontSize float64
}

// NewLabel creates a label. Text is stored in NFC form so that the rune
// count used for its bounds does not depend on how it was typed.
func NewLabel(position geom.Vec3, text string, fontSize float64, style Style) (*Label, error) {
	if !position.IsValid() {
		return nil, ErrInvalidGeometry
	}
	if fontSize <= 0 || math.IsNaN(fontSize) || math.IsInf(fontSize, 0) {
		fontSize = DefaultFontSize
	}
	return &Label{
		base:     newBase(style),
		position: position,
		text:     norm.NFC.String(text),
		fontSize: fontSize,
	}, nil
}

func (l *Label) Kind() Kind          { return KindLabel }
func (l *Label) Position() geom.Vec3 { return l.position }
func (l *Label) Text() string        { return l.text }
func (l *Label) FontSize() float64   { return l.fontSize }

// SetPosition moves the anchor.
func (l *Label) SetPosition(p geom.Vec3) {
	if rejectInvalid("position", l.id, p) {
		return
	}
	l.position = p
	l.changed()
}

// SetText replaces the text.
func (l *Label) SetText(s string) {
	l.text = norm.NFC.String(s)
	l.changed()
}

// SetFontSize changes the size. Non-positive values are ignored.
func (l *Label) SetFontSize(fs float64) {
	if fs <= 0 || math.IsNaN(fs) || math.IsInf(fs, 0) {
		return
	}
	l.fontSize = fs
	l.changed()
}

// Bounds approximates the text extent as 0.6·fontSize per rune wide and
// one fontSize tall.
func (l *Label) Bounds() geom.Box3 {
	w := float64(utf8.RuneCountInString(l.text)) * l.fontSize * 0.6
	return geom.NewBox3(l.position, l.position.Add(geom.V3(w, l.fontSize, 1)))
}

// HitTest grows the pick radius with the font size.
func (l *Label) HitTest(p geom.Vec3, tol float64) bool {
	return p.Distance(l.position) <= tol*(1+l.fontSize/12)
}

func (l *Label) ControlPoints() []geom.Vec3 {
	return []geom.Vec3{l.position}
}

func (l *Label) ControlPointAt(p geom.Vec3, tol float64) (int, bool) {
	return controlPointAt(l.ControlPoints(), p, tol)
}

func (l *Label) MoveControlPoint(i int, p geom.Vec3) error {
	if i != 0 {
		return rangeError(KindLabel, i, 1)
	}
	l.SetPosition(p)
	return nil
}

func (l *Label) Translate(d geom.Vec3) {
	l.SetPosition(l.position.Add(d))
}

func (l *Label) Clone() Element {
	cp := *l
	cp.base = l.cloneBase()
	return &cp
}
