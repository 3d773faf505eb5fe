package element

import "github.com/inamate/vectorscene/internal/geom"

// Line is a straight segment between two world points.
type Line struct {
	base
	start geom.Vec3
	end   geom.Vec3
}

// NewLine creates a line. A zero-length line is allowed.
func NewLine(start, end geom.Vec3, style Style) (*Line, error) {
	if !start.IsValid() || !end.IsValid() {
		return nil, ErrInvalidGeometry
	}
	return &Line{base: newBase(style), start: start, end: end}, nil
}

func (l *Line) Kind() Kind       { return KindLine }
func (l *Line) Start() geom.Vec3 { return l.start }
func (l *Line) End() geom.Vec3   { return l.end }

// SetEndpoints moves both endpoints at once.
func (l *Line) SetEndpoints(start, end geom.Vec3) {
	if rejectInvalid("endpoints", l.id, start, end) {
		return
	}
	l.start, l.end = start, end
	l.changed()
}

func (l *Line) Bounds() geom.Box3 {
	return geom.NewBox3(l.start, l.end)
}

// HitTest reports whether p lies within tol of the segment.
func (l *Line) HitTest(p geom.Vec3, tol float64) bool {
	c, _ := closestOnSegment(l.start, l.end, p)
	return c.Distance(p) <= tol
}

func (l *Line) ControlPoints() []geom.Vec3 {
	return []geom.Vec3{l.start, l.end}
}

func (l *Line) ControlPointAt(p geom.Vec3, tol float64) (int, bool) {
	return controlPointAt(l.ControlPoints(), p, tol)
}

// MoveControlPoint moves the start (0) or end (1) point.
func (l *Line) MoveControlPoint(i int, p geom.Vec3) error {
	if i < 0 || i > 1 {
		return rangeError(KindLine, i, 2)
	}
	if rejectInvalid("control point", l.id, p) {
		return nil
	}
	if i == 0 {
		l.start = p
	} else {
		l.end = p
	}
	l.changed()
	return nil
}

func (l *Line) Translate(d geom.Vec3) {
	l.SetEndpoints(l.start.Add(d), l.end.Add(d))
}

func (l *Line) Clone() Element {
	cp := *l
	cp.base = l.cloneBase()
	return &cp
}
