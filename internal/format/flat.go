package format

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/inamate/vectorscene/internal/element"
	"github.com/inamate/vectorscene/internal/geom"
	"github.com/inamate/vectorscene/internal/scene"
)

// MetersPerDegree is the length of one degree of latitude.
const MetersPerDegree = 111320.0

var ErrTooFewPoints = errors.New("flat file needs at least two points")

// ImportFlat reads "lon lat" pairs, one per line, and adds the path through
// them to l as blue lines. Blank lines, "segment" header lines and lines that
// do not start with two numbers are skipped. Points are placed in meters
// around the mean of all points, so the path is centered on the origin. It
// returns the number of lines added.
func ImportFlat(r io.Reader, l *scene.Layer) (int, error) {
	var pts [][2]float64
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if p, ok := parseFlatLine(sc.Text()); ok {
			pts = append(pts, p)
		}
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read flat file: %w", err)
	}
	if len(pts) < 2 {
		return 0, ErrTooFewPoints
	}

	var lon, lat float64
	for _, p := range pts {
		lon += p[0]
		lat += p[1]
	}
	origin := [2]float64{lon / float64(len(pts)), lat / float64(len(pts))}

	style := element.DefaultStyle()
	style.Stroke = geom.Blue

	added := 0
	l.Batch(func() {
		prev := Project(origin, pts[0][0], pts[0][1])
		for _, p := range pts[1:] {
			next := Project(origin, p[0], p[1])
			line, err := element.NewLine(prev, next, style)
			prev = next
			if err != nil {
				continue
			}
			if l.AddElement(line, true) {
				added++
			}
		}
	})
	return added, nil
}

// Project maps a longitude/latitude pair to meters east and north of origin
// with an equirectangular approximation.
func Project(origin [2]float64, lon, lat float64) geom.Vec3 {
	cos := math.Cos(origin[1] * math.Pi / 180)
	return geom.V3(
		(lon-origin[0])*cos*MetersPerDegree,
		(lat-origin[1])*MetersPerDegree,
		0,
	)
}

func parseFlatLine(s string) ([2]float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(strings.ToLower(s), "segment") {
		return [2]float64{}, false
	}
	f := strings.FieldsFunc(s, isSeparator)
	if len(f) < 2 {
		return [2]float64{}, false
	}
	lon, err1 := strconv.ParseFloat(f[0], 64)
	lat, err2 := strconv.ParseFloat(f[1], 64)
	if err1 != nil || err2 != nil {
		return [2]float64{}, false
	}
	return [2]float64{lon, lat}, true
}
