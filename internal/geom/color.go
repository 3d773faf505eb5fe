package geom

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is an 8-bit ARGB color.
type Color struct {
	A uint8 `json:"a"`
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Named colors.
var (
	Transparent = Color{0, 255, 255, 255}
	Black       = Color{255, 0, 0, 0}
	White       = Color{255, 255, 255, 255}
	Red         = Color{255, 255, 0, 0}
	Green       = Color{255, 0, 128, 0}
	Blue        = Color{255, 0, 0, 255}
	Cyan        = Color{255, 0, 255, 255}
	Magenta     = Color{255, 255, 0, 255}
	Yellow      = Color{255, 255, 255, 0}
	Orange      = Color{255, 255, 165, 0}
	Purple      = Color{255, 128, 0, 128}
	Pink        = Color{255, 255, 192, 203}
	Gray        = Color{255, 128, 128, 128}
	LightGray   = Color{255, 211, 211, 211}
)

var namedColors = map[string]Color{
	"transparent": Transparent,
	"black":       Black,
	"white":       White,
	"red":         Red,
	"green":       Green,
	"blue":        Blue,
	"cyan":        Cyan,
	"magenta":     Magenta,
	"yellow":      Yellow,
	"orange":      Orange,
	"purple":      Purple,
	"pink":        Pink,
	"gray":        Gray,
	"grey":        Gray,
	"lightgray":   LightGray,
}

// FromArgb builds a color from its channels.
func FromArgb(a, r, g, b uint8) Color { return Color{A: a, R: r, G: g, B: b} }

// ColorFromUint32 unpacks a 0xAARRGGBB value.
func ColorFromUint32(v uint32) Color {
	return Color{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

// ToArgb packs the color as 0xAARRGGBB.
func (c Color) ToArgb() uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Hex returns the "#RRGGBB" form, dropping alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ArgbHex returns the "#AARRGGBB" form.
func (c Color) ArgbHex() string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.A, c.R, c.G, c.B)
}

// RGBA converts to a non-premultiplied image color.
func (c Color) RGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// ParseColor accepts "#RGB", "#RRGGBB", "#AARRGGBB" and common color names.
// Anything else, including "none", yields fallback.
func ParseColor(s string, fallback Color) Color {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return fallback
	}
	if c, ok := namedColors[s]; ok {
		return c
	}
	if !strings.HasPrefix(s, "#") {
		return fallback
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fallback
	}
	switch len(hex) {
	case 6:
		return ColorFromUint32(0xFF000000 | uint32(v))
	case 8:
		return ColorFromUint32(uint32(v))
	}
	return fallback
}
