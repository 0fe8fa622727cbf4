package nodemat

import (
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

var (
	Black       = Color{0, 0, 0, 1}
	White       = Color{1, 1, 1, 1}
	Transparent = Color{}
)

// Color is a straight-alpha RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// ParseHexColor parses "#rgb", "#rrggbb" and the same forms without '#'.
func ParseHexColor(s string) (Color, error) {
	x := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(x) == 3 {
		x = string([]byte{x[0], x[0], x[1], x[1], x[2], x[2]})
	}
	c, err := colorful.Hex("#" + x)
	if err != nil {
		return Black, errors.Wrapf(err, "nodemat: bad color %q", s)
	}
	return FromColorful(c), nil
}

// HexColor is ParseHexColor for literals; invalid input yields Black.
func HexColor(s string) Color {
	c, _ := ParseHexColor(s)
	return c
}

func FromColorful(c colorful.Color) Color {
	return Color{c.R, c.G, c.B, 1}
}

// Colorful drops alpha.
func (a Color) Colorful() colorful.Color {
	return colorful.Color{R: a.R, G: a.G, B: a.B}
}

func (a Color) NRGBA() color.NRGBA {
	const d = 0xff
	r := Clamp(a.R, 0, 1)
	g := Clamp(a.G, 0, 1)
	b := Clamp(a.B, 0, 1)
	alpha := Clamp(a.A, 0, 1)
	return color.NRGBA{uint8(math.Round(r * d)), uint8(math.Round(g * d)), uint8(math.Round(b * d)), uint8(math.Round(alpha * d))}
}

func (a Color) Hex() string {
	return a.Colorful().Clamped().Hex()
}

func (a Color) Add(b Color) Color {
	return Color{a.R + b.R, a.G + b.G, a.B + b.B, a.A + b.A}
}

func (a Color) Mul(b Color) Color {
	return Color{a.R * b.R, a.G * b.G, a.B * b.B, a.A * b.A}
}

func (a Color) MulScalar(b float64) Color {
	return Color{a.R * b, a.G * b, a.B * b, a.A * b}
}

func (a Color) DivScalar(b float64) Color {
	return Color{a.R / b, a.G / b, a.B / b, a.A / b}
}

func (a Color) Min(b Color) Color {
	return Color{math.Min(a.R, b.R), math.Min(a.G, b.G), math.Min(a.B, b.B), math.Min(a.A, b.A)}
}

func (a Color) Lerp(b Color, t float64) Color {
	return a.Add(b.Add(a.MulScalar(-1)).MulScalar(t))
}

func (a Color) Alpha(alpha float64) Color {
	return Color{a.R, a.G, a.B, alpha}
}

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func ClampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
