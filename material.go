package nodemat

import (
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Preset parameterizes a linear gradient across the local XZ plane.
type Preset struct {
	Angle  float64 // radians
	Offset float64
	Scale  float64
	ColorA colorful.Color
	ColorB colorful.Color
}

// DefaultPreset is used for names missing from a PresetTable.
var DefaultPreset = Preset{Angle: 0, Offset: 0, Scale: 1, ColorA: colorful.Color{R: 1}, ColorB: colorful.Color{B: 1}}

func rgb255(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// BuiltinPresets returns the stock preset table.
func BuiltinPresets() PresetTable {
	return NewPresetTable(map[string]Preset{
		"rock":           {Angle: math.Pi / 4, Offset: 0, Scale: 1.5, ColorA: rgb255(0x4a, 0x40, 0x39), ColorB: rgb255(0x9c, 0x8f, 0x80)},
		"rocks":          {Angle: math.Pi / 2, Offset: 0.25, Scale: 2, ColorA: rgb255(0x3b, 0x35, 0x30), ColorB: rgb255(0xc2, 0xb8, 0xa3)},
		"black_gradient": {Angle: 0, Offset: 0.5, Scale: 1, ColorA: rgb255(0x00, 0x00, 0x00), ColorB: rgb255(0x55, 0x55, 0x55)},
		"stones":         {Angle: -math.Pi / 6, Offset: 0.1, Scale: 3, ColorA: rgb255(0x6b, 0x6b, 0x6b), ColorB: rgb255(0xd8, 0xd2, 0xc4)},
	})
}

// Ramp is the clamped gradient coordinate at a local position.
func (p Preset) Ramp(local Vector) float64 {
	s, c := math.Sincos(p.Angle)
	return Clamp((local.X*c+local.Z*s+p.Offset)*p.Scale, 0, 1)
}

func (p Preset) Eval(local Vector) colorful.Color {
	return p.ColorA.BlendRgb(p.ColorB, p.Ramp(local))
}

// PresetTable maps case-folded names to presets.
type PresetTable struct {
	m map[string]Preset
}

func NewPresetTable(presets map[string]Preset) PresetTable {
	m := make(map[string]Preset, len(presets))
	for k, v := range presets {
		m[foldName(k)] = v
	}
	return PresetTable{m}
}

func foldName(s string) string {
	return strings.ToLower(s)
}

// Lookup matches name case-insensitively.
func (t PresetTable) Lookup(name string) (Preset, bool) {
	p, ok := t.m[foldName(name)]
	return p, ok
}

// Resolve is Lookup with DefaultPreset substituted on a miss; fallback
// reports whether that happened.
func (t PresetTable) Resolve(name string) (p Preset, fallback bool) {
	if p, ok := t.Lookup(name); ok {
		return p, false
	}
	return DefaultPreset, true
}

func (t PresetTable) Has(name string) bool {
	_, ok := t.m[foldName(name)]
	return ok
}

// With returns a copy of t with overrides added or replaced.
func (t PresetTable) With(overrides map[string]Preset) PresetTable {
	m := make(map[string]Preset, len(t.m)+len(overrides))
	for k, v := range t.m {
		m[k] = v
	}
	for k, v := range overrides {
		m[foldName(k)] = v
	}
	return PresetTable{m}
}

func (t PresetTable) Names() []string {
	names := make([]string, 0, len(t.m))
	for k := range t.m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (t PresetTable) Len() int {
	return len(t.m)
}

// ColorFunc is a pure color function of local position and elapsed seconds.
type ColorFunc func(local Vector, t float64) colorful.Color

// Expr is the color expression behind a Material: PresetExpr,
// ProceduralExpr or SolidExpr.
type Expr interface {
	Eval(local Vector, t float64) colorful.Color
	expr()
}

type PresetExpr struct {
	Name   string
	Preset Preset
}

func (e PresetExpr) Eval(local Vector, t float64) colorful.Color {
	return e.Preset.Eval(local)
}

type ProceduralExpr struct {
	Name string
	Fn   ColorFunc
}

func (e ProceduralExpr) Eval(local Vector, t float64) colorful.Color {
	return e.Fn(local, t)
}

type SolidExpr struct {
	Color colorful.Color
}

func (e SolidExpr) Eval(local Vector, t float64) colorful.Color {
	return e.Color
}

func (PresetExpr) expr()     {}
func (ProceduralExpr) expr() {}
func (SolidExpr) expr()      {}

// Material is immutable once built and is shared by pointer between nodes.
type Material struct {
	Name string
	Expr Expr
	// Lit multiplies the expression by the scene lights; unlit materials
	// show the raw expression color.
	Lit bool
}

func NewSolidMaterial(name string, c Color) *Material {
	return &Material{Name: name, Expr: SolidExpr{c.Colorful()}, Lit: true}
}

func (m *Material) Eval(local Vector, t float64) colorful.Color {
	return m.Expr.Eval(local, t)
}
