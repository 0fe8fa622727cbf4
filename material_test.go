package nodemat

import (
	"bytes"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinPresets(t *testing.T) {
	tests := []struct {
		name          string
		angle         float64
		offset, scale float64
		colorA        string
		colorB        string
	}{
		{"rock", math.Pi / 4, 0, 1.5, "#4a4039", "#9c8f80"},
		{"rocks", math.Pi / 2, 0.25, 2, "#3b3530", "#c2b8a3"},
		{"black_gradient", 0, 0.5, 1, "#000000", "#555555"},
		{"stones", -math.Pi / 6, 0.1, 3, "#6b6b6b", "#d8d2c4"},
	}
	table := BuiltinPresets()
	assert.Equal(t, len(tests), table.Len())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := table.Lookup(tt.name)
			require.True(t, ok)
			assert.InDelta(t, tt.angle, p.Angle, 1e-12)
			assert.Equal(t, tt.offset, p.Offset)
			assert.Equal(t, tt.scale, p.Scale)
			assert.Equal(t, tt.colorA, p.ColorA.Hex())
			assert.Equal(t, tt.colorB, p.ColorB.Hex())
		})
	}
}

func TestPresetLookupIgnoresCase(t *testing.T) {
	table := BuiltinPresets()
	for _, name := range []string{"ROCK", "Rock", "rOcK"} {
		p, ok := table.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, 1.5, p.Scale)
	}
	assert.True(t, table.Has("Black_Gradient"))
	assert.False(t, table.Has("rock "))
}

func TestPresetResolveFallsBack(t *testing.T) {
	table := BuiltinPresets()

	p, fallback := table.Resolve("unknown")
	assert.True(t, fallback)
	assert.Equal(t, DefaultPreset, p)
	assert.Equal(t, colorful.Color{R: 1}, p.ColorA)
	assert.Equal(t, colorful.Color{B: 1}, p.ColorB)

	p, fallback = table.Resolve("STONES")
	assert.False(t, fallback)
	assert.Equal(t, 3.0, p.Scale)
}

func TestPresetTableWith(t *testing.T) {
	base := BuiltinPresets()
	moss := Preset{Scale: 2, ColorA: colorful.Color{G: 0.5}, ColorB: colorful.Color{G: 1}}
	next := base.With(map[string]Preset{"Moss": moss, "ROCK": DefaultPreset})

	assert.Equal(t, 5, next.Len())
	got, ok := next.Lookup("moss")
	require.True(t, ok)
	assert.Equal(t, moss, got)
	got, _ = next.Lookup("rock")
	assert.Equal(t, DefaultPreset, got)

	// base is unchanged
	got, _ = base.Lookup("rock")
	assert.Equal(t, 1.5, got.Scale)
	assert.Equal(t, []string{"black_gradient", "moss", "rock", "rocks", "stones"}, next.Names())
}

func TestGradientClampsAndIsMonotonic(t *testing.T) {
	p := Preset{Scale: 1, ColorA: colorful.Color{}, ColorB: colorful.Color{R: 1, G: 1, B: 1}}

	assert.Equal(t, 0.0, p.Ramp(V(-3, 0, 0)))
	assert.Equal(t, 0.0, p.Ramp(V(0, 0, 0)))
	assert.InDelta(t, 0.5, p.Ramp(V(0.5, 0, 0)), 1e-12)
	assert.Equal(t, 1.0, p.Ramp(V(3, 0, 0)))
	// y does not take part
	assert.Equal(t, p.Ramp(V(0.3, 0, 0)), p.Ramp(V(0.3, 7, 0)))

	assert.Equal(t, p.ColorA, p.Eval(V(-1, 0, 0)))
	assert.Equal(t, p.ColorB, p.Eval(V(1, 0, 0)))

	for _, name := range BuiltinPresets().Names() {
		p, _ := BuiltinPresets().Lookup(name)
		s, c := math.Sincos(p.Angle)
		prev := -1.0
		for x := -3.0; x <= 3.0; x += 0.01 {
			r := p.Ramp(V(x*c, 0, x*s))
			assert.GreaterOrEqual(t, r, prev, "%s at %v", name, x)
			assert.True(t, r >= 0 && r <= 1)
			prev = r
		}
	}
}

func TestGradientIsContinuous(t *testing.T) {
	p, _ := BuiltinPresets().Lookup("stones")
	const step = 1e-4
	for x := -1.0; x <= 1.0; x += 0.05 {
		a := p.Eval(V(x, 0, 0.2))
		b := p.Eval(V(x+step, 0, 0.2))
		assert.Less(t, a.DistanceRgb(b), 0.01)
	}
}

func TestFactorySharesPresetMaterials(t *testing.T) {
	f := NewFactory(BuiltinPresets(), nil)

	a := f.Preset("rock")
	b := f.Preset("ROCK")
	assert.Same(t, a, b)
	assert.Equal(t, "rock", a.Name)
	expr, ok := a.Expr.(PresetExpr)
	require.True(t, ok)
	assert.Equal(t, 1.5, expr.Preset.Scale)
	assert.NotSame(t, a, f.Preset("rocks"))

	m, err := f.CreateMaterial(PresetSpec{Name: "Rock"})
	require.NoError(t, err)
	assert.Same(t, a, m)
}

func TestFactoryUnknownPresetWarns(t *testing.T) {
	var buf bytes.Buffer
	f := NewFactory(BuiltinPresets(), NewLogger(&buf, LevelFromFlags(false, false, false)))

	m := f.Preset("granite")
	require.NotNil(t, m)
	assert.Equal(t, "default", m.Name)
	assert.Equal(t, DefaultPreset, m.Expr.(PresetExpr).Preset)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "granite")

	assert.Same(t, m, f.Preset("marble"))
}

func TestFactorySetPresets(t *testing.T) {
	f := NewFactory(BuiltinPresets(), nil)
	old := f.Preset("rock")

	f.SetPresets(BuiltinPresets().With(map[string]Preset{"rock": DefaultPreset}))
	next := f.Preset("rock")
	assert.NotSame(t, old, next)
	assert.Equal(t, DefaultPreset, next.Expr.(PresetExpr).Preset)
	// materials handed out before keep their expression
	assert.Equal(t, 1.5, old.Expr.(PresetExpr).Preset.Scale)
}

func TestFactoryProcedural(t *testing.T) {
	f := NewFactory(BuiltinPresets(), nil)

	a, err := f.CreateMaterial(ProceduralSpec{Name: "local_y"})
	require.NoError(t, err)
	b, err := f.CreateMaterial(ProceduralSpec{Name: "LOCAL_Y"})
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.False(t, a.Lit)

	lit, err := f.CreateMaterial(ProceduralSpec{Name: "local_y", Lit: true})
	require.NoError(t, err)
	assert.NotSame(t, a, lit)
	assert.True(t, lit.Lit)

	_, err = f.CreateMaterial(ProceduralSpec{Name: "plasma"})
	assert.ErrorIs(t, err, ErrUnknownProcedural)

	fn := func(local Vector, t float64) colorful.Color { return colorful.Color{G: 1} }
	x, err := f.CreateMaterial(ProceduralSpec{Name: "green", Fn: fn})
	require.NoError(t, err)
	y, err := f.CreateMaterial(ProceduralSpec{Name: "green", Fn: fn})
	require.NoError(t, err)
	assert.NotSame(t, x, y)
	assert.Equal(t, colorful.Color{G: 1}, x.Eval(V(1, 2, 3), 0))

	_, err = f.CreateMaterial(nil)
	assert.Error(t, err)
}

func TestProcedurals(t *testing.T) {
	assert.Equal(t, []string{"local_y", "pulse", "radial", "spiral"}, ProceduralNames())

	assert.Equal(t, colorful.Color{R: 0.25, G: 0.25, B: 0.25}, LocalY(V(3, 0.25, -1), 0))
	assert.Equal(t, colorful.Color{R: 1, G: 1, B: 1}, Radial(V(0, 0, 0), 0))
	assert.Equal(t, colorful.Color{}, Radial(V(2, 0, 0), 0))

	// the pulse threshold moves with time
	p := V(0, 0, 0)
	assert.NotEqual(t, Pulse(p, -math.Pi/2), Pulse(p, math.Pi/2))

	for _, name := range ProceduralNames() {
		fn, err := LookupProcedural(name)
		require.NoError(t, err)
		for _, tm := range []float64{0, 1.5, 10} {
			c := fn(V(0.3, 0.2, 0.1), tm)
			assert.True(t, c.R >= 0 && c.R <= 1 && c.G >= 0 && c.G <= 1 && c.B >= 0 && c.B <= 1, "%s(%v) = %v", name, tm, c)
		}
	}
}
