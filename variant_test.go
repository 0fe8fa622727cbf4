package nodemat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinVariants(t *testing.T) {
	names := BuiltinVariantNames()
	assert.Equal(t, []string{"gradient", "knight", "pulse", "rocks", "stones"}, names)
	for _, name := range names {
		v, err := BuiltinVariant(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, v.Name)
		assert.NotEmpty(t, v.Model.Path)
	}

	_, err := BuiltinVariant("castle")
	assert.Error(t, err)
}

func TestKnightIsDefault(t *testing.T) {
	v, err := BuiltinVariant("knight")
	require.NoError(t, err)
	assert.Equal(t, DefaultVariant(), v)

	assert.Equal(t, 75.0, v.Camera.Fovy)
	assert.Equal(t, 0.1, v.Camera.Near)
	assert.Equal(t, 1000.0, v.Camera.Far)
	assert.Equal(t, [3]float64{0, 0, 5}, v.Camera.Position)
	assert.True(t, v.Camera.Damping)
	assert.Equal(t, [3]float64{1, 0, 0}, v.Model.Position)
	assert.Equal(t, [3]float64{-1, 0, 0}, v.Plane.Position)
	assert.Equal(t, 50.0, v.Axes)
}

func TestBuiltinVariantsInheritDefaults(t *testing.T) {
	v, err := BuiltinVariant("rocks")
	require.NoError(t, err)
	assert.Nil(t, v.Plane)
	assert.Nil(t, v.Override)
	require.NotNil(t, v.Target)
	assert.Equal(t, "Target_Mesh_Plane", v.Target.Mesh)
	assert.Equal(t, "spiral", v.Target.Material.Procedural)
	assert.True(t, v.Camera.Fit)
	assert.Equal(t, 75.0, v.Camera.Fovy)
	assert.Equal(t, [3]float64{0, 2, 6}, v.Camera.Position)

	v, err = BuiltinVariant("stones")
	require.NoError(t, err)
	assert.True(t, v.Lights.Toon)
	require.NotNil(t, v.Lights.Directional)
	assert.Equal(t, 0.5, v.Model.Simplify)
}

func TestVariantPresets(t *testing.T) {
	v, err := BuiltinVariant("gradient")
	require.NoError(t, err)
	table, err := v.PresetTable()
	require.NoError(t, err)

	assert.True(t, table.Has("Moss"))
	p, ok := table.Lookup("black_gradient")
	require.True(t, ok)
	assert.Equal(t, 0.75, p.Scale)
	assert.Equal(t, "#8a8a8a", p.ColorB.Hex())
	// untouched built-ins survive
	p, _ = table.Lookup("rock")
	assert.Equal(t, 1.5, p.Scale)
}

const tomlVariant = `
name = "sand"
width = 320
height = 240

[model]
path = "models/dunes.glb"

[target]
mesh = "T"

[target.material]
procedural = "pulse"

[presets.sand]
angle = 0.5
offset = 0.0
scale = 1.0
color_a = "#c2b280"
color_b = "#fff"
`

func TestParseVariantTOML(t *testing.T) {
	v, err := ParseVariant([]byte(tomlVariant), ".toml")
	require.NoError(t, err)
	assert.Equal(t, "sand", v.Name)
	assert.Equal(t, 320, v.Width)
	assert.Equal(t, 60, v.FPS)
	assert.Nil(t, v.Plane)
	require.NotNil(t, v.Target)
	assert.Equal(t, "pulse", v.Target.Material.Procedural)

	table, err := v.PresetTable()
	require.NoError(t, err)
	p, ok := table.Lookup("SAND")
	require.True(t, ok)
	assert.Equal(t, "#c2b280", p.ColorA.Hex())
	assert.Equal(t, "#ffffff", p.ColorB.Hex())
}

func TestParseVariantErrors(t *testing.T) {
	_, err := ParseVariant([]byte("{}"), ".json")
	assert.Error(t, err)

	_, err = ParseVariant([]byte("width: [\n"), ".yaml")
	assert.Error(t, err)
}

func TestParseVariantRejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
	}{
		{"yaml camera", "camera:\n  fitt: true\n", ".yaml"},
		{"yaml top level", "widht: 320\n", ".yaml"},
		{"yaml preset", "presets:\n  sand:\n    colour_a: \"#c2b280\"\n", ".yaml"},
		{"toml camera", "[camera]\nfitt = true\n", ".toml"},
		{"toml preset", "[presets.sand]\ncolour_a = \"#c2b280\"\n", ".toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVariant([]byte(tt.data), tt.format)
			assert.Error(t, err)
		})
	}
}

func TestParseVariantSceneContentNotInherited(t *testing.T) {
	v, err := ParseVariant(nil, ".yaml")
	require.NoError(t, err)
	assert.Empty(t, v.Name)
	assert.Zero(t, v.Axes)
	assert.Nil(t, v.Plane)
	assert.Nil(t, v.Override)
	assert.Equal(t, DefaultVariant().Camera, v.Camera)

	v, err = BuiltinVariant("rocks")
	require.NoError(t, err)
	assert.Zero(t, v.Axes)
}

func TestVariantValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(v *Variant)
	}{
		{"zero width", func(v *Variant) { v.Width = 0 }},
		{"zero fps", func(v *Variant) { v.FPS = 0 }},
		{"wide fov", func(v *Variant) { v.Camera.Fovy = 180 }},
		{"far before near", func(v *Variant) { v.Camera.Far = 0.05 }},
		{"bad background", func(v *Variant) { v.Background = "zzz" }},
		{"target without mesh", func(v *Variant) {
			v.Target = &TargetConfig{Material: MaterialRef{Procedural: "spiral"}}
		}},
		{"ambiguous override", func(v *Variant) {
			v.Override = &MaterialRef{Preset: "rock", Procedural: "spiral"}
		}},
		{"empty plane material", func(v *Variant) { v.Plane.Material = MaterialRef{} }},
		{"bad preset color", func(v *Variant) {
			v.Presets = map[string]PresetConfig{"x": {Scale: 1, ColorA: "nope", ColorB: "#fff"}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := DefaultVariant()
			tt.mutate(&v)
			assert.Error(t, v.Validate())
		})
	}

	v := DefaultVariant()
	assert.NoError(t, v.Validate())
}

func TestLoadVariant(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "mine.yaml")
	require.NoError(t, os.WriteFile(file, []byte("model:\n  path: models/x.glb\n"), 0644))

	v, err := LoadVariant(file)
	require.NoError(t, err)
	assert.Equal(t, "mine", v.Name)
	assert.Equal(t, filepath.Join(dir, "models", "x.glb"), v.Model.Path)

	_, err = LoadVariant(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
