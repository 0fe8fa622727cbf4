package nodemat

import (
	"bytes"
	"embed"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed variants/*.yaml
var variantFS embed.FS

// Variant describes one demo scene: what to load, how to shade it and
// where to look from.
type Variant struct {
	Name        string  `yaml:"name" toml:"name"`
	Width       int     `yaml:"width" toml:"width"`
	Height      int     `yaml:"height" toml:"height"`
	Supersample int     `yaml:"supersample" toml:"supersample"`
	FPS         int     `yaml:"fps" toml:"fps"`
	Background  string  `yaml:"background" toml:"background"`
	Axes        float64 `yaml:"axes" toml:"axes"`

	Camera CameraConfig  `yaml:"camera" toml:"camera"`
	Lights LightsConfig  `yaml:"lights" toml:"lights"`
	Model  ModelConfig   `yaml:"model" toml:"model"`
	Plane  *PlaneConfig  `yaml:"plane,omitempty" toml:"plane,omitempty"`
	Target *TargetConfig `yaml:"target,omitempty" toml:"target,omitempty"`

	// Override gives every loaded mesh (except the target) one material.
	Override *MaterialRef `yaml:"override,omitempty" toml:"override,omitempty"`

	// Presets add to or replace the built-in preset table.
	Presets map[string]PresetConfig `yaml:"presets,omitempty" toml:"presets,omitempty"`
}

type CameraConfig struct {
	Position      [3]float64 `yaml:"position" toml:"position"`
	Target        [3]float64 `yaml:"target" toml:"target"`
	Fovy          float64    `yaml:"fovy" toml:"fovy"`
	Near          float64    `yaml:"near" toml:"near"`
	Far           float64    `yaml:"far" toml:"far"`
	Damping       bool       `yaml:"damping" toml:"damping"`
	DampingFactor float64    `yaml:"damping_factor" toml:"damping_factor"`
	// Fit adjusts the field of view to the model once it is loaded.
	Fit bool `yaml:"fit" toml:"fit"`
}

type LightConfig struct {
	Color     string     `yaml:"color" toml:"color"`
	Intensity float64    `yaml:"intensity" toml:"intensity"`
	Position  [3]float64 `yaml:"position" toml:"position"`
}

type LightsConfig struct {
	Ambient     *LightConfig `yaml:"ambient,omitempty" toml:"ambient,omitempty"`
	Directional *LightConfig `yaml:"directional,omitempty" toml:"directional,omitempty"`
	// Toon bands the directional light into a few flat levels.
	Toon bool `yaml:"toon,omitempty" toml:"toon,omitempty"`
}

type ModelConfig struct {
	Path     string     `yaml:"path" toml:"path"`
	Position [3]float64 `yaml:"position" toml:"position"`
	Simplify float64    `yaml:"simplify" toml:"simplify"`
}

type PlaneConfig struct {
	Name     string      `yaml:"name" toml:"name"`
	Size     [2]float64  `yaml:"size" toml:"size"`
	Position [3]float64  `yaml:"position" toml:"position"`
	Rotation [3]float64  `yaml:"rotation" toml:"rotation"` // XYZ euler, radians
	Material MaterialRef `yaml:"material" toml:"material"`
}

type TargetConfig struct {
	Mesh     string      `yaml:"mesh" toml:"mesh"`
	Material MaterialRef `yaml:"material" toml:"material"`
}

// MaterialRef names either a preset or a registered procedural expression.
type MaterialRef struct {
	Preset     string `yaml:"preset,omitempty" toml:"preset,omitempty"`
	Procedural string `yaml:"procedural,omitempty" toml:"procedural,omitempty"`
	Lit        bool   `yaml:"lit,omitempty" toml:"lit,omitempty"`
}

func (r MaterialRef) Spec() (MaterialSpec, error) {
	switch {
	case r.Procedural != "" && r.Preset != "":
		return nil, errors.New("nodemat: material names both a preset and a procedural")
	case r.Procedural != "":
		return ProceduralSpec{Name: r.Procedural, Lit: r.Lit}, nil
	case r.Preset != "":
		return PresetSpec{Name: r.Preset}, nil
	default:
		return nil, errors.New("nodemat: empty material reference")
	}
}

type PresetConfig struct {
	Angle  float64 `yaml:"angle" toml:"angle"` // radians
	Offset float64 `yaml:"offset" toml:"offset"`
	Scale  float64 `yaml:"scale" toml:"scale"`
	ColorA string  `yaml:"color_a" toml:"color_a"`
	ColorB string  `yaml:"color_b" toml:"color_b"`
}

func (c PresetConfig) Preset() (Preset, error) {
	a, err := ParseHexColor(c.ColorA)
	if err != nil {
		return Preset{}, err
	}
	b, err := ParseHexColor(c.ColorB)
	if err != nil {
		return Preset{}, err
	}
	return Preset{Angle: c.Angle, Offset: c.Offset, Scale: c.Scale, ColorA: a.Colorful(), ColorB: b.Colorful()}, nil
}

// DefaultVariant is the knight scene: one shared local-height material on
// the model and on a unit plane beside it.
func DefaultVariant() Variant {
	return Variant{
		Name:        "knight",
		Width:       800,
		Height:      600,
		Supersample: 2,
		FPS:         60,
		Background:  "#000000",
		Axes:        50,
		Camera: CameraConfig{
			Position:      [3]float64{0, 0, 5},
			Fovy:          75,
			Near:          0.1,
			Far:           1000,
			Damping:       true,
			DampingFactor: 0.05,
		},
		Model: ModelConfig{
			Path:     "models/Knight.glb",
			Position: [3]float64{1, 0, 0},
		},
		Plane: &PlaneConfig{
			Name:     "plane",
			Size:     [2]float64{1, 1},
			Position: [3]float64{-1, 0, 0},
			Material: MaterialRef{Procedural: "local_y"},
		},
		Override: &MaterialRef{Procedural: "local_y"},
	}
}

// Validate checks sizes and references; it fills nothing in.
func (v *Variant) Validate() error {
	if v.Width <= 0 || v.Height <= 0 {
		return errors.Errorf("nodemat: variant %q: size must be positive, got %dx%d", v.Name, v.Width, v.Height)
	}
	if v.FPS <= 0 {
		return errors.Errorf("nodemat: variant %q: fps must be positive", v.Name)
	}
	if v.Camera.Fovy <= 0 || v.Camera.Fovy >= 180 {
		return errors.Errorf("nodemat: variant %q: fovy %v out of range", v.Name, v.Camera.Fovy)
	}
	if v.Camera.Near <= 0 || v.Camera.Far <= v.Camera.Near {
		return errors.Errorf("nodemat: variant %q: bad clip planes %v..%v", v.Name, v.Camera.Near, v.Camera.Far)
	}
	if _, err := ParseHexColor(v.Background); err != nil {
		return errors.Wrapf(err, "variant %q background", v.Name)
	}
	if v.Target != nil {
		if v.Target.Mesh == "" {
			return errors.Errorf("nodemat: variant %q: target needs a mesh name", v.Name)
		}
		if _, err := v.Target.Material.Spec(); err != nil {
			return errors.Wrapf(err, "variant %q target", v.Name)
		}
	}
	if v.Override != nil {
		if _, err := v.Override.Spec(); err != nil {
			return errors.Wrapf(err, "variant %q override", v.Name)
		}
	}
	if v.Plane != nil {
		if _, err := v.Plane.Material.Spec(); err != nil {
			return errors.Wrapf(err, "variant %q plane", v.Name)
		}
	}
	_, err := v.PresetTable()
	return err
}

// PresetTable is the built-in table with this variant's presets applied.
func (v *Variant) PresetTable() (PresetTable, error) {
	overrides := make(map[string]Preset, len(v.Presets))
	for name, c := range v.Presets {
		p, err := c.Preset()
		if err != nil {
			return PresetTable{}, errors.Wrapf(err, "preset %q", name)
		}
		overrides[name] = p
	}
	return BuiltinPresets().With(overrides), nil
}

// ParseVariant decodes YAML or TOML on top of DefaultVariant's size,
// camera and model settings; scene content (name, axes, plane, override)
// comes only from data. format is a file extension such as ".yaml" or
// ".toml". Unknown keys are errors.
func ParseVariant(data []byte, format string) (Variant, error) {
	v := DefaultVariant()
	// absent sections must not inherit the knight scene
	v.Name = ""
	v.Axes = 0
	v.Plane = nil
	v.Override = nil
	var err error
	switch strings.ToLower(format) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(&v); errors.Is(err, io.EOF) {
			err = nil
		}
	case ".toml":
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&v)
	default:
		return v, errors.Errorf("nodemat: unknown variant format %q", format)
	}
	if err != nil {
		return v, errors.Wrap(err, "nodemat: parse variant")
	}
	return v, v.Validate()
}

// LoadVariant reads a variant file. Relative model paths are resolved
// against the file's directory.
func LoadVariant(file string) (Variant, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return Variant{}, errors.Wrap(err, "nodemat: read variant")
	}
	v, err := ParseVariant(data, filepath.Ext(file))
	if err != nil {
		return v, errors.Wrap(err, file)
	}
	if v.Name == "" {
		v.Name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}
	if p := v.Model.Path; p != "" && !filepath.IsAbs(p) && !strings.HasPrefix(p, "~") {
		v.Model.Path = filepath.Join(filepath.Dir(file), p)
	}
	return v, nil
}

// BuiltinVariant returns one of the embedded variants by name.
func BuiltinVariant(name string) (Variant, error) {
	data, err := variantFS.ReadFile(path.Join("variants", name+".yaml"))
	if err != nil {
		return Variant{}, errors.Errorf("nodemat: no built-in variant %q", name)
	}
	return ParseVariant(data, ".yaml")
}

func BuiltinVariantNames() []string {
	entries, _ := variantFS.ReadDir("variants")
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

func (c LightConfig) light() (Color, float64, Vector, error) {
	col, err := ParseHexColor(c.Color)
	return col, c.Intensity, V(c.Position[0], c.Position[1], c.Position[2]), err
}

func vec3(a [3]float64) Vector {
	return V(a[0], a[1], a[2])
}
