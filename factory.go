package nodemat

import (
	"log/slog"
	"sync"

	"github.com/pkg/errors"
)

// MaterialSpec selects what CreateMaterial builds: a PresetSpec or a
// ProceduralSpec.
type MaterialSpec interface {
	materialSpec()
}

// PresetSpec names a preset; lookup is case-insensitive.
type PresetSpec struct {
	Name string
}

// ProceduralSpec is a literal expression. When Fn is nil Name is looked up
// in the procedural registry.
type ProceduralSpec struct {
	Name string
	Fn   ColorFunc
	Lit  bool
}

func (PresetSpec) materialSpec()     {}
func (ProceduralSpec) materialSpec() {}

const defaultMaterialKey = "\x00default"

// Factory builds materials and hands out one shared instance per preset.
type Factory struct {
	mu      sync.Mutex
	presets PresetTable
	cache   map[string]*Material
	log     *slog.Logger
}

func NewFactory(presets PresetTable, log *slog.Logger) *Factory {
	if log == nil {
		log = slog.Default()
	}
	return &Factory{presets: presets, cache: make(map[string]*Material), log: log}
}

func (f *Factory) Presets() PresetTable {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.presets
}

// SetPresets swaps the preset table. Materials handed out earlier are left
// as they are; later calls build from the new table.
func (f *Factory) SetPresets(presets PresetTable) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presets = presets
	f.cache = make(map[string]*Material)
}

// Preset returns the shared material for name. Unknown names never fail:
// they get the default gradient and a warning.
func (f *Factory) Preset(name string) *Material {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := foldName(name)
	if m, ok := f.cache[key]; ok {
		return m
	}
	p, fallback := f.presets.Resolve(name)
	if fallback {
		f.log.Warn("unknown material preset, using default gradient", "preset", name)
		m, ok := f.cache[defaultMaterialKey]
		if !ok {
			m = &Material{Name: "default", Expr: PresetExpr{Name: "default", Preset: p}}
			f.cache[defaultMaterialKey] = m
		}
		f.cache[key] = m
		return m
	}
	m := &Material{Name: key, Expr: PresetExpr{Name: key, Preset: p}}
	f.cache[key] = m
	return m
}

// Procedural builds a material from a literal or registered expression.
// Registered expressions are shared like presets.
func (f *Factory) Procedural(spec ProceduralSpec) (*Material, error) {
	if spec.Fn != nil {
		return &Material{Name: spec.Name, Expr: ProceduralExpr{Name: spec.Name, Fn: spec.Fn}, Lit: spec.Lit}, nil
	}
	fn, err := LookupProcedural(spec.Name)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := "procedural:" + foldName(spec.Name)
	if spec.Lit {
		key += ":lit"
	}
	if m, ok := f.cache[key]; ok {
		return m, nil
	}
	m := &Material{Name: foldName(spec.Name), Expr: ProceduralExpr{Name: foldName(spec.Name), Fn: fn}, Lit: spec.Lit}
	f.cache[key] = m
	return m, nil
}

// CreateMaterial dispatches on the spec variant.
func (f *Factory) CreateMaterial(spec MaterialSpec) (*Material, error) {
	switch s := spec.(type) {
	case PresetSpec:
		return f.Preset(s.Name), nil
	case ProceduralSpec:
		return f.Procedural(s)
	default:
		return nil, errors.Errorf("nodemat: unsupported material spec %T", spec)
	}
}
