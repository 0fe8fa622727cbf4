package nodemat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// ErrorBackground replaces the scene background after a failed load.
var ErrorBackground = HexColor("5a0000")

// Event is input delivered to the frame loop. Events posted from any
// goroutine are applied at the start of the next frame.
type Event interface {
	apply(a *App)
}

// ResizeEvent is the viewport size changing.
type ResizeEvent struct {
	Width, Height int
}

// OrbitEvent is a pointer drag in pixels.
type OrbitEvent struct {
	DX, DY float64
}

// ZoomEvent dollies the camera; positive is closer.
type ZoomEvent struct {
	Delta float64
}

// PresetsEvent swaps the preset table and rebinds loaded assets.
type PresetsEvent struct {
	Presets PresetTable
}

func (e ResizeEvent) apply(a *App) { a.Resize(e.Width, e.Height) }
func (e OrbitEvent) apply(a *App) {
	_, h := a.Surface.Size()
	a.Controls.Drag(e.DX, e.DY, h)
}
func (e ZoomEvent) apply(a *App)    { a.Controls.Zoom(e.Delta) }
func (e PresetsEvent) apply(a *App) { a.SetPresets(e.Presets) }

// Option configures an App.
type Option func(*App)

// WithDecoder replaces the asset decoder, mostly for tests.
func WithDecoder(decode DecodeFunc) Option {
	return func(a *App) { a.Loader.Decode = decode }
}

// WithoutAutoLoad stops NewApp from starting the variant's model load.
func WithoutAutoLoad() Option {
	return func(a *App) { a.noAutoLoad = true }
}

type pendingAsset struct {
	*Pending
	position Vector
}

// App owns one running scene: camera, controls, lights, materials and the
// surface it draws to. All methods except Post must be called from the
// frame loop.
type App struct {
	Variant  Variant
	Scene    *Scene
	Camera   *Camera
	Controls *OrbitControls
	Surface  Surface
	Factory  *Factory
	Loader   *Loader
	Rules    Rules

	log        *slog.Logger
	noAutoLoad bool

	mu     sync.Mutex
	events []Event

	pending []pendingAsset
	assets  []*Node
	err     error
	frames  int
}

// NewApp assembles the scene described by v and starts loading its model.
func NewApp(v Variant, surface Surface, log *slog.Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	presets, err := v.PresetTable()
	if err != nil {
		return nil, err
	}
	a := &App{
		Variant: v,
		Scene:   NewScene(),
		Surface: surface,
		Factory: NewFactory(presets, log),
		Loader:  NewLoader(log),
		log:     log.With("variant", v.Name),
	}
	a.Loader.Simplify = v.Model.Simplify
	for _, opt := range opts {
		opt(a)
	}

	a.Scene.Background = HexColor(v.Background)
	if err := a.setupLights(v.Lights); err != nil {
		return nil, err
	}

	c := v.Camera
	a.Camera = NewPerspectiveCamera(c.Fovy, float64(v.Width)/float64(v.Height), c.Near, c.Far)
	a.Camera.Position = vec3(c.Position)
	a.Camera.Target = vec3(c.Target)
	a.Controls = NewOrbitControls(a.Camera)
	a.Controls.EnableDamping = c.Damping
	if c.DampingFactor > 0 {
		a.Controls.DampingFactor = c.DampingFactor
	}
	a.Controls.Update()

	if err := a.setupRules(v); err != nil {
		return nil, err
	}
	if err := a.setupPlane(v.Plane); err != nil {
		return nil, err
	}
	if v.Axes > 0 {
		a.Scene.Add(NewAxesHelper(v.Axes))
	}

	a.Resize(v.Width, v.Height)

	if v.Model.Path != "" && !a.noAutoLoad {
		a.LoadModel(v.Model.Path, vec3(v.Model.Position))
	}
	return a, nil
}

func (a *App) setupLights(l LightsConfig) error {
	if l.Ambient != nil {
		c, i, _, err := l.Ambient.light()
		if err != nil {
			return errors.Wrap(err, "ambient light")
		}
		a.Scene.Ambient = &AmbientLight{Color: c, Intensity: i}
	}
	if l.Directional != nil {
		c, i, p, err := l.Directional.light()
		if err != nil {
			return errors.Wrap(err, "directional light")
		}
		a.Scene.Directional = &DirectionalLight{Color: c, Intensity: i, Position: p}
	}
	a.Scene.Toon = l.Toon
	return nil
}

func (a *App) material(ref MaterialRef) (*Material, error) {
	spec, err := ref.Spec()
	if err != nil {
		return nil, err
	}
	return a.Factory.CreateMaterial(spec)
}

func (a *App) setupRules(v Variant) error {
	a.Rules = Rules{Factory: a.Factory}
	if v.Target != nil {
		m, err := a.material(v.Target.Material)
		if err != nil {
			return errors.Wrap(err, "target material")
		}
		a.Rules.TargetName = v.Target.Mesh
		a.Rules.Target = m
	}
	if v.Override != nil {
		m, err := a.material(*v.Override)
		if err != nil {
			return errors.Wrap(err, "override material")
		}
		a.Rules.Override = m
	}
	return nil
}

func (a *App) setupPlane(p *PlaneConfig) error {
	if p == nil {
		return nil
	}
	m, err := a.material(p.Material)
	if err != nil {
		return errors.Wrap(err, "plane material")
	}
	w, h := p.Size[0], p.Size[1]
	if w <= 0 || h <= 0 {
		w, h = 1, 1
	}
	name := p.Name
	if name == "" {
		name = "plane"
	}
	plane := NewMeshNode(name, NewPlaneMesh(w, h), m)
	plane.Position = vec3(p.Position)
	plane.Rotation = mgl64.AnglesToQuat(p.Rotation[0], p.Rotation[1], p.Rotation[2], mgl64.XYZ)
	a.Scene.Add(plane)
	return nil
}

// LoadModel starts loading an asset that is attached at position once it
// arrives. Frames keep rendering meanwhile.
func (a *App) LoadModel(path string, position Vector) *Pending {
	p := a.Loader.Load(path)
	a.pending = append(a.pending, pendingAsset{p, position})
	a.log.Info("loading model", "path", path)
	return p
}

// Post queues an event for the next frame. Safe for concurrent use.
func (a *App) Post(e Event) {
	a.mu.Lock()
	a.events = append(a.events, e)
	a.mu.Unlock()
}

func (a *App) drainEvents() {
	a.mu.Lock()
	events := a.events
	a.events = nil
	a.mu.Unlock()
	for _, e := range events {
		e.apply(a)
	}
}

// Resize updates the camera aspect ratio and the surface size. Repeating
// the same size changes nothing.
func (a *App) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	a.Camera.SetViewport(width, height)
	a.Surface.SetSize(width, height)
}

// SetPresets swaps the preset table and rebinds every loaded asset.
func (a *App) SetPresets(presets PresetTable) {
	a.Factory.SetPresets(presets)
	for _, root := range a.assets {
		bindings := Rebind(root, a.Rules)
		a.log.Info("rebound asset", "asset", root.Name, "bindings", len(bindings))
	}
}

// graft attaches finished loads. It runs between frames, so a rendered
// frame sees either none or all of an asset.
func (a *App) graft() {
	if len(a.pending) == 0 {
		return
	}
	remaining := a.pending[:0]
	for _, p := range a.pending {
		res, ok := p.Poll()
		if !ok {
			remaining = append(remaining, p)
			continue
		}
		if res.Err != nil {
			a.fail(res)
			continue
		}
		a.attach(res, p.position)
	}
	a.pending = remaining
}

func (a *App) fail(res LoadResult) {
	a.err = errors.Wrapf(res.Err, "load %s", res.Path)
	a.Scene.Background = ErrorBackground
	a.log.Error("model load failed", "path", res.Path, "err", res.Err)
}

func (a *App) attach(res LoadResult, position Vector) {
	root := res.Root
	root.Position = position

	bindings := Bind(root, a.Rules)
	Apply(bindings)
	for _, b := range bindings {
		a.log.Debug("bound material", "mesh", b.Node.Name, "material", b.Material.Name, "reason", b.Reason)
	}
	meshes := root.Meshes()
	for _, n := range meshes {
		if n.Material == nil {
			n.Material = DefaultAuthored
		}
		if n.Authored == nil {
			n.Authored = n.Material
		}
	}

	a.Scene.Add(root)
	a.assets = append(a.assets, root)
	if a.Variant.Camera.Fit {
		a.Camera.FitToBox(root.BoundingBox())
	}
	a.log.Info("model loaded", "path", res.Path, "meshes", len(meshes), "bindings", len(bindings), "elapsed", res.Elapsed)
}

// RunFrame advances one frame: queued events, finished loads, controls,
// then rendering.
func (a *App) RunFrame(elapsed time.Duration) error {
	a.drainEvents()
	a.graft()
	a.Scene.Time = elapsed.Seconds()
	a.Controls.Update()
	if err := a.Surface.Render(a.Scene, a.Camera); err != nil {
		return errors.Wrap(err, "render")
	}
	a.frames++
	return nil
}

// Run hands RunFrame to host until ctx is done or a frame fails.
func (a *App) Run(ctx context.Context, host Host) error {
	return host.Run(ctx, a.RunFrame)
}

// Err is the most recent load failure.
func (a *App) Err() error {
	return a.err
}

// Loading reports whether any asset is still in flight.
func (a *App) Loading() bool {
	return len(a.pending) > 0
}

// Assets lists the loaded asset roots in arrival order.
func (a *App) Assets() []*Node {
	return a.assets
}

func (a *App) Frames() int {
	return a.frames
}

// WaitLoaded blocks until every pending load has finished. The results
// are attached by the next RunFrame.
func (a *App) WaitLoaded(ctx context.Context) error {
	for _, p := range a.pending {
		if _, err := p.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}
