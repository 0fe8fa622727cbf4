package nodemat

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScene(material *Material) (*Scene, *Camera) {
	scene := NewScene()
	scene.Background = Color{0, 0, 1, 1}
	scene.Add(NewMeshNode("plane", NewPlaneMesh(2, 2), material))
	camera := NewPerspectiveCamera(60, 1, 0.1, 100)
	camera.Position = V(0, 0, 3)
	return scene, camera
}

func TestSoftwareSurfaceRender(t *testing.T) {
	red := &Material{Name: "red", Expr: SolidExpr{colorful.Color{R: 1}}}
	scene, camera := testScene(red)
	s := NewSoftwareSurface(32, 32, 2)

	assert.ErrorIs(t, s.EncodePNG(&bytes.Buffer{}), ErrNoFrame)
	assert.Nil(t, s.Frame())

	require.NoError(t, s.Render(scene, camera))
	assert.Equal(t, 1, s.Frames())
	frame := s.Frame()
	require.NotNil(t, frame)
	assert.Equal(t, 32, frame.Bounds().Dx())

	r, g, b, _ := frame.At(16, 16).RGBA()
	assert.Greater(t, r>>8, uint32(200))
	assert.Less(t, g>>8, uint32(40))
	assert.Less(t, b>>8, uint32(40))

	r, _, b, _ = frame.At(1, 1).RGBA()
	assert.Less(t, r>>8, uint32(40))
	assert.Greater(t, b>>8, uint32(200))

	var buf bytes.Buffer
	require.NoError(t, s.EncodePNG(&buf))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, frame.Bounds(), decoded.Bounds())
}

func TestSoftwareSurfaceSetSize(t *testing.T) {
	scene, camera := testScene(NewSolidMaterial("grey", HexColor("808080")))
	s := NewSoftwareSurface(8, 8, 1)

	s.SetSize(24, 12)
	s.SetSize(0, 5)
	w, h := s.Size()
	assert.Equal(t, 24, w)
	assert.Equal(t, 12, h)

	require.NoError(t, s.Render(scene, camera))
	assert.Equal(t, 24, s.Frame().Bounds().Dx())
	assert.Equal(t, 12, s.Frame().Bounds().Dy())
	assert.Equal(t, 24, s.Context().Width)
}

func TestSoftwareSurfaceSkipsHidden(t *testing.T) {
	scene, camera := testScene(&Material{Expr: SolidExpr{colorful.Color{R: 1}}})
	scene.Root.Find("plane").Hidden = true
	s := NewSoftwareSurface(16, 16, 1)
	require.NoError(t, s.Render(scene, camera))

	r, _, b, _ := s.Frame().At(8, 8).RGBA()
	assert.Equal(t, uint32(0), r>>8)
	assert.Equal(t, uint32(255), b>>8)
}

func TestSoftwareSurfaceLitAndToon(t *testing.T) {
	white := NewSolidMaterial("white", White)
	for _, toon := range []bool{false, true} {
		scene, camera := testScene(white)
		scene.Ambient = &AmbientLight{Color: White, Intensity: 0.2}
		scene.Directional = &DirectionalLight{Color: White, Intensity: 0.5, Position: V(0, 0, 1)}
		scene.Toon = toon
		s := NewSoftwareSurface(16, 16, 1)
		require.NoError(t, s.Render(scene, camera))

		// ambient 0.2 plus a head-on directional light at half intensity
		r, g, b, _ := s.Frame().At(8, 8).RGBA()
		assert.InDelta(t, 0.7*255, float64(r>>8), 2, "toon=%v", toon)
		assert.Equal(t, r, g)
		assert.Equal(t, r, b)
	}
}

func TestToonBands(t *testing.T) {
	s := NewToonShader(&NodeShader{})
	assert.Equal(t, 1.0, s.band(0.95))
	assert.Equal(t, 0.7, s.band(0.6))
	assert.Equal(t, 0.45, s.band(0.3))
	assert.Equal(t, 0.25, s.band(0.1))
	assert.Equal(t, 0.25, s.band(0))
}

func TestNodeShaderTime(t *testing.T) {
	m := &Material{Expr: ProceduralExpr{Fn: func(local Vector, t float64) colorful.Color {
		return colorful.Color{R: t}
	}}}
	s := NewNodeShader(Identity(), Identity(), m, 0.5, nil)
	c := s.Fragment(Vertex{Position: V(0, 0, 0)})
	assert.Equal(t, Color{0.5, 0, 0, 1}, c)

	assert.Equal(t, Transparent, NewNodeShader(Identity(), Identity(), nil, 0, nil).Fragment(Vertex{}))
}

func TestNodeShaderSceneLights(t *testing.T) {
	scene := NewScene()
	assert.False(t, scene.Lit())
	s := NewNodeShader(Identity(), Identity(), NewSolidMaterial("rock", White), 0, scene)
	assert.Nil(t, s.Ambient)
	assert.Nil(t, s.Directional)

	scene.Ambient = &AmbientLight{Color: White, Intensity: 0.5}
	assert.True(t, scene.Lit())
	s = NewNodeShader(Identity(), Identity(), NewSolidMaterial("rock", White), 0, scene)
	assert.Same(t, scene.Ambient, s.Ambient)
	c := s.Fragment(Vertex{Normal: V(0, 0, 1)})
	assert.InDelta(t, 0.5, c.R, 1e-9)
	assert.InDelta(t, 0.5, c.G, 1e-9)
	assert.InDelta(t, 0.5, c.B, 1e-9)
	assert.Equal(t, 1.0, c.A)
}
