package nodemat

// AmbientLight lights every surface equally.
type AmbientLight struct {
	Color     Color
	Intensity float64
}

// DirectionalLight shines from Position toward the origin.
type DirectionalLight struct {
	Color     Color
	Intensity float64
	Position  Vector
}

// Direction is the unit vector pointing toward the light.
func (l *DirectionalLight) Direction() Vector {
	return l.Position.Normalize()
}

// Scene is the root of everything a Surface draws.
type Scene struct {
	Root        *Node
	Background  Color
	Ambient     *AmbientLight
	Directional *DirectionalLight
	// Toon draws lit materials with banded cel shading.
	Toon bool
	// Time is the elapsed time in seconds seen by time-varying expressions.
	Time float64
}

func NewScene() *Scene {
	return &Scene{Root: NewNode("scene"), Background: Black}
}

func (s *Scene) Add(nodes ...*Node) {
	s.Root.Add(nodes...)
}

func (s *Scene) Remove(n *Node) bool {
	return s.Root.Remove(n)
}

func (s *Scene) BoundingBox() Box {
	return s.Root.BoundingBox()
}

// Lit reports whether any light is present.
func (s *Scene) Lit() bool {
	return s.Ambient != nil || s.Directional != nil
}

// NewAxesHelper returns X, Y and Z axis lines of the given length colored
// red, green and blue.
func NewAxesHelper(size float64) *Node {
	axes := NewNode("axes")
	add := func(name string, to Vector, c Color) {
		m := &Material{Name: name, Expr: SolidExpr{c.Colorful()}}
		axes.Add(NewMeshNode(name, NewLineMesh([]*Line{NewLineForPoints(Vector{}, to)}), m))
	}
	add("axis_x", V(size, 0, 0), Color{1, 0, 0, 1})
	add("axis_y", V(0, size, 0), Color{0, 1, 0, 1})
	add("axis_z", V(0, 0, size), Color{0, 0, 1, 1})
	return axes
}
