package nodemat

import (
	"github.com/fogleman/simplify"
)

// Vertex carries per-vertex attributes through the shader stages.
// Position stays in the mesh's local space; Output is the clip-space result.
type Vertex struct {
	Position Vector
	Normal   Vector
	Texture  Vector
	Color    Color
	Output   VectorW
}

func (a Vertex) Outside() bool {
	return a.Output.Outside()
}

func InterpolateVertexes(v1, v2, v3 Vertex, b VectorW) Vertex {
	v := Vertex{}
	v.Position = interpolateVectors(v1.Position, v2.Position, v3.Position, b)
	v.Normal = interpolateVectors(v1.Normal, v2.Normal, v3.Normal, b).Normalize()
	v.Texture = interpolateVectors(v1.Texture, v2.Texture, v3.Texture, b)
	v.Color = interpolateColors(v1.Color, v2.Color, v3.Color, b)
	v.Output = interpolateVectorWs(v1.Output, v2.Output, v3.Output, b)
	return v
}

func interpolateVectors(v1, v2, v3 Vector, b VectorW) Vector {
	n := v1.MulScalar(b.X)
	n = n.Add(v2.MulScalar(b.Y))
	n = n.Add(v3.MulScalar(b.Z))
	return n.MulScalar(b.W)
}

func interpolateVectorWs(v1, v2, v3 VectorW, b VectorW) VectorW {
	n := v1.MulScalar(b.X)
	n = n.Add(v2.MulScalar(b.Y))
	n = n.Add(v3.MulScalar(b.Z))
	return n.MulScalar(b.W)
}

func interpolateColors(v1, v2, v3 Color, b VectorW) Color {
	n := v1.MulScalar(b.X)
	n = n.Add(v2.MulScalar(b.Y))
	n = n.Add(v3.MulScalar(b.Z))
	return n.MulScalar(b.W)
}

type Triangle struct {
	V1, V2, V3 Vertex
}

func NewTriangle(v1, v2, v3 Vertex) *Triangle {
	t := Triangle{v1, v2, v3}
	t.FixNormals()
	return &t
}

func NewTriangleForPoints(p1, p2, p3 Vector) *Triangle {
	return NewTriangle(Vertex{Position: p1}, Vertex{Position: p2}, Vertex{Position: p3})
}

func (t *Triangle) Normal() Vector {
	e1 := t.V2.Position.Sub(t.V1.Position)
	e2 := t.V3.Position.Sub(t.V1.Position)
	return e1.Cross(e2).Normalize()
}

// FixNormals replaces missing vertex normals with the face normal.
func (t *Triangle) FixNormals() {
	n := t.Normal()
	zero := Vector{}
	if t.V1.Normal == zero {
		t.V1.Normal = n
	}
	if t.V2.Normal == zero {
		t.V2.Normal = n
	}
	if t.V3.Normal == zero {
		t.V3.Normal = n
	}
}

func (t *Triangle) BoundingBox() Box {
	min := t.V1.Position.Min(t.V2.Position).Min(t.V3.Position)
	max := t.V1.Position.Max(t.V2.Position).Max(t.V3.Position)
	return Box{min, max}
}

type Line struct {
	V1, V2 Vertex
}

func NewLine(v1, v2 Vertex) *Line {
	return &Line{v1, v2}
}

func NewLineForPoints(p1, p2 Vector) *Line {
	return NewLine(Vertex{Position: p1}, Vertex{Position: p2})
}

func (l *Line) BoundingBox() Box {
	return Box{l.V1.Position.Min(l.V2.Position), l.V1.Position.Max(l.V2.Position)}
}

// Mesh is renderable geometry in local space.
type Mesh struct {
	Triangles []*Triangle
	Lines     []*Line
	box       *Box
}

func NewMesh(triangles []*Triangle, lines []*Line) *Mesh {
	return &Mesh{Triangles: triangles, Lines: lines}
}

func NewTriangleMesh(triangles []*Triangle) *Mesh {
	return &Mesh{Triangles: triangles}
}

func NewLineMesh(lines []*Line) *Mesh {
	return &Mesh{Lines: lines}
}

func (m *Mesh) BoundingBox() Box {
	if m.box == nil {
		box := BoxForTriangles(m.Triangles)
		for _, l := range m.Lines {
			box = box.Extend(l.BoundingBox())
		}
		m.box = &box
	}
	return *m.box
}

// NewPlaneMesh returns a w x h quad in the XY plane facing +Z.
func NewPlaneMesh(w, h float64) *Mesh {
	x, y := w/2, h/2
	p1 := V(-x, -y, 0)
	p2 := V(x, -y, 0)
	p3 := V(x, y, 0)
	p4 := V(-x, y, 0)
	return NewTriangleMesh([]*Triangle{
		NewTriangleForPoints(p1, p2, p3),
		NewTriangleForPoints(p1, p3, p4),
	})
}

// Simplify decimates the triangle mesh to roughly factor of its faces.
// Vertex normals are recomputed from the new faces; lines are kept.
func (m *Mesh) Simplify(factor float64) *Mesh {
	if factor <= 0 || factor >= 1 || len(m.Triangles) == 0 {
		return m
	}
	in := make([]*simplify.Triangle, len(m.Triangles))
	for i, t := range m.Triangles {
		in[i] = &simplify.Triangle{
			V1: toSimplify(t.V1.Position),
			V2: toSimplify(t.V2.Position),
			V3: toSimplify(t.V3.Position),
		}
	}
	out := (&simplify.Mesh{Triangles: in}).Simplify(factor)
	triangles := make([]*Triangle, 0, len(out.Triangles))
	for _, t := range out.Triangles {
		triangles = append(triangles, NewTriangleForPoints(fromSimplify(t.V1), fromSimplify(t.V2), fromSimplify(t.V3)))
	}
	return NewMesh(triangles, m.Lines)
}

func toSimplify(v Vector) simplify.Vector {
	return simplify.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

func fromSimplify(v simplify.Vector) Vector {
	return Vector{v.X, v.Y, v.Z}
}
