package nodemat

import (
	"math"
)

// Shader transforms vertices and colors fragments. Implementations must be
// safe for concurrent use by the rasterizer's goroutines.
type Shader interface {
	Vertex(Vertex) Vertex
	Fragment(Vertex) Color
}

// NodeShader draws one node: it projects vertices with the node's
// model-view-projection matrix and colors fragments by evaluating the
// node's material at the interpolated local position.
type NodeShader struct {
	Matrix      Matrix // projection * view * model
	Model       Matrix
	Material    *Material
	Time        float64 // seconds
	Ambient     *AmbientLight
	Directional *DirectionalLight

	normalMatrix Matrix
}

func NewNodeShader(viewProjection, model Matrix, material *Material, t float64, scene *Scene) *NodeShader {
	s := &NodeShader{
		Matrix:   viewProjection.Mul(model),
		Model:    model,
		Material: material,
		Time:     t,
	}
	if scene != nil && scene.Lit() {
		s.Ambient = scene.Ambient
		s.Directional = scene.Directional
	}
	s.normalMatrix = model.Inverse().Transpose()
	return s
}

func (s *NodeShader) Vertex(v Vertex) Vertex {
	v.Output = s.Matrix.MulPositionW(v.Position)
	v.Normal = s.normalMatrix.MulDirection(v.Normal)
	return v
}

func (s *NodeShader) Fragment(v Vertex) Color {
	if s.Material == nil {
		return Transparent
	}
	color := FromColorful(s.Material.Eval(v.Position, s.Time))
	if !s.Material.Lit || (s.Ambient == nil && s.Directional == nil) {
		return color
	}
	light := Color{0, 0, 0, 1}
	if s.Ambient != nil {
		light = light.Add(s.Ambient.Color.MulScalar(s.Ambient.Intensity).Alpha(0))
	}
	if s.Directional != nil {
		diffuse := math.Max(v.Normal.Dot(s.Directional.Direction()), 0)
		light = light.Add(s.Directional.Color.MulScalar(s.Directional.Intensity * diffuse).Alpha(0))
	}
	return color.Mul(light).Min(White).Alpha(1)
}
