package nodemat

import "math"

// ToonStep maps a minimum diffuse intensity to the light level used for
// it.
type ToonStep struct {
	Threshold float64
	Level     float64
}

// DefaultToonSteps are four bands from highlight to deep shadow, highest
// threshold first.
var DefaultToonSteps = []ToonStep{
	{0.8, 1.0},
	{0.5, 0.7},
	{0.2, 0.45},
	{0.0, 0.25},
}

// ToonShader implements cel shading: the directional term is snapped to
// the band its intensity falls in instead of varying smoothly.
type ToonShader struct {
	*NodeShader
	Steps []ToonStep
}

func NewToonShader(s *NodeShader) *ToonShader {
	return &ToonShader{NodeShader: s, Steps: DefaultToonSteps}
}

func (s *ToonShader) band(intensity float64) float64 {
	for _, step := range s.Steps {
		if intensity > step.Threshold {
			return step.Level
		}
	}
	if n := len(s.Steps); n > 0 {
		return s.Steps[n-1].Level
	}
	return intensity
}

func (s *ToonShader) Fragment(v Vertex) Color {
	if s.Material == nil {
		return Transparent
	}
	color := FromColorful(s.Material.Eval(v.Position, s.Time))
	if !s.Material.Lit || s.Directional == nil {
		return s.NodeShader.Fragment(v)
	}
	light := Color{0, 0, 0, 1}
	if s.Ambient != nil {
		light = light.Add(s.Ambient.Color.MulScalar(s.Ambient.Intensity).Alpha(0))
	}
	intensity := math.Max(v.Normal.Normalize().Dot(s.Directional.Direction()), 0)
	light = light.Add(s.Directional.Color.MulScalar(s.Directional.Intensity * s.band(intensity)).Alpha(0))
	return color.Mul(light).Min(White).Alpha(1)
}
