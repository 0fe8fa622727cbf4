package nodemat

// clip planes in homogeneous space: a point p is inside when plane.Dot(p) >= 0.
var clipPlanes = []VectorW{
	{1, 0, 0, 1},
	{-1, 0, 0, 1},
	{0, 1, 0, 1},
	{0, -1, 0, 1},
	{0, 0, 1, 1},
	{0, 0, -1, 1},
}

func lerpVertex(a, b Vertex, t float64) Vertex {
	return Vertex{
		Position: a.Position.Lerp(b.Position, t),
		Normal:   a.Normal.Lerp(b.Normal, t).Normalize(),
		Texture:  a.Texture.Lerp(b.Texture, t),
		Color:    a.Color.Lerp(b.Color, t),
		Output:   a.Output.Add(b.Output.Sub(a.Output).MulScalar(t)),
	}
}

func clipPolygon(plane VectorW, in []Vertex) []Vertex {
	if len(in) == 0 {
		return nil
	}
	var out []Vertex
	prev := in[len(in)-1]
	dp := plane.Dot(prev.Output)
	for _, cur := range in {
		dc := plane.Dot(cur.Output)
		if dc >= 0 {
			if dp < 0 {
				out = append(out, lerpVertex(prev, cur, dp/(dp-dc)))
			}
			out = append(out, cur)
		} else if dp >= 0 {
			out = append(out, lerpVertex(prev, cur, dp/(dp-dc)))
		}
		prev, dp = cur, dc
	}
	return out
}

// ClipTriangle clips t against the view volume and fans the result back
// into triangles.
func ClipTriangle(t *Triangle) []*Triangle {
	poly := []Vertex{t.V1, t.V2, t.V3}
	for _, p := range clipPlanes {
		poly = clipPolygon(p, poly)
	}
	var result []*Triangle
	for i := 2; i < len(poly); i++ {
		result = append(result, &Triangle{poly[0], poly[i-1], poly[i]})
	}
	return result
}

// ClipLine returns nil when the line is entirely outside the view volume.
func ClipLine(l *Line) *Line {
	v1, v2 := l.V1, l.V2
	for _, p := range clipPlanes {
		d1 := p.Dot(v1.Output)
		d2 := p.Dot(v2.Output)
		switch {
		case d1 < 0 && d2 < 0:
			return nil
		case d1 < 0:
			v1 = lerpVertex(v1, v2, d1/(d1-d2))
		case d2 < 0:
			v2 = lerpVertex(v2, v1, d2/(d2-d1))
		}
	}
	return &Line{v1, v2}
}
