package nodemat

import "math"

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max Vector
}

var EmptyBox = Box{}

func BoxForTriangles(triangles []*Triangle) Box {
	if len(triangles) == 0 {
		return EmptyBox
	}
	box := triangles[0].BoundingBox()
	for _, t := range triangles[1:] {
		box = box.Extend(t.BoundingBox())
	}
	return box
}

func BoxForBoxes(boxes []Box) Box {
	if len(boxes) == 0 {
		return EmptyBox
	}
	box := boxes[0]
	for _, b := range boxes[1:] {
		box = box.Extend(b)
	}
	return box
}

func (a Box) Extend(b Box) Box {
	if a == EmptyBox {
		return b
	}
	return Box{a.Min.Min(b.Min), a.Max.Max(b.Max)}
}

// Transform returns the box enclosing a transformed by m.
func (a Box) Transform(m Matrix) Box {
	var out Box
	for i, c := range a.Corners() {
		p := m.MulPosition(c)
		if i == 0 {
			out = Box{p, p}
			continue
		}
		out = Box{out.Min.Min(p), out.Max.Max(p)}
	}
	return out
}

func (a Box) Size() Vector {
	return a.Max.Sub(a.Min)
}

func (a Box) Center() Vector {
	return a.Min.Add(a.Size().DivScalar(2))
}

// Radius is half the diagonal.
func (a Box) Radius() float64 {
	s := a.Size()
	return math.Sqrt(s.X*s.X+s.Y*s.Y+s.Z*s.Z) / 2
}

func (a Box) Corners() []Vector {
	return []Vector{
		{a.Min.X, a.Min.Y, a.Min.Z},
		{a.Min.X, a.Min.Y, a.Max.Z},
		{a.Min.X, a.Max.Y, a.Min.Z},
		{a.Min.X, a.Max.Y, a.Max.Z},
		{a.Max.X, a.Min.Y, a.Min.Z},
		{a.Max.X, a.Min.Y, a.Max.Z},
		{a.Max.X, a.Max.Y, a.Min.Z},
		{a.Max.X, a.Max.Y, a.Max.Z},
	}
}
