package nodemat

import "math"

// Camera is a perspective camera. Call UpdateProjectionMatrix after
// changing Fovy, Aspect, Near or Far.
type Camera struct {
	Position Vector
	Target   Vector
	Up       Vector
	Fovy     float64 // degrees
	Aspect   float64
	Near     float64
	Far      float64

	projection Matrix
}

func NewPerspectiveCamera(fovy, aspect, near, far float64) *Camera {
	c := &Camera{
		Up:     V(0, 1, 0),
		Fovy:   fovy,
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
	c.UpdateProjectionMatrix()
	return c
}

func (c *Camera) UpdateProjectionMatrix() {
	c.projection = Perspective(c.Fovy, c.Aspect, c.Near, c.Far)
}

func (c *Camera) ProjectionMatrix() Matrix {
	return c.projection
}

func (c *Camera) ViewMatrix() Matrix {
	return LookAt(c.Position, c.Target, c.Up)
}

// Matrix is projection * view.
func (c *Camera) Matrix() Matrix {
	return c.projection.Mul(c.ViewMatrix())
}

// SetViewport sets the aspect ratio from a surface size and refreshes the
// projection. Non-positive sizes are ignored.
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float64(width) / float64(height)
	c.UpdateProjectionMatrix()
}

// FitToBox widens or narrows Fovy so that box fits the view from the
// current position, with 5% padding.
func (c *Camera) FitToBox(box Box) {
	if box == EmptyBox {
		return
	}
	view := c.ViewMatrix()

	var maxAngleX, maxAngleY float64
	for _, corner := range box.Corners() {
		p := view.MulPosition(corner)

		// the camera looks down -Z in view space
		absZ := math.Abs(p.Z)
		if absZ < 1e-6 {
			continue
		}

		angleX := math.Atan(math.Abs(p.X) / absZ)
		if angleX > maxAngleX {
			maxAngleX = angleX
		}

		angleY := math.Atan(math.Abs(p.Y) / absZ)
		if angleY > maxAngleY {
			maxAngleY = angleY
		}
	}

	fovyFromY := 2 * maxAngleY
	fovyFromX := 2 * math.Atan(math.Tan(maxAngleX)/c.Aspect)
	fovy := math.Max(fovyFromX, fovyFromY) * (180 / math.Pi) * 1.05
	if fovy <= 0 || fovy >= 179 {
		return
	}
	c.Fovy = fovy
	c.UpdateProjectionMatrix()
}
