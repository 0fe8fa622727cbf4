package nodemat

import "math"

const minPolar = 1e-6

// OrbitControls orbits a camera around its target, Y up.
type OrbitControls struct {
	Camera *Camera

	EnableDamping bool
	DampingFactor float64
	RotateSpeed   float64
	ZoomSpeed     float64
	MinDistance   float64
	MaxDistance   float64

	deltaTheta float64
	deltaPhi   float64
	scale      float64
}

func NewOrbitControls(camera *Camera) *OrbitControls {
	return &OrbitControls{
		Camera:        camera,
		DampingFactor: 0.05,
		RotateSpeed:   1,
		ZoomSpeed:     1,
		MinDistance:   0,
		MaxDistance:   math.Inf(1),
		scale:         1,
	}
}

// Rotate queues an orbit by the given azimuth and polar angles in radians.
func (c *OrbitControls) Rotate(theta, phi float64) {
	c.deltaTheta -= theta * c.RotateSpeed
	c.deltaPhi -= phi * c.RotateSpeed
}

// Drag converts a pointer drag in pixels on a surface of the given height
// into an orbit.
func (c *OrbitControls) Drag(dx, dy float64, height int) {
	if height <= 0 {
		return
	}
	h := float64(height)
	c.Rotate(2*math.Pi*dx/h, 2*math.Pi*dy/h)
}

// Zoom queues a dolly; positive delta moves closer.
func (c *OrbitControls) Zoom(delta float64) {
	c.scale *= math.Pow(0.95, delta*c.ZoomSpeed)
}

// Update applies queued motion to the camera once per frame and reports
// whether the camera moved.
func (c *OrbitControls) Update() bool {
	cam := c.Camera
	offset := cam.Position.Sub(cam.Target)
	radius := offset.Length()
	if radius == 0 {
		return false
	}
	theta := math.Atan2(offset.X, offset.Z)
	phi := math.Acos(Clamp(offset.Y/radius, -1, 1))

	if c.EnableDamping {
		theta += c.deltaTheta * c.DampingFactor
		phi += c.deltaPhi * c.DampingFactor
	} else {
		theta += c.deltaTheta
		phi += c.deltaPhi
	}
	phi = Clamp(phi, minPolar, math.Pi-minPolar)
	radius = Clamp(radius*c.scale, c.MinDistance, c.MaxDistance)

	sinPhi := math.Sin(phi)
	next := cam.Target.Add(V(radius*sinPhi*math.Sin(theta), radius*math.Cos(phi), radius*sinPhi*math.Cos(theta)))
	moved := next.Sub(cam.Position).Length() > 1e-9
	cam.Position = next

	if c.EnableDamping {
		c.deltaTheta *= 1 - c.DampingFactor
		c.deltaPhi *= 1 - c.DampingFactor
	} else {
		c.deltaTheta = 0
		c.deltaPhi = 0
	}
	c.scale = 1
	return moved
}
