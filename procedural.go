package nodemat

import (
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

var procedurals = map[string]ColorFunc{
	"local_y": LocalY,
	"spiral":  Spiral,
	"radial":  Radial,
	"pulse":   Pulse,
}

// LookupProcedural returns the registered expression with the given name.
func LookupProcedural(name string) (ColorFunc, error) {
	fn, ok := procedurals[foldName(name)]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownProcedural, "%q", name)
	}
	return fn, nil
}

func ProceduralNames() []string {
	names := make([]string, 0, len(procedurals))
	for k := range procedurals {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func smoothstep(e0, e1, x float64) float64 {
	t := Clamp((x-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}

func grey(v float64) colorful.Color {
	return colorful.Color{R: v, G: v, B: v}
}

// LocalY uses the local height as a grey level. Heights outside [0, 1]
// saturate when written out.
func LocalY(local Vector, t float64) colorful.Color {
	return grey(local.Y)
}

var (
	spiralInk   = colorful.Color{R: 0.08, G: 0.06, B: 0.25}
	spiralPaper = colorful.Color{R: 1, G: 0.8, B: 0.2}
)

// Spiral draws a three-armed spiral in the XY plane that winds over time.
func Spiral(local Vector, t float64) colorful.Color {
	r := math.Hypot(local.X, local.Y)
	a := math.Atan2(local.Y, local.X)
	s := math.Sin(3*a + 10*r - t)
	return spiralInk.BlendRgb(spiralPaper, smoothstep(-0.2, 0.2, s))
}

// Radial fades from white at the origin to black at unit distance.
func Radial(local Vector, t float64) colorful.Color {
	d := math.Hypot(local.X, local.Y)
	return colorful.Color{R: 1, G: 1, B: 1}.BlendRgb(colorful.Color{}, Clamp(d, 0, 1))
}

var (
	pulseLow  = colorful.Color{R: 0.05, G: 0.05, B: 0.1}
	pulseHigh = colorful.Color{R: 0.2, G: 0.9, B: 0.7}
)

// Pulse thresholds local height against a level oscillating with time.
func Pulse(local Vector, t float64) colorful.Color {
	level := 0.5 + 0.5*math.Sin(t)
	y := local.Y + 0.5
	return pulseLow.BlendRgb(pulseHigh, smoothstep(level-0.05, level+0.05, y))
}
