package kernel

import (
	"math"
	"strconv"

	"github.com/soypat/sheetmetal/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// SDF3 is the interface to a 3d signed distance function object.
type SDF3 interface {
	// Evaluate takes a point in 3D space as input and returns
	// the minimum distance of the SDF3 to the point. The distance
	// is negative if the point is contained within the SDF3.
	Evaluate(p r3.Vec) float64
	// Bounds returns the bounding box that completely contains
	// the SDF3.
	Bounds() r3.Box
}

// plate is a flat rectangular piece of sheet placed by a frame.
type plate struct {
	f    d3.Frame
	half r3.Vec
	bb   r3.Box
}

// newPlate returns a plate centered on the origin of f with the given size
// along the frame axes. It panics if any size is not positive.
func newPlate(f d3.Frame, size r3.Vec) *plate {
	if d3.LTEZero(size) {
		panic("plate size <= 0")
	}
	half := r3.Scale(0.5, size)
	return &plate{
		f:    f,
		half: half,
		bb:   r3.Box(f.Bounds(d3.Box{Min: r3.Scale(-1, half), Max: half})),
	}
}

// Evaluate returns the minimum distance to a plate.
func (s *plate) Evaluate(p r3.Vec) float64 {
	return sdfBox3d(s.f.Local(p), s.half)
}

func (s *plate) Bounds() r3.Box { return s.bb }

// bend is a quarter of an annular tube. Its frame origin lies on the bend
// axis, the bend sweeps from the frame X axis towards the Y axis and the
// frame Z axis is the bend axis.
type bend struct {
	f      d3.Frame
	radius float64 // inner radius
	thick  float64
	half   float64 // half length along the axis
	bb     r3.Box
}

func newBend(f d3.Frame, radius, thickness, length float64) *bend {
	if radius < 0 {
		panic("bend radius < 0")
	}
	if thickness <= 0 || length <= 0 {
		panic("bend thickness or length <= 0")
	}
	outer := radius + thickness
	half := length / 2
	return &bend{
		f:      f,
		radius: radius,
		thick:  thickness,
		half:   half,
		bb:     r3.Box(f.Bounds(d3.Box{Min: r3.Vec{Z: -half}, Max: r3.Vec{X: outer, Y: outer, Z: half}})),
	}
}

// Evaluate returns the minimum distance to a bend. The bend is the solid of
// revolution of its rectangular cross section limited to the first quadrant.
func (s *bend) Evaluate(p r3.Vec) float64 {
	q := s.f.Local(p)
	rho := math.Hypot(q.X, q.Y)
	a := sdfBox2d(
		r2.Vec{X: rho - (s.radius + s.thick/2), Y: q.Z},
		r2.Vec{X: s.thick / 2, Y: s.half},
	)
	// combine two planes to give the quarter wedge.
	b := math.Max(-q.X, -q.Y)
	return math.Max(a, b)
}

func (s *bend) Bounds() r3.Box { return s.bb }

// union3 is a union of SDF3s.
type union3 struct {
	sdf []SDF3
	bb  r3.Box
}

// union returns the union of one or more SDF3 objects.
// It panics if the argument list is empty or contains a nil SDF3.
func union(sdf ...SDF3) *union3 {
	if len(sdf) == 0 {
		panic("union requires at least 1 sdf")
	}
	for i, x := range sdf {
		if x == nil {
			panic("nil sdf argument (" + strconv.Itoa(i) + ") to union")
		}
	}
	bb := d3.Box(sdf[0].Bounds())
	for _, x := range sdf[1:] {
		bb = bb.Extend(d3.Box(x.Bounds()))
	}
	return &union3{sdf: sdf, bb: r3.Box(bb)}
}

// Evaluate returns the minimum distance to an SDF3 union.
func (s *union3) Evaluate(p r3.Vec) float64 {
	d := s.sdf[0].Evaluate(p)
	for _, x := range s.sdf[1:] {
		d = math.Min(d, x.Evaluate(p))
	}
	return d
}

func (s *union3) Bounds() r3.Box { return s.bb }

func sdfBox3d(p, s r3.Vec) float64 {
	d := r3.Sub(d3.AbsElem(p), s)
	if d.X > 0 && d.Y > 0 && d.Z > 0 {
		return r3.Norm(d)
	}
	if d.X > 0 && d.Y > 0 {
		return math.Hypot(d.X, d.Y)
	}
	if d.X > 0 && d.Z > 0 {
		return math.Hypot(d.X, d.Z)
	}
	if d.Y > 0 && d.Z > 0 {
		return math.Hypot(d.Y, d.Z)
	}
	if d.X > 0 {
		return d.X
	}
	if d.Y > 0 {
		return d.Y
	}
	if d.Z > 0 {
		return d.Z
	}
	return d3.Max(d)
}

func sdfBox2d(p, s r2.Vec) float64 {
	d := r2.Vec{X: math.Abs(p.X) - s.X, Y: math.Abs(p.Y) - s.Y}
	if d.X > 0 && d.Y > 0 {
		return math.Hypot(d.X, d.Y)
	}
	return math.Max(d.X, d.Y)
}
