// Package kernel is a sheet metal geometry kernel built on signed distance
// functions. Solids are unions of flat plates and quarter bends.
package kernel

import (
	"fmt"
	"math"

	"github.com/soypat/sheetmetal"
	"github.com/soypat/sheetmetal/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// geomTol is the absolute tolerance for coincident positions.
	geomTol = 1e-6
	// dirTol is the tolerance for comparing unit directions.
	dirTol = 1e-9
)

// Kernel builds sheet metal solids from plates and quarter bends.
// Solids are immutable so a Kernel may be shared between goroutines.
type Kernel struct{}

var _ sheetmetal.Kernel = (*Kernel)(nil)

// New returns a ready to use Kernel.
func New() *Kernel { return &Kernel{} }

// MakeBox returns the box [0,x]x[0,y]x[0,z]. Its faces are, in order,
// -X, +X, -Y, +Y, -Z, +Z. The four side faces fold towards +Z.
func (k *Kernel) MakeBox(x, y, z float64) (s sheetmetal.Solid, err error) {
	for _, v := range [3]float64{x, y, z} {
		if !(v > 0) || math.IsInf(v, 1) {
			return nil, fmt.Errorf("%w: box %gx%gx%g", ErrBadDimension, x, y, z)
		}
	}
	defer recoverShape(&err)
	return makeBox(x, y, z), nil
}

func makeBox(x, y, z float64) *Solid {
	xAxis, yAxis, up := r3.Vec{X: 1}, r3.Vec{Y: 1}, r3.Vec{Z: 1}
	faces := []Face{
		{Normal: r3.Vec{X: -1}, Centroid: r3.Vec{X: 0, Y: y / 2, Z: z / 2}, Edge: yAxis, Length: y, Width: z, Up: up},
		{Normal: r3.Vec{X: 1}, Centroid: r3.Vec{X: x, Y: y / 2, Z: z / 2}, Edge: yAxis, Length: y, Width: z, Up: up},
		{Normal: r3.Vec{Y: -1}, Centroid: r3.Vec{X: x / 2, Y: 0, Z: z / 2}, Edge: xAxis, Length: x, Width: z, Up: up},
		{Normal: r3.Vec{Y: 1}, Centroid: r3.Vec{X: x / 2, Y: y, Z: z / 2}, Edge: xAxis, Length: x, Width: z, Up: up},
		{Normal: r3.Vec{Z: -1}, Centroid: r3.Vec{X: x / 2, Y: y / 2, Z: 0}, Edge: xAxis, Length: x, Width: y},
		{Normal: r3.Vec{Z: 1}, Centroid: r3.Vec{X: x / 2, Y: y / 2, Z: z}, Edge: xAxis, Length: x, Width: y},
	}
	f := d3.Frame{Origin: r3.Vec{X: x / 2, Y: y / 2, Z: z / 2}, X: xAxis, Y: yAxis, Z: up}
	return newSolid(faces, []SDF3{newPlate(f, r3.Vec{X: x, Y: y, Z: z})})
}

// Fold bends every selected face of src through 90 degrees and extrudes it
// by op.Length. Selected faces must be sheet edges as thick as op.Thickness.
//
// The faces of the result are the unselected faces of src followed by, for
// each selected face in selection order: the inner and outer bend surfaces
// (the inner one only if the radius is not zero), the inner and outer wall
// faces, the two wall ends and the wall top.
func (k *Kernel) Fold(src sheetmetal.Solid, op sheetmetal.FoldOp) (s sheetmetal.Solid, err error) {
	base, ok := src.(*Solid)
	if !ok || base == nil {
		return nil, fmt.Errorf("%w: %T", ErrForeignSolid, src)
	}
	if err := checkFold(op); err != nil {
		return nil, err
	}
	edges, err := base.sheetEdges(op)
	if err != nil {
		return nil, err
	}
	if op.AutoMiter {
		miter(edges, op)
	}
	defer recoverShape(&err)
	return base.fold(edges, op), nil
}

func checkFold(op sheetmetal.FoldOp) error {
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
	switch {
	case !finite(op.Thickness) || op.Thickness <= 0:
		return fmt.Errorf("%w: fold thickness %g", ErrBadDimension, op.Thickness)
	case !finite(op.Length) || op.Length <= 0:
		return fmt.Errorf("%w: fold length %g", ErrBadDimension, op.Length)
	case !finite(op.Radius) || op.Radius < 0:
		return fmt.Errorf("%w: bend radius %g", ErrBadDimension, op.Radius)
	}
	return nil
}

// edge is a selected face prepared for folding.
type edge struct {
	index int
	c     r3.Vec // face centroid
	n     r3.Vec // face normal
	u     r3.Vec // fold direction
	e     r3.Vec // edge direction
	// length along e before mitering.
	length float64
	// ext is how far the wall is extended past the -e and +e ends.
	ext [2]float64
}

func (s *Solid) sheetEdges(op sheetmetal.FoldOp) ([]edge, error) {
	if len(op.Faces) == 0 {
		return nil, ErrEmptySelection
	}
	seen := make(map[int]bool, len(op.Faces))
	edges := make([]edge, 0, len(op.Faces))
	for _, i := range op.Faces {
		if i < 1 || i > len(s.faces) {
			return nil, fmt.Errorf("%w: face %d of %d", ErrFaceIndex, i, len(s.faces))
		}
		if seen[i] {
			return nil, fmt.Errorf("%w: face %d", ErrDuplicateFace, i)
		}
		seen[i] = true
		f := s.faces[i-1]
		if f.Kind != Planar || d3.IsZero(f.Up, dirTol) {
			return nil, fmt.Errorf("%w: face %d has no fold direction", ErrNotSheetEdge, i)
		}
		if math.Abs(f.Width-op.Thickness) > geomTol*math.Max(1, op.Thickness) {
			return nil, fmt.Errorf("%w: face %d is %g wide, sheet is %g thick", ErrNotSheetEdge, i, f.Width, op.Thickness)
		}
		u := f.Up
		if op.Flipped {
			u = r3.Scale(-1, u)
		}
		edges = append(edges, edge{index: i, c: f.Centroid, n: f.Normal, u: u, e: f.Edge, length: f.Length})
	}
	return edges, nil
}

// miter extends the walls of edges that meet at a corner so that each
// reaches the far side of its neighbour's wall, closing the gap left by
// the bends.
func miter(edges []edge, op sheetmetal.FoldOp) {
	band := op.Radius + op.Thickness + geomTol
	for i := range edges {
		f := &edges[i]
		for j, g := range edges {
			if i == j || math.Abs(r3.Dot(f.e, g.e)) > dirTol {
				continue
			}
			d := r3.Sub(g.c, f.c)
			if math.Abs(r3.Dot(d, r3.Unit(r3.Cross(f.e, g.e)))) > geomTol {
				continue // not in the same plane.
			}
			along := r3.Dot(d, f.e)
			if math.Abs(math.Abs(along)-f.length/2) > band ||
				math.Abs(math.Abs(r3.Dot(d, g.e))-g.length/2) > band {
				continue // edges do not meet at their ends.
			}
			end, dir := 1, f.e
			if along < 0 {
				end, dir = 0, r3.Scale(-1, f.e)
			}
			ext := r3.Dot(d, dir) + g.reach(dir, op) - f.length/2
			if ext > f.ext[end] {
				f.ext[end] = ext
			}
		}
	}
}

// reach returns how far the wall folded from e extends along unit direction
// d, measured from the face centroid.
func (e edge) reach(d r3.Vec, op sheetmetal.FoldOp) float64 {
	r, t := op.Radius, op.Thickness
	dn, du := r3.Dot(e.n, d), r3.Dot(e.u, d)
	return math.Max(r*dn, (r+t)*dn) +
		math.Max((t/2+r)*du, (t/2+r+op.Length)*du) +
		e.length/2*math.Abs(r3.Dot(e.e, d))
}

func (s *Solid) fold(edges []edge, op sheetmetal.FoldOp) *Solid {
	r, t, h := op.Radius, op.Thickness, op.Length
	selected := make(map[int]bool, len(edges))
	for _, e := range edges {
		selected[e.index] = true
	}
	faces := make([]Face, 0, len(s.faces)+7*len(edges))
	for i, f := range s.faces {
		if !selected[i+1] {
			faces = append(faces, f)
		}
	}
	parts := append(make([]SDF3, 0, len(s.parts)+2*len(edges)), s.parts...)
	for _, e := range edges {
		// Bend axis.
		a := r3.Add(e.c, r3.Scale(t/2+r, e.u))
		parts = append(parts, newBend(d3.Frame{Origin: a, X: r3.Scale(-1, e.u), Y: e.n, Z: e.e}, r, t, e.length))
		sweep := r3.Sub(e.n, e.u) // direction of the bend centroid from the axis, unnormalized.
		if r > 0 {
			faces = append(faces, Face{
				Kind:     Cylindrical,
				Normal:   e.u,
				Centroid: r3.Add(a, r3.Scale(2*r/math.Pi, sweep)),
				Edge:     e.e,
				Length:   e.length,
				Width:    math.Pi * r / 2,
			})
		}
		faces = append(faces, Face{
			Kind:     Cylindrical,
			Normal:   r3.Scale(-1, e.u),
			Centroid: r3.Add(a, r3.Scale(2*(r+t)/math.Pi, sweep)),
			Edge:     e.e,
			Length:   e.length,
			Width:    math.Pi * (r + t) / 2,
		})

		wl := e.length + e.ext[0] + e.ext[1]
		pc := r3.Add(a, r3.Scale(r+t/2, e.n))
		pc = r3.Add(pc, r3.Scale(h/2, e.u))
		pc = r3.Add(pc, r3.Scale((e.ext[1]-e.ext[0])/2, e.e))
		parts = append(parts, newPlate(d3.Frame{Origin: pc, X: e.e, Y: e.u, Z: e.n}, r3.Vec{X: wl, Y: h, Z: t}))
		faces = append(faces,
			Face{Normal: r3.Scale(-1, e.n), Centroid: r3.Sub(pc, r3.Scale(t/2, e.n)), Edge: e.e, Length: wl, Width: h},
			Face{Normal: e.n, Centroid: r3.Add(pc, r3.Scale(t/2, e.n)), Edge: e.e, Length: wl, Width: h},
			Face{Normal: r3.Scale(-1, e.e), Centroid: r3.Sub(pc, r3.Scale(wl/2, e.e)), Edge: e.u, Length: h, Width: t, Up: e.n},
			Face{Normal: e.e, Centroid: r3.Add(pc, r3.Scale(wl/2, e.e)), Edge: e.u, Length: h, Width: t, Up: e.n},
			Face{Normal: e.u, Centroid: r3.Add(pc, r3.Scale(h/2, e.u)), Edge: e.e, Length: wl, Width: t, Up: e.n},
		)
	}
	return newSolid(faces, parts)
}
