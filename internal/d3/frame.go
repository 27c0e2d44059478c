package d3

import "gonum.org/v1/gonum/spatial/r3"

// Frame is an orthonormal coordinate system placed at Origin.
// The axes must be unit length and mutually perpendicular.
type Frame struct {
	Origin  r3.Vec
	X, Y, Z r3.Vec
}

// Local returns the coordinates of world point p in the frame.
func (f Frame) Local(p r3.Vec) r3.Vec {
	d := r3.Sub(p, f.Origin)
	return r3.Vec{X: r3.Dot(d, f.X), Y: r3.Dot(d, f.Y), Z: r3.Dot(d, f.Z)}
}

// World returns the world position of a point given in frame coordinates.
func (f Frame) World(q r3.Vec) r3.Vec {
	p := r3.Add(f.Origin, r3.Scale(q.X, f.X))
	p = r3.Add(p, r3.Scale(q.Y, f.Y))
	return r3.Add(p, r3.Scale(q.Z, f.Z))
}

// Bounds returns the world bounding box of a box given in frame coordinates.
func (f Frame) Bounds(local Box) Box {
	vs := local.Vertices()
	for i := range vs {
		vs[i] = f.World(vs[i])
	}
	return Box{Min: vs.Min(), Max: vs.Max()}
}
