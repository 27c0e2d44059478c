package render

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// mtMaxTriangles is the most triangles a cube can produce: six tetrahedra
// of up to two triangles each.
const mtMaxTriangles = 12

// cubeTetrahedra splits a cube into six tetrahedra sharing the 0-6 diagonal.
// Corners are numbered as in octree.processCube.
var cubeTetrahedra = [6][4]int{
	{0, 5, 1, 6},
	{0, 1, 2, 6},
	{0, 2, 3, 6},
	{0, 3, 7, 6},
	{0, 7, 4, 6},
	{0, 4, 5, 6},
}

// mtToTriangles writes the isosurface triangles of a cube into dst and
// returns how many were written. dst must have room for mtMaxTriangles.
func mtToTriangles(dst []Triangle3, p [8]r3.Vec, v [8]float64, x float64) int {
	n := 0
	// Sliver tolerance relative to the cube size keeps vertices distinct
	// once written as float32.
	tol := 1e-4 * r3.Norm(r3.Sub(p[1], p[0]))
	for _, tet := range cubeTetrahedra {
		var in, out [4]int
		var nin, nout int
		for _, c := range tet {
			if v[c] < x {
				in[nin] = c
				nin++
			} else {
				out[nout] = c
				nout++
			}
		}
		// Triangles face away from the inside of the surface.
		var ci, co r3.Vec
		for _, c := range in[:nin] {
			ci = r3.Add(ci, r3.Scale(1/float64(nin), p[c]))
		}
		for _, c := range out[:nout] {
			co = r3.Add(co, r3.Scale(1/float64(nout), p[c]))
		}
		outward := r3.Sub(co, ci)
		cross := func(a, b int) r3.Vec { return mtInterpolate(p[a], p[b], v[a], v[b], x) }
		switch nin {
		case 1:
			a := in[0]
			n += emitTriangle(dst[n:], tol, outward, cross(a, out[0]), cross(a, out[1]), cross(a, out[2]))
		case 3:
			b := out[0]
			n += emitTriangle(dst[n:], tol, outward, cross(in[0], b), cross(in[1], b), cross(in[2], b))
		case 2:
			ac, ad := cross(in[0], out[0]), cross(in[0], out[1])
			bc, bd := cross(in[1], out[0]), cross(in[1], out[1])
			n += emitTriangle(dst[n:], tol, outward, ac, ad, bd)
			n += emitTriangle(dst[n:], tol, outward, ac, bd, bc)
		}
	}
	return n
}

// emitTriangle writes the triangle abc to dst wound so its normal points
// along outward. Triangles degenerate within tol are dropped.
func emitTriangle(dst []Triangle3, tol float64, outward, a, b, c r3.Vec) int {
	t := Triangle3{V: [3]r3.Vec{a, b, c}}
	if t.Degenerate(tol) {
		return 0
	}
	if r3.Dot(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)), outward) < 0 {
		t.V[1], t.V[2] = c, b
	}
	dst[0] = t
	return 1
}

// mtInterpolate returns the point between p1 and p2 where the linearly
// interpolated field equals x.
func mtInterpolate(p1, p2 r3.Vec, v1, v2, x float64) r3.Vec {
	if v1 == v2 {
		return r3.Scale(0.5, r3.Add(p1, p2))
	}
	t := (x - v1) / (v2 - v1)
	return r3.Add(p1, r3.Scale(t, r3.Sub(p2, p1)))
}
