package render

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

var unitCube = [8]r3.Vec{
	{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
	{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
}

func TestTetraEmptyCube(t *testing.T) {
	var dst [mtMaxTriangles]Triangle3
	outside := [8]float64{1, 1, 1, 1, 1, 1, 1, 1}
	if n := mtToTriangles(dst[:], unitCube, outside, 0); n != 0 {
		t.Errorf("cube outside surface gave %d triangles", n)
	}
	inside := [8]float64{-1, -1, -1, -1, -1, -1, -1, -1}
	if n := mtToTriangles(dst[:], unitCube, inside, 0); n != 0 {
		t.Errorf("cube inside surface gave %d triangles", n)
	}
}

func TestTetraCornerInside(t *testing.T) {
	var dst [mtMaxTriangles]Triangle3
	values := [8]float64{-1, 1, 1, 1, 1, 1, 1, 1}
	n := mtToTriangles(dst[:], unitCube, values, 0)
	// Every tetrahedron shares corner 0.
	if n != 6 {
		t.Fatalf("got %d triangles, want 6", n)
	}
	for _, tri := range dst[:n] {
		if r3.Dot(tri.Normal(), r3.Vec{X: 1, Y: 1, Z: 1}) <= 0 {
			t.Errorf("normal %v points toward the inside corner", tri.Normal())
		}
		for _, v := range tri.V {
			if v.X+v.Y+v.Z > 1.5+1e-12 {
				t.Errorf("vertex %v past the cut plane", v)
			}
		}
	}
}

func TestTetraPlane(t *testing.T) {
	const tol = 1e-12
	var dst [mtMaxTriangles]Triangle3
	// Surface z = 0.25, inside below.
	var values [8]float64
	for i, p := range unitCube {
		values[i] = p.Z - 0.25
	}
	n := mtToTriangles(dst[:], unitCube, values, 0)
	if n == 0 {
		t.Fatal("no triangles for plane through cube")
	}
	var area float64
	for _, tri := range dst[:n] {
		if math.Abs(tri.Normal().Z-1) > tol {
			t.Errorf("normal %v, want +Z", tri.Normal())
		}
		for _, v := range tri.V {
			if math.Abs(v.Z-0.25) > tol {
				t.Errorf("vertex %v off the plane", v)
			}
		}
		area += r3.Norm(r3.Cross(r3.Sub(tri.V[1], tri.V[0]), r3.Sub(tri.V[2], tri.V[0]))) / 2
	}
	if math.Abs(area-1) > tol {
		t.Errorf("plane area %g, want 1", area)
	}
}

func TestTriangleDegenerate(t *testing.T) {
	a, b := r3.Vec{}, r3.Vec{X: 1}
	if !(Triangle3{V: [3]r3.Vec{a, b, b}}).Degenerate(1e-9) {
		t.Error("repeated vertex not degenerate")
	}
	if !(Triangle3{V: [3]r3.Vec{a, b, {X: 2}}}).Degenerate(1e-9) {
		t.Error("collinear vertices not degenerate")
	}
	tri := Triangle3{V: [3]r3.Vec{a, b, {Y: 1}}}
	if tri.Degenerate(1e-9) {
		t.Error("unit right triangle degenerate")
	}
	if got := tri.Normal(); got != (r3.Vec{Z: 1}) {
		t.Errorf("normal %v, want +Z", got)
	}
}
