package render

import (
	"errors"
	"io"
	"math"
	"sync"

	"github.com/soypat/sheetmetal/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// octree renders an SDF3 with marching tetrahedra over octree sampled cubes.
type octree struct {
	dc   *dc3
	todo []cube
	// pending holds triangles of a cube that did not fit the caller's slice.
	pending []Triangle3
}

// trianglesInBuffer is the size of the triangle slices used to drain a Renderer.
const trianglesInBuffer = 1 << 10

// RenderAll drains r and returns every triangle. Like io.ReadAll, io.EOF is
// not returned as an error.
func RenderAll(r Renderer) ([]Triangle3, error) {
	buf := make([]Triangle3, trianglesInBuffer)
	var model []Triangle3
	for {
		n, err := r.ReadTriangles(buf)
		model = append(model, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return model, nil
		} else if err != nil {
			return model, err
		}
	}
}

// index is an integer position on the sampling grid.
type index [3]int

func (a index) add(b index) index { return index{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }

func (a index) addScalar(s int) index { return index{a[0] + s, a[1] + s, a[2] + s} }

func (a index) vec() r3.Vec { return r3.Vec{X: float64(a[0]), Y: float64(a[1]), Z: float64(a[2])} }

type cube struct {
	index      // origin of cube as integers
	n     uint // level of cube, size = 1 << n
}

// NewOctreeRenderer returns a Renderer meshing s with marching tetrahedra.
// The longest side of the bounding box of s is sampled with meshCells cubes.
// It panics if meshCells is less than 2.
func NewOctreeRenderer(s SDF3, meshCells int) Renderer {
	if meshCells < 2 {
		panic("meshCells must be 2 or larger")
	}
	// Scale the bounding box about the center to make sure the boundaries
	// aren't on the object surface.
	bb := d3.Box(s.Bounds())
	bb = bb.ScaleAboutCenter(1.01)
	longAxis := d3.Max(bb.Size())
	// The smallest cube tested for emptiness has side resolution so the
	// level 0 cube is at half resolution.
	resolution := 0.5 * longAxis / float64(meshCells)
	levels := uint(math.Ceil(math.Log2(longAxis/resolution))) + 1

	divisions := r3.Scale(1/resolution, bb.Size())
	maxCubes := int(divisions.X) * int(divisions.Y) * int(divisions.Z)
	cubes := make([]cube, 1, max(1, maxCubes/64))
	cubes[0] = cube{index{}, levels - 1} // start at the top level
	return &octree{
		dc:   newDc3(s, bb.Min, resolution, levels),
		todo: cubes,
	}
}

// ReadTriangles writes triangles rendered from the model into dst and
// returns the number written. It returns io.EOF once the model is done.
func (oc *octree) ReadTriangles(dst []Triangle3) (n int, err error) {
	if len(dst) == 0 {
		panic("cannot write to empty triangle slice")
	}
	n = copy(dst, oc.pending)
	oc.pending = oc.pending[n:]
	switch {
	case n == len(dst):
		return n, nil
	case len(oc.todo) == 0:
		return n, io.EOF
	}
	n += oc.readTriangles(dst[n:])
	return n, nil
}

func (oc *octree) readTriangles(dst []Triangle3) (n int) {
	cubesProcessed := 0
	var newCubes []cube
	for _, cube := range oc.todo {
		if n == len(dst) {
			break
		}
		if n+mtMaxTriangles > len(dst) {
			// Not enough room in dst for a full cube, stash the rest.
			var tmp [mtMaxTriangles]Triangle3
			tri, cubes := oc.processCube(tmp[:], cube)
			written := copy(dst[n:], tmp[:tri])
			oc.pending = append(oc.pending, tmp[written:tri]...)
			n += written
			newCubes = append(newCubes, cubes...)
			cubesProcessed++
			break
		}
		tri, cubes := oc.processCube(dst[n:], cube)
		newCubes = append(newCubes, cubes...)
		cubesProcessed++
		n += tri
	}
	oc.todo = append(oc.todo, newCubes...)
	oc.todo = oc.todo[cubesProcessed:]
	return n
}

// processCube generates triangles for a level 1 cube or the non empty
// sub cubes of a larger one.
func (oc *octree) processCube(dst []Triangle3, c cube) (writtenTriangles int, newCubes []cube) {
	if c.n == 1 {
		var corners [8]r3.Vec
		var values [8]float64
		for i, off := range [8]index{
			{0, 0, 0}, {2, 0, 0}, {2, 2, 0}, {0, 2, 0},
			{0, 0, 2}, {2, 0, 2}, {2, 2, 2}, {0, 2, 2},
		} {
			corners[i], values[i] = oc.dc.Evaluate(c.add(off))
		}
		return mtToTriangles(dst, corners, values, 0), nil
	}
	n := c.n - 1
	s := 1 << n
	for _, off := range [8]index{
		{0, 0, 0}, {s, 0, 0}, {s, s, 0}, {0, s, 0},
		{0, 0, s}, {s, 0, s}, {s, s, s}, {0, s, s},
	} {
		candidate := cube{c.add(off), n}
		if !oc.dc.IsEmpty(&candidate) {
			newCubes = append(newCubes, candidate)
		}
	}
	return 0, newCubes
}

// dc3 is a distance cache over the sampling grid. About two thirds of
// lookups hit the cache.
type dc3 struct {
	mu         sync.Mutex
	cache      map[index]float64
	origin     r3.Vec    // origin of the overall bounding cube
	resolution float64   // size of smallest octree cube
	hdiag      []float64 // lookup table of cube half diagonals
	s          SDF3
}

// Evaluate returns the position of grid point vi and the distance there.
func (dc *dc3) Evaluate(vi index) (r3.Vec, float64) {
	v := r3.Add(dc.origin, r3.Scale(dc.resolution, vi.vec()))
	dist, found := dc.read(vi)
	if found {
		return v, dist
	}
	dist = dc.s.Evaluate(v)
	dc.write(vi, dist)
	return v, dist
}

// IsEmpty returns true if the cube contains no surface.
func (dc *dc3) IsEmpty(c *cube) bool {
	s := 1 << (c.n - 1) // half side
	_, d := dc.Evaluate(c.addScalar(s))
	return math.Abs(d) >= dc.hdiag[c.n]
}

func newDc3(s SDF3, origin r3.Vec, resolution float64, n uint) *dc3 {
	if n >= 64 {
		panic("size of n must be less than size of word for hdiag generation")
	}
	dc := dc3{
		origin:     origin,
		resolution: resolution,
		hdiag:      make([]float64, n),
		s:          s,
		cache:      make(map[index]float64),
	}
	for i := range dc.hdiag {
		si := 1 << uint(i)
		s := float64(si) * dc.resolution
		dc.hdiag[i] = 0.5 * math.Sqrt(3.0*s*s)
	}
	return &dc
}

func (dc *dc3) read(vi index) (float64, bool) {
	dc.mu.Lock()
	dist, found := dc.cache[vi]
	dc.mu.Unlock()
	return dist, found
}

func (dc *dc3) write(vi index, dist float64) {
	dc.mu.Lock()
	dc.cache[vi] = dist
	dc.mu.Unlock()
}
