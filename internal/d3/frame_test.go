package d3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestFrameLocalWorld(t *testing.T) {
	f := Frame{
		Origin: r3.Vec{X: 1, Y: 2, Z: 3},
		X:      r3.Vec{Y: 1},
		Y:      r3.Vec{Z: -1},
		Z:      r3.Vec{X: -1},
	}
	p := r3.Vec{X: 4, Y: -5, Z: 6}
	assert.True(t, EqualWithin(p, f.World(f.Local(p)), 1e-12))
	assert.Equal(t, r3.Vec{X: -7, Y: -3, Z: -3}, f.Local(p))
}

func TestFrameBounds(t *testing.T) {
	f := Frame{Origin: r3.Vec{X: 10}, X: r3.Vec{Y: 1}, Y: r3.Vec{X: -1}, Z: r3.Vec{Z: 1}}
	local := Box{Min: r3.Vec{X: -2, Y: -1, Z: 0}, Max: r3.Vec{X: 2, Y: 1, Z: 3}}
	want := Box{Min: r3.Vec{X: 9, Y: -2}, Max: r3.Vec{X: 11, Y: 2, Z: 3}}
	assert.True(t, f.Bounds(local).Equals(want, 1e-12), "%+v", f.Bounds(local))
}

func TestBoxScaleAboutCenter(t *testing.T) {
	b := Box{Max: r3.Vec{X: 2, Y: 4, Z: 6}}.ScaleAboutCenter(2)
	assert.Equal(t, Box{Min: r3.Vec{X: -1, Y: -2, Z: -3}, Max: r3.Vec{X: 3, Y: 6, Z: 9}}, b)
}
