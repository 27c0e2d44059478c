package render_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	sdfxrender "github.com/deadsy/sdfx/render"
	"github.com/soypat/sheetmetal"
	"github.com/soypat/sheetmetal/render"
	"gonum.org/v1/gonum/spatial/r3"
)

const benchQuality = 300

// sdfxSolid evaluates one of our solids through the sdfx interface.
type sdfxSolid struct{ s render.SDF3 }

func (a sdfxSolid) Evaluate(p sdf.V3) float64 {
	return a.s.Evaluate(r3.Vec{X: p.X, Y: p.Y, Z: p.Z})
}

func (a sdfxSolid) BoundingBox() sdf.Box3 {
	bb := a.s.Bounds()
	return sdf.Box3{
		Min: sdf.V3{X: bb.Min.X, Y: bb.Min.Y, Z: bb.Min.Z},
		Max: sdf.V3{X: bb.Max.X, Y: bb.Max.Y, Z: bb.Max.Z},
	}
}

func BenchmarkSDFXBox(b *testing.B) {
	stdout := os.Stdout
	defer func() {
		os.Stdout = stdout // pesky sdfx prints out stuff
	}()
	os.Stdout, _ = os.Open(os.DevNull)
	output := filepath.Join(b.TempDir(), "sdfx_box.stl")
	object := sdfxSolid{buildShape(b, sheetmetal.Box)}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sdfxrender.ToSTL(object, benchQuality, output, &sdfxrender.MarchingCubesOctree{})
	}
}

func BenchmarkBox(b *testing.B) {
	output := filepath.Join(b.TempDir(), "our_box.stl")
	object := buildShape(b, sheetmetal.Box)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := render.CreateSTL(output, "sheetmetal Box", render.NewOctreeRenderer(object, benchQuality)); err != nil {
			b.Fatal(err)
		}
	}
}
