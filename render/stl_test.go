package render_test

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/soypat/sheetmetal"
	"github.com/soypat/sheetmetal/kernel"
	"github.com/soypat/sheetmetal/render"
	"gonum.org/v1/gonum/spatial/r3"
)

const quality = 60

func buildShape(t testing.TB, typ sheetmetal.ShapeType) *kernel.Solid {
	t.Helper()
	s, err := sheetmetal.Build(kernel.New(), typ, sheetmetal.DefaultParameters())
	if err != nil {
		t.Fatal(err)
	}
	return s.(*kernel.Solid)
}

// readSTL reads an STL file tolerating normal mismatches of thin slivers.
func readSTL(t *testing.T, b []byte) render.STL {
	t.Helper()
	stl, err := render.ReadSTL(bytes.NewReader(b))
	if err != nil && !errors.Is(err, render.ErrNormalMismatch) {
		t.Fatal(err)
	}
	return stl
}

func TestSTLCreateWriteRead(t *testing.T) {
	const header = "sheetmetal L-Shape t=1 r=1"
	shape := buildShape(t, sheetmetal.LShape)
	path := filepath.Join(t.TempDir(), "lshape.stl")
	err := render.CreateSTL(path, header, render.NewOctreeRenderer(shape, quality))
	if err != nil {
		t.Fatal(err)
	}
	bfile, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	model, err := render.RenderAll(render.NewOctreeRenderer(shape, quality))
	if err != nil {
		t.Fatal(err)
	}
	if len(model) == 0 {
		t.Fatal("no triangles rendered")
	}
	var b bytes.Buffer
	if err = render.WriteSTL(&b, header, model); err != nil {
		t.Fatal(err)
	}
	if b.Len() != len(bfile) {
		t.Fatal("WriteSTL and CreateSTL output length mismatch")
	}
	if !bytes.Equal(bfile, b.Bytes()) {
		t.Fatal("WriteSTL and CreateSTL output mismatch")
	}

	got := readSTL(t, bfile)
	if got.Header != header {
		t.Errorf("header %q, want %q", got.Header, header)
	}
	if len(got.Triangles) != len(model) {
		t.Fatalf("read %d triangles, want %d", len(got.Triangles), len(model))
	}
	for i, tri := range got.Triangles {
		for j, v := range tri.V {
			if d := r3.Norm(r3.Sub(v, model[i].V[j])); d > 1e-4 {
				t.Fatalf("triangle %d vertex %d moved %g", i, j, d)
			}
		}
	}
}

func TestSTLHeader(t *testing.T) {
	model, err := render.RenderAll(render.NewOctreeRenderer(buildShape(t, sheetmetal.Tub), 10))
	if err != nil {
		t.Fatal(err)
	}
	long := strings.Repeat("w=26 ", 20)
	for _, test := range []struct {
		header string
		want   string
	}{
		{"", ""},
		{"sheetmetal Tub t=1 r=1 w=16 l=26 h=8", "sheetmetal Tub t=1 r=1 w=16 l=26 h=8"},
		{long, long[:80]},
	} {
		var b bytes.Buffer
		if err := render.WriteSTL(&b, test.header, model); err != nil {
			t.Fatal(err)
		}
		if got := readSTL(t, b.Bytes()).Header; got != test.want {
			t.Errorf("header %q, want %q", got, test.want)
		}
	}

	var b bytes.Buffer
	if err := render.WriteSTL(&b, "solid part", model); !errors.Is(err, render.ErrSTLHeader) {
		t.Errorf("got %v, want ErrSTLHeader", err)
	}
	err = render.CreateSTL(filepath.Join(t.TempDir(), "x.stl"), "  solid", render.NewOctreeRenderer(buildShape(t, sheetmetal.Tub), 10))
	if !errors.Is(err, render.ErrSTLHeader) {
		t.Errorf("got %v, want ErrSTLHeader", err)
	}
}

func TestReadSTLErrors(t *testing.T) {
	if _, err := render.ReadSTL(bytes.NewReader(nil)); err == nil {
		t.Error("expected error reading empty file")
	}
	var header [84]byte
	if _, err := render.ReadSTL(bytes.NewReader(header[:])); err == nil {
		t.Error("expected error for zero triangles")
	}
	// Count of one with a truncated facet.
	header[80] = 1
	if _, err := render.ReadSTL(bytes.NewReader(append(header[:], 0, 0, 0))); err == nil {
		t.Error("expected error for truncated triangle")
	}
	if err := render.WriteSTL(&bytes.Buffer{}, "", nil); err == nil {
		t.Error("expected error writing empty model")
	}
}

func TestOctreeMeshesSolid(t *testing.T) {
	shape := buildShape(t, sheetmetal.LShape)
	model, err := render.RenderAll(render.NewOctreeRenderer(shape, quality))
	if err != nil {
		t.Fatal(err)
	}

	bb, want := render.Bounds(model), shape.Bounds()
	const tol = 0.5
	for _, d := range []float64{
		bb.Min.X - want.Min.X, bb.Min.Y - want.Min.Y, bb.Min.Z - want.Min.Z,
		bb.Max.X - want.Max.X, bb.Max.Y - want.Max.Y, bb.Max.Z - want.Max.Z,
	} {
		if math.Abs(d) > tol {
			t.Fatalf("mesh bounds %v, want %v", bb, want)
		}
	}

	// Outward facing triangles enclose a positive volume: plate, bend and wall.
	var vol float64
	for _, tri := range model {
		vol += r3.Dot(tri.V[0], r3.Cross(tri.V[1], tri.V[2])) / 6
	}
	wantVol := 30*18*1 + math.Pi/4*(2*2-1*1)*30 + 30*8*1
	if math.Abs(vol-wantVol) > 0.1*wantVol {
		t.Errorf("mesh volume %g, want %g", vol, wantVol)
	}
}

func TestReadTrianglesSmallBuffer(t *testing.T) {
	shape := buildShape(t, sheetmetal.UShape)
	want, err := render.RenderAll(render.NewOctreeRenderer(shape, 20))
	if err != nil {
		t.Fatal(err)
	}

	r := render.NewOctreeRenderer(shape, 20)
	var got []render.Triangle3
	buf := make([]render.Triangle3, 5)
	for {
		n, err := r.ReadTriangles(buf)
		got = append(got, buf[:n]...)
		if err != nil {
			break
		}
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("read %d triangles with a small buffer, want the %d of RenderAll", len(got), len(want))
	}
}
