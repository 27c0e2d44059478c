package render

import (
	"errors"
	"image"
	"image/png"
	"io"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/sheetmetal/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// View configures the camera of a preview. The model is fitted into a
// bi-unit cube centered at the origin before it is drawn.
type View struct {
	// LookAt is the point the camera looks at.
	LookAt r3.Vec
	// Up is the direction that points up in the image.
	Up r3.Vec
	// Eye is the camera position.
	Eye       r3.Vec
	Near, Far float64
	// Width and Height of the output image in pixels.
	Width, Height int
	// Supersampling factor used for antialiasing.
	Scale int
}

// DefaultView is an isometric view with Z pointing up.
func DefaultView() View {
	return View{
		Up:     r3.Vec{Z: 1},
		Eye:    d3.Elem(2.4),
		Near:   1,
		Far:    10,
		Width:  768,
		Height: 432,
		Scale:  1,
	}
}

// Preview draws model with a phong shader as seen from v.
func Preview(model []Triangle3, v View) (image.Image, error) {
	if len(model) == 0 {
		return nil, errors.New("empty triangle slice")
	}
	if v.Width <= 0 || v.Height <= 0 {
		return nil, errors.New("preview size must be positive")
	}
	if v.Scale < 1 {
		v.Scale = 1
	}
	const fovy = 30 // vertical field of view in degrees.
	vec := func(a r3.Vec) fauxgl.Vector { return fauxgl.V(a.X, a.Y, a.Z) }
	var (
		eye    = vec(v.Eye)
		center = vec(v.LookAt)
		up     = vec(v.Up)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
		color  = fauxgl.HexColor("#468966")
	)
	tris := make([]*fauxgl.Triangle, len(model))
	for i, t := range model {
		tris[i] = fauxgl.NewTriangleForPoints(vec(t.V[0]), vec(t.V[1]), vec(t.V[2]))
	}
	mesh := fauxgl.NewTriangleMesh(tris)
	mesh.BiUnitCube()

	context := fauxgl.NewContext(v.Width*v.Scale, v.Height*v.Scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(v.Width) / float64(v.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, v.Near, v.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(mesh)
	img := context.Image()
	if v.Scale > 1 {
		img = resize.Resize(uint(v.Width), uint(v.Height), img, resize.Bilinear)
	}
	return img, nil
}

// WritePNG writes a preview of model to w as a PNG image.
func WritePNG(w io.Writer, model []Triangle3, v View) error {
	img, err := Preview(model, v)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// SavePNG writes a preview of model to a PNG file at path.
func SavePNG(path string, model []Triangle3, v View) error {
	img, err := Preview(model, v)
	if err != nil {
		return err
	}
	return fauxgl.SavePNG(path, img)
}
