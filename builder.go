package sheetmetal

import (
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r3"
)

// Face selection thresholds. They compare unit normals against the
// coordinate axes and assume the base profile is axis aligned.
const (
	// axisTol selects a side face of the flat profile by the sign of a
	// single normal component.
	axisTol = 0.5
	// verticalTol selects faces pointing straight up.
	verticalTol = 0.9999
)

// Solid is a solid produced by a Kernel. Faces are addressed by 1-based
// index in the range [1, NumFaces()].
type Solid interface {
	NumFaces() int
	// FaceNormal returns the outward unit normal of face i at its
	// parametric origin.
	FaceNormal(i int) r3.Vec
	// FaceCentroid returns the center of gravity of face i.
	FaceCentroid(i int) r3.Vec
}

// FoldOp describes one fold round: every face in Faces is extruded by Length
// through a bend of radius Radius.
type FoldOp struct {
	Thickness float64
	// Faces holds 1-based face indices of the source solid.
	Faces  []int
	Length float64
	Radius float64
	// Flipped reverses the fold direction.
	Flipped bool
	// AutoMiter closes the corners where two folded faces meet.
	AutoMiter bool
}

// Kernel is the geometry backend a base shape is built with.
type Kernel interface {
	// MakeBox returns an axis aligned box with one corner at the origin.
	MakeBox(x, y, z float64) (Solid, error)
	// Fold applies op to src. It must fail on an empty or inconsistent
	// face selection instead of returning an invalid solid.
	Fold(src Solid, op FoldOp) (Solid, error)
}

// Result is the outcome of a successful build.
type Result struct {
	Solid      Solid
	Dimensions Dimensions
	// Folds lists the fold rounds in the order they were applied.
	Folds []FoldOp
}

// Builder builds base shapes with a Kernel. A Builder holds no state between
// builds and may be used concurrently if its Kernel allows it.
type Builder struct {
	k   Kernel
	log zerolog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger fold rounds and clamped dimensions are
// reported to at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Builder) { b.log = l }
}

// NewBuilder returns a Builder that uses k.
func NewBuilder(k Kernel, opts ...Option) *Builder {
	if k == nil {
		panic("nil Kernel")
	}
	b := &Builder{k: k, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the folded solid for typ and p using kernel k.
func Build(k Kernel, typ ShapeType, p Parameters) (Solid, error) {
	res, err := NewBuilder(k).Build(typ, p)
	if err != nil {
		return nil, err
	}
	return res.Solid, nil
}

// Build compensates p, folds the walls of a flat base profile and, for Hat
// and Box shapes, folds a flange onto the wall tops. No solid is returned
// if any kernel call fails.
func (b *Builder) Build(typ ShapeType, p Parameters) (Result, error) {
	if typ < LShape || typ > Box {
		return Result{}, &ParameterError{Field: "type", Reason: "unknown shape type " + typ.String()}
	}
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	dim := Compensate(typ, p)
	log := b.log.With().Stringer("shape", typ).Logger()
	if len(dim.Clamped) > 0 {
		log.Debug().Strs("clamped", dim.Clamped).Float64("thickness", p.Thickness).Msg("dimensions clamped to thickness")
	}

	base, err := b.k.MakeBox(dim.Length, dim.Width, p.Thickness)
	if err != nil {
		return Result{}, &GeometryError{Step: "base profile", Err: err}
	}
	walls := FoldOp{
		Thickness: p.Thickness,
		Faces:     SelectWalls(base, dim.Folds),
		Length:    dim.Height,
		Radius:    p.Radius,
		AutoMiter: p.FillGaps,
	}
	log.Debug().Ints("faces", walls.Faces).Float64("length", walls.Length).Msg("folding walls")
	shape, err := b.k.Fold(base, walls)
	if err != nil {
		return Result{}, &GeometryError{Step: "wall fold", Err: err}
	}
	res := Result{Solid: shape, Dimensions: dim, Folds: []FoldOp{walls}}
	if !typ.hasFlange() {
		return res, nil
	}

	flange := FoldOp{
		Thickness: p.Thickness,
		Faces:     SelectFlanges(shape, dim.Compensation),
		Length:    dim.FlangeWidth,
		Radius:    p.Radius,
		Flipped:   typ == Hat,
		AutoMiter: p.FillGaps,
	}
	log.Debug().Ints("faces", flange.Faces).Float64("length", flange.Length).Bool("flipped", flange.Flipped).Msg("folding flange")
	shape, err = b.k.Fold(shape, flange)
	if err != nil {
		return Result{}, &GeometryError{Step: "flange fold", Err: err}
	}
	res.Solid = shape
	res.Folds = append(res.Folds, flange)
	return res, nil
}

// SelectWalls returns the faces of the flat profile that rise into walls.
// The +Y edge is always folded, followed by -Y, +X and -X as folds grows.
func SelectWalls(profile Solid, folds int) []int {
	var faces []int
	for i := 1; i <= profile.NumFaces(); i++ {
		v := profile.FaceNormal(i)
		if v.Y > axisTol ||
			(v.Y < -axisTol && folds > 1) ||
			(v.X > axisTol && folds > 2) ||
			(v.X < -axisTol && folds > 3) {
			faces = append(faces, i)
		}
	}
	return faces
}

// SelectFlanges returns the upward facing faces of s lying above comp,
// which after a wall fold are the wall tops.
func SelectFlanges(s Solid, comp float64) []int {
	var faces []int
	for i := 1; i <= s.NumFaces(); i++ {
		if s.FaceNormal(i).Z > verticalTol && s.FaceCentroid(i).Z > comp {
			faces = append(faces, i)
		}
	}
	return faces
}
