package render

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"
)

// Binary STL layout: an 80 byte free text header, a little endian uint32
// triangle count and 50 bytes per triangle.
const (
	stlHeaderSize   = 80
	stlPreambleSize = stlHeaderSize + 4
	stlFacetSize    = 50
)

var (
	// ErrNormalMismatch is returned by ReadSTL when a stored normal does not
	// match the normal calculated from the triangle vertices.
	ErrNormalMismatch = errors.New("triangle normal not approximately equal to calculated normal from vertices")
	// ErrSTLHeader is returned for a header starting with "solid", which
	// readers take for an ASCII STL file.
	ErrSTLHeader = errors.New(`binary STL header must not start with "solid"`)

	errEmptyModel = errors.New("empty triangle slice")
)

// STL is the content of a binary STL file.
type STL struct {
	// Header is the free text header with its NUL padding removed.
	Header    string
	Triangles []Triangle3
}

// WriteSTL writes model to w in binary STL format. Headers longer than 80
// bytes are truncated.
func WriteSTL(w io.Writer, header string, model []Triangle3) error {
	if len(model) == 0 {
		return errEmptyModel
	}
	pre, err := stlPreamble(header, uint32(len(model)))
	if err != nil {
		return err
	}
	if _, err := w.Write(pre[:]); err != nil {
		return err
	}
	sw := stlWriter{w: w}
	return sw.write(model)
}

// CreateSTL streams the triangles of r into a binary STL file at path.
// Headers longer than 80 bytes are truncated.
func CreateSTL(path, header string, r Renderer) (err error) {
	if _, err := stlPreamble(header, 0); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	// The triangle count is known once r is drained, the preamble goes last.
	if _, err = file.Seek(stlPreambleSize, io.SeekStart); err != nil {
		return err
	}
	bw := bufio.NewWriterSize(file, stlFacetSize*trianglesInBuffer)
	sw := stlWriter{w: bw}
	buf := make([]Triangle3, trianglesInBuffer)
	for {
		n, rerr := r.ReadTriangles(buf)
		if err = sw.write(buf[:n]); err != nil {
			return err
		}
		if errors.Is(rerr, io.EOF) {
			break
		} else if rerr != nil {
			return rerr
		}
	}
	if sw.count == 0 {
		return errEmptyModel
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	pre, _ := stlPreamble(header, sw.count)
	_, err = file.WriteAt(pre[:], 0)
	return err
}

// ReadSTL reads a binary STL file. When stored normals disagree with the
// vertex winding the file is returned along with ErrNormalMismatch.
func ReadSTL(r io.Reader) (STL, error) {
	var pre [stlPreambleSize]byte
	if _, err := io.ReadFull(r, pre[:]); err != nil {
		return STL{}, fmt.Errorf("reading STL header: %w", err)
	}
	out := STL{Header: strings.TrimRight(string(pre[:stlHeaderSize]), "\x00")}
	count := binary.LittleEndian.Uint32(pre[stlHeaderSize:])
	if count == 0 {
		return out, errors.New("STL header indicates 0 triangles present")
	}
	out.Triangles = make([]Triangle3, 0, min(count, 1<<20))
	var (
		buf      [stlFacetSize]byte
		f        stlFacet
		mismatch error
	)
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return STL{}, fmt.Errorf("%d/%d STL triangles read: %w", i, count, err)
		}
		f.get(buf[:])
		if err := f.validate(); errors.Is(err, ErrNormalMismatch) {
			mismatch = err
		} else if err != nil {
			return STL{}, fmt.Errorf("STL triangle %d: %w", i, err)
		}
		out.Triangles = append(out.Triangles, f.triangle())
	}
	return out, mismatch
}

func stlPreamble(header string, count uint32) (pre [stlPreambleSize]byte, err error) {
	if strings.HasPrefix(strings.TrimLeft(header, " "), "solid") {
		return pre, ErrSTLHeader
	}
	copy(pre[:stlHeaderSize], header)
	binary.LittleEndian.PutUint32(pre[stlHeaderSize:], count)
	return pre, nil
}

// stlWriter encodes triangles as STL facets and counts them.
type stlWriter struct {
	w     io.Writer
	buf   [stlFacetSize]byte
	count uint32
}

func (sw *stlWriter) write(model []Triangle3) error {
	for _, t := range model {
		newSTLFacet(t).put(sw.buf[:])
		if _, err := sw.w.Write(sw.buf[:]); err != nil {
			return err
		}
		sw.count++
	}
	return nil
}

// stlFacet is a triangle as stored in STL: the normal followed by the
// three vertices.
type stlFacet [4][3]float32

func newSTLFacet(t Triangle3) stlFacet {
	f32 := func(v r3.Vec) [3]float32 { return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)} }
	return stlFacet{f32(t.Normal()), f32(t.V[0]), f32(t.V[1]), f32(t.V[2])}
}

func (f stlFacet) put(b []byte) {
	_ = b[stlFacetSize-1]
	for i, v := range f {
		for j, c := range v {
			binary.LittleEndian.PutUint32(b[12*i+4*j:], math.Float32bits(c))
		}
	}
	binary.LittleEndian.PutUint16(b[48:], 0) // attribute byte count
}

func (f *stlFacet) get(b []byte) {
	_ = b[stlFacetSize-1]
	for i := range f {
		for j := range f[i] {
			f[i][j] = math.Float32frombits(binary.LittleEndian.Uint32(b[12*i+4*j:]))
		}
	}
}

func (f stlFacet) triangle() Triangle3 {
	f64 := func(v [3]float32) r3.Vec { return r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])} }
	return Triangle3{V: [3]r3.Vec{f64(f[1]), f64(f[2]), f64(f[3])}}
}

func (f stlFacet) validate() error {
	const normTol = 5e-2
	for _, v := range f {
		for _, c := range v {
			if math32.IsNaN(c) || math32.IsInf(c, 0) {
				return errors.New("inf/NaN value in STL triangle")
			}
		}
	}
	if f[1] == f[2] || f[2] == f[3] || f[3] == f[1] {
		return errors.New("triangle is degenerate")
	}
	n := f.triangle().Normal()
	calc := [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
	neg := [3]float32{-calc[0], -calc[1], -calc[2]}
	if !equalWithin3F32(calc, f[0], normTol) && !equalWithin3F32(neg, f[0], normTol) {
		return ErrNormalMismatch
	}
	return nil
}

func equalWithin3F32(a, b [3]float32, tol float32) bool {
	return math32.Abs(a[0]-b[0]) <= tol &&
		math32.Abs(a[1]-b[1]) <= tol &&
		math32.Abs(a[2]-b[2]) <= tol
}
