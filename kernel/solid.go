package kernel

import (
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"
)

// FaceKind is the surface type of a face.
type FaceKind uint8

const (
	Planar FaceKind = iota
	Cylindrical
)

func (k FaceKind) String() string {
	switch k {
	case Planar:
		return "planar"
	case Cylindrical:
		return "cylindrical"
	}
	return "FaceKind(" + strconv.Itoa(int(k)) + ")"
}

// Face is a bounded surface of a Solid.
type Face struct {
	Kind FaceKind
	// Normal is the outward unit normal at the parametric origin of the face.
	// For cylindrical faces this is the normal at the start of the bend.
	Normal   r3.Vec
	Centroid r3.Vec
	// Edge is the unit direction of the long side of a planar face or the
	// axis of a cylindrical face.
	Edge   r3.Vec
	Length float64
	// Width is the extent across Edge, the arc length for cylindrical faces.
	Width float64
	// Up is the direction the face is folded towards. It is the zero vector
	// for faces that are not the edge of a sheet.
	Up r3.Vec
}

// Solid is an immutable sheet metal solid. It is a union of plates and bends
// with its faces enumerated in a stable order.
type Solid struct {
	faces []Face
	parts []SDF3
	sdf   SDF3
}

func newSolid(faces []Face, parts []SDF3) *Solid {
	return &Solid{faces: faces, parts: parts, sdf: union(parts...)}
}

// NumFaces returns the number of faces of s.
func (s *Solid) NumFaces() int { return len(s.faces) }

// Face returns the face with 1-based index i. It panics if i is out of range.
func (s *Solid) Face(i int) Face {
	if i < 1 || i > len(s.faces) {
		panic("face index " + strconv.Itoa(i) + " out of range [1, " + strconv.Itoa(len(s.faces)) + "]")
	}
	return s.faces[i-1]
}

// Faces returns a copy of the faces of s in index order.
func (s *Solid) Faces() []Face {
	return append([]Face(nil), s.faces...)
}

func (s *Solid) FaceNormal(i int) r3.Vec { return s.Face(i).Normal }

func (s *Solid) FaceCentroid(i int) r3.Vec { return s.Face(i).Centroid }

// Parts returns the number of plates and bends s is made of.
func (s *Solid) Parts() int { return len(s.parts) }

// Evaluate returns the signed distance from p to the surface of s.
func (s *Solid) Evaluate(p r3.Vec) float64 { return s.sdf.Evaluate(p) }

// Bounds returns the bounding box of s.
func (s *Solid) Bounds() r3.Box { return s.sdf.Bounds() }

// Contains reports whether p lies inside or on the surface of s.
func (s *Solid) Contains(p r3.Vec) bool { return s.Evaluate(p) <= 0 }
