package kernel

import (
	"errors"
	"fmt"
	"runtime/debug"
)

var (
	// ErrEmptySelection is returned by Fold when no face is selected.
	ErrEmptySelection = errors.New("empty face selection")
	// ErrFaceIndex is returned for a face index outside [1, NumFaces].
	ErrFaceIndex = errors.New("face index out of range")
	// ErrDuplicateFace is returned when a fold selects the same face twice.
	ErrDuplicateFace = errors.New("face selected more than once")
	// ErrNotSheetEdge is returned when a selected face is not an edge face
	// as thick as the sheet being folded.
	ErrNotSheetEdge = errors.New("face is not a sheet edge")
	// ErrBadDimension is returned for non positive box sizes, fold lengths
	// or thicknesses and negative bend radii.
	ErrBadDimension = errors.New("bad dimension")
	// ErrForeignSolid is returned when Fold receives a solid made elsewhere.
	ErrForeignSolid = errors.New("solid was not created by this kernel")
)

// shapeErr is returned when building a solid panicked. Inputs are checked
// before building so it only surfaces when a primitive constructor rejects
// values the checks let through.
type shapeErr struct {
	panicObj interface{}
	stack    string
}

func (s *shapeErr) Error() string {
	return fmt.Sprintf("%s", s.panicObj)
}

// recoverShape turns a panic raised while building a solid into an error
// stored in err. It must be deferred directly.
func recoverShape(err *error) {
	if a := recover(); a != nil {
		*err = &shapeErr{
			panicObj: a,
			stack:    string(debug.Stack()),
		}
	}
}
