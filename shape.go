package sheetmetal

import (
	"math"
	"strconv"
	"strings"
)

// ShapeType selects the fold topology of a base shape.
type ShapeType int

const (
	LShape ShapeType = iota
	UShape
	Tub
	Hat
	Box
)

var shapeNames = [...]string{
	LShape: "L-Shape",
	UShape: "U-Shape",
	Tub:    "Tub",
	Hat:    "Hat",
	Box:    "Box",
}

// ShapeTypes returns all shape types in declaration order.
func ShapeTypes() []ShapeType {
	return []ShapeType{LShape, UShape, Tub, Hat, Box}
}

func (t ShapeType) String() string {
	if t < 0 || int(t) >= len(shapeNames) {
		return "ShapeType(" + strconv.Itoa(int(t)) + ")"
	}
	return shapeNames[t]
}

// ParseShapeType returns the ShapeType named by tag. Matching ignores case
// so "box" and "Box" are equivalent.
func ParseShapeType(tag string) (ShapeType, error) {
	for i, name := range shapeNames {
		if strings.EqualFold(name, strings.TrimSpace(tag)) {
			return ShapeType(i), nil
		}
	}
	return 0, &ParameterError{Field: "type", Reason: "unknown shape type " + strconv.Quote(tag)}
}

// MarshalText implements encoding.TextMarshaler.
func (t ShapeType) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(shapeNames) {
		return nil, &ParameterError{Field: "type", Reason: "unknown shape type " + t.String()}
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ShapeType) UnmarshalText(b []byte) error {
	got, err := ParseShapeType(string(b))
	if err != nil {
		return err
	}
	*t = got
	return nil
}

// walls returns the number of edges folded in the first round.
func (t ShapeType) walls() int {
	switch t {
	case UShape:
		return 2
	case Tub, Hat, Box:
		return 4
	}
	return 1
}

// hasFlange reports whether a second fold round adds a top flange.
func (t ShapeType) hasFlange() bool { return t == Hat || t == Box }

// Parameters are the outer target dimensions of a base shape.
type Parameters struct {
	// Thickness of the sheet. Must be positive.
	Thickness float64
	// Radius is the inner bend radius. May be zero for sharp bends.
	Radius      float64
	Width       float64
	Length      float64
	Height      float64
	FlangeWidth float64
	// FillGaps extends walls and flanges so that corners are closed.
	FillGaps bool
}

// DefaultParameters returns the parameters a new base shape starts with.
func DefaultParameters() Parameters {
	return Parameters{
		Thickness:   1,
		Radius:      1,
		Width:       20,
		Length:      30,
		Height:      10,
		FlangeWidth: 5,
		FillGaps:    true,
	}
}

// BendCompensation is the straight material consumed by one 90 degree fold.
func (p Parameters) BendCompensation() float64 { return p.Thickness + p.Radius }

// Validate checks the raw parameters before any compensation is applied.
// Compensated dimensions are never rejected, they are clamped by Compensate.
func (p Parameters) Validate() error {
	fields := []struct {
		name   string
		v      float64
		allow0 bool
	}{
		{"thickness", p.Thickness, false},
		{"radius", p.Radius, true},
		{"width", p.Width, false},
		{"length", p.Length, false},
		{"height", p.Height, false},
		{"flange_width", p.FlangeWidth, false},
	}
	for _, f := range fields {
		switch {
		case math.IsNaN(f.v) || math.IsInf(f.v, 0):
			return &ParameterError{Field: f.name, Value: f.v, Reason: "not a finite number"}
		case f.v < 0 || (f.v == 0 && !f.allow0):
			reason := "must be positive"
			if f.allow0 {
				reason = "must not be negative"
			}
			return &ParameterError{Field: f.name, Value: f.v, Reason: reason}
		}
	}
	return nil
}

// Dimensions are the working dimensions handed to the geometry kernel.
type Dimensions struct {
	Width       float64
	Length      float64
	Height      float64
	FlangeWidth float64
	// Compensation is thickness + radius.
	Compensation float64
	// Folds is the number of walls folded in the first round: 1, 2 or 4.
	Folds int
	// Clamped lists the dimensions that were raised to the sheet thickness.
	Clamped []string
}

// Compensate subtracts the bend allowance from the outer dimensions of p.
// Every dimension that ends up below the sheet thickness is clamped to
// the thickness.
func Compensate(typ ShapeType, p Parameters) Dimensions {
	comp := p.BendCompensation()
	d := Dimensions{
		Width:        p.Width - comp,
		Length:       p.Length,
		Height:       p.Height - comp,
		FlangeWidth:  p.FlangeWidth,
		Compensation: comp,
		Folds:        typ.walls(),
	}
	switch typ {
	case UShape:
		d.Width -= comp
	case Tub, Hat, Box:
		d.Length -= 2 * comp
	}
	if typ.hasFlange() {
		d.Height -= comp
		d.FlangeWidth -= p.Radius
	}
	clamp := func(name string, v *float64) {
		if *v < p.Thickness {
			*v = p.Thickness
			d.Clamped = append(d.Clamped, name)
		}
	}
	clamp("width", &d.Width)
	clamp("height", &d.Height)
	clamp("length", &d.Length)
	clamp("flange_width", &d.FlangeWidth)
	return d
}
