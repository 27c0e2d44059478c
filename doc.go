// Package sheetmetal builds parametric sheet metal base shapes.
//
// A base shape is a flat rectangle of sheet whose edges are folded up into
// walls (L-Shape, U-Shape, Tub) and, for the Hat and Box shapes, whose wall
// tops are folded a second time into a flange. Dimensions given by the user
// are outer dimensions; Compensate converts them into the working dimensions
// the geometry kernel is fed with, accounting for the material consumed by
// every 90 degree bend (thickness + radius).
//
// The package does not construct geometry itself. It drives a Kernel which
// provides two primitives: MakeBox and Fold. The kernel subpackage provides
// a signed distance function implementation.
//
//	k := kernel.New()
//	solid, err := sheetmetal.Build(k, sheetmetal.Box, sheetmetal.DefaultParameters())
//
// Faces are addressed by their 1-based index within a single solid. Indices
// are reassigned by every fold and never persist across builds.
package sheetmetal
