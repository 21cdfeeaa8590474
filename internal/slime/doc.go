// Package slime provides the primitives shared by the Physarum kernel.
//
// The kernel is split across a few packages:
//
//   - [field.Field]: trail and nutrient grids agents sense and mark
//   - [agents.Population]: per-agent position, heading and carried nutrient
//   - [params.Set]: the ordered, named parameter table
//   - [sim.Engine]: owns all of the above and sequences a step
//
// This package holds what they have in common: the error taxonomy and the
// toroidal addressing helpers every grid lookup goes through.
//
// # Addressing
//
// Grids are row-major with index y*W + x. Continuous coordinates map to a
// cell by rounding half away from zero and wrapping modulo the grid size:
//
//	i := slime.CellIndex(x, y, w, h)
//
// # Thread Safety
//
// Nothing in this package holds state. The helpers are safe to call from
// any goroutine.
package slime
