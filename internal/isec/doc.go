// Package isec models an Integrated Storage/Exchange Column: an ordered stack
// of solid layers that exchange heat by conduction with their immediate
// neighbours.
//
//   - [Layer]: one slab with its own material, geometry and thermal state
//   - [FluxComputer]: the capability that distinguishes passive layers from
//     generating ones
//   - [Stack]: the ordered column, enforcing a single shape family
//
// Layers never hold references to their neighbours. Neighbours are found by
// position in the owning stack with [Stack.Below] and [Stack.Above].
//
// # Thread Safety
//
// A Stack and its layers are NOT safe for concurrent use. A single driver
// must own the stack for the duration of a run.
package isec
