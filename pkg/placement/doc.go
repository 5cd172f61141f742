// Package placement expands solved rings into positioned module instances.
//
// For each ring the generator walks layers bottom to top and modules around
// the arc. Odd layers are staggered by half a module step (brick bond), and
// the whole ring can be rotated in half steps through its origin module.
//
// # Transforms
//
// A module template is modelled with its pivot on the ring axis and its
// outward direction along +X, sitting BaseRadius away from the axis at unit
// scale. Each instance:
//
//   - rotates the template by −θ about +Y, which maps +X onto (cosθ, 0, sinθ)
//   - scales it uniformly by the ring's scale
//   - lifts it to the layer height
//   - pushes it outward by BaseRadius·(radius−1), unscaled
//
// The radial push is deliberately not multiplied by scale: scale sizes one
// module while radius widens the ring, so the same module size can be reused
// at different diameters.
//
// # Resources
//
// [Collection] owns the live instance set. [Collection.Replace] releases every
// resource bound to the previous set before binding the new one, so a
// regeneration never holds two sets at once.
package placement
