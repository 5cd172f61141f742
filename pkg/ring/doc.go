// Package ring models the parametric ring layers of a dome or tower.
//
// # Overview
//
// A [Ring] is one annular stack of repeated modules. Four coupled parameters
// describe it: the module count, the arc it spans (degrees), the uniform
// module scale and the radius multiplier. They are tied together by a single
// governing relation:
//
//	modules · scale = K · arc · BaseRadius · radius
//
// Between one and three parameters are pinned by the user ([Fixed]); the
// solver derives the remaining free ones so that the relation holds within
// the rounding step of each parameter.
//
// # Pipeline
//
//  1. Solve ([Solve]): normalize the pinned set, pick the primary free
//     parameter ([SelectAutoKey]) and recompute the free parameters.
//  2. Cascade ([Cascade]): stack each ring on top of the previous one unless
//     its vertical offset was set by hand.
//  3. Snapshot ([ToSnapshot], [FromSnapshot]): value-only serialization of a
//     whole [Set], embedded into exported containers.
//
// All mutation goes through [Set] methods, which always run Solve and
// Cascade afterwards. Out-of-range input is clamped, never rejected.
package ring
