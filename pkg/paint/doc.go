// Package paint carries user-applied colors across regenerations.
//
// Every generated module instance is addressed by a structural [Key]: the
// ring index, layer and module index that produced it. Before a layout is
// rebuilt the live colors are captured into a [ColorMap]; afterwards each new
// instance looks up its key and keeps its color if one was recorded.
//
// Keys are monotonic. Growing a ring (more layers or modules) only adds new
// keys, so existing paint is never reassigned. Deleting a ring is the one
// edit that renumbers rings; [ColorMap.DropRing] drops the deleted ring's
// keys and shifts the rings above it so their colors follow them.
package paint
