// Package scene hands generated instances to the outside world.
//
// A [Tree] groups the live instances by ring; a [Renderer] consumes it. The
// package ships a JSON renderer, a logging renderer and a Graphviz "plan"
// of the ring stack. [BuildContainer] turns a tree plus the module template
// into a binary container that [container.Patch] can color and annotate.
package scene
