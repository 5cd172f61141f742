// Package pkg provides the core libraries for Ringtower, a modular ring tower
// designer.
//
// # Overview
//
// Ringtower arranges copies of a single module template (a GLB mesh) along a
// stack of circular rings. Each ring is described by four coupled parameters
// (module count, arc, scale and radius); pinning any three solves the
// fourth. Editing one ring cascades down the stack so every ring keeps
// resting on the one below. The pkg directory is organized into three areas:
//
//  1. Domain logic ([ring], [placement], [paint])
//  2. Assets and formats ([template], [container], [scene])
//  3. Orchestration and infrastructure ([pipeline], [store], [cache],
//     [server], [httputil], [observability], [errors])
//
// # Architecture
//
// The data flow for one edit:
//
//	Command (SetParam, Paint, ImportSnapshot, ...)
//	         ↓
//	    [ring] package (solve + cascade)
//	         ↓
//	    [placement] package (instances with carried-over colors)
//	         ↓
//	    [scene] package (renderer tree, container build)
//	         ↓
//	    [container] package (color + snapshot patch)
//	         ↓
//	    [store] package (file, SQLite, Redis or MongoDB)
//
// # Quick Start
//
// Solve a ring set without any template:
//
//	set := ring.NewSet()
//	set.Add()
//	if err := set.SetParam(1, ring.Scale, 2); err != nil {
//	    return err
//	}
//	r, _ := set.At(1) // r.Radius follows the new scale
//
// Drive a full session:
//
//	studio, err := pipeline.NewStudio(pipeline.Options{
//	    Template: "module.glb",
//	    Store:    st,
//	})
//	if err != nil {
//	    return err
//	}
//	go studio.Run(ctx)
//	_ = studio.Apply(ctx, pipeline.SetLayers{Ring: 0, Layers: 4})
//	res, err := studio.Export(ctx, "tower.glb")
//
// # Main Packages
//
// [ring] - Ring parameters, the four-way solver, the vertical cascade and
// the snapshot format embedded in exports. Ring files are TOML.
//
// [placement] - Expands a solved ring set into per-module instances with
// transforms, paint keys and lock/visibility flags.
//
// [paint] - Colors, paint keys (ring-R.layer-L.module-M) and the color map
// that survives regeneration.
//
// [template] - Loads the module template from a file or URL, with retries
// and a content-addressed cache.
//
// [container] - Binary GLB reader/writer and the patcher that writes colors
// and the ring snapshot into an exported asset.
//
// [scene] - Renderer-facing tree of rings and instances, container build,
// and the Graphviz ring plan.
//
// [pipeline] - The [pipeline.Studio]: a single command queue plus a
// coalescing regeneration scheduler.
//
// [store] - Named asset persistence with file, SQLite, Redis and MongoDB
// backends.
//
// [server] - HTTP API over a running studio.
//
// # Testing
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/ring/...         # Specific package
//	go test -run Example ./pkg/... # Examples only
//
// [ring]: https://pkg.go.dev/github.com/matzehuels/ringtower/pkg/ring
// [placement]: https://pkg.go.dev/github.com/matzehuels/ringtower/pkg/placement
// [paint]: https://pkg.go.dev/github.com/matzehuels/ringtower/pkg/paint
// [template]: https://pkg.go.dev/github.com/matzehuels/ringtower/pkg/template
// [container]: https://pkg.go.dev/github.com/matzehuels/ringtower/pkg/container
// [scene]: https://pkg.go.dev/github.com/matzehuels/ringtower/pkg/scene
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/ringtower/pkg/pipeline
// [pipeline.Studio]: https://pkg.go.dev/github.com/matzehuels/ringtower/pkg/pipeline#Studio
// [store]: https://pkg.go.dev/github.com/matzehuels/ringtower/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/ringtower/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/ringtower/pkg/server
// [httputil]: https://pkg.go.dev/github.com/matzehuels/ringtower/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/ringtower/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/ringtower/pkg/errors
package pkg
