package scene

import (
	"math"

	"github.com/matzehuels/ringtower/pkg/container"
)

// nodeMembers are top-level template members that index nodes. The built
// scene renumbers every node, so they cannot be carried over.
var nodeMembers = []string{"skins", "animations"}

// part is a set of template primitives drawn at one offset inside a module.
type part struct {
	name   string
	prims  []container.Primitive
	matrix *[16]float64 // nil at the module origin
}

// templateParts walks the template's scene and returns its meshes with the
// accumulated transform of the node that draws them. Parts at the origin
// are merged into the first part. A template whose scene draws no mesh is
// taken as all of its primitives at the origin.
func templateParts(doc *container.Document) []part {
	origin := part{}
	var offset []part

	visited := make(map[int]bool)
	var walk func(i int, parent [16]float64)
	walk = func(i int, parent [16]float64) {
		if i < 0 || i >= len(doc.Nodes) || visited[i] {
			return
		}
		visited[i] = true
		n := doc.Nodes[i]
		world := mulMatrix(parent, localMatrix(n))
		if n.Mesh != nil && *n.Mesh >= 0 && *n.Mesh < len(doc.Meshes) {
			prims := doc.Meshes[*n.Mesh].Primitives
			if isIdentity(world) {
				origin.prims = append(origin.prims, prims...)
			} else {
				m := world
				offset = append(offset, part{name: n.Name, prims: prims, matrix: &m})
			}
		}
		for _, c := range n.Children {
			walk(c, world)
		}
	}
	for _, r := range sceneRoots(doc) {
		walk(r, identity)
	}

	if len(origin.prims) == 0 && len(offset) == 0 {
		for _, m := range doc.Meshes {
			origin.prims = append(origin.prims, m.Primitives...)
		}
	}
	if len(origin.prims) == 0 {
		return offset
	}
	return append([]part{origin}, offset...)
}

// sceneRoots returns the root nodes of the default scene, or every node no
// other node lists as a child when the template has no scenes.
func sceneRoots(doc *container.Document) []int {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		return doc.Scenes[idx].Nodes
	}
	child := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// Matrices are column-major, as stored in nodes.
var identity = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// localMatrix returns the node's matrix, or the one composed from its
// translation, rotation and scale.
func localMatrix(n container.Node) [16]float64 {
	if n.Matrix != nil {
		return *n.Matrix
	}
	t := [3]float64{}
	if n.Translation != nil {
		t = *n.Translation
	}
	q := [4]float64{0, 0, 0, 1}
	if n.Rotation != nil {
		q = *n.Rotation
	}
	s := [3]float64{1, 1, 1}
	if n.Scale != nil {
		s = *n.Scale
	}

	x, y, z, w := q[0], q[1], q[2], q[3]
	return [16]float64{
		(1 - 2*(y*y+z*z)) * s[0], 2 * (x*y + z*w) * s[0], 2 * (x*z - y*w) * s[0], 0,
		2 * (x*y - z*w) * s[1], (1 - 2*(x*x+z*z)) * s[1], 2 * (y*z + x*w) * s[1], 0,
		2 * (x*z + y*w) * s[2], 2 * (y*z - x*w) * s[2], (1 - 2*(x*x+y*y)) * s[2], 0,
		t[0], t[1], t[2], 1,
	}
}

func mulMatrix(a, b [16]float64) [16]float64 {
	var out [16]float64
	for c := range 4 {
		for r := range 4 {
			var v float64
			for k := range 4 {
				v += a[k*4+r] * b[c*4+k]
			}
			out[c*4+r] = v
		}
	}
	return out
}

func isIdentity(m [16]float64) bool {
	for i, v := range m {
		if math.Abs(v-identity[i]) > 1e-9 {
			return false
		}
	}
	return true
}
