package scene

import (
	"encoding/json"

	"github.com/matzehuels/ringtower/pkg/buildinfo"
	"github.com/matzehuels/ringtower/pkg/container"
	apperr "github.com/matzehuels/ringtower/pkg/errors"
	"github.com/matzehuels/ringtower/pkg/placement"
	"github.com/matzehuels/ringtower/pkg/template"
)

// BuildContainer assembles a binary container holding the visible instances
// of t. Every instance becomes one node carrying its translation, rotation
// and scale, and one mesh named after the instance whose primitives share
// the template's accessors. Rings become parent nodes of their instances.
//
// Template meshes that sit under transformed nodes keep that offset: they
// become child nodes of the instance with the accumulated node matrix.
// Template members that index nodes (skins, animations) are dropped.
//
// The result still carries the template's materials; run it through
// [container.Patch] to color it.
func BuildContainer(geom *template.Geometry, t *Tree) ([]byte, error) {
	if geom == nil || geom.Document == nil {
		return nil, apperr.New(apperr.ErrCodeTemplateUnavailable, "no module template loaded")
	}

	doc, err := geom.Document.Clone()
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInternal, err, "copy template document")
	}
	parts := templateParts(geom.Document)

	doc.Asset.Generator = buildinfo.Generator()
	doc.Nodes = nil
	doc.Meshes = nil
	doc.Scenes = nil
	for _, k := range nodeMembers {
		delete(doc.Other, k)
	}

	var roots []int
	for _, rn := range t.Rings {
		parent := len(doc.Nodes)
		doc.Nodes = append(doc.Nodes, container.Node{Name: ringID(rn.Index)})
		var children []int
		for _, inst := range rn.Instances {
			if !inst.Visible {
				continue
			}
			children = append(children, len(doc.Nodes))
			addInstance(doc, inst, parts)
		}
		doc.Nodes[parent].Children = children
		roots = append(roots, parent)
	}

	scene := 0
	doc.Scene = &scene
	doc.Scenes = []container.Scene{{Name: "rings", Nodes: roots}}

	text, err := json.Marshal(doc)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInternal, err, "encode scene document")
	}
	var bin []byte
	if len(geom.BIN) > 0 {
		bin = geom.BIN
	}
	return container.Encode(text, bin), nil
}

// addInstance appends the node of inst and the meshes of its parts.
func addInstance(doc *container.Document, inst placement.Instance, parts []part) {
	mesh := func(p part) *int {
		idx := len(doc.Meshes)
		doc.Meshes = append(doc.Meshes, container.Mesh{
			Name:       inst.Name,
			Primitives: append([]container.Primitive(nil), p.prims...),
		})
		return &idx
	}

	self := len(doc.Nodes)
	doc.Nodes = append(doc.Nodes, instanceNode(inst))
	for _, p := range parts {
		if p.matrix == nil {
			doc.Nodes[self].Mesh = mesh(p)
			continue
		}
		m := *p.matrix
		doc.Nodes[self].Children = append(doc.Nodes[self].Children, len(doc.Nodes))
		doc.Nodes = append(doc.Nodes, container.Node{Name: p.name, Mesh: mesh(p), Matrix: &m})
	}
}

func instanceNode(inst placement.Instance) container.Node {
	tr := inst.Transform
	translation := [3]float64{float64(tr.Translation[0]), float64(tr.Translation[1]), float64(tr.Translation[2])}
	rotation := [4]float64{float64(tr.Rotation[0]), float64(tr.Rotation[1]), float64(tr.Rotation[2]), float64(tr.Rotation[3])}
	s := float64(tr.Scale)
	scale := [3]float64{s, s, s}
	return container.Node{
		Name:        inst.Name,
		Translation: &translation,
		Rotation:    &rotation,
		Scale:       &scale,
	}
}
