package container

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Document is the scene description held in the JSON chunk. Members this
// package does not interpret are kept verbatim in Other and written back
// unchanged, on the document and on every object it models.
type Document struct {
	Asset       Asset             `json:"asset"`
	Scene       *int              `json:"scene,omitempty"`
	Scenes      []Scene           `json:"scenes,omitempty"`
	Nodes       []Node            `json:"nodes,omitempty"`
	Meshes      []Mesh            `json:"meshes,omitempty"`
	Materials   []Material        `json:"materials,omitempty"`
	Accessors   []json.RawMessage `json:"accessors,omitempty"`
	BufferViews []json.RawMessage `json:"bufferViews,omitempty"`
	Buffers     []Buffer          `json:"buffers,omitempty"`

	Other map[string]json.RawMessage `json:"-"`
}

// Asset is the document metadata.
type Asset struct {
	Version    string         `json:"version"`
	Generator  string         `json:"generator,omitempty"`
	Copyright  string         `json:"copyright,omitempty"`
	MinVersion string         `json:"minVersion,omitempty"`
	Extras     map[string]any `json:"extras,omitempty"`

	Other map[string]json.RawMessage `json:"-"`
}

type Scene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`

	Other map[string]json.RawMessage `json:"-"`
}

// Node is one scene node. Other carries members such as skin, camera and
// extensions.
type Node struct {
	Name        string          `json:"name,omitempty"`
	Mesh        *int            `json:"mesh,omitempty"`
	Children    []int           `json:"children,omitempty"`
	Translation *[3]float64     `json:"translation,omitempty"`
	Rotation    *[4]float64     `json:"rotation,omitempty"`
	Scale       *[3]float64     `json:"scale,omitempty"`
	Matrix      *[16]float64    `json:"matrix,omitempty"`
	Extras      json.RawMessage `json:"extras,omitempty"`

	Other map[string]json.RawMessage `json:"-"`
}

type Mesh struct {
	Name       string          `json:"name,omitempty"`
	Primitives []Primitive     `json:"primitives"`
	Weights    []float64       `json:"weights,omitempty"`
	Extras     json.RawMessage `json:"extras,omitempty"`

	Other map[string]json.RawMessage `json:"-"`
}

// Primitive is one drawable part of a mesh. Compression extensions such as
// KHR_draco_mesh_compression live in Other.
type Primitive struct {
	Attributes map[string]int   `json:"attributes"`
	Indices    *int             `json:"indices,omitempty"`
	Material   *int             `json:"material,omitempty"`
	Mode       *int             `json:"mode,omitempty"`
	Targets    []map[string]int `json:"targets,omitempty"`
	Extras     json.RawMessage  `json:"extras,omitempty"`

	Other map[string]json.RawMessage `json:"-"`
}

type Material struct {
	Name        string `json:"name,omitempty"`
	PBR         *PBR   `json:"pbrMetallicRoughness,omitempty"`
	DoubleSided bool   `json:"doubleSided,omitempty"`

	Other map[string]json.RawMessage `json:"-"`
}

type PBR struct {
	BaseColorFactor [4]float64 `json:"baseColorFactor"`
	MetallicFactor  *float64   `json:"metallicFactor,omitempty"`
	RoughnessFactor *float64   `json:"roughnessFactor,omitempty"`

	Other map[string]json.RawMessage `json:"-"`
}

type Buffer struct {
	ByteLength int    `json:"byteLength"`
	URI        string `json:"uri,omitempty"`

	Other map[string]json.RawMessage `json:"-"`
}

// The *Fields types drop the methods below for plain encoding.
type (
	documentFields  Document
	assetFields     Asset
	sceneFields     Scene
	nodeFields      Node
	meshFields      Mesh
	primitiveFields Primitive
	materialFields  Material
	pbrFields       PBR
	bufferFields    Buffer
)

// members returns the JSON member names decoded into typed fields of T.
func members[T any]() map[string]bool {
	t := reflect.TypeFor[T]()
	names := make(map[string]bool, t.NumField())
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			names[name] = true
		}
	}
	return names
}

var (
	documentMembers  = members[documentFields]()
	assetMembers     = members[assetFields]()
	sceneMembers     = members[sceneFields]()
	nodeMembers      = members[nodeFields]()
	meshMembers      = members[meshFields]()
	primitiveMembers = members[primitiveFields]()
	materialMembers  = members[materialFields]()
	pbrMembers       = members[pbrFields]()
	bufferMembers    = members[bufferFields]()
)

// decodeOpen decodes data into fields and returns the members not in known.
func decodeOpen(data []byte, fields any, known map[string]bool) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(data, fields); err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	var other map[string]json.RawMessage
	for k, v := range raw {
		if known[k] {
			continue
		}
		if other == nil {
			other = make(map[string]json.RawMessage)
		}
		other[k] = v
	}
	return other, nil
}

// encodeOpen encodes fields and adds the members of other that do not
// collide with a typed field.
func encodeOpen(fields any, other map[string]json.RawMessage, known map[string]bool) ([]byte, error) {
	data, err := json.Marshal(fields)
	if err != nil || len(other) == 0 {
		return data, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, v := range other {
		if !known[k] {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var f documentFields
	other, err := decodeOpen(data, &f, documentMembers)
	if err != nil {
		return err
	}
	*d = Document(f)
	d.Other = other
	return nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	return encodeOpen(documentFields(d), d.Other, documentMembers)
}

func (a *Asset) UnmarshalJSON(data []byte) error {
	var f assetFields
	other, err := decodeOpen(data, &f, assetMembers)
	if err != nil {
		return err
	}
	*a = Asset(f)
	a.Other = other
	return nil
}

func (a Asset) MarshalJSON() ([]byte, error) {
	return encodeOpen(assetFields(a), a.Other, assetMembers)
}

func (s *Scene) UnmarshalJSON(data []byte) error {
	var f sceneFields
	other, err := decodeOpen(data, &f, sceneMembers)
	if err != nil {
		return err
	}
	*s = Scene(f)
	s.Other = other
	return nil
}

func (s Scene) MarshalJSON() ([]byte, error) {
	return encodeOpen(sceneFields(s), s.Other, sceneMembers)
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var f nodeFields
	other, err := decodeOpen(data, &f, nodeMembers)
	if err != nil {
		return err
	}
	*n = Node(f)
	n.Other = other
	return nil
}

func (n Node) MarshalJSON() ([]byte, error) {
	return encodeOpen(nodeFields(n), n.Other, nodeMembers)
}

func (m *Mesh) UnmarshalJSON(data []byte) error {
	var f meshFields
	other, err := decodeOpen(data, &f, meshMembers)
	if err != nil {
		return err
	}
	*m = Mesh(f)
	m.Other = other
	return nil
}

func (m Mesh) MarshalJSON() ([]byte, error) {
	return encodeOpen(meshFields(m), m.Other, meshMembers)
}

func (p *Primitive) UnmarshalJSON(data []byte) error {
	var f primitiveFields
	other, err := decodeOpen(data, &f, primitiveMembers)
	if err != nil {
		return err
	}
	*p = Primitive(f)
	p.Other = other
	return nil
}

func (p Primitive) MarshalJSON() ([]byte, error) {
	return encodeOpen(primitiveFields(p), p.Other, primitiveMembers)
}

func (m *Material) UnmarshalJSON(data []byte) error {
	var f materialFields
	other, err := decodeOpen(data, &f, materialMembers)
	if err != nil {
		return err
	}
	*m = Material(f)
	m.Other = other
	return nil
}

func (m Material) MarshalJSON() ([]byte, error) {
	return encodeOpen(materialFields(m), m.Other, materialMembers)
}

func (p *PBR) UnmarshalJSON(data []byte) error {
	var f pbrFields
	other, err := decodeOpen(data, &f, pbrMembers)
	if err != nil {
		return err
	}
	*p = PBR(f)
	p.Other = other
	return nil
}

func (p PBR) MarshalJSON() ([]byte, error) {
	return encodeOpen(pbrFields(p), p.Other, pbrMembers)
}

func (b *Buffer) UnmarshalJSON(data []byte) error {
	var f bufferFields
	other, err := decodeOpen(data, &f, bufferMembers)
	if err != nil {
		return err
	}
	*b = Buffer(f)
	b.Other = other
	return nil
}

func (b Buffer) MarshalJSON() ([]byte, error) {
	return encodeOpen(bufferFields(b), b.Other, bufferMembers)
}

// Document decodes the JSON chunk of c.
func (c *Container) Document() (*Document, error) {
	var doc Document
	if err := json.Unmarshal(c.JSON, &doc); err != nil {
		return nil, fmt.Errorf("decode container document: %w", err)
	}
	return &doc, nil
}

// SetExtra stores v under key in the asset extras.
func (d *Document) SetExtra(key string, v any) {
	if d.Asset.Extras == nil {
		d.Asset.Extras = make(map[string]any)
	}
	d.Asset.Extras[key] = v
}

// Extra returns the asset extra stored under key.
func (d *Document) Extra(key string) (any, bool) {
	v, ok := d.Asset.Extras[key]
	return v, ok
}

// MeshNames resolves the display name of every mesh: its own name, or the
// name of the first node that references it.
func (d *Document) MeshNames() []string {
	names := make([]string, len(d.Meshes))
	for i, m := range d.Meshes {
		names[i] = m.Name
	}
	for _, n := range d.Nodes {
		if n.Mesh == nil || *n.Mesh < 0 || *n.Mesh >= len(names) {
			continue
		}
		if names[*n.Mesh] == "" {
			names[*n.Mesh] = n.Name
		}
	}
	return names
}

// PrimitiveCount returns the number of primitives across all meshes.
func (d *Document) PrimitiveCount() int {
	n := 0
	for _, m := range d.Meshes {
		n += len(m.Primitives)
	}
	return n
}

// Clone returns a deep copy of d.
func (d *Document) Clone() (*Document, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var out Document
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
