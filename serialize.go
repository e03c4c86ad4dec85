package arbor

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Document is the structural snapshot of a node and its subtree. Matrices are
// flattened column-major, the quaternion as x, y, z, w. Renderer runtime state
// is not part of it.
type Document struct {
	UUID        string         `json:"uuid" yaml:"uuid"`
	Type        string         `json:"type" yaml:"type"`
	Name        string         `json:"name,omitempty" yaml:"name,omitempty"`
	Traits      RenderTraits   `json:"traits" yaml:"traits"`
	Layers      LayerMask      `json:"layers" yaml:"layers"`
	LocalMatrix [16]float64    `json:"localMatrix" yaml:"localMatrix"`
	WorldMatrix [16]float64    `json:"worldMatrix" yaml:"worldMatrix"`
	Position    [3]float64     `json:"position" yaml:"position"`
	Quaternion  [4]float64     `json:"quaternion" yaml:"quaternion"`
	Scale       [3]float64     `json:"scale" yaml:"scale"`
	Meta        map[string]any `json:"meta" yaml:"meta"`
	Animations  []string       `json:"animations" yaml:"animations"`
	Children    []Document     `json:"children" yaml:"children"`
}

// Snapshot captures n and its subtree.
func (n *Node) Snapshot() Document {
	doc := Document{
		UUID:        n.uuid,
		Type:        n.Type,
		Name:        n.Name,
		Traits:      n.Traits,
		Layers:      n.Layers,
		LocalMatrix: n.localMatrix,
		WorldMatrix: n.worldMatrix,
		Position:    n.Position,
		Quaternion:  [4]float64{n.Quaternion.V[0], n.Quaternion.V[1], n.Quaternion.V[2], n.Quaternion.W},
		Scale:       n.Scale,
		Meta:        make(map[string]any, len(n.meta)),
		Animations:  make([]string, 0, len(n.Animations)),
		Children:    make([]Document, 0, len(n.children)),
	}
	for k, v := range n.meta {
		doc.Meta[k] = v
	}
	for _, a := range n.Animations {
		if id := a.AnimationID(); id != "" {
			doc.Animations = append(doc.Animations, id)
		}
	}
	for _, child := range n.children {
		doc.Children = append(doc.Children, child.Snapshot())
	}
	return doc
}

// MarshalJSON encodes n's Snapshot.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Snapshot())
}

// Count returns the number of documents in the tree rooted at d.
func (d *Document) Count() int {
	c := 1
	for i := range d.Children {
		c += d.Children[i].Count()
	}
	return c
}

// Restore rebuilds a node tree from doc. UUIDs come from the document and
// integer ids from ids. Animation references are not resolved; matrices are
// restored as stored and the nodes are left dirty so the next propagation
// recomputes them.
func Restore(ids IDSource, doc Document) (*Node, error) {
	if ids == nil {
		ids = fallbackIDs
	}
	seen := make(map[string]bool)
	return restore(ids, &doc, seen)
}

func restore(ids IDSource, doc *Document, seen map[string]bool) (*Node, error) {
	n := NewNode(ids, doc.Name)
	if doc.UUID != "" {
		if seen[doc.UUID] {
			return nil, fmt.Errorf("arbor: restore: duplicate uuid %q", doc.UUID)
		}
		seen[doc.UUID] = true
		n.uuid = doc.UUID
	}
	if doc.Type != "" {
		n.Type = doc.Type
	}
	n.Traits = doc.Traits
	n.Layers = doc.Layers
	n.localMatrix = doc.LocalMatrix
	n.worldMatrix = doc.WorldMatrix
	n.Position = doc.Position
	n.Quaternion = mgl64.Quat{W: doc.Quaternion[3], V: mgl64.Vec3{doc.Quaternion[0], doc.Quaternion[1], doc.Quaternion[2]}}
	n.Scale = doc.Scale
	for k, v := range doc.Meta {
		n.SetMeta(k, v)
	}
	n.dirtyWorld = true
	for i := range doc.Children {
		child, err := restore(ids, &doc.Children[i], seen)
		if err != nil {
			return nil, err
		}
		if err := n.Link(child); err != nil {
			return nil, fmt.Errorf("arbor: restore %q: %w", doc.UUID, err)
		}
	}
	return n, nil
}
