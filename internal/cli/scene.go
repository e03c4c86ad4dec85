package cli

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/arbor"
)

// SceneSpec is a YAML scene description.
type SceneSpec struct {
	Roots []NodeSpec `yaml:"roots"`
}

// NodeSpec describes one node and its subtree. Omitted fields keep the node
// defaults.
type NodeSpec struct {
	Name         string         `yaml:"name"`
	Type         string         `yaml:"type"`
	Position     []float64      `yaml:"position"`
	Rotation     []float64      `yaml:"rotation"` // radians, XYZ order
	Scale        []float64      `yaml:"scale"`
	Layers       []int          `yaml:"layers"`
	Traits       *TraitsSpec    `yaml:"traits"`
	Meta         map[string]any `yaml:"meta"`
	AutoLocal    *bool          `yaml:"auto_local"`
	InheritWorld *bool          `yaml:"inherit_world"`
	Children     []NodeSpec     `yaml:"children"`
}

// TraitsSpec overrides individual render traits.
type TraitsSpec struct {
	Visible       *bool `yaml:"visible"`
	ShadowCast    *bool `yaml:"shadow_cast"`
	ShadowReceive *bool `yaml:"shadow_receive"`
	CullFrustum   *bool `yaml:"cull_frustum"`
	Order         *int  `yaml:"order"`
}

// LoadSceneSpec reads and parses a scene description file.
func LoadSceneSpec(path string) (*SceneSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	return ParseSceneSpec(data)
}

// ParseSceneSpec parses a scene description. Unknown fields are rejected.
func ParseSceneSpec(data []byte) (*SceneSpec, error) {
	var spec SceneSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(spec.Roots) == 0 {
		return nil, fmt.Errorf("invalid scene: no roots")
	}
	return &spec, nil
}

// Build creates the described nodes in scene and registers the roots.
func (s *SceneSpec) Build(scene *arbor.Scene) ([]*arbor.Node, error) {
	roots := make([]*arbor.Node, 0, len(s.Roots))
	for i := range s.Roots {
		n, err := s.Roots[i].build(scene, "roots["+strconv.Itoa(i)+"]")
		if err != nil {
			return nil, err
		}
		if err := scene.AddRoot(n); err != nil {
			return nil, err
		}
		roots = append(roots, n)
	}
	return roots, nil
}

func (ns *NodeSpec) build(scene *arbor.Scene, path string) (*arbor.Node, error) {
	n := scene.NewNode(ns.Name)
	if ns.Type != "" {
		n.Type = ns.Type
	}
	if ns.Position != nil {
		v, err := vec3(ns.Position, path+".position")
		if err != nil {
			return nil, err
		}
		n.SetPosition(v)
	}
	if ns.Rotation != nil {
		v, err := vec3(ns.Rotation, path+".rotation")
		if err != nil {
			return nil, err
		}
		n.SetRotation(arbor.NewEuler(v[0], v[1], v[2]))
	}
	if ns.Scale != nil {
		v, err := vec3(ns.Scale, path+".scale")
		if err != nil {
			return nil, err
		}
		n.SetScale(v)
	}
	if ns.Layers != nil {
		m, err := arbor.NewLayerMask(ns.Layers...)
		if err != nil {
			return nil, fmt.Errorf("%s.layers: %w", path, err)
		}
		n.Layers = m
	}
	if t := ns.Traits; t != nil {
		setBool(&n.Traits.Visible, t.Visible)
		setBool(&n.Traits.ShadowCast, t.ShadowCast)
		setBool(&n.Traits.ShadowReceive, t.ShadowReceive)
		setBool(&n.Traits.CullFrustum, t.CullFrustum)
		if t.Order != nil {
			n.Traits.Order = *t.Order
		}
	}
	for k, v := range ns.Meta {
		n.SetMeta(k, v)
	}
	setBool(&n.AutoLocal, ns.AutoLocal)
	setBool(&n.InheritWorld, ns.InheritWorld)

	for i := range ns.Children {
		child, err := ns.Children[i].build(scene, path+".children["+strconv.Itoa(i)+"]")
		if err != nil {
			return nil, err
		}
		if err := n.Link(child); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return n, nil
}

func vec3(v []float64, path string) (mgl64.Vec3, error) {
	if len(v) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("%s: want 3 components, got %d", path, len(v))
	}
	return mgl64.Vec3{v[0], v[1], v[2]}, nil
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

// stableNamespace seeds the uuids issued by StableSequence.
var stableNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/phanxgames/arbor"))

// StableSequence returns a Sequence whose uuids are name-based (version 5)
// and depend only on creation order, so the same description always yields
// the same document.
func StableSequence() *arbor.Sequence {
	n := 0
	return arbor.NewSequenceWithUUID(func() string {
		n++
		return uuid.NewSHA1(stableNamespace, []byte("node/"+strconv.Itoa(n))).String()
	})
}
