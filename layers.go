package arbor

import (
	"encoding/json"
	"fmt"
	"math/bits"
)

// MaxLayers is the number of layer slots in a LayerMask.
const MaxLayers = 32

// LayerMask is a set of up to 32 layer memberships packed into one integer.
// It is a plain value: copy it by assignment.
//
// The zero value has no layers set. Nodes start with DefaultLayerMask.
type LayerMask uint32

// DefaultLayerMask selects layer 0 only.
const DefaultLayerMask LayerMask = 1

// AllLayers selects every layer.
const AllLayers LayerMask = 0xFFFFFFFF

// NewLayerMask returns a mask with exactly the given layers set. With no
// arguments it returns an empty mask.
func NewLayerMask(layers ...int) (LayerMask, error) {
	var m LayerMask
	for _, l := range layers {
		if err := m.Enable(l); err != nil {
			return 0, err
		}
	}
	return m, nil
}

func layerBit(layer int) (LayerMask, error) {
	if layer < 0 || layer >= MaxLayers {
		return 0, fmt.Errorf("%w: %d", ErrLayerOutOfRange, layer)
	}
	return 1 << uint(layer), nil
}

// Enable adds layer to the mask. Out-of-range layers leave the mask unchanged
// and return ErrLayerOutOfRange.
func (m *LayerMask) Enable(layer int) error {
	b, err := layerBit(layer)
	if err != nil {
		return err
	}
	*m |= b
	return nil
}

// Disable removes layer from the mask.
func (m *LayerMask) Disable(layer int) error {
	b, err := layerBit(layer)
	if err != nil {
		return err
	}
	*m &^= b
	return nil
}

// Toggle flips layer.
func (m *LayerMask) Toggle(layer int) error {
	b, err := layerBit(layer)
	if err != nil {
		return err
	}
	*m ^= b
	return nil
}

// Set replaces the mask with exactly one layer.
func (m *LayerMask) Set(layer int) error {
	b, err := layerBit(layer)
	if err != nil {
		return err
	}
	*m = b
	return nil
}

// Reset restores DefaultLayerMask.
func (m *LayerMask) Reset() {
	*m = DefaultLayerMask
}

// Copy assigns other to m.
func (m *LayerMask) Copy(other LayerMask) {
	*m = other
}

// Has reports whether layer is set. Out-of-range layers are never set.
func (m LayerMask) Has(layer int) bool {
	b, err := layerBit(layer)
	if err != nil {
		return false
	}
	return m&b != 0
}

// Test reports whether m and other share at least one layer. Cameras and
// renderers use this to decide whether a node is visible to them.
func (m LayerMask) Test(other LayerMask) bool {
	return m&other != 0
}

// Clone returns an independent copy of m.
func (m LayerMask) Clone() LayerMask {
	return m
}

// Len returns the number of layers set.
func (m LayerMask) Len() int {
	return bits.OnesCount32(uint32(m))
}

// Layers returns the set layer indices in ascending order.
func (m LayerMask) Layers() []int {
	out := make([]int, 0, m.Len())
	for v := uint32(m); v != 0; v &= v - 1 {
		out = append(out, bits.TrailingZeros32(v))
	}
	return out
}

// MarshalJSON encodes the mask as its raw integer.
func (m LayerMask) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint32(m))
}

// UnmarshalJSON decodes a raw integer mask.
func (m *LayerMask) UnmarshalJSON(data []byte) error {
	var v uint32
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("arbor: decode layer mask: %w", err)
	}
	*m = LayerMask(v)
	return nil
}
