package arbor

import "errors"

// Hierarchy errors
var (
	// ErrNilNode is returned when a nil node is passed where a node is required.
	ErrNilNode = errors.New("arbor: nil node")

	// ErrSelfLink is returned when a node is linked to itself.
	ErrSelfLink = errors.New("arbor: cannot link a node to itself")

	// ErrCycle is returned when linking would make a node its own ancestor.
	ErrCycle = errors.New("arbor: linking would create a cycle")

	// ErrDisposed is returned when a disposed node takes part in a tree operation.
	ErrDisposed = errors.New("arbor: node is disposed")

	// ErrDuplicateUUID is returned when a parent already has a different
	// child with the same uuid.
	ErrDuplicateUUID = errors.New("arbor: duplicate child uuid")
)

// Layer errors
var (
	// ErrLayerOutOfRange is returned for layer indices outside [0, MaxLayers).
	ErrLayerOutOfRange = errors.New("arbor: layer index out of range")
)

// Scene errors
var (
	// ErrNotRoot is returned when a parented node is registered as a scene root.
	ErrNotRoot = errors.New("arbor: node has a parent and cannot be a root")
)
