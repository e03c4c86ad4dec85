package snapstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/arbor"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTree(t *testing.T) *arbor.Node {
	t.Helper()
	scene := arbor.NewScene()
	root := scene.NewRoot("root")
	child := scene.NewNode("child")
	child.SetPosition(mgl64.Vec3{1, 2, 3})
	child.SetMeta("kind", "crate")
	require.NoError(t, root.Link(child))
	scene.ForceUpdate()
	return root
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	root := sampleTree(t)

	id, err := s.Save(ctx, "first", root.Snapshot())
	require.NoError(t, err)
	assert.Positive(t, id)

	doc, err := s.Load(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, root.UUID(), doc.UUID)
	assert.Equal(t, "root", doc.Name)
	require.Len(t, doc.Children, 1)
	child := doc.Children[0]
	assert.Equal(t, [3]float64{1, 2, 3}, child.Position)
	assert.Equal(t, "crate", child.Meta["kind"])
	assert.Equal(t, arbor.DefaultLayerMask, child.Layers)
	assert.InDelta(t, 3.0, child.WorldMatrix[14], 1e-9)
}

func TestLoad_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Load(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	root := sampleTree(t)
	_, err := s.Save(ctx, "a", root.Snapshot())
	require.NoError(t, err)
	_, err = s.Save(ctx, "b", root.Snapshot())
	require.NoError(t, err)
	other := sampleTree(t)
	_, err = s.Save(ctx, "c", other.Snapshot())
	require.NoError(t, err)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].Label)
	assert.Equal(t, 2, all[0].NodeCount)
	assert.Equal(t, "root", all[0].RootName)
	assert.True(t, all[0].CreatedAt.Equal(fixed))

	byRoot, err := s.ListByRoot(ctx, root.UUID())
	require.NoError(t, err)
	require.Len(t, byRoot, 2)
	assert.Equal(t, "b", byRoot[1].Label)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Save(ctx, "gone", sampleTree(t).Snapshot())
	require.NoError(t, err)

	ok, err := s.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Load(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}
