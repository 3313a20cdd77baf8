package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"brick-finder/internal/inventory"
)

func sessionSet(t *testing.T) *inventory.Set {
	t.Helper()
	set, err := inventory.NewSet("Castle", "6080", []inventory.Brick{
		{PartNumber: "3001", Color: "red", Quantity: 4},
		{PartNumber: "3003", Color: "blue", Quantity: 2},
	})
	require.NoError(t, err)
	return set
}

func TestSaveLoadRoundTrip(t *testing.T) {
	set := sessionSet(t)
	require.True(t, set.MarkFound("3001", 2))

	path := filepath.Join(t.TempDir(), "castle.bricksession")

	f := New(set)
	require.NoError(t, f.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Castle", loaded.SetName)
	require.Equal(t, "6080", loaded.SetNumber)

	restored, err := loaded.Restore()
	require.NoError(t, err)
	require.Equal(t, 2, restored.FoundCount(), "found progress survives the round trip")
	require.Equal(t, 6, restored.TotalCount())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.bricksession"))
	require.Error(t, err)
}

func TestUpdateRefreshesProgress(t *testing.T) {
	set := sessionSet(t)
	f := New(set)

	require.True(t, set.MarkFound("3003", 1))
	f.Update(set)

	restored, err := f.Restore()
	require.NoError(t, err)
	require.Equal(t, 1, restored.FoundCount())
}

func TestRestoreRejectsCorruptProgress(t *testing.T) {
	f := &File{
		Version: 1,
		SetName: "Bad",
		Bricks:  []inventory.Brick{{PartNumber: "3001", Quantity: 1, FoundQuantity: 5}},
	}
	_, err := f.Restore()
	require.Error(t, err)
}

func TestInventoryPath(t *testing.T) {
	f := &File{}
	require.Empty(t, f.InventoryPath("/tmp/s.bricksession"))

	f.SetInventoryPath("/data/sessions/castle.bricksession", "/data/sets/castle.csv")
	require.Equal(t, filepath.Join("..", "sets", "castle.csv"), f.SetPath)
	require.Equal(t, "/data/sets/castle.csv",
		f.InventoryPath("/data/sessions/castle.bricksession"))
}
