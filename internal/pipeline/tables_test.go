package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftworks/manualj-cli/internal/model"
)

func TestLoadTables_EmptyPath(t *testing.T) {
	tables, err := LoadTables("")
	require.NoError(t, err)
	assert.Empty(t, tables.ClassifierWeights)
	assert.Nil(t, tables.RoomBoundOverrides())
}

func TestLoadTables_MissingFile(t *testing.T) {
	_, err := LoadTables(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read file")
}

func TestLoadTables_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte("classifier_weights: [not, a, map]"), 0o644))

	_, err := LoadTables(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse yaml")
}

func TestLoadTables_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	content := `
classifier_weights:
  "FLOOR PLAN": 40
  "MEDIA ROOM": 5
room_bounds:
  bedroom:
    min_sqft: 60
    max_sqft: 600
  garage:
    min_sqft: 150
    max_sqft: 1500
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tables, err := LoadTables(path)
	require.NoError(t, err)

	assert.Equal(t, 40.0, tables.ClassifierWeights["FLOOR PLAN"])
	assert.Equal(t, 5.0, tables.ClassifierWeights["MEDIA ROOM"])

	bounds := tables.RoomBoundOverrides()
	require.Len(t, bounds, 2)
	assert.Equal(t, roomBounds{MinSqFt: 60, MaxSqFt: 600}, bounds[model.SpaceTypeBedroom])
	assert.Equal(t, roomBounds{MinSqFt: 150, MaxSqFt: 1500}, bounds[model.SpaceTypeGarage])
}
