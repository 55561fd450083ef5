package pipeline

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/draftworks/manualj-cli/internal/model"
)

// Tables carries optional overrides for the data-driven scoring and
// validation tables, loaded from a YAML file.
type Tables struct {
	// ClassifierWeights overrides individual page-classifier term weights.
	ClassifierWeights map[string]float64 `yaml:"classifier_weights"`
	// RoomBounds overrides per-type room size bounds.
	RoomBounds map[string]struct {
		MinSqFt float64 `yaml:"min_sqft"`
		MaxSqFt float64 `yaml:"max_sqft"`
	} `yaml:"room_bounds"`
}

// LoadTables reads override tables from path. An empty path returns empty
// tables; a missing or malformed file is an error.
func LoadTables(path string) (*Tables, error) {
	if path == "" {
		return &Tables{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "tables: read file")
	}

	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, eris.Wrap(err, "tables: parse yaml")
	}

	zap.L().Info("tables: overrides loaded",
		zap.String("path", path),
		zap.Int("classifier_weights", len(t.ClassifierWeights)),
		zap.Int("room_bounds", len(t.RoomBounds)),
	)
	return &t, nil
}

// RoomBoundOverrides converts the YAML bounds into validator overrides.
func (t *Tables) RoomBoundOverrides() map[model.SpaceType]roomBounds {
	if len(t.RoomBounds) == 0 {
		return nil
	}
	out := make(map[model.SpaceType]roomBounds, len(t.RoomBounds))
	for name, b := range t.RoomBounds {
		out[model.SpaceType(name)] = roomBounds{MinSqFt: b.MinSqFt, MaxSqFt: b.MaxSqFt}
	}
	return out
}
