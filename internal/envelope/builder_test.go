package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftworks/manualj-cli/internal/config"
	"github.com/draftworks/manualj-cli/internal/model"
)

func testEnvelopeConfig() config.EnvelopeConfig {
	return config.EnvelopeConfig{
		CeilingHeightFt:   8,
		WallCavityR:       13,
		CeilingCavityR:    38,
		FloorCavityR:      19,
		FramingType:       "16oc_2x4",
		WindowUValue:      0.32,
		WindowSHGC:        0.30,
		WindowWallFrac:    0.15,
		NaturalACH:        0.35,
		DuctLocation:      "attic",
		FoundationDefault: "crawlspace",
	}
}

func roomFixture(id, name string, t model.SpaceType, floor int, areaW, areaL float64) model.Room {
	r := model.NewRectRoom(id, areaW, areaL)
	r.Name = name
	r.Type = t
	r.FloorLevel = floor
	r.Source = model.RoomSourceContour
	return r
}

func TestBuildTwoStoryWithBonus(t *testing.T) {
	rooms := []model.Room{
		roomFixture("r1", "Living", model.SpaceTypeLiving, 1, 20, 16),
		roomFixture("r2", "Kitchen", model.SpaceTypeKitchen, 1, 14, 12),
		roomFixture("r3", "Garage", model.SpaceTypeGarage, 1, 22, 20),
		roomFixture("r4", "Bedroom 1", model.SpaceTypeBedroom, 2, 14, 12),
		roomFixture("r5", "Bonus Room", model.SpaceTypeBonus, 2, 20, 14),
	}

	b := NewBuilder(testEnvelopeConfig(), nil)
	bm, err := b.Build(rooms, model.DesignConditions{ClimateZone: "4A"}, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, bm.Stories)
	assert.Equal(t, model.FoundationCrawlspace, bm.Foundation)
	assert.Equal(t, model.DuctAttic, bm.Ducts)
	require.NoError(t, bm.ValidateModel())

	byType := map[model.ZoneType]*model.Zone{}
	for _, z := range bm.Zones {
		byType[z.Type] = z
	}
	require.Contains(t, byType, model.ZoneMainLiving)
	require.Contains(t, byType, model.ZoneSleeping)
	require.Contains(t, byType, model.ZoneBonus)
	require.Contains(t, byType, model.ZoneGarage)

	// Garage excluded from conditioned area.
	assert.InDelta(t, 20*16+14*12+14*12+20*14, bm.ConditionedAreaSqFt(), 0.01)

	// Bonus space carries the over-garage boundary configuration.
	bonus := byType[model.ZoneBonus].Spaces[0]
	assert.True(t, bonus.IsOverGarage)
	assert.Equal(t, model.BoundaryGarage, bonus.FloorBelow)
	assert.True(t, bonus.InBonusZone)
	assert.Equal(t, 1.3, bonus.HeatingMultiplier())
}

func TestBuildResolvesAllUValues(t *testing.T) {
	rooms := []model.Room{
		roomFixture("r1", "Living", model.SpaceTypeLiving, 1, 20, 16),
		roomFixture("r2", "Bedroom", model.SpaceTypeBedroom, 1, 12, 12),
	}

	b := NewBuilder(testEnvelopeConfig(), nil)
	bm, err := b.Build(rooms, model.DesignConditions{}, 0)
	require.NoError(t, err)

	for _, z := range bm.Zones {
		for _, s := range z.Spaces {
			require.NotEmpty(t, s.Surfaces)
			for _, sf := range s.Surfaces {
				assert.Greater(t, sf.UValue, 0.0, "surface %s of %s", sf.Kind, s.Name)
				if sf.WindowSqFt > 0 {
					assert.Greater(t, sf.WindowUValue, 0.0)
				}
			}
		}
	}
}

func TestBuildBoundaries(t *testing.T) {
	rooms := []model.Room{
		roomFixture("r1", "Rec Room", model.SpaceTypeLiving, 0, 24, 20),
		roomFixture("r2", "Living", model.SpaceTypeLiving, 1, 20, 16),
		roomFixture("r3", "Bedroom", model.SpaceTypeBedroom, 2, 14, 12),
	}

	b := NewBuilder(testEnvelopeConfig(), nil)
	bm, err := b.Build(rooms, model.DesignConditions{}, 0)
	require.NoError(t, err)

	// A floor-0 room forces a basement foundation.
	assert.Equal(t, model.FoundationBasement, bm.Foundation)

	spaces := map[string]*model.Space{}
	for _, z := range bm.Zones {
		for _, s := range z.Spaces {
			spaces[s.Name] = s
		}
	}

	assert.Equal(t, model.BoundaryGround, spaces["Rec Room"].FloorBelow)
	assert.Equal(t, model.BoundaryConditioned, spaces["Rec Room"].CeilingAbove)
	// Basement foundation: first floor sits over conditioned space.
	assert.Equal(t, model.BoundaryConditioned, spaces["Living"].FloorBelow)
	assert.Equal(t, model.BoundaryConditioned, spaces["Living"].CeilingAbove)
	assert.Equal(t, model.BoundaryAttic, spaces["Bedroom"].CeilingAbove)
}

func TestBuildInvariants(t *testing.T) {
	rooms := []model.Room{
		roomFixture("r1", "Sunroom", model.SpaceTypeLiving, 1, 18, 14),
	}
	b := NewBuilder(testEnvelopeConfig(), nil)
	bm, err := b.Build(rooms, model.DesignConditions{}, 0)
	require.NoError(t, err)

	for _, z := range bm.Zones {
		for _, s := range z.Spaces {
			assert.NoError(t, s.Validate())
		}
	}
}

func TestBuildCeilingTypes(t *testing.T) {
	cathedral := roomFixture("r1", "Great Room", model.SpaceTypeLiving, 1, 20, 18)
	cathedral.Source = model.RoomSourceVision
	cathedral.Ceiling = model.CeilingCathedral
	vaulted := roomFixture("r2", "Master", model.SpaceTypeBedroom, 1, 16, 14)
	vaulted.Source = model.RoomSourceVision
	vaulted.Ceiling = model.CeilingVaulted
	flat := roomFixture("r3", "Kitchen", model.SpaceTypeKitchen, 1, 14, 12)

	b := NewBuilder(testEnvelopeConfig(), nil)
	bm, err := b.Build([]model.Room{cathedral, vaulted, flat}, model.DesignConditions{ClimateZone: "4A"}, 0)
	require.NoError(t, err)
	require.NoError(t, bm.ValidateModel())

	byName := map[string]*model.Space{}
	for _, z := range bm.Zones {
		for _, s := range z.Spaces {
			byName[s.Name] = s
		}
	}

	great := byName["Great Room"]
	require.NotNil(t, great)
	assert.Equal(t, model.CeilingCathedral, great.CeilingType)
	assert.True(t, great.HasCathedralCeiling)
	assert.Equal(t, 1.2, great.HeatingMultiplier())
	assert.InDelta(t, 20*18*8*2.0, great.VolumeCuFt(), 0.01)

	master := byName["Master"]
	require.NotNil(t, master)
	assert.Equal(t, model.CeilingVaulted, master.CeilingType)
	assert.False(t, master.HasCathedralCeiling)
	assert.InDelta(t, 16*14*8*1.5, master.VolumeCuFt(), 0.01)

	kitchen := byName["Kitchen"]
	require.NotNil(t, kitchen)
	assert.Equal(t, model.CeilingFlat, kitchen.CeilingType)
}

func TestBuildClampsOpeningsToWallArea(t *testing.T) {
	// A vision room can carry a large printed area alongside a tiny bbox
	// perimeter. The short walls that fall out of that perimeter must not
	// end up with more window and door area than they have.
	r := model.NewRectRoom("r1", 2, 2)
	r.Name = "Living"
	r.Type = model.SpaceTypeLiving
	r.FloorLevel = 1
	r.AreaSqFt = 150
	r.Source = model.RoomSourceVision
	r.ExteriorWalls = 1
	r.Windows = 2

	b := NewBuilder(testEnvelopeConfig(), nil)
	bm, err := b.Build([]model.Room{r}, model.DesignConditions{ClimateZone: "4A"}, 0)
	require.NoError(t, err)
	require.NoError(t, bm.ValidateModel())

	var wall model.Surface
	found := false
	for _, z := range bm.Zones {
		for _, s := range z.Spaces {
			for _, sf := range s.Surfaces {
				assert.GreaterOrEqual(t, sf.NetAreaSqFt(), 0.0,
					"%s %s net area", s.Name, sf.Kind)
				if sf.Kind == model.SurfaceWall {
					wall = sf
					found = true
				}
			}
		}
	}
	require.True(t, found)

	// Perimeter 8 ft at 8 ft ceilings gives a 16 sqft wall. The 20 sqft
	// entry door shrinks to fit and leaves no room for glazing.
	assert.InDelta(t, 16.0, wall.AreaSqFt, 0.01)
	assert.InDelta(t, 16.0, wall.DoorSqFt, 0.01)
	assert.InDelta(t, 0.0, wall.WindowSqFt, 0.01)
	assert.InDelta(t, 0.0, wall.NetAreaSqFt(), 0.01)
}

func TestBuildNoRooms(t *testing.T) {
	b := NewBuilder(testEnvelopeConfig(), nil)
	_, err := b.Build(nil, model.DesignConditions{}, 0)
	assert.Error(t, err)
}

func TestBuildBadFramingType(t *testing.T) {
	cfg := testEnvelopeConfig()
	cfg.FramingType = "log-cabin"
	b := NewBuilder(cfg, nil)
	_, err := b.Build([]model.Room{roomFixture("r1", "Living", model.SpaceTypeLiving, 1, 20, 16)}, model.DesignConditions{}, 0)
	assert.Error(t, err)
}
