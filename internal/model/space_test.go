package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeatingMultiplierPriority(t *testing.T) {
	tests := []struct {
		name string
		s    Space
		want float64
	}{
		{"over garage wins", Space{IsOverGarage: true, HasCathedralCeiling: true, IsOverUnconditioned: true}, 1.3},
		{"cathedral next", Space{HasCathedralCeiling: true, IsOverUnconditioned: true}, 1.2},
		{"over unconditioned", Space{IsOverUnconditioned: true}, 1.15},
		{"default", Space{}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.HeatingMultiplier())
		})
	}
}

func TestCoolingMultiplier(t *testing.T) {
	bonusBedroom := Space{Type: SpaceTypeBedroom, InBonusZone: true}
	assert.Equal(t, 0.7, bonusBedroom.CoolingMultiplier())

	bonusStorage := Space{Type: SpaceTypeStorage, InBonusZone: true}
	assert.Equal(t, 0.7, bonusStorage.CoolingMultiplier())

	pureStorage := Space{Type: SpaceTypeStorage}
	assert.Equal(t, 0.3, pureStorage.CoolingMultiplier())

	kitchen := Space{Type: SpaceTypeKitchen}
	assert.Equal(t, 1.0, kitchen.CoolingMultiplier())
}

func TestVolumeMultipliers(t *testing.T) {
	s := Space{AreaSqFt: 200, CeilingHeightFt: 8, CeilingType: CeilingFlat}
	assert.InDelta(t, 1600.0, s.VolumeCuFt(), 0.01)

	s.CeilingType = CeilingVaulted
	assert.InDelta(t, 2400.0, s.VolumeCuFt(), 0.01)

	s.CeilingType = CeilingCathedral
	assert.InDelta(t, 3200.0, s.VolumeCuFt(), 0.01)
}

func TestSurfaceNetArea(t *testing.T) {
	sf := Surface{Kind: SurfaceWall, AreaSqFt: 120, WindowSqFt: 15, DoorSqFt: 20}
	assert.InDelta(t, 85.0, sf.NetAreaSqFt(), 0.01)
}

func TestSpaceValidate(t *testing.T) {
	ok := Space{
		Name: "Bedroom 2", AreaSqFt: 140, CeilingHeightFt: 8,
		Surfaces: []Surface{
			{Kind: SurfaceWall, AreaSqFt: 96, WindowSqFt: 15},
		},
	}
	assert.NoError(t, ok.Validate())

	overGlazed := Space{
		Name: "Sunroom", AreaSqFt: 100, CeilingHeightFt: 8,
		Surfaces: []Surface{
			{Kind: SurfaceWall, AreaSqFt: 80, WindowSqFt: 70, DoorSqFt: 20},
		},
	}
	assert.Error(t, overGlazed.Validate())

	zeroArea := Space{Name: "Ghost", CeilingHeightFt: 8}
	assert.Error(t, zeroArea.Validate())
}

func TestExteriorWallArea(t *testing.T) {
	s := Space{
		Surfaces: []Surface{
			{Kind: SurfaceWall, Boundary: BoundaryExterior, AreaSqFt: 96},
			{Kind: SurfaceWall, Boundary: BoundaryConditioned, AreaSqFt: 96},
			{Kind: SurfaceWall, Boundary: BoundaryExterior, AreaSqFt: 80},
			{Kind: SurfaceCeiling, Boundary: BoundaryAttic, AreaSqFt: 140},
		},
	}
	assert.InDelta(t, 176.0, s.ExteriorWallAreaSqFt(), 0.01)
}

func TestBoundaryUnconditioned(t *testing.T) {
	assert.True(t, BoundaryGarage.Unconditioned())
	assert.True(t, BoundaryAttic.Unconditioned())
	assert.True(t, BoundaryCrawlspace.Unconditioned())
	assert.False(t, BoundaryExterior.Unconditioned())
	assert.False(t, BoundaryConditioned.Unconditioned())
}
