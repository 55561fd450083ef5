package manualj

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftworks/manualj-cli/internal/config"
	"github.com/draftworks/manualj-cli/internal/faults"
	"github.com/draftworks/manualj-cli/internal/model"
)

func testDesign() model.DesignConditions {
	return model.DesignConditions{
		ClimateZone:            "4A",
		LatitudeDeg:            39.0,
		HeatingDesignTempF:     17,
		CoolingDesignTempF:     88,
		IndoorHeatingSetpointF: 70,
		IndoorCoolingSetpointF: 75,
	}
}

func testCalc() *Calculator {
	return NewCalculator(config.LoadsConfig{SupplyCFMPerTon: 400}, 0.30)
}

// simpleBuilding is a one-zone, one-space slab ranch with a single south
// exterior wall, an attic ceiling, and a slab floor.
func simpleBuilding(ducts model.DuctLocation) *model.BuildingThermalModel {
	sp := &model.Space{
		ID:              "s1",
		Name:            "living",
		Type:            model.SpaceTypeLiving,
		FloorLevel:      1,
		AreaSqFt:        300,
		CeilingHeightFt: 8,
		CeilingType:     model.CeilingFlat,
		Surfaces: []model.Surface{
			{Kind: model.SurfaceWall, Orientation: model.OrientS, Boundary: model.BoundaryExterior, AreaSqFt: 160, WindowSqFt: 15, UValue: 0.07, WindowUValue: 0.32},
			{Kind: model.SurfaceCeiling, Boundary: model.BoundaryAttic, AreaSqFt: 300, UValue: 0.03},
			{Kind: model.SurfaceFloor, Boundary: model.BoundaryGround, AreaSqFt: 300, UValue: 0.05},
		},
	}
	z := &model.Zone{ID: "z1", Name: "floor 1 main", Type: model.ZoneMainLiving, FloorLevel: 1}
	z.AddSpace(sp)
	return &model.BuildingThermalModel{
		Zones:      []*model.Zone{z},
		Foundation: model.FoundationSlab,
		Ducts:      ducts,
		Design:     testDesign(),
		Stories:    1,
		ACH:        0.35,
	}
}

func TestCalculateDuctLocationOrdering(t *testing.T) {
	calc := testCalc()

	var totals []float64
	var tons []float64
	for _, d := range []model.DuctLocation{model.DuctNone, model.DuctCrawlspace, model.DuctAttic} {
		loads, err := calc.Calculate(simpleBuilding(d))
		require.NoError(t, err)
		totals = append(totals, loads.TotalCoolingBTUHr)
		tons = append(tons, loads.CoolingTons)
	}

	assert.Less(t, totals[0], totals[1])
	assert.Less(t, totals[1], totals[2])
	assert.LessOrEqual(t, tons[0], tons[1])
	assert.LessOrEqual(t, tons[1], tons[2])

	// Duct factors scale the totals exactly.
	assert.InDelta(t, 1.10, totals[1]/totals[0], 1e-9)
	assert.InDelta(t, 1.15, totals[2]/totals[0], 1e-9)

	loads, err := calc.Calculate(simpleBuilding(model.DuctNone))
	require.NoError(t, err)
	assert.Equal(t, 1.0, loads.DuctLossFactorUsed)
}

func TestCalculateHeatingSimpleBuilding(t *testing.T) {
	bm := simpleBuilding(model.DuctNone)
	loads, err := testCalc().Calculate(bm)
	require.NoError(t, err)

	dt := 53.0 // 70 - 17
	wall := 0.07*(160-15)*dt + 0.32*15*dt
	ceiling := 0.03 * 300 * dt
	floor := 0.05 * 300 * dt * 0.4
	inf := 1.08 * (0.35 * 2400 / 60) * dt // modifier 1.0 on floor 1
	want := wall + ceiling + floor + inf

	assert.InDelta(t, want, loads.TotalHeatingBTUHr, 0.01)
	require.Len(t, loads.Rooms, 1)
	assert.InDelta(t, want, loads.Rooms[0].HeatingBTUHr, 0.01)
}

// The bonus-zone infiltration modifier replaces the generic upper-floor
// modifier. The heating total must reflect 1.4 exactly once, never 1.2 or a
// compounded 1.68.
func TestCalculateBonusZoneInfiltrationOnce(t *testing.T) {
	sp := &model.Space{
		ID:              "b1",
		Name:            "bonus room",
		Type:            model.SpaceTypeBonus,
		FloorLevel:      2,
		AreaSqFt:        280,
		CeilingHeightFt: 8,
		CeilingType:     model.CeilingFlat,
		IsOverGarage:    true,
		Surfaces: []model.Surface{
			{Kind: model.SurfaceWall, Orientation: model.OrientW, Boundary: model.BoundaryExterior, AreaSqFt: 120, UValue: 0.07},
			{Kind: model.SurfaceFloor, Boundary: model.BoundaryGarage, AreaSqFt: 280, UValue: 0.05},
		},
	}
	z := &model.Zone{ID: "zb", Name: "bonus", Type: model.ZoneBonus, FloorLevel: 2}
	z.AddSpace(sp)
	bm := &model.BuildingThermalModel{
		Zones:      []*model.Zone{z},
		Foundation: model.FoundationSlab,
		Ducts:      model.DuctNone,
		Design:     testDesign(),
		Stories:    2,
		ACH:        0.35,
	}

	loads, err := testCalc().Calculate(bm)
	require.NoError(t, err)

	dt := 53.0
	envelope := 0.07*120*dt + 0.05*280*dt*0.5 // garage floor gets half delta-T
	infBase := 1.08 * (0.35 * 280 * 8 / 60) * dt

	heatingWith := func(mod float64) float64 {
		return (envelope + infBase*mod) * 1.3 // over-garage space multiplier
	}

	assert.InDelta(t, heatingWith(1.4), loads.TotalHeatingBTUHr, 0.01)
	assert.Greater(t, math.Abs(heatingWith(1.2)-loads.TotalHeatingBTUHr), 1.0)
	assert.Greater(t, math.Abs(heatingWith(1.4*1.2)-loads.TotalHeatingBTUHr), 1.0)
}

func TestCalculateUnresolvedUValueIsCritical(t *testing.T) {
	bm := simpleBuilding(model.DuctNone)
	bm.Zones[0].Spaces[0].Surfaces[0].UValue = 0

	_, err := testCalc().Calculate(bm)
	require.Error(t, err)
	assert.True(t, faults.IsCritical(err))
	assert.Contains(t, err.Error(), "unresolved U-value")
}

func TestCalculateUnresolvedWindowUValueIsCritical(t *testing.T) {
	bm := simpleBuilding(model.DuctNone)
	bm.Zones[0].Spaces[0].Surfaces[0].WindowUValue = 0

	_, err := testCalc().Calculate(bm)
	require.Error(t, err)
	assert.True(t, faults.IsCritical(err))
}

func TestSizing(t *testing.T) {
	calc := testCalc()

	cases := []struct {
		name        string
		heating     float64
		cooling     float64
		wantTons    float64
		wantHeating float64
		wantCFM     float64
	}{
		{"small loads hit floors", 3200, 4100, 0.5, 10000, 200},
		{"rounds up not down", 21000, 25000, 2.5, 25000, 1000},
		{"exact boundaries stay", 20000, 24000, 2.0, 20000, 800},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			loads := &model.HVACLoads{TotalHeatingBTUHr: tc.heating, TotalCoolingBTUHr: tc.cooling}
			calc.size(loads)
			assert.Equal(t, tc.wantTons, loads.CoolingTons)
			assert.Equal(t, tc.wantHeating, loads.SizedHeatingBTUHr)
			assert.Equal(t, tc.wantTons*12000, loads.SizedCoolingBTUHr)
			assert.Equal(t, tc.wantCFM, loads.RequiredSupplyCFM)
		})
	}
}

func TestCalculatePerFloorAggregation(t *testing.T) {
	bm := simpleBuilding(model.DuctNone)
	up := &model.Space{
		ID: "s2", Name: "bedroom", Type: model.SpaceTypeBedroom, FloorLevel: 2,
		AreaSqFt: 200, CeilingHeightFt: 8, CeilingType: model.CeilingFlat,
		Surfaces: []model.Surface{
			{Kind: model.SurfaceWall, Orientation: model.OrientN, Boundary: model.BoundaryExterior, AreaSqFt: 100, UValue: 0.07},
			{Kind: model.SurfaceCeiling, Boundary: model.BoundaryAttic, AreaSqFt: 200, UValue: 0.03},
		},
	}
	zd := &model.Zone{ID: "z2", Name: "floor 2 sleeping", Type: model.ZoneSleeping, FloorLevel: 2}
	zd.AddSpace(up)
	bm.Zones = append(bm.Zones, zd)

	loads, err := testCalc().Calculate(bm)
	require.NoError(t, err)

	require.Len(t, loads.Rooms, 2)
	require.Len(t, loads.PerFloor, 2)
	assert.Equal(t, 300.0, loads.PerFloor[1].AreaSqFt)
	assert.Equal(t, 200.0, loads.PerFloor[2].AreaSqFt)
	assert.Greater(t, loads.PerFloor[1].HeatingBTUHr, 0.0)
	assert.Greater(t, loads.PerFloor[2].HeatingBTUHr, 0.0)
}
