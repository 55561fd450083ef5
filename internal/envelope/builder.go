package envelope

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/draftworks/manualj-cli/internal/config"
	"github.com/draftworks/manualj-cli/internal/model"
)

// sqft of glazing assumed per window opening when the drawing gives a count
// but not sizes.
const sqftPerWindow = 15.0

// sqft assumed for an exterior door.
const doorSqFt = 20.0

// Builder assigns extracted rooms to spaces with boundary conditions,
// groups spaces into zones, and resolves every surface U-value.
type Builder struct {
	cfg  config.EnvelopeConfig
	calc *ParallelPathCalculator
}

// NewBuilder creates a Builder.
func NewBuilder(cfg config.EnvelopeConfig, calc *ParallelPathCalculator) *Builder {
	if calc == nil {
		calc = NewParallelPathCalculator()
	}
	return &Builder{cfg: cfg, calc: calc}
}

// defaultExteriorWalls estimates exposure when the vision result did not
// supply an exterior wall count. Interior circulation spaces have none.
func defaultExteriorWalls(t model.SpaceType) int {
	switch t {
	case model.SpaceTypeHallway, model.SpaceTypeCloset, model.SpaceTypeFoyer:
		return 0
	case model.SpaceTypeBathroom, model.SpaceTypeLaundry, model.SpaceTypeUtility:
		return 1
	default:
		return 2
	}
}

// orientationCycle spreads wall orientations across rooms so glazing load is
// not artificially concentrated on one face.
var orientationCycle = []model.Orientation{
	model.OrientN, model.OrientE, model.OrientS, model.OrientW,
	model.OrientNE, model.OrientSE, model.OrientSW, model.OrientNW,
}

// Build assembles the thermal model from extracted rooms. Every surface gets
// a resolved U-value; the load calculator treats an unresolved one as a
// defect, never a default.
func (b *Builder) Build(rooms []model.Room, design model.DesignConditions, declaredAreaSqFt float64) (*model.BuildingThermalModel, error) {
	if len(rooms) == 0 {
		return nil, eris.New("envelope: no rooms to build from")
	}

	wallU, err := b.calc.WallUValue(b.cfg.WallCavityR, b.cfg.FramingType)
	if err != nil {
		return nil, eris.Wrap(err, "envelope: resolve wall U")
	}
	ceilingU, err := b.calc.CeilingUValue(b.cfg.CeilingCavityR)
	if err != nil {
		return nil, eris.Wrap(err, "envelope: resolve ceiling U")
	}
	floorU, err := b.calc.FloorUValue(b.cfg.FloorCavityR)
	if err != nil {
		return nil, eris.Wrap(err, "envelope: resolve floor U")
	}

	maxFloor := 1
	hasBasement := false
	for _, r := range rooms {
		if r.FloorLevel > maxFloor {
			maxFloor = r.FloorLevel
		}
		if r.FloorLevel == 0 {
			hasBasement = true
		}
	}

	foundation := model.FoundationType(b.cfg.FoundationDefault)
	if hasBasement {
		foundation = model.FoundationBasement
	}

	zones := map[string]*model.Zone{}
	zone := func(key, name string, zt model.ZoneType, floor int) *model.Zone {
		if z, ok := zones[key]; ok {
			return z
		}
		z := &model.Zone{ID: uuid.New().String(), Name: name, Type: zt, FloorLevel: floor}
		zones[key] = z
		return z
	}

	orient := 0
	for _, r := range rooms {
		s := b.buildSpace(r, maxFloor, foundation, wallU, ceilingU, floorU, &orient)

		switch {
		case s.Type == model.SpaceTypeGarage:
			zone("garage", "Garage", model.ZoneGarage, s.FloorLevel).AddSpace(s)
		case s.FloorLevel == 0:
			zone("basement", "Basement", model.ZoneBasement, 0).AddSpace(s)
		case s.Type == model.SpaceTypeBonus:
			zone("bonus", "Bonus", model.ZoneBonus, s.FloorLevel).AddSpace(s)
		case s.FloorLevel > 1 && isSleepingType(s.Type):
			zone("sleeping", "Sleeping", model.ZoneSleeping, s.FloorLevel).AddSpace(s)
		default:
			key := fmt.Sprintf("main-%d", s.FloorLevel)
			zone(key, fmt.Sprintf("Main Living (floor %d)", s.FloorLevel), model.ZoneMainLiving, s.FloorLevel).AddSpace(s)
		}
	}

	bm := &model.BuildingThermalModel{
		Foundation:       foundation,
		Ducts:            model.DuctLocation(b.cfg.DuctLocation),
		Design:           design,
		Stories:          maxFloor,
		DeclaredAreaSqFt: declaredAreaSqFt,
		ACH:              b.cfg.NaturalACH,
	}
	for _, z := range zones {
		bm.Zones = append(bm.Zones, z)
	}

	zap.L().Info("envelope: model built",
		zap.Int("rooms", len(rooms)),
		zap.Int("zones", len(bm.Zones)),
		zap.Int("stories", bm.Stories),
		zap.Float64("conditioned_sqft", bm.ConditionedAreaSqFt()),
		zap.String("foundation", string(foundation)),
	)

	return bm, nil
}

func isSleepingType(t model.SpaceType) bool {
	switch t {
	case model.SpaceTypeBedroom, model.SpaceTypeBathroom, model.SpaceTypeCloset, model.SpaceTypeHallway:
		return true
	}
	return false
}

func (b *Builder) buildSpace(r model.Room, maxFloor int, foundation model.FoundationType, wallU, ceilingU, floorU float64, orient *int) *model.Space {
	ceiling := r.Ceiling
	if ceiling == "" {
		ceiling = model.CeilingFlat
	}

	s := &model.Space{
		ID:              r.ID,
		Name:            r.Name,
		Type:            r.Type,
		FloorLevel:      r.FloorLevel,
		AreaSqFt:        r.AreaSqFt,
		CeilingHeightFt: b.cfg.CeilingHeightFt,
		CeilingType:     ceiling,
	}
	if ceiling == model.CeilingCathedral {
		s.HasCathedralCeiling = true
	}

	topFloor := r.FloorLevel >= maxFloor

	// Ceiling-above boundary.
	if topFloor {
		s.CeilingAbove = model.BoundaryAttic
	} else {
		s.CeilingAbove = model.BoundaryConditioned
	}

	// Floor-below boundary.
	switch {
	case r.FloorLevel == 0:
		s.FloorBelow = model.BoundaryGround
	case r.FloorLevel == 1:
		switch foundation {
		case model.FoundationSlab:
			s.FloorBelow = model.BoundaryGround
		case model.FoundationCrawlspace:
			s.FloorBelow = model.BoundaryCrawlspace
		default:
			s.FloorBelow = model.BoundaryConditioned
		}
	default:
		s.FloorBelow = model.BoundaryConditioned
	}

	// Bonus rooms sit over the garage in the dominant residential pattern;
	// that assumption drives their harsher boundary conditions.
	if r.Type == model.SpaceTypeBonus && r.FloorLevel > 1 {
		s.IsOverGarage = true
		s.FloorBelow = model.BoundaryGarage
	}
	if s.FloorBelow.Unconditioned() && !s.IsOverGarage {
		s.IsOverUnconditioned = r.FloorLevel > 1
	}

	// Walls.
	extWalls := r.ExteriorWalls
	if extWalls == 0 && r.Source != model.RoomSourceVision {
		extWalls = defaultExteriorWalls(r.Type)
	}
	if extWalls > 4 {
		extWalls = 4
	}

	var windowBudget float64
	if r.Windows > 0 {
		windowBudget = float64(r.Windows) * sqftPerWindow
	}

	sideLen := r.PerimeterFt / 4
	for i := 0; i < extWalls; i++ {
		o := orientationCycle[*orient%len(orientationCycle)]
		*orient++

		wall := model.Surface{
			Kind:         model.SurfaceWall,
			Orientation:  o,
			Boundary:     model.BoundaryExterior,
			AreaSqFt:     sideLen * b.cfg.CeilingHeightFt,
			UValue:       wallU,
			WindowUValue: b.cfg.WindowUValue,
		}

		// One entry door on the first exterior wall of main living spaces.
		if i == 0 && r.FloorLevel == 1 &&
			(r.Type == model.SpaceTypeLiving || r.Type == model.SpaceTypeFoyer) {
			wall.DoorSqFt = doorSqFt
			if wall.DoorSqFt > wall.AreaSqFt {
				wall.DoorSqFt = wall.AreaSqFt
			}
		}

		if windowBudget > 0 {
			share := windowBudget / float64(extWalls)
			if max := wall.AreaSqFt * 0.6; share > max {
				share = max
			}
			wall.WindowSqFt = share
		} else {
			wall.WindowSqFt = wall.AreaSqFt * b.cfg.WindowWallFrac
		}
		// Openings never exceed the wall that hosts them; the net opaque
		// area must stay non-negative.
		if rem := wall.AreaSqFt - wall.DoorSqFt; wall.WindowSqFt > rem {
			wall.WindowSqFt = rem
		}

		s.Surfaces = append(s.Surfaces, wall)
	}

	// Ceiling.
	s.Surfaces = append(s.Surfaces, model.Surface{
		Kind:     model.SurfaceCeiling,
		Boundary: s.CeilingAbove,
		AreaSqFt: r.AreaSqFt,
		UValue:   ceilingU,
	})

	// Floor.
	s.Surfaces = append(s.Surfaces, model.Surface{
		Kind:     model.SurfaceFloor,
		Boundary: s.FloorBelow,
		AreaSqFt: r.AreaSqFt,
		UValue:   floorU,
	})

	return s
}
