package model

import "github.com/rotisserie/eris"

// SpaceType represents a room's functional category.
type SpaceType string

const (
	SpaceTypeBedroom  SpaceType = "bedroom"
	SpaceTypeBathroom SpaceType = "bathroom"
	SpaceTypeKitchen  SpaceType = "kitchen"
	SpaceTypeLiving   SpaceType = "living"
	SpaceTypeDining   SpaceType = "dining"
	SpaceTypeOffice   SpaceType = "office"
	SpaceTypeCloset   SpaceType = "closet"
	SpaceTypeHallway  SpaceType = "hallway"
	SpaceTypeLaundry  SpaceType = "laundry"
	SpaceTypeFoyer    SpaceType = "foyer"
	SpaceTypeUtility  SpaceType = "utility"
	SpaceTypeGarage   SpaceType = "garage"
	SpaceTypeStorage  SpaceType = "storage"
	SpaceTypeBonus    SpaceType = "bonus"
	SpaceTypeOther    SpaceType = "other"
)

// AllSpaceTypes returns every defined space type.
func AllSpaceTypes() []SpaceType {
	return []SpaceType{
		SpaceTypeBedroom,
		SpaceTypeBathroom,
		SpaceTypeKitchen,
		SpaceTypeLiving,
		SpaceTypeDining,
		SpaceTypeOffice,
		SpaceTypeCloset,
		SpaceTypeHallway,
		SpaceTypeLaundry,
		SpaceTypeFoyer,
		SpaceTypeUtility,
		SpaceTypeGarage,
		SpaceTypeStorage,
		SpaceTypeBonus,
		SpaceTypeOther,
	}
}

// BoundaryCondition describes what is on the other side of a surface.
type BoundaryCondition string

const (
	BoundaryExterior    BoundaryCondition = "exterior"
	BoundaryGround      BoundaryCondition = "ground"
	BoundaryGarage      BoundaryCondition = "garage"
	BoundaryCrawlspace  BoundaryCondition = "crawlspace"
	BoundaryAttic       BoundaryCondition = "attic"
	BoundaryConditioned BoundaryCondition = "conditioned"
	BoundaryAdiabatic   BoundaryCondition = "adiabatic"
)

// Unconditioned reports whether the boundary faces an unconditioned buffer
// space (garage, crawlspace, attic).
func (b BoundaryCondition) Unconditioned() bool {
	switch b {
	case BoundaryGarage, BoundaryCrawlspace, BoundaryAttic:
		return true
	}
	return false
}

// SurfaceKind is the physical class of a surface.
type SurfaceKind string

const (
	SurfaceWall    SurfaceKind = "wall"
	SurfaceCeiling SurfaceKind = "ceiling"
	SurfaceFloor   SurfaceKind = "floor"
)

// Orientation is a compass direction for vertical surfaces and glazing.
type Orientation string

const (
	OrientN  Orientation = "N"
	OrientNE Orientation = "NE"
	OrientE  Orientation = "E"
	OrientSE Orientation = "SE"
	OrientS  Orientation = "S"
	OrientSW Orientation = "SW"
	OrientW  Orientation = "W"
	OrientNW Orientation = "NW"
	// OrientNone marks horizontal surfaces (ceilings, floors).
	OrientNone Orientation = ""
)

// AllOrientations returns the eight compass orientations.
func AllOrientations() []Orientation {
	return []Orientation{OrientN, OrientNE, OrientE, OrientSE, OrientS, OrientSW, OrientW, OrientNW}
}

// Surface is one envelope face of a Space. Surfaces are exclusively owned by
// their Space.
type Surface struct {
	Kind         SurfaceKind       `json:"kind"`
	Orientation  Orientation       `json:"orientation,omitempty"`
	Boundary     BoundaryCondition `json:"boundary"`
	AreaSqFt     float64           `json:"area_sqft"`
	WindowSqFt   float64           `json:"window_sqft,omitempty"`
	DoorSqFt     float64           `json:"door_sqft,omitempty"`
	UValue       float64           `json:"u_value"`        // effective assembly U, 0 = unresolved
	WindowUValue float64           `json:"window_u_value"` // glazing U, 0 = unresolved when WindowSqFt > 0
}

// NetAreaSqFt returns the opaque area: gross minus window and door sub-areas.
func (s Surface) NetAreaSqFt() float64 {
	return s.AreaSqFt - s.WindowSqFt - s.DoorSqFt
}

// CeilingType describes the ceiling geometry of a Space.
type CeilingType string

const (
	CeilingFlat      CeilingType = "flat"
	CeilingVaulted   CeilingType = "vaulted"
	CeilingCathedral CeilingType = "cathedral"
)

// VolumeMultiplier returns the factor applied to area×height when deriving
// air volume. Volume feeds infiltration terms, not area-driven ones.
func (c CeilingType) VolumeMultiplier() float64 {
	switch c {
	case CeilingVaulted:
		return 1.5
	case CeilingCathedral:
		return 2.0
	default:
		return 1.0
	}
}

// Space is one room's thermal identity: geometry reduced to area and height,
// plus boundary conditions and the envelope surfaces that enclose it.
type Space struct {
	ID         string    `json:"id"`
	ZoneID     string    `json:"zone_id,omitempty"`
	Name       string    `json:"name"`
	Type       SpaceType `json:"type"`
	FloorLevel int       `json:"floor_level"`

	AreaSqFt        float64     `json:"area_sqft"`
	CeilingHeightFt float64     `json:"ceiling_height_ft"`
	CeilingType     CeilingType `json:"ceiling_type"`

	FloorBelow   BoundaryCondition `json:"floor_below"`
	CeilingAbove BoundaryCondition `json:"ceiling_above"`

	IsOverGarage        bool `json:"is_over_garage"`
	IsOverUnconditioned bool `json:"is_over_unconditioned"`
	HasCathedralCeiling bool `json:"has_cathedral_ceiling"`

	// InBonusZone is set when the space is assigned to a bonus zone.
	InBonusZone bool `json:"in_bonus_zone,omitempty"`

	Surfaces []Surface `json:"surfaces"`
}

// VolumeCuFt returns the air volume including the ceiling-type multiplier.
func (s *Space) VolumeCuFt() float64 {
	return s.AreaSqFt * s.CeilingHeightFt * s.CeilingType.VolumeMultiplier()
}

// HeatingMultiplier returns the space-level heating load multiplier.
// The first matching rule wins, in priority order.
func (s *Space) HeatingMultiplier() float64 {
	switch {
	case s.IsOverGarage:
		return 1.3
	case s.HasCathedralCeiling:
		return 1.2
	case s.IsOverUnconditioned:
		return 1.15
	default:
		return 1.0
	}
}

// CoolingMultiplier returns the space-level cooling load multiplier.
// Bonus bedrooms and bonus storage run intermittently; pure storage is
// rarely conditioned at all.
func (s *Space) CoolingMultiplier() float64 {
	if s.Type == SpaceTypeStorage && !s.InBonusZone {
		return 0.3
	}
	if s.InBonusZone && (s.Type == SpaceTypeBedroom || s.Type == SpaceTypeStorage) {
		return 0.7
	}
	return 1.0
}

// ExteriorWallAreaSqFt sums gross wall area with an exterior boundary.
func (s *Space) ExteriorWallAreaSqFt() float64 {
	var total float64
	for _, sf := range s.Surfaces {
		if sf.Kind == SurfaceWall && sf.Boundary == BoundaryExterior {
			total += sf.AreaSqFt
		}
	}
	return total
}

// WindowAreaSqFt sums glazing area across all surfaces.
func (s *Space) WindowAreaSqFt() float64 {
	var total float64
	for _, sf := range s.Surfaces {
		total += sf.WindowSqFt
	}
	return total
}

// Validate checks structural invariants: every wall's net area must be
// non-negative, and geometry fields must be positive.
func (s *Space) Validate() error {
	if s.AreaSqFt <= 0 {
		return eris.Errorf("space %s: non-positive area %.1f", s.Name, s.AreaSqFt)
	}
	if s.CeilingHeightFt <= 0 {
		return eris.Errorf("space %s: non-positive ceiling height %.1f", s.Name, s.CeilingHeightFt)
	}
	for i, sf := range s.Surfaces {
		if sf.NetAreaSqFt() < 0 {
			return eris.Errorf("space %s: surface %d (%s %s) net area %.1f < 0: windows+doors exceed gross area",
				s.Name, i, sf.Kind, sf.Orientation, sf.NetAreaSqFt())
		}
	}
	return nil
}
