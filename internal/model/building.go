package model

import (
	"math"

	"github.com/rotisserie/eris"
)

// FoundationType describes the building's foundation.
type FoundationType string

const (
	FoundationSlab       FoundationType = "slab"
	FoundationCrawlspace FoundationType = "crawlspace"
	FoundationBasement   FoundationType = "basement"
	FoundationWalkout    FoundationType = "walkout"
)

// DuctLocation describes where the distribution ductwork runs.
type DuctLocation string

const (
	DuctNone       DuctLocation = "none"
	DuctCrawlspace DuctLocation = "crawlspace"
	DuctAttic      DuctLocation = "attic"
)

// LossFactor returns the multiplier applied to a zone's delivered load to
// account for duct losses. Ductless systems have no distribution network to
// leak, so the factor is exactly 1.0.
func (d DuctLocation) LossFactor() float64 {
	switch d {
	case DuctCrawlspace:
		return 1.10
	case DuctAttic:
		return 1.15
	default:
		return 1.0
	}
}

// DesignConditions carries the climate inputs the load calculation runs
// against.
type DesignConditions struct {
	ClimateZone            string  `json:"climate_zone"`
	LatitudeDeg            float64 `json:"latitude_deg"`
	HeatingDesignTempF     float64 `json:"heating_design_temp_f"`
	CoolingDesignTempF     float64 `json:"cooling_design_temp_f"`
	IndoorHeatingSetpointF float64 `json:"indoor_heating_setpoint_f"`
	IndoorCoolingSetpointF float64 `json:"indoor_cooling_setpoint_f"`
	DailyRangeF            float64 `json:"daily_range_f"`
}

// HeatingDeltaT returns the winter indoor-outdoor design temperature
// difference.
func (d DesignConditions) HeatingDeltaT() float64 {
	return d.IndoorHeatingSetpointF - d.HeatingDesignTempF
}

// CoolingDeltaT returns the summer outdoor-indoor design temperature
// difference.
func (d DesignConditions) CoolingDeltaT() float64 {
	return d.CoolingDesignTempF - d.IndoorCoolingSetpointF
}

// areaTolerance is the allowed drift between declared and summed conditioned
// area, in sqft.
const areaTolerance = 10.0

// BuildingThermalModel is the complete envelope model: all zones plus
// building-level metadata.
type BuildingThermalModel struct {
	Zones            []*Zone          `json:"zones"`
	Foundation       FoundationType   `json:"foundation"`
	Ducts            DuctLocation     `json:"ducts"`
	Design           DesignConditions `json:"design"`
	Stories          int              `json:"stories"`
	DeclaredAreaSqFt float64          `json:"declared_area_sqft,omitempty"`
	ACH              float64          `json:"ach"` // natural air changes per hour
}

// ConditionedAreaSqFt sums area across conditioned zones.
func (b *BuildingThermalModel) ConditionedAreaSqFt() float64 {
	var total float64
	for _, z := range b.Zones {
		if z.Type.Conditioned() {
			total += z.TotalAreaSqFt()
		}
	}
	return total
}

// ConditionedZones returns zones that receive heating/cooling.
func (b *BuildingThermalModel) ConditionedZones() []*Zone {
	var out []*Zone
	for _, z := range b.Zones {
		if z.Type.Conditioned() {
			out = append(out, z)
		}
	}
	return out
}

// HasBonusZone reports whether any zone is a bonus zone.
func (b *BuildingThermalModel) HasBonusZone() bool {
	for _, z := range b.Zones {
		if z.Type == ZoneBonus {
			return true
		}
	}
	return false
}

// ValidateModel cross-checks the assembled model before load calculation:
// zone membership, space invariants, declared-vs-summed area, and bonus-zone
// configuration.
func (b *BuildingThermalModel) ValidateModel() error {
	if len(b.ConditionedZones()) == 0 {
		return eris.New("building model: no conditioned zones")
	}

	for _, z := range b.Zones {
		if len(z.Spaces) == 0 {
			return eris.Errorf("building model: zone %s has no spaces", z.Name)
		}
		for _, s := range z.Spaces {
			if err := s.Validate(); err != nil {
				return eris.Wrapf(err, "building model: zone %s", z.Name)
			}
		}
	}

	if b.DeclaredAreaSqFt > 0 {
		summed := b.ConditionedAreaSqFt()
		if math.Abs(summed-b.DeclaredAreaSqFt) > areaTolerance {
			return eris.Errorf("building model: summed conditioned area %.0f sqft differs from declared %.0f sqft by more than %.0f sqft",
				summed, b.DeclaredAreaSqFt, areaTolerance)
		}
	}

	// A bonus zone without its over-garage/over-unconditioned flags set is a
	// configuration gap: its multipliers would silently default to 1.0.
	for _, z := range b.Zones {
		if z.Type != ZoneBonus {
			continue
		}
		flagged := false
		for _, s := range z.Spaces {
			if s.IsOverGarage || s.IsOverUnconditioned {
				flagged = true
				break
			}
		}
		if !flagged {
			return eris.Errorf("building model: bonus zone %s has no over-garage or over-unconditioned space flags", z.Name)
		}
	}

	return nil
}
