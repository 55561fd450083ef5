// Package manualj computes residential heating and cooling loads from an
// assembled thermal envelope model, following the ACCA Manual J structure:
// envelope conduction, solar gain, infiltration, internal gains, and duct
// losses, sized to equipment increments.
package manualj

import (
	"math"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/draftworks/manualj-cli/internal/climate"
	"github.com/draftworks/manualj-cli/internal/config"
	"github.com/draftworks/manualj-cli/internal/faults"
	"github.com/draftworks/manualj-cli/internal/model"
)

// Sensible and latent infiltration coefficients (BTU/hr per CFM per °F, and
// per grain of moisture difference).
const (
	sensibleAirFactor = 1.08
	latentAirFactor   = 0.68
)

// doorUValue is the assumed U-value for insulated exterior doors.
const doorUValue = 0.35

// atticSuperheatF is added to the cooling delta-T for ceilings under
// unvented attic air.
const atticSuperheatF = 25.0

// referenceSHGC is the single-pane glazing coefficient the SHGF tables are
// normalized against.
const referenceSHGC = 0.87

// coolingDesignHour is the hour-of-day the cooling calculation represents.
const coolingDesignHour = 15

// bufferFactor scales the design delta-T for surfaces facing buffer spaces
// that float between indoor and outdoor temperature.
func bufferFactor(b model.BoundaryCondition) float64 {
	switch b {
	case model.BoundaryExterior, model.BoundaryAttic:
		return 1.0
	case model.BoundaryGarage, model.BoundaryCrawlspace:
		return 0.5
	case model.BoundaryGround:
		return 0.4
	default:
		// Conditioned or adiabatic: no design-condition heat flow.
		return 0
	}
}

// moistureGrains estimates the summer indoor-outdoor humidity difference in
// grains per pound by climate zone moisture regime.
func moistureGrains(zone string) float64 {
	switch {
	case strings.HasSuffix(zone, "A"):
		return 35 // humid
	case strings.HasSuffix(zone, "B"):
		return 10 // dry
	case strings.HasSuffix(zone, "C"):
		return 20 // marine
	default:
		return 15
	}
}

// Calculator produces HVACLoads for a building model.
type Calculator struct {
	cfg        config.LoadsConfig
	windowSHGC float64
}

// NewCalculator creates a Calculator. windowSHGC is the glazing solar heat
// gain coefficient used to de-rate the single-pane SHGF tables.
func NewCalculator(cfg config.LoadsConfig, windowSHGC float64) *Calculator {
	if windowSHGC <= 0 {
		windowSHGC = 0.30
	}
	return &Calculator{cfg: cfg, windowSHGC: windowSHGC}
}

// Calculate runs the full load calculation. It fails with a CriticalError if
// any heat-losing surface lacks a resolved U-value: totals must never be
// computed against silent placeholder values.
func (c *Calculator) Calculate(bm *model.BuildingThermalModel) (*model.HVACLoads, error) {
	if err := c.checkResolved(bm); err != nil {
		return nil, err
	}

	design := bm.Design
	coolingMonth := climate.CoolingDesignMonth(design.LatitudeDeg)
	grains := moistureGrains(design.ClimateZone)

	loads := &model.HVACLoads{
		PerFloor:           map[int]model.FloorLoads{},
		DuctLossFactorUsed: bm.Ducts.LossFactor(),
	}

	for _, z := range bm.ConditionedZones() {
		zoneArea := z.TotalAreaSqFt()
		if zoneArea <= 0 {
			continue
		}

		// Zone-level infiltration, spread to rooms pro-rata by area.
		infCFM := bm.ACH * z.TotalVolumeCuFt() / 60
		zoneInfHeat := sensibleAirFactor * infCFM * design.HeatingDeltaT() * z.HeatingInfiltrationModifier()
		zoneInfCoolSens := sensibleAirFactor * infCFM * design.CoolingDeltaT() * z.CoolingInfiltrationModifier()
		zoneInfCoolLat := latentAirFactor * infCFM * grains

		// Zone-level internal gains at the cooling design hour. Heating is
		// sized without credit for internal gains.
		zoneGainSens, zoneGainLat := z.InternalGainsAt(coolingDesignHour)

		var zoneHeating, zoneCoolSens, zoneCoolLat float64

		for _, s := range z.Spaces {
			frac := s.AreaSqFt / zoneArea

			heating, coolSens := c.envelopeLoads(s, design, coolingMonth)

			heating += zoneInfHeat * frac
			coolSens += (zoneInfCoolSens + zoneGainSens) * frac
			coolLat := (zoneInfCoolLat + zoneGainLat) * frac

			heating *= s.HeatingMultiplier()
			coolSens *= s.CoolingMultiplier()
			coolLat *= s.CoolingMultiplier()

			rl := model.RoomLoad{
				SpaceID:              s.ID,
				Name:                 s.Name,
				Type:                 s.Type,
				ZoneName:             z.Name,
				FloorLevel:           s.FloorLevel,
				AreaSqFt:             s.AreaSqFt,
				HeatingBTUHr:         heating,
				CoolingSensibleBTUHr: coolSens,
				CoolingLatentBTUHr:   coolLat,
			}
			loads.Rooms = append(loads.Rooms, rl)

			zoneHeating += heating
			zoneCoolSens += coolSens
			zoneCoolLat += coolLat

			fl := loads.PerFloor[s.FloorLevel]
			fl.FloorLevel = s.FloorLevel
			fl.AreaSqFt += s.AreaSqFt
			fl.HeatingBTUHr += heating
			fl.CoolingBTUHr += coolSens + coolLat
			loads.PerFloor[s.FloorLevel] = fl
		}

		// Duct losses apply to the zone total once.
		factor := bm.Ducts.LossFactor()
		loads.TotalHeatingBTUHr += zoneHeating * factor
		loads.SensibleBTUHr += zoneCoolSens * factor
		loads.LatentBTUHr += zoneCoolLat * factor

		zap.L().Debug("manualj: zone loads",
			zap.String("zone", z.Name),
			zap.Float64("heating_btu_hr", zoneHeating*factor),
			zap.Float64("cooling_btu_hr", (zoneCoolSens+zoneCoolLat)*factor),
			zap.Float64("infiltration_modifier", z.HeatingInfiltrationModifier()),
		)
	}

	loads.TotalCoolingBTUHr = loads.SensibleBTUHr + loads.LatentBTUHr
	c.size(loads)

	zap.L().Info("manualj: building loads computed",
		zap.Float64("total_heating_btu_hr", loads.TotalHeatingBTUHr),
		zap.Float64("total_cooling_btu_hr", loads.TotalCoolingBTUHr),
		zap.Float64("heating_tons", loads.HeatingTons),
		zap.Float64("cooling_tons", loads.CoolingTons),
		zap.Float64("required_supply_cfm", loads.RequiredSupplyCFM),
	)

	return loads, nil
}

// envelopeLoads accumulates per-surface conduction and solar terms for one
// space.
func (c *Calculator) envelopeLoads(s *model.Space, design model.DesignConditions, coolingMonth time.Month) (heating, coolingSensible float64) {
	for _, sf := range s.Surfaces {
		bf := bufferFactor(sf.Boundary)
		if bf == 0 {
			continue
		}

		heatDT := design.HeatingDeltaT() * bf
		coolDT := design.CoolingDeltaT() * bf
		if sf.Kind == model.SurfaceCeiling && sf.Boundary == model.BoundaryAttic {
			coolDT += atticSuperheatF
		}
		// Ground-coupled surfaces contribute no summer gain.
		if sf.Boundary == model.BoundaryGround {
			coolDT = 0
		}

		net := sf.NetAreaSqFt()
		heating += sf.UValue * net * heatDT
		coolingSensible += sf.UValue * net * coolDT

		if sf.WindowSqFt > 0 {
			heating += sf.WindowUValue * sf.WindowSqFt * heatDT
			coolingSensible += sf.WindowUValue * sf.WindowSqFt * coolDT

			shgf := climate.SHGFByLatitude(design.LatitudeDeg, sf.Orientation, coolingMonth, coolingDesignHour)
			coolingSensible += shgf * sf.WindowSqFt * (c.windowSHGC / referenceSHGC)
		}
		if sf.DoorSqFt > 0 {
			heating += doorUValue * sf.DoorSqFt * heatDT
			coolingSensible += doorUValue * sf.DoorSqFt * coolDT
		}
	}
	return heating, coolingSensible
}

// checkResolved verifies every heat-losing surface has a resolved U-value.
func (c *Calculator) checkResolved(bm *model.BuildingThermalModel) error {
	for _, z := range bm.ConditionedZones() {
		for _, s := range z.Spaces {
			for _, sf := range s.Surfaces {
				if bufferFactor(sf.Boundary) == 0 {
					continue
				}
				if sf.UValue <= 0 {
					return faults.Critical(faults.KindValidation,
						eris.Errorf("manualj: space %s has unresolved U-value on %s surface; run the assembly calculator first", s.Name, sf.Kind))
				}
				if sf.WindowSqFt > 0 && sf.WindowUValue <= 0 {
					return faults.Critical(faults.KindValidation,
						eris.Errorf("manualj: space %s has glazing with unresolved U-value", s.Name))
				}
			}
		}
	}
	return nil
}

// size converts BTU totals to equipment sizes: cooling rounds up to the next
// half ton, heating to the next 5,000 BTU/hr with a 10,000 floor.
func (c *Calculator) size(loads *model.HVACLoads) {
	coolingTons := loads.TotalCoolingBTUHr / 12000
	loads.CoolingTons = math.Ceil(coolingTons/0.5) * 0.5
	loads.SizedCoolingBTUHr = loads.CoolingTons * 12000

	sized := math.Ceil(loads.TotalHeatingBTUHr/5000) * 5000
	if sized < 10000 {
		sized = 10000
	}
	loads.SizedHeatingBTUHr = sized
	loads.HeatingTons = sized / 12000

	loads.RequiredSupplyCFM = loads.CoolingTons * c.cfg.SupplyCFMPerTon
}
