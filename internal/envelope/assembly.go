// Package envelope builds the thermal envelope model: effective assembly
// U-values via the parallel-path method, and the assignment of extracted
// rooms into spaces and zones.
package envelope

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Fixed layer R-values shared by the cavity and framing paths. Only the
// insulation-vs-framing layer differs between the two paths.
const (
	InteriorFilmR     = 0.68 // still air, vertical surface
	InteriorFilmUpR   = 0.61 // heat flow up (ceilings, winter)
	InteriorFilmDownR = 0.92 // heat flow down (floors, winter)
	ExteriorFilmR     = 0.17 // 15 mph wind
	SheathingR        = 0.62 // 1/2" OSB
	SidingR           = 0.80 // lap siding + air gap
	DrywallR          = 0.45 // 1/2" gypsum
	SubfloorR         = 0.94 // 3/4" plywood + finish floor
)

// Framing member depths in inches, by assembly.
const (
	studDepth2x4   = 3.5
	studDepth2x6   = 5.5
	ceilingJoistIn = 7.25 // 2x8
	floorJoistIn   = 9.25 // 2x10
)

// woodRPerInch is the R-value per inch of softwood framing.
const woodRPerInch = 1.25

// steelFramingR is the whole-path framing R for steel studs; the web
// short-circuits the cavity almost completely.
const steelFramingR = 0.5

// framingSpec describes one wall framing system: area fraction occupied by
// framing and the member depth. Fractions are empirically corrected values
// (plates, headers, jack studs included), not naive code-minimum spacing
// math.
type framingSpec struct {
	fraction float64
	depthIn  float64
	steel    bool
}

var wallFramingSpecs = map[string]framingSpec{
	"16oc_2x4":  {fraction: 0.23, depthIn: studDepth2x4},
	"16oc_2x6":  {fraction: 0.23, depthIn: studDepth2x6},
	"24oc_2x4":  {fraction: 0.18, depthIn: studDepth2x4},
	"24oc_2x6":  {fraction: 0.18, depthIn: studDepth2x6},
	"advanced":  {fraction: 0.10, depthIn: studDepth2x6},
	"steel":     {fraction: 0.25, depthIn: studDepth2x6, steel: true},
	"rim_joist": {fraction: 0.30, depthIn: floorJoistIn},
}

// Type-specific framing fractions for horizontal assemblies.
const (
	ceilingFramingFraction = 0.06
	floorFramingFraction   = 0.085
)

// FramedWallAssembly is a pure value object describing one framed assembly;
// it is never mutated after construction.
type FramedWallAssembly struct {
	CavityR         float64
	FramingR        float64
	FramingFraction float64
	InteriorFilmR   float64
	ExteriorFilmR   float64
	SheathingR      float64
	SidingR         float64
	DrywallR        float64
}

// fixedLayersR sums the layers common to both paths.
func (a FramedWallAssembly) fixedLayersR() float64 {
	return a.InteriorFilmR + a.ExteriorFilmR + a.SheathingR + a.SidingR + a.DrywallR
}

// NominalU is the U-value ignoring framing: one path through the cavity
// insulation only. Overstates performance by double-digit percent once real
// framing fractions are included.
func (a FramedWallAssembly) NominalU() float64 {
	return 1.0 / (a.fixedLayersR() + a.CavityR)
}

// EffectiveU is the parallel-path U-value: the area-weighted average of the
// cavity path and the framing path.
func (a FramedWallAssembly) EffectiveU() float64 {
	uCavity := 1.0 / (a.fixedLayersR() + a.CavityR)
	uFraming := 1.0 / (a.fixedLayersR() + a.FramingR)
	return (1-a.FramingFraction)*uCavity + a.FramingFraction*uFraming
}

// ParallelPathCalculator computes effective assembly U-values for walls,
// ceilings, and floors.
type ParallelPathCalculator struct{}

// NewParallelPathCalculator creates a calculator.
func NewParallelPathCalculator() *ParallelPathCalculator {
	return &ParallelPathCalculator{}
}

// WallUValue computes the effective U-value for a framed wall with the given
// nominal cavity R-value and framing type key.
func (c *ParallelPathCalculator) WallUValue(nominalR float64, framingType string) (float64, error) {
	spec, ok := wallFramingSpecs[framingType]
	if !ok {
		return 0, eris.Errorf("envelope: unknown framing type %q", framingType)
	}
	if nominalR <= 0 {
		return 0, eris.Errorf("envelope: non-positive cavity R %.1f", nominalR)
	}

	framingR := spec.depthIn * woodRPerInch
	if spec.steel {
		framingR = steelFramingR
	}

	a := FramedWallAssembly{
		CavityR:         nominalR,
		FramingR:        framingR,
		FramingFraction: spec.fraction,
		InteriorFilmR:   InteriorFilmR,
		ExteriorFilmR:   ExteriorFilmR,
		SheathingR:      SheathingR,
		SidingR:         SidingR,
		DrywallR:        DrywallR,
	}

	effective := a.EffectiveU()
	nominal := a.NominalU()
	zap.L().Debug("envelope: wall U-value",
		zap.String("framing", framingType),
		zap.Float64("cavity_r", nominalR),
		zap.Float64("nominal_u", nominal),
		zap.Float64("effective_u", effective),
		zap.Float64("bridging_penalty_pct", (effective/nominal-1)*100),
	)
	return effective, nil
}

// CeilingUValue computes the effective U-value for a joisted ceiling under
// an attic or exposed roof deck. Heat flows up in the heating season.
func (c *ParallelPathCalculator) CeilingUValue(nominalR float64) (float64, error) {
	if nominalR <= 0 {
		return 0, eris.Errorf("envelope: non-positive cavity R %.1f", nominalR)
	}
	a := FramedWallAssembly{
		CavityR:         nominalR,
		FramingR:        ceilingJoistIn * woodRPerInch,
		FramingFraction: ceilingFramingFraction,
		InteriorFilmR:   InteriorFilmUpR,
		ExteriorFilmR:   InteriorFilmUpR, // attic-side still air
		DrywallR:        DrywallR,
	}
	effective := a.EffectiveU()
	zap.L().Debug("envelope: ceiling U-value",
		zap.Float64("cavity_r", nominalR),
		zap.Float64("nominal_u", a.NominalU()),
		zap.Float64("effective_u", effective),
	)
	return effective, nil
}

// FloorUValue computes the effective U-value for a framed floor over an
// unconditioned space. Heat flows down in the heating season.
func (c *ParallelPathCalculator) FloorUValue(nominalR float64) (float64, error) {
	if nominalR <= 0 {
		return 0, eris.Errorf("envelope: non-positive cavity R %.1f", nominalR)
	}
	a := FramedWallAssembly{
		CavityR:         nominalR,
		FramingR:        floorJoistIn * woodRPerInch,
		FramingFraction: floorFramingFraction,
		InteriorFilmR:   InteriorFilmDownR,
		ExteriorFilmR:   InteriorFilmDownR, // crawlspace-side still air
		SheathingR:      SubfloorR,
	}
	effective := a.EffectiveU()
	zap.L().Debug("envelope: floor U-value",
		zap.Float64("cavity_r", nominalR),
		zap.Float64("nominal_u", a.NominalU()),
		zap.Float64("effective_u", effective),
	)
	return effective, nil
}

// NaiveWallU returns the nominal-only U-value for the same wall layer stack,
// for diagnostics and comparison.
func NaiveWallU(nominalR float64) float64 {
	a := FramedWallAssembly{
		CavityR:       nominalR,
		InteriorFilmR: InteriorFilmR,
		ExteriorFilmR: ExteriorFilmR,
		SheathingR:    SheathingR,
		SidingR:       SidingR,
		DrywallR:      DrywallR,
	}
	return a.NominalU()
}
