package model

// RoomLoad is the per-room line of the load schedule.
type RoomLoad struct {
	SpaceID    string    `json:"space_id"`
	Name       string    `json:"name"`
	Type       SpaceType `json:"type"`
	ZoneName   string    `json:"zone_name"`
	FloorLevel int       `json:"floor_level"`
	AreaSqFt   float64   `json:"area_sqft"`

	HeatingBTUHr         float64 `json:"heating_btu_hr"`
	CoolingSensibleBTUHr float64 `json:"cooling_sensible_btu_hr"`
	CoolingLatentBTUHr   float64 `json:"cooling_latent_btu_hr"`
}

// CoolingBTUHr is the room's total cooling load.
func (r RoomLoad) CoolingBTUHr() float64 {
	return r.CoolingSensibleBTUHr + r.CoolingLatentBTUHr
}

// FloorLoads is the per-floor aggregate of the load schedule.
type FloorLoads struct {
	FloorLevel   int     `json:"floor_level"`
	AreaSqFt     float64 `json:"area_sqft"`
	HeatingBTUHr float64 `json:"heating_btu_hr"`
	CoolingBTUHr float64 `json:"cooling_btu_hr"`
}

// HVACLoads is the terminal artifact of the load calculation: whole-building
// heating/cooling totals with equipment sizing and per-room detail.
type HVACLoads struct {
	TotalHeatingBTUHr float64 `json:"total_heating_btu_hr"`
	TotalCoolingBTUHr float64 `json:"total_cooling_btu_hr"`
	SensibleBTUHr     float64 `json:"sensible_btu_hr"`
	LatentBTUHr       float64 `json:"latent_btu_hr"`

	// Equipment sizing: cooling rounded up to the next 0.5 ton, heating
	// rounded up to the next 5,000 BTU/hr (minimum 10,000).
	HeatingTons        float64 `json:"heating_tons"`
	CoolingTons        float64 `json:"cooling_tons"`
	SizedHeatingBTUHr  float64 `json:"sized_heating_btu_hr"`
	SizedCoolingBTUHr  float64 `json:"sized_cooling_btu_hr"`
	RequiredSupplyCFM  float64 `json:"required_supply_cfm"`
	DuctLossFactorUsed float64 `json:"duct_loss_factor_used"`

	PerFloor map[int]FloorLoads `json:"per_floor"`
	Rooms    []RoomLoad         `json:"rooms"`
}
