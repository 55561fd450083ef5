package model

// ZoneType groups spaces sharing a thermostat and occupancy pattern.
type ZoneType string

const (
	ZoneMainLiving ZoneType = "main_living"
	ZoneSleeping   ZoneType = "sleeping"
	ZoneBonus      ZoneType = "bonus"
	ZoneGarage     ZoneType = "garage"
	ZoneBasement   ZoneType = "basement"
	ZoneAttic      ZoneType = "attic"
)

// Conditioned reports whether the zone receives heating/cooling.
func (t ZoneType) Conditioned() bool {
	switch t {
	case ZoneGarage, ZoneAttic:
		return false
	}
	return true
}

// Zone is a collection of Spaces sharing HVAC control and an occupancy
// schedule. Derived properties are always recomputed from member spaces,
// never cached, so they cannot drift from the membership.
type Zone struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Type       ZoneType `json:"type"`
	FloorLevel int      `json:"floor_level"`
	Spaces     []*Space `json:"spaces"`
}

// AddSpace assigns a space to the zone, stamping its zone id and bonus flag.
func (z *Zone) AddSpace(s *Space) {
	s.ZoneID = z.ID
	s.InBonusZone = z.Type == ZoneBonus
	z.Spaces = append(z.Spaces, s)
}

// TotalAreaSqFt sums member space areas.
func (z *Zone) TotalAreaSqFt() float64 {
	var total float64
	for _, s := range z.Spaces {
		total += s.AreaSqFt
	}
	return total
}

// TotalVolumeCuFt sums member space volumes (ceiling multipliers included).
func (z *Zone) TotalVolumeCuFt() float64 {
	var total float64
	for _, s := range z.Spaces {
		total += s.VolumeCuFt()
	}
	return total
}

// ExteriorWallAreaSqFt sums exterior wall area across member spaces.
func (z *Zone) ExteriorWallAreaSqFt() float64 {
	var total float64
	for _, s := range z.Spaces {
		total += s.ExteriorWallAreaSqFt()
	}
	return total
}

// HeatingInfiltrationModifier returns the zone infiltration modifier for
// heating. Upper floors leak more; bonus zones over garages leak most. The
// bonus rule replaces the generic upper-floor rule, it does not compound.
func (z *Zone) HeatingInfiltrationModifier() float64 {
	if z.FloorLevel > 1 {
		if z.Type == ZoneBonus {
			return 1.4
		}
		return 1.2
	}
	return 1.0
}

// CoolingInfiltrationModifier returns the zone infiltration modifier for
// cooling.
func (z *Zone) CoolingInfiltrationModifier() float64 {
	if z.FloorLevel > 1 {
		return 1.1
	}
	return 1.0
}

// GainsPeriod is one block of a zone's internal-gains schedule.
type GainsPeriod struct {
	StartHour int // inclusive, 0-23
	EndHour   int // exclusive
	Occupants int
	// Per-occupant gains, BTU/hr.
	SensiblePerOccupant float64
	LatentPerOccupant   float64
	// Area-driven gains, BTU/hr per sqft.
	LightingPerSqFt  float64
	EquipmentPerSqFt float64
}

// internalGainsSchedules maps zone type to its occupancy schedule. Occupant
// gains follow Manual J defaults (230 sensible / 200 latent BTU/hr each).
var internalGainsSchedules = map[ZoneType][]GainsPeriod{
	ZoneMainLiving: {
		{StartHour: 6, EndHour: 9, Occupants: 3, SensiblePerOccupant: 230, LatentPerOccupant: 200, LightingPerSqFt: 1.0, EquipmentPerSqFt: 0.5},
		{StartHour: 9, EndHour: 17, Occupants: 1, SensiblePerOccupant: 230, LatentPerOccupant: 200, LightingPerSqFt: 0.5, EquipmentPerSqFt: 0.5},
		{StartHour: 17, EndHour: 23, Occupants: 4, SensiblePerOccupant: 230, LatentPerOccupant: 200, LightingPerSqFt: 1.5, EquipmentPerSqFt: 1.0},
		{StartHour: 23, EndHour: 24, Occupants: 0, SensiblePerOccupant: 230, LatentPerOccupant: 200, LightingPerSqFt: 0.2, EquipmentPerSqFt: 0.3},
	},
	ZoneSleeping: {
		{StartHour: 0, EndHour: 7, Occupants: 4, SensiblePerOccupant: 230, LatentPerOccupant: 200, LightingPerSqFt: 0.1, EquipmentPerSqFt: 0.2},
		{StartHour: 7, EndHour: 21, Occupants: 0, SensiblePerOccupant: 230, LatentPerOccupant: 200, LightingPerSqFt: 0.3, EquipmentPerSqFt: 0.2},
		{StartHour: 21, EndHour: 24, Occupants: 4, SensiblePerOccupant: 230, LatentPerOccupant: 200, LightingPerSqFt: 0.5, EquipmentPerSqFt: 0.2},
	},
	ZoneBonus: {
		{StartHour: 9, EndHour: 22, Occupants: 2, SensiblePerOccupant: 230, LatentPerOccupant: 200, LightingPerSqFt: 0.8, EquipmentPerSqFt: 1.0},
	},
	ZoneBasement: {
		{StartHour: 8, EndHour: 22, Occupants: 1, SensiblePerOccupant: 230, LatentPerOccupant: 200, LightingPerSqFt: 0.6, EquipmentPerSqFt: 0.5},
	},
}

// InternalGainsSchedule returns the occupancy schedule for the zone type.
// Unconditioned zone types have no schedule.
func (z *Zone) InternalGainsSchedule() []GainsPeriod {
	return internalGainsSchedules[z.Type]
}

// InternalGainsAt returns the zone's sensible and latent internal gains in
// BTU/hr at the given hour of day.
func (z *Zone) InternalGainsAt(hour int) (sensible, latent float64) {
	area := z.TotalAreaSqFt()
	for _, p := range z.InternalGainsSchedule() {
		if hour >= p.StartHour && hour < p.EndHour {
			occ := float64(p.Occupants)
			sensible = occ*p.SensiblePerOccupant + area*(p.LightingPerSqFt+p.EquipmentPerSqFt)
			latent = occ * p.LatentPerOccupant
			return sensible, latent
		}
	}
	return 0, 0
}
