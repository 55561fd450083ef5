// Package climate maps project locations to design conditions: ZIP to IECC
// climate zone, zone to heating/cooling design temperatures, and
// latitude-indexed solar heat gain factors.
package climate

import (
	"strings"

	"go.uber.org/zap"

	"github.com/draftworks/manualj-cli/internal/model"
)

// DefaultZone is used when a ZIP cannot be matched at any prefix length.
// The load calculator must always have some design-temperature basis; an
// unrecognized ZIP is a warning, never a hard failure.
const DefaultZone = "4A"

// ZoneDesign holds per-climate-zone design conditions and a representative
// latitude for solar tables.
type ZoneDesign struct {
	HeatingDesignTempF float64
	CoolingDesignTempF float64
	DailyRangeF        float64
	LatitudeDeg        float64
}

// zoneDesigns is keyed by IECC climate zone. 99.6%/1% design temperatures
// for a representative city in each zone.
var zoneDesigns = map[string]ZoneDesign{
	"1A": {HeatingDesignTempF: 47, CoolingDesignTempF: 91, DailyRangeF: 12, LatitudeDeg: 26},
	"2A": {HeatingDesignTempF: 29, CoolingDesignTempF: 94, DailyRangeF: 18, LatitudeDeg: 30},
	"2B": {HeatingDesignTempF: 34, CoolingDesignTempF: 108, DailyRangeF: 27, LatitudeDeg: 33},
	"3A": {HeatingDesignTempF: 23, CoolingDesignTempF: 92, DailyRangeF: 19, LatitudeDeg: 34},
	"3B": {HeatingDesignTempF: 28, CoolingDesignTempF: 101, DailyRangeF: 28, LatitudeDeg: 36},
	"3C": {HeatingDesignTempF: 36, CoolingDesignTempF: 83, DailyRangeF: 16, LatitudeDeg: 37},
	"4A": {HeatingDesignTempF: 15, CoolingDesignTempF: 89, DailyRangeF: 17, LatitudeDeg: 40},
	"4B": {HeatingDesignTempF: 16, CoolingDesignTempF: 94, DailyRangeF: 26, LatitudeDeg: 35},
	"4C": {HeatingDesignTempF: 27, CoolingDesignTempF: 83, DailyRangeF: 19, LatitudeDeg: 47},
	"5A": {HeatingDesignTempF: 2, CoolingDesignTempF: 89, DailyRangeF: 19, LatitudeDeg: 42},
	"5B": {HeatingDesignTempF: 1, CoolingDesignTempF: 91, DailyRangeF: 27, LatitudeDeg: 40},
	"6A": {HeatingDesignTempF: -11, CoolingDesignTempF: 88, DailyRangeF: 19, LatitudeDeg: 45},
	"6B": {HeatingDesignTempF: -16, CoolingDesignTempF: 88, DailyRangeF: 28, LatitudeDeg: 46},
	"7":  {HeatingDesignTempF: -19, CoolingDesignTempF: 84, DailyRangeF: 20, LatitudeDeg: 47},
	"8":  {HeatingDesignTempF: -47, CoolingDesignTempF: 78, DailyRangeF: 18, LatitudeDeg: 64},
}

// zipPrefix3 maps 3-digit ZIP prefixes to climate zones. Metro-level
// resolution where zones change inside a state.
var zipPrefix3 = map[string]string{
	// Florida
	"330": "1A", "331": "1A", "332": "1A", "333": "1A", "334": "1A",
	"339": "1A", "341": "1A", "320": "2A", "322": "2A", "323": "2A",
	// Gulf coast
	"700": "2A", "701": "2A", "770": "2A", "772": "2A", "775": "2A",
	"782": "2A", "786": "2A",
	// Desert southwest
	"850": "2B", "852": "2B", "853": "2B", "857": "3B", "885": "3B",
	"891": "3B", "893": "3B",
	// Southeast
	"300": "3A", "301": "3A", "302": "3A", "303": "3A", "350": "3A",
	"370": "3A", "377": "3A", "280": "3A", "290": "3A",
	// California coast/inland
	"900": "3B", "902": "3B", "917": "3B", "921": "3B", "940": "3C",
	"941": "3C", "943": "3C", "945": "3C", "950": "3C", "956": "3B",
	// Mid-Atlantic / Northeast cities
	"100": "4A", "101": "4A", "102": "4A", "103": "4A", "104": "4A",
	"070": "4A", "071": "4A", "083": "4A", "190": "4A", "191": "4A",
	"200": "4A", "208": "4A", "210": "4A", "212": "4A", "220": "4A",
	"230": "3A",
	// Southwest highlands
	"870": "4B", "871": "4B", "875": "4B", "860": "5B",
	// Pacific Northwest
	"980": "4C", "981": "4C", "970": "4C", "972": "4C", "983": "4C",
	// Midwest / mountain
	"600": "5A", "606": "5A", "430": "5A", "441": "5A", "462": "5A",
	"480": "5A", "530": "6A", "532": "6A", "802": "5B", "803": "5B",
	"840": "5B", "841": "5B",
	// Upper midwest / northern
	"550": "6A", "553": "6A", "554": "6A", "540": "6A", "040": "6A",
	"050": "6A", "030": "6A", "590": "6B", "596": "6B", "820": "6B",
	"558": "7", "567": "7", "565": "7",
	// Alaska
	"995": "7", "996": "7", "997": "8", "998": "8", "999": "8",
}

// zipPrefix2 is the 2-digit regional fallback when no 3-digit entry matches.
var zipPrefix2 = map[string]string{
	"32": "2A", "33": "2A", "34": "2A", "36": "2A", "39": "2A",
	"70": "2A", "71": "3A", "75": "2A", "76": "3A", "77": "2A", "78": "2A",
	"85": "2B", "88": "3B", "89": "3B",
	"27": "3A", "28": "3A", "29": "3A", "30": "3A", "31": "3A",
	"35": "3A", "37": "3A", "38": "3A", "72": "3A", "73": "3A", "74": "3A",
	"90": "3B", "91": "3B", "92": "3B", "93": "3B", "95": "3C", "94": "3C",
	"07": "4A", "08": "4A", "10": "4A", "11": "4A", "19": "4A",
	"20": "4A", "21": "4A", "22": "4A", "23": "4A", "24": "4A",
	"25": "4A", "26": "4A", "40": "4A", "41": "4A", "42": "4A",
	"63": "4A", "64": "4A", "65": "4A", "66": "4A", "67": "4A",
	"87": "4B", "97": "4C", "98": "4C",
	"01": "5A", "02": "5A", "06": "5A", "12": "5A", "13": "5A",
	"14": "5A", "15": "5A", "16": "5A", "17": "5A", "18": "5A",
	"43": "5A", "44": "5A", "45": "5A", "46": "5A", "47": "5A",
	"48": "5A", "49": "5A", "50": "5A", "51": "5A", "52": "5A",
	"60": "5A", "61": "5A", "62": "5A", "68": "5A", "69": "5A",
	"80": "5B", "81": "5B", "83": "5B", "84": "5B",
	"03": "6A", "04": "6A", "05": "6A", "53": "6A", "54": "6A",
	"55": "6A", "56": "6A", "57": "6A", "58": "7", "59": "6B",
	"82": "6B", "86": "5B",
	"99": "8",
}

// ZoneForZip resolves a 5-digit ZIP to a climate zone. The returned method
// is "prefix3", "prefix2", or "default".
func ZoneForZip(zip string) (zone, method string) {
	zip = strings.TrimSpace(zip)
	if len(zip) >= 3 {
		if z, ok := zipPrefix3[zip[:3]]; ok {
			return z, "prefix3"
		}
	}
	if len(zip) >= 2 {
		if z, ok := zipPrefix2[zip[:2]]; ok {
			return z, "prefix2"
		}
	}
	zap.L().Warn("climate: unmatched ZIP, using default zone",
		zap.String("zip", zip),
		zap.String("zone", DefaultZone),
	)
	return DefaultZone, "default"
}

// DesignFor resolves a ZIP to full design conditions with the given indoor
// setpoints.
func DesignFor(zip string, heatingSetpointF, coolingSetpointF float64) (model.DesignConditions, string) {
	zone, method := ZoneForZip(zip)
	zd, ok := zoneDesigns[zone]
	if !ok {
		zd = zoneDesigns[DefaultZone]
	}
	return model.DesignConditions{
		ClimateZone:            zone,
		LatitudeDeg:            zd.LatitudeDeg,
		HeatingDesignTempF:     zd.HeatingDesignTempF,
		CoolingDesignTempF:     zd.CoolingDesignTempF,
		IndoorHeatingSetpointF: heatingSetpointF,
		IndoorCoolingSetpointF: coolingSetpointF,
		DailyRangeF:            zd.DailyRangeF,
	}, method
}

// Design returns the design conditions for a known climate zone.
func Design(zone string) (ZoneDesign, bool) {
	zd, ok := zoneDesigns[zone]
	return zd, ok
}
