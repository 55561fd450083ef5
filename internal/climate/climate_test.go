package climate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/draftworks/manualj-cli/internal/model"
)

func TestZoneForZipPrefix3(t *testing.T) {
	zone, method := ZoneForZip("33139") // Miami Beach
	assert.Equal(t, "1A", zone)
	assert.Equal(t, "prefix3", method)

	zone, method = ZoneForZip("98101") // Seattle
	assert.Equal(t, "4C", zone)
	assert.Equal(t, "prefix3", method)
}

func TestZoneForZipPrefix2Fallback(t *testing.T) {
	// 456xx has no 3-digit entry; falls back to the Ohio-region 45 prefix.
	zone, method := ZoneForZip("45601")
	assert.Equal(t, "5A", zone)
	assert.Equal(t, "prefix2", method)
}

func TestZoneForZipDefault(t *testing.T) {
	zone, method := ZoneForZip("00000")
	assert.Equal(t, DefaultZone, zone)
	assert.Equal(t, "default", method)

	zone, method = ZoneForZip("")
	assert.Equal(t, DefaultZone, zone)
	assert.Equal(t, "default", method)
}

func TestDesignFor(t *testing.T) {
	d, method := DesignFor("60614", 70, 75) // Chicago
	assert.Equal(t, "5A", d.ClimateZone)
	assert.Equal(t, "prefix3", method)
	assert.InDelta(t, 2.0, d.HeatingDesignTempF, 0.01)
	assert.InDelta(t, 89.0, d.CoolingDesignTempF, 0.01)
	assert.InDelta(t, 68.0, d.HeatingDeltaT(), 0.01)
	assert.InDelta(t, 14.0, d.CoolingDeltaT(), 0.01)
	assert.InDelta(t, 42.0, d.LatitudeDeg, 0.01)
}

func TestDesignForUnknownZipNeverFails(t *testing.T) {
	d, method := DesignFor("XYZ", 70, 75)
	assert.Equal(t, "default", method)
	assert.Equal(t, DefaultZone, d.ClimateZone)
	assert.NotZero(t, d.HeatingDeltaT())
}

func TestLatBand(t *testing.T) {
	assert.Equal(t, 0, latBand(20))
	assert.Equal(t, 0, latBand(28))
	assert.Equal(t, 1, latBand(35))
	assert.Equal(t, 2, latBand(42))
	assert.Equal(t, 3, latBand(50))
	assert.Equal(t, 3, latBand(64))
}

func TestSHGFPeakScaling(t *testing.T) {
	peak := SHGFByLatitude(40, model.OrientW, time.July, 13)
	shoulder := SHGFByLatitude(40, model.OrientW, time.July, 8)
	night := SHGFByLatitude(40, model.OrientW, time.July, 23)

	assert.InDelta(t, 140.0, peak, 0.01)
	assert.InDelta(t, peak*0.5, shoulder, 0.01)
	assert.InDelta(t, peak*0.1, night, 0.01)
}

func TestSHGFSouthSeasonality(t *testing.T) {
	// South glazing gains more in winter than summer (low sun angle).
	winter := SHGFByLatitude(40, model.OrientS, time.January, 12)
	summer := SHGFByLatitude(40, model.OrientS, time.July, 12)
	assert.Greater(t, winter, summer)

	// West glazing is the opposite.
	winterW := SHGFByLatitude(40, model.OrientW, time.January, 12)
	summerW := SHGFByLatitude(40, model.OrientW, time.July, 12)
	assert.Greater(t, summerW, winterW)
}

func TestSHGFHorizontalIsZero(t *testing.T) {
	assert.Zero(t, SHGFByLatitude(40, model.OrientNone, time.July, 13))
}

func TestDesignMonths(t *testing.T) {
	assert.Equal(t, time.August, CoolingDesignMonth(30))
	assert.Equal(t, time.July, CoolingDesignMonth(45))
	assert.Equal(t, time.January, HeatingDesignMonth(45))
}
