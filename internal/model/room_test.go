package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twpayne/go-geom"
)

func TestNewRoomDerivedGeometry(t *testing.T) {
	// 20x15 rectangle offset from origin.
	coords := []float64{
		5, 5,
		25, 5,
		25, 20,
		5, 20,
		5, 5,
	}
	p := geom.NewPolygonFlat(geom.XY, coords, []int{len(coords)})
	r := NewRoom("r1", p)

	assert.InDelta(t, 300.0, r.AreaSqFt, 0.01)
	assert.InDelta(t, 70.0, r.PerimeterFt, 0.01)
	assert.InDelta(t, 15.0, r.Centroid[0], 0.01)
	assert.InDelta(t, 12.5, r.Centroid[1], 0.01)
	assert.Equal(t, [4]float64{5, 5, 25, 20}, r.BBox)
	assert.InDelta(t, 20.0, r.Width(), 0.01)
	assert.InDelta(t, 15.0, r.Length(), 0.01)
}

func TestNewRectRoom(t *testing.T) {
	r := NewRectRoom("r2", 20, 15)
	assert.InDelta(t, 300.0, r.AreaSqFt, 0.01)
	assert.InDelta(t, 70.0, r.PerimeterFt, 0.01)
}

func TestNewRoomNilPolygon(t *testing.T) {
	r := NewRoom("r3", nil)
	assert.Zero(t, r.AreaSqFt)
	assert.Nil(t, r.Polygon())
}

func TestAspectRatio(t *testing.T) {
	square := NewRectRoom("sq", 10, 10)
	assert.InDelta(t, 1.0, square.AspectRatio(), 0.01)

	corridor := NewRectRoom("hall", 30, 4)
	assert.InDelta(t, 7.5, corridor.AspectRatio(), 0.01)

	degenerate := NewRoom("deg", nil)
	assert.Zero(t, degenerate.AspectRatio())
}
