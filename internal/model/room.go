package model

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// RoomSource identifies where a room record came from.
type RoomSource string

const (
	RoomSourceContour   RoomSource = "contour"
	RoomSourceVision    RoomSource = "vision"
	RoomSourceSynthetic RoomSource = "synthetic"
)

// Room is one extracted room: real-world-feet geometry plus whatever
// semantics have been attached to it. Immutable once validated.
type Room struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        SpaceType  `json:"type"`
	FloorLevel  int        `json:"floor_level"`
	AreaSqFt    float64    `json:"area_sqft"`
	PerimeterFt float64    `json:"perimeter_ft"`
	Centroid    [2]float64 `json:"centroid"`
	BBox        [4]float64 `json:"bbox"` // minX, minY, maxX, maxY
	Confidence  float64    `json:"confidence"`
	Source      RoomSource `json:"source"`

	// Vision-supplied envelope hints. Zero when the source is contour-only.
	ExteriorWalls int         `json:"exterior_walls,omitempty"`
	Windows       int         `json:"windows,omitempty"`
	Ceiling       CeilingType `json:"ceiling,omitempty"`

	polygon *geom.Polygon
}

// NewRoom builds a Room from a polygon in real-world feet, deriving area,
// perimeter, centroid and bounding box from the geometry.
func NewRoom(id string, polygon *geom.Polygon) Room {
	r := Room{
		ID:      id,
		Type:    SpaceTypeOther,
		polygon: polygon,
	}
	if polygon == nil {
		return r
	}

	r.AreaSqFt = math.Abs(polygon.Area())
	r.PerimeterFt = polygon.Length()

	if c, err := xy.Centroid(polygon); err == nil && len(c) >= 2 {
		r.Centroid = [2]float64{c[0], c[1]}
	}

	b := polygon.Bounds()
	r.BBox = [4]float64{b.Min(0), b.Min(1), b.Max(0), b.Max(1)}

	return r
}

// NewRectRoom builds a Room from a width×length rectangle anchored at origin.
// Used for vision-supplied rooms (width/length, no polygon) and the synthetic
// fallback room.
func NewRectRoom(id string, widthFt, lengthFt float64) Room {
	coords := []float64{
		0, 0,
		widthFt, 0,
		widthFt, lengthFt,
		0, lengthFt,
		0, 0,
	}
	p := geom.NewPolygonFlat(geom.XY, coords, []int{len(coords)})
	return NewRoom(id, p)
}

// Polygon returns the underlying geometry, or nil for rooms constructed from
// area alone.
func (r Room) Polygon() *geom.Polygon {
	return r.polygon
}

// Width returns the bounding-box width in feet.
func (r Room) Width() float64 {
	return r.BBox[2] - r.BBox[0]
}

// Length returns the bounding-box length in feet.
func (r Room) Length() float64 {
	return r.BBox[3] - r.BBox[1]
}

// AspectRatio returns the long-side/short-side ratio of the bounding box.
// Returns 0 for degenerate boxes.
func (r Room) AspectRatio() float64 {
	w, l := r.Width(), r.Length()
	short := math.Min(w, l)
	long := math.Max(w, l)
	if short <= 0 {
		return 0
	}
	return long / short
}
