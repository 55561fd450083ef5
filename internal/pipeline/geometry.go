package pipeline

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/draftworks/manualj-cli/internal/config"
	"github.com/draftworks/manualj-cli/internal/model"
	"github.com/draftworks/manualj-cli/internal/pdf"
)

// renderZoom renders geometry rasters at twice the configured DPI for
// contour precision.
const renderZoom = 2

// Synthetic fallback room dimensions, feet.
const (
	syntheticWidthFt  = 20.0
	syntheticLengthFt = 15.0
)

// largestContourFloorSqFt clamps the largest-contour fallback.
const largestContourFloorSqFt = 100.0

// epsilonPerimeterFrac sets the Douglas-Peucker tolerance as a fraction of
// each contour's perimeter.
const epsilonPerimeterFrac = 0.02

// Footprint is the building outline derived from extracted geometry.
type Footprint struct {
	// Hull is the convex hull of all room vertices, in feet.
	Hull [][2]float64 `json:"hull"`
	// FromPageBounds marks the page-bounds fallback when no contours exist.
	FromPageBounds bool `json:"from_page_bounds"`
}

// Extraction is the geometry extractor's output for one page.
type Extraction struct {
	Rooms     []model.Room `json:"rooms"`
	Footprint Footprint    `json:"footprint"`
	// Synthetic marks the no-contour fallback result.
	Synthetic bool `json:"synthetic"`
}

// GeometryExtractor converts a rendered page into room polygons scaled to
// real-world feet. Low-quality output is returned, never raised; validators
// own the severity call.
type GeometryExtractor struct {
	cfg    config.PipelineConfig
	rast   pdf.Rasterizer
	render int // base DPI before zoom
}

// NewGeometryExtractor creates an extractor rendering at renderDPI × zoom.
func NewGeometryExtractor(cfg config.PipelineConfig, rast pdf.Rasterizer, renderDPI int) *GeometryExtractor {
	if renderDPI <= 0 {
		renderDPI = int(baseRenderDPI)
	}
	return &GeometryExtractor{cfg: cfg, rast: rast, render: renderDPI}
}

// Extract renders the page and traces room polygons. scalePxPerFt is the
// locked scale in base-DPI space; it never returns zero rooms: a blank page
// yields one synthetic room flagged at minimum confidence.
func (e *GeometryExtractor) Extract(ctx context.Context, pdfPath string, page, floorLevel int, scalePxPerFt float64) (*Extraction, error) {
	if scalePxPerFt <= 0 {
		return nil, eris.Errorf("geometry: invalid scale %.2f px/ft", scalePxPerFt)
	}

	dpi := e.render * renderZoom
	img, err := e.rast.RenderPage(ctx, pdfPath, page, dpi)
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("geometry: render page %d", page))
	}

	// Scale in the rendered raster's pixel space.
	rasterScale := scalePxPerFt * float64(dpi) / baseRenderDPI

	grid := binarize(img, darkCutoff)
	contours := findExternalContours(grid)

	extraction := e.roomsFromContours(contours, rasterScale, floorLevel)
	if extraction.Synthetic {
		extraction.Footprint = pageBoundsFootprint(img.Bounds(), rasterScale)
	} else {
		extraction.Footprint = hullFootprint(extraction.Rooms)
	}

	zap.L().Info("geometry: page extracted",
		zap.Int("page", page),
		zap.Int("contours", len(contours)),
		zap.Int("rooms", len(extraction.Rooms)),
		zap.Bool("synthetic", extraction.Synthetic),
		zap.Float64("raster_px_per_ft", rasterScale),
	)
	return extraction, nil
}

// roomsFromContours filters and converts contours into Room records.
// Degenerate-input policy: when nothing passes the area filter the largest
// contour is kept clamped to a 100 sqft floor; when no contours exist at all
// a synthetic 20×15 room is emitted.
func (e *GeometryExtractor) roomsFromContours(contours [][]image.Point, rasterScale float64, floorLevel int) *Extraction {
	var rooms []model.Room
	var largest model.Room
	var largestArea float64

	for _, c := range contours {
		eps := epsilonPerimeterFrac * contourPerimeter(c)
		simplified := simplifyContour(c, eps)
		if len(simplified) < 3 {
			continue
		}

		room := e.roomFromContour(simplified, rasterScale, floorLevel)
		if room.AreaSqFt > largestArea {
			largest = room
			largestArea = room.AreaSqFt
		}
		if room.AreaSqFt < e.cfg.MinRoomSqFt || room.AreaSqFt > e.cfg.MaxRoomSqFt {
			continue
		}
		rooms = append(rooms, room)
	}

	if len(rooms) > 0 {
		return &Extraction{Rooms: rooms}
	}

	if largestArea > 0 {
		// Nothing passed filtering; keep the best candidate rather than
		// returning empty, clamped so downstream math stays sane.
		if largest.AreaSqFt < largestContourFloorSqFt {
			largest = grownRoom(largest, largestContourFloorSqFt)
		}
		largest.Confidence = 0.2
		zap.L().Warn("geometry: no rooms passed area filter, keeping largest contour",
			zap.Float64("area_sqft", largest.AreaSqFt),
		)
		return &Extraction{Rooms: []model.Room{largest}}
	}

	synthetic := model.NewRectRoom(uuid.NewString(), syntheticWidthFt, syntheticLengthFt)
	synthetic.Name = "room 1"
	synthetic.FloorLevel = floorLevel
	synthetic.Source = model.RoomSourceSynthetic
	synthetic.Confidence = 0.05
	zap.L().Warn("geometry: no contours found, emitting synthetic room",
		zap.Float64("area_sqft", synthetic.AreaSqFt),
	)
	return &Extraction{Rooms: []model.Room{synthetic}, Synthetic: true}
}

// grownRoom scales a contour room about its centroid until its area reaches
// targetSqFt, rebuilding it from the scaled polygon so area, perimeter, bbox
// and geometry stay mutually consistent.
func grownRoom(r model.Room, targetSqFt float64) model.Room {
	p := r.Polygon()
	if p == nil || r.AreaSqFt <= 0 {
		return r
	}

	f := math.Sqrt(targetSqFt / r.AreaSqFt)
	cx, cy := r.Centroid[0], r.Centroid[1]
	coords := append([]float64(nil), p.FlatCoords()...)
	for i := 0; i+1 < len(coords); i += 2 {
		coords[i] = cx + (coords[i]-cx)*f
		coords[i+1] = cy + (coords[i+1]-cy)*f
	}

	grown := model.NewRoom(r.ID, geom.NewPolygonFlat(geom.XY, coords, p.Ends()))
	grown.Name = r.Name
	grown.Type = r.Type
	grown.FloorLevel = r.FloorLevel
	grown.Source = r.Source
	return grown
}

func (e *GeometryExtractor) roomFromContour(points []image.Point, rasterScale float64, floorLevel int) model.Room {
	coords := make([]float64, 0, (len(points)+1)*2)
	for _, p := range points {
		coords = append(coords, float64(p.X)/rasterScale, float64(p.Y)/rasterScale)
	}
	// Close the ring.
	coords = append(coords, coords[0], coords[1])

	poly := geom.NewPolygonFlat(geom.XY, coords, []int{len(coords)})
	room := model.NewRoom(uuid.NewString(), poly)
	room.FloorLevel = floorLevel
	room.Source = model.RoomSourceContour
	room.Confidence = 0.6
	return room
}

// hullFootprint computes the building outline as the convex hull of all room
// polygon vertices.
func hullFootprint(rooms []model.Room) Footprint {
	var pts []image.Point
	var scale = 100.0 // fixed-point feet for the integer hull
	for _, r := range rooms {
		p := r.Polygon()
		if p == nil {
			continue
		}
		fc := p.FlatCoords()
		for i := 0; i+1 < len(fc); i += 2 {
			pts = append(pts, image.Pt(int(fc[i]*scale), int(fc[i+1]*scale)))
		}
	}
	if len(pts) == 0 {
		return Footprint{}
	}

	hull := convexHull(pts)
	fp := Footprint{}
	for _, p := range hull {
		fp.Hull = append(fp.Hull, [2]float64{float64(p.X) / scale, float64(p.Y) / scale})
	}
	return fp
}

func pageBoundsFootprint(b image.Rectangle, rasterScale float64) Footprint {
	w := float64(b.Dx()) / rasterScale
	h := float64(b.Dy()) / rasterScale
	return Footprint{
		Hull:           [][2]float64{{0, 0}, {w, 0}, {w, h}, {0, h}},
		FromPageBounds: true,
	}
}
