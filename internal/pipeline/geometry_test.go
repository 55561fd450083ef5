package pipeline

import (
	"context"
	"image"
	"math"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftworks/manualj-cli/internal/model"
)

// fakeRasterizer serves a prebuilt raster for any page.
type fakeRasterizer struct {
	img    *image.Gray
	err    error
	gotDPI int
}

func (f *fakeRasterizer) RenderPage(_ context.Context, _ string, _ int, dpi int) (*image.Gray, error) {
	f.gotDPI = dpi
	if f.err != nil {
		return nil, f.err
	}
	return f.img, nil
}

func TestGeometryExtractor_InvalidScale(t *testing.T) {
	e := NewGeometryExtractor(testPipelineConfig(), &fakeRasterizer{}, 72)

	_, err := e.Extract(context.Background(), "/plans/house.pdf", 0, 1, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid scale")
}

func TestGeometryExtractor_RenderError(t *testing.T) {
	rast := &fakeRasterizer{err: eris.New("pdftoppm: exit 1")}
	e := NewGeometryExtractor(testPipelineConfig(), rast, 72)

	_, err := e.Extract(context.Background(), "/plans/house.pdf", 2, 1, 128)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render page 2")
}

func TestGeometryExtractor_RoomFromSquare(t *testing.T) {
	// One 100×100 px filled square. At 5 px/ft base scale the doubled
	// render resolution gives 10 px/ft, so the square is a 10×10 ft room.
	rast := &fakeRasterizer{img: newTestPage(200, 200, image.Rect(40, 40, 140, 140))}
	e := NewGeometryExtractor(testPipelineConfig(), rast, 72)

	ex, err := e.Extract(context.Background(), "/plans/house.pdf", 0, 1, 5)
	require.NoError(t, err)
	require.Len(t, ex.Rooms, 1)
	assert.Equal(t, 144, rast.gotDPI)

	room := ex.Rooms[0]
	assert.InDelta(t, 100, room.AreaSqFt, 6)
	assert.Equal(t, 1, room.FloorLevel)
	assert.Equal(t, model.RoomSourceContour, room.Source)
	assert.Equal(t, 0.6, room.Confidence)
	assert.False(t, ex.Synthetic)
	assert.False(t, ex.Footprint.FromPageBounds)
	assert.NotEmpty(t, ex.Footprint.Hull)
}

func TestGeometryExtractor_BlankPageSynthetic(t *testing.T) {
	rast := &fakeRasterizer{img: newTestPage(200, 200)}
	e := NewGeometryExtractor(testPipelineConfig(), rast, 72)

	ex, err := e.Extract(context.Background(), "/plans/house.pdf", 0, 2, 5)
	require.NoError(t, err)
	require.Len(t, ex.Rooms, 1)

	room := ex.Rooms[0]
	assert.True(t, ex.Synthetic)
	assert.InDelta(t, syntheticWidthFt*syntheticLengthFt, room.AreaSqFt, 0.001)
	assert.Equal(t, model.RoomSourceSynthetic, room.Source)
	assert.Equal(t, 0.05, room.Confidence)
	assert.Equal(t, 2, room.FloorLevel)
	assert.True(t, ex.Footprint.FromPageBounds)
	require.Len(t, ex.Footprint.Hull, 4)
	// Page bounds in feet: 200 px at 10 px/ft.
	assert.InDelta(t, 20, ex.Footprint.Hull[2][0], 0.001)
}

func TestGeometryExtractor_LargestContourClamp(t *testing.T) {
	// A 30×30 px blob is 3×3 ft, under the 20 sqft minimum; the extractor
	// keeps it anyway, clamped up to the fallback floor.
	rast := &fakeRasterizer{img: newTestPage(200, 200, image.Rect(10, 10, 40, 40))}
	e := NewGeometryExtractor(testPipelineConfig(), rast, 72)

	ex, err := e.Extract(context.Background(), "/plans/house.pdf", 0, 1, 5)
	require.NoError(t, err)
	require.Len(t, ex.Rooms, 1)

	room := ex.Rooms[0]
	assert.InDelta(t, largestContourFloorSqFt, room.AreaSqFt, 0.001)
	assert.Equal(t, 0.2, room.Confidence)
	assert.False(t, ex.Synthetic)

	// The clamp rescales the whole geometry, not just the area figure:
	// the square blob grows to a ~10×10 ft square with matching perimeter
	// and bbox, so aspect and wall math downstream stay coherent.
	side := math.Sqrt(largestContourFloorSqFt)
	assert.InDelta(t, 4*side, room.PerimeterFt, 0.5)
	assert.InDelta(t, side, room.BBox[2]-room.BBox[0], 0.25)
	assert.InDelta(t, side, room.BBox[3]-room.BBox[1], 0.25)
	assert.InDelta(t, room.AreaSqFt, math.Abs(room.Polygon().Area()), 0.001)
}

func TestGeometryExtractor_MultipleRooms(t *testing.T) {
	// Two well-separated squares, 80×80 px and 60×60 px, at 10 px/ft.
	rast := &fakeRasterizer{img: newTestPage(300, 150,
		image.Rect(10, 10, 90, 90),
		image.Rect(150, 20, 210, 80),
	)}
	e := NewGeometryExtractor(testPipelineConfig(), rast, 72)

	ex, err := e.Extract(context.Background(), "/plans/house.pdf", 0, 1, 5)
	require.NoError(t, err)
	assert.Len(t, ex.Rooms, 2)
}
