package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoomObservationsBare(t *testing.T) {
	text := `[{"name":"MASTER BDRM","type":"bedroom","bbox_px":[120,80,480,360],"area_sqft":210,"confidence":0.9},
{"name":"BATH 2","type":"bathroom","bbox_px":[480,80,620,220],"confidence":0.7}]`

	rooms, err := ParseRoomObservations(text)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "MASTER BDRM", rooms[0].Name)
	assert.Equal(t, "bedroom", rooms[0].Type)
	assert.Equal(t, [4]float64{120, 80, 480, 360}, rooms[0].BBoxPx)
	assert.Equal(t, 210.0, rooms[0].AreaSqFt)
	assert.Equal(t, 0.0, rooms[1].AreaSqFt)
}

func TestParseRoomObservationsFenced(t *testing.T) {
	text := "Here are the rooms I found:\n```json\n[{\"name\":\"KITCHEN\",\"type\":\"kitchen\",\"bbox_px\":[0,0,100,100],\"confidence\":0.95}]\n```\n"

	rooms, err := ParseRoomObservations(text)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "KITCHEN", rooms[0].Name)
}

func TestParseRoomObservationsEmpty(t *testing.T) {
	rooms, err := ParseRoomObservations("[]")
	require.NoError(t, err)
	assert.Empty(t, rooms)

	_, err = ParseRoomObservations("no rooms visible on this page")
	assert.Error(t, err)

	_, err = ParseRoomObservations("[{bad json]")
	assert.Error(t, err)
}

func TestUserPrompt(t *testing.T) {
	p := userPrompt(ExtractRoomsRequest{ScalePxPerFt: 48, FloorLevel: 2})
	assert.Contains(t, p, "48.0 pixels per foot")
	assert.Contains(t, p, "floor 2")

	p = userPrompt(ExtractRoomsRequest{})
	assert.NotContains(t, p, "pixels per foot")
}

func TestEstimateCost(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 100_000}
	assert.InDelta(t, 3.0+1.5, u.EstimateCost("claude-sonnet-4-5-20250929"), 1e-9)
	assert.Equal(t, 0.0, u.EstimateCost("unknown-model"))
}
