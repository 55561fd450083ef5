package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftworks/manualj-cli/internal/faults"
	"github.com/draftworks/manualj-cli/internal/model"
)

func testRoom(name string, typ model.SpaceType, widthFt, lengthFt float64) model.Room {
	r := model.NewRectRoom("room-"+name, widthFt, lengthFt)
	r.Name = name
	r.Type = typ
	r.FloorLevel = 1
	return r
}

func TestRoomValidator_ValidRooms(t *testing.T) {
	v := NewRoomValidator(nil)

	rooms := []model.Room{
		testRoom("Bedroom 1", model.SpaceTypeBedroom, 12, 14),
		testRoom("Kitchen", model.SpaceTypeKitchen, 10, 12),
		testRoom("Living Room", model.SpaceTypeLiving, 15, 18),
	}

	assert.Empty(t, v.Validate(rooms))
}

func TestRoomValidator_BelowAbsoluteMinimum(t *testing.T) {
	v := NewRoomValidator(nil)

	issues := v.Validate([]model.Room{testRoom("Closet", model.SpaceTypeCloset, 2, 2)})

	require.Len(t, issues, 1)
	assert.Equal(t, SeverityCritical, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "absolute minimum")
}

func TestRoomValidator_BelowTypeMinimum(t *testing.T) {
	v := NewRoomValidator(nil)

	issues := v.Validate([]model.Room{testRoom("Bedroom 2", model.SpaceTypeBedroom, 5, 10)})

	require.Len(t, issues, 1)
	assert.Equal(t, SeverityCritical, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "type minimum")
}

func TestRoomValidator_AboveTypeMaximum(t *testing.T) {
	v := NewRoomValidator(nil)

	issues := v.Validate([]model.Room{testRoom("Bedroom 3", model.SpaceTypeBedroom, 30, 20)})

	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "type maximum")
}

func TestRoomValidator_AspectRatio(t *testing.T) {
	v := NewRoomValidator(nil)

	issues := v.Validate([]model.Room{testRoom("Hall", model.SpaceTypeHallway, 3, 30)})

	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "aspect ratio")
}

func TestRoomValidator_DuplicateNames(t *testing.T) {
	v := NewRoomValidator(nil)

	var rooms []model.Room
	for i := 0; i < 4; i++ {
		rooms = append(rooms, testRoom("Storage", model.SpaceTypeStorage, 10, 10))
	}

	issues := v.Validate(rooms)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "share the name")
}

func TestRoomValidator_BedroomsExemptFromDuplicateCheck(t *testing.T) {
	v := NewRoomValidator(nil)

	var rooms []model.Room
	for i := 0; i < 5; i++ {
		rooms = append(rooms, testRoom("Bedroom", model.SpaceTypeBedroom, 12, 12))
	}

	assert.Empty(t, v.Validate(rooms))
}

func TestRoomValidator_BoundOverrides(t *testing.T) {
	v := NewRoomValidator(map[model.SpaceType]roomBounds{
		model.SpaceTypeBedroom: {MinSqFt: 40, MaxSqFt: 500},
	})

	// 50 sqft fails the stock 80 sqft minimum but passes the override.
	assert.Empty(t, v.Validate([]model.Room{testRoom("Bunk Room", model.SpaceTypeBedroom, 5, 10)}))
}

func TestBuildingValidator_NoRooms(t *testing.T) {
	_, err := BuildingValidator{}.Validate(nil, 0)

	require.Error(t, err)
	assert.True(t, faults.IsCritical(err))
	assert.Contains(t, err.Error(), "no rooms")
}

func TestBuildingValidator_EmptyFloorInSpan(t *testing.T) {
	rooms := []model.Room{
		testRoom("Kitchen", model.SpaceTypeKitchen, 12, 14),
	}
	third := testRoom("Bonus", model.SpaceTypeBonus, 15, 20)
	third.FloorLevel = 3
	rooms = append(rooms, third)

	_, err := BuildingValidator{}.Validate(rooms, 0)

	require.Error(t, err)
	assert.True(t, faults.IsCritical(err))
	assert.Contains(t, err.Error(), "floor 2 has no rooms")
}

func TestBuildingValidator_SmallBuilding(t *testing.T) {
	rooms := []model.Room{
		testRoom("Cabin", model.SpaceTypeLiving, 15, 15),
	}

	_, err := BuildingValidator{}.Validate(rooms, 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "total area")
}

func TestBuildingValidator_DeclaredAreaMismatch(t *testing.T) {
	rooms := []model.Room{
		testRoom("Living Room", model.SpaceTypeLiving, 20, 15),
		testRoom("Kitchen", model.SpaceTypeKitchen, 12, 12),
		testRoom("Bedroom 1", model.SpaceTypeBedroom, 12, 14),
	}

	issues, err := BuildingValidator{}.Validate(rooms, 900)

	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "declared")
}

func TestBuildingValidator_HappyPath(t *testing.T) {
	rooms := []model.Room{
		testRoom("Living Room", model.SpaceTypeLiving, 20, 15),
		testRoom("Kitchen", model.SpaceTypeKitchen, 12, 12),
		testRoom("Bedroom 1", model.SpaceTypeBedroom, 12, 14),
	}

	issues, err := BuildingValidator{}.Validate(rooms, 612)

	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestShouldStopPipeline(t *testing.T) {
	assert.False(t, ShouldStopPipeline(nil))
	assert.False(t, ShouldStopPipeline([]ValidationIssue{{Severity: SeverityWarning}}))
	assert.True(t, ShouldStopPipeline([]ValidationIssue{
		{Severity: SeverityWarning},
		{Severity: SeverityCritical},
	}))
}

func TestCriticalIssueError(t *testing.T) {
	assert.NoError(t, CriticalIssueError([]ValidationIssue{{Severity: SeverityWarning}}))

	err := CriticalIssueError([]ValidationIssue{
		{Severity: SeverityCritical, Room: "Bedroom 2", Message: "area 4.0 sqft below absolute minimum 10"},
	})
	require.Error(t, err)
	assert.True(t, faults.IsCritical(err))
	assert.Contains(t, err.Error(), "Bedroom 2")
}
