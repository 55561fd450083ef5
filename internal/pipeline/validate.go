package pipeline

import (
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/draftworks/manualj-cli/internal/faults"
	"github.com/draftworks/manualj-cli/internal/model"
)

// Severity classifies a validation issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// ValidationIssue is one finding from room or building validation.
type ValidationIssue struct {
	Severity Severity `json:"severity"`
	Room     string   `json:"room,omitempty"`
	Message  string   `json:"message"`
	// Action is the suggested remediation.
	Action string `json:"action,omitempty"`
}

// Absolute limits independent of room type.
const (
	absoluteMinRoomSqFt = 10.0
	maxAspectRatio      = 5.0
	maxDuplicateNames   = 3
)

// Building-level minimums.
const (
	minRoomsPerFloor    = 1
	minFloorSqFt        = 100.0
	minBuildingSqFt     = 400.0
	declaredAreaTolSqFt = 10.0
)

// roomBounds are type-specific sanity bounds in sqft.
type roomBounds struct {
	MinSqFt float64
	MaxSqFt float64
}

// defaultRoomBounds reflect residential norms; overridable from the tables
// file.
var defaultRoomBounds = map[model.SpaceType]roomBounds{
	model.SpaceTypeBedroom:  {80, 500},
	model.SpaceTypeBathroom: {25, 200},
	model.SpaceTypeKitchen:  {50, 500},
	model.SpaceTypeLiving:   {100, 800},
	model.SpaceTypeDining:   {80, 400},
	model.SpaceTypeOffice:   {50, 400},
	model.SpaceTypeCloset:   {10, 100},
	model.SpaceTypeHallway:  {20, 300},
	model.SpaceTypeLaundry:  {20, 150},
	model.SpaceTypeFoyer:    {20, 250},
	model.SpaceTypeUtility:  {20, 200},
	model.SpaceTypeGarage:   {200, 1200},
	model.SpaceTypeStorage:  {10, 400},
	model.SpaceTypeBonus:    {100, 800},
	model.SpaceTypeOther:    {20, 2000},
}

// RoomValidator sanity-checks extracted rooms against residential norms.
// Vision-supplied rooms pass through the same checks as contour rooms.
type RoomValidator struct {
	bounds map[model.SpaceType]roomBounds
}

// NewRoomValidator creates a validator. overrides, when non-nil, replace
// individual type bounds.
func NewRoomValidator(overrides map[model.SpaceType]roomBounds) *RoomValidator {
	bounds := make(map[model.SpaceType]roomBounds, len(defaultRoomBounds))
	for t, b := range defaultRoomBounds {
		bounds[t] = b
	}
	for t, b := range overrides {
		bounds[t] = b
	}
	return &RoomValidator{bounds: bounds}
}

// Validate checks every room and returns the accumulated issues. It never
// errors; severity gating is the caller's job via ShouldStopPipeline.
func (v *RoomValidator) Validate(rooms []model.Room) []ValidationIssue {
	var issues []ValidationIssue

	nameCounts := map[string]int{}
	for _, r := range rooms {
		issues = append(issues, v.validateRoom(r)...)
		if r.Name != "" && r.Type != model.SpaceTypeBedroom && r.Type != model.SpaceTypeBathroom {
			nameCounts[r.Name]++
		}
	}

	for name, n := range nameCounts {
		if n > maxDuplicateNames {
			issues = append(issues, ValidationIssue{
				Severity: SeverityWarning,
				Room:     name,
				Message:  fmt.Sprintf("%d rooms share the name %q", n, name),
				Action:   "verify room labels were not misread",
			})
		}
	}

	return issues
}

func (v *RoomValidator) validateRoom(r model.Room) []ValidationIssue {
	var issues []ValidationIssue

	b, ok := v.bounds[r.Type]
	if !ok {
		b = v.bounds[model.SpaceTypeOther]
	}

	switch {
	case r.AreaSqFt < absoluteMinRoomSqFt:
		issues = append(issues, ValidationIssue{
			Severity: SeverityCritical,
			Room:     r.Name,
			Message:  fmt.Sprintf("area %.1f sqft below absolute minimum %.0f", r.AreaSqFt, absoluteMinRoomSqFt),
			Action:   "check scale detection",
		})
	case r.AreaSqFt < b.MinSqFt:
		issues = append(issues, ValidationIssue{
			Severity: SeverityCritical,
			Room:     r.Name,
			Message:  fmt.Sprintf("%s area %.1f sqft below type minimum %.0f", r.Type, r.AreaSqFt, b.MinSqFt),
			Action:   "check scale detection or room typing",
		})
	case r.AreaSqFt > b.MaxSqFt:
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			Room:     r.Name,
			Message:  fmt.Sprintf("%s area %.1f sqft above type maximum %.0f", r.Type, r.AreaSqFt, b.MaxSqFt),
			Action:   "verify geometry",
		})
	}

	if ar := r.AspectRatio(); ar > maxAspectRatio {
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			Room:     r.Name,
			Message:  fmt.Sprintf("aspect ratio %.1f:1 exceeds %.0f:1", ar, maxAspectRatio),
			Action:   "verify contour was not a corridor or wall artifact",
		})
	}

	return issues
}

// BuildingValidator checks aggregate building statistics.
type BuildingValidator struct{}

// Validate enforces building-level minimums. Structural failures (an empty
// floor, too little floor area) return a critical validation error; softer
// findings come back as issues.
func (BuildingValidator) Validate(rooms []model.Room, declaredSqFt float64) ([]ValidationIssue, error) {
	if len(rooms) == 0 {
		return nil, faults.Critical(faults.KindValidation, eris.New("building: no rooms extracted"))
	}

	byFloor := map[int][]model.Room{}
	minLevel, maxLevel := rooms[0].FloorLevel, rooms[0].FloorLevel
	var totalSqFt float64
	for _, r := range rooms {
		byFloor[r.FloorLevel] = append(byFloor[r.FloorLevel], r)
		if r.FloorLevel < minLevel {
			minLevel = r.FloorLevel
		}
		if r.FloorLevel > maxLevel {
			maxLevel = r.FloorLevel
		}
		totalSqFt += r.AreaSqFt
	}

	for level := minLevel; level <= maxLevel; level++ {
		floor := byFloor[level]
		if len(floor) < minRoomsPerFloor {
			return nil, faults.Critical(faults.KindValidation,
				eris.Errorf("building: floor %d has no rooms", level))
		}
		var floorSqFt float64
		for _, r := range floor {
			floorSqFt += r.AreaSqFt
		}
		if floorSqFt < minFloorSqFt {
			return nil, faults.Critical(faults.KindValidation,
				eris.Errorf("building: floor %d area %.1f sqft below minimum %.0f", level, floorSqFt, minFloorSqFt))
		}
	}

	var issues []ValidationIssue
	if totalSqFt < minBuildingSqFt {
		return nil, faults.Critical(faults.KindValidation,
			eris.Errorf("building: total area %.1f sqft below minimum %.0f", totalSqFt, minBuildingSqFt))
	}

	if declaredSqFt > 0 {
		diff := totalSqFt - declaredSqFt
		if diff < 0 {
			diff = -diff
		}
		if diff > declaredAreaTolSqFt {
			issues = append(issues, ValidationIssue{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("summed area %.0f sqft differs from declared %.0f sqft", totalSqFt, declaredSqFt),
				Action:   "verify scale or declared area",
			})
		}
	}

	zap.L().Debug("validate: building checks passed",
		zap.Int("rooms", len(rooms)),
		zap.Int("floors", len(byFloor)),
		zap.Float64("total_sqft", totalSqFt),
	)
	return issues, nil
}

// ShouldStopPipeline reports whether any critical issue is present.
func ShouldStopPipeline(issues []ValidationIssue) bool {
	for _, i := range issues {
		if i.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// CriticalIssueError converts the first critical issue into a typed error
// for the orchestrator.
func CriticalIssueError(issues []ValidationIssue) error {
	for _, i := range issues {
		if i.Severity == SeverityCritical {
			return faults.Critical(faults.KindValidation,
				eris.Errorf("room %q: %s", i.Room, i.Message))
		}
	}
	return nil
}
