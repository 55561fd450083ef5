package pipeline

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/draftworks/manualj-cli/internal/model"
	"github.com/draftworks/manualj-cli/pkg/vision"
)

// mergeAreaRatioTol is how far a vision area may differ from a contour area
// while still matching the same room.
const mergeAreaRatioTol = 0.3

// Reconciler merges untrusted vision room observations with contour-derived
// geometry. Observations are parsed into strict Room records at this
// boundary, with missing or invalid fields defaulted explicitly; the merged
// set goes back through the room validator exactly like extractor output.
type Reconciler struct {
	// ScalePxPerFt converts observation bounding boxes to feet; base-DPI
	// space, same as the locked context scale.
	ScalePxPerFt float64
	// RenderDPIRatio is rendered-DPI over base DPI for the page the
	// observations were made on.
	RenderDPIRatio float64
}

// ParseObservation converts one untrusted observation into a strict Room.
// ok is false when the observation carries no usable geometry at all.
func (rc *Reconciler) ParseObservation(obs vision.RoomObservation, floorLevel int) (model.Room, bool) {
	widthFt, lengthFt := obs.WidthFt, obs.LengthFt
	if widthFt <= 0 || lengthFt <= 0 {
		widthFt, lengthFt = rc.bboxFeet(obs.BBoxPx)
	}
	if (widthFt <= 0 || lengthFt <= 0) && obs.AreaSqFt <= 0 {
		return model.Room{}, false
	}
	if widthFt <= 0 || lengthFt <= 0 {
		// Area only: assume a 4:3 room, the median residential proportion.
		widthFt = math.Sqrt(obs.AreaSqFt * 4.0 / 3.0)
		lengthFt = obs.AreaSqFt / widthFt
	}

	room := model.NewRectRoom(uuid.NewString(), widthFt, lengthFt)
	room.Name = strings.TrimSpace(obs.Name)
	if room.Name == "" {
		room.Name = "unlabeled"
	}
	room.Type = parseSpaceType(obs.Type)
	room.Source = model.RoomSourceVision
	room.Confidence = clamp01(obs.Confidence)
	room.ExteriorWalls = maxInt(obs.ExteriorWalls, 0)
	room.Windows = maxInt(obs.Windows, 0)
	room.Ceiling = parseCeilingType(obs.Ceiling)

	room.FloorLevel = floorLevel
	if obs.Floor > 0 {
		room.FloorLevel = obs.Floor
	}

	// Printed area beats bbox-derived area when both exist.
	if obs.AreaSqFt > 0 {
		room.AreaSqFt = obs.AreaSqFt
	}
	return room, true
}

// Merge attaches vision semantics to contour rooms and appends unmatched
// vision rooms. Contour rooms keep their measured geometry; vision supplies
// names, types and envelope hints.
func (rc *Reconciler) Merge(contourRooms []model.Room, observations []vision.RoomObservation, floorLevel int) []model.Room {
	merged := append([]model.Room(nil), contourRooms...)
	claimed := make([]bool, len(merged))

	var attached, appended int
	for _, obs := range observations {
		vr, ok := rc.ParseObservation(obs, floorLevel)
		if !ok {
			zap.L().Debug("reconcile: dropping observation without geometry",
				zap.String("name", obs.Name),
			)
			continue
		}

		if idx := rc.matchContour(merged, claimed, vr, obs); idx >= 0 {
			claimed[idx] = true
			merged[idx].Name = vr.Name
			merged[idx].Type = vr.Type
			merged[idx].ExteriorWalls = vr.ExteriorWalls
			merged[idx].Windows = vr.Windows
			merged[idx].Ceiling = vr.Ceiling
			if vr.Confidence > merged[idx].Confidence {
				merged[idx].Confidence = vr.Confidence
			}
			attached++
			continue
		}

		merged = append(merged, vr)
		appended++
	}

	zap.L().Info("reconcile: vision merged",
		zap.Int("contour_rooms", len(contourRooms)),
		zap.Int("observations", len(observations)),
		zap.Int("attached", attached),
		zap.Int("appended", appended),
	)
	return merged
}

// matchContour finds an unclaimed contour room matching the observation:
// the contour centroid falls inside the observation's bbox (in feet), or the
// areas agree within tolerance. Returns -1 when nothing matches.
func (rc *Reconciler) matchContour(rooms []model.Room, claimed []bool, vr model.Room, obs vision.RoomObservation) int {
	minX, minY := rc.ptFeet(obs.BBoxPx[0], obs.BBoxPx[1])
	maxX, maxY := rc.ptFeet(obs.BBoxPx[2], obs.BBoxPx[3])
	hasBBox := maxX > minX && maxY > minY

	best := -1
	bestDelta := math.MaxFloat64
	for i, r := range rooms {
		if claimed[i] || r.Source == model.RoomSourceVision {
			continue
		}
		if hasBBox {
			cx, cy := r.Centroid[0], r.Centroid[1]
			if cx >= minX && cx <= maxX && cy >= minY && cy <= maxY {
				return i
			}
		}
		if vr.AreaSqFt > 0 && r.AreaSqFt > 0 {
			delta := math.Abs(r.AreaSqFt-vr.AreaSqFt) / vr.AreaSqFt
			if delta <= mergeAreaRatioTol && delta < bestDelta {
				best = i
				bestDelta = delta
			}
		}
	}
	return best
}

func (rc *Reconciler) bboxFeet(bbox [4]float64) (w, l float64) {
	scale := rc.rasterScale()
	if scale <= 0 {
		return 0, 0
	}
	return (bbox[2] - bbox[0]) / scale, (bbox[3] - bbox[1]) / scale
}

func (rc *Reconciler) ptFeet(x, y float64) (float64, float64) {
	scale := rc.rasterScale()
	if scale <= 0 {
		return 0, 0
	}
	return x / scale, y / scale
}

func (rc *Reconciler) rasterScale() float64 {
	ratio := rc.RenderDPIRatio
	if ratio <= 0 {
		ratio = 1
	}
	return rc.ScalePxPerFt * ratio
}

// parseSpaceType validates an untrusted type string, defaulting to other.
func parseSpaceType(s string) model.SpaceType {
	t := model.SpaceType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range model.AllSpaceTypes() {
		if t == known {
			return t
		}
	}
	return model.SpaceTypeOther
}

// parseCeilingType validates an untrusted ceiling string, defaulting to flat.
func parseCeilingType(s string) model.CeilingType {
	switch model.CeilingType(strings.ToLower(strings.TrimSpace(s))) {
	case model.CeilingVaulted:
		return model.CeilingVaulted
	case model.CeilingCathedral:
		return model.CeilingCathedral
	default:
		return model.CeilingFlat
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
