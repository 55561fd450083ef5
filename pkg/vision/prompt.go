package vision

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

const systemPrompt = `You are an expert architectural drafter reading residential floor plans.
Identify every labeled room on the page. For each room report its name as
printed, a functional type, its pixel bounding box in the image, its printed
dimensions in feet when present, how many of its walls are exterior walls,
how many windows it has, which floor it is on, and your confidence from 0 to 1.

Respond with ONLY a JSON array, no prose:
[{"name":"MASTER BDRM","type":"bedroom","bbox_px":[120,80,480,360],"width_ft":14,"length_ft":15,"area_sqft":210,"exterior_walls":2,"windows":3,"floor":2,"confidence":0.9}]

Valid types: bedroom, bathroom, kitchen, living, dining, office, closet,
hallway, laundry, foyer, utility, garage, storage, bonus, other.
Omit width_ft, length_ft and area_sqft when no dimension text is printed.
When the plan calls out a ceiling treatment (VAULTED CLG, CATH CLG,
CATHEDRAL CEILING) add "ceiling":"vaulted" or "ceiling":"cathedral";
omit the field for flat ceilings.`

func userPrompt(req ExtractRoomsRequest) string {
	var sb strings.Builder
	sb.WriteString("Extract all rooms from this floor plan page.")
	if req.ScalePxPerFt > 0 {
		fmt.Fprintf(&sb, " The drawing scale is %.1f pixels per foot.", req.ScalePxPerFt)
	}
	if req.FloorLevel > 0 {
		fmt.Fprintf(&sb, " This page shows floor %d.", req.FloorLevel)
	}
	return sb.String()
}

// ParseRoomObservations extracts the JSON room array from model output. The
// model is instructed to emit bare JSON but sometimes wraps it in code fences
// or prose, so the parser locates the outermost array before decoding.
func ParseRoomObservations(text string) ([]RoomObservation, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, eris.New("no JSON array in response")
	}

	var rooms []RoomObservation
	if err := json.Unmarshal([]byte(text[start:end+1]), &rooms); err != nil {
		return nil, eris.Wrap(err, "decode room array")
	}
	return rooms, nil
}
