package pipeline

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	// minFloorPlanScore is the qualifying score for a floor plan page.
	minFloorPlanScore = 30.0
	// confidenceCapScore is where confidence saturates at its 0.95 cap.
	confidenceCapScore = 50.0
)

// floorPlanWeights scores page text terms for floor-plan-ness. Kept as plain
// data so individual rules stay unit-testable and overridable; positive terms
// get diminishing returns on repeats, negatives apply at full weight.
var floorPlanWeights = map[string]float64{
	// Strong positives: sheet titles.
	"FLOOR PLAN":    30,
	"FIRST FLOOR":   25,
	"SECOND FLOOR":  25,
	"THIRD FLOOR":   25,
	"MAIN FLOOR":    25,
	"UPPER FLOOR":   25,
	"LOWER LEVEL":   20,
	"BASEMENT PLAN": 25,

	// Room-name terms: weak individually, cumulative.
	"BEDROOM": 5,
	"MASTER":  4,
	"KITCHEN": 5,
	"LIVING":  4,
	"DINING":  3,
	"BATH":    3,
	"CLOSET":  2,
	"LAUNDRY": 3,
	"GARAGE":  3,
	"FOYER":   3,
	"PANTRY":  2,
	"HALL":    1,

	// Strong negatives: other sheet families.
	"ELEVATION":  -40,
	"ELEVATIONS": -40,
	"ROOF PLAN":  -50,

	// Moderate negatives.
	"SECTION":         -15,
	"SCHEDULE":        -10,
	"DETAIL":          -5,
	"SITE PLAN":       -15,
	"FOUNDATION PLAN": -10,
	"ELECTRICAL":      -10,
	"PLUMBING":        -10,
}

// claimMatches counts occurrences of term in upper whose characters were not
// already claimed by a longer term, marking each counted span as claimed.
func claimMatches(upper, term string, claimed []bool) int {
	n := 0
	for start := 0; start <= len(upper)-len(term); {
		i := strings.Index(upper[start:], term)
		if i < 0 {
			break
		}
		i += start
		end := i + len(term)

		free := true
		for j := i; j < end; j++ {
			if claimed[j] {
				free = false
				break
			}
		}
		if free {
			for j := i; j < end; j++ {
				claimed[j] = true
			}
			n++
			start = end
		} else {
			start = i + 1
		}
	}
	return n
}

// sqftNotationRe matches printed square-footage callouts.
var sqftNotationRe = regexp.MustCompile(`\d[\d,]*\s*(?:SQ\.?\s*FT|SF\b|SQUARE\s+FEET)`)

// floorPattern maps an explicit sheet label to a floor level.
type floorPattern struct {
	term  string
	level int
	bonus bool
}

// floorPatterns are checked in order; the first match wins. Longer, more
// specific labels come first.
var floorPatterns = []floorPattern{
	{term: "BONUS ROOM", level: 2, bonus: true},
	{term: "BONUS", level: 2, bonus: true},
	{term: "BASEMENT", level: 0},
	{term: "LOWER LEVEL", level: 0},
	{term: "FIRST FLOOR", level: 1},
	{term: "1ST FLOOR", level: 1},
	{term: "MAIN FLOOR", level: 1},
	{term: "MAIN LEVEL", level: 1},
	{term: "GROUND FLOOR", level: 1},
	{term: "SECOND FLOOR", level: 2},
	{term: "2ND FLOOR", level: 2},
	{term: "UPPER FLOOR", level: 2},
	{term: "UPPER LEVEL", level: 2},
	{term: "THIRD FLOOR", level: 3},
	{term: "3RD FLOOR", level: 3},
}

// coreLivingTerms indicate primary living space when no explicit floor label
// exists.
var coreLivingTerms = []string{"KITCHEN", "LIVING", "DINING", "GREAT ROOM"}

// PageClassification is the classifier's verdict on one page.
type PageClassification struct {
	Page        int     `json:"page"` // 0-indexed
	Score       float64 `json:"score"`
	IsFloorPlan bool    `json:"is_floor_plan"`
	Confidence  float64 `json:"confidence"`
	FloorLevel  int     `json:"floor_level"`
	// FloorLabel records how the level was derived: the matched pattern, or
	// "assumed" for the core-living fallback.
	FloorLabel string `json:"floor_label"`
	IsBonus    bool   `json:"is_bonus"`
}

// ClassificationSummary is the classifier's output over a whole document.
type ClassificationSummary struct {
	Pages      []PageClassification `json:"pages"`
	FloorPlans []PageClassification `json:"floor_plans"`
	MultiStory bool                 `json:"multi_story"`
}

// PageClassifier scores pages for floor-plan content using weighted keyword
// tables. Weights can be overridden from a YAML tables file.
type PageClassifier struct {
	weights map[string]float64
	scale   *ScaleDetector
}

// NewPageClassifier creates a classifier. overrides, when non-nil, replace
// individual term weights.
func NewPageClassifier(scale *ScaleDetector, overrides map[string]float64) *PageClassifier {
	weights := make(map[string]float64, len(floorPlanWeights))
	for term, w := range floorPlanWeights {
		weights[term] = w
	}
	for term, w := range overrides {
		weights[strings.ToUpper(term)] = w
	}
	return &PageClassifier{weights: weights, scale: scale}
}

// ScorePage computes the floor-plan score for one page's text. Positive term
// repeats earn diminishing returns: weight × (1 + 0.2·(count−1)). Overlapping
// terms resolve longest-first so one run of text is counted once: "SECOND
// FLOOR PLAN" scores "SECOND FLOOR", not also "FLOOR PLAN", and "ELEVATIONS"
// does not additionally score "ELEVATION".
func (c *PageClassifier) ScorePage(text string) float64 {
	upper := strings.ToUpper(text)

	terms := make([]string, 0, len(c.weights))
	for term := range c.weights {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})

	claimed := make([]bool, len(upper))
	var score float64
	for _, term := range terms {
		n := claimMatches(upper, term, claimed)
		if n == 0 {
			continue
		}
		if w := c.weights[term]; w > 0 {
			score += w * (1 + 0.2*float64(n-1))
		} else {
			score += w
		}
	}

	if r := c.scale.Detect(upper); r.Notation != "" {
		score += 10
	}
	if sqftNotationRe.MatchString(upper) {
		score += 5
	}

	return score
}

// ClassifyPage scores one page and assigns a floor level. The level is
// assigned even below the qualifying score: pinned pages bypass the score
// gate, and a pinned basement or upper-floor sheet must still land on its
// labeled level.
func (c *PageClassifier) ClassifyPage(page int, text string) PageClassification {
	upper := strings.ToUpper(text)
	score := c.ScorePage(text)

	pc := PageClassification{
		Page:        page,
		Score:       score,
		IsFloorPlan: score >= minFloorPlanScore,
		Confidence:  confidenceFromScore(score),
	}
	pc.FloorLevel, pc.FloorLabel, pc.IsBonus = floorLevelFor(upper)
	return pc
}

// ClassifyPages classifies every page and summarizes floor-plan pages in
// score order, flagging multi-story documents.
func (c *PageClassifier) ClassifyPages(texts []string) ClassificationSummary {
	summary := ClassificationSummary{}

	levels := map[int]bool{}
	for i, text := range texts {
		pc := c.ClassifyPage(i, text)
		summary.Pages = append(summary.Pages, pc)
		if pc.IsFloorPlan {
			summary.FloorPlans = append(summary.FloorPlans, pc)
			levels[pc.FloorLevel] = true
		}
	}

	sort.SliceStable(summary.FloorPlans, func(i, j int) bool {
		return summary.FloorPlans[i].Score > summary.FloorPlans[j].Score
	})
	summary.MultiStory = len(levels) > 1

	zap.L().Info("classify: pages scored",
		zap.Int("pages", len(texts)),
		zap.Int("floor_plans", len(summary.FloorPlans)),
		zap.Bool("multi_story", summary.MultiStory),
	)
	return summary
}

// confidenceFromScore scales confidence linearly from the qualifying
// threshold, capped at 0.95 past score 50. Below threshold the score itself
// conveys how far off the page was.
func confidenceFromScore(score float64) float64 {
	if score < minFloorPlanScore {
		if score <= 0 {
			return 0
		}
		return 0.3 * score / minFloorPlanScore
	}
	conf := 0.5 + 0.45*(score-minFloorPlanScore)/(confidenceCapScore-minFloorPlanScore)
	if conf > 0.95 {
		conf = 0.95
	}
	return conf
}

// floorLevelFor assigns a floor level from explicit sheet labels, falling
// back to floor 1 "assumed" when only core-living terms are present.
func floorLevelFor(upper string) (level int, label string, bonus bool) {
	for _, fp := range floorPatterns {
		if strings.Contains(upper, fp.term) {
			return fp.level, fp.term, fp.bonus
		}
	}
	for _, term := range coreLivingTerms {
		if strings.Contains(upper, term) {
			return 1, "assumed", false
		}
	}
	return 1, "assumed", false
}
