package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/draftworks/manualj-cli/internal/config"
)

// baseRenderDPI is the poppler reference resolution the calibration factor
// was measured against. Scale results are expressed in this space; renderers
// at other resolutions rescale by dpi/72.
const baseRenderDPI = 72.0

// ScaleResult is one scale determination: the pixels-per-foot factor plus
// how it was derived and how much to trust it.
type ScaleResult struct {
	PxPerFt    float64 `json:"px_per_ft"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
	// Notation is the matched source text, empty for defaults.
	Notation string `json:"notation,omitempty"`
}

// Fraction-of-an-inch architectural notation, e.g. 1/4"=1'-0" or 3/8" = 1'.
var fractionScaleRe = regexp.MustCompile(`(\d+)\s*/\s*(\d+)\s*(?:"|”|''|IN|INCH)?\s*=\s*1\s*(?:'|’|FT|FOOT)`)

// Ratio notation, e.g. 1:48 or 1:96.
var ratioScaleRe = regexp.MustCompile(`\b1\s*:\s*(\d{2,3})\b`)

// Whole-inch notation, e.g. 1"=1'.
var inchScaleRe = regexp.MustCompile(`\b(\d+)\s*(?:"|”)\s*=\s*1\s*(?:'|’)`)

// keywordScale is one free-text scale hint. Lower confidence than explicit
// notation.
type keywordScale struct {
	term        string
	inchesPerFt float64
}

// keywordScales are checked in order so a page carrying two hints always
// resolves to the same one. More specific terms come first.
var keywordScales = []keywordScale{
	{term: "THREE EIGHTHS INCH", inchesPerFt: 0.375},
	{term: "1/4 INCH SCALE", inchesPerFt: 0.25},
	{term: "QUARTER-INCH", inchesPerFt: 0.25},
	{term: "QUARTER INCH", inchesPerFt: 0.25},
	{term: "EIGHTH-INCH", inchesPerFt: 0.125},
	{term: "EIGHTH INCH", inchesPerFt: 0.125},
	{term: "HALF-INCH", inchesPerFt: 0.5},
	{term: "HALF INCH", inchesPerFt: 0.5},
}

// ScaleDetector extracts the drawing scale from page text. It never errors
// on low confidence; absent any notation it falls back to the residential
// default of 1/4"=1' at confidence 0.3 and lets validators judge the result.
type ScaleDetector struct {
	cfg config.PipelineConfig
}

// NewScaleDetector creates a detector.
func NewScaleDetector(cfg config.PipelineConfig) *ScaleDetector {
	return &ScaleDetector{cfg: cfg}
}

// Detect finds the drawing scale in the page text. Explicit notation wins
// over keyword hints; keyword hints win over the default. Out-of-range
// candidates are discarded and the search continues with the next tier.
func (d *ScaleDetector) Detect(pageText string) ScaleResult {
	text := strings.ToUpper(pageText)

	if r, ok := d.detectExplicit(text); ok {
		return r
	}
	if r, ok := d.detectKeyword(text); ok {
		return r
	}

	// 1/4"=1' default covers the vast majority of US residential drawings.
	r := ScaleResult{
		PxPerFt:    d.pxPerFt(0.25),
		Confidence: 0.3,
		Method:     "default_quarter_inch",
	}
	zap.L().Debug("scale: no notation found, using default",
		zap.Float64("px_per_ft", r.PxPerFt),
	)
	return r
}

func (d *ScaleDetector) detectExplicit(text string) (ScaleResult, bool) {
	if m := fractionScaleRe.FindStringSubmatch(text); m != nil {
		num, _ := strconv.ParseFloat(m[1], 64)
		den, _ := strconv.ParseFloat(m[2], 64)
		if den > 0 {
			if r, ok := d.result(num/den, "fraction_notation", m[0], text); ok {
				return r, true
			}
		}
	}

	if m := inchScaleRe.FindStringSubmatch(text); m != nil {
		inches, _ := strconv.ParseFloat(m[1], 64)
		if r, ok := d.result(inches, "inch_notation", m[0], text); ok {
			return r, true
		}
	}

	if m := ratioScaleRe.FindStringSubmatch(text); m != nil {
		ratio, _ := strconv.ParseFloat(m[1], 64)
		if ratio > 0 {
			// 1:48 is one paper inch per 48 building inches, the same
			// drawing as 1/4"=1'.
			if r, ok := d.result(12/ratio, "ratio_notation", m[0], text); ok {
				return r, true
			}
		}
	}

	return ScaleResult{}, false
}

func (d *ScaleDetector) detectKeyword(text string) (ScaleResult, bool) {
	for _, ks := range keywordScales {
		if !strings.Contains(text, ks.term) {
			continue
		}
		px := d.pxPerFt(ks.inchesPerFt)
		if !d.inBounds(px) {
			continue
		}
		conf := 0.5
		if strings.Contains(text, "SCALE") {
			conf = 0.7
		}
		zap.L().Debug("scale: keyword hint matched",
			zap.String("keyword", ks.term),
			zap.Float64("px_per_ft", px),
		)
		return ScaleResult{PxPerFt: px, Confidence: conf, Method: "keyword_hint", Notation: ks.term}, true
	}
	return ScaleResult{}, false
}

// result builds an explicit-notation result, discarding out-of-range values.
// Confidence is 0.8 for bare notation, boosted when the literal word SCALE
// sits next to it.
func (d *ScaleDetector) result(inchesPerFt float64, method, notation, text string) (ScaleResult, bool) {
	if inchesPerFt <= 0 {
		return ScaleResult{}, false
	}
	px := d.pxPerFt(inchesPerFt)
	if !d.inBounds(px) {
		zap.L().Warn("scale: notation out of sane range, discarding",
			zap.String("notation", notation),
			zap.Float64("px_per_ft", px),
		)
		return ScaleResult{}, false
	}

	conf := 0.8
	if idx := strings.Index(text, notation); idx >= 0 {
		lead := text[maxInt(0, idx-20):idx]
		if strings.Contains(lead, "SCALE") {
			conf = 0.95
			method = "scale_" + method
		}
	}

	zap.L().Info("scale: detected",
		zap.String("method", method),
		zap.String("notation", notation),
		zap.Float64("px_per_ft", px),
		zap.Float64("confidence", conf),
	)
	return ScaleResult{PxPerFt: px, Confidence: conf, Method: method, Notation: notation}, true
}

// pxPerFt converts an architect scale to raster pixels per building foot at
// the base resolution. A scale of x"=1' is ratio 1:(12/x); one building foot
// renders at that denominator times the measured calibration factor, so
// 1/4"=1' lands near 128 px/ft with the default 2.667.
func (d *ScaleDetector) pxPerFt(inchesPerFt float64) float64 {
	return (12 / inchesPerFt) * d.cfg.RenderCalibration
}

func (d *ScaleDetector) inBounds(px float64) bool {
	return px >= d.cfg.MinScalePxPerFt && px <= d.cfg.MaxScalePxPerFt
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
