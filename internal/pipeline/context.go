// Package pipeline turns a blueprint PDF into a validated set of rooms ready
// for envelope modeling: page classification, scale detection, contour
// geometry, vision reconciliation, and validation, coordinated by a
// conflict-checked per-run context.
package pipeline

import (
	"math"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/draftworks/manualj-cli/internal/faults"
)

// scaleTolerancePxPerFt is the largest disagreement between two scale
// determinations still treated as the same value.
const scaleTolerancePxPerFt = 1.0

// PipelineContext is the set-once store for the run's agreed geometry basis.
// Independent detectors lock their determinations here; a materially
// different second determination is surfaced as a NeedsInputError instead of
// silently overwriting. One instance per run, never shared across projects.
type PipelineContext struct {
	mu sync.Mutex

	PDFPath   string
	ProjectID string
	ZipCode   string

	pages    []int
	pagesSet bool

	scalePxPerFt float64
	scaleSet     bool
}

// NewPipelineContext creates a context for one run.
func NewPipelineContext(pdfPath, projectID, zipCode string) *PipelineContext {
	return &PipelineContext{PDFPath: pdfPath, ProjectID: projectID, ZipCode: zipCode}
}

// SetPages locks the ordered 0-indexed page selection. Idempotent for an
// equal list; a different list raises a NeedsInputError.
func (c *PipelineContext) SetPages(pages []int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.pagesSet {
		c.pages = append([]int(nil), pages...)
		c.pagesSet = true
		return nil
	}
	if equalPages(c.pages, pages) {
		return nil
	}
	return &faults.NeedsInputError{
		InputType: faults.InputPlanQuality,
		Locked:    append([]int(nil), c.pages...),
		Attempted: append([]int(nil), pages...),
		Hint:      "page selection conflict; pass specific_pages to pin the floor plan pages",
	}
}

// Pages returns the locked page selection, or an error if none is set.
func (c *PipelineContext) Pages() ([]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pagesSet {
		return nil, eris.New("pipeline context: pages not set")
	}
	return append([]int(nil), c.pages...), nil
}

// SetScale locks the pixels-per-foot factor. Values within 1.0 px/ft of the
// locked value are treated as agreement; larger deltas raise a
// NeedsInputError carrying both values.
func (c *PipelineContext) SetScale(pxPerFt float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.scaleSet {
		c.scalePxPerFt = pxPerFt
		c.scaleSet = true
		return nil
	}
	if math.Abs(c.scalePxPerFt-pxPerFt) <= scaleTolerancePxPerFt {
		return nil
	}
	return &faults.NeedsInputError{
		InputType: faults.InputScale,
		Locked:    c.scalePxPerFt,
		Attempted: pxPerFt,
		Hint:      "conflicting scale determinations; use a scale override",
		Details: map[string]any{
			"locked_px_per_ft":    c.scalePxPerFt,
			"attempted_px_per_ft": pxPerFt,
		},
	}
}

// Scale returns the locked pixels-per-foot factor, or an error if none is
// set.
func (c *PipelineContext) Scale() (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.scaleSet {
		return 0, eris.New("pipeline context: scale not set")
	}
	return c.scalePxPerFt, nil
}

// Reset clears locked state so the context can host a new run. Mandatory
// between runs sharing a process.
func (c *PipelineContext) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = nil
	c.pagesSet = false
	c.scalePxPerFt = 0
	c.scaleSet = false
}

func equalPages(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
