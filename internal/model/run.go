package model

import "time"

// RunStatus represents the current state of an analysis run.
type RunStatus string

const (
	RunStatusQueued      RunStatus = "queued"
	RunStatusClassifying RunStatus = "classifying"
	RunStatusExtracting  RunStatus = "extracting"
	RunStatusValidating  RunStatus = "validating"
	RunStatusCalculating RunStatus = "calculating"
	RunStatusComplete    RunStatus = "complete"
	RunStatusNeedsInput  RunStatus = "needs_input"
	RunStatusFailed      RunStatus = "failed"
)

// AnalysisRequest is what the caller hands the pipeline for one blueprint.
type AnalysisRequest struct {
	PDFPath   string `json:"pdf_path"`
	ZipCode   string `json:"zip_code"`
	ProjectID string `json:"project_id"`

	// SpecificPages restricts classification to the given 0-indexed pages.
	SpecificPages []int `json:"specific_pages,omitempty"`
	// ScaleOverride, when > 0, short-circuits scale detection and is
	// force-locked into the pipeline context.
	ScaleOverride float64 `json:"scale_override,omitempty"`
	// DeclaredAreaSqFt, when known (listing data, prior survey), is
	// cross-checked against the summed conditioned area.
	DeclaredAreaSqFt float64 `json:"declared_area_sqft,omitempty"`
}

// Run represents a single analysis run for a project.
type Run struct {
	ID        string          `json:"id"`
	Request   AnalysisRequest `json:"request"`
	Status    RunStatus       `json:"status"`
	Result    *AnalysisResult `json:"result,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RunPhase represents a phase within a run.
type RunPhase struct {
	ID        string       `json:"id"`
	RunID     string       `json:"run_id"`
	Name      string       `json:"name"`
	Status    PhaseStatus  `json:"status"`
	Result    *PhaseResult `json:"result,omitempty"`
	StartedAt time.Time    `json:"started_at"`
}

// PhaseStatus represents the current state of a pipeline phase.
type PhaseStatus string

const (
	PhaseStatusRunning  PhaseStatus = "running"
	PhaseStatusComplete PhaseStatus = "complete"
	PhaseStatusFailed   PhaseStatus = "failed"
	PhaseStatusSkipped  PhaseStatus = "skipped"
)

// PhaseResult holds the outcome of a pipeline phase.
type PhaseResult struct {
	Name     string         `json:"name"`
	Status   PhaseStatus    `json:"status"`
	Duration int64          `json:"duration_ms"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ResultMetadata carries provenance for a successful analysis.
type ResultMetadata struct {
	ScalePxPerFt    float64  `json:"scale_px_per_ft"`
	ScaleMethod     string   `json:"scale_method"`
	ScaleConfidence float64  `json:"scale_confidence"`
	PagesUsed       []int    `json:"pages_used"`
	MultiStory      bool     `json:"multi_story"`
	Confidence      float64  `json:"confidence"`
	Warnings        []string `json:"warnings,omitempty"`
}

// ClimateSummary is the climate slice of the result payload.
type ClimateSummary struct {
	ZipCode            string  `json:"zip_code"`
	ClimateZone        string  `json:"climate_zone"`
	LatitudeDeg        float64 `json:"latitude_deg"`
	HeatingDesignTempF float64 `json:"heating_design_temp_f"`
	CoolingDesignTempF float64 `json:"cooling_design_temp_f"`
}

// HVACSummary is the equipment-sizing slice of the result payload.
type HVACSummary struct {
	TotalHeatingBTUHr float64 `json:"total_heating_btu_hr"`
	TotalCoolingBTUHr float64 `json:"total_cooling_btu_hr"`
	HeatingTons       float64 `json:"heating_tons"`
	CoolingTons       float64 `json:"cooling_tons"`
}

// AnalysisResult is the single structured output of a pipeline run. On a
// needs-input conflict, Success is false and the NeedsInput fields carry
// enough structure for the caller to prompt a human.
type AnalysisResult struct {
	Success bool `json:"success"`

	RunID     string `json:"run_id,omitempty"`
	ProjectID string `json:"project_id,omitempty"`

	Rooms    []Room                `json:"rooms,omitempty"`
	Envelope *BuildingThermalModel `json:"envelope,omitempty"`
	Climate  *ClimateSummary       `json:"climate,omitempty"`
	HVAC     *HVACSummary          `json:"hvac_summary,omitempty"`
	Loads    *HVACLoads            `json:"loads,omitempty"`
	Metadata *ResultMetadata       `json:"metadata,omitempty"`
	Phases   []PhaseResult         `json:"phases,omitempty"`

	// Failure payload.
	ErrorType string         `json:"error_type,omitempty"` // "needs_input" or "processing_failed"
	InputType string         `json:"input_type,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Error     string         `json:"error,omitempty"`
}
