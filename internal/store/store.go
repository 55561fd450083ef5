package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/draftworks/manualj-cli/internal/config"
	"github.com/draftworks/manualj-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status    model.RunStatus `json:"status,omitempty"`
	ProjectID string          `json:"project_id,omitempty"`
	Limit     int             `json:"limit,omitempty"`
	Offset    int             `json:"offset,omitempty"`
}

// ZipDesign is one row of the zip_design table: surveyed design conditions
// for a specific ZIP code, taking precedence over the built-in zone tables.
type ZipDesign struct {
	ZipCode            string  `json:"zip_code"`
	ClimateZone        string  `json:"climate_zone"`
	LatitudeDeg        float64 `json:"latitude_deg"`
	HeatingDesignTempF float64 `json:"heating_design_temp_f"`
	CoolingDesignTempF float64 `json:"cooling_design_temp_f"`
	DailyRangeF        float64 `json:"daily_range_f"`
}

// Store defines the persistence interface for the analysis pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, req model.AnalysisRequest) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.AnalysisResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Phases
	CreatePhase(ctx context.Context, runID string, name string) (*model.RunPhase, error)
	CompletePhase(ctx context.Context, phaseID string, result *model.PhaseResult) error

	// Load schedule
	SaveRoomLoads(ctx context.Context, runID string, loads []model.RoomLoad) error
	GetRoomLoads(ctx context.Context, runID string) ([]model.RoomLoad, error)

	// ZIP design conditions
	ImportZipDesigns(ctx context.Context, rows []ZipDesign) (int64, error)
	GetZipDesign(ctx context.Context, zip string) (*ZipDesign, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// New opens the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLite(cfg.SQLitePath)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
