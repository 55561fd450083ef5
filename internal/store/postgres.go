package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/draftworks/manualj-cli/internal/db"
	"github.com/draftworks/manualj-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_run":        `INSERT INTO runs (id, request, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
	"update_run_status": `UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
	"update_run_result": `UPDATE runs SET result = $1, status = $2, updated_at = $3 WHERE id = $4`,
	"get_run":           `SELECT id, request, status, result, created_at, updated_at FROM runs WHERE id = $1`,
	"insert_phase":      `INSERT INTO run_phases (id, run_id, name, status, started_at) VALUES ($1, $2, $3, $4, $5)`,
	"complete_phase":    `UPDATE run_phases SET status = $1, result = $2 WHERE id = $3`,
	"get_zip_design":    `SELECT zip_code, climate_zone, latitude_deg, heating_design_temp_f, cooling_design_temp_f, daily_range_f FROM zip_design WHERE zip_code = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	request    JSONB NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	result     JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS run_phases (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	name       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	result     JSONB,
	started_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS room_loads (
	run_id                  TEXT NOT NULL REFERENCES runs(id),
	space_id                TEXT NOT NULL,
	name                    TEXT NOT NULL,
	type                    TEXT NOT NULL,
	zone_name               TEXT NOT NULL,
	floor_level             INTEGER NOT NULL,
	area_sqft               DOUBLE PRECISION NOT NULL,
	heating_btu_hr          DOUBLE PRECISION NOT NULL,
	cooling_sensible_btu_hr DOUBLE PRECISION NOT NULL,
	cooling_latent_btu_hr   DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, space_id)
);

CREATE TABLE IF NOT EXISTS zip_design (
	zip_code              TEXT PRIMARY KEY,
	climate_zone          TEXT NOT NULL,
	latitude_deg          DOUBLE PRECISION NOT NULL,
	heating_design_temp_f DOUBLE PRECISION NOT NULL,
	cooling_design_temp_f DOUBLE PRECISION NOT NULL,
	daily_range_f         DOUBLE PRECISION NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_project ON runs((request->>'project_id'));
CREATE INDEX IF NOT EXISTS idx_run_phases_run_id ON run_phases(run_id);
CREATE INDEX IF NOT EXISTS idx_room_loads_run_id ON room_loads(run_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, req model.AnalysisRequest) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal request")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, request, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, reqJSON, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		Request:   req,
		Status:    model.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) UpdateRunResult(ctx context.Context, runID string, result *model.AnalysisResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	status := model.RunStatusComplete
	if !result.Success {
		status = model.RunStatusFailed
		if result.ErrorType == "needs_input" {
			status = model.RunStatusNeedsInput
		}
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET result = $1, status = $2, updated_at = $3 WHERE id = $4`,
		resultJSON, string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run result %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var r model.Run
	var reqJSON []byte
	var resultNull *[]byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, request, status, result, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &reqJSON, &r.Status, &resultNull, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	if err := json.Unmarshal(reqJSON, &r.Request); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal request")
	}
	if resultNull != nil {
		r.Result = &model.AnalysisResult{}
		if err := json.Unmarshal(*resultNull, r.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, request, status, result, created_at, updated_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.ProjectID != "" {
		query += fmt.Sprintf(` AND request->>'project_id' = $%d`, argIdx)
		args = append(args, filter.ProjectID)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var reqJSON []byte
		var resultNull *[]byte

		if err := rows.Scan(&r.ID, &reqJSON, &r.Status, &resultNull, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if err := json.Unmarshal(reqJSON, &r.Request); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal request")
		}
		if resultNull != nil {
			r.Result = &model.AnalysisResult{}
			if err := json.Unmarshal(*resultNull, r.Result); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal result")
			}
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) CreatePhase(ctx context.Context, runID string, name string) (*model.RunPhase, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO run_phases (id, run_id, name, status, started_at) VALUES ($1, $2, $3, $4, $5)`,
		id, runID, name, string(model.PhaseStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert phase for run %s", runID)
	}

	return &model.RunPhase{
		ID:        id,
		RunID:     runID,
		Name:      name,
		Status:    model.PhaseStatusRunning,
		StartedAt: now,
	}, nil
}

func (s *PostgresStore) CompletePhase(ctx context.Context, phaseID string, result *model.PhaseResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal phase result")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE run_phases SET status = $1, result = $2 WHERE id = $3`,
		string(result.Status), resultJSON, phaseID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete phase %s", phaseID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("phase not found: %s", phaseID)
	}
	return nil
}

// roomLoadColumns is the COPY column order for the room_loads table.
var roomLoadColumns = []string{
	"run_id", "space_id", "name", "type", "zone_name", "floor_level",
	"area_sqft", "heating_btu_hr", "cooling_sensible_btu_hr", "cooling_latent_btu_hr",
}

// SaveRoomLoads replaces the load schedule for a run. Run IDs are fresh
// UUIDs so the COPY path sees no conflicts after the delete.
func (s *PostgresStore) SaveRoomLoads(ctx context.Context, runID string, loads []model.RoomLoad) error {
	if len(loads) == 0 {
		return nil
	}

	if _, err := s.pool.Exec(ctx, `DELETE FROM room_loads WHERE run_id = $1`, runID); err != nil {
		return eris.Wrapf(err, "postgres: clear room loads %s", runID)
	}

	rows := make([][]any, 0, len(loads))
	for _, l := range loads {
		rows = append(rows, []any{
			runID, l.SpaceID, l.Name, string(l.Type), l.ZoneName, l.FloorLevel,
			l.AreaSqFt, l.HeatingBTUHr, l.CoolingSensibleBTUHr, l.CoolingLatentBTUHr,
		})
	}
	_, err := db.CopyFrom(ctx, s.pool, "room_loads", roomLoadColumns, rows)
	return eris.Wrapf(err, "postgres: save room loads %s", runID)
}

func (s *PostgresStore) GetRoomLoads(ctx context.Context, runID string) ([]model.RoomLoad, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT space_id, name, type, zone_name, floor_level, area_sqft,
		        heating_btu_hr, cooling_sensible_btu_hr, cooling_latent_btu_hr
		 FROM room_loads WHERE run_id = $1
		 ORDER BY floor_level, name`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get room loads")
	}
	defer rows.Close()

	var loads []model.RoomLoad
	for rows.Next() {
		var l model.RoomLoad
		var typ string
		if err := rows.Scan(&l.SpaceID, &l.Name, &typ, &l.ZoneName, &l.FloorLevel, &l.AreaSqFt,
			&l.HeatingBTUHr, &l.CoolingSensibleBTUHr, &l.CoolingLatentBTUHr); err != nil {
			return nil, eris.Wrap(err, "postgres: scan room load")
		}
		l.Type = model.SpaceType(typ)
		loads = append(loads, l)
	}
	return loads, eris.Wrap(rows.Err(), "postgres: room loads iterate")
}

// zipDesignColumns is the upsert column order for the zip_design table.
var zipDesignColumns = []string{
	"zip_code", "climate_zone", "latitude_deg",
	"heating_design_temp_f", "cooling_design_temp_f", "daily_range_f",
}

func (s *PostgresStore) ImportZipDesigns(ctx context.Context, zips []ZipDesign) (int64, error) {
	rows := make([][]any, 0, len(zips))
	for _, z := range zips {
		rows = append(rows, []any{
			z.ZipCode, z.ClimateZone, z.LatitudeDeg,
			z.HeatingDesignTempF, z.CoolingDesignTempF, z.DailyRangeF,
		})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "zip_design",
		Columns:      zipDesignColumns,
		ConflictKeys: []string{"zip_code"},
	}, rows)
	return n, eris.Wrap(err, "postgres: import zip designs")
}

func (s *PostgresStore) GetZipDesign(ctx context.Context, zip string) (*ZipDesign, error) {
	var z ZipDesign
	err := s.pool.QueryRow(ctx,
		`SELECT zip_code, climate_zone, latitude_deg, heating_design_temp_f, cooling_design_temp_f, daily_range_f
		 FROM zip_design WHERE zip_code = $1`,
		zip,
	).Scan(&z.ZipCode, &z.ClimateZone, &z.LatitudeDeg, &z.HeatingDesignTempF, &z.CoolingDesignTempF, &z.DailyRangeF)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get zip design")
	}
	return &z, nil
}
