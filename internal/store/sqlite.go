package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/draftworks/manualj-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	request    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	result     TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS run_phases (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	name       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	result     TEXT,
	started_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS room_loads (
	run_id                  TEXT NOT NULL REFERENCES runs(id),
	space_id                TEXT NOT NULL,
	name                    TEXT NOT NULL,
	type                    TEXT NOT NULL,
	zone_name               TEXT NOT NULL,
	floor_level             INTEGER NOT NULL,
	area_sqft               REAL NOT NULL,
	heating_btu_hr          REAL NOT NULL,
	cooling_sensible_btu_hr REAL NOT NULL,
	cooling_latent_btu_hr   REAL NOT NULL,
	PRIMARY KEY (run_id, space_id)
);

CREATE TABLE IF NOT EXISTS zip_design (
	zip_code              TEXT PRIMARY KEY,
	climate_zone          TEXT NOT NULL,
	latitude_deg          REAL NOT NULL,
	heating_design_temp_f REAL NOT NULL,
	cooling_design_temp_f REAL NOT NULL,
	daily_range_f         REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_run_phases_run_id ON run_phases(run_id);
CREATE INDEX IF NOT EXISTS idx_room_loads_run_id ON room_loads(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, req model.AnalysisRequest) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal request")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, request, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(reqJSON), string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		Request:   req,
		Status:    model.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) UpdateRunResult(ctx context.Context, runID string, result *model.AnalysisResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}

	status := model.RunStatusComplete
	if !result.Success {
		status = model.RunStatusFailed
		if result.ErrorType == "needs_input" {
			status = model.RunStatusNeedsInput
		}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET result = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(resultJSON), string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run result %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, request, status, result, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, request, status, result, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.ProjectID != "" {
		query += ` AND json_extract(request, '$.project_id') = ?`
		args = append(args, filter.ProjectID)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) CreatePhase(ctx context.Context, runID string, name string) (*model.RunPhase, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_phases (id, run_id, name, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, runID, name, string(model.PhaseStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert phase for run %s", runID)
	}

	return &model.RunPhase{
		ID:        id,
		RunID:     runID,
		Name:      name,
		Status:    model.PhaseStatusRunning,
		StartedAt: now,
	}, nil
}

func (s *SQLiteStore) CompletePhase(ctx context.Context, phaseID string, result *model.PhaseResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal phase result")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE run_phases SET status = ?, result = ? WHERE id = ?`,
		string(result.Status), string(resultJSON), phaseID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete phase %s", phaseID)
	}
	return checkRowsAffected(res, "phase", phaseID)
}

func (s *SQLiteStore) SaveRoomLoads(ctx context.Context, runID string, loads []model.RoomLoad) error {
	if len(loads) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, l := range loads {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO room_loads
			 (run_id, space_id, name, type, zone_name, floor_level, area_sqft,
			  heating_btu_hr, cooling_sensible_btu_hr, cooling_latent_btu_hr)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, l.SpaceID, l.Name, string(l.Type), l.ZoneName, l.FloorLevel, l.AreaSqFt,
			l.HeatingBTUHr, l.CoolingSensibleBTUHr, l.CoolingLatentBTUHr,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert room load %s", l.Name)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit room loads")
}

func (s *SQLiteStore) GetRoomLoads(ctx context.Context, runID string) ([]model.RoomLoad, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT space_id, name, type, zone_name, floor_level, area_sqft,
		        heating_btu_hr, cooling_sensible_btu_hr, cooling_latent_btu_hr
		 FROM room_loads WHERE run_id = ?
		 ORDER BY floor_level, name`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get room loads")
	}
	defer rows.Close()

	var loads []model.RoomLoad
	for rows.Next() {
		var l model.RoomLoad
		if err := rows.Scan(&l.SpaceID, &l.Name, &l.Type, &l.ZoneName, &l.FloorLevel, &l.AreaSqFt,
			&l.HeatingBTUHr, &l.CoolingSensibleBTUHr, &l.CoolingLatentBTUHr); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan room load")
		}
		loads = append(loads, l)
	}
	return loads, eris.Wrap(rows.Err(), "sqlite: room loads iterate")
}

func (s *SQLiteStore) ImportZipDesigns(ctx context.Context, zips []ZipDesign) (int64, error) {
	if len(zips) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	var n int64
	for _, z := range zips {
		res, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO zip_design
			 (zip_code, climate_zone, latitude_deg, heating_design_temp_f, cooling_design_temp_f, daily_range_f)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			z.ZipCode, z.ClimateZone, z.LatitudeDeg, z.HeatingDesignTempF, z.CoolingDesignTempF, z.DailyRangeF,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: import zip design %s", z.ZipCode)
		}
		affected, _ := res.RowsAffected()
		n += affected
	}
	return n, eris.Wrap(tx.Commit(), "sqlite: commit zip designs")
}

func (s *SQLiteStore) GetZipDesign(ctx context.Context, zip string) (*ZipDesign, error) {
	var z ZipDesign
	err := s.db.QueryRowContext(ctx,
		`SELECT zip_code, climate_zone, latitude_deg, heating_design_temp_f, cooling_design_temp_f, daily_range_f
		 FROM zip_design WHERE zip_code = ?`,
		zip,
	).Scan(&z.ZipCode, &z.ClimateZone, &z.LatitudeDeg, &z.HeatingDesignTempF, &z.CoolingDesignTempF, &z.DailyRangeF)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get zip design")
	}
	return &z, nil
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var reqJSON string
	var resultJSON sql.NullString

	err := row.Scan(&r.ID, &reqJSON, &r.Status, &resultJSON, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if err := json.Unmarshal([]byte(reqJSON), &r.Request); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal request")
	}
	if resultJSON.Valid {
		r.Result = &model.AnalysisResult{}
		if err := json.Unmarshal([]byte(resultJSON.String), r.Result); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal result")
		}
	}
	return &r, nil
}
