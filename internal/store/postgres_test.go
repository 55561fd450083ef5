package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftworks/manualj-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "queued", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), model.AnalysisRequest{
		PDFPath: "/plans/house.pdf",
		ZipCode: "30301",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, request, status, result, created_at, updated_at FROM runs WHERE id = \$1`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRunStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs("failed", pgxmock.AnyArg(), "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateRunStatus(context.Background(), "ghost", model.RunStatusFailed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRunResult_StatusFromOutcome(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	// needs_input failures land in the needs_input status, not failed.
	mock.ExpectExec(`UPDATE runs SET result`).
		WithArgs(pgxmock.AnyArg(), "needs_input", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateRunResult(context.Background(), "run-1", &model.AnalysisResult{
		Success:   false,
		ErrorType: "needs_input",
		InputType: "scale",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompletePhase(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE run_phases SET status`).
		WithArgs("complete", pgxmock.AnyArg(), "phase-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.CompletePhase(context.Background(), "phase-1", &model.PhaseResult{
		Name:   "geometry",
		Status: model.PhaseStatusComplete,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRoomLoads_DeleteThenCopy(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM room_loads`).
		WithArgs("run-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"room_loads"}, roomLoadColumns).WillReturnResult(2)

	loads := []model.RoomLoad{
		{SpaceID: "s1", Name: "living", Type: model.SpaceTypeLiving, ZoneName: "main", FloorLevel: 1, AreaSqFt: 300},
		{SpaceID: "s2", Name: "bed 1", Type: model.SpaceTypeBedroom, ZoneName: "main", FloorLevel: 2, AreaSqFt: 150},
	}
	err := s.SaveRoomLoads(context.Background(), "run-1", loads)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRoomLoads_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	err := s.SaveRoomLoads(context.Background(), "run-1", nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetZipDesign_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT zip_code, climate_zone`).
		WithArgs("99999").
		WillReturnError(pgx.ErrNoRows)

	z, err := s.GetZipDesign(context.Background(), "99999")
	require.NoError(t, err)
	assert.Nil(t, z)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetZipDesign_Found(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{
		"zip_code", "climate_zone", "latitude_deg",
		"heating_design_temp_f", "cooling_design_temp_f", "daily_range_f",
	}).AddRow("30301", "3A", 33.7, 23.0, 92.0, 19.0)

	mock.ExpectQuery(`SELECT zip_code, climate_zone`).
		WithArgs("30301").
		WillReturnRows(rows)

	z, err := s.GetZipDesign(context.Background(), "30301")
	require.NoError(t, err)
	require.NotNil(t, z)
	assert.Equal(t, "3A", z.ClimateZone)
	assert.InDelta(t, 92.0, z.CoolingDesignTempF, 0.01)
	assert.NoError(t, mock.ExpectationsWereMet())
}
