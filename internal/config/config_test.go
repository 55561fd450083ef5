package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "manualj.db", cfg.Store.SQLitePath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "pdftotext", cfg.PDF.PdfToTextPath)
	assert.Equal(t, "pdftoppm", cfg.PDF.PdfToPpmPath)
	assert.Equal(t, 144, cfg.PDF.RenderDPI)
	assert.InDelta(t, 2.667, cfg.Pipeline.RenderCalibration, 0.001)
	assert.InDelta(t, 10.0, cfg.Pipeline.MinScalePxPerFt, 0.001)
	assert.InDelta(t, 200.0, cfg.Pipeline.MaxScalePxPerFt, 0.001)
	assert.InDelta(t, 20.0, cfg.Pipeline.MinRoomSqFt, 0.001)
	assert.InDelta(t, 2000.0, cfg.Pipeline.MaxRoomSqFt, 0.001)
	assert.InDelta(t, 8.0, cfg.Envelope.CeilingHeightFt, 0.001)
	assert.InDelta(t, 13.0, cfg.Envelope.WallCavityR, 0.001)
	assert.Equal(t, "16oc_2x4", cfg.Envelope.FramingType)
	assert.InDelta(t, 0.35, cfg.Envelope.NaturalACH, 0.001)
	assert.Equal(t, "attic", cfg.Envelope.DuctLocation)
	assert.InDelta(t, 70.0, cfg.Loads.IndoorHeatingSetpointF, 0.001)
	assert.InDelta(t, 75.0, cfg.Loads.IndoorCoolingSetpointF, 0.001)
	assert.InDelta(t, 400.0, cfg.Loads.SupplyCFMPerTon, 0.001)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Vision.Model)
	assert.Equal(t, 90, cfg.Vision.TimeoutSecs)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/manualj
log:
  level: debug
  format: console
pipeline:
  render_calibration: 2.0
envelope:
  wall_cavity_r: 21
  framing_type: 24oc_2x6
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/manualj", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.InDelta(t, 2.0, cfg.Pipeline.RenderCalibration, 0.001)
	assert.InDelta(t, 21.0, cfg.Envelope.WallCavityR, 0.001)
	assert.Equal(t, "24oc_2x6", cfg.Envelope.FramingType)

	// Unset keys still default.
	assert.InDelta(t, 0.32, cfg.Envelope.WindowUValue, 0.001)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("MANUALJ_LOG_LEVEL", "warn")
	t.Setenv("MANUALJ_VISION_DISABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Vision.Disabled)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	assert.Error(t, InitLogger(LogConfig{Level: "not-a-level", Format: "json"}))
}
