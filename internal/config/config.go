package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	PDF      PDFConfig      `yaml:"pdf" mapstructure:"pdf"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Envelope EnvelopeConfig `yaml:"envelope" mapstructure:"envelope"`
	Loads    LoadsConfig    `yaml:"loads" mapstructure:"loads"`
	Vision   VisionConfig   `yaml:"vision" mapstructure:"vision"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// PDFConfig configures the poppler tool wrappers.
type PDFConfig struct {
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	PdfToPpmPath  string `yaml:"pdftoppm_path" mapstructure:"pdftoppm_path"`
	PdfInfoPath   string `yaml:"pdfinfo_path" mapstructure:"pdfinfo_path"`
	RenderDPI     int    `yaml:"render_dpi" mapstructure:"render_dpi"`
}

// PipelineConfig configures page selection, scale detection and geometry
// extraction.
type PipelineConfig struct {
	// RenderCalibration converts fractional architect scales to raster
	// pixels. Calibrated against the poppler rendering path at 72 DPI;
	// re-measure when changing rasterizers.
	RenderCalibration float64 `yaml:"render_calibration" mapstructure:"render_calibration"`
	MinScalePxPerFt   float64 `yaml:"min_scale_px_per_ft" mapstructure:"min_scale_px_per_ft"`
	MaxScalePxPerFt   float64 `yaml:"max_scale_px_per_ft" mapstructure:"max_scale_px_per_ft"`
	MinRoomSqFt       float64 `yaml:"min_room_sqft" mapstructure:"min_room_sqft"`
	MaxRoomSqFt       float64 `yaml:"max_room_sqft" mapstructure:"max_room_sqft"`
	// TablesPath optionally points at a YAML file overriding the built-in
	// classifier keyword weights and room validation bounds.
	TablesPath string `yaml:"tables_path" mapstructure:"tables_path"`
}

// EnvelopeConfig holds default construction assumptions used when the
// drawing does not state them.
type EnvelopeConfig struct {
	CeilingHeightFt   float64 `yaml:"ceiling_height_ft" mapstructure:"ceiling_height_ft"`
	WallCavityR       float64 `yaml:"wall_cavity_r" mapstructure:"wall_cavity_r"`
	CeilingCavityR    float64 `yaml:"ceiling_cavity_r" mapstructure:"ceiling_cavity_r"`
	FloorCavityR      float64 `yaml:"floor_cavity_r" mapstructure:"floor_cavity_r"`
	FramingType       string  `yaml:"framing_type" mapstructure:"framing_type"`
	WindowUValue      float64 `yaml:"window_u_value" mapstructure:"window_u_value"`
	WindowSHGC        float64 `yaml:"window_shgc" mapstructure:"window_shgc"`
	WindowWallFrac    float64 `yaml:"window_wall_fraction" mapstructure:"window_wall_fraction"`
	NaturalACH        float64 `yaml:"natural_ach" mapstructure:"natural_ach"`
	DuctLocation      string  `yaml:"duct_location" mapstructure:"duct_location"`
	FoundationDefault string  `yaml:"foundation_default" mapstructure:"foundation_default"`
}

// LoadsConfig configures the load calculation.
type LoadsConfig struct {
	IndoorHeatingSetpointF float64 `yaml:"indoor_heating_setpoint_f" mapstructure:"indoor_heating_setpoint_f"`
	IndoorCoolingSetpointF float64 `yaml:"indoor_cooling_setpoint_f" mapstructure:"indoor_cooling_setpoint_f"`
	SupplyCFMPerTon        float64 `yaml:"supply_cfm_per_ton" mapstructure:"supply_cfm_per_ton"`
}

// VisionConfig holds settings for the external room-semantics service.
type VisionConfig struct {
	Key            string  `yaml:"key" mapstructure:"key"`
	Model          string  `yaml:"model" mapstructure:"model"`
	MaxTokens      int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerMin float64 `yaml:"requests_per_min" mapstructure:"requests_per_min"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Disabled       bool    `yaml:"disabled" mapstructure:"disabled"`
}

// ServerConfig configures the analysis HTTP host.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MANUALJ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "manualj.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("pdf.pdftotext_path", "pdftotext")
	v.SetDefault("pdf.pdftoppm_path", "pdftoppm")
	v.SetDefault("pdf.pdfinfo_path", "pdfinfo")
	v.SetDefault("pdf.render_dpi", 144)
	v.SetDefault("pipeline.render_calibration", 2.667)
	v.SetDefault("pipeline.min_scale_px_per_ft", 10.0)
	v.SetDefault("pipeline.max_scale_px_per_ft", 200.0)
	v.SetDefault("pipeline.min_room_sqft", 20.0)
	v.SetDefault("pipeline.max_room_sqft", 2000.0)
	v.SetDefault("envelope.ceiling_height_ft", 8.0)
	v.SetDefault("envelope.wall_cavity_r", 13.0)
	v.SetDefault("envelope.ceiling_cavity_r", 38.0)
	v.SetDefault("envelope.floor_cavity_r", 19.0)
	v.SetDefault("envelope.framing_type", "16oc_2x4")
	v.SetDefault("envelope.window_u_value", 0.32)
	v.SetDefault("envelope.window_shgc", 0.30)
	v.SetDefault("envelope.window_wall_fraction", 0.15)
	v.SetDefault("envelope.natural_ach", 0.35)
	v.SetDefault("envelope.duct_location", "attic")
	v.SetDefault("envelope.foundation_default", "crawlspace")
	v.SetDefault("loads.indoor_heating_setpoint_f", 70.0)
	v.SetDefault("loads.indoor_cooling_setpoint_f", 75.0)
	v.SetDefault("loads.supply_cfm_per_ton", 400.0)
	v.SetDefault("vision.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("vision.max_tokens", 2048)
	v.SetDefault("vision.requests_per_min", 30.0)
	v.SetDefault("vision.timeout_secs", 90)
	v.SetDefault("vision.disabled", false)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
