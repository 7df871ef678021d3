package config

import (
	"strings"

	"github.com/onnwee/gravity-sim/internal/utils"
)

// Config holds application configuration derived from environment
// variables. These are the defaults the commands start from; flags may
// override individual values.
type Config struct {
	LogLevel string

	// Engine selects the force engine: "bh", "fmm" or "direct".
	Engine string

	// Integration parameters.
	TimeStep float64
	Steps    int
	G        float64

	// Barnes-Hut parameters.
	Theta     float64
	MaxDepth  int
	MaxLeaves int
	Softening float64

	// FMM parameters.
	ItemsPerCell int
	Eps          float64

	// Step options.
	CollisionsEnabled bool
	EnergyTracking    bool
	Workers           int

	// Output.
	DumpEvery      int
	DumpCompressed bool

	// Viewer.
	ViewerAddr     string
	ViewerFPS      float64
	FrameCacheMB   int64
	MetricsEnabled bool

	// Observability.
	SentryEnvironment string
	SentryRelease     string
	OTELEnabled       bool
	OTELEndpoint      string
	OTELSampleRate    float64
}

var cached *Config

// Load reads env vars once and caches them.
func Load() *Config {
	if cached != nil {
		return cached
	}
	engine := strings.ToLower(utils.GetEnvAsString("NBODY_ENGINE", "bh"))
	switch engine {
	case "bh", "fmm", "direct":
	default:
		engine = "bh"
	}
	cached = &Config{
		LogLevel: utils.GetEnvAsString("LOG_LEVEL", "info"),

		Engine:   engine,
		TimeStep: utils.GetEnvAsFloat("NBODY_TIME_STEP", 1e-4),
		Steps:    utils.GetEnvAsInt("NBODY_STEPS", 10000),
		G:        utils.GetEnvAsFloat("NBODY_G", 1),

		Theta:     utils.GetEnvAsFloat("NBODY_THETA", 0.2),
		MaxDepth:  utils.GetEnvAsInt("NBODY_MAX_DEPTH", 6),
		MaxLeaves: utils.GetEnvAsInt("NBODY_MAX_LEAVES", 4),
		Softening: utils.GetEnvAsFloat("NBODY_SOFTENING", 0.01),

		ItemsPerCell: utils.GetEnvAsInt("NBODY_ITEMS_PER_CELL", 128),
		Eps:          utils.GetEnvAsFloat("NBODY_EPS", 0.01),

		CollisionsEnabled: utils.GetEnvAsBool("NBODY_COLLISIONS", false),
		EnergyTracking:    utils.GetEnvAsBool("NBODY_ENERGY_TRACKING", false),
		Workers:           utils.GetEnvAsInt("NBODY_WORKERS", 0),

		DumpEvery:      utils.GetEnvAsInt("NBODY_DUMP_EVERY", 100),
		DumpCompressed: utils.GetEnvAsBool("NBODY_DUMP_COMPRESSED", false),

		ViewerAddr:     utils.GetEnvAsString("VIEWER_ADDR", ":8000"),
		ViewerFPS:      utils.GetEnvAsFloat("VIEWER_FPS", 30),
		FrameCacheMB:   int64(utils.GetEnvAsInt("VIEWER_FRAME_CACHE_MB", 64)),
		MetricsEnabled: utils.GetEnvAsBool("METRICS_ENABLED", true),

		SentryEnvironment: utils.GetEnvAsString("SENTRY_ENVIRONMENT", "development"),
		SentryRelease:     utils.GetEnvAsString("SENTRY_RELEASE", "dev"),
		OTELEnabled:       utils.GetEnvAsBool("OTEL_ENABLED", false),
		OTELEndpoint:      utils.GetEnvAsString("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		OTELSampleRate:    utils.GetEnvAsFloat("OTEL_TRACE_SAMPLE_RATE", 0.1),
	}
	return cached
}

// ResetForTest clears cached config; for use in tests only.
func ResetForTest() { cached = nil }
