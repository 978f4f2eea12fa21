// Package config defines the global configuration for the Firebay service.
// Configuration is loaded once at process start and is immutable thereafter,
// following 12-Factor principles: OS environment (highest priority) over a
// local dotenv file. Any missing required value or invalid format fails the
// process fast on startup.
package config

import (
	"time"

	"firebay/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// Config is the top-level configuration struct. Sub-components receive only
// the specific subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"firebay-api"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Server    ServerConfig
	Database  DatabaseConfig
	Region    RegionConfig
	Satellite SatelliteConfig
	Weather   WeatherConfig
	Risk      RiskConfig
	Events    EventsConfig

	// Build metadata injected via ldflags, not env.
	Build BuildInfo
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string   `envconfig:"PORT" default:"8080"`
	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// DatabaseConfig holds event-store connection and pool tuning parameters.
// An empty URL switches the service to the in-memory event store, which is
// the normal mode for local development.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL"`

	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// RegionConfig pins the monitored zone. The service watches a single fixed
// coastal region; these defaults are Bahía Exploradores.
type RegionConfig struct {
	Name string  `envconfig:"REGION_NAME" default:"Aysén"`
	Zone string  `envconfig:"REGION_ZONE" default:"Bahía Exploradores"`
	Lat  float64 `envconfig:"REGION_LAT" default:"-46.31050588037077"`
	Lon  float64 `envconfig:"REGION_LON" default:"-73.42610705801674"`
	Zoom int     `envconfig:"MAP_ZOOM" default:"10"`
}

// SatelliteConfig holds the on-disk satellite scene catalog location.
type SatelliteConfig struct {
	ScenesDir string `envconfig:"SCENES_DIR" default:"./data/scenes"`
}

// WeatherConfig holds the upstream current-conditions source. An empty
// UpstreamURL switches the service to the simulated conditions provider.
type WeatherConfig struct {
	UpstreamURL string        `envconfig:"WEATHER_UPSTREAM_URL"`
	Timeout     time.Duration `envconfig:"WEATHER_TIMEOUT" default:"10s"`
	UserAgent   string        `envconfig:"WEATHER_USER_AGENT" default:"Firebay-Weather/1.0"`
}

// RiskConfig holds evaluator configuration.
type RiskConfig struct {
	// ProfilesPath points to an optional YAML file of named threshold
	// profiles. Empty means only the built-in default profile is available.
	ProfilesPath string `envconfig:"THRESHOLD_PROFILES_PATH"`
}

// EventsConfig holds detected-event registry settings.
type EventsConfig struct {
	RetentionDays int `envconfig:"EVENT_RETENTION_DAYS" default:"90" validate:"min=1,max=365"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Linker-injected build variables. Set with:
//
//	-ldflags "-X firebay/internal/config.version=... -X firebay/internal/config.commit=..."
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// NewBuildInfo returns the build metadata captured at link time.
func NewBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	}
}
