package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"plandash/pkg/contracts/domain"
)

// EnvPrefix namespaces every environment variable, e.g. PLANDASH_SERVER_PORT.
const EnvPrefix = "PLANDASH"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Workbook  WorkbookConfig  `yaml:"workbook" envconfig:"WORKBOOK"`
	Goals     GoalsConfig     `yaml:"goals" envconfig:"GOALS"`
	Model     ModelConfig     `yaml:"model" envconfig:"MODEL"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	OpenBrowser     bool          `yaml:"open_browser" envconfig:"OPEN_BROWSER"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"` // console, file or both
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`   // stdout, none
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"` // prometheus, none
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// WorkbookConfig describes the planning workbook and its period layout
type WorkbookConfig struct {
	Path              string `yaml:"path" envconfig:"FILE"`
	Periods           int    `yaml:"periods" envconfig:"PERIODS"`
	PeriodsPerYear    int    `yaml:"periods_per_year" envconfig:"PERIODS_PER_YEAR"`
	FirstYear         int    `yaml:"first_year" envconfig:"FIRST_YEAR"`
	FallbackProducts  int    `yaml:"fallback_products" envconfig:"FALLBACK_PRODUCTS"`
	FallbackProcesses int    `yaml:"fallback_processes" envconfig:"FALLBACK_PROCESSES"`
}

// GoalsConfig holds the goal-programming targets and the solver's deviations
type GoalsConfig struct {
	ProfitTarget    float64 `yaml:"profit_target" envconfig:"PROFIT_TARGET"`
	OvertimeCap     float64 `yaml:"overtime_cap" envconfig:"OVERTIME_CAP"`
	ProfitShortfall float64 `yaml:"profit_shortfall" envconfig:"PROFIT_SHORTFALL"`
	OvertimeExcess  float64 `yaml:"overtime_excess" envconfig:"OVERTIME_EXCESS"`
	ProfitWeight    float64 `yaml:"profit_weight" envconfig:"PROFIT_WEIGHT"`
	OvertimeWeight  float64 `yaml:"overtime_weight" envconfig:"OVERTIME_WEIGHT"`
}

// ModelConfig holds values reported by the external solver run
type ModelConfig struct {
	ReportedObjective float64 `yaml:"reported_objective" envconfig:"REPORTED_OBJECTIVE"`
}

// Horizon returns the period layout of the workbook.
func (w WorkbookConfig) Horizon() domain.Horizon {
	return domain.Horizon{
		FirstYear:      w.FirstYear,
		PeriodsPerYear: w.PeriodsPerYear,
		Periods:        w.Periods,
	}
}

// Load builds the configuration from defaults, the optional YAML file and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file path. An empty path skips
// the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.RateLimit.Enabled && c.Security.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate limit rps must be positive when enabled")
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/plandash.log"
	}

	if strings.TrimSpace(c.Workbook.Path) == "" {
		return fmt.Errorf("workbook path must be set")
	}

	if c.Workbook.Periods <= 0 || c.Workbook.PeriodsPerYear <= 0 {
		return fmt.Errorf("workbook periods must be positive (periods=%d, per_year=%d)",
			c.Workbook.Periods, c.Workbook.PeriodsPerYear)
	}

	if c.Workbook.FallbackProducts <= 0 || c.Workbook.FallbackProcesses <= 0 {
		return fmt.Errorf("fallback product and process counts must be positive")
	}

	if c.Goals.ProfitTarget < 0 || c.Goals.OvertimeCap < 0 {
		return fmt.Errorf("goal targets must not be negative")
	}

	if c.Goals.ProfitWeight < 0 || c.Goals.OvertimeWeight < 0 || c.Goals.ProfitWeight+c.Goals.OvertimeWeight == 0 {
		return fmt.Errorf("goal weights must be non-negative and not both zero")
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG"); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/plandash.log",
		},
		Telemetry: TelemetryConfig{
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
		Workbook: WorkbookConfig{
			Path:              "ICATEX_Lingo_4Anios.xlsx",
			Periods:           48,
			PeriodsPerYear:    12,
			FirstYear:         2021,
			FallbackProducts:  20,
			FallbackProcesses: 5,
		},
		Goals: GoalsConfig{
			ProfitTarget:    12000000,
			OvertimeCap:     50000,
			ProfitShortfall: 3422729.51,
			OvertimeExcess:  25712344,
			ProfitWeight:    1,
			OvertimeWeight:  5,
		},
		Model: ModelConfig{
			ReportedObjective: 11256950.00,
		},
	}
}
