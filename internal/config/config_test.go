package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadFrom tests the LoadFrom function with various scenarios
func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		fileContent string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "default configuration with no env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)

				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, 100.0, cfg.Security.RateLimit.RPS)

				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "console", cfg.Logging.Output)

				assert.Equal(t, "ICATEX_Lingo_4Anios.xlsx", cfg.Workbook.Path)
				assert.Equal(t, 48, cfg.Workbook.Periods)
				assert.Equal(t, 12, cfg.Workbook.PeriodsPerYear)
				assert.Equal(t, 2021, cfg.Workbook.FirstYear)

				assert.Equal(t, 12000000.0, cfg.Goals.ProfitTarget)
				assert.Equal(t, 50000.0, cfg.Goals.OvertimeCap)
				assert.Equal(t, 3422729.51, cfg.Goals.ProfitShortfall)
				assert.Equal(t, 25712344.0, cfg.Goals.OvertimeExcess)
				assert.Equal(t, 1.0, cfg.Goals.ProfitWeight)
				assert.Equal(t, 5.0, cfg.Goals.OvertimeWeight)
				assert.Equal(t, 11256950.00, cfg.Model.ReportedObjective)
			},
		},
		{
			name: "environment variables override defaults",
			env: map[string]string{
				"PLANDASH_SERVER_PORT":         "9090",
				"PLANDASH_WORKBOOK_FILE":       "/data/plan.xlsx",
				"PLANDASH_GOALS_PROFIT_TARGET": "15000000",
				"PLANDASH_LOGGING_OUTPUT":      "both",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "/data/plan.xlsx", cfg.Workbook.Path)
				assert.Equal(t, 15000000.0, cfg.Goals.ProfitTarget)
				assert.Equal(t, "both", cfg.Logging.Output)
			},
		},
		{
			name: "file overlays defaults and env wins over file",
			fileContent: `
server:
  port: 7070
workbook:
  path: from-file.xlsx
goals:
  overtime_weight: 3
`,
			env: map[string]string{
				"PLANDASH_SERVER_PORT": "7171",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7171, cfg.Server.Port)
				assert.Equal(t, "from-file.xlsx", cfg.Workbook.Path)
				assert.Equal(t, 3.0, cfg.Goals.OvertimeWeight)
				assert.Equal(t, 1.0, cfg.Goals.ProfitWeight)
				assert.Equal(t, 48, cfg.Workbook.Periods)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"PLANDASH_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name: "zero weights",
			env: map[string]string{
				"PLANDASH_GOALS_PROFIT_WEIGHT":   "0",
				"PLANDASH_GOALS_OVERTIME_WEIGHT": "0",
			},
			wantErr: true,
		},
		{
			name:    "non-positive periods",
			env:     map[string]string{"PLANDASH_WORKBOOK_PERIODS": "0"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			fileContent: "server: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.fileContent != "" {
				path = filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.fileContent), 0644))
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, "logs/plandash.log", cfg.Logging.FilePath)
}

func TestWorkbookConfig_Horizon(t *testing.T) {
	h := Default().Workbook.Horizon()
	assert.Equal(t, 2021, h.FirstYear)
	assert.Equal(t, 4, h.Years())
}
