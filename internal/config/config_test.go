package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"preflight/internal/balance"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv(ConfigPathEnv, path)
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnv, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "preflight.db", cfg.DBPath)
	assert.Equal(t, "table", cfg.Output)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 300, cfg.Watch.Interval)
	assert.Equal(t, 4, cfg.Watch.Workers)
	assert.Equal(t, ":9109", cfg.Watch.MetricsAddr)
	assert.Empty(t, cfg.Profiles)
}

func TestLoad_File(t *testing.T) {
	writeConfig(t, `
db_path: /var/lib/preflight/fleet.db
output: json
log:
  level: debug
  format: json
watch:
  interval: 60
  workers: 8
  metrics_addr: 127.0.0.1:9200
profiles:
  - model: Cessna 172N
    arm_empty: 39
    arm_fuel: 48
    arm_payload: 37
    envelope: [[35, 0], [35, 885], [38.5, 1043], [47.3, 1043], [47.3, 0]]
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/preflight/fleet.db", cfg.DBPath)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 60, cfg.Watch.Interval)
	assert.Equal(t, 8, cfg.Watch.Workers)
	assert.Equal(t, "127.0.0.1:9200", cfg.Watch.MetricsAddr)

	require.Len(t, cfg.Profiles, 1)
	profile := cfg.Profiles[0].Profile()
	assert.Equal(t, "Cessna 172N", profile.Name)
	assert.Equal(t, 37.0, profile.ArmPayload)
	require.Len(t, profile.Envelope, 5)
	assert.Equal(t, balance.Point{CG: 38.5, Weight: 1043}, profile.Envelope[2])
}

func TestLoad_EnvOverrides(t *testing.T) {
	writeConfig(t, "watch:\n  workers: 8\n")
	t.Setenv("PREFLIGHT_WATCH_WORKERS", "2")
	t.Setenv("PREFLIGHT_DB_PATH", "/tmp/override.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Watch.Workers)
	assert.Equal(t, "/tmp/override.db", cfg.DBPath)
}

func TestLoad_NormalizesCase(t *testing.T) {
	writeConfig(t, "output: JSON\nlog:\n  level: DEBUG\n  format: Json\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestConfig_ValidateOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnv, "")

	cfg, err := Load()
	require.NoError(t, err)

	cfg.Log.Level = "WARN"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "warn", cfg.Log.Level)

	cfg.Log.Level = "verbose"
	assert.ErrorContains(t, cfg.Validate(), "invalid log level")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "bad output",
			content: "output: xml\n",
			wantErr: "invalid output format",
		},
		{
			name:    "bad log level",
			content: "log:\n  level: verbose\n",
			wantErr: "invalid log level",
		},
		{
			name:    "bad log format",
			content: "log:\n  format: xml\n",
			wantErr: "invalid log format",
		},
		{
			name:    "zero interval",
			content: "watch:\n  interval: 0\n",
			wantErr: "watch.interval must be greater than 0",
		},
		{
			name:    "negative workers",
			content: "watch:\n  workers: -1\n",
			wantErr: "watch.workers must be greater than 0",
		},
		{
			name:    "profile without model",
			content: "profiles:\n  - cg_min: 35\n    cg_max: 47.5\n",
			wantErr: "model is required",
		},
		{
			name:    "inverted cg limits",
			content: "profiles:\n  - model: Cessna 172N\n    cg_min: 47.5\n    cg_max: 35\n",
			wantErr: "must be less than cg_max",
		},
		{
			name:    "degenerate envelope",
			content: "profiles:\n  - model: Cessna 172N\n    envelope: [[35, 0], [47, 1043]]\n",
			wantErr: "at least 3 vertices",
		},
		{
			name:    "malformed vertex",
			content: "profiles:\n  - model: Cessna 172N\n    envelope: [[35, 0], [47, 1043], [40]]\n",
			wantErr: "must be [cg, weight]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, tt.content)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	writeConfig(t, "log: [unterminated\n")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}
