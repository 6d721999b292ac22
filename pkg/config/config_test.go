package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arnavshah/tabling-scheduler/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvPrefix+"CONFIG", "")
	cfg, err := Load()
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Solver, cfg.Solver)
	assert.Equal(t, def.TokenTTL, cfg.TokenTTL)
	days, err := cfg.ActiveDays()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultDays, days)
}

func TestLoadLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheduler.yaml")
	yml := "port: \"9000\"\nlog_level: debug\ndays: [Monday, Wednesday]\nsolver:\n  max_steps: 50\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv(EnvPrefix+"CONFIG", path)
	t.Setenv("PORT", "9100")
	t.Setenv("DATABASE_URL", "postgres://localhost/sched")
	t.Setenv(EnvPrefix+"PORT", "9200")
	t.Setenv(EnvPrefix+"SOLVER__MAX_CANDIDATES", "4")
	t.Setenv(EnvPrefix+"TOKEN_TTL", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9200", cfg.Port, "prefixed variables win")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 50, cfg.Solver.MaxSteps)
	assert.Equal(t, 4, cfg.Solver.MaxCandidates)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.UsesPostgres())

	days, err := cfg.ActiveDays()
	require.NoError(t, err)
	assert.Equal(t, []models.Day{models.Monday, models.Wednesday}, days)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheduler.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"gin_mode":"debug","bcrypt_cost":4}`), 0o600))
	t.Setenv(EnvPrefix+"CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.GinMode)
	assert.Equal(t, 4, cfg.BcryptCost)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad day", map[string]string{EnvPrefix + "DAYS": "Caturday"}},
		{"zero steps", map[string]string{EnvPrefix + "SOLVER__MAX_STEPS": "0"}},
		{"cost too low", map[string]string{EnvPrefix + "BCRYPT_COST": "2"}},
		{"unknown format", map[string]string{EnvPrefix + "CONFIG": "scheduler.toml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvPrefix+"CONFIG", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
