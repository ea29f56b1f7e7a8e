package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 2.0, cfg.Risk.DefaultRiskPct)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  addr: ":9090"
risk:
  default_risk_pct: 1.5
reports:
  retention_days: 7
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 1.5, cfg.Risk.DefaultRiskPct)
	assert.Equal(t, 7, cfg.Reports.RetentionDays)
	// Untouched sections keep their defaults.
	assert.Equal(t, 10, cfg.Parser.MinTradeColumns)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Risk.DefaultRiskPct = 50
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Rating.PerformanceWeight = 0.9
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Parser.MinTradeColumns = 5
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Risk.MediumPct = 0.5
	assert.Error(t, cfg.Validate())
}
