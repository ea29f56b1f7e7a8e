package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr            string   `yaml:"addr"`
		MaxUploadMB     int      `yaml:"max_upload_mb"`
		AllowedOrigins  []string `yaml:"allowed_origins"`
		FileExtensions  []string `yaml:"file_extensions"`
		ShutdownSeconds int      `yaml:"shutdown_seconds"`
	} `yaml:"server"`
	Parser struct {
		MinTradeColumns int `yaml:"min_trade_columns"`
	} `yaml:"parser"`
	Risk struct {
		DefaultRiskPct float64 `yaml:"default_risk_pct"`
		MinRiskPct     float64 `yaml:"min_risk_pct"`
		MaxRiskPct     float64 `yaml:"max_risk_pct"`
		// MaxAccountRiskPct caps the maximum position size: the largest
		// fraction of the account the planner will ever put at risk.
		MaxAccountRiskPct float64 `yaml:"max_account_risk_pct"`
		// Risk level bands, as percent of position value (or account).
		LowPct    float64 `yaml:"low_pct"`
		MediumPct float64 `yaml:"medium_pct"`
		HighPct   float64 `yaml:"high_pct"`
		// Recommendation thresholds on the theoretical R-multiple.
		PoorRewardR      float64 `yaml:"poor_reward_r"`
		ExcellentRewardR float64 `yaml:"excellent_reward_r"`
	} `yaml:"risk"`
	Rating struct {
		// Component weights of the composite score.
		PerformanceWeight  float64 `yaml:"performance_weight"`
		RiskAdjustedWeight float64 `yaml:"risk_adjusted_weight"`
		RMultipleWeight    float64 `yaml:"r_multiple_weight"`
		// Score-to-label boundaries, descending.
		ExcellentScore float64 `yaml:"excellent_score"`
		VeryGoodScore  float64 `yaml:"very_good_score"`
		GoodScore      float64 `yaml:"good_score"`
		FairScore      float64 `yaml:"fair_score"`
	} `yaml:"rating"`
	Reports struct {
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"reports"`
	Fetch struct {
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"fetch"`
}

func Default() *Config {
	c := &Config{}
	c.Server.Addr = ":8080"
	c.Server.MaxUploadMB = 50
	c.Server.AllowedOrigins = []string{"*"}
	c.Server.FileExtensions = []string{".htm", ".html"}
	c.Server.ShutdownSeconds = 10
	c.Parser.MinTradeColumns = 10
	c.Risk.DefaultRiskPct = 2.0
	c.Risk.MinRiskPct = 0.1
	c.Risk.MaxRiskPct = 10.0
	c.Risk.MaxAccountRiskPct = 10.0
	c.Risk.LowPct = 1.0
	c.Risk.MediumPct = 2.0
	c.Risk.HighPct = 5.0
	c.Risk.PoorRewardR = 1.0
	c.Risk.ExcellentRewardR = 2.0
	c.Rating.PerformanceWeight = 0.4
	c.Rating.RiskAdjustedWeight = 0.3
	c.Rating.RMultipleWeight = 0.3
	c.Rating.ExcellentScore = 80
	c.Rating.VeryGoodScore = 65
	c.Rating.GoodScore = 50
	c.Rating.FairScore = 35
	c.Reports.Dir = "reports"
	c.Reports.RetentionDays = 30
	c.Fetch.TimeoutSeconds = 30
	return c
}

func (c *Config) Validate() error {
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	if c.Parser.MinTradeColumns < 10 {
		return fmt.Errorf("parser.min_trade_columns must be at least 10, got %d", c.Parser.MinTradeColumns)
	}
	if c.Risk.DefaultRiskPct < c.Risk.MinRiskPct || c.Risk.DefaultRiskPct > c.Risk.MaxRiskPct {
		return fmt.Errorf("risk.default_risk_pct %.2f outside [%.2f, %.2f]",
			c.Risk.DefaultRiskPct, c.Risk.MinRiskPct, c.Risk.MaxRiskPct)
	}
	if !(c.Risk.LowPct < c.Risk.MediumPct && c.Risk.MediumPct < c.Risk.HighPct) {
		return fmt.Errorf("risk level bands must be ascending: low=%.2f medium=%.2f high=%.2f",
			c.Risk.LowPct, c.Risk.MediumPct, c.Risk.HighPct)
	}
	wsum := c.Rating.PerformanceWeight + c.Rating.RiskAdjustedWeight + c.Rating.RMultipleWeight
	if wsum < 0.999 || wsum > 1.001 {
		return fmt.Errorf("rating weights must sum to 1.0, got %.3f", wsum)
	}
	return nil
}

// LoadConfig reads the yaml config at path. A missing file is not an
// error: the defaults are returned so the CLI works without setup.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
