package rating

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"mt4-analyzer/internal/logger"
	"mt4-analyzer/internal/store"
	"mt4-analyzer/internal/types"
)

func TestMain(m *testing.M) {
	logger.InitWithConfig(logger.LogConfig{Level: "ERROR", Format: "text"})
	os.Exit(m.Run())
}

func newRater() *Rater {
	return NewRater(store.Default())
}

func TestRateEmptyAccount(t *testing.T) {
	rating := newRater().Rate(context.Background(), types.CalculatedMetrics{}, types.RMultipleStatistics{})
	assert.Equal(t, 0.0, rating.PerformanceScore)
	assert.Equal(t, 0.0, rating.CompositeScore)
	assert.Equal(t, "Poor", rating.CompositeRating)
}

func TestRateStrongAccount(t *testing.T) {
	m := types.CalculatedMetrics{
		TotalTrades:    50,
		WinRate:        65,
		ProfitFactor:   3.0,
		Expectancy:     10,
		RecoveryFactor: 8,
	}
	rs := types.RMultipleStatistics{
		TotalValidRTrades: 50,
		RExpectancy:       0.6,
		RWinRate:          62,
		AverageLosingR:    -0.9,
		RVolatility:       1.2,
	}

	rating := newRater().Rate(context.Background(), m, rs)

	// 50 (win rate cap) + 20 (PF cap) + 30 (expectancy cap).
	assert.Equal(t, 100.0, rating.PerformanceScore)
	assert.Equal(t, 80.0, rating.RiskAdjustedScore)
	// 40 + 30 + 20 + 10.
	assert.Equal(t, 100.0, rating.RMultipleScore)
	// 100*0.4 + 80*0.3 + 100*0.3.
	assert.InDelta(t, 94.0, rating.CompositeScore, 1e-9)
	assert.Equal(t, "Excellent", rating.CompositeRating)
}

func TestRateDeterministic(t *testing.T) {
	m := types.CalculatedMetrics{TotalTrades: 10, WinRate: 40, ProfitFactor: 1.2, Expectancy: 2, RecoveryFactor: 1.5}
	rs := types.RMultipleStatistics{TotalValidRTrades: 8, RExpectancy: 0.3, RWinRate: 45, AverageLosingR: -1.4, RVolatility: 1.0}

	r := newRater()
	first := r.Rate(context.Background(), m, rs)
	second := r.Rate(context.Background(), m, rs)
	assert.Equal(t, first, second)
}

func TestLabels(t *testing.T) {
	r := newRater()
	assert.Equal(t, "Excellent", r.label(80))
	assert.Equal(t, "Very Good", r.label(70))
	assert.Equal(t, "Good", r.label(55))
	assert.Equal(t, "Fair", r.label(40))
	assert.Equal(t, "Poor", r.label(20))
}

func TestProfitFactorZeroMeansNoCreditForIt(t *testing.T) {
	// All-winner accounts carry profit factor 0; the performance score
	// then leans on win rate and expectancy only.
	m := types.CalculatedMetrics{
		TotalTrades:  5,
		WinRate:      100,
		ProfitFactor: 0,
		Expectancy:   20,
	}
	rating := newRater().Rate(context.Background(), m, types.RMultipleStatistics{})
	// 50 + 0 + 30.
	assert.Equal(t, 80.0, rating.PerformanceScore)
}
