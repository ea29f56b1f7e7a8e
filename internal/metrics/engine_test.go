package metrics

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mt4-analyzer/internal/logger"
	"mt4-analyzer/internal/types"
)

func TestMain(m *testing.M) {
	logger.InitWithConfig(logger.LogConfig{Level: "ERROR", Format: "text"})
	os.Exit(m.Run())
}

func closedTrade(day int, profit float64) types.Trade {
	open := time.Date(2025, 7, day, 9, 0, 0, 0, time.UTC)
	return types.Trade{
		Ticket:     "t",
		Type:       types.Buy,
		OpenTime:   open,
		CloseTime:  open.Add(2 * time.Hour),
		OpenPrice:  1.0,
		ClosePrice: 1.1,
		Size:       1.0,
		Profit:     profit,
	}
}

func TestCalculateEmptySet(t *testing.T) {
	e := NewEngine()
	m := e.Calculate(context.Background(), nil)
	assert.Equal(t, 0, m.TotalTrades)
	assert.Equal(t, 0.0, m.ProfitFactor)
	assert.Equal(t, 0.0, m.WinRate)
	assert.Equal(t, 0.0, m.MaxDrawdownPercent)
	assert.Equal(t, 0.0, m.KellyPercentage)
}

func TestCalculateBasicAggregates(t *testing.T) {
	trades := []types.Trade{
		closedTrade(1, 100),
		closedTrade(2, -50),
		closedTrade(3, 200),
		closedTrade(4, -25),
	}

	m := NewEngine().Calculate(context.Background(), trades)

	assert.Equal(t, 4, m.TotalTrades)
	assert.Equal(t, 2, m.WinningTrades)
	assert.Equal(t, 2, m.LosingTrades)
	assert.Equal(t, 300.0, m.GrossProfit)
	assert.Equal(t, 75.0, m.GrossLoss)
	assert.Equal(t, 225.0, m.TotalNetProfit)
	assert.Equal(t, 50.0, m.WinRate)
	assert.InDelta(t, 4.0, m.ProfitFactor, 1e-9)
	assert.InDelta(t, 56.25, m.ExpectedPayoff, 1e-9)
	assert.Equal(t, 200.0, m.LargestWin)
	assert.Equal(t, -50.0, m.LargestLoss)
	assert.Equal(t, 150.0, m.AverageWin)
	assert.Equal(t, -37.5, m.AverageLoss)
	// 150 / 37.5.
	assert.InDelta(t, 4.0, m.WinLossRatio, 1e-9)
	// 0.5*150 + 0.5*(-37.5)
	assert.InDelta(t, 56.25, m.Expectancy, 1e-9)
}

func TestWinLossRatioIsAverageRatio(t *testing.T) {
	// Two winners averaging 150 against two losers averaging 37.5:
	// the ratio compares average magnitudes, never trade counts.
	trades := []types.Trade{
		closedTrade(1, 100),
		closedTrade(2, 200),
		closedTrade(3, -50),
		closedTrade(4, -25),
	}
	m := NewEngine().Calculate(context.Background(), trades)
	assert.InDelta(t, 4.0, m.WinLossRatio, 1e-9)

	// No losers: ratio stays at its zero default.
	winners := []types.Trade{closedTrade(1, 100), closedTrade(2, 200)}
	m = NewEngine().Calculate(context.Background(), winners)
	assert.Equal(t, 0.0, m.WinLossRatio)
}

func TestProfitFactorZeroWhenNoLosses(t *testing.T) {
	trades := []types.Trade{closedTrade(1, 100), closedTrade(2, 50)}
	m := NewEngine().Calculate(context.Background(), trades)
	assert.Equal(t, 0.0, m.ProfitFactor)
	assert.Equal(t, 100.0, m.WinRate)
}

func TestMaxDrawdownPercent(t *testing.T) {
	// Equity: 100, 50, 150, 75. Peak 150, trough 75 -> 50%.
	trades := []types.Trade{
		closedTrade(1, 100),
		closedTrade(2, -50),
		closedTrade(3, 100),
		closedTrade(4, -75),
	}
	m := NewEngine().Calculate(context.Background(), trades)
	assert.InDelta(t, 50.0, m.MaxDrawdownPercent, 1e-9)
	assert.GreaterOrEqual(t, m.MaxDrawdownPercent, 0.0)
	// Recovery: net 75 over 75 currency drawdown.
	assert.InDelta(t, 1.0, m.RecoveryFactor, 1e-9)
}

func TestRecoveryFactorLosingAccount(t *testing.T) {
	// Net -75 against a 100 currency drawdown: the factor reports the
	// magnitude recovered per unit of drawdown even when the account
	// ends under water.
	trades := []types.Trade{
		closedTrade(1, 25),
		closedTrade(2, -100),
	}
	m := NewEngine().Calculate(context.Background(), trades)
	assert.InDelta(t, 0.75, m.RecoveryFactor, 1e-9)
}

func TestDrawdownUsesCloseTimeOrder(t *testing.T) {
	// Same trades listed out of chronological order must produce the
	// same equity curve.
	trades := []types.Trade{
		closedTrade(4, -75),
		closedTrade(1, 100),
		closedTrade(3, 100),
		closedTrade(2, -50),
	}
	m := NewEngine().Calculate(context.Background(), trades)
	assert.InDelta(t, 50.0, m.MaxDrawdownPercent, 1e-9)
}

func TestOrderingFallsBackToOpenTime(t *testing.T) {
	// A trade without a close time sorts by its open time instead of
	// collapsing to the front of the curve.
	missing := closedTrade(3, -75)
	missing.CloseTime = time.Time{}

	trades := []types.Trade{
		missing,
		closedTrade(1, 100),
		closedTrade(2, 50),
	}
	m := NewEngine().Calculate(context.Background(), trades)
	// Equity 100, 150, 75: peak 150, trough 75.
	assert.InDelta(t, 50.0, m.MaxDrawdownPercent, 1e-9)
}

func TestKellyClamped(t *testing.T) {
	// Overwhelmingly positive edge: raw Kelly far above the cap.
	trades := []types.Trade{
		closedTrade(1, 500),
		closedTrade(2, 500),
		closedTrade(3, 500),
		closedTrade(4, -10),
	}
	m := NewEngine().Calculate(context.Background(), trades)
	assert.Equal(t, 25.0, m.KellyPercentage)

	// Negative edge clamps to zero.
	losing := []types.Trade{
		closedTrade(1, 10),
		closedTrade(2, -500),
		closedTrade(3, -500),
	}
	m = NewEngine().Calculate(context.Background(), losing)
	assert.Equal(t, 0.0, m.KellyPercentage)
}

func TestStreaks(t *testing.T) {
	trades := []types.Trade{
		closedTrade(1, 10),
		closedTrade(2, 10),
		closedTrade(3, 10),
		closedTrade(4, -5),
		closedTrade(5, -5),
		closedTrade(6, 10),
		closedTrade(7, -5),
	}
	m := NewEngine().Calculate(context.Background(), trades)
	assert.Equal(t, 3, m.MaxConsecutiveWins)
	assert.Equal(t, 2, m.MaxConsecutiveLosses)
	assert.InDelta(t, 2.0, m.AvgWinStreak, 1e-9)  // streaks 3 and 1
	assert.InDelta(t, 1.5, m.AvgLossStreak, 1e-9) // streaks 2 and 1
}

func TestSampleStdDev(t *testing.T) {
	assert.Equal(t, 0.0, SampleStdDev([]float64{5}))
	assert.InDelta(t, 2.138089935, SampleStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-6)
}

func TestMomentsDegenerateInputs(t *testing.T) {
	flat := []float64{3, 3, 3, 3, 3}
	assert.Equal(t, 0.0, skewness(flat))
	assert.Equal(t, 0.0, kurtosis(flat))
	assert.Equal(t, 0.0, skewness([]float64{1, 2}))
	assert.Equal(t, 0.0, kurtosis([]float64{1, 2, 3}))
}

func TestSkewnessSign(t *testing.T) {
	rightTail := []float64{1, 1, 1, 1, 10}
	assert.Greater(t, skewness(rightTail), 0.0)

	leftTail := []float64{-10, 1, 1, 1, 1}
	assert.Less(t, skewness(leftTail), 0.0)
}
