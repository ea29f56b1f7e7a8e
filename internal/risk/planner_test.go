package risk

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

func newPlanner() *Planner {
	return NewPlanner(store.Default())
}

func TestPlanBuySetup(t *testing.T) {
	plan := newPlanner().Plan(context.Background(), types.RiskPlanInput{
		EntryPrice:     1.25,
		StopLoss:       1.245,
		TakeProfit:     1.26,
		TradeType:      types.Buy,
		AccountBalance: 10000,
		RiskPercentage: 2.0,
	})

	assert.True(t, plan.IsValidSetup)
	assert.InDelta(t, 0.005, plan.RiskPerShare, 1e-9)
	assert.InDelta(t, 0.01, plan.RewardPerShare, 1e-9)
	assert.InDelta(t, 2.0, plan.RMultiple, 1e-9)
	assert.InDelta(t, 33.333333, plan.RequiredWinRate, 1e-4)

	// 2% of 10k = 200 risk budget over 0.005 per unit.
	assert.InDelta(t, 40000, plan.OptimalPositionSize, 1e-6)
	// 10% account cap.
	assert.InDelta(t, 200000, plan.MaxPositionSize, 1e-6)
	// No explicit size: optimal is used, risking the full budget.
	assert.InDelta(t, 200, plan.TotalRisk, 1e-6)
	assert.InDelta(t, 400, plan.TotalReward, 1e-6)
	assert.Equal(t, types.RiskMedium, plan.RiskLevel)
}

func TestPlanInvalidStopSide(t *testing.T) {
	plan := newPlanner().Plan(context.Background(), types.RiskPlanInput{
		EntryPrice: 1.25,
		StopLoss:   1.26,
		TradeType:  types.Buy,
	})

	assert.False(t, plan.IsValidSetup)
	assert.Equal(t, types.RiskUnknown, plan.RiskLevel)
	assert.NotEmpty(t, plan.Recommendations)
	assert.Contains(t, plan.Recommendations[0], "below entry")
}

func TestPlanMissingInputsListAllProblems(t *testing.T) {
	plan := newPlanner().Plan(context.Background(), types.RiskPlanInput{
		TradeType: "straddle",
	})
	assert.False(t, plan.IsValidSetup)
	assert.Len(t, plan.Recommendations, 3)
}

func TestRiskPercentageClamping(t *testing.T) {
	p := newPlanner()
	ctx := context.Background()

	base := types.RiskPlanInput{
		EntryPrice:     100,
		StopLoss:       95,
		TradeType:      types.Buy,
		AccountBalance: 10000,
	}

	// Zero requested: default applies.
	plan := p.Plan(ctx, base)
	assert.Equal(t, 2.0, plan.RiskPercentage)

	// Above the maximum: clamped down.
	base.RiskPercentage = 50
	plan = p.Plan(ctx, base)
	assert.Equal(t, 10.0, plan.RiskPercentage)

	// Below the minimum: clamped up.
	base.RiskPercentage = 0.01
	plan = p.Plan(ctx, base)
	assert.Equal(t, 0.1, plan.RiskPercentage)
}

func TestRiskLevelBands(t *testing.T) {
	p := newPlanner()
	ctx := context.Background()

	cases := []struct {
		size float64
		want types.RiskLevel
	}{
		{1, types.RiskLow},      // 50 risk on 10k = 0.5%
		{4, types.RiskMedium},   // 2%
		{10, types.RiskHigh},    // 5%
		{20, types.RiskExtreme}, // 10%
	}
	for _, tc := range cases {
		plan := p.Plan(ctx, types.RiskPlanInput{
			EntryPrice:     100,
			StopLoss:       50,
			TradeType:      types.Buy,
			AccountBalance: 10000,
			PositionSize:   tc.size,
		})
		assert.Equal(t, tc.want, plan.RiskLevel, "size %.0f", tc.size)
	}
}

func TestPoorRewardRecommendation(t *testing.T) {
	plan := newPlanner().Plan(context.Background(), types.RiskPlanInput{
		EntryPrice:     100,
		StopLoss:       90,
		TakeProfit:     105,
		TradeType:      types.Buy,
		AccountBalance: 10000,
	})
	assert.InDelta(t, 0.5, plan.RMultiple, 1e-9)
	assert.Contains(t, plan.Recommendations[0], "below")
}
