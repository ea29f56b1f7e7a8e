package risk

import (
	"context"
	"fmt"
	"math"

	"mt4-analyzer/internal/logger"
	"mt4-analyzer/internal/store"
	"mt4-analyzer/internal/types"
)

// Planner evaluates a hypothetical trade before entry: risk per share,
// reward-to-risk, the win rate the setup needs to break even, and the
// position sizes the account can support. It never touches parsed
// statement data.
type Planner struct {
	cfg *store.Config
}

func NewPlanner(cfg *store.Config) *Planner {
	return &Planner{cfg: cfg}
}

// Plan is best-effort: a setup that fails validation still returns a
// plan, with IsValidSetup=false and the problems listed in
// Recommendations. Only impossible arithmetic is avoided, never
// reported as an error.
func (p *Planner) Plan(ctx context.Context, in types.RiskPlanInput) types.RiskPlan {
	plan := types.RiskPlan{
		EntryPrice:     in.EntryPrice,
		StopLoss:       in.StopLoss,
		TakeProfit:     in.TakeProfit,
		TradeType:      in.TradeType,
		PositionSize:   in.PositionSize,
		AccountBalance: in.AccountBalance,
		RiskPercentage: p.riskPct(in.RiskPercentage),
		RiskLevel:      types.RiskUnknown,
	}

	if problems := p.validate(in); len(problems) > 0 {
		plan.Recommendations = problems
		return plan
	}
	plan.IsValidSetup = true

	plan.RiskPerShare = math.Abs(in.EntryPrice - in.StopLoss)
	if in.TakeProfit > 0 {
		switch in.TradeType {
		case types.Buy:
			plan.RewardPerShare = in.TakeProfit - in.EntryPrice
		case types.Sell:
			plan.RewardPerShare = in.EntryPrice - in.TakeProfit
		}
		if plan.RewardPerShare < 0 {
			plan.RewardPerShare = 0
		}
	}
	if plan.RiskPerShare > 0 && plan.RewardPerShare > 0 {
		plan.RMultiple = plan.RewardPerShare / plan.RiskPerShare
	}
	if plan.RMultiple > 0 {
		plan.RequiredWinRate = 100 / (1 + plan.RMultiple)
	}

	if in.AccountBalance > 0 && plan.RiskPerShare > 0 {
		riskBudget := in.AccountBalance * plan.RiskPercentage / 100
		plan.OptimalPositionSize = riskBudget / plan.RiskPerShare
		maxBudget := in.AccountBalance * p.cfg.Risk.MaxAccountRiskPct / 100
		plan.MaxPositionSize = maxBudget / plan.RiskPerShare
	}

	size := in.PositionSize
	if size <= 0 {
		size = plan.OptimalPositionSize
	}
	if size > 0 {
		plan.PositionSize = size
		plan.PositionValue = size * in.EntryPrice
		plan.TotalRisk = size * plan.RiskPerShare
		plan.TotalReward = size * plan.RewardPerShare
	}

	plan.RiskLevel = p.classify(plan)
	plan.Recommendations = p.recommend(plan)

	logger.Debug(ctx, "Risk plan computed",
		"r_multiple", plan.RMultiple,
		"risk_level", string(plan.RiskLevel),
		"total_risk", plan.TotalRisk,
	)
	return plan
}

func (p *Planner) riskPct(requested float64) float64 {
	if requested <= 0 {
		return p.cfg.Risk.DefaultRiskPct
	}
	if requested < p.cfg.Risk.MinRiskPct {
		return p.cfg.Risk.MinRiskPct
	}
	if requested > p.cfg.Risk.MaxRiskPct {
		return p.cfg.Risk.MaxRiskPct
	}
	return requested
}

func (p *Planner) validate(in types.RiskPlanInput) []string {
	var problems []string
	if in.EntryPrice <= 0 {
		problems = append(problems, "entry price must be positive")
	}
	if in.StopLoss <= 0 {
		problems = append(problems, "stop loss must be positive")
	}
	switch in.TradeType {
	case types.Buy:
		if in.StopLoss > 0 && in.EntryPrice > 0 && in.StopLoss >= in.EntryPrice {
			problems = append(problems, "stop loss must be below entry for a buy")
		}
	case types.Sell:
		if in.StopLoss > 0 && in.EntryPrice > 0 && in.StopLoss <= in.EntryPrice {
			problems = append(problems, "stop loss must be above entry for a sell")
		}
	default:
		problems = append(problems, "trade type must be buy or sell")
	}
	return problems
}

// classify grades the planned risk as a percentage of the account when
// a balance is known, falling back to position value.
func (p *Planner) classify(plan types.RiskPlan) types.RiskLevel {
	base := plan.AccountBalance
	if base <= 0 {
		base = plan.PositionValue
	}
	if base <= 0 || plan.TotalRisk <= 0 {
		return types.RiskUnknown
	}
	pct := plan.TotalRisk / base * 100
	switch {
	case pct <= p.cfg.Risk.LowPct:
		return types.RiskLow
	case pct <= p.cfg.Risk.MediumPct:
		return types.RiskMedium
	case pct <= p.cfg.Risk.HighPct:
		return types.RiskHigh
	default:
		return types.RiskExtreme
	}
}

func (p *Planner) recommend(plan types.RiskPlan) []string {
	var recs []string

	switch {
	case plan.RMultiple == 0:
		recs = append(recs, "set a take profit to evaluate reward-to-risk")
	case plan.RMultiple < p.cfg.Risk.PoorRewardR:
		recs = append(recs, fmt.Sprintf(
			"reward-to-risk of %.2fR is below %.1fR; the setup needs a %.1f%% win rate to break even",
			plan.RMultiple, p.cfg.Risk.PoorRewardR, plan.RequiredWinRate))
	case plan.RMultiple >= p.cfg.Risk.ExcellentRewardR:
		recs = append(recs, fmt.Sprintf(
			"reward-to-risk of %.2fR only needs a %.1f%% win rate to break even",
			plan.RMultiple, plan.RequiredWinRate))
	}

	switch plan.RiskLevel {
	case types.RiskHigh:
		recs = append(recs, "planned risk is high; consider a smaller position")
	case types.RiskExtreme:
		recs = append(recs, fmt.Sprintf(
			"planned risk exceeds %.1f%% of the account; reduce size toward %.2f units",
			p.cfg.Risk.HighPct, plan.OptimalPositionSize))
	}

	if plan.PositionSize > plan.MaxPositionSize && plan.MaxPositionSize > 0 {
		recs = append(recs, fmt.Sprintf(
			"position exceeds the %.1f%% account risk cap of %.2f units",
			p.cfg.Risk.MaxAccountRiskPct, plan.MaxPositionSize))
	}

	if len(recs) == 0 {
		recs = append(recs, "setup is within configured risk limits")
	}
	return recs
}
