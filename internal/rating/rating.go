package rating

import (
	"context"
	"math"

	"mt4-analyzer/internal/logger"
	"mt4-analyzer/internal/store"
	"mt4-analyzer/internal/types"
)

// Component score tiers. Weights and label boundaries live in the
// rating section of the config; these caps and steps are fixed points
// of the scoring scheme itself.
const (
	winRateCap        = 50.0
	profitFactorScale = 10.0
	profitFactorCap   = 20.0
	expectancyScale   = 5.0
	expectancyCap     = 30.0

	recoveryScale = 10.0

	rExpectancyStrong    = 0.5
	rExpectancyModerate  = 0.2
	rExpectancyStrongPts = 40.0
	rExpectancyModestPts = 25.0
	rExpectancyWeakPts   = 10.0
	rWinRateHigh         = 60.0
	rWinRateMid          = 50.0
	rWinRateLow          = 40.0
	rWinRateHighPts      = 30.0
	rWinRateMidPts       = 20.0
	rWinRateLowPts       = 10.0
	lossContainmentTight = -1.0
	lossContainmentLoose = -2.0
	lossContainmentPts   = 20.0
	lossContainmentHalf  = 10.0
	rVolatilityCalm      = 2.0
	rVolatilityCalmPts   = 10.0
)

// Rater maps the computed metrics onto deterministic 0-100 scores and
// human-readable labels. Same inputs, same rating, no randomness.
type Rater struct {
	cfg *store.Config
}

func NewRater(cfg *store.Config) *Rater {
	return &Rater{cfg: cfg}
}

// Rate scores the account on three axes and blends them into a
// composite. All component scores are clamped to [0, 100] before
// weighting.
func (r *Rater) Rate(ctx context.Context, m types.CalculatedMetrics, rs types.RMultipleStatistics) types.PerformanceRating {
	rating := types.PerformanceRating{
		PerformanceScore:  clamp(performanceScore(m)),
		RiskAdjustedScore: clamp(riskAdjustedScore(m)),
		RMultipleScore:    clamp(rMultipleScore(rs)),
	}

	rating.CompositeScore = clamp(
		rating.PerformanceScore*r.cfg.Rating.PerformanceWeight +
			rating.RiskAdjustedScore*r.cfg.Rating.RiskAdjustedWeight +
			rating.RMultipleScore*r.cfg.Rating.RMultipleWeight)

	rating.OverallRating = r.label(rating.PerformanceScore)
	rating.RiskAdjustedRating = r.label(rating.RiskAdjustedScore)
	rating.RMultipleRating = r.label(rating.RMultipleScore)
	rating.CompositeRating = r.label(rating.CompositeScore)

	logger.Debug(ctx, "Performance rated",
		"composite_score", rating.CompositeScore,
		"composite_rating", rating.CompositeRating,
	)
	return rating
}

// performanceScore rewards win rate, profit factor, and expectancy,
// each capped so no single component dominates.
func performanceScore(m types.CalculatedMetrics) float64 {
	if m.TotalTrades == 0 {
		return 0
	}
	score := math.Min(m.WinRate, winRateCap)
	score += math.Min(m.ProfitFactor*profitFactorScale, profitFactorCap)
	score += math.Min(m.Expectancy*expectancyScale, expectancyCap)
	return score
}

func riskAdjustedScore(m types.CalculatedMetrics) float64 {
	if m.RecoveryFactor <= 0 {
		return 0
	}
	return math.Min(m.RecoveryFactor*recoveryScale, 100)
}

// rMultipleScore grades discipline from the R statistics: expectancy,
// win rate, loss containment, and consistency.
func rMultipleScore(rs types.RMultipleStatistics) float64 {
	if rs.TotalValidRTrades == 0 {
		return 0
	}

	var score float64
	switch {
	case rs.RExpectancy > rExpectancyStrong:
		score += rExpectancyStrongPts
	case rs.RExpectancy > rExpectancyModerate:
		score += rExpectancyModestPts
	case rs.RExpectancy > 0:
		score += rExpectancyWeakPts
	}

	switch {
	case rs.RWinRate >= rWinRateHigh:
		score += rWinRateHighPts
	case rs.RWinRate >= rWinRateMid:
		score += rWinRateMidPts
	case rs.RWinRate >= rWinRateLow:
		score += rWinRateLowPts
	}

	// Losses cut near -1R show the stops are respected.
	switch {
	case rs.AverageLosingR > lossContainmentTight:
		score += lossContainmentPts
	case rs.AverageLosingR > lossContainmentLoose:
		score += lossContainmentHalf
	}

	if rs.RVolatility > 0 && rs.RVolatility < rVolatilityCalm {
		score += rVolatilityCalmPts
	}
	return score
}

func (r *Rater) label(score float64) string {
	switch {
	case score >= r.cfg.Rating.ExcellentScore:
		return "Excellent"
	case score >= r.cfg.Rating.VeryGoodScore:
		return "Very Good"
	case score >= r.cfg.Rating.GoodScore:
		return "Good"
	case score >= r.cfg.Rating.FairScore:
		return "Fair"
	default:
		return "Poor"
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
