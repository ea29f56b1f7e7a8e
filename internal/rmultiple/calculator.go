package rmultiple

import (
	"context"
	"math"
	"sort"

	"mt4-analyzer/internal/logger"
	"mt4-analyzer/internal/metrics"
	"mt4-analyzer/internal/types"
)

// Calculator derives per-trade R-multiples and their aggregate
// statistics. 1R is the amount risked at entry: position size times the
// distance from entry to stop.
type Calculator struct{}

func NewCalculator() *Calculator { return &Calculator{} }

// Calculate evaluates every closed trade against its recorded stop.
// Trades without a usable stop are kept in the output with
// IsValidSetup=false so the caller can report them, but they never
// enter the statistics.
func (c *Calculator) Calculate(ctx context.Context, trades []types.Trade) ([]types.RMultipleRecord, types.RMultipleStatistics) {
	records := make([]types.RMultipleRecord, 0, len(trades))

	ordered := make([]types.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CloseTime.Before(ordered[j].CloseTime)
	})

	for _, t := range ordered {
		records = append(records, c.evaluate(t))
	}

	stats := c.statistics(ctx, records)
	return records, stats
}

func (c *Calculator) evaluate(t types.Trade) types.RMultipleRecord {
	rec := types.RMultipleRecord{
		Ticket:       t.Ticket,
		Type:         t.Type,
		EntryPrice:   t.OpenPrice,
		StopLoss:     t.StopLoss,
		TakeProfit:   t.TakeProfit,
		PositionSize: t.Size,
		Profit:       t.Profit,
		IsWinner:     t.Profit > 0,
	}

	if note, ok := validateStop(t); !ok {
		rec.InvalidNote = note
		return rec
	}

	rec.IsValidSetup = true
	rec.RiskPerShare = math.Abs(t.OpenPrice - t.StopLoss)
	rec.TotalRisk1R = t.Size * rec.RiskPerShare
	if rec.TotalRisk1R > 0 {
		rec.RMultiple = t.Profit / rec.TotalRisk1R
	}

	// Theoretical R from the take-profit, when one sits on the correct
	// side of entry.
	if t.TakeProfit > 0 {
		var reward float64
		switch t.Type {
		case types.Buy:
			reward = t.TakeProfit - t.OpenPrice
		case types.Sell:
			reward = t.OpenPrice - t.TakeProfit
		}
		if reward > 0 && rec.RiskPerShare > 0 {
			rec.TheoreticalR = reward / rec.RiskPerShare
		}
	}

	return rec
}

// validateStop decides whether the trade's stop defines a real 1R. The
// stop must exist and sit on the losing side of entry for the trade's
// direction.
func validateStop(t types.Trade) (note string, ok bool) {
	if t.StopLoss <= 0 {
		return "no stop loss recorded", false
	}
	switch t.Type {
	case types.Buy:
		if t.StopLoss >= t.OpenPrice {
			return "stop loss above entry on a buy", false
		}
	case types.Sell:
		if t.StopLoss <= t.OpenPrice {
			return "stop loss below entry on a sell", false
		}
	default:
		return "unknown trade direction", false
	}
	if t.Size <= 0 {
		return "position size missing", false
	}
	return "", true
}

func (c *Calculator) statistics(ctx context.Context, records []types.RMultipleRecord) types.RMultipleStatistics {
	var stats types.RMultipleStatistics

	var rs []float64
	for _, rec := range records {
		if rec.IsValidSetup {
			rs = append(rs, rec.RMultiple)
		}
	}
	if len(rs) == 0 {
		return stats
	}

	stats.TotalValidRTrades = len(rs)
	stats.BestRMultiple = rs[0]
	stats.WorstRMultiple = rs[0]

	var wins, winSum, lossSum float64
	var lossCount int
	for _, r := range rs {
		if r > stats.BestRMultiple {
			stats.BestRMultiple = r
		}
		if r < stats.WorstRMultiple {
			stats.WorstRMultiple = r
		}
		switch {
		case r > 0:
			wins++
			winSum += r
			stats.TotalRProfit += r
		case r < 0:
			lossCount++
			lossSum += r
			stats.TotalRLoss += r
		}
		bucket(&stats.Distribution, r)
	}

	stats.RWinRate = wins / float64(len(rs)) * 100
	stats.AverageRMultiple = metrics.Mean(rs)
	if wins > 0 {
		stats.AverageWinningR = winSum / wins
	}
	if lossCount > 0 {
		stats.AverageLosingR = lossSum / float64(lossCount)
	}
	// Expectancy in R terms is the mean outcome per trade.
	stats.RExpectancy = stats.AverageRMultiple

	stats.RVolatility = metrics.SampleStdDev(rs)
	if stats.RVolatility > 0 {
		stats.RSharpeRatio = stats.AverageRMultiple / stats.RVolatility
	}
	stats.RSortinoRatio = sortino(rs, stats.AverageRMultiple)
	stats.MaxRDrawdown = maxRDrawdown(rs)
	if stats.MaxRDrawdown > 0 {
		cumulative := stats.TotalRProfit + stats.TotalRLoss
		if cumulative > 0 {
			stats.RRecoveryFactor = cumulative / stats.MaxRDrawdown
		}
	}

	logger.Debug(ctx, "R-multiple statistics calculated",
		"valid_r_trades", stats.TotalValidRTrades,
		"r_expectancy", stats.RExpectancy,
		"r_win_rate", stats.RWinRate,
	)
	return stats
}

func bucket(d *types.RDistribution, r float64) {
	switch {
	case r < -2:
		d.BelowMinus2R++
	case r < -1:
		d.Minus2RToM1R++
	case r < 0:
		d.Minus1RToZero++
	case r < 1:
		d.ZeroToPlus1R++
	case r < 2:
		d.Plus1RToPlus2R++
	default:
		d.Above2R++
	}
}

// sortino divides the mean R by the downside deviation. With no losing
// trades there is no downside to measure and the ratio is 0, not
// infinite.
func sortino(rs []float64, avg float64) float64 {
	var ss float64
	var n int
	for _, r := range rs {
		if r < 0 {
			ss += r * r
			n++
		}
	}
	if n == 0 {
		return 0
	}
	downside := math.Sqrt(ss / float64(n))
	if downside == 0 {
		return 0
	}
	return avg / downside
}

// maxRDrawdown is the deepest decline of the cumulative R curve, in R
// units, always >= 0.
func maxRDrawdown(rs []float64) float64 {
	var cum, peak, maxDD float64
	for _, r := range rs {
		cum += r
		if cum > peak {
			peak = cum
		}
		if dd := peak - cum; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
