package metrics

import (
	"context"
	"math"
	"sort"
	"time"

	"mt4-analyzer/internal/logger"
	"mt4-analyzer/internal/types"
)

// kellyMax caps the Kelly criterion output. Full Kelly above a quarter
// of the account is never actionable advice for a retail trader.
const kellyMax = 25.0

// Engine computes aggregate performance metrics from closed trades.
// It is stateless: every call recomputes from scratch.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Calculate produces the full metrics snapshot for a set of closed
// trades. An empty set yields the zero-valued snapshot rather than an
// error so callers can always render a report.
func (e *Engine) Calculate(ctx context.Context, trades []types.Trade) types.CalculatedMetrics {
	var m types.CalculatedMetrics
	if len(trades) == 0 {
		return m
	}

	ordered := sortByCloseTime(trades)
	profits := make([]float64, len(ordered))

	for i, t := range ordered {
		profits[i] = t.Profit
		switch {
		case t.Profit > 0:
			m.WinningTrades++
			m.GrossProfit += t.Profit
			if t.Profit > m.LargestWin {
				m.LargestWin = t.Profit
			}
		case t.Profit < 0:
			m.LosingTrades++
			m.GrossLoss += -t.Profit
			if t.Profit < m.LargestLoss {
				m.LargestLoss = t.Profit
			}
		}
	}

	m.TotalTrades = len(ordered)
	m.TotalNetProfit = m.GrossProfit - m.GrossLoss
	m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades) * 100
	m.ExpectedPayoff = m.TotalNetProfit / float64(m.TotalTrades)

	// A run with no losses has no meaningful profit factor; an infinite
	// or sentinel value would poison downstream scoring.
	if m.GrossLoss > 0 {
		m.ProfitFactor = m.GrossProfit / m.GrossLoss
	}

	if m.WinningTrades > 0 {
		m.AverageWin = m.GrossProfit / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AverageLoss = -m.GrossLoss / float64(m.LosingTrades)
		// Ratio of average outcomes, not of counts.
		m.WinLossRatio = m.AverageWin / math.Abs(m.AverageLoss)
	}

	m.KellyPercentage = kelly(m.WinRate/100, m.AverageWin, m.AverageLoss)
	ddPct, ddAmount := maxDrawdown(profits)
	m.MaxDrawdownPercent = ddPct
	if ddAmount > 0 {
		m.RecoveryFactor = math.Abs(m.TotalNetProfit) / ddAmount
	}

	m.StandardDeviation = SampleStdDev(profits)
	m.Skewness = skewness(profits)
	m.Kurtosis = kurtosis(profits)
	m.Expectancy = expectancy(m.WinRate/100, m.AverageWin, m.AverageLoss)

	streaks(ordered, &m)

	logger.Debug(ctx, "Metrics calculated",
		"total_trades", m.TotalTrades,
		"net_profit", m.TotalNetProfit,
		"profit_factor", m.ProfitFactor,
		"max_drawdown_pct", m.MaxDrawdownPercent,
	)
	return m
}

// sortByCloseTime orders trades chronologically without mutating the
// caller's slice. Closed trades always carry a close time; a zero
// close time falls back to the open time. Ties keep statement order,
// which matters for the equity curve.
func sortByCloseTime(trades []types.Trade) []types.Trade {
	ordered := make([]types.Trade, len(trades))
	copy(ordered, trades)
	key := func(t types.Trade) time.Time {
		if t.CloseTime.IsZero() {
			return t.OpenTime
		}
		return t.CloseTime
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return key(ordered[i]).Before(key(ordered[j]))
	})
	return ordered
}

// kelly computes the Kelly criterion percentage (b*p - q) / b where b
// is the win/loss payoff ratio, clamped to [0, kellyMax].
func kelly(winProb, avgWin, avgLoss float64) float64 {
	if avgLoss == 0 || avgWin <= 0 {
		return 0
	}
	b := avgWin / math.Abs(avgLoss)
	k := (b*winProb - (1 - winProb)) / b * 100
	if k < 0 {
		return 0
	}
	if k > kellyMax {
		return kellyMax
	}
	return k
}

// maxDrawdown walks the cumulative equity curve of profits and returns
// the largest peak-to-trough decline, both as a percentage of the peak
// and as a currency amount. Both values are >= 0.
func maxDrawdown(profits []float64) (pct, amount float64) {
	var equity, peak float64
	for _, p := range profits {
		equity += p
		if equity > peak {
			peak = equity
		}
		drop := peak - equity
		if drop > amount {
			amount = drop
		}
		if peak != 0 {
			dd := drop / math.Abs(peak) * 100
			if dd > pct {
				pct = dd
			}
		}
	}
	return pct, amount
}

// expectancy is the per-trade expected profit from the win rate and the
// average outcomes: p*avgWin + (1-p)*avgLoss, avgLoss being negative.
func expectancy(winProb, avgWin, avgLoss float64) float64 {
	return winProb*avgWin + (1-winProb)*avgLoss
}

// streaks fills the consecutive win/loss fields. Breakeven trades end
// both kinds of streak.
func streaks(ordered []types.Trade, m *types.CalculatedMetrics) {
	var curWins, curLosses int
	var winStreaks, lossStreaks []int

	flushWins := func() {
		if curWins > 0 {
			winStreaks = append(winStreaks, curWins)
			curWins = 0
		}
	}
	flushLosses := func() {
		if curLosses > 0 {
			lossStreaks = append(lossStreaks, curLosses)
			curLosses = 0
		}
	}

	for _, t := range ordered {
		switch {
		case t.Profit > 0:
			flushLosses()
			curWins++
		case t.Profit < 0:
			flushWins()
			curLosses++
		default:
			flushWins()
			flushLosses()
		}
	}
	flushWins()
	flushLosses()

	for _, s := range winStreaks {
		if s > m.MaxConsecutiveWins {
			m.MaxConsecutiveWins = s
		}
	}
	for _, s := range lossStreaks {
		if s > m.MaxConsecutiveLosses {
			m.MaxConsecutiveLosses = s
		}
	}
	if len(winStreaks) > 0 {
		var sum int
		for _, s := range winStreaks {
			sum += s
		}
		m.AvgWinStreak = float64(sum) / float64(len(winStreaks))
	}
	if len(lossStreaks) > 0 {
		var sum int
		for _, s := range lossStreaks {
			sum += s
		}
		m.AvgLossStreak = float64(sum) / float64(len(lossStreaks))
	}
}
