package types

import "time"

// TradeType is the direction of a trade as reported by the statement.
type TradeType string

const (
	Buy  TradeType = "buy"
	Sell TradeType = "sell"
)

// Trade is one row of the statement's transaction tables. Created by the
// parser and never mutated afterwards.
type Trade struct {
	Ticket     string    `json:"ticket"`
	OpenTime   time.Time `json:"open_time"`
	Type       TradeType `json:"type"`
	Size       float64   `json:"size"`
	Item       string    `json:"item"`
	OpenPrice  float64   `json:"open_price"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	CloseTime  time.Time `json:"close_time"`
	ClosePrice float64   `json:"close_price"`
	Commission float64   `json:"commission"`
	Taxes      float64   `json:"taxes"`
	Swap       float64   `json:"swap"`
	Profit     float64   `json:"profit"`
}

// IsClosed reports whether the trade has been realized. A trade counts
// as closed only when both close time and close price are present.
func (t Trade) IsClosed() bool {
	return !t.CloseTime.IsZero() && t.ClosePrice != 0
}

func (t Trade) IsWinner() bool { return t.Profit > 0 }

// AccountInfo is the statement's account header block.
type AccountInfo struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	Currency      string `json:"currency"`
	Leverage      string `json:"leverage"`
	ReportDate    string `json:"report_date"`
}

// FinancialSummary holds the broker-reported balance figures.
type FinancialSummary struct {
	DepositWithdrawal float64 `json:"deposit_withdrawal"`
	CreditFacility    float64 `json:"credit_facility"`
	ClosedTradePnL    float64 `json:"closed_trade_pnl"`
	FloatingPnL       float64 `json:"floating_pnl"`
	Margin            float64 `json:"margin"`
	Balance           float64 `json:"balance"`
	Equity            float64 `json:"equity"`
	FreeMargin        float64 `json:"free_margin"`
}

// Statement is the full parse result of one MT4 HTML statement.
type Statement struct {
	Account      AccountInfo      `json:"account_info"`
	Summary      FinancialSummary `json:"financial_summary"`
	ClosedTrades []Trade          `json:"closed_trades"`
	OpenTrades   []Trade          `json:"open_trades"`
}

// CalculatedMetrics is the aggregate snapshot recomputed from scratch on
// every analysis run. All currency amounts are in the account currency,
// percentages are 0-100 floats, ratios are unitless.
type CalculatedMetrics struct {
	TotalTrades    int     `json:"total_trades"`
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	GrossProfit    float64 `json:"gross_profit"`
	GrossLoss      float64 `json:"gross_loss"`
	TotalNetProfit float64 `json:"total_net_profit"`
	ProfitFactor   float64 `json:"profit_factor"`
	ExpectedPayoff float64 `json:"expected_payoff"`

	WinRate            float64 `json:"win_rate"`
	WinLossRatio       float64 `json:"win_loss_ratio"`
	KellyPercentage    float64 `json:"kelly_percentage"`
	MaxDrawdownPercent float64 `json:"maximum_drawdown_percentage"`
	RecoveryFactor     float64 `json:"recovery_factor"`

	StandardDeviation float64 `json:"standard_deviation"`
	Skewness          float64 `json:"skewness"`
	Kurtosis          float64 `json:"kurtosis"`
	Expectancy        float64 `json:"expectancy"`

	AverageWin  float64 `json:"average_win"`
	AverageLoss float64 `json:"average_loss"`
	LargestWin  float64 `json:"largest_win"`
	LargestLoss float64 `json:"largest_loss"`

	MaxConsecutiveWins   int     `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses"`
	AvgWinStreak         float64 `json:"average_win_streak"`
	AvgLossStreak        float64 `json:"average_loss_streak"`
}

// RMultipleRecord is the per-trade risk-adjusted outcome. RMultiple and
// TotalRisk1R carry meaning only when IsValidSetup is true; an invalid
// setup is never coerced to zero so breakeven trades stay
// distinguishable from trades with no usable stop.
type RMultipleRecord struct {
	Ticket       string    `json:"ticket"`
	Type         TradeType `json:"type"`
	EntryPrice   float64   `json:"entry_price"`
	StopLoss     float64   `json:"stop_loss"`
	TakeProfit   float64   `json:"take_profit"`
	PositionSize float64   `json:"position_size"`
	Profit       float64   `json:"profit"`

	RiskPerShare float64 `json:"risk_per_share"`
	TotalRisk1R  float64 `json:"total_risk_1r"`
	RMultiple    float64 `json:"r_multiple"`
	TheoreticalR float64 `json:"theoretical_r"`

	IsWinner     bool   `json:"is_winner"`
	IsValidSetup bool   `json:"is_valid_r_setup"`
	InvalidNote  string `json:"invalid_note,omitempty"`
}

// RDistribution buckets valid R-multiples into fixed ranges.
type RDistribution struct {
	BelowMinus2R   int `json:"below_-2r"`
	Minus2RToM1R   int `json:"-2r_to_-1r"`
	Minus1RToZero  int `json:"-1r_to_0r"`
	ZeroToPlus1R   int `json:"0r_to_+1r"`
	Plus1RToPlus2R int `json:"+1r_to_+2r"`
	Above2R        int `json:"above_+2r"`
}

// RMultipleStatistics aggregates valid-setup trades only.
type RMultipleStatistics struct {
	TotalValidRTrades int     `json:"total_valid_r_trades"`
	RWinRate          float64 `json:"r_win_rate"`
	AverageRMultiple  float64 `json:"average_r_multiple"`
	AverageWinningR   float64 `json:"average_winning_r"`
	AverageLosingR    float64 `json:"average_losing_r"`
	BestRMultiple     float64 `json:"best_r_multiple"`
	WorstRMultiple    float64 `json:"worst_r_multiple"`
	RExpectancy       float64 `json:"r_expectancy"`
	TotalRProfit      float64 `json:"total_r_profit"`
	TotalRLoss        float64 `json:"total_r_loss"`

	RVolatility     float64 `json:"r_volatility"`
	RSharpeRatio    float64 `json:"r_sharpe_ratio"`
	RSortinoRatio   float64 `json:"r_sortino_ratio"`
	MaxRDrawdown    float64 `json:"max_r_drawdown"`
	RRecoveryFactor float64 `json:"r_recovery_factor"`

	Distribution RDistribution `json:"r_distribution"`
}

// RiskLevel classifies risk as a percentage of position value or account.
type RiskLevel string

const (
	RiskLow     RiskLevel = "LOW"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskHigh    RiskLevel = "HIGH"
	RiskExtreme RiskLevel = "EXTREME"
	RiskUnknown RiskLevel = "UNKNOWN"
)

// RiskPlanInput describes a hypothetical trade for pre-trade planning.
// It is independent of any parsed statement.
type RiskPlanInput struct {
	EntryPrice     float64   `json:"entry_price"`
	StopLoss       float64   `json:"stop_loss"`
	TakeProfit     float64   `json:"take_profit"`
	TradeType      TradeType `json:"trade_type"`
	AccountBalance float64   `json:"account_balance"`
	RiskPercentage float64   `json:"risk_percentage"`
	PositionSize   float64   `json:"position_size"`
}

// RiskPlan is the best-effort planning result. Invalid setups still
// return a plan with IsValidSetup=false and an explanation in
// Recommendations; they are never an error.
type RiskPlan struct {
	EntryPrice   float64   `json:"entry_price"`
	StopLoss     float64   `json:"stop_loss"`
	TakeProfit   float64   `json:"take_profit"`
	TradeType    TradeType `json:"trade_type"`
	IsValidSetup bool      `json:"is_valid_setup"`

	RiskPerShare    float64 `json:"risk_per_share"`
	RewardPerShare  float64 `json:"reward_per_share"`
	RMultiple       float64 `json:"r_multiple"`
	RequiredWinRate float64 `json:"required_win_rate"`

	PositionSize        float64   `json:"position_size"`
	OptimalPositionSize float64   `json:"optimal_position_size"`
	MaxPositionSize     float64   `json:"max_position_size"`
	PositionValue       float64   `json:"position_value"`
	TotalRisk           float64   `json:"total_risk"`
	TotalReward         float64   `json:"total_reward"`
	RiskLevel           RiskLevel `json:"risk_level"`

	AccountBalance  float64  `json:"account_balance"`
	RiskPercentage  float64  `json:"risk_percentage"`
	Recommendations []string `json:"recommendations"`
}

// PerformanceRating is the deterministic score/label mapping over the
// computed metrics.
type PerformanceRating struct {
	PerformanceScore   float64 `json:"performance_score"`
	RiskAdjustedScore  float64 `json:"risk_adjusted_score"`
	RMultipleScore     float64 `json:"r_multiple_score"`
	CompositeScore     float64 `json:"composite_score"`
	OverallRating      string  `json:"overall_rating"`
	RiskAdjustedRating string  `json:"risk_adjusted_rating"`
	RMultipleRating    string  `json:"r_multiple_rating"`
	CompositeRating    string  `json:"comprehensive_rating"`
}

// Report is the complete output of one analysis run.
type Report struct {
	Account     AccountInfo         `json:"account_info"`
	Summary     FinancialSummary    `json:"financial_summary"`
	Metrics     CalculatedMetrics   `json:"calculated_metrics"`
	RMultiples  []RMultipleRecord   `json:"r_multiple_data,omitempty"`
	RStatistics RMultipleStatistics `json:"r_multiple_statistics"`
	Rating      PerformanceRating   `json:"rating"`
	ClosedCount int                 `json:"closed_trades"`
	OpenCount   int                 `json:"open_trades"`
}
