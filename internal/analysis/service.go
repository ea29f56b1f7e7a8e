package analysis

import (
	"context"
	"io"

	"mt4-analyzer/internal/interfaces"
	"mt4-analyzer/internal/logger"
	"mt4-analyzer/internal/metrics"
	"mt4-analyzer/internal/parser"
	"mt4-analyzer/internal/rating"
	"mt4-analyzer/internal/rmultiple"
	"mt4-analyzer/internal/types"
)

// Service runs the full analysis pipeline: parse the statement, compute
// the metrics, derive R-multiples, and rate the result. Each run is
// independent; the service holds no statement state.
type Service struct {
	parser     *parser.Parser
	engine     *metrics.Engine
	calculator *rmultiple.Calculator
	rater      *rating.Rater
}

var _ interfaces.Analyzer = (*Service)(nil)

func NewService(p *parser.Parser, e *metrics.Engine, c *rmultiple.Calculator, r *rating.Rater) *Service {
	return &Service{
		parser:     p,
		engine:     e,
		calculator: c,
		rater:      r,
	}
}

// Analyze parses the statement read from r and computes the full
// report. source names where the markup came from (file path, URL,
// "upload") and only feeds logging.
func (s *Service) Analyze(ctx context.Context, source string, r io.Reader) (*types.Report, error) {
	timer := logger.StartOperation(ctx, "analysis.Analyze", "source", source)
	ctx = timer.GetContext()

	st, err := s.parser.Parse(ctx, r)
	if err != nil {
		timer.EndWithError(err)
		return nil, err
	}

	report := &types.Report{
		Account:     st.Account,
		Summary:     st.Summary,
		ClosedCount: len(st.ClosedTrades),
		OpenCount:   len(st.OpenTrades),
	}

	report.Metrics = s.engine.Calculate(ctx, st.ClosedTrades)
	report.RMultiples, report.RStatistics = s.calculator.Calculate(ctx, st.ClosedTrades)
	report.Rating = s.rater.Rate(ctx, report.Metrics, report.RStatistics)

	logger.Analysis(ctx, source,
		report.ClosedCount,
		report.OpenCount,
		report.RStatistics.TotalValidRTrades,
		"composite_rating", report.Rating.CompositeRating,
	)

	timer.End("closed_trades", report.ClosedCount, "open_trades", report.OpenCount)
	return report, nil
}
