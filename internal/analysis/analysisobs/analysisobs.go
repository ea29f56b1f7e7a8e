package analysisobs

import (
	"context"
	"io"
	"time"

	"mt4-analyzer/internal/interfaces"
	"mt4-analyzer/internal/logger"
	"mt4-analyzer/internal/trace"
	"mt4-analyzer/internal/types"
)

type observableAnalyzer struct {
	analyzer interfaces.Analyzer
}

var _ interfaces.Analyzer = (*observableAnalyzer)(nil)

func Wrap(a interfaces.Analyzer) interfaces.Analyzer {
	return &observableAnalyzer{
		analyzer: a,
	}
}

func (oa *observableAnalyzer) Analyze(ctx context.Context, source string, r io.Reader) (*types.Report, error) {
	ctx, span := trace.StartSpan(ctx, "analyzer.Analyze")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting statement analysis",
		"source", source,
	)

	report, err := oa.analyzer.Analyze(ctx, source, r)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Statement analysis failed", err,
			"source", source,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Statement analysis completed",
		"source", source,
		"closed_trades", report.ClosedCount,
		"open_trades", report.OpenCount,
		"composite_rating", report.Rating.CompositeRating,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return report, nil
}
