package interfaces

import (
	"context"
	"io"

	"mt4-analyzer/internal/types"
)

// Analyzer turns an MT4 HTML statement into a full performance report.
type Analyzer interface {
	Analyze(ctx context.Context, source string, r io.Reader) (*types.Report, error)
}

// Fetcher retrieves statement markup from a remote URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
