package analysis

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mt4-analyzer/internal/logger"
	"mt4-analyzer/internal/metrics"
	"mt4-analyzer/internal/parser"
	"mt4-analyzer/internal/rating"
	"mt4-analyzer/internal/rmultiple"
	"mt4-analyzer/internal/store"
)

func TestMain(m *testing.M) {
	logger.InitWithConfig(logger.LogConfig{Level: "ERROR", Format: "text"})
	os.Exit(m.Run())
}

func newService() *Service {
	cfg := store.Default()
	return NewService(
		parser.New(cfg.Parser.MinTradeColumns),
		metrics.NewEngine(),
		rmultiple.NewCalculator(),
		rating.NewRater(cfg),
	)
}

const statementMarkup = `<html><body>
<table>
<tr><td>Account: 555001</td><td>Name: Test Account</td><td>Currency: USD</td></tr>
</table>
<table>
<tr><td>Ticket</td><td>Open Time</td><td>Type</td><td>Size</td><td>Item</td><td>Price</td><td>S / L</td><td>T / P</td><td>Close Time</td><td>Price</td><td>Commission</td><td>Taxes</td><td>Swap</td><td>Profit</td></tr>
<tr><td>1</td><td>2025.06.02 09:00</td><td>buy</td><td>1.00</td><td>eurusd</td><td>1.1000</td><td>1.0950</td><td>1.1100</td><td>2025.06.02 15:00</td><td>1.1100</td><td>0.00</td><td>0.00</td><td>0.00</td><td>100.00</td></tr>
<tr><td>2</td><td>2025.06.03 09:00</td><td>buy</td><td>1.00</td><td>eurusd</td><td>1.1000</td><td>1.0950</td><td>1.1100</td><td>2025.06.03 15:00</td><td>1.0950</td><td>0.00</td><td>0.00</td><td>0.00</td><td>-50.00</td></tr>
<tr><td>3</td><td>2025.06.04 09:00</td><td>sell</td><td>1.00</td><td>eurusd</td><td>1.1000</td><td>0.0000</td><td>1.0900</td><td>2025.06.04 15:00</td><td>1.0900</td><td>0.00</td><td>0.00</td><td>0.00</td><td>100.00</td></tr>
<tr><td>4</td><td>2025.06.05 09:00</td><td>buy</td><td>1.00</td><td>gbpusd</td><td>1.2500</td><td>1.2450</td><td>1.2600</td><td></td><td></td><td>0.00</td><td>0.00</td><td>0.00</td><td>12.00</td></tr>
</table>
<table>
<tr><td>Balance: 10150.00</td><td>Equity: 10162.00</td></tr>
</table>
</body></html>`

func TestAnalyzePipeline(t *testing.T) {
	report, err := newService().Analyze(context.Background(), "test", strings.NewReader(statementMarkup))
	require.NoError(t, err)

	assert.Equal(t, "555001", report.Account.AccountNumber)
	assert.Equal(t, 10150.00, report.Summary.Balance)
	assert.Equal(t, 3, report.ClosedCount)
	assert.Equal(t, 1, report.OpenCount)

	assert.Equal(t, 3, report.Metrics.TotalTrades)
	assert.Equal(t, 2, report.Metrics.WinningTrades)
	assert.Equal(t, 150.0, report.Metrics.TotalNetProfit)

	// Trade 3 has no stop loss: two valid R setups out of three.
	require.Len(t, report.RMultiples, 3)
	assert.Equal(t, 2, report.RStatistics.TotalValidRTrades)

	assert.NotEmpty(t, report.Rating.CompositeRating)
}

func TestAnalyzeNoTradeData(t *testing.T) {
	_, err := newService().Analyze(context.Background(), "test", strings.NewReader("<html><body></body></html>"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, parser.ErrNoTradeData))
}

func TestAnalyzeIndependentRuns(t *testing.T) {
	svc := newService()
	first, err := svc.Analyze(context.Background(), "a", strings.NewReader(statementMarkup))
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), "b", strings.NewReader(statementMarkup))
	require.NoError(t, err)

	assert.Equal(t, first.Metrics, second.Metrics)
	assert.Equal(t, first.RStatistics, second.RStatistics)
	assert.Equal(t, first.Rating, second.Rating)
}
