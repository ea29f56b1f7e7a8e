package parser

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"mt4-analyzer/internal/logger"
	"mt4-analyzer/internal/types"
)

// ErrNoTradeData is the only fatal parse failure: the document contains
// no recognizable transaction table at all. Everything else degrades.
var ErrNoTradeData = errors.New("statement contains no recognizable trade table")

// Column layout of an MT4 transaction row. Rows with fewer than
// minColumns cells are skipped; the profit column is always the
// trailing one so short open-trade rows still parse.
const (
	colTicket = iota
	colOpenTime
	colType
	colSize
	colItem
	colOpenPrice
	colStopLoss
	colTakeProfit
	colCloseTime
	colClosePrice
	colCommission
	colTaxes
	colSwap
	colProfit

	fullColumnCount = 14
)

// MT4 statements print times as "2006.01.02 15:04" (sometimes with
// seconds).
var timeLayouts = []string{"2006.01.02 15:04:05", "2006.01.02 15:04"}

var reportDatePattern = regexp.MustCompile(`\d{4}\s+\w+\s+\d{1,2},\s+\d{1,2}:\d{2}`)

// Parser extracts structured trade data from MT4 HTML statements.
type Parser struct {
	minColumns int
}

func New(minColumns int) *Parser {
	if minColumns <= 0 {
		minColumns = 10
	}
	return &Parser{minColumns: minColumns}
}

// Parse reads an MT4 HTML statement and returns the account header, the
// broker-reported financial summary, and the trades split into closed
// and open. It fails only when no trade table exists at all.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*types.Statement, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	st := &types.Statement{
		Account: p.extractAccount(doc),
		Summary: p.extractSummary(doc),
	}

	trades, sawTable := p.extractTrades(ctx, doc)
	if !sawTable && len(trades) == 0 {
		return nil, ErrNoTradeData
	}

	for _, t := range trades {
		if t.IsClosed() {
			st.ClosedTrades = append(st.ClosedTrades, t)
		} else {
			st.OpenTrades = append(st.OpenTrades, t)
		}
	}

	logger.Info(ctx, "Statement parsed",
		"closed_trades", len(st.ClosedTrades),
		"open_trades", len(st.OpenTrades),
		"account", st.Account.AccountNumber,
	)
	return st, nil
}

// ParseString is a convenience wrapper for raw markup in memory.
func (p *Parser) ParseString(ctx context.Context, markup string) (*types.Statement, error) {
	return p.Parse(ctx, strings.NewReader(markup))
}

// extractAccount scans every table cell for the literal label prefixes
// of the account header block. The block is not column-regular across
// brokers, so positional indexing is useless here.
func (p *Parser) extractAccount(doc *goquery.Document) types.AccountInfo {
	info := types.AccountInfo{Leverage: "Not specified"}

	doc.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		text := cleanText(cell.Text())
		switch {
		case strings.HasPrefix(text, "Account:"):
			if info.AccountNumber == "" {
				info.AccountNumber = labelValue(text, "Account:", cell)
			}
		case strings.HasPrefix(text, "Name:"):
			if info.AccountName == "" {
				info.AccountName = labelValue(text, "Name:", cell)
			}
		case strings.HasPrefix(text, "Currency:"):
			if info.Currency == "" {
				info.Currency = labelValue(text, "Currency:", cell)
			}
		case strings.HasPrefix(text, "Leverage:"):
			if info.Leverage == "Not specified" {
				if v := labelValue(text, "Leverage:", cell); v != "" {
					info.Leverage = v
				}
			}
		case info.ReportDate == "" && reportDatePattern.MatchString(text):
			info.ReportDate = reportDatePattern.FindString(text)
		}
	})

	return info
}

// labelValue returns the text after a label prefix, falling back to the
// next sibling cell when the label cell carries only the label itself.
func labelValue(text, label string, cell *goquery.Selection) string {
	if v := strings.TrimSpace(strings.TrimPrefix(text, label)); v != "" {
		return v
	}
	return cleanText(cell.Next().Text())
}

var summaryLabels = []struct {
	label  string
	assign func(*types.FinancialSummary, float64)
}{
	{"Deposit/Withdrawal:", func(s *types.FinancialSummary, v float64) { s.DepositWithdrawal = v }},
	{"Credit Facility:", func(s *types.FinancialSummary, v float64) { s.CreditFacility = v }},
	{"Closed Trade P/L:", func(s *types.FinancialSummary, v float64) { s.ClosedTradePnL = v }},
	{"Floating P/L:", func(s *types.FinancialSummary, v float64) { s.FloatingPnL = v }},
	{"Free Margin:", func(s *types.FinancialSummary, v float64) { s.FreeMargin = v }},
	{"Margin:", func(s *types.FinancialSummary, v float64) { s.Margin = v }},
	{"Balance:", func(s *types.FinancialSummary, v float64) { s.Balance = v }},
	{"Equity:", func(s *types.FinancialSummary, v float64) { s.Equity = v }},
}

// extractSummary pulls the broker-reported balance figures by label
// prefix. "Free Margin:" is matched before "Margin:" because the
// shorter label is a suffix of the longer one.
func (p *Parser) extractSummary(doc *goquery.Document) types.FinancialSummary {
	var sum types.FinancialSummary
	seen := make(map[string]bool, len(summaryLabels))

	doc.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		text := cleanText(cell.Text())
		for _, entry := range summaryLabels {
			if seen[entry.label] || !strings.HasPrefix(text, entry.label) {
				continue
			}
			raw := strings.TrimSpace(strings.TrimPrefix(text, entry.label))
			if raw == "" {
				raw = p.nextNumericText(cell)
			}
			if v, ok := parseNumber(raw); ok {
				entry.assign(&sum, v)
				seen[entry.label] = true
			}
			break
		}
	})

	return sum
}

// nextNumericText walks the following sibling cells for the first text
// that parses as a number.
func (p *Parser) nextNumericText(cell *goquery.Selection) string {
	for next := cell.Next(); next.Length() > 0; next = next.Next() {
		text := cleanText(next.Text())
		if _, ok := parseNumber(text); ok {
			return text
		}
	}
	return ""
}

// extractTrades walks every table row in document order. A header row
// containing both "ticket" and "profit" marks the start of a
// transaction region; data rows need at least minColumns cells and a
// buy/sell type column, everything else (balance lines, totals,
// section banners) is skipped, never errored.
func (p *Parser) extractTrades(ctx context.Context, doc *goquery.Document) ([]types.Trade, bool) {
	var trades []types.Trade
	sawTable := false
	inRegion := false

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		texts := make([]string, 0, cells.Length())
		cells.Each(func(_ int, c *goquery.Selection) {
			texts = append(texts, cleanText(c.Text()))
		})

		joined := strings.ToLower(strings.Join(texts, " "))
		if strings.Contains(joined, "ticket") && strings.Contains(joined, "profit") {
			sawTable = true
			inRegion = true
			return
		}
		// "Working Orders" rows share the layout but are not trades.
		if strings.Contains(joined, "working orders") {
			inRegion = false
			return
		}
		if !inRegion || len(texts) < p.minColumns {
			return
		}

		if t, ok := p.parseTradeRow(ctx, texts); ok {
			trades = append(trades, t)
		}
	})

	return trades, sawTable
}

func (p *Parser) parseTradeRow(ctx context.Context, texts []string) (types.Trade, bool) {
	trade := types.Trade{
		Ticket: strings.TrimSpace(texts[colTicket]),
	}
	if trade.Ticket == "" {
		return trade, false
	}

	switch strings.ToLower(strings.TrimSpace(texts[colType])) {
	case "buy":
		trade.Type = types.Buy
	case "sell":
		trade.Type = types.Sell
	default:
		// Balance rows, totals, and column headers land here.
		return trade, false
	}

	trade.OpenTime = parseTime(texts[colOpenTime])
	trade.Size = p.numericCell(ctx, trade.Ticket, "size", texts[colSize])
	trade.Item = strings.TrimSpace(texts[colItem])
	trade.OpenPrice = p.numericCell(ctx, trade.Ticket, "price", texts[colOpenPrice])
	trade.StopLoss = p.numericCell(ctx, trade.Ticket, "s_l", texts[colStopLoss])
	trade.TakeProfit = p.numericCell(ctx, trade.Ticket, "t_p", texts[colTakeProfit])

	if len(texts) > colCloseTime {
		trade.CloseTime = parseTime(texts[colCloseTime])
	}
	if len(texts) > colClosePrice {
		trade.ClosePrice = p.numericCell(ctx, trade.Ticket, "close_price", texts[colClosePrice])
	}
	if len(texts) >= fullColumnCount {
		trade.Commission = p.numericCell(ctx, trade.Ticket, "commission", texts[colCommission])
		trade.Taxes = p.numericCell(ctx, trade.Ticket, "taxes", texts[colTaxes])
		trade.Swap = p.numericCell(ctx, trade.Ticket, "swap", texts[colSwap])
	}
	// Profit is always the trailing numeric column.
	trade.Profit = p.numericCell(ctx, trade.Ticket, "profit", texts[len(texts)-1])

	if trade.OpenPrice <= 0 {
		return trade, false
	}
	return trade, true
}

// numericCell parses one numeric cell, degrading malformed text to 0.
func (p *Parser) numericCell(ctx context.Context, ticket, column, text string) float64 {
	v, ok := parseNumber(text)
	if !ok && strings.TrimSpace(text) != "" {
		logger.ParseDegradation(ctx, ticket, column, text)
	}
	return v
}

func parseTime(text string) time.Time {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t
		}
	}
	return time.Time{}
}
