package report

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"mt4-analyzer/internal/logger"
	"mt4-analyzer/internal/types"
)

// Store persists analysis reports to disk: one JSON file per run plus
// an optional R-multiple CSV export. Old reports get gzipped after the
// retention window.
type Store struct {
	dir           string
	retentionDays int

	mu sync.Mutex
}

func NewStore(dir string, retentionDays int) *Store {
	if dir == "" {
		dir = "reports"
	}
	return &Store{dir: dir, retentionDays: retentionDays}
}

// Save writes the report as pretty-printed JSON and returns the path.
// Filenames carry the account number and a timestamp so repeated runs
// never clobber each other.
func (s *Store) Save(ctx context.Context, rep *types.Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, s.filename(rep, "json"))
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}

	logger.Info(ctx, "Report saved", "path", path, "bytes", len(b))
	return path, nil
}

// ExportRMultiplesCSV writes the per-trade R outcomes as CSV and
// returns the path. Invalid setups appear with an empty r_multiple and
// the reason in the last column.
func (s *Store) ExportRMultiplesCSV(ctx context.Context, rep *types.Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, s.filename(rep, "csv"))
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	headers := []string{"ticket", "type", "entry", "stop_loss", "take_profit", "size", "profit", "r_multiple", "theoretical_r", "valid_setup", "note"}
	if err := w.Write(headers); err != nil {
		return "", err
	}

	for _, rec := range rep.RMultiples {
		rValue := ""
		if rec.IsValidSetup {
			rValue = fmt.Sprintf("%.3f", rec.RMultiple)
		}
		row := []string{
			rec.Ticket,
			string(rec.Type),
			fmt.Sprintf("%.5f", rec.EntryPrice),
			fmt.Sprintf("%.5f", rec.StopLoss),
			fmt.Sprintf("%.5f", rec.TakeProfit),
			fmt.Sprintf("%.2f", rec.PositionSize),
			fmt.Sprintf("%.2f", rec.Profit),
			rValue,
			fmt.Sprintf("%.3f", rec.TheoreticalR),
			fmt.Sprintf("%t", rec.IsValidSetup),
			rec.InvalidNote,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	logger.Info(ctx, "R-multiple CSV exported", "path", path, "rows", len(rep.RMultiples))
	return path, nil
}

func (s *Store) filename(rep *types.Report, ext string) string {
	account := strings.TrimSpace(rep.Account.AccountNumber)
	if account == "" {
		account = "unknown"
	}
	stamp := time.Now().Format("20060102-150405")
	return fmt.Sprintf("%s-%s.%s", account, stamp, ext)
}

// CompressOlder gzips report files older than the retention window and
// removes the originals. Errors on individual files are skipped; a
// stuck file must not block the sweep.
func (s *Store) CompressOlder() error {
	if s.retentionDays <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	return filepath.WalkDir(s.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := filepath.Ext(p)
		if ext != ".json" && ext != ".csv" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		if _, e2 := os.Stat(gz); e2 == nil {
			_ = os.Remove(p)
			return nil
		}

		in, e3 := os.Open(p)
		if e3 != nil {
			return nil
		}
		defer in.Close()

		out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if e4 != nil {
			return nil
		}
		gw := gzip.NewWriter(out)
		if _, e5 := io.Copy(gw, in); e5 == nil {
			_ = gw.Close()
			_ = out.Close()
			_ = os.Remove(p)
		} else {
			_ = gw.Close()
			_ = out.Close()
		}
		return nil
	})
}
