package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mt4-analyzer/internal/logger"
	"mt4-analyzer/internal/types"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	var (
		filePath  = flag.String("file", "", "analyze a statement HTML file")
		statement = flag.String("url", "", "analyze a statement published at a URL")
		serve     = flag.Bool("serve", false, "run the HTTP API server")
		exportCSV = flag.Bool("csv", false, "also export per-trade R-multiples as CSV")
	)
	flag.Parse()

	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := buildApp(ctx)
	must(err)
	defer shutdownSystem()

	compressOldReports(ctx, app)

	switch {
	case *serve:
		runServer(ctx, cancel, app)
	case *filePath != "":
		must(analyzeFile(ctx, app, *filePath, *exportCSV))
	case *statement != "":
		must(analyzeURL(ctx, app, *statement, *exportCSV))
	default:
		fmt.Fprintln(os.Stderr, "usage: analyzer -file <statement.html> | -url <address> | -serve")
		flag.PrintDefaults()
		os.Exit(2)
	}
}

func runServer(ctx context.Context, cancel context.CancelFunc, app *application) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Info(ctx, "Shutdown signal received")
		cancel()
	}()

	if err := app.server.Start(ctx); err != nil {
		logger.ErrorWithErr(ctx, "Server stopped with error", err)
		os.Exit(1)
	}
}

func analyzeFile(ctx context.Context, app *application, path string, exportCSV bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rep, err := app.analyzer.Analyze(ctx, path, f)
	if err != nil {
		return err
	}
	return emit(ctx, app, rep, exportCSV)
}

func analyzeURL(ctx context.Context, app *application, address string, exportCSV bool) error {
	body, err := app.fetcher.Fetch(ctx, address)
	if err != nil {
		return err
	}

	rep, err := app.analyzer.Analyze(ctx, address, bytes.NewReader(body))
	if err != nil {
		return err
	}
	return emit(ctx, app, rep, exportCSV)
}

// emit persists the report and prints it to stdout.
func emit(ctx context.Context, app *application, rep *types.Report, exportCSV bool) error {
	if path, err := app.reports.Save(ctx, rep); err != nil {
		logger.Warn(ctx, "Report persistence failed", "error", err)
	} else {
		logger.Info(ctx, "Report saved", "path", path)
	}
	if exportCSV {
		if path, err := app.reports.ExportRMultiplesCSV(ctx, rep); err != nil {
			logger.Warn(ctx, "CSV export failed", "error", err)
		} else {
			logger.Info(ctx, "CSV exported", "path", path)
		}
	}

	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
