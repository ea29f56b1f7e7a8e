package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"mt4-analyzer/internal/logger"
	"mt4-analyzer/internal/parser"
	"mt4-analyzer/internal/types"
)

// envelope is the uniform response wrapper of every endpoint.
type envelope struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	Data             any    `json:"data,omitempty"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

func respond(c echo.Context, status int, start time.Time, message string, data any) error {
	return c.JSON(status, envelope{
		Success:          status < http.StatusBadRequest,
		Message:          message,
		Data:             data,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	})
}

type contentRequest struct {
	Content string `json:"content"`
}

type urlRequest struct {
	URL string `json:"url"`
}

func (s *Server) health(c echo.Context) error {
	start := time.Now()
	return respond(c, http.StatusOK, start, "ok", map[string]string{
		"service": "mt4-analyzer",
		"status":  "healthy",
	})
}

// analyzeFile accepts a multipart upload under the "file" field.
func (s *Server) analyzeFile(c echo.Context) error {
	start := time.Now()
	ctx := c.Request().Context()

	fh, err := c.FormFile("file")
	if err != nil {
		return respond(c, http.StatusBadRequest, start, "multipart field 'file' is required", nil)
	}
	if !s.allowedExtension(fh.Filename) {
		return respond(c, http.StatusBadRequest, start,
			fmt.Sprintf("unsupported file type %s, expected one of %s",
				filepath.Ext(fh.Filename), strings.Join(s.cfg.Server.FileExtensions, ", ")), nil)
	}

	f, err := fh.Open()
	if err != nil {
		return respond(c, http.StatusBadRequest, start, "could not read uploaded file", nil)
	}
	defer f.Close()

	rep, err := s.analyzer.Analyze(ctx, fh.Filename, f)
	if err != nil {
		return s.analysisError(c, start, err)
	}
	s.persist(c, rep)
	return respond(c, http.StatusOK, start, "statement analyzed", rep)
}

// analyzeContent accepts the raw markup in a JSON body.
func (s *Server) analyzeContent(c echo.Context) error {
	start := time.Now()
	ctx := c.Request().Context()

	var req contentRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		return respond(c, http.StatusBadRequest, start, "json field 'content' is required", nil)
	}

	rep, err := s.analyzer.Analyze(ctx, "content", strings.NewReader(req.Content))
	if err != nil {
		return s.analysisError(c, start, err)
	}
	s.persist(c, rep)
	return respond(c, http.StatusOK, start, "statement analyzed", rep)
}

// analyzeURL downloads a published statement and analyzes it.
func (s *Server) analyzeURL(c echo.Context) error {
	start := time.Now()
	ctx := c.Request().Context()

	var req urlRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		return respond(c, http.StatusBadRequest, start, "json field 'url' is required", nil)
	}

	body, err := s.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return respond(c, http.StatusBadGateway, start,
			fmt.Sprintf("could not fetch statement: %v", err), nil)
	}

	rep, err := s.analyzer.Analyze(ctx, req.URL, bytes.NewReader(body))
	if err != nil {
		return s.analysisError(c, start, err)
	}
	s.persist(c, rep)
	return respond(c, http.StatusOK, start, "statement analyzed", rep)
}

// riskCalculator evaluates a hypothetical trade. Setup problems come
// back inside the plan, not as HTTP errors.
func (s *Server) riskCalculator(c echo.Context) error {
	start := time.Now()
	ctx := c.Request().Context()

	var in types.RiskPlanInput
	if err := c.Bind(&in); err != nil {
		return respond(c, http.StatusBadRequest, start, "invalid request body", nil)
	}

	plan := s.planner.Plan(ctx, in)
	return respond(c, http.StatusOK, start, "risk plan computed", plan)
}

func (s *Server) analysisError(c echo.Context, start time.Time, err error) error {
	if errors.Is(err, parser.ErrNoTradeData) {
		return respond(c, http.StatusUnprocessableEntity, start,
			"statement contains no recognizable trade data", nil)
	}
	logger.ErrorWithErr(c.Request().Context(), "Analysis request failed", err)
	return respond(c, http.StatusInternalServerError, start, "analysis failed", nil)
}

// persist saves the report to disk; a storage problem never fails the
// request that produced the report.
func (s *Server) persist(c echo.Context, rep *types.Report) {
	if s.reports == nil {
		return
	}
	ctx := c.Request().Context()
	if _, err := s.reports.Save(ctx, rep); err != nil {
		logger.Warn(ctx, "Report persistence failed", "error", err)
	}
}

func (s *Server) allowedExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range s.cfg.Server.FileExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
