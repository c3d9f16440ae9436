// Package api serves statement conversion over HTTP.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/insightdelivered/statement-extractor/internal/banks"
	"github.com/insightdelivered/statement-extractor/internal/config"
	"github.com/insightdelivered/statement-extractor/internal/convert"
	"github.com/insightdelivered/statement-extractor/internal/extractor"
	"github.com/insightdelivered/statement-extractor/internal/logging"
	"github.com/insightdelivered/statement-extractor/internal/metrics"
	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/writer"
)

// Version is reported by the health endpoint.
const Version = "2.0.0"

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Converter converts one uploaded document.
type Converter interface {
	ConvertWith(ctx context.Context, path, bank string) (*convert.Conversion, error)
	// BankNames lists the bank parsers the converter can force.
	BankNames() []string
}

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success      bool                 `json:"success"`
	Error        string               `json:"error,omitempty"`
	ID           string               `json:"id,omitempty"`
	File         string               `json:"file,omitempty"`
	Strategy     models.Strategy      `json:"strategy,omitempty"`
	Bank         string               `json:"bank,omitempty"`
	Account      *models.AccountInfo  `json:"account,omitempty"`
	Transactions []models.Transaction `json:"transactions"`
	Records      []models.BankRecord  `json:"records,omitempty"`
	Metadata     *models.RunMetadata  `json:"metadata,omitempty"`
	Diagnostics  *models.Diagnostics  `json:"diagnostics,omitempty"`
	Pages        []extractor.PageInfo `json:"pages,omitempty"`
	CSV          string               `json:"csv,omitempty"`
	TotalDebit   float64              `json:"totalDebit"`
	TotalCredit  float64              `json:"totalCredit"`
	Count        int                  `json:"count"`
	Version      string               `json:"version,omitempty"`
}

// Server holds the HTTP handlers for the API.
type Server struct {
	app      *fiber.App
	conv     Converter
	cfg      config.ServerConfig
	limiter  *rate.Limiter
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	maxBytes int64
}

// New builds the fiber app. m and logger may be nil.
func New(conv Converter, cfg config.ServerConfig, m *metrics.Metrics, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 32
	}
	s := &Server{
		conv:     conv,
		cfg:      cfg,
		metrics:  m,
		log:      logger,
		maxBytes: int64(cfg.MaxUploadMB) << 20,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "statement-extractor",
		BodyLimit:             int(s.maxBytes) + 1<<20, // form overhead
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "POST, GET, OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/api/health", s.handleHealth)
	s.app.Get("/api/banks", s.handleBanks)
	s.app.Post("/api/convert", s.handleConvert)
	if s.metrics != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
	}

	// Serve the single-page frontend; unknown paths get index.html.
	if dir := s.cfg.StaticDir; dir != "" {
		s.app.Static("/", dir)
		s.app.Get("/*", func(c *fiber.Ctx) error {
			if strings.HasPrefix(c.Path(), "/api/") {
				return fiber.ErrNotFound
			}
			return c.SendFile(filepath.Join(dir, "index.html"))
		})
	}
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.log.WithField("addr", addr).Info("listening")
	return s.app.Listen(addr)
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": Version,
	})
}

func (s *Server) handleBanks(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"banks": s.conv.BankNames()})
}

func (s *Server) handleConvert(c *fiber.Ctx) error {
	if s.limiter != nil && !s.limiter.Allow() {
		s.metrics.RateLimited()
		return fiber.NewError(fiber.StatusTooManyRequests, "Too many uploads, try again shortly.")
	}

	header, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		return fiber.NewError(fiber.StatusBadRequest, "Only PDF files are supported.")
	}
	if header.Size > s.maxBytes {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("File exceeds %d MB.", s.cfg.MaxUploadMB))
	}

	format := strings.ToLower(c.FormValue("format", "json"))
	switch format {
	case "json", "csv", "xlsx":
	default:
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Unknown format %q. Use json, csv, or xlsx.", format))
	}
	bank := strings.Clone(c.FormValue("bank"))
	includeHeader := c.FormValue("header") != "false"
	filename := filepath.Base(header.Filename)

	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create temp file.")
	}
	tmp.Close()
	defer os.Remove(tmp.Name())
	if err := c.SaveFile(header, tmp.Name()); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to save uploaded file.")
	}

	id := uuid.NewString()
	log := s.log.WithFields(logrus.Fields{"id": id, "file": filename})

	conv, err := s.conv.ConvertWith(c.UserContext(), tmp.Name(), bank)
	if err != nil {
		log.WithError(err).Warn("conversion failed")
		switch {
		case errors.Is(err, banks.ErrUnsupportedBank):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			return fiber.NewError(fiber.StatusGatewayTimeout, "Conversion timed out.")
		}
		return fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("PDF extraction failed: %v", err))
	}
	res := conv.Result
	log.WithFields(logrus.Fields{
		"strategy":     res.Metadata.ParseStrategyUsed,
		"transactions": len(res.Transactions),
		"format":       format,
	}).Info("upload converted")

	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	var buf bytes.Buffer
	switch format {
	case "csv":
		if err := (&writer.CSVWriter{IncludeHeader: includeHeader}).Write(&buf, res); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
		}
		return s.attachment(c, contentTypeCSV, base+".csv", id, buf.Bytes())
	case "xlsx":
		if err := (&writer.XLSXWriter{}).Write(&buf, res); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("XLSX generation failed: %v", err))
		}
		return s.attachment(c, contentTypeXLSX, base+".xlsx", id, buf.Bytes())
	}

	if err := (&writer.CSVWriter{IncludeHeader: includeHeader}).Write(&buf, res); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}
	totals := writer.Sum(writer.Rows(res))
	txns := res.Transactions
	if txns == nil {
		txns = []models.Transaction{}
	}
	return c.JSON(ConvertResponse{
		Success:      true,
		ID:           id,
		File:         filename,
		Strategy:     res.Metadata.ParseStrategyUsed,
		Bank:         res.Bank,
		Account:      res.Account,
		Transactions: txns,
		Records:      res.Records,
		Metadata:     &res.Metadata,
		Diagnostics:  res.Diagnostics,
		Pages:        conv.Pages,
		CSV:          buf.String(),
		TotalDebit:   totals.Debit.InexactFloat64(),
		TotalCredit:  totals.Credit.InexactFloat64(),
		Count:        len(txns),
		Version:      Version,
	})
}

func (s *Server) attachment(c *fiber.Ctx, contentType, name, id string, body []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	c.Set("X-Conversion-Id", id)
	return c.Send(body)
}

// handleError renders every error as a ConvertResponse.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code, msg := fiber.StatusInternalServerError, fmt.Sprintf("Internal server error: %v", err)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	} else {
		s.log.WithError(err).Error("request failed")
	}
	return c.Status(code).JSON(ConvertResponse{Success: false, Error: msg})
}
