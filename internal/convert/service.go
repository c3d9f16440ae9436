// Package convert applies the caller-level policy around the parsers:
// extract tokens, try the bank parsers, then the universal pipeline.
package convert

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/insightdelivered/statement-extractor/internal/banks"
	"github.com/insightdelivered/statement-extractor/internal/config"
	"github.com/insightdelivered/statement-extractor/internal/extractor"
	"github.com/insightdelivered/statement-extractor/internal/logging"
	"github.com/insightdelivered/statement-extractor/internal/metrics"
	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/parser"
)

// DefaultTimeout bounds one conversion when none is configured.
const DefaultTimeout = 60 * time.Second

// ErrBankTableNotFound is recorded when a bank was detected, its table was
// not, and falling through to the universal pipeline is disabled.
var ErrBankTableNotFound = errors.New("bank detected but its transaction table was not found")

// Conversion is the outcome for one document.
type Conversion struct {
	Path     string               `json:"file"`
	Result   models.Result        `json:"result"`
	Pages    []extractor.PageInfo `json:"pages"`
	Duration time.Duration        `json:"-"`
}

// Service converts statements.
type Service struct {
	Source          TokenSource
	Banks           *banks.Manager
	Thresholds      parser.Options
	Timeout         time.Duration
	BankFallthrough bool
	Bank            string // when set, only this bank parser runs
	Workers         int
	Metrics         *metrics.Metrics
	Logger          logrus.FieldLogger

	defaults sync.Once
}

// New returns a service configured from cfg. m and logger may be nil.
func New(source TokenSource, cfg *config.Config, m *metrics.Metrics, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{
		Source:          source,
		Banks:           banks.Default().WithLogger(logger),
		Thresholds:      cfg.Thresholds,
		Timeout:         cfg.Convert.Timeout,
		BankFallthrough: cfg.Convert.BankFallthrough,
		Bank:            cfg.Convert.Bank,
		Workers:         cfg.Convert.Workers,
		Metrics:         m,
		Logger:          logger,
	}
}

// setDefaults fills the logger and bank manager of a hand-built Service
// once, so concurrent conversions only ever read them.
func (s *Service) setDefaults() {
	s.defaults.Do(func() {
		if s.Logger == nil {
			s.Logger = logging.Discard()
		}
		if s.Banks == nil {
			s.Banks = banks.Default().WithLogger(s.Logger)
		}
	})
}

func (s *Service) log() logrus.FieldLogger {
	s.setDefaults()
	return s.Logger
}

// Convert converts the document at path with the configured bank policy.
func (s *Service) Convert(ctx context.Context, path string) (*Conversion, error) {
	return s.ConvertWith(ctx, path, "")
}

// ConvertWith converts the document at path. A non-empty bank, or the
// configured one when bank is empty, skips detection and runs that bank's
// parser only.
func (s *Service) ConvertWith(ctx context.Context, path, bank string) (*Conversion, error) {
	start := time.Now()
	log := s.log().WithField("file", path)
	if bank == "" {
		bank = s.Bank
	}

	var forced banks.Parser
	if bank != "" {
		p, err := s.manager().Lookup(bank)
		if err != nil {
			s.Metrics.Failed("bank")
			return nil, err
		}
		forced = p
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	doc, err := s.Source.Tokens(ctx, path)
	if err != nil {
		s.Metrics.Failed("extract")
		log.WithError(err).Warn("extraction failed")
		return nil, fmt.Errorf("convert %s: %w", path, err)
	}

	res := s.parse(doc, forced)
	if err := ctx.Err(); err != nil {
		s.Metrics.Failed("timeout")
		return nil, fmt.Errorf("convert %s: %w", path, err)
	}

	elapsed := time.Since(start)
	strategy := string(res.Metadata.ParseStrategyUsed)
	s.Metrics.Observe(strategy, len(res.Transactions), elapsed)
	log.WithFields(logrus.Fields{
		"strategy":     strategy,
		"transactions": len(res.Transactions),
		"pages":        len(doc.Pages),
		"duration":     elapsed.Round(time.Millisecond),
	}).Info("statement converted")

	return &Conversion{Path: path, Result: res, Pages: doc.Pages, Duration: elapsed}, nil
}

// BankNames lists the registered bank parsers in detection order.
func (s *Service) BankNames() []string {
	return s.manager().Names()
}

func (s *Service) manager() *banks.Manager {
	s.setDefaults()
	return s.Banks
}

func (s *Service) options(doc extractor.Document) parser.Options {
	opts := s.Thresholds
	opts.PageWidths = doc.PageWidths()
	opts.TotalPages = len(doc.Pages)
	opts.Logger = s.log()
	return opts
}

// parse runs the bank manager first. Its records win whenever there are
// any; otherwise the universal pipeline runs unless fall-through is off.
func (s *Service) parse(doc extractor.Document, forced banks.Parser) models.Result {
	opts := s.options(doc)
	rows := parser.ClusterRows(doc.Tokens, opts.RowTolerance)

	var br banks.Result
	if forced != nil {
		br = s.manager().ParseWith(forced, rows)
	} else {
		br = s.manager().Parse(rows)
	}

	var res models.Result
	switch {
	case len(br.Records) > 0:
		res = bankResult(br, rows, opts)
	case br.Detected && (forced != nil || !s.BankFallthrough):
		res = models.Result{
			Bank:         br.Bank,
			Transactions: []models.Transaction{},
			Metadata: models.RunMetadata{
				TotalPages:           opts.TotalPages,
				TransactionPages:     parser.TransactionPages(rows, opts),
				HeaderFieldsDetected: []string{},
				ParseStrategyUsed:    models.StrategyNone,
				FallbackReason:       ErrBankTableNotFound.Error(),
			},
		}
	default:
		res = parser.Parse(doc.Tokens, opts)
		res.Bank = br.Bank
	}

	if info := parser.AccountDetails(rows); !info.IsZero() {
		res.Account = &info
	}
	return res
}

func bankResult(br banks.Result, rows []models.Row, opts parser.Options) models.Result {
	return models.Result{
		Bank:         br.Bank,
		Transactions: banks.StandardizeAll(br.Records),
		Records:      br.Records,
		Metadata: models.RunMetadata{
			TotalPages:           opts.TotalPages,
			TransactionPages:     parser.TransactionPages(rows, opts),
			HeaderFieldsDetected: br.Records[0].Columns,
			ParseStrategyUsed:    models.BankStrategy(br.Bank),
		},
	}
}

// Item is one entry of a batch.
type Item struct {
	Path       string
	Conversion *Conversion
	Err        error
}

// ConvertAll converts paths with at most workers in flight. Items come back
// in input order. A failing document is reported in its Item and does not
// stop the batch; only cancellation of ctx does.
func (s *Service) ConvertAll(ctx context.Context, paths []string, workers int) ([]Item, error) {
	if workers < 1 {
		workers = s.Workers
	}
	if workers < 1 {
		workers = 1
	}
	s.setDefaults()
	items := make([]Item, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			conv, err := s.Convert(gctx, p)
			items[i] = Item{Path: p, Conversion: conv, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return items, err
	}
	return items, ctx.Err()
}
