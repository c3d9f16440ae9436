package parser

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Calibrated thresholds. They are empirical and exposed through Options so
// deployments can retune them.
const (
	DefaultRowTolerance       = 2.0
	DefaultMaxGroup           = 6
	HeaderScanMinRows         = 25
	HeaderScanFraction        = 0.4
	HeaderMinFields           = 3
	HeaderAcceptScore         = 12
	BandMargin                = 3.0
	BandMergeGap              = 50.0
	MaxBands                  = 15
	RTLThreshold              = 0.7
	TransactionScore          = 6
	FallbackScore             = 15
	TransactionPageMinDates   = 5
	TransactionPageMinAmounts = 5
)

// groupChainLimit stops a token group from growing through its newest
// members once it has this many.
const groupChainLimit = 4

// Options configures a parse. Zero fields take the default value.
type Options struct {
	RowTolerance              float64 `yaml:"row_tolerance"`
	MaxGroup                  int     `yaml:"max_group"`
	HeaderScanMinRows         int     `yaml:"header_scan_min_rows"`
	HeaderScanFraction        float64 `yaml:"header_scan_fraction"`
	HeaderMinFields           int     `yaml:"header_min_fields"`
	HeaderAcceptScore         int     `yaml:"header_accept_score"`
	BandMargin                float64 `yaml:"band_margin"`
	BandMergeGap              float64 `yaml:"band_merge_gap"`
	MaxBands                  int     `yaml:"max_bands"`
	RTLThreshold              float64 `yaml:"rtl_threshold"`
	TransactionScore          int     `yaml:"transaction_score"`
	FallbackScore             int     `yaml:"fallback_score"`
	TransactionPageMinDates   int     `yaml:"transaction_page_min_dates"`
	TransactionPageMinAmounts int     `yaml:"transaction_page_min_amounts"`

	// PageWidth overrides the width used for right-to-left detection.
	PageWidth float64 `yaml:"page_width,omitempty"`

	// Filled in by the caller from the extractor, not from configuration.
	PageWidths map[int]float64    `yaml:"-"`
	TotalPages int                `yaml:"-"`
	Logger     logrus.FieldLogger `yaml:"-"`
}

// DefaultOptions returns the calibrated thresholds.
func DefaultOptions() Options {
	return Options{
		RowTolerance:              DefaultRowTolerance,
		MaxGroup:                  DefaultMaxGroup,
		HeaderScanMinRows:         HeaderScanMinRows,
		HeaderScanFraction:        HeaderScanFraction,
		HeaderMinFields:           HeaderMinFields,
		HeaderAcceptScore:         HeaderAcceptScore,
		BandMargin:                BandMargin,
		BandMergeGap:              BandMergeGap,
		MaxBands:                  MaxBands,
		RTLThreshold:              RTLThreshold,
		TransactionScore:          TransactionScore,
		FallbackScore:             FallbackScore,
		TransactionPageMinDates:   TransactionPageMinDates,
		TransactionPageMinAmounts: TransactionPageMinAmounts,
	}
}

// withDefaults fills unset thresholds.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.RowTolerance <= 0 {
		o.RowTolerance = d.RowTolerance
	}
	if o.MaxGroup <= 0 {
		o.MaxGroup = d.MaxGroup
	}
	if o.HeaderScanMinRows <= 0 {
		o.HeaderScanMinRows = d.HeaderScanMinRows
	}
	if o.HeaderScanFraction <= 0 {
		o.HeaderScanFraction = d.HeaderScanFraction
	}
	if o.HeaderMinFields <= 0 {
		o.HeaderMinFields = d.HeaderMinFields
	}
	if o.HeaderAcceptScore <= 0 {
		o.HeaderAcceptScore = d.HeaderAcceptScore
	}
	if o.BandMargin <= 0 {
		o.BandMargin = d.BandMargin
	}
	if o.BandMergeGap <= 0 {
		o.BandMergeGap = d.BandMergeGap
	}
	if o.MaxBands <= 0 {
		o.MaxBands = d.MaxBands
	}
	if o.RTLThreshold <= 0 {
		o.RTLThreshold = d.RTLThreshold
	}
	if o.TransactionScore <= 0 {
		o.TransactionScore = d.TransactionScore
	}
	if o.FallbackScore <= 0 {
		o.FallbackScore = d.FallbackScore
	}
	if o.TransactionPageMinDates <= 0 {
		o.TransactionPageMinDates = d.TransactionPageMinDates
	}
	if o.TransactionPageMinAmounts <= 0 {
		o.TransactionPageMinAmounts = d.TransactionPageMinAmounts
	}
	return o
}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

func (o Options) log() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	return discard
}
