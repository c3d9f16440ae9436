package parser

import (
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// Parse runs the universal pipeline over a document's tokens: rows,
// header, bands, row classification, and the fallback when the column
// path yields nothing. Content problems never surface as errors.
func Parse(tokens []models.Token, opts Options) models.Result {
	opts = opts.withDefaults()
	log := opts.log()

	rows := ClusterRows(tokens, opts.RowTolerance)
	res := models.Result{
		Transactions: []models.Transaction{},
		Metadata: models.RunMetadata{
			TotalPages:           totalPages(tokens, opts),
			TransactionPages:     TransactionPages(rows, opts),
			HeaderFieldsDetected: []string{},
			ParseStrategyUsed:    models.StrategyNone,
		},
	}

	col, err := parseColumns(rows, opts)
	if err == nil && len(col.transactions) == 0 {
		err = ErrNoTransactions
	}
	if err == nil {
		res.Transactions = col.transactions
		res.Metadata.ParseStrategyUsed = models.StrategyColumn
		res.Metadata.HeaderFieldsDetected = col.fields
		res.Metadata.OpeningBalance = col.opening
		res.Metadata.RightToLeft = col.rtl
	} else {
		log.WithError(err).Debug("column pass failed, using fallback")
		res.Metadata.FallbackReason = err.Error()
		if col.fields != nil {
			res.Metadata.HeaderFieldsDetected = col.fields
		}
		if txns := FallbackParse(rows, opts); len(txns) > 0 {
			res.Transactions = txns
			res.Metadata.ParseStrategyUsed = models.StrategyFallback
		}
	}

	if len(res.Transactions) == 0 {
		res.Diagnostics = diagnose(rows, opts)
	}
	log.WithField("strategy", res.Metadata.ParseStrategyUsed).
		WithField("transactions", len(res.Transactions)).
		Debug("parse finished")
	return res
}

type columnResult struct {
	transactions []models.Transaction
	fields       []string
	opening      *float64
	rtl          bool
}

// parseColumns is the header-driven path. Rows are consumed strictly in
// order because continuations and the running balance depend on it.
func parseColumns(rows []models.Row, opts Options) (columnResult, error) {
	var out columnResult
	header, ok := FindHeader(rows, opts)
	if !ok {
		return out, ErrNoHeader
	}
	headerRow := rows[header.Index]
	bands, err := BuildBands(header.Cells, pageWidth(rows, headerRow.Page, opts), opts)
	if err != nil {
		out.fields = fieldNames(header.Fields)
		return out, err
	}
	out.fields = bands.Fields()
	out.rtl = bands.RTL
	opts.log().WithField("bands", len(bands.Bands)).WithField("rtl", bands.RTL).Debug("bands built")

	var prev *float64
	for _, row := range rows[header.Index+1:] {
		if h := scoreHeaderRow(row, opts); h.accepted(opts) {
			if rebuilt, err := BuildBands(h.cells, pageWidth(rows, row.Page, opts), opts); err == nil {
				bands = rebuilt
			}
			continue
		}

		o := classifyRow(row, bands, prev, opts)
		switch o.Kind {
		case RowTransaction:
			out.transactions = append(out.transactions, o.Transaction)
			if o.Balance != nil {
				prev = o.Balance
			}
		case RowBalanceOnly:
			prev = o.Balance
			if out.opening == nil {
				out.opening = o.Balance
			}
		case RowContinuation:
			if n := len(out.transactions); n > 0 {
				last := &out.transactions[n-1]
				last.Description = strings.TrimSpace(last.Description + " " + o.Text)
			}
		}
	}
	return out, nil
}

// pageWidth prefers the configured width, then the extractor's page size,
// then the rightmost token edge on the page.
func pageWidth(rows []models.Row, page int, opts Options) float64 {
	if opts.PageWidth > 0 {
		return opts.PageWidth
	}
	if w, ok := opts.PageWidths[page]; ok && w > 0 {
		return w
	}
	var maxX float64
	for _, r := range rows {
		if r.Page != page {
			continue
		}
		for _, t := range r.Tokens {
			if t.X1 > maxX {
				maxX = t.X1
			}
		}
	}
	return maxX
}

func totalPages(tokens []models.Token, opts Options) int {
	n := opts.TotalPages
	for _, t := range tokens {
		if t.Page > n {
			n = t.Page
		}
	}
	return n
}
