package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// CSVWriter writes transactions to CSV format.
type CSVWriter struct {
	// IncludeHeader prefixes the table with "# key,value" metadata rows.
	IncludeHeader bool
}

// WriteToFile writes the result to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, res models.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	if err := w.Write(f, res); err != nil {
		return err
	}
	return f.Close()
}

// Write writes the result in CSV format to out.
func (w *CSVWriter) Write(out io.Writer, res models.Result) error {
	rows := Rows(res)

	if w.IncludeHeader {
		meta := csv.NewWriter(out)
		for _, kv := range metadata(res, Sum(rows)) {
			if err := meta.Write([]string{"# " + kv[0], kv[1]}); err != nil {
				return fmt.Errorf("failed to write CSV metadata: %w", err)
			}
		}
		meta.Flush()
		if err := meta.Error(); err != nil {
			return fmt.Errorf("failed to write CSV metadata: %w", err)
		}
	}

	if err := gocsv.Marshal(&rows, out); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// metadata lists the non-empty facts about a result in a fixed order.
func metadata(res models.Result, totals Totals) [][2]string {
	var out [][2]string
	add := func(k, v string) {
		if v != "" {
			out = append(out, [2]string{k, v})
		}
	}
	add("Strategy", string(res.Metadata.ParseStrategyUsed))
	add("Bank", res.Bank)
	if a := res.Account; a != nil {
		add("Account Holder", a.Holder)
		add("Account Number", a.Number)
		if a.PeriodFrom != "" || a.PeriodTo != "" {
			add("Statement Period", strings.TrimSpace(a.PeriodFrom+" to "+a.PeriodTo))
		}
	}
	if res.Metadata.TotalPages > 0 {
		add("Pages", strconv.Itoa(res.Metadata.TotalPages))
	}
	add("Opening Balance", formatAmount(res.Metadata.OpeningBalance))
	add("Transactions", strconv.Itoa(totals.Count))
	add("Total Debit", FormatTotal(totals.Debit, totals.Currency))
	add("Total Credit", FormatTotal(totals.Credit, totals.Currency))
	return out
}
