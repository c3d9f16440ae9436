package parser

import (
	"regexp"
	"sort"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

var pageAmountPattern = regexp.MustCompile(`\b\d[\d,]*\.\d{2}\b`)

// PageStats summarises the evidence on one page.
type PageStats struct {
	Page    int
	Dates   int
	Amounts int
}

// AnalyzePages counts dates and formatted amounts per page.
func AnalyzePages(rows []models.Row) []PageStats {
	texts := make(map[int][]string)
	for _, r := range rows {
		texts[r.Page] = append(texts[r.Page], r.Text())
	}
	stats := make([]PageStats, 0, len(texts))
	for page, lines := range texts {
		text := strings.Join(lines, "\n")
		stats = append(stats, PageStats{
			Page:    page,
			Dates:   len(datePattern.FindAllString(text, -1)),
			Amounts: len(pageAmountPattern.FindAllString(text, -1)),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Page < stats[j].Page })
	return stats
}

// TransactionPages lists the pages dense enough in dates and amounts to
// hold a transaction table.
func TransactionPages(rows []models.Row, opts Options) []int {
	opts = opts.withDefaults()
	pages := []int{}
	for _, s := range AnalyzePages(rows) {
		if s.Dates > opts.TransactionPageMinDates && s.Amounts > opts.TransactionPageMinAmounts {
			pages = append(pages, s.Page)
		}
	}
	return pages
}

func diagnose(rows []models.Row, opts Options) *models.Diagnostics {
	d := &models.Diagnostics{}
	for _, r := range rows {
		text := r.Text()
		if _, ok := ParseDate(text); ok {
			d.DateRows++
		}
		if len(ExtractNumbers(text)) > 0 {
			d.NumberRows++
		}
		if len(scoreHeaderRow(r, opts).fields) >= opts.HeaderMinFields {
			d.CandidateHeaderRows++
		}
	}
	return d
}
