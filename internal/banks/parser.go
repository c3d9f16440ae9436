// Package banks holds parsers tuned to the exact statement layouts of
// specific institutions, and the dispatcher that picks one.
package banks

import (
	"regexp"
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// Parser extracts records from one institution's statements.
type Parser interface {
	// Name is the institution label used in results and strategy names.
	Name() string
	// Detect reports whether text identifies this institution.
	Detect(text string) bool
	// FindTable returns the index of the transaction table's header row.
	FindTable(rows []models.Row) (int, bool)
	// Positions derives column ranges from the header row. Parsers that
	// read rows by pattern rather than position may return nil.
	Positions(header models.Row) Positions
	// ExtractRow turns one table row into a record.
	ExtractRow(row models.Row, pos Positions) (models.BankRecord, bool)
}

// Column is a named horizontal range on the page.
type Column struct {
	Key    string
	X0, X1 float64
}

// Positions is the ordered list of columns derived from a header row.
type Positions []Column

// Find returns the first column whose range contains x.
func (p Positions) Find(x float64) (string, bool) {
	for _, c := range p {
		if x >= c.X0 && x <= c.X1 {
			return c.Key, true
		}
	}
	return "", false
}

// Has reports whether a column with key was found.
func (p Positions) Has(key string) bool {
	for _, c := range p {
		if c.Key == key {
			return true
		}
	}
	return false
}

func (p *Positions) set(key string, x0, x1 float64) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].X0, (*p)[i].X1 = x0, x1
			return
		}
	}
	*p = append(*p, Column{Key: key, X0: x0, X1: x1})
}

// layout holds what every variant shares: its name, published columns,
// detection dictionary, header phrasing and rows to ignore.
type layout struct {
	name       string
	columns    []string
	indicators *ahocorasick.Matcher
	headers    []*regexp.Regexp
	skip       []*regexp.Regexp
}

func newLayout(name string, columns, indicators []string, headers, skip []string) layout {
	l := layout{
		name:       name,
		columns:    columns,
		indicators: ahocorasick.NewStringMatcher(indicators),
	}
	for _, h := range headers {
		l.headers = append(l.headers, regexp.MustCompile(`(?i)`+h))
	}
	for _, s := range skip {
		l.skip = append(l.skip, regexp.MustCompile(`(?i)`+s))
	}
	return l
}

func (l layout) Name() string { return l.name }

func (l layout) Detect(text string) bool {
	return len(l.indicators.MatchThreadSafe([]byte(strings.ToLower(text)))) > 0
}

func (l layout) FindTable(rows []models.Row) (int, bool) {
	for i, r := range rows {
		text := strings.ToLower(r.Text())
		for _, h := range l.headers {
			if h.MatchString(text) {
				return i, true
			}
		}
	}
	return 0, false
}

func (l layout) skipped(text string) bool {
	for _, s := range l.skip {
		if s.MatchString(text) {
			return true
		}
	}
	return false
}

func (l layout) record(row models.Row) models.BankRecord {
	values := make(map[string]string, len(l.columns))
	for _, c := range l.columns {
		values[c] = ""
	}
	return models.BankRecord{
		Bank:    l.name,
		Columns: append([]string(nil), l.columns...),
		Values:  values,
		Page:    row.Page,
	}
}
