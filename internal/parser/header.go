package parser

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/synonyms"
)

// Reasons the column path gives up and hands over to the fallback.
var (
	ErrNoHeader       = errors.New("no header row found")
	ErrNoBands        = errors.New("header produced no usable bands")
	ErrTooManyBands   = errors.New("header produced too many bands")
	ErrNoTransactions = errors.New("column pass found no transactions")
)

var (
	emailPattern    = regexp.MustCompile(`[^\s@]+@[^\s@]+\.[^\s@]+`)
	digitRunPattern = regexp.MustCompile(`\d{6,}`)
)

// HeaderCell is a header token (or merged phrase) resolved to a field.
type HeaderCell struct {
	Field models.Field
	Token models.Token
}

// HeaderMatch is the accepted header row.
type HeaderMatch struct {
	Index  int
	Score  int
	Fields []models.Field
	Cells  []HeaderCell
}

type headerScore struct {
	score  int
	fields []models.Field
	cells  []HeaderCell
}

func (h headerScore) has(pred func(models.Field) bool) bool {
	for _, f := range h.fields {
		if pred(f) {
			return true
		}
	}
	return false
}

func (h headerScore) accepted(opts Options) bool {
	return len(h.fields) >= opts.HeaderMinFields &&
		h.has(models.Field.IsDateRole) &&
		h.score >= opts.HeaderAcceptScore
}

// FindHeader scans the leading rows for the best-scoring header. Ties
// keep the earliest row.
func FindHeader(rows []models.Row, opts Options) (HeaderMatch, bool) {
	opts = opts.withDefaults()
	limit := int(math.Ceil(opts.HeaderScanFraction * float64(len(rows))))
	if limit < opts.HeaderScanMinRows {
		limit = opts.HeaderScanMinRows
	}
	if limit > len(rows) {
		limit = len(rows)
	}

	best, found := HeaderMatch{}, false
	for i := 0; i < limit; i++ {
		h := scoreHeaderRow(rows[i], opts)
		if !h.accepted(opts) {
			continue
		}
		if !found || h.score > best.Score {
			best = HeaderMatch{Index: i, Score: h.score, Fields: h.fields, Cells: h.cells}
			found = true
		}
	}
	if found {
		opts.log().WithField("row", best.Index).WithField("score", best.Score).
			Debugf("header found: %s", fieldNames(best.Fields))
	}
	return best, found
}

// headerCells resolves the row's phrase groups. Merged phrases are only
// trusted on an exact lexicon hit: each group is read left to right, taking
// the longest exact span at every position and resolving a word alone when
// no span of two or more matches.
func headerCells(row models.Row, opts Options) []HeaderCell {
	var cells []HeaderCell
	for _, group := range groupTokens(row.Tokens, opts.MaxGroup) {
		sort.SliceStable(group, func(a, b int) bool { return group[a].X0 < group[b].X0 })
		for i := 0; i < len(group); {
			if cell, n, ok := exactSpan(group[i:]); ok {
				cells = append(cells, cell)
				i += n
				continue
			}
			if f, ok := synonyms.NormalizeHeader(group[i].Text); ok {
				cells = append(cells, HeaderCell{Field: f, Token: group[i]})
			}
			i++
		}
	}
	return cells
}

// exactSpan finds the longest prefix of at least two tokens whose merged
// text is an exact lexicon entry.
func exactSpan(tokens []models.Token) (HeaderCell, int, bool) {
	for n := len(tokens); n > 1; n-- {
		merged := mergeTokens(tokens[:n])
		if m, ok := synonyms.Resolve(merged.Text); ok && m.Tier == synonyms.TierExact {
			return HeaderCell{Field: m.Field, Token: merged}, n, true
		}
	}
	return HeaderCell{}, 0, false
}

func scoreHeaderRow(row models.Row, opts Options) headerScore {
	h := headerScore{cells: headerCells(row, opts)}
	seen := make(map[models.Field]bool)
	for _, c := range h.cells {
		if !seen[c.Field] {
			seen[c.Field] = true
			h.fields = append(h.fields, c.Field)
		}
	}

	h.score = 2 * len(h.cells)
	if seen[models.FieldDate] {
		h.score += 5
	}
	if h.has(models.Field.IsBalanceRole) {
		h.score += 3
	}
	if h.has(models.Field.IsAmountRole) {
		h.score += 3
	}
	if h.has(models.Field.IsDescriptionRole) {
		h.score += 3
	}
	if n := len(h.fields); n >= 5 && n <= 7 {
		h.score += 3
	}

	for _, t := range row.Tokens {
		text := strings.TrimSpace(t.Text)
		if _, ok := ParseAmount(text); ok {
			h.score -= 8
		}
		if emailPattern.MatchString(text) || digitRunPattern.MatchString(text) {
			h.score -= 8
		}
	}
	h.score -= 8 * len(datePattern.FindAllString(row.Text(), -1))
	if len(h.fields) > 15 {
		h.score -= 10
	}
	return h
}

func fieldNames(fields []models.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.String()
	}
	return out
}
