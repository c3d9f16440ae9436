// Package synonyms maps free-form statement header text onto canonical
// transaction fields.
package synonyms

import (
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/unicode/norm"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// Tier identifies which matching stage produced a Match.
type Tier int

const (
	TierExact Tier = iota + 1
	TierSubstring
	TierOverlap
	TierKeyword
	TierFuzzy
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierSubstring:
		return "substring"
	case TierOverlap:
		return "overlap"
	case TierKeyword:
		return "keyword"
	case TierFuzzy:
		return "fuzzy"
	}
	return "none"
}

// Match is a resolved header.
type Match struct {
	Field   models.Field
	Tier    Tier
	Score   float64
	Synonym string
}

const (
	minSubstringScore = 0.5
	minOverlapScore   = 0.3
	minFuzzyLen       = 6
	maxFuzzyDistance  = 1
)

type compiled struct {
	field  models.Field
	phrase string
	words  map[string]struct{}
}

var (
	exactIndex map[string]models.Field
	phrases    []compiled
	fuzzyWords []compiled
)

func init() {
	exactIndex = make(map[string]models.Field)
	for _, e := range lexicon {
		for _, s := range e.Synonyms {
			p := Normalize(s)
			if p == "" {
				continue
			}
			if _, seen := exactIndex[p]; !seen {
				exactIndex[p] = e.Field
			}
			c := compiled{field: e.Field, phrase: p, words: wordSet(p)}
			phrases = append(phrases, c)
			if len([]rune(p)) >= minFuzzyLen && !strings.Contains(p, " ") {
				fuzzyWords = append(fuzzyWords, c)
			}
		}
	}
}

// Normalize canonicalizes header text: NFKC, lowercase, "&" spelled out,
// punctuation (including / - _) turned into spaces, whitespace collapsed.
func Normalize(text string) string {
	s := strings.ToLower(norm.NFKC.String(text))
	s = strings.ReplaceAll(s, "&", " and ")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeHeader returns the canonical field for a raw header string.
// It is total: absence of a match is reported through ok.
func NormalizeHeader(text string) (models.Field, bool) {
	m, ok := Resolve(text)
	return m.Field, ok
}

// Resolve runs the matching tiers and reports the winning candidate.
func Resolve(text string) (Match, bool) {
	clean := Normalize(text)
	if clean == "" {
		return Match{}, false
	}
	if f, ok := exactIndex[clean]; ok {
		return Match{Field: f, Tier: TierExact, Score: 1, Synonym: clean}, true
	}

	var best Match
	headerWords := wordSet(clean)
	cleanLen := len([]rune(clean))
	for _, c := range phrases {
		if strings.Contains(clean, c.phrase) || strings.Contains(c.phrase, clean) {
			score := lengthRatio(cleanLen, len([]rune(c.phrase)))
			if score > best.Score && score > minSubstringScore {
				best = Match{Field: c.field, Tier: TierSubstring, Score: score, Synonym: c.phrase}
			}
		}
		if score := jaccard(headerWords, c.words); score > best.Score && score > minOverlapScore {
			best = Match{Field: c.field, Tier: TierOverlap, Score: score, Synonym: c.phrase}
		}
	}
	if best.Field != models.FieldNone {
		return best, true
	}

	if f, ok := keywordField(clean); ok {
		return Match{Field: f, Tier: TierKeyword}, true
	}

	if cleanLen >= minFuzzyLen && !strings.Contains(clean, " ") {
		for _, c := range fuzzyWords {
			if fuzzy.LevenshteinDistance(clean, c.phrase) <= maxFuzzyDistance {
				return Match{Field: c.field, Tier: TierFuzzy, Synonym: c.phrase}, true
			}
		}
	}
	return Match{}, false
}

func keywordField(clean string) (models.Field, bool) {
	has := func(subs ...string) bool {
		for _, s := range subs {
			if strings.Contains(clean, s) {
				return true
			}
		}
		return false
	}
	switch {
	case has("dt", "date"):
		return models.FieldDate, true
	case has("desc", "particular", "detail"):
		return models.FieldDescription, true
	case has("bal"):
		return models.FieldBalance, true
	case has("amt", "amount"):
		return models.FieldAmount, true
	case has("dr", "debit", "withdraw"):
		return models.FieldDebit, true
	case has("cr", "credit", "deposit"):
		return models.FieldCredit, true
	case has("ref"):
		return models.FieldReferenceID, true
	}
	return models.FieldNone, false
}

func wordSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		out[w] = struct{}{}
	}
	return out
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	if inter == 0 {
		return 0
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}

func lengthRatio(a, b int) float64 {
	if a > b {
		a, b = b, a
	}
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
