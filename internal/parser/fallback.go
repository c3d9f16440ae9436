package parser

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

var (
	longDigitsPattern      = regexp.MustCompile(`\d{9,}`)
	crDrPattern            = regexp.MustCompile(`(?i)\b(?:cr|dr)\b`)
	formattedAmountPattern = regexp.MustCompile(`\b\d{1,3}(?:,\d{3})*\.\d{2}\b`)
)

const maxPatternBonus = 20

// ScoreFallbackRow rates how transaction-like a row is without any column
// information.
func ScoreFallbackRow(row models.Row) int {
	text := row.Text()
	score := 0

	rest := text
	if lit, ok := ParseDate(text); ok {
		score += 8
		rest = strings.Replace(text, lit, " ", 1)
	}
	switch n := len(ExtractNumbers(rest)); {
	case n >= 2:
		score += 10
	case n == 1:
		score += 5
	}
	if domainWords.any(text) {
		score += 8
	}

	bonus := 0
	if longDigitsPattern.MatchString(text) {
		bonus += 5
	}
	if crDrPattern.MatchString(text) {
		bonus += 5
	}
	if formattedAmountPattern.MatchString(text) {
		bonus += 10
	}
	score += min(bonus, maxPatternBonus)

	switch n := len(row.Tokens); {
	case n >= 6:
		score += 5
	case n >= 4:
		score += 3
	}
	score -= 3 * nonTransactionWords.count(text)
	return score
}

// FallbackParse extracts transactions row by row from date, number and
// keyword evidence. Used when the column path fails.
func FallbackParse(rows []models.Row, opts Options) []models.Transaction {
	opts = opts.withDefaults()
	var (
		txns []models.Transaction
		prev *float64
	)
	for _, row := range rows {
		if ScoreFallbackRow(row) < opts.FallbackScore {
			continue
		}
		txn, ok := fallbackTransaction(row, prev)
		if txn.Balance != nil {
			prev = txn.Balance
		}
		if ok {
			txns = append(txns, txn)
		}
	}
	sortByDate(txns)
	backfillBalances(txns)
	opts.log().WithField("transactions", len(txns)).Debug("fallback pass finished")
	return txns
}

func fallbackTransaction(row models.Row, prev *float64) (models.Transaction, bool) {
	text := row.Text()
	txn := models.Transaction{Page: row.Page, Source: string(models.StrategyFallback)}

	rest := text
	if lit, ok := ParseDate(text); ok {
		txn.RawDate = lit
		txn.Date = ISODate(lit)
		rest = strings.Replace(text, lit, " ", 1)
	}

	lits := ExtractNumbers(rest)
	var nums []float64
	for _, lit := range lits {
		v, _ := ParseAmount(lit)
		nums = append(nums, v)
		rest = strings.Replace(rest, lit, " ", 1)
	}
	txn.Description = strings.Join(strings.Fields(rest), " ")
	if len(nums) == 0 {
		return txn, false
	}
	for _, lit := range lits {
		if code, ok := ExtractCurrency(lit); ok {
			txn.Currency = code
			break
		}
	}

	switch len(nums) {
	case 1:
		v := nums[0]
		if prev != nil {
			txn.Balance = models.Float(v)
			delta := decimal.NewFromFloat(v).Sub(decimal.NewFromFloat(*prev)).Round(2).InexactFloat64()
			if delta != 0 {
				s := sideCredit
				if delta < 0 {
					s = sideDebit
				}
				setSide(&txn, s, math.Abs(delta))
			}
		} else {
			s := keywordSide(text)
			if s == sideUnknown {
				s = signSide(v)
			}
			setSide(&txn, s, math.Abs(v))
		}
	case 2:
		bi := largestIndex(nums)
		bal, amt := nums[bi], nums[1-bi]
		txn.Balance = models.Float(bal)
		if amt != 0 {
			setSide(&txn, pickSide(amt, bal, prev, text), math.Abs(amt))
		}
	default:
		bi := largestIndex(nums)
		bal := nums[bi]
		txn.Balance = models.Float(bal)
		var others []float64
		for i, v := range nums {
			if i != bi && v != 0 {
				others = append(others, v)
			}
		}
		if len(others) > 2 {
			others = others[len(others)-2:]
		}
		sides := make([]side, len(others))
		for i, v := range others {
			sides[i] = pickSideStrict(v, bal, prev, text)
		}
		if len(others) == 2 {
			switch {
			case sides[0] != sideUnknown && sides[1] == sideUnknown:
				sides[1] = opposite(sides[0])
			case sides[1] != sideUnknown && sides[0] == sideUnknown:
				sides[0] = opposite(sides[1])
			case sides[0] == sides[1] && others[0] > 0 && others[1] > 0:
				sides[0], sides[1] = sideDebit, sideCredit
			}
		}
		for i, v := range others {
			s := sides[i]
			if s == sideUnknown {
				s = signSide(v)
			}
			if s == sideDebit {
				txn.Debit = models.Float(round2(models.Value(txn.Debit) + math.Abs(v)))
			} else {
				txn.Credit = models.Float(round2(models.Value(txn.Credit) + math.Abs(v)))
			}
		}
		if txn.Debit != nil || txn.Credit != nil {
			txn.Amount = models.Float(round2(models.Value(txn.Credit) - models.Value(txn.Debit)))
		}
	}

	anchored := txn.Date != "" || len(txn.Description) >= 3
	return txn, anchored && txn.HasMovement()
}

// pickSide decides a lone amount's side: balance agreement, then context
// words, then the literal sign.
func pickSide(amt, bal float64, prev *float64, text string) side {
	if amt < 0 {
		return sideDebit
	}
	if prev != nil {
		if s := balanceSide(amt, bal, *prev); s != sideUnknown {
			return s
		}
	}
	if s := keywordSide(text); s != sideUnknown {
		return s
	}
	return signSide(amt)
}

// pickSideStrict is pickSide with keywords ahead of balance agreement and
// no sign default.
func pickSideStrict(v, bal float64, prev *float64, text string) side {
	if v < 0 {
		return sideDebit
	}
	if s := keywordSide(text); s != sideUnknown {
		return s
	}
	if prev != nil {
		return balanceSide(v, bal, *prev)
	}
	return sideUnknown
}

func opposite(s side) side {
	if s == sideDebit {
		return sideCredit
	}
	return sideDebit
}

func signSide(v float64) side {
	if v < 0 {
		return sideDebit
	}
	return sideCredit
}

// largestIndex returns the index of the largest magnitude, preferring the
// later value on ties since balances sit in the rightmost column.
func largestIndex(nums []float64) int {
	best := 0
	for i, v := range nums {
		if math.Abs(v) >= math.Abs(nums[best]) {
			best = i
		}
	}
	return best
}

// sortByDate moves dated transactions ahead in chronological order;
// undated ones keep their relative order after them.
func sortByDate(txns []models.Transaction) {
	type keyed struct {
		unix  int64
		dated bool
	}
	keys := make(map[int]keyed, len(txns))
	idx := make([]int, len(txns))
	for i := range txns {
		idx[i] = i
		if t, ok := NormalizeDate(txns[i].RawDate); ok {
			keys[i] = keyed{unix: t.Unix(), dated: true}
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if ka.dated != kb.dated {
			return ka.dated
		}
		return ka.dated && ka.unix < kb.unix
	})
	sorted := make([]models.Transaction, len(txns))
	for i, j := range idx {
		sorted[i] = txns[j]
	}
	copy(txns, sorted)
}

// backfillBalances fills a missing balance from the previous balance plus
// the signed amount.
func backfillBalances(txns []models.Transaction) {
	for i := 1; i < len(txns); i++ {
		cur, prev := &txns[i], txns[i-1]
		if cur.Balance != nil || prev.Balance == nil || cur.Amount == nil {
			continue
		}
		sum := decimal.NewFromFloat(*prev.Balance).Add(decimal.NewFromFloat(*cur.Amount)).Round(2)
		cur.Balance = models.Float(sum.InexactFloat64())
	}
}
