package parser

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// OutcomeKind is what a row below the header turned out to be.
type OutcomeKind int

const (
	RowNoise OutcomeKind = iota
	RowTransaction
	RowBalanceOnly
	RowContinuation
)

func (k OutcomeKind) String() string {
	switch k {
	case RowTransaction:
		return "transaction"
	case RowBalanceOnly:
		return "balance"
	case RowContinuation:
		return "continuation"
	}
	return "noise"
}

// Outcome is the classification of one row.
type Outcome struct {
	Kind        OutcomeKind
	Score       int
	Transaction models.Transaction
	Balance     *float64
	Text        string
}

// balanceTolerance is how close a balance must land for a debit/credit
// hypothesis to count as agreeing.
const balanceTolerance = 0.015

// role collapses band fields onto the record slot they fill.
func role(f models.Field) models.Field {
	switch {
	case f.IsDebitRole():
		return models.FieldDebit
	case f.IsCreditRole():
		return models.FieldCredit
	case f.IsBalanceRole():
		return models.FieldBalance
	case f.IsDescriptionRole():
		return models.FieldDescription
	case f == models.FieldCheckNumber:
		return models.FieldReferenceID
	}
	return f
}

// rowValues splits a row into per-slot text. Tokens outside every band
// overflow into Description.
func rowValues(row models.Row, bands Bands) map[models.Field]string {
	parts := make(map[models.Field][]string)
	for _, t := range row.Tokens {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		f, ok := bands.Assign(t.CenterX())
		if !ok {
			f = models.FieldDescription
		}
		slot := role(f)
		parts[slot] = append(parts[slot], text)
	}
	values := make(map[models.Field]string, len(parts))
	for f, p := range parts {
		if bands.RTL {
			for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
				p[i], p[j] = p[j], p[i]
			}
		}
		values[f] = strings.Join(p, " ")
	}
	return values
}

func scoreValues(row models.Row, values map[models.Field]string) int {
	score := 0
	if _, ok := ParseDate(values[models.FieldDate]); ok {
		score += 5
	}
	for _, f := range []models.Field{models.FieldDebit, models.FieldCredit, models.FieldAmount} {
		if _, ok := ParseAmount(values[f]); ok {
			score += 3
		}
	}
	for _, t := range row.Tokens {
		if _, ok := ParseAmount(t.Text); ok {
			score++
			break
		}
	}
	if len(values[models.FieldDescription]) > 5 {
		score += 2
	}
	return score
}

// ClassifyRow scores a row against the bands and, when it qualifies,
// builds its transaction. prevBalance is the running balance before the
// row; nil means unknown.
func ClassifyRow(row models.Row, bands Bands, prevBalance *float64) Outcome {
	return classifyRow(row, bands, prevBalance, DefaultOptions())
}

func classifyRow(row models.Row, bands Bands, prevBalance *float64, opts Options) Outcome {
	values := rowValues(row, bands)
	score := scoreValues(row, values)
	desc := strings.Join(strings.Fields(values[models.FieldDescription]), " ")

	if score < opts.TransactionScore {
		if desc == "" || isSummaryLine(row.Text()) {
			return Outcome{Kind: RowNoise, Score: score}
		}
		return Outcome{Kind: RowContinuation, Score: score, Text: desc}
	}

	txn := models.Transaction{
		Description:     desc,
		ReferenceID:     values[models.FieldReferenceID],
		TransactionType: values[models.FieldTransactionType],
		Page:            row.Page,
		Source:          string(models.StrategyColumn),
	}
	if raw := strings.TrimSpace(values[models.FieldDate]); raw != "" {
		if lit, ok := ParseDate(raw); ok {
			raw = lit
		}
		txn.RawDate = raw
		txn.Date = ISODate(raw)
	}
	if raw := strings.TrimSpace(values[models.FieldValueDate]); raw != "" {
		txn.ValueDate = ISODate(raw)
	}
	if v, ok := ParseAmount(values[models.FieldBalance]); ok {
		txn.Balance = models.Float(v)
	}
	if v, ok := ParseAmount(values[models.FieldDebit]); ok && v != 0 {
		txn.Debit = models.Float(math.Abs(v))
	}
	if v, ok := ParseAmount(values[models.FieldCredit]); ok && v != 0 {
		txn.Credit = models.Float(math.Abs(v))
	}

	switch {
	case txn.Debit != nil || txn.Credit != nil:
		txn.Amount = models.Float(round2(models.Value(txn.Credit) - models.Value(txn.Debit)))
	default:
		if v, ok := ParseAmount(values[models.FieldAmount]); ok && v != 0 {
			resolveAmount(&txn, v, prevBalance, row.Text())
		}
	}

	txn.Currency = values[models.FieldCurrency]
	if txn.Currency == "" {
		for _, f := range []models.Field{models.FieldAmount, models.FieldDebit, models.FieldCredit, models.FieldBalance} {
			if code, ok := ExtractCurrency(values[f]); ok {
				txn.Currency = code
				break
			}
		}
	}

	anchored := txn.Date != "" || len(txn.Description) >= 3
	switch {
	case anchored && txn.HasMovement():
		return Outcome{Kind: RowTransaction, Score: score, Transaction: txn, Balance: txn.Balance}
	case anchored && txn.Balance != nil:
		return Outcome{Kind: RowBalanceOnly, Score: score, Balance: txn.Balance, Transaction: txn}
	}
	return Outcome{Kind: RowNoise, Score: score}
}

// resolveAmount sides a single combined amount: by the running balance
// delta, then by context words, then by the literal sign. A zero delta
// leaves the row without movement, so it classifies as balance-only.
func resolveAmount(txn *models.Transaction, amount float64, prev *float64, text string) {
	if txn.Balance != nil && prev != nil {
		delta := decimal.NewFromFloat(*txn.Balance).Sub(decimal.NewFromFloat(*prev)).Round(2)
		if delta.IsZero() {
			return
		}
		d := delta.InexactFloat64()
		if d > 0 {
			txn.Credit = models.Float(d)
		} else {
			txn.Debit = models.Float(-d)
		}
		txn.Amount = models.Float(d)
		return
	}
	s := keywordSide(text)
	if s == sideUnknown {
		s = sideCredit
		if amount < 0 {
			s = sideDebit
		}
	}
	setSide(txn, s, math.Abs(amount))
}

func setSide(txn *models.Transaction, s side, abs float64) {
	if s == sideDebit {
		txn.Debit = models.Float(abs)
		txn.Amount = models.Float(-abs)
		return
	}
	txn.Credit = models.Float(abs)
	txn.Amount = models.Float(abs)
}

// balanceSide checks which movement reconciles prev with bal.
func balanceSide(amount, bal, prev float64) side {
	debitDiff := math.Abs((prev - amount) - bal)
	creditDiff := math.Abs((prev + amount) - bal)
	switch {
	case debitDiff < balanceTolerance && creditDiff >= balanceTolerance:
		return sideDebit
	case creditDiff < balanceTolerance && debitDiff >= balanceTolerance:
		return sideCredit
	case debitDiff < balanceTolerance && creditDiff < balanceTolerance:
		if debitDiff <= creditDiff {
			return sideDebit
		}
		return sideCredit
	}
	return sideUnknown
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
