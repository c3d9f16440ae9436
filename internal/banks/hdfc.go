package banks

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/parser"
)

// HDFC layout: Date | Narration | Chq./Ref.No. | Value Dt | Withdrawal Amt. | Deposit Amt. | Closing Balance
//
// Columns are positional. Amount cells hold a single figure, dates are
// DD/MM/YYYY.
const (
	hdfcDate       = "Date"
	hdfcNarration  = "Narration"
	hdfcRef        = "Chq_Ref_No"
	hdfcValueDate  = "Value_Date"
	hdfcWithdrawal = "Withdrawal_Amount"
	hdfcDeposit    = "Deposit_Amount"
	hdfcBalance    = "Closing_Balance"
)

var hdfcDatePattern = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)

// HDFC parses HDFC Bank statements.
type HDFC struct{ layout }

// NewHDFC returns the HDFC Bank parser.
func NewHDFC() *HDFC {
	return &HDFC{newLayout("HDFC",
		[]string{hdfcDate, hdfcNarration, hdfcRef, hdfcValueDate, hdfcWithdrawal, hdfcDeposit, hdfcBalance},
		[]string{"hdfc", "hdfc bank", "housing development finance corporation"},
		[]string{
			`date.*narration.*ref.*value.*withdrawal.*deposit.*balance`,
			`date.*description.*reference.*amount.*balance`,
		},
		[]string{
			`date.*narration`, `opening.*balance`, `total.*amount`,
			`page.*\d+`, `statement.*period`, `account.*summary`,
		},
	)}
}

// Positions maps header labels to padded column ranges. Narration and
// reference cells run wider than their labels.
func (p *HDFC) Positions(header models.Row) Positions {
	var pos Positions
	for _, cell := range parser.GroupTokens(header.Tokens, parser.DefaultMaxGroup) {
		text := strings.ToLower(cell.Text)
		x0 := cell.X0 - 10
		if x0 < 0 {
			x0 = 0
		}
		switch {
		case strings.Contains(text, "date") && !strings.Contains(text, "value"):
			pos.set(hdfcDate, x0, cell.X1+10)
		case strings.Contains(text, "narration"), strings.Contains(text, "description"):
			pos.set(hdfcNarration, x0, cell.X1+50)
		case strings.Contains(text, "ref"), strings.Contains(text, "chq"):
			pos.set(hdfcRef, x0, cell.X1+20)
		case strings.Contains(text, "value") && (strings.Contains(text, "date") || strings.Contains(text, "dt")):
			pos.set(hdfcValueDate, x0, cell.X1+10)
		case strings.Contains(text, "withdrawal"):
			pos.set(hdfcWithdrawal, x0, cell.X1+10)
		case strings.Contains(text, "deposit"):
			pos.set(hdfcDeposit, x0, cell.X1+10)
		case strings.Contains(text, "balance") && !strings.Contains(text, "opening"):
			pos.set(hdfcBalance, x0, cell.X1+10)
		}
	}
	return pos
}

// ExtractRow places each word by its left edge. A row needs a date and a
// positive withdrawal or deposit.
func (p *HDFC) ExtractRow(row models.Row, pos Positions) (models.BankRecord, bool) {
	text := row.Text()
	if !p.transactionRow(text) {
		return models.BankRecord{}, false
	}

	rec := p.record(row)
	var withdrawal, deposit, balance decimal.Decimal
	var narration, ref []string
	for _, tok := range row.Tokens {
		word := strings.TrimSpace(tok.Text)
		key, ok := pos.Find(tok.X0)
		if !ok || word == "" {
			continue
		}
		switch key {
		case hdfcDate:
			if rec.Values[hdfcDate] == "" && hdfcDatePattern.MatchString(word) {
				rec.Values[hdfcDate] = word
			}
		case hdfcValueDate:
			if rec.Values[hdfcValueDate] == "" && hdfcDatePattern.MatchString(word) {
				rec.Values[hdfcValueDate] = word
			}
		case hdfcNarration:
			narration = append(narration, word)
		case hdfcRef:
			ref = append(ref, word)
		case hdfcWithdrawal:
			if v, ok := parser.ParseAmount(word); ok && v > 0 {
				withdrawal = decimal.NewFromFloat(v)
			}
		case hdfcDeposit:
			if v, ok := parser.ParseAmount(word); ok && v > 0 {
				deposit = decimal.NewFromFloat(v)
			}
		case hdfcBalance:
			if v, ok := parser.ParseAmount(word); ok {
				balance = decimal.NewFromFloat(v)
			}
		}
	}
	rec.Values[hdfcNarration] = strings.Join(narration, " ")
	rec.Values[hdfcRef] = strings.Join(ref, " ")
	rec.Values[hdfcWithdrawal] = withdrawal.StringFixed(2)
	rec.Values[hdfcDeposit] = deposit.StringFixed(2)
	rec.Values[hdfcBalance] = balance.StringFixed(2)

	if rec.Values[hdfcDate] == "" || (!withdrawal.IsPositive() && !deposit.IsPositive()) {
		return models.BankRecord{}, false
	}
	return rec, true
}

func (p *HDFC) transactionRow(text string) bool {
	if _, ok := parser.ParseDate(text); !ok {
		return false
	}
	if !strings.ContainsAny(text, "0123456789") {
		return false
	}
	return !p.skipped(strings.ToLower(text))
}
