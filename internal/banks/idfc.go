package banks

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/parser"
)

// IDFC layout: Date and Time | Value Date | Transaction Details | Ref/Cheque No | Withdrawals (INR) | Deposits (INR) | Balance (INR)
//
// Rows are read by pattern: "02 Jan 25 10:15 UPI/CR/12345/ACME 500.00 12,500.00 CR".
const (
	idfcDateTime   = "Date_and_Time"
	idfcValueDate  = "Value_Date"
	idfcDetails    = "Transaction_Details"
	idfcRef        = "Ref_Cheque_No"
	idfcWithdrawal = "Withdrawals_INR"
	idfcDeposit    = "Deposits_INR"
	idfcBalance    = "Balance_INR"
)

var (
	idfcDatePattern = regexp.MustCompile(`(?i)(\d{2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{2}(?:\d{2})?)\b\s*(\d{2}:\d{2})?`)
	idfcRefPattern  = regexp.MustCompile(`^\d{9,}$`)
	creditContext   = regexp.MustCompile(`(?i)\b(?:cr|credit)\b`)
	debitContext    = regexp.MustCompile(`(?i)\b(?:dr|debit)\b`)
	sideSuffix      = regexp.MustCompile(`(?i)\s*(cr|dr)$`)
)

// IDFC parses IDFC FIRST Bank statements.
type IDFC struct{ layout }

// NewIDFC returns the IDFC FIRST Bank parser.
func NewIDFC() *IDFC {
	return &IDFC{newLayout("IDFC",
		[]string{idfcDateTime, idfcValueDate, idfcDetails, idfcRef, idfcWithdrawal, idfcDeposit, idfcBalance},
		[]string{"idfc", "idfc first bank", "idfc bank"},
		[]string{
			`date.*time.*value.*transaction.*details.*withdrawals.*deposits.*balance`,
			`date.*value.*particulars.*debit.*credit.*balance`,
		},
		nil,
	)}
}

func (p *IDFC) Positions(models.Row) Positions { return nil }

// ExtractRow reads the date, the trailing amounts and the details
// between them. The last amount is the balance; the one before it is a
// deposit or a withdrawal depending on its CR/DR marker or the wording
// of the details.
func (p *IDFC) ExtractRow(row models.Row, _ Positions) (models.BankRecord, bool) {
	text := row.Text()
	loc := idfcDatePattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return models.BankRecord{}, false
	}

	rec := p.record(row)
	date := text[loc[2]:loc[3]]
	rec.Values[idfcValueDate] = date
	rec.Values[idfcDateTime] = date
	if loc[4] >= 0 {
		rec.Values[idfcDateTime] = date + " " + text[loc[4]:loc[5]]
	}

	rest := text[loc[1]:]
	amounts := parser.ExtractNumbers(rest)
	if len(amounts) == 0 {
		return models.BankRecord{}, false
	}

	details := rest
	if i := strings.Index(rest, amounts[0]); i >= 0 {
		details = rest[:i]
	}
	var words []string
	for _, w := range strings.Fields(details) {
		if rec.Values[idfcRef] == "" && idfcRefPattern.MatchString(w) {
			rec.Values[idfcRef] = w
			continue
		}
		words = append(words, w)
	}
	rec.Values[idfcDetails] = strings.Join(words, " ")

	rec.Values[idfcBalance] = bareAmount(amounts[len(amounts)-1])
	if len(amounts) > 1 {
		movement := amounts[len(amounts)-2]
		switch amountSide(movement, rec.Values[idfcDetails]) {
		case sideCredit:
			rec.Values[idfcDeposit] = bareAmount(movement)
		case sideDebit:
			rec.Values[idfcWithdrawal] = bareAmount(movement)
		}
	}
	return rec, true
}

type side int

const (
	sideUnknown side = iota
	sideDebit
	sideCredit
)

// amountSide reads a trailing CR/DR marker on the amount first, then
// credit or debit wording in context.
func amountSide(amount, context string) side {
	if m := sideSuffix.FindStringSubmatch(amount); m != nil {
		if strings.EqualFold(m[1], "cr") {
			return sideCredit
		}
		return sideDebit
	}
	switch {
	case creditContext.MatchString(context):
		return sideCredit
	case debitContext.MatchString(context):
		return sideDebit
	}
	return sideUnknown
}

// bareAmount drops a CR/DR marker, keeping the figure as printed.
func bareAmount(lit string) string {
	return strings.TrimSpace(sideSuffix.ReplaceAllString(lit, ""))
}
