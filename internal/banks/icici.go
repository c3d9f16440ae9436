package banks

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/parser"
)

// ICICI layout: Date | Mode | Particulars | Deposits | Withdrawals | Balance
//
// Date format: DD-MM-YYYY
// Example line: "05-01-2025 UPI UPI/ACME STORES/PAYMENT TO 1,250.00 48,750.00"
const (
	iciciDate        = "Date"
	iciciMode        = "Mode"
	iciciParticulars = "Particulars"
	iciciDeposits    = "Deposits"
	iciciWithdrawals = "Withdrawals"
	iciciBalance     = "Balance"
)

var (
	iciciDatePattern = regexp.MustCompile(`\b\d{2}-\d{2}-\d{4}\b`)
	iciciModePattern = regexp.MustCompile(`\b(UPI|BIL/NEFT|CASH|CHQ|IMPS|RTGS|ATM|POS)\b`)
	inboundWords     = regexp.MustCompile(`(?i)\b(?:from|credit)\b`)
	outboundWords    = regexp.MustCompile(`(?i)\b(?:to|debit)\b`)
)

// ICICI parses ICICI Bank statements.
type ICICI struct{ layout }

// NewICICI returns the ICICI Bank parser.
func NewICICI() *ICICI {
	return &ICICI{newLayout("ICICI",
		[]string{iciciDate, iciciMode, iciciParticulars, iciciDeposits, iciciWithdrawals, iciciBalance},
		[]string{"icici", "icici bank", "industrial credit and investment corporation"},
		[]string{
			`date.*mode.*particulars.*deposits.*withdrawals.*balance`,
			`date.*description.*debit.*credit.*balance`,
		},
		nil,
	)}
}

func (p *ICICI) Positions(models.Row) Positions { return nil }

func (p *ICICI) ExtractRow(row models.Row, _ Positions) (models.BankRecord, bool) {
	text := row.Text()
	date := iciciDatePattern.FindString(text)
	if date == "" {
		return models.BankRecord{}, false
	}
	rest := strings.Replace(text, date, "", 1)
	amounts := parser.ExtractNumbers(rest)
	if len(amounts) == 0 {
		return models.BankRecord{}, false
	}

	rec := p.record(row)
	rec.Values[iciciDate] = date
	if m := iciciModePattern.FindString(rest); m != "" {
		rec.Values[iciciMode] = m
		rest = strings.Replace(rest, m, "", 1)
	}

	trailing := amounts
	if len(trailing) > 3 {
		trailing = trailing[len(trailing)-3:]
	}
	particulars := rest
	for i := len(trailing) - 1; i >= 0; i-- {
		if at := strings.LastIndex(particulars, trailing[i]); at >= 0 {
			particulars = particulars[:at] + particulars[at+len(trailing[i]):]
		}
	}
	rec.Values[iciciParticulars] = strings.Join(strings.Fields(particulars), " ")

	n := len(trailing)
	rec.Values[iciciBalance] = bareAmount(trailing[n-1])
	switch n {
	case 3:
		rec.Values[iciciDeposits] = bareAmount(trailing[0])
		rec.Values[iciciWithdrawals] = bareAmount(trailing[1])
	case 2:
		movement := trailing[0]
		switch iciciSide(movement, rec.Values[iciciParticulars]) {
		case sideCredit:
			rec.Values[iciciDeposits] = bareAmount(movement)
		case sideDebit:
			rec.Values[iciciWithdrawals] = bareAmount(movement)
		}
	}
	return rec, true
}

// iciciSide prefers a CR/DR marker on the figure, then the direction words
// ICICI puts in particulars ("PAYMENT FROM", "TRANSFER TO").
func iciciSide(amount, particulars string) side {
	if s := amountSide(amount, ""); s != sideUnknown {
		return s
	}
	switch {
	case inboundWords.MatchString(particulars):
		return sideCredit
	case outboundWords.MatchString(particulars):
		return sideDebit
	}
	return sideUnknown
}
