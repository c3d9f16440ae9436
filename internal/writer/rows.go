// Package writer exports parse results as CSV or XLSX.
package writer

import (
	"sort"
	"strconv"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// Row is one exported transaction. The numeric values are kept next to
// their rendered text for spreadsheet output.
type Row struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Debit       string `csv:"Debit"`
	Credit      string `csv:"Credit"`
	Balance     string `csv:"Balance"`
	Reference   string `csv:"Reference"`
	Currency    string `csv:"Currency"`

	DebitValue   *float64 `csv:"-"`
	CreditValue  *float64 `csv:"-"`
	BalanceValue *float64 `csv:"-"`
}

// Rows flattens the result's transactions, ordered by date with undated
// rows last. Transactions sharing a date keep their statement order.
func Rows(res models.Result) []Row {
	out := make([]Row, 0, len(res.Transactions))
	for _, tx := range res.Transactions {
		date := tx.Date
		if date == "" {
			date = tx.RawDate
		}
		out = append(out, Row{
			Date:         date,
			Description:  tx.Description,
			Debit:        formatAmount(tx.Debit),
			Credit:       formatAmount(tx.Credit),
			Balance:      formatAmount(tx.Balance),
			Reference:    tx.ReferenceID,
			Currency:     tx.Currency,
			DebitValue:   tx.Debit,
			CreditValue:  tx.Credit,
			BalanceValue: tx.Balance,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Date, out[j].Date
		if (a == "") != (b == "") {
			return a != ""
		}
		return a < b
	})
	return out
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

// Totals are the debit and credit sums of a set of rows.
type Totals struct {
	Count    int
	Debit    decimal.Decimal
	Credit   decimal.Decimal
	Currency string
}

// Sum adds up rows in decimal arithmetic.
func Sum(rows []Row) Totals {
	t := Totals{Count: len(rows), Debit: decimal.Zero, Credit: decimal.Zero}
	for _, r := range rows {
		if r.DebitValue != nil {
			t.Debit = t.Debit.Add(decimal.NewFromFloat(*r.DebitValue))
		}
		if r.CreditValue != nil {
			t.Credit = t.Credit.Add(decimal.NewFromFloat(*r.CreditValue))
		}
		if t.Currency == "" {
			t.Currency = r.Currency
		}
	}
	return t
}

// FormatTotal renders d in currency's own notation, or as a plain
// two-decimal figure when the code is empty or unknown.
func FormatTotal(d decimal.Decimal, currency string) string {
	c := money.GetCurrency(currency)
	if currency == "" || c == nil {
		return d.StringFixed(2)
	}
	minor := d.Shift(int32(c.Fraction)).Round(0).IntPart()
	return money.New(minor, c.Code).Display()
}
