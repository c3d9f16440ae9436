package models

// Transaction is a normalized statement transaction. Monetary fields are
// nil when absent, which is distinct from an explicit zero. Amount is the
// signed net movement: positive for credits, negative for debits.
type Transaction struct {
	Date            string   `json:"date,omitempty"`
	RawDate         string   `json:"rawDate,omitempty"`
	ValueDate       string   `json:"valueDate,omitempty"`
	Description     string   `json:"description"`
	Debit           *float64 `json:"debit,omitempty"`
	Credit          *float64 `json:"credit,omitempty"`
	Amount          *float64 `json:"amount,omitempty"`
	Balance         *float64 `json:"balance,omitempty"`
	ReferenceID     string   `json:"referenceId,omitempty"`
	TransactionType string   `json:"transactionType,omitempty"`
	Currency        string   `json:"currency,omitempty"`
	Page            int      `json:"page,omitempty"`
	Source          string   `json:"source,omitempty"` // column, fallback, or a bank name
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Value dereferences p, treating nil as zero.
func Value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// HasMovement reports whether the transaction moves money: a non-zero
// debit, credit or amount.
func (t Transaction) HasMovement() bool {
	return Value(t.Debit) != 0 || Value(t.Credit) != 0 || Value(t.Amount) != 0
}

// BankRecord is a row produced by an institution-specific parser, keyed by
// that institution's own column names. Columns keeps the published order.
type BankRecord struct {
	Bank    string            `json:"bank"`
	Columns []string          `json:"columns"`
	Values  map[string]string `json:"values"`
	Page    int               `json:"page,omitempty"`
}

// Get returns the value stored under key, or "".
func (r BankRecord) Get(key string) string {
	if r.Values == nil {
		return ""
	}
	return r.Values[key]
}
