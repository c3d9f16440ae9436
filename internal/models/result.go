package models

// Strategy names the path that produced a result.
type Strategy string

const (
	StrategyColumn   Strategy = "column"
	StrategyFallback Strategy = "fallback"
	StrategyNone     Strategy = "none"
)

// BankStrategy is the strategy label used when an institution parser ran.
func BankStrategy(bank string) Strategy { return Strategy("bank:" + bank) }

// RunMetadata describes how a statement was parsed.
type RunMetadata struct {
	TotalPages           int      `json:"totalPages"`
	TransactionPages     []int    `json:"transactionPages"`
	HeaderFieldsDetected []string `json:"headerFieldsDetected"`
	ParseStrategyUsed    Strategy `json:"parseStrategyUsed"`
	FallbackReason       string   `json:"fallbackReason,omitempty"`
	OpeningBalance       *float64 `json:"openingBalance,omitempty"`
	RightToLeft          bool     `json:"rightToLeft,omitempty"`
}

// Diagnostics summarises why nothing was extracted from a document.
type Diagnostics struct {
	DateRows            int `json:"dateRows"`
	NumberRows          int `json:"numberRows"`
	CandidateHeaderRows int `json:"candidateHeaderRows"`
}

// AccountInfo is the account metadata printed around the table.
type AccountInfo struct {
	Holder     string `json:"holder,omitempty"`
	Number     string `json:"number,omitempty"`
	PeriodFrom string `json:"periodFrom,omitempty"`
	PeriodTo   string `json:"periodTo,omitempty"`
}

// IsZero reports whether nothing was found.
func (a AccountInfo) IsZero() bool { return a == AccountInfo{} }

// Result is the outcome of parsing one statement.
type Result struct {
	Bank         string        `json:"bank,omitempty"`
	Account      *AccountInfo  `json:"account,omitempty"`
	Transactions []Transaction `json:"transactions"`
	Records      []BankRecord  `json:"records,omitempty"`
	Metadata     RunMetadata   `json:"metadata"`
	Diagnostics  *Diagnostics  `json:"diagnostics,omitempty"`
}
