package parser

import (
	"regexp"

	"github.com/cloudflare/ahocorasick"

	"github.com/insightdelivered/statement-extractor/internal/synonyms"
)

// keywordSet is a whole-word dictionary over normalized text. Each entry
// is padded with spaces so "dr" does not fire inside "address".
type keywordSet struct {
	m *ahocorasick.Matcher
}

func newKeywordSet(words ...string) keywordSet {
	padded := make([]string, len(words))
	for i, w := range words {
		padded[i] = " " + synonyms.Normalize(w) + " "
	}
	return keywordSet{m: ahocorasick.NewStringMatcher(padded)}
}

// count reports how many distinct entries occur in text.
func (k keywordSet) count(text string) int {
	return len(k.m.MatchThreadSafe([]byte(" " + synonyms.Normalize(text) + " ")))
}

func (k keywordSet) any(text string) bool { return k.count(text) > 0 }

var (
	debitWords = newKeywordSet(
		"debit", "withdrawal", "withdrawn", "dr", "wdl", "atm", "pos", "purchase",
		"card payment", "direct debit", "standing order", "payment to", "paid to",
		"transfer to", "transfer out", "fee", "charge", "charges", "emi", "bill",
	)
	creditWords = newKeywordSet(
		"credit", "deposit", "deposited", "cr", "salary", "refund", "interest",
		"received", "received from", "transfer from", "transfer in", "cash deposit",
		"dividend", "reversal", "cashback",
	)
	domainWords = newKeywordSet(
		"upi", "neft", "imps", "rtgs", "atm", "pos", "ach", "nach", "ecs", "salary",
		"transfer", "payment", "deposit", "withdrawal", "cheque", "chq", "cash",
		"card", "emi", "interest", "charges", "refund", "bill", "debit", "credit",
		"direct debit", "standing order", "purchase",
	)
	nonTransactionWords = newKeywordSet(
		"statement", "summary", "ifsc", "micr", "branch", "address", "customer",
		"account number", "account no", "nominee", "email", "phone", "period",
		"generated", "page", "total", "opening balance", "closing balance",
	)
)

// summaryPatterns match whole page furniture lines over normalized text:
// page counters, totals, carried balances and statement headings. Words
// such as "total" inside narration do not count.
var summaryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^page \d+( of \d+)?$`),
	regexp.MustCompile(`^(sub ?)?totals?($| \d| (paid|payments?|receipts?|debits?|credits?|withdrawals?|deposits?|amount|balance|for|of)\b)`),
	regexp.MustCompile(`\b(brought|carried) forward\b`),
	regexp.MustCompile(`^bal(ance)? [bc] f\b`),
	regexp.MustCompile(`^statement (period|of account|summary|date)\b`),
	regexp.MustCompile(`^continued\b|\bcontinued (on|from|overleaf)\b`),
	regexp.MustCompile(`^(opening|closing) balance\b`),
}

func isSummaryLine(text string) bool {
	clean := synonyms.Normalize(text)
	for _, p := range summaryPatterns {
		if p.MatchString(clean) {
			return true
		}
	}
	return false
}

type side int

const (
	sideUnknown side = iota
	sideDebit
	sideCredit
)

// keywordSide reads debit/credit context words. Mixed evidence is unknown.
func keywordSide(text string) side {
	d, c := debitWords.any(text), creditWords.any(text)
	switch {
	case d && !c:
		return sideDebit
	case c && !d:
		return sideCredit
	}
	return sideUnknown
}
