package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

var (
	accountNumberPattern = regexp.MustCompile(`(?i)\b(?:a/c|account|acct)\.?\s*(?:no|number|num|#)?\.?\s*:?\s*([x*\d][x*\d\-]{4,22}\d)`)
	holderLabels         = []string{"account holder", "account name", "customer name", "name"}
	periodWords          = []string{"period", "from", "between"}
)

// accountScanRows bounds how far into the document metadata is searched.
const accountScanRows = 40

// AccountDetails reads the holder, account number and statement period
// from the rows preceding and around the table.
func AccountDetails(rows []models.Row) models.AccountInfo {
	var info models.AccountInfo
	if len(rows) > accountScanRows {
		rows = rows[:accountScanRows]
	}
	for _, r := range rows {
		text := r.Text()
		if info.Number == "" {
			info.Number = findAccountNumber(text)
		}
		if info.Holder == "" {
			info.Holder = nameNearLabel(text)
		}
		if info.PeriodFrom == "" {
			info.PeriodFrom, info.PeriodTo = findPeriod(text)
		}
	}
	return info
}

func findAccountNumber(text string) string {
	m := accountNumberPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	num := strings.TrimSpace(m[1])
	digits := 0
	for _, r := range num {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 4 {
		return ""
	}
	return num
}

// nameNearLabel takes the text after a "Name:" style label.
func nameNearLabel(text string) string {
	lower := strings.ToLower(text)
	if len(lower) != len(text) {
		lower = text
	}
	for _, label := range holderLabels {
		idx := strings.Index(lower, label)
		// a bare "Name:" must open the line, "Branch name:" is not the holder
		if idx < 0 || (label == "name" && idx > 0) {
			continue
		}
		rest := strings.TrimSpace(text[idx+len(label):])
		if !strings.HasPrefix(rest, ":") {
			continue
		}
		rest = strings.TrimSpace(rest[1:])
		if rest == "" || !strings.ContainsFunc(rest, unicode.IsLetter) {
			continue
		}
		return rest
	}
	return ""
}

// findPeriod returns the two dates of a "Statement period 01/04/2024 to
// 30/04/2024" style line as ISO dates.
func findPeriod(text string) (from, to string) {
	lower := strings.ToLower(text)
	found := false
	for _, w := range periodWords {
		if strings.Contains(lower, w) {
			found = true
			break
		}
	}
	if !found {
		return "", ""
	}
	dates := datePattern.FindAllString(text, 2)
	if len(dates) != 2 {
		return "", ""
	}
	return ISODate(dates[0]), ISODate(dates[1])
}
