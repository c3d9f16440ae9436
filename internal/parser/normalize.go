package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/Rhymond/go-money"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const monthAlt = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?`

// Date patterns seen across statements. The union is tried leftmost-first.
var (
	// YYYY-MM-DD
	datePatternISO = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	// DD/MM/YYYY, DD-MM-YYYY, DD.MM.YYYY, DD/MM/YY
	datePatternNumeric = regexp.MustCompile(`\b\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4}\b`)
	// 15 Jan 2024, 15-Jan-24, 15 January, 2024
	datePatternText = regexp.MustCompile(`(?i)\b\d{1,2}[\s\-]` + monthAlt + `[\s\-,]*\d{2,4}\b`)
	// Jan 15, 2024
	datePatternMonthFirst = regexp.MustCompile(`(?i)\b` + monthAlt + `\s+\d{1,2},?\s+\d{4}\b`)

	datePattern = regexp.MustCompile(`(?i)(?:` + strings.Join([]string{
		datePatternISO.String(),
		datePatternNumeric.String(),
		datePatternText.String(),
		datePatternMonthFirst.String(),
	}, ")|(?:") + `)`)

	numberPattern   = regexp.MustCompile(`\(?[-−]?[£$€₹¥]?\d(?:[\d,.]*\d)?\)?-?(?:\s?(?i:cr|dr)\b)?`)
	currencyPattern = regexp.MustCompile(`[£$€₹¥]|\b(?:Rs\.?|INR|USD|EUR|GBP)\b`)
	negativePattern = regexp.MustCompile(`(?i)\(\s*[\d,.]+\s*\)|^\s*[-−]|[\d.,]+\s*-\s*$|\bdr\b|\bdebit\b`)
	positivePattern = regexp.MustCompile(`(?i)^\s*\+|\bcr\b|\bcredit\b`)
)

// Separator-free digit runs longer than this are account or reference
// numbers, not amounts.
const maxBareDigits = 8

var currencySymbols = map[rune]string{
	'$': "USD",
	'£': "GBP",
	'€': "EUR",
	'₹': "INR",
	'¥': "JPY",
}

var titleCaser = cases.Title(language.English)

// ParseAmount converts a monetary string like "1,234.56", "1.234,56",
// "(500.00)" or "₹ 2,000 Dr" to a float64. It reports false, never
// panics, when the text is not an amount.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	var (
		digits strings.Builder
		neg    bool
		seen   bool
	)
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case unicode.IsDigit(r):
			digits.WriteRune(r)
			seen = true
		case r == ',' || r == '.':
			digits.WriteRune(r)
		case unicode.IsLetter(r):
			j := i
			for j < len(runes) && unicode.IsLetter(runes[j]) {
				j++
			}
			switch word := string(runes[i:j]); strings.ToLower(word) {
			case "cr", "credit":
			case "dr", "debit":
				neg = true
			default:
				if !isCurrencyWord(word) {
					return 0, false
				}
				// "Rs.500"
				if j < len(runes) && runes[j] == '.' {
					j++
				}
			}
			i = j - 1
		case r == '-' || r == '−':
			if seen && i+1 < len(runes) && unicode.IsDigit(runes[i+1]) {
				return 0, false
			}
			neg = true
		case r == '(' || r == ')':
			neg = true
		case r == '+', unicode.IsSpace(r), unicode.Is(unicode.Sc, r):
		default:
			return 0, false
		}
	}
	if !seen {
		return 0, false
	}

	num := normalizeSeparators(digits.String())
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	if v < 0 {
		v = -v
	}
	if neg {
		v = -v
	}
	return v, true
}

// normalizeSeparators resolves thousands and decimal separators into a
// plain float literal.
func normalizeSeparators(d string) string {
	lastComma := strings.LastIndex(d, ",")
	lastDot := strings.LastIndex(d, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			return strings.ReplaceAll(strings.ReplaceAll(d, ".", ""), ",", ".")
		}
		return strings.ReplaceAll(d, ",", "")
	case lastComma >= 0:
		if strings.Count(d, ",") == 1 && len(d)-lastComma-1 == 2 {
			return strings.Replace(d, ",", ".", 1)
		}
		return strings.ReplaceAll(d, ",", "")
	case lastDot >= 0 && strings.Count(d, ".") > 1:
		return strings.ReplaceAll(d, ".", "")
	}
	return d
}

func isCurrencyWord(word string) bool {
	upper := strings.ToUpper(word)
	if upper == "RS" {
		return true
	}
	return len(upper) == 3 && money.GetCurrency(upper) != nil
}

// ExtractCurrency returns the ISO-4217 code named or symbolised in s.
func ExtractCurrency(s string) (string, bool) {
	for _, r := range s {
		if code, ok := currencySymbols[r]; ok {
			return code, true
		}
	}
	for _, word := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if word == "Rs" || word == "RS" {
			return "INR", true
		}
		if len(word) == 3 && word == strings.ToUpper(word) {
			if c := money.GetCurrency(word); c != nil {
				return c.Code, true
			}
		}
	}
	return "", false
}

// ParseDate returns the literal text of the first date found in s.
func ParseDate(s string) (string, bool) {
	m := datePattern.FindString(s)
	if m == "" {
		return "", false
	}
	return m, true
}

// NormalizeDate parses the first date in s, reading numeric dates day
// first.
func NormalizeDate(s string) (time.Time, bool) {
	lit, ok := ParseDate(s)
	if !ok {
		return time.Time{}, false
	}
	switch {
	case datePatternISO.MatchString(lit):
		t, err := time.Parse("2006-01-02", lit)
		return t, err == nil
	case datePatternNumeric.MatchString(lit):
		return parseNumericDate(lit)
	default:
		return parseTextDate(lit)
	}
}

// ISODate formats the date in s as YYYY-MM-DD, or returns s unchanged.
func ISODate(s string) string {
	if t, ok := NormalizeDate(s); ok {
		return t.Format("2006-01-02")
	}
	return strings.TrimSpace(s)
}

func parseNumericDate(lit string) (time.Time, bool) {
	parts := strings.FieldsFunc(lit, func(r rune) bool { return r == '/' || r == '-' || r == '.' })
	if len(parts) != 3 {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	year, _ := strconv.Atoi(parts[2])
	if month > 12 && day <= 12 {
		day, month = month, day
	}
	return buildDate(year, month, day)
}

func parseTextDate(lit string) (time.Time, bool) {
	var day, year int
	var month string
	for _, f := range strings.FieldsFunc(lit, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == ',' || r == '.'
	}) {
		if n, err := strconv.Atoi(f); err == nil {
			if day == 0 && len(f) <= 2 {
				day = n
			} else {
				year = n
			}
			continue
		}
		if len([]rune(f)) >= 3 {
			month = titleCaser.String(strings.ToLower(string([]rune(f)[:3])))
		}
	}
	if month == "" || day == 0 {
		return time.Time{}, false
	}
	if year < 100 {
		year += 2000
	}
	t, err := time.Parse("2 Jan 2006", fmt.Sprintf("%d %s %d", day, month, year))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func buildDate(year, month, day int) (time.Time, bool) {
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// ExtractNumbers returns the amount-looking literals in s, in order.
// Times, reference-like digit runs and digits glued to words are skipped.
func ExtractNumbers(s string) []string {
	var out []string
	for _, loc := range numberPattern.FindAllStringIndex(s, -1) {
		lit := s[loc[0]:loc[1]]
		if !numberBoundary(s, loc[0], loc[1]) {
			continue
		}
		if bare := strings.Trim(lit, "()-− "); isBareDigits(bare) && len(bare) > maxBareDigits {
			continue
		}
		if _, ok := ParseAmount(lit); ok {
			out = append(out, strings.TrimSpace(lit))
		}
	}
	return out
}

func numberBoundary(s string, start, end int) bool {
	if start > 0 {
		prev := rune(s[start-1])
		if prev < 0x80 && (unicode.IsLetter(prev) || unicode.IsDigit(prev) || prev == ':' || prev == '/') {
			return false
		}
	}
	if end < len(s) {
		next := rune(s[end])
		if next < 0x80 && (unicode.IsLetter(next) || unicode.IsDigit(next) || next == ':' || next == '/') {
			return false
		}
	}
	return true
}

func isBareDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DetectFieldTypes names the kinds of value present in s: Date, Number,
// Currency, Negative and Positive.
func DetectFieldTypes(s string) []string {
	var types []string
	if datePattern.MatchString(s) {
		types = append(types, "Date")
	}
	if len(ExtractNumbers(s)) > 0 {
		types = append(types, "Number")
	}
	if currencyPattern.MatchString(s) {
		types = append(types, "Currency")
	}
	if negativePattern.MatchString(s) {
		types = append(types, "Negative")
	}
	if positivePattern.MatchString(s) {
		types = append(types, "Positive")
	}
	return types
}
