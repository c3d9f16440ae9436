package parser

import "github.com/insightdelivered/statement-extractor/internal/models"

// cell places text at [x0,x1] on a line of height 10.
type cell struct {
	text   string
	x0, x1 float64
}

func line(page int, y float64, cells ...cell) []models.Token {
	out := make([]models.Token, 0, len(cells))
	for _, c := range cells {
		out = append(out, models.Token{Text: c.text, X0: c.x0, Y0: y, X1: c.x1, Y1: y + 10, Page: page})
	}
	return out
}

func rowOf(page int, y float64, cells ...cell) models.Row {
	return models.Row{Page: page, Y: y + 5, Tokens: line(page, y, cells...)}
}

// Column positions of the statement used across the tests.
func colDate(s string) cell    { return cell{s, 40, 90} }
func colDesc(s string) cell    { return cell{s, 140, 220} }
func colDebit(s string) cell   { return cell{s, 305, 335} }
func colCredit(s string) cell  { return cell{s, 385, 420} }
func colBalance(s string) cell { return cell{s, 470, 515} }

func standardHeader(page int, y float64) []models.Token {
	return line(page, y,
		cell{"Date", 50, 80},
		cell{"Description", 140, 220},
		cell{"Debit", 305, 335},
		cell{"Credit", 385, 420},
		cell{"Balance", 470, 515},
	)
}

// statementTokens is a one-page statement: two preamble lines, the header
// and the given data rows 20pt apart.
func statementTokens(rows ...[]cell) []models.Token {
	var toks []models.Token
	toks = append(toks, line(1, 20, cell{"Statement", 40, 100}, cell{"of", 104, 114}, cell{"Account", 118, 170})...)
	toks = append(toks, line(1, 40, cell{"Account", 40, 90}, cell{"No", 94, 110}, cell{"12345678", 114, 170})...)
	toks = append(toks, standardHeader(1, 80)...)
	for i, r := range rows {
		toks = append(toks, line(1, 100+float64(i)*20, r...)...)
	}
	return toks
}

func dataRow(date, desc, debit, credit, balance string) []cell {
	var cs []cell
	if date != "" {
		cs = append(cs, colDate(date))
	}
	if desc != "" {
		cs = append(cs, colDesc(desc))
	}
	if debit != "" {
		cs = append(cs, colDebit(debit))
	}
	if credit != "" {
		cs = append(cs, colCredit(credit))
	}
	if balance != "" {
		cs = append(cs, colBalance(balance))
	}
	return cs
}

func f(v float64) *float64 { return &v }
