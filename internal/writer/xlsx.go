package writer

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// SheetName is the single sheet of an XLSX export.
const SheetName = "Bank Statement"

const amountFormat = "#,##0.00"

var xlsxHeader = []string{"Date", "Description", "Debit", "Credit", "Balance", "Reference", "Currency"}

// XLSXWriter writes transactions to a spreadsheet: a title row, an
// export-info row, the styled header, the data and a summary row.
type XLSXWriter struct {
	Title string
	// Now stamps the export-info row; time.Now when nil.
	Now func() time.Time
}

// WriteToFile writes the workbook to path.
func (w *XLSXWriter) WriteToFile(path string, res models.Result) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer out.Close()

	if err := w.Write(out, res); err != nil {
		return err
	}
	return out.Close()
}

// Write writes the workbook to out.
func (w *XLSXWriter) Write(out io.Writer, res models.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	if err := w.fill(f, res); err != nil {
		return err
	}
	if err := f.Write(out); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func (w *XLSXWriter) fill(f *excelize.File, res models.Result) error {
	styles, err := newStyles(f)
	if err != nil {
		return err
	}
	rows := Rows(res)
	totals := Sum(rows)
	last := len(xlsxHeader)
	lastCol, _ := excelize.ColumnNumberToName(last)

	title := w.Title
	if title == "" {
		title = "Bank Statement"
		if res.Bank != "" {
			title = res.Bank + " " + title
		}
	}
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}

	set := func(col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(SheetName, cell, v)
	}

	if err := set(1, 1, title); err != nil {
		return fmt.Errorf("xlsx title: %w", err)
	}
	_ = f.MergeCell(SheetName, "A1", lastCol+"1")
	_ = f.SetCellStyle(SheetName, "A1", "A1", styles.title)

	info := fmt.Sprintf("Exported %s | strategy %s | %d transactions",
		now().Format("2006-01-02 15:04"), res.Metadata.ParseStrategyUsed, totals.Count)
	if a := res.Account; a != nil && a.Number != "" {
		info += " | account " + a.Number
	}
	if err := set(1, 2, info); err != nil {
		return fmt.Errorf("xlsx info: %w", err)
	}
	_ = f.MergeCell(SheetName, "A2", lastCol+"2")
	_ = f.SetCellStyle(SheetName, "A2", "A2", styles.info)

	const headerRow = 3
	for i, h := range xlsxHeader {
		if err := set(i+1, headerRow, h); err != nil {
			return fmt.Errorf("xlsx header: %w", err)
		}
	}
	_ = f.SetCellStyle(SheetName, "A3", lastCol+"3", styles.header)

	r := headerRow + 1
	for _, row := range rows {
		vals := []any{row.Date, row.Description, amount(row.DebitValue), amount(row.CreditValue), amount(row.BalanceValue), row.Reference, row.Currency}
		for i, v := range vals {
			if v == nil {
				continue
			}
			if err := set(i+1, r, v); err != nil {
				return fmt.Errorf("xlsx row %d: %w", r, err)
			}
		}
		r++
	}
	if len(rows) > 0 {
		_ = f.SetCellStyle(SheetName, fmt.Sprintf("C%d", headerRow+1), fmt.Sprintf("E%d", r-1), styles.amount)
	}

	debit, _ := totals.Debit.Float64()
	credit, _ := totals.Credit.Float64()
	for i, v := range []any{"Total", fmt.Sprintf("%d transactions", totals.Count), debit, credit} {
		if err := set(i+1, r, v); err != nil {
			return fmt.Errorf("xlsx summary: %w", err)
		}
	}
	_ = f.SetCellStyle(SheetName, fmt.Sprintf("A%d", r), fmt.Sprintf("%s%d", lastCol, r), styles.summary)

	widths := map[string]float64{"A": 12, "B": 48, "C": 14, "D": 14, "E": 14, "F": 22, "G": 10}
	for col, wd := range widths {
		_ = f.SetColWidth(SheetName, col, col, wd)
	}
	return nil
}

func amount(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

type xlsxStyles struct {
	title, info, header, amount, summary int
}

func newStyles(f *excelize.File) (xlsxStyles, error) {
	numFmt := amountFormat
	defs := []*excelize.Style{
		{Font: &excelize.Font{Bold: true, Size: 14}},
		{Font: &excelize.Font{Italic: true, Color: "666666"}},
		{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F4E78"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		},
		{CustomNumFmt: &numFmt},
		{Font: &excelize.Font{Bold: true}, CustomNumFmt: &numFmt, Border: []excelize.Border{{Type: "top", Color: "000000", Style: 1}}},
	}
	ids := make([]int, len(defs))
	for i, d := range defs {
		id, err := f.NewStyle(d)
		if err != nil {
			return xlsxStyles{}, fmt.Errorf("xlsx style: %w", err)
		}
		ids[i] = id
	}
	return xlsxStyles{title: ids[0], info: ids[1], header: ids[2], amount: ids[3], summary: ids[4]}, nil
}
