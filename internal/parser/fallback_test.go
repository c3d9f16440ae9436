package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// wordsRow lays out whitespace-separated words left to right.
func wordsRow(page int, y float64, text string) models.Row {
	var cells []cell
	x := 40.0
	for _, w := range strings.Fields(text) {
		width := float64(len(w)) * 6
		cells = append(cells, cell{w, x, x + width})
		x += width + 20
	}
	return rowOf(page, y, cells...)
}

func TestScoreFallbackRow(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		// date 8, two numbers 10, domain 8, formatted amount 10, six tokens 5
		{"01/06/2025 ATM withdrawal cash 500.00 4,500.00", 41},
		// one number 5, domain 8, formatted amount 10, four tokens 3
		{"grocery store purchase 120.00", 26},
		// two numbers 10, six tokens 5, three non-transaction words
		{"Statement summary page 1 of 3", 6},
		// two non-transaction words
		{"Customer address line", -6},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreFallbackRow(wordsRow(1, 10, tt.text)))
		})
	}
}

func TestFallbackParse(t *testing.T) {
	rows := []models.Row{
		wordsRow(1, 10, "Account statement for June"),
		wordsRow(1, 30, "03/06/2025 NEFT salary 5,000.00 9,500.00"),
		wordsRow(1, 50, "01/06/2025 ATM withdrawal 500.00 4,500.00"),
	}
	txns := FallbackParse(rows, DefaultOptions())
	require.Len(t, txns, 2)

	first, second := txns[0], txns[1]
	assert.Equal(t, "2025-06-01", first.Date)
	assert.Equal(t, "ATM withdrawal", first.Description)
	assert.Equal(t, 500.0, *first.Debit)
	assert.Nil(t, first.Credit)
	assert.Equal(t, 4500.0, *first.Balance)

	assert.Equal(t, "2025-06-03", second.Date)
	assert.Equal(t, "NEFT salary", second.Description)
	assert.Equal(t, 5000.0, *second.Credit)
	assert.Equal(t, 9500.0, *second.Balance)
	assert.Equal(t, string(models.StrategyFallback), second.Source)
}

func TestFallbackParse_BalanceAgreement(t *testing.T) {
	rows := []models.Row{
		wordsRow(1, 10, "01/06/2025 UPI grocery 300.00 4,700.00"),
		wordsRow(1, 30, "02/06/2025 UPI refund 200.00 4,900.00"),
		wordsRow(1, 50, "03/06/2025 UPI rent 1,000.00 3,900.00"),
	}
	txns := FallbackParse(rows, DefaultOptions())
	require.Len(t, txns, 3)
	assert.Equal(t, 300.0, *txns[0].Credit, "no prior balance: literal sign")
	assert.Equal(t, 200.0, *txns[1].Credit)
	assert.Equal(t, 1000.0, *txns[2].Debit)
	assert.Equal(t, -1000.0, *txns[2].Amount)
}

func TestFallbackParse_ThreeNumbers(t *testing.T) {
	rows := []models.Row{
		wordsRow(1, 10, "01/06/2025 UPI opening 1,000.00 5,000.00"),
		wordsRow(1, 30, "02/06/2025 IMPS transfer 250.00 0.00 4,750.00"),
	}
	txns := FallbackParse(rows, DefaultOptions())
	require.Len(t, txns, 2)
	second := txns[1]
	require.NotNil(t, second.Debit)
	assert.Equal(t, 250.0, *second.Debit)
	assert.Nil(t, second.Credit)
	assert.Equal(t, 4750.0, *second.Balance)
}

func TestSortByDate_UndatedLast(t *testing.T) {
	txns := []models.Transaction{
		{Description: "undated a"},
		{RawDate: "05/06/2025", Description: "late"},
		{Description: "undated b"},
		{RawDate: "01/06/2025", Description: "early"},
	}
	sortByDate(txns)
	var got []string
	for _, tx := range txns {
		got = append(got, tx.Description)
	}
	assert.Equal(t, []string{"early", "late", "undated a", "undated b"}, got)
}

func TestBackfillBalances(t *testing.T) {
	txns := []models.Transaction{
		{Balance: f(100), Amount: f(10)},
		{Amount: f(-20.10)},
		{Amount: f(5.05)},
		{},
	}
	backfillBalances(txns)
	assert.Equal(t, 79.90, *txns[1].Balance)
	assert.Equal(t, 84.95, *txns[2].Balance)
	assert.Nil(t, txns[3].Balance)
}
