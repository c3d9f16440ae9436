package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// amountBands is a layout with a single signed Amount column.
var amountBands = Bands{Bands: []models.ColumnBand{
	{Field: models.FieldDate, X0: 0, X1: 50},
	{Field: models.FieldDescription, X0: 60, X1: 200},
	{Field: models.FieldAmount, X0: 210, X1: 260},
	{Field: models.FieldBalance, X0: 270, X1: 330},
}}

var splitBands = Bands{Bands: []models.ColumnBand{
	{Field: models.FieldDate, X0: 0, X1: 50},
	{Field: models.FieldDescription, X0: 60, X1: 200},
	{Field: models.FieldWithdrawals, X0: 210, X1: 260},
	{Field: models.FieldDeposits, X0: 270, X1: 320},
	{Field: models.FieldClosingBalance, X0: 330, X1: 380},
}}

func TestClassifyRow_SignFromBalanceDelta(t *testing.T) {
	row := rowOf(1, 100,
		cell{"03/06/2025", 5, 45},
		cell{"Transfer", 80, 120},
		cell{"500.00", 215, 255},
		cell{"1500.00", 275, 325},
	)
	o := ClassifyRow(row, amountBands, f(1000))
	require.Equal(t, RowTransaction, o.Kind)
	txn := o.Transaction
	require.NotNil(t, txn.Credit)
	assert.Equal(t, 500.0, *txn.Credit)
	assert.Nil(t, txn.Debit)
	assert.Equal(t, 500.0, *txn.Amount)
	assert.Equal(t, 1500.0, *txn.Balance)
	assert.Equal(t, "2025-06-03", txn.Date)
	assert.Equal(t, "03/06/2025", txn.RawDate)

	o = ClassifyRow(row, amountBands, f(2000))
	require.NotNil(t, o.Transaction.Debit)
	assert.Equal(t, 500.0, *o.Transaction.Debit)
	assert.Equal(t, -500.0, *o.Transaction.Amount)
	assert.Nil(t, o.Transaction.Credit)
}

func TestClassifyRow_ZeroBalanceDelta(t *testing.T) {
	row := rowOf(1, 100,
		cell{"03/06/2025", 5, 45},
		cell{"Transfer", 80, 120},
		cell{"500.00", 215, 255},
		cell{"1000.00", 275, 325},
	)
	o := ClassifyRow(row, amountBands, f(1000))
	assert.Equal(t, RowBalanceOnly, o.Kind)
	assert.Nil(t, o.Transaction.Debit)
	assert.Nil(t, o.Transaction.Credit)
	assert.Nil(t, o.Transaction.Amount)
	require.NotNil(t, o.Balance)
	assert.Equal(t, 1000.0, *o.Balance)
}

func TestClassifyRow_AmountSide(t *testing.T) {
	tests := []struct {
		name   string
		desc   string
		amount string
		debit  *float64
		credit *float64
	}{
		{"debit keyword", "ATM cash", "200.00", f(200), nil},
		{"credit keyword", "Salary June", "3,000.00", nil, f(3000)},
		{"negative literal", "Adjustment", "(75.00)", f(75), nil},
		{"positive literal", "Adjustment", "75.00", nil, f(75)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := rowOf(1, 100, cell{tt.desc, 80, 140}, cell{tt.amount, 215, 255})
			o := ClassifyRow(row, amountBands, nil)
			require.Equal(t, RowTransaction, o.Kind)
			assert.Equal(t, tt.debit, o.Transaction.Debit)
			assert.Equal(t, tt.credit, o.Transaction.Credit)
		})
	}
}

func TestClassifyRow_DebitCreditColumns(t *testing.T) {
	row := rowOf(1, 100,
		cell{"02-06-2025", 5, 45},
		cell{"NEFT", 70, 100},
		cell{"ACME", 110, 150},
		cell{"250.50", 215, 255},
		cell{"9,749.50", 335, 375},
	)
	o := ClassifyRow(row, splitBands, nil)
	require.Equal(t, RowTransaction, o.Kind)
	txn := o.Transaction
	assert.Equal(t, "NEFT ACME", txn.Description)
	assert.Equal(t, 250.50, *txn.Debit)
	assert.Nil(t, txn.Credit)
	assert.Equal(t, -250.50, *txn.Amount)
	assert.Equal(t, 9749.50, *txn.Balance)
	assert.Equal(t, 9749.50, *o.Balance)
	assert.Equal(t, string(models.StrategyColumn), txn.Source)
}

func TestClassifyRow_BalanceOnly(t *testing.T) {
	row := rowOf(1, 100, cell{"01/06/2025", 5, 45}, cell{"Opening Balance", 70, 190}, cell{"5000.00", 335, 375})
	o := ClassifyRow(row, splitBands, nil)
	assert.Equal(t, RowBalanceOnly, o.Kind)
	require.NotNil(t, o.Balance)
	assert.Equal(t, 5000.0, *o.Balance)
}

func TestClassifyRow_ContinuationAndNoise(t *testing.T) {
	tests := []struct {
		name string
		row  models.Row
		kind OutcomeKind
		text string
	}{
		{"narration overflow", rowOf(1, 100, cell{"UPI/PAYTM/ref", 70, 150}), RowContinuation, "UPI/PAYTM/ref"},
		{"footer", rowOf(1, 100, cell{"Page", 70, 90}, cell{"2", 94, 100}, cell{"of", 104, 114}, cell{"5", 118, 124}), RowNoise, ""},
		{"total in narration", rowOf(1, 100, cell{"TOTAL", 70, 100}, cell{"ENERGIES", 104, 150}), RowContinuation, "TOTAL ENERGIES"},
		{"statement in narration", rowOf(1, 100, cell{"Statement", 70, 120}, cell{"fee", 124, 140}, cell{"refund", 144, 180}), RowContinuation, "Statement fee refund"},
		{"page in narration", rowOf(1, 100, cell{"Page", 70, 90}, cell{"Industries", 94, 150}), RowContinuation, "Page Industries"},
		{"totals line", rowOf(1, 100, cell{"Total", 70, 100}, cell{"Payments", 104, 160}), RowNoise, ""},
		{"carried forward", rowOf(1, 100, cell{"Balance", 70, 110}, cell{"carried", 114, 150}, cell{"forward", 154, 195}), RowNoise, ""},
		{"statement heading", rowOf(1, 100, cell{"Statement", 70, 120}, cell{"Period", 124, 160}), RowNoise, ""},
		{"empty", rowOf(1, 100, cell{" ", 70, 90}), RowNoise, ""},
		{"no anchor", rowOf(1, 100, cell{"10.00", 215, 255}, cell{"20.00", 275, 315}), RowNoise, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := ClassifyRow(tt.row, splitBands, nil)
			assert.Equal(t, tt.kind, o.Kind, "score %d", o.Score)
			assert.Equal(t, tt.text, o.Text)
		})
	}
}

func TestClassifyRow_Currency(t *testing.T) {
	row := rowOf(1, 100, cell{"03/06/2025", 5, 45}, cell{"Card", 80, 120}, cell{"₹500.00", 215, 255})
	o := ClassifyRow(row, amountBands, nil)
	require.Equal(t, RowTransaction, o.Kind)
	assert.Equal(t, "INR", o.Transaction.Currency)
}

func TestClassifyRow_RTLJoin(t *testing.T) {
	bands := amountBands
	bands.RTL = true
	row := rowOf(1, 100, cell{"03/06/2025", 5, 45}, cell{"world", 70, 100}, cell{"hello", 120, 150}, cell{"10.00", 215, 255})
	o := ClassifyRow(row, bands, nil)
	require.Equal(t, RowTransaction, o.Kind)
	assert.Equal(t, "hello world", o.Transaction.Description)
}
