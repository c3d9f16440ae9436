package banks

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/parser"
)

// canonical maps each bank column onto a transaction attribute. Column
// names shared between banks ("Date", "Value_Date") appear once.
var canonical = map[string]models.Field{
	// HDFC
	hdfcNarration:  models.FieldDescription,
	hdfcRef:        models.FieldReferenceID,
	hdfcValueDate:  models.FieldValueDate,
	hdfcWithdrawal: models.FieldDebit,
	hdfcDeposit:    models.FieldCredit,
	hdfcBalance:    models.FieldBalance,
	// IDFC
	idfcDateTime:   models.FieldDate,
	idfcDetails:    models.FieldDescription,
	idfcRef:        models.FieldReferenceID,
	idfcWithdrawal: models.FieldDebit,
	idfcDeposit:    models.FieldCredit,
	idfcBalance:    models.FieldBalance,
	// ICICI
	iciciDate:        models.FieldDate,
	iciciMode:        models.FieldTransactionType,
	iciciParticulars: models.FieldDescription,
	iciciDeposits:    models.FieldCredit,
	iciciWithdrawals: models.FieldDebit,
	iciciBalance:     models.FieldBalance,
	// generic single-amount layouts
	"Amount": models.FieldCredit,
}

// Standardize converts a bank record into a canonical transaction.
func Standardize(rec models.BankRecord) models.Transaction {
	tx := models.Transaction{Page: rec.Page, Source: rec.Bank}
	for _, col := range rec.Columns {
		v := rec.Get(col)
		if v == "" {
			continue
		}
		switch canonical[col] {
		case models.FieldDate:
			tx.RawDate = v
			tx.Date = parser.ISODate(v)
		case models.FieldValueDate:
			tx.ValueDate = parser.ISODate(v)
		case models.FieldDescription:
			tx.Description = v
		case models.FieldReferenceID:
			tx.ReferenceID = v
		case models.FieldTransactionType:
			tx.TransactionType = v
		case models.FieldDebit:
			if a, ok := parser.ParseAmount(v); ok && a != 0 {
				tx.Debit = models.Float(math.Abs(a))
			}
		case models.FieldCredit:
			if a, ok := parser.ParseAmount(v); ok && a != 0 {
				tx.Credit = models.Float(math.Abs(a))
			}
		case models.FieldBalance:
			if a, ok := parser.ParseAmount(v); ok {
				tx.Balance = models.Float(a)
			}
		}
	}
	if tx.Debit != nil || tx.Credit != nil {
		net := decimal.NewFromFloat(models.Value(tx.Credit)).
			Sub(decimal.NewFromFloat(models.Value(tx.Debit))).
			Round(2)
		tx.Amount = models.Float(net.InexactFloat64())
	}
	return tx
}

// StandardizeAll converts records in order.
func StandardizeAll(recs []models.BankRecord) []models.Transaction {
	out := make([]models.Transaction, 0, len(recs))
	for _, r := range recs {
		out = append(out, Standardize(r))
	}
	return out
}
