package models

// Field is a canonical transaction attribute that raw header text resolves to.
type Field int

const (
	FieldNone Field = iota
	FieldDate
	FieldValueDate
	FieldDescription
	FieldDebit
	FieldCredit
	FieldAmount
	FieldBalance
	FieldReferenceID
	FieldTransactionType
	FieldCurrency
	FieldCheckNumber
	FieldOpeningBalance
	FieldClosingBalance
	FieldRunningBalance
	FieldParticulars
	FieldDeposits
	FieldWithdrawals
)

var fieldNames = map[Field]string{
	FieldDate:            "Date",
	FieldValueDate:       "ValueDate",
	FieldDescription:     "Description",
	FieldDebit:           "Debit",
	FieldCredit:          "Credit",
	FieldAmount:          "Amount",
	FieldBalance:         "Balance",
	FieldReferenceID:     "ReferenceID",
	FieldTransactionType: "TransactionType",
	FieldCurrency:        "Currency",
	FieldCheckNumber:     "CheckNumber",
	FieldOpeningBalance:  "OpeningBalance",
	FieldClosingBalance:  "ClosingBalance",
	FieldRunningBalance:  "RunningBalance",
	FieldParticulars:     "Particulars",
	FieldDeposits:        "Deposits",
	FieldWithdrawals:     "Withdrawals",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "None"
}

// ParseField is the inverse of String. Unknown names yield FieldNone.
func ParseField(name string) (Field, bool) {
	for f, n := range fieldNames {
		if n == name {
			return f, true
		}
	}
	return FieldNone, false
}

// AllFields lists every canonical field in declaration order.
func AllFields() []Field {
	out := make([]Field, 0, len(fieldNames))
	for f := FieldDate; f <= FieldWithdrawals; f++ {
		out = append(out, f)
	}
	return out
}

// IsDebitRole reports fields whose values are money leaving the account.
func (f Field) IsDebitRole() bool { return f == FieldDebit || f == FieldWithdrawals }

// IsCreditRole reports fields whose values are money entering the account.
func (f Field) IsCreditRole() bool { return f == FieldCredit || f == FieldDeposits }

// IsBalanceRole reports the running/closing/opening balance family.
func (f Field) IsBalanceRole() bool {
	switch f {
	case FieldBalance, FieldOpeningBalance, FieldClosingBalance, FieldRunningBalance:
		return true
	}
	return false
}

// IsAmountRole reports fields carrying a transaction amount (not a balance).
func (f Field) IsAmountRole() bool {
	return f.IsDebitRole() || f.IsCreditRole() || f == FieldAmount
}

// IsDescriptionRole reports free-text narrative fields.
func (f Field) IsDescriptionRole() bool {
	return f == FieldDescription || f == FieldParticulars
}

// IsDateRole reports the transaction and value date fields.
func (f Field) IsDateRole() bool { return f == FieldDate || f == FieldValueDate }

// ColumnBand is a horizontal range of the page associated with one field.
type ColumnBand struct {
	Field Field   `json:"field"`
	X0    float64 `json:"x0"`
	X1    float64 `json:"x1"`
}

// Center is the midpoint of the band.
func (b ColumnBand) Center() float64 { return (b.X0 + b.X1) / 2 }

// Contains reports whether x lies inside the band, boundaries included.
func (b ColumnBand) Contains(x float64) bool { return x >= b.X0 && x <= b.X1 }
