package synonyms

import "github.com/insightdelivered/statement-extractor/internal/models"

// Entry binds a canonical field to the header phrases that denote it.
type Entry struct {
	Field    models.Field
	Synonyms []string
}

// lexicon is ordered: when one phrase is listed under several fields, the
// earlier entry wins exact matches and ties in the scored tiers.
var lexicon = []Entry{
	{models.FieldValueDate, []string{
		"value date", "val date", "effective date", "settlement date", "clearing date",
		"maturity date", "due date", "processing date", "execution date",
		"fecha valor", "date de valeur", "valutadatum", "決済日", "결제일", "تاريخ القيمة",
		"val dt", "value dt", "eff dt", "sett dt", "clear dt", "mat dt", "due dt", "proc dt",
	}},
	{models.FieldDate, []string{
		"date", "posting date", "book date", "transaction date", "txn date",
		"trans date", "process date", "entry date", "acct date", "processed date",
		"posted date", "booking date", "date and time", "date time",
		"dt", "trn dt", "post dt", "txn dt",
		"fecha", "data", "datum", "날짜", "日期", "تاريخ", "дата", "ημερομηνία",
		"дат", "päivämäärä", "dátum", "tanggal", "วันที่",
		"trans. date", "transaction dt", "posting dt", "eff. date",
		"sett. date", "settle date", "clear date", "book dt", "entry dt",
	}},
	{models.FieldBalance, []string{
		"balance", "running balance", "closing balance", "available balance",
		"current balance", "book balance", "ledger balance", "account balance",
		"outstanding balance", "remaining balance", "net balance", "end balance",
		"balance after transaction", "bal after txn",
		"running total", "cumulative balance", "progressive balance", "live balance",
		"bal", "closing bal", "running bal", "avail bal", "curr bal", "acct bal",
		"end bal", "rem bal", "out bal", "net bal",
		"cl bal", "cb", "rb", "ab", "lb",
		"saldo", "solde", "guthaben", "kontostand", "残高", "잔액", "رصيد", "баланс",
		"υπόλοιπο", "saldos", "saldi", "bakiye", "ยอดคงเหลือ", "バランス", "остаток",
		"total balance", "final balance", "balance amount",
		"balance figure", "balance total", "balance sum", "balance value",
		"running amount", "progressive amount", "cumulative amount", "net amount",
		"balance inr",
	}},
	{models.FieldOpeningBalance, []string{
		"opening balance", "opening bal", "op bal", "ob", "balance b f", "bal b f",
		"balance brought forward", "starting balance", "initial balance",
		"previous balance", "begin balance",
	}},
	{models.FieldClosingBalance, []string{
		"balance c f", "bal c f", "balance carried forward",
	}},
	{models.FieldRunningBalance, []string{
		"running balance", "running bal",
	}},
	{models.FieldDebit, []string{
		"debit", "withdrawal", "dr", "paid out", "outgoing", "expense", "payment",
		"charge", "fee", "deduction", "outflow", "withdraw", "debited", "spent",
		"disbursement", "expenditure", "payout", "remittance", "transfer out",
		"sent", "paid", "debited amount", "debit amount", "withdrawal amount",
		"withdrawl amount", "withdrawal amt", "withdraw amt", "withdrawals inr",
		"outgoing amount", "paid amount", "paid out amount", "expense amount",
		"amount withdrawn", "withdrawn", "debited amt", "paid amt", "outflow amt", "sent amt",
		"dbt", "wdl", "wthdl", "wd", "db", "d", "out", "exp", "chg",
		"deb", "debits", "withdrawals", "charges", "outflows",
		"débito", "déb", "abzug", "ausgabe", "支出", "출금", "خصم", "дебет",
		"χρέωση", "debitering", "veloitus", "obciążenie", "uscita",
		"gider", "pengeluaran", "การหัก", "デビット", "дебит",
		"money out", "funds out", "account debited", "amount debited", "debited for",
		"towards", "transfer to", "payment to", "sent to", "paid to", "by transfer",
		"by payment", "by withdrawal", "by debit", "amount paid", "amt paid",
		"amt debited", "funds transferred", "money transferred", "amount sent",
	}},
	{models.FieldCredit, []string{
		"credit", "deposit", "cr", "paid in", "incoming", "receipt", "received",
		"credited", "income", "inflow", "addition", "lodgement", "credit amount",
		"deposit amount", "deposit amt", "deposits inr", "incoming amount",
		"received amount", "credited amount", "paid in amount", "receipt amount",
		"income amount", "amount deposited", "deposited", "credited amt",
		"received amt", "inflow amt", "collected amt",
		"receipts", "collections", "recovery", "refund", "interest", "dividend",
		"salary", "transfer in", "money in", "funds in", "cash in", "amount in",
		"cdt", "dep", "rcpt", "rec", "inc", "in", "cred", "credits",
		"deposits", "inflows", "c", "cd", "crdt", "depo",
		"crédito", "créd", "eingang", "einzahlung", "收入", "입금", "إيداع", "кредит",
		"πίστωση", "kreditering", "talletus", "wpływ", "entrata",
		"gelir", "pemasukan", "การฝาก", "クレジット",
		"money received", "funds received", "account credited", "amount credited",
		"credited by", "received from", "transfer from", "payment from", "from",
		"by credit", "by deposit", "amount received", "amt received", "amt credited",
		"funds deposited", "money deposited", "cash deposited",
	}},
	{models.FieldWithdrawals, []string{
		"payments", "expenses", "cash out", "amounts paid",
	}},
	{models.FieldDeposits, []string{
		"cash in", "amounts received",
	}},
	{models.FieldAmount, []string{
		"amount", "transaction amount", "value", "sum", "total", "figure",
		"transaction value", "txn amount", "trans amount", "payment amount",
		"transfer amount", "cheque amount", "draft amount", "instrument amount",
		"principal amount", "gross amount", "base amount",
		"amt", "txn amt", "trans amt", "pay amt", "transfer amt", "chq amt",
		"val", "ttl", "tot", "fig", "prin amt", "net amt", "gross amt",
		"monto", "montant", "betrag", "importo", "金額", "금액", "مبلغ", "сумма",
		"ποσό", "belopp", "määrä", "quantidade", "kwota", "miktar", "jumlah",
		"จำนวน", "montante", "сума", "cantidad", "quantità",
		"transaction amt", "payment amt", "cheque amt", "instrument amt",
		"amount involved", "amount processed", "amount cleared", "amount settled",
		"amount posted",
	}},
	{models.FieldCheckNumber, []string{
		"cheque no", "check no", "chq no", "cheque number", "check number",
		"chq ref no", "chq ref no.", "cheque ref no",
		"número de cheque", "numéro de chèque", "schecknummer", "小切手番号", "수표번호",
	}},
	{models.FieldReferenceID, []string{
		"utr", "reference", "ref", "cheque", "payment id", "transaction id", "txn id",
		"transfer id", "reference number", "ref number", "ref no", "reference no",
		"transaction reference", "payment reference", "transfer reference",
		"draft number", "instrument number",
		"voucher number", "receipt number", "slip number", "document number",
		"serial number", "sequence number", "batch number", "confirmation number",
		"receipt no", "voucher no", "slip no",
		"doc no", "ser no", "seq no", "batch no", "conf no", "txn ref",
		"pay ref", "trans ref", "xfer ref", "trx ref", "id", "no", "num",
		"ref cheque no", "ref chq no",
		"referencia", "référence", "referenz", "参照", "참조", "مرجع", "ссылка",
		"αναφορά", "referens", "viite", "referência", "odniesienie", "riferimento",
		"referans", "referensi", "การอ้างอิง", "референс",
		"instrument ref", "payment ref no", "transfer ref no", "transaction ref no",
		"clearing ref", "settlement ref", "ach ref", "wire ref", "swift ref", "batch ref",
	}},
	{models.FieldTransactionType, []string{
		"mode", "channel", "type", "transaction type", "txn type", "payment mode",
		"transfer mode", "transaction mode", "payment type", "transfer type",
		"instrument", "mechanism", "method", "way", "means", "operation type",
		"activity type", "movement type", "entry type", "transaction category",
		"typ", "cat", "meth", "mech", "inst", "oper", "act", "mov", "ent",
		"txn typ", "pay typ", "trans typ", "xfer typ", "trx typ",
		"código", "code", "tipo", "mode de paiement", "zahlungsart", "種類", "유형",
		"نوع", "тип", "τύπος", "tyyppi", "tür", "jenis",
		"ประเภท", "タイプ", "modalidad", "modalità",
		"payment method", "transfer method", "transaction method", "payment channel",
		"transfer channel", "transaction channel", "clearing method", "settlement method",
	}},
	{models.FieldCurrency, []string{
		"currency", "curr.", "ccy", "denomination", "unit", "monetary unit",
		"moneda", "devise", "währung", "valuta", "通貨", "통화", "عملة", "валюта",
		"νόμισμα", "valuutta", "moeda", "waluta", "para birimi",
		"mata uang", "สกุลเงิน", "валута",
		"cur", "curr", "denom", "monetary", "ccy code", "curr code",
	}},
	{models.FieldDescription, []string{
		"description", "narration", "details", "transaction details",
		"transaction description", "trans description", "trans details", "txn details",
		"purpose", "remarks", "memo",
		"merchant", "vendor", "payee", "transaction info", "info", "note", "notes",
		"payment details", "transfer details", "comment", "comments", "summary",
		"narrative", "transaction narrative", "payment info", "transaction summary",
		"operation", "activity", "movement", "entry details", "payment purpose",
		"desc", "descr", "narr", "part", "txn desc", "trans desc", "rmks",
		"dtls", "det", "purp", "nar", "tran desc", "trans info", "txn info",
		"libellé", "concepto", "descripción", "detalhes", "beschreibung", "説明", "설명",
		"تفاصيل", "описание", "περιγραφή", "beskrivning", "beskrivelse", "kuvaus",
		"descripció", "opis", "descrizione", "açıklama", "deskripsi",
		"cheque details", "draft details", "instrument details", "party details",
		"beneficiary details", "payer details", "counterparty", "third party",
	}},
	{models.FieldParticulars, []string{
		"particulars", "transaction particulars", "payment particulars", "transfer particulars",
	}},
}

// Lexicon returns a copy of the ordered synonym table.
func Lexicon() []Entry {
	out := make([]Entry, len(lexicon))
	for i, e := range lexicon {
		out[i] = Entry{Field: e.Field, Synonyms: append([]string(nil), e.Synonyms...)}
	}
	return out
}
