package convert_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-extractor/internal/banks"
	"github.com/insightdelivered/statement-extractor/internal/config"
	"github.com/insightdelivered/statement-extractor/internal/convert"
	mock_convert "github.com/insightdelivered/statement-extractor/internal/convert/mocks"
	"github.com/insightdelivered/statement-extractor/internal/extractor"
	"github.com/insightdelivered/statement-extractor/internal/metrics"
	"github.com/insightdelivered/statement-extractor/internal/models"
)

type cell struct {
	text   string
	x0, x1 float64
}

// line places cells on a 10pt line centred on y.
func line(y float64, cells ...cell) []models.Token {
	out := make([]models.Token, 0, len(cells))
	for _, c := range cells {
		out = append(out, models.Token{Text: c.text, X0: c.x0, X1: c.x1, Y0: y - 5, Y1: y + 5, Page: 1})
	}
	return out
}

// wordsAt lays text out left to right.
func wordsAt(y float64, text string) []models.Token {
	var cells []cell
	x := 40.0
	for _, w := range strings.Fields(text) {
		width := 6 * float64(len(w))
		cells = append(cells, cell{w, x, x + width})
		x += width + 10
	}
	return line(y, cells...)
}

func document(toks ...[]models.Token) extractor.Document {
	doc := extractor.Document{Pages: []extractor.PageInfo{{Number: 1, Width: 595, Height: 842}}}
	for _, t := range toks {
		doc.Tokens = append(doc.Tokens, t...)
	}
	return doc
}

// genericStatement has a Date/Description/Debit/Credit/Balance table under
// the given title.
func genericStatement(title string) extractor.Document {
	row := func(y float64, date, desc, debit, credit, balance string) []models.Token {
		var cs []cell
		cs = append(cs, cell{date, 40, 90}, cell{desc, 140, 220})
		if debit != "" {
			cs = append(cs, cell{debit, 305, 335})
		}
		if credit != "" {
			cs = append(cs, cell{credit, 385, 420})
		}
		cs = append(cs, cell{balance, 470, 515})
		return line(y, cs...)
	}
	return document(
		wordsAt(25, title),
		wordsAt(45, "Account No 12345678"),
		line(85,
			cell{"Date", 50, 80},
			cell{"Description", 140, 220},
			cell{"Debit", 305, 335},
			cell{"Credit", 385, 420},
			cell{"Balance", 470, 515},
		),
		row(105, "01/06/2025", "Opening Balance", "", "", "5000.00"),
		row(125, "02/06/2025", "ATM Withdrawal", "500.00", "", "4500.00"),
		row(145, "03/06/2025", "Salary Credit", "", "5000.00", "9500.00"),
	)
}

func hdfcStatement() extractor.Document {
	return document(
		wordsAt(20, "HDFC BANK Ltd Statement of account"),
		line(60,
			cell{"Date", 40, 60},
			cell{"Narration", 90, 140},
			cell{"Chq./Ref.No.", 200, 250},
			cell{"Value Dt", 280, 315},
			cell{"Withdrawal Amt.", 340, 400},
			cell{"Deposit Amt.", 425, 470},
			cell{"Closing Balance", 495, 555},
		),
		line(80,
			cell{"01/04/2024", 40, 90},
			cell{"UPI-ACME", 90, 130},
			cell{"STORES", 140, 175},
			cell{"0000412345678901", 200, 260},
			cell{"01/04/2024", 280, 330},
			cell{"1,250.00", 350, 390},
			cell{"48,750.00", 500, 545},
		),
		line(100,
			cell{"02/04/2024", 40, 90},
			cell{"SALARY", 90, 125},
			cell{"02/04/2024", 280, 330},
			cell{"50,000.00", 430, 475},
			cell{"98,750.00", 500, 545},
		),
		wordsAt(140, "Statement period 01/04/2024 to 30/04/2024"),
	)
}

func newService(t *testing.T, cfg *config.Config) (*convert.Service, *mock_convert.MockTokenSource) {
	ctrl := gomock.NewController(t)
	src := mock_convert.NewMockTokenSource(ctrl)
	if cfg == nil {
		cfg = config.Default()
	}
	return convert.New(src, cfg, nil, nil), src
}

func TestService_Convert(t *testing.T) {
	tests := []struct {
		name            string
		doc             extractor.Document
		bankFallthrough bool
		wantStrategy    models.Strategy
		wantBank        string
		wantTxns        int
		wantRecords     int
		wantReason      string
	}{
		{
			name:            "universal column pass",
			doc:             genericStatement("Statement of Account"),
			bankFallthrough: true,
			wantStrategy:    models.StrategyColumn,
			wantTxns:        2,
		},
		{
			name:            "bank parser records win",
			doc:             hdfcStatement(),
			bankFallthrough: true,
			wantStrategy:    models.BankStrategy("HDFC"),
			wantBank:        "HDFC",
			wantTxns:        2,
			wantRecords:     2,
		},
		{
			name:            "bank without table falls through",
			doc:             genericStatement("HDFC Bank Statement"),
			bankFallthrough: true,
			wantStrategy:    models.StrategyColumn,
			wantBank:        "HDFC",
			wantTxns:        2,
		},
		{
			name:            "bank without table and fall-through disabled",
			doc:             genericStatement("HDFC Bank Statement"),
			wantStrategy:    models.StrategyNone,
			wantBank:        "HDFC",
			wantReason:      convert.ErrBankTableNotFound.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Convert.BankFallthrough = tt.bankFallthrough
			svc, src := newService(t, cfg)
			src.EXPECT().Tokens(gomock.Any(), "statement.pdf").Return(tt.doc, nil)

			conv, err := svc.Convert(context.Background(), "statement.pdf")
			require.NoError(t, err)

			res := conv.Result
			assert.Equal(t, tt.wantStrategy, res.Metadata.ParseStrategyUsed)
			assert.Equal(t, tt.wantBank, res.Bank)
			assert.Len(t, res.Transactions, tt.wantTxns)
			assert.Len(t, res.Records, tt.wantRecords)
			assert.Equal(t, tt.wantReason, res.Metadata.FallbackReason)
			assert.Equal(t, 1, res.Metadata.TotalPages)
			assert.Equal(t, "statement.pdf", conv.Path)
		})
	}
}

func TestService_ConvertBankResult(t *testing.T) {
	svc, src := newService(t, nil)
	src.EXPECT().Tokens(gomock.Any(), gomock.Any()).Return(hdfcStatement(), nil)

	conv, err := svc.Convert(context.Background(), "hdfc.pdf")
	require.NoError(t, err)
	res := conv.Result

	require.Len(t, res.Transactions, 2)
	upi, salary := res.Transactions[0], res.Transactions[1]
	assert.Equal(t, "2024-04-01", upi.Date)
	require.NotNil(t, upi.Debit)
	assert.Equal(t, 1250.0, *upi.Debit)
	assert.Equal(t, "HDFC", upi.Source)
	require.NotNil(t, salary.Credit)
	assert.Equal(t, 50000.0, *salary.Credit)

	assert.Equal(t,
		[]string{"Date", "Narration", "Chq_Ref_No", "Value_Date", "Withdrawal_Amount", "Deposit_Amount", "Closing_Balance"},
		res.Metadata.HeaderFieldsDetected)

	require.NotNil(t, res.Account)
	assert.Equal(t, "2024-04-01", res.Account.PeriodFrom)
	assert.Equal(t, "2024-04-30", res.Account.PeriodTo)
}

func TestService_ConvertAccount(t *testing.T) {
	svc, src := newService(t, nil)
	src.EXPECT().Tokens(gomock.Any(), gomock.Any()).Return(genericStatement("Statement of Account"), nil)

	conv, err := svc.Convert(context.Background(), "a.pdf")
	require.NoError(t, err)
	require.NotNil(t, conv.Result.Account)
	assert.Equal(t, "12345678", conv.Result.Account.Number)
	require.NotNil(t, conv.Result.Metadata.OpeningBalance)
	assert.Equal(t, 5000.0, *conv.Result.Metadata.OpeningBalance)
}

func TestService_ForcedBank(t *testing.T) {
	t.Run("unknown bank fails before extraction", func(t *testing.T) {
		svc, _ := newService(t, nil)
		_, err := svc.ConvertWith(context.Background(), "a.pdf", "Barclays")
		assert.ErrorContains(t, err, "unsupported bank")
	})

	t.Run("forced bank without its table does not fall through", func(t *testing.T) {
		svc, src := newService(t, nil)
		src.EXPECT().Tokens(gomock.Any(), gomock.Any()).Return(genericStatement("Statement of Account"), nil)

		conv, err := svc.ConvertWith(context.Background(), "a.pdf", "hdfc")
		require.NoError(t, err)
		assert.Equal(t, "HDFC", conv.Result.Bank)
		assert.Equal(t, models.StrategyNone, conv.Result.Metadata.ParseStrategyUsed)
		assert.Empty(t, conv.Result.Transactions)
	})

	t.Run("forced bank parses its table", func(t *testing.T) {
		svc, src := newService(t, nil)
		src.EXPECT().Tokens(gomock.Any(), gomock.Any()).Return(hdfcStatement(), nil)

		conv, err := svc.ConvertWith(context.Background(), "a.pdf", "HDFC")
		require.NoError(t, err)
		assert.Equal(t, models.BankStrategy("HDFC"), conv.Result.Metadata.ParseStrategyUsed)
	})
}

func TestService_ExtractionError(t *testing.T) {
	boom := errors.New("boom")
	svc, src := newService(t, nil)
	src.EXPECT().Tokens(gomock.Any(), "bad.pdf").Return(extractor.Document{}, boom)

	_, err := svc.Convert(context.Background(), "bad.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad.pdf")
}

func TestService_Timeout(t *testing.T) {
	svc, src := newService(t, nil)
	svc.Timeout = 20 * time.Millisecond
	src.EXPECT().Tokens(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string) (extractor.Document, error) {
			<-ctx.Done()
			return extractor.Document{}, ctx.Err()
		})

	_, err := svc.Convert(context.Background(), "slow.pdf")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestService_Metrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mock_convert.NewMockTokenSource(ctrl)
	m := metrics.New()
	svc := convert.New(src, config.Default(), m, nil)

	src.EXPECT().Tokens(gomock.Any(), "ok.pdf").Return(genericStatement("Statement of Account"), nil)
	src.EXPECT().Tokens(gomock.Any(), "bad.pdf").Return(extractor.Document{}, errors.New("unreadable"))

	_, err := svc.Convert(context.Background(), "ok.pdf")
	require.NoError(t, err)
	_, err = svc.Convert(context.Background(), "bad.pdf")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Conversions.WithLabelValues("column")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("extract")))
}

func TestService_ConvertAll(t *testing.T) {
	svc, src := newService(t, nil)
	paths := []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"}
	src.EXPECT().Tokens(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, path string) (extractor.Document, error) {
			switch path {
			case "b.pdf":
				return extractor.Document{}, errors.New("corrupt")
			case "c.pdf":
				return hdfcStatement(), nil
			}
			return genericStatement("Statement of Account"), nil
		}).Times(len(paths))

	items, err := svc.ConvertAll(context.Background(), paths, 2)
	require.NoError(t, err)
	require.Len(t, items, len(paths))

	for i, p := range paths {
		assert.Equal(t, p, items[i].Path)
	}
	assert.Error(t, items[1].Err)
	assert.Nil(t, items[1].Conversion)
	require.NoError(t, items[2].Err)
	assert.Equal(t, "HDFC", items[2].Conversion.Result.Bank)
	require.NoError(t, items[3].Err)
	assert.Equal(t, models.StrategyColumn, items[3].Conversion.Result.Metadata.ParseStrategyUsed)
}

func TestService_ConvertAllZeroValue(t *testing.T) {
	src := mock_convert.NewMockTokenSource(gomock.NewController(t))
	src.EXPECT().Tokens(gomock.Any(), gomock.Any()).Return(hdfcStatement(), nil).Times(8)
	svc := &convert.Service{Source: src}

	paths := []string{"1.pdf", "2.pdf", "3.pdf", "4.pdf", "5.pdf", "6.pdf", "7.pdf", "8.pdf"}
	items, err := svc.ConvertAll(context.Background(), paths, 4)
	require.NoError(t, err)
	for _, it := range items {
		require.NoError(t, it.Err)
		assert.Equal(t, "HDFC", it.Conversion.Result.Bank)
	}
	assert.NotNil(t, svc.Logger)
	assert.NotNil(t, svc.Banks)
}

func TestService_BankNames(t *testing.T) {
	svc, _ := newService(t, nil)
	assert.Equal(t, []string{"HDFC", "IDFC", "ICICI"}, svc.BankNames())

	svc.Banks = banks.NewManager(banks.NewICICI())
	assert.Equal(t, []string{"ICICI"}, svc.BankNames())
}

func TestService_ConvertAllCancelled(t *testing.T) {
	svc, src := newService(t, nil)
	src.EXPECT().Tokens(gomock.Any(), gomock.Any()).Return(genericStatement("x"), nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.ConvertAll(ctx, []string{"a.pdf", "b.pdf"}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
