package banks

import (
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

type cell struct {
	text   string
	x0, x1 float64
}

// placed builds a row from explicitly positioned cells.
func placed(page int, y float64, cells ...cell) models.Row {
	row := models.Row{Page: page, Y: y}
	for _, c := range cells {
		row.Tokens = append(row.Tokens, models.Token{
			Text: c.text, X0: c.x0, X1: c.x1, Y0: y - 5, Y1: y + 5, Page: page,
		})
	}
	return row
}

// words lays text out left to right, one token per word.
func words(page int, y float64, text string) models.Row {
	row := models.Row{Page: page, Y: y}
	x := 40.0
	for _, w := range strings.Fields(text) {
		width := 6 * float64(len(w))
		row.Tokens = append(row.Tokens, models.Token{
			Text: w, X0: x, X1: x + width, Y0: y - 5, Y1: y + 5, Page: page,
		})
		x += width + 10
	}
	return row
}

func hdfcHeader(y float64) models.Row {
	return placed(1, y,
		cell{"Date", 40, 60},
		cell{"Narration", 90, 140},
		cell{"Chq./Ref.No.", 200, 250},
		cell{"Value Dt", 280, 315},
		cell{"Withdrawal Amt.", 340, 400},
		cell{"Deposit Amt.", 425, 470},
		cell{"Closing Balance", 495, 555},
	)
}

func hdfcStatement() []models.Row {
	return []models.Row{
		words(1, 20, "HDFC BANK Ltd Statement of account"),
		hdfcHeader(60),
		placed(1, 80,
			cell{"01/04/2024", 40, 90},
			cell{"UPI-ACME", 90, 130},
			cell{"STORES", 140, 175},
			cell{"0000412345678901", 200, 260},
			cell{"01/04/2024", 280, 330},
			cell{"1,250.00", 350, 390},
			cell{"48,750.00", 500, 545},
		),
		placed(1, 100,
			cell{"02/04/2024", 40, 90},
			cell{"SALARY", 90, 125},
			cell{"02/04/2024", 280, 330},
			cell{"50,000.00", 430, 475},
			cell{"98,750.00", 500, 545},
		),
		placed(1, 120,
			cell{"03/04/2024", 40, 90},
			cell{"CHARGES", 90, 130},
			cell{"98,750.00", 500, 545},
		),
		words(1, 140, "Statement period 01/04/2024 to 30/04/2024"),
		words(1, 160, "OPENING BALANCE 48,000.00"),
	}
}
