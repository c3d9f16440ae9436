package models

import "strings"

// Token is a positioned word produced by the text or OCR layer.
// Coordinates are page-space points with y increasing downward.
type Token struct {
	Text string  `json:"text"`
	X0   float64 `json:"x0"`
	Y0   float64 `json:"y0"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	Page int     `json:"page"`
}

// MidY is the vertical center of the token's box.
func (t Token) MidY() float64 { return (t.Y0 + t.Y1) / 2 }

// CenterX is the horizontal center of the token's box.
func (t Token) CenterX() float64 { return (t.X0 + t.X1) / 2 }

func (t Token) Width() float64  { return t.X1 - t.X0 }
func (t Token) Height() float64 { return t.Y1 - t.Y0 }

// Row is one visual line: tokens on the same page sharing a Y band,
// ordered left to right. Y is the running mean of the members' mid-Y.
type Row struct {
	Page   int
	Y      float64
	Tokens []Token
}

// Text joins the row's token texts with single spaces.
func (r Row) Text() string {
	parts := make([]string, 0, len(r.Tokens))
	for _, t := range r.Tokens {
		if s := strings.TrimSpace(t.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
