package extractor

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

const (
	defaultFontSize = 10.0
	// wordGapRatio is the horizontal gap, as a fraction of font size,
	// that separates two words.
	wordGapRatio = 0.3
	// lineShift is the baseline change that starts a new word.
	lineShift = 1.0
	// minReadable is the share of printable runes a page needs before its
	// text layer is trusted.
	minReadable = 0.6
)

type glyph struct {
	r       rune
	x, w, y float64
	size    float64
}

// glyphs splits content runs into single runes, spreading a run's width
// evenly over its characters.
func glyphs(texts []pdf.Text) []glyph {
	var out []glyph
	for _, t := range texts {
		n := utf8.RuneCountInString(t.S)
		if n == 0 {
			continue
		}
		size := t.FontSize
		if size <= 0 {
			size = defaultFontSize
		}
		cw := t.W / float64(n)
		i := 0
		for _, r := range t.S {
			out = append(out, glyph{r: r, x: t.X + float64(i)*cw, w: cw, y: t.Y, size: size})
			i++
		}
	}
	return out
}

// assembleWords joins glyphs into word tokens. A word ends at whitespace,
// at a baseline change, at a gap wider than wordGapRatio of the font size,
// or when the pen moves back left. Y is flipped so it grows downward.
func assembleWords(texts []pdf.Text, page int, height float64) []models.Token {
	var (
		out    []models.Token
		b      strings.Builder
		active bool
		cur    models.Token
		base   float64
		size   float64
	)
	flush := func() {
		if active && strings.TrimSpace(b.String()) != "" {
			cur.Text = b.String()
			cur.Y1 = height - base
			cur.Y0 = cur.Y1 - size
			cur.Page = page
			out = append(out, cur)
		}
		b.Reset()
		active = false
	}

	for _, g := range glyphs(texts) {
		if unicode.IsSpace(g.r) {
			flush()
			continue
		}
		if active && (math.Abs(g.y-base) > lineShift || g.x-cur.X1 > wordGapRatio*g.size || g.x < cur.X0) {
			flush()
		}
		if !active {
			active = true
			cur = models.Token{X0: g.x, X1: g.x + g.w}
			base, size = g.y, g.size
		}
		b.WriteRune(g.r)
		if end := g.x + g.w; end > cur.X1 {
			cur.X1 = end
		}
		if g.size > size {
			size = g.size
		}
	}
	flush()
	return out
}

// readable rejects text layers made of replacement characters, control
// codes or private-use glyphs, which is what fonts without a Unicode map
// decode to.
func readable(toks []models.Token) bool {
	total, good := 0, 0
	for _, t := range toks {
		for _, r := range t.Text {
			total++
			if r == utf8.RuneError || unicode.IsControl(r) || unicode.Is(unicode.Co, r) {
				continue
			}
			good++
		}
	}
	return total > 0 && float64(good)/float64(total) > minReadable
}
