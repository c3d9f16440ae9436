// Package extractor turns PDF files into positioned word tokens.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// A4 in points, used when a page carries no usable MediaBox.
const (
	defaultPageWidth  = 595.0
	defaultPageHeight = 842.0
)

// ErrNoPages is returned for documents without a single page.
var ErrNoPages = errors.New("PDF has no pages")

// PageInfo describes one page of the source document.
type PageInfo struct {
	Number  int     `json:"number"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Scanned bool    `json:"scanned,omitempty"` // no readable text layer
}

// Document is the token layer of a PDF.
type Document struct {
	Tokens []models.Token
	Pages  []PageInfo
}

// ScannedPages lists the pages with no readable text layer.
func (d Document) ScannedPages() []int {
	var out []int
	for _, p := range d.Pages {
		if p.Scanned {
			out = append(out, p.Number)
		}
	}
	return out
}

// PageWidths maps page numbers to widths.
func (d Document) PageWidths() map[int]float64 {
	out := make(map[int]float64, len(d.Pages))
	for _, p := range d.Pages {
		out[p.Number] = p.Width
	}
	return out
}

// PDFSource reads tokens from the PDF text layer. When the library cannot
// open a file it falls back to pdftotext, and scanned pages go through OCR
// when one is configured.
type PDFSource struct {
	OCR    *OCR
	Logger logrus.FieldLogger
}

// NewPDFSource returns a source. ocr may be nil.
func NewPDFSource(logger logrus.FieldLogger, ocr *OCR) *PDFSource {
	return &PDFSource{OCR: ocr, Logger: logger}
}

func (s *PDFSource) log() logrus.FieldLogger {
	if s.Logger != nil {
		return s.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Tokens extracts the document at path.
func (s *PDFSource) Tokens(ctx context.Context, path string) (Document, error) {
	log := s.log().WithField("file", path)

	doc, err := readLibrary(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return Document{}, ctx.Err()
		}
		log.WithError(err).Debug("pdf library failed, trying pdftotext")
		var popErr error
		doc, popErr = popplerTokens(ctx, path)
		if popErr != nil {
			return Document{}, fmt.Errorf("extract %s: %w", path, err)
		}
	}

	if scanned := doc.ScannedPages(); len(scanned) > 0 {
		log = log.WithField("scanned", scanned)
		if s.OCR == nil {
			log.Warn("pages without a text layer, OCR disabled")
		} else {
			toks, err := s.OCR.Pages(ctx, path, scanned)
			if err != nil {
				if ctx.Err() != nil {
					return Document{}, ctx.Err()
				}
				log.WithError(err).Warn("OCR failed")
			} else {
				doc.Tokens = append(doc.Tokens, toks...)
				log.WithField("tokens", len(toks)).Debug("OCR tokens added")
			}
		}
	}

	log.WithFields(logrus.Fields{
		"pages":  len(doc.Pages),
		"tokens": len(doc.Tokens),
	}).Debug("tokens extracted")
	return doc, nil
}

func readLibrary(ctx context.Context, path string) (doc Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()

	n := r.NumPage()
	if n == 0 {
		return Document{}, ErrNoPages
	}
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return Document{}, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		info, toks := readPage(page, i)
		doc.Pages = append(doc.Pages, info)
		doc.Tokens = append(doc.Tokens, toks...)
	}
	return doc, nil
}

// readPage isolates a crash in one page's content stream from the rest of
// the document; such a page is reported as scanned.
func readPage(page pdf.Page, n int) (info PageInfo, toks []models.Token) {
	w, h := mediaBox(page.V)
	info = PageInfo{Number: n, Width: w, Height: h, Scanned: true}
	defer func() {
		if r := recover(); r != nil {
			toks = nil
		}
	}()

	toks = assembleWords(page.Content().Text, n, h)
	if !readable(toks) {
		return info, nil
	}
	info.Scanned = false
	return info, toks
}

// mediaBox returns the page size, following inheritance through /Parent.
func mediaBox(v pdf.Value) (w, h float64) {
	defer func() {
		if r := recover(); r != nil {
			w, h = defaultPageWidth, defaultPageHeight
		}
	}()
	for depth := 0; depth < 16 && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			x0, y0, x1, y1 := number(box.Index(0)), number(box.Index(1)), number(box.Index(2)), number(box.Index(3))
			if x1 > x0 && y1 > y0 {
				return x1 - x0, y1 - y0
			}
		}
		v = v.Key("Parent")
	}
	return defaultPageWidth, defaultPageHeight
}

func number(v pdf.Value) float64 {
	switch v.Kind() {
	case pdf.Integer:
		return float64(v.Int64())
	case pdf.Real:
		return v.Float64()
	}
	return 0
}
