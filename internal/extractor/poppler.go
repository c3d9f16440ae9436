package extractor

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// popplerTokens runs `pdftotext -bbox`, which prints every word with its
// box in top-left page coordinates.
func popplerTokens(ctx context.Context, path string) (Document, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return Document{}, fmt.Errorf("pdftotext not available: %w", err)
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "pdftotext", "-bbox", path, "-")
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return Document{}, fmt.Errorf("pdftotext failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	doc, err := parseBBox(bytes.NewReader(out))
	if err != nil {
		return Document{}, err
	}
	if len(doc.Pages) == 0 {
		return Document{}, ErrNoPages
	}
	return doc, nil
}

// parseBBox decodes pdftotext's XHTML word list.
func parseBBox(r io.Reader) (Document, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	var (
		doc  Document
		page *PageInfo
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Document{}, fmt.Errorf("parse pdftotext output: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "page":
			doc.Pages = append(doc.Pages, PageInfo{
				Number:  len(doc.Pages) + 1,
				Width:   attrFloat(start, "width"),
				Height:  attrFloat(start, "height"),
				Scanned: true,
			})
			page = &doc.Pages[len(doc.Pages)-1]
		case "word":
			if page == nil {
				continue
			}
			var text string
			if err := dec.DecodeElement(&text, &start); err != nil {
				return Document{}, fmt.Errorf("parse pdftotext word: %w", err)
			}
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			doc.Tokens = append(doc.Tokens, models.Token{
				Text: text,
				X0:   attrFloat(start, "xMin"),
				Y0:   attrFloat(start, "yMin"),
				X1:   attrFloat(start, "xMax"),
				Y1:   attrFloat(start, "yMax"),
				Page: page.Number,
			})
			page.Scanned = false
		}
	}
	return doc, nil
}

func attrFloat(el xml.StartElement, name string) float64 {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			v, _ := strconv.ParseFloat(a.Value, 64)
			return v
		}
	}
	return 0
}
