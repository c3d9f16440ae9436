package extractor

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// ErrOCRUnavailable means pdftoppm or tesseract is not installed.
var ErrOCRUnavailable = errors.New("OCR tools not available (install poppler-utils and tesseract-ocr)")

const (
	DefaultDPI  = 300
	DefaultLang = "eng"
	// PSM 4 = assume a single column of text of variable sizes
	defaultPSM = 4
	// tesseract reports words at level 5
	wordLevel = 5
)

// OCR rasterises scanned pages with pdftoppm and reads words back with
// tesseract's TSV output.
type OCR struct {
	DPI           int
	Lang          string
	MinConfidence float64
	Logger        logrus.FieldLogger
}

// NewOCR returns an OCR with the default resolution and language.
func NewOCR(logger logrus.FieldLogger) *OCR {
	return &OCR{DPI: DefaultDPI, Lang: DefaultLang, Logger: logger}
}

// IsOCRAvailable reports whether the external tools are on PATH.
func IsOCRAvailable() bool {
	_, err1 := exec.LookPath("pdftoppm")
	_, err2 := exec.LookPath("tesseract")
	return err1 == nil && err2 == nil
}

func (o *OCR) dpi() int {
	if o.DPI > 0 {
		return o.DPI
	}
	return DefaultDPI
}

func (o *OCR) lang() string {
	if o.Lang != "" {
		return o.Lang
	}
	return DefaultLang
}

// Pages OCRs the given page numbers of the PDF at path. Pages that fail
// are skipped; an error is returned only when nothing could be read.
func (o *OCR) Pages(ctx context.Context, path string, pages []int) ([]models.Token, error) {
	if !IsOCRAvailable() {
		return nil, ErrOCRUnavailable
	}
	tmpDir, err := os.MkdirTemp("", "ocr-pages-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	var (
		out     []models.Token
		lastErr error
	)
	for _, n := range pages {
		toks, err := o.page(ctx, path, tmpDir, n)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if o.Logger != nil {
				o.Logger.WithError(err).WithField("page", n).Warn("OCR page failed")
			}
			continue
		}
		out = append(out, toks...)
	}
	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

func (o *OCR) page(ctx context.Context, path, dir string, n int) ([]models.Token, error) {
	num := strconv.Itoa(n)
	prefix := filepath.Join(dir, "page-"+num)
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-r", strconv.Itoa(o.dpi()), "-png", "-f", num, "-l", num, "-singlefile", path, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}

	var stderr bytes.Buffer
	cmd = exec.CommandContext(ctx, "tesseract", prefix+".png", "stdout",
		"-l", o.lang(), "--psm", strconv.Itoa(defaultPSM), "tsv")
	cmd.Stderr = &stderr
	tsv, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("tesseract failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	return decodeTSV(tsv, n, o.dpi(), o.MinConfidence)
}

// tsvWord is one row of tesseract's TSV output.
type tsvWord struct {
	Level  int     `csv:"level"`
	Page   int     `csv:"page_num"`
	Block  int     `csv:"block_num"`
	Par    int     `csv:"par_num"`
	Line   int     `csv:"line_num"`
	Word   int     `csv:"word_num"`
	Left   float64 `csv:"left"`
	Top    float64 `csv:"top"`
	Width  float64 `csv:"width"`
	Height float64 `csv:"height"`
	Conf   float64 `csv:"conf"`
	Text   string  `csv:"text"`
}

// decodeTSV converts word rows to tokens, scaling pixels at dpi back to
// points.
func decodeTSV(data []byte, page, dpi int, minConf float64) ([]models.Token, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var rows []tsvWord
	if err := gocsv.UnmarshalCSV(r, &rows); err != nil {
		return nil, fmt.Errorf("decode tesseract tsv: %w", err)
	}

	scale := 72 / float64(dpi)
	var out []models.Token
	for _, w := range rows {
		text := strings.TrimSpace(w.Text)
		if w.Level != wordLevel || text == "" || w.Conf < minConf {
			continue
		}
		out = append(out, models.Token{
			Text: sanitizeOCRAmount(text),
			X0:   w.Left * scale,
			Y0:   w.Top * scale,
			X1:   (w.Left + w.Width) * scale,
			Y1:   (w.Top + w.Height) * scale,
			Page: page,
		})
	}
	return out, nil
}

var (
	amountShape    = regexp.MustCompile(`^[(\-]?[\dOoIlS,.]+[)\-]?$`)
	ocrDigitFixups = strings.NewReplacer("O", "0", "o", "0", "I", "1", "l", "1", "S", "5")
)

// sanitizeOCRAmount repairs letters tesseract commonly puts in place of
// digits inside figures such as "1,2O4.5O". Words that are not shaped like
// an amount are returned unchanged.
func sanitizeOCRAmount(s string) string {
	if !amountShape.MatchString(s) || !strings.ContainsAny(s, ",.") {
		return s
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits == 0 {
		return s
	}
	return ocrDigitFixups.Replace(s)
}
