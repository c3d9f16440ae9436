package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-extractor/internal/extractor"
	"github.com/insightdelivered/statement-extractor/internal/models"
)

type staticSource struct {
	doc extractor.Document
}

func (s staticSource) Tokens(context.Context, string) (extractor.Document, error) {
	return s.doc, nil
}

type cell struct {
	text   string
	x0, x1 float64
}

func line(y float64, cs ...cell) []models.Token {
	out := make([]models.Token, 0, len(cs))
	for _, c := range cs {
		out = append(out, models.Token{Text: c.text, X0: c.x0, X1: c.x1, Y0: y - 5, Y1: y + 5, Page: 1})
	}
	return out
}

// statement is a one-page Date/Description/Debit/Credit/Balance table with
// an opening balance row and two transactions.
func statement() extractor.Document {
	doc := extractor.Document{Pages: []extractor.PageInfo{{Number: 1, Width: 595, Height: 842}}}
	for _, row := range [][]models.Token{
		line(25, cell{"Statement", 40, 94}, cell{"of", 104, 116}, cell{"Account", 126, 168}),
		line(85,
			cell{"Date", 50, 80},
			cell{"Description", 140, 220},
			cell{"Debit", 305, 335},
			cell{"Credit", 385, 420},
			cell{"Balance", 470, 515},
		),
		line(105, cell{"01/06/2025", 40, 90}, cell{"Opening Balance", 140, 220}, cell{"5000.00", 470, 515}),
		line(125, cell{"02/06/2025", 40, 90}, cell{"ATM Withdrawal", 140, 220}, cell{"500.00", 305, 335}, cell{"4500.00", 470, 515}),
		line(145, cell{"03/06/2025", 40, 90}, cell{"Salary Credit", 140, 220}, cell{"5000.00", 385, 420}, cell{"9500.00", 470, 515}),
	} {
		doc.Tokens = append(doc.Tokens, row...)
	}
	return doc
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STX_LOG_LEVEL", "error")
	var out, errOut bytes.Buffer
	cmd := newRootCommand(a)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func touchPDF(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("%PDF-1.4\n"), 0o644))
	return p
}

func TestVersion(t *testing.T) {
	out, err := run(t, &app{}, "version")
	require.NoError(t, err)
	assert.Equal(t, "statement-extractor v"+Version+"\n", out)
}

func TestResolve(t *testing.T) {
	out, err := run(t, &app{}, "resolve", "Withdrawal Amt", "xyzzy123")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "FIELD")
	assert.Contains(t, lines[1], "Debit")
	assert.Contains(t, lines[2], "None")
}

func TestResolve_RequiresArgs(t *testing.T) {
	_, err := run(t, &app{}, "resolve")
	assert.Error(t, err)
}

func TestWriteConfig(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		out, err := run(t, &app{}, "--write-config", "-")
		require.NoError(t, err)
		assert.Contains(t, out, "thresholds:")
		assert.Contains(t, out, "server:")
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		_, err := run(t, &app{}, "convert", "--write-config", path)
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "thresholds:")
	})
}

func TestConfigFlag_Missing(t *testing.T) {
	_, err := run(t, &app{}, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "version")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConvert_Validation(t *testing.T) {
	dir := t.TempDir()
	pdf := touchPDF(t, dir, "a.pdf")
	txt := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no inputs", []string{"convert"}, "no input files"},
		{"not a pdf", []string{"convert", txt}, "expected .pdf file"},
		{"missing file", []string{"convert", filepath.Join(dir, "gone.pdf")}, "input file"},
		{"unknown format", []string{"convert", "-f", "ods", pdf}, "unknown format"},
		{"unknown bank", []string{"convert", "--bank", "metro", pdf}, "unsupported bank"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, &app{source: staticSource{statement()}}, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConvert_CSV(t *testing.T) {
	dir := t.TempDir()
	pdf := touchPDF(t, dir, "june.pdf")

	out, err := run(t, &app{source: staticSource{statement()}}, "convert", pdf)
	require.NoError(t, err)
	assert.Contains(t, out, "Processing: "+pdf)
	assert.Contains(t, out, "Found 2 transaction(s)")

	data, err := os.ReadFile(filepath.Join(dir, "june.csv"))
	require.NoError(t, err)
	csv := string(data)
	assert.Contains(t, csv, "# Strategy")
	assert.Contains(t, csv, "ATM Withdrawal")
	assert.Contains(t, csv, "Salary Credit")
}

func TestConvert_Formats(t *testing.T) {
	for _, format := range []string{"json", "xlsx"} {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			pdf := touchPDF(t, dir, "june.pdf")
			dest := filepath.Join(dir, "custom."+format)

			_, err := run(t, &app{source: staticSource{statement()}}, "convert", "-f", format, "-o", dest, pdf)
			require.NoError(t, err)

			info, err := os.Stat(dest)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}
}

func TestConvert_Batch(t *testing.T) {
	dir := t.TempDir()
	a := touchPDF(t, dir, "jan.pdf")
	b := touchPDF(t, dir, "feb.pdf")
	outDir := filepath.Join(dir, "out")

	_, err := run(t, &app{source: staticSource{statement()}}, "convert", "-w", "2", "-o", outDir, a, b)
	require.NoError(t, err)

	for _, name := range []string{"jan.csv", "feb.csv"} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	sep := string(os.PathSeparator)

	tests := []struct {
		name   string
		input  string
		output string
		format string
		batch  bool
		want   string
	}{
		{"next to input", "/data/june.pdf", "", "csv", false, "/data/june.csv"},
		{"explicit file", "/data/june.pdf", "/tmp/x.xlsx", "xlsx", false, "/tmp/x.xlsx"},
		{"batch directory", "/data/june.pdf", filepath.Join(dir, "b"), "json", true, filepath.Join(dir, "b", "june.json")},
		{"trailing separator", "/data/june.pdf", filepath.Join(dir, "s") + sep, "csv", false, filepath.Join(dir, "s", "june.csv")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := outputPath(tt.input, tt.output, tt.format, tt.batch)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}
