package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-extractor/internal/convert"
	"github.com/insightdelivered/statement-extractor/internal/extractor"
	"github.com/insightdelivered/statement-extractor/internal/metrics"
	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/writer"
)

type convertOptions struct {
	output  string
	format  string
	bank    string
	workers int
	header  bool
	ocr     bool
}

func newConvertCommand(a *app) *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert [flags] <input.pdf> [input2.pdf ...]",
		Short: "Convert statement PDFs to CSV, XLSX or JSON",
		Example: `  # Auto-detect the layout and write statement.csv next to the input
  statement-extractor convert statement.pdf

  # Force the HDFC parser and write a spreadsheet
  statement-extractor convert --bank=hdfc --format=xlsx --output=april.xlsx april.pdf

  # Convert a batch into a directory, four at a time
  statement-extractor convert --workers=4 --output=out/ jan.pdf feb.pdf mar.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if done, err := a.dumpConfig(cmd.OutOrStdout()); done {
				return err
			}
			if len(args) == 0 {
				return errors.New("no input files")
			}
			return a.runConvert(cmd.Context(), cmd.OutOrStdout(), args, opts, cmd.Flags().Changed("ocr"))
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file, or a directory when converting several inputs")
	f.StringVarP(&opts.format, "format", "f", "csv", "output format: csv, xlsx or json")
	f.StringVar(&opts.bank, "bank", "", "force a bank parser: hdfc, idfc, icici")
	f.IntVarP(&opts.workers, "workers", "w", 0, "documents converted in parallel (default from config)")
	f.BoolVar(&opts.header, "header", true, "include metadata rows in CSV output")
	f.BoolVar(&opts.ocr, "ocr", false, "OCR pages without a text layer (needs pdftoppm and tesseract)")
	return cmd
}

func (a *app) newService(ocr bool, m *metrics.Metrics) *convert.Service {
	src := a.source
	if src == nil {
		var o *extractor.OCR
		if ocr {
			o = extractor.NewOCR(a.log)
			o.Lang = a.cfg.Convert.OCRLang
			o.DPI = a.cfg.Convert.OCRDPI
		}
		src = extractor.NewPDFSource(a.log, o)
	}
	return convert.New(src, a.cfg, m, a.log)
}

func (a *app) runConvert(ctx context.Context, stdout io.Writer, inputs []string, opts convertOptions, ocrSet bool) error {
	opts.format = strings.ToLower(opts.format)
	switch opts.format {
	case "csv", "xlsx", "json":
	default:
		return fmt.Errorf("unknown format %q: use csv, xlsx or json", opts.format)
	}
	for _, in := range inputs {
		if !strings.EqualFold(filepath.Ext(in), ".pdf") {
			return fmt.Errorf("expected .pdf file, got %q", in)
		}
		if _, err := os.Stat(in); err != nil {
			return fmt.Errorf("input file: %w", err)
		}
	}
	if opts.bank != "" {
		a.cfg.Convert.Bank = opts.bank
	}
	ocr := a.cfg.Convert.OCR
	if ocrSet {
		ocr = opts.ocr
	}
	if ocr && !extractor.IsOCRAvailable() {
		a.log.Warn("OCR requested but pdftoppm or tesseract is missing")
	}

	svc := a.newService(ocr, nil)
	if opts.bank != "" {
		if _, err := svc.Banks.Lookup(opts.bank); err != nil {
			return err
		}
	}

	items, err := svc.ConvertAll(ctx, inputs, opts.workers)
	if err != nil {
		return err
	}

	failed := 0
	for _, it := range items {
		log := a.log.WithField("file", it.Path)
		if it.Err != nil {
			failed++
			log.WithError(it.Err).Error("conversion failed")
			continue
		}
		out, err := outputPath(it.Path, opts.output, opts.format, len(inputs) > 1)
		if err != nil {
			return err
		}
		if err := writeResult(out, opts, it.Conversion.Result); err != nil {
			failed++
			log.WithError(err).Error("write failed")
			continue
		}
		summarise(stdout, it.Path, out, it.Conversion.Result)
		if len(it.Conversion.Result.Transactions) == 0 {
			log.WithField("strategy", it.Conversion.Result.Metadata.ParseStrategyUsed).
				Warn("no transactions found; try --bank if the statement is from a supported bank")
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(items))
	}
	return nil
}

// outputPath derives where a converted file goes. With several inputs an
// explicit output names a directory.
func outputPath(input, output, format string, batch bool) (string, error) {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + "." + format
	switch {
	case output == "":
		return filepath.Join(filepath.Dir(input), name), nil
	case batch || strings.HasSuffix(output, string(os.PathSeparator)):
		if err := os.MkdirAll(output, 0o755); err != nil {
			return "", fmt.Errorf("creating output directory: %w", err)
		}
		return filepath.Join(output, name), nil
	}
	return output, nil
}

func writeResult(path string, opts convertOptions, res models.Result) error {
	switch opts.format {
	case "xlsx":
		return (&writer.XLSXWriter{}).WriteToFile(path, res)
	case "json":
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return os.WriteFile(path, append(data, '\n'), 0o644)
	}
	return (&writer.CSVWriter{IncludeHeader: opts.header}).WriteToFile(path, res)
}

func summarise(w io.Writer, input, output string, res models.Result) {
	fmt.Fprintf(w, "Processing: %s\n", input)
	if res.Bank != "" {
		fmt.Fprintf(w, "  Bank: %s\n", res.Bank)
	}
	fmt.Fprintf(w, "  Strategy: %s\n", res.Metadata.ParseStrategyUsed)
	fmt.Fprintf(w, "  Found %d transaction(s)\n", len(res.Transactions))
	if a := res.Account; a != nil {
		if a.Holder != "" {
			fmt.Fprintf(w, "  Account holder: %s\n", a.Holder)
		}
		if a.Number != "" {
			fmt.Fprintf(w, "  Account number: %s\n", a.Number)
		}
		if a.PeriodFrom != "" {
			fmt.Fprintf(w, "  Period: %s to %s\n", a.PeriodFrom, a.PeriodTo)
		}
	}
	fmt.Fprintf(w, "  Output: %s\n", output)
}
