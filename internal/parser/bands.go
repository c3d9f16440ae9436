package parser

import (
	"math"
	"sort"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// Bands are the column ranges derived from a header, sorted by X0 and
// non-overlapping. RTL marks a right-to-left reading order.
type Bands struct {
	Bands []models.ColumnBand
	RTL   bool
}

// BuildBands turns resolved header cells into column bands. pageWidth is
// used only for right-to-left detection and may be zero.
func BuildBands(cells []HeaderCell, pageWidth float64, opts Options) (Bands, error) {
	opts = opts.withDefaults()
	raw := make([]models.ColumnBand, 0, len(cells))
	for _, c := range cells {
		if c.Field == models.FieldNone {
			continue
		}
		raw = append(raw, models.ColumnBand{
			Field: c.Field,
			X0:    c.Token.X0 - opts.BandMargin,
			X1:    c.Token.X1 + opts.BandMargin,
		})
	}
	sort.SliceStable(raw, func(i, j int) bool { return raw[i].X0 < raw[j].X0 })

	var merged []models.ColumnBand
	for _, b := range raw {
		if n := len(merged); n > 0 {
			last := &merged[n-1]
			if last.Field == b.Field && b.X0 <= last.X1+opts.BandMergeGap {
				last.X0 = math.Min(last.X0, b.X0)
				last.X1 = math.Max(last.X1, b.X1)
				continue
			}
		}
		merged = append(merged, b)
	}

	for i := 1; i < len(merged); i++ {
		prev, cur := &merged[i-1], &merged[i]
		if cur.X0 >= prev.X1 {
			continue
		}
		mid := (cur.X0 + math.Min(prev.X1, cur.X1)) / 2
		prev.X1 = mid
		cur.X0 = mid
	}

	switch {
	case len(merged) == 0:
		return Bands{}, ErrNoBands
	case len(merged) > opts.MaxBands:
		return Bands{}, ErrTooManyBands
	}

	out := Bands{Bands: merged}
	if pageWidth > 0 {
		for _, b := range merged {
			if b.Field == models.FieldDate {
				out.RTL = b.Center() > opts.RTLThreshold*pageWidth
				break
			}
		}
	}
	return out, nil
}

// Ordered returns the bands in reading order.
func (b Bands) Ordered() []models.ColumnBand {
	out := make([]models.ColumnBand, len(b.Bands))
	copy(out, b.Bands)
	if b.RTL {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// Fields names the band fields in reading order.
func (b Bands) Fields() []string {
	ordered := b.Ordered()
	out := make([]string, len(ordered))
	for i, band := range ordered {
		out[i] = band.Field.String()
	}
	return out
}

// Assign returns the field of the band containing x.
func (b Bands) Assign(x float64) (models.Field, bool) {
	for _, band := range b.Bands {
		if band.Contains(x) {
			return band.Field, true
		}
	}
	return models.FieldNone, false
}

// Has reports whether any band satisfies pred.
func (b Bands) Has(pred func(models.Field) bool) bool {
	for _, band := range b.Bands {
		if pred(band.Field) {
			return true
		}
	}
	return false
}
