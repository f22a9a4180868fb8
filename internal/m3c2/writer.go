package m3c2

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Column labels of the per-point table. The leading three columns are
// always the reference cloud's coordinates; the trailing three are the
// derived angle columns and the NaN classification. Column order is a
// compatibility contract for downstream consumers.
const (
	colXCoord  = "X Coord"
	colYCoord  = "Y Coord"
	colZCoord  = "Z Coord"
	colNaNMode = "Nan-Mode"
)

// WriteDiffTable writes the per-point difference table as CSV: reference
// coordinates, one column per schema attribute in declared order, then
// Aspect, Slope and Nan-Mode. Every field is quoted regardless of type so
// the table re-parses stably, NaN and None fields included.
func WriteDiffTable(w io.Writer, ds *DiffSet) error {
	if !ds.Computed() {
		return ErrNotComputed
	}

	bw := bufio.NewWriter(w)

	header := []string{colXCoord, colYCoord, colZCoord}
	for _, attr := range ds.Attributes() {
		header = append(header, string(attr))
	}
	header = append(header, ColAspect, ColSlope, colNaNMode)
	if err := writeQuotedRow(bw, header); err != nil {
		return err
	}

	attrs := ds.Attributes()
	pts := ds.reference.Points
	for i := 0; i < ds.Len(); i++ {
		row := make([]string, 0, len(header))
		row = append(row, formatFloat(pts[i].X), formatFloat(pts[i].Y), formatFloat(pts[i].Z))
		for _, attr := range attrs {
			row = append(row, formatFloat(ds.diffs[attr][i]))
		}
		row = append(row,
			formatFloat(ds.aspects[i]),
			formatFloat(ds.slopes[i]),
			strconv.Itoa(int(ds.nanModes[i])),
		)
		if err := writeQuotedRow(bw, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteStatsTable writes the summary table: a header of column names, the
// Mean/Median/Standard Deviation rows ("None" where undefined), then the
// three NaN-percentage rows as label/value pairs.
func WriteStatsTable(w io.Writer, ds *DiffSet, sum *Summary) error {
	if !ds.Computed() {
		return ErrNotComputed
	}

	bw := bufio.NewWriter(w)

	header := append([]string{"Statistics"}, sum.Columns...)
	if err := writeQuotedRow(bw, header); err != nil {
		return err
	}

	rows := []struct {
		label string
		pick  func(*AttributeStats) float64
	}{
		{"Mean", func(s *AttributeStats) float64 { return s.Mean }},
		{"Median", func(s *AttributeStats) float64 { return s.Median }},
		{"Standard Deviation", func(s *AttributeStats) float64 { return s.StdDev }},
	}
	for _, r := range rows {
		row := []string{r.label}
		for _, col := range sum.Columns {
			if s := sum.Stats[col]; s != nil {
				row = append(row, formatFloat(r.pick(s)))
			} else {
				row = append(row, "None")
			}
		}
		if err := writeQuotedRow(bw, row); err != nil {
			return err
		}
	}

	pctRows := [][2]string{
		{"Nan-Values in Reference Only", fmt.Sprintf("%.2f %%", sum.PctReferenceNaN)},
		{"Nan-Values in Comparison Only", fmt.Sprintf("%.2f %%", sum.PctOtherNaN)},
		{"Nan-Values in Both", fmt.Sprintf("%.2f %%", sum.PctBothNaN)},
	}
	for _, r := range pctRows {
		if err := writeQuotedRow(bw, r[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// formatFloat renders a float64 with the shortest representation that
// round-trips, NaN as the literal "NaN".
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// writeQuotedRow emits one CSV record with every field quoted. The
// standard csv.Writer only quotes fields that need it, which breaks the
// quote-all output contract, so quoting is done here; embedded quotes are
// doubled per RFC 4180.
func writeQuotedRow(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if err := w.WriteByte('"'); err != nil {
			return err
		}
		if _, err := w.WriteString(strings.ReplaceAll(f, `"`, `""`)); err != nil {
			return err
		}
		if err := w.WriteByte('"'); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}
