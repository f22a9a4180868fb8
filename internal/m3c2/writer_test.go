package m3c2

import (
	"bytes"
	"encoding/csv"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r3"
)

func computedTestSet(t *testing.T) *DiffSet {
	t.Helper()

	nan := math.NaN()
	ref := testCloud(3)
	ref.Points = []r3.Vec{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}, {X: 7, Y: 8, Z: 9}}
	ref.Distance = []float64{1.0, 2.0, nan}
	other := testCloud(3)
	other.Points = ref.Points
	other.Distance = []float64{1.0, 2.5, nan}

	ds, err := NewDiffSet(ref, other)
	if err != nil {
		t.Fatalf("NewDiffSet: %v", err)
	}
	if err := ds.Compute(); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return ds
}

func TestWriteDiffTableRoundTrip(t *testing.T) {
	ds := computedTestSet(t)

	var buf bytes.Buffer
	if err := WriteDiffTable(&buf, ds); err != nil {
		t.Fatalf("WriteDiffTable: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("re-parsing table: %v", err)
	}
	if len(records) != ds.Len()+1 {
		t.Fatalf("got %d rows, want %d", len(records), ds.Len()+1)
	}

	wantHeader := []string{
		"X Coord", "Y Coord", "Z Coord",
		"X", "Y", "Z", "NX", "NY", "NZ", "Distance", "LODetection",
		"Aspect", "Slope", "Nan-Mode",
	}
	if diff := cmp.Diff(wantHeader, records[0]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	// Leading columns are the reference coordinates.
	for i, want := range []string{"1", "2", "3"} {
		if records[1][i] != want {
			t.Errorf("row 1 col %d = %q, want %q", i, records[1][i], want)
		}
	}

	// Re-parsed distance column reproduces the computed values.
	distCol := 9
	wantDist := []string{"0", "0.5", "NaN"}
	for i, want := range wantDist {
		if records[i+1][distCol] != want {
			t.Errorf("distance[%d] = %q, want %q", i, records[i+1][distCol], want)
		}
	}

	// NaN-vs-NaN row carries classification mode 3.
	modeCol := len(wantHeader) - 1
	wantModes := []string{"0", "0", "3"}
	for i, want := range wantModes {
		if records[i+1][modeCol] != want {
			t.Errorf("nan_mode[%d] = %q, want %q", i, records[i+1][modeCol], want)
		}
	}
}

func TestWriteDiffTableQuotesEveryField(t *testing.T) {
	ds := computedTestSet(t)

	var buf bytes.Buffer
	if err := WriteDiffTable(&buf, ds); err != nil {
		t.Fatalf("WriteDiffTable: %v", err)
	}

	for lineNo, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		for fieldNo, field := range strings.Split(line, ",") {
			if !strings.HasPrefix(field, `"`) || !strings.HasSuffix(field, `"`) {
				t.Fatalf("line %d field %d %q is not quoted", lineNo, fieldNo, field)
			}
		}
	}
}

func TestWriteDiffTableValuesRoundTripExactly(t *testing.T) {
	ds := computedTestSet(t)

	var buf bytes.Buffer
	if err := WriteDiffTable(&buf, ds); err != nil {
		t.Fatalf("WriteDiffTable: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("re-parsing table: %v", err)
	}

	dist, _ := ds.Diff(AttrDistance)
	for i, want := range dist {
		got, err := strconv.ParseFloat(records[i+1][9], 64)
		if err != nil {
			t.Fatalf("parsing distance[%d]: %v", i, err)
		}
		if math.IsNaN(want) {
			if !math.IsNaN(got) {
				t.Errorf("distance[%d] = %v, want NaN", i, got)
			}
			continue
		}
		if got != want {
			t.Errorf("distance[%d] = %v, want exactly %v", i, got, want)
		}
	}
}

func TestWriteStatsTable(t *testing.T) {
	ds := computedTestSet(t)
	sum, err := Summarize(ds)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteStatsTable(&buf, ds, sum); err != nil {
		t.Fatalf("WriteStatsTable: %v", err)
	}

	// Header + Mean/Median/StdDev + three NaN rows; the NaN rows are
	// two-field label/value pairs.
	r := csv.NewReader(strings.NewReader(buf.String()))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("re-parsing stats: %v", err)
	}
	if len(records) != 7 {
		t.Fatalf("got %d rows, want 7", len(records))
	}

	header := records[0]
	if header[0] != "Statistics" || header[len(header)-2] != "Aspect" || header[len(header)-1] != "Slope" {
		t.Errorf("unexpected header: %v", header)
	}

	meanRow := records[1]
	if meanRow[0] != "Mean" {
		t.Errorf("row 1 label = %q, want Mean", meanRow[0])
	}
	distIdx := -1
	for i, col := range header {
		if col == "Distance" {
			distIdx = i
		}
	}
	if distIdx < 0 {
		t.Fatal("no Distance column in stats header")
	}
	if meanRow[distIdx] != "0.25" {
		t.Errorf("mean distance = %q, want 0.25", meanRow[distIdx])
	}

	if records[3][0] != "Standard Deviation" {
		t.Errorf("row 3 label = %q, want Standard Deviation", records[3][0])
	}

	wantNaNRows := [][2]string{
		{"Nan-Values in Reference Only", "0.00 %"},
		{"Nan-Values in Comparison Only", "0.00 %"},
		{"Nan-Values in Both", "33.33 %"},
	}
	for i, want := range wantNaNRows {
		row := records[4+i]
		if row[0] != want[0] || row[1] != want[1] {
			t.Errorf("NaN row %d = %v, want %v", i, row, want)
		}
	}
}

func TestWriteStatsTableUndefinedIsNone(t *testing.T) {
	// All-NaN distances leave fewer than two valid values.
	nan := math.NaN()
	ref := testCloud(2)
	ref.Distance = []float64{nan, nan}
	other := testCloud(2)
	other.Distance = []float64{nan, nan}

	ds, err := NewDiffSet(ref, other)
	if err != nil {
		t.Fatalf("NewDiffSet: %v", err)
	}
	if err := ds.Compute(); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	sum, err := Summarize(ds)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteStatsTable(&buf, ds, sum); err != nil {
		t.Fatalf("WriteStatsTable: %v", err)
	}
	if !strings.Contains(buf.String(), `"None"`) {
		t.Error("undefined statistics must serialise as quoted None")
	}
}
