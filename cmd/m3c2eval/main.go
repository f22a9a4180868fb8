// Command m3c2eval compares two M3C2 surface-change result clouds and
// writes the per-point difference table, summary statistics, an exported
// difference cloud, and optional plot and report artifacts.
//
// Usage:
//
//	m3c2eval [flags] reference.xyz comparison.xyz
//
// The reference cloud is the baseline; the comparison cloud is evaluated
// against it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg"

	"github.com/change-detect/m3c2eval/internal/ccparams"
	"github.com/change-detect/m3c2eval/internal/cloudio"
	"github.com/change-detect/m3c2eval/internal/m3c2"
	"github.com/change-detect/m3c2eval/internal/report"
	"github.com/change-detect/m3c2eval/internal/runstore"
)

var (
	outDir     = flag.String("out", ".", "Directory for output artifacts")
	precision  = flag.Int("precision", m3c2.DefaultPrecision, "Decimal digits below which a difference counts as zero")
	paramsFile = flag.String("params", "", "CloudCompare M3C2 parameter file to record with the run")
	plots      = flag.Bool("plots", false, "Write PNG difference maps, polar scatter and histograms")
	htmlReport = flag.Bool("report", false, "Write an interactive HTML report")
	pointSize  = flag.Float64("point-size", 1.5, "Marker radius in points for the PNG difference maps")
	dbFile     = flag.String("db", "", "SQLite run database (empty: do not record the run)")
	label      = flag.String("label", "", "Label stored with the recorded run")
	vocabName  = flag.String("vocab", "cloudcompare", "Attribute names for the diff cloud export: cloudcompare or py4dgeo")
)

const (
	diffTableName  = "m3c2_eval_diffs.csv"
	statsTableName = "m3c2_eval_stats.csv"
	diffCloudName  = "m3c2_eval_cloud.xyz"
	reportName     = "m3c2_eval_report.html"
)

func main() {
	flag.Parse()
	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] reference.xyz comparison.xyz\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}
	refPath, otherPath := flag.Arg(0), flag.Arg(1)

	vocab, err := cloudio.ParseVocabulary(*vocabName)
	if err != nil {
		log.Fatalf("Invalid -vocab: %v", err)
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Creating output directory: %v", err)
	}

	reference, err := cloudio.ReadXYZ(refPath)
	if err != nil {
		log.Fatalf("Reading reference cloud %s: %v", refPath, err)
	}
	other, err := cloudio.ReadXYZ(otherPath)
	if err != nil {
		log.Fatalf("Reading comparison cloud %s: %v", otherPath, err)
	}
	log.Printf("Loaded %d reference and %d comparison points", reference.Len(), other.Len())

	ds, err := m3c2.NewDiffSet(reference, other, m3c2.WithPrecision(*precision))
	if err != nil {
		log.Fatalf("Pairing clouds: %v", err)
	}
	if err := ds.Compute(); err != nil {
		log.Fatalf("Computing differences: %v", err)
	}

	summary, err := m3c2.Summarize(ds)
	if err != nil {
		log.Fatalf("Summarising differences: %v", err)
	}
	logSummary(summary)

	if err := writeTables(ds, summary); err != nil {
		log.Fatalf("Writing tables: %v", err)
	}
	if err := cloudio.WriteDiffCloud(filepath.Join(*outDir, diffCloudName), ds, vocab); err != nil {
		log.Fatalf("Writing diff cloud: %v", err)
	}

	if *plots {
		if err := writePlots(ds); err != nil {
			log.Fatalf("Writing plots: %v", err)
		}
	}
	if *htmlReport {
		title := fmt.Sprintf("%s vs %s", filepath.Base(refPath), filepath.Base(otherPath))
		if err := report.WriteHTML(filepath.Join(*outDir, reportName), title, ds); err != nil {
			log.Fatalf("Writing HTML report: %v", err)
		}
	}

	if *dbFile != "" {
		id, err := recordRun(refPath, otherPath, summary)
		if err != nil {
			log.Fatalf("Recording run: %v", err)
		}
		log.Printf("Recorded run %s in %s", id, *dbFile)
	}
	log.Printf("Wrote artifacts to %s", *outDir)
}

func logSummary(sum *m3c2.Summary) {
	for _, col := range sum.Columns {
		st := sum.Stats[col]
		if st == nil {
			log.Printf("%-14s too few valid values", col)
			continue
		}
		log.Printf("%-14s mean=%-12.6g median=%-12.6g stddev=%.6g", col, st.Mean, st.Median, st.StdDev)
	}
	log.Printf("NaN: both=%.2f%% reference-only=%.2f%% comparison-only=%.2f%%",
		sum.PctBothNaN, sum.PctReferenceNaN, sum.PctOtherNaN)
}

func writeTables(ds *m3c2.DiffSet, sum *m3c2.Summary) error {
	diffFile, err := os.Create(filepath.Join(*outDir, diffTableName))
	if err != nil {
		return err
	}
	defer diffFile.Close()
	if err := m3c2.WriteDiffTable(diffFile, ds); err != nil {
		return fmt.Errorf("diff table: %w", err)
	}

	statsFile, err := os.Create(filepath.Join(*outDir, statsTableName))
	if err != nil {
		return err
	}
	defer statsFile.Close()
	if err := m3c2.WriteStatsTable(statsFile, ds, sum); err != nil {
		return fmt.Errorf("stats table: %w", err)
	}
	return nil
}

func writePlots(ds *m3c2.DiffSet) error {
	size := vg.Points(*pointSize)
	points := ds.Reference().Points

	for _, attr := range []m3c2.Attribute{m3c2.AttrDistance, m3c2.AttrLODetection} {
		vals, err := ds.Diff(attr)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("map_%s.png", strings.ToLower(string(attr)))
		title := fmt.Sprintf("Difference in %s", attr)
		if err := report.SaveDiffMap(filepath.Join(*outDir, name), title, points, vals, size); err != nil {
			log.Printf("Skipping %s: %v", name, err)
		}
	}

	aspects, err := ds.Aspects()
	if err != nil {
		return err
	}
	slopes, err := ds.Slopes()
	if err != nil {
		return err
	}
	if err := report.SavePolarScatter(filepath.Join(*outDir, "normal_deviation.png"), aspects, slopes); err != nil {
		log.Printf("Skipping normal_deviation.png: %v", err)
	}
	if err := report.SaveHistogram(filepath.Join(*outDir, "hist_aspect.png"), "Aspect histogram", aspects, report.DefaultHistBins); err != nil {
		log.Printf("Skipping hist_aspect.png: %v", err)
	}
	if err := report.SaveHistogram(filepath.Join(*outDir, "hist_slope.png"), "Slope histogram", slopes, report.DefaultHistBins); err != nil {
		log.Printf("Skipping hist_slope.png: %v", err)
	}

	for _, attr := range ds.Attributes() {
		vals, err := ds.Diff(attr)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("hist_%s.png", strings.ToLower(string(attr)))
		title := fmt.Sprintf("%s difference histogram", attr)
		if err := report.SaveHistogram(filepath.Join(*outDir, name), title, vals, report.DefaultHistBins); err != nil {
			log.Printf("Skipping %s: %v", name, err)
		}
	}
	return nil
}

func recordRun(refPath, otherPath string, sum *m3c2.Summary) (string, error) {
	var params map[string]string
	if *paramsFile != "" {
		p, err := ccparams.Load(*paramsFile)
		if err != nil {
			return "", fmt.Errorf("loading parameter file: %w", err)
		}
		params = p.Map()
	}

	store, err := runstore.Open(*dbFile)
	if err != nil {
		return "", err
	}
	defer store.Close()

	return store.InsertRun(context.Background(), &runstore.Run{
		Label:         *label,
		ReferencePath: refPath,
		OtherPath:     otherPath,
		Params:        params,
		Summary:       sum,
	})
}
