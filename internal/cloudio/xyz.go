// Package cloudio reads and writes M3C2 result clouds in the ASCII XYZ
// interchange format both external implementations can export: an optional
// `//`-prefixed header naming the columns, then one space-separated row per
// point. Attribute names from both the CloudCompare and the py4dgeo
// vocabularies are recognised and mapped onto the same CloudResult fields.
package cloudio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/change-detect/m3c2eval/internal/m3c2"
	"gonum.org/v1/gonum/spatial/r3"
)

// field identifies a CloudResult destination for one input column.
type field int

const (
	fieldIgnore field = iota
	fieldX
	fieldY
	fieldZ
	fieldNormalX
	fieldNormalY
	fieldNormalZ
	fieldDistance
	fieldUncertainty
	fieldSpread1
	fieldSpread2
	fieldSamples1
	fieldSamples2
)

// canonicalField maps a header token to its destination. CloudCompare has
// shipped several spellings of the distance and uncertainty names over
// time; all of them and the py4dgeo names are accepted.
func canonicalField(name string) field {
	switch name {
	case "X", "x":
		return fieldX
	case "Y", "y":
		return fieldY
	case "Z", "z":
		return fieldZ
	case "NormalX", "Nx", "nx":
		return fieldNormalX
	case "NormalY", "Ny", "ny":
		return fieldNormalY
	case "NormalZ", "Nz", "nz":
		return fieldNormalZ
	case "M3C2__distance", "M3C2_distance", "distance":
		return fieldDistance
	case "distance__uncertainty", "distance_uncertainty", "lodetection":
		return fieldUncertainty
	case "STD_cloud1", "spread1":
		return fieldSpread1
	case "STD_cloud2", "spread2":
		return fieldSpread2
	case "Npoints_cloud1", "num_samples1":
		return fieldSamples1
	case "Npoints_cloud2", "num_samples2":
		return fieldSamples2
	}
	return fieldIgnore
}

// ReadXYZ reads one result cloud from path. The header row is required:
// without column names the attribute columns cannot be assigned. Columns
// with unknown names are ignored. Absent normals yield NaN-filled normal
// vectors; absent spread or sample columns leave the corresponding
// CloudResult fields nil.
func ReadXYZ(path string) (*m3c2.CloudResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening cloud file: %w", err)
	}
	defer f.Close()

	cloud, err := readXYZ(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return cloud, nil
}

func readXYZ(r io.Reader) (*m3c2.CloudResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var fields []field
	columns := map[field][]float64{}
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "//") {
			if fields != nil {
				return nil, fmt.Errorf("line %d: duplicate header", lineNo)
			}
			for _, name := range strings.Fields(strings.TrimPrefix(line, "//")) {
				fields = append(fields, canonicalField(name))
			}
			continue
		}
		if fields == nil {
			return nil, fmt.Errorf("line %d: data before //-header with column names", lineNo)
		}

		parts := strings.Fields(line)
		if len(parts) != len(fields) {
			return nil, fmt.Errorf("line %d: %d fields, header declares %d", lineNo, len(parts), len(fields))
		}
		for i, part := range parts {
			if fields[i] == fieldIgnore {
				continue
			}
			v, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid value %q: %w", lineNo, part, err)
			}
			columns[fields[i]] = append(columns[fields[i]], v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("empty cloud file")
	}

	return assembleCloud(columns)
}

func assembleCloud(columns map[field][]float64) (*m3c2.CloudResult, error) {
	xs, ys, zs := columns[fieldX], columns[fieldY], columns[fieldZ]
	if xs == nil || ys == nil || zs == nil {
		return nil, fmt.Errorf("cloud has no X/Y/Z coordinate columns")
	}
	n := len(xs)

	cloud := &m3c2.CloudResult{
		Points:      make([]r3.Vec, n),
		Normals:     make([]r3.Vec, n),
		Distance:    columns[fieldDistance],
		Uncertainty: columns[fieldUncertainty],
	}
	for i := 0; i < n; i++ {
		cloud.Points[i] = r3.Vec{X: xs[i], Y: ys[i], Z: zs[i]}
	}

	if cloud.Distance == nil {
		return nil, fmt.Errorf("cloud has no M3C2 distance column")
	}
	if cloud.Uncertainty == nil {
		return nil, fmt.Errorf("cloud has no distance uncertainty column")
	}

	nx, ny, nz := columns[fieldNormalX], columns[fieldNormalY], columns[fieldNormalZ]
	if nx != nil && ny != nil && nz != nil {
		for i := 0; i < n; i++ {
			cloud.Normals[i] = r3.Vec{X: nx[i], Y: ny[i], Z: nz[i]}
		}
	} else {
		// No exported normals: NaN placeholders keep the arrays aligned
		// and flow through the angle computation as NaN.
		nan := math.NaN()
		for i := 0; i < n; i++ {
			cloud.Normals[i] = r3.Vec{X: nan, Y: nan, Z: nan}
		}
	}

	s1, s2 := columns[fieldSpread1], columns[fieldSpread2]
	if s1 != nil && s2 != nil {
		cloud.Spread = &m3c2.EpochPair{Epoch1: s1, Epoch2: s2}
	}
	c1, c2 := columns[fieldSamples1], columns[fieldSamples2]
	if c1 != nil && c2 != nil {
		cloud.NumSamples = &m3c2.EpochPair{Epoch1: c1, Epoch2: c2}
	}

	if err := cloud.Validate(); err != nil {
		return nil, err
	}
	return cloud, nil
}

// Column is one named attribute column for WriteXYZ, in output order.
type Column struct {
	Name   string
	Values []float64
}

// WriteXYZ writes points and attribute columns in the same ASCII format
// ReadXYZ consumes: a //-header with the column names, one row per point.
func WriteXYZ(path string, points []r3.Vec, attrs []Column) error {
	for _, col := range attrs {
		if len(col.Values) != len(points) {
			return fmt.Errorf("column %s has %d values for %d points", col.Name, len(col.Values), len(points))
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating cloud file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprint(w, "//X Y Z")
	for _, col := range attrs {
		fmt.Fprintf(w, " %s", col.Name)
	}
	fmt.Fprintln(w)

	for i, p := range points {
		fmt.Fprintf(w, "%s %s %s", formatValue(p.X), formatValue(p.Y), formatValue(p.Z))
		for _, col := range attrs {
			fmt.Fprintf(w, " %s", formatValue(col.Values[i]))
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
