package cloudio

import (
	"fmt"

	"github.com/change-detect/m3c2eval/internal/m3c2"
)

// Vocabulary selects the attribute naming scheme of the diff-cloud export.
type Vocabulary int

const (
	// VocabCloudCompare writes CloudCompare scalar-field names
	// (M3C2__distance, STD_cloud1, NormalX, ...).
	VocabCloudCompare Vocabulary = iota
	// VocabPy4dGeo writes py4dgeo attribute names
	// (distance, lodetection, spread1, nx, ...).
	VocabPy4dGeo
)

// ParseVocabulary maps a flag value to a Vocabulary.
func ParseVocabulary(s string) (Vocabulary, error) {
	switch s {
	case "cloudcompare", "cc":
		return VocabCloudCompare, nil
	case "py4dgeo":
		return VocabPy4dGeo, nil
	}
	return 0, fmt.Errorf("unknown vocabulary %q (want cloudcompare or py4dgeo)", s)
}

var diffCloudNames = map[Vocabulary]map[m3c2.Attribute]string{
	VocabCloudCompare: {
		m3c2.AttrDistance:    "M3C2__distance",
		m3c2.AttrLODetection: "distance__uncertainty",
		m3c2.AttrSpread1:     "STD_cloud1",
		m3c2.AttrSpread2:     "STD_cloud2",
		m3c2.AttrNumSamples1: "Npoints_cloud1",
		m3c2.AttrNumSamples2: "Npoints_cloud2",
		m3c2.AttrNX:          "NormalX",
		m3c2.AttrNY:          "NormalY",
		m3c2.AttrNZ:          "NormalZ",
	},
	VocabPy4dGeo: {
		m3c2.AttrDistance:    "distance",
		m3c2.AttrLODetection: "lodetection",
		m3c2.AttrSpread1:     "spread1",
		m3c2.AttrSpread2:     "spread2",
		m3c2.AttrNumSamples1: "num_samples1",
		m3c2.AttrNumSamples2: "num_samples2",
		m3c2.AttrNX:          "nx",
		m3c2.AttrNY:          "ny",
		m3c2.AttrNZ:          "nz",
	},
}

// diffCloudOrder is the column order of the diff-cloud export: the scalar
// results first, optional groups in the middle, normal components last.
var diffCloudOrder = []m3c2.Attribute{
	m3c2.AttrDistance, m3c2.AttrLODetection,
	m3c2.AttrSpread1, m3c2.AttrSpread2,
	m3c2.AttrNumSamples1, m3c2.AttrNumSamples2,
	m3c2.AttrNX, m3c2.AttrNY, m3c2.AttrNZ,
}

// WriteDiffCloud exports the computed differences as a point cloud at the
// reference coordinates, so the per-point disagreement can be inspected in
// the same viewers as the original result clouds. Conditional columns are
// present only when the difference set carries them.
func WriteDiffCloud(path string, ds *m3c2.DiffSet, vocab Vocabulary) error {
	names, ok := diffCloudNames[vocab]
	if !ok {
		return fmt.Errorf("unknown vocabulary %d", vocab)
	}

	var attrs []Column
	for _, attr := range diffCloudOrder {
		if !ds.Has(attr) {
			continue
		}
		vals, err := ds.Diff(attr)
		if err != nil {
			return err
		}
		attrs = append(attrs, Column{Name: names[attr], Values: vals})
	}
	return WriteXYZ(path, ds.Reference().Points, attrs)
}
