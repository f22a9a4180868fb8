// Package ccparams parses the CloudCompare M3C2 plugin parameter file that
// drives both external implementations. The format is an INI-style
// [General] section of key=value lines; keys are case-sensitive and the
// full set is preserved so a run record can capture the exact
// configuration it was produced with.
package ccparams

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Params is one parsed parameter file. All raw pairs are kept; the typed
// accessors cover the keys the evaluation reports on.
type Params struct {
	values map[string]string
}

// Load reads and parses a parameter file from path.
func Load(path string) (*Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening parameter file: %w", err)
	}
	defer f.Close()

	p := &Params{values: map[string]string{}}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			// Section headers carry no values; the plugin only writes
			// [General].
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("%s line %d: expected key=value, got %q", path, lineNo, line)
		}
		p.values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading parameter file: %w", err)
	}
	return p, nil
}

// Get returns the raw value for key.
func (p *Params) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Float returns the value for key parsed as float64, or the fallback when
// the key is absent or not numeric.
func (p *Params) Float(key string, fallback float64) float64 {
	v, ok := p.values[key]
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

// Bool returns the value for key parsed as a boolean, or the fallback.
// The plugin writes "true"/"false".
func (p *Params) Bool(key string, fallback bool) bool {
	v, ok := p.values[key]
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// Keys the M3C2 plugin writes that the evaluation records alongside a run.
const (
	KeyNormalScale       = "NormalScale"
	KeySearchScale       = "SearchScale"
	KeySearchDepth       = "SearchDepth"
	KeyRegistrationError = "RegistrationError"
	KeyUseMedian         = "UseMedian"
	KeyExportStdDevInfo  = "ExportStdDevInfo"
	KeyExportDensity     = "ExportDensityAtProjScale"
)

// NormalScale returns the normal estimation diameter.
func (p *Params) NormalScale() float64 { return p.Float(KeyNormalScale, 0) }

// SearchScale returns the projection cylinder diameter.
func (p *Params) SearchScale() float64 { return p.Float(KeySearchScale, 0) }

// SearchDepth returns the projection cylinder half-depth.
func (p *Params) SearchDepth() float64 { return p.Float(KeySearchDepth, 0) }

// RegistrationError returns the registration error fed into the level of
// detection.
func (p *Params) RegistrationError() float64 { return p.Float(KeyRegistrationError, 0) }

// UseMedian reports whether distances use the median instead of the mean.
func (p *Params) UseMedian() bool { return p.Bool(KeyUseMedian, false) }

// ExportsSpread reports whether the run exports per-epoch distance spread.
func (p *Params) ExportsSpread() bool { return p.Bool(KeyExportStdDevInfo, false) }

// ExportsDensity reports whether the run exports per-epoch point counts.
func (p *Params) ExportsDensity() bool { return p.Bool(KeyExportDensity, false) }

// Map returns a copy of every key/value pair, for run records.
func (p *Params) Map() map[string]string {
	out := make(map[string]string, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// String renders the parameters as sorted key=value lines.
func (p *Params) String() string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, p.values[k])
	}
	return b.String()
}
