// Package processor walks chart directories and converts every XML chart
// file into a GeoJSON layer, optionally materializing it into a database.
package processor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/woozymasta/chartconv/internal/chart"
	"github.com/woozymasta/chartconv/internal/geo"
	"github.com/woozymasta/chartconv/internal/layer"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// ErrInvalidRoot is returned when the conversion root is unusable.
var ErrInvalidRoot = errors.New("provided path does not exist")

// Normalizer validates a raw collection. Its output is written as is.
type Normalizer interface {
	Normalize(fc *geojson.FeatureCollection) *geojson.FeatureCollection
}

// Materializer replaces the rows of a layer table.
type Materializer interface {
	ReplaceLayer(table string, features []*geojson.Feature) error
}

// Converter turns chart trees into GeoJSON layers.
type Converter struct {
	normalizer Normalizer
	outputDir  string
	chain      []chart.Extractor
}

// NewConverter creates a converter writing layers into outputDir.
// A nil normalizer passes collections through unchanged.
func NewConverter(outputDir string, n Normalizer) *Converter {
	return &Converter{
		normalizer: n,
		outputDir:  outputDir,
		chain:      chart.DefaultChain,
	}
}

// OutputDir is the directory layers are written to.
func (c *Converter) OutputDir() string {
	return c.outputDir
}

// Run converts every XML file below root in walk order. When m is nil the
// database is never touched. Only an unusable root is an error; problems
// with single files are logged and reported per file.
func (c *Converter) Run(root string, m Materializer) (*Report, error) {
	root, err := CheckRoot(root)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("root", root).
		Str("output", c.outputDir).
		Bool("import_sql", m != nil).
		Msg("Starting chart conversion")

	report := newReport(m != nil)
	walkFiles(root, func(path string) {
		if !strings.EqualFold(filepath.Ext(path), ".xml") {
			return
		}

		l, ok := layer.New(path, c.outputDir)
		if !ok {
			log.Debug().Str("file", path).Msg("File name yields no layer id, ignoring")
			return
		}

		report.add(c.convert(l, m))
	})

	log.Info().
		Int("files", len(report.Results)).
		Int("written", report.Written()).
		Int("skipped", len(report.Results)-report.Written()).
		Strs("tables", report.Tables).
		Msg("Chart conversion finished")

	return report, nil
}

// CheckRoot returns the cleaned root when it is an existing directory and
// an error wrapping ErrInvalidRoot otherwise. Callers that open a database
// for the run check the root first so a bad path leaves no files behind.
func CheckRoot(root string) (string, error) {
	if root == "" {
		return "", ErrInvalidRoot
	}
	root = filepath.Clean(root)
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrInvalidRoot, root)
	}
	return root, nil
}

// convert handles one file and never fails; the outcome is in the result.
func (c *Converter) convert(l layer.Layer, m Materializer) Result {
	res := Result{File: l.SourcePath, Status: StatusSkipped}
	logger := log.With().Str("file", l.SourcePath).Str("layer", l.ID).Logger()

	data, err := os.ReadFile(l.SourcePath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read chart file")
		res.Error = err.Error()
		return res
	}

	base := filepath.Base(l.SourcePath)
	doc, err := chart.Parse(data, strings.TrimSuffix(base, filepath.Ext(base)))
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to parse chart file")
		res.Error = err.Error()
		return res
	}

	kind, features := chart.Extract(doc, c.chain)
	if len(features) == 0 {
		logger.Info().Msg("No chart data recognised, skipping")
		return res
	}

	fc := geo.NewFeatureCollection(features)
	if c.normalizer != nil {
		fc = c.normalizer.Normalize(fc)
	}

	if err := saveGeoJSON(l.OutputPath, fc); err != nil {
		logger.Error().Err(err).Str("output", l.OutputPath).Msg("Failed to write layer")
		res.Error = err.Error()
		return res
	}

	res.Status = StatusWritten
	res.Output = l.OutputPath
	res.Features = len(fc.Features)
	res.Kind = kind

	logger.Info().
		Str("kind", kind).
		Int("extracted", len(features)).
		Int("features", res.Features).
		Str("output", l.OutputPath).
		Msg("Layer written")

	if m == nil {
		return res
	}
	if l.Table == "" {
		logger.Debug().Msg("Layer id yields no table name, not materializing")
		return res
	}

	if err := m.ReplaceLayer(l.Table, fc.Features); err != nil {
		logger.Error().Err(err).Str("table", l.Table).Msg("Failed to materialize layer")
		res.Error = err.Error()
		return res
	}
	res.Table = l.Table

	return res
}
