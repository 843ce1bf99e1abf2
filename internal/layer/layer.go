// Package layer derives stable layer identifiers and table names from
// chart file names.
package layer

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	reSpaceRun   = regexp.MustCompile(`[\s_]+`)
	reNotSlug    = regexp.MustCompile(`[^a-z0-9-]`)
	reHyphenRun  = regexp.MustCompile(`-+`)
	reNotTable   = regexp.MustCompile(`[^a-z0-9_]`)
	reUnderscore = regexp.MustCompile(`_+`)
)

// Layer ties a chart file to its outputs.
type Layer struct {
	ID         string
	SourcePath string
	OutputPath string
	Table      string // empty when materialization is impossible
}

// New builds the layer for a source file. ok is false when the file name
// yields no usable id.
func New(sourcePath, outputDir string) (Layer, bool) {
	id := ID(filepath.Base(sourcePath))
	if id == "" {
		return Layer{}, false
	}

	table, _ := TableName(id)
	return Layer{
		ID:         id,
		SourcePath: sourcePath,
		OutputPath: filepath.Join(outputDir, id+".geojson"),
		Table:      table,
	}, true
}

// ID turns a file name into a lowercase hyphenated slug, e.g.
// "NAV Points_2.0.xml" becomes "nav-points-2-0". The extension is dropped.
func ID(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	s := asciiLower(stem)
	s = reSpaceRun.ReplaceAllString(s, "-")
	s = reNotSlug.ReplaceAllString(s, "-")
	s = reHyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// TableName turns a layer id into an SQL-safe identifier, e.g.
// "nav-points-2-0" becomes "nav_points_2_0". ok is false for an empty result.
func TableName(id string) (string, bool) {
	s := asciiLower(id)
	s = reNotTable.ReplaceAllString(s, "_")
	s = reUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	return s, s != ""
}

// asciiLower lowercases A-Z only so ids do not depend on Unicode case
// tables.
func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
