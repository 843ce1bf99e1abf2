// Package chart extracts GeoJSON features from XML chart definitions.
//
// Three chart kinds are recognised: restricted airspace areas, maps made
// of lines, and point/airport registries. A file is assumed to hold one
// kind; extractors are tried in order and the first that yields features
// wins.
package chart

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/woozymasta/chartconv/internal/geo"

	"github.com/beevik/etree"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Chart kinds reported by the extractors.
const (
	KindRestrictedAreas = "restricted-areas"
	KindMaps            = "maps"
	KindPoints          = "points"
)

// ErrNoRoot is returned for documents without a root element.
var ErrNoRoot = errors.New("document has no root element")

// Document is a parsed chart file.
type Document struct {
	Tree *etree.Document
	// BaseName is the file name without extension, used as a fallback
	// map name.
	BaseName string
}

// Root returns the document element.
func (d *Document) Root() *etree.Element {
	if d == nil || d.Tree == nil {
		return nil
	}
	return d.Tree.Root()
}

// Extractor reads one chart kind out of a document. An empty result means
// the document is not of that kind.
type Extractor struct {
	Kind    string
	Extract func(doc *Document) []*geojson.Feature
}

// DefaultChain is the extractor order used for conversion.
var DefaultChain = []Extractor{
	{Kind: KindRestrictedAreas, Extract: RestrictedAreas},
	{Kind: KindMaps, Extract: Maps},
	{Kind: KindPoints, Extract: Points},
}

// Parse reads a well-formed XML document.
func Parse(data []byte, baseName string) (*Document, error) {
	if err := checkWellFormed(data); err != nil {
		return nil, err
	}

	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("read xml: %w", err)
	}
	if tree.Root() == nil {
		return nil, ErrNoRoot
	}

	return &Document{Tree: tree, BaseName: baseName}, nil
}

// Extract runs the chain and returns the kind and features of the first
// extractor that matches. kind is empty when none does.
func Extract(doc *Document, chain []Extractor) (kind string, features []*geojson.Feature) {
	for _, e := range chain {
		if features = e.Extract(doc); len(features) > 0 {
			return e.Kind, features
		}
	}
	return "", nil
}

// checkWellFormed walks all tokens with the strict standard decoder, which
// rejects mismatched or unterminated elements.
func checkWellFormed(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	for {
		_, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("malformed xml: %w", err)
		}
	}
}

// decodePath decodes a slash separated list of coordinate pairs, dropping
// segments that do not decode.
func decodePath(text string) []orb.Point {
	var points []orb.Point
	for _, seg := range strings.Split(strings.TrimSpace(text), "/") {
		if p, ok := geo.DecodePair(seg); ok {
			points = append(points, p)
		}
	}
	return points
}

// attr returns the attribute value and whether it is present.
func attr(e *etree.Element, key string) (string, bool) {
	if a := e.SelectAttr(key); a != nil {
		return a.Value, true
	}
	return "", false
}

// childText returns the text of the first child with the given tag.
func childText(e *etree.Element, tag string) string {
	if c := e.SelectElement(tag); c != nil {
		return c.Text()
	}
	return ""
}
