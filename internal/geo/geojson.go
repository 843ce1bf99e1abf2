// Package geo handles chart coordinates and GeoJSON geometry.
package geo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Property keys written by the chart extractors.
const (
	PropName = "name"
	PropType = "type"
)

func init() {
	// orb marshals features and geometries itself; without this hook
	// every nested value is HTML escaped regardless of the outer encoder.
	geojson.CustomJSONMarshaler = unescapedJSON{}
}

// unescapedJSON marshals like encoding/json but leaves &, < and > as is.
type unescapedJSON struct{}

func (unescapedJSON) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// nameKeys is the lookup order used when a feature name is read back.
var nameKeys = []string{"name", "Name", "ident"}

// NewFeature wraps a geometry into a feature carrying string properties.
// Keys are set in the order given as key, value pairs.
func NewFeature(g orb.Geometry, kv ...string) *geojson.Feature {
	f := geojson.NewFeature(g)
	for i := 0; i+1 < len(kv); i += 2 {
		f.Properties[kv[i]] = kv[i+1]
	}
	return f
}

// NewFeatureCollection builds a collection preserving feature order.
func NewFeatureCollection(features []*geojson.Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		fc.Append(f)
	}
	return fc
}

// FeatureName returns the first present of the name, Name and ident
// properties, or an empty string.
func FeatureName(f *geojson.Feature) string {
	if f == nil {
		return ""
	}
	for _, key := range nameKeys {
		v, ok := f.Properties[key]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}

	return ""
}

// Encode writes the collection as indented JSON without HTML escaping.
// Output is deterministic for equal input.
func Encode(w io.Writer, fc *geojson.FeatureCollection) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(fc)
}

// MarshalGeometry serializes only the geometry object of a feature,
// e.g. {"type":"Point","coordinates":[-116.5,32.5]}.
func MarshalGeometry(g orb.Geometry) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("nil geometry")
	}
	return json.Marshal(geojson.NewGeometry(g))
}
