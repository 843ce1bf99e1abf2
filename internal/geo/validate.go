package geo

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const maxNameSamples = 3

// Stats summarises the health of one GeoJSON layer.
type Stats struct {
	File            string   `json:"file" yaml:"file"`
	Features        int      `json:"features" yaml:"features"`
	Coords          int      `json:"coords" yaml:"coords"`
	OutOfRange      int      `json:"out_of_range" yaml:"out_of_range"`
	InvalidGeometry int      `json:"invalid_geometry" yaml:"invalid_geometry"`
	Names           []string `json:"names,omitempty" yaml:"names,omitempty"`
	Examples        []string `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// Errors is the number of problems found.
func (s Stats) Errors() int {
	return s.OutOfRange + s.InvalidGeometry
}

// Validate counts coordinates outside the WGS84 range and malformed
// geometries. At most maxExamples out-of-range coordinates are described.
func Validate(fc *geojson.FeatureCollection, maxExamples int) Stats {
	var s Stats
	if fc == nil {
		return s
	}

	s.Features = len(fc.Features)
	for idx, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			s.InvalidGeometry++
			continue
		}
		if !wellFormed(f.Geometry) {
			s.InvalidGeometry++
		}

		if name := FeatureName(f); name != "" && len(s.Names) < maxNameSamples {
			s.Names = append(s.Names, name)
		}

		eachPoint(f.Geometry, func(p orb.Point) {
			s.Coords++
			if validPoint(p) {
				return
			}
			s.OutOfRange++
			if len(s.Examples) < maxExamples {
				s.Examples = append(s.Examples,
					fmt.Sprintf("feature %d | lon=%v lat=%v", idx, p[0], p[1]))
			}
		})
	}

	return s
}

// wellFormed applies the minimum vertex counts of each geometry type.
func wellFormed(g orb.Geometry) bool {
	switch g := g.(type) {
	case orb.Point:
		return true
	case orb.MultiPoint:
		return len(g) >= 1
	case orb.LineString:
		return len(g) >= 2
	case orb.Polygon:
		return len(g) >= 1
	case orb.MultiLineString:
		return len(g) >= 1
	case orb.MultiPolygon:
		return len(g) >= 1
	}
	return false
}

func eachPoint(g orb.Geometry, fn func(orb.Point)) {
	switch g := g.(type) {
	case orb.Point:
		fn(g)
	case orb.MultiPoint:
		for _, p := range g {
			fn(p)
		}
	case orb.LineString:
		for _, p := range g {
			fn(p)
		}
	case orb.Ring:
		for _, p := range g {
			fn(p)
		}
	case orb.Polygon:
		for _, r := range g {
			eachPoint(r, fn)
		}
	case orb.MultiLineString:
		for _, ls := range g {
			eachPoint(ls, fn)
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			eachPoint(poly, fn)
		}
	case orb.Collection:
		for _, c := range g {
			eachPoint(c, fn)
		}
	}
}
