package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// Normalizer repairs axis order, closes polygon rings and drops features
// whose geometry cannot be salvaged.
type Normalizer struct {
	// Region is the expected coverage area. Points outside it whose
	// swapped form falls inside are treated as lat/lon and swapped.
	// Nil disables the check.
	Region *orb.Bound
}

// NewNormalizer returns a Normalizer with an optional region of interest.
func NewNormalizer(region *orb.Bound) *Normalizer {
	return &Normalizer{Region: region}
}

// Normalize returns a new collection; the input is not modified.
// Feature order and properties are preserved.
func (n *Normalizer) Normalize(fc *geojson.FeatureCollection) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	if fc == nil {
		return out
	}

	for i, f := range fc.Features {
		if f == nil {
			continue
		}

		g, ok := n.geometry(f.Geometry)
		if !ok {
			log.Debug().
				Int("feature", i).
				Str("name", FeatureName(f)).
				Msg("Dropping feature with unusable geometry")
			continue
		}

		nf := *f
		nf.Geometry = g
		out.Append(&nf)
	}

	return out
}

func (n *Normalizer) geometry(g orb.Geometry) (orb.Geometry, bool) {
	switch g := g.(type) {
	case orb.Point:
		p := n.point(g)
		return p, validPoint(p)

	case orb.MultiPoint:
		if len(g) == 0 {
			return nil, false
		}
		mp := make(orb.MultiPoint, len(g))
		for i, p := range g {
			mp[i] = n.point(p)
			if !validPoint(mp[i]) {
				return nil, false
			}
		}
		return mp, true

	case orb.LineString:
		ls, ok := n.lineString(g)
		return ls, ok

	case orb.MultiLineString:
		if len(g) == 0 {
			return nil, false
		}
		mls := make(orb.MultiLineString, len(g))
		for i, ls := range g {
			var ok bool
			if mls[i], ok = n.lineString(ls); !ok {
				return nil, false
			}
		}
		return mls, true

	case orb.Polygon:
		poly, ok := n.polygon(g)
		return poly, ok

	case orb.MultiPolygon:
		if len(g) == 0 {
			return nil, false
		}
		mp := make(orb.MultiPolygon, len(g))
		for i, poly := range g {
			var ok bool
			if mp[i], ok = n.polygon(poly); !ok {
				return nil, false
			}
		}
		return mp, true
	}

	return nil, false
}

func (n *Normalizer) lineString(ls orb.LineString) (orb.LineString, bool) {
	if len(ls) < 2 {
		return nil, false
	}
	out := make(orb.LineString, len(ls))
	for i, p := range ls {
		out[i] = n.point(p)
		if !validPoint(out[i]) {
			return nil, false
		}
	}
	return out, true
}

func (n *Normalizer) polygon(poly orb.Polygon) (orb.Polygon, bool) {
	if len(poly) == 0 {
		return nil, false
	}
	out := make(orb.Polygon, len(poly))
	for i, ring := range poly {
		r := make(orb.Ring, len(ring), len(ring)+1)
		for j, p := range ring {
			r[j] = n.point(p)
			if !validPoint(r[j]) {
				return nil, false
			}
		}
		r = closeRing(r)
		if len(r) < 4 {
			return nil, false
		}
		out[i] = r
	}
	return out, true
}

// point swaps the axes when the stored order is evidently lat/lon.
func (n *Normalizer) point(p orb.Point) orb.Point {
	lon, lat := p[0], p[1]
	swapped := orb.Point{lat, lon}

	if !validLat(lat) && validLat(lon) && validLon(lat) {
		return swapped
	}

	if n.Region != nil && !n.Region.Contains(p) && n.Region.Contains(swapped) {
		return swapped
	}

	return p
}

// closeRing appends the first point when a ring of three or more points
// is left open.
func closeRing(r orb.Ring) orb.Ring {
	if len(r) < 3 || r[0] == r[len(r)-1] {
		return r
	}
	return append(r, r[0])
}

func validPoint(p orb.Point) bool {
	return validLon(p[0]) && validLat(p[1])
}

func validLat(v float64) bool {
	return !math.IsNaN(v) && v >= -90 && v <= 90
}

func validLon(v float64) bool {
	return !math.IsNaN(v) && v >= -180 && v <= 180
}
