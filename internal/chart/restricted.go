package chart

import (
	"github.com/woozymasta/chartconv/internal/geo"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// minAreaPoints is the least number of vertices that still encloses an area.
const minAreaPoints = 3

// RestrictedAreas reads <Areas><RestrictedArea Name=".." Type=".."><Area>
// elements. Each area with at least three decodable vertices becomes a
// Polygon; the others are dropped independently.
func RestrictedAreas(doc *Document) []*geojson.Feature {
	root := doc.Root()
	if root == nil {
		return nil
	}
	areas := root.SelectElement("Areas")
	if areas == nil {
		return nil
	}

	var features []*geojson.Feature
	for _, ra := range areas.SelectElements("RestrictedArea") {
		points := decodePath(childText(ra, "Area"))
		if len(points) < minAreaPoints {
			continue
		}

		name, _ := attr(ra, "Name")
		kind, _ := attr(ra, "Type")
		features = append(features, geo.NewFeature(
			orb.Polygon{orb.Ring(points)},
			geo.PropName, name,
			geo.PropType, kind,
		))
	}

	return features
}
