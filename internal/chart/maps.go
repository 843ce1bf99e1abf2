package chart

import (
	"github.com/woozymasta/chartconv/internal/geo"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Maps reads <Map Name=".."><Line Name="..">coords</Line></Map> elements.
// A line whose first and last vertices are identical is a Polygon,
// any other line a LineString. Names fall back from line to map to file.
func Maps(doc *Document) []*geojson.Feature {
	root := doc.Root()
	if root == nil {
		return nil
	}

	var features []*geojson.Feature
	for _, m := range root.SelectElements("Map") {
		mapName, ok := attr(m, "Name")
		if !ok {
			mapName = doc.BaseName
		}

		for _, line := range m.SelectElements("Line") {
			lineName, ok := attr(line, "Name")
			if !ok {
				lineName = mapName
			}

			points := decodePath(line.Text())
			if len(points) == 0 {
				continue
			}

			features = append(features, geo.NewFeature(lineGeometry(points), geo.PropName, lineName))
		}
	}

	return features
}

// lineGeometry classifies a decoded vertex chain by exact closure.
func lineGeometry(points []orb.Point) orb.Geometry {
	if points[0] == points[len(points)-1] {
		return orb.Polygon{orb.Ring(points)}
	}
	return orb.LineString(points)
}
