package chart

import (
	"strings"

	"github.com/woozymasta/chartconv/internal/geo"

	"github.com/beevik/etree"
	"github.com/paulmach/orb/geojson"
)

// Points reads every <Point Name=".." Position=".." Type=".."/> and
// <Airport ICAO=".." Position=".."/> in the document, points first.
// Elements missing a name or position, or whose position does not decode,
// are skipped.
func Points(doc *Document) []*geojson.Feature {
	if doc.Root() == nil {
		return nil
	}

	var features []*geojson.Feature
	for _, p := range doc.Tree.FindElements("//Point") {
		kind, _ := attr(p, "Type")
		if f := positioned(p, "Name", kind); f != nil {
			features = append(features, f)
		}
	}

	for _, a := range doc.Tree.FindElements("//Airport") {
		if f := positioned(a, "ICAO", "airport"); f != nil {
			features = append(features, f)
		}
	}

	return features
}

func positioned(e *etree.Element, nameAttr, kind string) *geojson.Feature {
	name := strings.TrimSpace(e.SelectAttrValue(nameAttr, ""))
	pos := strings.TrimSpace(e.SelectAttrValue("Position", ""))
	if name == "" || pos == "" {
		return nil
	}

	p, ok := geo.DecodePair(pos)
	if !ok {
		return nil
	}

	return geo.NewFeature(p, geo.PropName, name, geo.PropType, kind)
}
