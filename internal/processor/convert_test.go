package processor

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woozymasta/chartconv/internal/geo"
	"github.com/woozymasta/chartconv/internal/store"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const airspaceXML = `<Airspace><Areas>
  <RestrictedArea Name="MMR101" Type="Restricted"><Area>+323000-1163000/+323000-1170000/+330000-1170000</Area></RestrictedArea>
  <RestrictedArea Name="TWO" Type="Danger"><Area>+323000-1163000/+330000-1170000</Area></RestrictedArea>
</Areas></Airspace>`

const sectorXML = `<Maps><Map Name="TMA">
  <Line Name="Boundary">+320000-1170000/+320000-1160000/+330000-1160000/+320000-1170000</Line>
  <Line>+320000-1170000/+330000-1170000</Line>
</Map></Maps>`

const navXML = `<Nav>
  <Point Name="TIJ" Type="VOR" Position="323200N 1165800W"/>
  <Airport ICAO="MMTJ" Position="+3232.4-11658.3"/>
</Nav>`

type fakeMaterializer struct {
	calls map[string]int
	fail  map[string]bool
	order []string
}

func (f *fakeMaterializer) ReplaceLayer(table string, features []*geojson.Feature) error {
	if f.fail[table] {
		return errors.New("disk full")
	}
	f.order = append(f.order, table)
	f.calls[table] = len(features)
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// chartTree builds a small chart directory and returns its root.
func chartTree(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "vatmex")

	writeFile(t, filepath.Join(root, "Airspace.xml"), airspaceXML)
	writeFile(t, filepath.Join(root, "Broken.xml"), "<Maps><Map>")
	writeFile(t, filepath.Join(root, "Maps", "TMA Tijuana", "Sector_A.xml"), sectorXML)
	writeFile(t, filepath.Join(root, "Nav", "NAV Points_2.0.xml"), navXML)
	writeFile(t, filepath.Join(root, "Unknown.XML"), `<Sectors><Sector Name="A"/></Sectors>`)
	writeFile(t, filepath.Join(root, "readme.txt"), "not a chart")
	writeFile(t, filepath.Join(root, ".xml"), navXML)

	return root
}

func TestRun(t *testing.T) {
	root := chartTree(t)
	out := filepath.Join(t.TempDir(), "data")

	report, err := NewConverter(out, geo.NewNormalizer(nil)).Run(root, nil)
	require.NoError(t, err)

	assert.True(t, report.OK)
	assert.False(t, report.ImportSQL)
	assert.Empty(t, report.Tables)

	want := []Result{
		{File: filepath.Join(root, "Airspace.xml"), Status: StatusWritten, Output: filepath.Join(out, "airspace.geojson"), Kind: "restricted-areas", Features: 1},
		{File: filepath.Join(root, "Broken.xml"), Status: StatusSkipped},
		{File: filepath.Join(root, "Maps", "TMA Tijuana", "Sector_A.xml"), Status: StatusWritten, Output: filepath.Join(out, "sector-a.geojson"), Kind: "maps", Features: 2},
		{File: filepath.Join(root, "Nav", "NAV Points_2.0.xml"), Status: StatusWritten, Output: filepath.Join(out, "nav-points-2-0.geojson"), Kind: "points", Features: 2},
		{File: filepath.Join(root, "Unknown.XML"), Status: StatusSkipped},
	}
	require.Len(t, report.Results, len(want))
	for i := range want {
		got := report.Results[i]
		if want[i].File == filepath.Join(root, "Broken.xml") {
			assert.NotEmpty(t, got.Error, "parse error recorded")
			got.Error = ""
		}
		assert.Equal(t, want[i], got)
	}
	assert.Equal(t, 3, report.Written())

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"airspace.geojson", "nav-points-2-0.geojson", "sector-a.geojson"}, names)
}

func TestRunOutputContent(t *testing.T) {
	root := chartTree(t)
	out := t.TempDir()

	_, err := NewConverter(out, geo.NewNormalizer(nil)).Run(root, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "airspace.geojson"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n    "))

	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "MMR101", fc.Features[0].Properties["name"])
	assert.Equal(t, "Polygon", fc.Features[0].Geometry.GeoJSONType())

	var raw struct {
		Features []struct {
			Geometry struct {
				Coordinates [][][2]float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	ring := raw.Features[0].Geometry.Coordinates[0]
	assert.Len(t, ring, 4, "normalizer closes the ring")
	assert.Equal(t, ring[0], ring[len(ring)-1])
	assert.Equal(t, [2]float64{-116.5, 32.5}, ring[0])
}

func TestRunIsIdempotent(t *testing.T) {
	root := chartTree(t)
	out := t.TempDir()
	conv := NewConverter(out, geo.NewNormalizer(nil))

	read := func() map[string][]byte {
		files := map[string][]byte{}
		entries, err := os.ReadDir(out)
		require.NoError(t, err)
		for _, e := range entries {
			b, err := os.ReadFile(filepath.Join(out, e.Name()))
			require.NoError(t, err)
			files[e.Name()] = b
		}
		return files
	}

	first, err := conv.Run(root, nil)
	require.NoError(t, err)
	before := read()

	second, err := conv.Run(root, nil)
	require.NoError(t, err)
	after := read()

	assert.Equal(t, first, second)
	require.Len(t, after, len(before))
	for name, b := range before {
		assert.True(t, bytes.Equal(b, after[name]), "%s changed between runs", name)
	}
}

func TestRunOverwritesOutput(t *testing.T) {
	root := chartTree(t)
	out := t.TempDir()
	stale := filepath.Join(out, "airspace.geojson")
	writeFile(t, stale, strings.Repeat("x", 64*1024))

	_, err := NewConverter(out, nil).Run(root, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(stale)
	require.NoError(t, err)
	_, err = geojson.UnmarshalFeatureCollection(data)
	assert.NoError(t, err, "stale bytes must not survive")
}

func TestRunMaterializes(t *testing.T) {
	root := chartTree(t)
	m := &fakeMaterializer{calls: map[string]int{}, fail: map[string]bool{"sector_a": true}}

	report, err := NewConverter(t.TempDir(), geo.NewNormalizer(nil)).Run(root, m)
	require.NoError(t, err)

	assert.True(t, report.ImportSQL)
	assert.Equal(t, []string{"airspace", "nav_points_2_0"}, m.order)
	assert.Equal(t, map[string]int{"airspace": 1, "nav_points_2_0": 2}, m.calls)
	assert.Equal(t, []string{"airspace", "nav_points_2_0"}, report.Tables)

	sector := report.Results[2]
	assert.Equal(t, StatusWritten, sector.Status, "materialization failure keeps the file result")
	assert.Equal(t, "disk full", sector.Error)
	assert.Empty(t, sector.Table)
}

func TestRunWithSQLite(t *testing.T) {
	root := chartTree(t)
	s, err := store.Open(filepath.Join(t.TempDir(), "adsb.sqlite"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	conv := NewConverter(t.TempDir(), geo.NewNormalizer(nil))
	_, err = conv.Run(root, s)
	require.NoError(t, err)

	first, err := s.Rows("nav_points_2_0")
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "TIJ", first[0].Name)
	assert.Equal(t, "MMTJ", first[1].Name)

	_, err = conv.Run(root, s)
	require.NoError(t, err)
	second, err := s.Rows("nav_points_2_0")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	tables, err := s.Tables()
	require.NoError(t, err)
	assert.Equal(t, []string{"airspace", "nav_points_2_0", "sector_a"}, tables)
}

func TestRunInvalidRoot(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.xml")
	writeFile(t, file, navXML)

	for _, root := range []string{"", filepath.Join(t.TempDir(), "missing"), file} {
		_, err := NewConverter(t.TempDir(), nil).Run(root, nil)
		assert.True(t, errors.Is(err, ErrInvalidRoot), "root %q: %v", root, err)
	}
}

func TestCheckRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Airspace.xml")
	writeFile(t, file, airspaceXML)

	root, err := CheckRoot(dir + string(filepath.Separator) + ".")
	require.NoError(t, err)
	assert.Equal(t, dir, root)

	for _, bad := range []string{"", file, filepath.Join(dir, "missing")} {
		_, err := CheckRoot(bad)
		assert.ErrorIs(t, err, ErrInvalidRoot, bad)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "checking a root creates nothing")
}

func TestWalkFilesDeepTree(t *testing.T) {
	root := t.TempDir()
	dir := root
	for i := 0; i < 64; i++ {
		dir = filepath.Join(dir, "d")
	}
	writeFile(t, filepath.Join(dir, "deep.xml"), navXML)
	writeFile(t, filepath.Join(root, "b.txt"), "")
	writeFile(t, filepath.Join(root, "a.txt"), "")

	var seen []string
	walkFiles(root, func(path string) { seen = append(seen, path) })

	assert.Equal(t, []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "b.txt"),
		filepath.Join(dir, "deep.xml"),
	}, seen)
}

func TestReportWriteText(t *testing.T) {
	r := newReport(true)
	r.add(Result{File: "charts/Airspace.xml", Status: StatusWritten, Output: "data/airspace.geojson", Features: 12, Table: "airspace"})
	r.add(Result{File: "charts/Notes.xml", Status: StatusSkipped})
	r.add(Result{File: "charts/Other/Airspace.xml", Status: StatusWritten, Output: "data/airspace.geojson", Features: 3, Table: "airspace"})

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))
	assert.Equal(t, "charts/Airspace.xml -> data/airspace.geojson (12 features)\n"+
		"charts/Notes.xml -> skipped\n"+
		"charts/Other/Airspace.xml -> data/airspace.geojson (3 features)\n"+
		"Imported tables: airspace\n", buf.String())

	buf.Reset()
	r.ImportSQL = false
	require.NoError(t, r.WriteText(&buf))
	assert.NotContains(t, buf.String(), "Imported tables")
}
