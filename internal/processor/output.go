package processor

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/woozymasta/chartconv/internal/geo"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// saveGeoJSON encodes the collection and replaces the file at path.
func saveGeoJSON(path string, fc *geojson.FeatureCollection) error {
	if err := os.MkdirAll(filepath.Dir(path), 0775); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := geo.Encode(&buf, fc); err != nil {
		return err
	}

	return os.WriteFile(path, buf.Bytes(), 0644)
}

// walkFiles calls visit for every regular file below root, depth first and
// in name order within a directory. It keeps an explicit stack instead of
// recursing, so tree depth does not grow the call stack. Symlinked
// directories are not followed.
func walkFiles(root string, visit func(path string)) {
	type item struct {
		path  string
		isDir bool
	}

	stack := []item{{path: root, isDir: true}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !it.isDir {
			visit(it.path)
			continue
		}

		entries, err := os.ReadDir(it.path)
		if err != nil {
			log.Warn().Err(err).Str("dir", it.path).Msg("Failed to read directory, skipping")
			continue
		}

		for i := len(entries) - 1; i >= 0; i-- {
			e := entries[i]
			path := filepath.Join(it.path, e.Name())

			switch mode := e.Type(); {
			case mode.IsDir():
				stack = append(stack, item{path: path, isDir: true})
			case mode.IsRegular():
				stack = append(stack, item{path: path})
			case mode&fs.ModeSymlink != 0:
				if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
					stack = append(stack, item{path: path})
				}
			}
		}
	}
}
