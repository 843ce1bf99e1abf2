// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/chartconv/internal/processor"
)

const (
	etagCap      = 64
	maxBodyBytes = 1 << 16
	layerExt     = ".geojson"
)

var reNotLayerID = regexp.MustCompile(`[^a-z0-9-]`)

// ConvertRequest is the body of a conversion request.
type ConvertRequest struct {
	Path      string `json:"path"`
	ImportSQL bool   `json:"import_sql"`
}

type errorResponse struct {
	Error string `json:"error"`
	Path  string `json:"path,omitempty"`
}

type layersResponse struct {
	Layers      map[string]string `json:"layers"`
	GeneratedAt string            `json:"generated_at"`
	OK          bool              `json:"ok"`
}

// HandleConvert runs a conversion for {"path": "...", "import_sql": bool}
// and answers with the JSON report. Runs never overlap.
func (s *ServerContext) HandleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req ConvertRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	root, err := processor.CheckRoot(req.Path)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: processor.ErrInvalidRoot.Error(), Path: req.Path})
		return
	}

	var m processor.Materializer
	if req.ImportSQL {
		st, err := s.OpenStore(s.Config.Database)
		if err != nil {
			log.Error().Err(err).Str("db", s.Config.Database).Msg("Failed to open layer database")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		defer func() {
			if err := st.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close layer database")
			}
		}()
		m = st
	}

	report, err := s.Converter.Run(root, m)
	if err != nil {
		if errors.Is(err, processor.ErrInvalidRoot) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: processor.ErrInvalidRoot.Error(), Path: req.Path})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), Path: req.Path})
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// HandleLayers lists the produced layers as {id: url}.
func (s *ServerContext) HandleLayers(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.Converter.OutputDir())
	if err != nil && !os.IsNotExist(err) {
		log.Error().Err(err).Str("dir", s.Converter.OutputDir()).Msg("Failed to list layers")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list layers"})
		return
	}

	layers := make(map[string]string, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !strings.HasSuffix(name, layerExt) {
			continue
		}
		id := strings.TrimSuffix(name, layerExt)
		if id == "" || reNotLayerID.MatchString(id) {
			continue
		}
		layers[id] = "/layers/" + name
	}

	writeJSON(w, http.StatusOK, layersResponse{
		OK:          true,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Layers:      layers,
	})
}

// HandleLayer serves /layers/{id}.geojson from the output directory.
func (s *ServerContext) HandleLayer(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/layers/")
	id := strings.TrimSuffix(name, layerExt)
	if id == name {
		http.NotFound(w, r)
		return
	}

	// allow only slug characters to prevent path probing
	id = reNotLayerID.ReplaceAllString(strings.ToLower(id), "")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(s.Converter.OutputDir(), id+layerExt)
	if !s.serveFile(w, r, path, "application/geo+json") {
		http.NotFound(w, r)
	}
}

// serveFile tries to serve a file from disk with ETag generation.
// It returns true if the file was found and served (or 304).
func (s *ServerContext) serveFile(w http.ResponseWriter, r *http.Request, path string, contentType string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, info.Size(), 16)
	buf = append(buf, '-')
	buf = strconv.AppendInt(buf, info.ModTime().UnixNano(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	http.ServeFile(w, r, path)
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	// Ignoring error as we cannot handle client disconnects
	_ = enc.Encode(v)
}
