package server

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/chartconv/internal/config"
	"github.com/woozymasta/chartconv/internal/geo"
	"github.com/woozymasta/chartconv/internal/processor"
	"github.com/woozymasta/chartconv/internal/store"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config    *config.Config
	Converter *processor.Converter

	// OpenStore opens the layer database for runs that request an import.
	OpenStore func(path string) (*store.Store, error)

	// mu serializes conversion runs, which share output files and tables.
	mu sync.Mutex
}

// NewServerContext initializes the context from the configuration.
func NewServerContext(cfg *config.Config) *ServerContext {
	conv := processor.NewConverter(cfg.GeoJSONDir, geo.NewNormalizer(cfg.Bound()))

	log.Info().
		Str("geojson_dir", cfg.GeoJSONDir).
		Str("database", cfg.Database).
		Msg("Server context initialized")

	return &ServerContext{
		Config:    cfg,
		Converter: conv,
		OpenStore: store.Open,
	}
}
