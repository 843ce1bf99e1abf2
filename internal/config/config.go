// Package config handles configuration loading.
package config

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

// Defaults applied when a value is not configured.
const (
	DefaultGeoJSONDir = "data"
	DefaultDatabase   = "data/adsb.sqlite"
)

// Config represents the root configuration file structure.
type Config struct {
	// Region is the expected chart coverage, used to repair swapped axes.
	Region     *Region `yaml:"region,omitempty" json:"region,omitempty"`
	GeoJSONDir string  `yaml:"geojson_dir" json:"geojson_dir"`
	Database   string  `yaml:"database" json:"database"`
}

// Region is a lat/lon bounding box in decimal degrees.
type Region struct {
	MinLat float64 `yaml:"min_lat" json:"min_lat"`
	MaxLat float64 `yaml:"max_lat" json:"max_lat"`
	MinLon float64 `yaml:"min_lon" json:"min_lon"`
	MaxLon float64 `yaml:"max_lon" json:"max_lon"`
}

// Default returns the configuration used without a config file.
// The default region covers Mexico and its surroundings.
func Default() *Config {
	return &Config{
		GeoJSONDir: DefaultGeoJSONDir,
		Database:   DefaultDatabase,
		Region:     &Region{MinLat: 10, MaxLat: 40, MinLon: -120, MaxLon: -80},
	}
}

// Load reads and parses the YAML configuration file from the specified path.
// An empty path returns the defaults; missing values are filled from them.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if cfg.GeoJSONDir == "" {
		cfg.GeoJSONDir = DefaultGeoJSONDir
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if r := cfg.Region; r != nil && (r.MinLat > r.MaxLat || r.MinLon > r.MaxLon) {
		return nil, fmt.Errorf("region in %s: minimum exceeds maximum", path)
	}

	return cfg, nil
}

// Bound returns the region as an orb bound, or nil when no region is set.
func (c *Config) Bound() *orb.Bound {
	if c == nil || c.Region == nil {
		return nil
	}

	return &orb.Bound{
		Min: orb.Point{c.Region.MinLon, c.Region.MinLat},
		Max: orb.Point{c.Region.MaxLon, c.Region.MaxLat},
	}
}
