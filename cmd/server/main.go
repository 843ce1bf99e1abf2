package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/chartconv/internal/config"
	"github.com/woozymasta/chartconv/internal/logger"
	"github.com/woozymasta/chartconv/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"   env:"CONFIG_FILE"    description:"Path to configuration file"`
	Addr       string `short:"a" long:"addr"     env:"LISTEN_ADDRESS" description:"Address to listen on" default:"0.0.0.0"`
	OutputDir  string `short:"o" long:"output"   env:"GEOJSON_DIR"    description:"Directory for GeoJSON layers (overrides config)"`
	Database   string `short:"d" long:"database" env:"DATABASE"       description:"SQLite database file (overrides config)"`
	Port       int    `short:"p" long:"port"     env:"LISTEN_PORT"    description:"Port to listen on" default:"8080"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if opts.OutputDir != "" {
		cfg.GeoJSONDir = opts.OutputDir
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}

	srvCtx := server.NewServerContext(cfg)

	// Routes
	mux := http.NewServeMux()
	mux.HandleFunc("/api/convert", srvCtx.HandleConvert)
	mux.HandleFunc("/api/layers", srvCtx.HandleLayers)
	mux.HandleFunc("/layers/", srvCtx.HandleLayer)

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           server.RequestLogger(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().
		Str("addr", listenAddr).
		Str("logging", opts.Logger.String()).
		Msg("Web server started")

	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
