package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/woozymasta/chartconv/internal/config"
	"github.com/woozymasta/chartconv/internal/geo"
	"github.com/woozymasta/chartconv/internal/logger"
	"github.com/woozymasta/chartconv/internal/processor"
	"github.com/woozymasta/chartconv/internal/store"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Args struct {
		Root string `positional-arg-name:"root-path" description:"Directory with XML chart files"`
	} `positional-args:"yes" required:"yes"`

	ConfigFile string `short:"c" long:"config"     env:"CONFIG_FILE" description:"Path to configuration file"`
	OutputDir  string `short:"o" long:"output"     env:"GEOJSON_DIR" description:"Directory for GeoJSON layers (overrides config)"`
	Database   string `short:"d" long:"database"   env:"DATABASE"    description:"SQLite database file (overrides config)"`
	ImportSQL  bool   `short:"s" long:"import-sql" description:"Also replace one database table per layer"`
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

	root, err := processor.CheckRoot(opts.Args.Root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	conv := processor.NewConverter(cfg.GeoJSONDir, geo.NewNormalizer(cfg.Bound()))

	var st *store.Store
	var m processor.Materializer
	if opts.ImportSQL {
		if st, err = store.Open(cfg.Database); err != nil {
			log.Fatal().Err(err).Str("db", cfg.Database).Msg("Failed to open layer database")
		}
		m = st
	}

	report, err := conv.Run(root, m)
	if st != nil {
		if cerr := st.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("Failed to close layer database")
		}
	}
	if err != nil {
		if errors.Is(err, processor.ErrInvalidRoot) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		} else {
			log.Error().Err(err).Msg("Conversion failed")
		}
		os.Exit(1)
	}

	if err := report.WriteText(os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}
}
