package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/woozymasta/chartconv/internal/geo"

	"github.com/jessevdk/go-flags"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input    string `short:"i" long:"in"       description:"GeoJSON file or directory of .geojson files" required:"true"`
	Output   string `short:"o" long:"out"      description:"Output file path. Writes to stdout if empty"`
	Format   string `short:"f" long:"format"   description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Examples int    `short:"e" long:"examples" description:"Out of range coordinates to describe per file" default:"5"`
}

// fileReport is the check result of one file.
type fileReport struct {
	geo.Stats `yaml:",inline"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
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

	files, err := inputFiles(opts.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	reports := make([]fileReport, 0, len(files))
	problems := 0
	for _, path := range files {
		r := check(path, opts.Examples)
		if r.Error != "" || r.Errors() > 0 {
			problems++
		}
		reports = append(reports, r)
	}

	// marshal
	var outputData []byte
	if opts.Format == "yaml" {
		outputData, err = yaml.Marshal(reports)
	} else {
		outputData, err = json.MarshalIndent(reports, "", "  ")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, outputData, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Checked %d files, %d with problems, report in %s\n", len(files), problems, opts.Output)
	} else {
		fmt.Println(strings.TrimRight(string(outputData), "\n"))
	}

	if problems > 0 {
		os.Exit(1)
	}
}

func check(path string, examples int) fileReport {
	r := fileReport{Stats: geo.Stats{File: path}}

	data, err := os.ReadFile(path)
	if err != nil {
		r.Error = err.Error()
		return r
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		r.Error = "invalid geojson: " + err.Error()
		return r
	}

	r.Stats = geo.Validate(fc, examples)
	r.File = path
	return r
}

// inputFiles returns the file itself or the .geojson files of a directory,
// sorted by name.
func inputFiles(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	files, err := filepath.Glob(filepath.Join(input, "*.geojson"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
