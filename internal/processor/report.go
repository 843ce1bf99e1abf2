package processor

import (
	"fmt"
	"io"
	"strings"
)

// Status is the outcome of one chart file.
type Status string

// Result statuses.
const (
	StatusWritten Status = "written"
	StatusSkipped Status = "skipped"
)

// Result describes what happened to one chart file.
type Result struct {
	File     string `json:"file"`
	Status   Status `json:"status"`
	Output   string `json:"output,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Table    string `json:"table,omitempty"`
	Error    string `json:"error,omitempty"`
	Features int    `json:"features"`
}

// Report is the outcome of one conversion run, results in walk order.
type Report struct {
	Results   []Result `json:"results"`
	Tables    []string `json:"tables"`
	OK        bool     `json:"ok"`
	ImportSQL bool     `json:"import_sql"`
}

func newReport(importSQL bool) *Report {
	return &Report{
		OK:        true,
		ImportSQL: importSQL,
		Results:   []Result{},
		Tables:    []string{},
	}
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
	if res.Table == "" {
		return
	}
	for _, t := range r.Tables {
		if t == res.Table {
			return
		}
	}
	r.Tables = append(r.Tables, res.Table)
}

// Written counts the results that produced a layer file.
func (r *Report) Written() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == StatusWritten {
			n++
		}
	}
	return n
}

// WriteText renders one line per result, e.g.
//
//	charts/Airspace.xml -> data/airspace.geojson (12 features)
//	charts/Notes.xml -> skipped
func (r *Report) WriteText(w io.Writer) error {
	for _, res := range r.Results {
		line := res.File + " -> "
		if res.Status == StatusWritten {
			line += fmt.Sprintf("%s (%d features)", res.Output, res.Features)
		} else {
			line += string(StatusSkipped)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if r.ImportSQL {
		if _, err := fmt.Fprintf(w, "Imported tables: %s\n", strings.Join(r.Tables, ", ")); err != nil {
			return err
		}
	}

	return nil
}
