// Package report drives an anomaly iterator to a bounded number of results
// and renders them as text lines, a table, JSON or YAML
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/alt-project/normscan/internal/anomaly"
	"github.com/alt-project/normscan/internal/output"
)

// Iterator is the part of anomaly.Filter the driver consumes
type Iterator interface {
	Next() bool
	Anomaly() anomaly.Anomaly
	Err() error
	Close() error
	Stats() anomaly.Stats
}

// Entry is one anomalous group in a report
type Entry struct {
	Key        string    `json:"key" yaml:"key"`
	Start      time.Time `json:"start" yaml:"start"`
	End        time.Time `json:"end" yaml:"end"`
	Samples    int       `json:"samples" yaml:"samples"`
	Statistic  Float     `json:"k2" yaml:"k2"`
	PValue     Float     `json:"p_value" yaml:"p_value"`
	SkewZ      Float     `json:"skew_z" yaml:"skew_z"`
	KurtosisZ  Float     `json:"kurtosis_z" yaml:"kurtosis_z"`
	Degenerate bool      `json:"degenerate,omitempty" yaml:"degenerate,omitempty"`
}

// NewEntry converts an anomaly without recomputing its classification
func NewEntry(a anomaly.Anomaly) Entry {
	return Entry{
		Key:        a.Group.Key,
		Start:      a.Group.Start(),
		End:        a.Group.End(),
		Samples:    a.Group.Len(),
		Statistic:  Float(a.Result.Statistic),
		PValue:     Float(a.Result.PValue),
		SkewZ:      Float(a.Result.SkewZ),
		KurtosisZ:  Float(a.Result.KurtosisZ),
		Degenerate: a.Result.Degenerate,
	}
}

// Meta describes the run a report belongs to
type Meta struct {
	Source    string
	Checksum  string
	Threshold float64
	Key       string
}

// Report is the structured result of a run
type Report struct {
	RunID       string        `json:"run_id" yaml:"run_id"`
	Source      string        `json:"source" yaml:"source"`
	Checksum    string        `json:"checksum,omitempty" yaml:"checksum,omitempty"`
	Threshold   float64       `json:"threshold" yaml:"threshold"`
	Key         string        `json:"key" yaml:"key"`
	Limit       int           `json:"limit" yaml:"limit"`
	GeneratedAt time.Time     `json:"generated_at" yaml:"generated_at"`
	Anomalies   []Entry       `json:"anomalies" yaml:"anomalies"`
	Stats       anomaly.Stats `json:"stats" yaml:"stats"`
}

// Driver pulls anomalies from an iterator and writes them out
type Driver struct {
	// Limit caps the number of anomalies consumed; zero or less means no cap
	Limit  int
	Format Format
	Out    io.Writer
	// Now defaults to time.Now
	Now func() time.Time
}

// Run consumes at most Limit anomalies from it, closes it and renders the
// report. Text lines are written as anomalies arrive; the other formats
// render once the run is over and are not written when the run failed.
func (d *Driver) Run(it Iterator, meta Meta) (*Report, error) {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	format := d.Format
	if format == "" {
		format = FormatText
	}

	rep := &Report{
		RunID:       uuid.NewString(),
		Source:      meta.Source,
		Checksum:    meta.Checksum,
		Threshold:   meta.Threshold,
		Key:         meta.Key,
		Limit:       d.Limit,
		GeneratedAt: now().UTC(),
		Anomalies:   []Entry{},
	}

	var writeErr error
	for d.Limit <= 0 || len(rep.Anomalies) < d.Limit {
		if !it.Next() {
			break
		}
		a := it.Anomaly()
		rep.Anomalies = append(rep.Anomalies, NewEntry(a))
		if format == FormatText {
			if _, err := fmt.Fprintln(d.Out, FormatLine(a)); err != nil {
				writeErr = fmt.Errorf("writing report: %w", err)
				break
			}
		}
	}

	runErr := it.Err()
	closeErr := it.Close()
	rep.Stats = it.Stats()

	if err := errors.Join(runErr, writeErr, closeErr); err != nil {
		return rep, err
	}

	switch format {
	case FormatTable:
		RenderTable(d.Out, rep)
	case FormatJSON, FormatYAML:
		if err := Encode(d.Out, format, rep); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

// RenderTable writes the anomalies of rep as a table
func RenderTable(w io.Writer, rep *Report) {
	table := output.NewTableWithWriter(w, []string{"DAY", "FROM", "TO", "SAMPLES", "K2", "P_VALUE"})
	for _, e := range rep.Anomalies {
		table.AddRow([]string{
			e.Key,
			e.Start.Format(TimeLayout),
			e.End.Format(TimeLayout),
			strconv.Itoa(e.Samples),
			e.Statistic.String(),
			e.PValue.String(),
		})
	}
	table.Render()
}

// Encode writes v as indented JSON or YAML
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
	default:
		return fmt.Errorf("format %q is not a structured format", format)
	}
	return nil
}
