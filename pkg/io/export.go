package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/matzehuels/tipscan/pkg/sweep"
)

// Plot defaults.
const (
	YLabel = "Transmission"
	YMin   = 0.0
	YMax   = 1.2
)

// Document is the serialized form of a run.
type Document struct {
	Device      string       `json:"device,omitempty"`
	Model       string       `json:"model,omitempty"`
	RunID       string       `json:"run_id,omitempty"`
	Energy      float64      `json:"energy"`
	From        int          `json:"from"`
	To          int          `json:"to"`
	Plot        Plot         `json:"plot"`
	Series      []Series     `json:"series"`
	Stats       *sweep.Stats `json:"stats,omitempty"`
	Interrupted bool         `json:"interrupted,omitempty"`
}

// Plot describes the transmission figure.
type Plot struct {
	Title  string     `json:"title"`
	XLabel string     `json:"xlabel"`
	YLabel string     `json:"ylabel"`
	YLim   [2]float64 `json:"ylim"`
}

// Series is one labeled curve.
type Series struct {
	Label    string    `json:"label"`
	Coupling float64   `json:"coupling"`
	Variable string    `json:"variable"`
	X        []float64 `json:"x"`
	T        []float64 `json:"t"`
	Complete bool      `json:"complete"`
	Error    string    `json:"error,omitempty"`
}

// NewDocument converts res. Device, Model and RunID are left for the
// caller to fill in.
func NewDocument(res *sweep.Result) *Document {
	variable := sweep.DefaultVariable
	if len(res.Series) > 0 && res.Series[0].Variable != "" {
		variable = res.Series[0].Variable
	}
	stats := res.Stats
	doc := &Document{
		Energy: res.Energy,
		From:   res.From,
		To:     res.To,
		Plot: Plot{
			Title:  fmt.Sprintf("Transmission vs %s at E = %s", variable, sweep.FormatFloat(res.Energy)),
			XLabel: variable,
			YLabel: YLabel,
			YLim:   [2]float64{YMin, YMax},
		},
		Series:      make([]Series, len(res.Series)),
		Stats:       &stats,
		Interrupted: res.Interrupted,
	}
	for i, e := range res.Legend() {
		s := &res.Series[i]
		out := Series{
			Label:    e.Label,
			Coupling: s.Coupling,
			Variable: s.Variable,
			X:        e.X,
			T:        e.T,
			Complete: s.Complete,
		}
		if s.Err != nil {
			out.Error = s.Err.Error()
		}
		doc.Series[i] = out
	}
	return doc
}

// Encode writes the document as indented JSON.
func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteJSON encodes res with its plot descriptor and writes it to w.
func WriteJSON(res *sweep.Result, w io.Writer) error {
	return NewDocument(res).Encode(w)
}

// ExportJSON writes d to a JSON file at path.
func ExportJSON(d *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := d.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteCSV writes one row per point of res to w.
func WriteCSV(res *sweep.Result, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"label", "coupling", "x", "transmission"}); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	for _, s := range res.Series {
		coupling := fmtFloat(s.Coupling)
		for _, p := range s.Points {
			if err := cw.Write([]string{s.Label, coupling, fmtFloat(p.X), fmtFloat(p.T)}); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes res to a CSV file at path.
func ExportCSV(res *sweep.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(res, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
