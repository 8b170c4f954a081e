package io

import (
	"bytes"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/tipscan/pkg/sweep"
)

func result() *sweep.Result {
	return &sweep.Result{
		Energy: -3.8,
		To:     1,
		Series: []sweep.Series{
			{Label: "tc = 1.0", Coupling: 1, Variable: "Vg", Complete: true,
				Points: []sweep.Point{{X: -1, T: 0.25}, {X: 0.5, T: 1}}},
			{Label: "tc = 0.5", Coupling: 0.5, Variable: "Vg", Err: errors.New("diverged"),
				Points: []sweep.Point{{X: -2, T: 0.125}}},
		},
		Stats: sweep.Stats{Planned: 4, Solved: 3, Failed: 1},
	}
}

func TestNewDocument(t *testing.T) {
	d := NewDocument(result())
	want := Plot{Title: "Transmission vs Vg at E = -3.8", XLabel: "Vg", YLabel: "Transmission", YLim: [2]float64{0, 1.2}}
	if d.Plot != want {
		t.Errorf("Plot = %+v, want %+v", d.Plot, want)
	}
	if len(d.Series) != 2 {
		t.Fatalf("got %d series", len(d.Series))
	}
	if s := d.Series[0]; s.Label != "tc = 1.0" || !slices.Equal(s.X, []float64{-1, 0.5}) || !slices.Equal(s.T, []float64{0.25, 1}) {
		t.Errorf("series 0 = %+v", s)
	}
	if s := d.Series[1]; s.Complete || s.Error != "diverged" {
		t.Errorf("series 1 = %+v", s)
	}
	if d.Stats == nil || d.Stats.Failed != 1 {
		t.Errorf("Stats = %+v", d.Stats)
	}
}

func TestNewDocumentEmpty(t *testing.T) {
	d := NewDocument(&sweep.Result{Energy: 1})
	if d.Plot.Title != "Transmission vs Vg at E = 1.0" {
		t.Errorf("Title = %q", d.Plot.Title)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(result(), &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"ylim": [`) {
		t.Errorf("output lacks ylim:\n%s", buf.String())
	}
	d, err := ReadJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if d.Energy != -3.8 || d.To != 1 || len(d.Series) != 2 || d.Series[1].Error != "diverged" {
		t.Errorf("decoded = %+v", d)
	}
}

func TestExportImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	doc := NewDocument(result())
	doc.Device = "study(w=10, tip=(30,0))"
	if err := ExportJSON(doc, path); err != nil {
		t.Fatal(err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Device != doc.Device || got.Plot != doc.Plot {
		t.Errorf("imported = %+v", got)
	}
	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file imported")
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name, in string
	}{
		{"syntax", `{"series": [`},
		{"length mismatch", `{"series": [{"label": "a", "x": [1, 2], "t": [0.5]}]}`},
		{"inverted ylim", `{"plot": {"ylim": [1.2, 0]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadJSON(strings.NewReader(tt.in)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(result(), &buf); err != nil {
		t.Fatal(err)
	}
	want := "label,coupling,x,transmission\n" +
		"tc = 1.0,1,-1,0.25\n" +
		"tc = 1.0,1,0.5,1\n" +
		"tc = 0.5,0.5,-2,0.125\n"
	if buf.String() != want {
		t.Errorf("WriteCSV() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	if err := ExportCSV(result(), path); err != nil {
		t.Fatal(err)
	}
	if err := ExportCSV(result(), filepath.Join(t.TempDir(), "no", "such", "dir.csv")); err == nil {
		t.Error("export into missing directory succeeded")
	}
}
