package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadJSON decodes a document written by [WriteJSON].
func ReadJSON(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	for i, s := range d.Series {
		if len(s.X) != len(s.T) {
			return nil, fmt.Errorf("series %d (%q): %d x values but %d transmissions", i, s.Label, len(s.X), len(s.T))
		}
	}
	if d.Plot.YLim[0] > d.Plot.YLim[1] {
		return nil, fmt.Errorf("plot ylim [%g, %g] is inverted", d.Plot.YLim[0], d.Plot.YLim[1])
	}
	return &d, nil
}

// ImportJSON reads a document from path.
func ImportJSON(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
