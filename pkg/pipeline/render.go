package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/tipscan/pkg/device"
	"github.com/matzehuels/tipscan/pkg/io"
	"github.com/matzehuels/tipscan/pkg/render"
	"github.com/matzehuels/tipscan/pkg/render/nodelink"
	"github.com/matzehuels/tipscan/pkg/sweep"
)

// Document builds the JSON document of a run.
func Document(device, runID string, m *device.Model, res *sweep.Result) *io.Document {
	doc := io.NewDocument(res)
	doc.Device = device
	doc.RunID = runID
	if m != nil {
		doc.Model = m.Fingerprint()
	}
	return doc
}

// RenderArtifacts produces every requested format of a run.
func RenderArtifacts(ctx context.Context, r *Result, formats []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(formats))
	var svg []byte
	deviceSVG := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = RenderDevice(r.Model, nodelink.Options{})
		return svg, err
	}

	for _, f := range formats {
		var (
			data []byte
			err  error
		)
		switch f {
		case FormatJSON:
			var buf bytes.Buffer
			err = Document(r.Device, r.RunID, r.Model, r.Sweep).Encode(&buf)
			data = buf.Bytes()
		case FormatCSV:
			var buf bytes.Buffer
			err = io.WriteCSV(r.Sweep, &buf)
			data = buf.Bytes()
		case FormatDOT:
			data = []byte(nodelink.ToDOT(r.Model, nodelink.Options{Detailed: true}))
		case FormatSVG:
			data, err = deviceSVG()
		case FormatPDF:
			if data, err = deviceSVG(); err == nil {
				data, err = render.ToPDF(ctx, data)
			}
		case FormatPNG:
			if data, err = deviceSVG(); err == nil {
				data, err = render.ToPNG(ctx, data, 2)
			}
		default:
			err = ValidateFormat(f)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		out[f] = data
	}
	return out, nil
}

// RenderDevice draws the device geometry as SVG.
func RenderDevice(m *device.Model, opts nodelink.Options) ([]byte, error) {
	return nodelink.RenderSVG(nodelink.ToDOT(m, opts))
}
