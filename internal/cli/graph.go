package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/tipscan/pkg/errors"
	"github.com/matzehuels/tipscan/pkg/pipeline"
	"github.com/matzehuels/tipscan/pkg/render"
	"github.com/matzehuels/tipscan/pkg/render/nodelink"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output   string  // output file, format taken from its extension
	detailed bool    // label sites with coordinates and value functions
	scale    float64 // inches between neighboring sites
}

func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{output: "device.svg"}

	cmd := &cobra.Command{
		Use:   "graph <study.toml>",
		Short: "Draw the device geometry of a study",
		Long: `Graph builds the device described by a study file and draws its sites,
hoppings and lead unit cells. The output format follows the file extension:
.dot, .svg, .pdf or .png (PDF and PNG need rsvg-convert).`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: fileArg("toml"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output file (.dot, .svg, .pdf, .png)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label sites with coordinates and value functions")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "distance between neighboring sites in inches (default 0.3)")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, path string, opts graphOpts) error {
	format := strings.TrimPrefix(filepath.Ext(opts.output), ".")
	switch format {
	case pipeline.FormatDOT, pipeline.FormatSVG, pipeline.FormatPDF, pipeline.FormatPNG:
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unsupported graph format %q (use .dot, .svg, .pdf or .png)", filepath.Ext(opts.output))
	}
	if (format == pipeline.FormatPDF || format == pipeline.FormatPNG) && !render.Available() {
		return errs.New(errs.ErrCodeInvalidConfig, "%s output needs rsvg-convert on PATH", format)
	}

	study, err := pipeline.LoadOptions(path)
	if err != nil {
		return err
	}
	if err := study.ValidateAndSetDefaults(); err != nil {
		return err
	}
	prog := newProgress(c.Logger)
	m, err := pipeline.Build(study.Device)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built %s with %d sites", study.Device, m.NumSites()))

	nopts := nodelink.Options{Detailed: opts.detailed, Scale: opts.scale}
	var data []byte
	if format == pipeline.FormatDOT {
		data = []byte(nodelink.ToDOT(m, nopts))
	} else {
		spinner := newProgressSpinner(ctx, os.Stderr, "Rendering "+format)
		spinner.Start()
		data, err = pipeline.RenderDevice(m, nopts)
		switch {
		case err != nil:
		case format == pipeline.FormatPDF:
			data, err = render.ToPDF(ctx, data)
		case format == pipeline.FormatPNG:
			data, err = render.ToPNG(ctx, data, 2)
		}
		spinner.Stop()
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}
	}

	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Drew %d sites and %d leads", m.NumSites(), m.NumLeads())
	printFile(opts.output)
	return nil
}
