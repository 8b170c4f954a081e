package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/tipscan/pkg/errors"
	"github.com/matzehuels/tipscan/pkg/pipeline"
	"github.com/matzehuels/tipscan/pkg/sweep"
)

// sweepOpts holds the command-line flags for the sweep command. Flags that
// are set override the values in the study file.
type sweepOpts struct {
	output  string  // output base path, extension is replaced per format
	csv     bool    // also write a CSV table
	energy  float64 // Fermi energy override
	workers int     // concurrent solver calls
	partial bool    // keep completed prefixes on solver failure
	refresh bool    // recompute cached points
	backend backendOpts
}

func (c *CLI) sweepCommand() *cobra.Command {
	var opts sweepOpts

	cmd := &cobra.Command{
		Use:   "sweep <study.toml>",
		Short: "Compute transmission curves for a study",
		Long: `Sweep builds the device described by a study file and computes the
transmission from lead 0 into lead 1 for every configured parameter sweep.

Results are written as JSON (and optionally CSV) next to the study file
unless --output is given. Interrupting with Ctrl-C keeps and writes the
points computed so far.`,
		Example: `  tipscan sweep examples/study1.toml
  tipscan sweep examples/study1.toml --energy -3.5 --csv -o out/run`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: fileArg("toml"),
		RunE: func(cmd *cobra.Command, args []string) error {
			study, err := pipeline.LoadOptions(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("energy") {
				study.Energy = &opts.energy
			}
			if cmd.Flags().Changed("workers") {
				study.Workers = opts.workers
			}
			study.Partial = study.Partial || opts.partial
			study.Refresh = study.Refresh || opts.refresh
			study.Formats = []string{pipeline.FormatJSON}
			if opts.csv {
				study.Formats = append(study.Formats, pipeline.FormatCSV)
			}
			if opts.output == "" {
				opts.output = strings.TrimSuffix(args[0], filepath.Ext(args[0]))
			}
			return c.runSweep(cmd.Context(), args[0], study, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: study file without extension)")
	cmd.Flags().BoolVar(&opts.csv, "csv", false, "also write a CSV table")
	cmd.Flags().Float64VarP(&opts.energy, "energy", "e", pipeline.DefaultEnergy, "Fermi energy (overrides the study file)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "j", 0, "concurrent solver calls (default: number of CPUs)")
	cmd.Flags().BoolVar(&opts.partial, "partial", false, "keep completed points when a solve fails")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute points even when cached")
	opts.backend.register(cmd)

	return cmd
}

func (c *CLI) runSweep(ctx context.Context, path string, study pipeline.Options, opts *sweepOpts) error {
	runner, err := c.newRunner(ctx, opts.backend)
	if err != nil {
		return err
	}
	defer runner.Close(context.WithoutCancel(ctx))

	spinner := newProgressSpinner(ctx, os.Stderr, "Sweeping")
	study.Progress = spinner.Observe
	prog := newProgress(c.Logger)
	spinner.Start()
	res, err := runner.Execute(ctx, study)
	spinner.Stop()

	if res == nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		printError("Sweep failed")
		return err
	}
	prog.done(fmt.Sprintf("Swept %d points", res.Stats.Points))

	printKeyValue("device", res.Device)
	fp := res.Model.Fingerprint()
	printKeyValue("model", fp[:min(12, len(fp))])
	printKeyValue("energy", sweep.FormatFloat(res.Sweep.Energy))
	if res.RunID != "" {
		printKeyValue("run", res.RunID)
	}
	writeSeriesTable(os.Stdout, res.Sweep)
	printStats(res.Sweep.Stats)

	if werr := writeArtifacts(opts.output, res.Artifacts, study.Formats); werr != nil {
		return werr
	}

	if err != nil {
		printWarning("Some sweeps stopped early")
		for _, e := range unjoin(err) {
			printDetail("%s", errs.UserMessage(e))
		}
	}
	if res.Sweep.Interrupted {
		printWarning("Interrupted, partial results were written")
		return ctx.Err()
	}
	printNextStep("Draw the device", fmt.Sprintf("%s graph %s -o device.svg", appName, path))
	return err
}

// writeArtifacts writes one file per format at base with the format as
// extension.
func writeArtifacts(base string, artifacts map[string][]byte, formats []string) error {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	for _, f := range formats {
		out := base + "." + f
		if err := os.WriteFile(out, artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		printFile(out)
	}
	return nil
}

// unjoin splits an errors.Join result into its parts.
func unjoin(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}
