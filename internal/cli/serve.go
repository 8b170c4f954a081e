package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tipscan/internal/server"
	"github.com/matzehuels/tipscan/pkg/observability/prom"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr       string
	maxWorkers int
	metrics    bool
	backend    backendOpts
}

func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080", metrics: true}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sweep pipeline over HTTP",
		Long: `Serve accepts studies as JSON at POST /v1/sweeps and returns the
transmission document. With --mongo, runs are stored and can be fetched
again at GET /v1/sweeps/{id}. Prometheus metrics are exposed at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().IntVar(&opts.maxWorkers, "max-workers", server.DefaultMaxWorkers, "upper bound on workers per request")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", opts.metrics, "expose Prometheus metrics at /metrics")
	opts.backend.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	runner, err := c.newRunner(ctx, opts.backend)
	if err != nil {
		return err
	}
	defer runner.Close(context.WithoutCancel(ctx))

	sopts := server.Options{Logger: c.Logger, MaxWorkers: opts.maxWorkers}
	if opts.metrics {
		m := prom.New()
		m.Register()
		sopts.Metrics = m.Handler()
	}
	printInfo("Listening on %s", StyleNumber.Render(opts.addr))
	if err := server.New(runner, sopts).ListenAndServe(ctx, opts.addr); err != nil {
		return err
	}
	printSuccess("Server stopped")
	return nil
}
