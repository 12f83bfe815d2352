package main

import (
	"time"

	"github.com/spf13/cobra"

	"dqx0.com/go/webserver/internal/bench"
	"dqx0.com/go/webserver/internal/config"
)

func newBenchCmd() *cobra.Command {
	cfg := bench.Config{}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Load a running server and report latency percentiles",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			res, err := bench.Run(c.Context(), cfg)
			if err != nil {
				return err
			}
			res.Render(c.OutOrStdout())
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&cfg.Addr, "addr", config.Default.Addr, "server host:port")
	fs.StringVar(&cfg.Path, "path", "/", "request target")
	fs.IntVarP(&cfg.Requests, "requests", "n", 1000, "total requests")
	fs.IntVarP(&cfg.Workers, "workers", "c", 8, "concurrent workers")
	fs.Float64Var(&cfg.Rate, "rate", 0, "requests per second across all workers, 0 for unlimited")
	fs.DurationVar(&cfg.Timeout, "timeout", 5*time.Second, "per-request timeout")
	return cmd
}
