package main

import (
	"github.com/spf13/cobra"

	"dqx0.com/go/webserver/internal/config"
)

func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "minihttp",
		Short: "A minimal HTTP/1.1 server answering one request per connection",
		Long: `minihttp serves a small website over HTTP/1.1, one request per connection.

Settings come from flags, MINIHTTP_* environment variables and an optional
YAML file given with --config, in that order of precedence.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file")

	load := func(c *cobra.Command) (*config.Config, error) {
		return loadConfig(c, cfgFile)
	}
	cmd.AddCommand(
		newServeCmd(load),
		newConfigCmd(load),
		newGetCmd(),
		newBenchCmd(),
	)
	return cmd
}

type configLoader func(*cobra.Command) (*config.Config, error)

// loadConfig resolves the effective config for c. Only flags c actually
// defines are bound, so a subcommand without --addr still honours the file
// and the environment.
func loadConfig(c *cobra.Command, file string) (*config.Config, error) {
	v := config.New()
	if err := config.BindFlags(v, c.Flags()); err != nil {
		return nil, err
	}
	return config.Load(v, file)
}
