package main

import (
	"github.com/spf13/cobra"

	"dqx0.com/go/webserver/internal/config"
)

func newConfigCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := load(c)
			if err != nil {
				return err
			}
			return cfg.WriteYAML(c.OutOrStdout())
		},
	}
	cmd.Flags().AddFlagSet(config.Flags())
	return cmd
}
