// SPDX-License-Identifier: MIT

package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/mlmtest/config"
)

// app is the state shared by all subcommands once the config is loaded.
type app struct {
	configPath string
	cfg        config.Config
	log        zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "mlmtest",
		Short: "Asymptotic distance-based multivariate ANOVA",
		Long: `mlmtest partitions the variation of a multivariate response, or of a
dissimilarity matrix, among the terms of a linear model and computes
asymptotic p-values for every term.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			log, err := cfg.Log.Logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.cfg, a.log = cfg, log

			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML configuration file")

	root.AddCommand(newRunCmd(a), newPValueCmd(a), newServeCmd(a))

	return root
}
