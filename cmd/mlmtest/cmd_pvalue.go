// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/mlmtest/pvalue"
)

func newPValueCmd(a *app) *cobra.Command {
	var (
		f      float64
		lambda []float64
		df     int
		dfe    int
	)
	cmd := &cobra.Command{
		Use:   "pvalue",
		Short: "Evaluate the asymptotic p-value of a pseudo-F statistic",
		Long: `Evaluate P(F > f) where F is the ratio of two weighted sums of
chi-square variables sharing the weights lambda.

Example usage:
  mlmtest pvalue --f 0.8 --lambda 1.2,0.4,0.1 --df 2 --dfe 27`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := a.cfg.Analysis.PValue
			res, err := pvalue.Asymptotic(f, lambda, df, dfe,
				pvalue.WithInitialAccuracy(p.InitialAccuracy),
				pvalue.WithLimit(p.Limit),
				pvalue.WithMaxSteps(p.MaxSteps),
			)
			if err != nil {
				return err
			}
			prefix := ""
			if res.Floored {
				prefix = "< "
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "p = %s%.6g (accuracy %.0e, %d escalations)\n",
				prefix, res.P, res.Accuracy, res.Steps)

			return err
		},
	}
	fl := cmd.Flags()
	fl.Float64Var(&f, "f", 0, "Pseudo-F statistic tr(H)/tr(E)")
	fl.Float64SliceVar(&lambda, "lambda", nil, "Residual covariance eigenvalues")
	fl.IntVar(&df, "df", 1, "Term degrees of freedom")
	fl.IntVar(&dfe, "dfe", 1, "Residual degrees of freedom")
	_ = cmd.MarkFlagRequired("f")
	_ = cmd.MarkFlagRequired("lambda")

	return cmd
}
