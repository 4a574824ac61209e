// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/mlmtest/distance"
	"github.com/katalvlaran/mlmtest/internal/dataio"
	"github.com/katalvlaran/mlmtest/mlm"
	"github.com/katalvlaran/mlmtest/sscp"
)

type runFlags struct {
	response  string
	design    string
	data      string
	header    bool
	distance  bool
	method    string
	transform string
	scheme    string
	k         int
	json      bool
}

func newRunCmd(a *app) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze a response against a design",
		Long: `Analyze a response CSV against the design described by a YAML spec
and a CSV of explanatory columns.

Example usage:
  mlmtest run --response species.csv --design design.yaml --data sites.csv
  mlmtest run --response dist.csv --distance --header=false --design design.yaml --data sites.csv
  mlmtest run --response species.csv --method hellinger --type III --json ...`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.response, "response", "", "Response CSV (observations × variables, or a distance matrix with --distance)")
	fl.StringVar(&f.design, "design", "", "YAML design spec")
	fl.StringVar(&f.data, "data", "", "CSV with a header holding the design columns")
	fl.BoolVar(&f.header, "header", true, "Response CSV starts with a header record")
	fl.BoolVar(&f.distance, "distance", false, "Response is a dissimilarity matrix")
	fl.StringVar(&f.method, "method", "", "Distance method: euclidean, hellinger (default from config)")
	fl.StringVar(&f.transform, "transform", "", "Pre-transform: none, sqrt, log1p (default from config)")
	fl.StringVar(&f.scheme, "type", "", "Sums of squares type: I, II, III (default from config)")
	fl.IntVar(&f.k, "k", 0, "Principal coordinates to keep (0: automatic)")
	fl.BoolVar(&f.json, "json", false, "Print the table as JSON")
	_ = cmd.MarkFlagRequired("response")
	_ = cmd.MarkFlagRequired("design")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func (a *app) run(cmd *cobra.Command, f *runFlags) error {
	analysis := a.cfg.Analysis
	if f.method != "" {
		m, err := distance.ParseMethod(f.method)
		if err != nil {
			return err
		}
		analysis.Method = m
	}
	if f.transform != "" {
		t, err := distance.ParseTransform(f.transform)
		if err != nil {
			return err
		}
		analysis.Transform = t
	}
	if f.scheme != "" {
		s, err := sscp.ParseScheme(f.scheme)
		if err != nil {
			return err
		}
		analysis.Scheme = s
	}
	if f.k < 0 {
		return fmt.Errorf("--k must be ≥ 0, got %d", f.k)
	}
	if f.k > 0 {
		analysis.K = f.k
	}

	resp, err := readMatrix(f.response, f.header)
	if err != nil {
		return err
	}
	if len(resp.Missing) > 0 {
		a.log.Debug().Ints("rows", resp.Missing).Msg("response rows with missing cells")
	}
	specFile, err := os.Open(f.design)
	if err != nil {
		return err
	}
	defer specFile.Close()
	spec, err := dataio.ReadSpec(specFile)
	if err != nil {
		return err
	}
	dataFile, err := os.Open(f.data)
	if err != nil {
		return err
	}
	defer dataFile.Close()
	table, _, err := dataio.ReadTable(dataFile)
	if err != nil {
		return err
	}
	design, err := spec.Build(table)
	if err != nil {
		return err
	}

	var in mlm.ResponseInput = mlm.Raw(resp.Data, analysis.Method).WithTransform(analysis.Transform)
	if f.distance {
		in = mlm.Distance(resp.Data)
	}
	opts := append(analysis.Options(), mlm.WithLogger(a.log))
	tbl, err := mlm.Analyze(cmd.Context(), in, design, opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(tbl)
	}

	return tbl.WriteText(out)
}

func readMatrix(path string, header bool) (*dataio.Matrix, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	return dataio.ReadMatrix(fh, header)
}
