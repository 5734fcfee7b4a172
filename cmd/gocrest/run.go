/*
 * run.go, part of gocrest.
 *
 *
 * Copyright 2024 Raul Mera <rmeraa{at}academicosdotutadotcl
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rmera/gocrest/csearch"
	"github.com/rmera/gocrest/qm"
	"github.com/rmera/gocrest/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// DataFile is the name of the summary table, written in <output_dir>/CSEARCH.
const DataFile = "csearch_data.csv"

func newRunCommand(a *app) *cobra.Command {
	var csvPath string
	cmd := &cobra.Command{
		Use:   "run <manifest.yaml>",
		Short: "Run the conformer searches for all the molecules in a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args[0], csvPath)
		},
	}
	f := cmd.Flags()
	f.Int("workers", 0, "number of molecules searched at the same time")
	f.Int("nprocs", 0, "threads given to each xtb and crest process")
	f.Bool("cregen", false, "run CREGEN on the conformers found by crest")
	f.String("output-dir", "", "directory for the CSEARCH tree")
	f.String("db", "", "SQLite database where the run is recorded")
	f.StringVar(&csvPath, "csv", "", "where to write the summary table, \"-\" for stdout (default <output-dir>/CSEARCH/"+DataFile+")")
	for key, flag := range map[string]string{
		"workers":    "workers",
		"nprocs":     "nprocs",
		"cregen":     "cregen",
		"output_dir": "output-dir",
		"db_path":    "db",
	} {
		a.v.BindPFlag(key, f.Lookup(flag))
	}
	return cmd
}

func (a *app) run(cmd *cobra.Command, manifestPath, csvPath string) error {
	cfg, log := a.cfg, a.log
	manifest, err := csearch.ReadManifest(manifestPath)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	metrics := csearch.NewMetrics(reg)
	xtb, crest := a.handles(metrics.Runner(qm.ExecRunner{Log: log}))
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	pool := &csearch.Pool{
		Workers:   cfg.Workers,
		Log:       log,
		Metrics:   metrics,
		Progress:  cmd.ErrOrStderr(),
		CommonDir: cwd,
		RunID:     uuid.NewString(),
	}
	if cfg.DBPath != "" {
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.BeginRun(ctx, pool.RunID, manifestPath); err != nil {
			return err
		}
		pool.Sink = st
	}
	ds := pool.Run(ctx, manifest.Jobs(cfg.Options(), xtb, crest))

	if err := writeCSV(ds, csvPath, cfg.OutputDir, cmd.OutOrStdout()); err != nil {
		return err
	}
	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, reg); err != nil {
			log.Error("failed to write metrics", zap.String("file", cfg.MetricsFile), zap.Error(err))
		}
	}
	if ds.Len() > 0 && ds.Failed() == ds.Len() {
		return fmt.Errorf("all %d conformer searches failed", ds.Len())
	}
	return ctx.Err()
}

func writeCSV(ds *csearch.Dataset, csvPath, outDir string, stdout io.Writer) error {
	if csvPath == "-" {
		return ds.WriteCSV(stdout)
	}
	if csvPath == "" {
		dir := filepath.Join(outDir, "CSEARCH")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		csvPath = filepath.Join(dir, DataFile)
	}
	f, err := os.Create(csvPath)
	if err != nil {
		return err
	}
	if err := ds.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
