/*
 * root.go, part of gocrest.
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
	"github.com/rmera/gocrest/internal/config"
	"github.com/rmera/gocrest/internal/logging"
	"github.com/rmera/gocrest/qm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app carries what every subcommand needs, set up before the subcommand runs.
type app struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
	log        *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{v: config.New()}
	cmd := &cobra.Command{
		Use:   "gocrest",
		Short: "Constrained conformer searches with CREST and xtb",
		Long: "gocrest runs one constrained CREST conformer search per molecule in a manifest,\n" +
			"on a pool of workers, and collects the conformers found.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				a.log.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	pf.String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	a.v.BindPFlag("log.level", pf.Lookup("log-level"))

	cmd.AddCommand(newRunCommand(a), newRenderCommand(a))
	return cmd
}

func (a *app) setup() error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}

// handles returns the xtb and crest handles for the configuration,
// running the programs with runner.
func (a *app) handles(runner qm.Runner) (*qm.XTBHandle, *qm.CrestHandle) {
	xtb := qm.NewXTBHandle()
	xtb.SetCommand(a.cfg.XTBCommand)
	xtb.SetnCPU(a.cfg.NProcs)
	xtb.SetRunner(runner)
	crest := qm.NewCrestHandle()
	crest.SetCommand(a.cfg.CrestCommand)
	crest.SetnCPU(a.cfg.NProcs)
	crest.SetRunner(runner)
	crest.Keywords = a.cfg.CrestKeywords
	crest.CregenKeywords = a.cfg.CregenKeywords
	return xtb, crest
}
