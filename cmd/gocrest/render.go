/*
 * render.go, part of gocrest.
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

	"github.com/rmera/gocrest/csearch"
	"github.com/rmera/gocrest/qm"
	"github.com/spf13/cobra"
)

// controlOrder is the order in which the control files are used in a search.
var controlOrder = []string{"constrain1.inp", "constrain2.inp", qm.SampleControl}

func newRenderCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "render <manifest.yaml> <molecule>",
		Short: "Print the xcontrol files a search would use, without running anything",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := csearch.ReadManifest(args[0])
			if err != nil {
				return err
			}
			in := manifest.Find(args[1])
			if in == nil {
				return fmt.Errorf("molecule %q not in %s", args[1], args[0])
			}
			xtb, crest := a.handles(qm.ExecRunner{Log: a.log})
			job := in.Job(a.cfg.Options(), xtb, crest)
			job.Log = a.log
			controls, err := job.Controls()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(controls) == 0 {
				fmt.Fprintf(out, "# %s has no constraints, no control files are used\n", in.Name)
				return nil
			}
			for _, name := range controlOrder {
				text, ok := controls[name]
				if !ok {
					continue
				}
				fmt.Fprintf(out, "# %s\n%s", name, text)
			}
			return nil
		},
	}
}
