/*
 * qm.go, part of gocrest.
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

// Package qm drives the external programs of the conformer search, xtb and
// crest, and writes the xcontrol files they read. The programs are always
// run through a Runner, in a working directory given explicitly, so several
// searches can run at the same time without sharing files.
package qm

import (
	"errors"
	"os"
	"strings"
)

// ErrReferenceGeneration is returned (wrapped) when crest didn't produce the
// coord.ref file needed by a constrained xcontrol.
var ErrReferenceGeneration = errors.New("reference geometry generation failed")

// ErrStageOutputMissing is returned (wrapped) when an external program
// finished but the file it should have produced is not there.
var ErrStageOutputMissing = errors.New("stage output missing")

// Fixed-name files produced by crest in its working directory.
const (
	CoordRef         = "coord.ref"
	SampleControl    = ".xcontrol.sample"
	CrestBest        = "crest_best.xyz"
	CrestConformers  = "crest_conformers.xyz"
	CrestEnsemble    = "crest_ensemble.xyz"
	CrestClustered   = "crest_clustered.xyz"
	crestNormalEnd   = "CREST terminated normally"
	xtbOptimizedName = "xtbopt.xyz"
)

// ScratchFiles are the fixed-name files the external programs leave behind
// in whatever directory they run.
var ScratchFiles = []string{"gfn2.out", "xTB_opt.traj", "ANI1_opt.traj", "wbo", "xtbrestart",
	"ase.opt", "xtb.opt", "gfnff_topo", "charges", ".xtboptok"}

func isInString(container []string, test string) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}

// searchBackwards returns the last line in the file filename
// that contains str, or an empty string if there is no such line
// or the file can't be read.
func searchBackwards(str, filename string) string {
	data, err := os.ReadFile(filename)
	if err != nil {
		return ""
	}
	lines := strings.Split(string(data), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.Contains(lines[i], str) {
			return lines[i]
		}
	}
	return ""
}

// exists returns true if name exists and is a regular file.
func exists(name string) bool {
	fi, err := os.Stat(name)
	return err == nil && fi.Mode().IsRegular()
}
