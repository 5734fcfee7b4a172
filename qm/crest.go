/*
 * crest.go, part of gocrest.
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

//In order to use this part of the library you need the crest program, which must be obtained from Prof. Stefan Grimme's group.
//Please cite the the CREST references if you used the program.

package qm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// CrestHandle runs the crest conformer search and the cregen
// post-processing, and the crest call that produces the coord.ref file
// for constrained searches.
type CrestHandle struct {
	command string
	nCPU    int
	runner  Runner
	//Extra flags for the search and for cregen. Flags already present in the
	//command are not repeated.
	Keywords       string
	CregenKeywords string
}

// NewCrestHandle initializes and returns a crest handle
// with values set to their defaults.
func NewCrestHandle() *CrestHandle {
	run := new(CrestHandle)
	run.SetDefaults()
	return run
}

//CrestHandle methods

// SetnCPU sets the number of CPU to be used
func (O *CrestHandle) SetnCPU(cpu int) {
	if cpu > 0 {
		O.nCPU = cpu
	}
}

// Command returns the path and name for the crest excecutable
func (O *CrestHandle) Command() string {
	return O.command
}

// SetCommand sets the path and name for the crest excecutable
func (O *CrestHandle) SetCommand(name string) {
	O.command = name
}

// SetRunner sets the runner used to execute crest.
func (O *CrestHandle) SetRunner(r Runner) {
	O.runner = r
}

// SetDefaults sets calculations parameters to their defaults.
func (O *CrestHandle) SetDefaults() {
	O.command = os.ExpandEnv("crest")
	O.nCPU = max(runtime.NumCPU()/2, 1)
	O.runner = ExecRunner{}
}

// ConstraintReference runs crest in its constraint-generation mode on refxyz, in dir,
// only to obtain the coord.ref file. The sample xcontrol that crest writes
// is removed, and so is the output.
func (O *CrestHandle) ConstraintReference(ctx context.Context, dir, refxyz string) error {
	errid := "CrestHandle/ConstraintReference"
	ref := filepath.Join(dir, CoordRef)
	os.Remove(ref)
	s := Stage{Name: "constrain", Dir: dir, Command: O.command, Args: []string{refxyz, "--constrain", "1"}}
	code, err := O.runner.Run(ctx, s)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", errid, ErrReferenceGeneration, err)
	}
	os.Remove(filepath.Join(dir, SampleControl))
	if !exists(ref) {
		return fmt.Errorf("%s: crest exited with code %d and no %s: %w", errid, code, CoordRef, ErrReferenceGeneration)
	}
	return nil
}

// SampleArgs returns the arguments for a conformer search on inxyz. If
// cinp is not empty, it is given to crest as the constraint file.
func (O *CrestHandle) SampleArgs(inxyz string, charge, multi int, cinp string) []string {
	args := []string{inxyz, "--chrg", strconv.Itoa(charge), "--uhf", strconv.Itoa(multi - 1), "-T", strconv.Itoa(O.nCPU)}
	if cinp != "" {
		args = append(args, "-cinp", cinp)
	}
	return appendKeywords(args, O.Keywords)
}

// Sample runs the conformer search on inxyz in dir, with its output going
// to crest.out. The search must leave at least a crest_conformers.xyz file
// in dir, see ResolveConformers. Output files from earlier searches in dir
// are removed first.
func (O *CrestHandle) Sample(ctx context.Context, dir, inxyz string, charge, multi int, cinp string) (int, error) {
	removeAll(dir, CrestConformers, CrestEnsemble, CrestClustered, CrestBest)
	s := Stage{Name: "crest", Dir: dir, Command: O.command, Args: O.SampleArgs(inxyz, charge, multi, cinp), Log: "crest.out"}
	code, err := O.runner.Run(ctx, s)
	if err != nil {
		err = fmt.Errorf("CrestHandle/Sample: %w", err)
	}
	return code, err
}

// CregenArgs returns the arguments for the cregen post-processing.
func (O *CrestHandle) CregenArgs() []string {
	return appendKeywords([]string{CrestBest, "--cregen", CrestConformers}, O.CregenKeywords)
}

// Cregen runs cregen over the results of a previous search in dir,
// with the output going to cregen.out. Ensembles left by an earlier
// cregen run in dir are removed first.
func (O *CrestHandle) Cregen(ctx context.Context, dir string) (int, error) {
	removeAll(dir, CrestEnsemble, CrestClustered)
	s := Stage{Name: "cregen", Dir: dir, Command: O.command, Args: O.CregenArgs(), Log: "cregen.out"}
	code, err := O.runner.Run(ctx, s)
	if err != nil {
		err = fmt.Errorf("CrestHandle/Cregen: %w", err)
	}
	return code, err
}

// NormalTermination returns true if the crest search in dir reported to have
// terminated normally.
func (O *CrestHandle) NormalTermination(dir string) bool {
	return searchBackwards(crestNormalEnd, filepath.Join(dir, "crest.out")) != ""
}

// ResolveConformers returns the path of the file in dir with the conformers
// of a search. A clustered set is preferred, then, if cregen was run, the
// cregen ensemble, and last, the conformers from the search.
func ResolveConformers(dir string, cregen bool) (string, error) {
	candidates := []string{CrestClustered}
	if cregen {
		candidates = append(candidates, CrestEnsemble)
	}
	candidates = append(candidates, CrestConformers)
	for _, v := range candidates {
		if p := filepath.Join(dir, v); exists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("ResolveConformers: none of %s found in %s: %w", strings.Join(candidates, ", "), dir, ErrStageOutputMissing)
}

func removeAll(dir string, names ...string) {
	for _, n := range names {
		os.Remove(filepath.Join(dir, n))
	}
}

// appendKeywords appends to args each of the whitespace-separated keywords
// not already in it.
func appendKeywords(args []string, keywords string) []string {
	for _, k := range strings.Fields(keywords) {
		if !isInString(args, k) {
			args = append(args, k)
		}
	}
	return args
}
