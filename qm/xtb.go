/*
 * xtb.go, part of gocrest.
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

//In order to use this part of the library you need the xtb program, which must be obtained from Prof. Stefan Grimme's group.
//Please cite the the xtb references if you used the program.

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

// XTBHandle runs constrained xtb optimizations.
type XTBHandle struct {
	command string
	nCPU    int
	runner  Runner
}

// NewXTBHandle initializes and returns an xtb handle
// with values set to their defaults.
func NewXTBHandle() *XTBHandle {
	run := new(XTBHandle)
	run.SetDefaults()
	return run
}

//XTBHandle methods

// SetnCPU sets the number of CPU to be used
func (O *XTBHandle) SetnCPU(cpu int) {
	if cpu > 0 {
		O.nCPU = cpu
	}
}

// Command returns the path and name for the xtb excecutable
func (O *XTBHandle) Command() string {
	return O.command
}

// SetCommand sets the path and name for the xtb excecutable
func (O *XTBHandle) SetCommand(name string) {
	O.command = name
}

// SetRunner sets the runner used to execute xtb.
func (O *XTBHandle) SetRunner(r Runner) {
	O.runner = r
}

// SetDefaults sets the xtb command, the number of CPUs and the runner
// to their defaults.
func (O *XTBHandle) SetDefaults() {
	O.command = os.ExpandEnv("xtb")
	O.nCPU = max(runtime.NumCPU()/2, 1)
	O.runner = ExecRunner{}
}

// OptArgs returns the arguments for a constrained optimization of
// the geometry in inxyz, with the constraints in the xcontrol file input.
// If input is empty, the optimization is unconstrained.
func (O *XTBHandle) OptArgs(inxyz, input string, charge, multi int) []string {
	args := []string{inxyz, "--opt"}
	if input != "" {
		args = append(args, "--input", input)
	}
	return append(args, "-c", strconv.Itoa(charge), "--uhf", strconv.Itoa(multi-1), "-T", strconv.Itoa(O.nCPU))
}

// ConstrainedOpt optimizes inxyz in the directory dir, with the constraints in the
// xcontrol file input, and moves the optimized geometry to outxyz. The output of
// xtb goes to outxyz with the extension replaced by .out. The name of the stage
// is used only for logging. Relative paths are taken from dir.
func (O *XTBHandle) ConstrainedOpt(ctx context.Context, name, dir, inxyz, input, outxyz string, charge, multi int) error {
	errid := "XTBHandle/ConstrainedOpt"
	optimized := filepath.Join(dir, xtbOptimizedName)
	os.Remove(optimized) //a previous optimization must not pass for this one.
	s := Stage{
		Name:    name,
		Dir:     dir,
		Command: O.command,
		Args:    O.OptArgs(inxyz, input, charge, multi),
		Log:     strings.TrimSuffix(outxyz, ".xyz") + ".out",
	}
	code, err := O.runner.Run(ctx, s)
	if err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	if !exists(optimized) {
		return fmt.Errorf("%s: %s: xtb exited with code %d and no %s: %w", errid, name, code, xtbOptimizedName, ErrStageOutputMissing)
	}
	if !filepath.IsAbs(outxyz) {
		outxyz = filepath.Join(dir, outxyz)
	}
	if err := os.Rename(optimized, outxyz); err != nil {
		return fmt.Errorf("%s: %s: %w", errid, name, err)
	}
	return nil
}
