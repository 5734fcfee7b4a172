/*
 * runner.go, part of gocrest.
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

package qm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"
)

// Stage is one invocation of an external program.
type Stage struct {
	Name    string   //label used in logs and metrics, i.e. "xtb1" or "crest"
	Dir     string   //working directory for the program
	Command string   //executable
	Args    []string //arguments, passed without a shell
	Log     string   //file for the standard output and error, relative to Dir. Empty discards them.
}

// Runner executes stages. A non-zero exit code of the program is returned
// with a nil error: the caller must check for the expected output files.
// The error is reserved for programs that could not be run at all.
type Runner interface {
	Run(ctx context.Context, s Stage) (int, error)
}

// ExecRunner runs stages as child processes.
type ExecRunner struct {
	Log *zap.Logger
}

// Run runs the stage and waits for it to finish. Cancelling ctx kills the process.
func (R ExecRunner) Run(ctx context.Context, s Stage) (int, error) {
	errid := "ExecRunner/Run"
	l := R.Log
	if l == nil {
		l = zap.NewNop()
	}
	var out io.Writer = io.Discard
	if s.Log != "" {
		logname := s.Log
		if !filepath.IsAbs(logname) {
			logname = filepath.Join(s.Dir, logname)
		}
		f, err := os.Create(logname)
		if err != nil {
			return -1, fmt.Errorf("%s: %s: can't create log file: %w", errid, s.Name, err)
		}
		defer f.Close()
		out = f
	}
	cmd := exec.CommandContext(ctx, s.Command, s.Args...)
	cmd.Dir = s.Dir
	cmd.Stdout = out
	cmd.Stderr = out
	l.Debug("running stage", zap.String("stage", s.Name), zap.String("dir", s.Dir),
		zap.String("command", s.Command), zap.Strings("args", s.Args))
	err := cmd.Run()
	if ctx.Err() != nil {
		return -1, fmt.Errorf("%s: %s: %w", errid, s.Name, ctx.Err())
	}
	var exiterr *exec.ExitError
	if errors.As(err, &exiterr) {
		l.Debug("stage finished with an error code", zap.String("stage", s.Name), zap.Int("code", exiterr.ExitCode()))
		return exiterr.ExitCode(), nil
	}
	if err != nil {
		return -1, fmt.Errorf("%s: %s: %w", errid, s.Name, err)
	}
	return 0, nil
}
