/*
 * job.go, part of gocrest.
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

package csearch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	chem "github.com/rmera/gocrest"
	"github.com/rmera/gocrest/constraint"
	"github.com/rmera/gocrest/qm"
	"go.uber.org/zap"
)

// State is the stage a job is in.
type State int

const (
	Init State = iota
	Frozen1
	Frozen2
	Sampling
	Clustering
	Collecting
	Done
	Failed
)

func (S State) String() string {
	return [...]string{"init", "frozen1", "frozen2", "sampling", "clustering", "collecting", "done", "failed"}[S]
}

// ComplexMode decides whether a job runs the two constrained xtb
// optimizations before the search.
type ComplexMode string

const (
	ComplexOn  ComplexMode = "on"
	ComplexOff ComplexMode = "off"
	// ComplexAuto runs the optimizations only for molecules with more
	// than one covalently bound fragment.
	ComplexAuto ComplexMode = "auto"
)

// Options are the settings shared by all the jobs of a run.
type Options struct {
	OutputDir     string
	Complex       ComplexMode
	ForceConstant float64
	Cregen        bool
	Rules         []GeomRule
}

// DefaultForceConstant is the force constant for constraints, in Eh/Bohr^2, when none is given.
const DefaultForceConstant = 0.5

// Job is the conformer search for one molecule. The molecule must have its
// charge and multiplicity set.
type Job struct {
	Name        string
	Mol         *chem.Molecule
	Constraints *constraint.Set
	Opts        Options
	Xtb         *qm.XTBHandle
	Crest       *qm.CrestHandle
	Log         *zap.Logger

	setupErr error //an error found while building the job.
	dir      string
	state    State
	states   []State
}

// Result is the outcome of a job.
type Result struct {
	Name       string
	Status     Status
	States     []State //every state the job went through, in order.
	Records    []*ConformerRecord
	Container  string //file with the records, empty if the job failed.
	Dropped    int    //conformers rejected by the geometry rules.
	Err        error
	Diagnostic string
	Warnings   []string
}

// Dir returns the working directory of the job.
func (J *Job) Dir() string {
	return filepath.Join(J.Opts.OutputDir, "CSEARCH", "crest_xyz", J.Name)
}

// ContainerPath returns the file where the conformers of the job are stored.
func (J *Job) ContainerPath() string {
	return filepath.Join(J.Opts.OutputDir, "CSEARCH", "crest", J.Name+".jsonl.zst")
}

func (J *Job) enter(s State) {
	J.state = s
	J.states = append(J.states, s)
	J.Log.Debug("job state", zap.Stringer("state", s))
}

// Run runs the job. It doesn't return errors: a failed job produces a result
// with StatusFailed and a diagnostic. A panic in the job is recovered
// and reported the same way.
func (J *Job) Run(ctx context.Context) (res *Result) {
	if J.Log == nil {
		J.Log = zap.NewNop()
	}
	J.Log = J.Log.With(zap.String("molecule", J.Name))
	res = &Result{Name: J.Name}
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("Job/Run: %s: %v: %w", J.Name, r, ErrWorkerCrash)
			J.enter(Failed)
		}
		if res.Err != nil {
			res.Status = StatusFailed
			res.Records = nil
			res.Container = ""
			res.Diagnostic = diagnostic(res.Err)
			J.Log.Warn("conformer search failed", zap.Stringer("state", J.failedAt()),
				zap.Error(res.Err), zap.String("remediation", remediation(res.Err)))
		} else {
			res.Status = StatusDone
		}
		res.States = J.states
	}()
	if err := J.run(ctx, res); err != nil {
		res.Err = err
		J.enter(Failed)
	}
	return res
}

// failedAt returns the last state before Failed.
func (J *Job) failedAt() State {
	for i := len(J.states) - 1; i >= 0; i-- {
		if J.states[i] != Failed {
			return J.states[i]
		}
	}
	return Init
}

func (J *Job) run(ctx context.Context, res *Result) error {
	errid := "Job/Run"
	J.enter(Init)
	if J.setupErr != nil {
		return J.setupErr
	}
	if err := ValidName(J.Name); err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	if J.Xtb == nil {
		J.Xtb = qm.NewXTBHandle()
	}
	if J.Crest == nil {
		J.Crest = qm.NewCrestHandle()
	}
	if J.Mol == nil || J.Mol.Len() == 0 {
		return fmt.Errorf("%s: %s: no reference geometry", errid, J.Name)
	}
	if J.Constraints == nil {
		J.Constraints = new(constraint.Set)
	}
	if err := J.Constraints.Validate(J.Mol.Len()); err != nil {
		return fmt.Errorf("%s: %s: %w", errid, J.Name, err)
	}
	J.dir = J.Dir()
	if err := os.MkdirAll(J.dir, 0o755); err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	os.Remove(J.ContainerPath())
	ref := J.Name + ".xyz"
	if err := chem.XYZFileWrite(filepath.Join(J.dir, ref), J.Mol.Coords[0], J.Mol, J.Name); err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	force := J.Opts.ForceConstant
	if force <= 0 {
		force = DefaultForceConstant
	}
	builder := &qm.ControlBuilder{Crest: J.Crest}
	charge, multi := J.Mol.Charge(), J.Mol.Multi()

	twophase, err := J.twoPhase()
	if err != nil {
		return fmt.Errorf("%s: %s: %w", errid, J.Name, err)
	}
	input := ref
	if twophase {
		J.enter(Frozen1)
		frozen := J.Constraints.Frozen(constraint.FreeBonds(J.Mol, J.Constraints))
		xtb1 := J.Name + "_xtb1.xyz"
		if err := J.optimize(ctx, builder, "xtb1", frozen, ref, ref, "constrain1.inp", xtb1, force); err != nil {
			return err
		}
		J.enter(Frozen2)
		xtb2 := J.Name + "_xtb2.xyz"
		if err := J.optimize(ctx, builder, "xtb2", J.Constraints, ref, xtb1, "constrain2.inp", xtb2, force); err != nil {
			return err
		}
		input = xtb2
	}

	J.enter(Sampling)
	text, constrained, err := builder.Render(ctx, J.dir, J.Constraints, ref, force, true)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", errid, J.Name, err)
	}
	cinp := ""
	if constrained {
		if _, err := qm.WriteControl(J.dir, qm.SampleControl, text); err != nil {
			return fmt.Errorf("%s: %w", errid, err)
		}
		cinp = qm.SampleControl
	}
	code, err := J.Crest.Sample(ctx, J.dir, input, charge, multi, cinp)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", errid, J.Name, err)
	}
	if !J.Crest.NormalTermination(J.dir) {
		w := fmt.Sprintf("crest didn't report a normal termination (exit code %d)", code)
		res.Warnings = append(res.Warnings, w)
		J.Log.Warn(w)
	}

	if J.Opts.Cregen {
		J.enter(Clustering)
		if _, err := J.Crest.Cregen(ctx, J.dir); err != nil {
			return fmt.Errorf("%s: %s: %w", errid, J.Name, err)
		}
	}

	J.enter(Collecting)
	found, err := qm.ResolveConformers(J.dir, J.Opts.Cregen)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", errid, J.Name, err)
	}
	all := filepath.Join(J.dir, J.Name+"_conformers.xyz")
	if err := os.Rename(found, all); err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	files, err := SplitXYZ(all, J.dir, J.Name)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", errid, J.Name, err)
	}
	records, err := Collect(files, J.Name, charge, multi)
	if err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	records, res.Dropped, err = Filter(records, J.Opts.Rules)
	if err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	if res.Dropped > 0 {
		J.Log.Info("conformers rejected by the geometry rules", zap.Int("dropped", res.Dropped))
	}
	container := J.ContainerPath()
	if err := os.MkdirAll(filepath.Dir(container), 0o755); err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	if err := WriteContainer(container, records); err != nil {
		return fmt.Errorf("%s: %s: %w", errid, J.Name, err)
	}
	res.Records = records
	res.Container = container
	J.enter(Done)
	J.Log.Info("conformer search finished", zap.Int("conformers", len(records)))
	return nil
}

// twoPhase decides whether the constrained xtb optimizations are needed.
func (J *Job) twoPhase() (bool, error) {
	mode := ComplexMode(strings.ToLower(string(J.Opts.Complex)))
	switch mode {
	case ComplexOff, "":
		return false, nil
	case ComplexOn, ComplexAuto:
	default:
		return false, fmt.Errorf("unknown complex mode %q", J.Opts.Complex)
	}
	if err := chem.AssignBonds(J.Mol.Coords[0], J.Mol); err != nil {
		return false, err
	}
	if mode == ComplexOn {
		return true, nil
	}
	frags := chem.Fragments(J.Mol)
	J.Log.Debug("fragments in the reference geometry", zap.Int("fragments", frags))
	return frags > 1, nil
}

// optimize runs one of the constrained xtb optimizations. The xcontrol file
// always refers to the reference geometry ref.
func (J *Job) optimize(ctx context.Context, builder *qm.ControlBuilder, stage string, set *constraint.Set, ref, in, inp, out string, force float64) error {
	errid := "Job/Run"
	text, constrained, err := builder.Render(ctx, J.dir, set, ref, force, false)
	if err != nil {
		return fmt.Errorf("%s: %s: %s: %w", errid, J.Name, stage, err)
	}
	if !constrained {
		inp = ""
	} else if _, err := qm.WriteControl(J.dir, inp, text); err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	if err := J.Xtb.ConstrainedOpt(ctx, stage, J.dir, in, inp, out, J.Mol.Charge(), J.Mol.Multi()); err != nil {
		return fmt.Errorf("%s: %s: %w", errid, J.Name, err)
	}
	return nil
}

// Controls returns the xcontrol texts the job would write, by file name,
// without running any program. Stages without constraints have no file.
func (J *Job) Controls() (map[string]string, error) {
	if J.setupErr != nil {
		return nil, J.setupErr
	}
	if J.Log == nil {
		J.Log = zap.NewNop()
	}
	if J.Mol == nil {
		return nil, fmt.Errorf("Job/Controls: %s: no reference geometry", J.Name)
	}
	if J.Constraints == nil {
		J.Constraints = new(constraint.Set)
	}
	if err := J.Constraints.Validate(J.Mol.Len()); err != nil {
		return nil, fmt.Errorf("Job/Controls: %s: %w", J.Name, err)
	}
	force := J.Opts.ForceConstant
	if force <= 0 {
		force = DefaultForceConstant
	}
	ret := make(map[string]string)
	twophase, err := J.twoPhase()
	if err != nil {
		return nil, fmt.Errorf("Job/Controls: %s: %w", J.Name, err)
	}
	if twophase {
		frozen := J.Constraints.Frozen(constraint.FreeBonds(J.Mol, J.Constraints))
		if !frozen.Empty() {
			ret["constrain1.inp"] = qm.RenderControl(frozen, force, 0)
		}
		if !J.Constraints.Empty() {
			ret["constrain2.inp"] = qm.RenderControl(J.Constraints, force, 0)
		}
	}
	if !J.Constraints.Empty() {
		ret[qm.SampleControl] = qm.RenderControl(J.Constraints, force, J.Mol.Len())
	}
	return ret, nil
}
