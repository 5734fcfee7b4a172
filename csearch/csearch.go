/*
 * csearch.go, part of gocrest.
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

// Package csearch runs constrained conformer searches with crest, one job
// per molecule, on a pool of workers, and collects the conformers and a
// summary of every job.
//
// Each job works in its own directory, <output>/CSEARCH/crest_xyz/<name>, and
// writes its conformers to <output>/CSEARCH/crest/<name>.jsonl.zst.
package csearch

import (
	"errors"
	"fmt"

	"github.com/rmera/gocrest/constraint"
	"github.com/rmera/gocrest/qm"
)

// ErrWorkerCrash is returned (wrapped) when a job panics.
var ErrWorkerCrash = errors.New("worker crashed")

// ErrDuplicateMolecule is returned (wrapped) for a job whose name
// was already used by another job in the same run.
var ErrDuplicateMolecule = errors.New("duplicate molecule name")

// Status is the final status of a job.
type Status string

const (
	StatusDone   Status = "done"
	StatusFailed Status = "failed"
)

// remediation returns a suggestion for the user, according to the error
// that made a job fail.
func remediation(err error) string {
	switch {
	case errors.Is(err, constraint.ErrMalformed):
		return "check the atom indexes and values of the constraints"
	case errors.Is(err, qm.ErrReferenceGeneration):
		return "check that crest runs and accepts the reference geometry"
	case errors.Is(err, qm.ErrStageOutputMissing):
		return "CREST conformer sampling failed, try other options (i.e. include constraints, change crest_keywords, etc.)"
	case errors.Is(err, ErrWorkerCrash):
		return "unexpected error in the job, please report it"
	case errors.Is(err, ErrDuplicateMolecule):
		return "use unique molecule names"
	}
	return "check the output files of the job"
}

func diagnostic(err error) string {
	return fmt.Sprintf("%v; %s", err, remediation(err))
}
