/*
 * csearch_test.go, part of gocrest.
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
	"sync"
	"testing"

	"github.com/rmera/gocrest/qm"
	"github.com/stretchr/testify/require"
)

const water = `3
 water
O     0.000000   0.000000   0.000000
H     0.957000   0.000000   0.000000
H    -0.240000   0.927000   0.000000
`

const waterDimer = `6
 water dimer
O     0.000000   0.000000   0.000000
H     0.957000   0.000000   0.000000
H    -0.240000   0.927000   0.000000
O     2.900000   0.000000   0.000000
H     3.857000   0.000000   0.000000
H     2.660000   0.927000   0.000000
`

// waterFrames returns n water structures. In structure i (from 1) the first O-H
// distance is 0.95+0.01*i and the comment is " -5.0<i>".
func waterFrames(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "3\n -5.0%d\nO 0.0 0.0 0.0\nH %.3f 0.0 0.0\nH -0.240 0.927 0.0\n", i, 0.95+0.01*float64(i))
	}
	return b.String()
}

// fakeTools stands for xtb and crest. It writes, in the directory of each
// stage, the files the real programs would.
type fakeTools struct {
	mu           sync.Mutex
	stages       []qm.Stage
	frames       int             //structures in crest_conformers.xyz
	ensemble     int             //structures in crest_ensemble.xyz, written by cregen, if > 0
	clustered    bool            //crest also writes a crest_clustered.xyz with one structure
	noOutput     map[string]bool //molecules for which crest produces nothing
	panicFor     string
	writeScratch bool
}

func (F *fakeTools) write(dir, name, content string) {
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		panic(err)
	}
}

func (F *fakeTools) Run(ctx context.Context, s qm.Stage) (int, error) {
	mol := filepath.Base(s.Dir)
	F.mu.Lock()
	F.stages = append(F.stages, s)
	F.mu.Unlock()
	if F.writeScratch {
		F.write(s.Dir, "xtbrestart", "scratch")
		F.write(s.Dir, "charges", "scratch")
	}
	switch s.Name {
	case "constrain":
		F.write(s.Dir, qm.CoordRef, "coords")
		F.write(s.Dir, qm.SampleControl, "boilerplate")
	case "xtb1", "xtb2":
		in, err := os.ReadFile(filepath.Join(s.Dir, s.Args[0]))
		if err != nil {
			return 1, nil
		}
		F.write(s.Dir, "xtbopt.xyz", string(in))
	case "crest":
		if mol == F.panicFor {
			panic("crest went away")
		}
		if F.noOutput[mol] {
			F.write(s.Dir, "crest.out", "something went wrong\n")
			return 1, nil
		}
		F.write(s.Dir, qm.CrestConformers, waterFrames(F.frames))
		F.write(s.Dir, qm.CrestBest, waterFrames(1))
		F.write(s.Dir, "crest.out", "...\n CREST terminated normally.\n")
		if F.clustered {
			F.write(s.Dir, qm.CrestClustered, waterFrames(1))
		}
	case "cregen":
		if F.ensemble > 0 {
			F.write(s.Dir, qm.CrestEnsemble, waterFrames(F.ensemble))
		}
	}
	return 0, nil
}

// stagesFor returns the stages run for the molecule mol.
func (F *fakeTools) stagesFor(mol string) []qm.Stage {
	F.mu.Lock()
	defer F.mu.Unlock()
	var ret []qm.Stage
	for _, s := range F.stages {
		if filepath.Base(s.Dir) == mol {
			ret = append(ret, s)
		}
	}
	return ret
}

func stageNames(st []qm.Stage) []string {
	ret := make([]string, len(st))
	for i, s := range st {
		ret[i] = s.Name
	}
	return ret
}

func handles(r qm.Runner) (*qm.XTBHandle, *qm.CrestHandle) {
	x := qm.NewXTBHandle()
	x.SetRunner(r)
	x.SetnCPU(2)
	c := qm.NewCrestHandle()
	c.SetRunner(r)
	c.SetnCPU(2)
	return x, c
}

// newJob writes the geometry to a file and builds a job for it, as
// the inputs of a manifest would.
func newJob(Te *testing.T, r qm.Runner, opts Options, name, geometry string, dist any) *Job {
	p := filepath.Join(Te.TempDir(), name+".xyz")
	require.NoError(Te, os.WriteFile(p, []byte(geometry), 0o644))
	x, c := handles(r)
	in := &Input{Name: name, Geometry: p, Mult: 1, Distances: dist}
	j := in.Job(opts, x, c)
	require.NoError(Te, j.setupErr)
	return j
}
