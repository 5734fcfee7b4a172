/*
 * qm_test.go, part of gocrest.
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
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/rmera/gocrest/constraint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const water = `3
 water
O     0.000000   0.000000   0.000000
H     0.957000   0.000000   0.000000
H    -0.240000   0.927000   0.000000
`

// fakeRunner records the stages it gets and, for those with an action,
// runs it in place of the program.
type fakeRunner struct {
	mu     sync.Mutex
	stages []Stage
	act    map[string]func(s Stage) int
}

func (F *fakeRunner) Run(ctx context.Context, s Stage) (int, error) {
	F.mu.Lock()
	F.stages = append(F.stages, s)
	F.mu.Unlock()
	if f, ok := F.act[s.Name]; ok {
		return f(s), nil
	}
	return 0, nil
}

func touch(Te *testing.T, dir string, names ...string) {
	for _, n := range names {
		require.NoError(Te, os.WriteFile(filepath.Join(dir, n), []byte(water), 0o644))
	}
}

func crestWith(r Runner) *CrestHandle {
	c := NewCrestHandle()
	c.SetRunner(r)
	c.SetnCPU(2)
	return c
}

func TestRenderControl(Te *testing.T) {
	set, err := constraint.Build("[1,2]", "[1,2,1.50]", "[2,3,4,104.5]", nil)
	require.NoError(Te, err)
	expected := "$constrain\natoms: 1,2\ndistance: 1,2,1.5\nangle: 2,3,4,104.5\nforce constant=0.5\nreference=coord.ref\n$metadyn\natoms: 5,6\n$end\n"
	assert.Equal(Te, expected, RenderControl(set, 0.5, 6))
	//no free atoms, no $metadyn block.
	assert.NotContains(Te, RenderControl(set, 0.5, 4), "$metadyn")
	assert.NotContains(Te, RenderControl(set, 0.5, 0), "$metadyn")
}

func TestRenderUnconstrained(Te *testing.T) {
	r := &fakeRunner{}
	cb := &ControlBuilder{Crest: crestWith(r)}
	text, constrained, err := cb.Render(context.Background(), Te.TempDir(), new(constraint.Set), "ref.xyz", 0.5, true)
	require.NoError(Te, err)
	assert.False(Te, constrained)
	assert.Empty(Te, text)
	assert.Empty(Te, r.stages)
}

func TestRender(Te *testing.T) {
	dir := Te.TempDir()
	touch(Te, dir, "ref.xyz")
	r := &fakeRunner{act: map[string]func(Stage) int{
		"constrain": func(s Stage) int {
			touch(Te, s.Dir, CoordRef, SampleControl)
			return 0
		},
	}}
	cb := &ControlBuilder{Crest: crestWith(r)}
	set, err := constraint.Build(nil, "[1,2,1.50]", nil, nil)
	require.NoError(Te, err)
	text, constrained, err := cb.Render(context.Background(), dir, set, "ref.xyz", 0.5, true)
	require.NoError(Te, err)
	assert.True(Te, constrained)
	assert.Contains(Te, text, "distance: 1,2,1.5\n")
	assert.Contains(Te, text, "$metadyn\natoms: 3\n")
	require.Len(Te, r.stages, 1)
	assert.Equal(Te, []string{"ref.xyz", "--constrain", "1"}, r.stages[0].Args)
	assert.Empty(Te, r.stages[0].Log)
	assert.NoFileExists(Te, filepath.Join(dir, SampleControl))
	assert.FileExists(Te, filepath.Join(dir, CoordRef))
}

func TestRenderNoReference(Te *testing.T) {
	dir := Te.TempDir()
	cb := &ControlBuilder{Crest: crestWith(&fakeRunner{})}
	set, err := constraint.Build("[1]", nil, nil, nil)
	require.NoError(Te, err)
	_, _, err = cb.Render(context.Background(), dir, set, "ref.xyz", 0.5, false)
	assert.ErrorIs(Te, err, ErrReferenceGeneration)
}

func TestParseControlRoundTrip(Te *testing.T) {
	set, err := constraint.Build("[4,1]", "[[1,2,1.50],[3,2,0.957]]", "[2,3,4,104.5]", "[1,2,3,4,-179.25]")
	require.NoError(Te, err)
	c, err := ParseControl(RenderControl(set, 1.25, 8))
	require.NoError(Te, err)
	assert.Equal(Te, 1.25, c.ForceConstant)
	assert.Equal(Te, CoordRef, c.Reference)
	assert.Equal(Te, []int{5, 6, 7, 8}, c.Metadyn)
	assert.Equal(Te, set.Fixed(), c.Set.Fixed())
	assert.Equal(Te, set.Distances(), c.Set.Distances())
	assert.Equal(Te, set.Angles(), c.Set.Angles())
	assert.Equal(Te, set.Dihedrals(), c.Set.Dihedrals())

	_, err = ParseControl("$constrain\nnonsense\n$end\n")
	assert.Error(Te, err)
	_, err = ParseControl("$constrain\ndistance: 1,2\n$end\n")
	assert.True(Te, errors.Is(err, constraint.ErrMalformed))
}

func TestConstrainedOpt(Te *testing.T) {
	dir := Te.TempDir()
	r := &fakeRunner{act: map[string]func(Stage) int{
		"xtb1": func(s Stage) int {
			touch(Te, s.Dir, xtbOptimizedName)
			return 0
		},
		"xtb2": func(s Stage) int { return 1 },
	}}
	x := NewXTBHandle()
	x.SetRunner(r)
	x.SetnCPU(4)
	require.NoError(Te, x.ConstrainedOpt(context.Background(), "xtb1", dir, "mol.xyz", "constrain1.inp", "mol_xtb1.xyz", -1, 2))
	assert.FileExists(Te, filepath.Join(dir, "mol_xtb1.xyz"))
	assert.NoFileExists(Te, filepath.Join(dir, xtbOptimizedName))
	assert.Equal(Te, []string{"mol.xyz", "--opt", "--input", "constrain1.inp", "-c", "-1", "--uhf", "1", "-T", "4"}, r.stages[0].Args)
	assert.Equal(Te, "mol_xtb1.out", r.stages[0].Log)

	err := x.ConstrainedOpt(context.Background(), "xtb2", dir, "mol_xtb1.xyz", "", "mol_xtb2.xyz", -1, 2)
	assert.ErrorIs(Te, err, ErrStageOutputMissing)
	assert.NotContains(Te, r.stages[1].Args, "--input")
}

func TestSampleArgs(Te *testing.T) {
	c := crestWith(&fakeRunner{})
	assert.Equal(Te, []string{"in.xyz", "--chrg", "0", "--uhf", "0", "-T", "2"}, c.SampleArgs("in.xyz", 0, 1, ""))
	c.Keywords = "--nci --cbonds 0.5 --nci -T"
	assert.Equal(Te, []string{"in.xyz", "--chrg", "1", "--uhf", "1", "-T", "2", "-cinp", SampleControl, "--nci", "--cbonds", "0.5"},
		c.SampleArgs("in.xyz", 1, 2, SampleControl))
	c.CregenKeywords = "--ewin 3 --cregen"
	assert.Equal(Te, []string{CrestBest, "--cregen", CrestConformers, "--ewin", "3"}, c.CregenArgs())
}

func TestSampleAndCregenLogs(Te *testing.T) {
	r := &fakeRunner{}
	c := crestWith(r)
	dir := Te.TempDir()
	_, err := c.Sample(context.Background(), dir, "in.xyz", 0, 1, "")
	require.NoError(Te, err)
	_, err = c.Cregen(context.Background(), dir)
	require.NoError(Te, err)
	require.Len(Te, r.stages, 2)
	assert.Equal(Te, "crest.out", r.stages[0].Log)
	assert.Equal(Te, "cregen.out", r.stages[1].Log)
	assert.Equal(Te, dir, r.stages[1].Dir)
}

func TestSampleRemovesOldOutput(Te *testing.T) {
	r := &fakeRunner{}
	c := crestWith(r)
	dir := Te.TempDir()
	touch(Te, dir, CrestConformers, CrestEnsemble, CrestClustered, CrestBest)
	_, err := c.Sample(context.Background(), dir, "in.xyz", 0, 1, "")
	require.NoError(Te, err)
	_, err = ResolveConformers(dir, true)
	assert.ErrorIs(Te, err, ErrStageOutputMissing)
	assert.NoFileExists(Te, filepath.Join(dir, CrestBest))

	//cregen keeps the conformers of the search.
	touch(Te, dir, CrestConformers, CrestEnsemble, CrestClustered)
	_, err = c.Cregen(context.Background(), dir)
	require.NoError(Te, err)
	p, err := ResolveConformers(dir, true)
	require.NoError(Te, err)
	assert.Equal(Te, filepath.Join(dir, CrestConformers), p)
}

func TestResolveConformers(Te *testing.T) {
	dir := Te.TempDir()
	_, err := ResolveConformers(dir, true)
	assert.ErrorIs(Te, err, ErrStageOutputMissing)

	touch(Te, dir, CrestConformers)
	p, err := ResolveConformers(dir, true)
	require.NoError(Te, err)
	assert.Equal(Te, filepath.Join(dir, CrestConformers), p)

	touch(Te, dir, CrestEnsemble)
	p, _ = ResolveConformers(dir, false)
	assert.Equal(Te, filepath.Join(dir, CrestConformers), p)
	p, _ = ResolveConformers(dir, true)
	assert.Equal(Te, filepath.Join(dir, CrestEnsemble), p)

	touch(Te, dir, CrestClustered)
	p, _ = ResolveConformers(dir, false)
	assert.Equal(Te, filepath.Join(dir, CrestClustered), p)
}

func TestNormalTermination(Te *testing.T) {
	dir := Te.TempDir()
	c := NewCrestHandle()
	assert.False(Te, c.NormalTermination(dir))
	require.NoError(Te, os.WriteFile(filepath.Join(dir, "crest.out"), []byte("stuff\n CREST terminated normally.\n"), 0o644))
	assert.True(Te, c.NormalTermination(dir))
}

func TestExecRunner(Te *testing.T) {
	if runtime.GOOS == "windows" {
		Te.Skip("needs sh")
	}
	dir := Te.TempDir()
	r := ExecRunner{}
	code, err := r.Run(context.Background(), Stage{Name: "sh", Dir: dir, Command: "sh", Args: []string{"-c", "echo hello; exit 3"}, Log: "sh.out"})
	require.NoError(Te, err)
	assert.Equal(Te, 3, code)
	out, err := os.ReadFile(filepath.Join(dir, "sh.out"))
	require.NoError(Te, err)
	assert.Equal(Te, "hello\n", string(out))

	_, err = r.Run(context.Background(), Stage{Name: "missing", Dir: dir, Command: "this-program-does-not-exist-gocrest"})
	assert.Error(Te, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx, Stage{Name: "sh", Dir: dir, Command: "sh", Args: []string{"-c", "sleep 5"}})
	assert.ErrorIs(Te, err, context.Canceled)
}
