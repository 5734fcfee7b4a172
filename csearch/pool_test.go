/*
 * pool_test.go, part of gocrest.
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
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSink struct {
	mu   sync.Mutex
	rows map[string]Row
	run  string
}

func (M *memSink) Put(ctx context.Context, runID string, r Row) error {
	M.mu.Lock()
	defer M.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	M.run = runID
	M.rows[r.Molecule] = r
	return nil
}

func TestPoolOneFailure(Te *testing.T) {
	for _, failing := range []string{"m1", "m3", "m5"} {
		tools := &fakeTools{frames: 3, noOutput: map[string]bool{failing: true}, writeScratch: true}
		metrics := NewMetrics(prometheus.NewRegistry())
		x, c := handles(metrics.Runner(tools))
		common := Te.TempDir()
		require.NoError(Te, os.WriteFile(filepath.Join(common, "gfn2.out"), []byte("x"), 0o644))
		opts := Options{OutputDir: Te.TempDir()}
		geom := filepath.Join(Te.TempDir(), "w.xyz")
		require.NoError(Te, os.WriteFile(geom, []byte(water), 0o644))
		man := &Manifest{}
		for _, n := range []string{"m1", "m2", "m3", "m4", "m5"} {
			man.Molecules = append(man.Molecules, &Input{Name: n, Geometry: geom})
		}
		sink := &memSink{rows: make(map[string]Row)}
		pool := &Pool{Workers: 3, Metrics: metrics, Sink: sink, CommonDir: common, Progress: io.Discard}
		ds := pool.Run(context.Background(), man.Jobs(opts, x, c))

		require.Equal(Te, 5, ds.Len())
		assert.Equal(Te, 1, ds.Failed())
		for _, n := range []string{"m1", "m2", "m3", "m4", "m5"} {
			r, ok := ds.Row(n)
			require.True(Te, ok, n)
			if n == failing {
				assert.Equal(Te, StatusFailed, r.Status)
				assert.Equal(Te, 0, r.Conformers)
				assert.NotEmpty(Te, r.Diagnostic)
				continue
			}
			assert.Equal(Te, StatusDone, r.Status, n)
			assert.Equal(Te, 3, r.Conformers, n)
			assert.Empty(Te, r.Diagnostic, n)
		}
		assert.Len(Te, sink.rows, 5)
		assert.Equal(Te, pool.RunID, sink.run)
		assert.NotEmpty(Te, pool.RunID)

		assert.Equal(Te, 1.0, testutil.ToFloat64(metrics.Jobs.WithLabelValues("failed")))
		assert.Equal(Te, 4.0, testutil.ToFloat64(metrics.Jobs.WithLabelValues("done")))
		assert.Equal(Te, 12.0, testutil.ToFloat64(metrics.Conformers))
		assert.Equal(Te, 1, testutil.CollectAndCount(metrics.StageSeconds))

		//scratch files are gone, the results are not.
		assert.NoFileExists(Te, filepath.Join(common, "gfn2.out"))
		for _, j := range man.Molecules {
			dir := filepath.Join(opts.OutputDir, "CSEARCH", "crest_xyz", j.Name)
			assert.NoFileExists(Te, filepath.Join(dir, "xtbrestart"))
			assert.NoFileExists(Te, filepath.Join(dir, "charges"))
			assert.FileExists(Te, filepath.Join(dir, j.Name+".xyz"))
		}
	}
}

func TestPoolDuplicatesAndCrash(Te *testing.T) {
	tools := &fakeTools{frames: 2, panicFor: "p"}
	opts := Options{OutputDir: Te.TempDir()}
	jobs := []*Job{
		newJob(Te, tools, opts, "a", water, nil),
		newJob(Te, tools, opts, "p", water, nil),
		newJob(Te, tools, opts, "a", water, "[1,2,1.0]"),
		{Name: "broken", Opts: opts},
	}
	var progress bytes.Buffer
	ds := (&Pool{Workers: 2, Progress: &progress}).Run(context.Background(), jobs)
	require.Equal(Te, 3, ds.Len())
	a, _ := ds.Row("a")
	assert.Equal(Te, StatusDone, a.Status)
	assert.Equal(Te, 2, a.Conformers)
	//the duplicate was not run.
	for _, s := range tools.stagesFor("a") {
		assert.NotEqual(Te, "constrain", s.Name)
	}
	p, _ := ds.Row("p")
	assert.Equal(Te, StatusFailed, p.Status)
	assert.Contains(Te, p.Diagnostic, "unexpected error")
	b, _ := ds.Row("broken")
	assert.Equal(Te, StatusFailed, b.Status)
	assert.NotEmpty(Te, progress.String())
}

func TestPoolNoJobs(Te *testing.T) {
	ds := (&Pool{Workers: 4}).Run(context.Background(), nil)
	assert.Equal(Te, 0, ds.Len())
}

func TestPoolCancelledSink(Te *testing.T) {
	tools := &fakeTools{frames: 3}
	rules := []GeomRule{{Atoms: []int{1, 2}, Min: 0.955, Max: 0.975}}
	opts := Options{OutputDir: Te.TempDir(), Rules: rules}
	jobs := []*Job{newJob(Te, tools, opts, "p1", water, nil), newJob(Te, tools, opts, "p2", water, nil)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := &memSink{rows: make(map[string]Row)}
	ds := (&Pool{Workers: 2, Sink: sink}).Run(ctx, jobs)
	require.Equal(Te, 2, ds.Len())
	require.Len(Te, sink.rows, 2)
	for _, n := range []string{"p1", "p2"} {
		r, _ := ds.Row(n)
		assert.Equal(Te, 2, r.Conformers)
		assert.Equal(Te, 1, r.Rejected)
		assert.Equal(Te, r, sink.rows[n])
	}
}

func TestDatasetCSV(Te *testing.T) {
	ds := NewDataset()
	require.NoError(Te, ds.Add(Row{Molecule: "a", Status: StatusDone, Conformers: 3, Rejected: 1}))
	require.NoError(Te, ds.Add(Row{Molecule: "b", Status: StatusFailed, Diagnostic: "no output, try again"}))
	assert.ErrorIs(Te, ds.Add(Row{Molecule: "a"}), ErrDuplicateMolecule)
	var b strings.Builder
	require.NoError(Te, ds.WriteCSV(&b))
	assert.Equal(Te, "molecule,status,crest-conformers,rejected,diagnostic\na,done,3,1,\nb,failed,0,0,\"no output, try again\"\n", b.String())
	assert.Equal(Te, "a", ds.Rows()[0].Molecule)
}
