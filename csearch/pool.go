/*
 * pool.go, part of gocrest.
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
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rmera/gocrest/qm"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Sink receives each row of the dataset as soon as it is added.
type Sink interface {
	Put(ctx context.Context, runID string, r Row) error
}

// Pool runs jobs on a fixed number of workers.
type Pool struct {
	Workers   int
	Log       *zap.Logger
	Metrics   *Metrics  //can be nil
	Sink      Sink      //can be nil
	Progress  io.Writer //where to draw a progress bar. Nil for no bar.
	CommonDir string    //directory shared by the jobs, cleaned of scratch files at the end. Can be empty.
	RunID     string    //set by Run if empty.
}

type indexed struct {
	i   int
	res *Result
}

// Run runs all the jobs and returns one row for each job with a unique name.
// Jobs with a name already used by a previous job are not run. Results are
// added to the dataset, and given to the sink, as they arrive, by a single
// goroutine. The progress bar advances in the order the jobs were given.
// Run returns when all the jobs have finished, even if all of them failed.
func (P *Pool) Run(ctx context.Context, jobs []*Job) *Dataset {
	log := P.Log
	if log == nil {
		log = zap.NewNop()
	}
	if P.RunID == "" {
		P.RunID = uuid.NewString()
	}
	log = log.With(zap.String("run", P.RunID))
	workers := P.Workers
	if workers < 1 {
		workers = 1
	}
	ds := NewDataset()
	seen := make(map[string]bool, len(jobs))
	torun := make([]*Job, 0, len(jobs))
	for _, j := range jobs {
		if seen[j.Name] {
			err := fmt.Errorf("Pool/Run: %q: %w", j.Name, ErrDuplicateMolecule)
			log.Warn("job not run", zap.Error(err), zap.String("remediation", remediation(err)))
			continue
		}
		seen[j.Name] = true
		if j.Log == nil {
			j.Log = log
		}
		torun = append(torun, j)
	}
	log.Info("starting conformer searches", zap.Int("jobs", len(torun)), zap.Int("workers", workers))

	jobsChan := make(chan int, len(torun))
	resultsChan := make(chan indexed, len(torun))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobsChan {
				resultsChan <- indexed{i, safeRun(ctx, torun[i])}
			}
		}()
	}
	for i := range torun {
		jobsChan <- i
	}
	close(jobsChan)
	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	var bar *progressbar.ProgressBar
	if P.Progress != nil {
		bar = progressbar.NewOptions(len(torun),
			progressbar.OptionSetWriter(P.Progress),
			progressbar.OptionSetDescription("Conformer searches"),
			progressbar.OptionShowCount())
	}
	arrived := make([]bool, len(torun))
	next := 0
	for r := range resultsChan {
		P.merge(ctx, ds, r.res, log)
		arrived[r.i] = true
		for next < len(arrived) && arrived[next] {
			if bar != nil {
				bar.Add(1)
			}
			next++
		}
	}
	if bar != nil {
		bar.Finish()
	}
	dirs := make([]string, 0, len(torun)+1)
	if P.CommonDir != "" {
		dirs = append(dirs, P.CommonDir)
	}
	for _, j := range torun {
		if ValidName(j.Name) == nil {
			dirs = append(dirs, j.Dir())
		}
	}
	n := CleanScratch(dirs...)
	log.Info("conformer searches finished", zap.Int("jobs", ds.Len()), zap.Int("failed", ds.Failed()),
		zap.Int("scratch_removed", n))
	return ds
}

func (P *Pool) merge(ctx context.Context, ds *Dataset, res *Result, log *zap.Logger) {
	row := Row{Molecule: res.Name, Status: res.Status, Conformers: len(res.Records), Rejected: res.Dropped, Diagnostic: res.Diagnostic}
	if err := ds.Add(row); err != nil {
		log.Error("result not added to the dataset", zap.Error(err))
		return
	}
	P.Metrics.observe(res)
	if P.Sink != nil {
		//rows finished after a cancellation are still stored.
		if err := P.Sink.Put(context.WithoutCancel(ctx), P.RunID, row); err != nil {
			log.Warn("row not stored", zap.String("molecule", row.Molecule), zap.Error(err))
		}
	}
}

// safeRun runs the job, turning any panic into a failed result.
func safeRun(ctx context.Context, j *Job) (res *Result) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("Pool/Run: %s: %v: %w", j.Name, r, ErrWorkerCrash)
			res = &Result{Name: j.Name, Status: StatusFailed, States: []State{Failed}, Err: err, Diagnostic: diagnostic(err)}
		}
	}()
	return j.Run(ctx)
}

// CleanScratch removes the scratch files left by xtb and crest in each
// of the directories, and returns the number of files removed.
func CleanScratch(dirs ...string) int {
	n := 0
	for _, d := range dirs {
		for _, f := range qm.ScratchFiles {
			if os.Remove(filepath.Join(d, f)) == nil {
				n++
			}
		}
	}
	return n
}
