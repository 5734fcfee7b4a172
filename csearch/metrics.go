/*
 * metrics.go, part of gocrest.
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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rmera/gocrest/qm"
)

// Metrics collects counters for a run of conformer searches.
type Metrics struct {
	// Jobs counts finished jobs by status
	Jobs *prometheus.CounterVec
	// StageSeconds tracks the running time of the external programs, by stage
	StageSeconds *prometheus.HistogramVec
	// Conformers counts the conformers kept, for all jobs
	Conformers prometheus.Counter
}

// NewMetrics creates the metrics and registers them in reg, which can be
// nil to leave them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gocrest_jobs_total",
				Help: "Total number of conformer-search jobs finished",
			},
			[]string{"status"},
		),
		StageSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gocrest_stage_duration_seconds",
				Help:    "Running time of the external program stages",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"stage"},
		),
		Conformers: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gocrest_conformers_total",
				Help: "Total number of conformers collected",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Jobs, m.StageSeconds, m.Conformers)
	}
	return m
}

// Runner returns a runner that runs stages with inner and records
// their duration.
func (M *Metrics) Runner(inner qm.Runner) qm.Runner {
	return timedRunner{inner: inner, m: M}
}

type timedRunner struct {
	inner qm.Runner
	m     *Metrics
}

func (T timedRunner) Run(ctx context.Context, s qm.Stage) (int, error) {
	start := time.Now()
	code, err := T.inner.Run(ctx, s)
	T.m.StageSeconds.WithLabelValues(s.Name).Observe(time.Since(start).Seconds())
	return code, err
}

func (M *Metrics) observe(r *Result) {
	if M == nil {
		return
	}
	M.Jobs.WithLabelValues(string(r.Status)).Inc()
	M.Conformers.Add(float64(len(r.Records)))
}
