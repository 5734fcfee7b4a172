/*
 * dataset.go, part of gocrest.
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
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"
)

// Row is the summary of one job. Conformers counts the conformers kept.
// Conformers+Rejected is the number of structures crest produced.
type Row struct {
	Molecule   string
	Status     Status
	Conformers int
	Rejected   int //dropped by the geometry rules.
	Diagnostic string
}

// Dataset holds one row per job, in the order the rows were added.
// Rows are never removed. It is safe for concurrent use.
type Dataset struct {
	mu    sync.RWMutex
	rows  []Row
	index map[string]int
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{index: make(map[string]int)}
}

// Add appends a row. It fails if there is already a row for the molecule.
func (D *Dataset) Add(r Row) error {
	D.mu.Lock()
	defer D.mu.Unlock()
	if _, ok := D.index[r.Molecule]; ok {
		return fmt.Errorf("Dataset/Add: %q: %w", r.Molecule, ErrDuplicateMolecule)
	}
	D.index[r.Molecule] = len(D.rows)
	D.rows = append(D.rows, r)
	return nil
}

// Len returns the number of rows.
func (D *Dataset) Len() int {
	D.mu.RLock()
	defer D.mu.RUnlock()
	return len(D.rows)
}

// Rows returns a copy of the rows.
func (D *Dataset) Rows() []Row {
	D.mu.RLock()
	defer D.mu.RUnlock()
	return append([]Row(nil), D.rows...)
}

// Row returns the row for molecule, and false if there is none.
func (D *Dataset) Row(molecule string) (Row, bool) {
	D.mu.RLock()
	defer D.mu.RUnlock()
	i, ok := D.index[molecule]
	if !ok {
		return Row{}, false
	}
	return D.rows[i], true
}

// Failed returns the number of rows for failed jobs.
func (D *Dataset) Failed() int {
	n := 0
	for _, r := range D.Rows() {
		if r.Status == StatusFailed {
			n++
		}
	}
	return n
}

// WriteCSV writes the dataset, with a header, as CSV.
func (D *Dataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"molecule", "status", "crest-conformers", "rejected", "diagnostic"})
	for _, r := range D.Rows() {
		cw.Write([]string{r.Molecule, string(r.Status), strconv.Itoa(r.Conformers), strconv.Itoa(r.Rejected), r.Diagnostic})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("Dataset/WriteCSV: %w", err)
	}
	return nil
}
