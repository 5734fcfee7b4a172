/*
 * record.go, part of gocrest.
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
	"fmt"
	"path/filepath"
	"strconv"

	chem "github.com/rmera/gocrest"
	v3 "github.com/rmera/gocrest/v3"
)

// ConformerRecord is one conformer found by a search.
type ConformerRecord struct {
	Molecule string    `json:"molecule"`
	Index    int       `json:"index"`  //1-based
	Energy   string    `json:"energy"` //as reported by crest, not parsed.
	Charge   int       `json:"charge"`
	Multi    int       `json:"mult"`
	Symbols  []string  `json:"symbols"`
	Coords   []float64 `json:"coords"` //x, y and z for each atom.
}

// ToMolecule returns the conformer as a molecule, with its energy as comment.
func (C *ConformerRecord) ToMolecule() (*chem.Molecule, error) {
	coords, err := v3.NewMatrix(append([]float64(nil), C.Coords...))
	if err != nil {
		return nil, fmt.Errorf("ConformerRecord/ToMolecule: %s %d: %w", C.Molecule, C.Index, err)
	}
	ats := make([]*chem.Atom, len(C.Symbols))
	for i, s := range C.Symbols {
		ats[i] = &chem.Atom{Symbol: s, Name: s}
	}
	mol, err := chem.NewMolecule(ats, []*v3.Matrix{coords}, []string{C.Energy})
	if err != nil {
		return nil, fmt.Errorf("ConformerRecord/ToMolecule: %s %d: %w", C.Molecule, C.Index, err)
	}
	mol.SetCharge(C.Charge)
	mol.SetMulti(C.Multi)
	return mol, nil
}

// SplitXYZ writes each structure in the multi-structure xyz file multi
// to its own file, <name>_conf_<k>.xyz in dir, with k starting at 1.
// It returns the names of the files written, in order.
func SplitXYZ(multi, dir, name string) ([]string, error) {
	mol, err := chem.XYZFileRead(multi)
	if err != nil {
		return nil, fmt.Errorf("SplitXYZ: %w", err)
	}
	ret := make([]string, 0, mol.Frames())
	for i, c := range mol.Coords {
		p := filepath.Join(dir, name+"_conf_"+strconv.Itoa(i+1)+".xyz")
		if err := chem.XYZFileWrite(p, c, mol, mol.Comments[i]); err != nil {
			return nil, fmt.Errorf("SplitXYZ: %w", err)
		}
		ret = append(ret, p)
	}
	return ret, nil
}

// Collect reads each of the single-structure xyz files and returns a
// record for it. The energy is the comment line of the file, verbatim.
// Files written by SplitXYZ carry coordinates with 6 decimals, so the
// records can differ from crest's output beyond that precision.
func Collect(files []string, name string, charge, multi int) ([]*ConformerRecord, error) {
	ret := make([]*ConformerRecord, 0, len(files))
	for i, f := range files {
		mol, err := chem.XYZFileRead(f)
		if err != nil {
			return nil, fmt.Errorf("Collect: %s: %w", name, err)
		}
		r := &ConformerRecord{
			Molecule: name,
			Index:    i + 1,
			Energy:   mol.Comments[0],
			Charge:   charge,
			Multi:    multi,
			Symbols:  make([]string, mol.Len()),
			Coords:   make([]float64, 0, 3*mol.Len()),
		}
		c := mol.Coords[0]
		for j := 0; j < mol.Len(); j++ {
			r.Symbols[j] = mol.Atom(j).Symbol
			r.Coords = append(r.Coords, c.At(j, 0), c.At(j, 1), c.At(j, 2))
		}
		ret = append(ret, r)
	}
	return ret, nil
}
