/*
 * chem.go, part of gocrest.
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

package chem

import (
	"fmt"

	v3 "github.com/rmera/gocrest/v3"
)

// Atom contains the atom information except for the coordinates, which are kept
// in a v3.Matrix, one row per atom.
type Atom struct {
	Symbol string
	Name   string
	Index  int //0-based position of the atom in its molecule
	Mass   float64
	Bonds  []*Bond
}

// Copy returns a copy of the Atom object. Bonds are not copied.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	return &Atom{Symbol: A.Symbol, Name: A.Name, Index: A.Index, Mass: A.Mass}
}

// Molecule contains the atoms of a system and one or more sets of coordinates
// (frames) for them. Each frame can carry the comment line that came with it
// in the file it was read from.
type Molecule struct {
	Atoms    []*Atom
	Coords   []*v3.Matrix
	Comments []string
	charge   int
	multi    int
}

// NewMolecule returns a molecule with the given atoms, frames and comments. It
// returns an error if any frame does not have one vector per atom. comments can
// be nil.
func NewMolecule(ats []*Atom, coords []*v3.Matrix, comments []string) (*Molecule, error) {
	if len(ats) == 0 {
		return nil, fmt.Errorf("NewMolecule: no atoms given")
	}
	for i, c := range coords {
		if c == nil || c.NVecs() != len(ats) {
			return nil, fmt.Errorf("NewMolecule: frame %d doesn't have %d coordinates", i, len(ats))
		}
	}
	if comments == nil {
		comments = make([]string, len(coords))
	}
	if len(comments) != len(coords) {
		return nil, fmt.Errorf("NewMolecule: %d comments for %d frames", len(comments), len(coords))
	}
	for i, a := range ats {
		a.Index = i
	}
	return &Molecule{Atoms: ats, Coords: coords, Comments: comments, multi: 1}, nil
}

// Len returns the number of atoms in the molecule.
func (M *Molecule) Len() int {
	return len(M.Atoms)
}

// Atom returns the ith atom. Panics if out of range.
func (M *Molecule) Atom(i int) *Atom {
	return M.Atoms[i]
}

// Charge gets the total charge of the molecule
func (M *Molecule) Charge() int {
	return M.charge
}

// Multi returns the multiplicity of the molecule
func (M *Molecule) Multi() int {
	return M.multi
}

// SetCharge sets the total charge of the molecule to i
func (M *Molecule) SetCharge(i int) {
	M.charge = i
}

// SetMulti sets the multiplicity of the molecule to i
func (M *Molecule) SetMulti(i int) {
	M.multi = i
}

// Frames returns the number of coordinate sets in the molecule.
func (M *Molecule) Frames() int {
	return len(M.Coords)
}

// Bonds returns every bond in the molecule once, ordered by the index of
// the first atom and then by the index of the second one.
func (M *Molecule) Bonds() []*Bond {
	ret := make([]*Bond, 0, M.Len())
	for _, at := range M.Atoms {
		for _, b := range at.Bonds {
			//each bond is stored in both atoms, we only take it from the one
			//with the lower index.
			if b.Cross(at).Index > at.Index {
				ret = append(ret, b)
			}
		}
	}
	sortBonds(ret)
	return ret
}
