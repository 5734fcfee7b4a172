/*
 * bonds.go, part of gocrest.
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
	"sort"

	v3 "github.com/rmera/gocrest/v3"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

//constants from DOI:10.1186/1758-2946-3-33
const (
	tooclose = 0.63
	bondtol  = 0.45
)

// Bond joins two atoms. Dist is the length measured when the bond was assigned.
type Bond struct {
	Index int
	At1   *Atom
	At2   *Atom
	Dist  float64
}

// Cross returns the atom at the other end of the bond from origin.
func (B *Bond) Cross(origin *Atom) *Atom {
	if origin.Index == B.At1.Index {
		return B.At2
	}
	if origin.Index == B.At2.Index {
		return B.At1
	}
	panic("Trying to cross a bond: The origin atom given is not present in the bond!") //programming error.
}

// Contains returns true if the bond joins the atoms with indexes i and j, in any order.
func (B *Bond) Contains(i, j int) bool {
	return (B.At1.Index == i && B.At2.Index == j) || (B.At1.Index == j && B.At2.Index == i)
}

func sortBonds(b []*Bond) {
	sort.Slice(b, func(i, j int) bool {
		a1, a2 := b[i].At1.Index, b[j].At1.Index
		if a1 != a2 {
			return a1 < a2
		}
		return b[i].At2.Index < b[j].At2.Index
	})
}

//returns a new *Bond slice without the bond with the given index.
func takefromslice(bonds []*Bond, id int) []*Bond {
	newb := make([]*Bond, 0, len(bonds))
	for _, v := range bonds {
		if v.Index != id {
			newb = append(newb, v)
		}
	}
	return newb
}

// RemoveBond removes the bond b from both of its atoms.
func RemoveBond(b *Bond) {
	b.At1.Bonds = takefromslice(b.At1.Bonds, b.Index)
	b.At2.Bonds = takefromslice(b.At2.Bonds, b.Index)
}

// AssignBonds assigns bonds to a molecule based on a simple distance
// criterium, similar to that described in DOI:10.1186/1758-2946-3-33
// Any previous bond in the atoms is discarded.
// It's really not thought for proteins or macromolecules.
func AssignBonds(coord *v3.Matrix, mol Atomer) error {
	tot := mol.Len()
	if coord.NVecs() != tot {
		return fmt.Errorf("AssignBonds: %d coordinates for %d atoms", coord.NVecs(), tot)
	}
	for i := 0; i < tot; i++ {
		mol.Atom(i).Index = i
		mol.Atom(i).Bonds = nil
	}
	var nextIndex int
	for i := 0; i < tot; i++ {
		at1 := mol.Atom(i)
		cov1 := symbolCovrad[at1.Symbol]
		if cov1 == 0 {
			return fmt.Errorf("AssignBonds: couldn't find the covalent radius for %s %d", at1.Symbol, i)
		}
		for j := i + 1; j < tot; j++ {
			at2 := mol.Atom(j)
			cov2 := symbolCovrad[at2.Symbol]
			if cov2 == 0 {
				return fmt.Errorf("AssignBonds: couldn't find the covalent radius for %s %d", at2.Symbol, j)
			}
			d := Distance(coord.VecView(i), coord.VecView(j))
			if d < cov1+cov2+bondtol && d > tooclose {
				b := &Bond{Index: nextIndex, Dist: d, At1: at1, At2: at2}
				at1.Bonds = append(at1.Bonds, b)
				at2.Bonds = append(at2.Bonds, b)
				nextIndex++
			}
		}
	}
	//Now we check that no atom has too many bonds.
	for i := 0; i < tot; i++ {
		at := mol.Atom(i)
		max := symbolMaxBonds[at.Symbol]
		if max == 0 {
			continue
		}
		sort.Slice(at.Bonds, func(i, j int) bool { return at.Bonds[i].Dist < at.Bonds[j].Dist })
		for len(at.Bonds) > max {
			RemoveBond(at.Bonds[len(at.Bonds)-1]) //we remove the longest bond
		}
	}
	return nil
}

// BondGraph returns the bond graph of mol. Node IDs are the 0-based atom indexes.
func BondGraph(mol Atomer) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for i := 0; i < mol.Len(); i++ {
		g.AddNode(simple.Node(i))
	}
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		for _, b := range at.Bonds {
			o := b.Cross(at)
			if o.Index > at.Index {
				g.SetEdge(simple.Edge{F: simple.Node(at.Index), T: simple.Node(o.Index)})
			}
		}
	}
	return g
}

// Fragments returns the number of covalently disconnected fragments in mol,
// according to its bonds.
func Fragments(mol Atomer) int {
	return len(topo.ConnectedComponents(BondGraph(mol)))
}
