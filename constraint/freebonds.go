/*
 * freebonds.go, part of gocrest.
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

package constraint

import (
	"math"

	chem "github.com/rmera/gocrest"
)

// FreeBond is a bonded pair of atoms (1-based) not covered by any explicit
// constraint, with its current length in A.
type FreeBond struct {
	A, B   int
	Length float64
}

// FreeBonds returns every bond in mol (which must have its bonds assigned)
// whose atoms are not constrained by a distance in set, in either order,
// and are not both fixed. Lengths are measured in the frame given (0 by default)
// and rounded to 3 decimals.
func FreeBonds(mol *chem.Molecule, set *Set, frame ...int) []FreeBond {
	f := 0
	if len(frame) > 0 {
		f = frame[0]
	}
	coords := mol.Coords[f]
	var fixed []int
	var dists []*Internal
	if set != nil {
		fixed = set.fixed
		dists = set.distances
	}
	ret := make([]FreeBond, 0, mol.Len())
	for _, b := range mol.Bonds() {
		a1, a2 := b.At1.Index+1, b.At2.Index+1
		if isInInt(fixed, a1) && isInInt(fixed, a2) {
			continue
		}
		if distanceConstrained(dists, a1, a2) {
			continue
		}
		d := chem.Distance(coords.VecView(b.At1.Index), coords.VecView(b.At2.Index))
		ret = append(ret, FreeBond{A: a1, B: a2, Length: math.Round(d*1000) / 1000})
	}
	return ret
}

func distanceConstrained(dists []*Internal, a1, a2 int) bool {
	for _, c := range dists {
		if (c.Atoms[0] == a1 && c.Atoms[1] == a2) || (c.Atoms[0] == a2 && c.Atoms[1] == a1) {
			return true
		}
	}
	return false
}
