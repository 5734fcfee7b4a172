/*
 * constraint.go, part of gocrest.
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

// Package constraint holds the geometric constraints (fixed atoms, distances,
// angles and dihedrals) applied to constrained optimizations and conformer
// searches. All atom indexes in this package are 1-based, as in the xcontrol
// files of xtb and crest.
package constraint

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMalformed is returned (wrapped) when a constraint can't be understood.
var ErrMalformed = errors.New("malformed constraint")

// Kind is the class of an internal-coordinate constraint.
type Kind byte

const (
	Distance Kind = 'B'
	Angle    Kind = 'A'
	Dihedral Kind = 'D'
)

// Size returns the number of atoms that define a constraint of kind K.
func (K Kind) Size() int {
	switch K {
	case Distance:
		return 2
	case Angle:
		return 3
	case Dihedral:
		return 4
	}
	return 0
}

func (K Kind) String() string {
	switch K {
	case Distance:
		return "distance"
	case Angle:
		return "angle"
	case Dihedral:
		return "dihedral"
	}
	return "unknown"
}

// Internal is a constraint on a distance, angle or dihedral. Val is the target
// value, in the units the external program expects (A and degrees).
type Internal struct {
	Kind  Kind
	Atoms []int
	Val   float64
}

// Set is a normalized group of constraints. The zero value is an empty,
// usable Set.
type Set struct {
	fixed     []int
	distances []*Internal
	angles    []*Internal
	dihedrals []*Internal
	touched   []int //derived, see retouch
}

// AddFixed adds atoms to the list of fixed atoms, skipping those already present.
func (S *Set) AddFixed(atoms ...int) error {
	for _, a := range atoms {
		if a < 1 {
			return fmt.Errorf("constraint/AddFixed: atom index %d: %w", a, ErrMalformed)
		}
		if !isInInt(S.fixed, a) {
			S.fixed = append(S.fixed, a)
		}
	}
	S.retouch()
	return nil
}

// Add adds internal constraints to the set. Duplicates are kept.
func (S *Set) Add(cons ...*Internal) error {
	for _, c := range cons {
		if c.Kind.Size() == 0 || len(c.Atoms) != c.Kind.Size() {
			return fmt.Errorf("constraint/Add: %s constraint with %d atoms: %w", c.Kind, len(c.Atoms), ErrMalformed)
		}
		for _, a := range c.Atoms {
			if a < 1 {
				return fmt.Errorf("constraint/Add: atom index %d: %w", a, ErrMalformed)
			}
		}
		cp := &Internal{Kind: c.Kind, Atoms: append([]int(nil), c.Atoms...), Val: c.Val}
		switch c.Kind {
		case Distance:
			S.distances = append(S.distances, cp)
		case Angle:
			S.angles = append(S.angles, cp)
		case Dihedral:
			S.dihedrals = append(S.dihedrals, cp)
		}
	}
	S.retouch()
	return nil
}

//retouch recomputes the set of atoms involved in any constraint.
func (S *Set) retouch() {
	t := make([]int, 0, len(S.fixed)+2*len(S.distances))
	seen := make(map[int]bool)
	add := func(a int) {
		if !seen[a] {
			seen[a] = true
			t = append(t, a)
		}
	}
	for _, a := range S.fixed {
		add(a)
	}
	for _, l := range [][]*Internal{S.distances, S.angles, S.dihedrals} {
		for _, c := range l {
			for _, a := range c.Atoms {
				add(a)
			}
		}
	}
	sort.Ints(t)
	S.touched = t
}

// Fixed returns the fixed atoms in the order they were added.
func (S *Set) Fixed() []int { return append([]int(nil), S.fixed...) }

// Distances returns the distance constraints.
func (S *Set) Distances() []*Internal { return S.distances }

// Angles returns the angle constraints.
func (S *Set) Angles() []*Internal { return S.angles }

// Dihedrals returns the dihedral constraints.
func (S *Set) Dihedrals() []*Internal { return S.dihedrals }

// Touched returns, sorted, every atom that appears in any constraint of the set.
func (S *Set) Touched() []int { return append([]int(nil), S.touched...) }

// IsTouched returns true if atom appears in any constraint of the set.
func (S *Set) IsTouched(atom int) bool {
	i := sort.SearchInts(S.touched, atom)
	return i < len(S.touched) && S.touched[i] == atom
}

// Empty returns true if the set contains no constraint of any kind.
func (S *Set) Empty() bool {
	return S == nil || len(S.fixed)+len(S.distances)+len(S.angles)+len(S.dihedrals) == 0
}

// Validate checks that no constraint refers to an atom beyond natoms.
func (S *Set) Validate(natoms int) error {
	if len(S.touched) > 0 && S.touched[len(S.touched)-1] > natoms {
		return fmt.Errorf("constraint/Validate: atom %d referenced, but the geometry has %d atoms: %w", S.touched[len(S.touched)-1], natoms, ErrMalformed)
	}
	return nil
}

// Clone returns a deep copy of the set.
func (S *Set) Clone() *Set {
	n := new(Set)
	n.AddFixed(S.fixed...)
	for _, l := range [][]*Internal{S.distances, S.angles, S.dihedrals} {
		n.Add(l...)
	}
	return n
}

// Frozen returns a copy of the set where every one of the free bonds is also
// constrained to its current length. The list of free bonds is added twice.
func (S *Set) Frozen(free []FreeBond) *Set {
	n := S.Clone()
	for i := 0; i < 2; i++ {
		for _, f := range free {
			n.Add(&Internal{Kind: Distance, Atoms: []int{f.A, f.B}, Val: f.Length})
		}
	}
	return n
}

func isInInt(container []int, test int) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}
