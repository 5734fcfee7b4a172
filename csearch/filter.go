/*
 * filter.go, part of gocrest.
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

	chem "github.com/rmera/gocrest"
	v3 "github.com/rmera/gocrest/v3"
)

// GeomRule accepts conformers where the distance (2 atoms, A), angle (3 atoms, degrees)
// or dihedral (4 atoms, degrees) defined by Atoms (1-based) is between Min and Max.
type GeomRule struct {
	Atoms []int   `mapstructure:"atoms" yaml:"atoms" validate:"min=2,max=4,dive,min=1"`
	Min   float64 `mapstructure:"min" yaml:"min"`
	Max   float64 `mapstructure:"max" yaml:"max" validate:"gtefield=Min"`
}

func (G GeomRule) String() string {
	return fmt.Sprintf("%v in [%g, %g]", G.Atoms, G.Min, G.Max)
}

// Measure returns the value the rule checks, for the given coordinates.
func (G GeomRule) Measure(coords *v3.Matrix) (float64, error) {
	if len(G.Atoms) < 2 || len(G.Atoms) > 4 {
		return 0, fmt.Errorf("GeomRule/Measure: %d atoms in rule %s", len(G.Atoms), G)
	}
	v := make([]*v3.Matrix, len(G.Atoms))
	for i, a := range G.Atoms {
		if a < 1 || a > coords.NVecs() {
			return 0, fmt.Errorf("GeomRule/Measure: atom %d out of range in rule %s", a, G)
		}
		v[i] = coords.VecView(a - 1)
	}
	switch len(v) {
	case 2:
		return chem.Distance(v[0], v[1]), nil
	case 3:
		return chem.Rad2Deg(chem.BondAngle(v[0], v[1], v[2])), nil
	}
	return chem.Rad2Deg(chem.Dihedral(v[0], v[1], v[2], v[3])), nil
}

// Filter returns the records that pass every rule, and the number of
// records dropped. Each record is checked on its own.
func Filter(records []*ConformerRecord, rules []GeomRule) ([]*ConformerRecord, int, error) {
	if len(rules) == 0 {
		return records, 0, nil
	}
	ret := make([]*ConformerRecord, 0, len(records))
	for _, r := range records {
		coords, err := v3.NewMatrix(append([]float64(nil), r.Coords...))
		if err != nil {
			return nil, 0, fmt.Errorf("Filter: %s %d: %w", r.Molecule, r.Index, err)
		}
		pass := true
		for _, g := range rules {
			m, err := g.Measure(coords)
			if err != nil {
				return nil, 0, fmt.Errorf("Filter: %s %d: %w", r.Molecule, r.Index, err)
			}
			if m < g.Min || m > g.Max {
				pass = false
				break
			}
		}
		if pass {
			ret = append(ret, r)
		}
	}
	return ret, len(records) - len(ret), nil
}
