/*
 * chem_test.go, part of gocrest.
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
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	v3 "github.com/rmera/gocrest/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waterDimer = `6
 -10.123456 water dimer
O     0.000000   0.000000   0.000000
H     0.957000   0.000000   0.000000
H    -0.240000   0.927000   0.000000
O     2.900000   0.000000   0.000000
H     3.857000   0.000000   0.000000
H     2.660000   0.927000   0.000000
`

const twoFrames = `3
 -5.07
O     0.000000   0.000000   0.000000
H     0.957000   0.000000   0.000000
H    -0.240000   0.927000   0.000000
3
 -5.01   !second
O     0.000000   0.000000   0.000000
H     0.960000   0.000000   0.000000
H    -0.250000   0.930000   0.000000
`

func TestXYZRead(Te *testing.T) {
	mol, err := XYZRead(strings.NewReader(twoFrames))
	require.NoError(Te, err)
	assert.Equal(Te, 3, mol.Len())
	assert.Equal(Te, 2, mol.Frames())
	assert.Equal(Te, " -5.07", mol.Comments[0])
	assert.Equal(Te, " -5.01   !second", mol.Comments[1])
	assert.Equal(Te, "H", mol.Atom(2).Symbol)
	assert.InDelta(Te, 0.96, mol.Coords[1].At(1, 0), 1e-9)
	assert.Equal(Te, 1, mol.Multi())
}

func TestXYZReadErrors(Te *testing.T) {
	_, err := XYZRead(strings.NewReader(""))
	assert.Error(Te, err)
	_, err = XYZRead(strings.NewReader("2\n\nO 0 0 0\n"))
	assert.Error(Te, err)
	_, err = XYZRead(strings.NewReader("x\n\nO 0 0 0\n"))
	assert.Error(Te, err)
	mismatch := twoFrames + "2\n\nO 0 0 0\nH 1 0 0\n"
	_, err = XYZRead(strings.NewReader(mismatch))
	assert.Error(Te, err)
}

func TestXYZWriteRead(Te *testing.T) {
	mol, err := XYZRead(strings.NewReader(twoFrames))
	require.NoError(Te, err)
	var b bytes.Buffer
	require.NoError(Te, XYZWrite(&b, mol.Coords[1], mol, mol.Comments[1]))
	name := filepath.Join(Te.TempDir(), "w.xyz")
	require.NoError(Te, XYZFileWrite(name, mol.Coords[1], mol, mol.Comments[1]))
	mol2, err := XYZFileRead(name)
	require.NoError(Te, err)
	assert.Equal(Te, mol.Comments[1], mol2.Comments[0])
	assert.InDelta(Te, -0.25, mol2.Coords[0].At(2, 0), 1e-6)
	assert.True(Te, strings.HasPrefix(b.String(), "3\n"))
}

func TestAssignBondsWaterDimer(Te *testing.T) {
	mol, err := XYZRead(strings.NewReader(waterDimer))
	require.NoError(Te, err)
	require.NoError(Te, AssignBonds(mol.Coords[0], mol))
	bonds := mol.Bonds()
	require.Len(Te, bonds, 4)
	assert.True(Te, bonds[0].Contains(0, 1))
	assert.True(Te, bonds[1].Contains(2, 0))
	assert.True(Te, bonds[2].Contains(3, 4))
	assert.Equal(Te, 2, Fragments(mol))
	assert.Len(Te, mol.Atom(0).Bonds, 2)
	assert.Len(Te, mol.Atom(4).Bonds, 1)
}

func TestAssignBondsUnknownElement(Te *testing.T) {
	mol, err := XYZRead(strings.NewReader("2\n\nXx 0 0 0\nH 1 0 0\n"))
	require.NoError(Te, err)
	assert.Error(Te, AssignBonds(mol.Coords[0], mol))
}

func TestGeometry(Te *testing.T) {
	p := func(x, y, z float64) *v3.Matrix {
		m, _ := v3.NewMatrix([]float64{x, y, z})
		return m
	}
	a, b, c, d := p(1, 0, 0), p(0, 0, 0), p(0, 1, 0), p(0, 1, 1)
	assert.InDelta(Te, 1.0, Distance(a, b), 1e-9)
	assert.InDelta(Te, 90.0, Rad2Deg(BondAngle(a, b, c)), 1e-9)
	assert.InDelta(Te, 90.0, math.Abs(Rad2Deg(Dihedral(a, b, c, d))), 1e-9)
	assert.InDelta(Te, math.Pi, Deg2Rad(180), 1e-12)
}
