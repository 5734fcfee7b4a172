/*
 * v3_test.go, part of gocrest.
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

package v3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatrix(Te *testing.T) {
	_, err := NewMatrix([]float64{1, 2})
	assert.Error(Te, err)
	_, err = NewMatrix(nil)
	assert.Error(Te, err)

	m, err := NewMatrix([]float64{0, 0, 0, 1, 2, 3})
	require.NoError(Te, err)
	assert.Equal(Te, 2, m.NVecs())
	assert.Equal(Te, 2.0, m.VecView(1).At(0, 1))
}

func TestVecViewShares(Te *testing.T) {
	m := Zeros(3)
	v := m.VecView(2)
	v.Set(0, 2, 7)
	assert.Equal(Te, 7.0, m.At(2, 2))
	c := m.Copy()
	c.Set(2, 2, 1)
	assert.Equal(Te, 7.0, m.At(2, 2))
}

func TestCrossDotNorm(Te *testing.T) {
	x, _ := NewMatrix([]float64{1, 0, 0})
	y, _ := NewMatrix([]float64{0, 1, 0})
	z := Zeros(1)
	z.Cross(x, y)
	assert.InDelta(Te, 1.0, z.At(0, 2), 1e-12)
	assert.InDelta(Te, 0.0, x.Dot(y), 1e-12)
	w, _ := NewMatrix([]float64{3, 4, 0})
	assert.InDelta(Te, 5.0, w.Norm2(), 1e-12)
}
