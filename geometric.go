/*
 * geometric.go, part of gocrest.
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
	"math"

	v3 "github.com/rmera/gocrest/v3"
)

const appzero float64 = 0.0000001 //Everything equal or less than this is considered zero.

// Deg2Rad converts degrees to radians
func Deg2Rad(f float64) float64 {
	return f * math.Pi / 180
}

// Rad2Deg converts radians to degrees
func Rad2Deg(f float64) float64 {
	return f * 180 / math.Pi
}

// Distance returns the distance between the points a and b (the first vector of each).
func Distance(a, b *v3.Matrix) float64 {
	d := v3.Zeros(1)
	d.Sub(b.VecView(0), a.VecView(0))
	return d.Norm2()
}

// Angle takes 2 vectors and calculate the angle in radians between them
// It does not check for correctness or return errors!
func Angle(v1, v2 *v3.Matrix) float64 {
	normproduct := v1.Norm2() * v2.Norm2()
	if normproduct <= appzero {
		return 0
	}
	argument := v1.Dot(v2) / normproduct
	//Take care of floating point math errors
	if argument > 1 {
		argument = 1
	} else if argument < -1 {
		argument = -1
	}
	angle := math.Acos(argument)
	if math.Abs(angle) <= appzero {
		return 0.00
	}
	return angle
}

// BondAngle returns the angle, in radians, formed by the points a, b and c,
// with b at the vertex.
func BondAngle(a, b, c *v3.Matrix) float64 {
	ba := v3.Zeros(1)
	bc := v3.Zeros(1)
	ba.Sub(a.VecView(0), b.VecView(0))
	bc.Sub(c.VecView(0), b.VecView(0))
	return Angle(ba, bc)
}

// Dihedral calculate the dihedral, in radians, between the points a, b, c, d,
// where the first plane is defined by abc and the second by bcd.
func Dihedral(a, b, c, d *v3.Matrix) float64 {
	//bma=b minus a
	bma := v3.Zeros(1)
	cmb := v3.Zeros(1)
	dmc := v3.Zeros(1)
	bmascaled := v3.Zeros(1)
	bma.Sub(b.VecView(0), a.VecView(0))
	cmb.Sub(c.VecView(0), b.VecView(0))
	dmc.Sub(d.VecView(0), c.VecView(0))
	bmascaled.Scale(cmb.Norm2(), bma)
	c1 := v3.Zeros(1)
	c1.Cross(cmb, dmc)
	first := bmascaled.Dot(c1)
	v1 := v3.Zeros(1)
	v2 := v3.Zeros(1)
	v1.Cross(bma, cmb)
	v2.Cross(cmb, dmc)
	second := v1.Dot(v2)
	return math.Atan2(first, second)
}
