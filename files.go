/*
 * files.go, part of gocrest.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/gocrest/v3"
)

// XYZFileRead reads a (possibly multi-structure) xyz file. See XYZRead.
func XYZFileRead(xyzname string) (*Molecule, error) {
	xyzfile, err := os.Open(xyzname)
	if err != nil {
		return nil, fmt.Errorf("XYZFileRead: %w", err)
	}
	defer xyzfile.Close()
	mol, err := XYZRead(xyzfile)
	if err != nil {
		return nil, fmt.Errorf("XYZFileRead: %s: %w", xyzname, err)
	}
	return mol, nil
}

// XYZRead reads every structure in an xyz stream. The atoms are taken from
// the first structure, and all the others must have the same number of atoms.
// The comment line of each structure is kept verbatim, except for the line ending.
func XYZRead(xyzp io.Reader) (*Molecule, error) {
	xyz := bufio.NewReader(xyzp)
	var atoms []*Atom
	coords := make([]*v3.Matrix, 0, 1)
	comments := make([]string, 0, 1)
	for frame := 0; ; frame++ {
		line, err := xyz.ReadString('\n')
		if err != nil && strings.TrimSpace(line) == "" {
			if err == io.EOF && frame > 0 {
				break
			}
			return nil, fmt.Errorf("XYZRead: ill formatted or empty XYZ data in structure %d: %w", frame, io.ErrUnexpectedEOF)
		}
		if strings.TrimSpace(line) == "" {
			//blank lines between or after structures are tolerated.
			frame--
			continue
		}
		natoms, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || natoms < 1 {
			return nil, fmt.Errorf("XYZRead: bad atom count %q in structure %d", strings.TrimSpace(line), frame)
		}
		if atoms != nil && natoms != len(atoms) {
			return nil, fmt.Errorf("XYZRead: structure %d has %d atoms, %d expected", frame, natoms, len(atoms))
		}
		comment, err := xyz.ReadString('\n')
		if err != nil && comment == "" {
			return nil, fmt.Errorf("XYZRead: missing comment line in structure %d", frame)
		}
		comments = append(comments, strings.TrimRight(comment, "\r\n"))
		ats, c, err := xyzReadFrame(xyz, natoms, frame, atoms == nil)
		if err != nil {
			return nil, err
		}
		if atoms == nil {
			atoms = ats
		}
		coords = append(coords, c)
	}
	return NewMolecule(atoms, coords, comments)
}

func xyzReadFrame(xyz *bufio.Reader, natoms, frame int, readatoms bool) ([]*Atom, *v3.Matrix, error) {
	var ats []*Atom
	if readatoms {
		ats = make([]*Atom, natoms)
	}
	data := make([]float64, natoms*3)
	for i := 0; i < natoms; i++ {
		line, err := xyz.ReadString('\n')
		if err != nil && line == "" {
			return nil, nil, fmt.Errorf("XYZRead: structure %d ends after %d of %d atoms", frame, i, natoms)
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, nil, fmt.Errorf("XYZRead: line for atom %d in structure %d ill formed", i, frame)
		}
		if readatoms {
			ats[i] = &Atom{Symbol: fields[0], Name: fields[0], Index: i, Mass: symbolMass[fields[0]]}
		}
		for k := 0; k < 3; k++ {
			data[i*3+k], err = strconv.ParseFloat(fields[k+1], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("XYZRead: bad coordinate for atom %d in structure %d: %w", i, frame, err)
			}
		}
	}
	c, err := v3.NewMatrix(data)
	return ats, c, err
}

// XYZFileWrite writes the coordinates coords for atoms in an XYZ file with name xyzname,
// which will be created for that. If the file exist it will be overwritten.
// The first element of comment, if given, is written as the comment line.
func XYZFileWrite(xyzname string, coords *v3.Matrix, atoms Atomer, comment ...string) error {
	out, err := os.Create(xyzname)
	if err != nil {
		return fmt.Errorf("XYZFileWrite: %w", err)
	}
	defer out.Close()
	if err := XYZWrite(out, coords, atoms, comment...); err != nil {
		return err
	}
	return out.Close()
}

// XYZWrite writes the coordinates coords for atoms in XYZ format to out.
func XYZWrite(out io.Writer, coords *v3.Matrix, atoms Atomer, comment ...string) error {
	if coords.NVecs() != atoms.Len() {
		return fmt.Errorf("XYZWrite: %d coordinates for %d atoms", coords.NVecs(), atoms.Len())
	}
	c := ""
	if len(comment) > 0 {
		c = strings.TrimRight(comment[0], "\r\n")
	}
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "%d\n%s\n", atoms.Len(), c)
	for i := 0; i < atoms.Len(); i++ {
		_, err := fmt.Fprintf(w, "%-2s  %12.6f %12.6f %12.6f\n", atoms.Atom(i).Symbol, coords.At(i, 0), coords.At(i, 1), coords.At(i, 2))
		if err != nil {
			return fmt.Errorf("XYZWrite: %w", err)
		}
	}
	return w.Flush()
}
