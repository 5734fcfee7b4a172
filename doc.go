/*
 * doc.go, part of gocrest.
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

/*
Package chem is the base package of gocrest. It provides the atom and molecule
structures used to hold reference geometries and conformers, reads and writes
(multi-structure) XYZ files, assigns bonds from covalent radii and measures
distances, angles and dihedrals.

The rest of gocrest builds on it:

	constraint  normalizes user constraints and derives the bonds to freeze.
	qm          writes xcontrol files and runs the xtb and crest programs.
	csearch     runs one constrained conformer search per molecule on a pool
	            of workers and collects the conformers.
	store       keeps the summary of each run in a SQLite database.

The xtb and crest programs must be obtained from Prof. Stefan Grimme's group.
Please cite the xtb and CREST references if you use them through gocrest.
*/
package chem
