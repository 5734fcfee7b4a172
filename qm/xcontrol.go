/*
 * xcontrol.go, part of gocrest.
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

package qm

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	chem "github.com/rmera/gocrest"
	"github.com/rmera/gocrest/constraint"
)

// ControlBuilder writes the xcontrol files used by xtb and crest for
// constrained optimizations and searches.
type ControlBuilder struct {
	Crest *CrestHandle
}

// Render returns the text of an xcontrol file for set, with the given force
// constant, and true. If the set is empty, it returns an empty string and false,
// without calling any program. Otherwise, crest is run on refxyz
// (relative to dir, if not absolute) to produce the coord.ref file the
// xcontrol refers to. If metadyn is true, the atoms of refxyz not touched
// by any constraint are listed in a $metadyn block.
func (C *ControlBuilder) Render(ctx context.Context, dir string, set *constraint.Set, refxyz string, force float64, metadyn bool) (string, bool, error) {
	errid := "ControlBuilder/Render"
	if set.Empty() {
		return "", false, nil
	}
	if err := C.Crest.ConstraintReference(ctx, dir, refxyz); err != nil {
		return "", true, fmt.Errorf("%s: %w", errid, err)
	}
	natoms := 0
	if metadyn {
		p := refxyz
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		mol, err := chem.XYZFileRead(p)
		if err != nil {
			return "", true, fmt.Errorf("%s: %w", errid, err)
		}
		natoms = mol.Len()
	}
	return RenderControl(set, force, natoms), true, nil
}

// RenderControl returns the xcontrol text for set and the force constant force.
// If natoms > 0, a $metadyn block is added with the atoms in 1..natoms that
// are not part of any constraint, unless there are none.
func RenderControl(set *constraint.Set, force float64, natoms int) string {
	var b strings.Builder
	b.WriteString("$constrain\n")
	if f := set.Fixed(); len(f) > 0 {
		fmt.Fprintf(&b, "atoms: %s\n", joinInts(f))
	}
	for _, l := range [][]*constraint.Internal{set.Distances(), set.Angles(), set.Dihedrals()} {
		for _, c := range l {
			fmt.Fprintf(&b, "%s: %s,%s\n", c.Kind, joinInts(c.Atoms), formatFloat(c.Val))
		}
	}
	fmt.Fprintf(&b, "force constant=%s\n", formatFloat(force))
	fmt.Fprintf(&b, "reference=%s\n", CoordRef)
	free := make([]int, 0, natoms)
	for i := 1; i <= natoms; i++ {
		if !set.IsTouched(i) {
			free = append(free, i)
		}
	}
	if len(free) > 0 {
		fmt.Fprintf(&b, "$metadyn\natoms: %s\n", joinInts(free))
	}
	b.WriteString("$end\n")
	return b.String()
}

// WriteControl writes text to the file name in dir and returns its full path.
func WriteControl(dir, name, text string) (string, error) {
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("WriteControl: %w", err)
	}
	return p, nil
}

// Control is the content of an xcontrol file, as read by ParseControl.
type Control struct {
	Set           *constraint.Set
	ForceConstant float64
	Reference     string
	Metadyn       []int
}

// ParseControl reads the $constrain and $metadyn blocks of an xcontrol text.
// Other blocks are ignored.
func ParseControl(text string) (*Control, error) {
	errid := "ParseControl"
	ret := &Control{Set: new(constraint.Set)}
	block := ""
	sc := bufio.NewScanner(strings.NewReader(text))
	for ln := 1; sc.Scan(); ln++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "$") {
			block = line
			continue
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			key, val, ok = strings.Cut(line, "=")
		}
		if !ok {
			return nil, fmt.Errorf("%s: line %d: can't understand %q", errid, ln, line)
		}
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		var err error
		switch {
		case block == "$metadyn" && key == "atoms":
			var s *constraint.Set
			if s, err = constraint.Build(val, nil, nil, nil); err == nil {
				ret.Metadyn = append(ret.Metadyn, s.Fixed()...)
			}
		case block != "$constrain":
			continue
		case key == "atoms":
			var s *constraint.Set
			if s, err = constraint.Build(val, nil, nil, nil); err == nil {
				err = ret.Set.AddFixed(s.Fixed()...)
			}
		case key == "distance", key == "angle", key == "dihedral":
			raw := []any{nil, nil, nil}
			raw[map[string]int{"distance": 0, "angle": 1, "dihedral": 2}[key]] = val
			var s *constraint.Set
			if s, err = constraint.Build(nil, raw[0], raw[1], raw[2]); err == nil {
				err = ret.Set.Add(append(append(s.Distances(), s.Angles()...), s.Dihedrals()...)...)
			}
		case key == "force constant":
			ret.ForceConstant, err = strconv.ParseFloat(val, 64)
		case key == "reference":
			ret.Reference = val
		}
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", errid, ln, err)
		}
	}
	return ret, sc.Err()
}

func joinInts(l []int) string {
	s := make([]string, len(l))
	for i, v := range l {
		s[i] = strconv.Itoa(v)
	}
	return strings.Join(s, ",")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
