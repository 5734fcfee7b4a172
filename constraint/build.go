/*
 * build.go, part of gocrest.
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
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

// Build normalizes raw constraint input into a Set. Each argument can be nil,
// a text such as "[1,2,3]", "[[1,2,1.5],[3,4,2.0]]" or "1,2,1.5;3,4,2.0",
// a flat slice (one group) or a slice of slices, as decoded from YAML or JSON.
// Fixed atoms from all the groups in rawAtoms are merged, keeping the first
// occurrence of each. Every distance, angle and dihedral group must contain
// its atom indexes followed by the target value.
func Build(rawAtoms, rawDistances, rawAngles, rawDihedrals any) (*Set, error) {
	errid := "constraint/Build"
	set := new(Set)
	ag, err := groups(rawAtoms)
	if err != nil {
		return nil, fmt.Errorf("%s: fixed atoms: %w", errid, err)
	}
	for _, g := range ag {
		for _, v := range g {
			a, err := index(v)
			if err != nil {
				return nil, fmt.Errorf("%s: fixed atoms: %w", errid, err)
			}
			set.AddFixed(a)
		}
	}
	raws := []any{rawDistances, rawAngles, rawDihedrals}
	for i, k := range []Kind{Distance, Angle, Dihedral} {
		gs, err := groups(raws[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %s constraints: %w", errid, k, err)
		}
		for _, g := range gs {
			c, err := internal(k, g)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", errid, err)
			}
			if err = set.Add(c); err != nil {
				return nil, fmt.Errorf("%s: %w", errid, err)
			}
		}
	}
	return set, nil
}

func internal(k Kind, g []float64) (*Internal, error) {
	if len(g) != k.Size()+1 {
		return nil, fmt.Errorf("%s constraint %v needs %d atoms and a value: %w", k, g, k.Size(), ErrMalformed)
	}
	c := &Internal{Kind: k, Atoms: make([]int, k.Size()), Val: g[k.Size()]}
	for i := range c.Atoms {
		a, err := index(g[i])
		if err != nil {
			return nil, fmt.Errorf("%s constraint %v: %w", k, g, err)
		}
		c.Atoms[i] = a
	}
	return c, nil
}

func index(v float64) (int, error) {
	if v != math.Trunc(v) || v < 1 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%v is not a valid atom index: %w", v, ErrMalformed)
	}
	return int(v), nil
}

// groups turns raw input into a list of numeric groups.
func groups(raw any) ([][]float64, error) {
	if raw == nil {
		return nil, nil
	}
	if s, ok := raw.(string); ok {
		return textGroups(s)
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		f, err := number(raw)
		if err != nil {
			return nil, err
		}
		return [][]float64{{f}}, nil
	}
	var flat []float64
	var ret [][]float64
	for i := 0; i < rv.Len(); i++ {
		e := rv.Index(i).Interface()
		if isGroup(e) {
			g, err := groups(e)
			if err != nil {
				return nil, err
			}
			ret = append(ret, g...)
			continue
		}
		f, err := number(e)
		if err != nil {
			return nil, err
		}
		flat = append(flat, f)
	}
	if len(flat) > 0 && len(ret) > 0 {
		return nil, fmt.Errorf("mixed numbers and groups in %v: %w", raw, ErrMalformed)
	}
	if len(flat) > 0 {
		ret = append(ret, flat)
	}
	return ret, nil
}

func isGroup(e any) bool {
	if s, ok := e.(string); ok {
		return strings.ContainsAny(s, ",;[(")
	}
	if e == nil {
		return false
	}
	k := reflect.TypeOf(e).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func number(e any) (float64, error) {
	if _, ok := e.(bool); ok {
		return 0, fmt.Errorf("boolean %v in constraint: %w", e, ErrMalformed)
	}
	if s, ok := e.(string); ok {
		e = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(e)
	if err != nil || e == nil {
		return 0, fmt.Errorf("can't read %v as a number: %w", e, ErrMalformed)
	}
	return f, nil
}

// textGroups parses constraint text. Brackets and parentheses are
// interchangeable, groups are separated by "],[" or by ";".
func textGroups(s string) ([][]float64, error) {
	s = strings.NewReplacer(" ", "", "\t", "", "\n", "", "(", "[", ")", "]").Replace(s)
	if s == "" || s == "[]" || s == "[[]]" {
		return nil, nil
	}
	var parts []string
	switch {
	case strings.Contains(s, ";"):
		parts = strings.Split(s, ";")
	case strings.HasPrefix(s, "[["):
		if !strings.HasSuffix(s, "]]") {
			return nil, fmt.Errorf("unbalanced brackets in %q: %w", s, ErrMalformed)
		}
		parts = strings.Split(s[1:len(s)-1], "],[")
	default:
		parts = []string{s}
	}
	ret := make([][]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "[]")
		if p == "" {
			continue
		}
		fields := strings.Split(p, ",")
		g := make([]float64, 0, len(fields))
		for _, f := range fields {
			v, err := number(f)
			if err != nil {
				return nil, err
			}
			g = append(g, v)
		}
		ret = append(ret, g)
	}
	return ret, nil
}
