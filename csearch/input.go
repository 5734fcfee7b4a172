/*
 * input.go, part of gocrest.
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
	"io"
	"os"
	"path/filepath"
	"strings"

	chem "github.com/rmera/gocrest"
	"github.com/rmera/gocrest/constraint"
	"github.com/rmera/gocrest/qm"
	"gopkg.in/yaml.v3"
)

// Input describes one molecule to search. The constraints can be given
// in any of the forms constraint.Build accepts.
type Input struct {
	Name      string      `yaml:"name"`     //defaults to the base name of the geometry file
	Geometry  string      `yaml:"geometry"` //xyz file
	OutputDir string      `yaml:"output_dir"`
	Charge    int         `yaml:"charge"`
	Mult      int         `yaml:"mult"`
	Complex   ComplexMode `yaml:"complex"`
	Atoms     any         `yaml:"atoms"`
	Distances any         `yaml:"distances"`
	Angles    any         `yaml:"angles"`
	Dihedrals any         `yaml:"dihedrals"`
}

// Manifest is a list of molecules to search.
type Manifest struct {
	Molecules []*Input `yaml:"molecules"`
}

// ReadManifest reads a YAML manifest from the file name. Relative geometry
// paths are taken from the directory of the manifest.
func ReadManifest(name string) (*Manifest, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("ReadManifest: %w", err)
	}
	defer f.Close()
	m, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("ReadManifest: %s: %w", name, err)
	}
	base := filepath.Dir(name)
	for _, in := range m.Molecules {
		if in.Geometry != "" && !filepath.IsAbs(in.Geometry) {
			in.Geometry = filepath.Join(base, in.Geometry)
		}
	}
	return m, nil
}

// DecodeManifest decodes a YAML manifest.
func DecodeManifest(r io.Reader) (*Manifest, error) {
	m := new(Manifest)
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil && err != io.EOF {
		return nil, fmt.Errorf("DecodeManifest: %w", err)
	}
	for i, in := range m.Molecules {
		if in == nil || in.Geometry == "" {
			return nil, fmt.Errorf("DecodeManifest: molecule %d has no geometry", i+1)
		}
		if in.Name == "" {
			in.Name = strings.TrimSuffix(filepath.Base(in.Geometry), filepath.Ext(in.Geometry))
		}
		if err := ValidName(in.Name); err != nil {
			return nil, fmt.Errorf("DecodeManifest: molecule %d: %w", i+1, err)
		}
	}
	return m, nil
}

// ValidName returns an error if name can't be used as the name of a job.
// The name becomes a directory and a file name, so it can't be empty,
// "." or "..", and can't contain path separators.
func ValidName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%q is not a valid molecule name", name)
	}
	return nil
}

// Job builds the job for the input, with the given options. The per-molecule
// output directory and complex mode, if given, override those in opts.
// Errors reading the geometry or the constraints don't stop the job from
// being created: the job will fail when run.
func (I *Input) Job(opts Options, xtb *qm.XTBHandle, crest *qm.CrestHandle) *Job {
	if I.OutputDir != "" {
		opts.OutputDir = I.OutputDir
	}
	if I.Complex != "" {
		opts.Complex = I.Complex
	}
	j := &Job{Name: I.Name, Opts: opts, Xtb: xtb, Crest: crest}
	mol, err := chem.XYZFileRead(I.Geometry)
	if err != nil {
		j.setupErr = fmt.Errorf("Input/Job: %s: %w", I.Name, err)
		return j
	}
	mol.SetCharge(I.Charge)
	if I.Mult > 0 {
		mol.SetMulti(I.Mult)
	}
	j.Mol = mol
	j.Constraints, err = constraint.Build(I.Atoms, I.Distances, I.Angles, I.Dihedrals)
	if err != nil {
		j.setupErr = fmt.Errorf("Input/Job: %s: %w", I.Name, err)
	}
	return j
}

// Jobs builds one job per molecule in the manifest.
func (M *Manifest) Jobs(opts Options, xtb *qm.XTBHandle, crest *qm.CrestHandle) []*Job {
	ret := make([]*Job, 0, len(M.Molecules))
	for _, in := range M.Molecules {
		ret = append(ret, in.Job(opts, xtb, crest))
	}
	return ret
}

// Find returns the input with the given name, or nil.
func (M *Manifest) Find(name string) *Input {
	for _, in := range M.Molecules {
		if in.Name == name {
			return in
		}
	}
	return nil
}
