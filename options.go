/*
 * options.go, part of gogsd.
 *
 * Copyright 2026 The gogsd Authors
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
 */

package gsd

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/rmera/gogsd/internal/logging"
)

// Category is a set of groups of per-frame quantities.
type Category uint8

const (
	//AttributeCategory covers types, typeid, mass, charge, diameter, body and moment_inertia.
	AttributeCategory Category = 1 << iota
	//PropertyCategory covers position and orientation.
	PropertyCategory
	//MomentumCategory covers velocity, angmom and image.
	MomentumCategory
	//TopologyCategory covers bonds, angles, dihedrals, impropers and constraints.
	TopologyCategory
)

var categoryNames = []struct {
	c    Category
	name string
}{
	{AttributeCategory, "attribute"},
	{PropertyCategory, "property"},
	{MomentumCategory, "momentum"},
	{TopologyCategory, "topology"},
}

// Has returns true if every category in o is in c.
func (c Category) Has(o Category) bool { return c&o == o }

// Names returns the names of the categories in c.
func (c Category) Names() []string {
	var ret []string
	for _, v := range categoryNames {
		if c.Has(v.c) {
			ret = append(ret, v.name)
		}
	}
	return ret
}

func (c Category) String() string { return strings.Join(c.Names(), "|") }

// ParseCategories returns the set of categories named in names.
func ParseCategories(names []string) (Category, error) {
	var c Category
	for _, n := range names {
		found := false
		for _, v := range categoryNames {
			if strings.EqualFold(strings.TrimSpace(n), v.name) {
				c |= v.c
				found = true
			}
		}
		if !found {
			return c, newError("", "ParseCategories", "unknown category %q", n)
		}
	}
	return c, nil
}

// SchemaName is the schema of the files written, and accepted for appending, by this package.
const SchemaName = "hoomd"

// Version is the version of gogsd, recorded in the files it creates.
const Version = "0.3.0"

// Options controls how a Writer creates files and which quantities it writes.
type Options struct {
	//Overwrite replaces an existing file on the first write, instead of appending to it.
	Overwrite bool `yaml:"overwrite"`
	//Truncate removes all frames before writing each new one, so the file always
	//holds only the last frame.
	Truncate bool `yaml:"truncate"`
	//Dynamic are the categories written on every frame. On the first frame of a file
	//all categories are written.
	Dynamic Category `yaml:"-"`
	//Forced are the categories whose quantities are written even when
	//every value is the default.
	Forced Category `yaml:"-"`
	//Application is recorded in the header of created files.
	Application string `yaml:"application"`
	//Sync flushes the file to stable storage after every frame.
	Sync bool `yaml:"sync"`

	Logger  zerolog.Logger `yaml:"-"`
	Metrics *Metrics       `yaml:"-"`
}

// DefaultOptions returns the options used when none are given: append to an
// existing file, write properties on every frame and attributes, momenta and
// topology only on the first.
func DefaultOptions() *Options {
	return &Options{
		Dynamic:     PropertyCategory,
		Application: "gogsd " + Version,
		Logger:      *logging.L(),
	}
}

// the YAML form of Options
type optionsFile struct {
	Overwrite   *bool    `yaml:"overwrite"`
	Truncate    *bool    `yaml:"truncate"`
	Dynamic     []string `yaml:"dynamic"`
	Force       []string `yaml:"force"`
	Application string   `yaml:"application"`
	Sync        *bool    `yaml:"sync"`
}

// LoadOptions reads options from a YAML file. Settings absent from the file
// keep their default values. Categories are given by name, for instance:
//
//	overwrite: true
//	dynamic: [property, momentum]
//	force: [attribute]
func LoadOptions(filename string) (*Options, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, &GSDError{message: err.Error(), filename: filename, deco: []string{"LoadOptions"}, critical: true}
	}
	return ParseOptions(b, filename)
}

// ParseOptions is LoadOptions for YAML data already in memory. filename is
// only used in error messages.
func ParseOptions(data []byte, filename string) (*Options, error) {
	var f optionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &GSDError{message: err.Error(), filename: filename, deco: []string{"ParseOptions"}, critical: true}
	}
	o := DefaultOptions()
	if f.Overwrite != nil {
		o.Overwrite = *f.Overwrite
	}
	if f.Truncate != nil {
		o.Truncate = *f.Truncate
	}
	if f.Sync != nil {
		o.Sync = *f.Sync
	}
	if f.Application != "" {
		o.Application = f.Application
	}
	var err error
	if f.Dynamic != nil {
		if o.Dynamic, err = ParseCategories(f.Dynamic); err != nil {
			return nil, errDecorate(err, "ParseOptions")
		}
	}
	if o.Forced, err = ParseCategories(f.Force); err != nil {
		return nil, errDecorate(err, "ParseOptions")
	}
	return o, nil
}
