// Mgmt
// Copyright (C) 2013-2024+ James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package lib

import (
	"strconv"

	"github.com/purpleidea/tgp/catalog"
	"github.com/purpleidea/tgp/problems"
	"github.com/purpleidea/tgp/random"
	"github.com/purpleidea/tgp/util"
	"github.com/purpleidea/tgp/util/errwrap"

	"github.com/spf13/afero"
)

// ProblemCatalog returns the catalog of an initialized problem.
func ProblemCatalog(name string, options map[string]string, seed uint64) (*catalog.Catalog, error) {
	problem, err := problems.Lookup(name)
	if err != nil {
		return nil, err
	}
	init := &problems.Init{
		Src:     random.New(seed),
		Options: options,
		Logf:    func(format string, v ...interface{}) {},
	}
	if err := problem.Init(init); err != nil {
		return nil, errwrap.Wrapf(err, "could not init problem `%s`", name)
	}
	return problem.Catalog(), nil
}

// SpecCatalog builds a catalog from a yaml catalog file.
func SpecCatalog(fs afero.Fs, name string) (*catalog.Catalog, error) {
	data, err := util.ReadFile(fs, name)
	if err != nil {
		return nil, err
	}
	spec, err := catalog.ParseSpec(data)
	if err != nil {
		return nil, err
	}
	return spec.Build()
}

// Primitives returns one row per expression that can be drawn from the
// catalog, with its path, type and weight. Record fields are unrolled with
// the given seed.
func Primitives(cat *catalog.Catalog, seed uint64) ([][]string, error) {
	sc, err := cat.Scope()
	if err != nil {
		return nil, err
	}
	all := func(int) bool { return true }
	rows := [][]string{}
	for _, c := range sc.Primitives(random.New(seed), all, nil, nil) {
		rows = append(rows, []string{c.Path, c.Type.String(), strconv.FormatFloat(c.Weight, 'g', -1, 64)})
	}
	return rows, nil
}
