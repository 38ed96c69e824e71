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

// Package problems contains the fitness problems that can be evolved. Each
// problem registers itself by name, and brings the catalog and the root type
// of the expressions it evolves.
package problems

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/purpleidea/tgp/catalog"
	"github.com/purpleidea/tgp/random"
	"github.com/purpleidea/tgp/tree"
	"github.com/purpleidea/tgp/types"
	"github.com/purpleidea/tgp/util/errwrap"

	"github.com/iancoleman/strcase"
)

// ErrUnknownProblem is returned when no problem is registered with a name.
const ErrUnknownProblem = errwrap.Error("unknown problem")

// Init is the data passed to a problem before it is used.
type Init struct {
	// Src is used to build any random data set of the problem.
	Src *random.Source

	// Options are the problem specific settings. Unknown options are an
	// error.
	Options map[string]string

	Debug bool
	Logf  func(format string, v ...interface{})
}

// Problem is the interface every fitness problem implements. Evaluate may be
// called concurrently once Init has returned.
type Problem interface {
	// Init prepares the problem.
	Init(*Init) error

	// Catalog returns the primitives of the problem.
	Catalog() *catalog.Catalog

	// Type returns the type of the root of every expression.
	Type() *types.Type

	// Weights returns the weight of each objective. A negative weight is
	// minimized.
	Weights() []float64

	// Evaluate returns the objective values of an individual.
	Evaluate(ind *tree.Individual) ([]float64, error)
}

// registeredProblems is a global map of all possible problems. You should
// never touch this map directly. Use methods like Register instead.
var registeredProblems = make(map[string]func() Problem) // must initialize

// Register takes a problem and its name and makes it available for use. The
// name is normalized to snake case. It panics if the name is already taken.
func Register(name string, fn func() Problem) {
	name = strcase.ToSnake(name)
	if _, exists := registeredProblems[name]; exists {
		panic(fmt.Sprintf("a problem named %s is already registered", name))
	}
	registeredProblems[name] = fn
}

// Lookup returns a new, uninitialized instance of the named problem. Any
// case style of the name works.
func Lookup(name string) (Problem, error) {
	fn, exists := registeredProblems[strcase.ToSnake(name)]
	if !exists {
		return nil, errwrap.Wrapf(ErrUnknownProblem, "could not find `%s`", name)
	}
	return fn(), nil
}

// Names returns the sorted names of every registered problem.
func Names() []string {
	names := []string{}
	for name := range registeredProblems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// options reads the known options of a problem.
type options struct {
	values map[string]string
	seen   map[string]struct{}
}

func newOptions(values map[string]string) *options {
	return &options{
		values: values,
		seen:   make(map[string]struct{}),
	}
}

func (obj *options) str(name, def string) string {
	obj.seen[name] = struct{}{}
	if v, exists := obj.values[name]; exists {
		return v
	}
	return def
}

func (obj *options) int(name string, def int) (int, error) {
	s := obj.str(name, "")
	if s == "" {
		return def, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, errwrap.Wrapf(err, "option `%s` is not an int", name)
	}
	return i, nil
}

// check returns an error for every option that was never read.
func (obj *options) check() error {
	var reterr error
	for name := range obj.values {
		if _, exists := obj.seen[name]; !exists {
			reterr = errwrap.Append(reterr, fmt.Errorf("unknown option `%s`", name))
		}
	}
	return reterr
}

// size returns the number of nodes of an individual as an objective value.
func size(ind *tree.Individual) float64 {
	return float64(ind.Len())
}
