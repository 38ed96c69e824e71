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

// Package catalog holds the primitives that expressions are built from: the
// builtin functions, and the records, constants and variables of a problem.
package catalog

import (
	"fmt"
	"sort"

	"github.com/purpleidea/tgp/scope"
	"github.com/purpleidea/tgp/types"
	"github.com/purpleidea/tgp/util/errwrap"
)

// ErrNotFound is returned when a builtin is not registered.
const ErrNotFound = errwrap.Error("builtin not found")

// Entry is the implementation of a single name. Exactly one of Func, Lambda
// and Value is used, depending on the kind of Type.
type Entry struct {
	// Type is the type of this entry. Builtins return a fresh one on each
	// call of their registered constructor.
	Type *types.Type

	// Func is the implementation of a function. The args are already
	// evaluated.
	Func func(args []interface{}) (interface{}, error)

	// Lambda is the implementation of a bound map. The body evaluates the
	// remaining arguments with the bound name set to an element of coll.
	Lambda func(coll []interface{}, body func(elem interface{}) ([]interface{}, error)) (interface{}, error)

	// Value is the value of a constant.
	Value interface{}
}

// Validate returns an error if the entry does not match its type.
func (obj *Entry) Validate() error {
	if obj.Type == nil {
		return fmt.Errorf("missing type")
	}
	switch obj.Type.Kind {
	case types.KindFunc:
		if obj.Func == nil {
			return fmt.Errorf("missing func for `%s`", obj.Type)
		}
	case types.KindBoundMap:
		if obj.Lambda == nil {
			return fmt.Errorf("missing lambda for `%s`", obj.Type)
		}
	default:
		if obj.Value == nil {
			return fmt.Errorf("missing value for `%s`", obj.Type)
		}
	}
	return nil
}

// registeredBuiltins is a global map of all the builtins that a catalog can
// use. You should never touch this map directly. Use methods like Register
// instead.
var registeredBuiltins = make(map[string]func() *Entry) // must initialize

// Register takes a builtin and its name and makes it available for use. It is
// commonly called in the init() method of the module that defines it. It
// panics if the name is already registered.
func Register(name string, fn func() *Entry) {
	if _, exists := registeredBuiltins[name]; exists {
		panic(fmt.Sprintf("a builtin named %s is already registered", name))
	}
	registeredBuiltins[name] = fn
}

// Lookup returns a fresh entry for a registered builtin.
func Lookup(name string) (*Entry, error) {
	fn, exists := registeredBuiltins[name]
	if !exists {
		return nil, errwrap.Wrapf(ErrNotFound, "could not find `%s`", name)
	}
	return fn(), nil
}

// Builtins returns the sorted names of every registered builtin.
func Builtins() []string {
	names := []string{}
	for name := range registeredBuiltins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Variable is a name whose value is supplied at evaluation time.
type Variable struct {
	Name   string
	Type   *types.Type
	Weight float64
}

// Catalog is a built set of primitives. It is read only once built, so it can
// be shared by concurrent evaluations.
type Catalog struct {
	records   map[string]*types.Type
	entries   map[string]*Entry
	weights   map[string]float64
	order     []string
	variables []*Variable
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		records: make(map[string]*types.Type),
		entries: make(map[string]*Entry),
		weights: make(map[string]float64),
	}
}

func (obj *Catalog) exists(name string) bool {
	if _, exists := obj.entries[name]; exists {
		return true
	}
	for _, v := range obj.variables {
		if v.Name == name {
			return true
		}
	}
	return false
}

// Add adds an entry under the given name.
func (obj *Catalog) Add(name string, entry *Entry, weight float64) error {
	if obj.exists(name) {
		return errwrap.Wrapf(scope.ErrDuplicateName, "could not add `%s`", name)
	}
	if err := entry.Validate(); err != nil {
		return errwrap.Wrapf(err, "invalid entry `%s`", name)
	}
	obj.entries[name] = entry
	obj.weights[name] = weight
	obj.order = append(obj.order, name)
	return nil
}

// AddVariable adds a variable.
func (obj *Catalog) AddVariable(v *Variable) error {
	if obj.exists(v.Name) {
		return errwrap.Wrapf(scope.ErrDuplicateName, "could not add `%s`", v.Name)
	}
	if v.Type == nil {
		return fmt.Errorf("nil type for `%s`", v.Name)
	}
	obj.variables = append(obj.variables, v)
	return nil
}

// Entry returns the entry of a builtin or a constant.
func (obj *Catalog) Entry(name string) (*Entry, bool) {
	entry, exists := obj.entries[name]
	return entry, exists
}

// Record returns a record type by name.
func (obj *Catalog) Record(name string) (*types.Type, bool) {
	rec, exists := obj.records[name]
	return rec, exists
}

// Variables returns the variables in the order they were added.
func (obj *Catalog) Variables() []*Variable {
	return obj.variables
}

// Scope returns a new root scope with every entry and variable of this
// catalog bound to its weight.
func (obj *Catalog) Scope() (*scope.Scope, error) {
	sc := scope.New()
	for _, name := range obj.order {
		if err := sc.Add(name, obj.entries[name].Type, obj.weights[name]); err != nil {
			return nil, err
		}
	}
	for _, v := range obj.variables {
		if err := sc.Add(v.Name, v.Type, v.Weight); err != nil {
			return nil, err
		}
	}
	return sc, nil
}
