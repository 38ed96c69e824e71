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

// Package interpret evaluates individuals by composing the implementations of
// the catalog they were built from.
package interpret

import (
	"fmt"
	"strings"

	"github.com/purpleidea/tgp/catalog"
	"github.com/purpleidea/tgp/tree"
	"github.com/purpleidea/tgp/types"
	"github.com/purpleidea/tgp/util/errwrap"
)

// ErrUnbound is returned when a name resolves to nothing.
const ErrUnbound = errwrap.Error("unbound name")

// frame is one bound name of the environment. Frames are immutable and link
// to the enclosing one.
type frame struct {
	name   string
	value  interface{}
	parent *frame
}

func (obj *frame) lookup(name string) (interface{}, bool) {
	for f := obj; f != nil; f = f.parent {
		if f.name == name {
			return f.value, true
		}
	}
	return nil, false
}

// Interpreter evaluates individuals against one catalog. It holds no state
// between calls, so one can be shared by concurrent evaluations.
type Interpreter struct {
	Catalog *catalog.Catalog
}

// Eval is a helper that evaluates an individual with the given variables.
func Eval(ind *tree.Individual, cat *catalog.Catalog, vars map[string]interface{}) (interface{}, error) {
	obj := &Interpreter{Catalog: cat}
	return obj.Eval(ind, vars)
}

// Eval returns the value of the individual. The vars supply the values of the
// catalog variables.
func (obj *Interpreter) Eval(ind *tree.Individual, vars map[string]interface{}) (interface{}, error) {
	if obj.Catalog == nil {
		return nil, fmt.Errorf("the Catalog is missing")
	}
	if ind.Len() == 0 {
		return nil, fmt.Errorf("empty individual")
	}
	v, next, err := obj.eval(ind, 0, vars, nil)
	if err != nil {
		return nil, err
	}
	if next != ind.Len() {
		panic("malformed individual") // the hierarchy guarantees this
	}
	return v, nil
}

// eval evaluates the subtree at i and returns its value and the index that
// follows the subtree.
func (obj *Interpreter) eval(ind *tree.Individual, i int, vars map[string]interface{}, env *frame) (interface{}, int, error) {
	node := ind.Node(i)
	entry, isEntry := obj.Catalog.Entry(node.Name)

	if !isEntry || node.Arity() == 0 {
		if isEntry && entry.Value != nil {
			return entry.Value, i + 1, nil
		}
		v, err := obj.resolve(node.Name, vars, env)
		if err != nil {
			return nil, 0, err
		}
		return v, i + 1, nil
	}

	switch node.Type.Kind {
	case types.KindFunc:
		args := make([]interface{}, 0, node.Arity())
		next := i + 1
		for arg := 0; arg < node.Arity(); arg++ {
			v, n, err := obj.eval(ind, next, vars, env)
			if err != nil {
				return nil, 0, err
			}
			args = append(args, v)
			next = n
		}
		v, err := entry.Func(args)
		if err != nil {
			return nil, 0, errwrap.Wrapf(err, "`%s` failed", node.Name)
		}
		return v, next, nil

	case types.KindBoundMap:
		first, next, err := obj.eval(ind, i+1, vars, env)
		if err != nil {
			return nil, 0, err
		}
		coll, err := catalog.List(first)
		if err != nil {
			return nil, 0, errwrap.Wrapf(err, "`%s` needs a collection", node.Name)
		}
		start := next
		_, end := ind.SearchSubtree(i)
		body := func(elem interface{}) ([]interface{}, error) {
			inner := &frame{
				name:   node.Ext.Name,
				value:  elem,
				parent: env,
			}
			values := []interface{}{}
			n := start
			for arg := 1; arg < node.Arity(); arg++ {
				v, after, err := obj.eval(ind, n, vars, inner)
				if err != nil {
					return nil, err
				}
				values = append(values, v)
				n = after
			}
			return values, nil
		}
		v, err := entry.Lambda(coll, body)
		if err != nil {
			return nil, 0, errwrap.Wrapf(err, "`%s` failed", node.Name)
		}
		return v, end, nil
	}

	panic(fmt.Sprintf("malformed node `%s`", node))
}

// resolve looks up a bound name or a variable, and follows a dotted path
// through the fields of its records.
func (obj *Interpreter) resolve(name string, vars map[string]interface{}, env *frame) (interface{}, error) {
	path := strings.Split(name, ".")
	v, exists := env.lookup(path[0])
	if !exists {
		v, exists = vars[path[0]]
	}
	if !exists {
		return nil, errwrap.Wrapf(ErrUnbound, "could not resolve `%s`", name)
	}
	for _, field := range path[1:] {
		o, ok := v.(*catalog.Object)
		if !ok {
			return nil, fmt.Errorf("`%s` is not a record in `%s`", field, name)
		}
		f, err := o.Field(field)
		if err != nil {
			return nil, err
		}
		v = f
	}
	return v, nil
}
