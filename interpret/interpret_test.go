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

//go:build !root

package interpret

import (
	"testing"

	"github.com/purpleidea/tgp/catalog"
	"github.com/purpleidea/tgp/random"
	"github.com/purpleidea/tgp/scope"
	"github.com/purpleidea/tgp/tree"
	"github.com/purpleidea/tgp/types"
	"github.com/purpleidea/tgp/util/errwrap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const spec = `
records:
  - name: Person
    fields:
      - {name: age, type: int}
      - {name: friends, type: "[]Person"}
builtins:
  - {name: "+"}
  - {name: ">"}
  - {name: ite}
  - {name: forAll}
  - {name: count}
constants:
  - {name: "1", type: int, value: 1}
  - {name: "2", type: int, value: 2}
  - {name: "17", type: int, value: 17}
  - {name: "false", type: bool, value: false}
variables:
  - {name: self, type: Person}
  - {name: x, type: int}
`

type fixture struct {
	src    *random.Source
	cat    *catalog.Catalog
	sc     *scope.Scope
	person *types.Type
}

func newFixture(t *testing.T) *fixture {
	s, err := catalog.ParseSpec([]byte(spec))
	require.NoError(t, err)
	cat, err := s.Build()
	require.NoError(t, err)
	sc, err := cat.Scope()
	require.NoError(t, err)
	person, _ := cat.Record("Person")
	return &fixture{
		src:    random.New(3),
		cat:    cat,
		sc:     sc,
		person: person,
	}
}

func (obj *fixture) node(t *testing.T, sc *scope.Scope, name string, typ *types.Type) *tree.Node {
	if typ == nil {
		b, exists := sc.Lookup(name)
		require.True(t, exists, "missing %s", name)
		typ = b.Type
	}
	return tree.NewNode(obj.src, name, typ, sc, nil)
}

// people returns three persons: a (age 20) and b (age 30) are friends of each
// other, c (age 10) is a friend of a.
func people() (*catalog.Object, *catalog.Object, *catalog.Object) {
	a := catalog.NewObject("Person")
	b := catalog.NewObject("Person")
	c := catalog.NewObject("Person")
	a.Fields["age"] = 20
	b.Fields["age"] = 30
	c.Fields["age"] = 10
	a.Fields["friends"] = []interface{}{b, c}
	b.Fields["friends"] = []interface{}{a}
	c.Fields["friends"] = []interface{}{}
	return a, b, c
}

func TestEval0(t *testing.T) {
	f := newFixture(t)
	plus := f.node(t, f.sc, "+", nil)
	nodes := []*tree.Node{plus, f.node(t, f.sc, "x", nil), f.node(t, f.sc, "+", nil), f.node(t, f.sc, "1", nil), f.node(t, f.sc, "2", nil)}
	ind, err := tree.New(nodes, f.sc, types.TypeInt, []float64{-1})
	require.NoError(t, err)
	assert.Equal(t, "(x + (1 + 2))", ind.String())

	v, err := Eval(ind, f.cat, map[string]interface{}{"x": 4})
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = Eval(ind, f.cat, nil)
	assert.True(t, errwrap.Is(err, ErrUnbound))
}

// forAll builds self.friends->forAll(b | (b.age > 17)).
func (obj *fixture) forAll(t *testing.T) *tree.Individual {
	fa := obj.node(t, obj.sc, "forAll", nil)
	friends := obj.node(t, obj.sc, "self.friends", obj.person.Map["friends"])
	fa.Type.ApplyTo(types.NewBoundMap(types.TypeBool, friends.Type, types.TypeBool))
	inner := obj.sc.Extend(fa.Ext, scope.DefaultExtensionWeight)
	gt := obj.node(t, inner, ">", nil)
	age := obj.node(t, inner, fa.Ext.Name+".age", types.TypeInt)
	c := obj.node(t, inner, "17", nil)
	ind, err := tree.New([]*tree.Node{fa, friends, gt, age, c}, obj.sc, types.TypeBool, []float64{1})
	require.NoError(t, err)
	return ind
}

func TestEval1(t *testing.T) {
	f := newFixture(t)
	ind := f.forAll(t)
	a, b, c := people()

	values := []struct {
		self *catalog.Object
		want bool
	}{
		{a, false}, // c is 10
		{b, true},
		{c, true}, // no friends
	}
	interpreter := &Interpreter{Catalog: f.cat}
	for i, tc := range values {
		v, err := interpreter.Eval(ind, map[string]interface{}{"self": tc.self})
		if err != nil {
			t.Errorf("test #%d: unexpected error: %+v", i, err)
			continue
		}
		if v != tc.want {
			t.Errorf("test #%d: got %v, expected %v for %s", i, v, tc.want, ind)
		}
	}
}

func TestEval2(t *testing.T) {
	// the bound map is an argument, so evaluation continues after its body
	f := newFixture(t)
	plus := f.node(t, f.sc, "+", nil)
	cnt := f.node(t, f.sc, "count", nil)
	friends := f.node(t, f.sc, "self.friends", f.person.Map["friends"])
	inner := f.sc.Extend(cnt.Ext, scope.DefaultExtensionWeight)
	gt := f.node(t, inner, ">", nil)
	age := f.node(t, inner, cnt.Ext.Name+".age", types.TypeInt)
	c := f.node(t, inner, "17", nil)
	one := f.node(t, f.sc, "1", nil)

	ind, err := tree.New([]*tree.Node{plus, cnt, friends, gt, age, c, one}, f.sc, types.TypeInt, []float64{1})
	require.NoError(t, err)

	a, _, _ := people()
	v, err := Eval(ind, f.cat, map[string]interface{}{"self": a})
	require.NoError(t, err)
	assert.Equal(t, 2, v) // one adult friend, plus one
}

func TestEval3(t *testing.T) {
	f := newFixture(t)
	ite := f.node(t, f.sc, "ite", nil)
	nodes := []*tree.Node{ite, f.node(t, f.sc, "false", nil), f.node(t, f.sc, "1", nil), f.node(t, f.sc, "self.age", types.TypeInt)}
	ind, err := tree.New(nodes, f.sc, types.TypeInt, []float64{1})
	require.NoError(t, err)

	a, _, _ := people()
	v, err := Eval(ind, f.cat, map[string]interface{}{"self": a})
	require.NoError(t, err)
	assert.Equal(t, 20, v)

	// a path through something that is not a record
	_, err = Eval(ind, f.cat, map[string]interface{}{"self": 42})
	assert.Error(t, err)
}
