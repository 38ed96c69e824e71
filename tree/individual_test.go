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

package tree

import (
	"reflect"
	"testing"

	"github.com/purpleidea/tgp/random"
	"github.com/purpleidea/tgp/scope"
	"github.com/purpleidea/tgp/types"

	"github.com/davecgh/go-spew/spew"
	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var weights = []float64{-1}

type fixture struct {
	src    *random.Source
	sc     *scope.Scope
	person *types.Type
}

func newFixture(t *testing.T) *fixture {
	person := types.NewRecord("Person")
	person.AddField("age", types.TypeInt)
	person.AddField("friends", types.NewCollection(person))
	rec := map[string]*types.Type{"Person": person}

	plus := types.NewFunc(types.TypeInt, []*types.Type{types.TypeInt, types.TypeInt}, func(name string, args ...string) string {
		return "(" + args[0] + " " + name + " " + args[1] + ")"
	})

	sc := scope.New()
	require.NoError(t, sc.Add("+", plus, 1))
	require.NoError(t, sc.Add("abs", types.MustParse("func(int) int", nil), 1))
	require.NoError(t, sc.Add(">", types.MustParse("func(int, int) bool", nil), 1))
	require.NoError(t, sc.Add("forAll", types.MustParse("map([]Person, bool) bool", rec), 1))
	require.NoError(t, sc.Add("0", types.TypeInt, 1))
	require.NoError(t, sc.Add("1", types.TypeInt, 1))
	require.NoError(t, sc.Add("self", person, 1))

	return &fixture{
		src:    random.New(11),
		sc:     sc,
		person: person,
	}
}

func (obj *fixture) node(t *testing.T, name string) *Node {
	b, exists := obj.sc.Lookup(name)
	require.True(t, exists, "missing %s", name)
	return NewNode(obj.src, name, b.Type, obj.sc, nil)
}

// plus returns (abs(0) + 1).
func (obj *fixture) plus(t *testing.T) *Individual {
	nodes := []*Node{obj.node(t, "+"), obj.node(t, "abs"), obj.node(t, "0"), obj.node(t, "1")}
	ind, err := New(nodes, obj.sc, types.TypeInt, weights)
	require.NoError(t, err)
	return ind
}

// forAll returns self.friends->forAll(xxx | (xxx.age > 0)).
func (obj *fixture) forAll(t *testing.T) *Individual {
	fa := obj.node(t, "forAll")
	friends := NewNode(obj.src, "self.friends", obj.person.Map["friends"], obj.sc, nil)
	inner := obj.sc.Extend(fa.Ext, scope.DefaultExtensionWeight)
	age := NewNode(obj.src, fa.Ext.Name+".age", types.TypeInt, inner, nil)
	gt := NewNode(obj.src, ">", types.MustParse("func(int, int) bool", nil), inner, nil)
	zero := NewNode(obj.src, "0", types.TypeInt, inner, nil)
	ind, err := New([]*Node{fa, friends, gt, age, zero}, obj.sc, types.TypeBool, weights)
	require.NoError(t, err)
	return ind
}

func TestNew0(t *testing.T) {
	f := newFixture(t)
	testCases := []struct {
		names []string
		ok    bool
	}{
		{[]string{"0"}, true},
		{[]string{"+", "0", "1"}, true},
		{[]string{"+", "abs", "0", "1"}, true},
		{[]string{}, false},
		{[]string{"+", "0"}, false},
		{[]string{"0", "1"}, false},
		{[]string{"+", "0", "1", "1"}, false},
	}
	for i, tc := range testCases {
		nodes := []*Node{}
		for _, name := range tc.names {
			nodes = append(nodes, f.node(t, name))
		}
		_, err := New(nodes, f.sc, types.TypeInt, weights)
		if tc.ok {
			assert.NoError(t, err, "test #%d", i)
		} else {
			assert.ErrorIs(t, err, ErrInvalidTree, "test #%d", i)
		}
	}
}

func TestHierarchy0(t *testing.T) {
	f := newFixture(t)
	ind := f.plus(t)

	exp := []Position{
		{Parent: -1, Arg: -1},
		{Parent: 0, Arg: 0},
		{Parent: 1, Arg: 0},
		{Parent: 0, Arg: 1},
	}
	if !reflect.DeepEqual(ind.hierarchy, exp) {
		t.Errorf("hierarchy did not match expected")
		t.Logf("actual: \n%s", spew.Sdump(ind.hierarchy))
		t.Logf("diff:\n%s", pretty.Compare(ind.hierarchy, exp))
	}

	for i := 1; i < ind.Len(); i++ {
		pos := ind.Position(i)
		require.Less(t, pos.Parent, i)
		begin, end := ind.SearchSubtree(pos.Parent)
		assert.True(t, begin < i && i < end, "parent range must contain %d", i)
	}
}

func TestSearchSubtree0(t *testing.T) {
	f := newFixture(t)
	ind := f.plus(t)

	testCases := []struct {
		index, begin, end int
	}{
		{0, 0, 4},
		{1, 1, 3},
		{2, 2, 3},
		{3, 3, 4},
	}
	for _, tc := range testCases {
		begin, end := ind.SearchSubtree(tc.index)
		assert.Equal(t, tc.begin, begin)
		assert.Equal(t, tc.end, end, "subtree of %d", tc.index)
	}
	assert.Equal(t, 2, ind.Height())
	assert.Equal(t, []int{0, 1}, ind.Nodes(Internal))
	assert.Equal(t, []int{2, 3}, ind.Nodes(Terminal))
}

func TestString0(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "(abs(0) + 1)", f.plus(t).String())
	assert.Equal(t, "func(int, int) int{ func(int) int{ int } ! int }", f.plus(t).TypeString())

	fa := f.forAll(t)
	name := fa.Node(0).Ext.Name
	assert.Equal(t, "self.friends->forAll("+name+" | >("+name+".age, 0))", fa.String())
}

func TestParentInputType0(t *testing.T) {
	f := newFixture(t)
	ind := f.forAll(t)

	assert.Equal(t, types.TypeBool, ind.ParentInputType(0))
	assert.Equal(t, types.KindCollection, ind.ParentInputType(1).Kind)
	assert.Equal(t, "bool", ind.ParentInputType(2).String())
	assert.Equal(t, "int", ind.ParentInputType(3).String())
}

func TestNodeScope0(t *testing.T) {
	f := newFixture(t)
	ind := f.forAll(t)
	name := ind.Node(0).Ext.Name

	// the collection is outside the bound scope, the body is inside
	assert.False(t, ind.NodeScope(0).Has(name))
	assert.False(t, ind.NodeScope(1).Has(name))
	assert.True(t, ind.NodeScope(2).Has(name))
	assert.True(t, ind.NodeScope(3).Has(name))
	assert.True(t, ind.NodeScope(4).Has(name))

	b, exists := ind.NodeScope(3).Lookup(name)
	require.True(t, exists)
	assert.Same(t, f.person, b.Type.Resolve())
}

func TestCompatibleSwaps0(t *testing.T) {
	f := newFixture(t)
	a := f.plus(t)
	b := f.forAll(t)

	for _, pair := range a.CompatibleSwaps(b, nil) {
		assert.False(t, pair[0] == 0 && pair[1] == 0, "roots are never swapped")
		assert.True(t, a.NodeScope(pair[0]).IsCompatible(b.NodeScope(pair[1])))
	}

	// the bound scope of the forAll body is incompatible with the base scope
	for _, pair := range a.CompatibleSwaps(b, nil) {
		assert.NotContains(t, []int{2, 3, 4}, pair[1])
	}

	// (abs(0) + 1) with itself: every int node against every other
	c := f.plus(t)
	pairs := a.CompatibleSwaps(c, Terminal)
	assert.Len(t, pairs, 4)
}

func TestSwapSubtrees0(t *testing.T) {
	f := newFixture(t)
	a := f.plus(t)
	b := f.plus(t)

	la, lb := a.Len(), b.Len()
	require.NoError(t, a.SwapSubtrees(1, b, 3)) // abs(0) <-> 1
	assert.Equal(t, "(1 + 1)", a.String())
	assert.Equal(t, "(abs(0) + abs(0))", b.String())
	assert.Equal(t, la+lb, a.Len()+b.Len())

	for _, ind := range []*Individual{a, b} {
		begin, end := ind.SearchSubtree(0)
		assert.Equal(t, 0, begin)
		assert.Equal(t, ind.Len(), end)
		require.NoError(t, Check(ind.nodes))
	}

	assert.Error(t, a.SwapSubtrees(0, a, 1))
	assert.Error(t, a.SwapSubtrees(10, b, 1))
}

func TestSwapNode0(t *testing.T) {
	f := newFixture(t)
	ind := f.plus(t)

	assert.Error(t, ind.SwapNode(0, f.node(t, "abs")), "arity must match")
	require.NoError(t, ind.SwapNode(3, f.node(t, "0")))
	assert.Equal(t, "(abs(0) + 0)", ind.String())
}

func TestReplaceSubtree0(t *testing.T) {
	f := newFixture(t)
	ind := f.plus(t)
	before := ind.String()

	assert.Error(t, ind.ReplaceSubtree(1, []*Node{f.node(t, "+")}))
	assert.Equal(t, before, ind.String(), "unchanged on error")

	require.NoError(t, ind.ReplaceSubtree(1, []*Node{f.node(t, "1")}))
	assert.Equal(t, "(1 + 1)", ind.String())
	assert.Equal(t, 3, ind.Len())
	assert.Equal(t, Position{Parent: 0, Arg: 1}, ind.Position(2))
}

func TestCopy0(t *testing.T) {
	f := newFixture(t)
	ind := f.forAll(t)
	require.NoError(t, ind.GetFitness().SetValues([]float64{3}))
	before := ind.String()

	c := ind.Copy()
	assert.Equal(t, before, c.String())
	assert.Same(t, ind.Scope(), c.Scope())
	assert.Equal(t, ind.Node(0).Ext.Name, c.Node(0).Ext.Name)
	assert.NotSame(t, ind.Node(0), c.Node(0))

	require.NoError(t, c.ReplaceSubtree(2, []*Node{NewNode(f.src, "t", types.TypeBool, f.sc, nil)}))
	require.NoError(t, c.GetFitness().SetValues([]float64{5}))

	assert.Equal(t, before, ind.String())
	assert.Equal(t, []float64{3}, ind.GetFitness().Values())
	assert.Equal(t, 5, ind.Len())
}
