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

package catalog

import (
	"testing"

	"github.com/purpleidea/tgp/scope"
	"github.com/purpleidea/tgp/types"
	"github.com/purpleidea/tgp/util/errwrap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSpec = `
records:
  - name: Person
    fields:
      - {name: age, type: int}
      - {name: friends, type: "[]Person"}
builtins:
  - {name: forAll, weight: 2}
  - {name: ">"}
constants:
  - {name: "18", type: int, value: 18}
  - {name: "true", type: bool, value: true}
variables:
  - {name: self, type: Person, weight: 3}
`

func call(t *testing.T, name string, args ...interface{}) interface{} {
	entry, err := Lookup(name)
	require.NoError(t, err)
	require.NotNil(t, entry.Func, "%s is not a func", name)
	require.Equal(t, len(args), entry.Type.Arity())
	v, err := entry.Func(args)
	require.NoError(t, err)
	return v
}

func TestBuiltins0(t *testing.T) {
	values := []struct {
		name string
		args []interface{}
		want interface{}
	}{
		{"+", []interface{}{2, 3}, 5},
		{"-", []interface{}{2, 3}, -1},
		{"*", []interface{}{2, 3}, 6},
		{"max", []interface{}{2, 3}, 3},
		{"min", []interface{}{2, 3}, 2},
		{"abs", []interface{}{-4}, 4},
		{"neg", []interface{}{4}, -4},
		{"<", []interface{}{1, 1}, false},
		{"<=", []interface{}{1, 1}, true},
		{">", []interface{}{2, 1}, true},
		{">=", []interface{}{0, 1}, false},
		{"=", []interface{}{[]interface{}{1, 2}, []interface{}{1, 2}}, true},
		{"<>", []interface{}{true, false}, true},
		{"and", []interface{}{true, false}, false},
		{"or", []interface{}{true, false}, true},
		{"implies", []interface{}{false, false}, true},
		{"not", []interface{}{false}, true},
		{"ite", []interface{}{false, 1, 2}, 2},
		{"size", []interface{}{[]interface{}{1, 2, 3}}, 3},
		{"includes", []interface{}{[]interface{}{1, 2, 3}, 2}, true},
		{"includes", []interface{}{[]interface{}{}, 2}, false},
	}
	for i, tc := range values {
		if got := call(t, tc.name, tc.args...); got != tc.want {
			t.Errorf("test #%d: %s%v: got %v, expected %v", i, tc.name, tc.args, got, tc.want)
		}
	}
}

func TestBuiltins1(t *testing.T) {
	even := func(elem interface{}) ([]interface{}, error) {
		i, err := Int(elem)
		return []interface{}{i%2 == 0}, err
	}
	values := []struct {
		name string
		coll []interface{}
		want interface{}
	}{
		{"forAll", []interface{}{2, 4}, true},
		{"forAll", []interface{}{2, 3}, false},
		{"forAll", []interface{}{}, true},
		{"exists", []interface{}{1, 3}, false},
		{"exists", []interface{}{1, 2}, true},
		{"count", []interface{}{1, 2, 4}, 2},
	}
	for i, tc := range values {
		entry, err := Lookup(tc.name)
		require.NoError(t, err)
		require.NotNil(t, entry.Lambda)
		got, err := entry.Lambda(tc.coll, even)
		require.NoError(t, err)
		if got != tc.want {
			t.Errorf("test #%d: %s(%v): got %v, expected %v", i, tc.name, tc.coll, got, tc.want)
		}
	}
}

func TestBuiltins2(t *testing.T) {
	_, err := Lookup("nope")
	assert.True(t, errwrap.Is(err, ErrNotFound))

	entry, err := Lookup("+")
	require.NoError(t, err)
	_, err = entry.Func([]interface{}{1, true})
	assert.Error(t, err)

	// each lookup is independent
	a, _ := Lookup("ite")
	b, _ := Lookup("ite")
	a.Type.ApplyTo(types.MustParse("func(bool, int, int) int", nil))
	assert.Equal(t, "func(bool, int, int) int", a.Type.String())
	assert.Equal(t, "func(bool, 'T, 'T) 'T", b.Type.String())

	assert.Contains(t, Builtins(), "forAll")
	assert.Equal(t, "(a + b)", Infix("+", "a", "b"))
	assert.Equal(t, "not a", Prefix("not", "a"))
	assert.Equal(t, "a->size()", Method("size", "a"))
}

func TestSpec0(t *testing.T) {
	spec, err := ParseSpec([]byte(personSpec))
	require.NoError(t, err)
	cat, err := spec.Build()
	require.NoError(t, err)

	person, exists := cat.Record("Person")
	require.True(t, exists)
	assert.Same(t, person, person.Map["friends"].Val, "records may be cyclic")

	entry, exists := cat.Entry("18")
	require.True(t, exists)
	assert.Equal(t, 18, entry.Value)

	require.Len(t, cat.Variables(), 1)
	assert.Same(t, person, cat.Variables()[0].Type)

	sc, err := cat.Scope()
	require.NoError(t, err)
	assert.Equal(t, []string{"forAll", ">", "18", "true", "self"}, sc.Names())
	b, exists := sc.Lookup("forAll")
	require.True(t, exists)
	assert.Equal(t, 2.0, b.Weight)
	b, exists = sc.Lookup(">")
	require.True(t, exists)
	assert.Equal(t, scope.DefaultWeight, b.Weight)
}

func TestSpec1(t *testing.T) {
	values := []string{
		"records: [{name: A}, {name: A}]",
		"records: [{name: A, fields: [{name: x, type: int}, {name: x, type: int}]}]",
		"records: [{name: A, fields: [{name: x, type: \"[\"}]}]",
		"builtins: [{name: nope}]",
		"builtins: [{name: abs}, {name: abs}]",
		"constants: [{name: x, type: int, value: true}]",
		"constants: [{name: x, type: \"[]int\", value: 1}]",
		"constants: [{name: x, type: int, value: 1}]\nvariables: [{name: x, type: int}]",
		"bogus: 42",
	}
	for i, s := range values {
		spec, err := ParseSpec([]byte(s))
		if err != nil {
			continue
		}
		if _, err := spec.Build(); err == nil {
			t.Errorf("test #%d: expected an error for: %s", i, s)
		}
	}
}

func TestEqual0(t *testing.T) {
	a := NewObject("Person")
	b := NewObject("Person")
	a.Fields["friends"] = []interface{}{b}
	b.Fields["friends"] = []interface{}{a}

	assert.True(t, Equal(a, a))
	assert.False(t, Equal(a, b))
	assert.False(t, Equal([]interface{}{1}, []interface{}{1, 2}))
	assert.False(t, Equal(1, true))

	v, err := a.Field("friends")
	require.NoError(t, err)
	assert.Len(t, v, 1)
	_, err = a.Field("age")
	assert.Error(t, err)
}
