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

package catalog

import (
	"fmt"
)

// Object is the value of a record. Objects may reference each other in
// cycles, so they are compared by identity.
type Object struct {
	// Name is the name of the record type.
	Name string

	// Fields maps each field name to its value.
	Fields map[string]interface{}
}

// NewObject returns an object of the named record with no fields set.
func NewObject(name string) *Object {
	return &Object{
		Name:   name,
		Fields: make(map[string]interface{}),
	}
}

// Field returns the value of a field.
func (obj *Object) Field(name string) (interface{}, error) {
	v, exists := obj.Fields[name]
	if !exists {
		return nil, fmt.Errorf("record `%s` has no field `%s`", obj.Name, name)
	}
	return v, nil
}

// String prints the record name and its address, since the fields may be
// cyclic.
func (obj *Object) String() string {
	return fmt.Sprintf("%s@%p", obj.Name, obj)
}

// Equal compares two values. Collections are equal when their elements are,
// and objects only when they are the same object.
func Equal(a, b interface{}) bool {
	switch x := a.(type) {
	case []interface{}:
		y, ok := b.([]interface{})
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true

	case *Object:
		y, ok := b.(*Object)
		return ok && x == y
	}
	return a == b
}

// Int converts a value to an int.
func Int(v interface{}) (int, error) {
	i, ok := v.(int)
	if !ok {
		return 0, fmt.Errorf("value %v of type %T is not an int", v, v)
	}
	return i, nil
}

// Bool converts a value to a bool.
func Bool(v interface{}) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("value %v of type %T is not a bool", v, v)
	}
	return b, nil
}

// List converts a value to a collection.
func List(v interface{}) ([]interface{}, error) {
	l, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("value %v of type %T is not a collection", v, v)
	}
	return l, nil
}
