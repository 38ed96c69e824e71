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

package types

import (
	"fmt"
	"strings"
	"unicode"
)

// Parse creates a new type from the textual representation that String
// produces. Record names are resolved through the records map, and any other
// identifier is an atomic type. Parametric identifiers that repeat inside one
// call denote the same parametric type.
//
// The grammar is small:
//
//	int, bool, any, Person       atomic or record
//	[]T                          collection
//	func(T1, T2) R               function
//	map([]T, P1) R               bound map
//	(A | B)                      union
//	'T and 'T<:U                 parametric with an optional upper bound
func Parse(s string, records map[string]*Type) (*Type, error) {
	p := &parser{
		s:       s,
		records: records,
		params:  make(map[string]*Type),
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skip()
	if p.pos != len(p.s) {
		return nil, fmt.Errorf("unexpected input at %d in `%s`", p.pos, s)
	}
	return typ, nil
}

// MustParse is like Parse, except that it panics on error. This is useful for
// types that are known at compile time.
func MustParse(s string, records map[string]*Type) *Type {
	typ, err := Parse(s, records)
	if err != nil {
		panic(fmt.Sprintf("could not parse type `%s`: %v", s, err))
	}
	return typ
}

type parser struct {
	s       string
	pos     int
	records map[string]*Type
	params  map[string]*Type
}

func (obj *parser) skip() {
	for obj.pos < len(obj.s) && unicode.IsSpace(rune(obj.s[obj.pos])) {
		obj.pos++
	}
}

// consume skips whitespace and then advances past the token if it is next.
func (obj *parser) consume(token string) bool {
	obj.skip()
	if strings.HasPrefix(obj.s[obj.pos:], token) {
		obj.pos += len(token)
		return true
	}
	return false
}

func (obj *parser) expect(token string) error {
	if !obj.consume(token) {
		return fmt.Errorf("expected `%s` at %d in `%s`", token, obj.pos, obj.s)
	}
	return nil
}

func (obj *parser) ident() string {
	obj.skip()
	start := obj.pos
	for obj.pos < len(obj.s) {
		c := rune(obj.s[obj.pos])
		if c == '_' || unicode.IsLetter(c) || (obj.pos > start && unicode.IsDigit(c)) {
			obj.pos++
			continue
		}
		break
	}
	return obj.s[start:obj.pos]
}

func (obj *parser) parseType() (*Type, error) {
	switch {
	case obj.consume("[]"):
		val, err := obj.parseType()
		if err != nil {
			return nil, err
		}
		return NewCollection(val), nil

	case obj.consume("func("):
		in, err := obj.parseArgs()
		if err != nil {
			return nil, err
		}
		out, err := obj.parseType()
		if err != nil {
			return nil, err
		}
		return NewFunc(out, in, nil), nil

	case obj.consume("map("):
		in, err := obj.parseArgs()
		if err != nil {
			return nil, err
		}
		if len(in) == 0 || in[0].Kind != KindCollection {
			return nil, fmt.Errorf("bound map needs a collection as first parameter in `%s`", obj.s)
		}
		out, err := obj.parseType()
		if err != nil {
			return nil, err
		}
		return NewBoundMap(out, in[0], in[1:]...), nil

	case obj.consume("("):
		first, err := obj.parseType()
		if err != nil {
			return nil, err
		}
		if obj.consume(")") { // just a grouping
			return first, nil
		}
		types := []*Type{first}
		for obj.consume("|") {
			t, err := obj.parseType()
			if err != nil {
				return nil, err
			}
			types = append(types, t)
		}
		if err := obj.expect(")"); err != nil {
			return nil, err
		}
		return NewUnion(types...), nil

	case obj.consume("'"):
		name := obj.ident()
		if name == "" {
			return nil, fmt.Errorf("missing parametric name at %d in `%s`", obj.pos, obj.s)
		}
		var bound *Type
		if obj.consume("<:") {
			t, err := obj.parseType()
			if err != nil {
				return nil, err
			}
			bound = t
		}
		if param, exists := obj.params[name]; exists {
			return param, nil
		}
		param := NewParam(name, bound)
		obj.params[name] = param
		return param, nil
	}

	name := obj.ident()
	if name == "" {
		return nil, fmt.Errorf("expected a type at %d in `%s`", obj.pos, obj.s)
	}
	if rec, exists := obj.records[name]; exists && rec != nil {
		return rec, nil
	}
	return NewAtomic(name), nil
}

// parseArgs parses a comma separated list of types up to the closing paren.
// The opening paren has already been consumed.
func (obj *parser) parseArgs() ([]*Type, error) {
	in := []*Type{}
	if obj.consume(")") {
		return in, nil
	}
	for {
		t, err := obj.parseType()
		if err != nil {
			return nil, err
		}
		in = append(in, t)
		if obj.consume(",") {
			continue
		}
		if err := obj.expect(")"); err != nil {
			return nil, err
		}
		return in, nil
	}
}
