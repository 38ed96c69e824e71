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

	"github.com/purpleidea/tgp/types"
)

// Infix renders a binary operator between its two arguments.
func Infix(name string, args ...string) string {
	if len(args) != 2 {
		panic(fmt.Sprintf("infix `%s` needs two args, got %d", name, len(args)))
	}
	return "(" + args[0] + " " + name + " " + args[1] + ")"
}

// Prefix renders a unary operator before its argument.
func Prefix(name string, args ...string) string {
	if len(args) != 1 {
		panic(fmt.Sprintf("prefix `%s` needs one arg, got %d", name, len(args)))
	}
	return name + " " + args[0]
}

// Method renders a call on the first argument, the way collection operations
// are usually written.
func Method(name string, args ...string) string {
	if len(args) == 0 {
		panic(fmt.Sprintf("method `%s` needs a receiver", name))
	}
	s := args[0] + "->" + name + "("
	for i, a := range args[1:] {
		if i > 0 {
			s += ", "
		}
		s += a
	}
	return s + ")"
}

func init() {
	registerInt("+", func(a, b int) int { return a + b }, Infix)
	registerInt("-", func(a, b int) int { return a - b }, Infix)
	registerInt("*", func(a, b int) int { return a * b }, Infix)
	registerInt("max", func(a, b int) int { return max(a, b) }, nil)
	registerInt("min", func(a, b int) int { return min(a, b) }, nil)

	registerCmp("<", func(a, b int) bool { return a < b })
	registerCmp("<=", func(a, b int) bool { return a <= b })
	registerCmp(">", func(a, b int) bool { return a > b })
	registerCmp(">=", func(a, b int) bool { return a >= b })

	registerBool("and", func(a, b bool) bool { return a && b })
	registerBool("or", func(a, b bool) bool { return a || b })
	registerBool("implies", func(a, b bool) bool { return !a || b })

	Register("abs", func() *Entry {
		return &Entry{
			Type: types.MustParse("func(int) int", nil),
			Func: func(args []interface{}) (interface{}, error) {
				a, err := Int(args[0])
				if err != nil {
					return nil, err
				}
				if a < 0 {
					return -a, nil
				}
				return a, nil
			},
		}
	})
	Register("neg", func() *Entry {
		t := types.MustParse("func(int) int", nil)
		t.Fmt = func(name string, args ...string) string {
			return "-" + args[0]
		}
		return &Entry{
			Type: t,
			Func: func(args []interface{}) (interface{}, error) {
				a, err := Int(args[0])
				if err != nil {
					return nil, err
				}
				return -a, nil
			},
		}
	})
	Register("not", func() *Entry {
		t := types.MustParse("func(bool) bool", nil)
		t.Fmt = Prefix
		return &Entry{
			Type: t,
			Func: func(args []interface{}) (interface{}, error) {
				a, err := Bool(args[0])
				if err != nil {
					return nil, err
				}
				return !a, nil
			},
		}
	})

	Register("=", func() *Entry {
		t := types.MustParse("func('T, 'T) bool", nil)
		t.Fmt = Infix
		return &Entry{
			Type: t,
			Func: func(args []interface{}) (interface{}, error) {
				return Equal(args[0], args[1]), nil
			},
		}
	})
	Register("<>", func() *Entry {
		t := types.MustParse("func('T, 'T) bool", nil)
		t.Fmt = Infix
		return &Entry{
			Type: t,
			Func: func(args []interface{}) (interface{}, error) {
				return !Equal(args[0], args[1]), nil
			},
		}
	})
	Register("ite", func() *Entry {
		t := types.MustParse("func(bool, 'T, 'T) 'T", nil)
		t.Fmt = func(name string, args ...string) string {
			return "if " + args[0] + " then " + args[1] + " else " + args[2] + " endif"
		}
		return &Entry{
			Type: t,
			Func: func(args []interface{}) (interface{}, error) {
				c, err := Bool(args[0])
				if err != nil {
					return nil, err
				}
				if c {
					return args[1], nil
				}
				return args[2], nil
			},
		}
	})

	Register("size", func() *Entry {
		t := types.MustParse("func([]'T) int", nil)
		t.Fmt = Method
		return &Entry{
			Type: t,
			Func: func(args []interface{}) (interface{}, error) {
				l, err := List(args[0])
				if err != nil {
					return nil, err
				}
				return len(l), nil
			},
		}
	})
	Register("includes", func() *Entry {
		t := types.MustParse("func([]'T, 'T) bool", nil)
		t.Fmt = Method
		return &Entry{
			Type: t,
			Func: func(args []interface{}) (interface{}, error) {
				l, err := List(args[0])
				if err != nil {
					return nil, err
				}
				for _, x := range l {
					if Equal(x, args[1]) {
						return true, nil
					}
				}
				return false, nil
			},
		}
	})

	Register("forAll", func() *Entry {
		return &Entry{
			Type: types.MustParse("map([]'T, bool) bool", nil),
			Lambda: func(coll []interface{}, body func(interface{}) ([]interface{}, error)) (interface{}, error) {
				for _, x := range coll {
					b, err := predicate(body, x)
					if err != nil {
						return nil, err
					}
					if !b {
						return false, nil
					}
				}
				return true, nil
			},
		}
	})
	Register("exists", func() *Entry {
		return &Entry{
			Type: types.MustParse("map([]'T, bool) bool", nil),
			Lambda: func(coll []interface{}, body func(interface{}) ([]interface{}, error)) (interface{}, error) {
				for _, x := range coll {
					b, err := predicate(body, x)
					if err != nil {
						return nil, err
					}
					if b {
						return true, nil
					}
				}
				return false, nil
			},
		}
	})
	Register("count", func() *Entry {
		return &Entry{
			Type: types.MustParse("map([]'T, bool) int", nil),
			Lambda: func(coll []interface{}, body func(interface{}) ([]interface{}, error)) (interface{}, error) {
				n := 0
				for _, x := range coll {
					b, err := predicate(body, x)
					if err != nil {
						return nil, err
					}
					if b {
						n++
					}
				}
				return n, nil
			},
		}
	})
}

// predicate runs a bound map body that has a single bool argument.
func predicate(body func(interface{}) ([]interface{}, error), elem interface{}) (bool, error) {
	values, err := body(elem)
	if err != nil {
		return false, err
	}
	if len(values) != 1 {
		return false, fmt.Errorf("expected one value, got %d", len(values))
	}
	return Bool(values[0])
}

func registerInt(name string, fn func(a, b int) int, format types.FormatFunc) {
	Register(name, func() *Entry {
		t := types.MustParse("func(int, int) int", nil)
		t.Fmt = format
		return &Entry{
			Type: t,
			Func: func(args []interface{}) (interface{}, error) {
				a, err := Int(args[0])
				if err != nil {
					return nil, err
				}
				b, err := Int(args[1])
				if err != nil {
					return nil, err
				}
				return fn(a, b), nil
			},
		}
	})
}

func registerCmp(name string, fn func(a, b int) bool) {
	Register(name, func() *Entry {
		t := types.MustParse("func(int, int) bool", nil)
		t.Fmt = Infix
		return &Entry{
			Type: t,
			Func: func(args []interface{}) (interface{}, error) {
				a, err := Int(args[0])
				if err != nil {
					return nil, err
				}
				b, err := Int(args[1])
				if err != nil {
					return nil, err
				}
				return fn(a, b), nil
			},
		}
	})
}

func registerBool(name string, fn func(a, b bool) bool) {
	Register(name, func() *Entry {
		t := types.MustParse("func(bool, bool) bool", nil)
		t.Fmt = Infix
		return &Entry{
			Type: t,
			Func: func(args []interface{}) (interface{}, error) {
				a, err := Bool(args[0])
				if err != nil {
					return nil, err
				}
				b, err := Bool(args[1])
				if err != nil {
					return nil, err
				}
				return fn(a, b), nil
			},
		}
	})
}
