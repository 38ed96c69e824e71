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

// Package types provides the type algebra that every tree node is labelled
// with. It is a small closed set of kinds, and each operation on a type is an
// exhaustive switch over those kinds. Unification is one-directional and is
// performed in place through the binding cell of parametric types.
package types

import (
	"fmt"
	"strings"

	"github.com/purpleidea/tgp/random"
)

// AnyName is the name of the atomic type which accepts every other type.
const AnyName = "any"

// Basic types defined here as a convenience. Atomic types are immutable and
// are never copied, so these can be shared freely.
var (
	TypeAny   = NewAtomic(AnyName)
	TypeBool  = NewAtomic("bool")
	TypeInt   = NewAtomic("int")
	TypeFloat = NewAtomic("float")
	TypeStr   = NewAtomic("str")
)

// The Kind represents the variant of each type.
type Kind int

// Each Kind represents a variant in the type algebra.
const (
	KindAtomic Kind = iota
	KindRecord
	KindUnion
	KindCollection
	KindFunc
	KindBoundMap
	KindParam
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAtomic:
		return "atomic"
	case KindRecord:
		return "record"
	case KindUnion:
		return "union"
	case KindCollection:
		return "collection"
	case KindFunc:
		return "func"
	case KindBoundMap:
		return "boundmap"
	case KindParam:
		return "param"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// FormatFunc renders a call of a function type with the given name and the
// already rendered arguments.
type FormatFunc func(name string, args ...string) string

// Type is the datastructure representing any type. It can be recursive, and
// record types may even reference themselves through their fields.
type Type struct {
	Kind Kind

	Name string // if Kind == Atomic, Record or Param

	Map map[string]*Type // if Kind == Record, use Map and Ord (for order)
	Ord []string

	Types []*Type // if Kind == Union

	Val *Type // if Kind == Collection, the element type

	Out *Type      // if Kind == Func or BoundMap, the return type
	In  []*Type    // if Kind == Func or BoundMap, In[0] is a Collection for BoundMap
	Fmt FormatFunc // if Kind == Func, optional display format

	Bound  *Type // if Kind == Param, the optional upper bound
	Actual *Type // if Kind == Param, the binding cell, nil while unbound
}

// NewAtomic returns a new atomic type.
func NewAtomic(name string) *Type {
	return &Type{
		Kind: KindAtomic,
		Name: name,
	}
}

// NewRecord returns a new record type without any fields. Use AddField to add
// them, which allows a record to reference itself.
func NewRecord(name string) *Type {
	return &Type{
		Kind: KindRecord,
		Name: name,
		Map:  make(map[string]*Type),
		Ord:  []string{},
	}
}

// AddField adds or replaces a field of a record type.
func (obj *Type) AddField(name string, typ *Type) {
	if obj.Kind != KindRecord {
		panic("malformed record type")
	}
	if _, exists := obj.Map[name]; !exists {
		obj.Ord = append(obj.Ord, name)
	}
	obj.Map[name] = typ
}

// NewUnion returns a new union of the given types.
func NewUnion(types ...*Type) *Type {
	return &Type{
		Kind:  KindUnion,
		Types: types,
	}
}

// NewCollection returns a new collection with the given element type.
func NewCollection(val *Type) *Type {
	return &Type{
		Kind: KindCollection,
		Val:  val,
	}
}

// NewFunc returns a new function type. The format function may be nil, in
// which case calls are rendered as name(arg1, arg2).
func NewFunc(out *Type, in []*Type, format FormatFunc) *Type {
	return &Type{
		Kind: KindFunc,
		Out:  out,
		In:   in,
		Fmt:  format,
	}
}

// NewBoundMap returns a function type whose first parameter is a collection.
// The element type of that collection is bound to a fresh name inside every
// other argument of a call of this function.
func NewBoundMap(out, coll *Type, in ...*Type) *Type {
	if coll == nil || coll.Kind != KindCollection {
		panic("malformed bound map type")
	}
	return &Type{
		Kind: KindBoundMap,
		Out:  out,
		In:   append([]*Type{coll}, in...),
	}
}

// NewParam returns a new unbound parametric type. The bound is optional.
func NewParam(name string, bound *Type) *Type {
	return &Type{
		Kind:  KindParam,
		Name:  name,
		Bound: bound,
	}
}

// Arity returns the number of arguments a node of this type takes.
func (obj *Type) Arity() int {
	switch obj.Kind {
	case KindFunc, KindBoundMap:
		return len(obj.In)
	}
	return 0
}

// Inputs returns the parameter types. It is empty for anything but functions.
func (obj *Type) Inputs() []*Type {
	switch obj.Kind {
	case KindFunc, KindBoundMap:
		return obj.In
	}
	return nil
}

// Result returns the type of a value of this type once it is called. This is
// the return type for functions and the type itself for everything else.
func (obj *Type) Result() *Type {
	switch obj.Kind {
	case KindFunc, KindBoundMap:
		return obj.Out
	}
	return obj
}

// Element returns the element type that a bound map introduces into scope. It
// returns nil for any other kind.
func (obj *Type) Element() *Type {
	if obj.Kind != KindBoundMap {
		return nil
	}
	return obj.In[0].Val
}

// Resolve follows the binding cells of parametric types and returns the first
// type which is not a bound parametric.
func (obj *Type) Resolve() *Type {
	typ := obj
	for typ != nil && typ.Kind == KindParam && typ.Actual != nil {
		typ = typ.Actual
	}
	return typ
}

// String returns the textual representation for this type. Records print as
// their name, so this terminates on recursive records.
func (obj *Type) String() string {
	if obj == nil {
		return "<nil>"
	}
	switch obj.Kind {
	case KindAtomic, KindRecord:
		return obj.Name

	case KindUnion:
		s := make([]string, len(obj.Types))
		for i, t := range obj.Types {
			s[i] = t.String()
		}
		return "(" + strings.Join(s, " | ") + ")"

	case KindCollection:
		if obj.Val == nil {
			panic("malformed collection type")
		}
		return "[]" + obj.Val.String()

	case KindFunc, KindBoundMap:
		if obj.Out == nil {
			panic("malformed func type")
		}
		s := make([]string, len(obj.In))
		for i, t := range obj.In {
			s[i] = t.String()
		}
		prefix := "func"
		if obj.Kind == KindBoundMap {
			prefix = "map"
		}
		return fmt.Sprintf("%s(%s) %s", prefix, strings.Join(s, ", "), obj.Out.String())

	case KindParam:
		if obj.Actual != nil {
			return obj.Actual.String()
		}
		if obj.Bound != nil {
			return "'" + obj.Name + "<:" + obj.Bound.String()
		}
		return "'" + obj.Name
	}

	panic("malformed type")
}

// Format renders a node of this type with the given name. The bound name is
// only used by bound maps, and args are the already rendered children.
func (obj *Type) Format(name, bound string, args ...string) string {
	switch obj.Kind {
	case KindFunc:
		if obj.Fmt != nil {
			return obj.Fmt(name, args...)
		}
		return name + "(" + strings.Join(args, ", ") + ")"

	case KindBoundMap:
		if len(args) == 0 {
			return name
		}
		return args[0] + "->" + name + "(" + bound + " | " + strings.Join(args[1:], ", ") + ")"

	case KindParam:
		if obj.Actual != nil {
			return obj.Actual.Format(name, bound, args...)
		}
	}
	return name
}

// IsCompatibleWith returns whether a slot of this type accepts a value of the
// given type. This is not commutative. A function type is reduced to the type
// it returns, and a parametric type to its binding or upper bound, and an
// unbound, unrestricted parametric is accepted everywhere.
func (obj *Type) IsCompatibleWith(typ *Type) bool {
	return obj.compatible(typ, make(map[[2]*Type]struct{}))
}

func (obj *Type) compatible(typ *Type, seen map[[2]*Type]struct{}) bool {
	if obj == nil || typ == nil {
		return false
	}

	switch typ.Kind {
	case KindFunc, KindBoundMap:
		return obj.compatible(typ.Out, seen)
	case KindParam:
		if typ.Actual != nil {
			return obj.compatible(typ.Actual, seen)
		}
		if typ.Bound != nil {
			return obj.compatible(typ.Bound, seen)
		}
		return true
	}

	switch obj.Kind {
	case KindAtomic:
		if obj.Name == AnyName {
			return true
		}
		return typ.Kind == KindAtomic && obj.Name == typ.Name

	case KindRecord:
		if obj == typ {
			return true
		}
		if typ.Kind != KindRecord {
			return false
		}
		// recursive records are compared coinductively
		key := [2]*Type{obj, typ}
		if _, exists := seen[key]; exists {
			return true
		}
		seen[key] = struct{}{}
		defer delete(seen, key)
		for _, k := range obj.Ord {
			t2, exists := typ.Map[k]
			if !exists {
				return false
			}
			if !obj.Map[k].compatible(t2, seen) {
				return false
			}
		}
		return true

	case KindUnion:
		if typ.Kind == KindUnion {
			for _, t1 := range obj.Types {
				found := false
				for _, t2 := range typ.Types {
					if t1.compatible(t2, seen) {
						found = true
						break
					}
				}
				if !found {
					return false
				}
			}
			return true
		}
		for _, t := range obj.Types {
			if t.compatible(typ, seen) {
				return true
			}
		}
		return false

	case KindCollection:
		return typ.Kind == KindCollection && obj.Val.compatible(typ.Val, seen)

	case KindFunc, KindBoundMap:
		// a probe never has a function kind here, see above
		return false

	case KindParam:
		if obj.Actual != nil {
			return obj.Actual.compatible(typ, seen)
		}
		if obj.Bound != nil {
			return obj.Bound.compatible(typ, seen)
		}
		return true
	}

	panic("malformed type")
}

// ApplyTo unifies this type into the target. An unbound parametric target is
// bound to this type, an unbound parametric receiver is bound to the target,
// and structurally matching collections and functions recurse into their
// corresponding parts. A function applied to anything else applies its return
// type. Anything that does not match is silently ignored, so callers must
// check compatibility first if they depend on a binding.
func (obj *Type) ApplyTo(target *Type) {
	if obj == nil || target == nil || obj == target {
		return
	}

	if target.Kind == KindParam {
		if target.Actual != nil {
			obj.ApplyTo(target.Actual)
			return
		}
		target.bind(obj)
		return
	}

	switch obj.Kind {
	case KindParam:
		if obj.Actual != nil {
			obj.Actual.ApplyTo(target)
			return
		}
		obj.bind(target)

	case KindCollection:
		if target.Kind == KindCollection {
			obj.Val.ApplyTo(target.Val)
		}

	case KindFunc, KindBoundMap:
		if target.Kind == KindFunc || target.Kind == KindBoundMap {
			if len(obj.In) != len(target.In) {
				return
			}
			obj.Out.ApplyTo(target.Out)
			for i, t := range obj.In {
				t.ApplyTo(target.In[i])
			}
			return
		}
		obj.Out.ApplyTo(target)
	}
}

// bind stores the type in the binding cell of this unbound parametric. It is a
// no-op if that would violate the upper bound or create a cycle.
func (obj *Type) bind(typ *Type) {
	typ = typ.Result().Resolve()
	if typ == nil || typ == obj {
		return
	}
	if obj.Bound != nil && !obj.Bound.IsCompatibleWith(typ) {
		return
	}
	if occurs(obj, typ, make(map[*Type]struct{})) {
		return
	}
	obj.Actual = typ
}

// occurs is the occurs check. It returns true if the parametric appears inside
// of the type, following bindings and guarding against recursive records.
func occurs(param, typ *Type, seen map[*Type]struct{}) bool {
	if typ == nil {
		return false
	}
	if typ == param {
		return true
	}
	if _, exists := seen[typ]; exists {
		return false
	}
	seen[typ] = struct{}{}

	switch typ.Kind {
	case KindRecord:
		for _, k := range typ.Ord {
			if occurs(param, typ.Map[k], seen) {
				return true
			}
		}
	case KindUnion:
		for _, t := range typ.Types {
			if occurs(param, t, seen) {
				return true
			}
		}
	case KindCollection:
		return occurs(param, typ.Val, seen)
	case KindFunc, KindBoundMap:
		if occurs(param, typ.Out, seen) {
			return true
		}
		for _, t := range typ.In {
			if occurs(param, t, seen) {
				return true
			}
		}
	case KindParam:
		return occurs(param, typ.Actual, seen)
	}
	return false
}

// Copy returns a deep copy of this type. Every type reachable from the
// receiver is copied exactly once, so recursive records stay recursive and
// subtypes that were shared stay shared in the copy. Bindings are copied too.
// A type without any parametric in it can never change, so it is returned as
// is.
func (obj *Type) Copy() *Type {
	if obj.IsConcrete() {
		return obj
	}
	return obj.copy(make(map[*Type]*Type))
}

// IsConcrete returns true if no parametric type is reachable from this type.
func (obj *Type) IsConcrete() bool {
	return !hasParam(obj, make(map[*Type]struct{}))
}

func hasParam(typ *Type, seen map[*Type]struct{}) bool {
	if typ == nil {
		return false
	}
	if typ.Kind == KindParam {
		return true
	}
	if _, exists := seen[typ]; exists {
		return false
	}
	seen[typ] = struct{}{}

	switch typ.Kind {
	case KindRecord:
		for _, k := range typ.Ord {
			if hasParam(typ.Map[k], seen) {
				return true
			}
		}
	case KindUnion:
		for _, t := range typ.Types {
			if hasParam(t, seen) {
				return true
			}
		}
	case KindCollection:
		return hasParam(typ.Val, seen)
	case KindFunc, KindBoundMap:
		if hasParam(typ.Out, seen) {
			return true
		}
		for _, t := range typ.In {
			if hasParam(t, seen) {
				return true
			}
		}
	}
	return false
}

func (obj *Type) copy(cache map[*Type]*Type) *Type {
	if obj == nil {
		return nil
	}
	if obj.Kind == KindAtomic {
		return obj
	}
	if c, exists := cache[obj]; exists {
		return c
	}

	typ := &Type{
		Kind: obj.Kind,
		Name: obj.Name,
		Fmt:  obj.Fmt,
	}
	cache[obj] = typ // before recursing, so that cycles find it

	switch obj.Kind {
	case KindRecord:
		typ.Map = make(map[string]*Type, len(obj.Map))
		typ.Ord = make([]string, len(obj.Ord))
		copy(typ.Ord, obj.Ord)
		for _, k := range obj.Ord {
			typ.Map[k] = obj.Map[k].copy(cache)
		}

	case KindUnion:
		typ.Types = make([]*Type, len(obj.Types))
		for i, t := range obj.Types {
			typ.Types[i] = t.copy(cache)
		}

	case KindCollection:
		typ.Val = obj.Val.copy(cache)

	case KindFunc, KindBoundMap:
		typ.Out = obj.Out.copy(cache)
		typ.In = make([]*Type, len(obj.In))
		for i, t := range obj.In {
			typ.In[i] = t.copy(cache)
		}

	case KindParam:
		typ.Bound = obj.Bound.copy(cache)
		typ.Actual = obj.Actual.copy(cache)

	default:
		panic("malformed type")
	}

	return typ
}

// Expansion is the decaying acceptance probability that keeps the unrolling
// of recursive records finite. The same Expansion must be shared by every step
// of one traversal.
type Expansion struct {
	// P is the current acceptance probability. A record is only expanded
	// if a uniform draw is not greater than P.
	P float64

	// Divisor divides P after each accepted expansion. It must be > 1.
	Divisor float64
}

// NewExpansion returns the default expansion policy. The first two records on
// any traversal are always expanded, and every following one with half the
// probability of the previous one.
func NewExpansion() *Expansion {
	return &Expansion{
		P:       2,
		Divisor: 2,
	}
}

// Path is a name path, relative to some binding, together with its type. The
// empty name denotes the binding itself.
type Path struct {
	Name string
	Type *Type
}

// ImmediateTypes enumerates every name path that is reachable from a value of
// this type through record fields. Termination on recursive records is a
// matter of probability, not of depth: every expanded record lowers the
// chance that the next one is expanded.
func (obj *Type) ImmediateTypes(src *random.Source, exp *Expansion) []Path {
	typ := obj.Resolve()
	if typ.Kind != KindRecord {
		return []Path{{Name: "", Type: typ}}
	}

	if exp != nil {
		if src.Float64() > exp.P {
			return []Path{}
		}
		div := exp.Divisor
		if div <= 1 {
			div = 2
		}
		exp.P = exp.P / div
	}

	result := []Path{}
	for _, k := range typ.Ord {
		for _, p := range typ.Map[k].ImmediateTypes(src, exp) {
			name := k
			if p.Name != "" {
				name = k + "." + p.Name
			}
			result = append(result, Path{Name: name, Type: p.Type})
		}
	}
	result = append(result, Path{Name: "", Type: typ})
	return result
}
