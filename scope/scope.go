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

// Package scope contains the lexical context that tree nodes are drawn from.
// A scope is an immutable chain of named, typed and weighted bindings. Bound
// names introduced by higher order nodes are added by extending a scope,
// which never changes the parent, so sibling subtrees never see each other's
// bound names.
package scope

import (
	"fmt"
	"sort"
	"strings"

	"github.com/purpleidea/tgp/random"
	"github.com/purpleidea/tgp/types"
	"github.com/purpleidea/tgp/util/errwrap"

	"github.com/hashicorp/go-set/v3"
)

const (
	// DefaultWeight is the importance of a binding when none is given.
	DefaultWeight = 1.0

	// DefaultExtensionWeight is the importance of a bound name introduced
	// by a bound map. It is higher than the default so that the bound name
	// is actually used by the body it scopes.
	DefaultExtensionWeight = 10.0

	// BoundNameLength is the length of every generated bound name.
	BoundNameLength = 3

	// ErrDuplicateName is returned when a name is already in the scope.
	ErrDuplicateName = errwrap.Error("name already exists in scope")
)

// reserved are names that are never generated as bound names. They are
// keywords or builtin names in the rendering of most catalogs.
var reserved = set.From([]string{
	"all", "and", "any", "def", "end", "for", "int", "let", "map", "mod",
	"new", "nil", "not", "set", "str", "try", "var", "xor",
})

// Binding is a single named entry in a scope.
type Binding struct {
	Name   string
	Weight float64
	Type   *types.Type
}

// Extension is a fresh bound name together with the type it stands for. It is
// what a bound map node adds to the scope of its non-first children.
type Extension struct {
	Name string
	Type *types.Type
}

// String returns a human readable representation of the extension.
func (obj *Extension) String() string {
	return fmt.Sprintf("%s: %s", obj.Name, obj.Type)
}

// Candidate is an expression that can be drawn from a scope. The path is a
// binding name, optionally followed by dotted record field names.
type Candidate struct {
	Path   string
	Type   *types.Type
	Weight float64
}

// Scope is a link in a chain of bindings. The zero value is not usable, use
// New or Extend to build one.
type Scope struct {
	parent   *Scope
	bindings map[string]*Binding
	order    []string
}

// New returns a new empty root scope.
func New() *Scope {
	return &Scope{
		bindings: make(map[string]*Binding),
		order:    []string{},
	}
}

// Parent returns the scope this one extends, or nil for a root scope.
func (obj *Scope) Parent() *Scope {
	return obj.parent
}

// Add adds a binding to this scope. It errors if the name already exists
// anywhere in the chain. Only add to a scope before extending it, since the
// children share it.
func (obj *Scope) Add(name string, typ *types.Type, weight float64) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}
	if typ == nil {
		return fmt.Errorf("nil type for `%s`", name)
	}
	if obj.Has(name) {
		return errwrap.Wrapf(ErrDuplicateName, "could not add `%s`", name)
	}
	obj.bindings[name] = &Binding{
		Name:   name,
		Weight: weight,
		Type:   typ,
	}
	obj.order = append(obj.order, name)
	return nil
}

// Extend returns a new scope that contains every binding of this one plus the
// bound name of the extension. A nil extension returns the receiver.
func (obj *Scope) Extend(ext *Extension, weight float64) *Scope {
	if ext == nil {
		return obj
	}
	child := &Scope{
		parent: obj,
		bindings: map[string]*Binding{
			ext.Name: {
				Name:   ext.Name,
				Weight: weight,
				Type:   ext.Type,
			},
		},
		order: []string{ext.Name},
	}
	return child
}

// NewExtension returns an extension with a freshly generated bound name for
// the given type. The name is distinct from every name in the chain and from
// the reserved words.
func (obj *Scope) NewExtension(src *random.Source, typ *types.Type) *Extension {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	for {
		b := make([]byte, BoundNameLength)
		for i := range b {
			b[i] = letters[src.Intn(len(letters))]
		}
		name := string(b)
		if reserved.Contains(name) || obj.Has(name) {
			continue
		}
		return &Extension{
			Name: name,
			Type: typ,
		}
	}
}

// Lookup returns the binding with this name from anywhere in the chain.
func (obj *Scope) Lookup(name string) (*Binding, bool) {
	for s := obj; s != nil; s = s.parent {
		if b, exists := s.bindings[name]; exists {
			return b, true
		}
	}
	return nil, false
}

// Has returns true if the name is bound anywhere in the chain.
func (obj *Scope) Has(name string) bool {
	_, exists := obj.Lookup(name)
	return exists
}

// Bindings returns every binding in the chain. The root of the chain comes
// first, and bindings of one link are in insertion order.
func (obj *Scope) Bindings() []*Binding {
	chain := []*Scope{}
	for s := obj; s != nil; s = s.parent {
		chain = append(chain, s)
	}
	result := []*Binding{}
	for i := len(chain) - 1; i >= 0; i-- {
		for _, name := range chain[i].order {
			result = append(result, chain[i].bindings[name])
		}
	}
	return result
}

// Names returns the bound names in the same order as Bindings.
func (obj *Scope) Names() []string {
	names := []string{}
	for _, b := range obj.Bindings() {
		names = append(names, b.Name)
	}
	return names
}

// Primitives returns every expression reachable from this scope, including
// record fields, that passes the filters. The arity filter is mandatory. If
// target is not nil, it must accept the candidate. If params is not nil, the
// candidate must have exactly that many parameters, and each of them must
// accept the corresponding entry.
func (obj *Scope) Primitives(src *random.Source, arity func(int) bool, target *types.Type, params []*types.Type) []*Candidate {
	result := []*Candidate{}
	for _, b := range obj.Bindings() {
		for _, p := range b.Type.ImmediateTypes(src, types.NewExpansion()) {
			if !arity(p.Type.Arity()) {
				continue
			}
			if target != nil && !target.IsCompatibleWith(p.Type) {
				continue
			}
			if params != nil && !paramsCompatible(p.Type, params) {
				continue
			}
			path := b.Name
			if p.Name != "" {
				path = b.Name + "." + p.Name
			}
			result = append(result, &Candidate{
				Path:   path,
				Type:   p.Type,
				Weight: b.Weight,
			})
		}
	}
	return result
}

func paramsCompatible(typ *types.Type, params []*types.Type) bool {
	in := typ.Inputs()
	if len(in) != len(params) {
		return false
	}
	for i, t := range in {
		if !t.IsCompatibleWith(params[i]) {
			return false
		}
	}
	return true
}

// IsCompatible returns true if both scopes bind exactly the same names. A
// subtree can be moved between two positions whose scopes are compatible
// without leaving any of its names unbound.
func (obj *Scope) IsCompatible(other *Scope) bool {
	if obj == other {
		return true
	}
	if other == nil {
		return false
	}
	a := set.From(obj.Names())
	b := set.From(other.Names())
	return a.Equal(b)
}

// String returns a human readable representation of the flattened scope. It
// is sorted to be stable.
func (obj *Scope) String() string {
	s := []string{}
	for _, b := range obj.Bindings() {
		s = append(s, fmt.Sprintf("%s: %s", b.Name, b.Type))
	}
	sort.Strings(s)
	return "scope(" + strings.Join(s, "; ") + ")"
}
