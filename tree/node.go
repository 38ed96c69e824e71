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

// Package tree contains the flattened, prefix ordered representation of a
// typed program and the structural edits that keep it well formed.
package tree

import (
	"github.com/purpleidea/tgp/random"
	"github.com/purpleidea/tgp/scope"
	"github.com/purpleidea/tgp/types"
)

// Node is a single element of a tree. Its type is a private copy of the type
// of the expression it was drawn from, so that unification of one node never
// changes another one. Nodes are not changed once they are in a tree, edits
// replace them instead.
type Node struct {
	// Name is the path of the expression this node was drawn from.
	Name string

	// Type is the resolved type of this node.
	Type *types.Type

	// Scope is the scope the node was drawn from.
	Scope *scope.Scope

	// Ext is the bound name this node introduces into the scope of its
	// non-first children. It is only set for bound maps.
	Ext *scope.Extension
}

// NewNode builds a new node from a copy of the given type. If the type is a
// bound map and no extension is given, a fresh bound name is generated from
// the scope.
func NewNode(src *random.Source, name string, typ *types.Type, sc *scope.Scope, ext *scope.Extension) *Node {
	t := typ.Copy()
	node := &Node{
		Name:  name,
		Type:  t,
		Scope: sc,
	}
	if t.Kind == types.KindBoundMap {
		if ext == nil {
			ext = sc.NewExtension(src, t.Element())
		}
		// the bound name always stands for this node's own element type
		node.Ext = &scope.Extension{
			Name: ext.Name,
			Type: t.Element(),
		}
	}
	return node
}

// Arity returns the number of children of this node.
func (obj *Node) Arity() int {
	return obj.Type.Arity()
}

// Extension returns the extension that applies to the child at this argument
// slot. The first argument is never inside the new scope.
func (obj *Node) Extension(arg int) *scope.Extension {
	if arg > 0 {
		return obj.Ext
	}
	return nil
}

// Format renders this node with its already rendered children.
func (obj *Node) Format(args ...string) string {
	bound := ""
	if obj.Ext != nil {
		bound = obj.Ext.Name
	}
	return obj.Type.Format(obj.Name, bound, args...)
}

// Copy returns a copy of this node with a fresh copy of its type. The bound
// name is kept, so the children of a copied bound map stay well scoped.
func (obj *Node) Copy() *Node {
	t := obj.Type.Copy()
	node := &Node{
		Name:  obj.Name,
		Type:  t,
		Scope: obj.Scope,
	}
	if obj.Ext != nil {
		node.Ext = &scope.Extension{
			Name: obj.Ext.Name,
			Type: t.Element(),
		}
	}
	return node
}

// String returns the name and type of this node.
func (obj *Node) String() string {
	return obj.Name + ": " + obj.Type.String()
}

// Terminal is a node predicate that matches leaves.
func Terminal(node *Node) bool {
	return node.Arity() == 0
}

// Internal is a node predicate that matches nodes with children.
func Internal(node *Node) bool {
	return node.Arity() > 0
}
