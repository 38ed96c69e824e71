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

package gp

import (
	"github.com/purpleidea/tgp/random"
	"github.com/purpleidea/tgp/scope"
	"github.com/purpleidea/tgp/tree"
	"github.com/purpleidea/tgp/types"
	"github.com/purpleidea/tgp/util/errwrap"
)

// MutUniform replaces the subtree at a random non-root position with a new
// subtree from expr. It is generated for the type required at that position
// and against the scope of that position. The individual is changed in place.
// A failed generation leaves it unchanged and returns the error.
func MutUniform(src *random.Source, ind *tree.Individual, expr Generator) (*tree.Individual, error) {
	if ind.Len() < 2 {
		return ind, nil
	}
	i := src.IntRange(1, ind.Len()-1)
	nodes, err := expr(src, ind.NodeScope(i), ind.ParentInputType(i))
	if err != nil {
		return ind, errwrap.Wrapf(err, "could not generate a subtree at %d", i)
	}
	if err := ind.ReplaceSubtree(i, nodes); err != nil {
		return ind, err
	}
	return ind, nil
}

// MutNodeReplacement replaces the node at a random non-root position, but not
// its children, with another expression from its scope. The replacement has
// the same arity and parameters that are mutually compatible with the old
// ones. A bound map is only replaced by a bound map, and it keeps the bound
// name so that its children stay well scoped. If there is no replacement the
// individual is unchanged.
func MutNodeReplacement(src *random.Source, ind *tree.Individual) *tree.Individual {
	if ind.Len() < 2 {
		return ind
	}
	i := src.IntRange(1, ind.Len()-1)
	old := ind.Node(i)
	sc := ind.NodeScope(i)
	slot := ind.ParentInputType(i)

	arity := func(n int) bool { return n == old.Arity() }
	cands := []*scope.Candidate{}
	for _, c := range sc.Primitives(src, arity, slot, nil) {
		if c.Path == old.Name {
			continue
		}
		if !replaceable(old.Type, c.Type) {
			continue
		}
		cands = append(cands, c)
	}
	children := []int{}
	for j := i + 1; j < ind.Len(); j++ {
		if ind.Position(j).Parent == i {
			children = append(children, j)
		}
	}

	// the first candidate that fits, in random order, is a uniform pick
	for _, k := range src.Perm(len(cands)) {
		c := cands[k]
		node := tree.NewNode(src, c.Path, c.Type, sc, old.Ext)
		in := node.Type.Inputs()
		ok := true
		for _, j := range children {
			arg := ind.Position(j).Arg
			child := ind.Node(j).Type
			child.Copy().ApplyTo(in[arg]) // bind the new node, not the child
			if !in[arg].IsCompatibleWith(child) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		node.Type.ApplyTo(slot)
		if !slot.IsCompatibleWith(node.Type) {
			continue
		}

		if err := ind.SwapNode(i, node); err != nil {
			panic("malformed node replacement") // arity was filtered above
		}
		return ind
	}
	return ind
}

// replaceable returns true if a node of type b can take the place of a node of
// type a and keep its children.
func replaceable(a, b *types.Type) bool {
	if (a.Kind == types.KindBoundMap) != (b.Kind == types.KindBoundMap) {
		return false
	}
	ain, bin := a.Inputs(), b.Inputs()
	if len(ain) != len(bin) {
		return false
	}
	for k := range ain {
		if !ain[k].IsCompatibleWith(bin[k]) || !bin[k].IsCompatibleWith(ain[k]) {
			return false
		}
	}
	return true
}

// MutShrink replaces the subtree of a random internal node with a single
// terminal that fits its position. This counters bloat. If there is no such
// terminal the individual is unchanged.
func MutShrink(src *random.Source, ind *tree.Individual) *tree.Individual {
	if ind.Len() < 2 {
		return ind
	}
	i, err := random.Choice(src, ind.Nodes(tree.Internal))
	if err != nil {
		return ind
	}
	sc := ind.NodeScope(i)
	slot := ind.ParentInputType(i)

	cands := sc.Primitives(src, func(n int) bool { return n == 0 }, slot, nil)
	c, err := random.WeightedChoice(src, cands, weight)
	if err != nil {
		return ind
	}
	node := tree.NewNode(src, c.Path, c.Type, sc, nil)
	node.Type.ApplyTo(slot)

	if err := ind.ReplaceSubtree(i, []*tree.Node{node}); err != nil {
		panic("malformed shrink") // a single terminal is always a tree
	}
	return ind
}
