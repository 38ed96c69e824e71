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

package tree

import (
	"fmt"
	"strings"

	"github.com/purpleidea/tgp/fitness"
	"github.com/purpleidea/tgp/scope"
	"github.com/purpleidea/tgp/types"
	"github.com/purpleidea/tgp/util/errwrap"
)

// ErrInvalidTree is returned when a list of nodes is not exactly one complete
// prefix ordered tree.
const ErrInvalidTree = errwrap.Error("invalid tree")

// Position is the place of a node in its parent. The root has Parent -1.
type Position struct {
	Parent int
	Arg    int
}

// Individual is one candidate program. The nodes are stored in depth first
// prefix order, so every subtree is a contiguous range. The position of each
// node is derived from the arities and is rebuilt after every edit.
type Individual struct {
	nodes     []*Node
	hierarchy []Position
	base      *scope.Scope
	typ       *types.Type
	fitness   *fitness.Fitness
}

// New builds an individual from a list of nodes. The fitness starts out
// invalid with the given weights.
func New(nodes []*Node, base *scope.Scope, typ *types.Type, weights []float64) (*Individual, error) {
	if typ == nil {
		return nil, fmt.Errorf("nil root type")
	}
	if err := Check(nodes); err != nil {
		return nil, err
	}
	obj := &Individual{
		nodes:   nodes,
		base:    base,
		typ:     typ,
		fitness: fitness.New(weights),
	}
	obj.buildHierarchy()
	return obj, nil
}

// Check returns an error unless the nodes form exactly one complete tree. The
// running count of open slots must never reach zero before the last node and
// must be zero after it.
func Check(nodes []*Node) error {
	if len(nodes) == 0 {
		return errwrap.Wrapf(ErrInvalidTree, "no nodes")
	}
	open := 1
	for i, node := range nodes {
		if open == 0 {
			return errwrap.Wrapf(ErrInvalidTree, "extra node at %d", i)
		}
		open += node.Arity() - 1
	}
	if open != 0 {
		return errwrap.Wrapf(ErrInvalidTree, "%d missing children", open)
	}
	return nil
}

func (obj *Individual) buildHierarchy() {
	hierarchy := make([]Position, len(obj.nodes))
	hierarchy[0] = Position{Parent: -1, Arg: -1}
	for i := 1; i < len(obj.nodes); i++ {
		index := i
		acc := 0
		for {
			index--
			if index < 0 {
				panic("malformed tree")
			}
			acc += obj.nodes[index].Arity() - 1
			if acc >= 0 {
				break
			}
		}
		hierarchy[i] = Position{
			Parent: index,
			Arg:    obj.nodes[index].Arity() - acc - 1,
		}
	}
	obj.hierarchy = hierarchy
}

func (obj *Individual) checkIndex(i int) {
	if i < 0 || i >= len(obj.nodes) {
		panic(fmt.Sprintf("tree index %d out of range [0, %d)", i, len(obj.nodes)))
	}
}

// Len returns the number of nodes.
func (obj *Individual) Len() int {
	return len(obj.nodes)
}

// Node returns the node at this index.
func (obj *Individual) Node(i int) *Node {
	obj.checkIndex(i)
	return obj.nodes[i]
}

// Nodes returns the indexes of every node that matches the predicate. A nil
// predicate matches everything.
func (obj *Individual) Nodes(pred func(*Node) bool) []int {
	result := []int{}
	for i, node := range obj.nodes {
		if pred == nil || pred(node) {
			result = append(result, i)
		}
	}
	return result
}

// Position returns the parent and argument slot of the node at this index.
func (obj *Individual) Position(i int) Position {
	obj.checkIndex(i)
	return obj.hierarchy[i]
}

// Type returns the declared root type.
func (obj *Individual) Type() *types.Type {
	return obj.typ
}

// Scope returns the base scope this individual was generated against.
func (obj *Individual) Scope() *scope.Scope {
	return obj.base
}

// GetFitness returns the fitness of this individual.
func (obj *Individual) GetFitness() *fitness.Fitness {
	return obj.fitness
}

// ParentInputType returns the type required at the position of this node. For
// the root this is the declared type of the individual.
func (obj *Individual) ParentInputType(i int) *types.Type {
	obj.checkIndex(i)
	pos := obj.hierarchy[i]
	if pos.Parent == -1 {
		return obj.typ
	}
	return obj.nodes[pos.Parent].Type.Inputs()[pos.Arg]
}

// NodeScope returns the lexical scope of the node at this index. It is the
// base scope extended by the bound name of every ancestor that this node is a
// non-first descendant of.
func (obj *Individual) NodeScope(i int) *scope.Scope {
	obj.checkIndex(i)
	exts := []*scope.Extension{}
	arg := obj.hierarchy[i].Arg
	for p := obj.hierarchy[i].Parent; p >= 0; p = obj.hierarchy[p].Parent {
		if ext := obj.nodes[p].Extension(arg); ext != nil {
			exts = append(exts, ext)
		}
		arg = obj.hierarchy[p].Arg
	}
	sc := obj.base
	for j := len(exts) - 1; j >= 0; j-- { // outermost first
		sc = sc.Extend(exts[j], scope.DefaultExtensionWeight)
	}
	return sc
}

// SearchSubtree returns the half open range [begin, end) of the subtree rooted
// at begin.
func (obj *Individual) SearchSubtree(begin int) (int, int) {
	obj.checkIndex(begin)
	end := begin + 1
	total := obj.nodes[begin].Arity()
	for total > 0 {
		total += obj.nodes[end].Arity() - 1
		end++
	}
	return begin, end
}

// Subtree returns the nodes of the subtree rooted at this index.
func (obj *Individual) Subtree(i int) []*Node {
	begin, end := obj.SearchSubtree(i)
	return obj.nodes[begin:end]
}

// CompatibleSwaps returns every pair of indexes (i in obj, j in other) whose
// subtrees can be exchanged. Both nodes must match the optional predicate,
// they must see the same names, and each must be accepted at the position of
// the other. Pairs where both nodes are roots are excluded.
func (obj *Individual) CompatibleSwaps(other *Individual, pred func(*Node) bool) [][2]int {
	result := [][2]int{}
	for i, inode := range obj.nodes {
		if pred != nil && !pred(inode) {
			continue
		}
		iwant := obj.ParentInputType(i)
		iscope := obj.NodeScope(i)
		for j, jnode := range other.nodes {
			if i == 0 && j == 0 {
				continue
			}
			if pred != nil && !pred(jnode) {
				continue
			}
			if !iscope.IsCompatible(other.NodeScope(j)) {
				continue
			}
			if !iwant.IsCompatibleWith(jnode.Type) {
				continue
			}
			if !other.ParentInputType(j).IsCompatibleWith(inode.Type) {
				continue
			}
			result = append(result, [2]int{i, j})
		}
	}
	return result
}

// SwapSubtrees exchanges the subtree at i with the subtree at j of the other
// individual. Both hierarchies are rebuilt. The other individual may not be
// the same as the receiver.
func (obj *Individual) SwapSubtrees(i int, other *Individual, j int) error {
	if obj == other {
		return fmt.Errorf("can't swap subtrees within one individual")
	}
	if i < 0 || i >= obj.Len() || j < 0 || j >= other.Len() {
		return fmt.Errorf("swap index out of range")
	}
	b1, e1 := obj.SearchSubtree(i)
	b2, e2 := other.SearchSubtree(j)

	sub1 := append([]*Node{}, obj.nodes[b1:e1]...)
	sub2 := append([]*Node{}, other.nodes[b2:e2]...)

	obj.nodes = splice(obj.nodes, b1, e1, sub2)
	other.nodes = splice(other.nodes, b2, e2, sub1)
	obj.buildHierarchy()
	other.buildHierarchy()
	return nil
}

// SwapNode replaces the single node at i. The children are kept, so the new
// node must have the same arity.
func (obj *Individual) SwapNode(i int, node *Node) error {
	if i < 0 || i >= obj.Len() {
		return fmt.Errorf("index %d out of range", i)
	}
	if node.Arity() != obj.nodes[i].Arity() {
		return fmt.Errorf("arity %d does not match %d", node.Arity(), obj.nodes[i].Arity())
	}
	obj.nodes[i] = node
	obj.buildHierarchy()
	return nil
}

// ReplaceSubtree replaces the subtree at i with the given nodes, which must be
// one complete tree. On error the individual is unchanged.
func (obj *Individual) ReplaceSubtree(i int, nodes []*Node) error {
	if i < 0 || i >= obj.Len() {
		return fmt.Errorf("index %d out of range", i)
	}
	if err := Check(nodes); err != nil {
		return errwrap.Wrapf(err, "could not replace subtree at %d", i)
	}
	begin, end := obj.SearchSubtree(i)
	obj.nodes = splice(obj.nodes, begin, end, nodes)
	obj.buildHierarchy()
	return nil
}

// splice returns a new slice with [begin, end) of nodes replaced by sub.
func splice(nodes []*Node, begin, end int, sub []*Node) []*Node {
	result := make([]*Node, 0, len(nodes)-(end-begin)+len(sub))
	result = append(result, nodes[:begin]...)
	result = append(result, sub...)
	result = append(result, nodes[end:]...)
	return result
}

// Height returns the length of the longest path from the root to a leaf. A
// single node has height zero.
func (obj *Individual) Height() int {
	depth := make([]int, len(obj.nodes))
	height := 0
	for i := 1; i < len(obj.nodes); i++ {
		depth[i] = depth[obj.hierarchy[i].Parent] + 1
		if depth[i] > height {
			height = depth[i]
		}
	}
	return height
}

// render folds the prefix array bottom up with the given function.
func (obj *Individual) render(f func(node *Node, args []string) string) string {
	type frame struct {
		node *Node
		args []string
	}
	s := ""
	stack := []*frame{}
	for _, node := range obj.nodes {
		stack = append(stack, &frame{node: node, args: []string{}})
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if len(top.args) != top.node.Arity() {
				break
			}
			stack = stack[:len(stack)-1]
			s = f(top.node, top.args)
			if len(stack) == 0 {
				break
			}
			parent := stack[len(stack)-1]
			parent.args = append(parent.args, s)
		}
	}
	return s
}

// String renders the program through the format of each node's type. This is
// the canonical rendering used to detect duplicates.
func (obj *Individual) String() string {
	return obj.render(func(node *Node, args []string) string {
		return node.Format(args...)
	})
}

// TypeString renders the tree of types instead of the program.
func (obj *Individual) TypeString() string {
	return obj.render(func(node *Node, args []string) string {
		if len(args) == 0 {
			return node.Type.String()
		}
		return node.Type.String() + "{ " + strings.Join(args, " ! ") + " }"
	})
}

// Copy returns a deep copy of the nodes and of the fitness. The base scope is
// shared.
func (obj *Individual) Copy() *Individual {
	nodes := make([]*Node, len(obj.nodes))
	for i, node := range obj.nodes {
		nodes[i] = node.Copy()
	}
	hierarchy := make([]Position, len(obj.hierarchy))
	copy(hierarchy, obj.hierarchy)
	return &Individual{
		nodes:     nodes,
		hierarchy: hierarchy,
		base:      obj.base,
		typ:       obj.typ.Copy(),
		fitness:   obj.fitness.Copy(),
	}
}
