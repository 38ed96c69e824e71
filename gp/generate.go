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

// Package gp contains the type and scope aware operators that build and
// change trees: generation, crossover and mutation.
package gp

import (
	"fmt"

	"github.com/purpleidea/tgp/random"
	"github.com/purpleidea/tgp/scope"
	"github.com/purpleidea/tgp/tree"
	"github.com/purpleidea/tgp/types"
	"github.com/purpleidea/tgp/util/errwrap"
)

const (
	// ErrNoCandidate is returned when nothing in scope fits a slot.
	ErrNoCandidate = errwrap.Error("no candidate for slot")

	// ErrFuncTarget is returned when a tree of function type is requested.
	ErrFuncTarget = errwrap.Error("can't generate a tree of function type")
)

// Condition decides if the branch at this depth stops with a terminal. The
// height is the target height of the whole tree.
type Condition func(height, depth int) bool

// Generator builds a list of nodes in prefix order for a slot of this type.
type Generator func(src *random.Source, sc *scope.Scope, typ *types.Type) ([]*tree.Node, error)

// frame is a slot that is still waiting for a subtree.
type frame struct {
	depth int
	typ   *types.Type
	sc    *scope.Scope
}

// Generate builds a tree for the given type in depth first prefix order. The
// height is drawn uniformly from [min, max]. At every slot the condition
// decides between a terminal and a primitive. If no primitive fits a slot, a
// terminal is used instead, and if nothing fits, an error is returned for
// this attempt. The type of every drawn candidate is unified into its slot
// before the children are generated, so parametric types flow down the tree.
// An explicit stack is used, so deep trees don't grow the call stack.
func Generate(src *random.Source, sc *scope.Scope, typ *types.Type, min, max int, cond Condition) ([]*tree.Node, error) {
	if typ.Resolve().Kind == types.KindFunc || typ.Resolve().Kind == types.KindBoundMap {
		return nil, errwrap.Wrapf(ErrFuncTarget, "type %s", typ)
	}
	height := src.IntRange(min, max)

	nodes := []*tree.Node{}
	stack := []*frame{{depth: 0, typ: typ, sc: sc}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if k := f.typ.Kind; k == types.KindFunc || k == types.KindBoundMap {
			return nil, errwrap.Wrapf(ErrFuncTarget, "slot %s", f.typ)
		}

		var node *tree.Node
		if !cond(height, f.depth) {
			cands := f.sc.Primitives(src, func(n int) bool { return n > 0 }, f.typ, nil)
			if c, err := random.WeightedChoice(src, cands, weight); err == nil {
				node = tree.NewNode(src, c.Path, c.Type, f.sc, nil)
			}
		}
		if node == nil { // terminal, or no primitive fits
			cands := f.sc.Primitives(src, func(n int) bool { return n == 0 }, f.typ, nil)
			c, err := random.WeightedChoice(src, cands, weight)
			if err != nil {
				return nil, errwrap.Wrapf(ErrNoCandidate, "type %s at depth %d", f.typ, f.depth)
			}
			node = tree.NewNode(src, c.Path, c.Type, f.sc, nil)
		}
		node.Type.ApplyTo(f.typ)
		nodes = append(nodes, node)

		in := node.Type.Inputs()
		for arg := len(in) - 1; arg >= 0; arg-- { // reversed, so the first pops first
			stack = append(stack, &frame{
				depth: f.depth + 1,
				typ:   in[arg],
				sc:    f.sc.Extend(node.Extension(arg), scope.DefaultExtensionWeight),
			})
		}
	}
	return nodes, nil
}

func weight(c *scope.Candidate) float64 {
	return c.Weight
}

// GenFull generates a tree where every leaf is at the same depth.
func GenFull(src *random.Source, sc *scope.Scope, typ *types.Type, min, max int) ([]*tree.Node, error) {
	cond := func(height, depth int) bool {
		return depth == height
	}
	return Generate(src, sc, typ, min, max, cond)
}

// GenGrow generates a tree where each branch may stop early, with even odds,
// once it is at least min deep.
func GenGrow(src *random.Source, sc *scope.Scope, typ *types.Type, min, max int) ([]*tree.Node, error) {
	cond := func(height, depth int) bool {
		return depth == height || (depth >= min && src.Float64() < 0.5)
	}
	return Generate(src, sc, typ, min, max, cond)
}

// GenHalfAndHalf uses GenGrow or GenFull with equal probability.
func GenHalfAndHalf(src *random.Source, sc *scope.Scope, typ *types.Type, min, max int) ([]*tree.Node, error) {
	if src.Float64() < 0.5 {
		return GenGrow(src, sc, typ, min, max)
	}
	return GenFull(src, sc, typ, min, max)
}

// FullGenerator returns a Generator that uses GenFull with these depths.
func FullGenerator(min, max int) Generator {
	return func(src *random.Source, sc *scope.Scope, typ *types.Type) ([]*tree.Node, error) {
		return GenFull(src, sc, typ, min, max)
	}
}

// GrowGenerator returns a Generator that uses GenGrow with these depths.
func GrowGenerator(min, max int) Generator {
	return func(src *random.Source, sc *scope.Scope, typ *types.Type) ([]*tree.Node, error) {
		return GenGrow(src, sc, typ, min, max)
	}
}

// HalfAndHalfGenerator returns a Generator that uses GenHalfAndHalf with these
// depths.
func HalfAndHalfGenerator(min, max int) Generator {
	return func(src *random.Source, sc *scope.Scope, typ *types.Type) ([]*tree.Node, error) {
		return GenHalfAndHalf(src, sc, typ, min, max)
	}
}

// RetryGenerate calls gen until it succeeds, at most attempts times. Each
// attempt makes new random draws. The errors of all attempts are returned if
// none of them succeeds.
func RetryGenerate(attempts int, gen func() ([]*tree.Node, error)) ([]*tree.Node, error) {
	if attempts < 1 {
		attempts = 1
	}
	var reterr error
	for i := 0; i < attempts; i++ {
		nodes, err := gen()
		if err == nil {
			return nodes, nil
		}
		reterr = errwrap.Append(reterr, err)
	}
	return nil, errwrap.Wrapf(reterr, "gave up after %d attempts", attempts)
}

// Individual generates a new individual, retrying unsatisfiable draws.
func Individual(src *random.Source, sc *scope.Scope, typ *types.Type, weights []float64, gen Generator, attempts int) (*tree.Individual, error) {
	nodes, err := RetryGenerate(attempts, func() ([]*tree.Node, error) {
		// each attempt gets a fresh copy, since generation binds the type
		return gen(src, sc, typ.Copy())
	})
	if err != nil {
		return nil, err
	}
	return tree.New(nodes, sc, typ, weights)
}

// Population generates n new individuals.
func Population(src *random.Source, sc *scope.Scope, typ *types.Type, weights []float64, gen Generator, attempts, n int) ([]*tree.Individual, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative population size: %d", n)
	}
	result := []*tree.Individual{}
	for i := 0; i < n; i++ {
		ind, err := Individual(src, sc, typ, weights, gen, attempts)
		if err != nil {
			return nil, errwrap.Wrapf(err, "could not generate individual %d", i)
		}
		result = append(result, ind)
	}
	return result, nil
}
