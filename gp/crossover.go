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
	"github.com/purpleidea/tgp/tree"
)

// CxOnePoint exchanges two randomly chosen compatible subtrees rooted at
// internal nodes. Both individuals are changed in place and returned. If no
// exchange is possible they are returned unchanged.
func CxOnePoint(src *random.Source, ind1, ind2 *tree.Individual) (*tree.Individual, *tree.Individual) {
	return cxOnePoint(src, ind1, ind2, tree.Internal)
}

// CxOnePointLeaf is like CxOnePoint, but exchanges two leaves.
func CxOnePointLeaf(src *random.Source, ind1, ind2 *tree.Individual) (*tree.Individual, *tree.Individual) {
	return cxOnePoint(src, ind1, ind2, tree.Terminal)
}

func cxOnePoint(src *random.Source, ind1, ind2 *tree.Individual, pred func(*tree.Node) bool) (*tree.Individual, *tree.Individual) {
	if ind1 == ind2 || ind1.Len() < 2 || ind2.Len() < 2 {
		return ind1, ind2
	}

	pairs := [][2]int{}
	for _, pair := range ind1.CompatibleSwaps(ind2, pred) {
		if pair[0] == 0 || pair[1] == 0 { // roots stay
			continue
		}
		pairs = append(pairs, pair)
	}
	pair, err := random.Choice(src, pairs)
	if err != nil {
		return ind1, ind2
	}
	if err := ind1.SwapSubtrees(pair[0], ind2, pair[1]); err != nil {
		panic("malformed crossover pair") // pairs come from CompatibleSwaps
	}
	return ind1, ind2
}
