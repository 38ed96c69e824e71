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

// Package algorithms contains the evolutionary loops that tie evaluation,
// archiving, variation and selection together.
package algorithms

import (
	"fmt"

	"github.com/purpleidea/tgp/random"
	"github.com/purpleidea/tgp/selection"
	"github.com/purpleidea/tgp/tree"
	"github.com/purpleidea/tgp/util/errwrap"

	"github.com/hashicorp/go-set/v3"
)

// Operator names, as used for the variation counters.
const (
	OpCrossover    = "crossover"
	OpMutation     = "mutation"
	OpReproduction = "reproduction"
)

// Tools are the problem specific operators that a loop is built from.
type Tools struct {
	// Mate recombines two individuals in place and returns them.
	Mate func(src *random.Source, ind1, ind2 *tree.Individual) (*tree.Individual, *tree.Individual)

	// Mutate changes an individual in place and returns it.
	Mutate func(src *random.Source, ind *tree.Individual) (*tree.Individual, error)

	// Evaluate returns the raw objective values of an individual. It is
	// called concurrently for distinct individuals if the parallelism is
	// larger than one, so it must not share mutable state between calls.
	Evaluate func(ind *tree.Individual) ([]float64, error)

	// Select picks the survivors.
	Select selection.Selector[*tree.Individual]

	// Population generates n new individuals. It is optional and only used
	// to sprinkle fresh individuals into each streaming generation.
	Population func(src *random.Source, n int) ([]*tree.Individual, error)
}

// Validate returns an error if a mandatory tool is missing.
func (obj *Tools) Validate() error {
	if obj.Mate == nil {
		return fmt.Errorf("the Mate tool is missing")
	}
	if obj.Mutate == nil {
		return fmt.Errorf("the Mutate tool is missing")
	}
	if obj.Evaluate == nil {
		return fmt.Errorf("the Evaluate tool is missing")
	}
	if obj.Select == nil {
		return fmt.Errorf("the Select tool is missing")
	}
	return nil
}

// stats counts the offspring of each operator.
type stats map[string]int

// VarOr produces lambda offspring. Each one is independently made by crossover
// of two random parents with probability cxpb, by mutation of one random
// parent with probability mutpb, or else by reproduction of one random parent.
// Crossover and mutation work on copies, so the population is never changed.
// The fitness of an offspring is only invalidated if it renders differently
// than its parent.
func VarOr(src *random.Source, population []*tree.Individual, lambda int, cxpb, mutpb float64, tools *Tools) ([]*tree.Individual, error) {
	offspring, _, err := varOr(src, population, lambda, cxpb, mutpb, tools)
	return offspring, err
}

func varOr(src *random.Source, population []*tree.Individual, lambda int, cxpb, mutpb float64, tools *Tools) ([]*tree.Individual, stats, error) {
	if cxpb < 0 || mutpb < 0 || cxpb+mutpb > 1.0 {
		return nil, nil, fmt.Errorf("the sum of cxpb (%g) and mutpb (%g) must be within [0, 1]", cxpb, mutpb)
	}
	if len(population) == 0 {
		return nil, nil, fmt.Errorf("empty population")
	}

	count := stats{}
	offspring := []*tree.Individual{}
	for i := 0; i < lambda; i++ {
		op := src.Float64()
		switch {
		case op < cxpb && len(population) >= 2:
			parents := random.Sample(src, population, 2)
			ind1, ind2 := parents[0].Copy(), parents[1].Copy()
			before := ind1.String()
			ind1, _ = tools.Mate(src, ind1, ind2)
			if ind1.String() != before {
				ind1.GetFitness().Invalidate()
			}
			offspring = append(offspring, ind1)
			count[OpCrossover]++

		case op < cxpb+mutpb:
			parent, err := random.Choice(src, population)
			if err != nil {
				return nil, nil, err
			}
			ind := parent.Copy()
			before := ind.String()
			ind, err = tools.Mutate(src, ind)
			if err != nil {
				return nil, nil, errwrap.Wrapf(err, "mutation failed")
			}
			if ind.String() != before {
				ind.GetFitness().Invalidate()
			}
			offspring = append(offspring, ind)
			count[OpMutation]++

		default:
			parent, err := random.Choice(src, population)
			if err != nil {
				return nil, nil, err
			}
			offspring = append(offspring, parent)
			count[OpReproduction]++
		}
	}
	return offspring, count, nil
}

// Dedupe returns the individuals without the ones that render the same as an
// earlier one.
func Dedupe(individuals []*tree.Individual) []*tree.Individual {
	seen := set.New[string](len(individuals))
	result := []*tree.Individual{}
	for _, ind := range individuals {
		if !seen.Insert(ind.String()) {
			continue
		}
		result = append(result, ind)
	}
	return result
}
