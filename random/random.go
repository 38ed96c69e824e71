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

// Package random provides the seeded random source that is threaded through
// every operation which needs randomness. There is no package level state, so
// two sources built from the same seed produce the same sequence of draws.
package random

import (
	"fmt"
	"math/rand/v2"

	"github.com/purpleidea/tgp/util/errwrap"
)

// ErrEmpty is returned when a choice is requested from an empty set.
const ErrEmpty = errwrap.Error("choices must not be empty")

// Source is a seedable uniform random source. It is not safe for concurrent
// use, each goroutine that needs randomness must own its own Source.
type Source struct {
	seed uint64
	rng  *rand.Rand
}

// New builds a source from the given seed.
func New(seed uint64) *Source {
	return &Source{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Seed returns the seed this source was built with.
func (obj *Source) Seed() uint64 {
	return obj.seed
}

// Float64 returns a uniform draw in [0, 1).
func (obj *Source) Float64() float64 {
	return obj.rng.Float64()
}

// IntRange returns a uniform integer in the closed range [min, max]. It panics
// if max < min.
func (obj *Source) IntRange(min, max int) int {
	if max < min {
		panic(fmt.Sprintf("random: invalid range [%d, %d]", min, max))
	}
	return min + obj.rng.IntN(max-min+1)
}

// Intn returns a uniform integer in [0, n).
func (obj *Source) Intn(n int) int {
	return obj.rng.IntN(n)
}

// Perm returns a random permutation of [0, n).
func (obj *Source) Perm(n int) []int {
	return obj.rng.Perm(n)
}

// Choice returns a uniformly chosen element.
func Choice[T any](src *Source, choices []T) (T, error) {
	var zero T
	if len(choices) == 0 {
		return zero, ErrEmpty
	}
	return choices[src.Intn(len(choices))], nil
}

// WeightedChoice returns an element chosen with probability proportional to
// its weight. Elements with a non-positive weight are never chosen unless all
// of them are, in which case the choice is uniform.
func WeightedChoice[T any](src *Source, choices []T, weight func(T) float64) (T, error) {
	var zero T
	if len(choices) == 0 {
		return zero, ErrEmpty
	}
	total := 0.0
	for _, c := range choices {
		if w := weight(c); w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return Choice(src, choices)
	}

	r := src.Float64() * total
	sum := 0.0
	for _, c := range choices {
		w := weight(c)
		if w <= 0 {
			continue
		}
		sum += w
		if r < sum {
			return c, nil
		}
	}
	// float rounding can leave r == total, pick the last positive one
	for i := len(choices) - 1; i >= 0; i-- {
		if weight(choices[i]) > 0 {
			return choices[i], nil
		}
	}
	panic("random: unreachable weighted choice")
}

// Sample returns k distinct elements (by position) drawn without replacement.
// If k is larger than the input, every element is returned in random order.
func Sample[T any](src *Source, population []T, k int) []T {
	if k > len(population) {
		k = len(population)
	}
	if k <= 0 {
		return []T{}
	}
	perm := src.Perm(len(population))
	out := make([]T, 0, k)
	for _, i := range perm[:k] {
		out = append(out, population[i])
	}
	return out
}
