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

// Package selection contains selection strategies that work on anything that
// carries a fitness. None of them change the slice they are given.
package selection

import (
	"fmt"
	"sort"

	"github.com/purpleidea/tgp/fitness"
	"github.com/purpleidea/tgp/random"

	"github.com/iancoleman/strcase"
)

// Selector picks k elements from items.
type Selector[T fitness.Haver] func(src *random.Source, items []T, k int) []T

// sorted returns a copy of the items sorted best first. The sort is stable,
// so equal elements keep their order.
func sorted[T fitness.Haver](items []T) []T {
	result := make([]T, len(items))
	copy(result, items)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].GetFitness().Cmp(result[j].GetFitness()) > 0
	})
	return result
}

func clamp(k, n int) int {
	if k < 0 {
		return 0
	}
	if k > n {
		return n
	}
	return k
}

// Best returns the k best items, best first.
func Best[T fitness.Haver](items []T, k int) []T {
	return sorted(items)[:clamp(k, len(items))]
}

// Worst returns the k worst items, worst first.
func Worst[T fitness.Haver](items []T, k int) []T {
	s := sorted(items)
	result := make([]T, 0, clamp(k, len(s)))
	for i := len(s) - 1; i >= 0 && len(result) < cap(result); i-- {
		result = append(result, s[i])
	}
	return result
}

// Random returns k uniformly chosen items, with replacement.
func Random[T fitness.Haver](src *random.Source, items []T, k int) []T {
	result := []T{}
	if len(items) == 0 {
		return result
	}
	for i := 0; i < k; i++ {
		result = append(result, items[src.Intn(len(items))])
	}
	return result
}

// Tournament runs k tournaments between size random items, and returns the
// winner of each.
func Tournament[T fitness.Haver](src *random.Source, items []T, k, size int) []T {
	result := []T{}
	if len(items) == 0 {
		return result
	}
	if size < 1 {
		size = 1
	}
	for i := 0; i < k; i++ {
		aspirants := Random(src, items, size)
		result = append(result, Best(aspirants, 1)[0])
	}
	return result
}

// Roulette spins a roulette k times, where each item gets a slice that is
// proportional to the sum of its weighted values. Items with a sum that is not
// positive never win. If no item has a positive sum, the choice is uniform.
func Roulette[T fitness.Haver](src *random.Source, items []T, k int) []T {
	total := 0.0
	for _, item := range items {
		if sum := item.GetFitness().Sum(); sum > 0 {
			total += sum
		}
	}
	if total <= 0 {
		return Random(src, items, k)
	}

	s := sorted(items)
	result := []T{}
	for i := 0; i < k; i++ {
		item, err := random.WeightedChoice(src, s, func(item T) float64 {
			return item.GetFitness().Sum()
		})
		if err != nil { // not reachable with a positive total
			panic(fmt.Sprintf("roulette: %v", err))
		}
		result = append(result, item)
	}
	return result
}

// New returns a selector by name. The tournament size is only used by the
// tournament selector. Names are matched in snake case, so "Tournament" and
// "tournament" are the same.
func New[T fitness.Haver](name string, size int) (Selector[T], error) {
	switch strcase.ToSnake(name) {
	case "best", "":
		return func(src *random.Source, items []T, k int) []T {
			return Best(items, k)
		}, nil
	case "worst":
		return func(src *random.Source, items []T, k int) []T {
			return Worst(items, k)
		}, nil
	case "random":
		return Random[T], nil
	case "tournament":
		if size < 1 {
			return nil, fmt.Errorf("invalid tournament size: %d", size)
		}
		return func(src *random.Source, items []T, k int) []T {
			return Tournament(src, items, k, size)
		}, nil
	case "roulette":
		return Roulette[T], nil
	}
	return nil, fmt.Errorf("unknown selector: %s", name)
}
