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

// Package fitness contains the multi objective fitness container that every
// individual carries.
package fitness

import (
	"fmt"
	"strings"
)

// Haver is anything that carries a fitness.
type Haver interface {
	GetFitness() *Fitness
}

// Fitness is a vector of raw objective values together with the weights that
// turn them into comparable values. A positive weight maximizes an objective
// and a negative weight minimizes it. It is valid once values are set.
type Fitness struct {
	weights []float64
	values  []float64 // nil while invalid
}

// New returns a new invalid fitness with these weights.
func New(weights []float64) *Fitness {
	w := make([]float64, len(weights))
	copy(w, weights)
	return &Fitness{
		weights: w,
	}
}

// Weights returns the weights of each objective.
func (obj *Fitness) Weights() []float64 {
	return obj.weights
}

// Values returns the raw values, or nil if the fitness is invalid.
func (obj *Fitness) Values() []float64 {
	return obj.values
}

// SetValues sets the raw values. The length must match the weights.
func (obj *Fitness) SetValues(values []float64) error {
	if len(values) != len(obj.weights) {
		return fmt.Errorf("got %d values for %d weights", len(values), len(obj.weights))
	}
	v := make([]float64, len(values))
	copy(v, values)
	obj.values = v
	return nil
}

// Valid returns true if values have been set.
func (obj *Fitness) Valid() bool {
	return obj.values != nil
}

// Invalidate drops the values, so that the owner is evaluated again.
func (obj *Fitness) Invalidate() {
	obj.values = nil
}

// Weighted returns each value multiplied by its weight. It is nil if the
// fitness is invalid.
func (obj *Fitness) Weighted() []float64 {
	if !obj.Valid() {
		return nil
	}
	w := make([]float64, len(obj.values))
	for i, v := range obj.values {
		w[i] = v * obj.weights[i]
	}
	return w
}

// Sum returns the sum of the weighted values. It is zero if invalid.
func (obj *Fitness) Sum() float64 {
	sum := 0.0
	for _, v := range obj.Weighted() {
		sum += v
	}
	return sum
}

// Cmp compares two fitnesses lexicographically over the weighted values: the
// first objective that differs decides. It returns -1 if obj is worse, 0 if
// equal and 1 if obj is better. An invalid fitness is worse than any valid
// one. It panics if both are valid but have a different number of
// objectives.
func (obj *Fitness) Cmp(other *Fitness) int {
	if !obj.Valid() || !other.Valid() {
		switch {
		case obj.Valid():
			return 1
		case other.Valid():
			return -1
		}
		return 0
	}
	if len(obj.weights) != len(other.weights) {
		panic("malformed fitness comparison")
	}
	a, b := obj.Weighted(), other.Weighted()
	for i := range a {
		if a[i] > b[i] {
			return 1
		}
		if a[i] < b[i] {
			return -1
		}
	}
	return 0
}

// Better returns true if obj is strictly better than other.
func (obj *Fitness) Better(other *Fitness) bool {
	return obj.Cmp(other) > 0
}

// Copy returns a deep copy of this fitness.
func (obj *Fitness) Copy() *Fitness {
	f := New(obj.weights)
	if obj.values != nil {
		f.values = make([]float64, len(obj.values))
		copy(f.values, obj.values)
	}
	return f
}

// String returns a human readable representation of the values.
func (obj *Fitness) String() string {
	if !obj.Valid() {
		return "invalid"
	}
	s := make([]string, len(obj.values))
	for i, v := range obj.values {
		s[i] = fmt.Sprintf("%g", v)
	}
	return "(" + strings.Join(s, ", ") + ")"
}
