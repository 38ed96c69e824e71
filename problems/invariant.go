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

package problems

import (
	"fmt"

	"github.com/purpleidea/tgp/catalog"
	"github.com/purpleidea/tgp/interpret"
	"github.com/purpleidea/tgp/random"
	"github.com/purpleidea/tgp/tree"
	"github.com/purpleidea/tgp/types"
	"github.com/purpleidea/tgp/util/errwrap"
)

const invariantCatalog = `
records:
  - name: Person
    fields:
      - {name: age, type: int}
      - {name: friends, type: "[]Person"}
builtins:
  - {name: and}
  - {name: or}
  - {name: not}
  - {name: implies}
  - {name: "<"}
  - {name: ">="}
  - {name: "="}
  - {name: "+"}
  - {name: size}
  - {name: includes}
  - {name: forAll, weight: 2}
  - {name: exists, weight: 2}
  - {name: count}
constants:
  - {name: "0", type: int, value: 0}
  - {name: "1", type: int, value: 1}
  - {name: "2", type: int, value: 2}
  - {name: "18", type: int, value: 18}
  - {name: "true", type: bool, value: true}
variables:
  - {name: self, type: Person, weight: 3}
`

// invariantRules are the hidden invariants the problem can search for.
var invariantRules = map[string]func(p *catalog.Object) bool{
	// every friend is an adult
	"adult_friends": func(p *catalog.Object) bool {
		for _, f := range friends(p) {
			if age(f) < 18 {
				return false
			}
		}
		return true
	},
	// more than two friends
	"popular": func(p *catalog.Object) bool {
		return len(friends(p)) > 2
	},
	// an adult with a friend at least as old
	"older_friend": func(p *catalog.Object) bool {
		if age(p) < 18 {
			return false
		}
		for _, f := range friends(p) {
			if age(f) >= age(p) {
				return true
			}
		}
		return false
	},
}

func age(p *catalog.Object) int {
	return p.Fields["age"].(int)
}

func friends(p *catalog.Object) []*catalog.Object {
	result := []*catalog.Object{}
	for _, f := range p.Fields["friends"].([]interface{}) {
		result = append(result, f.(*catalog.Object))
	}
	return result
}

func init() {
	Register("invariant", func() Problem { return &Invariant{} })
}

// Invariant discovers a boolean invariant over a random, cyclic population of
// persons. The objectives are the accuracy against the hidden rule, which is
// maximized, and the size of the expression, which is minimized.
type Invariant struct {
	people []*catalog.Object
	labels []bool
	cat    *catalog.Catalog
	interp *interpret.Interpreter

	init *Init
}

// Init reads the options `rule` (adult_friends, popular or older_friend),
// `people` (the size of the data set) and `friends` (the maximum number of
// friends of one person).
func (obj *Invariant) Init(init *Init) error {
	obj.init = init
	if init.Src == nil {
		return fmt.Errorf("the random source is missing")
	}
	opts := newOptions(init.Options)

	name := opts.str("rule", "adult_friends")
	rule, exists := invariantRules[name]
	if !exists {
		return fmt.Errorf("unknown invariant rule `%s`", name)
	}
	n, err := opts.int("people", 30)
	if err != nil {
		return err
	}
	if n < 2 {
		return fmt.Errorf("need at least two people")
	}
	k, err := opts.int("friends", 4)
	if err != nil {
		return err
	}
	if k < 0 {
		return fmt.Errorf("friends must not be negative")
	}
	if err := opts.check(); err != nil {
		return err
	}

	spec, err := catalog.ParseSpec([]byte(invariantCatalog))
	if err != nil {
		return err
	}
	if obj.cat, err = spec.Build(); err != nil {
		return errwrap.Wrapf(err, "could not build the catalog")
	}
	obj.interp = &interpret.Interpreter{Catalog: obj.cat}

	obj.people = Population(init.Src, n, k)
	obj.labels = make([]bool, n)
	positive := 0
	for i, p := range obj.people {
		obj.labels[i] = rule(p)
		if obj.labels[i] {
			positive++
		}
	}

	if init.Debug {
		init.Logf("invariant: rule %s holds for %d of %d people", name, positive, n)
	}
	return nil
}

// Population returns n persons with random ages, each with up to k random
// friends. Friendship is not symmetric and may form cycles.
func Population(src *random.Source, n, k int) []*catalog.Object {
	people := make([]*catalog.Object, n)
	for i := range people {
		p := catalog.NewObject("Person")
		p.Fields["age"] = src.IntRange(1, 80)
		people[i] = p
	}
	for i, p := range people {
		others := make([]*catalog.Object, 0, n-1)
		for j, o := range people {
			if i != j {
				others = append(others, o)
			}
		}
		list := []interface{}{}
		for _, f := range random.Sample(src, others, src.IntRange(0, min(k, len(others)))) {
			list = append(list, f)
		}
		p.Fields["friends"] = list
	}
	return people
}

// Catalog returns the boolean, integer and collection primitives and the
// variable self.
func (obj *Invariant) Catalog() *catalog.Catalog { return obj.cat }

// Type returns bool.
func (obj *Invariant) Type() *types.Type { return types.TypeBool }

// Weights maximizes the accuracy and minimizes the size.
func (obj *Invariant) Weights() []float64 { return []float64{1, -1} }

// Evaluate returns the fraction of people where the individual agrees with
// the hidden rule, and the size.
func (obj *Invariant) Evaluate(ind *tree.Individual) ([]float64, error) {
	correct := 0
	vars := make(map[string]interface{}, 1)
	for i, p := range obj.people {
		vars["self"] = p
		v, err := obj.interp.Eval(ind, vars)
		if err != nil {
			return nil, err
		}
		b, err := catalog.Bool(v)
		if err != nil {
			return nil, err
		}
		if b == obj.labels[i] {
			correct++
		}
	}
	return []float64{float64(correct) / float64(len(obj.people)), size(ind)}, nil
}
