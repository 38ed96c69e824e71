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
	"math"

	"github.com/purpleidea/tgp/catalog"
	"github.com/purpleidea/tgp/interpret"
	"github.com/purpleidea/tgp/tree"
	"github.com/purpleidea/tgp/types"
	"github.com/purpleidea/tgp/util/errwrap"
)

const regressionCatalog = `
builtins:
  - {name: "+"}
  - {name: "-"}
  - {name: "*"}
  - {name: neg}
constants:
  - {name: "0", type: int, value: 0}
  - {name: "1", type: int, value: 1}
  - {name: "2", type: int, value: 2}
variables:
  - {name: x, type: int, weight: 3}
`

// regressionTargets are the functions the regression problem can search for.
var regressionTargets = map[string]func(x int) int{
	"linear":    func(x int) int { return 2*x + 1 },
	"quadratic": func(x int) int { return x*x + x + 1 },
	"cubic":     func(x int) int { return x*x*x - 2*x },
}

func init() {
	Register("regression", func() Problem { return &Regression{} })
}

// Regression is integer symbolic regression of a single variable function.
// The objectives are the total absolute error over the samples and the size
// of the expression, both minimized.
type Regression struct {
	target  func(x int) int
	samples []int
	cat     *catalog.Catalog
	interp  *interpret.Interpreter

	init *Init
}

// Init reads the options `target` (linear, quadratic or cubic) and `samples`,
// the number of points centred on zero.
func (obj *Regression) Init(init *Init) error {
	obj.init = init
	opts := newOptions(init.Options)

	name := opts.str("target", "quadratic")
	target, exists := regressionTargets[name]
	if !exists {
		return fmt.Errorf("unknown regression target `%s`", name)
	}
	obj.target = target

	n, err := opts.int("samples", 21)
	if err != nil {
		return err
	}
	if n < 1 {
		return fmt.Errorf("need at least one sample")
	}
	if err := opts.check(); err != nil {
		return err
	}
	obj.samples = []int{}
	for i := 0; i < n; i++ {
		obj.samples = append(obj.samples, i-n/2)
	}

	spec, err := catalog.ParseSpec([]byte(regressionCatalog))
	if err != nil {
		return err
	}
	if obj.cat, err = spec.Build(); err != nil {
		return errwrap.Wrapf(err, "could not build the catalog")
	}
	obj.interp = &interpret.Interpreter{Catalog: obj.cat}

	if init.Debug {
		init.Logf("regression: target %s over %d samples", name, n)
	}
	return nil
}

// Catalog returns the arithmetic primitives and the variable x.
func (obj *Regression) Catalog() *catalog.Catalog { return obj.cat }

// Type returns int.
func (obj *Regression) Type() *types.Type { return types.TypeInt }

// Weights minimizes both the error and the size.
func (obj *Regression) Weights() []float64 { return []float64{-1, -1} }

// Evaluate returns the total absolute error and the size.
func (obj *Regression) Evaluate(ind *tree.Individual) ([]float64, error) {
	total := 0.0
	vars := make(map[string]interface{}, 1)
	for _, x := range obj.samples {
		vars["x"] = x
		v, err := obj.interp.Eval(ind, vars)
		if err != nil {
			return nil, err
		}
		y, err := catalog.Int(v)
		if err != nil {
			return nil, err
		}
		total += math.Abs(float64(y - obj.target(x)))
	}
	return []float64{total, size(ind)}, nil
}
