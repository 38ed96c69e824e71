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

package algorithms

import (
	"context"
	"fmt"
	"time"

	"github.com/purpleidea/tgp/halloffame"
	"github.com/purpleidea/tgp/prometheus"
	"github.com/purpleidea/tgp/random"
	"github.com/purpleidea/tgp/selection"
	"github.com/purpleidea/tgp/tree"
	"github.com/purpleidea/tgp/util/errwrap"

	"github.com/hashicorp/go-set/v3"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"
)

// DefaultLogInterval is the minimum time between two progress lines when not
// in debug mode.
const DefaultLogInterval = 1 * time.Second

// Params are the numeric parameters of a loop.
type Params struct {
	// Mu is the number of survivors of each generation.
	Mu int

	// Lambda is the number of offspring of each generation.
	Lambda int

	// Cxpb is the probability that an offspring is made by crossover.
	Cxpb float64

	// Mutpb is the probability that an offspring is made by mutation.
	Mutpb float64

	// Generations is the number of generations to run.
	Generations int

	// Sprinkle is the number of fresh individuals added to each streaming
	// generation. It needs the Population tool.
	Sprinkle int

	// Dedupe drops offspring that render the same as an earlier one in the
	// streaming loop.
	Dedupe bool
}

// Validate returns an error if the parameters don't make sense.
func (obj *Params) Validate() error {
	if obj.Mu < 1 {
		return fmt.Errorf("mu must be positive")
	}
	if obj.Lambda < 1 {
		return fmt.Errorf("lambda must be positive")
	}
	if obj.Cxpb < 0 || obj.Mutpb < 0 || obj.Cxpb+obj.Mutpb > 1.0 {
		return fmt.Errorf("the sum of cxpb (%g) and mutpb (%g) must be within [0, 1]", obj.Cxpb, obj.Mutpb)
	}
	if obj.Generations < 0 {
		return fmt.Errorf("generations must not be negative")
	}
	if obj.Sprinkle < 0 {
		return fmt.Errorf("sprinkle must not be negative")
	}
	return nil
}

// Event is sent by the streaming loop once per completed generation, and once
// more with the final population when it is done.
type Event struct {
	// Generation is the number of the completed generation, starting at
	// one. The initial evaluation is generation zero.
	Generation int

	// Best is the best individual seen so far.
	Best *tree.Individual

	// Population is the final population. It is only set when Done.
	Population []*tree.Individual

	// Done is true for the last event.
	Done bool

	// Err is set if the loop stopped because of an error.
	Err error
}

// Engine runs the evolutionary loops. The loop itself is sequential, only the
// evaluation of distinct individuals runs concurrently.
type Engine struct {
	Tools  *Tools
	Params *Params

	// Src is the random source of the loop.
	Src *random.Source

	// HallOfFame is an optional archive of the best individuals.
	HallOfFame *halloffame.HallOfFame[*tree.Individual]

	// Prometheus is an optional metrics instance.
	Prometheus *prometheus.Prometheus

	// Parallelism is the number of concurrent evaluations. Zero or one
	// evaluates sequentially.
	Parallelism int

	Debug bool
	Logf  func(format string, v ...interface{})

	limiter *rate.Limiter
}

// Validate returns an error if the engine is missing something.
func (obj *Engine) Validate() error {
	if obj.Tools == nil {
		return fmt.Errorf("the Tools are missing")
	}
	if err := obj.Tools.Validate(); err != nil {
		return err
	}
	if obj.Params == nil {
		return fmt.Errorf("the Params are missing")
	}
	if err := obj.Params.Validate(); err != nil {
		return err
	}
	if obj.Src == nil {
		return fmt.Errorf("the random source is missing")
	}
	if obj.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative")
	}
	return nil
}

func (obj *Engine) init() error {
	if err := obj.Validate(); err != nil {
		return err
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {} // noop
	}
	obj.limiter = rate.NewLimiter(rate.Every(DefaultLogInterval), 1)
	return nil
}

// mode decides where the survivors are selected from.
type mode int

const (
	modePlus   mode = iota // parents and offspring
	modeComma              // offspring only
	modeStream             // offspring and sprinkled individuals only
)

// MuPlusLambda runs the (mu + lambda) loop. Survivors are selected from the
// parents and the offspring together. The context is checked between
// generations. The last population is returned.
func (obj *Engine) MuPlusLambda(ctx context.Context, population []*tree.Individual) ([]*tree.Individual, error) {
	if err := obj.init(); err != nil {
		return nil, err
	}
	return obj.run(ctx, population, modePlus, nil)
}

// MuCommaLambda runs the (mu, lambda) loop. Survivors are selected from the
// offspring only, so lambda must not be smaller than mu.
func (obj *Engine) MuCommaLambda(ctx context.Context, population []*tree.Individual) ([]*tree.Individual, error) {
	if err := obj.init(); err != nil {
		return nil, err
	}
	if obj.Params.Lambda < obj.Params.Mu {
		return nil, fmt.Errorf("lambda (%d) must not be smaller than mu (%d)", obj.Params.Lambda, obj.Params.Mu)
	}
	return obj.run(ctx, population, modeComma, nil)
}

// Stream runs the loop in a goroutine and sends an event after each completed
// generation, and a final one with the population. Survivors are selected
// from the offspring and any sprinkled individuals. The channel is unbuffered,
// so the loop waits for the consumer between generations. Cancelling the
// context stops the loop before the next generation starts, and the channel
// is closed without a final event. The channel is always closed.
func (obj *Engine) Stream(ctx context.Context, population []*tree.Individual) <-chan *Event {
	ch := make(chan *Event)
	go func() {
		defer close(ch)
		if err := obj.init(); err != nil {
			send(ctx, ch, &Event{Done: true, Err: err})
			return
		}
		if obj.Params.Sprinkle > 0 && obj.Tools.Population == nil {
			err := fmt.Errorf("the Population tool is needed to sprinkle")
			send(ctx, ch, &Event{Done: true, Err: err})
			return
		}
		pop, err := obj.run(ctx, population, modeStream, ch)
		if ctx.Err() != nil {
			return // the consumer is gone
		}
		send(ctx, ch, &Event{
			Generation: obj.Params.Generations,
			Best:       obj.best(pop),
			Population: pop,
			Done:       true,
			Err:        err,
		})
	}()
	return ch
}

// send returns false if the context was cancelled before the event was taken.
func send(ctx context.Context, ch chan<- *Event, event *Event) bool {
	select {
	case ch <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

func (obj *Engine) run(ctx context.Context, population []*tree.Individual, m mode, ch chan<- *Event) ([]*tree.Individual, error) {
	if len(population) == 0 {
		return nil, fmt.Errorf("empty population")
	}
	params := obj.Params

	if _, err := obj.evaluate(ctx, population); err != nil {
		return population, errwrap.Wrapf(err, "initial evaluation failed")
	}
	obj.archive(population)

	for gen := 1; gen <= params.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return population, err
		}

		offspring, count, err := varOr(obj.Src, population, params.Lambda, params.Cxpb, params.Mutpb, obj.Tools)
		if err != nil {
			return population, errwrap.Wrapf(err, "variation failed in generation %d", gen)
		}
		if m == modeStream && params.Sprinkle > 0 {
			fresh, err := obj.Tools.Population(obj.Src, params.Sprinkle)
			if err != nil {
				return population, errwrap.Wrapf(err, "could not sprinkle in generation %d", gen)
			}
			offspring = append(offspring, fresh...)
		}
		if m == modeStream && params.Dedupe {
			offspring = Dedupe(offspring)
		}

		n, err := obj.evaluate(ctx, offspring)
		if err != nil {
			return population, errwrap.Wrapf(err, "evaluation failed in generation %d", gen)
		}
		obj.archive(offspring)

		candidates := offspring
		if m == modePlus {
			candidates = append(append([]*tree.Individual{}, population...), offspring...)
		}
		population = obj.Tools.Select(obj.Src, candidates, params.Mu)
		if len(population) == 0 {
			return population, fmt.Errorf("selection returned no survivors in generation %d", gen)
		}

		best := obj.best(population)
		if obj.Prometheus != nil {
			obj.Prometheus.UpdateGenerationsTotal()
			for op, c := range count {
				for i := 0; i < c; i++ {
					obj.Prometheus.UpdateVariationsTotal(op)
				}
			}
		}
		if obj.Debug || obj.limiter.Allow() {
			obj.Logf("generation %d/%d: evaluated %d, best: %s %s", gen, params.Generations, n, best.GetFitness(), best)
		}

		if ch != nil {
			if !send(ctx, ch, &Event{Generation: gen, Best: best}) {
				return population, ctx.Err()
			}
		}
	}
	return population, nil
}

// best returns the best archived individual, or the best of the population if
// there is no archive.
func (obj *Engine) best(population []*tree.Individual) *tree.Individual {
	if obj.HallOfFame != nil {
		if best, ok := obj.HallOfFame.Get(0); ok {
			return best
		}
	}
	if b := selection.Best(population, 1); len(b) > 0 {
		return b[0]
	}
	return nil
}

func (obj *Engine) archive(individuals []*tree.Individual) {
	if obj.HallOfFame == nil {
		return
	}
	obj.HallOfFame.Update(individuals)
	if obj.Prometheus == nil {
		return
	}
	obj.Prometheus.UpdateHallOfFameSize(obj.HallOfFame.Len())
	if best, ok := obj.HallOfFame.Get(0); ok {
		obj.Prometheus.UpdateBestFitness(best.GetFitness().Weighted())
	}
}

// evaluate sets the fitness of every individual whose fitness is invalid. An
// individual that appears more than once is evaluated once. The values are
// only applied once every evaluation succeeded, so a failed generation leaves
// no individual half evaluated. It returns the number of evaluations.
func (obj *Engine) evaluate(ctx context.Context, individuals []*tree.Individual) (int, error) {
	seen := set.New[*tree.Individual](len(individuals))
	invalid := []*tree.Individual{}
	for _, ind := range individuals {
		if ind.GetFitness().Valid() || !seen.Insert(ind) {
			continue
		}
		invalid = append(invalid, ind)
	}
	if len(invalid) == 0 {
		return 0, nil
	}

	workers := obj.Parallelism
	if workers < 1 {
		workers = 1
	}
	values := make([][]float64, len(invalid))
	p := pool.New().WithMaxGoroutines(workers).WithContext(ctx).WithCancelOnError()
	for i, ind := range invalid {
		i, ind := i, ind
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := obj.Tools.Evaluate(ind)
			if err != nil {
				return errwrap.Wrapf(err, "could not evaluate `%s`", ind)
			}
			values[i] = v
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return 0, err
	}

	for i, ind := range invalid { // check all before changing any
		if n := len(ind.GetFitness().Weights()); len(values[i]) != n {
			return 0, fmt.Errorf("got %d values for %d objectives from `%s`", len(values[i]), n, ind)
		}
	}
	for i, ind := range invalid {
		if err := ind.GetFitness().SetValues(values[i]); err != nil {
			panic("malformed fitness") // lengths were checked above
		}
	}
	if obj.Prometheus != nil {
		obj.Prometheus.UpdateEvaluationsTotal(len(invalid))
	}
	return len(invalid), nil
}
