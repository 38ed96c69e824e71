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

// Package lib is the core logic of the program. It builds every part of a run
// from a config, and runs it.
package lib

import (
	"context"
	"fmt"

	"github.com/purpleidea/tgp/algorithms"
	"github.com/purpleidea/tgp/gp"
	"github.com/purpleidea/tgp/halloffame"
	"github.com/purpleidea/tgp/problems"
	"github.com/purpleidea/tgp/prometheus"
	"github.com/purpleidea/tgp/random"
	"github.com/purpleidea/tgp/selection"
	"github.com/purpleidea/tgp/tree"
	"github.com/purpleidea/tgp/util/errwrap"

	"github.com/google/uuid"
	"github.com/sanity-io/litter"
	"github.com/spf13/afero"
)

// LeafCrossoverProbability is the share of crossovers that exchange leaves
// instead of internal subtrees.
const LeafCrossoverProbability = 0.1

// Main is the main struct for running an evolution.
type Main struct {
	Program string // the name of this program, usually set at compile time
	Version string // the version of this program, usually set at compile time

	Config *Config

	// Fs is where the report is written.
	Fs afero.Fs

	Debug bool
	Logf  func(format string, v ...interface{})
}

// Validate checks the main struct and its config. It sets the defaults of the
// config first.
func (obj *Main) Validate() error {
	if obj.Config == nil {
		return fmt.Errorf("the Config is missing")
	}
	if obj.Logf == nil {
		return fmt.Errorf("the Logf function is missing")
	}
	obj.Config.SetDefaults()
	if err := obj.Config.Validate(); err != nil {
		return errwrap.Wrapf(err, "invalid config")
	}
	if obj.Config.Report != "" && obj.Fs == nil {
		return fmt.Errorf("the Fs is needed to write a report")
	}
	return nil
}

// Run builds the problem, the initial population and the engine, and runs
// the configured loop until it finishes or the context is cancelled. It
// returns the report of the hall of fame.
func (obj *Main) Run(ctx context.Context) (*halloffame.Report, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}
	config := obj.Config
	run := uuid.New().String()
	obj.Logf("main: run %s of %s with seed %d", run, config.Problem, config.Seed)
	if obj.Debug {
		obj.Logf("main: config: %s", litter.Sdump(config))
	}

	src := random.New(config.Seed)

	problem, err := problems.Lookup(config.Problem)
	if err != nil {
		return nil, err
	}
	init := &problems.Init{
		Src:     src,
		Options: config.Options,
		Debug:   obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf("problem: "+format, v...)
		},
	}
	if err := problem.Init(init); err != nil {
		return nil, errwrap.Wrapf(err, "could not init problem `%s`", config.Problem)
	}
	sc, err := problem.Catalog().Scope()
	if err != nil {
		return nil, err
	}
	typ, weights := problem.Type(), problem.Weights()

	gen := gp.HalfAndHalfGenerator(config.MinDepth, config.MaxDepth)
	mutGen := gp.GrowGenerator(config.MutMinDepth, config.MutMaxDepth)

	selector, err := selection.New[*tree.Individual](config.Selection, config.TournamentSize)
	if err != nil {
		return nil, err
	}
	tools := &algorithms.Tools{
		Mate: func(src *random.Source, ind1, ind2 *tree.Individual) (*tree.Individual, *tree.Individual) {
			if src.Float64() < LeafCrossoverProbability {
				return gp.CxOnePointLeaf(src, ind1, ind2)
			}
			return gp.CxOnePoint(src, ind1, ind2)
		},
		Mutate:   Mutate(mutGen),
		Evaluate: problem.Evaluate,
		Select:   selector,
		Population: func(src *random.Source, n int) ([]*tree.Individual, error) {
			return gp.Population(src, sc, typ, weights, gen, config.Attempts, n)
		},
	}

	population, err := tools.Population(src, config.Population)
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not build the initial population")
	}
	obj.Logf("main: built %d individuals", len(population))

	hof := halloffame.New[*tree.Individual](config.HallOfFame)

	var prom *prometheus.Prometheus
	if config.Prometheus {
		prom = &prometheus.Prometheus{
			Listen: config.PrometheusListen,
			Logf: func(format string, v ...interface{}) {
				obj.Logf("prometheus: "+format, v...)
			},
		}
		if err := prom.Init(); err != nil {
			return nil, errwrap.Wrapf(err, "can't initialize prometheus instance")
		}
		if err := prom.Start(); err != nil {
			return nil, errwrap.Wrapf(err, "can't start prometheus instance")
		}
		obj.Logf("main: prometheus listening on %s", prom.Addr())
	}

	engine := &algorithms.Engine{
		Tools: tools,
		Params: &algorithms.Params{
			Mu:          config.Mu,
			Lambda:      config.Lambda,
			Cxpb:        config.Cxpb,
			Mutpb:       config.Mutpb,
			Generations: config.Generations,
			Sprinkle:    config.Sprinkle,
			Dedupe:      config.Dedupe,
		},
		Src:         src,
		HallOfFame:  hof,
		Prometheus:  prom,
		Parallelism: config.Parallelism,
		Debug:       obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf("engine: "+format, v...)
		},
	}

	reterr := obj.evolve(ctx, engine, population)

	if prom != nil {
		if err := prom.Stop(); err != nil {
			reterr = errwrap.Append(reterr, errwrap.Wrapf(err, "can't stop prometheus instance"))
		}
	}

	if best, ok := hof.Get(0); ok {
		obj.Logf("main: best: %s %s", best.GetFitness(), best)
	}
	if config.Report != "" && hof.Len() > 0 {
		if err := hof.WriteReport(obj.Fs, config.Report, run); err != nil {
			reterr = errwrap.Append(reterr, err)
		} else {
			obj.Logf("main: wrote report to %s", config.Report)
		}
	}

	return hof.Report(run), reterr
}

// evolve runs the configured loop.
func (obj *Main) evolve(ctx context.Context, engine *algorithms.Engine, population []*tree.Individual) error {
	switch obj.Config.Algorithm {
	case AlgorithmPlus:
		_, err := engine.MuPlusLambda(ctx, population)
		return err

	case AlgorithmComma:
		_, err := engine.MuCommaLambda(ctx, population)
		return err

	case AlgorithmStream:
		for event := range engine.Stream(ctx, population) {
			if event.Done {
				return event.Err
			}
			if obj.Debug {
				obj.Logf("main: generation %d best: %s", event.Generation, event.Best)
			}
		}
		return ctx.Err() // closed without a final event
	}
	panic(fmt.Sprintf("malformed algorithm: %s", obj.Config.Algorithm)) // validated
}

// Mutate returns a mutation tool that applies one of the mutation operators,
// chosen uniformly. The generator is used for uniform mutation. A slot that
// nothing can fill leaves the individual unchanged.
func Mutate(gen gp.Generator) func(*random.Source, *tree.Individual) (*tree.Individual, error) {
	return func(src *random.Source, ind *tree.Individual) (*tree.Individual, error) {
		switch src.Intn(3) {
		case 0:
			ind, err := gp.MutUniform(src, ind, gen)
			if errwrap.Is(err, gp.ErrNoCandidate) {
				return ind, nil
			}
			return ind, err
		case 1:
			return gp.MutNodeReplacement(src, ind), nil
		default:
			return gp.MutShrink(src, ind), nil
		}
	}
}
