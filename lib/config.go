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

package lib

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/purpleidea/tgp/prometheus"
	"github.com/purpleidea/tgp/selection"
	"github.com/purpleidea/tgp/tree"
	"github.com/purpleidea/tgp/util"
	"github.com/purpleidea/tgp/util/errwrap"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

const (
	// AlgorithmPlus selects survivors from the parents and the offspring.
	AlgorithmPlus = "plus"

	// AlgorithmComma selects survivors from the offspring only.
	AlgorithmComma = "comma"

	// AlgorithmStream is the comma loop that streams its progress, and can
	// sprinkle fresh individuals into each generation.
	AlgorithmStream = "stream"
)

// These are the defaults used for the fields that are left unset.
const (
	DefaultProblem          = "regression"
	DefaultAlgorithm        = AlgorithmPlus
	DefaultPopulation       = 100
	DefaultGenerations      = 40
	DefaultCxpb             = 0.5
	DefaultMutpb            = 0.2
	DefaultMinDepth         = 1
	DefaultMaxDepth         = 4
	DefaultMutMaxDepth      = 2
	DefaultSelection        = "tournament"
	DefaultTournamentSize   = 3
	DefaultHallOfFame       = 10
	DefaultParallelism      = 1
	DefaultAttempts         = 20
	DefaultPrometheusListen = prometheus.DefaultPrometheusListen
)

// Config is the configuration of a run. It can be read from a file, and is
// also embedded in the command line arguments. Unset fields get a default.
type Config struct {
	Seed uint64 `arg:"--seed" yaml:"seed" toml:"seed" help:"seed of the random source"`

	Problem string            `arg:"--problem" yaml:"problem" toml:"problem" help:"name of the problem to evolve"`
	Options map[string]string `arg:"--option" yaml:"options" toml:"options" help:"problem options as key=value"`

	Algorithm   string  `arg:"--algorithm" yaml:"algorithm" toml:"algorithm" help:"loop to run: plus, comma or stream"`
	Population  int     `arg:"--population" yaml:"population" toml:"population" help:"size of the initial population"`
	Mu          int     `arg:"--mu" yaml:"mu" toml:"mu" help:"survivors per generation (default population)"`
	Lambda      int     `arg:"--lambda" yaml:"lambda" toml:"lambda" help:"offspring per generation (default twice mu)"`
	Cxpb        float64 `arg:"--cxpb" yaml:"cxpb" toml:"cxpb" help:"crossover probability"`
	Mutpb       float64 `arg:"--mutpb" yaml:"mutpb" toml:"mutpb" help:"mutation probability"`
	Generations int     `arg:"--generations" yaml:"generations" toml:"generations" help:"number of generations"`

	MinDepth    int `arg:"--min-depth" yaml:"min_depth" toml:"min_depth" help:"minimum height of initial trees"`
	MaxDepth    int `arg:"--max-depth" yaml:"max_depth" toml:"max_depth" help:"maximum height of initial trees"`
	MutMinDepth int `arg:"--mut-min-depth" yaml:"mut_min_depth" toml:"mut_min_depth" help:"minimum height of mutated subtrees"`
	MutMaxDepth int `arg:"--mut-max-depth" yaml:"mut_max_depth" toml:"mut_max_depth" help:"maximum height of mutated subtrees"`
	Attempts    int `arg:"--attempts" yaml:"attempts" toml:"attempts" help:"generation attempts per individual"`

	Selection      string `arg:"--selection" yaml:"selection" toml:"selection" help:"survivor selection: best, worst, random, tournament or roulette"`
	TournamentSize int    `arg:"--tournament-size" yaml:"tournament_size" toml:"tournament_size" help:"size of each tournament"`

	HallOfFame  int    `arg:"--hall-of-fame" yaml:"hall_of_fame" toml:"hall_of_fame" help:"number of best individuals to keep"`
	Parallelism int    `arg:"--parallelism" yaml:"parallelism" toml:"parallelism" help:"concurrent evaluations"`
	Sprinkle    int    `arg:"--sprinkle" yaml:"sprinkle" toml:"sprinkle" help:"fresh individuals per streaming generation"`
	Dedupe      bool   `arg:"--dedupe" yaml:"dedupe" toml:"dedupe" help:"drop duplicate offspring when streaming"`
	Report      string `arg:"--report" yaml:"report" toml:"report" help:"path of the yaml report to write"`

	Prometheus       bool   `arg:"--prometheus" yaml:"prometheus" toml:"prometheus" help:"start a prometheus instance"`
	PrometheusListen string `arg:"--prometheus-listen" yaml:"prometheus_listen" toml:"prometheus_listen" help:"specify prometheus instance binding"`
}

// LoadConfig reads a config file. The format is chosen by the extension,
// either yaml (.yaml or .yml) or toml (.toml). Unknown keys are an error.
func LoadConfig(fs afero.Fs, name string) (*Config, error) {
	data, err := util.ReadFile(fs, name)
	if err != nil {
		return nil, err
	}
	config := &Config{}
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".yaml", ".yml":
		if err := yaml.UnmarshalStrict(data, config); err != nil {
			return nil, errwrap.Wrapf(err, "could not parse yaml config `%s`", name)
		}

	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(config)
		if err != nil {
			return nil, errwrap.Wrapf(err, "could not parse toml config `%s`", name)
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return nil, fmt.Errorf("unknown keys %v in toml config `%s`", keys, name)
		}

	default:
		return nil, fmt.Errorf("unknown config format `%s` of `%s`", ext, name)
	}
	return config, nil
}

// Merge copies every field that is set in other into this config. Flags are
// merged over a config file this way.
func (obj *Config) Merge(other *Config) {
	if other.Seed != 0 {
		obj.Seed = other.Seed
	}
	if other.Problem != "" {
		obj.Problem = other.Problem
	}
	if len(other.Options) > 0 {
		if obj.Options == nil {
			obj.Options = make(map[string]string)
		}
		for k, v := range other.Options {
			obj.Options[k] = v
		}
	}
	if other.Algorithm != "" {
		obj.Algorithm = other.Algorithm
	}
	mergeInt(&obj.Population, other.Population)
	mergeInt(&obj.Mu, other.Mu)
	mergeInt(&obj.Lambda, other.Lambda)
	if other.Cxpb != 0 {
		obj.Cxpb = other.Cxpb
	}
	if other.Mutpb != 0 {
		obj.Mutpb = other.Mutpb
	}
	mergeInt(&obj.Generations, other.Generations)
	mergeInt(&obj.MinDepth, other.MinDepth)
	mergeInt(&obj.MaxDepth, other.MaxDepth)
	mergeInt(&obj.MutMinDepth, other.MutMinDepth)
	mergeInt(&obj.MutMaxDepth, other.MutMaxDepth)
	mergeInt(&obj.Attempts, other.Attempts)
	if other.Selection != "" {
		obj.Selection = other.Selection
	}
	mergeInt(&obj.TournamentSize, other.TournamentSize)
	mergeInt(&obj.HallOfFame, other.HallOfFame)
	mergeInt(&obj.Parallelism, other.Parallelism)
	mergeInt(&obj.Sprinkle, other.Sprinkle)
	obj.Dedupe = obj.Dedupe || other.Dedupe
	if other.Report != "" {
		obj.Report = other.Report
	}
	obj.Prometheus = obj.Prometheus || other.Prometheus
	if other.PrometheusListen != "" {
		obj.PrometheusListen = other.PrometheusListen
	}
}

func mergeInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

// SetDefaults fills every unset field with its default. When both
// probabilities are zero, both get their default.
func (obj *Config) SetDefaults() {
	if obj.Problem == "" {
		obj.Problem = DefaultProblem
	}
	if obj.Algorithm == "" {
		obj.Algorithm = DefaultAlgorithm
	}
	if obj.Population == 0 {
		obj.Population = DefaultPopulation
	}
	if obj.Mu == 0 {
		obj.Mu = obj.Population
	}
	if obj.Lambda == 0 {
		obj.Lambda = 2 * obj.Mu
	}
	if obj.Cxpb == 0 && obj.Mutpb == 0 {
		obj.Cxpb, obj.Mutpb = DefaultCxpb, DefaultMutpb
	}
	if obj.Generations == 0 {
		obj.Generations = DefaultGenerations
	}
	if obj.MinDepth == 0 && obj.MaxDepth == 0 {
		obj.MinDepth, obj.MaxDepth = DefaultMinDepth, DefaultMaxDepth
	}
	if obj.MutMaxDepth == 0 {
		obj.MutMaxDepth = DefaultMutMaxDepth
	}
	if obj.Attempts == 0 {
		obj.Attempts = DefaultAttempts
	}
	if obj.Selection == "" {
		obj.Selection = DefaultSelection
	}
	if obj.TournamentSize == 0 {
		obj.TournamentSize = DefaultTournamentSize
	}
	if obj.HallOfFame == 0 {
		obj.HallOfFame = DefaultHallOfFame
	}
	if obj.Parallelism == 0 {
		obj.Parallelism = DefaultParallelism
	}
	if obj.PrometheusListen == "" {
		obj.PrometheusListen = DefaultPrometheusListen
	}
}

// Validate returns an error if the config does not make sense. It collects
// every problem it finds.
func (obj *Config) Validate() error {
	var reterr error
	add := func(format string, v ...interface{}) {
		reterr = errwrap.Append(reterr, fmt.Errorf(format, v...))
	}

	if obj.Problem == "" {
		add("the problem is missing")
	}
	switch obj.Algorithm {
	case AlgorithmPlus, AlgorithmComma, AlgorithmStream:
	default:
		add("unknown algorithm `%s`", obj.Algorithm)
	}
	if obj.Population < 1 {
		add("population must be positive")
	}
	if obj.Mu < 1 || obj.Lambda < 1 {
		add("mu and lambda must be positive")
	}
	if obj.Algorithm != AlgorithmPlus && obj.Lambda < obj.Mu {
		add("lambda (%d) must not be smaller than mu (%d) for the %s algorithm", obj.Lambda, obj.Mu, obj.Algorithm)
	}
	if obj.Cxpb < 0 || obj.Mutpb < 0 || obj.Cxpb+obj.Mutpb > 1.0 {
		add("the sum of cxpb (%g) and mutpb (%g) must be within [0, 1]", obj.Cxpb, obj.Mutpb)
	}
	if obj.Generations < 0 {
		add("generations must not be negative")
	}
	if obj.MinDepth < 0 || obj.MinDepth > obj.MaxDepth {
		add("need 0 <= min depth (%d) <= max depth (%d)", obj.MinDepth, obj.MaxDepth)
	}
	if obj.MutMinDepth < 0 || obj.MutMinDepth > obj.MutMaxDepth {
		add("need 0 <= mutation min depth (%d) <= mutation max depth (%d)", obj.MutMinDepth, obj.MutMaxDepth)
	}
	if obj.Attempts < 1 {
		add("attempts must be positive")
	}
	if _, err := selection.New[*tree.Individual](obj.Selection, obj.TournamentSize); err != nil {
		reterr = errwrap.Append(reterr, err)
	}
	if obj.HallOfFame < 1 {
		add("hall of fame size must be positive")
	}
	if obj.Parallelism < 1 {
		add("parallelism must be positive")
	}
	if obj.Sprinkle < 0 {
		add("sprinkle must not be negative")
	}
	if obj.Sprinkle > 0 && obj.Algorithm != AlgorithmStream {
		add("sprinkle only works with the %s algorithm", AlgorithmStream)
	}
	return reterr
}
