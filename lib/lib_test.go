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

//go:build !root

package lib

import (
	"testing"

	"github.com/purpleidea/tgp/util"

	"github.com/kylelemons/godebug/pretty"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `
seed: 7
problem: invariant
options:
  people: "20"
algorithm: stream
population: 30
generations: 3
sprinkle: 2
dedupe: true
report: out/report.yaml
`

const tomlConfig = `
seed = 7
problem = "invariant"
algorithm = "stream"
population = 30
generations = 3
sprinkle = 2
dedupe = true
report = "out/report.yaml"

[options]
people = "20"
`

func TestLoadConfig0(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, util.WriteFile(fs, "tgp.yaml", []byte(yamlConfig), 0644))
	require.NoError(t, util.WriteFile(fs, "tgp.toml", []byte(tomlConfig), 0644))

	expected := &Config{
		Seed:        7,
		Problem:     "invariant",
		Options:     map[string]string{"people": "20"},
		Algorithm:   AlgorithmStream,
		Population:  30,
		Generations: 3,
		Sprinkle:    2,
		Dedupe:      true,
		Report:      "out/report.yaml",
	}
	for _, name := range []string{"tgp.yaml", "tgp.toml"} {
		config, err := LoadConfig(fs, name)
		if err != nil {
			t.Errorf("could not load %s: %+v", name, err)
			continue
		}
		if diff := pretty.Compare(config, expected); diff != "" {
			t.Errorf("config %s differs: (-got +want)\n%s", name, diff)
		}
	}
}

func TestLoadConfig1(t *testing.T) {
	fs := afero.NewMemMapFs()
	values := map[string]string{
		"a.yaml": "bogus: 1\n",
		"b.toml": "bogus = 1\n",
		"c.json": "{}",
		"d.yml":  "seed: [\n",
	}
	for name, content := range values {
		require.NoError(t, util.WriteFile(fs, name, []byte(content), 0644))
		if _, err := LoadConfig(fs, name); err == nil {
			t.Errorf("expected an error for %s", name)
		}
	}
	_, err := LoadConfig(fs, "missing.yaml")
	assert.Error(t, err)
}

func TestConfig0(t *testing.T) {
	config := &Config{
		Problem: "invariant",
		Options: map[string]string{"people": "10"},
		Cxpb:    0.3,
	}
	config.Merge(&Config{
		Seed:    3,
		Options: map[string]string{"rule": "popular"},
		Mu:      5,
	})
	config.SetDefaults()

	assert.Equal(t, uint64(3), config.Seed)
	assert.Equal(t, "invariant", config.Problem)
	assert.Equal(t, map[string]string{"people": "10", "rule": "popular"}, config.Options)
	assert.Equal(t, 5, config.Mu)
	assert.Equal(t, 10, config.Lambda)
	assert.Equal(t, 0.3, config.Cxpb)
	assert.Equal(t, 0.0, config.Mutpb, "only both unset get the default")
	assert.Equal(t, DefaultMaxDepth, config.MaxDepth)
	assert.NoError(t, config.Validate())
}

func TestConfig1(t *testing.T) {
	values := []*Config{
		{Algorithm: "nope"},
		{Cxpb: 0.8, Mutpb: 0.8},
		{Algorithm: AlgorithmComma, Mu: 10, Lambda: 5},
		{MinDepth: 3, MaxDepth: 2},
		{Selection: "nope"},
		{Sprinkle: 2},
		{Parallelism: -1},
		{Generations: -1},
	}
	for i, config := range values {
		config.SetDefaults()
		if err := config.Validate(); err == nil {
			t.Errorf("test #%d: expected an error for %+v", i, config)
		}
	}
}

func newMain(t *testing.T, config *Config) *Main {
	return &Main{
		Config: config,
		Fs:     afero.NewMemMapFs(),
		Logf: func(format string, v ...interface{}) {
			t.Logf(format, v...)
		},
	}
}

func TestRun0(t *testing.T) {
	for _, algorithm := range []string{AlgorithmPlus, AlgorithmComma, AlgorithmStream} {
		config := &Config{
			Seed:        11,
			Problem:     "regression",
			Options:     map[string]string{"target": "linear"},
			Algorithm:   algorithm,
			Population:  20,
			Generations: 3,
			Parallelism: 2,
			HallOfFame:  3,
			Report:      "report.yaml",
		}
		main := newMain(t, config)
		report, err := main.Run(t.Context())
		require.NoError(t, err, "algorithm: %s", algorithm)
		require.NotEmpty(t, report.Entries)
		assert.LessOrEqual(t, len(report.Entries), 3)
		assert.NotEmpty(t, report.Run)

		exists, err := afero.Exists(main.Fs, "report.yaml")
		require.NoError(t, err)
		assert.True(t, exists)
	}
}

func TestRun1(t *testing.T) {
	main := newMain(t, &Config{Problem: "nope"})
	_, err := main.Run(t.Context())
	assert.Error(t, err)

	main = newMain(t, &Config{Problem: "regression", Options: map[string]string{"bogus": "1"}})
	_, err = main.Run(t.Context())
	assert.Error(t, err)
}

func TestPrimitives0(t *testing.T) {
	cat, err := ProblemCatalog("regression", nil, 1)
	require.NoError(t, err)
	rows, err := Primitives(cat, 1)
	require.NoError(t, err)
	assert.Contains(t, rows, []string{"+", "func(int, int) int", "1"})
	assert.Contains(t, rows, []string{"x", "int", "3"})

	fs := afero.NewMemMapFs()
	spec := "builtins: [{name: abs}]\nconstants: [{name: \"1\", type: int, value: 1}]\n"
	require.NoError(t, util.WriteFile(fs, "catalog.yaml", []byte(spec), 0644))
	cat, err = SpecCatalog(fs, "catalog.yaml")
	require.NoError(t, err)
	rows, err = Primitives(cat, 1)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"abs", "func(int) int", "1"}, {"1", "int", "1"}}, rows)
}
