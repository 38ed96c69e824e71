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

package prometheus

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitMetrics(t *testing.T) {
	var prom Prometheus
	if err := prom.Init(); err != nil {
		t.Errorf("could not init: %+v", err)
		return
	}
	prom.UpdateGenerationsTotal()
	prom.UpdateGenerationsTotal()
	prom.UpdateEvaluationsTotal(7)
	prom.UpdateVariationsTotal("crossover")
	prom.UpdateVariationsTotal("mutation")
	prom.UpdateVariationsTotal("mutation")
	prom.UpdateBestFitness([]float64{-3, -12})
	prom.UpdateHallOfFameSize(4)

	if v := testutil.ToFloat64(prom.generationsTotal); v != 2 {
		t.Errorf("expected 2 generations, got %g", v)
	}
	if v := testutil.ToFloat64(prom.evaluationsTotal); v != 7 {
		t.Errorf("expected 7 evaluations, got %g", v)
	}
	if v := testutil.ToFloat64(prom.variationsTotal.WithLabelValues("mutation")); v != 2 {
		t.Errorf("expected 2 mutations, got %g", v)
	}
	if v := testutil.ToFloat64(prom.bestFitness.WithLabelValues("1")); v != -12 {
		t.Errorf("expected -12, got %g", v)
	}

	// Get a list of metrics collected by Prometheus.
	metrics, err := prom.Registry().Gather()
	if err != nil {
		t.Errorf("error while gathering metrics: %s", err)
		return
	}

	// expectedMetrics maps metric names to the expected count of series.
	expectedMetrics := map[string][2]int{
		"tgp_generations_total":          {1, 0},
		"tgp_evaluations_total":          {1, 0},
		"tgp_variations_total":           {2, 0},
		"tgp_best_fitness":               {2, 0},
		"tgp_halloffame_size":            {1, 0},
		"tgp_process_start_time_seconds": {1, 0},
	}
	for _, metric := range metrics {
		for name, count := range expectedMetrics {
			if metric.GetName() == name {
				expectedMetrics[name] = [2]int{count[0], len(metric.Metric)}
			}
		}
	}
	for name, count := range expectedMetrics {
		if count[1] != count[0] {
			t.Errorf("with: %s, expected %d metrics, got %d metrics", name, count[0], count[1])
		}
	}

	// a second instance must not collide with the first
	var other Prometheus
	if err := other.Init(); err != nil {
		t.Errorf("could not init a second instance: %+v", err)
	}
}

func TestStartStop(t *testing.T) {
	prom := &Prometheus{
		Listen: "127.0.0.1:0",
		Logf: func(format string, v ...interface{}) {
			t.Logf("prometheus: "+format, v...)
		},
	}
	if err := prom.Init(); err != nil {
		t.Errorf("could not init: %+v", err)
		return
	}
	if err := prom.Start(); err != nil {
		t.Errorf("could not start: %+v", err)
		return
	}
	prom.UpdateGenerationsTotal()

	addr := prom.Addr()
	resp, err := http.Get("http://" + addr + "/metrics")
	if err != nil {
		t.Errorf("could not scrape: %+v", err)
	} else {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if !strings.Contains(string(body), "tgp_generations_total 1") {
			t.Errorf("unexpected body:\n%s", body)
		}
	}

	if err := prom.Stop(); err != nil {
		t.Errorf("could not stop: %+v", err)
	}
}
