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

// Package prometheus provides functions that are useful to control and manage
// the built-in prometheus instance that exports the progress of a run.
package prometheus

import (
	"context"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/purpleidea/tgp/util"
	"github.com/purpleidea/tgp/util/errwrap"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultPrometheusListen is registered in
// https://github.com/prometheus/prometheus/wiki/Default-port-allocations
const DefaultPrometheusListen = "127.0.0.1:9233"

// Prometheus is the struct that contains information about the prometheus
// instance. Run Init() on it.
type Prometheus struct {
	Listen string // the listen specification for the net/http server

	// Logf is an optional logger.
	Logf func(format string, v ...interface{})

	registry *prometheus.Registry
	server   *http.Server
	addr     string
	errCh    chan error

	generationsTotal        prometheus.Counter     // completed generations
	evaluationsTotal        prometheus.Counter     // fitness evaluations
	variationsTotal         *prometheus.CounterVec // offspring by operator
	bestFitness             *prometheus.GaugeVec   // weighted fitness of the best member
	hallOfFameSize          prometheus.Gauge       // members in the archive
	processStartTimeSeconds prometheus.Gauge       // process start time in seconds since unix epoch
}

// Init some parameters and registers every metric on a private registry, so
// that more than one instance can exist in one process.
func (obj *Prometheus) Init() error {
	if len(obj.Listen) == 0 {
		obj.Listen = DefaultPrometheusListen
	}
	obj.registry = prometheus.NewRegistry()

	obj.generationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tgp_generations_total",
			Help: "Number of generations that have completed.",
		},
	)
	obj.evaluationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tgp_evaluations_total",
			Help: "Number of fitness evaluations that have run.",
		},
	)
	obj.variationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tgp_variations_total",
			Help: "Number of offspring produced, by operator.",
		},
		// op: crossover, mutation or reproduction
		[]string{"op"},
	)
	obj.bestFitness = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tgp_best_fitness",
			Help: "Weighted fitness value of the best archived individual.",
		},
		// objective: index of the objective
		[]string{"objective"},
	)
	obj.hallOfFameSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tgp_halloffame_size",
			Help: "Number of individuals in the hall of fame.",
		},
	)
	obj.processStartTimeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tgp_process_start_time_seconds",
			Help: "Start time of the process since unix epoch in seconds.",
		},
	)

	for _, c := range []prometheus.Collector{
		obj.generationsTotal,
		obj.evaluationsTotal,
		obj.variationsTotal,
		obj.bestFitness,
		obj.hallOfFameSize,
		obj.processStartTimeSeconds,
	} {
		if err := obj.registry.Register(c); err != nil {
			return errwrap.Wrapf(err, "could not register metric")
		}
	}
	// directly set the processStartTimeSeconds
	obj.processStartTimeSeconds.SetToCurrentTime()

	return nil
}

// Registry returns the registry that holds every metric of this instance.
func (obj *Prometheus) Registry() *prometheus.Registry {
	return obj.registry
}

// Start runs a http server in a go routine, that responds to /metrics as
// prometheus would expect. It errors if it can't listen.
func (obj *Prometheus) Start() error {
	l, err := net.Listen("tcp", obj.Listen)
	if err != nil {
		return errwrap.Wrapf(err, "can't listen on %s", obj.Listen)
	}
	obj.addr = l.Addr().String()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(obj.registry, promhttp.HandlerOpts{}))
	obj.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if obj.Logf != nil {
		obj.server.ErrorLog = log.New(&util.LogWriter{Prefix: "http: ", Logf: obj.Logf}, "", 0)
	}
	obj.errCh = make(chan error, 1)
	go func() {
		defer close(obj.errCh)
		if err := obj.server.Serve(l); err != nil && err != http.ErrServerClosed {
			if obj.Logf != nil {
				obj.Logf("server error: %+v", err)
			}
			obj.errCh <- err
		}
	}()
	return nil
}

// Addr returns the address the server listens on once it is started. This is
// useful when listening on port zero.
func (obj *Prometheus) Addr() string {
	return obj.addr
}

// Stop the http server. It waits for in flight requests for a short while.
func (obj *Prometheus) Stop() error {
	if obj.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := obj.server.Shutdown(ctx)
	obj.server = nil
	return errwrap.Append(err, <-obj.errCh)
}

// UpdateGenerationsTotal counts one completed generation.
func (obj *Prometheus) UpdateGenerationsTotal() {
	obj.generationsTotal.Inc()
}

// UpdateEvaluationsTotal counts n evaluations.
func (obj *Prometheus) UpdateEvaluationsTotal(n int) {
	obj.evaluationsTotal.Add(float64(n))
}

// UpdateVariationsTotal counts one offspring made by this operator.
func (obj *Prometheus) UpdateVariationsTotal(op string) {
	obj.variationsTotal.With(prometheus.Labels{"op": op}).Inc()
}

// UpdateBestFitness sets the weighted fitness of the best individual, one
// value per objective.
func (obj *Prometheus) UpdateBestFitness(weighted []float64) {
	for i, v := range weighted {
		obj.bestFitness.With(prometheus.Labels{"objective": strconv.Itoa(i)}).Set(v)
	}
}

// UpdateHallOfFameSize sets the number of archived individuals.
func (obj *Prometheus) UpdateHallOfFameSize(n int) {
	obj.hallOfFameSize.Set(float64(n))
}
