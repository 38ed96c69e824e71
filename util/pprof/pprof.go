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

// Package pprof is a simple wrapper around the pprof utility code which we use.
package pprof

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/purpleidea/tgp/util/errwrap"
)

// EnvPath is the environment variable that holds the absolute path the cpu
// profile is written to. Example usage:
// TGP_PPROF_PATH="/tmp/tgp.pprof" ./tgp run --problem invariant
// go tool pprof -no_browser -http :10000 /tmp/tgp.pprof
const EnvPath = "TGP_PPROF_PATH"

// Run starts cpu profiling if EnvPath is set, and returns the function that
// stops it and closes the file. If the variable is not set, the returned stop
// function does nothing. Relative paths are an error.
func Run(logf func(format string, v ...interface{})) (func() error, error) {
	noop := func() error { return nil }
	s := os.Getenv(EnvPath)
	if s == "" {
		return noop, nil // not activated
	}
	if !filepath.IsAbs(s) {
		return noop, fmt.Errorf("the %s path must be absolute, got: %s", EnvPath, s)
	}
	logf("pprof logging to: %s", s)

	f, err := os.Create(s)
	if err != nil {
		return noop, errwrap.Wrapf(err, "could not create CPU profile")
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return noop, errwrap.Append(errwrap.Wrapf(err, "could not start CPU profile"), f.Close())
	}

	stop := func() error {
		pprof.StopCPUProfile()
		if err := f.Close(); err != nil {
			return errwrap.Wrapf(err, "pprof write error")
		}
		logf("pprof wrote file to: %s", s)
		return nil
	}
	return stop, nil
}
