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

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cliUtil "github.com/purpleidea/tgp/cli/util"
	"github.com/purpleidea/tgp/lib"
	"github.com/purpleidea/tgp/util/errwrap"
	"github.com/purpleidea/tgp/util/pprof"

	"github.com/spf13/afero"
)

// RunArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the flags for the `run` subcommand. Flags that
// are set win over the values of the config file.
type RunArgs struct {
	lib.Config // embedded config (can't be a pointer) https://github.com/alexflint/go-arg/issues/240

	ConfigPath string `arg:"--config,env:TGP_CONFIG" help:"path of a yaml or toml config file"`
}

// Run executes the `run` subcommand. It returns true, since it always
// activates. The first interrupt cancels the run, which stops between two
// generations and still writes the report.
func (obj *RunArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	fs := afero.NewOsFs()

	config := &lib.Config{}
	if obj.ConfigPath != "" {
		c, err := lib.LoadConfig(fs, obj.ConfigPath)
		if err != nil {
			return false, err
		}
		config = c
	}
	config.Merge(&obj.Config)

	main := &lib.Main{
		Program: data.Program,
		Version: data.Version,
		Config:  config,
		Fs:      fs,
		Debug:   data.Flags.Debug,
		Logf:    data.Flags.Logf, // no prefix
	}
	Logf := func(format string, v ...interface{}) {
		data.Flags.Logf("main: "+format, v...)
	}

	cliUtil.Hello(main.Program, main.Version, data.Flags) // say hello!
	defer Logf("goodbye!")

	if err := main.Validate(); err != nil {
		return false, err
	}

	stopProfile, err := pprof.Run(Logf)
	if err != nil {
		return false, err
	}
	defer func() {
		if err := stopProfile(); err != nil {
			Logf("%+v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := main.Run(ctx)
	if err != nil && ctx.Err() != nil && report != nil {
		Logf("interrupted")
		err = nil // a cancelled run still produced a report
	}
	if err != nil {
		if data.Flags.Debug {
			Logf("%+v", err)
		}
		return false, errwrap.Wrapf(err, "run failed")
	}
	for _, entry := range report.Entries {
		Logf("#%d %v %s", entry.Rank, entry.Values, entry.Program)
	}
	return true, nil
}
