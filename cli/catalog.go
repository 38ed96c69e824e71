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
	"fmt"

	"github.com/purpleidea/tgp/catalog"
	cliUtil "github.com/purpleidea/tgp/cli/util"
	"github.com/purpleidea/tgp/lib"
	"github.com/purpleidea/tgp/util"

	"github.com/spf13/afero"
)

// CatalogArgs is the CLI parsing structure of the `catalog` subcommand.
type CatalogArgs struct {
	Seed uint64 `arg:"--seed" help:"seed used to unroll record fields"`

	Builtins bool `arg:"--builtins" help:"list the registered builtins instead"`

	CatalogProblem *cliUtil.ProblemArgs `arg:"subcommand:problem" help:"list the catalog of a problem"`
	CatalogSpec    *cliUtil.SpecArgs    `arg:"subcommand:spec" help:"list the catalog of a yaml file"`
}

// Run prints one line per primitive of the selected catalog. It returns false
// if neither a problem nor a file was chosen, unless the builtins are listed.
func (obj *CatalogArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	if obj.Builtins {
		for _, name := range catalog.Builtins() {
			fmt.Println(name)
		}
		return true, nil
	}

	var cat *catalog.Catalog
	var err error
	var name string
	if cmd := obj.CatalogProblem; cmd != nil {
		name = cliUtil.LookupSubcommand(obj, cmd) // "problem"
		cat, err = lib.ProblemCatalog(cmd.Name, cmd.Options, obj.Seed)
	}
	if cmd := obj.CatalogSpec; cmd != nil {
		name = cliUtil.LookupSubcommand(obj, cmd) // "spec"
		cat, err = lib.SpecCatalog(afero.NewOsFs(), cmd.Path)
	}
	if err != nil {
		return false, err
	}
	if cat == nil {
		return false, nil // did not activate
	}
	if data.Flags.Debug {
		data.Flags.Logf("catalog: listing %s catalog", name)
	}

	rows, err := lib.Primitives(cat, obj.Seed)
	if err != nil {
		return false, err
	}
	for _, line := range util.Columns(rows, "  ") {
		fmt.Println(line)
	}
	return true, nil
}
