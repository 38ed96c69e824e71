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

package util

import (
	"testing"

	"github.com/spf13/afero"
)

func TestWriteFile1(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := WriteFile(fs, "/out/run/report.yaml", []byte("hello\n"), 0644); err != nil {
		t.Errorf("could not write: %+v", err)
		return
	}
	if err := WriteFile(fs, "/out/top.txt", []byte("x"), 0644); err != nil {
		t.Errorf("could not write: %+v", err)
		return
	}

	data, err := ReadFile(fs, "/out/run/report.yaml")
	if err != nil {
		t.Errorf("could not read: %+v", err)
		return
	}
	if s := string(data); s != "hello\n" {
		t.Errorf("unexpected contents: %s", s)
	}

	tree, err := FsTree(fs, "/")
	if err != nil {
		t.Errorf("tree failed: %+v", err)
		return
	}
	exp := ".\n└── out/\n    ├── run/\n    │   └── report.yaml\n    └── top.txt\n"
	if tree != exp {
		t.Errorf("trees differ")
		t.Logf("tree:\n%s", tree)
	}
}

func TestReadFile1(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := ReadFile(fs, "/nope"); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}
