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

package errwrap

import (
	"fmt"
	"testing"
)

const errSentinel = Error("sentinel")

func TestWrapfErr1(t *testing.T) {
	if err := Wrapf(nil, "whatever: %d", 42); err != nil {
		t.Errorf("expected nil result")
	}
}

func TestWrapfIs(t *testing.T) {
	err := Wrapf(Wrapf(errSentinel, "inner"), "outer: %d", 7)
	if !Is(err, errSentinel) {
		t.Errorf("expected the sentinel in the chain")
	}
	if Cause(err) != errSentinel {
		t.Errorf("expected the sentinel as the cause, got: %v", Cause(err))
	}
	if s := err.Error(); s != "outer: 7: inner: sentinel" {
		t.Errorf("unexpected message: %s", s)
	}
}

func TestAppendErr1(t *testing.T) {
	if err := Append(nil, nil); err != nil {
		t.Errorf("expected nil result")
	}
}

func TestAppendErr2(t *testing.T) {
	reterr := fmt.Errorf("reterr")
	if err := Append(reterr, nil); err != reterr {
		t.Errorf("expected reterr")
	}
}

func TestAppendErr3(t *testing.T) {
	err := fmt.Errorf("err")
	if reterr := Append(nil, err); reterr != err {
		t.Errorf("expected err")
	}
}

func TestAppendIs(t *testing.T) {
	err := Append(fmt.Errorf("first"), Wrapf(errSentinel, "second"))
	if !Is(err, errSentinel) {
		t.Errorf("expected the sentinel inside the multierror")
	}
}

func TestString1(t *testing.T) {
	var err error
	if String(err) != "" {
		t.Errorf("expected empty result")
	}

	msg := "this is an error"
	if err := fmt.Errorf("%s", msg); String(err) != msg {
		t.Errorf("expected different result")
	}
}
