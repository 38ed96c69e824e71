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
)

func TestRightPad(t *testing.T) {
	tests := []struct {
		s      string
		pad    string
		length int
		result string
	}{
		{"", "", 2, ""},
		{"", "x", 0, ""},
		{"", "x", 2, "xx"},
		{"", "ab", 3, "abab"},
		{"hello", " ", 7, "hello  "},
		{"hello", "ab", 5, "hello"},
		{"hello", "ab", 6, "helloab"},
		{"héllo", " ", 6, "héllo "},
	}

	for i, test := range tests {
		actual := RightPad(test.s, test.pad, test.length)
		if actual != test.result {
			t.Errorf("index: %d, expected: %q, actual: %q", i, test.result, actual)
		}
	}
}

func TestColumns(t *testing.T) {
	rows := [][]string{
		{"+", "func(int, int) int", "1"},
		{"self.age", "int", "3"},
		{"x"},
	}
	expected := []string{
		"+         func(int, int) int  1",
		"self.age  int                 3",
		"x",
	}
	actual := Columns(rows, "  ")
	if len(actual) != len(expected) {
		t.Fatalf("expected %d lines, got %d", len(expected), len(actual))
	}
	for i := range expected {
		if actual[i] != expected[i] {
			t.Errorf("line %d: expected: %q, actual: %q", i, expected[i], actual[i])
		}
	}
}

func TestLogWriter(t *testing.T) {
	got := []string{}
	w := &LogWriter{
		Prefix: "http: ",
		Logf: func(format string, v ...interface{}) {
			got = append(got, format)
			got = append(got, v[0].(string)+v[1].(string))
		},
	}
	n, err := w.Write([]byte("oops\n"))
	if err != nil || n != 5 {
		t.Errorf("unexpected write result: %d, %v", n, err)
	}
	if len(got) != 2 || got[1] != "http: oops" {
		t.Errorf("unexpected log: %v", got)
	}
}
