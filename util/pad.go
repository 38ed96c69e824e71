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

package util

import (
	"strings"
	"unicode/utf8"
)

// RightPad adds multiples of the pad string to the right of the input string
// until it reaches a minimum length in runes. It may overshoot if the pad is
// longer than one rune.
func RightPad(s string, pad string, length int) string {
	if pad == "" {
		return s
	}
	out := s
	for utf8.RuneCountInString(out) < length {
		out += pad
	}
	return out
}

// Columns joins each row with the separator, after padding every column but
// the last to the width of its widest cell. Rows may have different lengths.
func Columns(rows [][]string, sep string) []string {
	widths := []int{}
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}
	lines := []string{}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i < len(row)-1 {
				cell = RightPad(cell, " ", widths[i])
			}
			cells[i] = cell
		}
		lines = append(lines, strings.Join(cells, sep))
	}
	return lines
}
