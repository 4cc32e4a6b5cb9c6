/*
GoPowers - A rule-based style analyzer for Go source code
Copyright (C) 2026  James Ainslie

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package basic

import (
	"testing"
	"time"
)

func TestGetPercentString(t *testing.T) {
	for _, testCase := range [...]struct {
		done     int
		total    int
		expected string
	}{
		{done: 0, total: 4, expected: "0%"},
		{done: 1, total: 4, expected: "25%"},
		{done: 4, total: 4, expected: "100%"},
		{done: 3, total: 7, expected: "42%"},
		{done: 0, total: 0, expected: "100%"},
	} {
		got := GetPercentString(testCase.done, testCase.total)
		if got != testCase.expected {
			t.Errorf("unexpected result for %v/%v. got: %v. expected: %v.", testCase.done, testCase.total, got, testCase.expected)
		}
	}
}

func TestFormatTimeDuration(t *testing.T) {
	for _, testCase := range [...]struct {
		d        time.Duration
		expected string
	}{
		{d: 0, expected: "0s"},
		{d: 3 * time.Second, expected: "3s"},
		{d: 1500 * time.Millisecond, expected: "1.5s"},
		{d: 250 * time.Millisecond, expected: "0.25s"},
		{d: 45 * time.Millisecond, expected: "0.045s"},
		{d: 61 * time.Second, expected: "61s"},
	} {
		got := FormatTimeDuration(testCase.d)
		if got != testCase.expected {
			t.Errorf("unexpected result for %v. got: %v. expected: %v.", testCase.d, got, testCase.expected)
		}
	}
}
